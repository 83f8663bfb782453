package periods

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ledgerkeep/ledgerkeep/internal/accounting/shared"
	"github.com/ledgerkeep/ledgerkeep/internal/platform/httpx"
	internalShared "github.com/ledgerkeep/ledgerkeep/internal/shared"
)

// AuditPort records closing operations for the audit trail.
type AuditPort interface {
	Record(ctx context.Context, log internalShared.AuditLog) error
}

// CachePort invalidates read-model caches after closing operations.
type CachePort interface {
	BustCompany(ctx context.Context, companyID int64)
}

type Service struct {
	repo  Repository
	audit AuditPort
	cache CachePort
	now   func() time.Time
}

func NewService(repo Repository, audit AuditPort, cache CachePort) *Service {
	return &Service{repo: repo, audit: audit, cache: cache, now: time.Now}
}

func (s *Service) Get(ctx context.Context, companyID int64, fiscalYear int) (Period, error) {
	return s.repo.GetByYear(ctx, companyID, fiscalYear)
}

func (s *Service) List(ctx context.Context, companyID int64) ([]Period, error) {
	return s.repo.List(ctx, companyID)
}

// CreateInput groups the fields for opening a new fiscal period.
type CreateInput struct {
	CompanyID  int64
	FiscalYear int
	StartDate  time.Time
	EndDate    time.Time
}

// Create opens a new fiscal period. Periods form one contiguous
// sequence per company: each new year starts the day after the previous
// year ends.
func (s *Service) Create(ctx context.Context, in CreateInput) (Period, error) {
	if in.CompanyID == 0 || in.FiscalYear == 0 {
		return Period{}, fmt.Errorf("periods: company and fiscal year required: %w", httpx.ErrValidation)
	}
	if !in.EndDate.After(in.StartDate) {
		return Period{}, fmt.Errorf("periods: end date must follow start date: %w", httpx.ErrValidation)
	}
	latest, err := s.repo.Latest(ctx, in.CompanyID)
	switch {
	case errors.Is(err, shared.ErrPeriodNotFound):
		// first period of the company
	case err != nil:
		return Period{}, err
	default:
		if in.FiscalYear != latest.FiscalYear+1 {
			return Period{}, shared.ErrPeriodGap
		}
		if !in.StartDate.Equal(latest.EndDate.AddDate(0, 0, 1)) {
			return Period{}, shared.ErrPeriodOverlap
		}
	}
	period := Period{
		CompanyID:  in.CompanyID,
		FiscalYear: in.FiscalYear,
		StartDate:  in.StartDate,
		EndDate:    in.EndDate,
	}
	if err := s.repo.Create(ctx, &period); err != nil {
		return Period{}, err
	}
	s.afterMutation(ctx, in.CompanyID, "period.create", in.FiscalYear, nil)
	return period, nil
}

// Close marks the period closed, rejecting further voucher mutations in
// its date range.
func (s *Service) Close(ctx context.Context, companyID int64, fiscalYear int) (Period, error) {
	period, err := s.toggleClosed(ctx, companyID, fiscalYear, true)
	if err != nil {
		return Period{}, err
	}
	s.afterMutation(ctx, companyID, "period.close", fiscalYear, nil)
	return period, nil
}

// Reopen clears the closed flag.
func (s *Service) Reopen(ctx context.Context, companyID int64, fiscalYear int) (Period, error) {
	period, err := s.toggleClosed(ctx, companyID, fiscalYear, false)
	if err != nil {
		return Period{}, err
	}
	s.afterMutation(ctx, companyID, "period.reopen", fiscalYear, nil)
	return period, nil
}

func (s *Service) toggleClosed(ctx context.Context, companyID int64, fiscalYear int, close bool) (Period, error) {
	var period Period
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetByYearForUpdate(ctx, companyID, fiscalYear)
		if err != nil {
			return err
		}
		if close && current.Closed {
			return shared.ErrPeriodAlreadyClosed
		}
		if !close && !current.Closed {
			return shared.ErrPeriodNotClosed
		}
		if err := tx.SetClosed(ctx, current.ID, close); err != nil {
			return err
		}
		current.Closed = close
		period = current
		return nil
	})
	return period, err
}

// CarryForward rolls the closing balances of fromYear into the next
// period's opening rows. The next period is created when missing. The
// whole run replaces any previous rows for the target year, so re-runs
// converge on the same state.
func (s *Service) CarryForward(ctx context.Context, companyID int64, fromYear int) (CarryForwardResult, error) {
	var result CarryForwardResult
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		from, err := tx.GetByYearForUpdate(ctx, companyID, fromYear)
		if err != nil {
			return err
		}
		if _, err := tx.GetByYearForUpdate(ctx, companyID, fromYear+1); err != nil {
			if !errors.Is(err, shared.ErrPeriodNotFound) {
				return err
			}
			start, end := from.NextRange()
			next := Period{CompanyID: companyID, FiscalYear: fromYear + 1, StartDate: start, EndDate: end}
			if err := tx.CreatePeriod(ctx, &next); err != nil {
				return err
			}
		}
		plan, err := s.computePlan(ctx, tx, companyID, from)
		if err != nil {
			return err
		}
		if err := tx.DeleteCarryForward(ctx, companyID, plan.ToYear); err != nil {
			return err
		}
		if err := tx.InsertCarryForward(ctx, companyID, plan.ToYear, plan.AccountRows); err != nil {
			return err
		}
		if err := tx.InsertCarryForward(ctx, companyID, plan.ToYear, plan.PartnerRows); err != nil {
			return err
		}
		result = CarryForwardResult{
			FromYear:        fromYear,
			ToYear:          plan.ToYear,
			AccountsCarried: len(plan.AccountRows),
			PartnersCarried: len(plan.PartnerRows),
		}
		return nil
	})
	if err != nil {
		return CarryForwardResult{}, err
	}
	s.afterMutation(ctx, companyID, "period.carry_forward", fromYear, map[string]any{
		"accounts": result.AccountsCarried,
		"partners": result.PartnersCarried,
	})
	return result, nil
}

// computePlan gathers closing nets (opening plus period turnover) and
// derives the rows to write for the next year.
func (s *Service) computePlan(ctx context.Context, tx TxRepository, companyID int64, from Period) (Plan, error) {
	types, err := tx.AccountTypes(ctx, companyID)
	if err != nil {
		return Plan{}, err
	}
	openings, err := tx.OpeningNets(ctx, companyID, from.FiscalYear)
	if err != nil {
		return Plan{}, err
	}
	turnover, err := tx.TurnoverNets(ctx, companyID, from.StartDate, from.EndDate)
	if err != nil {
		return Plan{}, err
	}
	accountNets := make([]AccountNet, 0, len(types))
	for accountID, typ := range types {
		net := openings[accountID] + turnover[accountID]
		accountNets = append(accountNets, AccountNet{AccountID: accountID, Type: typ, Net: net})
	}
	partnerOpenings, err := tx.OpeningPartnerNets(ctx, companyID, from.FiscalYear)
	if err != nil {
		return Plan{}, err
	}
	partnerTurnover, err := tx.TurnoverPartnerNets(ctx, companyID, from.StartDate, from.EndDate)
	if err != nil {
		return Plan{}, err
	}
	pairs := make(map[[2]int64]float64, len(partnerOpenings)+len(partnerTurnover))
	for key, net := range partnerOpenings {
		pairs[key] += net
	}
	for key, net := range partnerTurnover {
		pairs[key] += net
	}
	partnerNets := make([]PartnerNet, 0, len(pairs))
	for key, net := range pairs {
		partnerNets = append(partnerNets, PartnerNet{
			AccountID: key[0],
			PartnerID: key[1],
			Type:      types[key[0]],
			Net:       net,
		})
	}
	return ComputePlan(from.FiscalYear+1, accountNets, partnerNets), nil
}

func (s *Service) afterMutation(ctx context.Context, companyID int64, action string, fiscalYear int, meta map[string]any) {
	if s.cache != nil {
		s.cache.BustCompany(ctx, companyID)
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, internalShared.AuditLog{
			CompanyID: companyID,
			Action:    action,
			Entity:    "fiscal_period",
			EntityID:  fmt.Sprintf("%d", fiscalYear),
			Meta:      meta,
			At:        s.now(),
		})
	}
}
