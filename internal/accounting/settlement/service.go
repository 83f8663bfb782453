package settlement

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/ledgerkeep/ledgerkeep/internal/accounting/shared"
	"github.com/ledgerkeep/ledgerkeep/internal/accounting/vouchers"
	"github.com/ledgerkeep/ledgerkeep/internal/masterdata/accounts"
	internalShared "github.com/ledgerkeep/ledgerkeep/internal/shared"
)

// AuditPort records settlement runs for the audit trail.
type AuditPort interface {
	Record(ctx context.Context, log internalShared.AuditLog) error
}

// CachePort invalidates read-model caches after a settlement run.
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

// IncomeResult reports what one income settlement wrote.
type IncomeResult struct {
	FiscalYear      int     `json:"fiscal_year"`
	RevenueSwept    float64 `json:"revenue_swept"`
	ExpenseSwept    float64 `json:"expense_swept"`
	NetIncome       float64 `json:"net_income"`
	VouchersCreated int     `json:"vouchers_created"`
	VouchersDeleted int64   `json:"vouchers_deleted"`
}

// SettleIncome sweeps every revenue and expense balance of the fiscal
// year into the net income account. Prior settlement vouchers are deleted
// first, so re-running after corrections replaces the old result instead
// of stacking on top of it.
func (s *Service) SettleIncome(ctx context.Context, companyID int64, fiscalYear int) (IncomeResult, error) {
	var result IncomeResult
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		period, err := tx.GetPeriodForUpdate(ctx, companyID, fiscalYear)
		if err != nil {
			return err
		}
		netIncome, err := tx.GetAccountByCode(ctx, companyID, accounts.NetIncomeCode)
		if err != nil {
			return err
		}
		deleted, err := tx.DeleteMarkedVouchers(ctx, companyID, period.StartDate, period.EndDate,
			[]string{MarkerRevenue, MarkerExpense})
		if err != nil {
			return err
		}
		balances, err := tx.PeriodBalances(ctx, companyID, period.StartDate, period.EndDate, Markers)
		if err != nil {
			return err
		}
		plan, err := ComputeIncomePlan(period.EndDate, netIncome.ID, balances)
		if err != nil {
			return err
		}
		for _, voucher := range plan.Vouchers {
			if err := tx.InsertGenerated(ctx, companyID, voucher); err != nil {
				return err
			}
		}
		result = IncomeResult{
			FiscalYear:      fiscalYear,
			RevenueSwept:    plan.RevenueSwept,
			ExpenseSwept:    plan.ExpenseSwept,
			NetIncome:       plan.RevenueSwept - plan.ExpenseSwept,
			VouchersCreated: len(plan.Vouchers),
			VouchersDeleted: deleted,
		}
		return nil
	})
	if err != nil {
		return IncomeResult{}, err
	}
	s.afterRun(ctx, companyID, "settlement.income", fiscalYear, map[string]any{
		"net_income": result.NetIncome,
	})
	return result, nil
}

// InventoryInput carries the counted ending inventory amounts, one per
// category.
type InventoryInput struct {
	Goods     float64 `json:"goods"`
	Materials float64 `json:"materials"`
	Finished  float64 `json:"finished_goods"`
}

// InventoryResult reports what one inventory settlement wrote.
type InventoryResult struct {
	FiscalYear      int     `json:"fiscal_year"`
	TotalCounted    float64 `json:"total_counted"`
	VouchersCreated int     `json:"vouchers_created"`
	VouchersDeleted int64   `json:"vouchers_deleted"`
}

// SettleInventory records the counted ending inventory for the fiscal
// year as marker vouchers on the inventory accounts. Categories with no
// matching account are skipped; re-runs replace the previous count.
func (s *Service) SettleInventory(ctx context.Context, companyID int64, fiscalYear int, in InventoryInput) (InventoryResult, error) {
	amounts := []float64{in.Goods, in.Materials, in.Finished}
	var result InventoryResult
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		period, err := tx.GetPeriodForUpdate(ctx, companyID, fiscalYear)
		if err != nil {
			return err
		}
		deleted, err := tx.DeleteMarkedVouchers(ctx, companyID, period.StartDate, period.EndDate, InventoryMarkers)
		if err != nil {
			return err
		}
		var counts []InventoryCount
		for idx, kind := range inventoryKinds {
			account, ok, err := tx.FindAccountByName(ctx, companyID, kind.AccountName)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			counts = append(counts, InventoryCount{
				AccountID: account.ID,
				Marker:    kind.Marker,
				Amount:    amounts[idx],
			})
		}
		planned, err := ComputeInventoryPlan(period.EndDate, counts)
		if err != nil {
			return err
		}
		var total float64
		for _, voucher := range planned {
			if err := tx.InsertGenerated(ctx, companyID, voucher); err != nil {
				return err
			}
			total += voucher.Lines[0].DebitAmount
		}
		result = InventoryResult{
			FiscalYear:      fiscalYear,
			TotalCounted:    total,
			VouchersCreated: len(planned),
			VouchersDeleted: deleted,
		}
		return nil
	})
	if err != nil {
		return InventoryResult{}, err
	}
	s.afterRun(ctx, companyID, "settlement.inventory", fiscalYear, map[string]any{
		"total_counted": result.TotalCounted,
	})
	return result, nil
}

// RetainedInput carries the disposal confirmation dates for the
// retained earnings settlement.
type RetainedInput struct {
	CurrentDisposalDate  *time.Time
	PreviousDisposalDate *time.Time
}

// RetainedResult reports what one retained earnings settlement wrote.
type RetainedResult struct {
	FiscalYear int     `json:"fiscal_year"`
	NetIncome  float64 `json:"net_income"`
	Date       string  `json:"date"`
}

// SettleRetainedEarnings moves the accumulated net income balance into
// retained earnings, dated at the disposal confirmation date. The income
// settlement must have run first: a zero net income balance is rejected.
func (s *Service) SettleRetainedEarnings(ctx context.Context, companyID int64, fiscalYear int, in RetainedInput) (RetainedResult, error) {
	if in.CurrentDisposalDate == nil {
		return RetainedResult{}, shared.ErrDisposalDateRequired
	}
	var result RetainedResult
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		period, err := tx.GetPeriodForUpdate(ctx, companyID, fiscalYear)
		if err != nil {
			return err
		}
		hasPrior, err := tx.PeriodExists(ctx, companyID, fiscalYear-1)
		if err != nil {
			return err
		}
		if hasPrior && in.PreviousDisposalDate == nil {
			return fmt.Errorf("previous disposal date: %w", shared.ErrDisposalDateRequired)
		}
		netIncome, err := tx.GetAccountByCode(ctx, companyID, accounts.NetIncomeCode)
		if err != nil {
			return err
		}
		retained, err := tx.GetAccountByCode(ctx, companyID, accounts.RetainedEarningsCode)
		if err != nil {
			return err
		}
		// the disposal voucher may be dated past the period end; widen the
		// delete window so re-runs find the previous one
		deleteTo := period.EndDate
		if in.CurrentDisposalDate.After(deleteTo) {
			deleteTo = *in.CurrentDisposalDate
		}
		if _, err := tx.DeleteMarkedVouchers(ctx, companyID, period.StartDate, deleteTo,
			[]string{MarkerRetained}); err != nil {
			return err
		}
		net, err := tx.AccountNet(ctx, companyID, netIncome.ID, period.StartDate, period.EndDate)
		if err != nil {
			return err
		}
		if math.Abs(net) <= vouchers.BalanceEpsilon {
			return shared.ErrPriorSettlementRequired
		}
		voucher, err := ComputeRetainedPlan(*in.CurrentDisposalDate, netIncome.ID, retained.ID, net)
		if err != nil {
			return err
		}
		if err := tx.InsertGenerated(ctx, companyID, voucher); err != nil {
			return err
		}
		if err := tx.SetDisposalDates(ctx, period.ID, in.CurrentDisposalDate, in.PreviousDisposalDate); err != nil {
			return err
		}
		result = RetainedResult{
			FiscalYear: fiscalYear,
			NetIncome:  -net,
			Date:       in.CurrentDisposalDate.Format("2006-01-02"),
		}
		return nil
	})
	if err != nil {
		return RetainedResult{}, err
	}
	s.afterRun(ctx, companyID, "settlement.retained_earnings", fiscalYear, map[string]any{
		"net_income": result.NetIncome,
	})
	return result, nil
}

func (s *Service) afterRun(ctx context.Context, companyID int64, action string, fiscalYear int, meta map[string]any) {
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
