package ledger

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ledgerkeep/ledgerkeep/internal/masterdata/accounts"
	"github.com/ledgerkeep/ledgerkeep/internal/masterdata/partners"
)

// Service builds running-balance ledgers and cached summaries.
type Service struct {
	repo     Repository
	accounts accounts.Repository
	partners partners.Repository
	cache    *Cache
	group    singleflight.Group
}

func NewService(repo Repository, accountsRepo accounts.Repository, partnersRepo partners.Repository, cache *Cache) *Service {
	return &Service{
		repo:     repo,
		accounts: accountsRepo,
		partners: partnersRepo,
		cache:    cache,
	}
}

// window resolves the fiscal year and the [from, to] range for a query.
// Fiscal years are sequence numbers, not calendar years: a query without
// one resolves the period covering its anchor date, and a year with no
// period is an error.
func (s *Service) window(ctx context.Context, companyID int64, fiscalYear int, from, to time.Time) (int, time.Time, time.Time, time.Time, error) {
	var periodStart, periodEnd time.Time
	var err error
	if fiscalYear == 0 {
		anchor := from
		if anchor.IsZero() {
			anchor = to
		}
		if anchor.IsZero() {
			anchor = time.Now()
		}
		fiscalYear, periodStart, periodEnd, err = s.repo.PeriodForDate(ctx, companyID, anchor)
	} else {
		periodStart, periodEnd, err = s.repo.PeriodRange(ctx, companyID, fiscalYear)
	}
	if err != nil {
		return 0, time.Time{}, time.Time{}, time.Time{}, err
	}
	if from.IsZero() {
		from = periodStart
	}
	if to.IsZero() {
		to = periodEnd
	}
	return fiscalYear, periodStart, from, to, nil
}

// opening resolves the balance the window starts from: the carry-forward
// net for the fiscal year, rolled forward over [periodStart, from) when
// the window starts mid-period.
func (s *Service) opening(ctx context.Context, companyID int64, fiscalYear int, accountID int64, partnerID *int64, periodStart, from time.Time) (float64, error) {
	opening, err := s.repo.Opening(ctx, companyID, fiscalYear, accountID, partnerID)
	if err != nil {
		return 0, err
	}
	if from.After(periodStart) {
		net, err := s.repo.NetBetween(ctx, companyID, accountID, partnerID, periodStart, from)
		if err != nil {
			return 0, err
		}
		opening += net
	}
	return opening, nil
}

// Build assembles the running-balance ledger for one account.
func (s *Service) Build(ctx context.Context, q Query) (Ledger, error) {
	account, err := s.accounts.GetByCode(ctx, q.CompanyID, q.AccountCode)
	if err != nil {
		return Ledger{}, err
	}
	fiscalYear, periodStart, from, to, err := s.window(ctx, q.CompanyID, q.FiscalYear, q.From, q.To)
	if err != nil {
		return Ledger{}, err
	}
	opening, err := s.opening(ctx, q.CompanyID, fiscalYear, account.ID, q.PartnerID, periodStart, from)
	if err != nil {
		return Ledger{}, err
	}
	entries, err := s.repo.EntriesBetween(ctx, q.CompanyID, account.ID, q.PartnerID, from, to)
	if err != nil {
		return Ledger{}, err
	}
	SortEntries(entries)
	rows := BuildRows(opening, from, entries)
	debit, credit := Totals(rows)
	return Ledger{
		AccountCode: account.Code,
		AccountName: account.Name,
		Opening:     opening,
		Rows:        rows,
		TotalDebit:  debit,
		TotalCredit: credit,
		Closing:     opening + debit - credit,
	}, nil
}

// Summary aggregates every account with a non-zero opening or any
// activity in the window. Results are cached per company and
// deduplicated across concurrent callers.
func (s *Service) Summary(ctx context.Context, q SummaryQuery) ([]AccountSummary, error) {
	fiscalYear, periodStart, from, to, err := s.window(ctx, q.CompanyID, q.FiscalYear, q.From, q.To)
	if err != nil {
		return nil, err
	}
	key, err := s.cache.BuildKey(ctx, q.CompanyID, "summary",
		fmt.Sprint(fiscalYear), from.Format("20060102"), to.Format("20060102"))
	if err != nil {
		return nil, err
	}
	result, err, _ := s.group.Do(key, func() (any, error) {
		var summaries []AccountSummary
		err := s.cache.FetchJSON(ctx, key, &summaries, func(ctx context.Context) (any, error) {
			return s.buildSummary(ctx, q.CompanyID, fiscalYear, periodStart, from, to)
		})
		return summaries, err
	})
	if err != nil {
		return nil, err
	}
	return result.([]AccountSummary), nil
}

func (s *Service) buildSummary(ctx context.Context, companyID int64, fiscalYear int, periodStart, from, to time.Time) ([]AccountSummary, error) {
	activity, err := s.repo.ActivityByAccount(ctx, companyID, from, to)
	if err != nil {
		return nil, err
	}
	openings, err := s.repo.OpeningsByAccount(ctx, companyID, fiscalYear)
	if err != nil {
		return nil, err
	}
	var rolls map[int64]float64
	if from.After(periodStart) {
		rolls, err = s.repo.NetsByAccount(ctx, companyID, periodStart, from)
		if err != nil {
			return nil, err
		}
	}
	byAccount := make(map[int64]*AccountSummary, len(activity))
	result := make([]AccountSummary, 0, len(activity))
	for _, item := range activity {
		result = append(result, item)
		byAccount[item.AccountID] = &result[len(result)-1]
	}
	// accounts with no movement in the window but a carry-forward row or
	// pre-window activity still open the window with a balance
	appendDormant := func(accountID int64, net float64) error {
		if net == 0 {
			return nil
		}
		if _, ok := byAccount[accountID]; ok {
			return nil
		}
		account, err := s.accounts.Get(ctx, companyID, accountID)
		if err != nil {
			return err
		}
		result = append(result, AccountSummary{
			AccountID:   account.ID,
			AccountCode: account.Code,
			AccountName: account.Name,
			AccountType: string(account.Type),
		})
		byAccount[accountID] = &result[len(result)-1]
		return nil
	}
	for accountID, net := range openings {
		if err := appendDormant(accountID, net); err != nil {
			return nil, err
		}
	}
	for accountID, net := range rolls {
		if err := appendDormant(accountID, net); err != nil {
			return nil, err
		}
	}
	for idx := range result {
		summary := &result[idx]
		summary.Opening = openings[summary.AccountID] + rolls[summary.AccountID]
		summary.Closing = summary.Opening + summary.TotalDebit - summary.TotalCredit
	}
	return result, nil
}

// PartnerLedger aggregates partner balances for one account.
func (s *Service) PartnerLedger(ctx context.Context, companyID int64, accountCode string, fiscalYear int, from, to time.Time) ([]PartnerSummary, error) {
	account, err := s.accounts.GetByCode(ctx, companyID, accountCode)
	if err != nil {
		return nil, err
	}
	year, periodStart, from, to, err := s.window(ctx, companyID, fiscalYear, from, to)
	if err != nil {
		return nil, err
	}
	activity, err := s.repo.ActivityByPartner(ctx, companyID, account.ID, from, to)
	if err != nil {
		return nil, err
	}
	openings, err := s.repo.OpeningsByPartner(ctx, companyID, year, account.ID)
	if err != nil {
		return nil, err
	}
	var rolls map[int64]float64
	if from.After(periodStart) {
		rolls, err = s.repo.NetsByPartner(ctx, companyID, account.ID, periodStart, from)
		if err != nil {
			return nil, err
		}
	}
	byPartner := make(map[int64]*PartnerSummary, len(activity))
	result := make([]PartnerSummary, 0, len(activity))
	for _, item := range activity {
		result = append(result, item)
		byPartner[item.PartnerID] = &result[len(result)-1]
	}
	appendDormant := func(partnerID int64, net float64) error {
		if net == 0 {
			return nil
		}
		if _, ok := byPartner[partnerID]; ok {
			return nil
		}
		partner, err := s.partners.Get(ctx, companyID, partnerID)
		if err != nil {
			return err
		}
		result = append(result, PartnerSummary{
			PartnerID:   partner.ID,
			PartnerCode: partner.Code,
			PartnerName: partner.Name,
		})
		byPartner[partnerID] = &result[len(result)-1]
		return nil
	}
	for partnerID, net := range openings {
		if err := appendDormant(partnerID, net); err != nil {
			return nil, err
		}
	}
	for partnerID, net := range rolls {
		if err := appendDormant(partnerID, net); err != nil {
			return nil, err
		}
	}
	for idx := range result {
		summary := &result[idx]
		summary.Opening = openings[summary.PartnerID] + rolls[summary.PartnerID]
		summary.Closing = summary.Opening + summary.TotalDebit - summary.TotalCredit
	}
	return result, nil
}
