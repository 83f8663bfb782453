package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerkeep/ledgerkeep/internal/accounting/shared"
	"github.com/ledgerkeep/ledgerkeep/internal/masterdata/accounts"
	"github.com/ledgerkeep/ledgerkeep/internal/masterdata/partners"
)

type mockLedgerRepo struct {
	entries  []Entry
	openings map[int64]float64
	activity []AccountSummary
	// net movement returned for [periodStart, from) regardless of window
	priorNet    float64
	nets        map[int64]float64
	partnerNets map[int64]float64
	periodYear  int
	periodStart time.Time
	periodEnd   time.Time
	noPeriod    bool
}

func (m *mockLedgerRepo) EntriesBetween(ctx context.Context, companyID, accountID int64, partnerID *int64, from, to time.Time) ([]Entry, error) {
	var result []Entry
	for _, e := range m.entries {
		if e.AccountID != accountID || e.Date.Before(from) || e.Date.After(to) {
			continue
		}
		result = append(result, e)
	}
	return result, nil
}

func (m *mockLedgerRepo) Opening(ctx context.Context, companyID int64, fiscalYear int, accountID int64, partnerID *int64) (float64, error) {
	return m.openings[accountID], nil
}

func (m *mockLedgerRepo) NetBetween(ctx context.Context, companyID, accountID int64, partnerID *int64, from, to time.Time) (float64, error) {
	return m.priorNet, nil
}

func (m *mockLedgerRepo) NetsByAccount(ctx context.Context, companyID int64, from, to time.Time) (map[int64]float64, error) {
	return m.nets, nil
}

func (m *mockLedgerRepo) NetsByPartner(ctx context.Context, companyID, accountID int64, from, to time.Time) (map[int64]float64, error) {
	return m.partnerNets, nil
}

func (m *mockLedgerRepo) PeriodRange(ctx context.Context, companyID int64, fiscalYear int) (time.Time, time.Time, error) {
	if m.noPeriod {
		return time.Time{}, time.Time{}, shared.ErrPeriodNotFound
	}
	return m.periodStart, m.periodEnd, nil
}

func (m *mockLedgerRepo) PeriodForDate(ctx context.Context, companyID int64, date time.Time) (int, time.Time, time.Time, error) {
	if m.noPeriod || date.Before(m.periodStart) || date.After(m.periodEnd) {
		return 0, time.Time{}, time.Time{}, shared.ErrPeriodNotFound
	}
	return m.periodYear, m.periodStart, m.periodEnd, nil
}

func (m *mockLedgerRepo) ActivityByAccount(ctx context.Context, companyID int64, from, to time.Time) ([]AccountSummary, error) {
	return m.activity, nil
}

func (m *mockLedgerRepo) OpeningsByAccount(ctx context.Context, companyID int64, fiscalYear int) (map[int64]float64, error) {
	return m.openings, nil
}

func (m *mockLedgerRepo) ActivityByPartner(ctx context.Context, companyID, accountID int64, from, to time.Time) ([]PartnerSummary, error) {
	return nil, nil
}

func (m *mockLedgerRepo) OpeningsByPartner(ctx context.Context, companyID int64, fiscalYear int, accountID int64) (map[int64]float64, error) {
	return nil, nil
}

type mockAccountsRepo struct {
	byCode map[string]accounts.Account
}

func (m *mockAccountsRepo) Get(ctx context.Context, companyID, id int64) (accounts.Account, error) {
	for _, a := range m.byCode {
		if a.ID == id {
			return a, nil
		}
	}
	return accounts.Account{}, shared.ErrAccountNotFound
}

func (m *mockAccountsRepo) GetByCode(ctx context.Context, companyID int64, code string) (accounts.Account, error) {
	a, ok := m.byCode[code]
	if !ok {
		return accounts.Account{}, shared.ErrAccountNotFound
	}
	return a, nil
}

func (m *mockAccountsRepo) List(ctx context.Context, companyID int64, activeOnly bool) ([]accounts.Account, error) {
	var result []accounts.Account
	for _, a := range m.byCode {
		result = append(result, a)
	}
	return result, nil
}

type mockPartnersRepo struct{}

func (m *mockPartnersRepo) Get(ctx context.Context, companyID, id int64) (partners.BusinessPartner, error) {
	return partners.BusinessPartner{ID: id}, nil
}

func (m *mockPartnersRepo) GetByCode(ctx context.Context, companyID int64, code string) (partners.BusinessPartner, error) {
	return partners.BusinessPartner{}, shared.ErrPartnerNotFound
}

func (m *mockPartnersRepo) List(ctx context.Context, companyID int64, activeOnly bool) ([]partners.BusinessPartner, error) {
	return nil, nil
}

func TestServiceBuildWithCarryForwardOpening(t *testing.T) {
	repo := &mockLedgerRepo{
		openings:    map[int64]float64{10: 1000000},
		periodStart: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		periodEnd:   time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
		entries: []Entry{
			{Date: time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC), VoucherNumber: "20250305-001", LineNo: 1, AccountID: 10, DebitAmount: 500000},
		},
	}
	accountsRepo := &mockAccountsRepo{byCode: map[string]accounts.Account{
		"101": {ID: 10, Code: "101", Name: "현금", Type: accounts.TypeAsset, Active: true},
	}}
	svc := NewService(repo, accountsRepo, &mockPartnersRepo{}, nil)

	result, err := svc.Build(context.Background(), Query{
		CompanyID: 1, AccountCode: "101", FiscalYear: 1,
	})
	require.NoError(t, err)

	assert.Equal(t, 1000000.0, result.Opening)
	require.Len(t, result.Rows, 2)
	assert.True(t, result.Rows[0].CarriedForward)
	assert.Equal(t, 1500000.0, result.Rows[1].Balance)
	assert.Equal(t, 1500000.0, result.Closing)
}

func TestServiceBuildMidWindowOpening(t *testing.T) {
	repo := &mockLedgerRepo{
		openings:    map[int64]float64{10: 1000000},
		priorNet:    250000,
		periodStart: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		periodEnd:   time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	accountsRepo := &mockAccountsRepo{byCode: map[string]accounts.Account{
		"101": {ID: 10, Code: "101", Type: accounts.TypeAsset, Active: true},
	}}
	svc := NewService(repo, accountsRepo, &mockPartnersRepo{}, nil)

	result, err := svc.Build(context.Background(), Query{
		CompanyID:   1,
		AccountCode: "101",
		FiscalYear:  1,
		From:        time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, 1250000.0, result.Opening, "opening rolls forward over [period start, from)")
}

func TestServiceBuildUnknownAccount(t *testing.T) {
	svc := NewService(&mockLedgerRepo{}, &mockAccountsRepo{byCode: map[string]accounts.Account{}}, &mockPartnersRepo{}, nil)
	_, err := svc.Build(context.Background(), Query{CompanyID: 1, AccountCode: "000"})
	assert.ErrorIs(t, err, shared.ErrAccountNotFound)
}

func TestServiceBuildEmptyLedgerForInactiveWindow(t *testing.T) {
	repo := &mockLedgerRepo{
		openings:    map[int64]float64{},
		periodStart: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		periodEnd:   time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	accountsRepo := &mockAccountsRepo{byCode: map[string]accounts.Account{
		"401": {ID: 12, Code: "401", Type: accounts.TypeRevenue, Active: true},
	}}
	svc := NewService(repo, accountsRepo, &mockPartnersRepo{}, nil)

	result, err := svc.Build(context.Background(), Query{CompanyID: 1, AccountCode: "401", FiscalYear: 1})
	require.NoError(t, err)
	assert.Empty(t, result.Rows)
	assert.Zero(t, result.Opening)
	assert.Zero(t, result.Closing)
}

func TestServiceBuildResolvesPeriodFromDate(t *testing.T) {
	repo := &mockLedgerRepo{
		openings:    map[int64]float64{10: 1000000},
		periodYear:  1,
		periodStart: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		periodEnd:   time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	accountsRepo := &mockAccountsRepo{byCode: map[string]accounts.Account{
		"101": {ID: 10, Code: "101", Type: accounts.TypeAsset, Active: true},
	}}
	svc := NewService(repo, accountsRepo, &mockPartnersRepo{}, nil)

	// no fiscal year given: the period covering the window start is used
	result, err := svc.Build(context.Background(), Query{
		CompanyID:   1,
		AccountCode: "101",
		From:        time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		To:          time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, 1000000.0, result.Opening)
}

func TestServiceBuildUnknownFiscalYear(t *testing.T) {
	repo := &mockLedgerRepo{noPeriod: true}
	accountsRepo := &mockAccountsRepo{byCode: map[string]accounts.Account{
		"101": {ID: 10, Code: "101", Type: accounts.TypeAsset, Active: true},
	}}
	svc := NewService(repo, accountsRepo, &mockPartnersRepo{}, nil)

	_, err := svc.Build(context.Background(), Query{CompanyID: 1, AccountCode: "101", FiscalYear: 5})
	assert.ErrorIs(t, err, shared.ErrPeriodNotFound)
}

func TestSummaryIncludesPreWindowActivity(t *testing.T) {
	repo := &mockLedgerRepo{
		// account 12 moved only before the window start and carries no
		// opening row
		nets:        map[int64]float64{12: 400000},
		periodStart: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		periodEnd:   time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	accountsRepo := &mockAccountsRepo{byCode: map[string]accounts.Account{
		"108": {ID: 12, Code: "108", Name: "외상매출금", Type: accounts.TypeAsset, Active: true},
	}}
	svc := NewService(repo, accountsRepo, &mockPartnersRepo{}, nil)

	summaries, err := svc.Summary(context.Background(), SummaryQuery{
		CompanyID:  1,
		FiscalYear: 1,
		From:       time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	require.Len(t, summaries, 1)
	assert.Equal(t, "108", summaries[0].AccountCode)
	assert.Equal(t, 400000.0, summaries[0].Opening)
	assert.Equal(t, 400000.0, summaries[0].Closing)
	assert.Zero(t, summaries[0].TotalDebit)
}

func TestSummaryOpeningCombinesCarryAndRoll(t *testing.T) {
	repo := &mockLedgerRepo{
		activity: []AccountSummary{
			{AccountID: 10, AccountCode: "101", TotalDebit: 100000},
		},
		openings:    map[int64]float64{10: 1000000},
		nets:        map[int64]float64{10: 250000},
		periodStart: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		periodEnd:   time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	accountsRepo := &mockAccountsRepo{byCode: map[string]accounts.Account{
		"101": {ID: 10, Code: "101", Type: accounts.TypeAsset, Active: true},
	}}
	svc := NewService(repo, accountsRepo, &mockPartnersRepo{}, nil)

	summaries, err := svc.Summary(context.Background(), SummaryQuery{
		CompanyID:  1,
		FiscalYear: 1,
		From:       time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	require.Len(t, summaries, 1)
	assert.Equal(t, 1250000.0, summaries[0].Opening)
	assert.Equal(t, 1350000.0, summaries[0].Closing)
}

func TestPartnerLedgerIncludesPreWindowActivity(t *testing.T) {
	repo := &mockLedgerRepo{
		partnerNets: map[int64]float64{20: 150000},
		periodStart: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		periodEnd:   time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	accountsRepo := &mockAccountsRepo{byCode: map[string]accounts.Account{
		"108": {ID: 12, Code: "108", Type: accounts.TypeAsset, Active: true},
	}}
	svc := NewService(repo, accountsRepo, &mockPartnersRepo{}, nil)

	summaries, err := svc.PartnerLedger(context.Background(), 1, "108", 1,
		time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), time.Time{})
	require.NoError(t, err)

	require.Len(t, summaries, 1)
	assert.Equal(t, int64(20), summaries[0].PartnerID)
	assert.Equal(t, 150000.0, summaries[0].Opening)
	assert.Equal(t, 150000.0, summaries[0].Closing)
}
