package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerkeep/ledgerkeep/internal/accounting/shared"
)

// Repository reads the ledger projection. All queries touch committed
// rows only; the ledger never mutates anything.
type Repository interface {
	EntriesBetween(ctx context.Context, companyID, accountID int64, partnerID *int64, from, to time.Time) ([]Entry, error)
	// Opening returns the carry-forward net (debit - credit) for the
	// fiscal year, zero when no row exists.
	Opening(ctx context.Context, companyID int64, fiscalYear int, accountID int64, partnerID *int64) (float64, error)
	// NetBetween returns the net movement over [from, to), used to roll
	// the opening forward to a mid-period window start.
	NetBetween(ctx context.Context, companyID, accountID int64, partnerID *int64, from, to time.Time) (float64, error)
	// NetsByAccount returns the per-account net movement over [from, to),
	// one entry per account with any line in the range.
	NetsByAccount(ctx context.Context, companyID int64, from, to time.Time) (map[int64]float64, error)
	// NetsByPartner is NetsByAccount restricted to one account, keyed by
	// partner.
	NetsByPartner(ctx context.Context, companyID, accountID int64, from, to time.Time) (map[int64]float64, error)
	PeriodRange(ctx context.Context, companyID int64, fiscalYear int) (start, end time.Time, err error)
	// PeriodForDate resolves the fiscal period covering the date.
	PeriodForDate(ctx context.Context, companyID int64, date time.Time) (fiscalYear int, start, end time.Time, err error)
	ActivityByAccount(ctx context.Context, companyID int64, from, to time.Time) ([]AccountSummary, error)
	OpeningsByAccount(ctx context.Context, companyID int64, fiscalYear int) (map[int64]float64, error)
	ActivityByPartner(ctx context.Context, companyID, accountID int64, from, to time.Time) ([]PartnerSummary, error)
	OpeningsByPartner(ctx context.Context, companyID int64, fiscalYear int, accountID int64) (map[int64]float64, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) EntriesBetween(ctx context.Context, companyID, accountID int64, partnerID *int64, from, to time.Time) ([]Entry, error) {
	rows, err := r.db.Query(ctx, `
SELECT v.date, v.number, v.kind, l.line_no, l.account_id, l.partner_id,
       l.debit_amount, l.credit_amount, COALESCE(l.description, v.description)
FROM voucher_lines l
JOIN vouchers v ON v.id = l.voucher_id
WHERE v.company_id = $1 AND l.account_id = $2
  AND v.date BETWEEN $3 AND $4
  AND ($5::bigint IS NULL OR l.partner_id = $5)
ORDER BY v.date, v.number, l.line_no`, companyID, accountID, from, to, partnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Date, &e.VoucherNumber, &e.Kind, &e.LineNo,
			&e.AccountID, &e.PartnerID, &e.DebitAmount, &e.CreditAmount, &e.Description); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *repository) Opening(ctx context.Context, companyID int64, fiscalYear int, accountID int64, partnerID *int64) (float64, error) {
	var net float64
	err := r.db.QueryRow(ctx, `
SELECT COALESCE(SUM(debit_amount - credit_amount), 0)
FROM carry_forward_balances
WHERE company_id = $1 AND fiscal_year = $2 AND account_id = $3
  AND ((partner_id IS NULL AND $4::bigint IS NULL) OR partner_id = $4)`,
		companyID, fiscalYear, accountID, partnerID).Scan(&net)
	return net, err
}

func (r *repository) NetBetween(ctx context.Context, companyID, accountID int64, partnerID *int64, from, to time.Time) (float64, error) {
	var net float64
	err := r.db.QueryRow(ctx, `
SELECT COALESCE(SUM(l.debit_amount - l.credit_amount), 0)
FROM voucher_lines l
JOIN vouchers v ON v.id = l.voucher_id
WHERE v.company_id = $1 AND l.account_id = $2
  AND v.date >= $3 AND v.date < $4
  AND ($5::bigint IS NULL OR l.partner_id = $5)`,
		companyID, accountID, from, to, partnerID).Scan(&net)
	return net, err
}

func (r *repository) NetsByAccount(ctx context.Context, companyID int64, from, to time.Time) (map[int64]float64, error) {
	rows, err := r.db.Query(ctx, `
SELECT l.account_id, COALESCE(SUM(l.debit_amount - l.credit_amount), 0)
FROM voucher_lines l
JOIN vouchers v ON v.id = l.voucher_id
WHERE v.company_id = $1 AND v.date >= $2 AND v.date < $3
GROUP BY l.account_id`, companyID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	nets := make(map[int64]float64)
	for rows.Next() {
		var accountID int64
		var net float64
		if err := rows.Scan(&accountID, &net); err != nil {
			return nil, err
		}
		nets[accountID] = net
	}
	return nets, rows.Err()
}

func (r *repository) NetsByPartner(ctx context.Context, companyID, accountID int64, from, to time.Time) (map[int64]float64, error) {
	rows, err := r.db.Query(ctx, `
SELECT l.partner_id, COALESCE(SUM(l.debit_amount - l.credit_amount), 0)
FROM voucher_lines l
JOIN vouchers v ON v.id = l.voucher_id
WHERE v.company_id = $1 AND l.account_id = $2
  AND v.date >= $3 AND v.date < $4
  AND l.partner_id IS NOT NULL
GROUP BY l.partner_id`, companyID, accountID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	nets := make(map[int64]float64)
	for rows.Next() {
		var partnerID int64
		var net float64
		if err := rows.Scan(&partnerID, &net); err != nil {
			return nil, err
		}
		nets[partnerID] = net
	}
	return nets, rows.Err()
}

func (r *repository) PeriodRange(ctx context.Context, companyID int64, fiscalYear int) (time.Time, time.Time, error) {
	var start, end time.Time
	err := r.db.QueryRow(ctx, `
SELECT start_date, end_date FROM fiscal_periods
WHERE company_id = $1 AND fiscal_year = $2`, companyID, fiscalYear).Scan(&start, &end)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, time.Time{}, shared.ErrPeriodNotFound
	}
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func (r *repository) PeriodForDate(ctx context.Context, companyID int64, date time.Time) (int, time.Time, time.Time, error) {
	var fiscalYear int
	var start, end time.Time
	err := r.db.QueryRow(ctx, `
SELECT fiscal_year, start_date, end_date FROM fiscal_periods
WHERE company_id = $1 AND $2 BETWEEN start_date AND end_date`, companyID, date).Scan(&fiscalYear, &start, &end)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, time.Time{}, time.Time{}, shared.ErrPeriodNotFound
	}
	if err != nil {
		return 0, time.Time{}, time.Time{}, err
	}
	return fiscalYear, start, end, nil
}

func (r *repository) ActivityByAccount(ctx context.Context, companyID int64, from, to time.Time) ([]AccountSummary, error) {
	rows, err := r.db.Query(ctx, `
SELECT a.id, a.code, a.name, a.type,
       COALESCE(SUM(l.debit_amount), 0), COALESCE(SUM(l.credit_amount), 0)
FROM voucher_lines l
JOIN vouchers v ON v.id = l.voucher_id
JOIN accounts a ON a.id = l.account_id
WHERE v.company_id = $1 AND v.date BETWEEN $2 AND $3
GROUP BY a.id, a.code, a.name, a.type
ORDER BY a.code`, companyID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []AccountSummary
	for rows.Next() {
		var s AccountSummary
		if err := rows.Scan(&s.AccountID, &s.AccountCode, &s.AccountName, &s.AccountType,
			&s.TotalDebit, &s.TotalCredit); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

func (r *repository) OpeningsByAccount(ctx context.Context, companyID int64, fiscalYear int) (map[int64]float64, error) {
	rows, err := r.db.Query(ctx, `
SELECT account_id, COALESCE(SUM(debit_amount - credit_amount), 0)
FROM carry_forward_balances
WHERE company_id = $1 AND fiscal_year = $2 AND partner_id IS NULL
GROUP BY account_id`, companyID, fiscalYear)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	openings := make(map[int64]float64)
	for rows.Next() {
		var accountID int64
		var net float64
		if err := rows.Scan(&accountID, &net); err != nil {
			return nil, err
		}
		openings[accountID] = net
	}
	return openings, rows.Err()
}

func (r *repository) ActivityByPartner(ctx context.Context, companyID, accountID int64, from, to time.Time) ([]PartnerSummary, error) {
	rows, err := r.db.Query(ctx, `
SELECT p.id, p.code, p.name,
       COALESCE(SUM(l.debit_amount), 0), COALESCE(SUM(l.credit_amount), 0)
FROM voucher_lines l
JOIN vouchers v ON v.id = l.voucher_id
JOIN business_partners p ON p.id = l.partner_id
WHERE v.company_id = $1 AND l.account_id = $2 AND v.date BETWEEN $3 AND $4
GROUP BY p.id, p.code, p.name
ORDER BY p.code`, companyID, accountID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []PartnerSummary
	for rows.Next() {
		var s PartnerSummary
		if err := rows.Scan(&s.PartnerID, &s.PartnerCode, &s.PartnerName,
			&s.TotalDebit, &s.TotalCredit); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

func (r *repository) OpeningsByPartner(ctx context.Context, companyID int64, fiscalYear int, accountID int64) (map[int64]float64, error) {
	rows, err := r.db.Query(ctx, `
SELECT partner_id, COALESCE(SUM(debit_amount - credit_amount), 0)
FROM carry_forward_balances
WHERE company_id = $1 AND fiscal_year = $2 AND account_id = $3 AND partner_id IS NOT NULL
GROUP BY partner_id`, companyID, fiscalYear, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	openings := make(map[int64]float64)
	for rows.Next() {
		var partnerID int64
		var net float64
		if err := rows.Scan(&partnerID, &net); err != nil {
			return nil, err
		}
		openings[partnerID] = net
	}
	return openings, rows.Err()
}
