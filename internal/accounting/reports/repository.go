package reports

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerkeep/ledgerkeep/internal/accounting/shared"
)

// Repository reads the aggregates the report builders fold over.
type Repository interface {
	PeriodRange(ctx context.Context, companyID int64, fiscalYear int) (start, end time.Time, err error)
	// Activity returns per-account openings and turnover. Vouchers whose
	// description matches one of excludeMarkers are left out; pass nil to
	// include everything.
	Activity(ctx context.Context, companyID int64, fiscalYear int, from, to time.Time, excludeMarkers []string) ([]AccountActivity, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

func (r *repository) PeriodRange(ctx context.Context, companyID int64, fiscalYear int) (time.Time, time.Time, error) {
	var start, end time.Time
	err := r.db.QueryRow(ctx, `
SELECT start_date, end_date FROM fiscal_periods
WHERE company_id=$1 AND fiscal_year=$2`, companyID, fiscalYear).Scan(&start, &end)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, time.Time{}, shared.ErrPeriodNotFound
	}
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func (r *repository) Activity(ctx context.Context, companyID int64, fiscalYear int, from, to time.Time, excludeMarkers []string) ([]AccountActivity, error) {
	rows, err := r.db.Query(ctx, `
SELECT a.id, a.code, a.name, a.type,
       COALESCE(cf.net, 0),
       COALESCE(mv.debit, 0),
       COALESCE(mv.credit, 0)
FROM accounts a
LEFT JOIN (
  SELECT account_id, SUM(debit_amount - credit_amount) AS net
  FROM carry_forward_balances
  WHERE company_id=$1 AND fiscal_year=$2 AND partner_id IS NULL
  GROUP BY account_id
) cf ON cf.account_id = a.id
LEFT JOIN (
  SELECT l.account_id, SUM(l.debit_amount) AS debit, SUM(l.credit_amount) AS credit
  FROM voucher_lines l
  JOIN vouchers v ON v.id = l.voucher_id
  WHERE v.company_id=$1 AND v.date BETWEEN $3 AND $4
    AND ($5::text[] IS NULL OR NOT (v.description = ANY($5)))
  GROUP BY l.account_id
) mv ON mv.account_id = a.id
WHERE a.company_id=$1
ORDER BY a.code`, companyID, fiscalYear, from, to, excludeMarkers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []AccountActivity
	for rows.Next() {
		var item AccountActivity
		if err := rows.Scan(&item.AccountID, &item.AccountCode, &item.AccountName,
			&item.AccountType, &item.Opening, &item.Debit, &item.Credit); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}
