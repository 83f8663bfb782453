package settlement

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerkeep/ledgerkeep/internal/accounting/periods"
	"github.com/ledgerkeep/ledgerkeep/internal/accounting/shared"
	"github.com/ledgerkeep/ledgerkeep/internal/accounting/vouchers"
	"github.com/ledgerkeep/ledgerkeep/internal/masterdata/accounts"
	"github.com/ledgerkeep/ledgerkeep/internal/platform/db"
)

// Repository encapsulates DB operations for settlement runs.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes the operations of one settlement transaction.
type TxRepository interface {
	GetPeriodForUpdate(ctx context.Context, companyID int64, fiscalYear int) (periods.Period, error)
	PeriodExists(ctx context.Context, companyID int64, fiscalYear int) (bool, error)
	GetAccountByCode(ctx context.Context, companyID int64, code string) (accounts.Account, error)
	// FindAccountByName reports ok=false when no account carries the name;
	// inventory categories without a matching account are skipped.
	FindAccountByName(ctx context.Context, companyID int64, name string) (accounts.Account, bool, error)
	// DeleteMarkedVouchers removes previously generated settlement
	// vouchers in the date range, matching on the marker descriptions.
	DeleteMarkedVouchers(ctx context.Context, companyID int64, from, to time.Time, markers []string) (int64, error)
	// PeriodBalances returns net per account over the range, marked
	// vouchers excluded.
	PeriodBalances(ctx context.Context, companyID int64, from, to time.Time, markers []string) ([]AccountBalance, error)
	// AccountNet includes every voucher, settlement markers and all.
	AccountNet(ctx context.Context, companyID, accountID int64, from, to time.Time) (float64, error)
	InsertGenerated(ctx context.Context, companyID int64, pv PlannedVoucher) error
	SetDisposalDates(ctx context.Context, periodID int64, current, previous *time.Time) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) GetPeriodForUpdate(ctx context.Context, companyID int64, fiscalYear int) (periods.Period, error) {
	var p periods.Period
	err := r.tx.QueryRow(ctx, `
SELECT id, company_id, fiscal_year, start_date, end_date, closed, previous_disposal_date, current_disposal_date, created_at, updated_at
FROM fiscal_periods WHERE company_id=$1 AND fiscal_year=$2 FOR UPDATE`,
		companyID, fiscalYear).Scan(&p.ID, &p.CompanyID, &p.FiscalYear, &p.StartDate, &p.EndDate,
		&p.Closed, &p.PreviousDisposalDate, &p.CurrentDisposalDate, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return periods.Period{}, shared.ErrPeriodNotFound
	}
	if err != nil {
		return periods.Period{}, err
	}
	return p, nil
}

func (r *txRepository) PeriodExists(ctx context.Context, companyID int64, fiscalYear int) (bool, error) {
	var exists bool
	err := r.tx.QueryRow(ctx, `SELECT EXISTS (
SELECT 1 FROM fiscal_periods WHERE company_id=$1 AND fiscal_year=$2)`, companyID, fiscalYear).Scan(&exists)
	return exists, err
}

func (r *txRepository) GetAccountByCode(ctx context.Context, companyID int64, code string) (accounts.Account, error) {
	var a accounts.Account
	err := r.tx.QueryRow(ctx, `
SELECT id, company_id, code, name, type, active FROM accounts
WHERE company_id=$1 AND code=$2`, companyID, code).Scan(
		&a.ID, &a.CompanyID, &a.Code, &a.Name, &a.Type, &a.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return accounts.Account{}, shared.ErrControlAccountMissing
	}
	if err != nil {
		return accounts.Account{}, err
	}
	return a, nil
}

func (r *txRepository) FindAccountByName(ctx context.Context, companyID int64, name string) (accounts.Account, bool, error) {
	var a accounts.Account
	err := r.tx.QueryRow(ctx, `
SELECT id, company_id, code, name, type, active FROM accounts
WHERE company_id=$1 AND name=$2`, companyID, name).Scan(
		&a.ID, &a.CompanyID, &a.Code, &a.Name, &a.Type, &a.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return accounts.Account{}, false, nil
	}
	if err != nil {
		return accounts.Account{}, false, err
	}
	return a, true, nil
}

func (r *txRepository) DeleteMarkedVouchers(ctx context.Context, companyID int64, from, to time.Time, markers []string) (int64, error) {
	if _, err := r.tx.Exec(ctx, `
DELETE FROM voucher_lines
WHERE voucher_id IN (
  SELECT id FROM vouchers
  WHERE company_id=$1 AND date BETWEEN $2 AND $3 AND description = ANY($4))`,
		companyID, from, to, markers); err != nil {
		return 0, err
	}
	tag, err := r.tx.Exec(ctx, `
DELETE FROM vouchers
WHERE company_id=$1 AND date BETWEEN $2 AND $3 AND description = ANY($4)`,
		companyID, from, to, markers)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *txRepository) PeriodBalances(ctx context.Context, companyID int64, from, to time.Time, markers []string) ([]AccountBalance, error) {
	rows, err := r.tx.Query(ctx, `
SELECT a.id, a.code, a.type, SUM(l.debit_amount - l.credit_amount)
FROM voucher_lines l
JOIN vouchers v ON v.id = l.voucher_id
JOIN accounts a ON a.id = l.account_id
WHERE v.company_id=$1 AND v.date BETWEEN $2 AND $3
  AND NOT (v.description = ANY($4))
GROUP BY a.id, a.code, a.type
ORDER BY a.code`, companyID, from, to, markers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var balances []AccountBalance
	for rows.Next() {
		var b AccountBalance
		if err := rows.Scan(&b.AccountID, &b.Code, &b.Type, &b.Net); err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

func (r *txRepository) AccountNet(ctx context.Context, companyID, accountID int64, from, to time.Time) (float64, error) {
	var net float64
	err := r.tx.QueryRow(ctx, `
SELECT COALESCE(SUM(l.debit_amount - l.credit_amount), 0)
FROM voucher_lines l
JOIN vouchers v ON v.id = l.voucher_id
WHERE v.company_id=$1 AND l.account_id=$2 AND v.date BETWEEN $3 AND $4`,
		companyID, accountID, from, to).Scan(&net)
	return net, err
}

func (r *txRepository) InsertGenerated(ctx context.Context, companyID int64, pv PlannedVoucher) error {
	var seq int
	err := r.tx.QueryRow(ctx, `
SELECT COALESCE(MAX(split_part(number, '-', 2)::int), 0) + 1
FROM vouchers WHERE company_id=$1 AND date=$2`, companyID, pv.Date).Scan(&seq)
	if err != nil {
		return err
	}
	number := vouchers.FormatNumber(pv.Date, seq)

	var debit, credit float64
	for _, line := range pv.Lines {
		debit += line.DebitAmount
		credit += line.CreditAmount
	}
	var voucherID int64
	err = r.tx.QueryRow(ctx, `
INSERT INTO vouchers (company_id, date, number, description, kind, total_debit, total_credit, source_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
RETURNING id`,
		companyID, pv.Date, number, pv.Description, vouchers.KindGeneral, debit, credit, pv.SourceID).Scan(&voucherID)
	if err != nil {
		return err
	}
	for idx, line := range pv.Lines {
		if _, err := r.tx.Exec(ctx, `
INSERT INTO voucher_lines (voucher_id, line_no, account_id, debit_amount, credit_amount, description)
VALUES ($1, $2, $3, $4, $5, $6)`,
			voucherID, idx+1, line.AccountID, line.DebitAmount, line.CreditAmount, line.Description); err != nil {
			return err
		}
	}
	return nil
}

func (r *txRepository) SetDisposalDates(ctx context.Context, periodID int64, current, previous *time.Time) error {
	_, err := r.tx.Exec(ctx, `
UPDATE fiscal_periods
SET previous_disposal_date = COALESCE($2, previous_disposal_date),
    current_disposal_date = COALESCE($3, current_disposal_date),
    updated_at = now()
WHERE id=$1`, periodID, previous, current)
	return err
}
