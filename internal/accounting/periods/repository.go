package periods

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerkeep/ledgerkeep/internal/accounting/shared"
	"github.com/ledgerkeep/ledgerkeep/internal/masterdata/accounts"
	"github.com/ledgerkeep/ledgerkeep/internal/platform/db"
)

// Repository encapsulates DB operations for fiscal periods.
type Repository interface {
	GetByYear(ctx context.Context, companyID int64, fiscalYear int) (Period, error)
	List(ctx context.Context, companyID int64) ([]Period, error)
	Latest(ctx context.Context, companyID int64) (Period, error)
	Create(ctx context.Context, p *Period) error
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes the operations of one closing transaction. The
// period row lock serializes concurrent closing runs per company/year.
type TxRepository interface {
	GetByYearForUpdate(ctx context.Context, companyID int64, fiscalYear int) (Period, error)
	SetClosed(ctx context.Context, periodID int64, closed bool) error
	CreatePeriod(ctx context.Context, p *Period) error
	AccountTypes(ctx context.Context, companyID int64) (map[int64]accounts.AccountType, error)
	// OpeningNets returns carry-forward nets for the year, keyed by
	// account id (partner rows excluded).
	OpeningNets(ctx context.Context, companyID int64, fiscalYear int) (map[int64]float64, error)
	OpeningPartnerNets(ctx context.Context, companyID int64, fiscalYear int) (map[[2]int64]float64, error)
	// TurnoverNets returns posted nets per account over [from, to].
	TurnoverNets(ctx context.Context, companyID int64, from, to time.Time) (map[int64]float64, error)
	TurnoverPartnerNets(ctx context.Context, companyID int64, from, to time.Time) (map[[2]int64]float64, error)
	DeleteCarryForward(ctx context.Context, companyID int64, fiscalYear int) error
	InsertCarryForward(ctx context.Context, companyID int64, fiscalYear int, rows []CarryRow) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const periodColumns = `id, company_id, fiscal_year, start_date, end_date, closed, previous_disposal_date, current_disposal_date, created_at, updated_at`

func scanPeriod(row pgx.Row) (Period, error) {
	var p Period
	err := row.Scan(&p.ID, &p.CompanyID, &p.FiscalYear, &p.StartDate, &p.EndDate,
		&p.Closed, &p.PreviousDisposalDate, &p.CurrentDisposalDate, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Period{}, shared.ErrPeriodNotFound
	}
	if err != nil {
		return Period{}, err
	}
	return p, nil
}

func (r *repository) GetByYear(ctx context.Context, companyID int64, fiscalYear int) (Period, error) {
	row := r.db.QueryRow(ctx, `SELECT `+periodColumns+` FROM fiscal_periods
WHERE company_id=$1 AND fiscal_year=$2`, companyID, fiscalYear)
	return scanPeriod(row)
}

func (r *repository) List(ctx context.Context, companyID int64) ([]Period, error) {
	rows, err := r.db.Query(ctx, `SELECT `+periodColumns+` FROM fiscal_periods
WHERE company_id=$1 ORDER BY fiscal_year`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []Period
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *repository) Latest(ctx context.Context, companyID int64) (Period, error) {
	row := r.db.QueryRow(ctx, `SELECT `+periodColumns+` FROM fiscal_periods
WHERE company_id=$1 ORDER BY fiscal_year DESC LIMIT 1`, companyID)
	return scanPeriod(row)
}

func (r *repository) Create(ctx context.Context, p *Period) error {
	return insertPeriod(ctx, r.db, p)
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) GetByYearForUpdate(ctx context.Context, companyID int64, fiscalYear int) (Period, error) {
	row := r.tx.QueryRow(ctx, `SELECT `+periodColumns+` FROM fiscal_periods
WHERE company_id=$1 AND fiscal_year=$2 FOR UPDATE`, companyID, fiscalYear)
	return scanPeriod(row)
}

func (r *txRepository) SetClosed(ctx context.Context, periodID int64, closed bool) error {
	_, err := r.tx.Exec(ctx, `UPDATE fiscal_periods SET closed=$2, updated_at=now() WHERE id=$1`, periodID, closed)
	return err
}

func (r *txRepository) CreatePeriod(ctx context.Context, p *Period) error {
	return insertPeriod(ctx, r.tx, p)
}

func (r *txRepository) AccountTypes(ctx context.Context, companyID int64) (map[int64]accounts.AccountType, error) {
	rows, err := r.tx.Query(ctx, `SELECT id, type FROM accounts WHERE company_id=$1`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	types := make(map[int64]accounts.AccountType)
	for rows.Next() {
		var id int64
		var typ accounts.AccountType
		if err := rows.Scan(&id, &typ); err != nil {
			return nil, err
		}
		types[id] = typ
	}
	return types, rows.Err()
}

func (r *txRepository) OpeningNets(ctx context.Context, companyID int64, fiscalYear int) (map[int64]float64, error) {
	rows, err := r.tx.Query(ctx, `
SELECT account_id, SUM(debit_amount - credit_amount)
FROM carry_forward_balances
WHERE company_id=$1 AND fiscal_year=$2 AND partner_id IS NULL
GROUP BY account_id`, companyID, fiscalYear)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanNets(rows)
}

func (r *txRepository) OpeningPartnerNets(ctx context.Context, companyID int64, fiscalYear int) (map[[2]int64]float64, error) {
	rows, err := r.tx.Query(ctx, `
SELECT account_id, partner_id, SUM(debit_amount - credit_amount)
FROM carry_forward_balances
WHERE company_id=$1 AND fiscal_year=$2 AND partner_id IS NOT NULL
GROUP BY account_id, partner_id`, companyID, fiscalYear)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPairNets(rows)
}

func (r *txRepository) TurnoverNets(ctx context.Context, companyID int64, from, to time.Time) (map[int64]float64, error) {
	rows, err := r.tx.Query(ctx, `
SELECT l.account_id, SUM(l.debit_amount - l.credit_amount)
FROM voucher_lines l
JOIN vouchers v ON v.id = l.voucher_id
WHERE v.company_id=$1 AND v.date BETWEEN $2 AND $3
GROUP BY l.account_id`, companyID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanNets(rows)
}

func (r *txRepository) TurnoverPartnerNets(ctx context.Context, companyID int64, from, to time.Time) (map[[2]int64]float64, error) {
	rows, err := r.tx.Query(ctx, `
SELECT l.account_id, l.partner_id, SUM(l.debit_amount - l.credit_amount)
FROM voucher_lines l
JOIN vouchers v ON v.id = l.voucher_id
WHERE v.company_id=$1 AND v.date BETWEEN $2 AND $3 AND l.partner_id IS NOT NULL
GROUP BY l.account_id, l.partner_id`, companyID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPairNets(rows)
}

func (r *txRepository) DeleteCarryForward(ctx context.Context, companyID int64, fiscalYear int) error {
	_, err := r.tx.Exec(ctx, `DELETE FROM carry_forward_balances
WHERE company_id=$1 AND fiscal_year=$2`, companyID, fiscalYear)
	return err
}

func (r *txRepository) InsertCarryForward(ctx context.Context, companyID int64, fiscalYear int, rows []CarryRow) error {
	for _, row := range rows {
		_, err := r.tx.Exec(ctx, `
INSERT INTO carry_forward_balances (company_id, fiscal_year, account_id, partner_id, debit_amount, credit_amount, created_at)
VALUES ($1, $2, $3, $4, $5, $6, now())`,
			companyID, fiscalYear, row.AccountID, row.PartnerID, row.DebitAmount, row.CreditAmount)
		if err != nil {
			return err
		}
	}
	return nil
}

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func insertPeriod(ctx context.Context, q rowQuerier, p *Period) error {
	return q.QueryRow(ctx, `
INSERT INTO fiscal_periods (company_id, fiscal_year, start_date, end_date, closed, created_at, updated_at)
VALUES ($1, $2, $3, $4, false, now(), now())
RETURNING id, created_at, updated_at`,
		p.CompanyID, p.FiscalYear, p.StartDate, p.EndDate).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func scanNets(rows pgx.Rows) (map[int64]float64, error) {
	nets := make(map[int64]float64)
	for rows.Next() {
		var id int64
		var net float64
		if err := rows.Scan(&id, &net); err != nil {
			return nil, err
		}
		nets[id] = net
	}
	return nets, rows.Err()
}

func scanPairNets(rows pgx.Rows) (map[[2]int64]float64, error) {
	nets := make(map[[2]int64]float64)
	for rows.Next() {
		var accountID, partnerID int64
		var net float64
		if err := rows.Scan(&accountID, &partnerID, &net); err != nil {
			return nil, err
		}
		nets[[2]int64{accountID, partnerID}] = net
	}
	return nets, rows.Err()
}
