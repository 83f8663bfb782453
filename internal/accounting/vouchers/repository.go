package vouchers

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerkeep/ledgerkeep/internal/accounting/shared"
	"github.com/ledgerkeep/ledgerkeep/internal/masterdata/accounts"
	"github.com/ledgerkeep/ledgerkeep/internal/masterdata/partners"
	"github.com/ledgerkeep/ledgerkeep/internal/platform/db"
	"github.com/ledgerkeep/ledgerkeep/internal/platform/httpx"
)

// Repository encapsulates DB operations for vouchers.
type Repository interface {
	Get(ctx context.Context, companyID, voucherID int64) (Voucher, error)
	ListByDate(ctx context.Context, companyID int64, from, to time.Time) ([]Voucher, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes the operations available inside one posting
// transaction. Reference-data lookups are duplicated here so validation can
// run against the same snapshot that the insert commits into.
type TxRepository interface {
	GetAccountByCode(ctx context.Context, companyID int64, code string) (accounts.Account, error)
	GetPartnerByCode(ctx context.Context, companyID int64, code string) (partners.BusinessPartner, error)
	// PeriodClosedForDate reports whether the date falls inside a closed
	// fiscal period. Dates outside any period are postable.
	PeriodClosedForDate(ctx context.Context, companyID int64, date time.Time) (bool, error)
	NextSequence(ctx context.Context, companyID int64, date time.Time) (int, error)
	InsertVoucher(ctx context.Context, v *Voucher) error
	InsertLines(ctx context.Context, voucherID int64, lines []Line) error
	GetVoucherForUpdate(ctx context.Context, companyID, voucherID int64) (Voucher, error)
	ReplaceLines(ctx context.Context, voucherID int64, lines []Line) error
	UpdateTotals(ctx context.Context, voucherID int64, debit, credit float64) error
	DeleteVoucher(ctx context.Context, companyID, voucherID int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const voucherColumns = `id, company_id, date, number, description, kind, partner_id, trade_type, supply_amount, tax_amount, total_debit, total_credit, source_id, created_at, updated_at`

func (r *repository) Get(ctx context.Context, companyID, voucherID int64) (Voucher, error) {
	row := r.db.QueryRow(ctx, `SELECT `+voucherColumns+` FROM vouchers WHERE company_id=$1 AND id=$2`, companyID, voucherID)
	v, err := scanVoucher(row)
	if err != nil {
		return Voucher{}, err
	}
	lines, err := queryLines(ctx, r.db, voucherID)
	if err != nil {
		return Voucher{}, err
	}
	v.Lines = lines
	return v, nil
}

func (r *repository) ListByDate(ctx context.Context, companyID int64, from, to time.Time) ([]Voucher, error) {
	rows, err := r.db.Query(ctx, `SELECT `+voucherColumns+` FROM vouchers
WHERE company_id=$1 AND date BETWEEN $2 AND $3 ORDER BY date ASC, number ASC`, companyID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []Voucher
	for rows.Next() {
		v, err := scanVoucher(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, rows.Err()
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) GetAccountByCode(ctx context.Context, companyID int64, code string) (accounts.Account, error) {
	var a accounts.Account
	err := r.tx.QueryRow(ctx, `SELECT id, company_id, code, name, type, active, created_at, updated_at
FROM accounts WHERE company_id=$1 AND code=$2`, companyID, code).
		Scan(&a.ID, &a.CompanyID, &a.Code, &a.Name, &a.Type, &a.Active, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return accounts.Account{}, shared.ErrAccountNotFound
		}
		return accounts.Account{}, err
	}
	return a, nil
}

func (r *txRepository) GetPartnerByCode(ctx context.Context, companyID int64, code string) (partners.BusinessPartner, error) {
	var p partners.BusinessPartner
	err := r.tx.QueryRow(ctx, `SELECT id, company_id, code, name, active, created_at, updated_at
FROM business_partners WHERE company_id=$1 AND code=$2`, companyID, code).
		Scan(&p.ID, &p.CompanyID, &p.Code, &p.Name, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return partners.BusinessPartner{}, shared.ErrPartnerNotFound
		}
		return partners.BusinessPartner{}, err
	}
	return p, nil
}

func (r *txRepository) PeriodClosedForDate(ctx context.Context, companyID int64, date time.Time) (bool, error) {
	var closed bool
	err := r.tx.QueryRow(ctx, `SELECT closed FROM fiscal_periods
WHERE company_id=$1 AND $2 BETWEEN start_date AND end_date`, companyID, date).Scan(&closed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return closed, nil
}

// NextSequence derives the next voucher number transactionally as
// max(existing)+1 so no separate sequence table is needed.
func (r *txRepository) NextSequence(ctx context.Context, companyID int64, date time.Time) (int, error) {
	var max int
	err := r.tx.QueryRow(ctx, `SELECT COALESCE(MAX(split_part(number, '-', 2)::int), 0)
FROM vouchers WHERE company_id=$1 AND date=$2`, companyID, date).Scan(&max)
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

func (r *txRepository) InsertVoucher(ctx context.Context, v *Voucher) error {
	err := r.tx.QueryRow(ctx, `INSERT INTO vouchers (company_id, date, number, description, kind, partner_id, trade_type, supply_amount, tax_amount, total_debit, total_credit, source_id)
VALUES ($1,$2,$3,$4,$5,$6,NULLIF($7,''),$8,$9,$10,$11,$12)
RETURNING id, created_at, updated_at`,
		v.CompanyID, v.Date, v.Number, v.Description, v.Kind, v.PartnerID, string(v.TradeType), v.SupplyAmount, v.TaxAmount, v.TotalDebit, v.TotalCredit, v.SourceID).
		Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.ConstraintName == "uq_vouchers_company_number" {
			return httpx.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *txRepository) InsertLines(ctx context.Context, voucherID int64, lines []Line) error {
	for _, line := range lines {
		if _, err := r.tx.Exec(ctx, `INSERT INTO voucher_lines (voucher_id, line_no, account_id, partner_id, debit_amount, credit_amount, description, class_code)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			voucherID, line.LineNo, line.AccountID, line.PartnerID, line.DebitAmount, line.CreditAmount, line.Description, line.ClassCode); err != nil {
			return err
		}
	}
	return nil
}

func (r *txRepository) GetVoucherForUpdate(ctx context.Context, companyID, voucherID int64) (Voucher, error) {
	row := r.tx.QueryRow(ctx, `SELECT `+voucherColumns+` FROM vouchers WHERE company_id=$1 AND id=$2 FOR UPDATE`, companyID, voucherID)
	v, err := scanVoucher(row)
	if err != nil {
		return Voucher{}, err
	}
	lines, err := queryLines(ctx, r.tx, voucherID)
	if err != nil {
		return Voucher{}, err
	}
	v.Lines = lines
	return v, nil
}

func (r *txRepository) ReplaceLines(ctx context.Context, voucherID int64, lines []Line) error {
	if _, err := r.tx.Exec(ctx, `DELETE FROM voucher_lines WHERE voucher_id=$1`, voucherID); err != nil {
		return err
	}
	return r.InsertLines(ctx, voucherID, lines)
}

func (r *txRepository) UpdateTotals(ctx context.Context, voucherID int64, debit, credit float64) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE vouchers SET total_debit=$2, total_credit=$3, updated_at=NOW() WHERE id=$1`, voucherID, debit, credit)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrVoucherNotFound
	}
	return nil
}

func (r *txRepository) DeleteVoucher(ctx context.Context, companyID, voucherID int64) error {
	if _, err := r.tx.Exec(ctx, `DELETE FROM voucher_lines WHERE voucher_id=$1`, voucherID); err != nil {
		return err
	}
	cmd, err := r.tx.Exec(ctx, `DELETE FROM vouchers WHERE company_id=$1 AND id=$2`, companyID, voucherID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrVoucherNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVoucher(row rowScanner) (Voucher, error) {
	var v Voucher
	var tradeType *string
	err := row.Scan(&v.ID, &v.CompanyID, &v.Date, &v.Number, &v.Description, &v.Kind, &v.PartnerID, &tradeType,
		&v.SupplyAmount, &v.TaxAmount, &v.TotalDebit, &v.TotalCredit, &v.SourceID, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Voucher{}, shared.ErrVoucherNotFound
		}
		return Voucher{}, err
	}
	if tradeType != nil {
		v.TradeType = TradeType(*tradeType)
	}
	return v, nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func queryLines(ctx context.Context, q querier, voucherID int64) ([]Line, error) {
	rows, err := q.Query(ctx, `SELECT id, voucher_id, line_no, account_id, partner_id, debit_amount, credit_amount, description, class_code
FROM voucher_lines WHERE voucher_id=$1 ORDER BY line_no ASC`, voucherID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var lines []Line
	for rows.Next() {
		var line Line
		if err := rows.Scan(&line.ID, &line.VoucherID, &line.LineNo, &line.AccountID, &line.PartnerID,
			&line.DebitAmount, &line.CreditAmount, &line.Description, &line.ClassCode); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}
