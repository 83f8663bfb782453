package partners

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerkeep/ledgerkeep/internal/platform/httpx"
)

const partnerColumns = `id, company_id, code, name, active, created_at, updated_at`

// Repository reads business-partner reference data.
type Repository interface {
	Get(ctx context.Context, companyID, id int64) (BusinessPartner, error)
	GetByCode(ctx context.Context, companyID int64, code string) (BusinessPartner, error)
	List(ctx context.Context, companyID int64, activeOnly bool) ([]BusinessPartner, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) Get(ctx context.Context, companyID, id int64) (BusinessPartner, error) {
	row := r.db.QueryRow(ctx, `SELECT `+partnerColumns+` FROM business_partners WHERE company_id=$1 AND id=$2`, companyID, id)
	return scanPartner(row)
}

func (r *repository) GetByCode(ctx context.Context, companyID int64, code string) (BusinessPartner, error) {
	row := r.db.QueryRow(ctx, `SELECT `+partnerColumns+` FROM business_partners WHERE company_id=$1 AND code=$2`, companyID, code)
	return scanPartner(row)
}

func (r *repository) List(ctx context.Context, companyID int64, activeOnly bool) ([]BusinessPartner, error) {
	query := `SELECT ` + partnerColumns + ` FROM business_partners WHERE company_id=$1`
	if activeOnly {
		query += ` AND active`
	}
	query += ` ORDER BY code ASC`
	rows, err := r.db.Query(ctx, query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []BusinessPartner
	for rows.Next() {
		p, err := scanPartner(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func scanPartner(row pgx.Row) (BusinessPartner, error) {
	var p BusinessPartner
	err := row.Scan(&p.ID, &p.CompanyID, &p.Code, &p.Name, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return BusinessPartner{}, httpx.ErrNotFound
		}
		return BusinessPartner{}, err
	}
	return p, nil
}
