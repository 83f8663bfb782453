package partners

import "time"

// BusinessPartner is counterparty reference data (customers and suppliers
// alike) referenced by voucher lines for sub-ledger reporting. CRUD lives
// with an external collaborator; the ledger core only reads it.
type BusinessPartner struct {
	ID        int64     `json:"id"`
	CompanyID int64     `json:"company_id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
