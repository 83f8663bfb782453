package accounts

import "time"

// AccountType classifies an account within the chart of accounts.
type AccountType string

const (
	TypeAsset     AccountType = "ASSET"
	TypeLiability AccountType = "LIABILITY"
	TypeEquity    AccountType = "EQUITY"
	TypeRevenue   AccountType = "REVENUE"
	TypeExpense   AccountType = "EXPENSE"
)

// Side identifies the debit or credit column.
type Side string

const (
	SideDebit  Side = "DEBIT"
	SideCredit Side = "CREDIT"
)

// Reserved control account codes, one pair per company. The codes are fixed
// so closing procedures can locate them without configuration.
const (
	NetIncomeCode        = "998"
	RetainedEarningsCode = "999"
)

// Account is chart-of-accounts reference data. It is created and edited by
// an external collaborator; the ledger core only reads it.
type Account struct {
	ID        int64       `json:"id"`
	CompanyID int64       `json:"company_id"`
	Code      string      `json:"code"`
	Name      string      `json:"name"`
	Type      AccountType `json:"type"`
	Active    bool        `json:"active"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// NormalSide returns the side on which the account accumulates its balance.
func (a Account) NormalSide() Side {
	switch a.Type {
	case TypeAsset, TypeExpense:
		return SideDebit
	default:
		return SideCredit
	}
}

// CarriesForward reports whether the account's balance survives a period
// boundary. Revenue and expense balances are zeroed by settlement instead.
func (a Account) CarriesForward() bool {
	switch a.Type {
	case TypeAsset, TypeLiability, TypeEquity:
		return true
	default:
		return false
	}
}
