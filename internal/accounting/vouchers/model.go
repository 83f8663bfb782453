package vouchers

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind separates the two voucher families that feed the ledger.
type Kind string

const (
	// KindGeneral is a free-form journal voucher: any account combination.
	KindGeneral Kind = "GENERAL"
	// KindTrade is a sales/purchase voucher bound to one business partner.
	KindTrade Kind = "TRADE"
)

// TradeType tags a trade voucher as a sale or a purchase.
type TradeType string

const (
	TradeSale     TradeType = "SALE"
	TradePurchase TradeType = "PURCHASE"
)

// BalanceEpsilon is the tolerance for the debit=credit invariant, in
// currency units.
const BalanceEpsilon = 0.01

// Voucher is one balanced set of debit/credit lines posted on one date.
// Trade vouchers additionally carry the partner binding and tax sub-fields;
// those fields never enter ledger arithmetic.
type Voucher struct {
	ID          int64      `json:"id"`
	CompanyID   int64      `json:"company_id"`
	Date        time.Time  `json:"date"`
	Number      string     `json:"number"`
	Description string     `json:"description"`
	Kind        Kind       `json:"kind"`
	PartnerID   *int64     `json:"partner_id,omitempty"`
	TradeType   TradeType  `json:"trade_type,omitempty"`
	SupplyAmount float64   `json:"supply_amount,omitempty"`
	TaxAmount    float64   `json:"tax_amount,omitempty"`
	TotalDebit  float64    `json:"total_debit"`
	TotalCredit float64    `json:"total_credit"`
	SourceID    *uuid.UUID `json:"source_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Lines       []Line     `json:"lines"`
}

// Line stores a debit or credit amount against one account, optionally
// attributed to a business partner for sub-ledger reporting. Exactly one of
// the two amounts is non-zero.
type Line struct {
	ID           int64   `json:"id"`
	VoucherID    int64   `json:"voucher_id"`
	LineNo       int     `json:"line_no"`
	AccountID    int64   `json:"account_id"`
	PartnerID    *int64  `json:"partner_id,omitempty"`
	DebitAmount  float64 `json:"debit_amount"`
	CreditAmount float64 `json:"credit_amount"`
	Description  string  `json:"description,omitempty"`
	ClassCode    string  `json:"class_code,omitempty"`
}

// FormatNumber renders the persisted voucher number: YYYYMMDD-NNN with NNN
// zero-padded, unique within (company, date). Ledger ordering ties break on
// this number, then on line number.
func FormatNumber(date time.Time, seq int) string {
	return fmt.Sprintf("%s-%03d", date.Format("20060102"), seq)
}

// Totals sums the line set.
func Totals(lines []Line) (debit, credit float64) {
	for _, line := range lines {
		debit += line.DebitAmount
		credit += line.CreditAmount
	}
	return debit, credit
}
