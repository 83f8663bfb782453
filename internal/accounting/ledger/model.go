package ledger

import (
	"time"

	"github.com/ledgerkeep/ledgerkeep/internal/accounting/vouchers"
)

// Entry is one posted line projected into the ledger read model,
// regardless of which voucher family produced it.
type Entry struct {
	Date          time.Time     `json:"date"`
	VoucherNumber string        `json:"voucher_number"`
	Kind          vouchers.Kind `json:"kind"`
	LineNo        int           `json:"line_no"`
	AccountID     int64         `json:"account_id"`
	PartnerID     *int64        `json:"partner_id,omitempty"`
	DebitAmount   float64       `json:"debit_amount"`
	CreditAmount  float64       `json:"credit_amount"`
	Description   string        `json:"description,omitempty"`
}

// Row is one ledger line with the running balance after applying it.
// CarriedForward marks the synthetic opening row.
type Row struct {
	Date           time.Time     `json:"date"`
	VoucherNumber  string        `json:"voucher_number,omitempty"`
	Kind           vouchers.Kind `json:"kind,omitempty"`
	Description    string        `json:"description,omitempty"`
	DebitAmount    float64       `json:"debit_amount"`
	CreditAmount   float64       `json:"credit_amount"`
	Balance        float64       `json:"balance"`
	CarriedForward bool          `json:"carried_forward,omitempty"`
}

// Ledger is the running-balance statement for one account.
type Ledger struct {
	AccountCode string  `json:"account_code"`
	AccountName string  `json:"account_name"`
	Opening     float64 `json:"opening"`
	Rows        []Row   `json:"rows"`
	TotalDebit  float64 `json:"total_debit"`
	TotalCredit float64 `json:"total_credit"`
	Closing     float64 `json:"closing"`
}

// Query selects the ledger window. FiscalYear anchors the opening
// balance; a zero From defaults to the period start.
type Query struct {
	CompanyID   int64
	AccountCode string
	PartnerID   *int64
	FiscalYear  int
	From        time.Time
	To          time.Time
}

// SummaryQuery selects the aggregation window for per-account summaries.
type SummaryQuery struct {
	CompanyID  int64
	FiscalYear int
	From       time.Time
	To         time.Time
}

// AccountSummary aggregates one account over the summary window.
type AccountSummary struct {
	AccountID   int64   `json:"account_id"`
	AccountCode string  `json:"account_code"`
	AccountName string  `json:"account_name"`
	AccountType string  `json:"account_type"`
	Opening     float64 `json:"opening"`
	TotalDebit  float64 `json:"total_debit"`
	TotalCredit float64 `json:"total_credit"`
	Closing     float64 `json:"closing"`
}

// PartnerSummary aggregates one business partner over one account range.
type PartnerSummary struct {
	PartnerID   int64   `json:"partner_id"`
	PartnerCode string  `json:"partner_code"`
	PartnerName string  `json:"partner_name"`
	Opening     float64 `json:"opening"`
	TotalDebit  float64 `json:"total_debit"`
	TotalCredit float64 `json:"total_credit"`
	Closing     float64 `json:"closing"`
}
