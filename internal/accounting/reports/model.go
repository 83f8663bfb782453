package reports

// TrialBalanceRow is one account of the trial balance. Opening and
// closing are split to the debit or credit column by sign.
type TrialBalanceRow struct {
	AccountCode   string  `json:"account_code"`
	AccountName   string  `json:"account_name"`
	AccountType   string  `json:"account_type"`
	OpeningDebit  float64 `json:"opening_debit"`
	OpeningCredit float64 `json:"opening_credit"`
	Debit         float64 `json:"debit"`
	Credit        float64 `json:"credit"`
	ClosingDebit  float64 `json:"closing_debit"`
	ClosingCredit float64 `json:"closing_credit"`
}

// TrialBalance lists every account with activity or an opening balance.
type TrialBalance struct {
	FiscalYear         int               `json:"fiscal_year"`
	Rows               []TrialBalanceRow `json:"rows"`
	TotalDebit         float64           `json:"total_debit"`
	TotalCredit        float64           `json:"total_credit"`
	TotalClosingDebit  float64           `json:"total_closing_debit"`
	TotalClosingCredit float64           `json:"total_closing_credit"`
}

// StatementItem is one line of a financial statement, on the account's
// natural side.
type StatementItem struct {
	AccountCode string  `json:"account_code"`
	AccountName string  `json:"account_name"`
	Amount      float64 `json:"amount"`
}

// BalanceSheet groups closing balances by statement section.
type BalanceSheet struct {
	FiscalYear             int             `json:"fiscal_year"`
	Assets                 []StatementItem `json:"assets"`
	Liabilities            []StatementItem `json:"liabilities"`
	Equity                 []StatementItem `json:"equity"`
	TotalAssets            float64         `json:"total_assets"`
	TotalLiabilities       float64         `json:"total_liabilities"`
	TotalEquity            float64         `json:"total_equity"`
	TotalLiabilitiesEquity float64         `json:"total_liabilities_equity"`
}

// IncomeStatement nets revenue against expenses over the period,
// settlement vouchers excluded.
type IncomeStatement struct {
	FiscalYear   int             `json:"fiscal_year"`
	Revenue      []StatementItem `json:"revenue"`
	Expenses     []StatementItem `json:"expenses"`
	TotalRevenue float64         `json:"total_revenue"`
	TotalExpense float64         `json:"total_expense"`
	NetIncome    float64         `json:"net_income"`
}

// AccountActivity is the raw per-account input to the report builders.
type AccountActivity struct {
	AccountID   int64
	AccountCode string
	AccountName string
	AccountType string
	Opening     float64
	Debit       float64
	Credit      float64
}
