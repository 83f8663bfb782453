package periods

import "time"

// Period is one fiscal year of a company. Closed periods reject voucher
// mutations; disposal dates are stamped by the settlement runs.
type Period struct {
	ID                   int64      `json:"id"`
	CompanyID            int64      `json:"company_id"`
	FiscalYear           int        `json:"fiscal_year"`
	StartDate            time.Time  `json:"start_date"`
	EndDate              time.Time  `json:"end_date"`
	Closed               bool       `json:"closed"`
	PreviousDisposalDate *time.Time `json:"previous_disposal_date,omitempty"`
	CurrentDisposalDate  *time.Time `json:"current_disposal_date,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// NextRange derives the default range for the following period.
func (p Period) NextRange() (start, end time.Time) {
	start = p.EndDate.AddDate(0, 0, 1)
	end = start.AddDate(1, 0, -1)
	return start, end
}

// CarryForwardResult reports what one carry-forward run wrote.
type CarryForwardResult struct {
	FromYear        int `json:"from_year"`
	ToYear          int `json:"to_year"`
	AccountsCarried int `json:"accounts_carried"`
	PartnersCarried int `json:"partners_carried"`
}

// CarryRow is one balance row written for the target year. PartnerID nil
// means the account-level row; partner rows refine it per counterparty.
type CarryRow struct {
	AccountID    int64
	PartnerID    *int64
	DebitAmount  float64
	CreditAmount float64
}
