package vouchers

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ledgerkeep/ledgerkeep/internal/accounting/shared"
	"github.com/ledgerkeep/ledgerkeep/internal/masterdata/accounts"
)

// LineInput describes one voucher line by reference codes; the service
// resolves codes to ids inside the posting transaction.
type LineInput struct {
	AccountCode string        `json:"account_code"`
	PartnerCode string        `json:"partner_code,omitempty"`
	Side        accounts.Side `json:"side"`
	Amount      float64       `json:"amount"`
	Description string        `json:"description,omitempty"`
	ClassCode   string        `json:"class_code,omitempty"`
}

// CreateInput groups the fields required to create a voucher.
type CreateInput struct {
	CompanyID    int64
	Date         time.Time
	Number       string // empty = derive next sequence for (company, date)
	Description  string
	Kind         Kind
	PartnerCode  string // trade vouchers only
	TradeType    TradeType
	SupplyAmount float64
	TaxAmount    float64
	Lines        []LineInput
}

// Validate checks everything that does not need the database: line shape,
// per-line side exclusivity, and the balance invariant over the input set.
func (in CreateInput) Validate() error {
	if in.CompanyID == 0 {
		return errors.New("accounting: company required")
	}
	if in.Date.IsZero() {
		return errors.New("accounting: voucher date required")
	}
	switch in.Kind {
	case KindGeneral:
	case KindTrade:
		if in.PartnerCode == "" {
			return shared.ErrPartnerRequired
		}
		if in.TradeType != TradeSale && in.TradeType != TradePurchase {
			return fmt.Errorf("accounting: invalid trade type %q", in.TradeType)
		}
	default:
		return fmt.Errorf("accounting: invalid voucher kind %q", in.Kind)
	}
	if len(in.Lines) == 0 {
		return shared.ErrNoLines
	}
	var debit, credit float64
	for idx, line := range in.Lines {
		if err := line.check(); err != nil {
			return fmt.Errorf("line %d: %w", idx+1, err)
		}
		if line.Side == accounts.SideDebit {
			debit += line.Amount
		} else {
			credit += line.Amount
		}
	}
	if math.Abs(debit-credit) > BalanceEpsilon {
		return shared.ErrUnbalanced
	}
	return nil
}

func (in LineInput) check() error {
	if in.AccountCode == "" {
		return shared.ErrAccountNotFound
	}
	if in.Side != accounts.SideDebit && in.Side != accounts.SideCredit {
		return shared.ErrEmptyLine
	}
	if in.Amount < 0 {
		return shared.ErrNegativeAmount
	}
	if in.Amount == 0 {
		return shared.ErrEmptyLine
	}
	return nil
}

// ValidateLines re-checks a full resolved line set. Every mutating call
// runs this over the resulting state before anything is committed.
func ValidateLines(lines []Line) error {
	if len(lines) == 0 {
		return shared.ErrNoLines
	}
	for idx, line := range lines {
		if line.DebitAmount < 0 || line.CreditAmount < 0 {
			return fmt.Errorf("line %d: %w", idx+1, shared.ErrNegativeAmount)
		}
		if line.DebitAmount > 0 && line.CreditAmount > 0 {
			return fmt.Errorf("line %d: %w", idx+1, shared.ErrMixedLine)
		}
		if line.DebitAmount == 0 && line.CreditAmount == 0 {
			return fmt.Errorf("line %d: %w", idx+1, shared.ErrEmptyLine)
		}
	}
	debit, credit := Totals(lines)
	if math.Abs(debit-credit) > BalanceEpsilon {
		return shared.ErrUnbalanced
	}
	return nil
}
