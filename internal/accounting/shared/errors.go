package shared

import "errors"

// Validation errors: rejected before any write, recoverable by the caller
// resubmitting corrected input.
var (
	// ErrUnbalanced indicates debit != credit beyond the 0.01 epsilon.
	ErrUnbalanced = errors.New("accounting: voucher lines must balance")
	// ErrNoLines indicates a voucher without lines.
	ErrNoLines = errors.New("accounting: voucher requires at least one line")
	// ErrMixedLine indicates a line carrying both a debit and a credit amount.
	ErrMixedLine = errors.New("accounting: line cannot be both debit and credit")
	// ErrEmptyLine indicates a line with neither side set.
	ErrEmptyLine = errors.New("accounting: line requires a debit or credit amount")
	// ErrNegativeAmount indicates a negative line amount.
	ErrNegativeAmount = errors.New("accounting: line amount cannot be negative")
	// ErrAccountNotFound indicates a line referencing a missing account.
	ErrAccountNotFound = errors.New("accounting: account not found")
	// ErrAccountInactive indicates a line referencing a deactivated account.
	ErrAccountInactive = errors.New("accounting: account is inactive")
	// ErrPartnerNotFound indicates a line referencing a missing business partner.
	ErrPartnerNotFound = errors.New("accounting: business partner not found")
	// ErrPartnerInactive indicates a line referencing a deactivated partner.
	ErrPartnerInactive = errors.New("accounting: business partner is inactive")
	// ErrPartnerRequired indicates a trade voucher without a partner.
	ErrPartnerRequired = errors.New("accounting: trade voucher requires a business partner")
	// ErrDisposalDateRequired indicates missing disposal dates on retained-earnings settlement.
	ErrDisposalDateRequired = errors.New("accounting: disposal date required")
)

// State errors: the operation conflicts with current period/settlement
// state; rejected with no partial mutation.
var (
	// ErrPeriodNotFound indicates a missing fiscal period.
	ErrPeriodNotFound = errors.New("accounting: fiscal period not found")
	// ErrPeriodAlreadyClosed indicates closing a closed period.
	ErrPeriodAlreadyClosed = errors.New("accounting: fiscal period already closed")
	// ErrPeriodNotClosed indicates reopening an open period.
	ErrPeriodNotClosed = errors.New("accounting: fiscal period is not closed")
	// ErrPeriodClosedForPosting indicates a voucher mutation inside a closed period.
	ErrPeriodClosedForPosting = errors.New("accounting: fiscal period is closed for posting")
	// ErrPeriodOverlap indicates the requested period conflicts with an existing range.
	ErrPeriodOverlap = errors.New("accounting: fiscal period overlaps existing range")
	// ErrPeriodGap indicates a period that does not continue the fiscal-year sequence.
	ErrPeriodGap = errors.New("accounting: fiscal period must continue the existing sequence")
	// ErrPriorSettlementRequired indicates retained-earnings settlement before income settlement.
	ErrPriorSettlementRequired = errors.New("accounting: income settlement must run first")
	// ErrVoucherNotFound indicates a missing voucher.
	ErrVoucherNotFound = errors.New("accounting: voucher not found")
	// ErrLineNotFound indicates a missing voucher line.
	ErrLineNotFound = errors.New("accounting: voucher line not found")
	// ErrControlAccountMissing indicates the net-income or retained-earnings account is absent.
	ErrControlAccountMissing = errors.New("accounting: control account not found")
)

// Consistency errors: internal invariants failed mid-operation; the whole
// unit of work is rolled back and surfaced as an internal error.
var (
	// ErrSettlementImbalance indicates a generated settlement voucher failed the balance check.
	ErrSettlementImbalance = errors.New("accounting: settlement voucher does not balance")
	// ErrCarryForwardImbalance indicates carry-forward rows carrying both sides.
	ErrCarryForwardImbalance = errors.New("accounting: carry-forward balance must be net")
)

var validationErrs = []error{
	ErrUnbalanced, ErrNoLines, ErrMixedLine, ErrEmptyLine, ErrNegativeAmount,
	ErrAccountNotFound, ErrAccountInactive, ErrPartnerNotFound,
	ErrPartnerInactive, ErrPartnerRequired, ErrDisposalDateRequired,
}

var stateErrs = []error{
	ErrPeriodNotFound, ErrPeriodAlreadyClosed, ErrPeriodNotClosed,
	ErrPeriodClosedForPosting, ErrPeriodOverlap, ErrPeriodGap,
	ErrPriorSettlementRequired, ErrVoucherNotFound, ErrLineNotFound,
	ErrControlAccountMissing,
}

var consistencyErrs = []error{
	ErrSettlementImbalance, ErrCarryForwardImbalance,
}

func matchAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsValidation reports whether err belongs to the validation class.
func IsValidation(err error) bool { return matchAny(err, validationErrs) }

// IsState reports whether err belongs to the state class.
func IsState(err error) bool { return matchAny(err, stateErrs) }

// IsConsistency reports whether err belongs to the consistency class.
func IsConsistency(err error) bool { return matchAny(err, consistencyErrs) }
