package periods

import (
	"math"
	"sort"

	"github.com/ledgerkeep/ledgerkeep/internal/accounting/vouchers"
	"github.com/ledgerkeep/ledgerkeep/internal/masterdata/accounts"
)

// AccountNet is the closing net (debit - credit) of one account over the
// source period, opening included.
type AccountNet struct {
	AccountID int64
	Type      accounts.AccountType
	Net       float64
}

// PartnerNet is the closing net of one (account, partner) pair.
type PartnerNet struct {
	AccountID int64
	PartnerID int64
	Type      accounts.AccountType
	Net       float64
}

// Plan is the full set of rows one carry-forward run writes. Applying a
// plan replaces every existing row for the target year, so recomputing
// and reapplying is idempotent.
type Plan struct {
	ToYear      int
	AccountRows []CarryRow
	PartnerRows []CarryRow
}

// ComputePlan derives the carry-forward rows from closing nets. Only
// balance-sheet accounts carry forward; revenue and expense restart at
// zero. Nets within the balance epsilon are treated as settled.
func ComputePlan(toYear int, accountNets []AccountNet, partnerNets []PartnerNet) Plan {
	plan := Plan{ToYear: toYear}
	for _, net := range accountNets {
		if !carries(net.Type, net.Net) {
			continue
		}
		plan.AccountRows = append(plan.AccountRows, splitRow(net.AccountID, nil, net.Net))
	}
	for _, net := range partnerNets {
		if !carries(net.Type, net.Net) {
			continue
		}
		partnerID := net.PartnerID
		plan.PartnerRows = append(plan.PartnerRows, splitRow(net.AccountID, &partnerID, net.Net))
	}
	sortRows(plan.AccountRows)
	sortRows(plan.PartnerRows)
	return plan
}

func carries(typ accounts.AccountType, net float64) bool {
	if math.Abs(net) <= vouchers.BalanceEpsilon {
		return false
	}
	return accounts.Account{Type: typ}.CarriesForward()
}

// splitRow places the net on its natural column so stored rows always
// carry exactly one side.
func splitRow(accountID int64, partnerID *int64, net float64) CarryRow {
	row := CarryRow{AccountID: accountID, PartnerID: partnerID}
	if net > 0 {
		row.DebitAmount = net
	} else {
		row.CreditAmount = -net
	}
	return row
}

func sortRows(rows []CarryRow) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].AccountID != rows[j].AccountID {
			return rows[i].AccountID < rows[j].AccountID
		}
		a, b := rows[i].PartnerID, rows[j].PartnerID
		switch {
		case a == nil:
			return b != nil
		case b == nil:
			return false
		default:
			return *a < *b
		}
	})
}
