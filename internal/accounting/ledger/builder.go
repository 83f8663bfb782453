package ledger

import (
	"sort"
	"time"
)

// SortEntries orders entries by (date, voucher number, line number), the
// canonical ledger order. Voucher numbers embed the date prefix, so string
// comparison agrees with chronological order within a day.
func SortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.VoucherNumber != b.VoucherNumber {
			return a.VoucherNumber < b.VoucherNumber
		}
		return a.LineNo < b.LineNo
	})
}

// BuildRows folds sorted entries into running-balance rows. A non-zero
// opening produces a synthetic carried-forward row dated at the window
// start so every later balance includes it.
func BuildRows(opening float64, openingDate time.Time, entries []Entry) []Row {
	rows := make([]Row, 0, len(entries)+1)
	balance := opening
	if opening != 0 {
		row := Row{
			Date:           openingDate,
			Description:    "이월",
			Balance:        opening,
			CarriedForward: true,
		}
		if opening > 0 {
			row.DebitAmount = opening
		} else {
			row.CreditAmount = -opening
		}
		rows = append(rows, row)
	}
	for _, entry := range entries {
		balance += entry.DebitAmount - entry.CreditAmount
		rows = append(rows, Row{
			Date:          entry.Date,
			VoucherNumber: entry.VoucherNumber,
			Kind:          entry.Kind,
			Description:   entry.Description,
			DebitAmount:   entry.DebitAmount,
			CreditAmount:  entry.CreditAmount,
			Balance:       balance,
		})
	}
	return rows
}

// Totals sums the movement columns, excluding the carried-forward row.
func Totals(rows []Row) (debit, credit float64) {
	for _, row := range rows {
		if row.CarriedForward {
			continue
		}
		debit += row.DebitAmount
		credit += row.CreditAmount
	}
	return debit, credit
}
