package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerkeep/ledgerkeep/internal/accounting/vouchers"
)

func day(d int) time.Time {
	return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC)
}

func TestBuildRowsRunningBalance(t *testing.T) {
	entries := []Entry{
		{Date: day(5), VoucherNumber: "20250305-001", Kind: vouchers.KindGeneral, LineNo: 1, DebitAmount: 500000},
		{Date: day(12), VoucherNumber: "20250312-001", Kind: vouchers.KindTrade, LineNo: 1, CreditAmount: 200000},
	}
	rows := BuildRows(1000000, day(1), entries)

	require.Len(t, rows, 3)
	assert.True(t, rows[0].CarriedForward)
	assert.Equal(t, 1000000.0, rows[0].Balance)
	assert.Equal(t, 1000000.0, rows[0].DebitAmount)

	assert.Equal(t, 1500000.0, rows[1].Balance)
	assert.Equal(t, 1300000.0, rows[2].Balance)
}

func TestBuildRowsZeroOpeningSkipsSyntheticRow(t *testing.T) {
	entries := []Entry{
		{Date: day(5), VoucherNumber: "20250305-001", LineNo: 1, DebitAmount: 100},
	}
	rows := BuildRows(0, day(1), entries)
	require.Len(t, rows, 1)
	assert.False(t, rows[0].CarriedForward)
	assert.Equal(t, 100.0, rows[0].Balance)
}

func TestBuildRowsCreditOpening(t *testing.T) {
	rows := BuildRows(-250000, day(1), nil)
	require.Len(t, rows, 1)
	assert.Equal(t, 250000.0, rows[0].CreditAmount)
	assert.Equal(t, 0.0, rows[0].DebitAmount)
	assert.Equal(t, -250000.0, rows[0].Balance)
}

func TestSortEntriesCanonicalOrder(t *testing.T) {
	entries := []Entry{
		{Date: day(10), VoucherNumber: "20250310-002", LineNo: 1},
		{Date: day(5), VoucherNumber: "20250305-001", LineNo: 2},
		{Date: day(10), VoucherNumber: "20250310-001", LineNo: 3},
		{Date: day(5), VoucherNumber: "20250305-001", LineNo: 1},
	}
	SortEntries(entries)

	assert.Equal(t, 1, entries[0].LineNo)
	assert.Equal(t, "20250305-001", entries[0].VoucherNumber)
	assert.Equal(t, 2, entries[1].LineNo)
	assert.Equal(t, "20250310-001", entries[2].VoucherNumber)
	assert.Equal(t, "20250310-002", entries[3].VoucherNumber)
}

func TestSortEntriesInterleavesBothKinds(t *testing.T) {
	entries := []Entry{
		{Date: day(7), VoucherNumber: "20250307-002", Kind: vouchers.KindTrade, LineNo: 1},
		{Date: day(7), VoucherNumber: "20250307-001", Kind: vouchers.KindGeneral, LineNo: 1},
	}
	SortEntries(entries)
	assert.Equal(t, vouchers.KindGeneral, entries[0].Kind)
	assert.Equal(t, vouchers.KindTrade, entries[1].Kind)
}

func TestTotalsExcludeCarriedForward(t *testing.T) {
	rows := BuildRows(1000, day(1), []Entry{
		{Date: day(2), VoucherNumber: "20250302-001", LineNo: 1, DebitAmount: 300},
		{Date: day(3), VoucherNumber: "20250303-001", LineNo: 1, CreditAmount: 100},
	})
	debit, credit := Totals(rows)
	assert.Equal(t, 300.0, debit)
	assert.Equal(t, 100.0, credit)
}
