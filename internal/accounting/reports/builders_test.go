package reports

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleActivity() []AccountActivity {
	return []AccountActivity{
		{AccountID: 1, AccountCode: "101", AccountName: "현금", AccountType: "ASSET", Opening: 1000000, Debit: 900000, Credit: 600000},
		{AccountID: 2, AccountCode: "253", AccountName: "미지급금", AccountType: "LIABILITY", Opening: -400000},
		{AccountID: 3, AccountCode: "331", AccountName: "자본금", AccountType: "EQUITY", Opening: -600000},
		{AccountID: 4, AccountCode: "401", AccountName: "매출", AccountType: "REVENUE", Credit: 900000},
		{AccountID: 5, AccountCode: "801", AccountName: "급여", AccountType: "EXPENSE", Debit: 600000},
		{AccountID: 6, AccountCode: "999", AccountName: "이월이익잉여금", AccountType: "EQUITY"},
	}
}

func TestBuildTrialBalance(t *testing.T) {
	tb := BuildTrialBalance(2, sampleActivity())

	require.Len(t, tb.Rows, 5, "inactive accounts omitted")
	cash := tb.Rows[0]
	assert.Equal(t, "101", cash.AccountCode)
	assert.Equal(t, 1000000.0, cash.OpeningDebit)
	assert.Equal(t, 0.0, cash.OpeningCredit)
	assert.Equal(t, 1300000.0, cash.ClosingDebit)

	liability := tb.Rows[1]
	assert.Equal(t, 400000.0, liability.OpeningCredit)
	assert.Equal(t, 400000.0, liability.ClosingCredit)

	assert.InDelta(t, tb.TotalClosingDebit, tb.TotalClosingCredit, 0.01,
		"closing debit and credit columns must total equal")
}

func TestBuildTrialBalanceSortsByCode(t *testing.T) {
	activity := []AccountActivity{
		{AccountCode: "801", AccountType: "EXPENSE", Debit: 10},
		{AccountCode: "101", AccountType: "ASSET", Debit: 10},
	}
	tb := BuildTrialBalance(2, activity)
	assert.Equal(t, "101", tb.Rows[0].AccountCode)
	assert.Equal(t, "801", tb.Rows[1].AccountCode)
}

func TestBuildBalanceSheetEquation(t *testing.T) {
	// state after full settlement: revenue and expense swept to 998,
	// 998 swept to 999
	activity := []AccountActivity{
		{AccountCode: "101", AccountType: "ASSET", Opening: 1000000, Debit: 900000, Credit: 600000},
		{AccountCode: "253", AccountType: "LIABILITY", Opening: -400000},
		{AccountCode: "331", AccountType: "EQUITY", Opening: -600000},
		{AccountCode: "401", AccountType: "REVENUE", Credit: 900000, Debit: 900000},
		{AccountCode: "801", AccountType: "EXPENSE", Debit: 600000, Credit: 600000},
		{AccountCode: "998", AccountType: "EQUITY", Credit: 900000, Debit: 900000},
		{AccountCode: "999", AccountType: "EQUITY", Credit: 300000},
	}
	bs := BuildBalanceSheet(2, activity)

	assert.Equal(t, 1300000.0, bs.TotalAssets)
	assert.Equal(t, 400000.0, bs.TotalLiabilities)
	assert.Equal(t, 900000.0, bs.TotalEquity)
	assert.InDelta(t, bs.TotalAssets, bs.TotalLiabilitiesEquity, 0.01)
}

func TestBuildBalanceSheetSkipsZeroClosings(t *testing.T) {
	bs := BuildBalanceSheet(2, []AccountActivity{
		{AccountCode: "998", AccountType: "EQUITY", Debit: 500, Credit: 500},
	})
	assert.Empty(t, bs.Equity, "settled accounts leave the sheet")
}

func TestBuildIncomeStatement(t *testing.T) {
	is := BuildIncomeStatement(2, sampleActivity())

	require.Len(t, is.Revenue, 1)
	require.Len(t, is.Expenses, 1)
	assert.Equal(t, 900000.0, is.TotalRevenue)
	assert.Equal(t, 600000.0, is.TotalExpense)
	assert.Equal(t, 300000.0, is.NetIncome)
}

func TestBuildIncomeStatementLoss(t *testing.T) {
	is := BuildIncomeStatement(2, []AccountActivity{
		{AccountCode: "401", AccountType: "REVENUE", Credit: 100000},
		{AccountCode: "801", AccountType: "EXPENSE", Debit: 250000},
	})
	assert.Equal(t, -150000.0, is.NetIncome)
}

func TestWriteTrialBalanceCSV(t *testing.T) {
	tb := BuildTrialBalance(2, sampleActivity())

	var sb strings.Builder
	require.NoError(t, WriteTrialBalanceCSV(&sb, tb))
	out := sb.String()

	assert.True(t, strings.HasPrefix(out, "# Trial Balance FY2"))
	assert.Contains(t, out, "Account Code")
	assert.Contains(t, out, "101")
	assert.Contains(t, out, "현금")
	lines := strings.Split(strings.TrimSpace(out), "\r\n")
	// comment + header + five rows + totals
	assert.Len(t, lines, 8)
}
