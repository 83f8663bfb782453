package settlement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerkeep/ledgerkeep/internal/accounting/shared"
	"github.com/ledgerkeep/ledgerkeep/internal/masterdata/accounts"
)

var settleDate = time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)

func TestComputeIncomePlan(t *testing.T) {
	plan, err := ComputeIncomePlan(settleDate, 998, []AccountBalance{
		{AccountID: 1, Code: "401", Type: accounts.TypeRevenue, Net: -900000},
		{AccountID: 2, Code: "404", Type: accounts.TypeRevenue, Net: -100000},
		{AccountID: 3, Code: "801", Type: accounts.TypeExpense, Net: 600000},
		{AccountID: 4, Code: "101", Type: accounts.TypeAsset, Net: 400000},
	})
	require.NoError(t, err)

	require.Len(t, plan.Vouchers, 2)
	assert.Equal(t, 1000000.0, plan.RevenueSwept)
	assert.Equal(t, 600000.0, plan.ExpenseSwept)

	revenue := plan.Vouchers[0]
	assert.Equal(t, MarkerRevenue, revenue.Description)
	require.Len(t, revenue.Lines, 3)
	assert.Equal(t, 900000.0, revenue.Lines[0].DebitAmount)
	assert.Equal(t, 100000.0, revenue.Lines[1].DebitAmount)
	assert.Equal(t, int64(998), revenue.Lines[2].AccountID)
	assert.Equal(t, 1000000.0, revenue.Lines[2].CreditAmount)

	expense := plan.Vouchers[1]
	assert.Equal(t, MarkerExpense, expense.Description)
	require.Len(t, expense.Lines, 2)
	assert.Equal(t, 600000.0, expense.Lines[0].CreditAmount)
	assert.Equal(t, int64(998), expense.Lines[1].AccountID)
	assert.Equal(t, 600000.0, expense.Lines[1].DebitAmount)

	assert.NotEqual(t, revenue.SourceID, expense.SourceID)
}

func TestComputeIncomePlanNoActivity(t *testing.T) {
	plan, err := ComputeIncomePlan(settleDate, 998, nil)
	require.NoError(t, err)
	assert.Empty(t, plan.Vouchers, "zero activity is a valid no-op")
}

func TestComputeIncomePlanSkipsEpsilonBalances(t *testing.T) {
	plan, err := ComputeIncomePlan(settleDate, 998, []AccountBalance{
		{AccountID: 1, Code: "401", Type: accounts.TypeRevenue, Net: -0.004},
		{AccountID: 3, Code: "801", Type: accounts.TypeExpense, Net: 0.009},
	})
	require.NoError(t, err)
	assert.Empty(t, plan.Vouchers)
}

func TestComputeIncomePlanRevenueOnly(t *testing.T) {
	plan, err := ComputeIncomePlan(settleDate, 998, []AccountBalance{
		{AccountID: 1, Code: "401", Type: accounts.TypeRevenue, Net: -500000},
	})
	require.NoError(t, err)
	require.Len(t, plan.Vouchers, 1)
	assert.Equal(t, MarkerRevenue, plan.Vouchers[0].Description)
	assert.Zero(t, plan.ExpenseSwept)
}

func TestComputeIncomePlanBucketsBySign(t *testing.T) {
	plan, err := ComputeIncomePlan(settleDate, 998, []AccountBalance{
		{AccountID: 1, Code: "401", Type: accounts.TypeRevenue, Net: -900000},
		// sales allowance sitting at a net debit
		{AccountID: 2, Code: "402", Type: accounts.TypeRevenue, Net: 100000},
	})
	require.NoError(t, err)

	require.Len(t, plan.Vouchers, 2)
	assert.Equal(t, 900000.0, plan.RevenueSwept)
	assert.Equal(t, 100000.0, plan.ExpenseSwept)

	// the contra account closes through the credit-side voucher
	expense := plan.Vouchers[1]
	require.Len(t, expense.Lines, 2)
	assert.Equal(t, int64(2), expense.Lines[0].AccountID)
	assert.Equal(t, 100000.0, expense.Lines[0].CreditAmount)
	assert.Equal(t, int64(998), expense.Lines[1].AccountID)
	assert.Equal(t, 100000.0, expense.Lines[1].DebitAmount)
}

func TestComputeIncomePlanExpenseAtNetCredit(t *testing.T) {
	plan, err := ComputeIncomePlan(settleDate, 998, []AccountBalance{
		{AccountID: 3, Code: "801", Type: accounts.TypeExpense, Net: 600000},
		// over-reversed expense at a net credit
		{AccountID: 4, Code: "802", Type: accounts.TypeExpense, Net: -50000},
	})
	require.NoError(t, err)

	require.Len(t, plan.Vouchers, 2)
	assert.Equal(t, 50000.0, plan.RevenueSwept)
	assert.Equal(t, 600000.0, plan.ExpenseSwept)

	revenue := plan.Vouchers[0]
	assert.Equal(t, int64(4), revenue.Lines[0].AccountID)
	assert.Equal(t, 50000.0, revenue.Lines[0].DebitAmount)
}

func TestComputeInventoryPlan(t *testing.T) {
	planned, err := ComputeInventoryPlan(settleDate, []InventoryCount{
		{AccountID: 20, Marker: MarkerInventoryGoods, Amount: 300000},
		{AccountID: 21, Marker: MarkerInventoryMaterial, Amount: 0},
		{AccountID: 22, Marker: MarkerInventoryFinished, Amount: 150000},
	})
	require.NoError(t, err)

	require.Len(t, planned, 2, "zero counts are skipped")
	goods := planned[0]
	assert.Equal(t, MarkerInventoryGoods, goods.Description)
	require.Len(t, goods.Lines, 2)
	assert.Equal(t, int64(20), goods.Lines[0].AccountID)
	assert.Equal(t, 300000.0, goods.Lines[0].DebitAmount)
	assert.Equal(t, int64(20), goods.Lines[1].AccountID)
	assert.Equal(t, 300000.0, goods.Lines[1].CreditAmount)

	assert.Equal(t, MarkerInventoryFinished, planned[1].Description)
}

func TestComputeInventoryPlanRejectsNegativeCount(t *testing.T) {
	_, err := ComputeInventoryPlan(settleDate, []InventoryCount{
		{AccountID: 20, Marker: MarkerInventoryGoods, Amount: -100},
	})
	assert.ErrorIs(t, err, shared.ErrNegativeAmount)
}

func TestComputeRetainedPlanProfit(t *testing.T) {
	date := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	voucher, err := ComputeRetainedPlan(date, 998, 999, -400000)
	require.NoError(t, err)

	assert.Equal(t, MarkerRetained, voucher.Description)
	require.Len(t, voucher.Lines, 2)
	assert.Equal(t, int64(998), voucher.Lines[0].AccountID)
	assert.Equal(t, 400000.0, voucher.Lines[0].DebitAmount)
	assert.Equal(t, int64(999), voucher.Lines[1].AccountID)
	assert.Equal(t, 400000.0, voucher.Lines[1].CreditAmount)
}

func TestComputeRetainedPlanLoss(t *testing.T) {
	voucher, err := ComputeRetainedPlan(settleDate, 998, 999, 250000)
	require.NoError(t, err)

	require.Len(t, voucher.Lines, 2)
	assert.Equal(t, int64(999), voucher.Lines[0].AccountID)
	assert.Equal(t, 250000.0, voucher.Lines[0].DebitAmount)
	assert.Equal(t, int64(998), voucher.Lines[1].AccountID)
	assert.Equal(t, 250000.0, voucher.Lines[1].CreditAmount)
}
