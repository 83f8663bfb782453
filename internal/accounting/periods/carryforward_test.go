package periods

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerkeep/ledgerkeep/internal/masterdata/accounts"
)

func TestComputePlanCarriesBalanceSheetOnly(t *testing.T) {
	plan := ComputePlan(2, []AccountNet{
		{AccountID: 1, Type: accounts.TypeAsset, Net: 1000000},
		{AccountID: 2, Type: accounts.TypeLiability, Net: -400000},
		{AccountID: 3, Type: accounts.TypeEquity, Net: -600000},
		{AccountID: 4, Type: accounts.TypeRevenue, Net: -900000},
		{AccountID: 5, Type: accounts.TypeExpense, Net: 300000},
	}, nil)

	require.Len(t, plan.AccountRows, 3, "revenue and expense never carry forward")
	assert.Equal(t, 2, plan.ToYear)

	assert.Equal(t, int64(1), plan.AccountRows[0].AccountID)
	assert.Equal(t, 1000000.0, plan.AccountRows[0].DebitAmount)
	assert.Equal(t, 0.0, plan.AccountRows[0].CreditAmount)

	assert.Equal(t, int64(2), plan.AccountRows[1].AccountID)
	assert.Equal(t, 400000.0, plan.AccountRows[1].CreditAmount)
	assert.Equal(t, 0.0, plan.AccountRows[1].DebitAmount)
}

func TestComputePlanSkipsSettledAccounts(t *testing.T) {
	plan := ComputePlan(2, []AccountNet{
		{AccountID: 1, Type: accounts.TypeAsset, Net: 0},
		{AccountID: 2, Type: accounts.TypeAsset, Net: 0.004},
		{AccountID: 3, Type: accounts.TypeAsset, Net: 0.02},
	}, nil)

	require.Len(t, plan.AccountRows, 1, "nets within the epsilon are settled")
	assert.Equal(t, int64(3), plan.AccountRows[0].AccountID)
}

func TestComputePlanPartnerRows(t *testing.T) {
	plan := ComputePlan(2, nil, []PartnerNet{
		{AccountID: 7, PartnerID: 20, Type: accounts.TypeAsset, Net: 150000},
		{AccountID: 7, PartnerID: 21, Type: accounts.TypeAsset, Net: -50000},
		{AccountID: 8, PartnerID: 20, Type: accounts.TypeRevenue, Net: -99999},
	})

	require.Len(t, plan.PartnerRows, 2)
	require.NotNil(t, plan.PartnerRows[0].PartnerID)
	assert.Equal(t, int64(20), *plan.PartnerRows[0].PartnerID)
	assert.Equal(t, 150000.0, plan.PartnerRows[0].DebitAmount)
	assert.Equal(t, int64(21), *plan.PartnerRows[1].PartnerID)
	assert.Equal(t, 50000.0, plan.PartnerRows[1].CreditAmount)
}

func TestComputePlanDeterministicOrder(t *testing.T) {
	first := ComputePlan(2, []AccountNet{
		{AccountID: 9, Type: accounts.TypeAsset, Net: 10},
		{AccountID: 3, Type: accounts.TypeAsset, Net: 20},
		{AccountID: 5, Type: accounts.TypeAsset, Net: 30},
	}, nil)
	second := ComputePlan(2, []AccountNet{
		{AccountID: 5, Type: accounts.TypeAsset, Net: 30},
		{AccountID: 3, Type: accounts.TypeAsset, Net: 20},
		{AccountID: 9, Type: accounts.TypeAsset, Net: 10},
	}, nil)

	assert.Equal(t, first, second, "plans are order independent")
	assert.Equal(t, int64(3), first.AccountRows[0].AccountID)
}
