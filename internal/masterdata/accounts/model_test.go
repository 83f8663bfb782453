package accounts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalSide(t *testing.T) {
	assert.Equal(t, SideDebit, Account{Type: TypeAsset}.NormalSide())
	assert.Equal(t, SideDebit, Account{Type: TypeExpense}.NormalSide())
	assert.Equal(t, SideCredit, Account{Type: TypeLiability}.NormalSide())
	assert.Equal(t, SideCredit, Account{Type: TypeEquity}.NormalSide())
	assert.Equal(t, SideCredit, Account{Type: TypeRevenue}.NormalSide())
}

func TestCarriesForward(t *testing.T) {
	assert.True(t, Account{Type: TypeAsset}.CarriesForward())
	assert.True(t, Account{Type: TypeLiability}.CarriesForward())
	assert.True(t, Account{Type: TypeEquity}.CarriesForward())
	assert.False(t, Account{Type: TypeRevenue}.CarriesForward())
	assert.False(t, Account{Type: TypeExpense}.CarriesForward())
}
