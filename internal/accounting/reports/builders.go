package reports

import (
	"sort"

	"github.com/ledgerkeep/ledgerkeep/internal/masterdata/accounts"
)

// BuildTrialBalance folds per-account activity into the trial balance.
// The closing columns always total equal: every posted voucher balances,
// and openings descend from balanced carry-forward runs.
func BuildTrialBalance(fiscalYear int, activity []AccountActivity) TrialBalance {
	tb := TrialBalance{FiscalYear: fiscalYear}
	sorted := sortActivity(activity)
	for _, item := range sorted {
		if item.Opening == 0 && item.Debit == 0 && item.Credit == 0 {
			continue
		}
		row := TrialBalanceRow{
			AccountCode: item.AccountCode,
			AccountName: item.AccountName,
			AccountType: item.AccountType,
			Debit:       item.Debit,
			Credit:      item.Credit,
		}
		row.OpeningDebit, row.OpeningCredit = splitNet(item.Opening)
		closing := item.Opening + item.Debit - item.Credit
		row.ClosingDebit, row.ClosingCredit = splitNet(closing)
		tb.Rows = append(tb.Rows, row)
		tb.TotalDebit += row.Debit
		tb.TotalCredit += row.Credit
		tb.TotalClosingDebit += row.ClosingDebit
		tb.TotalClosingCredit += row.ClosingCredit
	}
	return tb
}

// BuildBalanceSheet groups closing balances on their natural sides.
// After income and retained-earnings settlement the equation holds:
// assets equal liabilities plus equity.
func BuildBalanceSheet(fiscalYear int, activity []AccountActivity) BalanceSheet {
	bs := BalanceSheet{FiscalYear: fiscalYear}
	for _, item := range sortActivity(activity) {
		closing := item.Opening + item.Debit - item.Credit
		if closing == 0 {
			continue
		}
		switch accounts.AccountType(item.AccountType) {
		case accounts.TypeAsset:
			bs.Assets = append(bs.Assets, StatementItem{
				AccountCode: item.AccountCode,
				AccountName: item.AccountName,
				Amount:      closing,
			})
			bs.TotalAssets += closing
		case accounts.TypeLiability:
			bs.Liabilities = append(bs.Liabilities, StatementItem{
				AccountCode: item.AccountCode,
				AccountName: item.AccountName,
				Amount:      -closing,
			})
			bs.TotalLiabilities += -closing
		case accounts.TypeEquity:
			bs.Equity = append(bs.Equity, StatementItem{
				AccountCode: item.AccountCode,
				AccountName: item.AccountName,
				Amount:      -closing,
			})
			bs.TotalEquity += -closing
		}
	}
	bs.TotalLiabilitiesEquity = bs.TotalLiabilities + bs.TotalEquity
	return bs
}

// BuildIncomeStatement nets revenue and expense turnover. Callers feed it
// activity with settlement vouchers already excluded, otherwise the swept
// balances would cancel the statement to zero.
func BuildIncomeStatement(fiscalYear int, activity []AccountActivity) IncomeStatement {
	is := IncomeStatement{FiscalYear: fiscalYear}
	for _, item := range sortActivity(activity) {
		net := item.Debit - item.Credit
		if net == 0 {
			continue
		}
		switch accounts.AccountType(item.AccountType) {
		case accounts.TypeRevenue:
			is.Revenue = append(is.Revenue, StatementItem{
				AccountCode: item.AccountCode,
				AccountName: item.AccountName,
				Amount:      -net,
			})
			is.TotalRevenue += -net
		case accounts.TypeExpense:
			is.Expenses = append(is.Expenses, StatementItem{
				AccountCode: item.AccountCode,
				AccountName: item.AccountName,
				Amount:      net,
			})
			is.TotalExpense += net
		}
	}
	is.NetIncome = is.TotalRevenue - is.TotalExpense
	return is
}

func splitNet(net float64) (debit, credit float64) {
	if net > 0 {
		return net, 0
	}
	return 0, -net
}

func sortActivity(activity []AccountActivity) []AccountActivity {
	sorted := append([]AccountActivity(nil), activity...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].AccountCode < sorted[j].AccountCode })
	return sorted
}
