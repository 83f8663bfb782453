package settlement

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerkeep/ledgerkeep/internal/accounting/shared"
	"github.com/ledgerkeep/ledgerkeep/internal/accounting/vouchers"
	"github.com/ledgerkeep/ledgerkeep/internal/masterdata/accounts"
)

// Marker descriptions identify generated settlement vouchers. They are
// fixed strings: deletion and report filtering match on them, so changing
// one orphans previously generated vouchers.
const (
	MarkerRevenue  = "[결산] 수익계정 → 당기순이익"
	MarkerExpense  = "[결산] 비용계정 → 당기순이익"
	MarkerRetained = "[결산] 당기순이익 → 이월이익잉여금"

	MarkerInventoryGoods    = "[결산] 기말 상품 재고액"
	MarkerInventoryMaterial = "[결산] 기말 원재료 재고액"
	MarkerInventoryFinished = "[결산] 기말 제품 재고액"
)

// Markers lists every income/retained settlement marker, in generation
// order.
var Markers = []string{MarkerRevenue, MarkerExpense, MarkerRetained}

// InventoryMarkers lists the ending-inventory voucher markers.
var InventoryMarkers = []string{MarkerInventoryGoods, MarkerInventoryMaterial, MarkerInventoryFinished}

// inventoryKinds maps each counted inventory category to the fixed account
// name it posts against and the marker identifying its voucher.
var inventoryKinds = []struct {
	AccountName string
	Marker      string
}{
	{"상품", MarkerInventoryGoods},
	{"원재료", MarkerInventoryMaterial},
	{"제품", MarkerInventoryFinished},
}

// AccountBalance is one account's net (debit - credit) over the period,
// settlement vouchers excluded.
type AccountBalance struct {
	AccountID int64
	Code      string
	Type      accounts.AccountType
	Net       float64
}

// PlannedLine is one line of a voucher to generate.
type PlannedLine struct {
	AccountID    int64
	DebitAmount  float64
	CreditAmount float64
	Description  string
}

// PlannedVoucher is one voucher to generate. SourceID ties the stored
// voucher back to the run that produced it.
type PlannedVoucher struct {
	Date        time.Time
	Description string
	SourceID    uuid.UUID
	Lines       []PlannedLine
}

// IncomePlan is the full output of one income settlement computation.
type IncomePlan struct {
	Vouchers     []PlannedVoucher
	RevenueSwept float64
	ExpenseSwept float64
}

// ComputeIncomePlan derives the vouchers that zero every revenue and
// expense balance against the net income account. Nominal accounts are
// bucketed by the SIGN of their net, not their type: a contra-revenue
// account sitting at a net debit closes through the expense voucher, so
// atypically signed balances still zero out cleanly. Balances within the
// epsilon are already settled; no activity at all yields an empty plan.
func ComputeIncomePlan(date time.Time, netIncomeID int64, balances []AccountBalance) (IncomePlan, error) {
	var plan IncomePlan

	sorted := append([]AccountBalance(nil), balances...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Code < sorted[j].Code })

	var revenueLines, expenseLines []PlannedLine
	for _, balance := range sorted {
		if balance.Type != accounts.TypeRevenue && balance.Type != accounts.TypeExpense {
			continue
		}
		if math.Abs(balance.Net) <= vouchers.BalanceEpsilon {
			continue
		}
		if balance.Net < 0 {
			// credit balance; debit it away
			amount := -balance.Net
			revenueLines = append(revenueLines, PlannedLine{
				AccountID:   balance.AccountID,
				DebitAmount: amount,
				Description: MarkerRevenue,
			})
			plan.RevenueSwept += amount
		} else {
			expenseLines = append(expenseLines, PlannedLine{
				AccountID:    balance.AccountID,
				CreditAmount: balance.Net,
				Description:  MarkerExpense,
			})
			plan.ExpenseSwept += balance.Net
		}
	}

	if len(revenueLines) > 0 {
		revenueLines = append(revenueLines, PlannedLine{
			AccountID:    netIncomeID,
			CreditAmount: plan.RevenueSwept,
			Description:  MarkerRevenue,
		})
		plan.Vouchers = append(plan.Vouchers, PlannedVoucher{
			Date:        date,
			Description: MarkerRevenue,
			SourceID:    uuid.New(),
			Lines:       revenueLines,
		})
	}
	if len(expenseLines) > 0 {
		expenseLines = append(expenseLines, PlannedLine{
			AccountID:   netIncomeID,
			DebitAmount: plan.ExpenseSwept,
			Description: MarkerExpense,
		})
		plan.Vouchers = append(plan.Vouchers, PlannedVoucher{
			Date:        date,
			Description: MarkerExpense,
			SourceID:    uuid.New(),
			Lines:       expenseLines,
		})
	}

	for _, voucher := range plan.Vouchers {
		if err := checkBalanced(voucher); err != nil {
			return IncomePlan{}, err
		}
	}
	return plan, nil
}

// ComputeRetainedPlan derives the voucher moving the accumulated net
// income balance into retained earnings. netIncomeNet is the 998 net
// after income settlement: negative for a profit, positive for a loss.
func ComputeRetainedPlan(date time.Time, netIncomeID, retainedID int64, netIncomeNet float64) (PlannedVoucher, error) {
	voucher := PlannedVoucher{
		Date:        date,
		Description: MarkerRetained,
		SourceID:    uuid.New(),
	}
	if netIncomeNet < 0 {
		// profit: clear the credit balance on 998 into 999
		amount := -netIncomeNet
		voucher.Lines = []PlannedLine{
			{AccountID: netIncomeID, DebitAmount: amount, Description: MarkerRetained},
			{AccountID: retainedID, CreditAmount: amount, Description: MarkerRetained},
		}
	} else {
		voucher.Lines = []PlannedLine{
			{AccountID: retainedID, DebitAmount: netIncomeNet, Description: MarkerRetained},
			{AccountID: netIncomeID, CreditAmount: netIncomeNet, Description: MarkerRetained},
		}
	}
	if err := checkBalanced(voucher); err != nil {
		return PlannedVoucher{}, err
	}
	return voucher, nil
}

// InventoryCount pairs a resolved inventory account with its counted
// ending amount.
type InventoryCount struct {
	AccountID int64
	Marker    string
	Amount    float64
}

// ComputeInventoryPlan derives one voucher per counted inventory category.
// Each voucher is a balanced wash on the inventory account itself: the
// debit line records the counted ending amount, which the income statement
// data reads back by marker. Zero counts are skipped.
func ComputeInventoryPlan(date time.Time, counts []InventoryCount) ([]PlannedVoucher, error) {
	var planned []PlannedVoucher
	for _, count := range counts {
		if count.Amount < 0 {
			return nil, shared.ErrNegativeAmount
		}
		if count.Amount <= vouchers.BalanceEpsilon {
			continue
		}
		voucher := PlannedVoucher{
			Date:        date,
			Description: count.Marker,
			SourceID:    uuid.New(),
			Lines: []PlannedLine{
				{AccountID: count.AccountID, DebitAmount: count.Amount, Description: count.Marker},
				{AccountID: count.AccountID, CreditAmount: count.Amount, Description: count.Marker},
			},
		}
		if err := checkBalanced(voucher); err != nil {
			return nil, err
		}
		planned = append(planned, voucher)
	}
	return planned, nil
}

func checkBalanced(v PlannedVoucher) error {
	var debit, credit float64
	for _, line := range v.Lines {
		if line.DebitAmount < 0 || line.CreditAmount < 0 {
			return shared.ErrSettlementImbalance
		}
		debit += line.DebitAmount
		credit += line.CreditAmount
	}
	if math.Abs(debit-credit) > vouchers.BalanceEpsilon {
		return shared.ErrSettlementImbalance
	}
	return nil
}
