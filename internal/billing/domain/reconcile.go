package billing

import "math"

// SettledEpsilon is the 1-cent threshold below which an amount is treated as
// settled, guarding against floating-point noise in the external feed.
const SettledEpsilon = 0.01

// Debt line item categories, in their fixed display order.
const (
	CategoryOpeningDebt   = "opening_debt"
	CategoryCurrentCharge = "current_charge"
	CategoryResidual      = "unexplained_residual"
)

const (
	labelOpeningBalance     = "opening balance"
	labelOutstandingBalance = "outstanding balance"
	labelUnattributed       = "unattributed amount"
)

// DebtLineItem is one row of the reconciled breakdown.
type DebtLineItem struct {
	Label    string
	Amount   float64
	Category string
}

// Reconciliation is the result of reconciling one ledger snapshot: the
// classified breakdown, the authoritative total, and whether the account owes
// anything at all.
type Reconciliation struct {
	Items    []DebtLineItem
	TotalDue float64
	HasDebt  bool
}

// Reconcile turns a ledger snapshot into an ordered, classified list of debt
// line items. The invariant it upholds: the items always sum to TotalDue
// within SettledEpsilon, because any amount the external system asserts is
// owed but did not attribute becomes an explicit residual item. It never
// fails; parse noise degrades to zero upstream and the residual absorbs the
// difference.
func Reconcile(snapshot LedgerSnapshot) Reconciliation {
	totalDue := math.Abs(snapshot.TotalDue)
	if totalDue <= SettledEpsilon {
		// Settled accounts show no line items even when breakdown fields are
		// non-zero; a charge already offset by a payment must not alarm anyone.
		return Reconciliation{}
	}

	var items []DebtLineItem

	if len(snapshot.OpeningDebtBreakdown) > 0 {
		for _, entry := range snapshot.OpeningDebtBreakdown {
			if entry.Amount <= 0 {
				continue
			}
			label := entry.Service
			if label == "" {
				label = labelOpeningBalance
			}
			items = append(items, DebtLineItem{Label: label, Amount: entry.Amount, Category: CategoryOpeningDebt})
		}
	} else if math.Abs(snapshot.OpeningDebt) > SettledEpsilon {
		items = append(items, DebtLineItem{
			Label:    labelOpeningBalance,
			Amount:   math.Abs(snapshot.OpeningDebt),
			Category: CategoryOpeningDebt,
		})
	}

	for _, entry := range snapshot.CurrentCharges {
		if entry.TotalCharge <= 0 {
			continue
		}
		label := entry.Service
		if label == "" {
			label = labelOutstandingBalance
		}
		items = append(items, DebtLineItem{Label: label, Amount: entry.TotalCharge, Category: CategoryCurrentCharge})
	}

	if len(items) == 0 {
		// No breakdown at all, yet the account owes: show the full amount as
		// a single charge rather than as an unattributed residual.
		items = append(items, DebtLineItem{Label: labelOutstandingBalance, Amount: totalDue, Category: CategoryCurrentCharge})
		return Reconciliation{Items: items, TotalDue: totalDue, HasDebt: true}
	}

	var tableSum float64
	for _, item := range items {
		tableSum += item.Amount
	}
	if residual := totalDue - tableSum; residual > SettledEpsilon {
		items = append(items, DebtLineItem{Label: labelUnattributed, Amount: residual, Category: CategoryResidual})
	}

	return Reconciliation{Items: items, TotalDue: totalDue, HasDebt: true}
}
