package billing

import "sort"

// Bill statuses, ordered by display priority.
const (
	StatusOverdue = "overdue"
	StatusUnpaid  = "unpaid"
	StatusPaid    = "paid"
)

// Bill is one user-facing invoice entry. Bills are recomputed on every view
// request; the external accounting system stays authoritative.
type Bill struct {
	Period  string  `json:"period"`
	Amount  float64 `json:"amount"`
	Status  string  `json:"status"`
	Service string  `json:"service"`
}

const periodPrior = "prior periods"

// Assemble maps reconciled line items onto displayable bills: opening debt
// becomes overdue, everything else unpaid, sorted overdue first with ties
// keeping their reconciled order. The sum of the returned amounts equals
// totalDue within SettledEpsilon whenever hasDebt holds.
func Assemble(rec Reconciliation, period string) []Bill {
	if !rec.HasDebt {
		return nil
	}

	bills := make([]Bill, 0, len(rec.Items))
	for _, item := range rec.Items {
		bill := Bill{
			Period:  period,
			Amount:  item.Amount,
			Status:  StatusUnpaid,
			Service: item.Label,
		}
		if item.Category == CategoryOpeningDebt {
			bill.Status = StatusOverdue
			bill.Period = periodPrior
		}
		bills = append(bills, bill)
	}

	SortBills(bills)
	return bills
}

// SortBills orders bills overdue, then unpaid, then paid, preserving the
// relative order of equal-status entries.
func SortBills(bills []Bill) {
	sort.SliceStable(bills, func(i, j int) bool {
		return statusRank(bills[i].Status) < statusRank(bills[j].Status)
	})
}

func statusRank(status string) int {
	switch status {
	case StatusOverdue:
		return 0
	case StatusUnpaid:
		return 1
	case StatusPaid:
		return 2
	default:
		return 3
	}
}
