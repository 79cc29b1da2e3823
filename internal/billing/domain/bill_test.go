package billing

import (
	"math"
	"testing"
)

func TestAssemble_StatusMappingAndOrder(t *testing.T) {
	rec := Reconciliation{
		Items: []DebtLineItem{
			{Label: "Sewage", Amount: 300, Category: CategoryOpeningDebt},
			{Label: "Water", Amount: 150, Category: CategoryCurrentCharge},
			{Label: "unattributed amount", Amount: 50, Category: CategoryResidual},
		},
		TotalDue: 500,
		HasDebt:  true,
	}

	bills := Assemble(rec, "2026-09")
	if len(bills) != 3 {
		t.Fatalf("expected 3 bills, got %d", len(bills))
	}
	if bills[0].Status != StatusOverdue || bills[0].Service != "Sewage" {
		t.Fatalf("unexpected first bill: %+v", bills[0])
	}
	if bills[0].Period != "prior periods" {
		t.Fatalf("overdue bill period = %q", bills[0].Period)
	}
	if bills[1].Status != StatusUnpaid || bills[1].Period != "2026-09" {
		t.Fatalf("unexpected second bill: %+v", bills[1])
	}
	if bills[2].Status != StatusUnpaid || bills[2].Amount != 50 {
		t.Fatalf("unexpected third bill: %+v", bills[2])
	}
}

func TestAssemble_NoDebtReturnsEmpty(t *testing.T) {
	bills := Assemble(Reconciliation{}, "2026-09")
	if len(bills) != 0 {
		t.Fatalf("expected no bills, got %+v", bills)
	}
}

func TestAssemble_Conservation(t *testing.T) {
	cases := []LedgerSnapshot{
		{TotalDue: 500, OpeningDebtBreakdown: []DebtEntry{{Service: "Sewage", Amount: 300}}, CurrentCharges: []ChargeEntry{{Service: "Water", TotalCharge: 150}}},
		{TotalDue: -1234.56, CurrentCharges: []ChargeEntry{{Service: "Cold water", TotalCharge: 1234.56}}},
		{TotalDue: 321.09},
		{TotalDue: 75.5, OpeningDebt: 100},
	}

	for _, snapshot := range cases {
		rec := Reconcile(snapshot)
		if !rec.HasDebt {
			t.Fatalf("expected debt for %+v", snapshot)
		}
		bills := Assemble(rec, "2026-09")
		var sum float64
		for _, bill := range bills {
			sum += bill.Amount
		}
		if math.Abs(sum-math.Abs(snapshot.TotalDue)) > SettledEpsilon {
			t.Fatalf("bills sum %v, want %v for %+v", sum, math.Abs(snapshot.TotalDue), snapshot)
		}
	}
}

func TestSortBills_OverdueBeforeUnpaidForAnyPermutation(t *testing.T) {
	base := []Bill{
		{Service: "a", Status: StatusUnpaid},
		{Service: "b", Status: StatusOverdue},
		{Service: "c", Status: StatusPaid},
		{Service: "d", Status: StatusUnpaid},
		{Service: "e", Status: StatusOverdue},
	}

	permute(base, func(bills []Bill) {
		sorted := make([]Bill, len(bills))
		copy(sorted, bills)
		SortBills(sorted)

		lastRank := -1
		for _, bill := range sorted {
			rank := statusRank(bill.Status)
			if rank < lastRank {
				t.Fatalf("order violated: %+v", sorted)
			}
			lastRank = rank
		}
	})
}

func TestSortBills_Stable(t *testing.T) {
	bills := []Bill{
		{Service: "first", Status: StatusUnpaid},
		{Service: "second", Status: StatusUnpaid},
		{Service: "late", Status: StatusOverdue},
	}
	SortBills(bills)
	if bills[0].Service != "late" || bills[1].Service != "first" || bills[2].Service != "second" {
		t.Fatalf("stability violated: %+v", bills)
	}
}

func TestPaidBills(t *testing.T) {
	records := []PaymentRecord{
		{Service: "Water", Period: "2026-08", Amount: 420.5},
	}
	bills := PaidBills(records)
	if len(bills) != 1 || bills[0].Status != StatusPaid || bills[0].Amount != 420.5 {
		t.Fatalf("unexpected paid bills: %+v", bills)
	}
	if PaidBills(nil) != nil {
		t.Fatalf("expected nil for no records")
	}
}

// permute calls fn with every permutation of bills.
func permute(bills []Bill, fn func([]Bill)) {
	var rec func(k int)
	rec = func(k int) {
		if k == len(bills) {
			fn(bills)
			return
		}
		for i := k; i < len(bills); i++ {
			bills[k], bills[i] = bills[i], bills[k]
			rec(k + 1)
			bills[k], bills[i] = bills[i], bills[k]
		}
	}
	rec(0)
}
