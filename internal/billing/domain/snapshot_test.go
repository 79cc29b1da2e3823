package billing

import "testing"

func TestSnapshotFromDocument_LowerCamelKeys(t *testing.T) {
	parser := NewAmountParser(DefaultConvention)
	doc := map[string]any{
		"totalDue": "-1234,56",
		"paid":     "100",
		"debt":     "50",
		"debtDetail": []any{
			map[string]any{"service": "Sewage", "duty": "300"},
		},
		"charges": []any{
			map[string]any{
				"service":       "Cold water",
				"volume":        "12,5",
				"tariffPrice":   "40",
				"exemption":     "0",
				"recalculation": "0",
				"charge":        "500",
				"unit":          "m3",
			},
		},
	}

	snapshot := SnapshotFromDocument(doc, parser)
	if snapshot.TotalDue != -1234.56 {
		t.Fatalf("TotalDue = %v, want -1234.56", snapshot.TotalDue)
	}
	if snapshot.PaidThisPeriod != 100 {
		t.Fatalf("PaidThisPeriod = %v, want 100", snapshot.PaidThisPeriod)
	}
	if snapshot.OpeningDebt != 50 {
		t.Fatalf("OpeningDebt = %v, want 50", snapshot.OpeningDebt)
	}
	if len(snapshot.OpeningDebtBreakdown) != 1 || snapshot.OpeningDebtBreakdown[0].Service != "Sewage" || snapshot.OpeningDebtBreakdown[0].Amount != 300 {
		t.Fatalf("unexpected breakdown: %+v", snapshot.OpeningDebtBreakdown)
	}
	if len(snapshot.CurrentCharges) != 1 {
		t.Fatalf("expected 1 charge, got %d", len(snapshot.CurrentCharges))
	}
	charge := snapshot.CurrentCharges[0]
	if charge.Service != "Cold water" || charge.Volume != 12.5 || charge.UnitPrice != 40 || charge.TotalCharge != 500 || charge.Unit != "m3" {
		t.Fatalf("unexpected charge: %+v", charge)
	}
}

func TestSnapshotFromDocument_UpperCamelKeys(t *testing.T) {
	parser := NewAmountParser(DefaultConvention)
	doc := map[string]any{
		"TotalDue": "250.75",
		"Paid":     "10",
		"Debt":     "0",
		"Charges": []any{
			map[string]any{"Service": "Hot water", "ChargeFull": "250,75", "Unit": "m3"},
		},
	}

	snapshot := SnapshotFromDocument(doc, parser)
	if snapshot.TotalDue != 250.75 {
		t.Fatalf("TotalDue = %v, want 250.75", snapshot.TotalDue)
	}
	if len(snapshot.CurrentCharges) != 1 || snapshot.CurrentCharges[0].TotalCharge != 250.75 {
		t.Fatalf("unexpected charges: %+v", snapshot.CurrentCharges)
	}
	if snapshot.CurrentCharges[0].Service != "Hot water" {
		t.Fatalf("Service = %q, want Hot water", snapshot.CurrentCharges[0].Service)
	}
}

func TestSnapshotFromDocument_ChargeKeyBeatsChargeFull(t *testing.T) {
	parser := NewAmountParser(DefaultConvention)
	doc := map[string]any{
		"totalDue": "100",
		"charges": []any{
			map[string]any{"service": "Water", "charge": "60", "chargeFull": "100"},
		},
	}
	snapshot := SnapshotFromDocument(doc, parser)
	if snapshot.CurrentCharges[0].TotalCharge != 60 {
		t.Fatalf("TotalCharge = %v, want charge key to win over chargeFull", snapshot.CurrentCharges[0].TotalCharge)
	}
}

func TestSnapshotFromDocument_AbsentFieldsDefault(t *testing.T) {
	parser := NewAmountParser(DefaultConvention)

	snapshot := SnapshotFromDocument(map[string]any{}, parser)
	if snapshot.TotalDue != 0 || snapshot.PaidThisPeriod != 0 || snapshot.OpeningDebt != 0 {
		t.Fatalf("expected zero snapshot, got %+v", snapshot)
	}
	if snapshot.OpeningDebtBreakdown != nil || snapshot.CurrentCharges != nil {
		t.Fatalf("expected empty sequences, got %+v", snapshot)
	}

	snapshot = SnapshotFromDocument(nil, parser)
	if snapshot.TotalDue != 0 {
		t.Fatalf("nil document should produce zero snapshot")
	}
}

func TestSnapshotFromDocument_MalformedEntriesSkipped(t *testing.T) {
	parser := NewAmountParser(DefaultConvention)
	doc := map[string]any{
		"totalDue":   "10",
		"debtDetail": []any{"not-an-object", map[string]any{"service": "Sewage", "duty": "10"}},
		"charges":    "not-a-list",
	}
	snapshot := SnapshotFromDocument(doc, parser)
	if len(snapshot.OpeningDebtBreakdown) != 1 {
		t.Fatalf("expected one valid breakdown entry, got %d", len(snapshot.OpeningDebtBreakdown))
	}
	if snapshot.CurrentCharges != nil {
		t.Fatalf("expected no charges for malformed list, got %+v", snapshot.CurrentCharges)
	}
}
