package interfaces

import (
	"bytes"
	"testing"
	"time"

	billingapp "waterworks-portal/internal/billing/application"
	billing "waterworks-portal/internal/billing/domain"
	"waterworks-portal/internal/payment"
)

func sampleSummary(t *testing.T) billingapp.Summary {
	t.Helper()
	request, err := payment.Encode("40817000", "12 Harbor St, apt 4", 500)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return billingapp.Summary{
		AccountNumber: "40817000",
		Period:        "2026-02",
		TotalDue:      500,
		HasDebt:       true,
		Bills: []billing.Bill{
			{Period: "prior periods", Amount: 300, Status: billing.StatusOverdue, Service: "Cold water"},
			{Period: "2026-02", Amount: 200, Status: billing.StatusUnpaid, Service: "Sewerage"},
		},
		PaymentRequest: &request,
	}
}

func samplePayments() []billing.PaymentRecord {
	return []billing.PaymentRecord{
		{ID: "pay-1", AccountNumber: "40817000", Service: "Cold water", Period: "2026-01", Amount: 150, PaidAt: time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)},
	}
}

func TestBuildReceiptPDF(t *testing.T) {
	data, err := BuildReceiptPDF(sampleSummary(t), samplePayments())
	if err != nil {
		t.Fatalf("build pdf: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("expected PDF header, got %q", data[:8])
	}
}

func TestBuildReceiptPDF_NoPayments(t *testing.T) {
	if _, err := BuildReceiptPDF(sampleSummary(t), nil); err != nil {
		t.Fatalf("build pdf without payments: %v", err)
	}
}

func TestLatinize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Cold water", "Cold water"},
		{"Холодная вода", "Kholodnaya voda"},
		{"Водоотведение", "Vodootvedenie"},
		{"с. Лесновка, 9", "s. Lesnovka, 9"},
		{"Щёлково", "Shchelkovo"},
		{"水道", "??"},
	}
	for _, tc := range cases {
		if got := latinize(tc.in); got != tc.want {
			t.Fatalf("latinize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestBuildReceiptPDF_CyrillicServiceNames(t *testing.T) {
	summary := sampleSummary(t)
	summary.Bills[0].Service = "Холодная вода"
	data, err := BuildReceiptPDF(summary, nil)
	if err != nil {
		t.Fatalf("build pdf with cyrillic service: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("expected PDF header, got %q", data[:8])
	}
}

func TestBuildReceiptXLSX(t *testing.T) {
	data, err := BuildReceiptXLSX(sampleSummary(t), samplePayments())
	if err != nil {
		t.Fatalf("build xlsx: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("PK")) {
		t.Fatalf("expected zip container, got %q", data[:4])
	}
}
