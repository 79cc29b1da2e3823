package payment

import (
	"errors"
	"net/url"
	"strings"
	"testing"
)

func TestEncode_Payload(t *testing.T) {
	req, err := Encode("40817000", "Crimea, Lesnovka, 9", 1234.5)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.HasPrefix(req.Payload, "ST00012|") {
		t.Fatalf("payload missing protocol marker: %q", req.Payload)
	}
	if !strings.Contains(req.Payload, "account=40817000") {
		t.Fatalf("payload missing account: %q", req.Payload)
	}
	if !strings.Contains(req.Payload, "amount=1234.50") {
		t.Fatalf("payload must carry two decimal digits: %q", req.Payload)
	}
	if !strings.Contains(req.Payload, "purpose=Crimea, Lesnovka, 9, water utility services") {
		t.Fatalf("payload missing purpose: %q", req.Payload)
	}

	fields := strings.Split(req.Payload, "|")
	want := []string{"ST00012", "account=", "purpose=", "amount="}
	if len(fields) != len(want) {
		t.Fatalf("expected %d fields, got %d: %q", len(want), len(fields), req.Payload)
	}
	for i, prefix := range want {
		if !strings.HasPrefix(fields[i], prefix) {
			t.Fatalf("field %d = %q, want prefix %q", i, fields[i], prefix)
		}
	}
}

func TestEncode_MissingIdentity(t *testing.T) {
	if _, err := Encode("", "Some St. 1", 100); !errors.Is(err, ErrMissingIdentity) {
		t.Fatalf("expected ErrMissingIdentity for empty account, got %v", err)
	}
	if _, err := Encode("123", "", 100); !errors.Is(err, ErrMissingIdentity) {
		t.Fatalf("expected ErrMissingIdentity for empty address, got %v", err)
	}
}

func TestEncode_ZeroAmountDeterministic(t *testing.T) {
	req, err := Encode("123", "Some St. 1", 0)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.Contains(req.Payload, "amount=0.00") {
		t.Fatalf("zero amount must encode as 0.00: %q", req.Payload)
	}
}

func TestEncode_NegativeTotalUsesMagnitude(t *testing.T) {
	req, err := Encode("123", "Some St. 1", -321.09)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.Contains(req.Payload, "amount=321.09") {
		t.Fatalf("expected magnitude encoding: %q", req.Payload)
	}
}

func TestEncode_DeepLinkWrapsPayload(t *testing.T) {
	req, err := Encode("40817000", "Crimea, Lesnovka, 9", 1234.5)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	prefix := "https://pay.waterworks.example/qr?data="
	if !strings.HasPrefix(req.DeepLinkURL, prefix) {
		t.Fatalf("unexpected deep link: %q", req.DeepLinkURL)
	}
	decoded, err := url.QueryUnescape(strings.TrimPrefix(req.DeepLinkURL, prefix))
	if err != nil {
		t.Fatalf("unescape deep link: %v", err)
	}
	if decoded != req.Payload {
		t.Fatalf("deep link payload mismatch: %q vs %q", decoded, req.Payload)
	}
}

func TestEncode_Deterministic(t *testing.T) {
	first, err := Encode("777", "River Rd. 4", 55.5)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	second, err := Encode("777", "River Rd. 4", 55.5)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if first != second {
		t.Fatalf("encoding not deterministic: %+v vs %+v", first, second)
	}
}
