package payment

import (
	"errors"
	"math"
	"net/url"
	"strconv"
)

// Fast-payment text format constants. Field order and delimiter are fixed by
// the payment-network specification; scanning apps reject reordered payloads.
const (
	protocolMarker = "ST00012"
	delimiter      = "|"
	purposeLabel   = "water utility services"
	deepLinkBase   = "https://pay.waterworks.example/qr?data="
)

// ErrMissingIdentity is returned when the payee identity is incomplete.
// A QR code with a missing payee is worse than none.
var ErrMissingIdentity = errors.New("payment: missing account number or address")

// PaymentRequest is a deterministic fast-payment encoding of one reconciled
// amount for one account.
type PaymentRequest struct {
	Payload     string `json:"payload"`
	DeepLinkURL string `json:"deep_link_url"`
}

// Encode builds the fast-payment payload and deep link. The amount is the
// absolute value of totalDue with exactly two decimal digits; a zero amount
// encodes as amount=0.00 rather than failing, so advance payments stay
// possible. Pure function, no network.
func Encode(accountNumber, address string, totalDue float64) (PaymentRequest, error) {
	if accountNumber == "" || address == "" {
		return PaymentRequest{}, ErrMissingIdentity
	}

	amount := math.Abs(totalDue)
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}

	payload := protocolMarker +
		delimiter + "account=" + accountNumber +
		delimiter + "purpose=" + address + ", " + purposeLabel +
		delimiter + "amount=" + strconv.FormatFloat(amount, 'f', 2, 64)

	return PaymentRequest{
		Payload:     payload,
		DeepLinkURL: deepLinkBase + url.QueryEscape(payload),
	}, nil
}
