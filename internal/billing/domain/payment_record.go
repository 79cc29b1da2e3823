package billing

import (
	"context"
	"time"
)

// PaymentRecord is a payment accepted through the portal. Records only feed
// the paid section of the bill list; amounts due always come from the
// external accounting system.
type PaymentRecord struct {
	ID            string
	AccountNumber string
	Service       string
	Period        string
	Amount        float64
	PaidAt        time.Time
	CreatedAt     time.Time
}

// PaymentRecordRepository manages locally stored payment records.
type PaymentRecordRepository interface {
	Save(ctx context.Context, record *PaymentRecord) error
	ListByAccount(ctx context.Context, accountNumber string, limit int) ([]PaymentRecord, error)
}

// PaidBills maps payment records onto paid bill entries in record order.
func PaidBills(records []PaymentRecord) []Bill {
	if len(records) == 0 {
		return nil
	}
	bills := make([]Bill, 0, len(records))
	for _, record := range records {
		bills = append(bills, Bill{
			Period:  record.Period,
			Amount:  record.Amount,
			Status:  StatusPaid,
			Service: record.Service,
		})
	}
	return bills
}
