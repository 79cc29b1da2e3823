package accounts

import (
	"context"
	"errors"

	accountapp "waterworks-portal/internal/accounts/application"
	accountdomain "waterworks-portal/internal/accounts/domain"
	billingapp "waterworks-portal/internal/billing/application"
)

// Directory adapts the accounts service to the billing account directory.
type Directory struct {
	service *accountapp.Service
}

// NewDirectory constructs a directory adapter.
func NewDirectory(service *accountapp.Service) (*Directory, error) {
	if service == nil {
		return nil, errors.New("account directory: nil service")
	}
	return &Directory{service: service}, nil
}

// AccountInfo resolves one account for billing.
func (d *Directory) AccountInfo(ctx context.Context, accountNumber string) (billingapp.AccountInfo, error) {
	account, err := d.service.Get(ctx, accountNumber)
	if err != nil {
		if errors.Is(err, accountdomain.ErrAccountNotFound) {
			return billingapp.AccountInfo{}, billingapp.ErrUnknownAccount
		}
		return billingapp.AccountInfo{}, err
	}
	return billingapp.AccountInfo{
		AccountNumber: account.AccountNumber,
		Region:        account.Region,
		Address:       account.Address,
		Active:        account.Active,
	}, nil
}
