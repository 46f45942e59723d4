package domain

import "errors"

var (
	ErrNotFound            = errors.New("reading_not_found")
	ErrCustomerNotFound    = errors.New("customer_not_found")
	ErrCustomerInactive    = errors.New("customer_inactive")
	ErrInvalidCustomer     = errors.New("invalid_customer")
	ErrInvalidReadingValue = errors.New("invalid_current_reading")
	ErrInvalidReadingDate  = errors.New("invalid_reading_date")
	ErrNotPending          = errors.New("reading_not_pending")
	ErrNotLatest           = errors.New("reading_not_latest")
)
