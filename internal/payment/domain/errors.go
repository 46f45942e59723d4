package domain

import "errors"

var (
	ErrReadingNotFound = errors.New("reading_not_found")
	ErrAlreadyPaid     = errors.New("reading_already_paid")
	ErrNoPayment       = errors.New("payment_not_found")
)
