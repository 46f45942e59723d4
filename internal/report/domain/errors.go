package domain

import "errors"

var (
	ErrInvalidPeriod    = errors.New("invalid_period")
	ErrCustomerNotFound = errors.New("customer_not_found")
)
