package domain

import "errors"

var (
	ErrNotFound           = errors.New("customer_not_found")
	ErrInvalidFirstName   = errors.New("invalid_first_name")
	ErrInvalidLastName    = errors.New("invalid_last_name")
	ErrInvalidSector      = errors.New("invalid_sector")
	ErrInvalidMeterNumber = errors.New("invalid_meter_number")
	ErrMeterNumberTaken   = errors.New("meter_number_taken")
)
