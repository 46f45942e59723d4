package domain

import "errors"

var (
	ErrNotFound    = errors.New("sector_not_found")
	ErrInvalidName = errors.New("invalid_sector_name")
	ErrNameTaken   = errors.New("sector_name_taken")
)
