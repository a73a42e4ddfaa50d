package service

import "errors"

var (
	ErrCountryRequired        = errors.New("destination country is required")
	ErrShippingMethodNotFound = errors.New("shipping method not found")
	ErrShippingUnavailable    = errors.New("no shipping method available")
	ErrTaxRateNotFound        = errors.New("no active tax rate")
	ErrTaxRateOverlap         = errors.New("tax rate overlaps an existing validity window")
	ErrInvalidTaxRate         = errors.New("invalid tax rate")
	ErrNegativePrice          = errors.New("price cannot be negative")
	ErrInvalidDiscount        = errors.New("discount must be between 0 and 100 percent")
)
