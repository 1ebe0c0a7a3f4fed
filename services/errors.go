package services

import "errors"

// Account errors
var (
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrEmailTaken       = errors.New("email already exists")
	ErrUnauthorized     = errors.New("unauthorized")
)

// Ledger errors
var (
	ErrMalformedReservation = errors.New("malformed reservation")
)

// Checkout errors
var (
	ErrNoItemsSelected = errors.New("no items selected")
	ErrMalformedItem   = errors.New("malformed item")
	ErrNoPendingOrder  = errors.New("no pending order")
	ErrInvalidCard     = errors.New("invalid card number")
)
