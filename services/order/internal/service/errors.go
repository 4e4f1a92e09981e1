package service

import "errors"

var (
	ErrValidation        = errors.New("validation")         // 400
	ErrNotFound          = errors.New("not found")          // 404
	ErrConflict          = errors.New("conflict")           // 409
	ErrInsufficientStock = errors.New("insufficient stock") // 409
	ErrIllegalTransition = errors.New("illegal transition") // 409
	ErrInvalidWebhook    = errors.New("invalid webhook")    // 400
	ErrPayment           = errors.New("payment provider")   // 400
)
