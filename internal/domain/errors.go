package domain

import "errors"

// Sentinel errors returned from balance operations
var (
	ErrUserNotFound      = errors.New("user not found")      // No user with the given id
	ErrInsufficientFunds = errors.New("insufficient funds")  // Payment exceeds the current balance
)
