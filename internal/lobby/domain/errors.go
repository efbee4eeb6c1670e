package domain

import "errors"

// Not-found family
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrAuctionNotFound = errors.New("auction not found")
	ErrAuctionNotOpen  = errors.New("auction is not open for bidding")
)

// Permission
var ErrNotOwner = errors.New("caller does not own the auction")

// Validation
var (
	ErrEmptyUsername       = errors.New("username cannot be empty")
	ErrEmptyProductName    = errors.New("product name cannot be empty")
	ErrInvalidAmount       = errors.New("bid amount must be greater than zero")
	ErrInvalidStartingCost = errors.New("starting cost must be greater than zero")
)
