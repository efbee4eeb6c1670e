package domain

import (
	"time"

	"github.com/google/uuid"
)

// Bid is a single bid on an auction. Bids are immutable and kept in arrival
// order, whether or not they took the lead.
type Bid struct {
	ID         uuid.UUID
	BidderID   int64
	BidderName string
	Amount     float64
	PlacedAt   time.Time
}

// NewBid creates a Bid stamped with the current time.
func NewBid(bidderID int64, bidderName string, amount float64) Bid {
	return Bid{
		ID:         uuid.New(),
		BidderID:   bidderID,
		BidderName: bidderName,
		Amount:     amount,
		PlacedAt:   time.Now().UTC(),
	}
}
