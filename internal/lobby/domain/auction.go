package domain

// Auction is a lobby auction. Lifecycle is Open -> Closed, closed being
// terminal; bids are only accepted while open. The Registry serializes all
// access, so the entity itself carries no lock.
type Auction struct {
	ID          int64
	ProductName string
	OwnerID     int64
	OwnerName   string
	// StartingCost is the floor; CurrentCost never drops below it.
	StartingCost float64
	CurrentCost  float64
	// CurrentWinner names the bidder holding the leading bid, empty while
	// no bid has exceeded the starting cost.
	CurrentWinner string
	IsOpen        bool
	Bids          []Bid
}

// NewAuction creates an open auction with no bids.
func NewAuction(id int64, productName string, ownerID int64, ownerName string, startingCost float64) *Auction {
	return &Auction{
		ID:           id,
		ProductName:  productName,
		OwnerID:      ownerID,
		OwnerName:    ownerName,
		StartingCost: startingCost,
		CurrentCost:  startingCost,
		IsOpen:       true,
	}
}

// ApplyBid records b and promotes the bidder to leader when the amount
// strictly exceeds the current cost. Equal bids are kept in the history but
// never change the leader.
func (a *Auction) ApplyBid(b Bid) error {
	if !a.IsOpen {
		return ErrAuctionNotOpen
	}
	a.Bids = append(a.Bids, b)
	if b.Amount > a.CurrentCost {
		a.CurrentCost = b.Amount
		a.CurrentWinner = b.BidderName
	}
	return nil
}

// Close transitions the auction to its terminal state. Only the owner may
// close; closing an already-closed auction is a harmless no-op.
func (a *Auction) Close(callerID int64) error {
	if callerID != a.OwnerID {
		return ErrNotOwner
	}
	a.IsOpen = false
	return nil
}

// Copy returns a detached copy with its own bid slice, safe to hand out
// while the original keeps mutating under the registry lock.
func (a *Auction) Copy() Auction {
	c := *a
	c.Bids = append([]Bid(nil), a.Bids...)
	return c
}
