package application

import (
	"github.com/sgdat/bitfebay/internal/lobby/domain"
	"github.com/sgdat/bitfebay/internal/lobby/registry"
)

// UserDTO exposes a lobby user on the wire.
type UserDTO struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// BidDTO exposes one recorded bid.
type BidDTO struct {
	BidderID   int64   `json:"bidder_id"`
	BidderName string  `json:"bidder_name"`
	Amount     float64 `json:"amount"`
}

// AuctionDTO exposes an auction on the wire.
type AuctionDTO struct {
	ID            int64    `json:"id"`
	ProductName   string   `json:"product_name"`
	OwnerID       int64    `json:"owner_id"`
	OwnerName     string   `json:"owner_name"`
	StartingCost  float64  `json:"starting_cost"`
	CurrentCost   float64  `json:"current_cost"`
	CurrentWinner string   `json:"current_winner"`
	IsOpen        bool     `json:"is_open"`
	Bids          []BidDTO `json:"bids"`
}

// SnapshotDTO is the lobby state pushed to streaming sessions.
type SnapshotDTO struct {
	JoinedUsername string       `json:"joined_username,omitempty"`
	Users          []UserDTO    `json:"users"`
	Auctions       []AuctionDTO `json:"auctions"`
}

func FromUser(u domain.User) UserDTO {
	return UserDTO{ID: u.ID, Username: u.Username}
}

func FromAuction(a domain.Auction) AuctionDTO {
	bids := make([]BidDTO, 0, len(a.Bids))
	for _, b := range a.Bids {
		bids = append(bids, BidDTO{
			BidderID:   b.BidderID,
			BidderName: b.BidderName,
			Amount:     b.Amount,
		})
	}
	return AuctionDTO{
		ID:            a.ID,
		ProductName:   a.ProductName,
		OwnerID:       a.OwnerID,
		OwnerName:     a.OwnerName,
		StartingCost:  a.StartingCost,
		CurrentCost:   a.CurrentCost,
		CurrentWinner: a.CurrentWinner,
		IsOpen:        a.IsOpen,
		Bids:          bids,
	}
}

func FromAuctions(auctions []domain.Auction) []AuctionDTO {
	dtos := make([]AuctionDTO, 0, len(auctions))
	for _, a := range auctions {
		dtos = append(dtos, FromAuction(a))
	}
	return dtos
}

func FromSnapshot(snap registry.Snapshot) SnapshotDTO {
	users := make([]UserDTO, 0, len(snap.Users))
	for _, u := range snap.Users {
		users = append(users, FromUser(u))
	}
	return SnapshotDTO{
		JoinedUsername: snap.JoinedUsername,
		Users:          users,
		Auctions:       FromAuctions(snap.Auctions),
	}
}
