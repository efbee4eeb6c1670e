package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/sgdat/bitfebay/internal/lobby/domain"
	"github.com/sgdat/bitfebay/internal/lobby/registry"
)

// CreateAuctionDTO carries the input for opening an auction.
type CreateAuctionDTO struct {
	OwnerUserID  int64   `json:"owner_user_id"`
	ProductName  string  `json:"product_name"`
	StartingCost float64 `json:"starting_cost"`
}

// SubmitBidDTO carries the input for bidding on an auction.
type SubmitBidDTO struct {
	AuctionID    int64   `json:"auction_id"`
	BidderUserID int64   `json:"bidder_user_id"`
	Amount       float64 `json:"amount"`
}

// CloseAuctionDTO carries the input for closing an auction.
type CloseAuctionDTO struct {
	AuctionID    int64 `json:"auction_id"`
	CallerUserID int64 `json:"caller_user_id"`
}

// LobbyService is the application interface of the lobby module: input
// validation in front of the registry, domain-to-wire mapping behind it.
type LobbyService interface {
	// Announce registers (or re-registers) the username and returns the
	// user's identity together with the announcement snapshot.
	Announce(ctx context.Context, username string) (UserDTO, SnapshotDTO, error)
	ListAuctions(ctx context.Context) []AuctionDTO
	CreateAuction(ctx context.Context, cmd CreateAuctionDTO) ([]AuctionDTO, error)
	SubmitBid(ctx context.Context, cmd SubmitBidDTO) ([]AuctionDTO, error)
	CloseAuction(ctx context.Context, cmd CloseAuctionDTO) ([]AuctionDTO, error)
}

type lobbyService struct {
	registry *registry.Registry
}

func NewLobbyService(reg *registry.Registry) LobbyService {
	return &lobbyService{registry: reg}
}

// Announce implements LobbyService.
func (s *lobbyService) Announce(ctx context.Context, username string) (UserDTO, SnapshotDTO, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return UserDTO{}, SnapshotDTO{}, fmt.Errorf("announce: %w", domain.ErrEmptyUsername)
	}

	user, snap := s.registry.RegisterUser(username)
	return FromUser(user), FromSnapshot(snap), nil
}

// ListAuctions implements LobbyService.
func (s *lobbyService) ListAuctions(ctx context.Context) []AuctionDTO {
	return FromAuctions(s.registry.ListAuctions())
}

// CreateAuction implements LobbyService.
func (s *lobbyService) CreateAuction(ctx context.Context, cmd CreateAuctionDTO) ([]AuctionDTO, error) {
	if strings.TrimSpace(cmd.ProductName) == "" {
		return nil, fmt.Errorf("create auction: %w", domain.ErrEmptyProductName)
	}
	if cmd.StartingCost <= 0 {
		return nil, fmt.Errorf("create auction: %w", domain.ErrInvalidStartingCost)
	}

	if _, err := s.registry.CreateAuction(cmd.OwnerUserID, strings.TrimSpace(cmd.ProductName), cmd.StartingCost); err != nil {
		return nil, err
	}
	return FromAuctions(s.registry.ListAuctions()), nil
}

// SubmitBid implements LobbyService.
func (s *lobbyService) SubmitBid(ctx context.Context, cmd SubmitBidDTO) ([]AuctionDTO, error) {
	if cmd.Amount <= 0 {
		return nil, fmt.Errorf("submit bid: %w", domain.ErrInvalidAmount)
	}

	if _, err := s.registry.SubmitBid(cmd.AuctionID, cmd.BidderUserID, cmd.Amount); err != nil {
		return nil, err
	}
	return FromAuctions(s.registry.ListAuctions()), nil
}

// CloseAuction implements LobbyService.
func (s *lobbyService) CloseAuction(ctx context.Context, cmd CloseAuctionDTO) ([]AuctionDTO, error) {
	if _, err := s.registry.CloseAuction(cmd.AuctionID, cmd.CallerUserID); err != nil {
		return nil, err
	}
	return FromAuctions(s.registry.ListAuctions()), nil
}
