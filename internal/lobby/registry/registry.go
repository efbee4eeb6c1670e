package registry

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/sgdat/bitfebay/internal/lobby/domain"
	"github.com/sgdat/bitfebay/internal/shared/logger"
)

var log = logger.GetLogger()

// Registry owns the canonical set of lobby users and open auctions. All
// mutating operations are serialized by one mutex and publish a fresh
// snapshot to the broadcaster before the lock is released, so every
// subscriber observes mutations in the same order and never sees a
// half-applied update.
type Registry struct {
	mu          sync.RWMutex
	users       []*domain.User
	usersByName map[string]*domain.User
	usersByID   map[int64]*domain.User
	// Active auctions in creation order; closed auctions are removed after
	// their final broadcast.
	auctions      []*domain.Auction
	auctionsByID  map[int64]*domain.Auction
	nextUserID    int64
	nextAuctionID int64
	broadcaster   Broadcaster
}

func New(b Broadcaster) *Registry {
	return &Registry{
		usersByName:  make(map[string]*domain.User),
		usersByID:    make(map[int64]*domain.User),
		auctionsByID: make(map[int64]*domain.Auction),
		broadcaster:  b,
	}
}

// RegisterUser returns the user holding username, creating it with the next
// id when the name is new. Idempotent per username. Every call publishes an
// announcement snapshot carrying the username, so all subscribers see the
// (re-)join.
func (r *Registry) RegisterUser(username string) (domain.User, Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.usersByName[username]
	if !ok {
		r.nextUserID++
		user = &domain.User{ID: r.nextUserID, Username: username}
		r.users = append(r.users, user)
		r.usersByName[username] = user
		r.usersByID[user.ID] = user
		log.Info("User registered",
			zap.Int64("userID", user.ID),
			zap.String("username", username),
		)
	}

	snap := r.snapshotLocked(username)
	r.broadcaster.Publish(snap)
	return *user, snap
}

// ListUsers returns a detached copy of the user list.
func (r *Registry) ListUsers() []domain.User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.copyUsersLocked()
}

// ListAuctions returns a detached copy of the active auctions.
func (r *Registry) ListAuctions() []domain.Auction {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.copyAuctionsLocked()
}

// CreateAuction opens a new auction owned by ownerID and broadcasts the
// updated lobby.
func (r *Registry) CreateAuction(ownerID int64, productName string, startingCost float64) (domain.Auction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	owner, ok := r.usersByID[ownerID]
	if !ok {
		return domain.Auction{}, fmt.Errorf("create auction: owner %d: %w", ownerID, domain.ErrUserNotFound)
	}

	r.nextAuctionID++
	auction := domain.NewAuction(r.nextAuctionID, productName, owner.ID, owner.Username, startingCost)
	r.auctions = append(r.auctions, auction)
	r.auctionsByID[auction.ID] = auction

	log.Info("Auction created",
		zap.Int64("auctionID", auction.ID),
		zap.String("product", productName),
		zap.Int64("ownerID", owner.ID),
		zap.Float64("startingCost", startingCost),
	)

	r.broadcaster.Publish(r.snapshotLocked(""))
	return auction.Copy(), nil
}

// SubmitBid appends a bid to the auction and promotes the bidder to leader
// when the amount strictly exceeds the current cost. Failed submissions
// publish nothing.
func (r *Registry) SubmitBid(auctionID, bidderID int64, amount float64) (domain.Auction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	auction, ok := r.auctionsByID[auctionID]
	if !ok {
		return domain.Auction{}, fmt.Errorf("submit bid: auction %d: %w", auctionID, domain.ErrAuctionNotFound)
	}
	bidder, ok := r.usersByID[bidderID]
	if !ok {
		return domain.Auction{}, fmt.Errorf("submit bid: bidder %d: %w", bidderID, domain.ErrUserNotFound)
	}

	bid := domain.NewBid(bidder.ID, bidder.Username, amount)
	if err := auction.ApplyBid(bid); err != nil {
		return domain.Auction{}, fmt.Errorf("submit bid: auction %d: %w", auctionID, err)
	}

	log.Info("Bid accepted",
		zap.Int64("auctionID", auctionID),
		zap.Int64("bidderID", bidder.ID),
		zap.Float64("amount", amount),
		zap.Float64("currentCost", auction.CurrentCost),
		zap.String("currentWinner", auction.CurrentWinner),
	)

	r.broadcaster.Publish(r.snapshotLocked(""))
	return auction.Copy(), nil
}

// CloseAuction transitions the auction to closed, broadcasts the closure
// exactly once and removes the auction from the active set. Only the owner
// may close; closing an already-closed auction is a no-op.
func (r *Registry) CloseAuction(auctionID, callerID int64) (domain.Auction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	auction, ok := r.auctionsByID[auctionID]
	if !ok {
		return domain.Auction{}, fmt.Errorf("close auction: auction %d: %w", auctionID, domain.ErrAuctionNotFound)
	}
	// Auctions in the active set are always open, so this is the first
	// close; a repeat close finds the auction already removed above.
	if err := auction.Close(callerID); err != nil {
		return domain.Auction{}, fmt.Errorf("close auction: auction %d: %w", auctionID, err)
	}

	// Snapshot before removal: the final broadcast carries the auction with
	// IsOpen=false, then it is gone from subsequent listings.
	snap := r.snapshotLocked("")
	delete(r.auctionsByID, auction.ID)
	for i, a := range r.auctions {
		if a.ID == auction.ID {
			r.auctions = append(r.auctions[:i], r.auctions[i+1:]...)
			break
		}
	}

	log.Info("Auction closed",
		zap.Int64("auctionID", auction.ID),
		zap.String("winner", auction.CurrentWinner),
		zap.Float64("finalCost", auction.CurrentCost),
	)

	r.broadcaster.Publish(snap)
	return auction.Copy(), nil
}

func (r *Registry) snapshotLocked(joinedUsername string) Snapshot {
	return Snapshot{
		JoinedUsername: joinedUsername,
		Users:          r.copyUsersLocked(),
		Auctions:       r.copyAuctionsLocked(),
	}
}

func (r *Registry) copyUsersLocked() []domain.User {
	users := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, *u)
	}
	return users
}

func (r *Registry) copyAuctionsLocked() []domain.Auction {
	auctions := make([]domain.Auction, 0, len(r.auctions))
	for _, a := range r.auctions {
		auctions = append(auctions, a.Copy())
	}
	return auctions
}
