package registry

import "github.com/sgdat/bitfebay/internal/lobby/domain"

// Snapshot is the full lobby state handed to subscribers after a mutation.
// Users and auctions are detached copies, so a snapshot is never torn by
// later writes. JoinedUsername is set when the snapshot announces a user
// joining the lobby.
type Snapshot struct {
	JoinedUsername string
	Users          []domain.User
	Auctions       []domain.Auction
}

// Broadcaster receives every snapshot the registry publishes. The registry
// invokes it while still holding its mutation lock, so implementations must
// hand the snapshot off without blocking (the websocket hub's bounded
// broadcast queue satisfies this).
type Broadcaster interface {
	Publish(snap Snapshot)
}
