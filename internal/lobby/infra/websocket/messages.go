package websocket

import "github.com/sgdat/bitfebay/internal/lobby/application"

// MessageType identifies a lobby websocket frame.
type MessageType string

const (
	MessageTypeClientAnnounce    MessageType = "client_announce"     // client announces presence with a username
	MessageTypeServerWelcome     MessageType = "server_welcome"      // server reply carrying the assigned user id
	MessageTypeServerLobbyUpdate MessageType = "server_lobby_update" // lobby snapshot pushed after every state change
	MessageTypeServerError       MessageType = "server_error"        // server-side error for this session
)

// BaseMessage is the envelope shared by all lobby frames.
type BaseMessage struct {
	Type MessageType `json:"type"`
}

// ClientAnnounceMessage is the client's presence announcement. Re-announcing
// is allowed and idempotent.
type ClientAnnounceMessage struct {
	BaseMessage
	Payload struct {
		Username string `json:"username"`
	} `json:"payload"`
}

// ServerWelcomeMessage is sent directly to the announcing session with its
// assigned user id and the current lobby state.
type ServerWelcomeMessage struct {
	BaseMessage
	Payload struct {
		UserID   int64                    `json:"user_id"`
		Users    []application.UserDTO    `json:"users"`
		Auctions []application.AuctionDTO `json:"auctions"`
	} `json:"payload"`
}

// ServerLobbyUpdateMessage is broadcast to every session after a mutation.
type ServerLobbyUpdateMessage struct {
	BaseMessage
	Payload application.SnapshotDTO `json:"payload"`
}

// ServerErrorMessage reports an error to a single session.
type ServerErrorMessage struct {
	BaseMessage
	Payload struct {
		Error string `json:"error"`
	} `json:"payload"`
}
