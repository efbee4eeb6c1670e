package websocket

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/sgdat/bitfebay/internal/lobby/application"
	"github.com/sgdat/bitfebay/internal/lobby/domain"
	"github.com/sgdat/bitfebay/internal/shared/websocket"
)

// LobbyWSHandler consumes inbound frames from the hub and drives the
// announce protocol: the first valid announce subscribes the session to
// broadcasts and replies with the assigned user id; later announces are
// idempotent re-registrations.
type LobbyWSHandler struct {
	service application.LobbyService
	hub     *websocket.Hub
}

func NewLobbyWSHandler(service application.LobbyService, hub *websocket.Hub) *LobbyWSHandler {
	return &LobbyWSHandler{
		service: service,
		hub:     hub,
	}
}

// ListenForMessages processes the hub's inbound channel until the context is
// cancelled.
func (h *LobbyWSHandler) ListenForMessages(ctx context.Context) {
	log.Info("Lobby handler started listening for inbound messages")
	for {
		select {
		case <-ctx.Done():
			log.Info("Lobby handler stopped listening for inbound messages")
			return
		case msg := <-h.hub.InboundMessages:
			go h.processMessage(ctx, msg.Client, msg.Data)
		}
	}
}

func (h *LobbyWSHandler) processMessage(ctx context.Context, client *websocket.Client, data []byte) {
	var baseMsg BaseMessage
	if err := json.Unmarshal(data, &baseMsg); err != nil {
		h.sendErrorToClient(client, "invalid message format")
		return
	}
	switch baseMsg.Type {
	case MessageTypeClientAnnounce:
		h.handleAnnounce(ctx, client, data)
	default:
		h.sendErrorToClient(client, "unknown message type")
	}
}

func (h *LobbyWSHandler) handleAnnounce(ctx context.Context, client *websocket.Client, data []byte) {
	var announce ClientAnnounceMessage
	if err := json.Unmarshal(data, &announce); err != nil {
		h.sendErrorToClient(client, "invalid announce message format")
		return
	}
	if strings.TrimSpace(announce.Payload.Username) == "" {
		h.sendErrorToClient(client, domain.ErrEmptyUsername.Error())
		return
	}

	// Subscribe before registering: the announcement broadcast triggered by
	// RegisterUser must reach this session too. Re-registering is a no-op.
	h.hub.RegisterClient(client)

	user, snap, err := h.service.Announce(ctx, announce.Payload.Username)
	if err != nil {
		h.sendErrorToClient(client, err.Error())
		return
	}

	welcome := ServerWelcomeMessage{
		BaseMessage: BaseMessage{Type: MessageTypeServerWelcome},
	}
	welcome.Payload.UserID = user.ID
	welcome.Payload.Users = snap.Users
	welcome.Payload.Auctions = snap.Auctions

	payload, err := json.Marshal(welcome)
	if err != nil {
		log.Error("failed to marshal welcome message",
			zap.String("sessionID", client.ID),
			zap.Error(err),
		)
		return
	}
	if !client.TrySend(payload) {
		log.Warn("session closed or backed up, could not deliver welcome",
			zap.String("sessionID", client.ID),
		)
		return
	}

	log.Info("Session announced",
		zap.String("sessionID", client.ID),
		zap.Int64("userID", user.ID),
		zap.String("username", user.Username),
	)
}

// sendErrorToClient serializes and sends an error frame to one session.
func (h *LobbyWSHandler) sendErrorToClient(client *websocket.Client, errorMessage string) {
	errMsg := ServerErrorMessage{
		BaseMessage: BaseMessage{Type: MessageTypeServerError},
	}
	errMsg.Payload.Error = errorMessage
	data, err := json.Marshal(errMsg)
	if err != nil {
		log.Error("failed to marshal error message", zap.Error(err))
		return
	}
	if !client.TrySend(data) {
		log.Warn("session closed or backed up, could not send error",
			zap.String("sessionID", client.ID),
		)
	}
}
