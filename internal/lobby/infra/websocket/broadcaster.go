package websocket

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/sgdat/bitfebay/internal/lobby/application"
	"github.com/sgdat/bitfebay/internal/lobby/registry"
	"github.com/sgdat/bitfebay/internal/shared/logger"
	"github.com/sgdat/bitfebay/internal/shared/websocket"
)

var log = logger.GetLogger()

// SnapshotBroadcaster adapts the shared websocket hub to the registry's
// Broadcaster interface: every snapshot becomes one server_lobby_update
// frame fanned out to all sessions. The hub hand-off is non-blocking, so the
// registry never stalls on a slow subscriber.
type SnapshotBroadcaster struct {
	hub *websocket.Hub
}

func NewSnapshotBroadcaster(hub *websocket.Hub) *SnapshotBroadcaster {
	return &SnapshotBroadcaster{hub: hub}
}

// Publish implements registry.Broadcaster.
func (b *SnapshotBroadcaster) Publish(snap registry.Snapshot) {
	msg := ServerLobbyUpdateMessage{
		BaseMessage: BaseMessage{Type: MessageTypeServerLobbyUpdate},
		Payload:     application.FromSnapshot(snap),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error("failed to marshal lobby update", zap.Error(err))
		return
	}
	b.hub.Broadcast(data)
}
