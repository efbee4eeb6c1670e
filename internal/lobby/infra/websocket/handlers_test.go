package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sgdat/bitfebay/internal/lobby/application"
	"github.com/sgdat/bitfebay/internal/lobby/registry"
	sharedws "github.com/sgdat/bitfebay/internal/shared/websocket"
)

// lobbyFixture wires the full announce pipeline: hub, snapshot broadcaster,
// registry, service and the websocket handler, exactly as main does.
type lobbyFixture struct {
	hub     *sharedws.Hub
	service application.LobbyService
}

func newLobbyFixture(t *testing.T) *lobbyFixture {
	t.Helper()

	hub := sharedws.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	reg := registry.New(NewSnapshotBroadcaster(hub))
	service := application.NewLobbyService(reg)
	handler := NewLobbyWSHandler(service, hub)
	go handler.ListenForMessages(ctx)

	return &lobbyFixture{hub: hub, service: service}
}

func (f *lobbyFixture) newSession(id string) *sharedws.Client {
	return &sharedws.Client{Hub: f.hub, Send: make(chan []byte, 16), ID: id}
}

func (f *lobbyFixture) announce(t *testing.T, client *sharedws.Client, username string) {
	t.Helper()

	msg := ClientAnnounceMessage{BaseMessage: BaseMessage{Type: MessageTypeClientAnnounce}}
	msg.Payload.Username = username
	data, err := json.Marshal(msg)
	require.NoError(t, err)

	f.hub.InboundMessages <- &sharedws.ClientMessage{Client: client, Data: data}
}

// nextFrame reads one frame and returns its decoded envelope type.
func nextFrame(t *testing.T, client *sharedws.Client) (MessageType, []byte) {
	t.Helper()
	select {
	case data := <-client.Send:
		var base BaseMessage
		require.NoError(t, json.Unmarshal(data, &base))
		return base.Type, data
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for frame")
		return "", nil
	}
}

func TestLobbyWSHandler_Announce(t *testing.T) {
	t.Parallel()

	f := newLobbyFixture(t)
	client := f.newSession("session-1")
	f.announce(t, client, "alice")

	// The session receives its welcome and the join broadcast; their
	// relative order is not fixed.
	frames := map[MessageType][]byte{}
	for i := 0; i < 2; i++ {
		frameType, data := nextFrame(t, client)
		frames[frameType] = data
	}

	var welcome ServerWelcomeMessage
	require.Contains(t, frames, MessageTypeServerWelcome)
	require.NoError(t, json.Unmarshal(frames[MessageTypeServerWelcome], &welcome))
	require.Equal(t, int64(1), welcome.Payload.UserID)
	require.Len(t, welcome.Payload.Users, 1)
	require.Equal(t, "alice", welcome.Payload.Users[0].Username)

	var update ServerLobbyUpdateMessage
	require.Contains(t, frames, MessageTypeServerLobbyUpdate)
	require.NoError(t, json.Unmarshal(frames[MessageTypeServerLobbyUpdate], &update))
	require.Equal(t, "alice", update.Payload.JoinedUsername)
}

func TestLobbyWSHandler_AnnounceEmptyUsername(t *testing.T) {
	t.Parallel()

	f := newLobbyFixture(t)
	client := f.newSession("session-1")
	f.announce(t, client, "")

	frameType, data := nextFrame(t, client)
	require.Equal(t, MessageTypeServerError, frameType)

	var errMsg ServerErrorMessage
	require.NoError(t, json.Unmarshal(data, &errMsg))
	require.Contains(t, errMsg.Payload.Error, "username")
}

func TestLobbyWSHandler_ReannounceIsIdempotent(t *testing.T) {
	t.Parallel()

	f := newLobbyFixture(t)
	client := f.newSession("session-1")

	f.announce(t, client, "alice")
	for i := 0; i < 2; i++ {
		nextFrame(t, client)
	}

	f.announce(t, client, "alice")
	frames := map[MessageType][]byte{}
	for i := 0; i < 2; i++ {
		frameType, data := nextFrame(t, client)
		frames[frameType] = data
	}

	var welcome ServerWelcomeMessage
	require.Contains(t, frames, MessageTypeServerWelcome)
	require.NoError(t, json.Unmarshal(frames[MessageTypeServerWelcome], &welcome))
	// Same identity on re-announce, and still a single lobby user.
	require.Equal(t, int64(1), welcome.Payload.UserID)
	require.Len(t, welcome.Payload.Users, 1)
}

func TestLobbyWSHandler_SecondSessionSeesMutations(t *testing.T) {
	t.Parallel()

	f := newLobbyFixture(t)
	first := f.newSession("session-1")
	f.announce(t, first, "alice")
	for i := 0; i < 2; i++ {
		nextFrame(t, first)
	}

	second := f.newSession("session-2")
	f.announce(t, second, "bob")

	// The earlier session observes bob joining.
	frameType, data := nextFrame(t, first)
	require.Equal(t, MessageTypeServerLobbyUpdate, frameType)
	var update ServerLobbyUpdateMessage
	require.NoError(t, json.Unmarshal(data, &update))
	require.Equal(t, "bob", update.Payload.JoinedUsername)
	require.Len(t, update.Payload.Users, 2)

	// A unary mutation reaches both sessions.
	for i := 0; i < 2; i++ {
		nextFrame(t, second)
	}
	_, err := f.service.CreateAuction(context.Background(), application.CreateAuctionDTO{
		OwnerUserID: 1, ProductName: "Widget", StartingCost: 10.0,
	})
	require.NoError(t, err)

	for _, client := range []*sharedws.Client{first, second} {
		frameType, data := nextFrame(t, client)
		require.Equal(t, MessageTypeServerLobbyUpdate, frameType)
		require.NoError(t, json.Unmarshal(data, &update))
		require.Len(t, update.Payload.Auctions, 1)
		require.Equal(t, "Widget", update.Payload.Auctions[0].ProductName)
	}
}

func TestLobbyWSHandler_UnknownMessageType(t *testing.T) {
	t.Parallel()

	f := newLobbyFixture(t)
	client := f.newSession("session-1")

	f.hub.InboundMessages <- &sharedws.ClientMessage{Client: client, Data: []byte(`{"type":"mystery"}`)}

	frameType, _ := nextFrame(t, client)
	require.Equal(t, MessageTypeServerError, frameType)
}

// drainUntilClosed consumes a session's outbound frames until the hub
// closes its send channel.
func drainUntilClosed(t *testing.T, client *sharedws.Client) {
	t.Helper()
	for {
		select {
		case _, ok := <-client.Send:
			if !ok {
				return
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for session close")
		}
	}
}

func TestLobbyWSHandler_FrameFromDisconnectedSession(t *testing.T) {
	t.Parallel()

	f := newLobbyFixture(t)
	gone := f.newSession("session-1")
	f.announce(t, gone, "alice")
	for i := 0; i < 2; i++ {
		nextFrame(t, gone)
	}

	// The peer drops and the hub closes the session's send channel, but
	// frames its read pump queued beforehand still reach the handler.
	f.hub.UnregisterClient(gone)
	drainUntilClosed(t, gone)
	f.announce(t, gone, "alice")
	f.hub.InboundMessages <- &sharedws.ClientMessage{Client: gone, Data: []byte(`{"type":"mystery"}`)}

	// The dead session's welcome and error frames are dropped, it stays
	// out of the fan-out set, and the lobby keeps serving new sessions.
	live := f.newSession("session-2")
	f.announce(t, live, "bob")
	frames := map[MessageType][]byte{}
	for len(frames) < 2 {
		frameType, data := nextFrame(t, live)
		frames[frameType] = data
	}
	require.Contains(t, frames, MessageTypeServerWelcome)
	require.Contains(t, frames, MessageTypeServerLobbyUpdate)
	require.False(t, gone.TrySend([]byte("late")))
}
