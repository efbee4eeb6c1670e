package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/sgdat/bitfebay/internal/lobby/application"
	lobbyhttp "github.com/sgdat/bitfebay/internal/lobby/infra/http"
	lobbyws "github.com/sgdat/bitfebay/internal/lobby/infra/websocket"
	"github.com/sgdat/bitfebay/internal/lobby/registry"
	"github.com/sgdat/bitfebay/internal/shared/config"
	"github.com/sgdat/bitfebay/internal/shared/httpserver"
	"github.com/sgdat/bitfebay/internal/shared/logger"
	"github.com/sgdat/bitfebay/internal/shared/websocket"
)

func main() {
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting BitfeBay lobby server...")

	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := websocket.NewHub()
	go hub.Run(ctx)

	broadcaster := lobbyws.NewSnapshotBroadcaster(hub)
	reg := registry.New(broadcaster)
	service := application.NewLobbyService(reg)

	wsHandler := lobbyws.NewLobbyWSHandler(service, hub)
	go wsHandler.ListenForMessages(ctx)

	server := httpserver.NewServer(cfg.ShutdownTimeout)
	lobbyhttp.RegisterRoutes(server.App(), service)
	lobbyws.RegisterRoutes(server.App(), hub)

	if err := server.Start(cfg.HTTPAddr); err != nil {
		log.Fatal("HTTP server failed", zap.Error(err))
	}
}
