package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/sgdat/bitfebay/internal/lobby/application"
	"github.com/sgdat/bitfebay/internal/lobby/domain"
	"github.com/sgdat/bitfebay/internal/shared/logger"
)

var log = logger.GetLogger()

// LobbyHandler serves the unary call surface: list, create, bid, close.
type LobbyHandler struct {
	service application.LobbyService
}

func NewLobbyHandler(service application.LobbyService) *LobbyHandler {
	return &LobbyHandler{service: service}
}

// RegisterRoutes mounts the unary endpoints on the fiber app.
func RegisterRoutes(app *fiber.App, service application.LobbyService) {
	h := NewLobbyHandler(service)

	api := app.Group("/api")
	api.Get("/auctions", h.ListAuctions)
	api.Post("/auctions", h.CreateAuction)
	api.Post("/auctions/:id/bids", h.SubmitBid)
	api.Post("/auctions/:id/close", h.CloseAuction)
}

type auctionsResponse struct {
	Auctions []application.AuctionDTO `json:"auctions"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *LobbyHandler) ListAuctions(c *fiber.Ctx) error {
	auctions := h.service.ListAuctions(c.Context())
	return c.JSON(auctionsResponse{Auctions: auctions})
}

func (h *LobbyHandler) CreateAuction(c *fiber.Ctx) error {
	var cmd application.CreateAuctionDTO
	if err := c.BodyParser(&cmd); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid request body"})
	}

	auctions, err := h.service.CreateAuction(c.Context(), cmd)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(auctionsResponse{Auctions: auctions})
}

func (h *LobbyHandler) SubmitBid(c *fiber.Ctx) error {
	auctionID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid auction id"})
	}

	var cmd application.SubmitBidDTO
	if err := c.BodyParser(&cmd); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid request body"})
	}
	cmd.AuctionID = int64(auctionID)

	auctions, err := h.service.SubmitBid(c.Context(), cmd)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(auctionsResponse{Auctions: auctions})
}

func (h *LobbyHandler) CloseAuction(c *fiber.Ctx) error {
	auctionID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid auction id"})
	}

	var cmd application.CloseAuctionDTO
	if err := c.BodyParser(&cmd); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid request body"})
	}
	cmd.AuctionID = int64(auctionID)

	auctions, err := h.service.CloseAuction(c.Context(), cmd)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(auctionsResponse{Auctions: auctions})
}

// respondError maps domain errors onto HTTP status codes.
func respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrAuctionNotFound),
		errors.Is(err, domain.ErrAuctionNotOpen):
		status = fiber.StatusNotFound
	case errors.Is(err, domain.ErrNotOwner):
		status = fiber.StatusForbidden
	case errors.Is(err, domain.ErrEmptyUsername),
		errors.Is(err, domain.ErrEmptyProductName),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidStartingCost):
		status = fiber.StatusBadRequest
	default:
		log.Error("unexpected error handling lobby request",
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}
	return c.Status(status).JSON(errorResponse{Error: err.Error()})
}
