package talkpage

import (
	"errors"
	"strconv"

	"reader-sync/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for talk pages.
type Handler struct {
	controller *Controller
	log        *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(controller *Controller, log *zap.Logger) *Handler {
	return &Handler{controller: controller, log: log}
}

// RegisterRoutes registers the talk-page routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/talkpages", h.HandleFetchTalkPage)
}

func (h *Handler) HandleFetchTalkPage(c *fiber.Ctx) error {
	host := c.Query("host")
	lang := c.Query("lang")
	title := c.Query("title")
	if host == "" || title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "host and title are required"})
	}

	var revisionID int64
	if rev := c.Query("revision"); rev != "" {
		parsed, err := strconv.ParseInt(rev, 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid revision"})
		}
		revisionID = parsed
	}

	page, err := h.controller.FetchTalkPage(c.UserContext(), host, lang, title, revisionID)
	if err != nil {
		l := logger.WithRayID(h.log, c)
		var ambiguous *AmbiguousHashError
		if errors.As(err, &ambiguous) {
			l.Warn("Talk page merge refused", zap.Error(err))
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}
		l.Error("Talk page fetch failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(page)
}
