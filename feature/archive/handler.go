package archive

import (
	"reader-sync/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for archives.
type Handler struct {
	service *Service
	log     *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, log *zap.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// RegisterRoutes registers the archive routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/archives")
	group.Post("/", h.HandleExport)
	group.Get("/", h.HandleList)
	group.Get("/:name", h.HandleFetch)
	group.Delete("/:name", h.HandleDelete)
}

func (h *Handler) HandleExport(c *fiber.Ctx) error {
	name, err := h.service.Export(c.UserContext())
	if err != nil {
		logger.WithRayID(h.log, c).Error("Archive export failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"object": name})
}

func (h *Handler) HandleList(c *fiber.Ctx) error {
	names, err := h.service.List(c.UserContext())
	if err != nil {
		logger.WithRayID(h.log, c).Error("Archive list failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"archives": names})
}

func (h *Handler) HandleFetch(c *fiber.Ctx) error {
	snapshot, err := h.service.Fetch(c.UserContext(), c.Params("name"))
	if err != nil {
		logger.WithRayID(h.log, c).Error("Archive fetch failed", zap.Error(err))
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(snapshot)
}

func (h *Handler) HandleDelete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("name")); err != nil {
		logger.WithRayID(h.log, c).Error("Archive delete failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
