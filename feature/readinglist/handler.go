package readinglist

import (
	"errors"

	"reader-sync/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for reading lists.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the reading-list routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/readinglists")
	group.Get("/", h.HandleGetLists)
	group.Post("/", h.HandleCreateList)
	group.Put("/:id", h.HandleUpdateList)
	group.Delete("/:id", h.HandleDeleteList)
	group.Get("/:id/entries", h.HandleGetEntries)
	group.Post("/:id/articles", h.HandleAddArticles)
	group.Delete("/:id/articles", h.HandleRemoveArticles)

	app.Post("/articles/save", h.HandleSaveArticle)
	app.Post("/articles/unsave", h.HandleUnsaveArticle)
	app.Get("/articles/:key", h.HandleGetArticle)

	app.Put("/sync/settings", h.HandleSetSyncEnabled)
	app.Get("/sync/state", h.HandleGetSyncState)
}

func (h *Handler) HandleGetLists(c *fiber.Ctx) error {
	lists, err := h.service.Lists()
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(lists)
}

func (h *Handler) HandleCreateList(c *fiber.Ctx) error {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	list, err := h.service.CreateReadingList(req.Name, req.Description)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(list)
}

func (h *Handler) HandleUpdateList(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid list id"})
	}
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	list, err := h.service.UpdateReadingList(uint(id), req.Name, req.Description)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(list)
}

func (h *Handler) HandleDeleteList(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid list id"})
	}
	if err := h.service.DeleteReadingLists([]uint{uint(id)}); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) HandleGetEntries(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid list id"})
	}
	entries, err := h.service.Entries(uint(id))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(entries)
}

func (h *Handler) HandleAddArticles(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid list id"})
	}
	var req struct {
		Articles []ArticleRef `json:"articles"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	if err := h.service.AddArticlesToList(uint(id), req.Articles); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) HandleRemoveArticles(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid list id"})
	}
	var req struct {
		Keys []string `json:"keys"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	if err := h.service.RemoveArticlesFromList(uint(id), req.Keys); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) HandleSaveArticle(c *fiber.Ctx) error {
	var ref ArticleRef
	if err := c.BodyParser(&ref); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	if err := h.service.SaveArticle(ref); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) HandleUnsaveArticle(c *fiber.Ctx) error {
	var req struct {
		Key string `json:"key"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	if err := h.service.UnsaveArticle(req.Key); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) HandleGetArticle(c *fiber.Ctx) error {
	article, err := h.service.Article(c.Params("key"))
	if err != nil {
		return h.fail(c, err)
	}
	if article == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "unknown article"})
	}
	return c.JSON(article)
}

func (h *Handler) HandleSetSyncEnabled(c *fiber.Ctx) error {
	var req struct {
		Enabled           bool `json:"enabled"`
		DeleteLocalLists  bool `json:"delete_local_lists"`
		DeleteRemoteLists bool `json:"delete_remote_lists"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	if err := h.service.SetSyncEnabled(req.Enabled, req.DeleteLocalLists, req.DeleteRemoteLists); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) HandleGetSyncState(c *fiber.Ctx) error {
	state, err := h.service.SyncState()
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"state":   uint64(state),
		"flags":   state.String(),
		"enabled": state.IsSyncEnabled(),
	})
}

// fail maps typed service errors onto HTTP statuses.
func (h *Handler) fail(c *fiber.Ctx, err error) error {
	l := logger.WithRayID(h.service.logger, c)

	var exists *ListExistsError
	var notFound *ListNotFoundError
	switch {
	case errors.As(err, &exists):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.As(err, &notFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrCannotDeleteDefaultList):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	default:
		l.Error("Reading list operation failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
