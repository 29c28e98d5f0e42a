package talkpage

import (
	"github.com/gofiber/fiber/v2"
)

// Feature wires the talk-page controller into the application.
type Feature struct {
	controller *Controller
	handler    *Handler
}

// NewFeature creates the talk-page feature.
func NewFeature(controller *Controller, handler *Handler) *Feature {
	return &Feature{controller: controller, handler: handler}
}

// Name returns the feature name.
func (f *Feature) Name() string { return "talkpage" }

// IsEnabled reports whether the feature should be loaded.
func (f *Feature) IsEnabled() bool { return true }

// Load registers the feature routes.
func (f *Feature) Load(router fiber.Router) error {
	f.handler.RegisterRoutes(router)
	return nil
}
