package readinglist

import (
	"github.com/gofiber/fiber/v2"
)

// Feature wires the reading-list service into the application.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates the reading-list feature.
func NewFeature(service *Service) *Feature {
	return &Feature{
		service: service,
		handler: NewHandler(service),
	}
}

// Name returns the feature name.
func (f *Feature) Name() string { return "readinglist" }

// IsEnabled reports whether the feature should be loaded.
func (f *Feature) IsEnabled() bool { return true }

// Load registers the feature routes.
func (f *Feature) Load(router fiber.Router) error {
	f.handler.RegisterRoutes(router)
	return nil
}

// Service exposes the underlying service for programmatic use.
func (f *Feature) Service() *Service { return f.service }
