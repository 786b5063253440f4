package server

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fieldexplorer/internal/handlers/api"
)

// Dependencies are the services the routes are served from.
type Dependencies struct {
	Explorer  api.Explorer
	Favorites api.Favorites
	Stores    map[string]api.Pinger
}

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(deps Dependencies) {
	analyticsHandler := api.NewAnalyticsHandler(deps.Explorer)
	favoritesHandler := api.NewFavoritesHandler(deps.Favorites)
	healthHandler := api.NewHealthHandler(deps.Stores, s.Cfg.StoreTimeout+time.Second)

	// Operational routes
	s.App.Get("/healthz", healthHandler.Check)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	apiGroup := s.App.Group("/api")

	// Document and graph analytics
	apiGroup.Get("/trend", analyticsHandler.Trend)
	apiGroup.Get("/professors/top", analyticsHandler.TopProfessors)
	apiGroup.Get("/professors/keywords", analyticsHandler.ProfessorKeywords)
	apiGroup.Get("/universities/keywords", analyticsHandler.UniversityKeywords)
	apiGroup.Get("/catalog/:kind", analyticsHandler.Catalog)

	// Recommendations over the favorite keywords
	apiGroup.Get("/recommendations/professors", analyticsHandler.RecommendedProfessors)
	apiGroup.Get("/recommendations/universities", analyticsHandler.RecommendedUniversities)

	// Favorite keywords
	apiGroup.Get("/favorites", favoritesHandler.List)
	apiGroup.Post("/favorites", favoritesHandler.Add)
	apiGroup.Put("/favorites", favoritesHandler.Reconcile)
	apiGroup.Delete("/favorites/:keyword", favoritesHandler.Remove)

	// JSON 404 for everything else
	s.App.Use(func(c fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "not found")
	})
}
