package api

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"fieldexplorer/internal/models"
)

// Explorer answers the read operations.
type Explorer interface {
	Trend(ctx context.Context, keyword string) ([]models.TrendPoint, error)
	TopProfessors(ctx context.Context, keyword string, startYear, endYear int) ([]models.ProfessorScore, error)
	TopKeywordsForUniversity(ctx context.Context, institute string) ([]models.KeywordInterest, error)
	TopKeywordsForProfessor(ctx context.Context, professor string) ([]models.KeywordScore, error)
	KeywordCatalog(ctx context.Context) ([]string, error)
	UniversityCatalog(ctx context.Context) ([]string, error)
	ProfessorCatalog(ctx context.Context) ([]string, error)
	RecommendedProfessors(ctx context.Context) ([]models.RecommendedProfessor, error)
	RecommendedUniversities(ctx context.Context) ([]models.RecommendedUniversity, error)
}

// AnalyticsHandler serves trends, rankings, catalogs and recommendations.
type AnalyticsHandler struct {
	explorer Explorer
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(explorer Explorer) *AnalyticsHandler {
	return &AnalyticsHandler{explorer: explorer}
}

// Trend returns publications per year for ?keyword=.
func (h *AnalyticsHandler) Trend(c fiber.Ctx) error {
	rows, err := h.explorer.Trend(c.Context(), c.Query("keyword"))
	return jsonRows(c, rows, err)
}

// TopProfessors ranks professors for ?keyword= within ?start= and ?end=.
func (h *AnalyticsHandler) TopProfessors(c fiber.Ctx) error {
	start, err := queryYear(c, "start", models.TrendMinYear)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "start must be a year")
	}
	end, err := queryYear(c, "end", models.TrendMaxYear)
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "end must be a year")
	}

	rows, err := h.explorer.TopProfessors(c.Context(), c.Query("keyword"), start, end)
	return jsonRows(c, rows, err)
}

// UniversityKeywords ranks keywords for ?institute=.
func (h *AnalyticsHandler) UniversityKeywords(c fiber.Ctx) error {
	rows, err := h.explorer.TopKeywordsForUniversity(c.Context(), c.Query("institute"))
	return jsonRows(c, rows, err)
}

// ProfessorKeywords ranks keywords for ?professor=.
func (h *AnalyticsHandler) ProfessorKeywords(c fiber.Ctx) error {
	rows, err := h.explorer.TopKeywordsForProfessor(c.Context(), c.Query("professor"))
	return jsonRows(c, rows, err)
}

// Catalog lists the names of one kind: keywords, universities or professors.
func (h *AnalyticsHandler) Catalog(c fiber.Ctx) error {
	var load func(context.Context) ([]string, error)
	switch c.Params("kind") {
	case "keywords":
		load = h.explorer.KeywordCatalog
	case "universities":
		load = h.explorer.UniversityCatalog
	case "professors":
		load = h.explorer.ProfessorCatalog
	default:
		return jsonError(c, fiber.StatusNotFound, "unknown catalog")
	}

	rows, err := load(c.Context())
	return jsonRows(c, rows, err)
}

// RecommendedProfessors ranks professors over the favorite keywords.
func (h *AnalyticsHandler) RecommendedProfessors(c fiber.Ctx) error {
	rows, err := h.explorer.RecommendedProfessors(c.Context())
	return jsonRows(c, rows, err)
}

// RecommendedUniversities ranks universities over the favorite keywords.
func (h *AnalyticsHandler) RecommendedUniversities(c fiber.Ctx) error {
	rows, err := h.explorer.RecommendedUniversities(c.Context())
	return jsonRows(c, rows, err)
}

func queryYear(c fiber.Ctx, key string, fallback int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
