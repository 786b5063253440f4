// Package explorer is the read side of the service: trends, rankings,
// catalogs and recommendations over the three stores.
//
// Rankings and catalogs degrade to an empty result when a query fails. The
// classified error is still returned so callers can report the condition.
// Unavailable stores are never degraded.
package explorer

import (
	"context"
	"log/slog"

	"fieldexplorer/internal/cache"
	"fieldexplorer/internal/models"
	"fieldexplorer/internal/storage"
	"fieldexplorer/internal/validation"
)

// DocumentStore aggregates publication documents.
type DocumentStore interface {
	Trend(ctx context.Context, keyword string) ([]models.TrendPoint, error)
	KeywordCatalog(ctx context.Context) ([]string, error)
}

// GraphEngine ranks faculty and keywords over the relationship graph.
type GraphEngine interface {
	TopProfessors(ctx context.Context, keyword string, startYear, endYear int) ([]models.ProfessorScore, error)
	TopKeywordsForUniversity(ctx context.Context, institute string) ([]models.KeywordInterest, error)
	TopKeywordsForProfessor(ctx context.Context, professor string) ([]models.KeywordScore, error)
	UniversityCatalog(ctx context.Context) ([]string, error)
	ProfessorCatalog(ctx context.Context) ([]string, error)
}

// Recommender ranks faculty and universities over the favorite keywords.
type Recommender interface {
	RecommendedProfessors(ctx context.Context) ([]models.RecommendedProfessor, error)
	RecommendedUniversities(ctx context.Context) ([]models.RecommendedUniversity, error)
}

// Service answers every read operation.
type Service struct {
	docs    DocumentStore
	graph   GraphEngine
	rec     Recommender
	catalog *cache.Catalog
}

// Option customizes a Service.
type Option func(*Service)

// WithCatalogCache serves catalogs through c.
func WithCatalogCache(c *cache.Catalog) Option {
	return func(s *Service) { s.catalog = c }
}

// New creates a Service.
func New(docs DocumentStore, graph GraphEngine, rec Recommender, opts ...Option) *Service {
	s := &Service{docs: docs, graph: graph, rec: rec}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Trend returns publications per year for keyword. An empty keyword has no trend.
func (s *Service) Trend(ctx context.Context, keyword string) ([]models.TrendPoint, error) {
	keyword = validation.NormalizeName(keyword)
	if keyword == "" {
		return []models.TrendPoint{}, nil
	}
	rows, err := s.docs.Trend(ctx, keyword)
	return degrade(ctx, "trend", rows, err)
}

// TopProfessors returns up to ten professors ranked by keyword-relevant citations.
func (s *Service) TopProfessors(ctx context.Context, keyword string, startYear, endYear int) ([]models.ProfessorScore, error) {
	keyword = validation.NormalizeName(keyword)
	if keyword == "" {
		return []models.ProfessorScore{}, nil
	}
	if err := validation.ValidateYearRange(startYear, endYear); err != nil {
		return nil, err
	}
	rows, err := s.graph.TopProfessors(ctx, keyword, startYear, endYear)
	return degrade(ctx, "top_professors", rows, err)
}

// TopKeywordsForUniversity returns up to ten keywords by interested faculty count.
func (s *Service) TopKeywordsForUniversity(ctx context.Context, institute string) ([]models.KeywordInterest, error) {
	institute = validation.NormalizeName(institute)
	if institute == "" {
		return []models.KeywordInterest{}, nil
	}
	rows, err := s.graph.TopKeywordsForUniversity(ctx, institute)
	return degrade(ctx, "top_keywords_for_university", rows, err)
}

// TopKeywordsForProfessor returns up to ten keywords by the professor's KRC.
func (s *Service) TopKeywordsForProfessor(ctx context.Context, professor string) ([]models.KeywordScore, error) {
	professor = validation.NormalizeName(professor)
	if professor == "" {
		return []models.KeywordScore{}, nil
	}
	rows, err := s.graph.TopKeywordsForProfessor(ctx, professor)
	return degrade(ctx, "top_keywords_for_professor", rows, err)
}

// KeywordCatalog lists every keyword attached to a publication.
func (s *Service) KeywordCatalog(ctx context.Context) ([]string, error) {
	rows, err := s.catalog.Strings(ctx, cache.KeyKeywords, s.docs.KeywordCatalog)
	return degrade(ctx, "keyword_catalog", rows, err)
}

// UniversityCatalog lists every institute name.
func (s *Service) UniversityCatalog(ctx context.Context) ([]string, error) {
	rows, err := s.catalog.Strings(ctx, cache.KeyUniversities, s.graph.UniversityCatalog)
	return degrade(ctx, "university_catalog", rows, err)
}

// ProfessorCatalog lists every faculty name.
func (s *Service) ProfessorCatalog(ctx context.Context) ([]string, error) {
	rows, err := s.catalog.Strings(ctx, cache.KeyProfessors, s.graph.ProfessorCatalog)
	return degrade(ctx, "professor_catalog", rows, err)
}

// RecommendedProfessors ranks up to five professors over the favorite keywords.
func (s *Service) RecommendedProfessors(ctx context.Context) ([]models.RecommendedProfessor, error) {
	rows, err := s.rec.RecommendedProfessors(ctx)
	return degrade(ctx, "recommended_professors", rows, err)
}

// RecommendedUniversities ranks up to five universities over the favorite keywords.
func (s *Service) RecommendedUniversities(ctx context.Context) ([]models.RecommendedUniversity, error) {
	rows, err := s.rec.RecommendedUniversities(ctx)
	return degrade(ctx, "recommended_universities", rows, err)
}

// RefreshCatalogs reloads every cached catalog. It returns the first error
// but attempts all three.
func (s *Service) RefreshCatalogs(ctx context.Context) error {
	loads := []struct {
		key  string
		load cache.Loader
	}{
		{cache.KeyKeywords, s.docs.KeywordCatalog},
		{cache.KeyUniversities, s.graph.UniversityCatalog},
		{cache.KeyProfessors, s.graph.ProfessorCatalog},
	}

	var first error
	for _, l := range loads {
		if _, err := s.catalog.Refresh(ctx, l.key, l.load); err != nil {
			slog.WarnContext(ctx, "catalog refresh failed", "key", l.key, "error", err)
			if first == nil {
				first = err
			}
		}
	}
	return first
}

func degrade[T any](ctx context.Context, op string, rows []T, err error) ([]T, error) {
	if err == nil {
		if rows == nil {
			rows = []T{}
		}
		return rows, nil
	}
	if storage.IsUnavailable(err) {
		return nil, err
	}
	slog.WarnContext(ctx, "degrading to empty result", "op", op, "error", err)
	return []T{}, err
}

// IsDegraded reports whether err accompanies a degraded, empty result rather
// than a failed call.
func IsDegraded(err error) bool {
	return err != nil && storage.IsClassified(err) && !storage.IsUnavailable(err)
}
