package explorer

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"fieldexplorer/internal/cache"
	"fieldexplorer/internal/models"
	"fieldexplorer/internal/storage"
	"fieldexplorer/internal/validation"
)

var errDriver = errors.New("driver boom")

type fakeDocs struct {
	trend        []models.TrendPoint
	keywords     []string
	err          error
	gotKeyword   string
	catalogCalls int
}

func (f *fakeDocs) Trend(ctx context.Context, keyword string) ([]models.TrendPoint, error) {
	f.gotKeyword = keyword
	return f.trend, f.err
}

func (f *fakeDocs) KeywordCatalog(ctx context.Context) ([]string, error) {
	f.catalogCalls++
	return f.keywords, f.err
}

type fakeGraph struct {
	professors   []models.ProfessorScore
	interests    []models.KeywordInterest
	scores       []models.KeywordScore
	universities []string
	faculty      []string
	err          error
	calls        int
}

func (f *fakeGraph) TopProfessors(ctx context.Context, keyword string, startYear, endYear int) ([]models.ProfessorScore, error) {
	f.calls++
	return f.professors, f.err
}

func (f *fakeGraph) TopKeywordsForUniversity(ctx context.Context, institute string) ([]models.KeywordInterest, error) {
	f.calls++
	return f.interests, f.err
}

func (f *fakeGraph) TopKeywordsForProfessor(ctx context.Context, professor string) ([]models.KeywordScore, error) {
	f.calls++
	return f.scores, f.err
}

func (f *fakeGraph) UniversityCatalog(ctx context.Context) ([]string, error) {
	f.calls++
	return f.universities, f.err
}

func (f *fakeGraph) ProfessorCatalog(ctx context.Context) ([]string, error) {
	f.calls++
	return f.faculty, f.err
}

type fakeRecommender struct {
	professors   []models.RecommendedProfessor
	universities []models.RecommendedUniversity
	err          error
}

func (f *fakeRecommender) RecommendedProfessors(ctx context.Context) ([]models.RecommendedProfessor, error) {
	return f.professors, f.err
}

func (f *fakeRecommender) RecommendedUniversities(ctx context.Context) ([]models.RecommendedUniversity, error) {
	return f.universities, f.err
}

func TestTrend(t *testing.T) {
	docs := &fakeDocs{trend: []models.TrendPoint{{Year: 2015, PublicationCount: 5}}}
	s := New(docs, &fakeGraph{}, &fakeRecommender{})

	got, err := s.Trend(context.Background(), "  blockchain ")
	if err != nil {
		t.Fatalf("Trend() error = %v", err)
	}
	if want := []models.TrendPoint{{Year: 2015, PublicationCount: 5}}; !reflect.DeepEqual(got, want) {
		t.Errorf("Trend() = %v, want %v", got, want)
	}
	if docs.gotKeyword != "blockchain" {
		t.Errorf("store got keyword %q, want trimmed %q", docs.gotKeyword, "blockchain")
	}
}

func TestEmptyNamesSkipTheStore(t *testing.T) {
	docs := &fakeDocs{err: errDriver}
	graph := &fakeGraph{err: errDriver}
	s := New(docs, graph, &fakeRecommender{})
	ctx := context.Background()

	trend, err := s.Trend(ctx, " ")
	if err != nil || trend == nil || len(trend) != 0 {
		t.Errorf("Trend(blank) = %#v, %v; want empty, nil", trend, err)
	}
	profs, err := s.TopProfessors(ctx, "", 1980, 2020)
	if err != nil || profs == nil || len(profs) != 0 {
		t.Errorf("TopProfessors(blank) = %#v, %v; want empty, nil", profs, err)
	}
	if _, err := s.TopKeywordsForUniversity(ctx, ""); err != nil {
		t.Errorf("TopKeywordsForUniversity(blank) error = %v", err)
	}
	if _, err := s.TopKeywordsForProfessor(ctx, ""); err != nil {
		t.Errorf("TopKeywordsForProfessor(blank) error = %v", err)
	}
	if graph.calls != 0 {
		t.Errorf("graph called %d times for blank names", graph.calls)
	}
}

func TestTopProfessors_InvalidYearRange(t *testing.T) {
	graph := &fakeGraph{}
	s := New(&fakeDocs{}, graph, &fakeRecommender{})

	_, err := s.TopProfessors(context.Background(), "robotics", 2020, 1990)
	if !errors.Is(err, validation.ErrInvalid) {
		t.Errorf("TopProfessors() error = %v, want ErrInvalid", err)
	}
	if graph.calls != 0 {
		t.Error("graph queried with an invalid range")
	}
}

func TestQueryFailureDegradesToEmpty(t *testing.T) {
	failed := storage.QueryFailed("neo4j", "top_professors", errDriver)
	s := New(&fakeDocs{}, &fakeGraph{err: failed}, &fakeRecommender{})

	got, err := s.TopProfessors(context.Background(), "robotics", 1980, 2020)
	if !errors.Is(err, storage.ErrQueryFailed) {
		t.Fatalf("TopProfessors() error = %v, want ErrQueryFailed", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("TopProfessors() = %#v, want empty non-nil slice", got)
	}
	if !IsDegraded(err) {
		t.Error("IsDegraded() = false for a query failure")
	}
}

func TestUnavailablePropagates(t *testing.T) {
	down := storage.Unavailable("postgres", "recommended_professors", errDriver)
	s := New(&fakeDocs{}, &fakeGraph{}, &fakeRecommender{err: down})

	got, err := s.RecommendedProfessors(context.Background())
	if !storage.IsUnavailable(err) {
		t.Fatalf("RecommendedProfessors() error = %v, want ErrStorageUnavailable", err)
	}
	if got != nil {
		t.Errorf("RecommendedProfessors() = %v, want nil", got)
	}
	if IsDegraded(err) {
		t.Error("IsDegraded() = true for an unavailable store")
	}
}

func TestNilRowsBecomeEmpty(t *testing.T) {
	s := New(&fakeDocs{}, &fakeGraph{}, &fakeRecommender{})

	got, err := s.RecommendedUniversities(context.Background())
	if err != nil {
		t.Fatalf("RecommendedUniversities() error = %v", err)
	}
	if got == nil {
		t.Error("RecommendedUniversities() = nil, want empty slice")
	}
}

type memStorage struct{ data map[string][]byte }

func (m *memStorage) Get(key string) ([]byte, error) { return m.data[key], nil }
func (m *memStorage) Set(key string, val []byte, _ time.Duration) error {
	m.data[key] = val
	return nil
}
func (m *memStorage) Delete(key string) error { delete(m.data, key); return nil }
func (m *memStorage) Close() error            { return nil }

func TestCatalogsAreCached(t *testing.T) {
	docs := &fakeDocs{keywords: []string{"blockchain", "robotics"}}
	graph := &fakeGraph{universities: []string{"MIT"}, faculty: []string{"Ada"}}
	c := cache.NewCatalog(&memStorage{data: map[string][]byte{}}, time.Hour)
	s := New(docs, graph, &fakeRecommender{}, WithCatalogCache(c))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		got, err := s.KeywordCatalog(ctx)
		if err != nil {
			t.Fatalf("KeywordCatalog() error = %v", err)
		}
		if want := []string{"blockchain", "robotics"}; !reflect.DeepEqual(got, want) {
			t.Errorf("KeywordCatalog() = %v, want %v", got, want)
		}
	}
	if docs.catalogCalls != 1 {
		t.Errorf("KeywordCatalog loaded %d times, want 1", docs.catalogCalls)
	}

	if _, err := s.UniversityCatalog(ctx); err != nil {
		t.Fatalf("UniversityCatalog() error = %v", err)
	}
	if _, err := s.ProfessorCatalog(ctx); err != nil {
		t.Fatalf("ProfessorCatalog() error = %v", err)
	}

	if err := s.RefreshCatalogs(ctx); err != nil {
		t.Fatalf("RefreshCatalogs() error = %v", err)
	}
	if docs.catalogCalls != 2 {
		t.Errorf("RefreshCatalogs did not reload keywords, calls = %d", docs.catalogCalls)
	}
}

func TestRefreshCatalogs_ReportsFirstError(t *testing.T) {
	failed := storage.QueryFailed("mongodb", "keyword_catalog", errDriver)
	graph := &fakeGraph{universities: []string{"MIT"}}
	s := New(&fakeDocs{err: failed}, graph, &fakeRecommender{})

	err := s.RefreshCatalogs(context.Background())
	if !errors.Is(err, storage.ErrQueryFailed) {
		t.Errorf("RefreshCatalogs() error = %v, want ErrQueryFailed", err)
	}
	if graph.calls != 2 {
		t.Errorf("graph catalogs loaded %d times, want 2", graph.calls)
	}
}
