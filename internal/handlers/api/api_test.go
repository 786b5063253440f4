package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v3"

	"fieldexplorer/internal/models"
	"fieldexplorer/internal/storage"
	"fieldexplorer/internal/validation"
)

var errDriver = errors.New("driver boom")

type fakeExplorer struct {
	trend      []models.TrendPoint
	professors []models.ProfessorScore
	catalog    []string
	recs       []models.RecommendedProfessor
	err        error

	gotKeyword string
	gotStart   int
	gotEnd     int
}

func (f *fakeExplorer) Trend(ctx context.Context, keyword string) ([]models.TrendPoint, error) {
	f.gotKeyword = keyword
	return f.trend, f.err
}

func (f *fakeExplorer) TopProfessors(ctx context.Context, keyword string, startYear, endYear int) ([]models.ProfessorScore, error) {
	f.gotKeyword, f.gotStart, f.gotEnd = keyword, startYear, endYear
	return f.professors, f.err
}

func (f *fakeExplorer) TopKeywordsForUniversity(ctx context.Context, institute string) ([]models.KeywordInterest, error) {
	f.gotKeyword = institute
	return []models.KeywordInterest{}, f.err
}

func (f *fakeExplorer) TopKeywordsForProfessor(ctx context.Context, professor string) ([]models.KeywordScore, error) {
	f.gotKeyword = professor
	return []models.KeywordScore{}, f.err
}

func (f *fakeExplorer) KeywordCatalog(ctx context.Context) ([]string, error) {
	return f.catalog, f.err
}

func (f *fakeExplorer) UniversityCatalog(ctx context.Context) ([]string, error) {
	return f.catalog, f.err
}

func (f *fakeExplorer) ProfessorCatalog(ctx context.Context) ([]string, error) {
	return f.catalog, f.err
}

func (f *fakeExplorer) RecommendedProfessors(ctx context.Context) ([]models.RecommendedProfessor, error) {
	return f.recs, f.err
}

func (f *fakeExplorer) RecommendedUniversities(ctx context.Context) ([]models.RecommendedUniversity, error) {
	return []models.RecommendedUniversity{}, f.err
}

type fakeFavorites struct {
	view         models.FavoritesView
	err          error
	gotKeyword   string
	gotRemaining []string
	reconciled   bool
}

func (f *fakeFavorites) View(ctx context.Context) (models.FavoritesView, error) {
	return f.view, f.err
}

func (f *fakeFavorites) Add(ctx context.Context, keyword string) (models.FavoritesView, error) {
	f.gotKeyword = keyword
	return f.view, f.err
}

func (f *fakeFavorites) Remove(ctx context.Context, keyword string) (models.FavoritesView, error) {
	f.gotKeyword = keyword
	return f.view, f.err
}

func (f *fakeFavorites) Reconcile(ctx context.Context, remaining []string) (models.FavoritesView, error) {
	f.gotRemaining = remaining
	f.reconciled = true
	return f.view, f.err
}

type envelope struct {
	Status   string          `json:"status"`
	Data     json.RawMessage `json:"data"`
	Error    string          `json:"error"`
	Degraded bool            `json:"degraded"`
}

func newApp(explorer Explorer, favorites Favorites) *fiber.App {
	app := fiber.New()
	ah := NewAnalyticsHandler(explorer)
	fh := NewFavoritesHandler(favorites)

	app.Get("/trend", ah.Trend)
	app.Get("/professors/top", ah.TopProfessors)
	app.Get("/universities/keywords", ah.UniversityKeywords)
	app.Get("/catalog/:kind", ah.Catalog)
	app.Get("/recommendations/professors", ah.RecommendedProfessors)
	app.Get("/favorites", fh.List)
	app.Post("/favorites", fh.Add)
	app.Put("/favorites", fh.Reconcile)
	app.Delete("/favorites/:keyword", fh.Remove)
	return app
}

func do(t *testing.T, app *fiber.App, method, target, body string) (int, envelope) {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, target, err)
	}
	defer resp.Body.Close()

	var env envelope
	raw, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("%s %s: invalid JSON %q: %v", method, target, raw, err)
	}
	return resp.StatusCode, env
}

func TestTrend(t *testing.T) {
	explorer := &fakeExplorer{trend: []models.TrendPoint{{Year: 2015, PublicationCount: 5}}}
	app := newApp(explorer, &fakeFavorites{})

	status, env := do(t, app, http.MethodGet, "/trend?keyword=blockchain", "")
	if status != fiber.StatusOK || env.Status != "ok" {
		t.Fatalf("status = %d %q, want 200 ok", status, env.Status)
	}
	if got := string(env.Data); got != `[{"year":2015,"publication_count":5}]` {
		t.Errorf("data = %s", got)
	}
	if explorer.gotKeyword != "blockchain" {
		t.Errorf("keyword = %q, want blockchain", explorer.gotKeyword)
	}
}

func TestTopProfessors_Years(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantStart  int
		wantEnd    int
	}{
		{"defaults", "?keyword=ml", fiber.StatusOK, models.TrendMinYear, models.TrendMaxYear},
		{"explicit", "?keyword=ml&start=2000&end=2015", fiber.StatusOK, 2000, 2015},
		{"bad start", "?keyword=ml&start=soon", fiber.StatusBadRequest, 0, 0},
		{"bad end", "?keyword=ml&end=later", fiber.StatusBadRequest, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			explorer := &fakeExplorer{professors: []models.ProfessorScore{}}
			app := newApp(explorer, &fakeFavorites{})

			status, _ := do(t, app, http.MethodGet, "/professors/top"+tt.query, "")
			if status != tt.wantStatus {
				t.Fatalf("status = %d, want %d", status, tt.wantStatus)
			}
			if status == fiber.StatusOK && (explorer.gotStart != tt.wantStart || explorer.gotEnd != tt.wantEnd) {
				t.Errorf("range = %d-%d, want %d-%d", explorer.gotStart, explorer.gotEnd, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestReadErrorMapping(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantStatus   int
		wantDegraded bool
	}{
		{"query failed degrades", storage.QueryFailed("neo4j", "catalog", errDriver), fiber.StatusOK, true},
		{"unavailable", storage.Unavailable("neo4j", "catalog", errDriver), fiber.StatusServiceUnavailable, false},
		{"invalid", validation.ErrInvalid, fiber.StatusBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			explorer := &fakeExplorer{err: tt.err}
			if !storage.IsUnavailable(tt.err) {
				explorer.catalog = []string{}
			}
			app := newApp(explorer, &fakeFavorites{})

			status, env := do(t, app, http.MethodGet, "/catalog/universities", "")
			if status != tt.wantStatus {
				t.Errorf("status = %d, want %d", status, tt.wantStatus)
			}
			if env.Degraded != tt.wantDegraded {
				t.Errorf("degraded = %v, want %v", env.Degraded, tt.wantDegraded)
			}
			if tt.wantDegraded && string(env.Data) != "[]" {
				t.Errorf("degraded data = %s, want []", env.Data)
			}
		})
	}
}

func TestCatalog_UnknownKind(t *testing.T) {
	app := newApp(&fakeExplorer{}, &fakeFavorites{})

	status, env := do(t, app, http.MethodGet, "/catalog/planets", "")
	if status != fiber.StatusNotFound || env.Status != "error" {
		t.Errorf("status = %d %q, want 404 error", status, env.Status)
	}
}

func TestFavorites_Add(t *testing.T) {
	tests := []struct {
		name       string
		changed    bool
		wantStatus int
	}{
		{"new keyword", true, fiber.StatusCreated},
		{"duplicate keyword", false, fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			favorites := &fakeFavorites{view: models.FavoritesView{
				Keywords:     []string{"machine learning"},
				Professors:   []models.RecommendedProfessor{{Professor: "Ada", Institute: "U", TotalKRC: 60}},
				Universities: []models.RecommendedUniversity{},
				Changed:      tt.changed,
			}}
			app := newApp(&fakeExplorer{}, favorites)

			status, env := do(t, app, http.MethodPost, "/favorites", `{"keyword":"machine learning"}`)
			if status != tt.wantStatus {
				t.Fatalf("status = %d, want %d", status, tt.wantStatus)
			}
			if favorites.gotKeyword != "machine learning" {
				t.Errorf("keyword = %q", favorites.gotKeyword)
			}

			var view models.FavoritesView
			if err := json.Unmarshal(env.Data, &view); err != nil {
				t.Fatalf("data: %v", err)
			}
			if len(view.Professors) != 1 || view.Professors[0].TotalKRC != 60 {
				t.Errorf("professors = %+v", view.Professors)
			}
		})
	}
}

func TestFavorites_AddInvalidBody(t *testing.T) {
	app := newApp(&fakeExplorer{}, &fakeFavorites{})

	status, _ := do(t, app, http.MethodPost, "/favorites", `{"keyword":`)
	if status != fiber.StatusBadRequest {
		t.Errorf("status = %d, want 400", status)
	}
}

func TestFavorites_StoreErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid keyword", validation.ErrInvalid, fiber.StatusBadRequest},
		{"unavailable", storage.Unavailable("postgres", "add_favorite", errDriver), fiber.StatusServiceUnavailable},
		{"query failed", storage.QueryFailed("postgres", "add_favorite", errDriver), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newApp(&fakeExplorer{}, &fakeFavorites{err: tt.err})

			status, env := do(t, app, http.MethodPost, "/favorites", `{"keyword":"x"}`)
			if status != tt.wantStatus || env.Status != "error" {
				t.Errorf("status = %d %q, want %d error", status, env.Status, tt.wantStatus)
			}
		})
	}
}

func TestFavorites_RemoveUnescapesPath(t *testing.T) {
	favorites := &fakeFavorites{view: models.FavoritesView{Keywords: []string{}}}
	app := newApp(&fakeExplorer{}, favorites)

	status, _ := do(t, app, http.MethodDelete, "/favorites/machine%20learning", "")
	if status != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if favorites.gotKeyword != "machine learning" {
		t.Errorf("keyword = %q, want %q", favorites.gotKeyword, "machine learning")
	}
}

func TestFavorites_Reconcile(t *testing.T) {
	favorites := &fakeFavorites{view: models.FavoritesView{Keywords: []string{"databases"}, Changed: true}}
	app := newApp(&fakeExplorer{}, favorites)

	status, _ := do(t, app, http.MethodPut, "/favorites", `{"keywords":["databases"]}`)
	if status != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if len(favorites.gotRemaining) != 1 || favorites.gotRemaining[0] != "databases" {
		t.Errorf("remaining = %v, want [databases]", favorites.gotRemaining)
	}

	status, _ = do(t, app, http.MethodPut, "/favorites", `{"keywords":["bad\u0001name"]}`)
	if status != fiber.StatusBadRequest {
		t.Errorf("control character status = %d, want 400", status)
	}
}

func TestFavorites_ReconcileRequiresKeywords(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty object", `{}`},
		{"null body", `null`},
		{"singular field name", `{"keyword":["machine learning"]}`},
		{"null keywords", `{"keywords":null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			favorites := &fakeFavorites{}
			app := newApp(&fakeExplorer{}, favorites)

			status, env := do(t, app, http.MethodPut, "/favorites", tt.body)
			if status != fiber.StatusBadRequest {
				t.Errorf("status = %d, want 400", status)
			}
			if !strings.Contains(env.Error, "keywords is required") {
				t.Errorf("error = %q, want keywords is required", env.Error)
			}
			if favorites.reconciled {
				t.Error("Reconcile() called for a request without a keyword list")
			}
		})
	}
}

func TestFavorites_ReconcileEmptyListClears(t *testing.T) {
	favorites := &fakeFavorites{view: models.FavoritesView{Keywords: []string{}, Changed: true}}
	app := newApp(&fakeExplorer{}, favorites)

	status, _ := do(t, app, http.MethodPut, "/favorites", `{"keywords":[]}`)
	if status != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if !favorites.reconciled || favorites.gotRemaining == nil || len(favorites.gotRemaining) != 0 {
		t.Errorf("remaining = %#v, want empty list", favorites.gotRemaining)
	}
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(ctx context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		stores     map[string]Pinger
		wantStatus int
	}{
		{"all up", map[string]Pinger{"postgres": fakePinger{}, "neo4j": fakePinger{}}, fiber.StatusOK},
		{"one down", map[string]Pinger{
			"postgres": fakePinger{},
			"neo4j":    fakePinger{err: storage.Unavailable("neo4j", "ping", errDriver)},
		}, fiber.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/healthz", NewHealthHandler(tt.stores, time.Second).Check)

			status, env := do(t, app, http.MethodGet, "/healthz", "")
			if status != tt.wantStatus {
				t.Errorf("status = %d, want %d", status, tt.wantStatus)
			}
			if !strings.Contains(string(env.Data), `"postgres":"ok"`) {
				t.Errorf("data = %s, want postgres ok", env.Data)
			}
		})
	}
}
