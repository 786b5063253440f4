// Package favorites reconciles the global favorite keyword list with the
// recommendations derived from it.
package favorites

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"fieldexplorer/internal/metrics"
	"fieldexplorer/internal/models"
	"fieldexplorer/internal/validation"
)

// Store persists the favorite keyword set.
type Store interface {
	ListFavorites(ctx context.Context) ([]string, error)
	AddFavorite(ctx context.Context, keyword string) (bool, error)
	RemoveFavorites(ctx context.Context, keywords []string) (int64, error)
}

// Recommender ranks professors and universities over the stored favorites.
type Recommender interface {
	RecommendedProfessors(ctx context.Context) ([]models.RecommendedProfessor, error)
	RecommendedUniversities(ctx context.Context) ([]models.RecommendedUniversity, error)
}

// Controller serializes every mutation of the favorite list. Each mutation
// reads the stored list inside the lock, writes, and then recomputes both
// recommendation lists.
type Controller struct {
	mu    sync.Mutex
	store Store
	rec   Recommender
}

// NewController creates a Controller.
func NewController(store Store, rec Recommender) *Controller {
	return &Controller{store: store, rec: rec}
}

// View returns the stored favorites and their recommendations.
func (c *Controller) View(ctx context.Context) (models.FavoritesView, error) {
	keywords, err := c.store.ListFavorites(ctx)
	if err != nil {
		return models.FavoritesView{}, err
	}
	return c.view(ctx, keywords, false), nil
}

// Add stores keyword. An empty or already stored keyword leaves the list
// unchanged and returns the current view.
func (c *Controller) Add(ctx context.Context, keyword string) (models.FavoritesView, error) {
	keyword = validation.NormalizeName(keyword)
	if keyword == "" {
		return c.View(ctx)
	}
	if err := validation.ValidateName("keyword", keyword); err != nil {
		return models.FavoritesView{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	stored, err := c.store.ListFavorites(ctx)
	if err != nil {
		return models.FavoritesView{}, err
	}
	if slices.Contains(stored, keyword) {
		return c.view(ctx, stored, false), nil
	}

	added, err := c.store.AddFavorite(ctx, keyword)
	if err != nil {
		return models.FavoritesView{}, err
	}
	if added {
		metrics.RecordFavoriteMutation(models.FavoriteAdded, 1)
		stored = c.relist(ctx, append(stored, keyword))
	}
	return c.view(ctx, stored, added), nil
}

// Remove deletes keyword. Removing a keyword that is not stored is a no-op.
func (c *Controller) Remove(ctx context.Context, keyword string) (models.FavoritesView, error) {
	keyword = validation.NormalizeName(keyword)
	if keyword == "" {
		return c.View(ctx)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	stored, err := c.store.ListFavorites(ctx)
	if err != nil {
		return models.FavoritesView{}, err
	}
	if !slices.Contains(stored, keyword) {
		return c.view(ctx, stored, false), nil
	}

	return c.removeLocked(ctx, stored, []string{keyword})
}

// Reconcile deletes every stored keyword that is missing from remaining.
// Keywords in remaining that are not stored are ignored; additions go
// through Add.
func (c *Controller) Reconcile(ctx context.Context, remaining []string) (models.FavoritesView, error) {
	keep := make(map[string]struct{}, len(remaining))
	for _, kw := range remaining {
		keep[validation.NormalizeName(kw)] = struct{}{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	stored, err := c.store.ListFavorites(ctx)
	if err != nil {
		return models.FavoritesView{}, err
	}

	var removed []string
	for _, kw := range stored {
		if _, ok := keep[kw]; !ok {
			removed = append(removed, kw)
		}
	}
	if len(removed) == 0 {
		return c.view(ctx, stored, false), nil
	}

	return c.removeLocked(ctx, stored, removed)
}

func (c *Controller) removeLocked(ctx context.Context, stored, removed []string) (models.FavoritesView, error) {
	n, err := c.store.RemoveFavorites(ctx, removed)
	if err != nil {
		return models.FavoritesView{}, err
	}
	if n > 0 {
		metrics.RecordFavoriteMutation(models.FavoriteRemoved, int(n))
	}

	remaining := slices.DeleteFunc(slices.Clone(stored), func(kw string) bool {
		return slices.Contains(removed, kw)
	})
	return c.view(ctx, c.relist(ctx, remaining), n > 0), nil
}

// relist rereads the committed list, falling back to the locally computed one.
func (c *Controller) relist(ctx context.Context, local []string) []string {
	keywords, err := c.store.ListFavorites(ctx)
	if err != nil {
		slog.WarnContext(ctx, "failed to reread favorites after mutation", "error", err)
		slices.Sort(local)
		return local
	}
	return keywords
}

// view recomputes recommendations for keywords. The mutation has already
// committed, so a recommendation failure marks the view degraded instead of
// failing the request.
func (c *Controller) view(ctx context.Context, keywords []string, changed bool) models.FavoritesView {
	v := models.FavoritesView{
		Keywords:     keywords,
		Professors:   []models.RecommendedProfessor{},
		Universities: []models.RecommendedUniversity{},
		Changed:      changed,
	}
	if v.Keywords == nil {
		v.Keywords = []string{}
	}
	if len(keywords) == 0 {
		return v
	}

	professors, err := c.rec.RecommendedProfessors(ctx)
	if err != nil {
		slog.WarnContext(ctx, "failed to recompute recommended professors", "error", err)
		v.Degraded = true
	} else if professors != nil {
		v.Professors = professors
	}

	universities, err := c.rec.RecommendedUniversities(ctx)
	if err != nil {
		slog.WarnContext(ctx, "failed to recompute recommended universities", "error", err)
		v.Degraded = true
	} else if universities != nil {
		v.Universities = universities
	}

	return v
}
