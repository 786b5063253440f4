package jobs

import (
	"context"
	"log"
	"time"
)

// CatalogRefresher reloads the cached reference catalogs.
type CatalogRefresher interface {
	RefreshCatalogs(ctx context.Context) error
}

// CatalogWarmer keeps the catalog cache populated in the background so that
// catalog reads rarely reach the stores.
type CatalogWarmer struct {
	catalogs CatalogRefresher
	interval time.Duration
}

// NewCatalogWarmer creates a new catalog warmer.
func NewCatalogWarmer(catalogs CatalogRefresher, interval time.Duration) *CatalogWarmer {
	return &CatalogWarmer{catalogs: catalogs, interval: interval}
}

// Start begins the background refresh loop. It returns when ctx is done.
func (w *CatalogWarmer) Start(ctx context.Context) {
	log.Printf("Catalog warmer started (interval: %v)", w.interval)

	// Run immediately on start
	w.refresh(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Catalog warmer stopped")
			return
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *CatalogWarmer) refresh(ctx context.Context) {
	if err := w.catalogs.RefreshCatalogs(ctx); err != nil {
		log.Printf("Catalog warmer: refresh incomplete: %v", err)
	}
}
