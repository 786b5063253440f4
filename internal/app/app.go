// Package app connects the three stores and assembles the services both
// entry points run on.
package app

import (
	"context"
	"fmt"
	"log"

	"fieldexplorer/internal/cache"
	"fieldexplorer/internal/config"
	"fieldexplorer/internal/db"
	"fieldexplorer/internal/docstore"
	"fieldexplorer/internal/explorer"
	"fieldexplorer/internal/favorites"
	"fieldexplorer/internal/graph"
	"fieldexplorer/internal/handlers/api"
	"fieldexplorer/internal/metrics"
	"fieldexplorer/internal/storage"
)

// App holds the connected stores and the services built on them.
type App struct {
	DB        *db.DB
	Docs      *docstore.Store
	Graph     *graph.Client
	Catalog   *cache.Catalog
	Explorer  *explorer.Service
	Favorites *favorites.Controller
}

// Open connects every store, runs the favorite table migration and wires the
// services. Every store call goes through a guard reporting to metrics.
func Open(ctx context.Context, cfg *config.Config) (*App, error) {
	yamlCfg, err := config.LoadYAMLConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load YAML config: %w", err)
	}

	a := &App{}
	ok := false
	defer func() {
		if !ok {
			a.Close(context.Background())
		}
	}()

	a.DB, err = db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := a.DB.RunMigrations(cfg.DatabaseURL); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	a.DB.UseGuard(newGuard("postgres", cfg, yamlCfg))

	a.Docs, err = docstore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	a.Docs.UseGuard(newGuard("mongodb", cfg, yamlCfg))

	a.Graph, err = graph.NewClient(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword, cfg.Neo4jDatabase)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to neo4j: %w", err)
	}
	engine := graph.NewEngine(a.Graph)
	engine.UseGuard(newGuard("neo4j", cfg, yamlCfg))

	if cfg.CacheEnabled() {
		a.Catalog, err = cache.NewRedisCatalog(cfg.RedisURL, cfg.CatalogCacheTTL)
		if err != nil {
			log.Printf("Warning: catalog cache disabled: %v", err)
			a.Catalog = nil
		}
	}

	a.Explorer = explorer.New(a.Docs, engine, a.DB, explorer.WithCatalogCache(a.Catalog))
	a.Favorites = favorites.NewController(a.DB, a.DB)

	ok = true
	return a, nil
}

// Stores returns the health check targets keyed by store name.
func (a *App) Stores() map[string]api.Pinger {
	return map[string]api.Pinger{
		"postgres": a.DB,
		"mongodb":  a.Docs,
		"neo4j":    a.Graph,
	}
}

// Close releases every opened store.
func (a *App) Close(ctx context.Context) {
	if a.Catalog != nil {
		if err := a.Catalog.Close(); err != nil {
			log.Printf("Failed to close catalog cache: %v", err)
		}
	}
	if a.Graph != nil {
		if err := a.Graph.Close(ctx); err != nil {
			log.Printf("Failed to close neo4j driver: %v", err)
		}
	}
	if a.Docs != nil {
		if err := a.Docs.Close(ctx); err != nil {
			log.Printf("Failed to disconnect mongodb: %v", err)
		}
	}
	if a.DB != nil {
		a.DB.Close()
	}
}

func newGuard(store string, cfg *config.Config, yamlCfg *config.YAMLConfig) *storage.Guard {
	return storage.NewGuard(
		store,
		yamlCfg.StoreTimeout(store, cfg.StoreTimeout),
		yamlCfg.BreakerSettings(store),
		storage.WithResultHook(metrics.ObserveStoreCall),
		storage.WithStateHook(metrics.ObserveBreakerState),
	)
}
