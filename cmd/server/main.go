package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"fieldexplorer/internal/app"
	"fieldexplorer/internal/config"
	"fieldexplorer/internal/jobs"
	"fieldexplorer/internal/metrics"
	"fieldexplorer/internal/server"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()

	a, err := app.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer a.Close(context.Background())
	log.Println("Stores connected and migrations completed successfully")

	metrics.Init(a.DB)

	// Background catalog warmer, only useful with a shared cache
	if a.Catalog != nil && cfg.CatalogWarmInterval > 0 {
		warmer := jobs.NewCatalogWarmer(a.Explorer, cfg.CatalogWarmInterval)
		go warmer.Start(ctx)
	}

	srv := server.New(cfg)
	srv.RegisterRoutes(server.Dependencies{
		Explorer:  a.Explorer,
		Favorites: a.Favorites,
		Stores:    a.Stores(),
	})

	// Graceful shutdown
	go func() {
		if err := srv.Start(); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("Server started on %s", cfg.ServerAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	cancel()
	if err := srv.Shutdown(); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}
