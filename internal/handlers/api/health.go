package api

import (
	"context"
	"sort"
	"time"

	"github.com/gofiber/fiber/v3"

	"fieldexplorer/internal/storage"
)

// Pinger checks that a store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports the reachability of every store.
type HealthHandler struct {
	stores  map[string]Pinger
	timeout time.Duration
}

// NewHealthHandler creates a new health handler over the named stores.
func NewHealthHandler(stores map[string]Pinger, timeout time.Duration) *HealthHandler {
	return &HealthHandler{stores: stores, timeout: timeout}
}

// Check pings every store and answers 503 if any is unreachable.
func (h *HealthHandler) Check(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.stores))
	for name := range h.stores {
		names = append(names, name)
	}
	sort.Strings(names)

	healthy := true
	results := make(fiber.Map, len(names))
	for _, name := range names {
		err := h.stores[name].Ping(ctx)
		results[name] = storage.Outcome(err)
		if err != nil {
			healthy = false
		}
	}

	if !healthy {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "error",
			"error":  "storage unavailable",
			"data":   results,
		})
	}
	return jsonSuccess(c, results)
}
