package metrics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	gobreaker "github.com/sony/gobreaker/v2"

	"fieldexplorer/internal/storage"
)

var (
	StoreCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fieldexplorer_store_call_duration_seconds",
			Help:    "Duration of guarded store calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"store", "op", "outcome"},
	)

	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fieldexplorer_circuit_breaker_state",
			Help: "Circuit breaker state per store (0=closed, 1=half-open, 2=open)",
		},
		[]string{"store"},
	)

	FavoriteMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fieldexplorer_favorite_mutations_total",
			Help: "Favorite keywords added or removed",
		},
		[]string{"action"},
	)
)

var favoritesDesc = prometheus.NewDesc(
	"fieldexplorer_favorite_keywords",
	"Number of stored favorite keywords",
	nil,
	nil,
)

// FavoriteCounter counts the stored favorite keywords.
type FavoriteCounter interface {
	CountFavorites(ctx context.Context) (int64, error)
}

// FavoritesCollector is a custom Prometheus collector that reads the favorite
// keyword count from the database on each scrape.
type FavoritesCollector struct {
	db FavoriteCounter
}

// NewFavoritesCollector creates a collector over db.
func NewFavoritesCollector(db FavoriteCounter) *FavoritesCollector {
	return &FavoritesCollector{db: db}
}

// Describe sends the metric descriptor to the channel.
func (c *FavoritesCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- favoritesDesc
}

// Collect counts the favorites and emits them as a gauge.
func (c *FavoritesCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	n, err := c.db.CountFavorites(ctx)
	if err != nil {
		slog.Error("failed to collect favorite keyword metrics", "error", err)
		return
	}
	ch <- prometheus.MustNewConstMetric(favoritesDesc, prometheus.GaugeValue, float64(n))
}

var initOnce sync.Once

// Init registers the favorites collector. Must be called once at startup.
func Init(database FavoriteCounter) {
	initOnce.Do(func() {
		prometheus.MustRegister(NewFavoritesCollector(database))
	})
}

// ObserveStoreCall records a guarded store call. It has the shape of
// storage.WithResultHook.
func ObserveStoreCall(store, op string, elapsed time.Duration, err error) {
	StoreCallDuration.WithLabelValues(store, op, storage.Outcome(err)).Observe(elapsed.Seconds())
}

// ObserveBreakerState records a breaker transition. It has the shape of
// storage.WithStateHook.
func ObserveBreakerState(store string, to gobreaker.State) {
	BreakerState.WithLabelValues(store).Set(stateToFloat(to))
}

// RecordFavoriteMutation counts n favorites added or removed.
func RecordFavoriteMutation(action string, n int) {
	FavoriteMutations.WithLabelValues(action).Add(float64(n))
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
