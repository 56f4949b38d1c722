package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/fx"
)

// Recorder exposes the floor engine's counters. Collectors register on
// the default registry, served on /metrics.
type Recorder struct {
	promotions   *prometheus.CounterVec
	boardRefresh prometheus.Histogram
}

func New() *Recorder {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		promotions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "floorops_reservation_promotions_total",
			Help: "Reservation auto-promotion attempts by outcome.",
		}, []string{"outcome"}),
		boardRefresh: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "floorops_board_refresh_seconds",
			Help:    "Duration of board reads including auto-promotion.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// Promotion outcome labels.
const (
	OutcomePromoted      = "promoted"
	OutcomeTableMissing  = "table_missing"
	OutcomeTableInactive = "table_inactive"
	OutcomeOpenFailed    = "open_failed"
)

func (r *Recorder) Promotion(outcome string) {
	r.promotions.WithLabelValues(outcome).Inc()
}

func (r *Recorder) BoardRefresh(d time.Duration) {
	r.boardRefresh.Observe(d.Seconds())
}

var Module = fx.Module("observability.metrics",
	fx.Provide(New),
)
