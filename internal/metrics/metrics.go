// Package metrics provides the centralized Prometheus metrics registry for
// the prediction pipeline.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	MatchesAnalyzedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mister_predictor",
		Name:      "matches_analyzed_total",
		Help:      "Total number of matches put through the signal pipeline",
	})
	MatchesSkippedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mister_predictor",
		Name:      "matches_skipped_total",
		Help:      "Total number of matches skipped because signals already existed",
	})
	MatchesFailedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "mister_predictor",
		Name:      "matches_failed_total",
		Help:      "Total number of matches that failed analysis",
	})
	SignalsGeneratedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mister_predictor",
		Name:      "signals_generated_total",
		Help:      "Total number of betting signals generated by decision",
	}, []string{"decision"})
	SignalsSettledTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mister_predictor",
		Name:      "signals_settled_total",
		Help:      "Total number of signals settled by result",
	}, []string{"result"})
	IngestionErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mister_predictor",
		Name:      "ingestion_errors_total",
		Help:      "Total number of data ingestion errors by source",
	}, []string{"source"})
)

// Gauge metrics
var (
	CurrentBankroll = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "mister_predictor",
		Name:      "current_bankroll",
		Help:      "Current bankroll in currency units",
	})
	UpcomingMatches = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "mister_predictor",
		Name:      "upcoming_matches",
		Help:      "Number of upcoming matches tracked for analysis",
	})
	PatternReliability = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "mister_predictor",
		Name:      "pattern_reliability",
		Help:      "Learned reliability score for each detected pattern",
	}, []string{"pattern"})
)

// Histogram metrics
var (
	AnalysisRunDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "mister_predictor",
		Name:      "analysis_run_duration_seconds",
		Help:      "Duration of full analysis runs in seconds",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
	})
	OddsFetchLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "mister_predictor",
		Name:      "odds_fetch_latency_seconds",
		Help:      "Latency of odds feed requests in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(MatchesAnalyzedTotal)
		registry.MustRegister(MatchesSkippedTotal)
		registry.MustRegister(MatchesFailedTotal)
		registry.MustRegister(SignalsGeneratedTotal)
		registry.MustRegister(SignalsSettledTotal)
		registry.MustRegister(IngestionErrorsTotal)

		registry.MustRegister(CurrentBankroll)
		registry.MustRegister(UpcomingMatches)
		registry.MustRegister(PatternReliability)

		registry.MustRegister(AnalysisRunDuration)
		registry.MustRegister(OddsFetchLatency)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordMatchAnalyzed records a completed match analysis.
func RecordMatchAnalyzed() {
	MatchesAnalyzedTotal.Inc()
}

// RecordMatchSkipped records a match skipped by the idempotency check.
func RecordMatchSkipped() {
	MatchesSkippedTotal.Inc()
}

// RecordMatchFailed records a match that errored during analysis.
func RecordMatchFailed() {
	MatchesFailedTotal.Inc()
}

// RecordSignal records a generated signal by final decision.
func RecordSignal(decision string) {
	SignalsGeneratedTotal.WithLabelValues(decision).Inc()
}

// RecordSettlement records a settled signal outcome.
func RecordSettlement(won bool) {
	result := "lost"
	if won {
		result = "won"
	}
	SignalsSettledTotal.WithLabelValues(result).Inc()
}

// RecordIngestionError records a data source failure.
func RecordIngestionError(source string) {
	IngestionErrorsTotal.WithLabelValues(source).Inc()
}

// RecordAnalysisRun records the duration of a full analysis run.
func RecordAnalysisRun(durationSeconds float64) {
	AnalysisRunDuration.Observe(durationSeconds)
}

// UpdateBankroll updates the current bankroll gauge.
func UpdateBankroll(amount float64) {
	CurrentBankroll.Set(amount)
}

// UpdatePatternReliability updates a pattern's learned reliability gauge.
func UpdatePatternReliability(pattern string, reliability float64) {
	PatternReliability.WithLabelValues(pattern).Set(reliability)
}
