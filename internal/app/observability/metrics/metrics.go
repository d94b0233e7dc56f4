package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	LocationsCreatedTotal    metric.Int64Counter
	LocationsDeletedTotal    metric.Int64Counter
	SuggestionsFiledTotal    metric.Int64Counter
	SuggestionsReviewedTotal metric.Int64Counter
	SearchRequestsTotal      metric.Int64Counter
	SearchFallbacksTotal     metric.Int64Counter
	SearchDurationSeconds    metric.Float64Histogram
	FileUploadFailuresTotal  metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metric instruments once, using the
// globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("bio-rider-map")
		m := &AppMetrics{}
		var err error

		m.LocationsCreatedTotal, err = meter.Int64Counter(
			"locations_created_total",
			metric.WithDescription("Total number of locations created"),
			metric.WithUnit("{location}"),
		)
		if err != nil {
			log.Fatalf("Metrics: failed to create locations_created_total: %v", err)
		}

		m.LocationsDeletedTotal, err = meter.Int64Counter(
			"locations_deleted_total",
			metric.WithDescription("Total number of locations deleted (soft or hard)"),
			metric.WithUnit("{location}"),
		)
		if err != nil {
			log.Fatalf("Metrics: failed to create locations_deleted_total: %v", err)
		}

		m.SuggestionsFiledTotal, err = meter.Int64Counter(
			"suggestions_filed_total",
			metric.WithDescription("Total number of edit suggestions filed"),
			metric.WithUnit("{suggestion}"),
		)
		if err != nil {
			log.Fatalf("Metrics: failed to create suggestions_filed_total: %v", err)
		}

		m.SuggestionsReviewedTotal, err = meter.Int64Counter(
			"suggestions_reviewed_total",
			metric.WithDescription("Total number of edit suggestions approved or rejected"),
			metric.WithUnit("{suggestion}"),
		)
		if err != nil {
			log.Fatalf("Metrics: failed to create suggestions_reviewed_total: %v", err)
		}

		m.SearchRequestsTotal, err = meter.Int64Counter(
			"search_requests_total",
			metric.WithDescription("Total number of search requests"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: failed to create search_requests_total: %v", err)
		}

		m.SearchFallbacksTotal, err = meter.Int64Counter(
			"search_fallbacks_total",
			metric.WithDescription("Searches served by the substring fallback after a provider failure"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: failed to create search_fallbacks_total: %v", err)
		}

		m.SearchDurationSeconds, err = meter.Float64Histogram(
			"search_duration_seconds",
			metric.WithDescription("Duration of search requests in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: failed to create search_duration_seconds: %v", err)
		}

		m.FileUploadFailuresTotal, err = meter.Int64Counter(
			"file_upload_failures_total",
			metric.WithDescription("Individual file uploads skipped during location creation"),
			metric.WithUnit("{file}"),
		)
		if err != nil {
			log.Fatalf("Metrics: failed to create file_upload_failures_total: %v", err)
		}

		appMetrics = m
	})
}

// Get returns the global metrics instance, initializing it if needed.
func Get() *AppMetrics {
	InitAppMetrics()
	return appMetrics
}
