package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all application metrics
type Metrics struct {
	RequestCounter      metric.Int64Counter
	RequestDuration     metric.Float64Histogram
	SimilaritySearches  metric.Int64Counter
	SearchDuration      metric.Float64Histogram
	CacheHits           metric.Int64Counter
	CacheMisses         metric.Int64Counter
	TokensUsed          metric.Int64Counter
	CircuitBreakerState metric.Int64Counter
}

// InitMetrics initializes all application metrics
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter("seo-content-ops")

	requestCounter, err := meter.Int64Counter(
		"http.requests.total",
		metric.WithDescription("Total HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		"http.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	similaritySearches, err := meter.Int64Counter(
		"similarity.searches.total",
		metric.WithDescription("Total similarity searches executed"),
	)
	if err != nil {
		return nil, err
	}

	searchDuration, err := meter.Float64Histogram(
		"similarity.search.duration",
		metric.WithDescription("Similarity search duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	cacheHits, err := meter.Int64Counter(
		"similarity.cache.hits",
		metric.WithDescription("Similarity cache hits"),
	)
	if err != nil {
		return nil, err
	}

	cacheMisses, err := meter.Int64Counter(
		"similarity.cache.misses",
		metric.WithDescription("Similarity cache misses"),
	)
	if err != nil {
		return nil, err
	}

	tokensUsed, err := meter.Int64Counter(
		"gemini.tokens.used",
		metric.WithDescription("Total Gemini tokens used"),
	)
	if err != nil {
		return nil, err
	}

	circuitBreakerState, err := meter.Int64Counter(
		"circuit_breaker.state_changes",
		metric.WithDescription("Circuit breaker state changes"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		RequestCounter:      requestCounter,
		RequestDuration:     requestDuration,
		SimilaritySearches:  similaritySearches,
		SearchDuration:      searchDuration,
		CacheHits:           cacheHits,
		CacheMisses:         cacheMisses,
		TokensUsed:          tokensUsed,
		CircuitBreakerState: circuitBreakerState,
	}, nil
}

// RecordRequest records HTTP request metrics
func (m *Metrics) RecordRequest(method, path, status string, duration float64) {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("http.path", path),
		attribute.String("http.status", status),
	}

	m.RequestCounter.Add(context.Background(), 1, metric.WithAttributes(attrs...))
	m.RequestDuration.Record(context.Background(), duration, metric.WithAttributes(attrs...))
}

// RecordSearch records a similarity search and its duration
func (m *Metrics) RecordSearch(cached bool, duration float64) {
	attrs := []attribute.KeyValue{
		attribute.Bool("search.cached", cached),
	}

	m.SimilaritySearches.Add(context.Background(), 1, metric.WithAttributes(attrs...))
	m.SearchDuration.Record(context.Background(), duration, metric.WithAttributes(attrs...))
}

// RecordCacheHit records a similarity cache hit or miss
func (m *Metrics) RecordCacheHit(hit bool) {
	if hit {
		m.CacheHits.Add(context.Background(), 1)
	} else {
		m.CacheMisses.Add(context.Background(), 1)
	}
}

// RecordTokensUsed records Gemini token usage
func (m *Metrics) RecordTokensUsed(tokens int64, model string) {
	attrs := []attribute.KeyValue{
		attribute.String("gemini.model", model),
		attribute.String("service", "gemini"),
	}

	m.TokensUsed.Add(context.Background(), tokens, metric.WithAttributes(attrs...))
}

// RecordCircuitBreakerState records circuit breaker state changes
func (m *Metrics) RecordCircuitBreakerState(service, state string) {
	attrs := []attribute.KeyValue{
		attribute.String("service", service),
		attribute.String("state", state),
	}

	m.CircuitBreakerState.Add(context.Background(), 1, metric.WithAttributes(attrs...))
}
