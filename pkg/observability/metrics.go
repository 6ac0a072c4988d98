package observability

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Global metrics instance for singleton pattern
	globalMetrics *Metrics
	metricsMutex  sync.Mutex
)

// Metrics holds all Prometheus metrics for the service and optionally mirrors
// business counters to CloudWatch when a client is supplied.
type Metrics struct {
	namespace string
	client    *cloudwatch.Client
	registry  *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Business metrics
	MemoriesStored    prometheus.Counter
	MemoriesRetrieved prometheus.Counter
	MemoriesLiked     prometheus.Counter
	LandmarksLatched  prometheus.Counter

	// Repository metrics
	DBOperations *prometheus.CounterVec
	DBDuration   *prometheus.HistogramVec

	// Cache metrics
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter

	// Dispatch metrics keyed by bus and message type
	BusMessages  *prometheus.CounterVec
	BusDurations *prometheus.HistogramVec
}

// NewMetrics creates the metrics collector. The CloudWatch client may be nil,
// in which case metrics are exposed via Prometheus only.
func NewMetrics(namespace string, client *cloudwatch.Client) *Metrics {
	// Singleton to avoid duplicate registration in tests
	metricsMutex.Lock()
	defer metricsMutex.Unlock()

	if globalMetrics != nil {
		return globalMetrics
	}

	registry := prometheus.NewRegistry()

	httpRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	memoriesStored := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "memories_stored_total",
			Help:      "Total number of memories stored",
		},
	)

	memoriesRetrieved := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "memories_retrieved_total",
			Help:      "Total number of successful retrievals",
		},
	)

	memoriesLiked := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "memories_liked_total",
			Help:      "Total number of likes recorded",
		},
	)

	landmarksLatched := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "landmarks_latched_total",
			Help:      "Total number of locations that became landmarks",
		},
	)

	dbOperations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "db_operations_total",
			Help:      "Total number of database operations",
		},
		[]string{"operation", "table", "status"},
	)

	dbDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "db_operation_duration_seconds",
			Help:      "Database operation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	cacheHits := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Total number of cache hits",
		},
	)

	cacheMisses := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Total number of cache misses",
		},
	)

	busMessages := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bus_messages_total",
			Help:      "Total messages dispatched through the command and query buses",
		},
		[]string{"metric", "type"},
	)

	busDurations := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "bus_message_duration_seconds",
			Help:      "Bus message handling duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"metric", "type"},
	)

	registry.MustRegister(
		httpRequests,
		httpDuration,
		memoriesStored,
		memoriesRetrieved,
		memoriesLiked,
		landmarksLatched,
		dbOperations,
		dbDuration,
		cacheHits,
		cacheMisses,
		busMessages,
		busDurations,
	)

	globalMetrics = &Metrics{
		namespace:         namespace,
		client:            client,
		registry:          registry,
		HTTPRequests:      httpRequests,
		HTTPDuration:      httpDuration,
		MemoriesStored:    memoriesStored,
		MemoriesRetrieved: memoriesRetrieved,
		MemoriesLiked:     memoriesLiked,
		LandmarksLatched:  landmarksLatched,
		DBOperations:      dbOperations,
		DBDuration:        dbDuration,
		CacheHits:         cacheHits,
		CacheMisses:       cacheMisses,
		BusMessages:       busMessages,
		BusDurations:      busDurations,
	}

	return globalMetrics
}

// ResetForTesting resets the global metrics instance
func ResetForTesting() {
	metricsMutex.Lock()
	defer metricsMutex.Unlock()
	globalMetrics = nil
}

// Handler returns the Prometheus scrape handler for this registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// GetRegistry returns the Prometheus registry
func (m *Metrics) GetRegistry() *prometheus.Registry {
	return m.registry
}

// Increment counts one bus message; satisfies the query bus metrics interface
func (m *Metrics) Increment(metric, label string) {
	m.BusMessages.WithLabelValues(metric, label).Inc()
}

// StartTimer starts a duration observation for a bus message
func (m *Metrics) StartTimer(metric, label string) Timer {
	start := time.Now()
	return timerFunc(func() {
		m.BusDurations.WithLabelValues(metric, label).Observe(time.Since(start).Seconds())
	})
}

// Timer finishes a duration observation
type Timer interface {
	Stop()
}

type timerFunc func()

func (f timerFunc) Stop() { f() }

// PublishBusinessMetric mirrors a business counter to CloudWatch
func (m *Metrics) PublishBusinessMetric(ctx context.Context, name string, value float64) {
	if m.client == nil {
		return
	}

	input := &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(m.namespace),
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: aws.String(name),
				Value:      aws.Float64(value),
				Timestamp:  aws.Time(time.Now()),
				Unit:       cwtypes.StandardUnitCount,
			},
		},
	}

	// Delivery is best effort; the Prometheus registry remains authoritative
	_, _ = m.client.PutMetricData(ctx, input)
}
