package config

import "time"

const (
	envPort              = "PORT"
	envBackend           = "BACKEND"
	envDatabaseURL       = "DATABASE_URL"
	envSQLitePath        = "SQLITE_PATH"
	envReconcileInterval = "RECONCILE_INTERVAL"
	envLinkRetryAttempts = "LINK_RETRY_ATTEMPTS"
	envLinkRetryDelay    = "LINK_RETRY_DELAY"
	envMetricsPort       = "METRICS_PORT"
	envMetricsOn         = "METRICS_ENABLED"
	envOtelEndpoint      = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOtelService       = "OTEL_SERVICE_NAME"
	envOtelInsecure      = "OTEL_EXPORTER_OTLP_INSECURE"

	defaultPort       = "4000"
	defaultSQLitePath = "pool-tracker.db"
	// Fallback cadence for reconciling against the remote store when no
	// change notifications arrive.
	defaultReconcileInterval = 5 * time.Minute
	defaultLinkRetryAttempts = 3
	defaultLinkRetryDelay    = 500 * time.Millisecond
	defaultMetricsPort       = "9090"
	defaultServiceName       = "pool-tracker-service"
)
