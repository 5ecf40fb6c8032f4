package config

import "time"

// BackendMode selects which persistence backend the sync layer drives.
type BackendMode string

const (
	// BackendLocal stores records in the embedded SQLite database.
	BackendLocal BackendMode = "local"
	// BackendRemote stores records in the hosted Postgres database.
	BackendRemote BackendMode = "remote"
)

// Config holds runtime configuration for the server.
type Config struct {
	Port    string
	Backend BackendMode

	// Remote backend (Postgres).
	DatabaseURL string

	// Local backend (embedded SQLite).
	SQLitePath string

	// Live-sync reconciliation.
	ReconcileInterval time.Duration

	// Season-link writes race the match row's own insert; bound the retry.
	LinkRetryAttempts int
	LinkRetryDelay    time.Duration

	Metrics MetricsConfig
}

// MetricsConfig controls the telemetry exporters.
type MetricsConfig struct {
	Enabled      bool
	Port         string
	ServiceName  string
	OtlpEndpoint string
	OtlpInsecure bool
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		Port:              envOrDefault(envPort, defaultPort),
		Backend:           loadBackend(),
		DatabaseURL:       envOrDefault(envDatabaseURL, ""),
		SQLitePath:        envOrDefault(envSQLitePath, defaultSQLitePath),
		ReconcileInterval: durationEnvOrDefault(envReconcileInterval, defaultReconcileInterval),
		LinkRetryAttempts: intEnvOrDefault(envLinkRetryAttempts, defaultLinkRetryAttempts),
		LinkRetryDelay:    durationEnvOrDefault(envLinkRetryDelay, defaultLinkRetryDelay),
		Metrics: MetricsConfig{
			Enabled:      boolEnvOrDefault(envMetricsOn, false),
			Port:         envOrDefault(envMetricsPort, defaultMetricsPort),
			ServiceName:  envOrDefault(envOtelService, defaultServiceName),
			OtlpEndpoint: envOrDefault(envOtelEndpoint, ""),
			OtlpInsecure: boolEnvOrDefault(envOtelInsecure, false),
		},
	}
}

func loadBackend() BackendMode {
	switch envOrDefault(envBackend, string(BackendLocal)) {
	case string(BackendRemote):
		return BackendRemote
	default:
		return BackendLocal
	}
}
