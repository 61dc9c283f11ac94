package constants

import "time"

// Timeout constants used throughout the application
const (
	// ConnectTimeout is the timeout for establishing the TCP connection.
	ConnectTimeout = 10 * time.Second

	// SSHDialTimeout is the timeout for connecting to the SSH jump host.
	SSHDialTimeout = 10 * time.Second

	// StatsPauseDuration is how long the record output stays paused after
	// the stats were printed on request.
	StatsPauseDuration = 2 * time.Second

	// MetricsShutdownTimeout bounds the graceful stop of the metrics server.
	MetricsShutdownTimeout = 2 * time.Second

	// ForceExitTimeout is how long shutdown may take after a termination
	// signal before the process exits without cleanup.
	ForceExitTimeout = 5 * time.Second
)
