package health

import "context"

// DBPinger checks index store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}

// ConsumerReporter reports whether the indexing consumer is running.
type ConsumerReporter interface {
	Running() bool
}
