package health

import "context"

// StorePinger checks profile store availability.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// Checker checks an optional dependency: the taste extractor breaker or the
// embedding provider behind it.
type Checker interface {
	HealthCheck(ctx context.Context) error
}
