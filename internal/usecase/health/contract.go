package health

import "context"

// DBPinger checks content store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// CachePinger checks cache availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// ProviderChecker checks AI provider availability.
type ProviderChecker interface {
	HealthCheck(ctx context.Context) error
}
