package system

import "context"

// Service is a lifecycle-managed component such as the rate limiter's
// cleanup loop. The manager starts and stops services in a fixed order.
type Service interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
