package models

const (
	// CreateRetryAttempts bounds retries of the admission sequence when the
	// store reports a concurrent modification.
	CreateRetryAttempts = 3

	// DefaultPaginationSize for list endpoints.
	DefaultPaginationSize = 50

	// RateLimitRPS / RateLimitBurst are API defaults when config omits them.
	RateLimitRPS   = 10
	RateLimitBurst = 5

	// NotifierQueueSize is the in-memory buffer of the delivery worker.
	NotifierQueueSize = 256
)
