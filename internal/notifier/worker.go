package notifier

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"pcclub/internal/domain"
	"pcclub/internal/events"
	"pcclub/internal/models"
)

// Worker drains queued reservation events and hands them to the delivery
// sink with exponential backoff. Delivery is at-least-once, best-effort:
// exhausted payloads land on a Redis dead-letter list (when Redis is
// configured) and the booking path is never blocked or rolled back.
type Worker struct {
	sink          domain.Notifier
	redis         *redis.Client
	retryPolicy   RetryPolicy
	queue         chan []byte
	deadLetterKey string
	logger        *zerolog.Logger
}

func NewWorker(sink domain.Notifier, redisClient *redis.Client, retry RetryPolicy, deadLetterKey string, logger *zerolog.Logger) *Worker {
	if retry.MaxRetries == 0 {
		retry.MaxRetries = 5
	}
	if retry.InitialDelay == 0 {
		retry.InitialDelay = time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = 30 * time.Second
	}
	if retry.BackoffFactor == 0 {
		retry.BackoffFactor = 2
	}
	if deadLetterKey == "" {
		deadLetterKey = "notifier:deadletter"
	}

	return &Worker{
		sink:          sink,
		redis:         redisClient,
		retryPolicy:   retry,
		queue:         make(chan []byte, models.NotifierQueueSize),
		deadLetterKey: deadLetterKey,
		logger:        logger,
	}
}

// SubscribeTo registers the worker on the in-process bus for reservation
// events.
func (w *Worker) SubscribeTo(bus *events.EventBus) {
	handler := func(event *events.Event) error {
		w.Enqueue(event.Payload)
		return nil
	}
	bus.Subscribe(events.EventReservationCreated, handler)
	bus.Subscribe(events.EventReservationCancelled, handler)
}

// Enqueue schedules a payload for delivery. When the buffer is full the
// payload is dropped: notification loss must not stall the booking path.
func (w *Worker) Enqueue(payload []byte) {
	select {
	case w.queue <- payload:
	default:
		w.logger.Warn().Msg("notifier queue full, dropping event")
	}
}

// Start runs the delivery loop until the context is cancelled.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info().Msg("notifier worker started")
	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("notifier worker stopped")
			return
		case payload := <-w.queue:
			w.deliver(ctx, payload)
		}
	}
}

func (w *Worker) deliver(ctx context.Context, payload []byte) {
	var lastErr error
	for attempt := 1; attempt <= w.retryPolicy.MaxRetries; attempt++ {
		lastErr = w.sink.Deliver(ctx, payload)
		if lastErr == nil {
			return
		}

		w.logger.Warn().Err(lastErr).Int("attempt", attempt).Msg("notification delivery failed")

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.retryPolicy.NextDelay(attempt)):
		}
	}

	w.logger.Error().Err(lastErr).Msg("notification delivery exhausted retries")
	if w.redis != nil {
		if err := w.redis.RPush(ctx, w.deadLetterKey, payload).Err(); err != nil {
			w.logger.Error().Err(err).Msg("failed to record dead letter")
		}
	}
}
