package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"pcclub/internal/database"
	"pcclub/internal/domain"
	"pcclub/internal/events"
	"pcclub/internal/metrics"
	"pcclub/internal/models"
)

// ErrTransient is returned when the admission sequence keeps losing
// concurrency races after the bounded number of retries. Distinct from
// ErrSlotConflict: the caller may simply try again.
var ErrTransient = errors.New("transient conflict, please retry")

// ReservationService is the admission and settlement engine. The store
// guarantees atomicity of each attempt; this layer validates the window,
// retries lost races and publishes events after commit.
type ReservationService struct {
	store    domain.Store
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewReservationService(store domain.Store, eventBus domain.EventPublisher, logger *zerolog.Logger) *ReservationService {
	return &ReservationService{
		store:    store,
		eventBus: eventBus,
		logger:   logger,
	}
}

// ValidateWindow checks the requested interval: start strictly before end,
// both in the future relative to processing time.
func (s *ReservationService) ValidateWindow(start, end time.Time) error {
	if !start.Before(end) {
		return database.ErrInvalidWindow
	}
	if !start.After(time.Now()) {
		return database.ErrPastStart
	}
	return nil
}

func (s *ReservationService) Create(ctx context.Context, accountID, resourceID int64, start, end time.Time) (*models.Reservation, error) {
	if err := s.ValidateWindow(start, end); err != nil {
		metrics.IncReservation("create", "invalid_window")
		return nil, err
	}

	var reservation *models.Reservation
	var err error
	for attempt := 1; attempt <= models.CreateRetryAttempts; attempt++ {
		reservation, err = s.store.CreateReservationWithFunds(ctx, accountID, resourceID, start, end)
		if !errors.Is(err, database.ErrConcurrentModification) {
			break
		}
		s.logger.Warn().
			Int("attempt", attempt).
			Int64("resource_id", resourceID).
			Msg("admission race lost, retrying")
	}
	if errors.Is(err, database.ErrConcurrentModification) {
		metrics.IncReservation("create", "transient")
		return nil, ErrTransient
	}
	if err != nil {
		metrics.IncReservation("create", outcomeLabel(err))
		return nil, err
	}

	metrics.IncReservation("create", "ok")
	metrics.IncLedgerEntry(string(models.KindBooking))
	s.logger.Info().
		Int64("reservation_id", reservation.ID).
		Int64("account_id", accountID).
		Int64("resource_id", resourceID).
		Time("start", reservation.StartTime).
		Time("end", reservation.EndTime).
		Msg("reservation created")

	// Fire-and-forget: delivery failure must not affect the booking.
	s.publish(events.EventReservationCreated, "created", reservation)
	return reservation, nil
}

// Cancel reverses an active reservation before its start. Admins may cancel
// reservations of other accounts; ownership is otherwise required.
func (s *ReservationService) Cancel(ctx context.Context, reservationID int64, requester *models.Account) error {
	adminOverride := requester.Role == models.RoleAdmin

	reservation, err := s.store.CancelReservationWithRefund(ctx, reservationID, requester.ID, adminOverride)
	if err != nil {
		metrics.IncReservation("cancel", outcomeLabel(err))
		return err
	}

	metrics.IncReservation("cancel", "ok")
	metrics.IncLedgerEntry(string(models.KindRefund))
	s.logger.Info().
		Int64("reservation_id", reservation.ID).
		Int64("requested_by", requester.ID).
		Msg("reservation cancelled")

	s.publish(events.EventReservationCancelled, "cancelled", reservation)
	return nil
}

func (s *ReservationService) Get(ctx context.Context, id int64) (*models.Reservation, error) {
	return s.store.GetReservation(ctx, id)
}

func (s *ReservationService) List(ctx context.Context) ([]*models.Reservation, error) {
	return s.store.ListReservations(ctx)
}

func (s *ReservationService) ListForAccount(ctx context.Context, accountID int64) ([]*models.Reservation, error) {
	return s.store.ListAccountReservations(ctx, accountID)
}

func (s *ReservationService) ListActiveForResource(ctx context.Context, resourceID int64) ([]*models.Reservation, error) {
	return s.store.ListActiveReservations(ctx, resourceID)
}

func (s *ReservationService) publish(eventType, event string, r *models.Reservation) {
	if s.eventBus == nil {
		return
	}

	payload := events.NewReservationPayload(event, r.AccountID, r.ResourceID, r.ID, r.StartTime, r.EndTime)
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("reservation_id", r.ID).Msg("publish event error")
	}
}

func outcomeLabel(err error) string {
	switch {
	case errors.Is(err, database.ErrSlotConflict):
		return "slot_conflict"
	case errors.Is(err, database.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, database.ErrResourceNotFound),
		errors.Is(err, database.ErrAccountNotFound),
		errors.Is(err, database.ErrReservationNotFound):
		return "not_found"
	case errors.Is(err, database.ErrAlreadyFinalized):
		return "already_finalized"
	case errors.Is(err, database.ErrTooLateToCancel):
		return "too_late"
	default:
		return "error"
	}
}
