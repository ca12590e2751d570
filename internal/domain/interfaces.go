package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"pcclub/internal/models"
)

// Store is the transactional persistence boundary. Implementations must make
// the reservation operations atomic: conflict check, ledger mutation and
// reservation write commit together or not at all.
type Store interface {
	CreateAccount(ctx context.Context, account *models.Account) error
	GetAccount(ctx context.Context, id int64) (*models.Account, error)
	GetAccountByTelegramID(ctx context.Context, telegramID int64) (*models.Account, error)
	ListAccounts(ctx context.Context) ([]*models.Account, error)
	UpdateAccountRole(ctx context.Context, id int64, role models.Role) error

	CreateResource(ctx context.Context, resource *models.Resource) error
	GetResource(ctx context.Context, id int64) (*models.Resource, error)
	ListResources(ctx context.Context) ([]*models.Resource, error)
	UpdateResourceStatus(ctx context.Context, id int64, status models.ResourceStatus) error

	Credit(ctx context.Context, accountID int64, amount decimal.Decimal, kind models.EntryKind, description string) (*models.LedgerEntry, error)
	Debit(ctx context.Context, accountID int64, amount decimal.Decimal, kind models.EntryKind, description string) (*models.LedgerEntry, error)
	BalanceOf(ctx context.Context, accountID int64) (decimal.Decimal, error)
	GetAccountEntries(ctx context.Context, accountID int64) ([]*models.LedgerEntry, error)

	CreateReservationWithFunds(ctx context.Context, accountID, resourceID int64, start, end time.Time) (*models.Reservation, error)
	CancelReservationWithRefund(ctx context.Context, reservationID, requesterID int64, adminOverride bool) (*models.Reservation, error)
	GetReservation(ctx context.Context, id int64) (*models.Reservation, error)
	ListReservations(ctx context.Context) ([]*models.Reservation, error)
	ListAccountReservations(ctx context.Context, accountID int64) ([]*models.Reservation, error)
	ListActiveReservations(ctx context.Context, resourceID int64) ([]*models.Reservation, error)
}

// EventPublisher fans domain events out to in-process subscribers.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// Notifier delivers an encoded event to connected clients, best-effort.
type Notifier interface {
	Deliver(ctx context.Context, payload []byte) error
}
