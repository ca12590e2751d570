package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"pcclub/internal/models"
)

// mockStore implements domain.Store for service-layer tests.
type mockStore struct {
	mock.Mock
}

func (m *mockStore) CreateAccount(ctx context.Context, account *models.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *mockStore) GetAccount(ctx context.Context, id int64) (*models.Account, error) {
	args := m.Called(ctx, id)
	if account, ok := args.Get(0).(*models.Account); ok {
		return account, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) GetAccountByTelegramID(ctx context.Context, telegramID int64) (*models.Account, error) {
	args := m.Called(ctx, telegramID)
	if account, ok := args.Get(0).(*models.Account); ok {
		return account, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) ListAccounts(ctx context.Context) ([]*models.Account, error) {
	args := m.Called(ctx)
	if accounts, ok := args.Get(0).([]*models.Account); ok {
		return accounts, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) UpdateAccountRole(ctx context.Context, id int64, role models.Role) error {
	args := m.Called(ctx, id, role)
	return args.Error(0)
}

func (m *mockStore) CreateResource(ctx context.Context, resource *models.Resource) error {
	args := m.Called(ctx, resource)
	return args.Error(0)
}

func (m *mockStore) GetResource(ctx context.Context, id int64) (*models.Resource, error) {
	args := m.Called(ctx, id)
	if resource, ok := args.Get(0).(*models.Resource); ok {
		return resource, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) ListResources(ctx context.Context) ([]*models.Resource, error) {
	args := m.Called(ctx)
	if resources, ok := args.Get(0).([]*models.Resource); ok {
		return resources, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) UpdateResourceStatus(ctx context.Context, id int64, status models.ResourceStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *mockStore) Credit(ctx context.Context, accountID int64, amount decimal.Decimal, kind models.EntryKind, description string) (*models.LedgerEntry, error) {
	args := m.Called(ctx, accountID, amount, kind, description)
	if entry, ok := args.Get(0).(*models.LedgerEntry); ok {
		return entry, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) Debit(ctx context.Context, accountID int64, amount decimal.Decimal, kind models.EntryKind, description string) (*models.LedgerEntry, error) {
	args := m.Called(ctx, accountID, amount, kind, description)
	if entry, ok := args.Get(0).(*models.LedgerEntry); ok {
		return entry, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) BalanceOf(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *mockStore) GetAccountEntries(ctx context.Context, accountID int64) ([]*models.LedgerEntry, error) {
	args := m.Called(ctx, accountID)
	if entries, ok := args.Get(0).([]*models.LedgerEntry); ok {
		return entries, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) CreateReservationWithFunds(ctx context.Context, accountID, resourceID int64, start, end time.Time) (*models.Reservation, error) {
	args := m.Called(ctx, accountID, resourceID, start, end)
	if reservation, ok := args.Get(0).(*models.Reservation); ok {
		return reservation, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) CancelReservationWithRefund(ctx context.Context, reservationID, requesterID int64, adminOverride bool) (*models.Reservation, error) {
	args := m.Called(ctx, reservationID, requesterID, adminOverride)
	if reservation, ok := args.Get(0).(*models.Reservation); ok {
		return reservation, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) GetReservation(ctx context.Context, id int64) (*models.Reservation, error) {
	args := m.Called(ctx, id)
	if reservation, ok := args.Get(0).(*models.Reservation); ok {
		return reservation, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) ListReservations(ctx context.Context) ([]*models.Reservation, error) {
	args := m.Called(ctx)
	if reservations, ok := args.Get(0).([]*models.Reservation); ok {
		return reservations, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) ListAccountReservations(ctx context.Context, accountID int64) ([]*models.Reservation, error) {
	args := m.Called(ctx, accountID)
	if reservations, ok := args.Get(0).([]*models.Reservation); ok {
		return reservations, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStore) ListActiveReservations(ctx context.Context, resourceID int64) ([]*models.Reservation, error) {
	args := m.Called(ctx, resourceID)
	if reservations, ok := args.Get(0).([]*models.Reservation); ok {
		return reservations, args.Error(1)
	}
	return nil, args.Error(1)
}
