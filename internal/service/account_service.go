package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"pcclub/internal/domain"
	"pcclub/internal/models"
)

// AccountService manages account identity and roles. Balances are never
// touched here; every monetary change goes through the ledger.
type AccountService struct {
	store  domain.Store
	logger *zerolog.Logger
}

func NewAccountService(store domain.Store, logger *zerolog.Logger) *AccountService {
	return &AccountService{store: store, logger: logger}
}

func (s *AccountService) Create(ctx context.Context, account *models.Account) error {
	if account.FullName == "" {
		return fmt.Errorf("full name is required")
	}
	if account.Role != "" && !account.Role.Valid() {
		return fmt.Errorf("invalid role: %q", account.Role)
	}

	if err := s.store.CreateAccount(ctx, account); err != nil {
		return err
	}

	s.logger.Info().Int64("account_id", account.ID).Msg("account created")
	return nil
}

func (s *AccountService) Get(ctx context.Context, id int64) (*models.Account, error) {
	return s.store.GetAccount(ctx, id)
}

func (s *AccountService) GetByTelegramID(ctx context.Context, telegramID int64) (*models.Account, error) {
	return s.store.GetAccountByTelegramID(ctx, telegramID)
}

func (s *AccountService) List(ctx context.Context) ([]*models.Account, error) {
	return s.store.ListAccounts(ctx)
}

func (s *AccountService) SetRole(ctx context.Context, id int64, role models.Role) error {
	if !role.Valid() {
		return fmt.Errorf("invalid role: %q", role)
	}

	if err := s.store.UpdateAccountRole(ctx, id, role); err != nil {
		return err
	}

	s.logger.Info().Int64("account_id", id).Str("role", string(role)).Msg("account role updated")
	return nil
}
