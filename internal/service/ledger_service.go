package service

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"pcclub/internal/domain"
	"pcclub/internal/metrics"
	"pcclub/internal/models"
)

// LedgerService exposes the account ledger at the boundary: deposits,
// withdrawals and history reads. The store enforces the balance invariants;
// this layer validates input and logs mutations.
type LedgerService struct {
	store  domain.Store
	logger *zerolog.Logger
}

func NewLedgerService(store domain.Store, logger *zerolog.Logger) *LedgerService {
	return &LedgerService{store: store, logger: logger}
}

func (s *LedgerService) Deposit(ctx context.Context, accountID int64, amount decimal.Decimal) (*models.LedgerEntry, error) {
	entry, err := s.store.Credit(ctx, accountID, amount, models.KindDeposit, "balance deposit")
	if err != nil {
		return nil, err
	}

	metrics.IncLedgerEntry(string(models.KindDeposit))
	s.logger.Info().
		Int64("account_id", accountID).
		Str("amount", amount.String()).
		Msg("deposit applied")
	return entry, nil
}

func (s *LedgerService) Withdraw(ctx context.Context, accountID int64, amount decimal.Decimal) (*models.LedgerEntry, error) {
	entry, err := s.store.Debit(ctx, accountID, amount, models.KindWithdrawal, "balance withdrawal")
	if err != nil {
		return nil, err
	}

	metrics.IncLedgerEntry(string(models.KindWithdrawal))
	s.logger.Info().
		Int64("account_id", accountID).
		Str("amount", amount.String()).
		Msg("withdrawal applied")
	return entry, nil
}

func (s *LedgerService) BalanceOf(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	return s.store.BalanceOf(ctx, accountID)
}

func (s *LedgerService) Entries(ctx context.Context, accountID int64) ([]*models.LedgerEntry, error) {
	return s.store.GetAccountEntries(ctx, accountID)
}
