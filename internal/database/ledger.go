package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"pcclub/internal/models"
)

// The ledger is the single writer of account balances. All balance changes
// go through applyEntryTx, whether triggered by a standalone credit/debit or
// as part of a reservation transaction. Per-account serialization is the
// caller's job: Credit/Debit take the account lock themselves, reservation
// operations hold it across their larger transaction.

// applyEntryTx appends a signed ledger entry and moves the balance by the
// same amount inside the given transaction.
func applyEntryTx(ctx context.Context, tx *sql.Tx, accountID int64, amount decimal.Decimal, kind models.EntryKind, description string) (*models.LedgerEntry, error) {
	var balanceStr string
	err := tx.QueryRowContext(ctx, `SELECT balance FROM accounts WHERE id = ?`, accountID).Scan(&balanceStr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read balance: %w", err)
	}

	balance, err := parseDecimal(balanceStr)
	if err != nil {
		return nil, err
	}

	newBalance := balance.Add(amount)
	if newBalance.IsNegative() {
		return nil, ErrInsufficientFunds
	}

	if _, err := tx.ExecContext(ctx, `UPDATE accounts SET balance = ? WHERE id = ?`, newBalance.String(), accountID); err != nil {
		return nil, fmt.Errorf("failed to update balance: %w", err)
	}

	now := time.Now()
	result, err := tx.ExecContext(ctx,
		`INSERT INTO ledger_entries (account_id, amount, kind, description, created_at) VALUES (?, ?, ?, ?, ?)`,
		accountID, amount.String(), string(kind), description, formatTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to append ledger entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return &models.LedgerEntry{
		ID:          id,
		AccountID:   accountID,
		Amount:      amount,
		Kind:        kind,
		Description: description,
		CreatedAt:   now.UTC(),
	}, nil
}

// Credit appends a positive entry and increases the balance.
func (db *DB) Credit(ctx context.Context, accountID int64, amount decimal.Decimal, kind models.EntryKind, description string) (*models.LedgerEntry, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	lock := db.accountLocks.lock(accountID)
	defer lock.Unlock()

	return db.applyEntry(ctx, accountID, amount, kind, description)
}

// Debit appends a negative entry and decreases the balance. Fails with
// ErrInsufficientFunds when amount exceeds the current balance.
func (db *DB) Debit(ctx context.Context, accountID int64, amount decimal.Decimal, kind models.EntryKind, description string) (*models.LedgerEntry, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	lock := db.accountLocks.lock(accountID)
	defer lock.Unlock()

	return db.applyEntry(ctx, accountID, amount.Neg(), kind, description)
}

func (db *DB) applyEntry(ctx context.Context, accountID int64, amount decimal.Decimal, kind models.EntryKind, description string) (*models.LedgerEntry, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	entry, err := applyEntryTx(ctx, tx, accountID, amount, kind, description)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit ledger entry: %w", err)
	}
	return entry, nil
}

func (db *DB) BalanceOf(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	var balanceStr string
	err := db.QueryRowContext(ctx, `SELECT balance FROM accounts WHERE id = ?`, accountID).Scan(&balanceStr)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Decimal{}, ErrAccountNotFound
	}
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("failed to read balance: %w", err)
	}
	return parseDecimal(balanceStr)
}

func (db *DB) GetAccountEntries(ctx context.Context, accountID int64) ([]*models.LedgerEntry, error) {
	query := `SELECT id, account_id, amount, kind, description, created_at
              FROM ledger_entries WHERE account_id = ? ORDER BY id`
	rows, err := db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.LedgerEntry
	for rows.Next() {
		e := &models.LedgerEntry{}
		var amount, kind, createdAt string
		if err := rows.Scan(&e.ID, &e.AccountID, &amount, &kind, &e.Description, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		e.Kind = models.EntryKind(kind)
		if e.Amount, err = parseDecimal(amount); err != nil {
			return nil, err
		}
		if e.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
