package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pcclub/internal/models"
)

func (db *DB) CreateAccount(ctx context.Context, account *models.Account) error {
	if account.Role == "" {
		account.Role = models.RoleUser
	}
	now := time.Now()

	query := `INSERT INTO accounts (telegram_id, username, full_name, role, balance, created_at)
              VALUES (?, ?, ?, ?, ?, ?)`
	result, err := db.ExecContext(ctx, query,
		account.TelegramID,
		account.Username,
		account.FullName,
		string(account.Role),
		account.Balance.String(),
		formatTime(now),
	)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	account.ID = id
	account.CreatedAt = now.UTC()
	return nil
}

const accountColumns = `id, telegram_id, username, full_name, role, balance, created_at`

func scanAccount(row interface{ Scan(...any) error }) (*models.Account, error) {
	var a models.Account
	var role, balance, createdAt string
	if err := row.Scan(&a.ID, &a.TelegramID, &a.Username, &a.FullName, &role, &balance, &createdAt); err != nil {
		return nil, err
	}

	a.Role = models.Role(role)
	var err error
	if a.Balance, err = parseDecimal(balance); err != nil {
		return nil, err
	}
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func (db *DB) GetAccount(ctx context.Context, id int64) (*models.Account, error) {
	row := db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	account, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

func (db *DB) GetAccountByTelegramID(ctx context.Context, telegramID int64) (*models.Account, error) {
	row := db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE telegram_id = ?`, telegramID)
	account, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account by telegram id: %w", err)
	}
	return account, nil
}

func (db *DB) ListAccounts(ctx context.Context) ([]*models.Account, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

func (db *DB) UpdateAccountRole(ctx context.Context, id int64, role models.Role) error {
	result, err := db.ExecContext(ctx, `UPDATE accounts SET role = ? WHERE id = ?`, string(role), id)
	if err != nil {
		return fmt.Errorf("failed to update account role: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrAccountNotFound
	}
	return nil
}
