package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pcclub/internal/models"
)

// CreateReservationWithFunds runs the whole admission sequence as one atomic
// unit: load resource, check for overlapping active reservations, compute
// cost, debit the account, insert the reservation. The per-resource and
// per-account locks (taken in that fixed order) serialize concurrent
// attempts so two overlapping requests can never both pass the checks.
func (db *DB) CreateReservationWithFunds(ctx context.Context, accountID, resourceID int64, start, end time.Time) (*models.Reservation, error) {
	resourceLock := db.resourceLocks.lock(resourceID)
	defer resourceLock.Unlock()
	accountLock := db.accountLocks.lock(accountID)
	defer accountLock.Unlock()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// 1. Resource must exist; its hourly rate prices the window.
	var rateStr string
	err = tx.QueryRowContext(ctx, `SELECT hourly_rate FROM resources WHERE id = ?`, resourceID).Scan(&rateStr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrResourceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load resource: %w", err)
	}
	rate, err := parseDecimal(rateStr)
	if err != nil {
		return nil, err
	}

	// 2. Half-open overlap test: existing.start < new.end AND
	// existing.end > new.start. Back-to-back windows do not conflict.
	var conflicts int
	queryConflicts := `SELECT COUNT(*) FROM reservations
                       WHERE resource_id = ? AND status = ?
                       AND start_time < ? AND end_time > ?`
	err = tx.QueryRowContext(ctx, queryConflicts,
		resourceID, string(models.StatusActive),
		formatTime(end), formatTime(start),
	).Scan(&conflicts)
	if err != nil {
		return nil, fmt.Errorf("failed to check slot conflicts: %w", err)
	}
	if conflicts > 0 {
		return nil, ErrSlotConflict
	}

	// 3-4. Price the window and reserve funds. A failed debit rolls the
	// whole unit back; no reservation row is ever written without its entry.
	cost := models.ReservationCost(start, end, rate)
	description := fmt.Sprintf("booking resource %d %s - %s",
		resourceID, start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339))
	if _, err := applyEntryTx(ctx, tx, accountID, cost.Neg(), models.KindBooking, description); err != nil {
		return nil, err
	}

	// 5. Persist the booking.
	now := time.Now()
	queryInsert := `INSERT INTO reservations (account_id, resource_id, start_time, end_time, status, created_at, version)
                    VALUES (?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, queryInsert,
		accountID, resourceID,
		formatTime(start), formatTime(end),
		string(models.StatusActive), formatTime(now), 1,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert reservation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit reservation: %w", err)
	}

	return &models.Reservation{
		ID:         id,
		AccountID:  accountID,
		ResourceID: resourceID,
		StartTime:  start.UTC(),
		EndTime:    end.UTC(),
		Status:     models.StatusActive,
		CreatedAt:  now.UTC(),
		Version:    1,
	}, nil
}

// CancelReservationWithRefund reverses a booking as one atomic unit: the
// versioned status flip to cancelled and the full refund commit together or
// not at all. Ownership is enforced unless adminOverride is set; a foreign
// reservation is reported as not found rather than forbidden.
func (db *DB) CancelReservationWithRefund(ctx context.Context, reservationID, requesterID int64, adminOverride bool) (*models.Reservation, error) {
	reservation, err := db.GetReservation(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if !adminOverride && reservation.AccountID != requesterID {
		return nil, ErrReservationNotFound
	}

	resourceLock := db.resourceLocks.lock(reservation.ResourceID)
	defer resourceLock.Unlock()
	accountLock := db.accountLocks.lock(reservation.AccountID)
	defer accountLock.Unlock()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Re-read under the locks; the first read raced with other writers.
	row := tx.QueryRowContext(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, reservationID)
	reservation, err = scanReservation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load reservation: %w", err)
	}

	now := time.Now()
	if reservation.EffectiveStatus(now) != models.StatusActive {
		return nil, ErrAlreadyFinalized
	}
	if !now.Before(reservation.StartTime) {
		return nil, ErrTooLateToCancel
	}

	queryUpdate := `UPDATE reservations SET status = ?, version = version + 1 WHERE id = ? AND version = ?`
	result, err := tx.ExecContext(ctx, queryUpdate, string(models.StatusCancelled), reservationID, reservation.Version)
	if err != nil {
		return nil, fmt.Errorf("failed to update reservation status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, ErrConcurrentModification
	}

	var rateStr string
	err = tx.QueryRowContext(ctx, `SELECT hourly_rate FROM resources WHERE id = ?`, reservation.ResourceID).Scan(&rateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to load resource: %w", err)
	}
	rate, err := parseDecimal(rateStr)
	if err != nil {
		return nil, err
	}

	// Full refund, same formula as at creation. Never prorated.
	refund := models.ReservationCost(reservation.StartTime, reservation.EndTime, rate)
	description := fmt.Sprintf("refund for reservation %d", reservationID)
	if _, err := applyEntryTx(ctx, tx, reservation.AccountID, refund, models.KindRefund, description); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit cancellation: %w", err)
	}

	reservation.Status = models.StatusCancelled
	reservation.Version++
	return reservation, nil
}

const reservationColumns = `id, account_id, resource_id, start_time, end_time, status, created_at, version`

func scanReservation(row interface{ Scan(...any) error }) (*models.Reservation, error) {
	var r models.Reservation
	var start, end, status, createdAt string
	if err := row.Scan(&r.ID, &r.AccountID, &r.ResourceID, &start, &end, &status, &createdAt, &r.Version); err != nil {
		return nil, err
	}

	r.Status = models.ReservationStatus(status)
	var err error
	if r.StartTime, err = parseTime(start); err != nil {
		return nil, err
	}
	if r.EndTime, err = parseTime(end); err != nil {
		return nil, err
	}
	if r.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &r, nil
}

func (db *DB) GetReservation(ctx context.Context, id int64) (*models.Reservation, error) {
	row := db.QueryRowContext(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, id)
	reservation, err := scanReservation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	return reservation, nil
}

func (db *DB) queryReservations(ctx context.Context, query string, args ...any) ([]*models.Reservation, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reservations: %w", err)
	}
	defer rows.Close()

	var reservations []*models.Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		reservations = append(reservations, r)
	}
	return reservations, rows.Err()
}

func (db *DB) ListReservations(ctx context.Context) ([]*models.Reservation, error) {
	return db.queryReservations(ctx,
		`SELECT `+reservationColumns+` FROM reservations ORDER BY start_time DESC`)
}

func (db *DB) ListAccountReservations(ctx context.Context, accountID int64) ([]*models.Reservation, error) {
	return db.queryReservations(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE account_id = ? ORDER BY start_time DESC`,
		accountID)
}

// ListActiveReservations returns reservations that are active right now or in
// the future. Stored status alone is not enough: "completed" is derived, so
// elapsed rows are filtered out by end_time.
func (db *DB) ListActiveReservations(ctx context.Context, resourceID int64) ([]*models.Reservation, error) {
	return db.queryReservations(ctx,
		`SELECT `+reservationColumns+` FROM reservations
         WHERE resource_id = ? AND status = ? AND end_time > ?
         ORDER BY start_time`,
		resourceID, string(models.StatusActive), formatTime(time.Now()))
}
