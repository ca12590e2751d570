package database

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pcclub/internal/models"
)

func futureWindow(hoursFromNow, durationHours float64) (time.Time, time.Time) {
	start := time.Now().Add(time.Duration(hoursFromNow * float64(time.Hour)))
	end := start.Add(time.Duration(durationHours * float64(time.Hour)))
	return start, end
}

// Scenario from the pricing rules: balance 100, rate 20/h, 2h booking debits
// 40; cancelling before start restores the original 100 exactly.
func TestReservationLifecycle(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	account := createTestAccount(t, db, "100")
	resource := createTestResource(t, db, "PC-01", "20")

	start, end := futureWindow(1, 2)
	reservation, err := db.CreateReservationWithFunds(ctx, account.ID, resource.ID, start, end)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, reservation.Status)
	assert.EqualValues(t, 1, reservation.Version)

	balance, err := db.BalanceOf(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("60")), "got %s", balance)

	cancelled, err := db.CancelReservationWithRefund(ctx, reservation.ID, account.ID, false)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)

	balance, err = db.BalanceOf(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("100")), "got %s", balance)

	// The refund is a separate ledger entry, not an erased debit.
	entries, err := db.GetAccountEntries(ctx, account.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
	assert.Equal(t, models.KindRefund, entries[2].Kind)
}

func TestFractionalHoursCost(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	account := createTestAccount(t, db, "100")
	resource := createTestResource(t, db, "PC-01", "20")

	// 90 minutes at 20/h = 30, no whole-hour truncation.
	start, end := futureWindow(1, 1.5)
	_, err := db.CreateReservationWithFunds(ctx, account.ID, resource.ID, start, end)
	require.NoError(t, err)

	balance, err := db.BalanceOf(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("70")), "got %s", balance)
}

func TestSlotConflict(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first := createTestAccount(t, db, "100")
	second := createTestAccount(t, db, "100")
	resource := createTestResource(t, db, "PC-01", "10")

	start, end := futureWindow(2, 2)
	_, err := db.CreateReservationWithFunds(ctx, first.ID, resource.ID, start, end)
	require.NoError(t, err)

	cases := []struct {
		name       string
		start, end time.Time
	}{
		{"identical window", start, end},
		{"overlaps head", start.Add(-time.Hour), start.Add(time.Hour)},
		{"overlaps tail", end.Add(-time.Hour), end.Add(time.Hour)},
		{"contained", start.Add(30 * time.Minute), end.Add(-30 * time.Minute)},
		{"surrounding", start.Add(-time.Hour), end.Add(time.Hour)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := db.CreateReservationWithFunds(ctx, second.ID, resource.ID, tc.start, tc.end)
			assert.ErrorIs(t, err, ErrSlotConflict)
		})
	}

	// Conflict attempts must not touch the second account's balance.
	balance, err := db.BalanceOf(ctx, second.ID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("100")))
}

func TestBackToBackBookingsAllowed(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	account := createTestAccount(t, db, "100")
	resource := createTestResource(t, db, "PC-01", "10")

	start, end := futureWindow(2, 1)
	_, err := db.CreateReservationWithFunds(ctx, account.ID, resource.ID, start, end)
	require.NoError(t, err)

	// [end, end+1h) touches but does not overlap.
	_, err = db.CreateReservationWithFunds(ctx, account.ID, resource.ID, end, end.Add(time.Hour))
	require.NoError(t, err)

	// And the slot before the first one.
	_, err = db.CreateReservationWithFunds(ctx, account.ID, resource.ID, start.Add(-time.Hour), start)
	require.NoError(t, err)
}

func TestCancelledSlotReopens(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first := createTestAccount(t, db, "100")
	second := createTestAccount(t, db, "100")
	resource := createTestResource(t, db, "PC-01", "10")

	start, end := futureWindow(2, 2)
	reservation, err := db.CreateReservationWithFunds(ctx, first.ID, resource.ID, start, end)
	require.NoError(t, err)

	_, err = db.CancelReservationWithRefund(ctx, reservation.ID, first.ID, false)
	require.NoError(t, err)

	// Cancelled reservations no longer block the window.
	_, err = db.CreateReservationWithFunds(ctx, second.ID, resource.ID, start, end)
	require.NoError(t, err)
}

func TestInsufficientFundsRollsBackReservation(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	account := createTestAccount(t, db, "10")
	resource := createTestResource(t, db, "PC-01", "20")

	start, end := futureWindow(1, 2) // costs 40
	_, err := db.CreateReservationWithFunds(ctx, account.ID, resource.ID, start, end)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	// Neither money taken nor reservation written.
	balance, err := db.BalanceOf(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("10")))

	reservations, err := db.ListAccountReservations(ctx, account.ID)
	require.NoError(t, err)
	assert.Empty(t, reservations)
}

func TestCreateReservationMissingResource(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	account := createTestAccount(t, db, "100")

	start, end := futureWindow(1, 1)
	_, err := db.CreateReservationWithFunds(ctx, account.ID, 99999, start, end)
	assert.ErrorIs(t, err, ErrResourceNotFound)
}

func TestCancelRules(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	owner := createTestAccount(t, db, "100")
	stranger := createTestAccount(t, db, "100")
	resource := createTestResource(t, db, "PC-01", "10")

	t.Run("unknown reservation", func(t *testing.T) {
		_, err := db.CancelReservationWithRefund(ctx, 99999, owner.ID, false)
		assert.ErrorIs(t, err, ErrReservationNotFound)
	})

	t.Run("foreign reservation reads as not found", func(t *testing.T) {
		start, end := futureWindow(1, 1)
		reservation, err := db.CreateReservationWithFunds(ctx, owner.ID, resource.ID, start, end)
		require.NoError(t, err)

		_, err = db.CancelReservationWithRefund(ctx, reservation.ID, stranger.ID, false)
		assert.ErrorIs(t, err, ErrReservationNotFound)
	})

	t.Run("admin override cancels foreign reservation", func(t *testing.T) {
		start, end := futureWindow(3, 1)
		reservation, err := db.CreateReservationWithFunds(ctx, owner.ID, resource.ID, start, end)
		require.NoError(t, err)

		_, err = db.CancelReservationWithRefund(ctx, reservation.ID, stranger.ID, true)
		require.NoError(t, err)

		// Refund goes to the owner, not the requester.
		balance, err := db.BalanceOf(ctx, owner.ID)
		require.NoError(t, err)
		assert.True(t, balance.Equal(decimal.RequireFromString("90"))) // one active 1h booking left
	})

	t.Run("cancel twice fails", func(t *testing.T) {
		start, end := futureWindow(5, 1)
		reservation, err := db.CreateReservationWithFunds(ctx, owner.ID, resource.ID, start, end)
		require.NoError(t, err)

		_, err = db.CancelReservationWithRefund(ctx, reservation.ID, owner.ID, false)
		require.NoError(t, err)

		_, err = db.CancelReservationWithRefund(ctx, reservation.ID, owner.ID, false)
		assert.ErrorIs(t, err, ErrAlreadyFinalized)
	})
}

func TestCancelAfterStartFails(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	account := createTestAccount(t, db, "100")
	resource := createTestResource(t, db, "PC-01", "10")

	// Insert a running reservation directly; the public API refuses past
	// start times.
	start := time.Now().Add(-30 * time.Minute)
	end := time.Now().Add(90 * time.Minute)
	_, err := db.ExecContext(ctx,
		`INSERT INTO reservations (account_id, resource_id, start_time, end_time, status, created_at, version)
         VALUES (?, ?, ?, ?, ?, ?, 1)`,
		account.ID, resource.ID, formatTime(start), formatTime(end), string(models.StatusActive), formatTime(time.Now()))
	require.NoError(t, err)

	reservations, err := db.ListAccountReservations(ctx, account.ID)
	require.NoError(t, err)
	require.Len(t, reservations, 1)

	_, err = db.CancelReservationWithRefund(ctx, reservations[0].ID, account.ID, false)
	assert.ErrorIs(t, err, ErrTooLateToCancel)

	// Money and status untouched.
	balance, err := db.BalanceOf(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("100")))

	got, err := db.GetReservation(ctx, reservations[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, got.Status)
}

func TestElapsedReservationIsFinalized(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	account := createTestAccount(t, db, "100")
	resource := createTestResource(t, db, "PC-01", "10")

	start := time.Now().Add(-3 * time.Hour)
	end := time.Now().Add(-time.Hour)
	_, err := db.ExecContext(ctx,
		`INSERT INTO reservations (account_id, resource_id, start_time, end_time, status, created_at, version)
         VALUES (?, ?, ?, ?, ?, ?, 1)`,
		account.ID, resource.ID, formatTime(start), formatTime(end), string(models.StatusActive), formatTime(time.Now()))
	require.NoError(t, err)

	reservations, err := db.ListAccountReservations(ctx, account.ID)
	require.NoError(t, err)
	require.Len(t, reservations, 1)

	// Stored status is still active; the derived one is completed.
	assert.Equal(t, models.StatusActive, reservations[0].Status)
	assert.Equal(t, models.StatusCompleted, reservations[0].EffectiveStatus(time.Now()))

	_, err = db.CancelReservationWithRefund(ctx, reservations[0].ID, account.ID, false)
	assert.ErrorIs(t, err, ErrAlreadyFinalized)

	// Elapsed rows are excluded from the active listing.
	active, err := db.ListActiveReservations(ctx, resource.ID)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestListActiveReservations(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	account := createTestAccount(t, db, "100")
	resource := createTestResource(t, db, "PC-01", "10")
	other := createTestResource(t, db, "PC-02", "10")

	start, end := futureWindow(1, 1)
	_, err := db.CreateReservationWithFunds(ctx, account.ID, resource.ID, start, end)
	require.NoError(t, err)
	_, err = db.CreateReservationWithFunds(ctx, account.ID, other.ID, start, end)
	require.NoError(t, err)

	cancelledStart, cancelledEnd := futureWindow(4, 1)
	cancelled, err := db.CreateReservationWithFunds(ctx, account.ID, resource.ID, cancelledStart, cancelledEnd)
	require.NoError(t, err)
	_, err = db.CancelReservationWithRefund(ctx, cancelled.ID, account.ID, false)
	require.NoError(t, err)

	active, err := db.ListActiveReservations(ctx, resource.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, resource.ID, active[0].ResourceID)
}
