package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Account struct {
	ID         int64           `json:"id"`
	TelegramID int64           `json:"telegram_id"`
	Username   string          `json:"username"`
	FullName   string          `json:"full_name"`
	Role       Role            `json:"role"`
	Balance    decimal.Decimal `json:"balance"`
	CreatedAt  time.Time       `json:"created_at"`
}

type Resource struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	Specs      string          `json:"specs"`
	HourlyRate decimal.Decimal `json:"hourly_rate"`
	Status     ResourceStatus  `json:"status"`
}

type Reservation struct {
	ID         int64             `json:"id"`
	AccountID  int64             `json:"account_id"`
	ResourceID int64             `json:"resource_id"`
	StartTime  time.Time         `json:"start_time"`
	EndTime    time.Time         `json:"end_time"`
	Status     ReservationStatus `json:"status"`
	CreatedAt  time.Time         `json:"created_at"`
	Version    int64             `json:"version"`
}

// EffectiveStatus derives "completed" lazily: an active reservation whose
// window has elapsed is reported as completed without any stored transition.
func (r *Reservation) EffectiveStatus(now time.Time) ReservationStatus {
	if r.Status == StatusActive && !now.Before(r.EndTime) {
		return StatusCompleted
	}
	return r.Status
}

// Overlaps reports whether the half-open windows [r.StartTime, r.EndTime)
// and [start, end) intersect. Back-to-back windows do not overlap.
func (r *Reservation) Overlaps(start, end time.Time) bool {
	return r.StartTime.Before(end) && r.EndTime.After(start)
}

type LedgerEntry struct {
	ID          int64           `json:"id"`
	AccountID   int64           `json:"account_id"`
	Amount      decimal.Decimal `json:"amount"` // positive = credit, negative = debit
	Kind        EntryKind       `json:"kind"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ReservationCost computes hours(end-start) * rate at full decimal precision.
// Hours are fractional, never truncated.
func ReservationCost(start, end time.Time, hourlyRate decimal.Decimal) decimal.Decimal {
	seconds := decimal.NewFromInt(int64(end.Sub(start) / time.Second))
	hours := seconds.Div(decimal.NewFromInt(3600))
	return hours.Mul(hourlyRate)
}
