package models

import "fmt"

// Role is the account's access level.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleUser:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role: %q", s)
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// ResourceStatus is the administrative flag on a workstation. It is
// independent of the booking timeline: an available workstation can still
// carry future reservations.
type ResourceStatus string

const (
	ResourceAvailable   ResourceStatus = "available"
	ResourceOccupied    ResourceStatus = "occupied"
	ResourceMaintenance ResourceStatus = "maintenance"
)

func ParseResourceStatus(s string) (ResourceStatus, error) {
	switch ResourceStatus(s) {
	case ResourceAvailable, ResourceOccupied, ResourceMaintenance:
		return ResourceStatus(s), nil
	}
	return "", fmt.Errorf("unknown resource status: %q", s)
}

func (s ResourceStatus) Valid() bool {
	_, err := ParseResourceStatus(string(s))
	return err == nil
}

// ReservationStatus transitions: active -> completed (time elapses) or
// active -> cancelled (explicit, before start). Both end states are terminal.
// "completed" is never stored; it is derived at read time.
type ReservationStatus string

const (
	StatusActive    ReservationStatus = "active"
	StatusCompleted ReservationStatus = "completed"
	StatusCancelled ReservationStatus = "cancelled"
)

// EntryKind tags the business meaning of a ledger entry.
type EntryKind string

const (
	KindDeposit    EntryKind = "deposit"
	KindWithdrawal EntryKind = "withdrawal"
	KindBooking    EntryKind = "booking"
	KindRefund     EntryKind = "refund"
)

func ParseEntryKind(s string) (EntryKind, error) {
	switch EntryKind(s) {
	case KindDeposit, KindWithdrawal, KindBooking, KindRefund:
		return EntryKind(s), nil
	}
	return "", fmt.Errorf("unknown entry kind: %q", s)
}
