package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"pcclub/internal/database"
	"pcclub/internal/models"
	"pcclub/internal/service"
)

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// writeBusinessError maps core error kinds onto HTTP status codes. Every
// business failure is a distinct recoverable outcome, never a 500.
func writeBusinessError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrAccountNotFound),
		errors.Is(err, database.ErrResourceNotFound),
		errors.Is(err, database.ErrReservationNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, database.ErrInsufficientFunds):
		writeError(w, http.StatusPaymentRequired, err.Error())
	case errors.Is(err, database.ErrSlotConflict),
		errors.Is(err, database.ErrAlreadyFinalized),
		errors.Is(err, database.ErrTooLateToCancel),
		errors.Is(err, database.ErrDuplicateName):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, database.ErrInvalidAmount),
		errors.Is(err, database.ErrInvalidWindow),
		errors.Is(err, database.ErrPastStart):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrTransient):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// Accounts

func (s *HTTPServer) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.accounts.List(r.Context())
	if err != nil {
		writeBusinessError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (s *HTTPServer) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TelegramID int64  `json:"telegram_id"`
		Username   string `json:"username"`
		FullName   string `json:"full_name"`
		Role       string `json:"role"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	account := &models.Account{
		TelegramID: body.TelegramID,
		Username:   body.Username,
		FullName:   body.FullName,
		Role:       models.Role(body.Role),
	}
	if err := s.accounts.Create(r.Context(), account); err != nil {
		writeBusinessError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

func (s *HTTPServer) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	account, err := s.accounts.Get(r.Context(), id)
	if err != nil {
		writeBusinessError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (s *HTTPServer) handleGetAccountByTelegram(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid telegram id")
		return
	}

	account, err := s.accounts.GetByTelegramID(r.Context(), id)
	if err != nil {
		writeBusinessError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (s *HTTPServer) handleSetRole(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	var body struct {
		Role string `json:"role"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	role, err := models.ParseRole(body.Role)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.accounts.SetRole(r.Context(), id, role); err != nil {
		writeBusinessError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleBalance(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	balance, err := s.ledger.BalanceOf(r.Context(), id)
	if err != nil {
		writeBusinessError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"balance": balance.String()})
}

func (s *HTTPServer) handleTransactions(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	entries, err := s.ledger.Entries(r.Context(), id)
	if err != nil {
		writeBusinessError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// Resources

func (s *HTTPServer) handleListResources(w http.ResponseWriter, r *http.Request) {
	resources, err := s.resources.List(r.Context())
	if err != nil {
		writeBusinessError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resources)
}

func (s *HTTPServer) handleCreateResource(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name       string `json:"name"`
		Specs      string `json:"specs"`
		HourlyRate string `json:"hourly_rate"`
		Status     string `json:"status"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	rate, err := decimal.NewFromString(body.HourlyRate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid hourly_rate")
		return
	}

	resource := &models.Resource{
		Name:       body.Name,
		Specs:      body.Specs,
		HourlyRate: rate,
		Status:     models.ResourceStatus(body.Status),
	}
	if err := s.resources.Create(r.Context(), resource); err != nil {
		writeBusinessError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resource)
}

func (s *HTTPServer) handleGetResource(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid resource id")
		return
	}

	resource, err := s.resources.Get(r.Context(), id)
	if err != nil {
		writeBusinessError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resource)
}

func (s *HTTPServer) handleSetResourceStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid resource id")
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	status, err := models.ParseResourceStatus(body.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.resources.SetStatus(r.Context(), id, status); err != nil {
		writeBusinessError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Reservations

type reservationView struct {
	*models.Reservation
	EffectiveStatus models.ReservationStatus `json:"effective_status"`
}

func viewReservations(reservations []*models.Reservation) []reservationView {
	now := time.Now()
	views := make([]reservationView, 0, len(reservations))
	for _, r := range reservations {
		views = append(views, reservationView{Reservation: r, EffectiveStatus: r.EffectiveStatus(now)})
	}
	return views
}

func (s *HTTPServer) handleListReservations(w http.ResponseWriter, r *http.Request) {
	reservations, err := s.reservations.List(r.Context())
	if err != nil {
		writeBusinessError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewReservations(reservations))
}

func (s *HTTPServer) handleAccountReservations(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	reservations, err := s.reservations.ListForAccount(r.Context(), id)
	if err != nil {
		writeBusinessError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewReservations(reservations))
}

func (s *HTTPServer) handleCreateReservation(w http.ResponseWriter, r *http.Request) {
	var body struct {
		AccountID  int64     `json:"account_id"`
		ResourceID int64     `json:"resource_id"`
		StartTime  time.Time `json:"start_time"`
		EndTime    time.Time `json:"end_time"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	reservation, err := s.reservations.Create(r.Context(), body.AccountID, body.ResourceID, body.StartTime, body.EndTime)
	if err != nil {
		writeBusinessError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, reservation)
}

func (s *HTTPServer) handleCancelReservation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid reservation id")
		return
	}

	var body struct {
		AccountID int64 `json:"account_id"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	requester, err := s.accounts.Get(r.Context(), body.AccountID)
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	if err := s.reservations.Cancel(r.Context(), id, requester); err != nil {
		writeBusinessError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

// Transactions

func (s *HTTPServer) handleDeposit(w http.ResponseWriter, r *http.Request) {
	s.handleLedgerMutation(w, r, s.ledger.Deposit)
}

func (s *HTTPServer) handleWithdrawal(w http.ResponseWriter, r *http.Request) {
	s.handleLedgerMutation(w, r, s.ledger.Withdraw)
}

func (s *HTTPServer) handleLedgerMutation(
	w http.ResponseWriter,
	r *http.Request,
	apply func(ctx context.Context, accountID int64, amount decimal.Decimal) (*models.LedgerEntry, error),
) {
	var body struct {
		AccountID int64  `json:"account_id"`
		Amount    string `json:"amount"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	amount, err := decimal.NewFromString(body.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount")
		return
	}

	entry, err := apply(r.Context(), body.AccountID, amount)
	if err != nil {
		writeBusinessError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}
