package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"pcclub/internal/config"
	"pcclub/internal/metrics"
	"pcclub/internal/service"
)

// HTTPServer is the transport adapter over the core services. It only
// decodes requests, calls into the services and maps business errors to
// status codes; no booking or ledger logic lives here.
type HTTPServer struct {
	cfg          config.APIConfig
	accounts     *service.AccountService
	resources    *service.ResourceService
	ledger       *service.LedgerService
	reservations *service.ReservationService
	server       *http.Server
	auth         *HTTPAuth
	log          zerolog.Logger
}

func NewHTTPServer(
	cfg config.APIConfig,
	accounts *service.AccountService,
	resources *service.ResourceService,
	ledger *service.LedgerService,
	reservations *service.ReservationService,
	logger *zerolog.Logger,
) *HTTPServer {
	srv := &HTTPServer{
		cfg:          cfg,
		accounts:     accounts,
		resources:    resources,
		ledger:       ledger,
		reservations: reservations,
		log:          logger.With().Str("component", "api").Logger(),
	}
	srv.auth = NewHTTPAuth(cfg)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/accounts", srv.handleListAccounts)
	mux.HandleFunc("POST /api/v1/accounts", srv.handleCreateAccount)
	mux.HandleFunc("GET /api/v1/accounts/{id}", srv.handleGetAccount)
	mux.HandleFunc("GET /api/v1/accounts/telegram/{id}", srv.handleGetAccountByTelegram)
	mux.HandleFunc("PUT /api/v1/accounts/{id}/role", srv.handleSetRole)
	mux.HandleFunc("GET /api/v1/accounts/{id}/balance", srv.handleBalance)
	mux.HandleFunc("GET /api/v1/accounts/{id}/transactions", srv.handleTransactions)

	mux.HandleFunc("GET /api/v1/resources", srv.handleListResources)
	mux.HandleFunc("POST /api/v1/resources", srv.handleCreateResource)
	mux.HandleFunc("GET /api/v1/resources/{id}", srv.handleGetResource)
	mux.HandleFunc("PUT /api/v1/resources/{id}/status", srv.handleSetResourceStatus)

	mux.HandleFunc("GET /api/v1/reservations", srv.handleListReservations)
	mux.HandleFunc("POST /api/v1/reservations", srv.handleCreateReservation)
	mux.HandleFunc("GET /api/v1/reservations/account/{id}", srv.handleAccountReservations)
	mux.HandleFunc("PUT /api/v1/reservations/{id}/cancel", srv.handleCancelReservation)

	mux.HandleFunc("POST /api/v1/transactions/deposit", srv.handleDeposit)
	mux.HandleFunc("POST /api/v1/transactions/withdrawal", srv.handleWithdrawal)

	mux.HandleFunc("GET /healthz", srv.handleHealth)

	handler := srv.loggingMiddleware(srv.auth.Wrap(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.log.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		metrics.IncHTTP(r.URL.Path)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
