package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"consultify/internal/log"
	"consultify/internal/middleware/ratelimit"
	"consultify/internal/middleware/security"
	"consultify/internal/middleware/trace"
	"consultify/internal/services"
)

// Pinger is what readiness checks need from the store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies are the services the API serves.
type Dependencies struct {
	Payments  *services.PaymentService
	Customers *services.CustomerService
	Projects  *services.ProjectService
	Store     Pinger
}

type Options struct {
	Addr               string
	Logger             *log.Logger
	PageSize           int
	RateLimitPerMinute int
	TrustedProxies     []string
}

type Server struct {
	http.Server

	payments  *services.PaymentService
	customers *services.CustomerService
	projects  *services.ProjectService
	store     Pinger

	pageSize    int
	now         func() time.Time
	rateLimiter *ratelimit.Limiter

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(deps Dependencies, opts Options) (*Server, error) {
	if opts.PageSize <= 0 {
		opts.PageSize = 5
	}
	if opts.TrustedProxies == nil {
		opts.TrustedProxies = security.DefaultTrustedProxies
	}
	if opts.Logger == nil {
		opts.Logger = log.New(log.DefaultConfig())
	}

	ips, err := security.NewClientIPExtractor(opts.TrustedProxies...)
	if err != nil {
		return nil, err
	}

	s := &Server{
		payments:  deps.Payments,
		customers: deps.Customers,
		projects:  deps.Projects,
		store:     deps.Store,
		pageSize:  opts.PageSize,
		now:       time.Now,
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
		}),
	}

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
	})

	r.Use(
		trace.NewMiddleware(opts.Logger, ips.ClientIP).Middleware,
		security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware,
		s.rateLimiter.Middleware(ips.ClientIP, s.handleRateLimited,
			http.MethodPost, http.MethodPut, http.MethodDelete),
	)

	r.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/installments/preview", s.handlePreviewPlan).Methods(http.MethodPost)
	api.HandleFunc("/installments", s.handleCommitPlan).Methods(http.MethodPost)
	api.HandleFunc("/plans/{id}", s.handleGetPlan).Methods(http.MethodGet)

	// export.xlsx must be registered before {id}.
	api.HandleFunc("/payments/export.xlsx", s.handleExportLedger).Methods(http.MethodGet)
	api.HandleFunc("/payments", s.handleListPayments).Methods(http.MethodGet)
	api.HandleFunc("/payments", s.handleCreatePayment).Methods(http.MethodPost)
	api.HandleFunc("/payments/{id}", s.handleGetPayment).Methods(http.MethodGet)
	api.HandleFunc("/payments/{id}", s.handleUpdatePayment).Methods(http.MethodPut)
	api.HandleFunc("/payments/{id}", s.handleDeletePayment).Methods(http.MethodDelete)

	api.HandleFunc("/summary", s.handleSummary).Methods(http.MethodGet)

	api.HandleFunc("/customers", s.handleListCustomers).Methods(http.MethodGet)
	api.HandleFunc("/customers", s.handleCreateCustomer).Methods(http.MethodPost)
	api.HandleFunc("/customers/{id}", s.handleGetCustomer).Methods(http.MethodGet)

	api.HandleFunc("/projects", s.handleListProjects).Methods(http.MethodGet)
	api.HandleFunc("/projects", s.handleCreateProject).Methods(http.MethodPost)
	api.HandleFunc("/projects/{id}", s.handleGetProject).Methods(http.MethodGet)
	api.HandleFunc("/projects/{id}", s.handleUpdateProject).Methods(http.MethodPut)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

// Shutdown stops the rate limiter and drains the HTTP server. Only the first
// call has any effect.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WithComponent(log.ComponentRateLimit).
		WarnContext(r.Context(), "Rate limit exceeded", log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
	writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded, try again later"})
}
