package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/ray-remotestate/toomburg/handlers"
	"github.com/ray-remotestate/toomburg/metrics"
	"github.com/ray-remotestate/toomburg/middlewares"
	"github.com/ray-remotestate/toomburg/models"
)

type Server struct {
	Router *mux.Router

	mu     sync.Mutex
	server *http.Server
}

const (
	readTimeout       = 5 * time.Minute
	readHeaderTimeout = 30 * time.Second
	writeTimeout      = 5 * time.Minute
)

func SetupRoutes(h *handlers.Handler, sm *middlewares.SessionManager, limiter *middlewares.RateLimiter, m *metrics.Collector) *Server {
	router := mux.NewRouter()
	router.Use(middlewares.Recovery, middlewares.Logging(m), sm.Load)

	requireCustomer := middlewares.RoleBasedMiddleware(http.HandlerFunc(h.LoginRequired), models.RoleCustomer)
	requireAdmin := middlewares.RoleBasedMiddleware(http.HandlerFunc(h.AccessDenied), models.RoleAdmin)

	router.HandleFunc("/health", h.Health).Methods("GET")
	router.Handle("/metrics", m.Handler()).Methods("GET")

	router.Handle("/", limiter.Middleware(http.HandlerFunc(h.Login))).Methods("GET", "POST")
	router.Handle("/register", limiter.Middleware(http.HandlerFunc(h.Register))).Methods("GET", "POST")
	router.HandleFunc("/logout", h.Logout).Methods("POST")
	router.HandleFunc("/home", h.Home).Methods("GET")

	router.HandleFunc("/order", h.Order).Methods("GET", "POST")
	router.Handle("/confirm_order", requireCustomer(http.HandlerFunc(h.ConfirmOrder))).Methods("GET", "POST")
	router.HandleFunc("/process_payment", h.ProcessPayment).Methods("POST")
	router.Handle("/reserve", requireCustomer(http.HandlerFunc(h.Reserve))).Methods("GET", "POST")

	// admin only
	router.Handle("/admin_dashboard", requireAdmin(http.HandlerFunc(h.AdminDashboard))).Methods("GET")

	return &Server{
		Router: router,
	}
}

func (svr *Server) Run(port string) error {
	srv := &http.Server{
		Addr:              port,
		Handler:           svr.Router,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
	}
	svr.mu.Lock()
	svr.server = srv
	svr.mu.Unlock()
	return srv.ListenAndServe()
}

func (svr *Server) Shutdown(timeout time.Duration) error {
	svr.mu.Lock()
	srv := svr.server
	svr.mu.Unlock()
	if srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return srv.Shutdown(ctx)
}
