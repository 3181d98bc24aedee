package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/cbodonnell/goban/pkg/api/handlers"
	"github.com/cbodonnell/goban/pkg/api/middleware"
	"github.com/cbodonnell/goban/pkg/log"
	"github.com/cbodonnell/goban/pkg/repositories"
	"github.com/cbodonnell/goban/pkg/state"
	"github.com/gorilla/mux"
)

type APIServer struct {
	server *http.Server
	tls    *TLSConfig
}

type TLSConfig struct {
	CertFile string
	KeyFile  string
}

type NewAPIServerOptions struct {
	Port         int
	TLS          *TLSConfig
	AllowOrigin  string
	StateManager state.StateManager
	// Repository is optional
	Repository repositories.Repository
}

// NewAPIServer creates a new http.Server exposing the state of the running session
func NewAPIServer(opts NewAPIServerOptions) *APIServer {
	return &APIServer{
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", opts.Port),
			Handler: NewRouter(opts),
		},
		tls: opts.TLS,
	}
}

func NewRouter(opts NewAPIServerOptions) http.Handler {
	allowOrigin := opts.AllowOrigin
	if allowOrigin == "" {
		allowOrigin = "*"
	}

	r := mux.NewRouter()
	r.Use(middleware.NewLoggingMiddleware())
	r.Use(middleware.NewCORSMiddleware(allowOrigin))

	r.HandleFunc("/status", handlers.HandleStatus(opts.StateManager)).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/board", handlers.HandleBoard(opts.StateManager)).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/desyncs", handlers.HandleListDesyncs(opts.StateManager, opts.Repository)).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/ws", handlers.HandleBoardStream(opts.StateManager, allowOrigin)).Methods(http.MethodGet)
	return r
}

// Start starts the APIServer
func (s *APIServer) Start() {
	var listenAndServe func() error
	if s.tls != nil {
		log.Info("API server listening on %s with TLS", s.server.Addr)
		listenAndServe = func() error {
			return s.server.ListenAndServeTLS(s.tls.CertFile, s.tls.KeyFile)
		}
	} else {
		log.Info("API server listening on %s", s.server.Addr)
		listenAndServe = s.server.ListenAndServe
	}
	if err := listenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			log.Info("API server closed")
			return
		}
		log.Error("API server error: %v", err)
	}
}

// Stop stops the APIServer
func (s *APIServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
