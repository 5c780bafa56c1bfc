// Package httpapi exposes the server's operations over a JSON HTTP API.
// Every public operation returns a structured {"success": ...} envelope;
// raw internal errors never cross this boundary.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/dmitrijs2005/s3vault/internal/logging"
	"github.com/dmitrijs2005/s3vault/internal/server/metrics"
	"github.com/dmitrijs2005/s3vault/internal/server/services"
)

type Server struct {
	address   string
	logger    logging.Logger
	users     *services.UserService
	settings  *services.SettingsService
	files     *services.FileService
	metrics   *metrics.Metrics
	jwtSecret []byte
}

func NewServer(address string, l logging.Logger, us *services.UserService, ss *services.SettingsService, fs *services.FileService, m *metrics.Metrics, secretKey string) *Server {
	return &Server{
		address:   address,
		logger:    l.With("module", "http_server"),
		users:     us,
		settings:  ss,
		files:     fs,
		metrics:   m,
		jwtSecret: []byte(secretKey),
	}
}

func (s *Server) router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.observe)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/auth/register", s.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/auth/refresh", s.handleRefresh).Methods(http.MethodPost)

	authed := api.NewRoute().Subrouter()
	authed.Use(s.requireAuth)

	authed.HandleFunc("/settings/default", s.handleEnsureDefaultConfig).Methods(http.MethodPost)
	authed.HandleFunc("/settings/test", s.handleTestConnection).Methods(http.MethodPost)
	authed.HandleFunc("/settings/credentials", s.handleSaveCredentials).Methods(http.MethodPost)
	authed.HandleFunc("/settings/encryption", s.handleSaveEncryptionMethod).Methods(http.MethodPost)

	authed.HandleFunc("/files", s.handleUpload).Methods(http.MethodPost)
	authed.HandleFunc("/files", s.handleList).Methods(http.MethodGet)
	authed.HandleFunc("/files/{key}", s.handleDownload).Methods(http.MethodGet)

	return r
}

// Run serves the API until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
