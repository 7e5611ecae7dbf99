// Package rest is the JSON-over-HTTP gateway to the SecureDoc services. It
// serves the same messages as the gRPC endpoint.
package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/securedoc/internal/logging"
	"github.com/dmitrijs2005/securedoc/internal/server/services"
	"github.com/gorilla/mux"
)

const shutdownTimeout = 5 * time.Second

// maxBodyBytes caps request bodies. Payloads are metadata only.
const maxBodyBytes = 1 << 20

type HTTPServer struct {
	address    string
	users      services.Users
	categories services.Categories
	documents  services.Documents
	ledger     services.Ledger
	uploads    services.Uploads
	downloads  services.Downloads
	logger     logging.Logger
	jwtSecret  []byte
}

func NewHTTPServer(a string, l logging.Logger, set services.Set, secretKey string) *HTTPServer {
	return &HTTPServer{
		address:    a,
		logger:     l.With("module", "http_server"),
		users:      set.Users,
		categories: set.Categories,
		documents:  set.Documents,
		ledger:     set.Ledger,
		uploads:    set.Uploads,
		downloads:  set.Downloads,
		jwtSecret:  []byte(secretKey),
	}
}

// Router builds the route table.
func (s *HTTPServer) Router() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/api/ping", s.ping).Methods(http.MethodGet)
	router.HandleFunc("/api/auth/login", s.login).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/refresh", s.refresh).Methods(http.MethodPost)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(s.authMiddleware)
	api.HandleFunc("/profile", s.profile).Methods(http.MethodGet)
	api.HandleFunc("/profile/public-key", s.registerPublicKey).Methods(http.MethodPut)
	api.HandleFunc("/users", s.listUsers).Methods(http.MethodGet)
	api.HandleFunc("/users/by-email/{email}", s.userByEmail).Methods(http.MethodGet)
	api.HandleFunc("/categories", s.listCategories).Methods(http.MethodGet)
	api.HandleFunc("/categories", s.createCategory).Methods(http.MethodPost)
	api.HandleFunc("/categories/{id}", s.deleteCategory).Methods(http.MethodDelete)
	api.HandleFunc("/uploads/prepare", s.prepareUpload).Methods(http.MethodPost)
	api.HandleFunc("/uploads/confirm", s.confirmUpload).Methods(http.MethodPost)
	api.HandleFunc("/documents", s.listDocuments).Methods(http.MethodGet)
	api.HandleFunc("/documents/{id}", s.deleteDocument).Methods(http.MethodDelete)
	api.HandleFunc("/documents/{id}/share", s.shareDocument).Methods(http.MethodPost)
	api.HandleFunc("/documents/{id}/grants", s.listGrants).Methods(http.MethodGet)
	api.HandleFunc("/documents/{id}/download", s.downloadDocument).Methods(http.MethodGet)

	return router
}

// Run listens on the configured address and serves until ctx is done.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve serves on lis until ctx is done, then shuts down gracefully.
func (s *HTTPServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
