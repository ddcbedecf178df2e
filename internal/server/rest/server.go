// Package rest exposes the foodgram HTTP API on top of the services layer.
package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/foodgram/internal/logging"
)

const shutdownTimeout = 10 * time.Second

type HTTPServer struct {
	address         string
	svc             Services
	logger          logging.Logger
	jwtSecret       []byte
	defaultPageSize int
	maxPageSize     int
	baseURL         string
}

// NewHTTPServer builds the API server. baseURL is used for absolute
// pagination links; pageSize applies when a request sends no limit and
// maxPageSize caps the limit a client may ask for.
func NewHTTPServer(address string, l logging.Logger, svc Services, secretKey string, pageSize, maxPageSize int, baseURL string) *HTTPServer {
	if pageSize <= 0 {
		pageSize = 6
	}
	if maxPageSize <= 0 {
		maxPageSize = 100
	}
	maxPageSize = max(maxPageSize, pageSize)
	return &HTTPServer{
		address:         address,
		svc:             svc,
		logger:          l.With("module", "http_server"),
		jwtSecret:       []byte(secretKey),
		defaultPageSize: pageSize,
		maxPageSize:     maxPageSize,
		baseURL:         baseURL,
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
