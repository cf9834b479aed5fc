package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// shutdownTimeout bounds how long Stop waits for in-flight requests.
const shutdownTimeout = 5 * time.Second

// HTTPService runs the overlay's HTTP listener as a lifecycle Service.
type HTTPService struct {
	srv    *http.Server
	logger *zap.Logger
}

// NewHTTPService creates a service listening on addr.
//
// Precondition: addr must be non-empty; handler and logger must be non-nil.
func NewHTTPService(addr string, handler http.Handler, logger *zap.Logger) *HTTPService {
	return &HTTPService{
		srv: &http.Server{
			Addr:    addr,
			Handler: handler,
		},
		logger: logger,
	}
}

// Start blocks serving requests until Stop is called. Implements Service.
func (h *HTTPService) Start() error {
	h.logger.Info("http listener started", zap.String("addr", h.srv.Addr))
	if err := h.srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop drains in-flight requests and closes the listener. Implements
// Service.
func (h *HTTPService) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := h.srv.Shutdown(ctx); err != nil {
		h.logger.Warn("http shutdown", zap.Error(err))
	}
}
