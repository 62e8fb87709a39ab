package transport

import (
	"context"

	"github.com/go-kit/log"
)

// ErrorHandler receives a transport error to be processed for diagnostic purposes.
// Usually this means logging the error.
type ErrorHandler interface {
	Handle(ctx context.Context, err error)
}

// LogErrorHandler is a transport error handler implementation which logs an error.
type LogErrorHandler struct {
	logger log.Logger
}

// NewLogErrorHandler returns an ErrorHandler that logs to logger.
func NewLogErrorHandler(logger log.Logger) *LogErrorHandler {
	return &LogErrorHandler{
		logger: logger,
	}
}

// Handle logs err, with its category and domain when it is an *Error.
func (h *LogErrorHandler) Handle(ctx context.Context, err error) {
	if te, ok := err.(*Error); ok {
		h.logger.Log("transport", te.Domain, "category", te.Category, "status", te.StatusCode, "err", err)
		return
	}
	h.logger.Log("err", err)
}

// ErrorHandlerFunc is an adapter to allow the use of ordinary functions as ErrorHandlers.
type ErrorHandlerFunc func(ctx context.Context, err error)

// Handle calls f(ctx, err).
func (f ErrorHandlerFunc) Handle(ctx context.Context, err error) {
	f(ctx, err)
}
