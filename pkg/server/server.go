package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/kfpc0808/researchtmfax/pkg/model"
	"github.com/kfpc0808/researchtmfax/pkg/utils/logging"
)

// Dispatcher handles one parsed request and returns an action-dependent
// result value.
type Dispatcher interface {
	Dispatch(ctx context.Context, req *model.Request) (any, error)
}

// New builds the HTTP surface of the gateway: POST /api/data for the
// request mediator and GET /health for liveness.
func New(dispatcher Dispatcher, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/data", handleData(dispatcher))
	mux.HandleFunc("GET /health", handleHealth)

	return withRequestLog(logger, withRecover(mux))
}

func handleData(dispatcher Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil || len(body) == 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Empty body"})
			return
		}

		var req model.Request
		if err := json.Unmarshal(body, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Malformed request body"})
			return
		}

		result, err := dispatcher.Dispatch(r.Context(), &req)
		if err != nil {
			writeError(r.Context(), w, &req, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// writeError maps the error taxonomy onto status codes and body shapes:
// validation errors are 400, a missing delete target is 404, anything
// else is a 500 carrying the underlying message.
func writeError(ctx context.Context, w http.ResponseWriter, req *model.Request, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidAction):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid action."})
	case errors.Is(err, model.ErrCollectionNotFound):
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("Collection '%s' not found.", req.Collection),
		})
	case errors.Is(err, model.ErrDataRequired), errors.Is(err, model.ErrRowIndexRequired):
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Data/rowIndex required."})
	case errors.Is(err, model.ErrRowNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Row not found."})
	default:
		logging.From(ctx).Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Default().Error("failed to encode response", "error", err)
	}
}

// statusWriter records the status code for request logging.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// withRequestLog assigns each request an ID, attaches a request-scoped
// logger to the context and logs the outcome.
func withRequestLog(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()
		reqLogger := logger.With("request_id", requestID)
		ctx := logging.With(r.Context(), reqLogger)

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		started := time.Now()
		next.ServeHTTP(sw, r.WithContext(ctx))

		reqLogger.Info("handled request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"elapsed", time.Since(started),
		)
	})
}

// withRecover converts a panic into a 500 response instead of killing the
// connection.
func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logging.From(r.Context()).Error("panic in handler", "panic", rec)
				writeJSON(w, http.StatusInternalServerError, map[string]string{
					"error": fmt.Sprintf("%v", rec),
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
