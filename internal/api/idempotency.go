package api

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/onnwee/newsai/internal/idempotency"
	"github.com/onnwee/newsai/internal/middleware"
)

// captureWriter tees the response so it can be stored for replay.
type captureWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (cw *captureWriter) WriteHeader(code int) {
	if cw.status == 0 {
		cw.status = code
	}
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	if cw.status == 0 {
		cw.status = http.StatusOK
	}
	cw.body.Write(b)
	return cw.ResponseWriter.Write(b)
}

func (cw *captureWriter) Unwrap() http.ResponseWriter {
	return cw.ResponseWriter
}

// Idempotent replays the first successful response for a repeated
// Idempotency-Key from the same user on the same route. Requests without the
// header pass through. Store errors are logged and the request proceeds.
// metrics may be nil.
func Idempotent(store idempotency.Store, ttl time.Duration, metrics *middleware.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(idempotency.HeaderKey)
			if key == "" || store == nil {
				next.ServeHTTP(w, r)
				return
			}
			if err := idempotency.ValidateKey(key); err != nil {
				WriteError(w, r.Context(), http.StatusBadRequest, ErrCodeValidation, err.Error())
				return
			}

			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
			if err != nil {
				WriteError(w, r.Context(), http.StatusBadRequest, ErrCodeBadRequest, "Request body too large")
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			ctx := r.Context()
			scope := idempotency.Scope(middleware.GetUserID(ctx), r.Method, r.URL.Path, key)
			requestHash := idempotency.HashRequest(body)

			rec, err := store.Get(ctx, scope)
			switch {
			case err == nil:
				if rec.RequestHash != requestHash {
					metrics.IncIdempotency(middleware.IdempotencyConflict)
					WriteError(w, ctx, http.StatusUnprocessableEntity, ErrCodeIdempotencyConflict,
						"Idempotency-Key was already used with a different request body")
					return
				}
				metrics.IncIdempotency(middleware.IdempotencyReplayed)
				slog.InfoContext(ctx, "idempotency key found, replaying stored response", "status", rec.StatusCode)
				if rec.ContentType != "" {
					w.Header().Set("Content-Type", rec.ContentType)
				}
				w.Header().Set(idempotency.HeaderReplayed, "true")
				w.WriteHeader(rec.StatusCode)
				if _, err := w.Write(rec.Body); err != nil {
					slog.ErrorContext(ctx, "failed to write replayed response", "error", err)
				}
				return
			case !errors.Is(err, idempotency.ErrNotFound):
				slog.WarnContext(ctx, "idempotency lookup failed", "error", err)
			}

			cw := &captureWriter{ResponseWriter: w}
			next.ServeHTTP(cw, r)

			if cw.status < 200 || cw.status >= 300 {
				return
			}
			err = store.Put(ctx, &idempotency.Record{
				Scope:       scope,
				RequestHash: requestHash,
				StatusCode:  cw.status,
				ContentType: w.Header().Get("Content-Type"),
				Body:        cw.body.Bytes(),
			}, ttl)
			switch {
			case err == nil:
				metrics.IncIdempotency(middleware.IdempotencyStored)
			case !errors.Is(err, idempotency.ErrKeyExists):
				slog.WarnContext(ctx, "failed to store idempotent response", "error", err)
			}
		})
	}
}
