package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/middleware"
	log "github.com/sirupsen/logrus"
)

// IdempotencyKeyHeader carries the client-chosen key of a mutating request
const IdempotencyKeyHeader = "Idempotency-Key"

// IdempotencyStore reserves request keys. Reserve returns false when the key was already taken.
type IdempotencyStore interface {
	Reserve(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// Idempotency rejects a replayed Idempotency-Key with 409. Requests without the
// header pass through, as does everything when store is nil. A key whose request
// failed (status >= 400) is released so the client can retry with it.
func Idempotency(store IdempotencyStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(IdempotencyKeyHeader)
			if r.Method != http.MethodPost || key == "" {
				next.ServeHTTP(w, r)
				return
			}

			scoped := key
			if claims := claimsFromContext(r.Context()); claims != nil {
				scoped = fmt.Sprintf("%d:%s", claims.UserID, key)
			}

			reserved, err := store.Reserve(r.Context(), scoped)
			if err != nil {
				log.WithFields(log.Fields{
					"path":  r.URL.Path,
					"error": err,
				}).Error("Failed to reserve idempotency key")
				writeError(w, http.StatusServiceUnavailable, "Idempotency store unavailable", "")
				return
			}
			if !reserved {
				writeError(w, http.StatusConflict, "Request already processed", "duplicate_request")
				return
			}

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			if ww.Status() >= http.StatusBadRequest {
				if err := store.Release(context.WithoutCancel(r.Context()), scoped); err != nil {
					log.WithFields(log.Fields{
						"path":  r.URL.Path,
						"error": err,
					}).Error("Failed to release idempotency key")
				}
			}
		})
	}
}
