package middlewares

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/webshop-go/storefront/app/utils/sessions"
)

type contextKey string

const (
	ClientIDKey contextKey = "clientID"
	UserIDKey   contextKey = "userID"
)

// ClientSessionMiddleware guarantees every request carries a browser-scoped
// client id, minting one into the cookie session on first visit. The client
// id keys the anonymous cart; the user id, when present, keys the remote one.
func ClientSessionMiddleware(store sessions.SessionStore, log *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID := store.GetClientID(r)
			if clientID == "" {
				clientID = uuid.New().String()
				if err := store.SetClientID(w, r, clientID); err != nil {
					log.Errorw("failed to persist client id in session", "error", err)
				}
			}

			ctx := context.WithValue(r.Context(), ClientIDKey, clientID)
			if userID := store.GetUserID(r); userID != "" {
				ctx = context.WithValue(ctx, UserIDKey, userID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestLogger logs method, path, and duration for every request.
func RequestLogger(log *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.Infow("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
		})
	}
}

func ClientIDFromContext(ctx context.Context) string {
	clientID, _ := ctx.Value(ClientIDKey).(string)
	return clientID
}

func UserIDFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(UserIDKey).(string)
	return userID
}
