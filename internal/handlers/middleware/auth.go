package middleware

import (
	"context"
	"net/http"

	"github.com/nkiryanov/chatapi/internal/handlers/render"
	"github.com/nkiryanov/chatapi/internal/handlers/userctx"
	"github.com/nkiryanov/chatapi/internal/models"
)

type authService interface {
	Auth(ctx context.Context, r *http.Request) (models.User, error)
}

// Pass request further only if it is authenticated; the user is put to request context
func AuthMiddleware(as authService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := as.Auth(r.Context(), r)
			if err != nil {
				render.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			ctx := userctx.New(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
