package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/todopilot/pilot/internal/pilot/domain"
	"github.com/todopilot/pilot/internal/pilot/service"
	"github.com/todopilot/pilot/pkg/httpx"
	"github.com/todopilot/pilot/pkg/pilotsdk"
	"github.com/todopilot/pilot/pkg/slogx"
)

type userCtxKey struct{}

func withUser(ctx context.Context, u domain.User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

// currentUser returns the user resolved by RequireUser.
func currentUser(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(userCtxKey{}).(domain.User)
	return u, ok
}

// RequireUser resolves the bearer token to a verified user and rejects the
// request otherwise. The user is stored on the context along with its id
// for per-user rate limiting.
func RequireUser(auth *service.AuthService) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token, _ := httpx.BearerToken(r)
			u, err := auth.Authenticate(ctx, token)
			if err != nil {
				switch {
				case errors.Is(err, service.ErrUnauthenticated):
					httpx.WriteError(w, http.StatusUnauthorized, pilotsdk.ErrorCodeUnauthenticated, "Authorization token required")
				case errors.Is(err, service.ErrExpiredToken):
					httpx.WriteError(w, http.StatusUnauthorized, pilotsdk.ErrorCodeExpiredToken, "Token has expired")
				case errors.Is(err, service.ErrInvalidToken):
					httpx.WriteError(w, http.StatusUnauthorized, pilotsdk.ErrorCodeInvalidToken, "Invalid token")
				case errors.Is(err, service.ErrEmailNotVerified):
					httpx.WriteError(w, http.StatusUnauthorized, pilotsdk.ErrorCodeEmailNotVerified, "Email not verified")
				case errors.Is(err, service.ErrUserNotFound):
					httpx.WriteError(w, http.StatusNotFound, pilotsdk.ErrorCodeNotFound, "User not found")
				default:
					slogx.FromContext(ctx).Error("failed to authenticate request", slog.Any("error", err))
					httpx.WriteError(w, http.StatusInternalServerError, pilotsdk.ErrorCodeServerError, "Server error")
				}
				return
			}

			ctx = withUser(ctx, u)
			ctx = httpx.WithUserID(ctx, u.ID)
			ctx = slogx.WithContext(ctx, slogx.FromContext(ctx).With(slog.String("user_id", u.ID)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// mustUser is used by handlers mounted behind RequireUser.
func mustUser(w http.ResponseWriter, r *http.Request) (domain.User, bool) {
	u, ok := currentUser(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, pilotsdk.ErrorCodeUnauthenticated, "Authorization token required")
	}
	return u, ok
}
