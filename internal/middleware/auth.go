package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/jaekwang-park/taskboard-api/internal/auth"
	"github.com/jaekwang-park/taskboard-api/internal/model"
)

var (
	// ErrUnauthenticated wraps every reason a request carries no usable identity.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrUserNotFound must be returned by IdentityResolver for unknown subjects.
	ErrUserNotFound = errors.New("user not found")
)

// TokenVerifier is satisfied by *auth.TokenManager.
type TokenVerifier interface {
	Verify(token string) (model.Caller, error)
}

// IdentityResolver loads the stored identity behind a token subject. The
// returned role is authoritative; the role claim in the token is not.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, id string) (model.Caller, error)
}

type AuthConfig struct {
	Verifier TokenVerifier
	Resolver IdentityResolver
	Logger   *slog.Logger
}

type Auth struct {
	cfg AuthConfig
}

func NewAuth(cfg AuthConfig) (*Auth, error) {
	if cfg.Verifier == nil {
		return nil, fmt.Errorf("middleware: Verifier is required")
	}
	if cfg.Resolver == nil {
		return nil, fmt.Errorf("middleware: Resolver is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Auth{cfg: cfg}, nil
}

// Authenticate turns a raw Authorization header into a verified caller.
// Every rejection wraps ErrUnauthenticated; the underlying cause is kept in
// the chain for logging. Other errors are resolver failures.
func (a *Auth) Authenticate(ctx context.Context, header string) (model.Caller, error) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || scheme != "Bearer" || strings.TrimSpace(token) == "" {
		return model.Caller{}, fmt.Errorf("%w: missing bearer token", ErrUnauthenticated)
	}

	claimed, err := a.cfg.Verifier.Verify(strings.TrimSpace(token))
	if err != nil {
		return model.Caller{}, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	caller, err := a.cfg.Resolver.ResolveIdentity(ctx, claimed.ID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return model.Caller{}, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
		}
		return model.Caller{}, fmt.Errorf("failed to resolve identity: %w", err)
	}
	return caller, nil
}

func (a *Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip auth for health check and auth endpoints
		cleanPath := path.Clean(r.URL.Path)
		if cleanPath == "/health" || strings.HasPrefix(cleanPath, "/api/v1/auth/") {
			next.ServeHTTP(w, r)
			return
		}

		caller, err := a.Authenticate(r.Context(), r.Header.Get("Authorization"))
		if err != nil {
			a.reject(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(SetCaller(r.Context(), caller)))
	})
}

func (a *Auth) reject(w http.ResponseWriter, r *http.Request, err error) {
	if !errors.Is(err, ErrUnauthenticated) {
		a.cfg.Logger.ErrorContext(r.Context(), "identity resolution failed", "error", err)
		writeError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	reason := "token_invalid"
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		reason = "token_expired"
	case errors.Is(err, ErrUserNotFound):
		reason = "user_not_found"
	}
	a.cfg.Logger.DebugContext(r.Context(), "request rejected",
		"reason", reason,
		"method", r.Method,
		"path", r.URL.Path,
	)

	if reason == "token_expired" {
		writeError(w, http.StatusUnauthorized, msgSessionExpired)
		return
	}
	writeError(w, http.StatusUnauthorized, msgUnauthorized)
}

// RequireAdmin must run behind Auth.Middleware. Non-admin callers get the
// same response as unauthenticated ones.
func RequireAdmin(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, ok := CallerFrom(r.Context())
			if !ok || !caller.IsAdmin() {
				logger.WarnContext(r.Context(), "request rejected",
					"reason", "forbidden",
					"caller_id", caller.ID,
					"method", r.Method,
					"path", r.URL.Path,
				)
				writeError(w, http.StatusUnauthorized, msgUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
