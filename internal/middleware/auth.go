package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/TimFooLabs/drtimfoo-api/internal/auth"
)

// defaultMinAuthDuration is the minimum time to spend on auth to
// prevent timing attacks.
const defaultMinAuthDuration = 200 * time.Millisecond

// KeyVerdictCache caches the role a key last verified as, keyed by its
// quick hash, so hot paths skip the Argon2 work.
type KeyVerdictCache interface {
	GetKeyRole(ctx context.Context, keyHash string) (string, error)
	SetKeyRole(ctx context.Context, keyHash, role string) error
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger *slog.Logger
	Cache  KeyVerdictCache

	// Argon2id hashes from config. ServiceKeyHash is required;
	// AdminKeyHash may be empty, in which case no key verifies as admin.
	ServiceKeyHash string
	AdminKeyHash   string

	// MinDuration pads auth to a constant floor. Zero means the default;
	// tests set a tiny value.
	MinDuration time.Duration
}

// Auth returns a middleware that authenticates requests with a bearer
// service key. The presented key is verified against the configured
// Argon2id hashes and the resulting Principal is injected into the
// request context.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	minDuration := cfg.MinDuration
	if minDuration == 0 {
		minDuration = defaultMinAuthDuration
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			startTime := time.Now()

			// Ensure consistent timing regardless of outcome
			defer func() {
				elapsed := time.Since(startTime)
				if elapsed < minDuration {
					time.Sleep(minDuration - elapsed)
				}
			}()

			key := extractKey(r)
			if key == "" {
				logAuthFailure(cfg.Logger, r, "missing_key")
				writeAuthError(w)
				return
			}

			if err := auth.ValidateKeyFormat(key); err != nil {
				logAuthFailure(cfg.Logger, r, "invalid_format")
				writeAuthError(w)
				return
			}

			// Check cache first
			cacheKey := auth.QuickHash(key)
			cacheHit := false
			var role auth.Role

			if cfg.Cache != nil {
				if cached, _ := cfg.Cache.GetKeyRole(r.Context(), cacheKey); cached != "" {
					role = auth.Role(cached)
					cacheHit = true
				}
			}

			if !cacheHit {
				role = verifyRole(key, cfg)
				if role == "" {
					logAuthFailure(cfg.Logger, r, "invalid_key")
					writeAuthError(w)
					return
				}
				if cfg.Cache != nil {
					_ = cfg.Cache.SetKeyRole(r.Context(), cacheKey, string(role))
				}
			}

			cfg.Logger.Info("authentication successful",
				slog.String("role", string(role)),
				slog.String("ip", r.RemoteAddr),
				slog.String("endpoint", r.Method+" "+r.URL.Path),
				slog.Bool("cache_hit", cacheHit),
				slog.String("request_id", GetRequestID(r.Context())),
			)

			ctx := auth.ContextWithPrincipal(r.Context(), &auth.Principal{Role: role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// verifyRole checks the key against the admin hash first so an admin
// key never downgrades to the service role. Returns "" when neither
// hash matches.
func verifyRole(key string, cfg AuthConfig) auth.Role {
	if cfg.AdminKeyHash != "" {
		if match, err := auth.VerifyKey(key, cfg.AdminKeyHash); err == nil && match {
			return auth.RoleAdmin
		}
	}
	if match, err := auth.VerifyKey(key, cfg.ServiceKeyHash); err == nil && match {
		return auth.RoleService
	}
	return ""
}

func logAuthFailure(logger *slog.Logger, r *http.Request, reason string) {
	logger.Warn("authentication failed",
		slog.String("reason", reason),
		slog.String("ip", r.RemoteAddr),
		slog.String("endpoint", r.Method+" "+r.URL.Path),
		slog.String("request_id", GetRequestID(r.Context())),
	)
}

// extractKey extracts the service key from the request.
// Supports both "Authorization: Bearer <key>" and "X-API-Key: <key>" headers.
func extractKey(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		if strings.HasPrefix(authHeader, "Bearer ") {
			return strings.TrimPrefix(authHeader, "Bearer ")
		}
	}

	return r.Header.Get("X-API-Key")
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures to prevent enumeration.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"Invalid or missing service key"}}`))
}
