package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/JaimeStill/covenant/pkg/handlers"
)

var errMissingToken = errors.New("missing bearer token")

// AuthConfig holds OIDC bearer token settings.
type AuthConfig struct {
	Enabled  bool   `toml:"enabled"`
	Issuer   string `toml:"issuer"`
	ClientID string `toml:"client_id"`
}

// AuthEnv maps auth config fields to environment variable names.
type AuthEnv struct {
	Enabled  string
	Issuer   string
	ClientID string
}

// Finalize applies environment overrides and validates that an enabled
// configuration names both an issuer and a client ID.
func (c *AuthConfig) Finalize(env *AuthEnv) error {
	if env != nil {
		c.loadEnv(env)
	}
	if !c.Enabled {
		return nil
	}
	if c.Issuer == "" {
		return fmt.Errorf("issuer required when auth is enabled")
	}
	if c.ClientID == "" {
		return fmt.Errorf("client_id required when auth is enabled")
	}
	return nil
}

// Merge overwrites fields from overlay. Enabled always applies.
func (c *AuthConfig) Merge(overlay *AuthConfig) {
	c.Enabled = overlay.Enabled
	if overlay.Issuer != "" {
		c.Issuer = overlay.Issuer
	}
	if overlay.ClientID != "" {
		c.ClientID = overlay.ClientID
	}
}

func (c *AuthConfig) loadEnv(env *AuthEnv) {
	if env.Enabled != "" {
		if v := os.Getenv(env.Enabled); v != "" {
			if enabled, err := strconv.ParseBool(v); err == nil {
				c.Enabled = enabled
			}
		}
	}
	if env.Issuer != "" {
		if v := os.Getenv(env.Issuer); v != "" {
			c.Issuer = v
		}
	}
	if env.ClientID != "" {
		if v := os.Getenv(env.ClientID); v != "" {
			c.ClientID = v
		}
	}
}

// TokenVerifier validates a raw bearer token. *oidc.IDTokenVerifier satisfies it.
type TokenVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (*oidc.IDToken, error)
}

// NewVerifier discovers the issuer's provider metadata and returns a verifier
// bound to the configured client ID.
func NewVerifier(ctx context.Context, cfg *AuthConfig) (*oidc.IDTokenVerifier, error) {
	provider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("discover oidc provider: %w", err)
	}
	return provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}), nil
}

type subjectKey struct{}

// Subject returns the authenticated token subject stored by Auth, if any.
func Subject(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(subjectKey{}).(string)
	return s, ok
}

// Auth returns middleware that rejects requests without a valid bearer token.
// The verified subject is attached to the request context.
func Auth(verifier TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || raw == "" {
				handlers.RespondError(w, logger, http.StatusUnauthorized, errMissingToken)
				return
			}

			token, err := verifier.Verify(r.Context(), raw)
			if err != nil {
				handlers.RespondError(w, logger, http.StatusUnauthorized, fmt.Errorf("invalid bearer token: %w", err))
				return
			}

			ctx := context.WithValue(r.Context(), subjectKey{}, token.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
