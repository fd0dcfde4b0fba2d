package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/Cavedragon13/ai-image-organizer/internal/api/response"
	"golang.org/x/crypto/bcrypt"
)

// apiKeyClient is the rate-limit identity of every request that presented
// the configured key.
const apiKeyClient = "apikey"

// Auth checks a Bearer token against a single bcrypt hash from config.
type Auth struct {
	keyHash []byte
}

// NewAuth creates a new Auth middleware. An empty hash disables
// authentication.
func NewAuth(keyHash string) *Auth {
	if keyHash == "" {
		slog.Warn("API authentication disabled: ORGANIZER_API_KEY_HASH is not set")
	}
	return &Auth{keyHash: []byte(keyHash)}
}

// Enabled reports whether requests must carry a key.
func (a *Auth) Enabled() bool { return len(a.keyHash) > 0 }

// Authenticate validates the Bearer token and records the caller's
// identity in the request context for rate limiting.
func (a *Auth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		rawKey := extractBearerToken(r)
		if rawKey == "" {
			response.Error(w, http.StatusUnauthorized,
				"INVALID_TOKEN", "Missing or invalid Authorization header", nil)
			return
		}

		if bcrypt.CompareHashAndPassword(a.keyHash, []byte(rawKey)) != nil {
			response.Error(w, http.StatusUnauthorized,
				"INVALID_TOKEN", "Invalid API key", nil)
			return
		}

		next.ServeHTTP(w, r.WithContext(setClientID(r.Context(), apiKeyClient)))
	})
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
