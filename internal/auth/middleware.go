package auth

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/sungwon/message-gateway/internal/metrics"
	"github.com/sungwon/message-gateway/internal/ratelimit"
)

// SkipPaths are served without authentication or admission control.
// Matching is by prefix.
var SkipPaths = []string{"/health", "/docs", "/redoc", "/openapi.json", "/metrics"}

// GateConfig configures the internal auth gate.
type GateConfig struct {
	// InternalSecret is the shared secret expected in X-Internal-Secret.
	// When empty the gate allows all requests and logs a warning on every
	// one, matching the platform's insecure-by-default behavior. Whether
	// an empty secret is acceptable at all is decided at startup by
	// config validation, not here.
	InternalSecret string
}

// Gate validates the shared secret, builds the per-request identity
// context, and consults the rate governor before any protected request
// proceeds.
type Gate struct {
	secret   string
	governor *ratelimit.Governor
	log      zerolog.Logger
}

// NewGate creates the auth gate. governor may be nil, in which case
// admission control is skipped entirely.
func NewGate(cfg GateConfig, governor *ratelimit.Governor, log zerolog.Logger) *Gate {
	return &Gate{
		secret:   cfg.InternalSecret,
		governor: governor,
		log:      log,
	}
}

// Middleware returns the HTTP middleware enforcing the gate.
func (g *Gate) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skipPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			provided := r.Header.Get(HeaderInternalSecret)
			if g.secret == "" {
				g.log.Warn().Msg("internal secret not configured, allowing all requests")
			} else if subtle.ConstantTimeCompare([]byte(provided), []byte(g.secret)) != 1 {
				g.log.Warn().Str("path", r.URL.Path).Str("remote", r.RemoteAddr).Msg("invalid internal secret")
				metrics.AuthRejectionsTotal.Inc()
				writeJSONError(w, http.StatusUnauthorized, "Unauthorized", "Invalid internal secret")
				return
			}

			ic := contextFromHeaders(r.Header)

			if g.governor != nil {
				caller := ratelimit.Caller{
					UserID:         ic.UserID,
					OrganizationID: ic.OrganizationID,
					AccountType:    ic.AccountType,
				}
				if !g.governor.Allow(r.Context(), caller) {
					metrics.RateLimitDenialsTotal.WithLabelValues(caller.AccountType).Inc()
					writeJSONError(w, http.StatusTooManyRequests, "Too Many Requests", "Rate limit exceeded")
					return
				}
			}

			// Echo the correlation header back on the response.
			if ic.RequestID != "" {
				w.Header().Set(HeaderRequestID, ic.RequestID)
			}

			next.ServeHTTP(w, r.WithContext(WithInternalContext(r.Context(), ic)))
		})
	}
}

func skipPath(path string) bool {
	for _, p := range SkipPaths {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func writeJSONError(w http.ResponseWriter, status int, errName, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": errName, "detail": detail})
}
