package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gmihail/shop/api/responses"
	"github.com/gmihail/shop/api/validators"
	pkgerrors "github.com/gmihail/shop/pkg/errors"
	"github.com/gmihail/shop/pkg/logger"
)

// auth bodies are tiny; anything larger is not buffered for the email counter
const maxRateLimitBody = 64 << 10

type rateLimiterStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// AuthRateLimitPolicy throttles one auth endpoint per client IP and per
// submitted email. A zero limit disables that counter.
type AuthRateLimitPolicy struct {
	name       string
	window     time.Duration
	ipLimit    int
	emailLimit int
}

func NewAuthRateLimitPolicy(name string, window time.Duration, ipLimit, emailLimit int) AuthRateLimitPolicy {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "auth"
	}
	return AuthRateLimitPolicy{name: name, window: window, ipLimit: ipLimit, emailLimit: emailLimit}
}

func (p AuthRateLimitPolicy) enabled() bool {
	return p.window > 0 && (p.ipLimit > 0 || p.emailLimit > 0)
}

// rateCounter is one fixed-window budget checked for a request.
type rateCounter struct {
	kind  string
	key   string
	limit int
}

func (p AuthRateLimitPolicy) scope(c rateCounter) string {
	return c.kind + ":" + p.name + ":" + c.key
}

// AuthRateLimit rejects requests over budget with 429 and a Retry-After
// header. A limiter outage fails closed with 503.
func AuthRateLimit(policy AuthRateLimitPolicy, store rateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			counters, err := policy.counters(r)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}

			for _, c := range counters {
				allowed, count, err := store.FixedWindowAllow(ctx, policy.scope(c), int64(c.limit), policy.window)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
					return
				}
				if !allowed {
					logBlocked(ctx, logg, policy, c, count)
					w.Header().Set("Retry-After", strconv.Itoa(int(policy.window.Seconds())))
					responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// counters lists the budgets that apply to r. Reading the email rewinds the
// body for the next handler.
func (p AuthRateLimitPolicy) counters(r *http.Request) ([]rateCounter, error) {
	var out []rateCounter
	if p.ipLimit > 0 {
		if ip := clientIP(r); ip != "" {
			out = append(out, rateCounter{kind: "ip", key: ip, limit: p.ipLimit})
		}
	}
	if p.emailLimit <= 0 || r.Body == nil {
		return out, nil
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRateLimitBody+1))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request")
	}
	rest := io.Reader(bytes.NewReader(body))
	if len(body) > maxRateLimitBody {
		rest = io.MultiReader(rest, r.Body)
		body = nil
	}
	r.Body = io.NopCloser(rest)

	if email := validators.SanitizeEmail(extractEmail(body)); email != "" {
		out = append(out, rateCounter{kind: "email", key: hashValue(email), limit: p.emailLimit})
	}
	return out, nil
}

func logBlocked(ctx context.Context, logg *logger.Logger, policy AuthRateLimitPolicy, c rateCounter, count int64) {
	if logg == nil {
		return
	}
	fields := map[string]any{
		"scope":          c.kind,
		"policy":         policy.name,
		"attempts":       count,
		"limit":          c.limit,
		"window_seconds": int(policy.window.Seconds()),
	}
	if c.kind == "ip" {
		fields["ip"] = c.key
	} else {
		fields["email_hash"] = c.key
	}
	logg.Warn(logg.WithFields(ctx, fields), "auth.rate_limit.blocked")
}

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the
// socket address.
func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		first, _, _ := strings.Cut(header, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

func extractEmail(payload []byte) string {
	if len(payload) == 0 {
		return ""
	}
	var body struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	return body.Email
}

func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
