package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"chronos/internal/transport/http/api"
)

type RateLimitKeyFunc func(r *http.Request) string

type RateLimitOption func(*rateLimiter)

type rateBucket struct {
	count int
	reset time.Time
}

type rateLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	keyFn   RateLimitKeyFunc
	logger  *zap.Logger
	clients map[string]*rateBucket
	now     func() time.Time
}

func WithKeyFunc(fn RateLimitKeyFunc) RateLimitOption {
	return func(rl *rateLimiter) {
		if fn != nil {
			rl.keyFn = fn
		}
	}
}

func WithLogger(logger *zap.Logger) RateLimitOption {
	return func(rl *rateLimiter) {
		if logger != nil {
			rl.logger = logger
		}
	}
}

// RateLimit is a fixed window limiter keyed by client IP unless WithKeyFunc
// says otherwise. A limit of zero disables it.
func RateLimit(limit int, window time.Duration, opts ...RateLimitOption) func(http.Handler) http.Handler {
	rl := &rateLimiter{
		limit:   limit,
		window:  window,
		keyFn:   clientIPKey,
		logger:  zap.NewNop(),
		clients: map[string]*rateBucket{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(rl)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.enforce(w, r) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// PinAttemptKey limits PIN guesses per device and employee number, falling
// back to the client IP when the body does not carry both.
func PinAttemptKey(r *http.Request) string {
	fields := jsonFields(r, "deviceUUID", "employeeNumber")
	device := strings.ToLower(fields["deviceUUID"])
	number := fields["employeeNumber"]
	if device == "" || number == "" {
		return clientIPKey(r)
	}
	return "pin:" + device + ":" + number
}

func clientIPKey(r *http.Request) string {
	if fwd := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); fwd != "" {
		if value := strings.TrimSpace(strings.Split(fwd, ",")[0]); value != "" {
			return value
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}

func (rl *rateLimiter) enforce(w http.ResponseWriter, r *http.Request) bool {
	if rl.limit <= 0 {
		return true
	}

	key := rl.keyFn(r)
	if key == "" {
		key = clientIPKey(r)
	}
	now := rl.now()

	rl.mu.Lock()
	bucket, ok := rl.clients[key]
	if !ok || now.After(bucket.reset) {
		bucket = &rateBucket{reset: now.Add(rl.window)}
		rl.clients[key] = bucket
	}
	bucket.count++
	remaining := rl.limit - bucket.count
	resetIn := durationSeconds(bucket.reset.Sub(now))
	overLimit := bucket.count > rl.limit
	rl.sweep(now)
	rl.mu.Unlock()

	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(remaining, 0)))
	w.Header().Set("X-RateLimit-Reset", strconv.Itoa(resetIn))

	if overLimit {
		w.Header().Set("Retry-After", strconv.Itoa(max(resetIn, 1)))
		rl.logger.Warn("rate limit exceeded",
			zap.String("key", key),
			zap.String("path", r.URL.Path),
			zap.Int("limit", rl.limit),
			zap.Duration("window", rl.window),
		)
		api.Fail(w, http.StatusTooManyRequests, "rate_limited", "Too many requests", GetRequestID(r.Context()))
		return false
	}
	return true
}

// sweep drops expired buckets once the map grows; caller holds mu.
func (rl *rateLimiter) sweep(now time.Time) {
	if len(rl.clients) < 1024 {
		return
	}
	for key, bucket := range rl.clients {
		if now.After(bucket.reset) {
			delete(rl.clients, key)
		}
	}
}

func durationSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	seconds := int(d.Seconds())
	if seconds <= 0 {
		return 1
	}
	return seconds
}

// jsonFields reads the named top-level fields from a JSON body as strings and
// restores the body for the next handler. Numbers are kept in their literal form.
func jsonFields(r *http.Request, names ...string) map[string]string {
	out := map[string]string{}
	if r == nil || r.Body == nil {
		return out
	}
	if !strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
		return out
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, 64*1024))
	if err != nil {
		return out
	}
	r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(raw), r.Body))
	if len(raw) == 0 {
		return out
	}
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	payload := map[string]any{}
	if err := decoder.Decode(&payload); err != nil {
		return out
	}
	for _, name := range names {
		switch v := payload[name].(type) {
		case string:
			out[name] = strings.TrimSpace(v)
		case json.Number:
			out[name] = v.String()
		case nil:
		default:
			out[name] = fmt.Sprint(v)
		}
	}
	return out
}
