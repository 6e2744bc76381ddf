package ratelimit

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"assetledger/pkg/platform/httputil"
	request "assetledger/pkg/platform/middleware/request"
	"assetledger/pkg/requestcontext"
)

const (
	defaultLimit  = 60
	defaultWindow = time.Minute
)

// Middleware admits writes against a WindowStore keyed by caller.
type Middleware struct {
	store    WindowStore
	logger   *slog.Logger
	limit    int
	window   time.Duration
	disabled bool
}

type Option func(*Middleware)

// WithLimit sets the admissions allowed per window. Non-positive values keep
// the defaults.
func WithLimit(limit int, window time.Duration) Option {
	return func(m *Middleware) {
		if limit > 0 {
			m.limit = limit
		}
		if window > 0 {
			m.window = window
		}
	}
}

// WithDisabled turns the middleware into a pass-through.
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

func New(store WindowStore, logger *slog.Logger, opts ...Option) *Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Middleware{
		store:  store,
		logger: logger,
		limit:  defaultLimit,
		window: defaultWindow,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.disabled {
		logger.Info("write rate limiting disabled")
	}
	return m
}

// PerCaller limits by the authenticated caller, falling back to the client
// IP when no caller is on the context. Store failures let the request
// through.
func (m *Middleware) PerCaller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.disabled {
			next.ServeHTTP(w, r)
			return
		}
		ctx := r.Context()
		key := limitKey(r)

		result, err := m.store.Allow(ctx, key, m.limit, m.window)
		if err != nil {
			m.logger.ErrorContext(ctx, "failed to check write rate limit",
				"error", err,
				"key", key,
				"request_id", request.GetRequestID(ctx),
			)
			next.ServeHTTP(w, r)
			return
		}

		addHeaders(w, result)
		if !result.Allowed {
			m.logger.WarnContext(ctx, "write rate limit exceeded",
				"key", key,
				"retry_after", result.RetryAfter,
				"request_id", request.GetRequestID(ctx),
			)
			w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
			httputil.WriteJSON(w, http.StatusTooManyRequests, httputil.ErrorResponse{
				Error:            "rate_limit_exceeded",
				ErrorDescription: "Too many write requests. Please try again later.",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func limitKey(r *http.Request) string {
	if caller, ok := requestcontext.Caller(r.Context()); ok {
		return "caller:" + caller.String()
	}
	ip := requestcontext.ClientIP(r.Context())
	if ip == "" {
		ip = r.RemoteAddr
	}
	return "ip:" + ip
}

func addHeaders(w http.ResponseWriter, result *Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}
