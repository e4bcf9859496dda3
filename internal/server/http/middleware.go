package http

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/voxgate/voxgate/internal/common"
	"github.com/voxgate/voxgate/internal/logging"
	"github.com/voxgate/voxgate/internal/server/auth"
	"github.com/voxgate/voxgate/internal/server/metrics"
	"github.com/voxgate/voxgate/internal/server/models"
)

func extractBearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get(common.AuthorizationHeaderName)
	if h == "" {
		return "", false
	}
	if !strings.HasPrefix(h, common.BearerPrefix) {
		return "", true
	}
	return strings.TrimSpace(strings.TrimPrefix(h, common.BearerPrefix)), true
}

// Authenticate resolves the caller from a bearer token or, failing that,
// an X-API-Key header, and stores the account in the request context.
func Authenticate(authn *auth.Authenticator, logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			var (
				account *models.Account
				err     error
			)
			token, hasBearer := extractBearerToken(r)
			key := r.Header.Get(common.APIKeyHeaderName)

			switch {
			case hasBearer && token == "":
				err = common.ErrTokenMalformed
			case hasBearer:
				account, err = authn.FromToken(ctx, token)
			case key != "":
				account, err = authn.FromAPIKey(ctx, key)
			default:
				err = common.ErrTokenInvalid
			}

			if err != nil {
				status, msg, expected := errorResponse(err)
				if !expected {
					logger.Error(ctx, "authenticate request", "error", err)
				}
				writeError(w, status, msg)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithAccount(ctx, account)))
		})
	}
}

// CORS answers preflight requests and sets the allow headers for origin
// ("*" allows any origin).
func CORS(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqOrigin := r.Header.Get("Origin")
			switch {
			case origin == "*":
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case reqOrigin == origin:
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}

			w.Header().Set("Access-Control-Allow-Methods", "GET, HEAD, PUT, PATCH, POST, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-API-Key")
			w.Header().Set("Access-Control-Max-Age", "3600")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimiter allows max requests per window for each client IP, refilled
// evenly across the window.
type RateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*clientLimiter
	limit     rate.Limit
	burst     int
	window    time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(window time.Duration, max int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*clientLimiter),
		limit:    rate.Every(window / time.Duration(max)),
		burst:    max,
		window:   window,
		now:      time.Now,
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (rl *RateLimiter) allow(ip string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) > rl.window {
		for k, c := range rl.limiters {
			if now.Sub(c.lastSeen) > rl.window {
				delete(rl.limiters, k)
			}
		}
		rl.lastSweep = now
	}

	c, ok := rl.limiters[ip]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limiters[ip] = c
	}
	c.lastSeen = now

	res := c.limiter.ReserveN(now, 1)
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return false, delay
	}
	return true, 0
}

func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, retry := rl.allow(clientIP(r))
		if !ok {
			w.Header().Set("Retry-After", strconv.Itoa(int(retry.Seconds())+1))
			writeError(w, http.StatusTooManyRequests, "Too many requests, please try again later.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AccessLog logs one record per request and feeds the HTTP metrics.
func AccessLog(logger logging.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := r.URL.Path
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}
			elapsed := time.Since(start)

			m.RecordHTTPRequest(r.Method, route, strconv.Itoa(status), elapsed.Seconds())
			logger.Info(r.Context(), "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"duration_ms", elapsed.Milliseconds(),
				"request_id", chimiddleware.GetReqID(r.Context()),
			)
		})
	}
}
