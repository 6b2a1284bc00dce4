package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"linktracker-dashboard/internal/ratelimit"
	"linktracker-dashboard/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockRateLimiter struct {
	mock.Mock
}

func (m *MockRateLimiter) Allow(ctx context.Context, key string) (ratelimit.Decision, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(ratelimit.Decision), args.Error(1)
}

func (m *MockRateLimiter) MaxRequests() int {
	return m.Called().Int(0)
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger.RequestIDFromContext(r.Context())
	}))

	t.Run("generates one", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/brands", nil))

		_, err := uuid.Parse(seen)
		assert.NoError(t, err)
		assert.Equal(t, seen, w.Header().Get("X-Request-ID"))
	})

	t.Run("keeps a valid caller ID", func(t *testing.T) {
		id := uuid.New().String()
		req := httptest.NewRequest(http.MethodGet, "/brands", nil)
		req.Header.Set("X-Request-ID", id)

		handler.ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, id, seen)
	})

	t.Run("replaces garbage", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/brands", nil)
		req.Header.Set("X-Request-ID", "<script>")

		handler.ServeHTTP(httptest.NewRecorder(), req)

		assert.NotEqual(t, "<script>", seen)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		decision   ratelimit.Decision
		err        error
		wantStatus int
		wantRetry  string
	}{
		{"allowed", ratelimit.Decision{Allowed: true, Remaining: 9, RetryAfter: 30 * time.Second}, nil, http.StatusOK, ""},
		{"limited", ratelimit.Decision{Allowed: false, RetryAfter: 12 * time.Second}, nil, http.StatusTooManyRequests, "12"},
		{"limiter down fails open", ratelimit.Decision{}, errors.New("redis down"), http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter := new(MockRateLimiter)
			limiter.On("Allow", mock.Anything, "203.0.113.7").Return(tt.decision, tt.err)
			limiter.On("MaxRequests").Return(10)

			req := httptest.NewRequest(http.MethodGet, "/sessions", nil)
			req.RemoteAddr = "203.0.113.7:51234"
			w := httptest.NewRecorder()

			RateLimitMiddleware(limiter, logger.Discard())(okHandler).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantRetry, w.Header().Get("Retry-After"))
		})
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := RecoveryMiddleware(logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/brands", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	w := httptest.NewRecorder()
	CORSMiddleware("https://dashboard.example")(okHandler).ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/links", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://dashboard.example", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestTimeoutMiddleware_SetsDeadline(t *testing.T) {
	var hasDeadline bool
	handler := TimeoutMiddleware(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasDeadline = r.Context().Deadline()
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.True(t, hasDeadline)
}

func TestChain_RunsInOrder(t *testing.T) {
	var order []string
	mark := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	Chain(mark("a"), mark("b"), mark("c"))(okHandler).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestExtractIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "[2001:db8::1]:443"
	assert.Equal(t, "2001:db8::1", extractIP(req))

	req.Header.Set("X-Real-IP", "198.51.100.2")
	assert.Equal(t, "198.51.100.2", extractIP(req))

	req.Header.Set("X-Forwarded-For", "192.0.2.1, 10.0.0.1")
	assert.Equal(t, "192.0.2.1", extractIP(req))
}

func TestSimplifyEndpoint(t *testing.T) {
	tests := map[string]string{
		"/sessions":            "/sessions",
		"/sessions/abc-123":    "/sessions/:trackingID",
		"/brands/acme/links":   "/brands/:brand/links",
		"/links/acme/u1":       "/links/:brand/:uuid",
		"/stats/geo":           "/stats/geo",
		"/metrics":             "/metrics",
		"/wp-admin/setup.php":  "other",
		"/brands/acme/unknown": "other",
	}

	for path, want := range tests {
		assert.Equal(t, want, simplifyEndpoint(path), path)
	}
}
