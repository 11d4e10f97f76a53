package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/onnwee/newsai/internal/article"
	"github.com/onnwee/newsai/internal/audit"
	"github.com/onnwee/newsai/internal/auth"
	"github.com/onnwee/newsai/internal/idempotency"
	"github.com/onnwee/newsai/internal/interaction"
	"github.com/onnwee/newsai/internal/middleware"
	"github.com/onnwee/newsai/internal/provider"
	"github.com/onnwee/newsai/internal/ranking"
	"github.com/onnwee/newsai/internal/user"
)

const (
	testSecret        = "api-test-secret"
	testUserEmail     = "reader@example.com"
	testUserPassword  = "reader-pass"
	testAdminEmail    = "admin@news.com"
	testAdminPassword = "admin-pass"
)

// fakeLive records the live queries it receives.
type fakeLive struct {
	mu       sync.Mutex
	items    []provider.Item
	err      error
	queries  []string
	category []string
}

func (f *fakeLive) Fetch(ctx context.Context, query, category string) ([]provider.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	f.category = append(f.category, category)
	return f.items, f.err
}

// testServer bundles a fully wired router over in-memory stores.
type testServer struct {
	handler      http.Handler
	tokens       *auth.JWTService
	articles     *article.InMemoryRepository
	users        *user.InMemoryRepository
	prefs        *user.InMemoryPreferenceRepository
	interactions *interaction.InMemoryRepository
	auditLog     *audit.InMemoryRepository
	live         *fakeLive
	userToken    string
	adminToken   string
	userID       int64
	adminID      int64
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ts := &testServer{
		tokens:       auth.NewJWTService(testSecret),
		articles:     article.NewInMemoryRepository(),
		users:        user.NewInMemoryRepository(),
		prefs:        user.NewInMemoryPreferenceRepository(),
		interactions: interaction.NewInMemoryRepository(),
		auditLog:     audit.NewInMemoryRepository(),
		live:         &fakeLive{},
	}
	accounts := user.NewService(ts.users, logger)

	reader, err := accounts.Register(context.Background(), testUserEmail, testUserPassword, "Reader")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	admin, err := accounts.EnsureAdmin(context.Background(), testAdminEmail, testAdminPassword, "Admin User")
	if err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}
	ts.userID, ts.adminID = reader.ID, admin.ID
	ts.userToken = mustToken(t, ts.tokens, reader.ID, reader.Role)
	ts.adminToken = mustToken(t, ts.tokens, admin.ID, admin.Role)

	expander := ranking.NewExpander(nil)
	scorer := ranking.NewScorer(nil)
	ts.handler = NewRouter(RouterConfig{
		Auth:           NewAuthHandlers(accounts, ts.users, ts.tokens),
		Articles:       NewArticleHandlers(ts.articles, ts.interactions, ts.live, expander, scorer),
		Preferences:    NewPreferenceHandlers(ts.prefs),
		Interactions:   NewInteractionHandlers(ts.interactions),
		Admin:          NewAdminHandlers(ts.articles, ts.users, ts.interactions, ts.auditLog),
		Health:         NewHealthHandlers(HealthHandlersConfig{}),
		Tokens:         ts.tokens,
		RateLimitStore: middleware.NewInMemoryRateLimitStore(),
		AuthLimit:      middleware.DefaultAuthLimit(),
		LiveFetchLimit: middleware.DefaultLiveFetchLimit(),
		Idempotency:    idempotency.NewInMemoryStore(),
	})
	return ts
}

func mustToken(t *testing.T, svc *auth.JWTService, id int64, role string) string {
	t.Helper()
	token, err := svc.GenerateAccessToken(id, role)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	return token
}

// do sends a request through the router. body is JSON-encoded unless it is
// a string, which is sent verbatim.
func (ts *testServer) do(t *testing.T, method, target, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response: %v, body: %s", err, rr.Body.String())
	}
	return v
}

func assertError(t *testing.T, rr *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("status = %d, want %d, body: %s", rr.Code, status, rr.Body.String())
	}
	resp := decodeBody[ErrorResponse](t, rr)
	if resp.Error.Code != code {
		t.Errorf("error code = %q, want %q", resp.Error.Code, code)
	}
}
