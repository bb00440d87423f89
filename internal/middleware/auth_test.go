package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/TimFooLabs/drtimfoo-api/internal/auth"
)

type fakeVerdictCache struct {
	roles map[string]string
	gets  int
	sets  int
}

func newFakeVerdictCache() *fakeVerdictCache {
	return &fakeVerdictCache{roles: make(map[string]string)}
}

func (f *fakeVerdictCache) GetKeyRole(_ context.Context, keyHash string) (string, error) {
	f.gets++
	return f.roles[keyHash], nil
}

func (f *fakeVerdictCache) SetKeyRole(_ context.Context, keyHash, role string) error {
	f.sets++
	f.roles[keyHash] = role
	return nil
}

func testAuthSetup(t *testing.T) (serviceKey, adminKey string, cfg AuthConfig) {
	t.Helper()

	service, err := auth.GenerateServiceKey(auth.EnvTest)
	if err != nil {
		t.Fatalf("GenerateServiceKey failed: %v", err)
	}
	admin, err := auth.GenerateServiceKey(auth.EnvTest)
	if err != nil {
		t.Fatalf("GenerateServiceKey failed: %v", err)
	}

	cfg = AuthConfig{
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		Cache:          newFakeVerdictCache(),
		ServiceKeyHash: service.Hash,
		AdminKeyHash:   admin.Hash,
		MinDuration:    time.Millisecond,
	}

	return service.Plaintext, admin.Plaintext, cfg
}

func runAuth(cfg AuthConfig, key string) (*httptest.ResponseRecorder, *auth.Principal) {
	var principal *auth.Principal
	handler := Auth(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal = auth.PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/v1/bookings", nil)
	if key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec, principal
}

func TestAuth_ServiceKey(t *testing.T) {
	serviceKey, _, cfg := testAuthSetup(t)

	rec, principal := runAuth(cfg, serviceKey)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if principal == nil || principal.Role != auth.RoleService {
		t.Errorf("expected service principal, got %+v", principal)
	}
}

func TestAuth_AdminKey(t *testing.T) {
	_, adminKey, cfg := testAuthSetup(t)

	rec, principal := runAuth(cfg, adminKey)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if principal == nil || principal.Role != auth.RoleAdmin {
		t.Errorf("expected admin principal, got %+v", principal)
	}
}

func TestAuth_Rejections(t *testing.T) {
	_, _, cfg := testAuthSetup(t)

	tests := []struct {
		name string
		key  string
	}{
		{"missing key", ""},
		{"malformed key", "not-a-key"},
		{"wrong key", "sk_test_00000000000000000000000000000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, principal := runAuth(cfg, tt.key)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", rec.Code)
			}
			if principal != nil {
				t.Error("no principal should be injected on failure")
			}
		})
	}
}

func TestAuth_CachesVerdict(t *testing.T) {
	serviceKey, _, cfg := testAuthSetup(t)
	cache := cfg.Cache.(*fakeVerdictCache)

	runAuth(cfg, serviceKey)
	if cache.sets != 1 {
		t.Fatalf("expected verdict cached after first auth, sets = %d", cache.sets)
	}

	runAuth(cfg, serviceKey)
	if cache.sets != 1 {
		t.Errorf("second auth should hit the cache, sets = %d", cache.sets)
	}
}

func TestAuth_AdminHashOptional(t *testing.T) {
	serviceKey, adminKey, cfg := testAuthSetup(t)
	cfg.AdminKeyHash = ""
	cfg.Cache = newFakeVerdictCache()

	rec, principal := runAuth(cfg, serviceKey)
	if rec.Code != http.StatusOK || principal.Role != auth.RoleService {
		t.Errorf("service key should still verify, got %d %+v", rec.Code, principal)
	}

	rec, _ = runAuth(cfg, adminKey)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("admin key should not verify without a hash, got %d", rec.Code)
	}
}
