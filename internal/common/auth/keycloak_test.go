package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realty-workers/internal/common/errors"
	"realty-workers/internal/models"
)

func newIntrospectionServer(t *testing.T, calls *int32, status int, body map[string]interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		assert.Equal(t, "/realms/realty/protocol/openid-connect/token/introspect", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "realty-workers", r.PostForm.Get("client_id"))
		assert.Equal(t, "secret", r.PostForm.Get("client_secret"))
		assert.Equal(t, "token-abc", r.PostForm.Get("token"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
}

func TestAuthorize_AdminRole(t *testing.T) {
	var calls int32
	srv := newIntrospectionServer(t, &calls, http.StatusOK, map[string]interface{}{
		"active": true,
		"sub":    "user-1",
		"email":  "broker@realty.example.com",
		"exp":    time.Now().Add(time.Hour).Unix(),
		"realm_access": map[string]interface{}{
			"roles": []string{"offline_access", "agent", "admin"},
		},
	})
	defer srv.Close()

	client := NewKeycloakClient(srv.URL+"/", "realty", "realty-workers", "secret")

	p, err := client.Authorize(context.Background(), "Bearer token-abc")
	require.NoError(t, err)
	assert.Equal(t, "user-1", p.Subject)
	assert.Equal(t, "broker@realty.example.com", p.Email)
	assert.Equal(t, models.RoleAdmin, p.Role)

	// second call is served from the cache
	_, err = client.Authorize(context.Background(), "token-abc")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestAuthorize_AgentRole(t *testing.T) {
	var calls int32
	srv := newIntrospectionServer(t, &calls, http.StatusOK, map[string]interface{}{
		"active":       true,
		"sub":          "user-2",
		"realm_access": map[string]interface{}{"roles": []string{"agent"}},
	})
	defer srv.Close()

	p, err := NewKeycloakClient(srv.URL, "realty", "realty-workers", "secret").
		Authorize(context.Background(), "token-abc")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAgent, p.Role)
}

func TestAuthorize_Rejections(t *testing.T) {
	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{
			name: "inactive token",
			body: map[string]interface{}{"active": false},
		},
		{
			name: "no broker role",
			body: map[string]interface{}{
				"active":       true,
				"sub":          "user-3",
				"realm_access": map[string]interface{}{"roles": []string{"customer"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			srv := newIntrospectionServer(t, &calls, http.StatusOK, tt.body)
			defer srv.Close()

			_, err := NewKeycloakClient(srv.URL, "realty", "realty-workers", "secret").
				Authorize(context.Background(), "token-abc")
			require.Error(t, err)
			assert.Equal(t, errors.ErrCodeAdminUnauthorized, errors.CodeOf(err))
		})
	}
}

func TestAuthorize_MissingToken(t *testing.T) {
	client := NewKeycloakClient("http://unused", "realty", "realty-workers", "secret")

	_, err := client.Authorize(context.Background(), "  ")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeAdminUnauthorized, errors.CodeOf(err))
}

func TestAuthorize_ProviderFailure(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		retryable bool
	}{
		{name: "server error", status: http.StatusServiceUnavailable, retryable: true},
		{name: "bad client credentials", status: http.StatusUnauthorized, retryable: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			srv := newIntrospectionServer(t, &calls, tt.status, map[string]interface{}{"error": "x"})
			defer srv.Close()

			_, err := NewKeycloakClient(srv.URL, "realty", "realty-workers", "secret").
				Authorize(context.Background(), "token-abc")
			require.Error(t, err)

			stdErr, ok := err.(*errors.StandardError)
			require.True(t, ok)
			assert.Equal(t, errors.ErrCodeAuthProviderUnavailable, stdErr.Code)
			assert.Equal(t, tt.retryable, stdErr.Retryable)
		})
	}
}

func TestAuthorize_ExpiredCacheEntry(t *testing.T) {
	var calls int32
	srv := newIntrospectionServer(t, &calls, http.StatusOK, map[string]interface{}{
		"active":       true,
		"sub":          "user-1",
		"exp":          time.Now().Add(time.Minute).Unix(),
		"realm_access": map[string]interface{}{"roles": []string{"admin"}},
	})
	defer srv.Close()

	client := NewKeycloakClient(srv.URL, "realty", "realty-workers", "secret")
	_, err := client.Authorize(context.Background(), "token-abc")
	require.NoError(t, err)

	client.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = client.Authorize(context.Background(), "token-abc")
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestCache_SweepsExpiredEntries(t *testing.T) {
	client := NewKeycloakClient("http://keycloak.invalid", "realty", "realty-workers", "secret")
	start := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	client.now = func() time.Time { return start }

	admin := models.Principal{Subject: "user-1", Role: models.RoleAdmin}
	client.store("token-1", admin, start.Add(time.Minute))
	client.store("token-2", admin, start.Add(time.Minute))
	client.store("token-3", admin, start.Add(time.Hour))
	require.Len(t, client.cache, 3)

	client.now = func() time.Time { return start.Add(2 * time.Minute) }
	client.store("token-4", admin, start.Add(time.Hour))

	assert.Len(t, client.cache, 2)
	assert.Contains(t, client.cache, "token-3")
	assert.Contains(t, client.cache, "token-4")
}

func TestCache_EvictsClosestToExpiryWhenFull(t *testing.T) {
	client := NewKeycloakClient("http://keycloak.invalid", "realty", "realty-workers", "secret")
	start := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	client.now = func() time.Time { return start }
	client.maxCached = 2

	agent := models.Principal{Subject: "user-2", Role: models.RoleAgent}
	client.store("token-late", agent, start.Add(time.Hour))
	client.store("token-soon", agent, start.Add(time.Minute))
	client.store("token-new", agent, start.Add(30*time.Minute))

	assert.Len(t, client.cache, 2)
	assert.NotContains(t, client.cache, "token-soon")

	// refreshing a cached token does not evict anything
	client.store("token-new", agent, start.Add(45*time.Minute))
	assert.Len(t, client.cache, 2)
	assert.Contains(t, client.cache, "token-late")
}
