// internal/common/auth/keycloak.go
package auth

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"realty-workers/internal/common/errors"
	commonhttp "realty-workers/internal/common/http"
	"realty-workers/internal/models"
)

// Authorizer verifies an admin token and returns who it belongs to.
type Authorizer interface {
	Authorize(ctx context.Context, token string) (*models.Principal, error)
}

// KeycloakClient verifies bearer tokens with the realm's introspection
// endpoint. Verified tokens are cached until they expire.
type KeycloakClient struct {
	baseURL      string
	realm        string
	clientID     string
	clientSecret string
	httpClient   *commonhttp.Client
	now          func() time.Time

	mu        sync.Mutex
	cache     map[string]cachedPrincipal
	maxCached int
}

const defaultMaxCachedTokens = 1024

type cachedPrincipal struct {
	principal models.Principal
	expires   time.Time
}

// Introspection is the subset of the RFC 7662 response Keycloak returns.
type Introspection struct {
	Active      bool   `json:"active"`
	Subject     string `json:"sub"`
	Username    string `json:"preferred_username"`
	Email       string `json:"email"`
	ExpiresAt   int64  `json:"exp"`
	RealmAccess struct {
		Roles []string `json:"roles"`
	} `json:"realm_access"`
}

func NewKeycloakClient(baseURL, realm, clientID, clientSecret string) *KeycloakClient {
	return &KeycloakClient{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		realm:        realm,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   commonhttp.NewClient(10 * time.Second),
		now:          time.Now,
		cache:        make(map[string]cachedPrincipal),
		maxCached:    defaultMaxCachedTokens,
	}
}

// Introspect asks Keycloak whether token is active.
func (k *KeycloakClient) Introspect(ctx context.Context, token string) (*Introspection, error) {
	endpoint := fmt.Sprintf("%s/realms/%s/protocol/openid-connect/token/introspect", k.baseURL, k.realm)

	form := url.Values{}
	form.Set("token", token)
	form.Set("client_id", k.clientID)
	form.Set("client_secret", k.clientSecret)

	var out Introspection
	if err := k.httpClient.PostFormJSON(ctx, endpoint, form, &out); err != nil {
		var statusErr *commonhttp.StatusError
		retryable := !stderrors.As(err, &statusErr) || statusErr.Transient()
		return nil, errors.NewAuthProviderError(err, retryable)
	}
	return &out, nil
}

// Authorize accepts active tokens carrying the admin or agent realm role.
func (k *KeycloakClient) Authorize(ctx context.Context, token string) (*models.Principal, error) {
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return nil, errors.NewAdminUnauthorizedError("missing admin token")
	}

	if p, ok := k.cached(token); ok {
		return &p, nil
	}

	info, err := k.Introspect(ctx, token)
	if err != nil {
		return nil, err
	}
	if !info.Active {
		return nil, errors.NewAdminUnauthorizedError("token is not active")
	}

	role, ok := brokerRole(info.RealmAccess.Roles)
	if !ok {
		return nil, errors.NewAdminUnauthorizedError(fmt.Sprintf("subject %s has no admin role", info.Subject))
	}

	principal := models.Principal{Subject: info.Subject, Email: info.Email, Role: role}
	if info.ExpiresAt > 0 {
		k.store(token, principal, time.Unix(info.ExpiresAt, 0))
	}
	return &principal, nil
}

func brokerRole(roles []string) (models.Role, bool) {
	agent := false
	for _, r := range roles {
		switch models.Role(r) {
		case models.RoleAdmin:
			return models.RoleAdmin, true
		case models.RoleAgent:
			agent = true
		}
	}
	if agent {
		return models.RoleAgent, true
	}
	return "", false
}

func (k *KeycloakClient) cached(token string) (models.Principal, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	entry, ok := k.cache[token]
	if !ok {
		return models.Principal{}, false
	}
	if !k.now().Before(entry.expires) {
		delete(k.cache, token)
		return models.Principal{}, false
	}
	return entry.principal, true
}

// store drops expired entries before adding one. When the cache is still
// full, the entry closest to expiry makes room.
func (k *KeycloakClient) store(token string, p models.Principal, expires time.Time) {
	k.mu.Lock()
	defer k.mu.Unlock()

	now := k.now()
	for t, entry := range k.cache {
		if !now.Before(entry.expires) {
			delete(k.cache, t)
		}
	}
	if _, exists := k.cache[token]; !exists && k.maxCached > 0 && len(k.cache) >= k.maxCached {
		var oldest string
		var oldestExpiry time.Time
		for t, entry := range k.cache {
			if oldest == "" || entry.expires.Before(oldestExpiry) {
				oldest, oldestExpiry = t, entry.expires
			}
		}
		delete(k.cache, oldest)
	}
	k.cache[token] = cachedPrincipal{principal: p, expires: expires}
}
