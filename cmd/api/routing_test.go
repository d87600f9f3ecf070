package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bookstore/internal/auth"
	"bookstore/internal/book"
	"bookstore/internal/config"
	"bookstore/internal/testutil"
	"bookstore/internal/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "routing-secret"

func testConfig() config.Config {
	return config.Config{
		JWTSecret:      testSecret,
		TokenTTL:       time.Hour,
		AllowedOrigins: []string{"http://localhost:3000"},
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
		MaxBodyBytes:   1 << 20,
	}
}

func newTestServer(t *testing.T, ready func(context.Context) error) http.Handler {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	users := user.NewService(user.NewMemoryRepo())
	svc := services{
		books: book.NewService(book.NewMemoryRepo(testutil.Books()...)),
		users: users,
		auth:  auth.NewService(testSecret, time.Hour, users),
		ready: ready,
	}
	return newHandler(ctx, testConfig(), zap.NewNop(), svc)
}

func serve(h http.Handler, r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestV1Routing(t *testing.T) {
	h := newTestServer(t, func(context.Context) error { return nil })

	t.Run("list pages", func(t *testing.T) {
		w := serve(h, httptest.NewRequest(http.MethodGet, "/v1/books?index=2&size=3", nil))
		require.Equal(t, http.StatusOK, w.Code)

		resp := testutil.RecordHTTPResponse(w)
		data := resp.Body["data"].(map[string]any)
		items := data["items"].([]any)
		require.Len(t, items, 3)
		assert.Equal(t, "Emma", items[0].(map[string]any)["name"])
		assert.EqualValues(t, 7, data["total_count"])
		assert.EqualValues(t, 3, data["page_count"])
		assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
	})

	t.Run("list rejects oversized page", func(t *testing.T) {
		w := serve(h, httptest.NewRequest(http.MethodGet, "/v1/books?size=31", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("search by form", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/v1/books/search", strings.NewReader("genre=Fantasy&author_name=tolkien"))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := serve(h, r)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "The Silmarillion")
		assert.NotContains(t, w.Body.String(), "Earthsea")
	})

	t.Run("search without matches", func(t *testing.T) {
		r := testutil.NewRequest(http.MethodPost, "/v1/books/search", map[string]any{"name": "zzz"})
		assert.Equal(t, http.StatusNotFound, serve(h, r).Code)
	})

	t.Run("get one", func(t *testing.T) {
		w := serve(h, httptest.NewRequest(http.MethodGet, "/v1/books/2", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"name":"Dune"`)
	})

	t.Run("unversioned path is not routed", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, serve(h, httptest.NewRequest(http.MethodGet, "/books", nil)).Code)
	})

	t.Run("writes require a token", func(t *testing.T) {
		body := map[string]any{"name": "Kindred", "author_name": "Octavia E. Butler", "genre": "Science Fiction"}
		assert.Equal(t, http.StatusUnauthorized, serve(h, testutil.NewRequest(http.MethodPost, "/v1/books", body)).Code)

		expired := testutil.GenerateExpiredToken(testSecret, testutil.TestUser.ID, testutil.TestUser.Role)
		r := testutil.NewRequestWithAuth(http.MethodPost, "/v1/books", body, expired)
		assert.Equal(t, http.StatusUnauthorized, serve(h, r).Code)
	})

	t.Run("authenticated writes", func(t *testing.T) {
		token := testutil.GenerateTestToken(testSecret, testutil.TestAdminUser.ID, testutil.TestAdminUser.Role)
		body := map[string]any{"name": "Kindred", "author_name": "Octavia E. Butler", "genre": "Science Fiction"}

		w := serve(h, testutil.NewRequestWithAuth(http.MethodPost, "/v1/books", body, token))
		require.Equal(t, http.StatusCreated, w.Code)
		location := w.Header().Get("Location")
		assert.Equal(t, "/v1/books/8", location)

		w = serve(h, testutil.NewRequestWithAuth(http.MethodPost, "/v1/books", body, token))
		assert.Equal(t, http.StatusConflict, w.Code)

		w = serve(h, testutil.NewRequestWithAuth(http.MethodPatch, location, map[string]any{"edition": 2}, token))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"edition":2`)

		w = serve(h, testutil.NewRequestWithAuth(http.MethodDelete, location, nil, token))
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, http.StatusNotFound, serve(h, httptest.NewRequest(http.MethodGet, location, nil)).Code)
	})

	t.Run("register, login and me", func(t *testing.T) {
		creds := map[string]any{"email": "reader@example.com", "username": "reader", "password": "Secret#123"}
		require.Equal(t, http.StatusCreated, serve(h, testutil.NewRequest(http.MethodPost, "/v1/users/register", creds)).Code)

		w := serve(h, testutil.NewRequest(http.MethodPost, "/v1/users/login", map[string]any{
			"email": "reader@example.com", "password": "Secret#123",
		}))
		require.Equal(t, http.StatusOK, w.Code)

		var login struct {
			Data struct {
				AccessToken string `json:"access_token"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
		require.NotEmpty(t, login.Data.AccessToken)

		w = serve(h, testutil.NewRequestWithAuth(http.MethodGet, "/v1/me", nil, login.Data.AccessToken))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"email":"reader@example.com"`)
	})

	t.Run("security headers", func(t *testing.T) {
		w := serve(h, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	})

	t.Run("metrics carry route patterns", func(t *testing.T) {
		w := serve(h, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `route="GET /v1/books"`)
	})
}

func TestReadiness(t *testing.T) {
	ok := newTestServer(t, func(context.Context) error { return nil })
	assert.Equal(t, http.StatusOK, serve(ok, httptest.NewRequest(http.MethodGet, "/readyz", nil)).Code)

	down := newTestServer(t, func(context.Context) error { return errors.New("db down") })
	assert.Equal(t, http.StatusServiceUnavailable, serve(down, httptest.NewRequest(http.MethodGet, "/readyz", nil)).Code)
}
