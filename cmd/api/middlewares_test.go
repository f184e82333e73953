package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"critichub/proj/internal/config"
	"critichub/proj/internal/domain/models"
)

func newRequestAs(user *models.User, method string) *http.Request {
	request := httptest.NewRequest(method, "/", nil)
	ctx := context.WithValue(request.Context(), CtxKeyUser, user)
	return request.WithContext(ctx)
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRequireAuthenticatedUser(t *testing.T) {
	app := NewTestApplication(nil, t)
	t.Run("authenticated", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		request := newRequestAs(&models.User{ID: 1, Username: "test"}, http.MethodGet)
		app.requireAuthenticatedUser(okHandler).ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusOK, recorder.Code)
	})
	t.Run("anonymous", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		request := newRequestAs(models.AnonymousUser, http.MethodGet)
		app.requireAuthenticatedUser(okHandler).ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})
}

func TestRequireAdminOrReadOnly(t *testing.T) {
	app := NewTestApplication(nil, t)
	cases := []struct {
		name   string
		actor  *models.User
		method string
		want   int
	}{
		{"anonymous read", models.AnonymousUser, http.MethodGet, http.StatusOK},
		{"anonymous write", models.AnonymousUser, http.MethodPost, http.StatusForbidden},
		{"plain user write", &models.User{ID: 1, Role: models.RoleUser}, http.MethodPost, http.StatusForbidden},
		{"moderator write", &models.User{ID: 1, Role: models.RoleModerator}, http.MethodDelete, http.StatusForbidden},
		{"admin write", &models.User{ID: 1, Role: models.RoleAdmin}, http.MethodPost, http.StatusOK},
		{"superuser write", &models.User{ID: 1, IsSuperuser: true}, http.MethodPost, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			request := newRequestAs(tc.actor, tc.method)
			app.requireAdminOrReadOnly(okHandler).ServeHTTP(recorder, request)
			assert.Equal(t, tc.want, recorder.Code)
		})
	}
	t.Run("admin role claim alone grants write", func(t *testing.T) {
		token, err := app.codec.IssueAccessToken(&models.User{ID: 1, Username: "test", Role: models.RoleAdmin})
		require.NoError(t, err)
		request := newRequestAs(&models.User{ID: 1, Role: models.RoleUser}, http.MethodPost)
		ctx := context.WithValue(request.Context(), CtxKeyToken, token)
		recorder := httptest.NewRecorder()
		app.requireAdminOrReadOnly(okHandler).ServeHTTP(recorder, request.WithContext(ctx))
		assert.Equal(t, http.StatusOK, recorder.Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	app := NewTestApplication(nil, t)
	cases := []struct {
		name  string
		actor *models.User
		want  int
	}{
		{"anonymous", models.AnonymousUser, http.StatusUnauthorized},
		{"plain user", &models.User{ID: 1, Role: models.RoleUser}, http.StatusForbidden},
		{"moderator", &models.User{ID: 1, Role: models.RoleModerator}, http.StatusForbidden},
		{"admin", &models.User{ID: 1, Role: models.RoleAdmin}, http.StatusOK},
		{"staff", &models.User{ID: 1, IsStaff: true}, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			request := newRequestAs(tc.actor, http.MethodGet)
			app.requireAdmin(okHandler).ServeHTTP(recorder, request)
			assert.Equal(t, tc.want, recorder.Code)
		})
	}
}

func TestRequireAuthenticatedForWrites(t *testing.T) {
	app := NewTestApplication(nil, t)
	t.Run("anonymous read", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		request := newRequestAs(models.AnonymousUser, http.MethodGet)
		app.requireAuthenticatedForWrites(okHandler).ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusOK, recorder.Code)
	})
	t.Run("anonymous write", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		request := newRequestAs(models.AnonymousUser, http.MethodPost)
		app.requireAuthenticatedForWrites(okHandler).ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})
	t.Run("authenticated write", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		request := newRequestAs(&models.User{ID: 1, Role: models.RoleUser}, http.MethodPost)
		app.requireAuthenticatedForWrites(okHandler).ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusOK, recorder.Code)
	})
}

func TestAuthenticate(t *testing.T) {
	app := NewTestApplication(nil, t)
	t.Run("no header proceeds as anonymous", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.True(t, actorFromContext(r).IsAnonymous())
			w.WriteHeader(http.StatusOK)
		})
		app.Authenticate(next).ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusOK, recorder.Code)
	})
	t.Run("malformed header", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Authorization", "Basic abc")
		app.Authenticate(okHandler).ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
	t.Run("invalid token", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("Authorization", "Bearer not-a-token")
		app.Authenticate(okHandler).ServeHTTP(recorder, request)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})
}

func TestRateLimiter(t *testing.T) {
	cfg := &config.Config{}
	cfg.Limiter.Enabled = true
	cfg.Limiter.Rps = 2
	cfg.Limiter.Burst = 2
	app := NewTestApplication(cfg, t)
	handler := app.RateLimiter(okHandler)
	codes := []int{}
	for i := 0; i < 3; i++ {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		handler.ServeHTTP(recorder, request)
		codes = append(codes, recorder.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
