package permissions

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"critichub/proj/internal/domain/models"
)

func TestIsSafeMethod(t *testing.T) {
	for _, m := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		assert.True(t, IsSafeMethod(m), m)
	}
	for _, m := range []string{http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete} {
		assert.False(t, IsSafeMethod(m), m)
	}
}

func TestAdminOrReadOnly(t *testing.T) {
	cases := []struct {
		name   string
		actor  *models.User
		method string
		want   bool
	}{
		{"anonymous read", models.AnonymousUser, http.MethodGet, true},
		{"nil actor read", nil, http.MethodGet, true},
		{"anonymous write", models.AnonymousUser, http.MethodPost, false},
		{"plain user write", &models.User{ID: 1, Role: models.RoleUser}, http.MethodPost, false},
		{"moderator write", &models.User{ID: 1, Role: models.RoleModerator}, http.MethodPost, false},
		{"role admin write", &models.User{ID: 1, Role: models.RoleAdmin}, http.MethodPost, true},
		{"staff write", &models.User{ID: 1, Role: models.RoleUser, IsStaff: true}, http.MethodDelete, true},
		{"superuser write", &models.User{ID: 1, Role: models.RoleUser, IsSuperuser: true}, http.MethodDelete, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, AdminOrReadOnly(tc.actor, tc.method))
		})
	}
}

func TestAdminOnly(t *testing.T) {
	assert.False(t, AdminOnly(nil))
	assert.False(t, AdminOnly(models.AnonymousUser))
	assert.False(t, AdminOnly(&models.User{ID: 1, Role: models.RoleModerator}))
	assert.True(t, AdminOnly(&models.User{ID: 1, Role: models.RoleAdmin}))
	assert.True(t, AdminOnly(&models.User{ID: 1, IsSuperuser: true}))
}

func TestAuthorOrReadOnly(t *testing.T) {
	author := &models.User{ID: 3, Role: models.RoleUser}
	other := &models.User{ID: 4, Role: models.RoleUser}
	assert.True(t, AuthorOrReadOnly(nil, http.MethodGet, 3))
	assert.True(t, AuthorOrReadOnly(author, http.MethodPatch, 3))
	assert.False(t, AuthorOrReadOnly(other, http.MethodPatch, 3))
	assert.False(t, AuthorOrReadOnly(models.AnonymousUser, http.MethodPatch, 3))
}

func TestModeratorOrAuthorOrReadOnly(t *testing.T) {
	assert.True(t, ModeratorOrAuthorOrReadOnly(models.AnonymousUser, http.MethodGet))
	assert.False(t, ModeratorOrAuthorOrReadOnly(models.AnonymousUser, http.MethodPost))
	assert.True(t, ModeratorOrAuthorOrReadOnly(&models.User{ID: 9, Role: models.RoleUser}, http.MethodPost))
}

func TestModeratorOrAuthorOrReadOnlyObject(t *testing.T) {
	const authorID = int64(3)
	cases := []struct {
		name   string
		actor  *models.User
		method string
		want   bool
	}{
		{"anonymous read", models.AnonymousUser, http.MethodGet, true},
		{"anonymous delete", models.AnonymousUser, http.MethodDelete, false},
		{"author delete", &models.User{ID: 3, Role: models.RoleUser}, http.MethodDelete, true},
		{"unrelated user delete", &models.User{ID: 8, Role: models.RoleUser}, http.MethodDelete, false},
		{"moderator delete", &models.User{ID: 8, Role: models.RoleModerator}, http.MethodDelete, true},
		{"admin delete", &models.User{ID: 8, Role: models.RoleAdmin}, http.MethodDelete, true},
		{"superuser delete", &models.User{ID: 8, IsSuperuser: true}, http.MethodDelete, true},
		{"unrelated user patch", &models.User{ID: 8, Role: models.RoleUser}, http.MethodPatch, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ModeratorOrAuthorOrReadOnlyObject(tc.actor, tc.method, authorID))
		})
	}
}
