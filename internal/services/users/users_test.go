package users

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"critichub/proj/internal/domain/filters"
	"critichub/proj/internal/domain/models"
	"critichub/proj/internal/storage"
)

type fakeUsersStorage struct {
	users  map[int64]*models.User
	nextID int64
}

func newFakeUsersStorage() *fakeUsersStorage {
	return &fakeUsersStorage{users: map[int64]*models.User{}, nextID: 1}
}

func (f *fakeUsersStorage) Insert(_ context.Context, user *models.User) (*models.User, error) {
	for _, u := range f.users {
		if u.Username == user.Username || u.Email == user.Email {
			return nil, storage.ErrConflict
		}
	}
	saved := *user
	saved.ID = f.nextID
	f.nextID++
	f.users[saved.ID] = &saved
	out := saved
	return &out, nil
}

func (f *fakeUsersStorage) GetByID(_ context.Context, id int64) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, storage.ErrNotFound
}

func (f *fakeUsersStorage) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (f *fakeUsersStorage) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (f *fakeUsersStorage) List(_ context.Context, _ string, _ filters.Filters) ([]models.User, int, error) {
	out := make([]models.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, len(out), nil
}

func (f *fakeUsersStorage) Update(_ context.Context, user *models.User) (*models.User, error) {
	stored, ok := f.users[user.ID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	for _, u := range f.users {
		if u.ID != user.ID && (u.Username == user.Username || u.Email == user.Email) {
			return nil, storage.ErrConflict
		}
	}
	*stored = *user
	copied := *stored
	return &copied, nil
}

func (f *fakeUsersStorage) DeleteByUsername(_ context.Context, username string) error {
	for id, u := range f.users {
		if u.Username == username {
			delete(f.users, id)
			return nil
		}
	}
	return storage.ErrNotFound
}

func newTestService(t *testing.T) (*UserService, *fakeUsersStorage) {
	t.Helper()
	store := newFakeUsersStorage()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(log, store), store
}

func TestCreate(t *testing.T) {
	svc, _ := newTestService(t)
	user, err := svc.Create(context.Background(), CreateUserParams{
		Username: "alice",
		Email:    "a@x.com",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsStaff)
	assert.NoError(t, bcrypt.CompareHashAndPassword(user.PasswordHash, []byte("s3cret-pass")))
}

func TestCreateAdminSetsStaffFlag(t *testing.T) {
	svc, _ := newTestService(t)
	user, err := svc.Create(context.Background(), CreateUserParams{
		Username: "alice",
		Email:    "a@x.com",
		Role:     models.RoleAdmin,
	})
	require.NoError(t, err)
	assert.True(t, user.IsStaff)
	assert.True(t, user.IsAdmin())
}

func TestCreateReservedUsername(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Create(context.Background(), CreateUserParams{Username: "Me", Email: "a@x.com"})
	assert.ErrorIs(t, err, ErrReservedUsername)
}

func TestCreateDuplicates(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Create(context.Background(), CreateUserParams{Username: "alice", Email: "a@x.com"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateUserParams{Username: "alice", Email: "other@x.com"})
	assert.ErrorIs(t, err, ErrUsernameTaken)
	_, err = svc.Create(context.Background(), CreateUserParams{Username: "bob", Email: "a@x.com"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestUpdateRoleSyncsStaffFlag(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Create(context.Background(), CreateUserParams{Username: "alice", Email: "a@x.com"})
	require.NoError(t, err)

	role := models.RoleAdmin
	updated, err := svc.Update(context.Background(), "alice", UpdateUserParams{Role: &role})
	require.NoError(t, err)
	assert.True(t, updated.IsStaff)

	role = models.RoleUser
	updated, err = svc.Update(context.Background(), "alice", UpdateUserParams{Role: &role})
	require.NoError(t, err)
	assert.False(t, updated.IsStaff)
}

func TestUpdateUnknownUser(t *testing.T) {
	svc, _ := newTestService(t)
	bio := "hi"
	_, err := svc.Update(context.Background(), "ghost", UpdateUserParams{Bio: &bio})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := newTestService(t)
	user, err := svc.Create(context.Background(), CreateUserParams{Username: "alice", Email: "a@x.com"})
	require.NoError(t, err)

	bio := "reader of long novels"
	first := "Alice"
	updated, err := svc.UpdateProfile(context.Background(), user.ID, ProfileParams{Bio: &bio, FirstName: &first})
	require.NoError(t, err)
	assert.Equal(t, "reader of long novels", updated.Bio)
	assert.Equal(t, "Alice", updated.FirstName)
	// role and staff flag are untouchable through the profile surface
	assert.Equal(t, models.RoleUser, updated.Role)
	assert.False(t, updated.IsStaff)
}

func TestUpdateProfileReservedUsername(t *testing.T) {
	svc, _ := newTestService(t)
	user, err := svc.Create(context.Background(), CreateUserParams{Username: "alice", Email: "a@x.com"})
	require.NoError(t, err)
	username := "me"
	_, err = svc.UpdateProfile(context.Background(), user.ID, ProfileParams{Username: &username})
	assert.ErrorIs(t, err, ErrReservedUsername)
}

func TestDelete(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Create(context.Background(), CreateUserParams{Username: "alice", Email: "a@x.com"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), "alice"))
	assert.ErrorIs(t, svc.Delete(context.Background(), "alice"), ErrUserNotFound)
}
