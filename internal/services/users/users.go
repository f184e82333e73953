// Package users covers account administration and the self-service
// profile. Admin writes keep the staff flag in sync with the role
// field; self-service updates can never touch the role at all.
package users

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"critichub/proj/internal/domain/filters"
	"critichub/proj/internal/domain/models"
	"critichub/proj/internal/storage"
)

const reservedUsername = "me"

type UsersStorage interface {
	Insert(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, search string, f filters.Filters) ([]models.User, int, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)
	DeleteByUsername(ctx context.Context, username string) error
}

type UserService struct {
	log     *slog.Logger
	storage UsersStorage
}

func New(log *slog.Logger, storage UsersStorage) *UserService {
	return &UserService{log: log, storage: storage}
}

func (s *UserService) List(ctx context.Context, search string, f filters.Filters) ([]models.User, int, error) {
	const op = "users.UserService.List"
	users, total, err := s.storage.List(ctx, search, f)
	if err != nil {
		s.log.With("op", op).Error(err.Error())
		return nil, 0, err
	}
	return users, total, nil
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	const op = "users.UserService.GetByID"
	user, err := s.storage.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		s.log.With("op", op, "id", id).Error(err.Error())
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "users.UserService.GetByUsername"
	user, err := s.storage.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		s.log.With("op", op, "username", username).Error(err.Error())
		return nil, err
	}
	return user, nil
}

type CreateUserParams struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Bio       string
	Role      string
	Password  string
}

// Create registers an account on behalf of an admin. Such accounts
// skip the confirmation flow and start active.
func (s *UserService) Create(ctx context.Context, params CreateUserParams) (*models.User, error) {
	const op = "users.UserService.Create"
	log := s.log.With("op", op, "username", params.Username)
	if strings.EqualFold(params.Username, reservedUsername) {
		return nil, ErrReservedUsername
	}
	role := params.Role
	if role == "" {
		role = models.RoleUser
	}
	var passwordHash []byte
	if params.Password != "" {
		var err error
		passwordHash, err = bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Error(err.Error())
			return nil, err
		}
	}
	user, err := s.storage.Insert(ctx, &models.User{
		Username:     params.Username,
		Email:        params.Email,
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		Bio:          params.Bio,
		Role:         role,
		PasswordHash: passwordHash,
		IsStaff:      role == models.RoleAdmin,
		IsActive:     true,
	})
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, s.resolveConflict(ctx, params.Username)
		}
		log.Error(err.Error())
		return nil, err
	}
	return user, nil
}

func (s *UserService) resolveConflict(ctx context.Context, username string) error {
	if _, err := s.storage.GetByUsername(ctx, username); err == nil {
		return ErrUsernameTaken
	}
	return ErrEmailTaken
}

type UpdateUserParams struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
	Bio       *string
	Role      *string
}

// Update applies an admin edit to the named account. A role change
// also rewrites the staff flag so the two admin signals stay coherent.
func (s *UserService) Update(ctx context.Context, username string, params UpdateUserParams) (*models.User, error) {
	const op = "users.UserService.Update"
	log := s.log.With("op", op, "username", username)
	user, err := s.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if params.Username != nil {
		if strings.EqualFold(*params.Username, reservedUsername) {
			return nil, ErrReservedUsername
		}
		user.Username = *params.Username
	}
	if params.Email != nil {
		user.Email = *params.Email
	}
	applyProfile(user, params.FirstName, params.LastName, params.Bio)
	if params.Role != nil {
		user.Role = *params.Role
		user.IsStaff = user.Role == models.RoleAdmin
	}
	updated, err := s.storage.Update(ctx, user)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrConflict):
			return nil, s.resolveConflict(ctx, user.Username)
		case errors.Is(err, storage.ErrNotFound):
			return nil, ErrUserNotFound
		}
		log.Error(err.Error())
		return nil, err
	}
	return updated, nil
}

func (s *UserService) Delete(ctx context.Context, username string) error {
	const op = "users.UserService.Delete"
	if err := s.storage.DeleteByUsername(ctx, username); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrUserNotFound
		}
		s.log.With("op", op, "username", username).Error(err.Error())
		return err
	}
	return nil
}

type ProfileParams struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
	Bio       *string
}

// UpdateProfile applies a self-service edit. There is no role in the
// params shape, so a user cannot promote themselves regardless of what
// the request body contained. Changing username or email silently
// invalidates previously issued confirmation codes.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, params ProfileParams) (*models.User, error) {
	const op = "users.UserService.UpdateProfile"
	log := s.log.With("op", op, "user_id", userID)
	user, err := s.storage.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		log.Error(err.Error())
		return nil, err
	}
	if params.Username != nil {
		if strings.EqualFold(*params.Username, reservedUsername) {
			return nil, ErrReservedUsername
		}
		user.Username = *params.Username
	}
	if params.Email != nil {
		user.Email = *params.Email
	}
	applyProfile(user, params.FirstName, params.LastName, params.Bio)
	updated, err := s.storage.Update(ctx, user)
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, s.resolveConflict(ctx, user.Username)
		}
		log.Error(err.Error())
		return nil, err
	}
	return updated, nil
}

func applyProfile(user *models.User, firstName, lastName, bio *string) {
	if firstName != nil {
		user.FirstName = *firstName
	}
	if lastName != nil {
		user.LastName = *lastName
	}
	if bio != nil {
		user.Bio = *bio
	}
}
