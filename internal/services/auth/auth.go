package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"critichub/proj/internal/domain/models"
	"critichub/proj/internal/storage"
	"critichub/proj/internal/tokens"
)

// "me" is claimed by the self-service profile route, so no account may
// shadow it.
const reservedUsername = "me"

type UsersStorage interface {
	Insert(ctx context.Context, user *models.User) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Activate(ctx context.Context, id int64) error
}

type MailProvider interface {
	Send(recipient string, tmplName string, tmplData any) error
}

type AuthService struct {
	log     *slog.Logger
	storage UsersStorage
	mailer  MailProvider
	codec   *tokens.Codec
}

func New(log *slog.Logger, storage UsersStorage, mailer MailProvider, codec *tokens.Codec) *AuthService {
	return &AuthService{
		log:     log,
		storage: storage,
		mailer:  mailer,
		codec:   codec,
	}
}

// Signup creates an inactive account and mails its confirmation code.
// The code is recomputed from the identity fields on demand, never
// stored; mail dispatch is a single attempt and its failure fails the
// whole signup.
func (s *AuthService) Signup(ctx context.Context, username, email string) (*models.User, error) {
	const op = "auth.AuthService.Signup"
	log := s.log.With("op", op, "username", username, "email", email)
	if strings.EqualFold(username, reservedUsername) {
		log.Info("attempt to sign up with reserved username")
		return nil, ErrReservedUsername
	}
	if err := s.checkIdentityFree(ctx, username, email); err != nil {
		return nil, err
	}
	user, err := s.storage.Insert(ctx, &models.User{
		Username: username,
		Email:    email,
		Role:     models.RoleUser,
		IsActive: false,
	})
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			// Lost the race against a concurrent signup; the unique
			// constraints are the authoritative check.
			return nil, s.resolveConflict(ctx, username)
		}
		log.Error(err.Error())
		return nil, err
	}
	code, err := s.codec.IssueConfirmationCode(user.Username, user.Email)
	if err != nil {
		log.Error("failed to issue confirmation code", "errMsg", err.Error())
		return nil, err
	}
	err = s.mailer.Send(user.Email, "confirmation_code.html", map[string]any{
		"username":         user.Username,
		"confirmationCode": code,
	})
	if err != nil {
		log.Error("confirmation email dispatch failed", "errMsg", err.Error())
		return nil, fmt.Errorf("%w: %s", ErrMailDispatch, err)
	}
	return user, nil
}

func (s *AuthService) checkIdentityFree(ctx context.Context, username, email string) error {
	if _, err := s.storage.GetByUsername(ctx, username); err == nil {
		return ErrUsernameTaken
	} else if !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	if _, err := s.storage.GetByEmail(ctx, email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	return nil
}

func (s *AuthService) resolveConflict(ctx context.Context, username string) error {
	if _, err := s.storage.GetByUsername(ctx, username); err == nil {
		return ErrUsernameTaken
	}
	return ErrEmailTaken
}

// TokenExchange validates a confirmation code against the account's
// current identity, activates the account and returns an access token.
// Valid exchanges are repeatable: the code stays usable until the
// account's username or email changes.
func (s *AuthService) TokenExchange(ctx context.Context, username, code string) (string, error) {
	const op = "auth.AuthService.TokenExchange"
	log := s.log.With("op", op, "username", username)
	user, err := s.storage.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("token exchange for unknown user")
			return "", ErrUserNotFound
		}
		log.Error(err.Error())
		return "", err
	}
	codeUsername, codeEmail, err := s.codec.VerifyConfirmationCode(code)
	if err != nil {
		log.Info("confirmation code failed verification")
		return "", ErrForgedCode
	}
	if codeUsername != user.Username || codeEmail != user.Email {
		// A structurally valid code issued for another identity, or one
		// that predates an email change.
		log.Info("confirmation code identity mismatch")
		return "", ErrForgedCode
	}
	if !user.IsActive {
		if err := s.storage.Activate(ctx, user.ID); err != nil {
			log.Error("failed to activate user", "errMsg", err.Error())
			return "", err
		}
		user.IsActive = true
	}
	token, err := s.codec.IssueAccessToken(user)
	if err != nil {
		log.Error("failed to issue access token", "errMsg", err.Error())
		return "", err
	}
	return token, nil
}
