// Package tokens holds the signed-token subsystem: confirmation codes
// proving ownership of a signup identity, and access tokens carrying
// the session's role claims. Both are HS256 JWTs under one process-wide
// secret, injected at construction instead of read from ambient state.
package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"critichub/proj/internal/domain/models"
)

var ErrMalformedCode = errors.New("malformed confirmation code")

type Codec struct {
	secret         []byte
	accessTokenTTL time.Duration
}

func New(secret string, accessTokenTTL time.Duration) *Codec {
	return &Codec{
		secret:         []byte(secret),
		accessTokenTTL: accessTokenTTL,
	}
}

// IssueConfirmationCode derives a signed code from exactly the username
// and email. No issued-at or expiry claim is included: the code must be
// a pure function of the identity fields, so re-issuing for an
// unchanged account yields a byte-identical code, and changing either
// field silently invalidates everything issued before.
func (c *Codec) IssueConfirmationCode(username, email string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": username,
		"email":    email,
	})
	return token.SignedString(c.secret)
}

// VerifyConfirmationCode checks the signature and structure of a code
// and returns the identity it was issued for.
func (c *Codec) VerifyConfirmationCode(code string) (username, email string, err error) {
	parsed, err := jwt.Parse(code, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrMalformedCode
		}
		return c.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", "", ErrMalformedCode
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", ErrMalformedCode
	}
	username, uok := claims["username"].(string)
	email, eok := claims["email"].(string)
	if !uok || !eok {
		return "", "", ErrMalformedCode
	}
	return username, email, nil
}

// IssueAccessToken mints a session token for an account. Expiry is the
// only bound on its lifetime; there is no revocation list.
func (c *Codec) IssueAccessToken(user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid":          user.ID,
		"username":     user.Username,
		"role":         user.Role,
		"is_superuser": user.IsSuperuser,
		"iat":          now.Unix(),
		"exp":          now.Add(c.accessTokenTTL).Unix(),
	})
	return token.SignedString(c.secret)
}

type AccessClaims struct {
	UserID      int64
	Username    string
	Role        string
	IsSuperuser bool
}

var ErrInvalidToken = errors.New("invalid or expired token")

func (c *Codec) ParseAccessToken(token string) (*AccessClaims, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	uid, ok := claims["uid"].(float64)
	if !ok {
		return nil, ErrInvalidToken
	}
	out := &AccessClaims{UserID: int64(uid)}
	out.Username, _ = claims["username"].(string)
	out.Role, _ = claims["role"].(string)
	out.IsSuperuser, _ = claims["is_superuser"].(bool)
	return out, nil
}

// RoleOf extracts the role claim from a token without touching storage.
// Callers on the fast path treat an empty result as "no elevated role",
// never as an error: a missing or malformed claim degrades to "".
func (c *Codec) RoleOf(token string) string {
	claims, err := c.ParseAccessToken(token)
	if err != nil {
		return ""
	}
	return claims.Role
}
