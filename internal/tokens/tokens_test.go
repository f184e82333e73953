package tokens

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"critichub/proj/internal/domain/models"
)

func TestConfirmationCodeIsDeterministic(t *testing.T) {
	codec := New("test-secret", time.Hour)
	first, err := codec.IssueConfirmationCode("alice", "a@x.com")
	require.NoError(t, err)
	second, err := codec.IssueConfirmationCode("alice", "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestConfirmationCodeRoundTrip(t *testing.T) {
	codec := New("test-secret", time.Hour)
	code, err := codec.IssueConfirmationCode("alice", "a@x.com")
	require.NoError(t, err)
	username, email, err := codec.VerifyConfirmationCode(code)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)
	assert.Equal(t, "a@x.com", email)
}

func TestConfirmationCodeChangesWithIdentity(t *testing.T) {
	codec := New("test-secret", time.Hour)
	code, err := codec.IssueConfirmationCode("alice", "a@x.com")
	require.NoError(t, err)
	changed, err := codec.IssueConfirmationCode("alice", "new@x.com")
	require.NoError(t, err)
	assert.NotEqual(t, code, changed)
}

func TestVerifyConfirmationCodeRejectsGarbage(t *testing.T) {
	codec := New("test-secret", time.Hour)
	for _, code := range []string{"", "not-a-token", "a.b.c"} {
		_, _, err := codec.VerifyConfirmationCode(code)
		assert.ErrorIs(t, err, ErrMalformedCode)
	}
}

func TestVerifyConfirmationCodeRejectsWrongKey(t *testing.T) {
	codec := New("test-secret", time.Hour)
	other := New("other-secret", time.Hour)
	code, err := other.IssueConfirmationCode("alice", "a@x.com")
	require.NoError(t, err)
	_, _, err = codec.VerifyConfirmationCode(code)
	assert.ErrorIs(t, err, ErrMalformedCode)
}

func TestAccessTokenClaims(t *testing.T) {
	codec := New("test-secret", time.Hour)
	token, err := codec.IssueAccessToken(&models.User{
		ID:          7,
		Username:    "alice",
		Role:        models.RoleModerator,
		IsSuperuser: true,
	})
	require.NoError(t, err)
	claims, err := codec.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, models.RoleModerator, claims.Role)
	assert.True(t, claims.IsSuperuser)
}

func TestAccessTokenExpiry(t *testing.T) {
	codec := New("test-secret", -time.Minute)
	token, err := codec.IssueAccessToken(&models.User{ID: 1, Username: "alice"})
	require.NoError(t, err)
	_, err = codec.ParseAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRoleOf(t *testing.T) {
	codec := New("test-secret", time.Hour)
	token, err := codec.IssueAccessToken(&models.User{ID: 1, Username: "bob", Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, codec.RoleOf(token))
}

func TestRoleOfFailsSilently(t *testing.T) {
	codec := New("test-secret", time.Hour)
	assert.Equal(t, "", codec.RoleOf("not-a-token"))
	// a confirmation code is a valid JWT without a role claim
	code, err := codec.IssueConfirmationCode("alice", "a@x.com")
	assert.NoError(t, err)
	assert.Equal(t, "", codec.RoleOf(code))
}
