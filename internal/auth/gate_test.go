package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"movie-service/internal/apperror"
	"movie-service/pkg/config"
	"movie-service/pkg/jwtutil"
)

const testKey = "test-signing-key"

func newTestGate(t *testing.T, active bool) *Gate {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := &config.Config{
		JWT: config.JWTConfig{SigningKey: testKey, ExpirationMinutes: 120},
		Auth: config.AuthConfig{
			Username:     "admin",
			FullName:     "Administrator",
			Email:        "admin@example.com",
			PasswordHash: string(hash),
			Active:       active,
		},
	}
	return NewGate(cfg, zap.NewNop())
}

func assertDetail(t *testing.T, err error, code apperror.Code, msg string) {
	t.Helper()
	var appErr *apperror.Error
	require.True(t, errors.As(err, &appErr), "expected *apperror.Error, got %v", err)
	assert.Equal(t, code, appErr.Code)
	assert.Equal(t, msg, appErr.Message)
}

func TestAuthenticate(t *testing.T) {
	g := newTestGate(t, true)

	tests := []struct {
		name     string
		username string
		password string
		wantErr  bool
	}{
		{name: "valid credentials", username: "admin", password: "secret"},
		{name: "wrong password", username: "admin", password: "nope", wantErr: true},
		{name: "unknown user", username: "root", password: "secret", wantErr: true},
		{name: "empty", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := g.Authenticate(tt.username, tt.password)
			if tt.wantErr {
				assertDetail(t, err, apperror.CodeUnauthorized, MsgIncorrectLogin)
				assert.Nil(t, user)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "admin", user.Username)
			assert.Equal(t, "admin@example.com", user.Email)
		})
	}
}

func TestIssueAndVerifyToken(t *testing.T) {
	g := newTestGate(t, true)
	user, err := g.Authenticate("admin", "secret")
	require.NoError(t, err)

	token, err := g.IssueToken(user, g.TokenTTL())
	require.NoError(t, err)

	got, err := g.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", got.Username)
	assert.Equal(t, 120*time.Minute, g.TokenTTL())
}

func TestVerifyToken_Rejects(t *testing.T) {
	g := newTestGate(t, true)

	other := jwtutil.NewJWTUtil("another-key")
	forged, err := other.GenerateToken("admin", time.Minute)
	require.NoError(t, err)

	signer := jwtutil.NewJWTUtil(testKey)
	unknown, err := signer.GenerateToken("ghost", time.Minute)
	require.NoError(t, err)
	noSubject, err := signer.GenerateToken("", time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-token"},
		{name: "wrong signature", token: forged},
		{name: "unknown subject", token: unknown},
		{name: "missing subject", token: noSubject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := g.VerifyToken(tt.token)
			assertDetail(t, err, apperror.CodeUnauthorized, MsgInvalidCredentials)
			assert.Nil(t, user)
		})
	}
}

func TestVerifyToken_Expired(t *testing.T) {
	g := newTestGate(t, true)
	user, err := g.Authenticate("admin", "secret")
	require.NoError(t, err)

	token, err := g.IssueToken(user, time.Minute)
	require.NoError(t, err)

	g.tokens = jwtutil.NewJWTUtil(testKey).WithClock(func() time.Time { return time.Now().Add(time.Hour) })
	_, err = g.VerifyToken(token)
	assertDetail(t, err, apperror.CodeUnauthorized, MsgInvalidCredentials)
}

func TestRequireActiveUser(t *testing.T) {
	active := newTestGate(t, true)
	user, err := active.Authenticate("admin", "secret")
	require.NoError(t, err)
	assert.NoError(t, active.RequireActiveUser(user))

	inactive := newTestGate(t, false)
	user, err = inactive.Authenticate("admin", "secret")
	require.NoError(t, err)
	assertDetail(t, inactive.RequireActiveUser(user), apperror.CodeBadRequest, MsgInactiveUser)
	assertDetail(t, inactive.RequireActiveUser(nil), apperror.CodeBadRequest, MsgInactiveUser)
}
