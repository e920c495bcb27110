// Package auth issues and verifies bearer tokens for the configured account.
package auth

import (
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"movie-service/internal/apperror"
	"movie-service/pkg/config"
	"movie-service/pkg/jwtutil"
)

// Client-facing messages
const (
	MsgIncorrectLogin     = "Incorrect username or password"
	MsgInvalidCredentials = "Could not validate credentials"
	MsgInactiveUser       = "Inactive user"
	MsgNotAuthenticated   = "Not authenticated"
)

// User is an entry of the credential table
type User struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	FullName     string `json:"full_name"`
	Active       bool   `json:"is_active"`
	PasswordHash string `json:"-"`
}

// Gate holds the credential table and the token signer. It is immutable after construction.
type Gate struct {
	users  map[string]User
	tokens *jwtutil.JWTUtil
	ttl    time.Duration
	log    *zap.Logger
}

// NewGate builds the credential table from cfg
func NewGate(cfg *config.Config, log *zap.Logger) *Gate {
	user := User{
		Username:     cfg.Auth.Username,
		Email:        cfg.Auth.Email,
		FullName:     cfg.Auth.FullName,
		Active:       cfg.Auth.Active,
		PasswordHash: cfg.Auth.PasswordHash,
	}
	return &Gate{
		users:  map[string]User{user.Username: user},
		tokens: jwtutil.NewJWTUtil(cfg.JWT.SigningKey),
		ttl:    cfg.JWT.Expiration(),
		log:    log,
	}
}

// TokenTTL is the lifetime of tokens issued by the login endpoint
func (g *Gate) TokenTTL() time.Duration {
	return g.ttl
}

// Authenticate checks a username and password against the credential table
func (g *Gate) Authenticate(username, password string) (*User, error) {
	user, ok := g.users[username]
	if !ok {
		g.log.Debug("Unknown user", zap.String("username", username))
		return nil, apperror.Unauthorized(MsgIncorrectLogin)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		g.log.Debug("Password mismatch", zap.String("username", username))
		return nil, apperror.Unauthorized(MsgIncorrectLogin)
	}
	return &user, nil
}

// IssueToken signs a token for user. A non-positive ttl uses jwtutil.DefaultTTL.
func (g *Gate) IssueToken(user *User, ttl time.Duration) (string, error) {
	token, err := g.tokens.GenerateToken(user.Username, ttl)
	if err != nil {
		return "", apperror.Internal(err)
	}
	return token, nil
}

// VerifyToken validates token and resolves its subject to a known user
func (g *Gate) VerifyToken(token string) (*User, error) {
	claims, err := g.tokens.ValidateToken(token)
	if err != nil {
		g.log.Debug("Token rejected", zap.Error(err))
		return nil, apperror.Unauthorized(MsgInvalidCredentials)
	}
	if claims.Subject == "" {
		return nil, apperror.Unauthorized(MsgInvalidCredentials)
	}
	user, ok := g.users[claims.Subject]
	if !ok {
		return nil, apperror.Unauthorized(MsgInvalidCredentials)
	}
	return &user, nil
}

// RequireActiveUser rejects users whose account is disabled
func (g *Gate) RequireActiveUser(user *User) error {
	if user == nil || !user.Active {
		return apperror.BadRequest(MsgInactiveUser)
	}
	return nil
}
