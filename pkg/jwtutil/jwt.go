package jwtutil

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is used when a token is issued without an explicit lifetime
const DefaultTTL = 15 * time.Minute

// ErrInvalidToken is returned for tokens that parse but carry no usable claims
var ErrInvalidToken = errors.New("invalid token")

// Claims are the JWT claims carried by an access token. The username is the subject.
type Claims struct {
	jwt.RegisteredClaims
}

// JWTUtil signs and validates HS256 tokens with a static shared secret
type JWTUtil struct {
	signingKey []byte
	now        func() time.Time
}

// NewJWTUtil creates a new JWT utility with the given signing key
func NewJWTUtil(signingKey string) *JWTUtil {
	return &JWTUtil{
		signingKey: []byte(signingKey),
		now:        time.Now,
	}
}

// WithClock replaces the time source used for issuing and validating tokens
func (j *JWTUtil) WithClock(now func() time.Time) *JWTUtil {
	j.now = now
	return j
}

// GenerateToken creates a token for subject that expires after ttl
func (j *JWTUtil) GenerateToken(subject string, ttl time.Duration) (string, error) {
	if len(j.signingKey) == 0 {
		return "", errors.New("JWT signing key not provided")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	now := j.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.signingKey)
}

// ValidateToken checks signature and expiry and returns the parsed claims
func (j *JWTUtil) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return j.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrInvalidToken
}
