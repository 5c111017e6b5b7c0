package auth

import (
	"dm-lab/domain"
	"dm-lab/errors"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	DefaultSessionDuration = 7 * 24 * time.Hour
	tokenIssuer            = "dm-lab"
)

// SessionClaims is the payload of a session token.
type SessionClaims struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// SessionIssuer signs and verifies session tokens with one process-wide key.
type SessionIssuer struct {
	key      []byte
	duration time.Duration
	now      func() time.Time
}

func NewSessionIssuer(key []byte, duration time.Duration) (*SessionIssuer, error) {
	if len(key) == 0 {
		return nil, stderrors.New("session signing key is empty")
	}
	if duration <= 0 {
		return nil, fmt.Errorf("session duration must be positive, got %s", duration)
	}
	return &SessionIssuer{key: key, duration: duration, now: time.Now}, nil
}

// Issue creates an HS256 token binding the user id and username.
func (s *SessionIssuer) Issue(userID, username string) (string, error) {
	now := s.now()
	claims := &SessionClaims{
		ID:       userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.duration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.key)
}

// Validate checks signature, algorithm, issuer and expiry of tokenString.
func (s *SessionIssuer) Validate(tokenString string) (domain.Session, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{},
		func(token *jwt.Token) (interface{}, error) {
			return s.key, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return domain.Session{}, fmt.Errorf("%w: %v", errors.ErrInvalidSession, err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.ID == "" {
		return domain.Session{}, errors.ErrInvalidSession
	}
	return domain.Session{ID: claims.ID, Username: claims.Username}, nil
}
