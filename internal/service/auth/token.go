package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/alamarhq/alamar/internal/models"
)

// Session management lives in the identity service; this package only
// verifies the signed actor tokens it issues and, for tests and tooling,
// can mint them.

var ErrInvalidToken = errors.New("invalid actor token")

type actorClaims struct {
	Roles         []string `json:"roles"`
	AllyProfileID string   `json:"ally_profile_id,omitempty"`
	jwt.RegisteredClaims
}

type TokenManager struct {
	secret []byte
}

func NewTokenManager(secret string) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("secret key must not be empty")
	}

	return &TokenManager{secret: []byte(secret)}, nil
}

// Parse verifies the token signature and expiry and returns the actor it
// describes.
func (m *TokenManager) Parse(tokenString string) (models.Actor, error) {
	var actor models.Actor

	var claims actorClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return actor, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	actorID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return actor, fmt.Errorf("%w: bad subject: %w", ErrInvalidToken, err)
	}

	actor = models.Actor{
		ID:    actorID,
		Roles: claims.Roles,
	}

	if claims.AllyProfileID != "" {
		allyID, err := uuid.Parse(claims.AllyProfileID)
		if err != nil {
			return actor, fmt.Errorf("%w: bad ally profile id: %w", ErrInvalidToken, err)
		}
		actor.AllyID = &allyID
	}

	return actor, nil
}

// Issue signs an actor token valid for ttl
func (m *TokenManager) Issue(actor models.Actor, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := actorClaims{
		Roles: actor.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if actor.AllyID != nil {
		claims.AllyProfileID = actor.AllyID.String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}
