package sessiontoken

import (
	"errors"
	"time"

	"github.com/EnpoDev/camlikspor-sub001/internal/authz"
	"github.com/EnpoDev/camlikspor-sub001/internal/model"
	"github.com/EnpoDev/camlikspor-sub001/pkg/config"

	"github.com/golang-jwt/jwt/v4"
)

var (
	secret []byte
	ttl    = 2 * time.Hour
)

// ErrLegacyShape is returned for tokens that predate the sub-dealer flag.
// Such tokens may carry capabilities that were never filtered for the
// sub-dealer restriction, so they are rejected outright instead of being
// upgraded in place; the holder signs in again.
var ErrLegacyShape = errors.New("sessiontoken: token missing sub_dealer claim")

// SessionClaims is the signed session payload. The dealer fields are
// denormalized at issuance so page code can render the dealer name and
// slug without a lookup; they go stale only within the token TTL.
type SessionClaims struct {
	UserID       uint       `json:"user_id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	Role         model.Role `json:"role"`
	DealerID     *uint      `json:"dealer_id,omitempty"`
	DealerName   string     `json:"dealer_name,omitempty"`
	DealerSlug   string     `json:"dealer_slug,omitempty"`
	SubDealer    *bool      `json:"sub_dealer"`
	Capabilities []string   `json:"capabilities"`
	jwt.RegisteredClaims
}

// Initialize sets the signing key and token lifetime from configuration.
func Initialize(cfg *config.SessionConfig) {
	secret = []byte(cfg.SigningKey)
	if cfg.TTL > 0 {
		ttl = cfg.TTL
	}
}

// Issue signs a session snapshot into a token string.
func Issue(s *authz.Session) (string, error) {
	caps := s.Capabilities()
	capStrings := make([]string, len(caps))
	for i, c := range caps {
		capStrings[i] = string(c)
	}

	sub := s.SubDealer
	claims := SessionClaims{
		UserID:       s.UserID,
		Email:        s.Email,
		Name:         s.Name,
		Role:         s.Role,
		DealerID:     s.DealerID,
		DealerName:   s.DealerName,
		DealerSlug:   s.DealerSlug,
		SubDealer:    &sub,
		Capabilities: capStrings,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// Parse validates a token string and rebuilds the session snapshot.
func Parse(tokenString string) (*authz.Session, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}

	if claims.SubDealer == nil {
		return nil, ErrLegacyShape
	}

	caps := make([]authz.Capability, 0, len(claims.Capabilities))
	for _, raw := range claims.Capabilities {
		c := authz.Capability(raw)
		if authz.Valid(c) {
			caps = append(caps, c)
		}
	}

	return authz.RestoreSession(authz.Session{
		UserID:     claims.UserID,
		Email:      claims.Email,
		Name:       claims.Name,
		Role:       claims.Role,
		DealerID:   claims.DealerID,
		DealerName: claims.DealerName,
		DealerSlug: claims.DealerSlug,
		SubDealer:  *claims.SubDealer,
	}, caps), nil
}

// TTL returns the configured token lifetime.
func TTL() time.Duration {
	return ttl
}
