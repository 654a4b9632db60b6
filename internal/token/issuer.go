// Package token mints the signed bearer tokens handed out at session issuance.
// Verification belongs to the gateway in front of the service.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
)

type Config struct {
	Key               string
	Issuer            string
	Audience          string
	ExpirationMinutes int
}

// Claims carried by every session token.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Issuer signs tokens with a symmetric key using HS256.
type Issuer struct {
	key      []byte
	issuer   string
	audience string
	ttl      time.Duration
	clock    clockwork.Clock
}

var ErrMissingKey = errors.New("token signing key is required")

func NewIssuer(cfg Config, clock clockwork.Clock) (*Issuer, error) {
	if cfg.Key == "" {
		return nil, ErrMissingKey
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	minutes := cfg.ExpirationMinutes
	if minutes <= 0 {
		minutes = 60
	}
	return &Issuer{
		key:      []byte(cfg.Key),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		ttl:      time.Duration(minutes) * time.Minute,
		clock:    clock,
	}, nil
}

// Mint returns the compact signed token for subject.
func (i *Issuer) Mint(subject, email string) (string, error) {
	now := i.clock.Now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	if i.audience != "" {
		claims.Audience = jwt.ClaimStrings{i.audience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
}
