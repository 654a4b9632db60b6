// Package otp issues and checks single-use numeric login codes.
package otp

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/ovaphlow/pitchfork/service-agents-go/pkg/cache"
)

// DefaultTTL is how long an issued code stays redeemable.
const DefaultTTL = 5 * time.Minute

// codeSpace is the number of distinct 6-digit codes.
var codeSpace = big.NewInt(1_000_000)

// Service stores at most one live code per identity.
type Service struct {
	store  cache.Store[string]
	ttl    time.Duration
	random io.Reader
}

type Option func(*Service)

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithRandom replaces crypto/rand.Reader as the entropy source.
func WithRandom(r io.Reader) Option {
	return func(s *Service) { s.random = r }
}

func NewService(store cache.Store[string], opts ...Option) *Service {
	s := &Service{store: store, ttl: DefaultTTL, random: rand.Reader}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue draws a fresh code for identity, replacing any prior one.
func (s *Service) Issue(ctx context.Context, identity string) (string, error) {
	// rand.Int rejects out-of-range draws, so every code is equally likely.
	n, err := rand.Int(s.random, codeSpace)
	if err != nil {
		return "", fmt.Errorf("draw code: %w", err)
	}
	code := fmt.Sprintf("%06d", n.Int64())
	if err := s.store.Set(ctx, identity, code, s.ttl); err != nil {
		return "", fmt.Errorf("store code: %w", err)
	}
	return code, nil
}

// Validate reports whether candidate matches the live code for identity.
func (s *Service) Validate(ctx context.Context, identity, candidate string) (bool, error) {
	stored, ok, err := s.store.Get(ctx, identity)
	if err != nil {
		return false, fmt.Errorf("load code: %w", err)
	}
	if !ok || stored == "" {
		return false, nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1, nil
}

// Invalidate drops the code for identity.
func (s *Service) Invalidate(ctx context.Context, identity string) error {
	if err := s.store.Remove(ctx, identity); err != nil {
		return fmt.Errorf("remove code: %w", err)
	}
	return nil
}
