// Package session implements the two-phase login: a one-time code is mailed
// to a known account, and the code is later exchanged for a bearer token.
package session

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-agents-go/internal/account"
	"github.com/ovaphlow/pitchfork/service-agents-go/internal/account/entity"
	"github.com/ovaphlow/pitchfork/service-agents-go/internal/notify"
	"github.com/ovaphlow/pitchfork/service-agents-go/pkg/apperror"
)

const (
	ChallengeSubject    = "HCAgents - OTP Code"
	challengeBodyFormat = "Your OTP code is: %s"
)

type AccountFinder interface {
	GetByEmail(ctx context.Context, email string) (*entity.Account, error)
}

// Challenger is satisfied by *otp.Service.
type Challenger interface {
	Issue(ctx context.Context, identity string) (string, error)
	Validate(ctx context.Context, identity, candidate string) (bool, error)
	Invalidate(ctx context.Context, identity string) error
}

// Minter is satisfied by *token.Issuer.
type Minter interface {
	Mint(subject, email string) (string, error)
}

var ErrInvalidChallenge = apperror.New(apperror.KindInvalidChallenge, "otp code is invalid")

type Service struct {
	accounts AccountFinder
	codes    Challenger
	tokens   Minter
	notifier notify.Notifier
	logger   *zap.SugaredLogger
}

func NewService(accounts AccountFinder, codes Challenger, tokens Minter, notifier notify.Notifier, logger *zap.SugaredLogger) *Service {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Service{accounts: accounts, codes: codes, tokens: tokens, notifier: notifier, logger: logger}
}

// RequestChallenge issues a code for a registered identity and mails it.
// Errors carry their kind; callers facing the public decide how much of it
// to reveal.
func (s *Service) RequestChallenge(ctx context.Context, identity string) error {
	identity = account.NormalizeEmail(identity)
	a, err := s.lookup(ctx, identity)
	if err != nil {
		return err
	}
	code, err := s.codes.Issue(ctx, identity)
	if err != nil {
		return apperror.Wrap(apperror.KindUnexpected, "issue otp", err)
	}
	if err := s.notifier.Send(ctx, a.Email, ChallengeSubject, fmt.Sprintf(challengeBodyFormat, code)); err != nil {
		return apperror.Wrap(apperror.KindExternalService, "deliver otp", err)
	}
	s.logger.Debugw("otp issued", "account_id", a.ID)
	return nil
}

// RedeemChallenge exchanges a live code for a session token. A wrong code
// leaves the stored code in place; a correct one is consumed.
func (s *Service) RedeemChallenge(ctx context.Context, identity, code string) (*Result, error) {
	identity = account.NormalizeEmail(identity)
	a, err := s.lookup(ctx, identity)
	if err != nil {
		return nil, err
	}
	ok, err := s.codes.Validate(ctx, identity, code)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindUnexpected, "validate otp", err)
	}
	if !ok {
		return nil, ErrInvalidChallenge
	}
	if err := s.codes.Invalidate(ctx, identity); err != nil {
		return nil, apperror.Wrap(apperror.KindUnexpected, "invalidate otp", err)
	}
	tok, err := s.tokens.Mint(a.ID, a.Email)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindUnexpected, "mint token", err)
	}
	s.logger.Infow("session issued", "account_id", a.ID)
	return &Result{AccountID: a.ID, Account: a.Project(), AccessToken: tok}, nil
}

func (s *Service) lookup(ctx context.Context, identity string) (*entity.Account, error) {
	a, err := s.accounts.GetByEmail(ctx, identity)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			return nil, account.ErrAccountNotFound
		}
		return nil, apperror.Wrap(apperror.KindUnexpected, "lookup account", err)
	}
	return a, nil
}
