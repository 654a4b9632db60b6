package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ovaphlow/pitchfork/service-agents-go/internal/account/entity"
	accountrepo "github.com/ovaphlow/pitchfork/service-agents-go/internal/account/repo"
	"github.com/ovaphlow/pitchfork/service-agents-go/pkg/apperror"
	"github.com/ovaphlow/pitchfork/service-agents-go/pkg/utilities"
)

// SecretHasher hashes the per-account secret before it is stored.
type SecretHasher interface {
	Hash(secret string) (string, error)
}

// BcryptHasher implementation.
type BcryptHasher struct{ Cost int }

func (b BcryptHasher) Hash(secret string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Store is the persistence the service needs; *repo.AccountRepo satisfies it.
type Store interface {
	Create(ctx context.Context, a *entity.Account) error
	GetByEmail(ctx context.Context, email string) (*entity.Account, error)
}

var (
	ErrAccountNotFound      = apperror.New(apperror.KindAccountNotFound, "account not found")
	ErrAccountAlreadyExists = apperror.New(apperror.KindAccountAlreadyExists, "account already exists")
	ErrNameRequired         = apperror.New(apperror.KindInvalidArgument, "name is required")
	ErrEmailRequired        = apperror.New(apperror.KindInvalidArgument, "email is required")
)

// Service handles registration and lookup of accounts.
type Service struct {
	store  Store
	hasher SecretHasher
	logger *zap.SugaredLogger
	now    func() time.Time
}

func NewService(store Store, hasher SecretHasher, logger *zap.SugaredLogger) *Service {
	if hasher == nil {
		hasher = BcryptHasher{}
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Service{store: store, hasher: hasher, logger: logger, now: time.Now}
}

// NormalizeEmail is the canonical form used for storage, lookup and
// challenge keys.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account with a freshly generated secret.
func (s *Service) Register(ctx context.Context, name, email string) (*entity.Account, error) {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)
	if name == "" {
		return nil, ErrNameRequired
	}
	if email == "" {
		return nil, ErrEmailRequired
	}

	if _, err := s.GetByEmail(ctx, email); err == nil {
		return nil, ErrAccountAlreadyExists
	} else if !errors.Is(err, ErrAccountNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(utilities.NewUUID())
	if err != nil {
		return nil, apperror.Wrap(apperror.KindUnexpected, "hash secret", err)
	}
	a := &entity.Account{
		ID:         utilities.NewUUID(),
		Name:       name,
		Email:      email,
		SecretHash: &hash,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.store.Create(ctx, a); err != nil {
		if errors.Is(err, accountrepo.ErrDuplicateEmail) {
			return nil, ErrAccountAlreadyExists
		}
		return nil, fmt.Errorf("create account: %w", err)
	}
	s.logger.Infow("account registered", "account_id", a.ID)
	return a, nil
}

// GetByEmail returns the stored account, or ErrAccountNotFound.
func (s *Service) GetByEmail(ctx context.Context, email string) (*entity.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a, err := s.store.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}
