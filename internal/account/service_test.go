package account

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ovaphlow/pitchfork/service-agents-go/internal/account/entity"
	accountrepo "github.com/ovaphlow/pitchfork/service-agents-go/internal/account/repo"
)

type mockStore struct{ mock.Mock }

func (m *mockStore) Create(ctx context.Context, a *entity.Account) error {
	return m.Called(ctx, a).Error(0)
}

func (m *mockStore) GetByEmail(ctx context.Context, email string) (*entity.Account, error) {
	args := m.Called(ctx, email)
	a, _ := args.Get(0).(*entity.Account)
	return a, args.Error(1)
}

func TestRegister(t *testing.T) {
	store := new(mockStore)
	store.On("GetByEmail", mock.Anything, "u@x.com").Return(nil, sql.ErrNoRows)
	store.On("Create", mock.Anything, mock.MatchedBy(func(a *entity.Account) bool {
		return a.Email == "u@x.com" && a.Name == "User" && a.SecretHash != nil && *a.SecretHash != ""
	})).Return(nil)

	svc := NewService(store, BcryptHasher{Cost: bcrypt.MinCost}, nil)
	a, err := svc.Register(context.Background(), " User ", "  U@X.com ")
	require.NoError(t, err)

	assert.NotEmpty(t, a.ID)
	assert.Equal(t, "u@x.com", a.Email)
	assert.False(t, a.CreatedAt.IsZero())
	store.AssertExpectations(t)
}

func TestRegisterRejectsExistingEmail(t *testing.T) {
	store := new(mockStore)
	store.On("GetByEmail", mock.Anything, "u@x.com").Return(&entity.Account{ID: "1", Email: "u@x.com"}, nil)

	svc := NewService(store, BcryptHasher{Cost: bcrypt.MinCost}, nil)
	_, err := svc.Register(context.Background(), "User", "u@x.com")

	assert.ErrorIs(t, err, ErrAccountAlreadyExists)
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegisterMapsDuplicateInsert(t *testing.T) {
	store := new(mockStore)
	store.On("GetByEmail", mock.Anything, "u@x.com").Return(nil, sql.ErrNoRows)
	store.On("Create", mock.Anything, mock.Anything).Return(accountrepo.ErrDuplicateEmail)

	svc := NewService(store, BcryptHasher{Cost: bcrypt.MinCost}, nil)
	_, err := svc.Register(context.Background(), "User", "u@x.com")

	assert.ErrorIs(t, err, ErrAccountAlreadyExists)
}

func TestRegisterValidatesInput(t *testing.T) {
	svc := NewService(new(mockStore), nil, nil)

	_, err := svc.Register(context.Background(), "", "u@x.com")
	assert.ErrorIs(t, err, ErrNameRequired)
	_, err = svc.Register(context.Background(), "User", "   ")
	assert.ErrorIs(t, err, ErrEmailRequired)
}

func TestGetByEmail(t *testing.T) {
	store := new(mockStore)
	store.On("GetByEmail", mock.Anything, "ghost@x.com").Return(nil, sql.ErrNoRows)
	store.On("GetByEmail", mock.Anything, "down@x.com").Return(nil, errors.New("connection reset"))

	svc := NewService(store, nil, nil)

	_, err := svc.GetByEmail(context.Background(), "Ghost@x.com")
	assert.ErrorIs(t, err, ErrAccountNotFound)

	_, err = svc.GetByEmail(context.Background(), "down@x.com")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAccountNotFound)
}

func TestProjectionOmitsSecret(t *testing.T) {
	secret := "$2a$04$abcdefghijklmnopqrstuv"
	a := entity.Account{ID: "1", Name: "User", Email: "u@x.com", SecretHash: &secret}

	p := a.Project()
	assert.Equal(t, entity.Projection{ID: "1", Name: "User", Email: "u@x.com"}, p)
}
