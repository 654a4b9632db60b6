package repo

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/service-agents-go/internal/conversation/entity"
)

func newRepo(t *testing.T) (*ConversationRepo, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })
	return NewConversationRepo(sqlx.NewDb(raw, "postgres")), mock
}

var created = time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)

func TestEnsureTable(t *testing.T) {
	r, mock := newRepo(t)
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS personas`).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, r.EnsureTable(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithPersonaCommitsBoth(t *testing.T) {
	r, mock := newRepo(t)
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO personas`).
		WithArgs("p1", "Helper", "helps", "acc-1", true, created).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO conversations`).
		WithArgs("c1", "Chat", "You are a helper", "p1", "acc-1", "acc-1", created).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := r.CreateWithPersona(context.Background(),
		&entity.Conversation{ID: "c1", Name: "Chat", Description: "You are a helper", PersonaID: "p1", OwnerID: "acc-1", CreatedBy: "acc-1", CreatedAt: created},
		&entity.Persona{ID: "p1", Name: "Helper", Description: "helps", CreatedBy: "acc-1", Active: true, CreatedAt: created},
	)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithPersonaRollsBack(t *testing.T) {
	r, mock := newRepo(t)
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO personas`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO conversations`).WillReturnError(errors.New("fk violation"))
	mock.ExpectRollback()

	err := r.CreateWithPersona(context.Background(), &entity.Conversation{ID: "c1"}, &entity.Persona{ID: "p1"})
	assert.EqualError(t, err, "fk violation")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetConversationMissing(t *testing.T) {
	r, mock := newRepo(t)
	mock.ExpectQuery(`FROM conversations WHERE id=\$1`).WithArgs("nope").WillReturnError(sql.ErrNoRows)

	_, err := r.GetConversation(context.Background(), "nope")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestGetConversation(t *testing.T) {
	r, mock := newRepo(t)
	rows := sqlmock.NewRows([]string{"id", "name", "description", "persona_id", "owner_id", "created_by", "created_at"}).
		AddRow("c1", "Chat", "You are a helper", "p1", "acc-1", "acc-1", created)
	mock.ExpectQuery(`FROM conversations WHERE id=\$1`).WithArgs("c1").WillReturnRows(rows)

	c, err := r.GetConversation(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "You are a helper", c.Description)
	assert.Equal(t, "p1", c.PersonaID)
}

func TestInsertTurn(t *testing.T) {
	r, mock := newRepo(t)
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO turns`).
		WithArgs(int64(42), "c1", "Hello", true, created).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := r.InsertTurn(context.Background(), &entity.Turn{ID: 42, ConversationID: "c1", Content: "Hello", IsHuman: true, CreatedAt: created})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListTurnsOrdered(t *testing.T) {
	r, mock := newRepo(t)
	rows := sqlmock.NewRows([]string{"id", "conversation_id", "content", "is_human", "created_at"}).
		AddRow(int64(1), "c1", "Hello", true, created).
		AddRow(int64(2), "c1", "Hi there", false, created)
	mock.ExpectQuery(`FROM turns WHERE conversation_id=\$1 ORDER BY created_at ASC, id ASC$`).
		WithArgs("c1").WillReturnRows(rows)

	turns, err := r.ListTurns(context.Background(), "c1", 0, 0)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.True(t, turns[0].IsHuman)
	assert.Equal(t, "Hi there", turns[1].Content)
}

func TestListTurnsPaged(t *testing.T) {
	r, mock := newRepo(t)
	mock.ExpectQuery(`ORDER BY created_at ASC, id ASC LIMIT \$2 OFFSET \$3`).
		WithArgs("c1", 25, 25).
		WillReturnRows(sqlmock.NewRows([]string{"id", "conversation_id", "content", "is_human", "created_at"}))

	turns, err := r.ListTurns(context.Background(), "c1", 25, 25)
	require.NoError(t, err)
	assert.NotNil(t, turns)
	assert.Empty(t, turns)
}

func TestListByOwner(t *testing.T) {
	r, mock := newRepo(t)
	rows := sqlmock.NewRows([]string{"id", "name", "description", "persona_id", "owner_id", "created_by", "created_at"}).
		AddRow("c2", "Second", "", "p2", "acc-1", "acc-1", created.Add(time.Hour)).
		AddRow("c1", "First", "", "p1", "acc-1", "acc-1", created)
	mock.ExpectQuery(`FROM conversations WHERE owner_id=\$1 ORDER BY created_at DESC, id DESC LIMIT \$2 OFFSET \$3`).
		WithArgs("acc-1", 10, 0).WillReturnRows(rows)

	out, err := r.ListByOwner(context.Background(), "acc-1", 10, 0)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "c2", out[0].ID)
}
