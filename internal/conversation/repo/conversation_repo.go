package repo

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-agents-go/internal/conversation/entity"
	"github.com/ovaphlow/pitchfork/service-agents-go/pkg/database"
)

// ConversationRepo stores conversations, their personas and turns.
type ConversationRepo struct {
	db *sqlx.DB
}

func NewConversationRepo(db *sqlx.DB) *ConversationRepo { return &ConversationRepo{db: db} }

// EnsureTable creates the personas, conversations and turns tables if they
// do not exist.
func (r *ConversationRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS personas (
  id VARCHAR(27) PRIMARY KEY,
  name VARCHAR(255) NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  created_by CHAR(36) NOT NULL,
  active BOOLEAN NOT NULL DEFAULT TRUE,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS conversations (
  id VARCHAR(27) PRIMARY KEY,
  name VARCHAR(255) NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  persona_id VARCHAR(27) NOT NULL REFERENCES personas(id),
  owner_id CHAR(36) NOT NULL,
  created_by CHAR(36) NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_conversations_owner ON conversations (owner_id, created_at DESC);
CREATE TABLE IF NOT EXISTS turns (
  id BIGINT PRIMARY KEY,
  conversation_id VARCHAR(27) NOT NULL REFERENCES conversations(id),
  content TEXT NOT NULL,
  is_human BOOLEAN NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_turns_conversation ON turns (conversation_id, created_at, id);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

// CreateWithPersona inserts the persona and the conversation referencing it
// in a single transaction.
func (r *ConversationRepo) CreateWithPersona(ctx context.Context, c *entity.Conversation, p *entity.Persona) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const qp = `INSERT INTO personas (id, name, description, created_by, active, created_at)
			VALUES (:id, :name, :description, :created_by, :active, :created_at)`
		if _, err := tx.NamedExecContext(ctx, qp, p); err != nil {
			return err
		}
		const qc = `INSERT INTO conversations (id, name, description, persona_id, owner_id, created_by, created_at)
			VALUES (:id, :name, :description, :persona_id, :owner_id, :created_by, :created_at)`
		_, err := tx.NamedExecContext(ctx, qc, c)
		return err
	})
}

// GetConversation returns the conversation or sql.ErrNoRows.
func (r *ConversationRepo) GetConversation(ctx context.Context, id string) (*entity.Conversation, error) {
	const q = `SELECT id, name, description, persona_id, owner_id, created_by, created_at
		FROM conversations WHERE id=$1`
	var c entity.Conversation
	if err := r.db.GetContext(ctx, &c, q, id); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListByOwner returns the owner's conversations, newest first. limit <= 0
// returns all of them.
func (r *ConversationRepo) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]entity.Conversation, error) {
	q := `SELECT id, name, description, persona_id, owner_id, created_by, created_at
		FROM conversations WHERE owner_id=$1 ORDER BY created_at DESC, id DESC`
	args := []any{ownerID}
	if limit > 0 {
		q += ` LIMIT $2 OFFSET $3`
		args = append(args, limit, offset)
	}
	out := []entity.Conversation{}
	if err := r.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, err
	}
	return out, nil
}

// InsertTurn commits a single turn.
func (r *ConversationRepo) InsertTurn(ctx context.Context, t *entity.Turn) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const q = `INSERT INTO turns (id, conversation_id, content, is_human, created_at)
			VALUES (:id, :conversation_id, :content, :is_human, :created_at)`
		_, err := tx.NamedExecContext(ctx, q, t)
		return err
	})
}

// ListTurns returns turns in creation order. limit <= 0 returns all of them.
func (r *ConversationRepo) ListTurns(ctx context.Context, conversationID string, limit, offset int) ([]entity.Turn, error) {
	q := `SELECT id, conversation_id, content, is_human, created_at
		FROM turns WHERE conversation_id=$1 ORDER BY created_at ASC, id ASC`
	args := []any{conversationID}
	if limit > 0 {
		q += ` LIMIT $2 OFFSET $3`
		args = append(args, limit, offset)
	}
	out := []entity.Turn{}
	if err := r.db.SelectContext(ctx, &out, q, args...); err != nil {
		return nil, err
	}
	return out, nil
}
