package entity

import "time"

// Conversation is a row in the `conversations` table. Description is sent
// to the completion service as priming context ahead of the history.
type Conversation struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	PersonaID   string    `db:"persona_id" json:"botId"`
	OwnerID     string    `db:"owner_id" json:"userId"`
	CreatedBy   string    `db:"created_by" json:"createdBy"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// Persona is the assistant linked to a conversation.
type Persona struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	CreatedBy   string    `db:"created_by" json:"createdBy"`
	Active      bool      `db:"active" json:"active"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// Turn is one message. IDs are time-ordered and break ties between turns
// sharing a timestamp.
type Turn struct {
	ID             int64     `db:"id" json:"id,string"`
	ConversationID string    `db:"conversation_id" json:"chatId"`
	Content        string    `db:"content" json:"content"`
	IsHuman        bool      `db:"is_human" json:"isUserMessage"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
}
