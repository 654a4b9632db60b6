// Package conversation owns conversations and drives a single message
// exchange with the completion service.
package conversation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-agents-go/internal/completion"
	"github.com/ovaphlow/pitchfork/service-agents-go/internal/conversation/entity"
	"github.com/ovaphlow/pitchfork/service-agents-go/pkg/apperror"
	"github.com/ovaphlow/pitchfork/service-agents-go/pkg/utilities"
)

const (
	DefaultConversationsPerPage = 10
	DefaultTurnsPerPage         = 25
)

// Store is satisfied by *repo.ConversationRepo. Lookups of a missing
// conversation return sql.ErrNoRows.
type Store interface {
	CreateWithPersona(ctx context.Context, c *entity.Conversation, p *entity.Persona) error
	GetConversation(ctx context.Context, id string) (*entity.Conversation, error)
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]entity.Conversation, error)
	InsertTurn(ctx context.Context, t *entity.Turn) error
	ListTurns(ctx context.Context, conversationID string, limit, offset int) ([]entity.Turn, error)
}

var (
	ErrConversationNotFound = apperror.New(apperror.KindConversationNotFound, "conversation not found")
	ErrContentRequired      = apperror.New(apperror.KindInvalidArgument, "content is required")
	ErrNameRequired         = apperror.New(apperror.KindInvalidArgument, "chat name is required")
	ErrPersonaNameRequired  = apperror.New(apperror.KindInvalidArgument, "bot name is required")
	ErrOwnerRequired        = apperror.New(apperror.KindInvalidArgument, "user id is required")
	ErrPageOutOfRange       = apperror.New(apperror.KindInvalidArgument, "page is out of range")
)

// Page selects a 1-based page. Zero values fall back to the defaults of the
// list being read.
type Page struct {
	Number       int
	ItemsPerPage int
}

// bounds converts the page to LIMIT/OFFSET. The offset is capped at
// math.MaxInt32.
func (p Page) bounds(defaultSize int) (limit, offset int, err error) {
	n, size := p.Number, p.ItemsPerPage
	if n < 1 {
		n = 1
	}
	if size < 1 {
		size = defaultSize
	}
	if n-1 > math.MaxInt32/size {
		return 0, 0, ErrPageOutOfRange
	}
	return size, (n - 1) * size, nil
}

type CreateInput struct {
	Name               string
	Description        string
	PersonaName        string
	PersonaDescription string
	OwnerID            string
}

type Option func(*Service)

func WithClock(c clockwork.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithTurnIDs replaces the generator of turn IDs. IDs must grow with time.
func WithTurnIDs(next func() int64) Option {
	return func(s *Service) { s.nextTurnID = next }
}

type Service struct {
	store      Store
	completer  completion.Completer
	logger     *zap.SugaredLogger
	clock      clockwork.Clock
	nextTurnID func() int64
	locks      *keyedMutex
}

func NewService(store Store, completer completion.Completer, logger *zap.SugaredLogger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	s := &Service{
		store:      store,
		completer:  completer,
		logger:     logger,
		clock:      clockwork.NewRealClock(),
		nextTurnID: utilities.NewSnowflakeID,
		locks:      newKeyedMutex(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// CreateWithPersona creates a conversation and its assistant persona
// together.
func (s *Service) CreateWithPersona(ctx context.Context, in CreateInput) (*entity.Conversation, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.PersonaName = strings.TrimSpace(in.PersonaName)
	in.OwnerID = strings.TrimSpace(in.OwnerID)
	switch {
	case in.Name == "":
		return nil, ErrNameRequired
	case in.PersonaName == "":
		return nil, ErrPersonaNameRequired
	case in.OwnerID == "":
		return nil, ErrOwnerRequired
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	p := &entity.Persona{
		ID:          utilities.NewKSUID(),
		Name:        in.PersonaName,
		Description: in.PersonaDescription,
		CreatedBy:   in.OwnerID,
		Active:      true,
		CreatedAt:   now,
	}
	c := &entity.Conversation{
		ID:          utilities.NewKSUID(),
		Name:        in.Name,
		Description: in.Description,
		PersonaID:   p.ID,
		OwnerID:     in.OwnerID,
		CreatedBy:   in.OwnerID,
		CreatedAt:   now,
	}
	if err := s.store.CreateWithPersona(ctx, c, p); err != nil {
		return nil, apperror.Wrap(apperror.KindUnexpected, "create conversation", err)
	}
	s.logger.Infow("conversation created", "conversation_id", c.ID, "owner_id", c.OwnerID)
	return c, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerID string, page Page) ([]entity.Conversation, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, ErrOwnerRequired
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit, offset, err := page.bounds(DefaultConversationsPerPage)
	if err != nil {
		return nil, err
	}
	out, err := s.store.ListByOwner(ctx, ownerID, limit, offset)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindUnexpected, "list conversations", err)
	}
	return out, nil
}

// ListTurns returns one page of a conversation's turns in creation order.
func (s *Service) ListTurns(ctx context.Context, conversationID string, page Page) ([]entity.Turn, error) {
	if _, err := s.conversation(ctx, conversationID); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit, offset, err := page.bounds(DefaultTurnsPerPage)
	if err != nil {
		return nil, err
	}
	out, err := s.store.ListTurns(ctx, conversationID, limit, offset)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindUnexpected, "list turns", err)
	}
	return out, nil
}

// SendTurn records the caller's message, asks the completion service for a
// reply and records that too. The inbound turn stays stored if the
// completion call fails. Calls for the same conversation run one at a time.
//
// Cancellation is honoured until the completion service answers; the reply
// is then stored regardless.
func (s *Service) SendTurn(ctx context.Context, conversationID, content string) (*entity.Turn, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrContentRequired
	}
	unlock, err := s.locks.Lock(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	conv, err := s.conversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	inbound := &entity.Turn{
		ID:             s.nextTurnID(),
		ConversationID: conv.ID,
		Content:        content,
		IsHuman:        true,
		CreatedAt:      s.clock.Now().UTC(),
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.store.InsertTurn(ctx, inbound); err != nil {
		return nil, apperror.Wrap(apperror.KindUnexpected, "store inbound turn", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	history, err := s.store.ListTurns(ctx, conv.ID, 0, 0)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindUnexpected, "load history", err)
	}
	messages := buildMessages(conv, history, inbound)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fragments, err := s.completer.Complete(ctx, messages)
	if err != nil {
		s.logger.Warnw("completion failed", "conversation_id", conv.ID, "turn_id", inbound.ID, "err", err)
		return nil, apperror.Wrap(apperror.KindExternalService, "completion", err)
	}

	outbound := &entity.Turn{
		ID:             s.nextTurnID(),
		ConversationID: conv.ID,
		Content:        completion.JoinFragments(fragments),
		IsHuman:        false,
		CreatedAt:      s.clock.Now().UTC(),
	}
	if err := s.store.InsertTurn(context.WithoutCancel(ctx), outbound); err != nil {
		return nil, apperror.Wrap(apperror.KindUnexpected, "store outbound turn", err)
	}
	s.logger.Debugw("turn completed",
		"conversation_id", conv.ID,
		"history", len(messages),
		"fragments", len(fragments),
	)
	return outbound, nil
}

func (s *Service) conversation(ctx context.Context, id string) (*entity.Conversation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c, err := s.store.GetConversation(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrConversationNotFound
		}
		return nil, apperror.Wrap(apperror.KindUnexpected, fmt.Sprintf("get conversation %s", id), err)
	}
	return c, nil
}

// buildMessages lays out the completion request: the priming description,
// prior turns oldest first, then the new content as the last user entry.
func buildMessages(conv *entity.Conversation, history []entity.Turn, inbound *entity.Turn) []completion.Message {
	out := make([]completion.Message, 0, len(history)+2)
	out = append(out, completion.Message{Role: completion.RoleSystem, Text: conv.Description})
	for _, t := range history {
		if t.ID == inbound.ID {
			continue
		}
		role := completion.RoleAssistant
		if t.IsHuman {
			role = completion.RoleUser
		}
		out = append(out, completion.Message{Role: role, Text: t.Content})
	}
	return append(out, completion.Message{Role: completion.RoleUser, Text: inbound.Content})
}
