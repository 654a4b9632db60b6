package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-agents-go/pkg/apperror"
	"github.com/ovaphlow/pitchfork/service-agents-go/pkg/utilities"
)

// Handler serves /chat and /message. Callers are authenticated and
// authorised by the gateway in front of the service; owner ids and chat ids
// are taken from the request as given.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.CreateChat)
	r.Get("/chat", h.ListChats)
	r.Post("/message", h.SendMessage)
	r.Get("/message", h.ListMessages)
}

type CreateChatRequest struct {
	ChatName        string `json:"chatName"`
	ChatDescription string `json:"chatDescription"`
	BotName         string `json:"botName"`
	BotDescription  string `json:"botDescription"`
	UserID          string `json:"userId"`
}

type SendMessageRequest struct {
	ChatID  string `json:"chatId"`
	Content string `json:"content"`
}

func (h *Handler) CreateChat(w http.ResponseWriter, r *http.Request) {
	var req CreateChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utilities.RespondError(w, http.StatusBadRequest, "Invalid payload", err.Error(), nil)
		return
	}
	c, err := h.svc.CreateWithPersona(r.Context(), CreateInput{
		Name:               req.ChatName,
		Description:        req.ChatDescription,
		PersonaName:        req.BotName,
		PersonaDescription: req.BotDescription,
		OwnerID:            req.UserID,
	})
	if err != nil {
		h.fail(w, "Server Error creating Chat", err)
		return
	}
	utilities.RespondOK(w, http.StatusCreated, "Chat created", c)
}

func (h *Handler) ListChats(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		utilities.RespondError(w, http.StatusBadRequest, "Invalid query", err.Error(), nil)
		return
	}
	out, err := h.svc.ListByOwner(r.Context(), r.URL.Query().Get("userId"), page)
	if err != nil {
		h.fail(w, "Server Error listing Chats", err)
		return
	}
	utilities.RespondOK(w, http.StatusOK, "Chats found", out)
}

func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utilities.RespondError(w, http.StatusBadRequest, "Invalid payload", err.Error(), nil)
		return
	}
	turn, err := h.svc.SendTurn(r.Context(), req.ChatID, req.Content)
	if err != nil {
		h.fail(w, "Server Error sending Message", err)
		return
	}
	utilities.RespondOK(w, http.StatusCreated, "Message created", turn)
}

func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		utilities.RespondError(w, http.StatusBadRequest, "Invalid query", err.Error(), nil)
		return
	}
	out, err := h.svc.ListTurns(r.Context(), r.URL.Query().Get("chatId"), page)
	if err != nil {
		h.fail(w, "Server Error listing Messages", err)
		return
	}
	utilities.RespondOK(w, http.StatusOK, "Messages found", out)
}

func (h *Handler) fail(w http.ResponseWriter, serverMsg string, err error) {
	switch {
	case errors.Is(err, ErrConversationNotFound):
		utilities.RespondError(w, http.StatusNotFound, "Chat not exists", err.Error(), nil)
	case apperror.KindOf(err) == apperror.KindInvalidArgument:
		utilities.RespondError(w, http.StatusBadRequest, "Invalid payload", err.Error(), nil)
	case apperror.KindOf(err) == apperror.KindExternalService:
		h.logger.Warnw("completion service failed", "err", err)
		utilities.RespondError(w, http.StatusBadGateway, "Completion service failed", "upstream error", nil)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		h.logger.Debugw("request cancelled", "err", err)
		utilities.RespondError(w, http.StatusRequestTimeout, "Request cancelled", err.Error(), nil)
	default:
		h.logger.Warnw("conversation request failed", "err", err)
		utilities.RespondError(w, http.StatusInternalServerError, serverMsg, "internal error", nil)
	}
}

func pageFromQuery(r *http.Request) (Page, error) {
	var p Page
	q := r.URL.Query()
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return p, err
		}
		p.Number = n
	}
	if v := q.Get("itemsPerPage"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return p, err
		}
		p.ItemsPerPage = n
	}
	return p, nil
}
