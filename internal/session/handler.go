package session

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-agents-go/internal/account"
	"github.com/ovaphlow/pitchfork/service-agents-go/pkg/apperror"
	"github.com/ovaphlow/pitchfork/service-agents-go/pkg/utilities"
)

type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session/create", h.Create)
	r.Post("/session/validate", h.Validate)
}

type CreateRequest struct {
	Email string `json:"email"`
}

type ValidateRequest struct {
	Email string `json:"email"`
	Otp   string `json:"otp"`
}

// Create requests a challenge. Every failure produces the same response so
// the endpoint does not reveal whether an account exists.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid session create payload", "err", err)
		utilities.RespondError(w, http.StatusBadRequest, "Otp not created", "", false)
		return
	}
	if err := h.svc.RequestChallenge(r.Context(), req.Email); err != nil {
		h.logger.Infow("otp request failed", "kind", apperror.KindOf(err), "err", err)
		utilities.RespondError(w, http.StatusBadRequest, "Otp not created", "", false)
		return
	}
	utilities.RespondOK(w, http.StatusCreated, "Otp created", true)
}

func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid session validate payload", "err", err)
		utilities.RespondError(w, http.StatusBadRequest, "Invalid payload", err.Error(), nil)
		return
	}
	res, err := h.svc.RedeemChallenge(r.Context(), req.Email, req.Otp)
	if err != nil {
		switch {
		case errors.Is(err, account.ErrAccountNotFound):
			utilities.RespondError(w, http.StatusNotFound, "User not exists", err.Error(), nil)
		case errors.Is(err, ErrInvalidChallenge):
			utilities.RespondError(w, http.StatusBadRequest, "Otp code is invalid", err.Error(), nil)
		default:
			h.logger.Warnw("session validate failed", "err", err)
			utilities.RespondError(w, http.StatusInternalServerError, "Server Error validate session", "internal error", nil)
		}
		return
	}
	utilities.RespondOK(w, http.StatusCreated, "Session validated", res)
}
