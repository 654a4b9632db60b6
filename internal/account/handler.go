package account

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-agents-go/pkg/apperror"
	"github.com/ovaphlow/pitchfork/service-agents-go/pkg/utilities"
)

// Handler exposes HTTP endpoints for account registration.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/user", h.Register)
}

// RegisterRequest request body for the registration endpoint.
type RegisterRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid register payload", "err", err)
		utilities.RespondError(w, http.StatusBadRequest, "Invalid payload", err.Error(), nil)
		return
	}
	a, err := h.svc.Register(r.Context(), req.Name, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, ErrAccountAlreadyExists):
			utilities.RespondError(w, http.StatusConflict, "User already exists", err.Error(), nil)
		case apperror.KindOf(err) == apperror.KindInvalidArgument:
			utilities.RespondError(w, http.StatusBadRequest, "Invalid payload", err.Error(), nil)
		default:
			h.logger.Warnw("register failed", "err", err)
			utilities.RespondError(w, http.StatusInternalServerError, "Server Error creating User", "internal error", nil)
		}
		return
	}
	utilities.RespondOK(w, http.StatusCreated, "User created", a.Project())
}
