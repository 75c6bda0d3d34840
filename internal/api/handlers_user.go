package api

import (
	"encoding/json"
	"errors"
	"net/http"

	respond "github.com/aurora-chat/aurora/internal/api/respond"
	"github.com/aurora-chat/aurora/internal/api/validate"
	"github.com/aurora-chat/aurora/internal/model"
	"github.com/aurora-chat/aurora/internal/services"
)

// UserHandler is a thin HTTP transport over UserService.
type UserHandler struct {
	svc *services.UserService
}

func NewUserHandler(svc *services.UserService) *UserHandler { return &UserHandler{svc: svc} }

// CreateUser POST /api/users
// Returns the user plus its bearer token. The token is shown exactly once.
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string  `json:"email"`
		DisplayName *string `json:"displayName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := validate.Email(req.Email); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	out, err := h.svc.CreateUser(r.Context(), req.Email, req.DisplayName)
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// GetUser GET /api/users/me
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		respond.WriteUnauthorized(w, "Not authenticated")
		return
	}
	u, err := h.svc.GetUser(r.Context(), id.UserID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			respond.WriteNotFound(w, "User not found")
			return
		}
		respond.WriteInternalError(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, u)
}
