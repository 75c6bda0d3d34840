package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	respond "github.com/aurora-chat/aurora/internal/api/respond"
	"github.com/aurora-chat/aurora/internal/api/validate"
	"github.com/aurora-chat/aurora/internal/model"
	"github.com/aurora-chat/aurora/internal/services"
)

// ChatHandler is a thin HTTP transport over ChatService. All routes require
// an authenticated identity; lookups outside the caller's chats return 404.
type ChatHandler struct {
	svc *services.ChatService
}

func NewChatHandler(svc *services.ChatService) *ChatHandler { return &ChatHandler{svc: svc} }

// CreateChat POST /api/chats
func (h *ChatHandler) CreateChat(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		respond.WriteUnauthorized(w, "Not authenticated")
		return
	}
	var req struct {
		Title *string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if req.Title != nil {
		if err := validate.ChatTitle(*req.Title); err != nil {
			respond.WriteBadRequest(w, err.Error())
			return
		}
	}
	c, err := h.svc.CreateChat(r.Context(), id.UserID, req.Title)
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusCreated, c)
}

// ListChats GET /api/chats
func (h *ChatHandler) ListChats(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		respond.WriteUnauthorized(w, "Not authenticated")
		return
	}
	chats, err := h.svc.ListChats(r.Context(), id.UserID)
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"chats": chats, "count": len(chats)})
}

// GetChat GET /api/chats/{chatId}
func (h *ChatHandler) GetChat(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		respond.WriteUnauthorized(w, "Not authenticated")
		return
	}
	c, err := h.svc.GetChat(r.Context(), id.UserID, mux.Vars(r)["chatId"])
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			respond.WriteNotFound(w, "Chat not found")
			return
		}
		respond.WriteInternalError(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, c)
}

// FirstEmptyChat GET /api/chats/empty
// Returns the newest chat with no messages, or 404 when every chat has some.
func (h *ChatHandler) FirstEmptyChat(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		respond.WriteUnauthorized(w, "Not authenticated")
		return
	}
	c, err := h.svc.FirstEmptyChat(r.Context(), id.UserID)
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}
	if c == nil {
		respond.WriteNotFound(w, "No empty chat")
		return
	}
	respond.WriteJSON(w, http.StatusOK, c)
}

// RenameChat PUT /api/chats/{chatId}/title
func (h *ChatHandler) RenameChat(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		respond.WriteUnauthorized(w, "Not authenticated")
		return
	}
	var req struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := validate.ChatTitle(req.Title); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	c, err := h.svc.RenameChat(r.Context(), id.UserID, mux.Vars(r)["chatId"], req.Title)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			respond.WriteNotFound(w, "Chat not found")
			return
		}
		respond.WriteInternalError(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, c)
}

// ListMessages GET /api/chats/{chatId}/messages
func (h *ChatHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		respond.WriteUnauthorized(w, "Not authenticated")
		return
	}
	msgs, err := h.svc.ListMessages(r.Context(), id.UserID, mux.Vars(r)["chatId"])
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			respond.WriteNotFound(w, "Chat not found")
			return
		}
		respond.WriteInternalError(w, err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"messages": msgs, "count": len(msgs)})
}
