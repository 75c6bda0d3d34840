package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/aurora-chat/aurora/internal/api/recovery"
	"github.com/aurora-chat/aurora/internal/auth"
	"github.com/aurora-chat/aurora/internal/services"
)

// NewRouter wires every HTTP route. The websocket endpoint is mounted
// separately by the caller since it carries its own auth handshake.
func NewRouter(a auth.Authenticator, users *services.UserService, chats *services.ChatService, wsHandler http.Handler) *mux.Router {
	router := mux.NewRouter()

	router.Use(recovery.Middleware)

	userHandler := NewUserHandler(users)
	chatHandler := NewChatHandler(chats)
	healthHandler := NewHealthHandler()

	router.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")

	// Signup is the only unauthenticated API route.
	router.HandleFunc("/api/users", userHandler.CreateUser).Methods("POST")

	authed := router.PathPrefix("/api").Subrouter()
	authed.Use(AuthMiddleware(a))
	authed.HandleFunc("/users/me", userHandler.GetUser).Methods("GET")
	authed.HandleFunc("/chats", chatHandler.CreateChat).Methods("POST")
	authed.HandleFunc("/chats", chatHandler.ListChats).Methods("GET")
	authed.HandleFunc("/chats/empty", chatHandler.FirstEmptyChat).Methods("GET")
	authed.HandleFunc("/chats/{chatId}", chatHandler.GetChat).Methods("GET")
	authed.HandleFunc("/chats/{chatId}/title", chatHandler.RenameChat).Methods("PUT")
	authed.HandleFunc("/chats/{chatId}/messages", chatHandler.ListMessages).Methods("GET")

	if wsHandler != nil {
		router.Handle("/ws", wsHandler)
	}

	return router
}
