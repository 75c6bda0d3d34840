package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aurora-chat/aurora/internal/api"
	"github.com/aurora-chat/aurora/internal/auth"
	"github.com/aurora-chat/aurora/internal/model"
	"github.com/aurora-chat/aurora/internal/services"
	"github.com/aurora-chat/aurora/internal/store"
	"github.com/aurora-chat/aurora/internal/store/sqlite"
)

func newTestAPI(t *testing.T) (*httptest.Server, store.Store) {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlite.EnsureSchema(db))
	st := sqlite.NewWithDB(db)

	users := services.NewUserService(st, 20)
	chats := services.NewChatService(st)
	router := api.NewRouter(auth.NewTokenAuthenticator(st.Users()), users, chats, nil)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, st
}

func doJSON(t *testing.T, method, url, token string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func createUser(t *testing.T, srv *httptest.Server, email string) (userID, token string) {
	t.Helper()
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/users", "", map[string]string{"email": email})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var out struct {
		User  model.User `json:"user"`
		Token string     `json:"token"`
	}
	decode(t, resp, &out)
	require.NotEmpty(t, out.Token)
	return out.User.UserID, out.Token
}

func TestAPI_CreateAndGetUser(t *testing.T) {
	srv, _ := newTestAPI(t)
	userID, token := createUser(t, srv, "ada@example.com")

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var u model.User
	decode(t, resp, &u)
	require.Equal(t, userID, u.UserID)
	require.Equal(t, "ada@example.com", u.Email)
	require.Equal(t, 20, u.DailyMessageLimit)
}

func TestAPI_CreateUserRejectsBadEmail(t *testing.T) {
	srv, _ := newTestAPI(t)
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/users", "", map[string]string{"email": "not-an-email"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_AuthRequired(t *testing.T) {
	srv, _ := newTestAPI(t)
	for _, tok := range []string{"", "sk_bogus"} {
		resp := doJSON(t, http.MethodGet, srv.URL+"/api/chats", tok, nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		resp.Body.Close()
	}
}

func TestAPI_ChatLifecycle(t *testing.T) {
	srv, _ := newTestAPI(t)
	_, token := createUser(t, srv, "ada@example.com")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/chats", token, map[string]string{})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var chat model.Chat
	decode(t, resp, &chat)
	require.NotEmpty(t, chat.ChatID)

	// the fresh chat has no messages yet
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/chats/empty", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var empty model.Chat
	decode(t, resp, &empty)
	require.Equal(t, chat.ChatID, empty.ChatID)

	resp = doJSON(t, http.MethodPut, srv.URL+"/api/chats/"+chat.ChatID+"/title", token, map[string]string{"title": "Trip planning"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var renamed model.Chat
	decode(t, resp, &renamed)
	require.NotNil(t, renamed.Title)
	require.Equal(t, "Trip planning", *renamed.Title)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/chats", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list struct {
		Chats []model.Chat `json:"chats"`
		Count int          `json:"count"`
	}
	decode(t, resp, &list)
	require.Equal(t, 1, list.Count)

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/chats/"+chat.ChatID+"/messages", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var msgs struct {
		Messages []model.Message `json:"messages"`
		Count    int             `json:"count"`
	}
	decode(t, resp, &msgs)
	require.Zero(t, msgs.Count)
}

func TestAPI_RenameRejectsEmptyTitle(t *testing.T) {
	srv, _ := newTestAPI(t)
	_, token := createUser(t, srv, "ada@example.com")
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/chats", token, map[string]string{})
	var chat model.Chat
	decode(t, resp, &chat)

	resp = doJSON(t, http.MethodPut, srv.URL+"/api/chats/"+chat.ChatID+"/title", token, map[string]string{"title": ""})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_ForeignChatLooksMissing(t *testing.T) {
	srv, _ := newTestAPI(t)
	_, ownerToken := createUser(t, srv, "ada@example.com")
	_, otherToken := createUser(t, srv, "eve@example.com")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/chats", ownerToken, map[string]string{})
	var chat model.Chat
	decode(t, resp, &chat)

	for _, probe := range []struct{ method, path string }{
		{http.MethodGet, fmt.Sprintf("/api/chats/%s", chat.ChatID)},
		{http.MethodGet, fmt.Sprintf("/api/chats/%s/messages", chat.ChatID)},
	} {
		resp := doJSON(t, probe.method, srv.URL+probe.path, otherToken, nil)
		require.Equal(t, http.StatusNotFound, resp.StatusCode, probe.path)
		resp.Body.Close()
	}
}

func TestAPI_HealthEndpoint(t *testing.T) {
	srv, _ := newTestAPI(t)
	resp, err := http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	var body map[string]interface{}
	decode(t, resp, &body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "status")
}
