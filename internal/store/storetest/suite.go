package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/aurora-chat/aurora/internal/model"
	"github.com/aurora-chat/aurora/internal/store"
)

// Run exercises a compliance suite against a store.Store implementation.
// Implementations should provide a clean, isolated store and return it from makeStore.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()

	// Unique test identifiers
	userID := "u-" + uuid.New().String()
	email := userID + "@example.test"

	// Users
	u := &model.User{UserID: userID, Email: email, CredentialHash: "hash-" + userID}
	created, err := s.Users().Create(ctx, u)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if created.DailyMessageLimit <= 0 {
		t.Fatalf("CreateUser: expected default daily limit, got %d", created.DailyMessageLimit)
	}
	if got, err := s.Users().Get(ctx, userID); err != nil || got == nil || got.UserID != userID {
		t.Fatalf("GetUser: got=%v err=%v", got, err)
	}
	if got, err := s.Users().GetByCredentialHash(ctx, "hash-"+userID); err != nil || got == nil || got.UserID != userID {
		t.Fatalf("GetUserByCredentialHash: got=%v err=%v", got, err)
	}
	if _, err := s.Users().Get(ctx, "u-missing"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetUser missing: want ErrNotFound, got %v", err)
	}

	// Quota: fresh user starts at zero and is allowed
	w, err := s.Users().CheckAndResetQuota(ctx, userID, 24*time.Hour)
	if err != nil {
		t.Fatalf("CheckAndResetQuota: %v", err)
	}
	if !w.Allowed || w.Count != 0 {
		t.Fatalf("fresh quota: allowed=%v count=%d", w.Allowed, w.Count)
	}
	if n, err := s.Users().IncrementQuota(ctx, userID); err != nil || n != 1 {
		t.Fatalf("IncrementQuota: n=%d err=%v", n, err)
	}
	if n, err := s.Users().IncrementQuota(ctx, userID); err != nil || n != 2 {
		t.Fatalf("IncrementQuota second: n=%d err=%v", n, err)
	}
	if err := s.Users().DecrementQuota(ctx, userID); err != nil {
		t.Fatalf("DecrementQuota: %v", err)
	}
	if w, err = s.Users().CheckAndResetQuota(ctx, userID, 24*time.Hour); err != nil || w.Count != 1 {
		t.Fatalf("quota after inc/inc/dec: count=%d err=%v", w.Count, err)
	}
	// A zero-length window means the reset condition always matches.
	if w, err = s.Users().CheckAndResetQuota(ctx, userID, 0); err != nil || w.Count != 0 {
		t.Fatalf("quota after forced reset: count=%d err=%v", w.Count, err)
	}
	// Decrement never goes below zero.
	if err := s.Users().DecrementQuota(ctx, userID); err != nil {
		t.Fatalf("DecrementQuota at zero: %v", err)
	}
	if w, err = s.Users().CheckAndResetQuota(ctx, userID, 24*time.Hour); err != nil || w.Count != 0 {
		t.Fatalf("quota floor: count=%d err=%v", w.Count, err)
	}
	if _, err := s.Users().IncrementQuota(ctx, "u-missing"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("IncrementQuota missing: want ErrNotFound, got %v", err)
	}

	// Chats
	title := "test-chat"
	c, err := s.Chats().Create(ctx, &model.Chat{UserID: userID, Title: &title})
	if err != nil {
		t.Fatalf("CreateChat: %v", err)
	}
	if c.ChatID == "" {
		t.Fatalf("CreateChat: empty chat id")
	}
	if got, err := s.Chats().GetByID(ctx, userID, c.ChatID); err != nil || got == nil || got.Title == nil || *got.Title != title {
		t.Fatalf("GetChat: got=%v err=%v", got, err)
	}
	// Ownership scoping: another user cannot see the chat.
	if _, err := s.Chats().GetByID(ctx, "u-other", c.ChatID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetChat wrong owner: want ErrNotFound, got %v", err)
	}
	if lst, err := s.Chats().List(ctx, userID); err != nil || len(lst) == 0 {
		t.Fatalf("ListChats: n=%d err=%v", len(lst), err)
	}
	if got, err := s.Chats().UpdateTitle(ctx, userID, c.ChatID, "renamed"); err != nil || got.Title == nil || *got.Title != "renamed" {
		t.Fatalf("UpdateTitle: got=%v err=%v", got, err)
	}
	if _, err := s.Chats().UpdateTitle(ctx, userID, "c-missing", "x"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("UpdateTitle missing: want ErrNotFound, got %v", err)
	}

	// The chat has no messages yet, so it is findable as empty.
	if empty, err := s.Chats().FirstEmpty(ctx, userID); err != nil || empty == nil || empty.ChatID != c.ChatID {
		t.Fatalf("FirstEmpty: got=%v err=%v", empty, err)
	}

	// Messages
	m1, err := s.Messages().Create(ctx, &model.Message{ChatID: c.ChatID, UserID: userID, Role: model.RoleUser, Content: "hello"})
	if err != nil {
		t.Fatalf("CreateMessage m1: %v", err)
	}
	time.Sleep(5 * time.Millisecond) // ensure monotonic creation time ordering
	m2, err := s.Messages().Create(ctx, &model.Message{ChatID: c.ChatID, UserID: userID, Role: model.RoleModel, Content: "hi there"})
	if err != nil {
		t.Fatalf("CreateMessage m2: %v", err)
	}

	// The chat now has messages, so it is no longer empty.
	if empty, err := s.Chats().FirstEmpty(ctx, userID); err != nil || empty != nil {
		t.Fatalf("FirstEmpty after messages: got=%v err=%v", empty, err)
	}

	if lst, err := s.Messages().ListAsc(ctx, c.ChatID); err != nil || len(lst) != 2 || lst[0].MessageID != m1.MessageID {
		t.Fatalf("ListAsc: n=%d err=%v", len(lst), err)
	}
	if lst, err := s.Messages().ListRecent(ctx, c.ChatID, 1); err != nil || len(lst) != 1 || lst[0].MessageID != m2.MessageID {
		t.Fatalf("ListRecent limit 1: n=%d err=%v", len(lst), err)
	}
	if n, err := s.Messages().CountByChat(ctx, c.ChatID); err != nil || n != 2 {
		t.Fatalf("CountByChat: n=%d err=%v", n, err)
	}

	// Delete is owner-scoped
	if err := s.Messages().Delete(ctx, "u-other", m2.MessageID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("DeleteMessage wrong owner: want ErrNotFound, got %v", err)
	}
	if err := s.Messages().Delete(ctx, userID, m2.MessageID); err != nil {
		t.Fatalf("DeleteMessage: %v", err)
	}
	if n, err := s.Messages().CountByChat(ctx, c.ChatID); err != nil || n != 1 {
		t.Fatalf("CountByChat after delete: n=%d err=%v", n, err)
	}

	// TouchActivity bumps last_activity
	before, _ := s.Chats().GetByID(ctx, userID, c.ChatID)
	time.Sleep(5 * time.Millisecond)
	if err := s.Chats().TouchActivity(ctx, c.ChatID); err != nil {
		t.Fatalf("TouchActivity: %v", err)
	}
	after, _ := s.Chats().GetByID(ctx, userID, c.ChatID)
	if !after.LastActivity.After(before.LastActivity) {
		t.Fatalf("TouchActivity: last_activity not advanced")
	}
}
