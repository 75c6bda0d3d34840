package model

import "time"

// Message roles. RoleModel matches what the completion provider expects for
// assistant turns.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// User represents an account in the system. Quota fields are mutated only
// through the store's atomic quota operations.
type User struct {
	UserID            string    `json:"userId"`
	Email             string    `json:"email"`
	DisplayName       *string   `json:"displayName,omitempty"`
	CredentialHash    string    `json:"-"`
	DailyMessageCount int       `json:"dailyMessageCount"`
	DailyMessageLimit int       `json:"dailyMessageLimit"`
	LastMessageReset  time.Time `json:"lastMessageReset"`
	CreationTime      time.Time `json:"creationTime"`
}

// Chat groups messages under a user.
type Chat struct {
	ChatID       string    `json:"chatId"`
	UserID       string    `json:"userId"`
	Title        *string   `json:"title,omitempty"`
	LastActivity time.Time `json:"lastActivity"`
	CreationTime time.Time `json:"creationTime"`
}

// Message is a single conversation turn. Immutable once created; the only
// delete path is the rollback of a provisional user message.
type Message struct {
	MessageID    string    `json:"messageId"`
	ChatID       string    `json:"chatId"`
	UserID       string    `json:"userId"`
	Role         string    `json:"role"`
	Content      string    `json:"content"`
	CreationTime time.Time `json:"creationTime"`
}

// QuotaWindow is the admission-check view of a user's daily allowance,
// derived from User fields at check time. ResetAt is when the window next
// rolls over (24h after the last reset).
type QuotaWindow struct {
	Allowed bool      `json:"allowed"`
	Count   int       `json:"count"`
	Limit   int       `json:"limit"`
	ResetAt time.Time `json:"resetAt"`
}

// Remaining returns how many messages the user may still send in this window.
func (q QuotaWindow) Remaining() int {
	if q.Count >= q.Limit {
		return 0
	}
	return q.Limit - q.Count
}
