package validate

import "testing"

func TestEmail(t *testing.T) {
	if err := Email("user@example.com"); err != nil {
		t.Fatalf("valid email rejected: %v", err)
	}
	for _, bad := range []string{"", "no-at.example.com", "spaces in@example.com"} {
		if err := Email(bad); err == nil {
			t.Fatalf("expected rejection for %q", bad)
		}
	}
}

func TestChatTitle(t *testing.T) {
	if err := ChatTitle("Weekend plans"); err != nil {
		t.Fatalf("valid title rejected: %v", err)
	}
	if err := ChatTitle(""); err == nil {
		t.Fatal("empty title accepted")
	}
	long := make([]byte, 101)
	for i := range long {
		long[i] = 'a'
	}
	if err := ChatTitle(string(long)); err == nil {
		t.Fatal("overlong title accepted")
	}
}

func TestMessageContent(t *testing.T) {
	if err := MessageContent("hi"); err != nil {
		t.Fatalf("valid content rejected: %v", err)
	}
	if err := MessageContent(""); err == nil {
		t.Fatal("empty content accepted")
	}
}
