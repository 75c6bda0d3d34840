package model

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf_UnwrapsThroughWrapping(t *testing.T) {
	base := NewRelayError(KindProviderQuota, errors.New("429 from provider"))
	wrapped := fmt.Errorf("generate: %w", base)

	if got := KindOf(wrapped); got != KindProviderQuota {
		t.Fatalf("expected KindProviderQuota, got %v", got)
	}
}

func TestKindOf_PlainErrorIsGeneric(t *testing.T) {
	if got := KindOf(errors.New("boom")); got != KindGeneric {
		t.Fatalf("expected KindGeneric, got %v", got)
	}
}

func TestErrorKind_WireCodes(t *testing.T) {
	cases := map[ErrorKind]string{
		KindProviderQuota:     "QUOTA_EXCEEDED",
		KindProviderTransient: "SERVICE_BUSY",
		KindEmptyResponse:     "EMPTY_RESPONSE",
		KindQuotaDenied:       "QUOTA_DENIED",
		KindGeneric:           "AI_RESPONSE_FAILED",
	}
	for kind, want := range cases {
		if kind.String() != want {
			t.Fatalf("kind %d: expected %q, got %q", kind, want, kind.String())
		}
	}
}

func TestUserMessage_NeverEmpty(t *testing.T) {
	kinds := []ErrorKind{
		KindGeneric, KindValidation, KindUnauthenticated, KindQuotaDenied,
		KindProviderTransient, KindProviderQuota, KindEmptyResponse,
		KindPersistenceFailure,
	}
	for _, k := range kinds {
		if k.UserMessage() == "" {
			t.Fatalf("kind %v has empty user message", k)
		}
	}
}

func TestRelayError_ErrorIncludesCause(t *testing.T) {
	err := NewRelayError(KindPersistenceFailure, errors.New("disk full"))
	if err.Error() != "PERSISTENCE_FAILURE: disk full" {
		t.Fatalf("unexpected error string: %s", err.Error())
	}
}
