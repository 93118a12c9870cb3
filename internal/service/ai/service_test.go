package ai

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/GaryBary/noosa26/internal/model/chat"
)

func TestComposeReplyTextFallbackListsAllTitles(t *testing.T) {
	chunks := []chat.GroundingChunk{
		{Maps: &chat.GroundingSource{Title: "Bistro C", URI: "https://maps.example/bistro-c"}},
		{Web: &chat.GroundingSource{Title: "Sails Restaurant", URI: "https://web.example/sails"}},
	}

	got := ComposeReplyText("ok", chunks)
	if !strings.Contains(got, "Bistro C") || !strings.Contains(got, "Sails Restaurant") {
		t.Fatalf("fallback must list both titles, got %q", got)
	}
	if !strings.Contains(got, "[Map](https://maps.example/bistro-c)") {
		t.Fatalf("fallback missing Map link: %q", got)
	}
	if !strings.Contains(got, "[Website](https://web.example/sails)") {
		t.Fatalf("fallback missing Website link: %q", got)
	}
}

func TestComposeReplyTextDeduplicatesTitles(t *testing.T) {
	chunks := []chat.GroundingChunk{
		{Maps: &chat.GroundingSource{Title: "Bistro C", URI: "https://maps.example/a"}},
		{Web: &chat.GroundingSource{Title: "Bistro C", URI: "https://web.example/b"}},
	}

	got := ComposeReplyText("", chunks)
	if strings.Count(got, "Bistro C") != 1 {
		t.Fatalf("expected one listing per title, got %q", got)
	}
}

func TestComposeReplyTextKeepsSubstantialReply(t *testing.T) {
	text := "Head straight to Bistro C on Hastings Street for breakfast."
	got := ComposeReplyText(text, []chat.GroundingChunk{
		{Maps: &chat.GroundingSource{Title: "Bistro C", URI: "https://maps.example/a"}},
	})
	if got != text {
		t.Fatalf("substantial reply must pass through, got %q", got)
	}
}

func TestComposeReplyTextLastResort(t *testing.T) {
	got := ComposeReplyText("  ", nil)
	if got != lastResortText {
		t.Fatalf("expected last-resort copy, got %q", got)
	}
}

func TestIsAuthFailureBy403Marker(t *testing.T) {
	if !isAuthFailure(errors.New("request failed with status 403 Forbidden")) {
		t.Fatal("403 marker must classify as auth failure")
	}
	if !isAuthFailure(errors.New("API key Not Found")) {
		t.Fatal("not-found marker must classify as auth failure")
	}
	if isAuthFailure(errors.New("connection reset by peer")) {
		t.Fatal("network error must not classify as auth failure")
	}
}

func TestIsCredentialError(t *testing.T) {
	wrapped := fmt.Errorf("%w: remote said 403", ErrAuthRejected)
	if !IsCredentialError(wrapped) {
		t.Fatal("wrapped ErrAuthRejected must register as credential error")
	}
	if !IsCredentialError(ErrMissingCredential) {
		t.Fatal("ErrMissingCredential must register as credential error")
	}
	if IsCredentialError(errors.New("anything else")) {
		t.Fatal("generic error must not register as credential error")
	}
}
