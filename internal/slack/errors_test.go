package slack

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseErrorCode(t *testing.T) {
	tests := []struct {
		raw  string
		want ErrorCode
	}{
		{raw: "invalid_auth", want: CodeInvalidAuth},
		{raw: "not_in_channel", want: CodeNotInChannel},
		{raw: "ratelimited", want: CodeRateLimited},
		{raw: "rate_limited", want: CodeRateLimited},
		{raw: "invalid_types", want: CodeInvalidType},
		{raw: "fatal_error", want: CodeFatal},
		{raw: "something_new", want: CodeUnknown},
		{raw: "", want: CodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ParseErrorCode(tt.raw)); diff != "" {
				t.Errorf("ParseErrorCode(%q) mismatch (-want +got):\n%s", tt.raw, diff)
			}
		})
	}
}

func TestEveryCodeHasDescription(t *testing.T) {
	for raw, code := range codesByName {
		if code.Description() == "" {
			t.Errorf("code %q has no description", raw)
		}
	}
	if CodeUnknown.Description() != "" {
		t.Error("unknown code should have no description")
	}
}

func TestAPIErrorMessage(t *testing.T) {
	known := &APIError{Method: "conversations.history", Code: CodeChannelNotFound, Raw: "channel_not_found"}
	want := "conversations.history: Couldn't find the specified Slack channel. (channel_not_found)"
	if diff := cmp.Diff(want, known.Error()); diff != "" {
		t.Errorf("known error mismatch (-want +got):\n%s", diff)
	}

	unknown := &APIError{Method: "conversations.join", Code: CodeUnknown, Raw: "team_frozen"}
	want = `conversations.join: unknown error "team_frozen"`
	if diff := cmp.Diff(want, unknown.Error()); diff != "" {
		t.Errorf("unknown error mismatch (-want +got):\n%s", diff)
	}
}

func TestErrorsIs(t *testing.T) {
	auth := fmt.Errorf("join: %w", &APIError{Method: "conversations.join", Code: CodeInvalidAuth, Raw: "invalid_auth"})
	notIn := &APIError{Method: "conversations.history", Code: CodeNotInChannel, Raw: "not_in_channel"}
	transport := &TransportError{Method: "auth.test", Err: errors.New("dial tcp: refused")}

	if !IsFatal(auth) {
		t.Error("wrapped invalid_auth should be fatal")
	}
	if IsFatal(notIn) || IsFatal(transport) {
		t.Error("only invalid_auth is fatal")
	}
	if !errors.Is(notIn, ErrNotInChannel) {
		t.Error("errors.Is(notIn, ErrNotInChannel) = false")
	}
	if errors.Is(notIn, ErrRateLimited) {
		t.Error("not_in_channel matched ErrRateLimited")
	}

	code, ok := CodeOf(auth)
	if !ok || code != CodeInvalidAuth {
		t.Errorf("CodeOf = %v, %v; want CodeInvalidAuth, true", code, ok)
	}
	if _, ok := CodeOf(transport); ok {
		t.Error("CodeOf(transport) should report no code")
	}
}
