package slack

import (
	"errors"
	"fmt"
)

// ErrorCode is a named error returned by the Slack Web API in the
// "error" field of a failed response.
type ErrorCode int

// Known error codes. CodeUnknown covers anything not in the table; the raw
// string is kept on the APIError.
const (
	CodeUnknown ErrorCode = iota
	CodeInvalidAuth
	CodeAccessDenied
	CodeAuthTimeout
	CodeAuthVerification
	CodeChannelNotFound
	CodeNotInChannel
	CodeIsArchived
	CodeInvalidScopes
	CodeCommentRequired
	CodeRateLimited
	CodeInvalidCursor
	CodeInvalidLimit
	CodeInvalidType
	CodeFatal
	CodeInternal
)

var codesByName = map[string]ErrorCode{
	"invalid_auth":            CodeInvalidAuth,
	"access_denied":           CodeAccessDenied,
	"auth_timeout_error":      CodeAuthTimeout,
	"auth_verification_error": CodeAuthVerification,
	"channel_not_found":       CodeChannelNotFound,
	"not_in_channel":          CodeNotInChannel,
	"is_archived":             CodeIsArchived,
	"invalid_scopes":          CodeInvalidScopes,
	"comment_required":        CodeCommentRequired,
	"ratelimited":             CodeRateLimited,
	"rate_limited":            CodeRateLimited,
	"invalid_cursor":          CodeInvalidCursor,
	"invalid_limit":           CodeInvalidLimit,
	"invalid_types":           CodeInvalidType,
	"fatal_error":             CodeFatal,
	"internal_error":          CodeInternal,
}

// Operator-facing descriptions. Keep the wording stable: log searches
// depend on it.
var descriptions = map[ErrorCode]string{
	CodeInvalidAuth:      "Invalid authentication token.",
	CodeAccessDenied:     "You don't have permissions to create Slack-hosted apps or access the specified resource.",
	CodeAuthTimeout:      "Couldn't receive authorization in the time allowed.",
	CodeAuthVerification: "Couldn't verify your authorization.",
	CodeChannelNotFound:  "Couldn't find the specified Slack channel.",
	CodeNotInChannel:     "Cannot post user messages to a channel they are not in.",
	CodeIsArchived:       "Channel has been archived.",
	CodeInvalidScopes:    "Some of the provided scopes do not exist.",
	CodeCommentRequired:  "Your App Manager is requesting a reason to approve installation of this app.",
	CodeRateLimited:      "Too many calls in succession to create endpoint during a short period of time.",
	CodeInvalidCursor:    "Value passed for `cursor` was not valid or is no longer valid.",
	CodeInvalidLimit:     "Value passed for `limit` is not understood.",
	CodeInvalidType:      "Value passed for `type` could not be used based on the method's capabilities or the permission scopes granted to the used token.",
	CodeFatal:            "The server could not complete your operation(s) without encountering a catastrophic error.",
	CodeInternal:         "The server could not complete your operation(s) without encountering an error, likely due to a transient issue with Slack.",
}

// ParseErrorCode maps a raw error string to its ErrorCode.
func ParseErrorCode(raw string) ErrorCode {
	if c, ok := codesByName[raw]; ok {
		return c
	}
	return CodeUnknown
}

// Description returns the human-readable text for a known code, or "" for
// CodeUnknown.
func (c ErrorCode) Description() string {
	return descriptions[c]
}

// APIError is returned when the API answers with ok=false.
type APIError struct {
	Method string
	Code   ErrorCode
	Raw    string
}

func (e *APIError) Error() string {
	if e.Code == CodeUnknown {
		return fmt.Sprintf("%s: unknown error %q", e.Method, e.Raw)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Method, e.Code.Description(), e.Raw)
}

// Is matches another *APIError by code, so sentinels such as
// ErrInvalidAuth can be used with errors.Is.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	if t.Code == CodeUnknown {
		return e.Code == CodeUnknown && (t.Raw == "" || t.Raw == e.Raw)
	}
	return e.Code == t.Code
}

// Sentinels for errors.Is.
var (
	ErrInvalidAuth  = &APIError{Code: CodeInvalidAuth}
	ErrNotInChannel = &APIError{Code: CodeNotInChannel}
	ErrRateLimited  = &APIError{Code: CodeRateLimited}
)

// TransportError wraps a failure to reach the API at all.
type TransportError struct {
	Method string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport: %v", e.Method, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// MalformedResponseError is returned when a response body does not decode
// into the expected envelope.
type MalformedResponseError struct {
	Method string
	Body   string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s: malformed response: %v", e.Method, e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// MalformedTimestampError is returned for a timestamp value that is present
// but cannot be read as seconds since the epoch.
type MalformedTimestampError struct {
	Raw string
}

func (e *MalformedTimestampError) Error() string {
	return fmt.Sprintf("malformed timestamp: %s", e.Raw)
}

// IsFatal reports whether err should stop the whole run. Only an invalid
// token qualifies: every later call would fail the same way.
func IsFatal(err error) bool {
	return errors.Is(err, ErrInvalidAuth)
}

// CodeOf returns the API error code carried by err, if any.
func CodeOf(err error) (ErrorCode, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, true
	}
	return CodeUnknown, false
}
