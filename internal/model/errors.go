package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/dunglas/httpsfv"
)

// Sentinel errors for common cases.
// Use errors.Is() to check against these.
var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidRequest = errors.New("invalid request")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrAuthExpired    = errors.New("session expired")
	ErrUpstream       = errors.New("backend error")
	ErrRateLimited    = errors.New("rate limited")
	ErrTransport      = errors.New("transport failure")
)

// APIError is the uniform error shape every pipeline failure is
// normalized into. Message is human-readable (extracted from the server
// error body when one is present), StatusCode is the HTTP status when a
// response was received, and Body carries the raw server body for
// diagnostics.
type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"` // 0 when no response was received
	Body       []byte `json:"-"` // raw server body, may be nil
	Err        error  `json:"-"` // wrapped sentinel, not serialized
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (HTTP %d): %s", e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// NewValidationError creates an error for invalid local input that is
// never sent to the backend.
func NewValidationError(field, reason string) *APIError {
	return &APIError{
		Code:    "VALIDATION_ERROR",
		Message: fmt.Sprintf("invalid %s: %s", field, reason),
		Err:     ErrInvalidRequest,
	}
}

// NewAuthExpiredError creates the fatal authentication error surfaced
// when a 401 cannot be recovered by a token refresh. Callers must treat
// it as end-of-session and re-authenticate.
func NewAuthExpiredError(reason string) *APIError {
	return &APIError{
		Code:       "AUTH_EXPIRED",
		Message:    reason,
		StatusCode: http.StatusUnauthorized,
		Err:        ErrAuthExpired,
	}
}

// NewTransportError creates an error for network-level failures
// (connection refused, timeout). No status code, no body.
func NewTransportError(err error) *APIError {
	return &APIError{
		Code:    "TRANSPORT_ERROR",
		Message: err.Error(),
		Err:     fmt.Errorf("%w: %v", ErrTransport, err),
	}
}

// FromResponse normalizes a non-2xx backend response into an APIError.
// The message is extracted from the structured error body when present:
// a top-level "detail" string wins; otherwise field-keyed validation
// errors are joined as "field: message" pairs; otherwise the generic
// status text is used. The raw body is always preserved.
func FromResponse(status int, body []byte, header http.Header) *APIError {
	msg := extractMessage(body)
	if msg == "" {
		msg = http.StatusText(status)
	}

	e := &APIError{
		Message:    msg,
		StatusCode: status,
		Body:       body,
	}

	switch {
	case status == http.StatusUnauthorized:
		e.Code = "UNAUTHORIZED"
		e.Err = ErrUnauthorized
	case status == http.StatusNotFound:
		e.Code = "NOT_FOUND"
		e.Err = ErrNotFound
	case status == http.StatusTooManyRequests:
		e.Code = "RATE_LIMITED"
		e.Err = ErrRateLimited
		if hint := rateLimitHint(header); hint != "" {
			e.Message = msg + " (" + hint + ")"
		}
	case status >= 500:
		e.Code = "BACKEND_ERROR"
		e.Err = ErrUpstream
	default:
		e.Code = "REQUEST_REJECTED"
		e.Err = ErrInvalidRequest
	}
	return e
}

// extractMessage pulls a human-readable message out of a DRF-style
// error body. Field errors are sorted by field name so the joined
// message is deterministic.
func extractMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}

	// Top-level "detail" string wins when present.
	if raw, ok := payload["detail"]; ok {
		var detail string
		if err := json.Unmarshal(raw, &detail); err == nil && detail != "" {
			return detail
		}
	}

	fields := make([]string, 0, len(payload))
	for f := range payload {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var parts []string
	for _, f := range fields {
		var msgs []string
		if err := json.Unmarshal(payload[f], &msgs); err == nil {
			parts = append(parts, f+": "+strings.Join(msgs, ", "))
			continue
		}
		var single string
		if err := json.Unmarshal(payload[f], &single); err == nil {
			parts = append(parts, f+": "+single)
		}
	}
	return strings.Join(parts, "; ")
}

// rateLimitHint parses the RFC 8941 structured RateLimit response
// header (draft-ietf-httpapi-ratelimit-headers) into a retry hint.
// Returns "" when the header is absent or malformed.
func rateLimitHint(header http.Header) string {
	if header == nil {
		return ""
	}
	raw := header.Get("RateLimit")
	if raw == "" {
		return ""
	}
	dict, err := httpsfv.UnmarshalDictionary([]string{raw})
	if err != nil {
		return ""
	}
	member, ok := dict.Get("reset")
	if !ok {
		return ""
	}
	item, ok := member.(httpsfv.Item)
	if !ok {
		return ""
	}
	reset, ok := item.Value.(int64)
	if !ok {
		return ""
	}
	return fmt.Sprintf("retry in %ds", reset)
}
