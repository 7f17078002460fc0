package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// Kind classifies a provider failure. The router bases its retry, model
// fallback and credential rotation decisions entirely on this value.
type Kind int

const (
	KindUnknown Kind = iota
	KindNetworkUnavailable
	KindTimeout
	// KindAuthOrQuota lumps invalid key, permission denied and quota
	// exceeded together: the caller's remedy (try another credential) is
	// identical for all three.
	KindAuthOrQuota
	KindRateLimited
	KindServiceUnavailable
	KindDegenerateResponse
	KindModelUnsupported
)

// String returns the short name used in logs and API error payloads.
func (k Kind) String() string {
	switch k {
	case KindNetworkUnavailable:
		return "network_unavailable"
	case KindTimeout:
		return "timeout"
	case KindAuthOrQuota:
		return "auth_or_quota"
	case KindRateLimited:
		return "rate_limited"
	case KindServiceUnavailable:
		return "service_unavailable"
	case KindDegenerateResponse:
		return "degenerate_response"
	case KindModelUnsupported:
		return "model_unsupported"
	default:
		return "unknown"
	}
}

// Transient reports whether an immediate retry of the same candidate is
// likely to succeed.
func (k Kind) Transient() bool {
	return k == KindServiceUnavailable || k == KindTimeout
}

// severity orders kinds by how actionable they are for the caller. On
// exhaustion the router reports the most severe kind observed across all
// attempts, not merely the last one.
var severity = map[Kind]int{
	KindAuthOrQuota:        6,
	KindRateLimited:        5,
	KindServiceUnavailable: 4,
	KindTimeout:            3,
	KindDegenerateResponse: 2,
	KindNetworkUnavailable: 1,
	KindUnknown:            0,
}

// MoreSevere reports whether k outranks other in the exhaustion precedence.
func (k Kind) MoreSevere(other Kind) bool {
	return severity[k] > severity[other]
}

// Error is a classified provider failure.
type Error struct {
	Kind     Kind
	Provider string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e.Message != "" {
		if e.Provider != "" {
			return fmt.Sprintf("%s: %s: %s", e.Provider, e.Kind, e.Message)
		}
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the classification from err, defaulting to KindUnknown.
func KindOf(err error) Kind {
	var aiErr *Error
	if errors.As(err, &aiErr) {
		return aiErr.Kind
	}
	return KindUnknown
}

// ClassifyTransport maps a transport-level failure (the http.Client.Do
// error) into the taxonomy. Context deadline expiry counts as a timeout,
// anything else as the network being unreachable.
func ClassifyTransport(provider string, err error) *Error {
	kind := KindNetworkUnavailable
	if errors.Is(err, context.DeadlineExceeded) {
		kind = KindTimeout
	} else {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			kind = KindTimeout
		}
	}
	return &Error{Kind: kind, Provider: provider, Message: err.Error(), Err: err}
}

// ClassifyStatus maps an HTTP error status plus the provider's error body
// into the taxonomy. The body is matched against the well-known Google API
// status strings so both provider dialects classify the same way.
func ClassifyStatus(provider string, status int, body string) *Error {
	kind := KindUnknown
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = KindAuthOrQuota
	case status == http.StatusTooManyRequests:
		kind = KindRateLimited
	case status == http.StatusNotFound:
		kind = KindModelUnsupported
	case status >= 500:
		kind = KindServiceUnavailable
	}

	// Body hints override the bare status: Google-style APIs report quota
	// exhaustion and invalid keys on several different status codes.
	switch {
	case containsAny(body, "API_KEY_INVALID", "PERMISSION_DENIED", "QUOTA_EXCEEDED"):
		kind = KindAuthOrQuota
	case containsAny(body, "RESOURCE_EXHAUSTED"):
		if kind != KindAuthOrQuota {
			kind = KindRateLimited
		}
	case containsAny(body, "UNAVAILABLE", "DEADLINE_EXCEEDED", "INTERNAL"):
		if kind == KindUnknown {
			kind = KindServiceUnavailable
		}
	case containsAny(body, "not found", "not supported", "NOT_FOUND"):
		kind = KindModelUnsupported
	}

	return &Error{
		Kind:     kind,
		Provider: provider,
		Message:  fmt.Sprintf("status %d: %s", status, truncate(body, 200)),
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
