// Package upstream contains the resilient-call layer for outbound provider
// requests: a closed failure taxonomy, a policy-driven retry executor, and a
// credential pool selector that spreads calls across upstream API keys.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"

	"google.golang.org/api/googleapi"
)

// ErrorKind is one member of the closed failure taxonomy.
type ErrorKind string

const (
	KindRateLimited     ErrorKind = "rate_limited"
	KindUnauthorized    ErrorKind = "unauthorized"
	KindExpired         ErrorKind = "expired"
	KindQuotaExceeded   ErrorKind = "quota_exceeded"
	KindUpstreamFailure ErrorKind = "upstream_failure"
	KindNetwork         ErrorKind = "network"
	KindValidation      ErrorKind = "validation"
	KindUnknown         ErrorKind = "unknown"
)

// recoverableKinds lists the kinds eligible for retry. Recoverability is a
// property of the kind, never set independently.
var recoverableKinds = map[ErrorKind]bool{
	KindRateLimited: true,
	KindNetwork:     true,
}

// Recoverable reports whether failures of this kind may be retried.
func (k ErrorKind) Recoverable() bool {
	return recoverableKinds[k]
}

// ClassifiedError is a raw upstream failure mapped onto the taxonomy.
type ClassifiedError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ClassifiedError) Error() string {
	return fmt.Sprintf("upstream %s: %s", e.Kind, e.Message)
}

func (e *ClassifiedError) Unwrap() error {
	return e.Err
}

// Recoverable reports whether this failure may be retried.
func (e *ClassifiedError) Recoverable() bool {
	return e.Kind.Recoverable()
}

func newClassified(kind ErrorKind, err error) *ClassifiedError {
	return &ClassifiedError{Kind: kind, Message: err.Error(), Err: err}
}

// rateLimitPredicates are the message fragments treated as rate limiting.
// Kept in one place so call sites never string-match on errors themselves.
var rateLimitPredicates = []string{
	"rate limit",
	"rate_limit",
	"too many requests",
	"resource exhausted",
	"resource_exhausted",
	"quota",
	"429",
}

// Classify maps a raw upstream failure to exactly one taxonomy kind.
// Priority order: rate limiting, authorization failure, transport failure,
// anything else. Already-classified errors pass through unchanged.
func Classify(err error) *ClassifiedError {
	if err == nil {
		return nil
	}

	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified
	}

	status := 0
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		status = gerr.Code
	}

	msg := strings.ToLower(err.Error())
	for _, p := range rateLimitPredicates {
		if strings.Contains(msg, p) {
			return newClassified(KindRateLimited, err)
		}
	}
	if status == 429 {
		return newClassified(KindRateLimited, err)
	}

	if status == 401 || status == 403 {
		return newClassified(KindUnauthorized, err)
	}

	if isTransportError(err) {
		return newClassified(KindNetwork, err)
	}

	return newClassified(KindUpstreamFailure, err)
}

func isTransportError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "eof")
}
