package upstream

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/ranchopanda/22juneplantsaathiai-sub001/pkg/logger"
)

// Credential is one upstream API key in a pool.
type Credential string

// Empty reports whether this pool slot is an unset placeholder.
func (c Credential) Empty() bool {
	return strings.TrimSpace(string(c)) == ""
}

// Suffix returns a safe tail of the credential for logging.
func (c Credential) Suffix() string {
	s := string(c)
	if len(s) > 4 {
		return s[len(s)-4:]
	}
	return s
}

// TryAll walks the pool in the caller's order, running op through the retry
// executor once per non-empty credential. Empty slots are skipped without
// consuming an attempt. A non-recoverable failure on one credential moves to
// the next immediately. Attempts are strictly sequential; parallel fan-out
// would multiply upstream cost and quota consumption.
//
// If every credential is exhausted the supplied fallback is returned, not an
// error: the last failure per credential is logged here and callers that
// need to tell a degraded fallback from a genuine result must inspect the
// value. Cancelling ctx stops the walk early and also yields the fallback.
func TryAll[T any](ctx context.Context, pool []Credential, policy RetryPolicy, fallback T, op func(ctx context.Context, cred Credential) (T, error)) T {
	attempted := 0
	for _, cred := range pool {
		if cred.Empty() {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		attempted++

		result, err := Execute(ctx, policy, func() (T, error) {
			return op(ctx, cred)
		})
		if err == nil {
			return result
		}

		fields := []zap.Field{
			zap.String("credential_suffix", cred.Suffix()),
			zap.Error(err),
		}
		if classified, ok := err.(*ClassifiedError); ok {
			fields = append(fields, zap.String("kind", string(classified.Kind)))
		}
		logger.Warn(ctx, "upstream credential exhausted", fields...)
	}

	logger.Warn(ctx, "credential pool exhausted, returning fallback",
		zap.Int("credentials_attempted", attempted))
	return fallback
}
