package resilience

import (
	"context"
	"errors"
	"net"

	"github.com/kirillkom/legal-assistant/internal/core/domain"
)

// Transient builds a classifier shared by the outbound adapters. Cancellation is
// neither retried nor counted against the breaker; an open circuit, a
// domain.ErrTemporary or anything isTransient accepts is retried; the rest are
// permanent failures.
func Transient(isTransient func(error) bool) ErrorClassifier {
	return func(err error) ErrorClassification {
		switch {
		case err == nil:
			return ErrorClassification{}
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return ErrorClassification{Retryable: false, RecordFailure: false}
		case IsCircuitOpen(err), domain.IsKind(err, domain.ErrTemporary):
			return ErrorClassification{Retryable: true, RecordFailure: true}
		case isTransient != nil && isTransient(err):
			return ErrorClassification{Retryable: true, RecordFailure: true}
		default:
			return ErrorClassification{Retryable: false, RecordFailure: true}
		}
	}
}

// IsNetworkError matches dial, timeout and connection failures.
func IsNetworkError(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr)
}

// WrapTemporary tags errors the classifier considers retryable with
// domain.ErrTemporary so the HTTP layer reports them as 503.
func WrapTemporary(operation string, err error, classifier ErrorClassifier) error {
	if err == nil || domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	if classifier == nil {
		classifier = permanent
	}
	if classifier(err).Retryable || IsCircuitOpen(err) {
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}
	return err
}
