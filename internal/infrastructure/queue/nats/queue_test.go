package nats

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/legal-assistant/internal/core/domain"
	"github.com/kirillkom/legal-assistant/internal/infrastructure/resilience"
)

func TestClassifyNATSError(t *testing.T) {
	for _, err := range []error{nats.ErrNoServers, nats.ErrTimeout, fmt.Errorf("publish: %w", nats.ErrConnectionClosed)} {
		if class := classifyNATSError(err); !class.Retryable {
			t.Fatalf("expected %v to be retryable", err)
		}
	}
	if class := classifyNATSError(nats.ErrBadSubject); class.Retryable {
		t.Fatalf("bad subject must not be retried")
	}
	if class := classifyNATSError(context.Canceled); class.Retryable || class.RecordFailure {
		t.Fatalf("cancellation must be ignored, got %+v", class)
	}
}

func TestPublishErrorsAreTemporary(t *testing.T) {
	err := resilience.WrapTemporary("nats publish", fmt.Errorf("nats publish: %w", nats.ErrConnectionClosed), classifyNATSError)
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error, got %v", err)
	}
	if !errors.Is(err, nats.ErrConnectionClosed) {
		t.Fatalf("cause must be preserved: %v", err)
	}
}

func TestNewRequiresSubject(t *testing.T) {
	if _, err := NewWithOptions("nats://127.0.0.1:1", " ", Options{}); err == nil {
		t.Fatalf("expected error for empty subject")
	}
}
