package ollama

import (
	"errors"
	"net/http"

	"github.com/kirillkom/legal-assistant/internal/infrastructure/resilience"
)

var transientOllamaError = resilience.Transient(func(err error) bool {
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return isRetryableHTTPStatus(statusErr.StatusCode)
	}
	return resilience.IsNetworkError(err)
})

// classifyOllamaError keeps client errors such as an unknown model out of the
// breaker counts.
func classifyOllamaError(err error) resilience.ErrorClassification {
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) && !isRetryableHTTPStatus(statusErr.StatusCode) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}
	return transientOllamaError(err)
}

func isRetryableHTTPStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
