package embeddings

import (
	"errors"
	"fmt"
	"net/http"
)

// ProviderError describes a failed call to an embedding provider.
// StatusCode is 0 when the provider was unreachable (connection or
// timeout failure before any HTTP response).
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s unreachable: %s", e.Provider, e.Message)
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Provider, e.StatusCode, e.Message)
}

// Retryable reports whether the caller may reasonably retry: the provider
// was unreachable, overloaded, or failed server-side. Client errors (4xx
// other than 429) indicate a bad request and are not retryable.
func (e *ProviderError) Retryable() bool {
	return e.StatusCode == 0 ||
		e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode >= http.StatusInternalServerError
}

// IsRetryable reports whether err is a retryable provider failure.
func IsRetryable(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Retryable()
}
