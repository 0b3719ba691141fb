package pinecone

import "fmt"

// ConfigurationError indicates the client is missing required settings.
// It is fatal for the current request and must not be retried.
type ConfigurationError struct {
	Field string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("pinecone configuration error: %s is not set", e.Field)
}

// UpstreamError indicates the search service failed after retrying.
type UpstreamError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("pinecone upstream error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("pinecone upstream error: %s", e.Message)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
