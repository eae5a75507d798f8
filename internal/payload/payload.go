package payload

import (
	"net/http"

	"github.com/tombowditch/geojsonio/internal/config"
)

// ValidationError holds validation failure details.
type ValidationError struct {
	StatusCode int
	Message    string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validate checks if a submitted GeoJSON body is acceptable.
// Returns nil if valid, or a *ValidationError with appropriate status code and message.
func Validate(body []byte) error {
	if len(body) == 0 {
		return &ValidationError{
			StatusCode: http.StatusBadRequest,
			Message:    "empty body",
		}
	}

	if len(body) > config.MaxPayloadSize {
		return &ValidationError{
			StatusCode: http.StatusRequestEntityTooLarge,
			Message:    "payload too big",
		}
	}

	return nil
}
