package gitlab

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/branchscope/branchscope/internal/adapter/rest"
)

const sourceName = "gitlab"

// MapHTTPError maps GitLab API status codes to typed rest.Error values so
// the shared retry logic can tell transient failures from permanent ones.
func MapHTTPError(statusCode int, body []byte) *rest.Error {
	message := parseErrorMessage(statusCode, body)

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &rest.Error{
			Type:       rest.ErrTypeAuthentication,
			Message:    message,
			StatusCode: statusCode,
			Retryable:  false,
			Source:     sourceName,
		}

	case http.StatusTooManyRequests:
		return &rest.Error{
			Type:       rest.ErrTypeRateLimit,
			Message:    message,
			StatusCode: statusCode,
			Retryable:  true,
			Source:     sourceName,
		}

	case http.StatusNotFound:
		return &rest.Error{
			Type:       rest.ErrTypeNotFound,
			Message:    message,
			StatusCode: statusCode,
			Retryable:  false,
			Source:     sourceName,
		}

	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return &rest.Error{
			Type:       rest.ErrTypeInvalidRequest,
			Message:    message,
			StatusCode: statusCode,
			Retryable:  false,
			Source:     sourceName,
		}

	case http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable:
		return &rest.Error{
			Type:       rest.ErrTypeServiceUnavailable,
			Message:    message,
			StatusCode: statusCode,
			Retryable:  true,
			Source:     sourceName,
		}

	default:
		return &rest.Error{
			Type:       rest.ErrTypeUnknown,
			Message:    message,
			StatusCode: statusCode,
			Retryable:  false,
			Source:     sourceName,
		}
	}
}

// parseErrorMessage extracts a user-presentable message from a GitLab error
// body, falling back to a body preview for non-JSON responses.
func parseErrorMessage(statusCode int, body []byte) string {
	var payload errorPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		preview := string(body)
		if len(preview) > 100 {
			preview = preview[:100] + "..."
		}
		if preview == "" {
			return fmt.Sprintf("HTTP %d", statusCode)
		}
		return fmt.Sprintf("HTTP %d: %s", statusCode, preview)
	}

	if payload.Error != "" {
		return payload.Error
	}
	if s, ok := payload.Message.(string); ok && s != "" {
		return s
	}
	if payload.Message != nil {
		return fmt.Sprintf("%v", payload.Message)
	}
	return fmt.Sprintf("HTTP %d", statusCode)
}
