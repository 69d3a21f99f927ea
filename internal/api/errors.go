package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/tubetip/tubetip/internal/apperror"
)

// errorBody is the union of the backend's two error response shapes.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Errors  []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"errors"`
}

// decodeError maps a non-2xx backend response onto the apperror taxonomy.
// resource names what was being fetched, for NotFound messages.
//
// An unreadable or non-JSON body falls through to the status-code mapping
// with a generic message — the backend misbehaving must never panic the
// client or leak a raw body to the user.
func (c *Client) decodeError(resp *http.Response, resource string) error {
	var body errorBody
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	_ = json.Unmarshal(raw, &body)

	// Field-keyed rejections take precedence regardless of status code.
	if len(body.Errors) > 0 {
		fields := make(map[string]string, len(body.Errors))
		for _, fe := range body.Errors {
			fields[fe.Field] = fe.Message
		}
		return &apperror.ValidationErrors{ByField: fields}
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return apperror.AuthFailed(messageOr(body, "authentication required"))
	case http.StatusNotFound:
		return apperror.NotFound(resource, messageOr(body, "no such "+resource))
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return apperror.ValidationFailed("", messageOr(body, "invalid request"))
	case http.StatusConflict:
		return apperror.Conflict(resource, messageOr(body, "already exists"))
	default:
		return apperror.Transient(messageOr(body, "the server had a problem, please try again"))
	}
}

func messageOr(body errorBody, fallback string) string {
	if body.Message != "" {
		return body.Message
	}
	return fallback
}

func transientf(message string) error {
	return apperror.Transient(message)
}
