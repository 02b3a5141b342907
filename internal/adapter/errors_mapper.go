package adapter

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/MKhiriev/medsync/models"
)

func mapHTTPError(resp *resty.Response) error {
	if resp.StatusCode() >= http.StatusOK && resp.StatusCode() < http.StatusMultipleChoices {
		return nil
	}

	msg := errorMessage(resp)

	switch resp.StatusCode() {
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", ErrBadRequest, msg)
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrUnauthorized, msg)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, msg)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrTooManyRequests, msg)
	case http.StatusInternalServerError:
		return fmt.Errorf("%w: %s", ErrInternalServerError, msg)
	default:
		return fmt.Errorf("%w: %d %s", ErrUnexpectedStatus, resp.StatusCode(), msg)
	}
}

// errorMessage extracts the "error" field of a JSON error body, falling back
// to the raw body or the status text.
func errorMessage(resp *resty.Response) string {
	body := strings.TrimSpace(string(resp.Body()))

	var e models.ErrorResponse
	if err := json.Unmarshal(resp.Body(), &e); err == nil && e.Error != "" {
		return e.Error
	}
	if body == "" {
		return http.StatusText(resp.StatusCode())
	}
	return body
}
