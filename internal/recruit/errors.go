package recruit

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// APIError is returned for non-2xx backend responses.
type APIError struct {
	Endpoint   string
	StatusCode int
	Status     string
	// Detail is the backend's own explanation, empty when the body carried none.
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: bad status: %s", e.Endpoint, e.Status)
	}
	return fmt.Sprintf("%s: bad status: %s: %s", e.Endpoint, e.Status, e.Detail)
}

// MalformedResponseError is returned when a 2xx body does not have the shape the
// endpoint promises: invalid JSON, wrong types or missing required fields.
type MalformedResponseError struct {
	Endpoint string
	Err      error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s: malformed response: %v", e.Endpoint, e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// errorDetail pulls a human readable message out of an error body. FastAPI sends
// {"detail": "..."} or a list of validation errors, gin style handlers send {"error": "..."}.
func errorDetail(body []byte) string {
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return ""
	}

	detail := gjson.GetBytes(body, "detail")
	if detail.IsArray() {
		var msgs []string
		for _, msg := range detail.Get("#.msg").Array() {
			if s := strings.TrimSpace(msg.String()); s != "" {
				msgs = append(msgs, s)
			}
		}
		return strings.Join(msgs, "; ")
	}

	for _, key := range []string{"detail", "error", "message"} {
		if v := gjson.GetBytes(body, key); v.Exists() && v.Type == gjson.String {
			if s := strings.TrimSpace(v.String()); s != "" {
				return s
			}
		}
	}

	return ""
}
