package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/spigell/recruitdesk/internal/recruit"
)

// GenericFailureMessage is shown when a failure carries nothing more specific.
const GenericFailureMessage = "Something went wrong; please try again later."

var (
	ErrNoClientSelected   = errors.New("no client selected")
	ErrUnknownRequirement = errors.New("requirement is not one of the selected client's requirements")
	ErrUnknownStatus      = errors.New("status is not in the status vocabulary")
	ErrUpdateInProgress   = errors.New("update already in progress")
	// ErrSuperseded is returned to a caller whose fetch finished after a newer
	// selection replaced it; its result was dropped.
	ErrSuperseded = errors.New("superseded by a newer selection")
	ErrClosed     = errors.New("session is closed")
)

// ValidationError is a local rejection made before any request is sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// UserMessage turns an error from this package or the backend client into the text of
// a notification. It returns an empty string for nil and for superseded results, which
// need no notification.
func UserMessage(err error) string {
	if err == nil || errors.Is(err, ErrSuperseded) {
		return ""
	}

	var validation *ValidationError
	if errors.As(err, &validation) {
		return validation.Message
	}

	switch {
	case errors.Is(err, ErrNoClientSelected):
		return "Please select a client first."
	case errors.Is(err, ErrUnknownRequirement):
		return "The selected requirement does not belong to this client."
	case errors.Is(err, ErrUnknownStatus):
		return "The selected status is not available."
	case errors.Is(err, ErrUpdateInProgress):
		return "A status update for this résumé is already in progress."
	case errors.Is(err, ErrClosed):
		return "The session has ended; please start again."
	case errors.Is(err, context.DeadlineExceeded):
		return "The request timed out; please try again."
	case errors.Is(err, context.Canceled):
		return "The request was cancelled."
	}

	var apiErr *recruit.APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}

	return GenericFailureMessage
}
