package recruit

import (
	"context"
	"errors"
	"net/url"
	"strings"
)

const (
	endpointStatuses     = "statuses"
	endpointStatusUpdate = "status_update"
)

// Status is one entry of the review status vocabulary (Eligible, Not Eligible, ...).
type Status struct {
	ID   string `json:"st_id" validate:"required"`
	Name string `json:"st_name" validate:"required"`
}

type Statuses []Status

var statusAliases = map[string]string{
	"status_id":   "st_id",
	"status_name": "st_name",
	"id":          "st_id",
	"name":        "st_name",
}

// Statuses returns the status vocabulary.
func (b *Backend) Statuses(ctx context.Context) (Statuses, error) {
	items, err := b.getItems(ctx, endpointStatuses, b.Paths.Statuses, nil)
	if err != nil {
		return nil, err
	}

	return decodeList[Status](b, endpointStatuses, items, statusAliases)
}

// Name returns the display name of the status id.
func (s Statuses) Name(id string) (string, bool) {
	for _, status := range s {
		if status.ID == id {
			return status.Name, true
		}
	}
	return "", false
}

// UpdateResumeStatus asks the backend to set the résumé's status. Any 2xx means accepted.
func (b *Backend) UpdateResumeStatus(ctx context.Context, resumeID, statusID string) error {
	resumeID = strings.TrimSpace(resumeID)
	statusID = strings.TrimSpace(statusID)
	if resumeID == "" {
		return errors.New("resume id is required")
	}
	if statusID == "" {
		return errors.New("status id is required")
	}

	q := url.Values{}
	q.Set(b.Paths.StatusUpdateQuery, statusID)

	path := strings.TrimRight(b.Paths.StatusUpdate, "/") + "/" + url.PathEscape(resumeID)

	return b.post(ctx, endpointStatusUpdate, path, q)
}
