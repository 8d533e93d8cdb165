package recruit

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"
)

const endpointRequirements = "requirements"

// Requirement is an open position of one client. The uploaded job description
// filename doubles as its display name.
type Requirement struct {
	ID           string    `json:"jd_id" validate:"required"`
	ClientID     string    `json:"cl_id"`
	Filename     string    `json:"filename"`
	DocumentLink string    `json:"s3_link"`
	CreatedAt    time.Time `json:"created_at"`
}

// Name is what a person picks the requirement by.
func (r Requirement) Name() string {
	if r.Filename != "" {
		return r.Filename
	}
	return r.ID
}

type Requirements []Requirement

var requirementAliases = map[string]string{
	"client_id": "cl_id",
	"timestamp": "created_at",
	"id":        "jd_id",
}

// Requirements returns the requirements of one client.
func (b *Backend) Requirements(ctx context.Context, clientID string) (Requirements, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		return nil, errors.New("client id is required")
	}

	q := url.Values{}
	q.Set(b.Paths.RequirementsQuery, clientID)

	items, err := b.getItems(ctx, endpointRequirements, b.Paths.Requirements, q)
	if err != nil {
		return nil, err
	}

	return decodeList[Requirement](b, endpointRequirements, items, requirementAliases)
}

func (r Requirements) FindByID(id string) (Requirement, bool) {
	for _, requirement := range r {
		if requirement.ID == id {
			return requirement, true
		}
	}
	return Requirement{}, false
}
