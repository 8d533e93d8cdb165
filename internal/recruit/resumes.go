package recruit

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"
)

const endpointResumes = "resumes"

// Resume is one uploaded candidate document for a requirement. StatusID is nil when no
// status has been assigned yet. StatusName is filled client-side from the vocabulary.
type Resume struct {
	ID            string    `json:"resume_id" validate:"required"`
	RequirementID string    `json:"jd_id"`
	DocumentLink  string    `json:"s3_link"`
	Filename      string    `json:"filename"`
	CreatedAt     time.Time `json:"created_at"`
	StatusID      *string   `json:"st_id"`
	StatusName    string    `json:"st_name"`
}

// Status returns the status id or an empty string when unset.
func (r Resume) Status() string {
	if r.StatusID == nil {
		return ""
	}
	return *r.StatusID
}

type Resumes []Resume

var resumeAliases = map[string]string{
	"timestamp":      "created_at",
	"requirement_id": "jd_id",
	"status_id":      "st_id",
	"id":             "resume_id",
}

// Resumes returns the résumés submitted for one requirement.
func (b *Backend) Resumes(ctx context.Context, requirementID string) (Resumes, error) {
	requirementID = strings.TrimSpace(requirementID)
	if requirementID == "" {
		return nil, errors.New("requirement id is required")
	}

	q := url.Values{}
	q.Set(b.Paths.ResumesQuery, requirementID)

	items, err := b.getItems(ctx, endpointResumes, b.Paths.Resumes, q)
	if err != nil {
		return nil, err
	}

	resumes, err := decodeList[Resume](b, endpointResumes, items, resumeAliases)
	if err != nil {
		return nil, err
	}

	for i := range resumes {
		// Blank ids are as good as no status.
		if resumes[i].StatusID != nil && strings.TrimSpace(*resumes[i].StatusID) == "" {
			resumes[i].StatusID = nil
		}
	}

	return resumes, nil
}

func (r Resumes) FindByID(id string) (Resume, bool) {
	for _, resume := range r {
		if resume.ID == id {
			return resume, true
		}
	}
	return Resume{}, false
}
