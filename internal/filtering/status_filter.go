package filtering

import (
	"context"
	"strings"

	"github.com/spigell/recruitdesk/internal/recruit"
)

// Unassigned selects résumés that have no status yet.
const Unassigned = "unassigned"

type statusFilter struct {
	statusID string
	reason   string
}

// NewByStatus keeps résumés with the given status id. An empty id disables the step.
func NewByStatus(statusID string) Filter {
	f := &statusFilter{statusID: strings.TrimSpace(statusID)}
	if f.statusID == "" {
		f.reason = "no status filter selected"
	}
	return f
}

func (f *statusFilter) Name() string { return "status" }

func (f *statusFilter) IsEnabled() bool { return f.statusID != "" }

func (f *statusFilter) Apply(_ context.Context, list recruit.Resumes) (recruit.Resumes, Step, error) {
	out, step := keep(list, func(r recruit.Resume) bool {
		if f.statusID == Unassigned {
			return r.StatusID == nil
		}
		return r.Status() == f.statusID
	})

	return out, step, nil
}

func (f *statusFilter) Status() Status {
	details := map[string]string{}
	if f.statusID != "" {
		details["status_id"] = f.statusID
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
