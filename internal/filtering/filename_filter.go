package filtering

import (
	"context"
	"strings"

	"github.com/spigell/recruitdesk/internal/recruit"
)

type filenameFilter struct {
	needle  string
	enabled bool
}

// NewByFilename keeps résumés whose filename contains the substring, ignoring case.
func NewByFilename(substr string) Filter {
	needle := strings.ToLower(strings.TrimSpace(substr))
	return &filenameFilter{needle: needle, enabled: needle != ""}
}

func (f *filenameFilter) Name() string { return "filename" }

func (f *filenameFilter) IsEnabled() bool { return f.enabled }

func (f *filenameFilter) Apply(_ context.Context, list recruit.Resumes) (recruit.Resumes, Step, error) {
	out, step := keep(list, func(r recruit.Resume) bool {
		return strings.Contains(strings.ToLower(r.Filename), f.needle)
	})

	return out, step, nil
}

func (f *filenameFilter) Status() Status {
	if !f.enabled {
		return Status{Name: f.Name(), Reason: "no filename filter set"}
	}
	return Status{Name: f.Name(), Enabled: true, Details: map[string]string{"contains": f.needle}}
}
