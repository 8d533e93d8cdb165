// Package recruit is a client for the recruitment-agency backend API: clients,
// requirements (job positions), résumés, the status vocabulary, document uploads and
// downloads and the dashboard counts.
package recruit

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/spigell/recruitdesk/internal/metrics"
)

const (
	defaultUserAgent = "spigell/recruitdesk"
	defaultTimeout   = 15 * time.Second
	// Bodies bigger than these are refused instead of being buffered.
	maxDocumentSize = 20 << 20
	maxListSize     = 8 << 20
)

// Paths holds the backend routes. Deployments differ in naming (positions vs
// requirements, jd_id vs requirement_id), so every route and query key is configurable.
type Paths struct {
	Clients             string `mapstructure:"clients"`
	Requirements        string `mapstructure:"requirements"`
	RequirementsQuery   string `mapstructure:"requirements-query"`
	Resumes             string `mapstructure:"resumes"`
	ResumesQuery        string `mapstructure:"resumes-query"`
	Statuses            string `mapstructure:"statuses"`
	StatusUpdate        string `mapstructure:"status-update"`
	StatusUpdateQuery   string `mapstructure:"status-update-query"`
	Summary             string `mapstructure:"summary"`
	ResumeDownload      string `mapstructure:"resume-download"`
	RequirementDownload string `mapstructure:"requirement-download"`
	ResumeUpload        string `mapstructure:"resume-upload"`
	RequirementUpload   string `mapstructure:"requirement-upload"`
}

// DefaultPaths returns the routes of the documented backend contract.
func DefaultPaths() Paths {
	return Paths{
		Clients:             "/clients",
		Requirements:        "/requirements",
		RequirementsQuery:   "client_id",
		Resumes:             "/resumes",
		ResumesQuery:        "requirement_id",
		Statuses:            "/statuses",
		StatusUpdate:        "/resumes/status",
		StatusUpdateQuery:   "status_id",
		Summary:             "/summary/counts",
		ResumeDownload:      "/resumes/download",
		RequirementDownload: "/positions/download",
		ResumeUpload:        "/uploadResume",
		RequirementUpload:   "/uploadJD",
	}
}

// Merge fills empty routes from defaults.
func (p Paths) Merge(defaults Paths) Paths {
	pick := func(v, d string) string {
		if strings.TrimSpace(v) == "" {
			return d
		}
		return strings.TrimSpace(v)
	}

	return Paths{
		Clients:             pick(p.Clients, defaults.Clients),
		Requirements:        pick(p.Requirements, defaults.Requirements),
		RequirementsQuery:   pick(p.RequirementsQuery, defaults.RequirementsQuery),
		Resumes:             pick(p.Resumes, defaults.Resumes),
		ResumesQuery:        pick(p.ResumesQuery, defaults.ResumesQuery),
		Statuses:            pick(p.Statuses, defaults.Statuses),
		StatusUpdate:        pick(p.StatusUpdate, defaults.StatusUpdate),
		StatusUpdateQuery:   pick(p.StatusUpdateQuery, defaults.StatusUpdateQuery),
		Summary:             pick(p.Summary, defaults.Summary),
		ResumeDownload:      pick(p.ResumeDownload, defaults.ResumeDownload),
		RequirementDownload: pick(p.RequirementDownload, defaults.RequirementDownload),
		ResumeUpload:        pick(p.ResumeUpload, defaults.ResumeUpload),
		RequirementUpload:   pick(p.RequirementUpload, defaults.RequirementUpload),
	}
}

// Backend talks to the recruitment API. Every call takes its own context so a
// caller can cancel a request that a newer user action made obsolete.
type Backend struct {
	token      string
	logger     *zap.Logger
	validate   *validator.Validate
	listLimit  int64
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
	Paths      Paths
	Metrics    *metrics.Manager
}

// New creates a Backend for the API rooted at baseURL. The token may be empty for
// backends that sit behind a gateway doing authentication.
func New(logger *zap.Logger, baseURL, token string) *Backend {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Backend{
		token:    strings.TrimSpace(token),
		logger:   logger,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		listLimit: maxListSize,
		HTTPClient: &http.Client{
			Timeout: defaultTimeout,
		},
		UserAgent: defaultUserAgent,
		APIURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		Paths:     DefaultPaths(),
	}
}
