package recruit

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
)

const (
	endpointResumeDownload      = "resume_download"
	endpointRequirementDownload = "requirement_download"
)

// Document is a downloaded résumé or job description file.
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
}

// DownloadResume fetches the résumé file through the backend.
func (b *Backend) DownloadResume(ctx context.Context, resumeID string) (*Document, error) {
	if strings.TrimSpace(resumeID) == "" {
		return nil, errors.New("resume id is required")
	}

	q := url.Values{}
	q.Set("resume_id", resumeID)

	return b.download(ctx, endpointResumeDownload, b.Paths.ResumeDownload, q)
}

// DownloadRequirement fetches the job description file of a requirement.
func (b *Backend) DownloadRequirement(ctx context.Context, requirementID string) (*Document, error) {
	if strings.TrimSpace(requirementID) == "" {
		return nil, errors.New("requirement id is required")
	}

	q := url.Values{}
	q.Set("jd_id", requirementID)

	return b.download(ctx, endpointRequirementDownload, b.Paths.RequirementDownload, q)
}

func (b *Backend) download(ctx context.Context, endpoint, p string, q url.Values) (*Document, error) {
	req, err := b.newRequest(ctx, http.MethodGet, p, q)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "*/*")

	resp, err := b.do(req, endpoint, maxDocumentSize)
	if err != nil {
		return nil, err
	}

	if len(resp.body) == 0 {
		return nil, &MalformedResponseError{Endpoint: endpoint, Err: errors.New("empty document")}
	}

	return &Document{
		Filename:    attachmentName(resp.header.Get("Content-Disposition")),
		ContentType: resp.header.Get("Content-Type"),
		Data:        resp.body,
	}, nil
}

func attachmentName(disposition string) string {
	if disposition == "" {
		return ""
	}

	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}

	name := strings.TrimSpace(params["filename"])
	if name == "" {
		return ""
	}

	return path.Base(name)
}
