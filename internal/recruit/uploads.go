package recruit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/tidwall/gjson"
)

const (
	endpointResumeUpload      = "resume_upload"
	endpointRequirementUpload = "requirement_upload"
)

var ErrUnsupportedUpload = errors.New("only PDF and Word documents can be uploaded")

var uploadTypes = []string{
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// Upload is a résumé or job description file to send.
type Upload struct {
	Filename string
	Data     []byte
}

// UploadResult is what the backend says about an accepted upload.
type UploadResult struct {
	Filename string
	Message  string
}

// CheckUpload returns the detected MIME type of the file. Anything but a PDF or Word
// document is refused with ErrUnsupportedUpload.
func CheckUpload(u Upload) (string, error) {
	name := strings.TrimSpace(u.Filename)
	if name == "" {
		return "", errors.New("upload filename is required")
	}
	if len(u.Data) == 0 {
		return "", fmt.Errorf("%s: empty file", name)
	}
	if len(u.Data) > maxDocumentSize {
		return "", fmt.Errorf("%s: file exceeds %d bytes", name, maxDocumentSize)
	}

	mtype := mimetype.Detect(u.Data)
	for _, allowed := range uploadTypes {
		if mtype.Is(allowed) {
			return allowed, nil
		}
	}

	return "", fmt.Errorf("%w: %s is %s", ErrUnsupportedUpload, name, mtype.String())
}

// UploadResume files a résumé under the client's job description. Both are named the
// way the upload form names them: client name and job description filename.
func (b *Backend) UploadResume(ctx context.Context, clientName, requirementFilename string, file Upload) (*UploadResult, error) {
	clientName = strings.TrimSpace(clientName)
	requirementFilename = strings.TrimSpace(requirementFilename)
	if clientName == "" {
		return nil, errors.New("client name is required")
	}
	if requirementFilename == "" {
		return nil, errors.New("job description filename is required")
	}

	fields := []formField{
		{name: "client_name", value: clientName},
		{name: "jd_filename", value: requirementFilename},
	}

	return b.upload(ctx, endpointResumeUpload, b.Paths.ResumeUpload, fields, file)
}

// UploadRequirement adds a job description for the client.
func (b *Backend) UploadRequirement(ctx context.Context, clientName string, file Upload) (*UploadResult, error) {
	clientName = strings.TrimSpace(clientName)
	if clientName == "" {
		return nil, errors.New("client name is required")
	}

	return b.upload(ctx, endpointRequirementUpload, b.Paths.RequirementUpload, []formField{{name: "client_name", value: clientName}}, file)
}

type formField struct {
	name  string
	value string
}

func (b *Backend) upload(ctx context.Context, endpoint, path string, fields []formField, file Upload) (*UploadResult, error) {
	contentType, err := CheckUpload(file)
	if err != nil {
		return nil, err
	}

	filename := filepath.Base(strings.TrimSpace(file.Filename))

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, err
		}
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{
		"name":     "file",
		"filename": filename,
	}))
	header.Set("Content-Type", contentType)

	part, err := w.CreatePart(header)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	resp, err := b.send(ctx, http.MethodPost, endpoint, path, nil, &body, w.FormDataContentType())
	if err != nil {
		return nil, err
	}

	return uploadResult(resp.body, filename), nil
}

func uploadResult(body []byte, filename string) *UploadResult {
	result := &UploadResult{Filename: filename}
	if !gjson.ValidBytes(body) {
		return result
	}

	for _, key := range []string{"message", "detail"} {
		if v := gjson.GetBytes(body, key); v.Type == gjson.String {
			result.Message = v.String()
			break
		}
	}
	for _, key := range []string{"filename", "file_name"} {
		if v := gjson.GetBytes(body, key); v.Type == gjson.String && v.String() != "" {
			result.Filename = v.String()
			break
		}
	}

	return result
}
