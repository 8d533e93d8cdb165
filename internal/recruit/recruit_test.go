package recruit

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"github.com/spigell/recruitdesk/internal/metrics"
)

func newTestBackend(t *testing.T, handler http.HandlerFunc) *Backend {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(zap.NewNop(), srv.URL, "secret-token")
}

func strPtr(s string) *string { return &s }

func TestClientsDecodesLegacyKeys(t *testing.T) {
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/clients" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret-token" {
			t.Errorf("unexpected authorization header %q", got)
		}
		if r.Header.Get(requestIDHeader) == "" {
			t.Errorf("expected request id header")
		}
		w.Write([]byte(`[{"cl_id":"c1","cl_name":"Acme"},{"client_id":"c2","client_name":"Globex"}]`))
	})

	clients, err := b.Clients(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := Clients{{ID: "c1", Name: "Acme"}, {ID: "c2", Name: "Globex"}}
	if diff := cmp.Diff(want, clients); diff != "" {
		t.Fatalf("clients mismatch (-want +got):\n%s", diff)
	}

	if c, ok := clients.FindByID("c2"); !ok || c.Name != "Globex" {
		t.Fatalf("expected to find c2, got %+v %v", c, ok)
	}
}

func TestRequirementsUsesConfiguredQuery(t *testing.T) {
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/positions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("client_id"); got != "c1" {
			t.Errorf("unexpected client_id %q", got)
		}
		w.Write([]byte(`[{"jd_id":"r1","client_id":"c1","filename":"backend.pdf","s3_link":"https://s3/backend.pdf","timestamp":"2024-03-01T10:20:30"}]`))
	})
	b.Paths.Requirements = "/positions"

	requirements, err := b.Requirements(context.Background(), "c1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := Requirements{{
		ID:           "r1",
		ClientID:     "c1",
		Filename:     "backend.pdf",
		DocumentLink: "https://s3/backend.pdf",
		CreatedAt:    time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC),
	}}
	if diff := cmp.Diff(want, requirements); diff != "" {
		t.Fatalf("requirements mismatch (-want +got):\n%s", diff)
	}
}

func TestResumesNullAndNumericStatus(t *testing.T) {
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("requirement_id"); got != "r1" {
			t.Errorf("unexpected requirement_id %q", got)
		}
		w.Write([]byte(`[
			{"resume_id":"x1","jd_id":"r1","filename":"a.pdf","s3_link":"l1","created_at":"2024-01-02T03:04:05Z","st_id":null},
			{"resume_id":42,"jd_id":"r1","filename":"b.pdf","s3_link":"l2","timestamp":"2024-01-03 03:04:05","st_id":7},
			{"resume_id":"x3","jd_id":"r1","filename":"c.pdf","s3_link":"l3","st_id":"  "}
		]`))
	})

	resumes, err := b.Resumes(context.Background(), "r1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := Resumes{
		{ID: "x1", RequirementID: "r1", Filename: "a.pdf", DocumentLink: "l1", CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
		{ID: "42", RequirementID: "r1", Filename: "b.pdf", DocumentLink: "l2", CreatedAt: time.Date(2024, 1, 3, 3, 4, 5, 0, time.UTC), StatusID: strPtr("7")},
		{ID: "x3", RequirementID: "r1", Filename: "c.pdf", DocumentLink: "l3"},
	}
	if diff := cmp.Diff(want, resumes); diff != "" {
		t.Fatalf("resumes mismatch (-want +got):\n%s", diff)
	}
}

func TestMalformedResponses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: `<html>oops</html>`},
		{name: "object instead of list", body: `{"resume_id":"x1"}`},
		{name: "missing id", body: `[{"jd_id":"r1","filename":"a.pdf"}]`},
		{name: "bad timestamp", body: `[{"resume_id":"x1","created_at":"yesterday"}]`},
		{name: "scalar item", body: `["x1"]`},
		{name: "null list", body: `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b := newTestBackend(t, func(w http.ResponseWriter, _ *http.Request) {
				w.Write([]byte(tt.body))
			})

			_, err := b.Resumes(context.Background(), "r1")

			var malformed *MalformedResponseError
			if !errors.As(err, &malformed) {
				t.Fatalf("expected MalformedResponseError, got %v", err)
			}
			if malformed.Endpoint != endpointResumes {
				t.Fatalf("unexpected endpoint %q", malformed.Endpoint)
			}
		})
	}
}

func TestListBodyLimit(t *testing.T) {
	b := newTestBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[{"cl_id":"c1","cl_name":"Acme"},{"cl_id":"c2","cl_name":"Globex"}]`))
	})
	b.listLimit = 16

	if _, err := b.Clients(context.Background()); err == nil || !strings.Contains(err.Error(), "body exceeds 16 bytes") {
		t.Fatalf("expected body limit error, got %v", err)
	}

	b.listLimit = maxListSize
	clients, err := b.Clients(context.Background())
	if err != nil || len(clients) != 2 {
		t.Fatalf("expected two clients, got %v %v", clients, err)
	}
}

func TestAPIErrorDetail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
		detail string
	}{
		{name: "fastapi detail", status: http.StatusNotFound, body: `{"detail":"Resume not found"}`, detail: "Resume not found"},
		{name: "validation list", status: http.StatusUnprocessableEntity, body: `{"detail":[{"msg":"field required"},{"msg":"value is not a valid integer"}]}`, detail: "field required; value is not a valid integer"},
		{name: "gin error", status: http.StatusBadRequest, body: `{"error":"Invalid JSON format"}`, detail: "Invalid JSON format"},
		{name: "plain text", status: http.StatusBadGateway, body: `Bad Gateway`, detail: ""},
		{name: "empty", status: http.StatusInternalServerError, body: ``, detail: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b := newTestBackend(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			err := b.UpdateResumeStatus(context.Background(), "x1", "s1")

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected APIError, got %v", err)
			}
			if apiErr.StatusCode != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, apiErr.StatusCode)
			}
			if apiErr.Detail != tt.detail {
				t.Fatalf("expected detail %q, got %q", tt.detail, apiErr.Detail)
			}
		})
	}
}

func TestUpdateResumeStatusRequest(t *testing.T) {
	var gotMethod, gotPath, gotStatus string

	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.EscapedPath()
		gotStatus = r.URL.Query().Get("status_id")
		w.Write([]byte(`{"message":"Resume status updated successfully"}`))
	})

	if err := b.UpdateResumeStatus(context.Background(), "x 1", "s-eligible"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotMethod != http.MethodPost {
		t.Fatalf("expected POST, got %s", gotMethod)
	}
	if gotPath != "/resumes/status/x%201" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotStatus != "s-eligible" {
		t.Fatalf("unexpected status_id %q", gotStatus)
	}
}

func TestUpdateResumeStatusRejectsEmptyIDs(t *testing.T) {
	calls := 0
	b := newTestBackend(t, func(http.ResponseWriter, *http.Request) { calls++ })

	if err := b.UpdateResumeStatus(context.Background(), "x1", " "); err == nil {
		t.Fatalf("expected error for empty status id")
	}
	if err := b.UpdateResumeStatus(context.Background(), "", "s1"); err == nil {
		t.Fatalf("expected error for empty resume id")
	}
	if calls != 0 {
		t.Fatalf("expected no requests, got %d", calls)
	}
}

func TestGzipBody(t *testing.T) {
	b := newTestBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		var buf bytes.Buffer
		gz := gzip.NewWriter(&buf)
		gz.Write([]byte(`[{"st_id":"s1","st_name":"Eligible"}]`))
		gz.Close()

		w.Header().Set("Content-Encoding", "gzip")
		w.Write(buf.Bytes())
	})

	statuses, err := b.Statuses(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if name, ok := statuses.Name("s1"); !ok || name != "Eligible" {
		t.Fatalf("expected Eligible, got %q %v", name, ok)
	}
}

func TestSummaryCounts(t *testing.T) {
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("start_date"); got != "2024-01-01" {
			t.Errorf("unexpected start_date %q", got)
		}
		if r.URL.Query().Has("end_date") {
			t.Errorf("did not expect end_date")
		}
		w.Write([]byte(`{"total_clients":3,"total_resumes":40,"total_jds":7}`))
	})

	start, _ := ParseDate("2024-01-01")
	summary, err := b.SummaryCounts(context.Background(), start, time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := &Summary{TotalClients: 3, TotalResumes: 40, TotalRequirements: 7}
	if diff := cmp.Diff(want, summary); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}

	end, _ := ParseDate("2023-12-31")
	if _, err := b.SummaryCounts(context.Background(), start, end); err == nil {
		t.Fatalf("expected error for inverted range")
	}
}

func TestDownloadResume(t *testing.T) {
	b := newTestBackend(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("resume_id"); got != "x1" {
			t.Errorf("unexpected resume_id %q", got)
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="jane-doe.pdf"`)
		w.Write([]byte("%PDF-1.4 fake"))
	})

	doc, err := b.DownloadResume(context.Background(), "x1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Filename != "jane-doe.pdf" {
		t.Fatalf("unexpected filename %q", doc.Filename)
	}
	if doc.ContentType != "application/pdf" {
		t.Fatalf("unexpected content type %q", doc.ContentType)
	}
	if string(doc.Data) != "%PDF-1.4 fake" {
		t.Fatalf("unexpected body %q", doc.Data)
	}
}

func TestRequestsAreCounted(t *testing.T) {
	b := newTestBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	b.Metrics = metrics.NewManager()

	if _, err := b.Clients(context.Background()); err == nil {
		t.Fatalf("expected error")
	}

	families, err := b.Metrics.Registry().Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	found := false
	for _, family := range families {
		if family.GetName() == "recruitdesk_api_requests_total" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected request counter to be registered and populated")
	}
}

func TestCancelledContext(t *testing.T) {
	b := newTestBackend(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[]`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := b.Clients(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestPathsMerge(t *testing.T) {
	merged := Paths{Requirements: " /positions ", ResumesQuery: "jd_id"}.Merge(DefaultPaths())

	if merged.Requirements != "/positions" {
		t.Fatalf("expected override, got %q", merged.Requirements)
	}
	if merged.ResumesQuery != "jd_id" {
		t.Fatalf("expected override, got %q", merged.ResumesQuery)
	}
	if merged.Clients != "/clients" {
		t.Fatalf("expected default, got %q", merged.Clients)
	}
}
