package recruit

import (
	"context"
	"errors"
	"net/url"
	"time"
)

const (
	endpointSummary = "summary"
	summaryDate     = "2006-01-02"
)

// Summary holds the dashboard totals for a period.
type Summary struct {
	TotalClients      int `json:"total_clients"`
	TotalResumes      int `json:"total_resumes"`
	TotalRequirements int `json:"total_jds"`
}

var summaryAliases = map[string]string{
	"total_requirements": "total_jds",
}

// SummaryCounts returns totals created within [start, end]. Zero times leave the
// bound open.
func (b *Backend) SummaryCounts(ctx context.Context, start, end time.Time) (*Summary, error) {
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return nil, errors.New("end date is before start date")
	}

	q := url.Values{}
	if !start.IsZero() {
		q.Set("start_date", start.Format(summaryDate))
	}
	if !end.IsZero() {
		q.Set("end_date", end.Format(summaryDate))
	}

	obj, err := b.getObject(ctx, endpointSummary, b.Paths.Summary, q)
	if err != nil {
		return nil, err
	}

	var summary Summary
	if err := b.decodeRecord(obj, summaryAliases, &summary); err != nil {
		return nil, &MalformedResponseError{Endpoint: endpointSummary, Err: err}
	}

	return &summary, nil
}

// ParseDate parses the YYYY-MM-DD format the dashboard endpoint expects.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(summaryDate, s)
}
