package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spigell/recruitdesk/internal/ai"
	"github.com/spigell/recruitdesk/internal/filtering"
	"github.com/spigell/recruitdesk/internal/recruit"
	"github.com/spigell/recruitdesk/internal/workflow"
)

const dateLayout = "2006-01-02 15:04"

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func renderClients(w io.Writer, clients recruit.Clients) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME")
	for _, c := range clients {
		fmt.Fprintf(tw, "%s\t%s\n", c.ID, c.Name)
	}
	return tw.Flush()
}

func renderRequirements(w io.Writer, requirements recruit.Requirements) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tCREATED")
	for _, r := range requirements {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.ID, r.Name(), formatTime(r.CreatedAt))
	}
	return tw.Flush()
}

func renderStatuses(w io.Writer, statuses recruit.Statuses) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME")
	for _, s := range statuses {
		fmt.Fprintf(tw, "%s\t%s\n", s.ID, s.Name)
	}
	return tw.Flush()
}

func renderResumes(w io.Writer, resumes recruit.Resumes) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tFILENAME\tCREATED\tSTATUS")
	for _, r := range resumes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ID, r.Filename, formatTime(r.CreatedAt), r.StatusName)
	}
	return tw.Flush()
}

func renderSummary(w io.Writer, s *recruit.Summary) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "Clients\t%d\n", s.TotalClients)
	fmt.Fprintf(tw, "Requirements\t%d\n", s.TotalRequirements)
	fmt.Fprintf(tw, "Résumés\t%d\n", s.TotalResumes)
	return tw.Flush()
}

func renderQuestions(w io.Writer, pairs []ai.QA) {
	for i, qa := range pairs {
		fmt.Fprintf(w, "%d. %s\n   %s\n", i+1, qa.Question, qa.Answer)
	}
}

func resumeLabel(r recruit.Resume) string {
	return fmt.Sprintf("%s  %s  [%s]", formatTime(r.CreatedAt), r.Filename, r.StatusName)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(dateLayout)
}

// statusByInput finds a status by id or by case-insensitive name.
func statusByInput(statuses recruit.Statuses, input string) (recruit.Status, bool) {
	for _, s := range statuses {
		if s.ID == input {
			return s, true
		}
	}
	for _, s := range statuses {
		if strings.EqualFold(strings.TrimSpace(s.Name), strings.TrimSpace(input)) {
			return s, true
		}
	}
	return recruit.Status{}, false
}

func selectionLine(sel workflow.Selection, clients recruit.Clients, requirements recruit.Requirements) string {
	client := "-"
	if c, ok := clients.FindByID(sel.ClientID); ok {
		client = c.Name
	}
	requirement := "-"
	if r, ok := requirements.FindByID(sel.RequirementID); ok {
		requirement = r.Name()
	}
	return fmt.Sprintf("client: %s | requirement: %s", client, requirement)
}

// filterLine lists the enabled filters, naming statuses instead of ids.
func filterLine(filters []filtering.Status, statuses recruit.Statuses) string {
	parts := make([]string, 0, len(filters))
	for _, f := range filters {
		if !f.Enabled {
			continue
		}

		switch f.Name {
		case "status":
			value := f.Details["status_id"]
			if name, ok := statuses.Name(value); ok {
				value = name
			}
			parts = append(parts, "status: "+value)
		case "filename":
			parts = append(parts, fmt.Sprintf("filename contains: %q", f.Details["contains"]))
		default:
			parts = append(parts, f.Name)
		}
	}

	if len(parts) == 0 {
		return "filters: none"
	}
	return "filters: " + strings.Join(parts, ", ")
}
