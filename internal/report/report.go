// Package report renders a tracked user list as JSON, a text table or an XLSX workbook.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/naka-gawa/contrib-tracker/internal/domain"
	"github.com/naka-gawa/contrib-tracker/internal/usecase"
)

// Format selects a renderer.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
	FormatXLSX Format = "xlsx"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatText, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want json, text or xlsx)", s)
	}
}

// Report is the rendered view of a workflow.
type Report struct {
	Range   domain.DateRange     `json:"range"`
	Users   []domain.TrackedUser `json:"users"`
	Summary *usecase.Summary     `json:"summary,omitempty"`
}

// Write renders rep to w in the given format.
func Write(w io.Writer, format Format, rep Report) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, rep)
	case FormatText:
		return WriteText(w, rep)
	case FormatXLSX:
		return WriteXLSX(w, rep)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// WriteJSON writes a pretty-printed JSON document.
func WriteJSON(w io.Writer, rep Report) error {
	if rep.Users == nil {
		rep.Users = []domain.TrackedUser{}
	}
	jsonData, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report to JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(jsonData))
	return err
}

// WriteText writes an aligned table, one row per user.
func WriteText(w io.Writer, rep Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Range: %s\n\n", rep.Range)
	fmt.Fprintln(tw, strings.Join(columns, "\t"))
	for _, u := range rep.Users {
		fmt.Fprintln(tw, strings.Join(row(u), "\t"))
	}
	if rep.Summary != nil {
		fmt.Fprintln(tw)
		writeSummary(tw, *rep.Summary)
	}
	return tw.Flush()
}

// WriteSummary writes only the summary table.
func WriteSummary(w io.Writer, s usecase.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	writeSummary(tw, s)
	return tw.Flush()
}

func writeSummary(tw *tabwriter.Writer, s usecase.Summary) {
	fmt.Fprintf(tw, "Users: %d (fetched %d, failed %d, unfetched %d)\n", s.Users, s.Fetched, s.Failed, s.Unfetched)
	fmt.Fprintln(tw, "Counter\tTotal\tMean\tMedian\tMax")
	for _, c := range counters(s) {
		fmt.Fprintf(tw, "%s\t%d\t%.2f\t%.2f\t%d\n", c.name, c.Total, c.Mean, c.Median, c.Max)
	}
}

var columns = []string{"Username", "Commits", "Issues", "Pull requests", "Reviews", "Repositories", "Error"}

func row(u domain.TrackedUser) []string {
	switch u.State() {
	case domain.StateStats:
		s := u.Stats
		return []string{
			u.Username,
			fmt.Sprint(s.Commits),
			fmt.Sprint(s.Issues),
			fmt.Sprint(s.PullRequests),
			fmt.Sprint(s.PullRequestReviews),
			fmt.Sprint(s.Repositories),
			"",
		}
	case domain.StateError:
		return []string{u.Username, "-", "-", "-", "-", "-", u.Error}
	default:
		return []string{u.Username, "-", "-", "-", "-", "-", "not fetched"}
	}
}

type namedCounter struct {
	name string
	usecase.CounterSummary
}

func counters(s usecase.Summary) []namedCounter {
	return []namedCounter{
		{"Commits", s.Commits},
		{"Issues", s.Issues},
		{"Pull requests", s.PullRequests},
		{"Reviews", s.PullRequestReviews},
		{"Repositories", s.Repositories},
	}
}
