// Package report assembles the human-readable run report.
package report

import (
	"errors"
	"fmt"
	"strings"
)

type Status string

const (
	StatusStarted Status = "Started"
	StatusSuccess Status = "Success"
	StatusSkipped Status = "Skipped"
	StatusFailed  Status = "Failed"
	StatusUnknown Status = "Unknown"
)

// Emoji used in titles, one per status.
func (s Status) Emoji() string {
	switch s {
	case StatusStarted:
		return "🚀"
	case StatusSuccess:
		return "✅"
	case StatusSkipped:
		return "⏸️"
	case StatusFailed:
		return "🔴"
	default:
		return "❔"
	}
}

// ErrFinalized is returned when a finalized report is modified again.
var ErrFinalized = errors.New("report already finalized")

type Section struct {
	Heading string
	Lines   []string
}

// RunReport is built incrementally during a run and finalized exactly once.
type RunReport struct {
	Title    string
	Sections []Section
	Status   Status

	finalized bool
}

func New(title string) *RunReport {
	return &RunReport{Title: title, Status: StatusStarted}
}

// Add appends a section. Lines are kept in order.
func (r *RunReport) Add(heading string, lines ...string) {
	if r.finalized {
		return
	}
	r.Sections = append(r.Sections, Section{Heading: heading, Lines: lines})
}

// Finalize fixes the status. A second call returns ErrFinalized and leaves
// the report unchanged.
func (r *RunReport) Finalize(status Status) error {
	if r.finalized {
		return ErrFinalized
	}
	if status == "" || status == StatusStarted {
		status = StatusUnknown
	}
	r.Status = status
	r.finalized = true
	return nil
}

func (r *RunReport) Finalized() bool { return r.finalized }

// FullTitle is the title prefixed with the status.
func (r *RunReport) FullTitle() string {
	return fmt.Sprintf("%s %s: %s", r.Status.Emoji(), r.Title, r.Status)
}

// Markdown renders the body.
func (r *RunReport) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Status:** %s %s\n", r.Status.Emoji(), r.Status)
	for _, s := range r.Sections {
		fmt.Fprintf(&b, "\n### %s\n", s.Heading)
		for _, l := range s.Lines {
			fmt.Fprintf(&b, "- %s\n", l)
		}
	}
	return b.String()
}
