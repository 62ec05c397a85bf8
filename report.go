package soundextract

import (
	"errors"
	"fmt"
	"io"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Report summarizes one export run.
type Report struct {
	RunID       string         `json:"run_id"`
	Source      string         `json:"source,omitempty"`
	Destination string         `json:"destination,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	Exported    int            `json:"exported"`
	Failed      int            `json:"failed"`
	Unsupported int            `json:"unsupported"`
	Unresolved  int            `json:"unresolved"`
	Invalid     int            `json:"invalid"`
	Kinds       map[string]int `json:"kinds,omitempty"`
	Entries     []ReportEntry  `json:"entries"`
}

// ReportEntry is the outcome of one entry.
type ReportEntry struct {
	Name   string     `json:"name"`
	ID     string     `json:"id"`
	Kind   FormatKind `json:"kind"`
	Path   string     `json:"path,omitempty"`
	Status string     `json:"status"`
	Error  string     `json:"error,omitempty"`
}

// Entry statuses.
const (
	StatusExported    = "exported"
	StatusUnsupported = "unsupported"
	StatusUnresolved  = "unresolved"
	StatusInvalid     = "invalid"
	StatusFailed      = "failed"
)

// NewRunID returns a random identifier for an export run.
func NewRunID() string {
	return uuid.NewString()
}

// NewReport builds a report from outcomes. An empty runID gets a new one.
func NewReport(runID string, outcomes []Outcome) *Report {
	if runID == "" {
		runID = NewRunID()
	}

	r := &Report{
		RunID:     runID,
		CreatedAt: time.Now().UTC(),
		Entries:   make([]ReportEntry, 0, len(outcomes)),
		Kinds:     make(map[string]int),
	}

	for _, o := range outcomes {
		status := Status(o.Err)

		switch status {
		case StatusExported:
			r.Exported++
			r.Kinds[o.Kind.String()]++
		case StatusUnsupported:
			r.Unsupported++
		case StatusUnresolved:
			r.Unresolved++
		case StatusInvalid:
			r.Invalid++
		}

		if status != StatusExported {
			r.Failed++
		}

		entry := ReportEntry{
			Name:   o.Entry.Name,
			ID:     o.Entry.ID,
			Kind:   o.Kind,
			Path:   o.Path,
			Status: status,
		}
		if o.Err != nil {
			entry.Error = o.Err.Error()
		}

		r.Entries = append(r.Entries, entry)
	}

	return r
}

// Status classifies an export error.
func Status(err error) string {
	switch {
	case err == nil:
		return StatusExported
	case errors.Is(err, ErrUnsupportedFormat):
		return StatusUnsupported
	case errors.Is(err, ErrUnresolved):
		return StatusUnresolved
	case errors.Is(err, ErrInvalidContainer):
		return StatusInvalid
	default:
		return StatusFailed
	}
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	b = append(b, '\n')

	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}
