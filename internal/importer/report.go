package importer

import "fmt"

// Status is the terminal state of a run as seen by callers.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Report is the outcome of one import run. Errors holds at most the
// configured cap of messages plus one summary line; ErrorCount is exact.
type Report struct {
	Kind       string   `json:"kind"`
	Status     Status   `json:"status"`
	TotalRows  int      `json:"totalRows"`
	Imported   int      `json:"imported"`
	Created    int      `json:"created"`
	Updated    int      `json:"updated"`
	Skipped    int      `json:"skipped"`
	ErrorCount int      `json:"errorCount"`
	Errors     []string `json:"errors"`
	DryRun     bool     `json:"dryRun,omitempty"`

	errorCap int
}

func newReport(kind string, errorCap int) *Report {
	return &Report{
		Kind:     kind,
		Status:   StatusFailed,
		Errors:   []string{},
		errorCap: errorCap,
	}
}

// Succeeded reports whether the run committed.
func (r Report) Succeeded() bool {
	return r.Status == StatusSucceeded
}

func (r *Report) addError(message string) {
	r.ErrorCount++
	if len(r.Errors) < r.errorCap {
		r.Errors = append(r.Errors, message)
	}
}

func (r *Report) recordAction(action Action) {
	r.Imported++
	switch action {
	case ActionCreated:
		r.Created++
	case ActionUpdated:
		r.Updated++
	}
}

// discardWrites zeroes the persisted counters after a rollback.
func (r *Report) discardWrites() {
	r.Imported = 0
	r.Created = 0
	r.Updated = 0
}

// finalize appends the elision line when messages were dropped past the cap.
func (r *Report) finalize() {
	if elided := r.ErrorCount - len(r.Errors); elided > 0 {
		r.Errors = append(r.Errors, fmt.Sprintf("... dan %d kesalahan lainnya", elided))
	}
}
