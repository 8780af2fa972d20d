package domain

import "time"

// RunReport summarizes one stage run.
type RunReport struct {
	Stage       string         `json:"stage"`
	GeneratedAt time.Time      `json:"generated_at"`
	Input       string         `json:"input,omitempty"`
	Output      string         `json:"output,omitempty"`
	RowsRead    int            `json:"rows_read"`
	RowsWritten int            `json:"rows_written"`
	Skipped     map[string]int `json:"skipped,omitempty"`
	Genera      int            `json:"genera,omitempty"`
}

// NewRunReport starts a report for stage, stamped with the package clock.
func NewRunReport(stage string) RunReport {
	return RunReport{
		Stage:       stage,
		GeneratedAt: clock.Now().UTC(),
		Skipped:     make(map[string]int),
	}
}

// SkippedTotal sums all skip counts.
func (r RunReport) SkippedTotal() int {
	n := 0
	for _, c := range r.Skipped {
		n += c
	}
	return n
}
