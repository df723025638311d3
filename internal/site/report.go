package site

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// BuildOutcome is the typed enumeration of final build result states.
type BuildOutcome string

const (
	OutcomeSuccess  BuildOutcome = "success"
	OutcomeWarning  BuildOutcome = "warning"
	OutcomeFailed   BuildOutcome = "failed"
	OutcomeCanceled BuildOutcome = "canceled"
)

// BuildReport captures high-level metrics about one generation run.
type BuildReport struct {
	BuildID         string                   `json:"build_id"`
	Package         string                   `json:"package"`
	Start           time.Time                `json:"start"`
	End             time.Time                `json:"end"`
	Outcome         BuildOutcome             `json:"outcome"`
	StageDurations  map[string]time.Duration `json:"stage_durations"`
	StageErrorKinds map[string]string        `json:"stage_error_kinds,omitempty"`
	PagesWritten    int                      `json:"pages_written"`
	Functions       int                      `json:"functions"`
	Categories      int                      `json:"categories"`
	Errors          []string                 `json:"errors,omitempty"`
	Warnings        []string                 `json:"warnings,omitempty"`
}

func newBuildReport(buildID string) *BuildReport {
	return &BuildReport{
		BuildID:         buildID,
		Start:           time.Now(),
		StageDurations:  make(map[string]time.Duration),
		StageErrorKinds: make(map[string]string),
	}
}

func (r *BuildReport) addError(err error)   { r.Errors = append(r.Errors, err.Error()) }
func (r *BuildReport) addWarning(err error) { r.Warnings = append(r.Warnings, err.Error()) }

// deriveOutcome computes the overall outcome from accumulated errors and warnings.
func (r *BuildReport) deriveOutcome() {
	switch {
	case len(r.Errors) > 0:
		r.Outcome = OutcomeFailed
		for _, kind := range r.StageErrorKinds {
			if kind == string(StageErrorCanceled) {
				r.Outcome = OutcomeCanceled
			}
		}
	case len(r.Warnings) > 0:
		r.Outcome = OutcomeWarning
	default:
		r.Outcome = OutcomeSuccess
	}
}

func (r *BuildReport) finish() { r.End = time.Now() }

// Persist writes the report as build-report.json inside dir (best effort for callers).
func (r *BuildReport) Persist(dir string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal build report: %w", err)
	}
	path := filepath.Join(dir, "build-report.json")
	// #nosec G306 -- build reports are not secrets
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write build report: %w", err)
	}
	return nil
}
