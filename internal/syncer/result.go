// internal/syncer/result.go
package syncer

import "time"

// Stage is the position of a sync cycle in its state machine.
type Stage string

const (
	StageIdle       Stage = "idle"
	StageDraining   Stage = "draining"
	StagePulling    Stage = "pulling"
	StageReconciled Stage = "reconciled"
	StageError      Stage = "error"
)

// Result is the structured outcome of one sync cycle. A failed cycle still
// yields a well-formed result; errors are collected, never thrown past the
// engine boundary.
type Result struct {
	Stage      Stage     `json:"stage"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Drained            int `json:"drained"`
	DrainFailed        int `json:"drain_failed"`
	PulledItems        int `json:"pulled_items"`
	PulledTransactions int `json:"pulled_transactions"`

	Errors []string `json:"errors,omitempty"`
}

// OK reports whether the cycle reached the reconciled stage.
func (r *Result) OK() bool {
	return r.Stage == StageReconciled
}

func (r *Result) fail(err error) {
	r.Stage = StageError
	r.Errors = append(r.Errors, err.Error())
}
