package domain

import "time"

// AccountState enumerates the per-account tracking milestones.
type AccountState string

const (
	StateIdle        AccountState = "idle"
	StateLoggingIn   AccountState = "logging_in"
	StateDiscovering AccountState = "discovering"
	StateExtracting  AccountState = "extracting"
	StateDone        AccountState = "done"
	StateSkipped     AccountState = "skipped"
	StateFailed      AccountState = "failed"
)

// Terminal reports whether no further transition can happen.
func (s AccountState) Terminal() bool {
	return s == StateDone || s == StateSkipped || s == StateFailed
}

// AccountResult is the outcome of one account pass.
type AccountResult struct {
	Account    Account
	State      AccountState
	Categories int
	Records    []NormalizedRecord
	Err        error
}

// RunReport aggregates a full pass over all accounts.
type RunReport struct {
	StartedAt time.Time
	Results   []AccountResult
	Delivered bool
}

// Records flattens every account's records in account order.
func (r RunReport) Records() []NormalizedRecord {
	var all []NormalizedRecord
	for _, res := range r.Results {
		all = append(all, res.Records...)
	}
	return all
}

// Count returns how many accounts ended in the given state.
func (r RunReport) Count(state AccountState) int {
	n := 0
	for _, res := range r.Results {
		if res.State == state {
			n++
		}
	}
	return n
}
