package harness

// TraceEvent is one scheduler event seen while the remote participant
// replays.
type TraceEvent struct {
	Tick  int64  `json:"tick"`
	Kind  string `json:"kind"` // "activated", "finished" or "cancelled"
	Label string `json:"label"`
}

// BatchRecord is a batch as the persistence service stored it.
type BatchRecord struct {
	Count    int64  `json:"count"`
	Hash     string `json:"hash"`
	Elements int    `json:"elements"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when the participants converged and every assertion held.
	Pass bool `json:"pass"`

	// Batches are the stored batches in count order.
	Batches []BatchRecord `json:"batches"`

	// Trace is the remote replay in event order.
	Trace []TraceEvent `json:"trace"`

	// Count and Turn are the remote participant's final counters; Ticks is
	// the scheduler tick at which the replay went idle.
	Count int64 `json:"count"`
	Turn  int   `json:"turn"`
	Ticks int64 `json:"ticks"`

	// Submits is the number of submission attempts, failed ones included.
	Submits int `json:"submits"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Batches: []BatchRecord{},
		Trace:   []TraceEvent{},
		Errors:  []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
