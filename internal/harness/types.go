package harness

// StepTrace records what one step executed and returned.
type StepTrace struct {
	Model      string            `json:"model"`
	Modifiers  map[string]any    `json:"modifiers,omitempty"`
	SQL        string            `json:"sql"`
	Args       []any             `json:"args"`
	Conditions map[string]string `json:"conditions"`
	Humanized  map[string]string `json:"humanized"`
	Remains    string            `json:"remains"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	Keys       []any             `json:"keys"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all expectations match.
	Pass bool `json:"pass"`

	// Steps contains one trace per executed step.
	Steps []StepTrace `json:"steps"`

	// Errors contains expectation failures.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Steps:  []StepTrace{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddStep appends a step trace.
func (r *Result) AddStep(s StepTrace) {
	r.Steps = append(r.Steps, s)
}
