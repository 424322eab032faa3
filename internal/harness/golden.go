package harness

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot captures the step traces of a scenario execution.
type Snapshot struct {
	ScenarioName string      `json:"scenario_name"`
	FetchID      string      `json:"fetch_id,omitempty"`
	Steps        []StepTrace `json:"steps"`
}

// RunWithGolden executes a scenario and compares its step traces against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the traces don't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return nil, err
	}

	if err := assertSnapshot(t, NewSnapshot(scenario, result)); err != nil {
		return nil, err
	}
	return result, nil
}

// NewSnapshot builds the snapshot of a scenario run.
func NewSnapshot(scenario *Scenario, result *Result) Snapshot {
	return Snapshot{ScenarioName: scenario.Name, FetchID: scenario.FetchID, Steps: result.Steps}
}

// MarshalSnapshot renders s as indented JSON, the golden file format.
func MarshalSnapshot(s Snapshot) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func assertSnapshot(t *testing.T, s Snapshot) error {
	t.Helper()

	data, err := MarshalSnapshot(s)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, s.ScenarioName, data)
	return nil
}
