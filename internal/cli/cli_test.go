package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/facets/internal/testutil"
)

const testConfig = "testdata/facets.yaml"

// execute runs the root command with args and returns stdout, stderr and
// the command error.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "facets", cmd.Use)
	assert.Contains(t, cmd.Long, "faceted")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"fetch", "parse", "humanize", "validate", "test"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "c", configFlag.Shorthand)

	require.NotNil(t, cmd.PersistentFlags().Lookup("db"))
}

func TestInvalidFormat(t *testing.T) {
	_, _, err := execute(t, "validate", "--format", "xml", "-c", testConfig)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}

func TestExitError(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"nil", nil, ExitSuccess, ""},
		{"plain error", assert.AnError, ExitFailure, assert.AnError.Error()},
		{"exit error", NewExitError(ExitCommandError, "bad path"), ExitCommandError, "bad path"},
		{"wrapped", WrapExitError(ExitFailure, "fetch failed", assert.AnError), ExitFailure, "fetch failed: "},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.wantCode, GetExitCode(tc.err))
			if tc.err != nil {
				assert.Contains(t, tc.err.Error(), tc.wantMsg)
			}
		})
	}
}

func TestOutputFormatter(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, f.Error("E201", "bad driver", map[string]string{"driver": "postgres"}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E201", resp.Error.Code)

	buf.Reset()
	f.Format = "text"
	require.NoError(t, f.Error("E201", "bad driver", nil))
	assert.Equal(t, "Error [E201]: bad driver\n", buf.String())

	buf.Reset()
	require.NoError(t, f.Success("plain", nil))
	assert.Equal(t, "plain\n", buf.String())
}

func TestParseModifierArgs(t *testing.T) {
	testCases := []struct {
		name    string
		args    []string
		want    map[string]any
		wantErr bool
	}{
		{"empty", nil, map[string]any{}, false},
		{"pairs", []string{"online=yes", "age=30..45"}, map[string]any{"online": "yes", "age": "30..45"}, false},
		{"repeated key", []string{"gender=f", "gender=m", "gender=x"}, map[string]any{"gender": []any{"f", "m", "x"}}, false},
		{"empty value", []string{"online="}, map[string]any{"online": ""}, false},
		{"value with equals", []string{"q=a=b"}, map[string]any{"q": "a=b"}, false},
		{"missing equals", []string{"online"}, nil, true},
		{"missing key", []string{"=yes"}, nil, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseModifierArgs(tc.args)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFetchCommand_JSON(t *testing.T) {
	db := testutil.PeopleDB(t)

	out, _, err := execute(t, "fetch", "people", "online=yes", "--limit", "5", "--page", "1",
		"-c", testConfig, "--db", db, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   FetchResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))

	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "people", resp.Data.Model)
	assert.Equal(t, testutil.PeopleOnline, resp.Data.Total)
	assert.Equal(t, 1, resp.Data.Page)
	assert.Equal(t, 5, resp.Data.Limit)
	assert.Equal(t, map[string]string{"online": "yes"}, resp.Data.Conditions)
	assert.Equal(t, map[string]string{"online": "yes"}, resp.Data.Humanized)
	assert.Equal(t, `SELECT * FROM "people" WHERE "is_online" = ? ORDER BY "id" ASC LIMIT 5 OFFSET 5`, resp.Data.SQL)
	assert.NotEmpty(t, resp.Data.ID)

	ids := make([]float64, len(resp.Data.Records))
	for i, r := range resp.Data.Records {
		ids[i] = r["id"].(float64)
	}
	assert.Equal(t, []float64{11, 13, 15, 17, 19}, ids)
}

func TestFetchCommand_Text(t *testing.T) {
	db := testutil.PeopleDB(t)

	out, _, err := execute(t, "fetch", "people", "-q", "male online tall", "--order", "-age",
		"-c", testConfig, "--db", db)
	require.NoError(t, err)

	assert.Contains(t, out, "people: 4 of 4\n")
	assert.Contains(t, out, "  gender: male\n")
	assert.Contains(t, out, "  online: yes\n")
	assert.Contains(t, out, "  unmatched: tall\n")
	assert.Contains(t, out, `ORDER BY "age" DESC, "id" ASC`)
	// key column first, then the rest sorted
	assert.Regexp(t, `(?m)^id\s+age\s+created\s+gender\s+is_online\s+name$`, out)
	assert.Regexp(t, `(?m)^21\s+41\s+2024-09-21\s+m\s+1\s+uma$`, out)
}

func TestFetchCommand_ExplicitModifierWinsOverFlag(t *testing.T) {
	db := testutil.PeopleDB(t)

	out, _, err := execute(t, "fetch", "people", "limit=2", "--limit", "10",
		"-c", testConfig, "--db", db, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Data FetchResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 2, resp.Data.Limit)
	assert.Len(t, resp.Data.Records, 2)
	assert.Equal(t, testutil.PeopleCount, resp.Data.Total)
}

func TestFetchCommand_Metrics(t *testing.T) {
	db := testutil.PeopleDB(t)

	_, stderr, err := execute(t, "fetch", "people", "gender=m", "--metrics", "-c", testConfig, "--db", db)
	require.NoError(t, err)

	assert.Contains(t, stderr, `facets_fetches_total{model="people"} 1`)
	assert.Contains(t, stderr, "facets_records_returned")
}

func TestFetchCommand_Errors(t *testing.T) {
	db := testutil.PeopleDB(t)
	emptyDB := filepath.Join(t.TempDir(), "empty.db")

	testCases := []struct {
		name     string
		args     []string
		wantCode int
		wantMsg  string
	}{
		{"no config", []string{"fetch", "people"}, ExitCommandError, "no configuration"},
		{"missing config", []string{"fetch", "people", "-c", "testdata/none.yaml"}, ExitCommandError, "failed to load configuration"},
		{"invalid config", []string{"fetch", "people", "-c", "testdata/invalid.yaml"}, ExitFailure, "invalid configuration"},
		{"unknown model", []string{"fetch", "ghosts", "-c", testConfig, "--db", db}, ExitCommandError, `unknown model "ghosts"`},
		{"bad modifier", []string{"fetch", "people", "online", "-c", testConfig, "--db", db}, ExitCommandError, "invalid arguments"},
		{"missing table", []string{"fetch", "people", "-c", testConfig, "--db", emptyDB}, ExitFailure, "fetch failed"},
		{"missing model argument", []string{"fetch", "-c", testConfig}, ExitFailure, "requires at least 1 arg"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := execute(t, tc.args...)
			require.Error(t, err)
			assert.Equal(t, tc.wantCode, GetExitCode(err))
			assert.Contains(t, err.Error(), tc.wantMsg)
		})
	}
}

func TestParseCommand(t *testing.T) {
	out, _, err := execute(t, "parse", "people", "Male", "online", "tall", "-c", testConfig)
	require.NoError(t, err)

	assert.Equal(t, "✓ Male -> gender=m\n✓ online -> online=true\n  tall\nremains: tall\n", out)
}

func TestParseCommand_JSON(t *testing.T) {
	out, _, err := execute(t, "parse", "people", "female élan", "-c", testConfig, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Data ParseResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))

	assert.Equal(t, "female élan", resp.Data.Query)
	require.Len(t, resp.Data.Words, 2)
	assert.Equal(t, map[string]string{"gender": "f"}, resp.Data.Words[0].Matches)
	assert.Equal(t, "elan", resp.Data.Words[1].Normalized)
	assert.Empty(t, resp.Data.Words[1].Matches)
	assert.Equal(t, map[string]string{"gender": "f"}, resp.Data.Conditions)
	assert.Equal(t, "élan", resp.Data.Remains)
}

func TestHumanizeCommand(t *testing.T) {
	testCases := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "set and boolean",
			args: []string{"humanize", "people", "online=1", "gender=f", "gender=m"},
			want: "online: yes\ngender: female, male\n",
		},
		{
			name: "query string",
			args: []string{"humanize", "people", "-q", "male online"},
			want: "online: yes\ngender: male\n",
		},
		{
			name: "explicit empty clears query match",
			args: []string{"humanize", "people", "online=", "-q", "online"},
			want: "no conditions\n",
		},
		{
			name: "false has no display form",
			args: []string{"humanize", "people", "online=no", "name=ann"},
			want: "name: ann\n",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, _, err := execute(t, append(tc.args, "-c", testConfig)...)
			require.NoError(t, err)
			assert.Equal(t, tc.want, out)
		})
	}
}

func TestValidateCommand(t *testing.T) {
	out, _, err := execute(t, "validate", "-c", testConfig)
	require.NoError(t, err)
	assert.Equal(t, "✓ Configuration valid (1 models, 5 criteria)\n", out)
}

func TestValidateCommand_Invalid(t *testing.T) {
	out, _, err := execute(t, "validate", "-c", "testdata/invalid.yaml", "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Data ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.False(t, resp.Data.Valid)

	codes := make([]string, len(resp.Data.Errors))
	for i, issue := range resp.Data.Errors {
		codes[i] = issue.Code
	}
	assert.Equal(t, []string{"E201", "E203", "E202"}, codes)
}

func TestValidateCommand_LoadErrors(t *testing.T) {
	out, _, err := execute(t, "validate", "-c", "testdata/none.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")

	_, _, err = execute(t, "validate")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestValidateCommand_Merge(t *testing.T) {
	extra := filepath.Join(t.TempDir(), "extra.cue")
	require.NoError(t, os.WriteFile(extra, []byte(`facets: people: city: "basic"`+"\n"), 0o644))

	out, _, err := execute(t, "validate", "-c", testConfig, "-c", extra)
	require.NoError(t, err)
	assert.Equal(t, "✓ Configuration valid (1 models, 6 criteria)\n", out)
}

func TestTestCommand(t *testing.T) {
	out, _, err := execute(t, "test", "testdata/scenarios")
	require.NoError(t, err)

	assert.Contains(t, out, "✓ online_people\n")
	assert.Contains(t, out, "Test Summary: 1 passed, 0 failed, 1 total")
}

func TestTestCommand_JSON(t *testing.T) {
	out, _, err := execute(t, "test", "testdata/scenarios/online_people.yaml", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Data.Passed)
	assert.Equal(t, 1, resp.Data.Total)
}

func TestTestCommand_Filter(t *testing.T) {
	out, _, err := execute(t, "test", "testdata/scenarios", "--filter", "nothing-*")
	require.NoError(t, err)
	assert.Equal(t, "No scenarios found.\n", out)
}

func TestTestCommand_NonExistentPath(t *testing.T) {
	_, _, err := execute(t, "test", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenario path not found")
}

// writeScenario copies the test configuration into dir and writes a
// scenario using it.
func writeScenario(t *testing.T, dir, name, body string) string {
	t.Helper()

	cfg, err := os.ReadFile(testConfig)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "facets.yaml"), cfg, 0o644))

	path := filepath.Join(dir, name+".yaml")
	content := "name: " + name + "\ndescription: test\nconfig: facets.yaml\n" + body
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const scenarioBody = `setup:
  - CREATE TABLE people (id INTEGER PRIMARY KEY, name TEXT, is_online INTEGER, gender TEXT, age INTEGER, created TEXT)
  - INSERT INTO people VALUES (1, 'ann', 1, 'f', 30, '2024-01-05'), (2, 'bob', 0, 'm', 41, '2024-02-10')
steps:
  - model: people
    modifiers: { online: "yes" }
    expect:
      total: %s
`

func TestTestCommand_Failure(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir, "wrong_total", fmtBody("2"))

	out, _, err := execute(t, "test", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ wrong_total\n")
	assert.Contains(t, out, "steps[0]: total: expected 2, got 1")
	assert.Contains(t, out, "Test Summary: 0 passed, 1 failed, 1 total")
}

func TestTestCommand_UpdateGolden(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir, "golden_roundtrip", fmtBody("1"))

	out, _, err := execute(t, "test", path, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ golden_roundtrip (golden updated)")

	goldenPath := filepath.Join(dir, "golden", "golden_roundtrip.golden")
	data, err := os.ReadFile(goldenPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"scenario_name": "golden_roundtrip"`)

	_, _, err = execute(t, "test", path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(goldenPath, []byte("{}\n"), 0o644))
	out, _, err = execute(t, "test", path)
	require.Error(t, err)
	assert.Contains(t, out, "golden file mismatch")
}

func fmtBody(total string) string {
	return fmt.Sprintf(scenarioBody, total)
}
