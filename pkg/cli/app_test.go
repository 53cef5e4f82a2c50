package cli

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mchmarny/propensity/pkg/config"
	"github.com/mchmarny/propensity/pkg/data"
	"github.com/mchmarny/propensity/pkg/faq"
	"github.com/mchmarny/propensity/pkg/score"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const sampleJSON = `{
	"age": 36,
	"annualIncome": 1200970,
	"expenses": 979021,
	"creditScore": 544,
	"websiteVisits": 48,
	"activePolicies": 5,
	"maturedPolicies": 0,
	"emailResponseRate": 0.9966,
	"appInteractions": 28,
	"feedbackScore": 9
}`

var sampleArgs = []string{
	"--age", "36",
	"--annual-income", "1200970",
	"--expenses", "979021",
	"--credit-score", "544",
	"--website-visits", "48",
	"--active-policies", "5",
	"--matured-policies", "0",
	"--email-response-rate", "0.9966",
	"--app-interactions", "28",
	"--feedback-score", "9",
}

// runApp runs a fresh app with an isolated config dir and returns its output.
func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	app := newApp()
	app.Writer = &buf
	app.ErrWriter = io.Discard

	argv := append([]string{appName, "--config", t.TempDir()}, args...)
	err := app.Run(context.Background(), argv)
	return buf.String(), err
}

func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestGetConfig_Missing(t *testing.T) {
	_, err := getConfig(context.Background())
	assert.ErrorIs(t, err, errMissingConfig)
}

func TestScoreCommand_Flags(t *testing.T) {
	out, err := runApp(t, append([]string{"score"}, sampleArgs...)...)
	require.NoError(t, err)

	var res scoreResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.InDelta(t, 60.34, res.Score, 1e-9)
	assert.Equal(t, score.BandMedium, res.Band)
	assert.Equal(t, score.ModelVersion, res.ModelVersion)
	assert.Nil(t, res.Breakdown)
}

func TestScoreCommand_Explain(t *testing.T) {
	out, err := runApp(t, append([]string{"score", "--explain"}, sampleArgs...)...)
	require.NoError(t, err)

	var res scoreResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.NotNil(t, res.Breakdown)
	assert.Len(t, res.Breakdown.Contributions, len(score.Features()))
}

func TestScoreCommand_File(t *testing.T) {
	path := writeTestFile(t, "customer.json", sampleJSON)
	out, err := runApp(t, "score", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"score": 60.34`)
}

func TestScoreCommand_PartialFlags(t *testing.T) {
	// unset fields are zero, so only age above its minimum contributes
	out, err := runApp(t, "score", "--age", "22", "--annual-income", "200000",
		"--expenses", "50000", "--credit-score", "300", "--feedback-score", "1")
	require.NoError(t, err)
	assert.Contains(t, out, `"score": 0`)
}

func TestScoreCommand_NoInput(t *testing.T) {
	_, err := runApp(t, "score")
	assert.Error(t, err)
}

func TestScoreCommand_YAML(t *testing.T) {
	out, err := runApp(t, append([]string{"--format", "yml", "score"}, sampleArgs...)...)
	require.NoError(t, err)

	var res map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &res))
	assert.InDelta(t, 60.34, res["score"], 1e-9)
	assert.Equal(t, score.BandMedium, res["band"])
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", formatJSON},
		{"json", formatJSON},
		{"JSON", formatJSON},
		{"yaml", formatYAML},
		{" yml ", formatYAML},
	}
	for _, tt := range tests {
		got, err := parseFormat(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := parseFormat("xml")
	assert.ErrorIs(t, err, errInvalidFormat)
}

func TestApp_InvalidFormat(t *testing.T) {
	_, err := runApp(t, "--format", "xml", "model")
	assert.ErrorIs(t, err, errInvalidFormat)

	t.Setenv(config.EnvFormat, "toml")
	_, err = runApp(t, "model")
	assert.ErrorIs(t, err, errInvalidFormat)
}

func TestModelCommand(t *testing.T) {
	out, err := runApp(t, "model")
	require.NoError(t, err)

	var res modelResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, score.ModelVersion, res.Version)
	require.Len(t, res.Features, len(score.Features()))
	assert.Equal(t, "age", res.Features[0].Name)

	sum := 0.0
	for _, f := range res.Features {
		sum += f.Weight
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestBatchCommand_File(t *testing.T) {
	path := writeTestFile(t, "customers.json", "["+sampleJSON+`, {"age": 22, "annualIncome": 200000, "expenses": 50000, "creditScore": 300, "feedbackScore": 1}]`)
	out, err := runApp(t, "batch", "--file", path, "--workers", "2")
	require.NoError(t, err)

	var res data.BatchResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, 2, res.Scored)
	assert.Zero(t, res.Rejected)
	require.Len(t, res.Results, 2)
	assert.Equal(t, "1", res.Results[0].ID)
	assert.InDelta(t, 60.34, res.Results[0].Score, 1e-9)
	assert.InDelta(t, 0.0, res.Results[1].Score, 1e-9)
	assert.Equal(t, score.BandLow, res.Results[1].Band)
}

func TestBatchCommand_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "customers.db")
	db, err := sql.Open(data.DriverSQLite, dbPath)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE prospect (
		id TEXT PRIMARY KEY,
		age INTEGER, annual_income REAL, expenses REAL, credit_score INTEGER,
		website_visits INTEGER, active_policies INTEGER, matured_policies INTEGER,
		email_response_rate REAL, app_interactions INTEGER, feedback_score INTEGER)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO prospect VALUES
		('a', 36, 1200970, 979021, 544, 48, 5, 0, 0.9966, 28, 9),
		('b', 60, 2500000, 1000000, 900, 50, 5, 3, 1, 100, 10)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	out, err := runApp(t, "batch", "--driver", "sqlite", "--dsn", dbPath, "--table", "prospect", "--limit", "1")
	require.NoError(t, err)

	var res data.BatchResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Results, 1)
	assert.Equal(t, "a", res.Results[0].ID)
	assert.InDelta(t, 60.34, res.Results[0].Score, 1e-9)
}

func TestBatchCommand_NoSource(t *testing.T) {
	_, err := runApp(t, "batch")
	assert.Error(t, err)
}

func TestBatchCommand_InvalidTable(t *testing.T) {
	_, err := runApp(t, "batch", "--dsn", filepath.Join(t.TempDir(), "x.db"), "--table", "customer; DROP TABLE customer")
	assert.Error(t, err)
}

func TestAskCommand(t *testing.T) {
	out, err := runApp(t, "ask", "how", "do", "I", "file", "a", "claim?")
	require.NoError(t, err)

	var res askResponse
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, faq.Answer("claim"), res.Answer)
}

func TestAskCommand_Empty(t *testing.T) {
	_, err := runApp(t, "ask")
	assert.Error(t, err)
}

func TestDashboardCommand(t *testing.T) {
	out, err := runApp(t, "dashboard")
	require.NoError(t, err)
	assert.Contains(t, out, `"phone_e164": "+919876543210"`)
	assert.Contains(t, out, `"score": 60.34`)
	assert.Contains(t, out, "SBI123456789")
}

func TestDashboardCommand_File(t *testing.T) {
	path := writeTestFile(t, "profile.yaml", strings.Join([]string{
		"name: Test Customer",
		"customerId: C-1",
		"customer:",
		"  age: 60",
		"  annualIncome: 2500000",
		"  expenses: 1000000",
		"  creditScore: 900",
		"  websiteVisits: 50",
		"  activePolicies: 5",
		"  maturedPolicies: 3",
		"  emailResponseRate: 1",
		"  appInteractions: 100",
		"  feedbackScore: 10",
	}, "\n"))

	out, err := runApp(t, "dashboard", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"customer_id": "C-1"`)
	assert.Contains(t, out, `"band": "high"`)
}

func TestDashboardCommand_InvalidProfile(t *testing.T) {
	path := writeTestFile(t, "profile.json", `{"name": "No ID"}`)
	_, err := runApp(t, "dashboard", "--file", path)
	assert.Error(t, err)

	path = writeTestFile(t, "profile.csv", "name\nx\n")
	_, err = runApp(t, "dashboard", "--file", path)
	assert.ErrorIs(t, err, data.ErrUnsupportedFormat)
}
