package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.arcalot.io/assert"
	"go.arcalot.io/log/v2"
	"go.flow.arcalot.io/stepmonitor/config"
	"gopkg.in/yaml.v3"
)

var defaultLog = log.Config{
	Level:       log.LevelInfo,
	Destination: log.DestinationStdout,
}

var configLoadData = map[string]struct {
	input          string
	error          bool
	expectedOutput *config.Config
}{
	"empty": {
		input: "",
		expectedOutput: &config.Config{
			Log: defaultLog,
		},
	},
	"log-level": {
		input: `
log:
  level: debug
`,
		expectedOutput: &config.Config{
			Log: log.Config{
				Level:       log.LevelDebug,
				Destination: log.DestinationStdout,
			},
		},
	},
	"steps": {
		input: `
steps:
  - TestLogging
  - Error
`,
		expectedOutput: &config.Config{
			Log:   defaultLog,
			Steps: []string{"TestLogging", "Error"},
		},
	},
	"metrics": {
		input: `
metrics:
  listen: ":9090"
`,
		expectedOutput: &config.Config{
			Log:     defaultLog,
			Metrics: config.MetricsConfig{Listen: ":9090"},
		},
	},
	"invalid-log-level": {
		input: `
log:
  level: verbose
`,
		error: true,
	},
	"invalid-step-name": {
		input: `
steps:
  - "Test Logging"
`,
		error: true,
	},
}

func TestConfigLoad(t *testing.T) {
	for name, tc := range configLoadData {
		testCase := tc
		t.Run(name, func(t *testing.T) {
			data := map[string]any{}
			if err := yaml.Unmarshal([]byte(testCase.input), &data); err != nil {
				t.Fatal(err)
			}
			c, err := config.Load(data)
			if testCase.error {
				if err == nil {
					t.Fatal("No error returned")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			assert.Equals(t, c.Log, testCase.expectedOutput.Log)
			assert.Equals(t, c.Steps, testCase.expectedOutput.Steps)
			assert.Equals(t, c.Metrics, testCase.expectedOutput.Metrics)
		})
	}
}

func TestDefault(t *testing.T) {
	c := config.Default()
	assert.Equals(t, c.Log, defaultLog)
	assert.Equals(t, len(c.Steps), 0)
	assert.Equals(t, c.Metrics.Listen, "")
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	configFile := filepath.Join(dir, "monitor.yaml")
	assert.NoError(t, os.WriteFile(configFile, []byte("steps:\n  - Error\nmetrics:\n  listen: \":9090\"\n"), 0o600))
	c, err := config.LoadFile(configFile)
	assert.NoError(t, err)
	assert.Equals(t, c.Log, defaultLog)
	assert.Equals(t, c.Steps, []string{"Error"})
	assert.Equals(t, c.Metrics.Listen, ":9090")

	emptyFile := filepath.Join(dir, "empty.yaml")
	assert.NoError(t, os.WriteFile(emptyFile, []byte(""), 0o600))
	c, err = config.LoadFile(emptyFile)
	assert.NoError(t, err)
	assert.Equals(t, c.Log, defaultLog)

	invalidFile := filepath.Join(dir, "invalid.yaml")
	assert.NoError(t, os.WriteFile(invalidFile, []byte("log: [unterminated"), 0o600))
	_, err = config.LoadFile(invalidFile)
	assert.Error(t, err)

	_, err = config.LoadFile(filepath.Join(dir, "missing.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Incorrect error returned: %v", err)
	}
}
