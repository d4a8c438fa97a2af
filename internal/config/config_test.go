package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "java", cfg.Java)
	assert.True(t, cfg.Ledger)
	assert.Zero(t, cfg.MaxRounds)
	assert.NoError(t, cfg.Validate())
}

func TestParse_AllKeys(t *testing.T) {
	doc := `
modules_dir: /opt/idorch/modules
max_rounds: 50
parallelism: 4
step_timeout: 90s
java: /opt/jdk/bin/java
ledger: false
`
	cfg, err := Parse([]byte(doc), "test.yaml")
	require.NoError(t, err)

	assert.Equal(t, Config{
		ModulesDir:  "/opt/idorch/modules",
		MaxRounds:   50,
		Parallelism: 4,
		StepTimeout: 90 * time.Second,
		Java:        "/opt/jdk/bin/java",
		Ledger:      false,
	}, cfg)
}

func TestParse_EmptyDocumentKeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte(""), "empty.yaml")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse_PartialDocument(t *testing.T) {
	cfg, err := Parse([]byte("max_rounds: 7\n"), "partial.yaml")
	require.NoError(t, err)

	want := Default()
	want.MaxRounds = 7
	assert.Equal(t, want, cfg)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown key", "modules: /x\n"},
		{"negative rounds", "max_rounds: -1\n"},
		{"wrong type", "parallelism: many\n"},
		{"empty java", "java: \"\"\n"},
		{"bad duration", "step_timeout: soon\n"},
		{"not yaml", "max_rounds: [1\n"},
		{"ledger not bool", "ledger: 3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), "bad.yaml")
			require.Error(t, err)
			assert.True(t, IsValidationError(err), "got %T: %v", err, err)
			assert.Contains(t, err.Error(), "bad.yaml")
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "idorch.yaml")
	require.NoError(t, os.WriteFile(path, []byte("parallelism: 2\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Parallelism)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.False(t, IsValidationError(err))
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.StepTimeout = -time.Second
	assert.True(t, IsValidationError(cfg.Validate()))

	cfg = Default()
	cfg.Parallelism = -2
	assert.True(t, IsValidationError(cfg.Validate()))
}
