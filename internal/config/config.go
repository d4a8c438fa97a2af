// Package config loads idorch settings from a YAML file.
//
// The file is parsed with yaml.v3 and then checked against an embedded CUE
// schema (closed definition, numeric bounds) before it is decoded. Unknown
// keys are errors.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// Config holds orchestration settings.
type Config struct {
	ModulesDir  string
	MaxRounds   int
	Parallelism int
	StepTimeout time.Duration
	Java        string
	Ledger      bool
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Java:   "java",
		Ledger: true,
	}
}

// ValidationError reports a configuration that does not satisfy the schema.
type ValidationError struct {
	Source string
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("invalid configuration: %s", e.Detail)
	}
	return fmt.Sprintf("invalid configuration in %s: %s", e.Source, e.Detail)
}

// IsValidationError reports whether err is or wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// fileConfig mirrors the schema; pointers distinguish absent keys.
type fileConfig struct {
	ModulesDir  *string `json:"modules_dir"`
	MaxRounds   *int    `json:"max_rounds"`
	Parallelism *int    `json:"parallelism"`
	StepTimeout *string `json:"step_timeout"`
	Java        *string `json:"java"`
	Ledger      *bool   `json:"ledger"`
}

// Load reads path and applies its keys over Default().
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data, path)
}

// Parse applies the YAML document data over Default(). source names the
// document in errors.
func Parse(data []byte, source string) (Config, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, &ValidationError{Source: source, Detail: err.Error()}
	}
	if raw == nil {
		raw = map[string]any{}
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Config{}, fmt.Errorf("compile config schema: %w", err)
	}

	v := schema.LookupPath(cue.ParsePath("#Config")).Unify(ctx.Encode(raw))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return Config{}, &ValidationError{Source: source, Detail: cueerrors.Details(err, nil)}
	}

	var fc fileConfig
	if err := v.Decode(&fc); err != nil {
		return Config{}, &ValidationError{Source: source, Detail: err.Error()}
	}

	cfg := Default()
	if fc.ModulesDir != nil {
		cfg.ModulesDir = *fc.ModulesDir
	}
	if fc.MaxRounds != nil {
		cfg.MaxRounds = *fc.MaxRounds
	}
	if fc.Parallelism != nil {
		cfg.Parallelism = *fc.Parallelism
	}
	if fc.StepTimeout != nil {
		d, err := time.ParseDuration(*fc.StepTimeout)
		if err != nil {
			return Config{}, &ValidationError{Source: source, Detail: fmt.Sprintf("step_timeout: %v", err)}
		}
		cfg.StepTimeout = d
	}
	if fc.Java != nil {
		cfg.Java = *fc.Java
	}
	if fc.Ledger != nil {
		cfg.Ledger = *fc.Ledger
	}

	if err := cfg.Validate(); err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			ve.Source = source
		}
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that flags can set after the file was loaded.
func (c Config) Validate() error {
	switch {
	case c.MaxRounds < 0:
		return &ValidationError{Detail: "max_rounds must be >= 0"}
	case c.Parallelism < 0:
		return &ValidationError{Detail: "parallelism must be >= 0"}
	case c.StepTimeout < 0:
		return &ValidationError{Detail: "step_timeout must be >= 0"}
	case c.Java == "":
		return &ValidationError{Detail: "java must not be empty"}
	}
	return nil
}
