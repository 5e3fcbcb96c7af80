// Package config holds generator settings read from .safemath.yaml.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"go/token"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the name of the config file looked up from the working directory upwards.
const FileName = ".safemath.yaml"

// Config is the generator configuration.
type Config struct {
	// Tag is the build tag guarding annotated sources. Generated files carry its negation.
	Tag string `yaml:"tag"`

	// Output chooses where rewritten sources go.
	Output OutputMode `yaml:"output"`

	// Suffix replaces ".go" of a source file name in OutputSuffix mode.
	Suffix string `yaml:"suffix"`

	// DeriveFile is the name of the file with derived capability methods in every package.
	DeriveFile string `yaml:"derive_file"`

	// Runtime is the package rewritten code calls.
	Runtime Runtime `yaml:"runtime"`

	// TempPrefix starts names of temporaries introduced for compound assignments.
	TempPrefix string `yaml:"temp_prefix"`

	// ErrPrefix starts names invented for unnamed error results.
	ErrPrefix string `yaml:"err_prefix"`
}

// Runtime describes the checked arithmetic runtime package.
type Runtime struct {
	Path string `yaml:"path"`
	Name string `yaml:"name"`
}

// OutputMode describes varieties of rewritten output placement.
type OutputMode int

const (
	OutputInvalid OutputMode = iota

	// OutputSuffix writes <base><suffix> next to the source.
	OutputSuffix

	// OutputInplace overwrites the source file.
	OutputInplace
)

var outputModeValueMap = map[OutputMode]string{
	OutputSuffix:  "suffix",
	OutputInplace: "inplace",
}

func (m OutputMode) String() string {
	v, ok := outputModeValueMap[m]
	if !ok {
		return fmt.Sprintf("invalid(%d)", m)
	}

	return v
}

// UnmarshalText for setting values with configs, CLI, etc.
func (m *OutputMode) UnmarshalText(rawtext []byte) error {
	text := string(rawtext)
	for k, v := range outputModeValueMap {
		if v == text {
			*m = k
			return nil
		}
	}

	return fmt.Errorf("unknown output mode %q", text)
}

// MarshalText is the counterpart of UnmarshalText.
func (m OutputMode) MarshalText() ([]byte, error) {
	if _, ok := outputModeValueMap[m]; !ok {
		return nil, fmt.Errorf("invalid output mode %d", m)
	}
	return []byte(m.String()), nil
}

// Default returns the configuration used when no config file exists.
func Default() Config {
	return Config{
		Tag:        "safemath",
		Output:     OutputSuffix,
		Suffix:     "_safemath.go",
		DeriveFile: "safemath_derive.go",
		Runtime: Runtime{
			Path: "github.com/sirkon/safemath",
			Name: "safemath",
		},
		TempPrefix: "smtmp",
		ErrPrefix:  "smerr",
	}
}

// Parse decodes config data over the defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Load reads config from the given file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// Find looks for FileName in dir and its parents.
func Find(dir string) (string, bool) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// Validate checks settings make sense.
func (c Config) Validate() error {
	if !token.IsIdentifier(c.Tag) {
		return fmt.Errorf("tag %q is not a valid build tag", c.Tag)
	}
	if _, ok := outputModeValueMap[c.Output]; !ok {
		return errors.New("output mode must be set")
	}
	if c.Output == OutputSuffix && (!strings.HasSuffix(c.Suffix, ".go") || strings.HasSuffix(c.Suffix, "_test.go")) {
		return fmt.Errorf("suffix %q must end with .go and must not make test files", c.Suffix)
	}
	if !strings.HasSuffix(c.DeriveFile, ".go") || strings.ContainsRune(c.DeriveFile, filepath.Separator) {
		return fmt.Errorf("derive file %q must be a plain .go file name", c.DeriveFile)
	}
	if c.Runtime.Path == "" {
		return errors.New("runtime path must be set")
	}
	if !token.IsIdentifier(c.Runtime.Name) {
		return fmt.Errorf("runtime name %q is not an identifier", c.Runtime.Name)
	}
	for _, prefix := range []string{c.TempPrefix, c.ErrPrefix} {
		if !token.IsIdentifier(prefix) || prefix == "_" {
			return fmt.Errorf("name prefix %q is not an identifier", prefix)
		}
	}

	return nil
}
