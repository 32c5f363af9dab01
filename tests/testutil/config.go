// Package testutil provides test helpers shared across ssmrotate packages:
// a configuration file builder and a log capturing logger.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/systmms/ssmrotate/internal/config"
	"gopkg.in/yaml.v3"
)

// TestConfigBuilder builds ssmrotate.yaml files for tests.
//
// Example usage:
//
//	cfg := NewTestConfig(t).
//	    WithRegion("eu-west-1").
//	    WithRotation("demo", config.Rotation{Parameter: "/rotation/demo"}).
//	    Build()
type TestConfigBuilder struct {
	def  *config.Definition
	path string
	t    *testing.T
}

// NewTestConfig starts from an empty version 0 configuration in a temp dir
func NewTestConfig(t *testing.T) *TestConfigBuilder {
	t.Helper()

	return &TestConfigBuilder{
		def:  &config.Definition{Rotations: make(map[string]config.Rotation)},
		path: filepath.Join(t.TempDir(), config.DefaultPath),
		t:    t,
	}
}

// WithRegion sets aws.region
func (b *TestConfigBuilder) WithRegion(region string) *TestConfigBuilder {
	b.def.AWS.Region = region
	return b
}

// WithRotation adds a rotation target
func (b *TestConfigBuilder) WithRotation(name string, r config.Rotation) *TestConfigBuilder {
	b.def.Rotations[name] = r
	return b
}

// Write marshals the definition to disk and returns the file path
func (b *TestConfigBuilder) Write() string {
	b.t.Helper()

	data, err := yaml.Marshal(b.def)
	if err != nil {
		b.t.Fatalf("Failed to marshal config: %v", err)
	}
	if err := os.WriteFile(b.path, data, 0644); err != nil {
		b.t.Fatalf("Failed to write config: %v", err)
	}
	return b.path
}

// Build writes the file and loads it through config.Config
func (b *TestConfigBuilder) Build() *config.Config {
	b.t.Helper()

	cfg := &config.Config{Path: b.Write(), Logger: NewTestLogger(b.t, false).Logger}
	if err := cfg.Load(); err != nil {
		b.t.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}
