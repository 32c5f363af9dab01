package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	dserrors "github.com/systmms/ssmrotate/internal/errors"
	"github.com/systmms/ssmrotate/internal/logging"
	"github.com/systmms/ssmrotate/internal/providers"
	"github.com/systmms/ssmrotate/pkg/rotation"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where the CLI looks for its configuration
const DefaultPath = "ssmrotate.yaml"

// Config holds the runtime configuration
type Config struct {
	Path       string
	Logger     *logging.Logger
	Definition *Definition
}

// Definition represents the ssmrotate.yaml structure
type Definition struct {
	Version   int                 `yaml:"version" json:"version"`
	AWS       AWSSettings         `yaml:"aws,omitempty" json:"aws,omitempty"`
	Rotations map[string]Rotation `yaml:"rotations,omitempty" json:"rotations,omitempty"`
}

// AWSSettings describes how to build the AWS session
type AWSSettings struct {
	Region     string `yaml:"region,omitempty" json:"region,omitempty"`
	Profile    string `yaml:"profile,omitempty" json:"profile,omitempty"`
	AssumeRole string `yaml:"assume_role,omitempty" json:"assume_role,omitempty"`
	ExternalID string `yaml:"external_id,omitempty" json:"external_id,omitempty"`
	Endpoint   string `yaml:"endpoint,omitempty" json:"endpoint,omitempty"`
}

// Rotation is a named rotation target
type Rotation struct {
	Parameter string `yaml:"parameter" json:"parameter"`
	Generator string `yaml:"generator,omitempty" json:"generator,omitempty"`
	Length    int    `yaml:"length,omitempty" json:"length,omitempty"`
	Charset   string `yaml:"charset,omitempty" json:"charset,omitempty"`
	Every     string `yaml:"every,omitempty" json:"every,omitempty"`
}

// Load reads, parses and validates the configuration file
func (c *Config) Load() error {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return dserrors.ConfigError{
				Field:      "path",
				Value:      c.Path,
				Message:    "configuration file not found",
				Suggestion: "Create ssmrotate.yaml or pass --config",
			}
		}
		return dserrors.UserError{
			Message:    "Failed to read configuration file",
			Details:    err.Error(),
			Suggestion: "Check file permissions and path",
			Err:        err,
		}
	}

	return c.parse(data)
}

func (c *Config) parse(data []byte) error {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return dserrors.ConfigError{
			Message:    "invalid YAML syntax in configuration file",
			Suggestion: "Check for indentation errors, missing quotes, or invalid characters. Use a YAML validator",
		}
	}

	if def.Version != 0 {
		return dserrors.ConfigError{
			Field:      "version",
			Value:      def.Version,
			Message:    "unsupported configuration version",
			Suggestion: "Set 'version: 0' at the top of your ssmrotate.yaml file",
		}
	}

	if err := validateDocument(data); err != nil {
		return err
	}

	for name, r := range def.Rotations {
		if _, err := r.Interval(); err != nil {
			return dserrors.ConfigError{
				Field:      "rotations." + name + ".every",
				Value:      r.Every,
				Message:    "invalid duration",
				Suggestion: "Use a Go duration such as 5m or 1h",
			}
		}
	}

	c.Definition = &def
	if c.Logger != nil {
		c.Logger.Debug("Loaded %d rotation targets from %s", len(def.Rotations), c.Path)
	}
	return nil
}

// validateDocument checks the raw YAML document against the embedded schema
func validateDocument(data []byte) error {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to decode configuration for validation: %w", err)
	}
	if doc == nil {
		doc = map[string]interface{}{}
	}

	jsonData, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration for validation: %w", err)
	}

	problems, err := validateJSON(jsonData)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if len(problems) > 0 {
		return dserrors.ConfigError{
			Message:    "configuration does not match schema:\n  - " + strings.Join(problems, "\n  - "),
			Suggestion: "Check field names and types in ssmrotate.yaml",
		}
	}
	return nil
}

// GetRotation returns a named rotation target
func (c *Config) GetRotation(name string) (Rotation, error) {
	if c.Definition == nil {
		return Rotation{}, dserrors.UserError{
			Message:    "Configuration not loaded",
			Suggestion: "This is an internal error. Please report it",
		}
	}

	r, ok := c.Definition.Rotations[name]
	if !ok {
		suggestion := "Add the target to the 'rotations:' section of your ssmrotate.yaml"
		if available := c.RotationNames(); len(available) > 0 {
			suggestion = fmt.Sprintf("Available rotation targets: %s", strings.Join(available, ", "))
		}
		return Rotation{}, dserrors.ConfigError{
			Field:      "rotation",
			Value:      name,
			Message:    "rotation target not found",
			Suggestion: suggestion,
		}
	}
	return r, nil
}

// RotationNames returns the configured rotation targets, sorted
func (c *Config) RotationNames() []string {
	if c.Definition == nil {
		return nil
	}
	names := make([]string, 0, len(c.Definition.Rotations))
	for name := range c.Definition.Rotations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AWSConfig returns session settings. Flags override the file, so region
// and profile are passed in by the caller and only fill gaps.
func (c *Config) AWSConfig(region, profile string) providers.AWSConfig {
	var s AWSSettings
	if c.Definition != nil {
		s = c.Definition.AWS
	}
	if region != "" {
		s.Region = region
	}
	if profile != "" {
		s.Profile = profile
	}
	return providers.AWSConfig{
		Region:          s.Region,
		Profile:         s.Profile,
		AssumeRole:      s.AssumeRole,
		ExternalID:      s.ExternalID,
		RoleSessionName: "ssmrotate",
		Endpoint:        s.Endpoint,
	}
}

// Interval returns the rotation interval, defaulting to five minutes
func (r Rotation) Interval() (time.Duration, error) {
	if r.Every == "" {
		return rotation.DefaultInterval, nil
	}
	d, err := time.ParseDuration(r.Every)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("interval must be positive, got %s", d)
	}
	return d, nil
}

// GeneratorConfig converts the target into generator settings
func (r Rotation) GeneratorConfig() rotation.GeneratorConfig {
	return rotation.GeneratorConfig{
		Kind:    r.Generator,
		Length:  r.Length,
		Charset: r.Charset,
	}
}
