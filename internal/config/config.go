package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"

	"github.com/felixbrandt/saalplan/pkg/core/model"
	"github.com/felixbrandt/saalplan/pkg/core/planner"
)

// RoomOverride applies recurring adjustments to a room on dates matched by
// its RRULE: forcing the priority tag, changing the required staff count, or
// closing the room entirely (e.g. maintenance every first Monday).
type RoomOverride struct {
	RRule         string `yaml:"rrule" validate:"required"`
	RoomID        string `yaml:"roomId" validate:"required"`
	Priority      *bool  `yaml:"priority,omitempty"`
	RequiredStaff *int   `yaml:"requiredStaff,omitempty" validate:"omitempty,min=1"`
	Closed        bool   `yaml:"closed,omitempty"`
}

// Config represents the application configuration
type Config struct {
	// Departments are the known department codes
	Departments []string `yaml:"departments" validate:"required,min=1"`

	// Shifts maps shift code to its definition. Shift behavior is data
	// driven through this table; new shift types need no code changes.
	Shifts map[string]model.ShiftDef `yaml:"shifts" validate:"required"`

	// Weights overrides the built-in scoring weights when set
	Weights *planner.Weights `yaml:"weights,omitempty"`

	// ExclusionKeywords are name substrings that disqualify a staff member
	// from automated assignment
	ExclusionKeywords []string `yaml:"exclusionKeywords,omitempty"`

	// Timeline bounds are used only for display, never for scheduling
	TimelineStartHour int `yaml:"timelineStartHour,omitempty" validate:"omitempty,min=0,max=23"`
	TimelineEndHour   int `yaml:"timelineEndHour,omitempty" validate:"omitempty,min=1,max=24"`

	RoomOverrides []RoomOverride `yaml:"roomOverrides,omitempty" validate:"dive"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from saalplan_config.yaml
// It looks for the config file in the current directory first, then in the user's home directory
func Load() (*Config, error) {
	configPath, err := findConfigFile()
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct and checks rrule syntax
func Validate(cfg *Config) error {
	// Run struct validation
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	// Validate rrule syntax for each override
	for i, override := range cfg.RoomOverrides {
		if _, err := rrule.StrToRRule(override.RRule); err != nil {
			return fmt.Errorf("invalid rrule in roomOverrides[%d]: %w", i, err)
		}
	}

	return nil
}

// PlannerConfig converts the app configuration into the immutable snapshot
// the planning core consumes. Missing weights fall back to the defaults.
func (c *Config) PlannerConfig() *planner.Config {
	weights := planner.DefaultWeights()
	if c.Weights != nil {
		weights = *c.Weights
	}

	return &planner.Config{
		ShiftDefs:         c.Shifts,
		Weights:           weights,
		Departments:       c.Departments,
		ExclusionKeywords: c.ExclusionKeywords,
	}
}

// OverridesFor returns the room overrides whose recurrence rule matches the
// given date. Unparseable rules are skipped; Validate catches them at load
// time.
func (c *Config) OverridesFor(date time.Time) []RoomOverride {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24*time.Hour - time.Second)

	var matched []RoomOverride
	for _, override := range c.RoomOverrides {
		rule, err := rrule.StrToRRule(override.RRule)
		if err != nil {
			continue
		}
		if len(rule.Between(dayStart, dayEnd, true)) > 0 {
			matched = append(matched, override)
		}
	}
	return matched
}

// findConfigFile searches for saalplan_config.yaml in current directory and home directory
func findConfigFile() (string, error) {
	configFileName := "saalplan_config.yaml"

	// Check current directory
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("config file not found in current directory or home directory")
}
