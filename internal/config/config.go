// Package config provides Viper-based configuration loading for the combat engine.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// BattlefieldConfig holds the 1-D battlefield geometry.
type BattlefieldConfig struct {
	// Length is the battlefield length in meters.
	Length int `mapstructure:"length"`
	// Margin is the dead zone at each end kept clear during placement.
	Margin int `mapstructure:"margin"`
	// TeamSpread is the coordinate delta applied between same-team combatants
	// at placement so they do not stack on one coordinate.
	TeamSpread int `mapstructure:"team_spread"`
}

// CombatConfig holds turn accounting settings.
type CombatConfig struct {
	// TurnDurationSeconds is the AP budget each combatant receives per turn.
	TurnDurationSeconds float64 `mapstructure:"turn_duration_seconds"`
	// MaxSkillRank caps weapon skill ranks for cost reduction.
	MaxSkillRank int `mapstructure:"max_skill_rank"`
}

// PlannerConfig holds tactical search settings.
type PlannerConfig struct {
	// NodeBudget is the soft cap on search nodes expanded per planning call.
	NodeBudget int `mapstructure:"node_budget"`
	// WeightsDir is the optional path of a single YAML heuristic weight file
	// (read by tactical.LoadWeightSet); it names a file, not a directory.
	WeightsDir string `mapstructure:"weights_dir"`
}

// ScriptingConfig holds Lua hook settings.
type ScriptingConfig struct {
	// Enabled toggles combat hook evaluation.
	Enabled bool `mapstructure:"enabled"`
	// ScriptsDir is the directory of Lua hook scripts; the simulator loads
	// them into the shared VM consulted for every location.
	ScriptsDir string `mapstructure:"scripts_dir"`
}

// Config is the top-level engine configuration.
type Config struct {
	Logging     LoggingConfig     `mapstructure:"logging"`
	Battlefield BattlefieldConfig `mapstructure:"battlefield"`
	Combat      CombatConfig      `mapstructure:"combat"`
	Planner     PlannerConfig     `mapstructure:"planner"`
	Scripting   ScriptingConfig   `mapstructure:"scripting"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateBattlefield(c.Battlefield); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateCombat(c.Combat); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validatePlanner(c.Planner); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateBattlefield(b BattlefieldConfig) error {
	var errs []string
	if b.Length < 10 {
		errs = append(errs, fmt.Sprintf("battlefield.length must be >= 10, got %d", b.Length))
	}
	if b.Margin < 0 || b.Margin*2 >= b.Length {
		errs = append(errs, fmt.Sprintf("battlefield.margin must be >= 0 and leave room between ends, got %d", b.Margin))
	}
	if b.TeamSpread < 1 {
		errs = append(errs, fmt.Sprintf("battlefield.team_spread must be >= 1, got %d", b.TeamSpread))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateCombat(c CombatConfig) error {
	var errs []string
	if c.TurnDurationSeconds <= 0 {
		errs = append(errs, fmt.Sprintf("combat.turn_duration_seconds must be > 0, got %v", c.TurnDurationSeconds))
	}
	if c.MaxSkillRank < 1 {
		errs = append(errs, fmt.Sprintf("combat.max_skill_rank must be >= 1, got %d", c.MaxSkillRank))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validatePlanner(p PlannerConfig) error {
	if p.NodeBudget < 10000 {
		return fmt.Errorf("planner.node_budget must be >= 10000, got %d", p.NodeBudget)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with FLUX_ prefix
	v.SetEnvPrefix("FLUX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Default returns the built-in configuration used when no file is supplied.
//
// Postcondition: Default().Validate() == nil.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic("config: unmarshalling defaults: " + err.Error())
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("battlefield.length", 300)
	v.SetDefault("battlefield.margin", 10)
	v.SetDefault("battlefield.team_spread", 2)

	v.SetDefault("combat.turn_duration_seconds", 6.0)
	v.SetDefault("combat.max_skill_rank", 100)

	v.SetDefault("planner.node_budget", 10000)
	v.SetDefault("planner.weights_dir", "")

	v.SetDefault("scripting.enabled", false)
	v.SetDefault("scripting.scripts_dir", "")
}
