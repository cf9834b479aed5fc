// Package config provides Viper-based configuration loading for the
// shadowbox overlay service.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// ServerConfig holds the overlay HTTP listener settings.
type ServerConfig struct {
	// Host is the bind address for the overlay websocket listener.
	Host string `mapstructure:"host"`
	// Port is the TCP port for the overlay websocket listener.
	Port int `mapstructure:"port"`
}

// Addr returns the "host:port" listen address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// SimConfig holds the simulation loop settings.
type SimConfig struct {
	// TickRate is the fixed simulation frequency in ticks per second.
	TickRate int `mapstructure:"tick_rate"`
}

// MatchConfig holds the orchestrator tuning.
type MatchConfig struct {
	// TensionThresholdSec is the remaining track time below which the match
	// raises its exchange rate.
	TensionThresholdSec float64 `mapstructure:"tension_threshold_sec"`
	// TensionIntervalSec is the period of the extra scheduled exchanges.
	TensionIntervalSec float64 `mapstructure:"tension_interval_sec"`
	// KnockoutWindowSec is the remaining track time inside which the
	// scripted knockout fires.
	KnockoutWindowSec float64 `mapstructure:"knockout_window_sec"`
	// LosingSideBias is the probability the knockout falls on the fighter
	// with less stamina.
	LosingSideBias float64 `mapstructure:"losing_side_bias"`
	// RedName and BlueName label the two corners.
	RedName  string `mapstructure:"red_name"`
	BlueName string `mapstructure:"blue_name"`
	// RedPreset and BluePreset name the starting strategy per corner.
	RedPreset  string `mapstructure:"red_preset"`
	BluePreset string `mapstructure:"blue_preset"`
}

// CameraConfig holds the camera director tuning.
type CameraConfig struct {
	MaxShake             float64 `mapstructure:"max_shake"`
	MaxZoom              float64 `mapstructure:"max_zoom"`
	ShakeDecay           float64 `mapstructure:"shake_decay"`
	ZoomDamping          float64 `mapstructure:"zoom_damping"`
	NearKOWindowSec      float64 `mapstructure:"near_ko_window_sec"`
	HitShakeScale        float64 `mapstructure:"hit_shake_scale"`
	MitigatedShakeFactor float64 `mapstructure:"mitigated_shake_factor"`
	ReducedMotionFactor  float64 `mapstructure:"reduced_motion_factor"`
	DownbeatBump         float64 `mapstructure:"downbeat_bump"`
	ComboZoomNudge       float64 `mapstructure:"combo_zoom_nudge"`
}

// AIConfig holds the strategy-content settings.
type AIConfig struct {
	// PresetsDir is the directory of YAML strategy presets. Empty uses the
	// built-in presets only.
	PresetsDir string `mapstructure:"presets_dir"`
}

// ScriptingConfig holds the Lua tuning-script settings.
type ScriptingConfig struct {
	// ScriptsDir is the directory of tuning scripts. Empty disables
	// scripting.
	ScriptsDir string `mapstructure:"scripts_dir"`
	// InstructionLimit caps Lua opcodes per hook; 0 uses the sandbox
	// default.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// Config is the top-level application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Sim       SimConfig       `mapstructure:"sim"`
	Match     MatchConfig     `mapstructure:"match"`
	Camera    CameraConfig    `mapstructure:"camera"`
	AI        AIConfig        `mapstructure:"ai"`
	Scripting ScriptingConfig `mapstructure:"scripting"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error
// describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateServer(c.Server); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateSim(c.Sim); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateMatch(c.Match); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateCamera(c.Camera); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateScripting(c.Scripting); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateServer(s ServerConfig) error {
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %d", s.Port)
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

func validateSim(s SimConfig) error {
	if s.TickRate < 1 || s.TickRate > 240 {
		return fmt.Errorf("sim.tick_rate must be 1-240, got %d", s.TickRate)
	}
	return nil
}

func validateMatch(m MatchConfig) error {
	var errs []string
	if m.TensionThresholdSec <= 0 {
		errs = append(errs, fmt.Sprintf("match.tension_threshold_sec must be > 0, got %f", m.TensionThresholdSec))
	}
	if m.TensionIntervalSec <= 0 {
		errs = append(errs, fmt.Sprintf("match.tension_interval_sec must be > 0, got %f", m.TensionIntervalSec))
	}
	if m.KnockoutWindowSec <= 0 || m.KnockoutWindowSec > m.TensionThresholdSec {
		errs = append(errs, fmt.Sprintf("match.knockout_window_sec must be in (0, tension_threshold_sec], got %f", m.KnockoutWindowSec))
	}
	if m.LosingSideBias < 0 || m.LosingSideBias > 1 {
		errs = append(errs, fmt.Sprintf("match.losing_side_bias must be in [0,1], got %f", m.LosingSideBias))
	}
	if m.RedName == "" || m.BlueName == "" {
		errs = append(errs, "match.red_name and match.blue_name must not be empty")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateCamera(c CameraConfig) error {
	var errs []string
	if c.MaxShake <= 0 {
		errs = append(errs, fmt.Sprintf("camera.max_shake must be > 0, got %f", c.MaxShake))
	}
	if c.MaxZoom <= 0 {
		errs = append(errs, fmt.Sprintf("camera.max_zoom must be > 0, got %f", c.MaxZoom))
	}
	if c.ShakeDecay <= 0 {
		errs = append(errs, fmt.Sprintf("camera.shake_decay must be > 0, got %f", c.ShakeDecay))
	}
	if c.ZoomDamping <= 0 {
		errs = append(errs, fmt.Sprintf("camera.zoom_damping must be > 0, got %f", c.ZoomDamping))
	}
	if c.NearKOWindowSec <= 0 {
		errs = append(errs, fmt.Sprintf("camera.near_ko_window_sec must be > 0, got %f", c.NearKOWindowSec))
	}
	if c.MitigatedShakeFactor < 0 || c.MitigatedShakeFactor > 1 {
		errs = append(errs, fmt.Sprintf("camera.mitigated_shake_factor must be in [0,1], got %f", c.MitigatedShakeFactor))
	}
	if c.ReducedMotionFactor < 0 || c.ReducedMotionFactor > 1 {
		errs = append(errs, fmt.Sprintf("camera.reduced_motion_factor must be in [0,1], got %f", c.ReducedMotionFactor))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateScripting(s ScriptingConfig) error {
	if s.InstructionLimit < 0 {
		return fmt.Errorf("scripting.instruction_limit must be >= 0, got %d", s.InstructionLimit)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment
// variable overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with SHADOWBOX_ prefix
	v.SetEnvPrefix("SHADOWBOX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
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

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8420)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("sim.tick_rate", 60)

	v.SetDefault("match.tension_threshold_sec", 9.0)
	v.SetDefault("match.tension_interval_sec", 0.75)
	v.SetDefault("match.knockout_window_sec", 1.5)
	v.SetDefault("match.losing_side_bias", 0.7)
	v.SetDefault("match.red_name", "red")
	v.SetDefault("match.blue_name", "blue")
	v.SetDefault("match.red_preset", "balanced")
	v.SetDefault("match.blue_preset", "balanced")

	v.SetDefault("camera.max_shake", 1.0)
	v.SetDefault("camera.max_zoom", 1.0)
	v.SetDefault("camera.shake_decay", 5.0)
	v.SetDefault("camera.zoom_damping", 4.0)
	v.SetDefault("camera.near_ko_window_sec", 9.0)
	v.SetDefault("camera.hit_shake_scale", 0.8)
	v.SetDefault("camera.mitigated_shake_factor", 0.4)
	v.SetDefault("camera.reduced_motion_factor", 0.3)
	v.SetDefault("camera.downbeat_bump", 0.05)
	v.SetDefault("camera.combo_zoom_nudge", 0.15)

	v.SetDefault("ai.presets_dir", "content/strategies")

	v.SetDefault("scripting.scripts_dir", "content/scripts")
	v.SetDefault("scripting.instruction_limit", 0)
}
