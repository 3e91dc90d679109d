package config

import (
	"fmt"
	"io/ioutil"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Fallbacks applied to zero-valued bootstrap fields.
const (
	DefaultRateHz           = 10
	DefaultDebounceWindowMs = 400
	DefaultDisplayLines     = 10
	DefaultMonitorPort      = 8080
)

// BootstrapConfig holds the initial configuration loaded from teleop_config.yaml
type BootstrapConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Control ControlConfig `yaml:"control"`
	Monitor MonitorConfig `yaml:"monitor"`
	Data    DataConfig    `yaml:"data"`
}

// LoggingConfig holds logging settings from bootstrap
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogPath string `yaml:"log_path,omitempty"`
}

// ControlConfig holds control-loop settings from bootstrap
type ControlConfig struct {
	RateHz           int `yaml:"rate_hz"`
	DebounceWindowMs int `yaml:"debounce_window_ms"`
	DisplayLines     int `yaml:"display_lines"`
}

// DebounceWindow returns the press debounce window as a duration.
func (c ControlConfig) DebounceWindow() time.Duration {
	return time.Duration(c.DebounceWindowMs) * time.Millisecond
}

// MonitorConfig holds the optional HTTP monitor settings from bootstrap
type MonitorConfig struct {
	Enabled  bool `yaml:"enabled"`
	HTTPPort int  `yaml:"http_port"`
}

// DataConfig holds data directory settings from bootstrap
type DataConfig struct {
	Directory           string `yaml:"directory"`
	RobotConfigFilename string `yaml:"robot_config_file"`
}

// RobotConfigPath joins the data directory and the robot profile filename.
func (d DataConfig) RobotConfigPath() string {
	return filepath.Join(d.Directory, d.RobotConfigFilename)
}

// LoadBootstrapConfig loads the bootstrap configuration from teleop_config.yaml
func LoadBootstrapConfig(configDir string) (*BootstrapConfig, error) {
	bootstrapConfigPath := filepath.Join(configDir, "teleop_config.yaml")

	data, err := ioutil.ReadFile(bootstrapConfigPath)
	if err != nil {
		return nil, fmt.Errorf("error reading bootstrap config file '%s': %w", bootstrapConfigPath, err)
	}

	var bootstrapCfg BootstrapConfig
	if err := yaml.Unmarshal(data, &bootstrapCfg); err != nil {
		return nil, fmt.Errorf("error parsing bootstrap config file '%s': %w", bootstrapConfigPath, err)
	}

	if bootstrapCfg.Data.Directory == "" {
		return nil, fmt.Errorf("missing required field in bootstrap config: data.directory")
	}
	if bootstrapCfg.Data.RobotConfigFilename == "" {
		return nil, fmt.Errorf("missing required field in bootstrap config: data.robot_config_file")
	}

	// Fill in operational fallbacks so the caller never sees zero values.
	if bootstrapCfg.Control.RateHz <= 0 {
		bootstrapCfg.Control.RateHz = DefaultRateHz
	}
	if bootstrapCfg.Control.DebounceWindowMs <= 0 {
		bootstrapCfg.Control.DebounceWindowMs = DefaultDebounceWindowMs
	}
	if bootstrapCfg.Control.DisplayLines <= 0 {
		bootstrapCfg.Control.DisplayLines = DefaultDisplayLines
	}
	if bootstrapCfg.Monitor.HTTPPort <= 0 {
		bootstrapCfg.Monitor.HTTPPort = DefaultMonitorPort
	}

	return &bootstrapCfg, nil
}
