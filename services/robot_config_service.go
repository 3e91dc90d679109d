package services

import (
	"fmt"
	"io/ioutil"
	"sync"

	"github.com/open-teleop/arm-teleop/pkg/config"
	customlog "github.com/open-teleop/arm-teleop/pkg/log"
)

// RobotConfigService manages the robot profile: joint naming, the
// startup pose, and the executor endpoints. Updates persist to disk
// right away but only take effect when the next session starts; the
// running session keeps the profile it was built with.
type RobotConfigService interface {
	LoadConfig() error
	GetCurrentConfig() *config.RobotConfig
	GetCurrentConfigYAML() ([]byte, error)
	UpdateConfig(newConfigYAML []byte) error
	PersistConfig(yamlData []byte) error
}

// robotConfigService implements the RobotConfigService interface.
type robotConfigService struct {
	profilePath   string
	logger        customlog.Logger
	currentConfig *config.RobotConfig
	mu            sync.RWMutex
}

// NewRobotConfigService creates the service and attempts an initial
// load. A missing or invalid profile is not fatal: the service starts
// with no loaded config and the caller falls back to the built-in
// defaults.
func NewRobotConfigService(profilePath string, logger customlog.Logger) (RobotConfigService, error) {
	if profilePath == "" {
		return nil, fmt.Errorf("robot profile path cannot be empty")
	}
	if logger == nil {
		logger, _ = customlog.NewLogrusLogger("info", "")
		logger.Warnf("No logger provided to RobotConfigService, using default.")
	}

	service := &robotConfigService{
		profilePath: profilePath,
		logger:      logger,
	}

	if err := service.LoadConfig(); err != nil {
		logger.Warnf("Initial load of robot profile '%s' failed: %v. Service created, but config is nil.", profilePath, err)
		return service, nil
	}

	logger.Infof("RobotConfigService initialized for path: %s", profilePath)
	return service, nil
}

// LoadConfig reads the profile from disk and replaces the in-memory
// copy. On failure the in-memory copy is dropped rather than left
// stale.
func (s *robotConfigService) LoadConfig() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := ioutil.ReadFile(s.profilePath)
	if err != nil {
		s.currentConfig = nil
		return fmt.Errorf("error reading robot profile '%s': %w", s.profilePath, err)
	}

	cfg, err := config.ParseRobotConfig(data)
	if err != nil {
		s.currentConfig = nil
		return fmt.Errorf("error parsing robot profile '%s': %w", s.profilePath, err)
	}

	s.currentConfig = cfg
	s.logger.Infof("Loaded robot profile ID: %s, Version: %s", cfg.ConfigID, cfg.Version)
	return nil
}

// GetCurrentConfig returns the loaded profile, or nil when none is
// loaded. Read-only; modifications go through UpdateConfig.
func (s *robotConfigService) GetCurrentConfig() *config.RobotConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentConfig
}

// GetCurrentConfigYAML returns the raw on-disk profile so the monitor
// can display it for editing.
func (s *robotConfigService) GetCurrentConfigYAML() ([]byte, error) {
	s.mu.RLock()
	path := s.profilePath
	s.mu.RUnlock()

	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading robot profile '%s': %w", path, err)
	}
	return data, nil
}

// UpdateConfig validates, persists, and applies a new profile.
// Validation failures leave both the file and the in-memory copy
// untouched.
func (s *robotConfigService) UpdateConfig(newConfigYAML []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	newCfg, err := config.ParseRobotConfig(newConfigYAML)
	if err != nil {
		s.logger.Errorf("Rejected robot profile update: %v", err)
		return err
	}

	if err := s.persistConfigUnlocked(newConfigYAML); err != nil {
		return err
	}

	oldID := "N/A"
	if s.currentConfig != nil {
		oldID = s.currentConfig.ConfigID
	}
	s.currentConfig = newCfg
	s.logger.Infof("Updated robot profile. ID %s -> %s, Version: %s", oldID, newCfg.ConfigID, newCfg.Version)
	s.logger.Infof("Profile changes apply when the next session starts")
	return nil
}

// PersistConfig writes raw YAML to the profile path without touching
// the in-memory copy.
func (s *robotConfigService) PersistConfig(yamlData []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistConfigUnlocked(yamlData)
}

// persistConfigUnlocked assumes the caller holds the lock.
func (s *robotConfigService) persistConfigUnlocked(yamlData []byte) error {
	if err := ioutil.WriteFile(s.profilePath, yamlData, 0644); err != nil {
		return fmt.Errorf("error writing robot profile '%s': %w", s.profilePath, err)
	}
	s.logger.Infof("Persisted robot profile to %s", s.profilePath)
	return nil
}
