package config

import (
	"fmt"
	"io/ioutil"
	"time"

	"gopkg.in/yaml.v3"
)

// Joint cardinalities of the supported manipulator. The arm is commanded
// as a single 7-joint group and the gripper as two mirrored fingers.
const (
	ArmJointCount     = 7
	GripperJointCount = 2
)

// DefaultTimeFromStartSec is the time-to-reach applied to every
// single-waypoint goal when the profile does not override it.
const DefaultTimeFromStartSec = 1.0

// RobotConfig represents the robot profile: joint naming, the startup
// pose, the motion-executor endpoints, and goal timing.
type RobotConfig struct {
	Version  string        `yaml:"version" json:"version"`
	ConfigID string        `yaml:"config_id" json:"config_id"`
	RobotID  string        `yaml:"robot_id" json:"robot_id"`
	Arm      ArmConfig     `yaml:"arm" json:"arm"`
	Torso    TorsoConfig   `yaml:"torso" json:"torso"`
	Gripper  GripperConfig `yaml:"gripper" json:"gripper"`
	Goal     GoalConfig    `yaml:"goal" json:"goal"`
}

// ArmConfig describes the 7-joint arm group
type ArmConfig struct {
	JointNames       []string  `yaml:"joint_names" json:"joint_names"`
	InitialPositions []float64 `yaml:"initial_positions" json:"initial_positions"`
	Endpoint         string    `yaml:"endpoint" json:"endpoint"`
}

// TorsoConfig describes the single torso lift joint
type TorsoConfig struct {
	JointName       string  `yaml:"joint_name" json:"joint_name"`
	InitialPosition float64 `yaml:"initial_position" json:"initial_position"`
	Endpoint        string  `yaml:"endpoint" json:"endpoint"`
}

// GripperConfig describes the two mirrored gripper fingers. Both fingers
// are commanded with the same scalar position.
type GripperConfig struct {
	JointNames      []string `yaml:"joint_names" json:"joint_names"`
	InitialPosition float64  `yaml:"initial_position" json:"initial_position"`
	Endpoint        string   `yaml:"endpoint" json:"endpoint"`
}

// GoalConfig holds trajectory goal timing
type GoalConfig struct {
	TimeFromStartSec float64 `yaml:"time_from_start_sec" json:"time_from_start_sec"`
}

// TimeFromStart returns the goal time-to-reach as a duration.
func (c *RobotConfig) TimeFromStart() time.Duration {
	return time.Duration(c.Goal.TimeFromStartSec * float64(time.Second))
}

// DefaultRobotConfig returns the built-in profile used when no robot
// config file is available.
func DefaultRobotConfig() *RobotConfig {
	return &RobotConfig{
		Version:  "1.0",
		ConfigID: "default-arm-teleop",
		RobotID:  "tiago",
		Arm: ArmConfig{
			JointNames: []string{
				"arm_1_joint", "arm_2_joint", "arm_3_joint",
				"arm_4_joint", "arm_5_joint", "arm_6_joint", "arm_7_joint",
			},
			InitialPositions: []float64{0.2, -1.34, -0.2, 1.94, -1.57, 1.37, 0.0},
			Endpoint:         "tcp://127.0.0.1:5601",
		},
		Torso: TorsoConfig{
			JointName:       "torso_lift_joint",
			InitialPosition: 0.15,
			Endpoint:        "tcp://127.0.0.1:5602",
		},
		Gripper: GripperConfig{
			JointNames:      []string{"gripper_right_finger_joint", "gripper_left_finger_joint"},
			InitialPosition: 0.0,
			Endpoint:        "tcp://127.0.0.1:5603",
		},
		Goal: GoalConfig{TimeFromStartSec: DefaultTimeFromStartSec},
	}
}

// ParseRobotConfig parses and validates a robot profile from YAML bytes.
func ParseRobotConfig(data []byte) (*RobotConfig, error) {
	var cfg RobotConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid YAML format: %w", err)
	}
	if cfg.Goal.TimeFromStartSec <= 0 {
		cfg.Goal.TimeFromStartSec = DefaultTimeFromStartSec
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadRobotConfig loads and validates the robot profile from a file path.
func LoadRobotConfig(path string) (*RobotConfig, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading robot config file '%s': %w", path, err)
	}
	cfg, err := ParseRobotConfig(data)
	if err != nil {
		return nil, fmt.Errorf("error parsing robot config file '%s': %w", path, err)
	}
	return cfg, nil
}

// Validate checks the profile's identity fields, joint cardinalities,
// and endpoints.
func (c *RobotConfig) Validate() error {
	if c.ConfigID == "" || c.Version == "" || c.RobotID == "" {
		return fmt.Errorf("validation failed: missing required fields (ConfigID, Version, RobotID)")
	}
	if len(c.Arm.JointNames) != ArmJointCount {
		return fmt.Errorf("validation failed: arm requires exactly %d joint names, got %d", ArmJointCount, len(c.Arm.JointNames))
	}
	if len(c.Arm.InitialPositions) != ArmJointCount {
		return fmt.Errorf("validation failed: arm requires exactly %d initial positions, got %d", ArmJointCount, len(c.Arm.InitialPositions))
	}
	if c.Torso.JointName == "" {
		return fmt.Errorf("validation failed: torso joint name is required")
	}
	if len(c.Gripper.JointNames) != GripperJointCount {
		return fmt.Errorf("validation failed: gripper requires exactly %d joint names, got %d", GripperJointCount, len(c.Gripper.JointNames))
	}
	if c.Arm.Endpoint == "" {
		return fmt.Errorf("validation failed: arm endpoint is required")
	}
	if c.Torso.Endpoint == "" {
		return fmt.Errorf("validation failed: torso endpoint is required")
	}
	if c.Gripper.Endpoint == "" {
		return fmt.Errorf("validation failed: gripper endpoint is required")
	}
	return nil
}
