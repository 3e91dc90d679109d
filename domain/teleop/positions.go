package teleop

import "github.com/open-teleop/arm-teleop/pkg/config"

// PositionState holds the commanded position for every joint group. It
// tracks what the operator asked for, not what the robot reached: goal
// outcomes never feed back into it.
type PositionState struct {
	Arm     [config.ArmJointCount]float64
	Torso   float64
	Gripper float64
}

// NewPositionState returns position state initialized from the robot
// profile's startup pose.
func NewPositionState(cfg *config.RobotConfig) *PositionState {
	p := &PositionState{
		Torso:   cfg.Torso.InitialPosition,
		Gripper: cfg.Gripper.InitialPosition,
	}
	copy(p.Arm[:], cfg.Arm.InitialPositions)
	return p
}

// Apply adds delta to the selected group's position and reports whether
// anything changed. An empty selection changes nothing.
func (p *PositionState) Apply(sel Selection, delta float64) bool {
	switch sel.Kind {
	case GroupArm:
		p.Arm[sel.ArmIndex] += delta
		return true
	case GroupTorso:
		p.Torso += delta
		return true
	case GroupGripper:
		p.Gripper += delta
		return true
	default:
		return false
	}
}

// Value returns the selected group's current position for status
// display. The gripper reports its single commanded value.
func (p *PositionState) Value(sel Selection) (float64, bool) {
	switch sel.Kind {
	case GroupArm:
		return p.Arm[sel.ArmIndex], true
	case GroupTorso:
		return p.Torso, true
	case GroupGripper:
		return p.Gripper, true
	default:
		return 0, false
	}
}
