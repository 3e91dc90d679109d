package teleop

import "fmt"

// GroupKind discriminates the joint group targeted by a selection.
type GroupKind int

const (
	GroupNone GroupKind = iota
	GroupArm
	GroupTorso
	GroupGripper
)

// Selection identifies the joint group currently targeted for
// adjustment. ArmIndex is meaningful only when Kind is GroupArm.
type Selection struct {
	Kind     GroupKind
	ArmIndex int
}

// NoSelection returns the empty selection.
func NoSelection() Selection { return Selection{Kind: GroupNone} }

// ArmJoint returns a selection for one arm joint by zero-based index.
func ArmJoint(index int) Selection { return Selection{Kind: GroupArm, ArmIndex: index} }

// Torso returns the torso lift selection.
func Torso() Selection { return Selection{Kind: GroupTorso} }

// Gripper returns the gripper selection. Both fingers are driven
// together from a single commanded value.
func Gripper() Selection { return Selection{Kind: GroupGripper} }

// IsNone reports whether nothing is selected.
func (s Selection) IsNone() bool { return s.Kind == GroupNone }

// Label returns the operator-facing name used on the status line. Arm
// joints are shown one-based, matching the digit keys that select them.
func (s Selection) Label() string {
	switch s.Kind {
	case GroupArm:
		return fmt.Sprintf("%d", s.ArmIndex+1)
	case GroupTorso:
		return "Torso"
	case GroupGripper:
		return "Gripper"
	default:
		return "None"
	}
}

// GroupName returns the lowercase group identifier used for transport
// routing and per-group statistics.
func (s Selection) GroupName() string {
	switch s.Kind {
	case GroupArm:
		return "arm"
	case GroupTorso:
		return "torso"
	case GroupGripper:
		return "gripper"
	default:
		return "none"
	}
}

func (s Selection) String() string {
	switch s.Kind {
	case GroupArm:
		return fmt.Sprintf("arm joint %d", s.ArmIndex+1)
	case GroupTorso:
		return "torso"
	case GroupGripper:
		return "gripper"
	default:
		return "none"
	}
}

// SelectionState tracks which joint group is active for adjustment.
// Selecting overwrites the previous target unconditionally; clearing
// returns to the empty selection, where adjustments integrate to
// nothing.
type SelectionState struct {
	active Selection
}

// Select makes sel the active adjustment target.
func (s *SelectionState) Select(sel Selection) { s.active = sel }

// Clear drops the active target.
func (s *SelectionState) Clear() { s.active = NoSelection() }

// Current returns the active target.
func (s *SelectionState) Current() Selection { return s.active }
