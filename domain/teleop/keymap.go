package teleop

// ActionKind classifies what a key press means to the control loop.
type ActionKind int

const (
	// ActionIgnored is any key with no binding. The loop treats it as
	// if no key was pressed at all.
	ActionIgnored ActionKind = iota
	// ActionSelect targets a joint group for subsequent adjustments.
	ActionSelect
	// ActionAdjust nudges the selected group by a signed delta.
	ActionAdjust
	// ActionReselect clears the active selection.
	ActionReselect
	// ActionQuit ends the session.
	ActionQuit
)

// Action is the interpreted meaning of a single key press.
type Action struct {
	Kind      ActionKind
	Selection Selection // set for ActionSelect
	Delta     float64   // set for ActionAdjust
}

// movementBindings maps adjustment keys to signed position deltas:
// a/d step 0.01, w/s fine-step 0.001, o/p swing a quarter turn.
var movementBindings = map[rune]float64{
	'a': -0.01,
	'd': 0.01,
	'w': 0.001,
	's': -0.001,
	'o': -1.57,
	'p': 1.57,
}

// jointBindings maps digit keys to joint group selections. Digits 1-7
// pick arm joints, 8 the torso lift, 9 the gripper.
var jointBindings = map[rune]Selection{
	'1': ArmJoint(0),
	'2': ArmJoint(1),
	'3': ArmJoint(2),
	'4': ArmJoint(3),
	'5': ArmJoint(4),
	'6': ArmJoint(5),
	'7': ArmJoint(6),
	'8': Torso(),
	'9': Gripper(),
}

// Interpret maps a raw key to its semantic action. It is a pure lookup
// with no side effects; unknown keys come back as ActionIgnored.
func Interpret(key rune) Action {
	switch key {
	case 'q':
		return Action{Kind: ActionQuit}
	case 'r':
		return Action{Kind: ActionReselect}
	}
	if sel, ok := jointBindings[key]; ok {
		return Action{Kind: ActionSelect, Selection: sel}
	}
	if delta, ok := movementBindings[key]; ok {
		return Action{Kind: ActionAdjust, Delta: delta}
	}
	return Action{Kind: ActionIgnored}
}
