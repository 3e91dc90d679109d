package teleop

import (
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/open-teleop/arm-teleop/pkg/config"
)

type nopLogger struct{}

func (nopLogger) Debugf(format string, args ...interface{}) {}
func (nopLogger) Infof(format string, args ...interface{})  {}
func (nopLogger) Warnf(format string, args ...interface{})  {}
func (nopLogger) Errorf(format string, args ...interface{}) {}
func (nopLogger) Fatalf(format string, args ...interface{}) {}

type submittedGoal struct {
	names         []string
	positions     []float64
	timeFromStart time.Duration
}

// fakeTransport records submitted goals and optionally acknowledges
// them synchronously.
type fakeTransport struct {
	goals      []submittedGoal
	submitErr  error
	respond    bool
	accept     bool
	sendResult bool
	resultCode int
}

func (f *fakeTransport) SubmitGoal(names []string, positions []float64, timeFromStart time.Duration,
	onResponse func(accepted bool), onResult func(errorCode int)) error {
	if f.submitErr != nil {
		return f.submitErr
	}
	f.goals = append(f.goals, submittedGoal{
		names:         append([]string(nil), names...),
		positions:     append([]float64(nil), positions...),
		timeFromStart: timeFromStart,
	})
	if f.respond {
		onResponse(f.accept)
		if f.accept && f.sendResult {
			onResult(f.resultCode)
		}
	}
	return nil
}

// recorderSink counts status callbacks for assertions.
type recorderSink struct {
	mu          sync.Mutex
	updates     int
	selection   string
	arm         []float64
	torso       float64
	gripper     float64
	dispatched  map[string]int
	accepted    map[string]int
	rejected    map[string]int
	results     map[string][]int
}

func newRecorderSink() *recorderSink {
	return &recorderSink{
		dispatched: make(map[string]int),
		accepted:   make(map[string]int),
		rejected:   make(map[string]int),
		results:    make(map[string][]int),
	}
}

func (r *recorderSink) SessionUpdated(selection string, arm []float64, torso, gripper float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates++
	r.selection = selection
	r.arm = arm
	r.torso = torso
	r.gripper = gripper
}

func (r *recorderSink) GoalDispatched(group string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dispatched[group]++
}

func (r *recorderSink) GoalAccepted(group string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accepted[group]++
}

func (r *recorderSink) GoalRejected(group string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejected[group]++
}

func (r *recorderSink) GoalResult(group string, errorCode int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results[group] = append(r.results[group], errorCode)
}

func newTestDispatcher(arm, torso, gripper *fakeTransport, sink StatusSink) *GoalDispatcher {
	return NewGoalDispatcher(config.DefaultRobotConfig(), arm, torso, gripper, nopLogger{}, sink)
}

func TestDispatchArmGoalCarriesAllJoints(t *testing.T) {
	arm := &fakeTransport{}
	dispatcher := newTestDispatcher(arm, &fakeTransport{}, &fakeTransport{}, nil)
	pos := newTestPositions(t)
	pos.Arm[2] += 0.01

	if err := dispatcher.Dispatch(ArmJoint(2), pos); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if len(arm.goals) != 1 {
		t.Fatalf("Expected 1 arm goal, got %d", len(arm.goals))
	}

	goal := arm.goals[0]
	wantNames := config.DefaultRobotConfig().Arm.JointNames
	if len(goal.names) != len(wantNames) {
		t.Fatalf("Expected %d joint names, got %d", len(wantNames), len(goal.names))
	}
	for i, name := range wantNames {
		if goal.names[i] != name {
			t.Errorf("Joint name %d: expected %q, got %q", i, name, goal.names[i])
		}
	}
	for i := range pos.Arm {
		if math.Abs(goal.positions[i]-pos.Arm[i]) > 1e-9 {
			t.Errorf("Position %d: expected %v, got %v", i, pos.Arm[i], goal.positions[i])
		}
	}
	if goal.timeFromStart != time.Second {
		t.Errorf("Expected 1s time from start, got %v", goal.timeFromStart)
	}
}

func TestDispatchCopiesPositions(t *testing.T) {
	arm := &fakeTransport{}
	dispatcher := newTestDispatcher(arm, &fakeTransport{}, &fakeTransport{}, nil)
	pos := newTestPositions(t)

	if err := dispatcher.Dispatch(ArmJoint(0), pos); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	captured := arm.goals[0].positions[0]
	pos.Arm[0] += 1.57

	if arm.goals[0].positions[0] != captured {
		t.Error("Expected the dispatched goal to be isolated from later adjustments")
	}
}

func TestDispatchTorsoGoal(t *testing.T) {
	torso := &fakeTransport{}
	dispatcher := newTestDispatcher(&fakeTransport{}, torso, &fakeTransport{}, nil)
	pos := newTestPositions(t)
	pos.Torso -= 1.57

	if err := dispatcher.Dispatch(Torso(), pos); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if len(torso.goals) != 1 {
		t.Fatalf("Expected 1 torso goal, got %d", len(torso.goals))
	}

	goal := torso.goals[0]
	if len(goal.names) != 1 || goal.names[0] != "torso_lift_joint" {
		t.Errorf("Expected single torso joint name, got %v", goal.names)
	}
	if len(goal.positions) != 1 || math.Abs(goal.positions[0]-pos.Torso) > 1e-9 {
		t.Errorf("Expected torso position %v, got %v", pos.Torso, goal.positions)
	}
}

func TestDispatchGripperCommandsBothFingers(t *testing.T) {
	gripper := &fakeTransport{}
	dispatcher := newTestDispatcher(&fakeTransport{}, &fakeTransport{}, gripper, nil)
	pos := newTestPositions(t)
	pos.Gripper += 0.01

	if err := dispatcher.Dispatch(Gripper(), pos); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if len(gripper.goals) != 1 {
		t.Fatalf("Expected 1 gripper goal, got %d", len(gripper.goals))
	}

	goal := gripper.goals[0]
	if len(goal.names) != 2 {
		t.Fatalf("Expected both finger joints, got %v", goal.names)
	}
	if len(goal.positions) != 2 {
		t.Fatalf("Expected two positions, got %v", goal.positions)
	}
	if goal.positions[0] != goal.positions[1] {
		t.Errorf("Expected both fingers at the same value, got %v", goal.positions)
	}
	if math.Abs(goal.positions[0]-pos.Gripper) > 1e-9 {
		t.Errorf("Expected finger position %v, got %v", pos.Gripper, goal.positions[0])
	}
}

func TestDispatchWithoutSelectionIsNoOp(t *testing.T) {
	arm := &fakeTransport{}
	torso := &fakeTransport{}
	gripper := &fakeTransport{}
	dispatcher := newTestDispatcher(arm, torso, gripper, nil)

	if err := dispatcher.Dispatch(NoSelection(), newTestPositions(t)); err != nil {
		t.Fatalf("Expected no error for empty selection, got %v", err)
	}
	if len(arm.goals)+len(torso.goals)+len(gripper.goals) != 0 {
		t.Error("Expected no goals submitted for empty selection")
	}
}

func TestDispatchAcceptedResultFlow(t *testing.T) {
	sink := newRecorderSink()
	arm := &fakeTransport{respond: true, accept: true, sendResult: true, resultCode: 0}
	dispatcher := newTestDispatcher(arm, &fakeTransport{}, &fakeTransport{}, sink)

	if err := dispatcher.Dispatch(ArmJoint(0), newTestPositions(t)); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if sink.dispatched["arm"] != 1 {
		t.Errorf("Expected 1 dispatched goal, got %d", sink.dispatched["arm"])
	}
	if sink.accepted["arm"] != 1 {
		t.Errorf("Expected 1 accepted goal, got %d", sink.accepted["arm"])
	}
	if sink.rejected["arm"] != 0 {
		t.Errorf("Expected no rejected goals, got %d", sink.rejected["arm"])
	}
	if got := sink.results["arm"]; len(got) != 1 || got[0] != 0 {
		t.Errorf("Expected result code 0, got %v", got)
	}
}

func TestDispatchRejectedGoalHasNoResult(t *testing.T) {
	sink := newRecorderSink()
	torso := &fakeTransport{respond: true, accept: false}
	dispatcher := newTestDispatcher(&fakeTransport{}, torso, &fakeTransport{}, sink)

	if err := dispatcher.Dispatch(Torso(), newTestPositions(t)); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if sink.rejected["torso"] != 1 {
		t.Errorf("Expected 1 rejected goal, got %d", sink.rejected["torso"])
	}
	if len(sink.results["torso"]) != 0 {
		t.Errorf("Expected no result for rejected goal, got %v", sink.results["torso"])
	}
}

func TestDispatchSubmitError(t *testing.T) {
	sink := newRecorderSink()
	arm := &fakeTransport{submitErr: errors.New("send queue full")}
	dispatcher := newTestDispatcher(arm, &fakeTransport{}, &fakeTransport{}, sink)

	err := dispatcher.Dispatch(ArmJoint(0), newTestPositions(t))
	if err == nil {
		t.Fatal("Expected submit failure to surface")
	}
	if !strings.Contains(err.Error(), "failed to submit arm goal") {
		t.Errorf("Unexpected error message: %v", err)
	}
	if sink.dispatched["arm"] != 0 {
		t.Error("Expected no dispatched count for failed submit")
	}
}
