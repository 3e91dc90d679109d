package teleop

import (
	"fmt"
	"time"

	"github.com/open-teleop/arm-teleop/pkg/config"
	customlog "github.com/open-teleop/arm-teleop/pkg/log"
)

// Transport submits a named joint trajectory goal to a motion executor.
// Implementations deliver the two acknowledgment stages through the
// callbacks on their own execution context; the control loop hands a
// goal off and keeps ticking without waiting.
type Transport interface {
	SubmitGoal(jointNames []string, positions []float64, timeFromStart time.Duration,
		onResponse func(accepted bool), onResult func(errorCode int)) error
}

// StatusSink receives session snapshots and dispatch outcomes for
// observability. Implementations must be safe to call from transport
// callbacks as well as the control loop.
type StatusSink interface {
	SessionUpdated(selection string, arm []float64, torso, gripper float64)
	GoalDispatched(group string)
	GoalAccepted(group string)
	GoalRejected(group string)
	GoalResult(group string, errorCode int)
}

// GoalDispatcher turns the current positions of a selected joint group
// into single-waypoint trajectory goals and fires them at the group's
// transport. Dispatch is fire-and-forget: acceptance and result arrive
// later and are only logged and counted, never retried or rolled back.
type GoalDispatcher struct {
	robot         *config.RobotConfig
	transports    map[GroupKind]Transport
	timeFromStart time.Duration
	logger        customlog.Logger
	status        StatusSink
}

// NewGoalDispatcher wires one transport per joint group. The status
// sink may be nil when no monitor is running.
func NewGoalDispatcher(robot *config.RobotConfig, arm, torso, gripper Transport,
	logger customlog.Logger, status StatusSink) *GoalDispatcher {
	return &GoalDispatcher{
		robot: robot,
		transports: map[GroupKind]Transport{
			GroupArm:     arm,
			GroupTorso:   torso,
			GroupGripper: gripper,
		},
		timeFromStart: robot.TimeFromStart(),
		logger:        logger,
		status:        status,
	}
}

// Dispatch submits the selected group's positions as a single-waypoint
// goal. An empty selection is a no-op. The arm goal carries all seven
// joints even when only one moved; the gripper goal commands both
// fingers to the same value. Position data is copied before handoff so
// later adjustments cannot mutate an in-flight goal.
func (d *GoalDispatcher) Dispatch(sel Selection, pos *PositionState) error {
	var (
		names     []string
		positions []float64
	)
	switch sel.Kind {
	case GroupArm:
		names = append(names, d.robot.Arm.JointNames...)
		positions = append(positions, pos.Arm[:]...)
	case GroupTorso:
		names = []string{d.robot.Torso.JointName}
		positions = []float64{pos.Torso}
	case GroupGripper:
		names = append(names, d.robot.Gripper.JointNames...)
		positions = []float64{pos.Gripper, pos.Gripper}
	default:
		return nil
	}

	transport := d.transports[sel.Kind]
	if transport == nil {
		return fmt.Errorf("no transport bound for group: %s", sel.GroupName())
	}

	group := sel.GroupName()
	err := transport.SubmitGoal(names, positions, d.timeFromStart,
		func(accepted bool) {
			if accepted {
				d.logger.Infof("Goal accepted")
				if d.status != nil {
					d.status.GoalAccepted(group)
				}
				return
			}
			d.logger.Infof("Goal rejected")
			if d.status != nil {
				d.status.GoalRejected(group)
			}
		},
		func(errorCode int) {
			d.logger.Infof("Result: %d", errorCode)
			if d.status != nil {
				d.status.GoalResult(group, errorCode)
			}
		})
	if err != nil {
		return fmt.Errorf("failed to submit %s goal: %w", group, err)
	}
	if d.status != nil {
		d.status.GoalDispatched(group)
	}
	return nil
}
