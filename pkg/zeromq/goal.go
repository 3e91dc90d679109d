package zeromq

// GoalState tracks a goal through its acknowledgment stages.
type GoalState int

const (
	GoalPending GoalState = iota
	GoalAccepted
	GoalRejected
	GoalCompleted
)

// GoalHandle is the client-side record of one in-flight goal. State
// only moves forward: pending to accepted or rejected, accepted to
// completed. Handles are owned by the client's run loop; callbacks fire
// on that goroutine.
type GoalHandle struct {
	id         string
	state      GoalState
	onResponse func(accepted bool)
	onResult   func(errorCode int)
}

func newGoalHandle(id string, onResponse func(accepted bool), onResult func(errorCode int)) *GoalHandle {
	return &GoalHandle{
		id:         id,
		state:      GoalPending,
		onResponse: onResponse,
		onResult:   onResult,
	}
}

// respond applies the executor's decision and reports whether the goal
// was accepted and a result should be requested. Decisions after the
// first are ignored.
func (g *GoalHandle) respond(accepted bool) bool {
	if g.state != GoalPending {
		return false
	}
	if accepted {
		g.state = GoalAccepted
	} else {
		g.state = GoalRejected
	}
	if g.onResponse != nil {
		g.onResponse(accepted)
	}
	return accepted
}

// complete applies the trajectory result. Only an accepted goal can
// complete; anything else is ignored.
func (g *GoalHandle) complete(errorCode int) {
	if g.state != GoalAccepted {
		return
	}
	g.state = GoalCompleted
	if g.onResult != nil {
		g.onResult(errorCode)
	}
}
