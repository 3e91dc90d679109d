package zeromq

import (
	"encoding/json"
	"fmt"
	"time"
)

// Message types exchanged with a trajectory executor.
const (
	MsgTypeGoalRequest   = "GOAL_REQUEST"
	MsgTypeGoalResponse  = "GOAL_RESPONSE"
	MsgTypeResultRequest = "RESULT_REQUEST"
	MsgTypeGoalResult    = "GOAL_RESULT"
)

// Trajectory result codes reported by the executor. Zero is success;
// the negative codes mirror the follow-joint-trajectory failure
// taxonomy.
const (
	ResultSuccessful            = 0
	ResultInvalidGoal           = -1
	ResultInvalidJoints         = -2
	ResultOldHeaderTimestamp    = -3
	ResultPathToleranceViolated = -4
	ResultGoalToleranceViolated = -5
)

// ZeroMQMessage represents the generic envelope for executor
// communication.
type ZeroMQMessage struct {
	Type      string          `json:"type"`
	Timestamp float64         `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// GoalRequest carries a single-waypoint trajectory goal. TimeFromStart
// is in seconds.
type GoalRequest struct {
	GoalID        string    `json:"goal_id"`
	JointNames    []string  `json:"joint_names"`
	Positions     []float64 `json:"positions"`
	TimeFromStart float64   `json:"time_from_start"`
}

// GoalResponse is the executor's accept or reject decision for a goal.
type GoalResponse struct {
	GoalID   string `json:"goal_id"`
	Accepted bool   `json:"accepted"`
}

// ResultRequest asks the executor for the outcome of an accepted goal.
type ResultRequest struct {
	GoalID string `json:"goal_id"`
}

// GoalResult reports the trajectory outcome for an accepted goal.
type GoalResult struct {
	GoalID    string `json:"goal_id"`
	ErrorCode int    `json:"error_code"`
}

// encodeMessage wraps a payload in the message envelope and serializes
// the whole thing.
func encodeMessage(msgType string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", msgType, err)
	}
	msg := ZeroMQMessage{
		Type:      msgType,
		Timestamp: float64(time.Now().Unix()),
		Data:      data,
	}
	out, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s message: %w", msgType, err)
	}
	return out, nil
}
