package diagnostic

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

// GoalStats counts goal outcomes for one joint group.
type GoalStats struct {
	Dispatched    int `json:"dispatched"`
	Accepted      int `json:"accepted"`
	Rejected      int `json:"rejected"`
	Succeeded     int `json:"succeeded"`
	Failed        int `json:"failed"`
	LastErrorCode int `json:"last_error_code"`
}

// SessionStatus is a snapshot of the running teleop session: the
// commanded pose, the active selection, and per-group goal statistics.
type SessionStatus struct {
	Timestamp time.Time            `json:"timestamp"`
	RobotID   string               `json:"robot_id"`
	Selection string               `json:"selection"`
	Arm       []float64            `json:"arm"`
	Torso     float64              `json:"torso"`
	Gripper   float64              `json:"gripper"`
	Goals     map[string]GoalStats `json:"goals"`
}

// SessionStatsService collects session snapshots and goal outcomes for
// the monitor. The control loop and transport callbacks write from
// different goroutines, so every update takes the lock; readers get
// deep copies.
type SessionStatsService struct {
	mu     sync.RWMutex
	status SessionStatus
}

// NewSessionStatsService creates an empty stats service for one robot.
func NewSessionStatsService(robotID string) *SessionStatsService {
	return &SessionStatsService{
		status: SessionStatus{
			Timestamp: time.Now(),
			RobotID:   robotID,
			Selection: "none",
			Arm:       []float64{},
			Goals:     make(map[string]GoalStats),
		},
	}
}

// SessionUpdated stores the latest commanded pose and selection.
func (s *SessionStatsService) SessionUpdated(selection string, arm []float64, torso, gripper float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status.Selection = selection
	s.status.Arm = append([]float64(nil), arm...)
	s.status.Torso = torso
	s.status.Gripper = gripper
	s.status.Timestamp = time.Now()
}

// GoalDispatched counts a goal handed to a group's transport.
func (s *SessionStatsService) GoalDispatched(group string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := s.status.Goals[group]
	stats.Dispatched++
	s.status.Goals[group] = stats
	s.status.Timestamp = time.Now()
}

// GoalAccepted counts an executor acceptance.
func (s *SessionStatsService) GoalAccepted(group string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := s.status.Goals[group]
	stats.Accepted++
	s.status.Goals[group] = stats
	s.status.Timestamp = time.Now()
}

// GoalRejected counts an executor rejection.
func (s *SessionStatsService) GoalRejected(group string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := s.status.Goals[group]
	stats.Rejected++
	s.status.Goals[group] = stats
	s.status.Timestamp = time.Now()
}

// GoalResult records a trajectory outcome. Error code zero counts as
// success, anything else as failure.
func (s *SessionStatsService) GoalResult(group string, errorCode int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := s.status.Goals[group]
	if errorCode == 0 {
		stats.Succeeded++
	} else {
		stats.Failed++
	}
	stats.LastErrorCode = errorCode
	s.status.Goals[group] = stats
	s.status.Timestamp = time.Now()
}

// Status returns a deep copy of the current snapshot.
func (s *SessionStatsService) Status() SessionStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := s.status
	status.Arm = append([]float64(nil), s.status.Arm...)
	status.Goals = make(map[string]GoalStats, len(s.status.Goals))
	for group, stats := range s.status.Goals {
		status.Goals[group] = stats
	}
	return status
}

// GetStatusHandler handles API requests for the session status.
func (s *SessionStatsService) GetStatusHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "success",
		"session": s.Status(),
	})
}
