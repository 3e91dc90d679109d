package teleop

import (
	"context"
	"fmt"
	"time"

	"github.com/open-teleop/arm-teleop/pkg/config"
	customlog "github.com/open-teleop/arm-teleop/pkg/log"
)

// Status line indices on the session window.
const (
	lineInstructions = 0
	lineSelection    = 1
	linePosition     = 2
)

// instructionsText is the operator help line painted at startup and
// again after every dirty repaint.
const instructionsText = "Use keys 1-9 to select joint, A/D/W/S to adjust, " +
	"W and S is for small turning 0.001, A and D is for 0.01, " +
	"O and P is for fast turning 1.57, R to reselect, Q to exit."

// Console is the display and input surface the session drives. ReadKey
// must never block; WriteLine fails on a line index outside the window.
type Console interface {
	ReadKey() (rune, bool)
	Clear()
	WriteLine(lineno int, message string) error
	Refresh()
}

// SessionParams collects the dependencies of a teleop session.
type SessionParams struct {
	Window         Console
	Robot          *config.RobotConfig
	Dispatcher     *GoalDispatcher
	Logger         customlog.Logger
	RateHz         int
	DebounceWindow time.Duration
	// Interrupt requests process-level shutdown when the quit key is
	// pressed. Typically the root context's cancel function.
	Interrupt func()
	// Status receives position snapshots for the monitor. May be nil.
	Status StatusSink
}

// Session owns the operator control loop: poll one key, apply its
// action, integrate pending presses, repaint and dispatch when
// positions changed, then wait for the next tick. Everything runs on
// the single goroutine that calls Run; only transport callbacks and the
// monitor touch state concurrently, and those go through the status
// sink, never through the session.
type Session struct {
	win        Console
	dispatcher *GoalDispatcher
	logger     customlog.Logger
	selection  SelectionState
	positions  *PositionState
	integrator *VelocityIntegrator
	rateHz     int
	interrupt  func()
	status     StatusSink
	stopped    bool
}

// NewSession validates params and builds a session positioned at the
// robot profile's startup pose.
func NewSession(p SessionParams) (*Session, error) {
	if p.Window == nil {
		return nil, fmt.Errorf("session requires a console window")
	}
	if p.Robot == nil {
		return nil, fmt.Errorf("session requires a robot profile")
	}
	if p.Dispatcher == nil {
		return nil, fmt.Errorf("session requires a goal dispatcher")
	}
	if p.Logger == nil {
		return nil, fmt.Errorf("session requires a logger")
	}
	rate := p.RateHz
	if rate <= 0 {
		rate = config.DefaultRateHz
	}
	window := p.DebounceWindow
	if window <= 0 {
		window = config.DefaultDebounceWindowMs * time.Millisecond
	}
	return &Session{
		win:        p.Window,
		dispatcher: p.Dispatcher,
		logger:     p.Logger,
		positions:  NewPositionState(p.Robot),
		integrator: NewVelocityIntegrator(window),
		rateHz:     rate,
		interrupt:  p.Interrupt,
		status:     p.Status,
	}, nil
}

// Run drives the control loop until the quit key or context
// cancellation. Quit returns nil after requesting interruption; a
// window contract violation surfaces as an error. A stopped session
// never ticks again.
func (s *Session) Run(ctx context.Context) error {
	if s.stopped {
		return nil
	}
	if err := s.paintInstructions(); err != nil {
		return err
	}
	s.publishStatus()
	s.logger.Infof("Teleop session started at %d Hz", s.rateHz)

	ticker := time.NewTicker(time.Second / time.Duration(s.rateHz))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		quit, err := s.step(time.Now())
		if err != nil {
			return err
		}
		if quit {
			s.logger.Infof("Quit requested, ending session")
			if s.interrupt != nil {
				s.interrupt()
			}
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// step executes one control tick. Quit reports true immediately, before
// integration and dispatch, so an adjustment observed on the same tick
// as quit is dropped rather than sent.
func (s *Session) step(now time.Time) (bool, error) {
	if key, ok := s.win.ReadKey(); ok {
		quit, err := s.handleKey(key, now)
		if err != nil || quit {
			return quit, err
		}
	}

	dirty := s.integrator.Tick(now, s.selection.Current(), s.positions)
	if !dirty {
		return false, nil
	}

	if err := s.paintInstructions(); err != nil {
		return false, err
	}
	s.publishStatus()
	if err := s.dispatcher.Dispatch(s.selection.Current(), s.positions); err != nil {
		s.logger.Errorf("Dispatch failed: %v", err)
	}
	return false, nil
}

// handleKey applies a single interpreted key press. Selection changes
// and adjustments repaint their status line right away; the position
// itself only moves on the integrator tick.
func (s *Session) handleKey(key rune, now time.Time) (bool, error) {
	action := Interpret(key)
	switch action.Kind {
	case ActionQuit:
		s.stopped = true
		return true, nil
	case ActionSelect:
		s.selection.Select(action.Selection)
		if err := s.win.WriteLine(lineSelection, "Selected Joint: "+action.Selection.Label()); err != nil {
			return false, err
		}
		s.win.Refresh()
	case ActionAdjust:
		s.integrator.RecordPress(key, now)
		if err := s.paintPosition(); err != nil {
			return false, err
		}
		s.win.Refresh()
	case ActionReselect:
		s.selection.Clear()
		if err := s.win.WriteLine(lineSelection, "Reselect Joint"); err != nil {
			return false, err
		}
		s.win.Refresh()
	}
	return false, nil
}

// paintInstructions clears the window and rewrites the help line.
func (s *Session) paintInstructions() error {
	s.win.Clear()
	if err := s.win.WriteLine(lineInstructions, instructionsText); err != nil {
		return err
	}
	s.win.Refresh()
	return nil
}

// paintPosition writes the selected group's position on the position
// line. With nothing selected there is nothing to show.
func (s *Session) paintPosition() error {
	sel := s.selection.Current()
	value, ok := s.positions.Value(sel)
	if !ok {
		return nil
	}
	var text string
	switch sel.Kind {
	case GroupArm:
		text = fmt.Sprintf("Joint %d Position: %.2f", sel.ArmIndex+1, value)
	case GroupTorso:
		text = fmt.Sprintf("Torso Position: %.2f", value)
	case GroupGripper:
		text = fmt.Sprintf("Gripper Position: %.2f", value)
	}
	return s.win.WriteLine(linePosition, text)
}

// publishStatus snapshots selection and positions into the status sink.
func (s *Session) publishStatus() {
	if s.status == nil {
		return
	}
	arm := append([]float64(nil), s.positions.Arm[:]...)
	s.status.SessionUpdated(s.selection.Current().String(), arm, s.positions.Torso, s.positions.Gripper)
}
