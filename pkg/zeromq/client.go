package zeromq

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pebbe/zmq4"

	customlog "github.com/open-teleop/arm-teleop/pkg/log"
)

// Common errors
var (
	ErrClientClosed  = errors.New("trajectory client is closed")
	ErrSendQueueFull = errors.New("trajectory client send queue is full")
)

const (
	pollInterval  = 10 * time.Millisecond
	socketTimeout = 1 * time.Second
	sendQueueSize = 16
)

// outboundGoal pairs an encoded goal request with its handle so the run
// loop can register the handle only once the request is on the wire.
type outboundGoal struct {
	handle *GoalHandle
	data   []byte
}

// TrajectoryClient talks to one joint group's trajectory executor over
// a ZeroMQ DEALER socket. A single goroutine owns the socket: it
// flushes queued goal requests, polls for acknowledgments, and drives
// the per-goal callbacks. Callers hand a goal off and never block on
// the network.
type TrajectoryClient struct {
	group    string
	endpoint string
	logger   customlog.Logger

	socket *zmq4.Socket
	poller *zmq4.Poller

	sendQueue chan outboundGoal
	pending   map[string]*GoalHandle

	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewTrajectoryClient connects to the executor for one joint group and
// starts the run loop.
func NewTrajectoryClient(group, endpoint string, logger customlog.Logger) (*TrajectoryClient, error) {
	socket, err := zmq4.NewSocket(zmq4.DEALER)
	if err != nil {
		return nil, fmt.Errorf("failed to create DEALER socket: %w", err)
	}

	if err := socket.Connect(endpoint); err != nil {
		socket.Close()
		return nil, fmt.Errorf("failed to connect to %s: %w", endpoint, err)
	}

	if err := socket.SetLinger(0); err != nil {
		socket.Close()
		return nil, fmt.Errorf("failed to set linger option: %w", err)
	}

	// Bound the send so shutdown never waits on a dead executor.
	if err := socket.SetSndtimeo(socketTimeout); err != nil {
		socket.Close()
		return nil, fmt.Errorf("failed to set send timeout: %w", err)
	}

	poller := zmq4.NewPoller()
	poller.Add(socket, zmq4.POLLIN)

	c := &TrajectoryClient{
		group:     group,
		endpoint:  endpoint,
		logger:    logger,
		socket:    socket,
		poller:    poller,
		sendQueue: make(chan outboundGoal, sendQueueSize),
		pending:   make(map[string]*GoalHandle),
		done:      make(chan struct{}),
	}

	c.wg.Add(1)
	go c.run()

	logger.Infof("Trajectory client for %s connected to %s", group, endpoint)
	return c, nil
}

// SubmitGoal queues a single-waypoint goal for the run loop to send.
// The callbacks fire later on the run loop goroutine; SubmitGoal itself
// returns without touching the network.
func (c *TrajectoryClient) SubmitGoal(jointNames []string, positions []float64, timeFromStart time.Duration,
	onResponse func(accepted bool), onResult func(errorCode int)) error {
	if c.closed() {
		return ErrClientClosed
	}

	goalID := uuid.New().String()
	request := GoalRequest{
		GoalID:        goalID,
		JointNames:    jointNames,
		Positions:     positions,
		TimeFromStart: timeFromStart.Seconds(),
	}
	data, err := encodeMessage(MsgTypeGoalRequest, request)
	if err != nil {
		return err
	}

	select {
	case c.sendQueue <- outboundGoal{handle: newGoalHandle(goalID, onResponse, onResult), data: data}:
		return nil
	default:
		return ErrSendQueueFull
	}
}

// Stop shuts the client down and waits for the run loop to exit. Goals
// still pending are dropped; their callbacks never fire.
func (c *TrajectoryClient) Stop() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.wg.Wait()
		c.socket.Close()
		c.logger.Infof("Trajectory client for %s stopped", c.group)
	})
}

func (c *TrajectoryClient) closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// run owns the socket: flush queued requests, poll briefly for
// executor messages, repeat until stopped.
func (c *TrajectoryClient) run() {
	defer c.wg.Done()

	for !c.closed() {
		c.flushSendQueue()

		sockets, err := c.poller.Poll(pollInterval)
		if err != nil {
			if !c.closed() {
				c.logger.Errorf("Error polling %s executor socket: %v", c.group, err)
			}
			continue
		}
		if len(sockets) == 0 {
			continue
		}

		data, err := c.socket.RecvBytes(0)
		if err != nil {
			if !c.closed() {
				c.logger.Errorf("Error receiving from %s executor: %v", c.group, err)
			}
			continue
		}
		c.handleMessage(data)
	}
}

func (c *TrajectoryClient) flushSendQueue() {
	for {
		select {
		case out := <-c.sendQueue:
			c.sendGoal(out)
		default:
			return
		}
	}
}

// sendGoal puts one goal request on the wire. The handle is registered
// only after a successful send; a failed send is logged and the goal
// forgotten.
func (c *TrajectoryClient) sendGoal(out outboundGoal) {
	if _, err := c.socket.SendBytes(out.data, 0); err != nil {
		c.logger.Errorf("Error sending goal to %s executor: %v", c.group, err)
		return
	}
	c.pending[out.handle.id] = out.handle
	c.logger.Debugf("Sent goal %s to %s executor", out.handle.id, c.group)
}

func (c *TrajectoryClient) handleMessage(data []byte) {
	var msg ZeroMQMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.logger.Warnf("Discarding malformed message from %s executor: %v", c.group, err)
		return
	}

	switch msg.Type {
	case MsgTypeGoalResponse:
		var response GoalResponse
		if err := json.Unmarshal(msg.Data, &response); err != nil {
			c.logger.Warnf("Discarding malformed goal response: %v", err)
			return
		}
		c.handleResponse(response)
	case MsgTypeGoalResult:
		var result GoalResult
		if err := json.Unmarshal(msg.Data, &result); err != nil {
			c.logger.Warnf("Discarding malformed goal result: %v", err)
			return
		}
		c.handleResult(result)
	default:
		c.logger.Warnf("Ignoring unknown message type from %s executor: %s", c.group, msg.Type)
	}
}

// handleResponse resolves the accept/reject stage. Acceptance triggers
// the result request right away; rejection ends the goal's life.
func (c *TrajectoryClient) handleResponse(response GoalResponse) {
	handle, ok := c.pending[response.GoalID]
	if !ok {
		c.logger.Warnf("Goal response for unknown goal %s", response.GoalID)
		return
	}
	if handle.respond(response.Accepted) {
		c.requestResult(handle.id)
		return
	}
	delete(c.pending, response.GoalID)
}

func (c *TrajectoryClient) requestResult(goalID string) {
	data, err := encodeMessage(MsgTypeResultRequest, ResultRequest{GoalID: goalID})
	if err != nil {
		c.logger.Errorf("Error encoding result request for goal %s: %v", goalID, err)
		return
	}
	if _, err := c.socket.SendBytes(data, 0); err != nil {
		c.logger.Errorf("Error requesting result for goal %s: %v", goalID, err)
	}
}

func (c *TrajectoryClient) handleResult(result GoalResult) {
	handle, ok := c.pending[result.GoalID]
	if !ok {
		c.logger.Warnf("Goal result for unknown goal %s", result.GoalID)
		return
	}
	handle.complete(result.ErrorCode)
	delete(c.pending, result.GoalID)
}
