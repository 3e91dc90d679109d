package api

import "github.com/open-teleop/arm-teleop/domain/diagnostic"

// --- Data Structures for WebSocket Messages ---

// StatusFrame is one WebSocket status push. Type tags the frame so
// clients can switch on it when more frame kinds appear.
type StatusFrame struct {
	Type    string                   `json:"type"`
	Session diagnostic.SessionStatus `json:"session"`
}
