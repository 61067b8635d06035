// Package feed broadcasts pursuer pose snapshots and capture events to
// websocket spectators. It is the in-repo stand-in for the networking
// collaborator consuming this core's outputs.
package feed

// Message types on the wire.
const (
	TypeHello   = "hello"
	TypePose    = "pose"
	TypeCapture = "capture"
	TypeReset   = "reset"
)

// HelloMessage is sent once on connect.
type HelloMessage struct {
	Type     string `json:"type"`
	TickRate int    `json:"tickRate"`
}

// PoseMessage carries the pursuer's pose as of the latest completed tick.
type PoseMessage struct {
	Type   string  `json:"type"`
	Tick   int     `json:"tick"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Z      float64 `json:"z"`
	Facing float64 `json:"facing"`
	State  string  `json:"state"`
}

// CaptureMessage is forwarded exactly once per successful catch.
type CaptureMessage struct {
	Type     string  `json:"type"`
	TargetID string  `json:"targetId"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Z        float64 `json:"z"`
}

// ResetMessage signals a round reset to spectators.
type ResetMessage struct {
	Type string `json:"type"`
}
