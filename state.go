package ftp

import "fmt"

// State is the lifecycle state of a ControlChannel.
type State int

const (
	// Unconnected is the state of a channel returned by NewControlChannel.
	Unconnected State = iota

	// Connected is entered once the server greeted with a 220 reply.
	Connected

	// Closed is final. A channel whose greeting failed is also Closed.
	Closed
)

// String returns the name of the state.
func (s State) String() string {
	switch s {
	case Unconnected:
		return "unconnected"
	case Connected:
		return "connected"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}
