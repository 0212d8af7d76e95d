package client

import "fmt"

// State is the connection state of a Client.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateOpen
	StateClosedClean
	StateClosedUnclean
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosedClean:
		return "closed_clean"
	case StateClosedUnclean:
		return "closed_unclean"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}
