package tour

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// State selects what the guide does on a tick.
type State int

const (
	Start State = iota + 1
	Running
	Revolve
	Show
	AutoMove
	Off
)

func (s State) String() string {
	switch s {
	case Start:
		return "START"
	case Running:
		return "RUNNING"
	case Revolve:
		return "REVOLVE"
	case Show:
		return "SHOW"
	case AutoMove:
		return "AUTO_MOVE"
	case Off:
		return "OFF"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ParseState converts a state name into a State.
func ParseState(value string) (State, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "START":
		return Start, nil
	case "RUNNING":
		return Running, nil
	case "REVOLVE":
		return Revolve, nil
	case "SHOW":
		return Show, nil
	case "AUTO_MOVE":
		return AutoMove, nil
	case "OFF":
		return Off, nil
	default:
		return Off, errors.Errorf("unknown state %q", value)
	}
}
