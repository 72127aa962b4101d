package control

import (
	"fmt"
	"strconv"
	"strings"
)

// Action is an operator command.
type Action int

const (
	ToggleGait Action = iota + 1
	StartTour
	StopTour
	RaiseArm
	Forward
	Backward
	Left
	Right
	Select
)

func (a Action) String() string {
	switch a {
	case ToggleGait:
		return "toggle-gait"
	case StartTour:
		return "start-tour"
	case StopTour:
		return "stop-tour"
	case RaiseArm:
		return "raise-arm"
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	case Left:
		return "left"
	case Right:
		return "right"
	case Select:
		return "select"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// Key is one keyboard event. Exhibit is only meaningful for Select.
type Key struct {
	Action  Action
	Exhibit int
}

// SelectKey chooses exhibit k.
func SelectKey(k int) Key {
	return Key{Action: Select, Exhibit: k}
}

func (k Key) String() string {
	if k.Action == Select {
		return fmt.Sprintf("select %d", k.Exhibit)
	}
	return k.Action.String()
}

// ParseKey maps a key name as reported by the terminal to a Key:
// space, g, s, q, the arrow names and the digits.
func ParseKey(name string) (Key, bool) {
	switch strings.ToLower(name) {
	case " ", "space":
		return Key{Action: ToggleGait}, true
	case "g":
		return Key{Action: StartTour}, true
	case "s":
		return Key{Action: StopTour}, true
	case "q":
		return Key{Action: RaiseArm}, true
	case "up":
		return Key{Action: Forward}, true
	case "down":
		return Key{Action: Backward}, true
	case "left":
		return Key{Action: Left}, true
	case "right":
		return Key{Action: Right}, true
	}
	if n, err := strconv.Atoi(name); err == nil && n >= 0 && n <= 9 && len(name) == 1 {
		return SelectKey(n), true
	}
	return Key{}, false
}
