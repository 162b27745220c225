package tracker

import (
	"fmt"

	"github.com/pkg/errors"
)

// State is the tracking state.
type State int

const (
	// Idle means nothing is being tracked. A path may be assigned.
	Idle State = iota
	// Active means the path is being tracked and Advance produces commands.
	Active
	// Completed means the end of the path was reached.
	Completed
	// Failed means tracking was aborted by an error.
	Failed
	// Stopped means tracking was stopped on request.
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Active:
		return "active"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Terminal reports whether the state ends a tracking session.
func (s State) Terminal() bool {
	return s == Completed || s == Failed || s == Stopped
}

type event int

const (
	eventStart event = iota
	eventStop
	eventComplete
	eventFail
	eventReset
)

func (e event) String() string {
	return [...]string{"start", "stop", "complete", "fail", "reset"}[e]
}

// transitions lists every allowed state change. Anything missing is rejected.
var transitions = map[State]map[event]State{
	Idle: {
		eventStart: Active,
	},
	Active: {
		eventStop:     Stopped,
		eventComplete: Completed,
		eventFail:     Failed,
	},
	Completed: {eventReset: Idle},
	Failed:    {eventReset: Idle},
	Stopped:   {eventReset: Idle},
}

func nextState(from State, ev event) (State, error) {
	to, ok := transitions[from][ev]
	if !ok {
		return from, errors.Errorf("cannot %s while %s", ev, from)
	}
	return to, nil
}
