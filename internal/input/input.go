// Package input buffers discrete operator actions between frames.
package input

import (
	"strings"

	"github.com/OCAP2/missioneditor/internal/queue"
)

// Action is a discrete placement command. Continuous input such as aiming is
// read from the scene each frame instead.
type Action uint8

const (
	Commit Action = iota + 1
	Duplicate
	ConfirmCopy
	CancelCopy
	Inspect
	RotateLeft
	RotateRight
	RemoveGhost
	Delete
)

var actionNames = map[Action]string{
	Commit:      "commit",
	Duplicate:   "copy",
	ConfirmCopy: "confirm",
	CancelCopy:  "cancel",
	Inspect:     "inspect",
	RotateLeft:  "left",
	RotateRight: "right",
	RemoveGhost: "drop",
	Delete:      "delete",
}

func (a Action) String() string {
	if s, ok := actionNames[a]; ok {
		return s
	}
	return "unknown"
}

// ParseAction maps a command word to an Action.
func ParseAction(s string) (Action, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for a, name := range actionNames {
		if name == s {
			return a, true
		}
	}
	return 0, false
}

// Queue collects actions from any goroutine until the frame loop drains them.
type Queue struct {
	*queue.Queue[Action]
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{Queue: queue.New[Action]()}
}

// Drain returns the pending actions in arrival order and empties the queue.
func (q *Queue) Drain() []Action {
	return q.GetAndEmpty()
}
