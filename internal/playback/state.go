package playback

import (
	"fmt"
	"time"
)

type State int

const (
	StateIdle State = iota
	StateLoading
	StatePaused
	StatePlaying
	StateStalled
	StateEnded
	StateTornDown
)

var stateNames = map[State]string{
	StateIdle:     "idle",
	StateLoading:  "loading",
	StatePaused:   "paused",
	StatePlaying:  "playing",
	StateStalled:  "stalled",
	StateEnded:    "ended",
	StateTornDown: "torn_down",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Ready reports whether a player is attached (paused, playing, stalled or
// parked at the end).
func (s State) Ready() bool {
	switch s {
	case StatePaused, StatePlaying, StateStalled, StateEnded:
		return true
	}
	return false
}

// Snapshot is the observable state of one session, for overlay UI.
type Snapshot struct {
	URL        string
	State      State
	Position   time.Duration
	Duration   time.Duration
	Visible    bool
	UserPaused bool
	Err        error
}

// Active reports whether the session is trying to play. Stalled counts:
// the player has been asked to play and is buffering.
func (s Snapshot) Active() bool {
	return s.State == StatePlaying || s.State == StateStalled
}
