package sequencer

import "errors"

// ErrInvalidTransition is returned by Start outside the idle state or
// after Close.
var ErrInvalidTransition = errors.New("invalid state transition")

// State is the position of the sequencer within a question.
type State int

const (
	// StateIdle waits for a category to be chosen.
	StateIdle State = iota
	// StatePlayingPart1 plays the lead-in segment.
	StatePlayingPart1
	// StatePlayingCueAndPart2 plays the cue followed by the clue segment.
	StatePlayingCueAndPart2
	// StatePlayingAnswer plays the answer segment.
	StatePlayingAnswer
	// StateAnswerShown has finished all audio for the question.
	StateAnswerShown
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlayingPart1:
		return "playing part 1"
	case StatePlayingCueAndPart2:
		return "playing cue and part 2"
	case StatePlayingAnswer:
		return "playing answer"
	case StateAnswerShown:
		return "answer shown"
	default:
		return "unknown"
	}
}

// Playing reports whether audio for the question is under way.
func (s State) Playing() bool {
	return s == StatePlayingPart1 || s == StatePlayingCueAndPart2 || s == StatePlayingAnswer
}

// Buzzable reports whether a buzz is accepted in s.
func (s State) Buzzable() bool {
	return s == StatePlayingPart1 || s == StatePlayingCueAndPart2
}

// stateMachine guards state changes with a fixed transition table.
type stateMachine struct {
	current      State
	transitions  map[State][]State
	onTransition func(from, to State)
}

func newStateMachine() *stateMachine {
	return &stateMachine{
		current: StateIdle,
		transitions: map[State][]State{
			StateIdle:               {StatePlayingPart1},
			StatePlayingPart1:       {StatePlayingCueAndPart2, StatePlayingAnswer},
			StatePlayingCueAndPart2: {StatePlayingAnswer},
			StatePlayingAnswer:      {StateAnswerShown},
			StateAnswerShown:        {StateIdle},
		},
	}
}

// can reports whether the table allows moving to to.
func (sm *stateMachine) can(to State) bool {
	for _, s := range sm.transitions[sm.current] {
		if s == to {
			return true
		}
	}
	return false
}

// transition moves to to if the table allows it.
func (sm *stateMachine) transition(to State) bool {
	if !sm.can(to) {
		return false
	}
	sm.set(to)
	return true
}

// reset returns to idle from anywhere.
func (sm *stateMachine) reset() {
	sm.set(StateIdle)
}

func (sm *stateMachine) set(to State) {
	from := sm.current
	sm.current = to
	if sm.onTransition != nil && from != to {
		sm.onTransition(from, to)
	}
}
