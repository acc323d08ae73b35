// Package fsm defines the interview session state machine.
package fsm

import "fmt"

type State string

type Event string

const (
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
)

const (
	EventSelect      Event = "select"
	EventSelectEmpty Event = "select-empty"
	EventAnswer      Event = "answer"
	EventAnswerLast  Event = "answer-last"
	EventRetry       Event = "retry"
)

func Transition(current State, event Event) (State, error) {
	switch current {
	case StateInProgress, StateCompleted:
	default:
		return current, fmt.Errorf("unknown state %q", current)
	}

	switch event {
	case EventSelect:
		return StateInProgress, nil
	case EventSelectEmpty:
		return StateCompleted, nil
	case EventRetry:
		return StateInProgress, nil
	}

	switch current {
	case StateInProgress:
		switch event {
		case EventAnswer:
			return StateInProgress, nil
		case EventAnswerLast:
			return StateCompleted, nil
		default:
			return current, invalidTransition(current, event)
		}
	default:
		return current, invalidTransition(current, event)
	}
}

func invalidTransition(state State, event Event) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", state, event)
}
