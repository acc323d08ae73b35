// Package session implements the interview session as an explicit state value.
//
// Every transition takes a Session and returns a new Session; the caller owns the
// value and decides where it lives.
package session

import (
	"errors"
	"regexp"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/rbright/mockview/internal/evaluator"
	"github.com/rbright/mockview/internal/fsm"
	"github.com/rbright/mockview/internal/questionbank"
)

var (
	// ErrEmptyAnswer indicates a submit with empty or whitespace-only text.
	ErrEmptyAnswer = errors.New("enter an answer before submitting")
	// ErrCompleted indicates an answer-phase action after the last question.
	ErrCompleted = errors.New("interview already completed")
	// ErrNothingToRetry indicates RetryLast before any answer was submitted.
	ErrNothingToRetry = errors.New("no answer to retry")
	// ErrEmptyQuestionList indicates the selected combo has no questions.
	ErrEmptyQuestionList = errors.New("no questions available for this role and interview type")
)

// Response is one evaluated answer.
type Response struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}

// Session is the full state of one user's interview.
type Session struct {
	id               string
	role             questionbank.Role
	kind             questionbank.InterviewType
	questions        []string
	index            int
	responses        []Response
	pendingVoiceText string
	state            fsm.State
}

var idPattern = regexp.MustCompile(`^[0-9a-f]{8}$`)

// NewID returns a fresh 8 character hex session id.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// ValidID reports whether id has the NewID shape.
func ValidID(id string) bool {
	return idPattern.MatchString(id)
}

// New creates a session for id and selects the initial combo.
func New(id string, bank *questionbank.Bank, role questionbank.Role, kind questionbank.InterviewType) (Session, error) {
	return Session{id: id, state: fsm.StateCompleted}.SelectCombo(bank, role, kind)
}

func (s Session) ID() string                       { return s.id }
func (s Session) Role() questionbank.Role          { return s.role }
func (s Session) Type() questionbank.InterviewType { return s.kind }
func (s Session) State() fsm.State                 { return s.state }
func (s Session) Index() int                       { return s.index }
func (s Session) Total() int                       { return len(s.questions) }
func (s Session) PendingVoiceText() string         { return s.pendingVoiceText }

// Responses returns a copy of the submitted responses in order.
func (s Session) Responses() []Response {
	return slices.Clone(s.responses)
}

// Completed reports whether every question of the combo has been answered.
func (s Session) Completed() bool {
	return s.state == fsm.StateCompleted
}

// Progress returns Index/Total, or 0 for an empty combo.
func (s Session) Progress() float64 {
	if len(s.questions) == 0 {
		return 0
	}
	return float64(s.index) / float64(len(s.questions))
}

// CurrentQuestion returns the question awaiting an answer.
func (s Session) CurrentQuestion() (string, error) {
	if len(s.questions) == 0 {
		return "", ErrEmptyQuestionList
	}
	if s.index >= len(s.questions) {
		return "", ErrCompleted
	}
	return s.questions[s.index], nil
}

// SelectCombo switches to role/kind and resets progress, responses, and voice draft.
func (s Session) SelectCombo(bank *questionbank.Bank, role questionbank.Role, kind questionbank.InterviewType) (Session, error) {
	questions, err := bank.Questions(role, kind)
	if err != nil {
		return s, err
	}

	event := fsm.EventSelect
	if len(questions) == 0 {
		event = fsm.EventSelectEmpty
	}
	state, err := fsm.Transition(s.state, event)
	if err != nil {
		return s, err
	}

	return Session{
		id:        s.id,
		role:      role,
		kind:      kind,
		questions: questions,
		state:     state,
	}, nil
}

// SubmitAnswer evaluates text against the current question and advances.
func (s Session) SubmitAnswer(text string) (Session, Response, error) {
	if s.state == fsm.StateCompleted {
		return s, Response{}, ErrCompleted
	}
	if strings.TrimSpace(text) == "" {
		return s, Response{}, ErrEmptyAnswer
	}
	question, err := s.CurrentQuestion()
	if err != nil {
		return s, Response{}, err
	}

	event := fsm.EventAnswer
	if s.index+1 == len(s.questions) {
		event = fsm.EventAnswerLast
	}
	state, err := fsm.Transition(s.state, event)
	if err != nil {
		return s, Response{}, err
	}

	score, feedback := evaluator.Evaluate(text, s.kind)
	resp := Response{Question: question, Answer: text, Score: score, Feedback: feedback}

	next := s
	// Clip forces append to copy so earlier Session values keep their history.
	next.responses = append(slices.Clip(s.responses), resp)
	next.index++
	next.pendingVoiceText = ""
	next.state = state
	return next, resp, nil
}

// RetryLast undoes exactly one SubmitAnswer.
func (s Session) RetryLast() (Session, error) {
	if s.index == 0 {
		return s, ErrNothingToRetry
	}
	state, err := fsm.Transition(s.state, fsm.EventRetry)
	if err != nil {
		return s, err
	}

	next := s
	next.index--
	next.responses = slices.Clip(s.responses[:next.index])
	if next.index == 0 {
		next.responses = nil
	}
	next.state = state
	return next, nil
}
