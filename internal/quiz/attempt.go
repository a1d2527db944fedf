package quiz

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

// State is a step in the lifecycle of one quiz instance.
type State int

const (
	StateIdle State = iota
	StateGenerating
	StateReady
	StateAnswering
	StateSubmitted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateGenerating:
		return "generating"
	case StateReady:
		return "ready"
	case StateAnswering:
		return "answering"
	case StateSubmitted:
		return "submitted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	ErrInvalidTransition = errors.New("invalid quiz state transition")
	ErrIncomplete        = errors.New("not every question has been answered")
	ErrUnknownOption     = errors.New("selected option is not one of the question's options")
	ErrNoSuchQuestion    = errors.New("question index out of range")
)

// Source produces validated questions for a topic.
type Source interface {
	GenerateQuiz(ctx context.Context, topic string, count int) ([]Question, error)
}

// Attempt tracks one learner's pass through a quiz:
// Idle → Generating → Ready → Answering → Submitted.
// A failed generation returns the attempt to Idle so it can be retried.
// Submitted is terminal. An Attempt is not safe for concurrent use.
type Attempt struct {
	topic     string
	state     State
	questions []Question
	selected  []string
	answered  []bool
	lastErr   error
}

// NewAttempt returns an idle attempt for topic.
func NewAttempt(topic string) *Attempt {
	return &Attempt{topic: topic, state: StateIdle}
}

func (a *Attempt) State() State  { return a.state }
func (a *Attempt) Topic() string { return a.topic }

// Err returns the error from the most recent failed generation, if any.
func (a *Attempt) Err() error { return a.lastErr }

// Questions returns a copy of the loaded questions.
func (a *Attempt) Questions() []Question {
	return slices.Clone(a.questions)
}

// Generate asks src for count questions. On success the attempt becomes
// Ready; on failure it returns to Idle and keeps the error.
func (a *Attempt) Generate(ctx context.Context, src Source, count int) error {
	if err := a.expect(StateGenerating, StateIdle); err != nil {
		return err
	}
	a.state = StateGenerating
	a.lastErr = nil

	questions, err := src.GenerateQuiz(ctx, a.topic, count)
	if err != nil {
		a.state = StateIdle
		a.lastErr = err
		return err
	}

	a.questions = questions
	a.selected = make([]string, len(questions))
	a.answered = make([]bool, len(questions))
	a.state = StateReady
	return nil
}

// Answer records the selected option for question i. Answers may be
// changed until the attempt is submitted.
func (a *Attempt) Answer(i int, option string) error {
	if err := a.expect(StateAnswering, StateReady, StateAnswering); err != nil {
		return err
	}
	if i < 0 || i >= len(a.questions) {
		return fmt.Errorf("%w: %d of %d", ErrNoSuchQuestion, i, len(a.questions))
	}
	if !slices.Contains(a.questions[i].Options, option) {
		return fmt.Errorf("%w: %q", ErrUnknownOption, option)
	}
	a.selected[i] = option
	a.answered[i] = true
	a.state = StateAnswering
	return nil
}

// Remaining returns how many questions are still unanswered.
func (a *Attempt) Remaining() int {
	n := 0
	for _, ok := range a.answered {
		if !ok {
			n++
		}
	}
	return n
}

// Submit grades the attempt and returns the result owned by identity.
// Every question must be answered.
func (a *Attempt) Submit(identity string) (Result, error) {
	if a.state == StateReady || (a.state == StateAnswering && a.Remaining() > 0) {
		return Result{}, fmt.Errorf("%w: %d remaining", ErrIncomplete, a.Remaining())
	}
	if err := a.expect(StateSubmitted, StateAnswering); err != nil {
		return Result{}, err
	}

	responses, score := Grade(a.questions, a.selected)
	a.state = StateSubmitted
	return Result{
		UserIdentity: identity,
		Topic:        a.topic,
		Score:        score,
		Total:        len(a.questions),
		Responses:    responses,
	}, nil
}

// expect reports whether moving to next is legal from the current state.
func (a *Attempt) expect(next State, from ...State) error {
	if !slices.Contains(from, a.state) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.state, next)
	}
	return nil
}
