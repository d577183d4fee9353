package quiz

import (
	"time"

	"iq-quiz-service/internal/domain"
)

// MachineState is the lifecycle of one presented question.
type MachineState int

const (
	// StatePresenting counts down; selections may still change.
	StatePresenting MachineState = iota
	// StateExpired means the countdown hit zero before an advance.
	StateExpired
	// StateAdvancing is terminal; the answer record has been emitted.
	StateAdvancing
)

func (s MachineState) String() string {
	switch s {
	case StatePresenting:
		return "presenting"
	case StateExpired:
		return "expired"
	case StateAdvancing:
		return "advancing"
	default:
		return "unknown"
	}
}

// QuestionMachine enforces the countdown, answer locking and forced
// progression for a single question. It emits exactly one AnsweredQuestion,
// on Advance, and can never return to Presenting afterwards.
type QuestionMachine struct {
	question  domain.Question
	remaining int
	selected  int
	state     MachineState
	enteredAt time.Time
	now       func() time.Time
}

// NewQuestionMachine enters Presenting with the question's time limit.
func NewQuestionMachine(q domain.Question) *QuestionMachine {
	return NewQuestionMachineWithClock(q, time.Now)
}

// NewQuestionMachineWithClock allows deterministic timestamps in tests.
func NewQuestionMachineWithClock(q domain.Question, now func() time.Time) *QuestionMachine {
	return &QuestionMachine{
		question:  q,
		remaining: q.TimeLimitSeconds(),
		selected:  domain.NoSelection,
		state:     StatePresenting,
		enteredAt: now(),
		now:       now,
	}
}

// Question returns the question being presented.
func (m *QuestionMachine) Question() domain.Question { return m.question }

// State returns the current machine state.
func (m *QuestionMachine) State() MachineState { return m.state }

// TimeRemaining returns the seconds left on the countdown.
func (m *QuestionMachine) TimeRemaining() int { return m.remaining }

// Selected returns the pending selection, or domain.NoSelection.
func (m *QuestionMachine) Selected() int { return m.selected }

// Select records or changes the pending selection. Only valid while
// Presenting; once expired the choice is locked out.
func (m *QuestionMachine) Select(option int) error {
	switch m.state {
	case StateAdvancing:
		return domain.ErrAlreadyAdvanced
	case StateExpired:
		return domain.ErrTimeExpired
	}
	if option < 0 || option >= len(m.question.Options) {
		return domain.ErrOptionOutOfRange
	}
	m.selected = option
	return nil
}

// Tick consumes one second of the countdown and returns the resulting state.
// Reaching zero transitions to Expired whether or not a selection is pending.
func (m *QuestionMachine) Tick() MachineState {
	if m.state != StatePresenting {
		return m.state
	}
	m.remaining--
	if m.remaining <= 0 {
		m.remaining = 0
		m.state = StateExpired
	}
	return m.state
}

// Advance finalizes the question and emits its answer record. An unforced
// advance requires a pending selection; forced advances are used for the
// timeout path. Expiry overrides correctness: a record produced after the
// machine expired (or under force) is never correct, even if the pending
// selection matches.
func (m *QuestionMachine) Advance(forced bool) (domain.AnsweredQuestion, error) {
	if m.state == StateAdvancing {
		return domain.AnsweredQuestion{}, domain.ErrAlreadyAdvanced
	}
	if m.selected == domain.NoSelection && !forced {
		return domain.AnsweredQuestion{}, domain.ErrNoSelection
	}

	expired := m.state == StateExpired || forced
	spent := int(m.now().Sub(m.enteredAt) / time.Second)
	if spent < 0 {
		spent = 0
	}

	answer := domain.AnsweredQuestion{
		QuestionID:       m.question.ID,
		SelectedOption:   m.selected,
		IsCorrect:        !expired && m.selected == m.question.CorrectOption,
		TimeSpentSeconds: spent,
		TimeExpired:      expired,
	}
	m.state = StateAdvancing
	return answer, nil
}
