package quiz

import (
	"errors"
	"testing"
	"time"

	"iq-quiz-service/internal/domain"
)

func testQuestion() domain.Question {
	return domain.Question{
		ID:            1,
		Prompt:        "What comes next: 2, 4, 8, 16?",
		Options:       []string{"24", "32", "30", "20"},
		CorrectOption: 1,
		Difficulty:    domain.DifficultyEasy,
	}
}

// fakeClock advances by a fixed step on every call.
type fakeClock struct {
	now  time.Time
	step time.Duration
}

func (c *fakeClock) Now() time.Time {
	c.now = c.now.Add(c.step)
	return c.now
}

func TestMachineAnswerFlow(t *testing.T) {
	m := NewQuestionMachine(testQuestion())
	if m.State() != StatePresenting {
		t.Fatalf("expected presenting, got %v", m.State())
	}
	if m.TimeRemaining() != 30 {
		t.Fatalf("expected easy limit 30, got %d", m.TimeRemaining())
	}

	if err := m.Select(0); err != nil {
		t.Fatalf("select: %v", err)
	}
	// Changing the pending selection before advancing is allowed.
	if err := m.Select(1); err != nil {
		t.Fatalf("re-select: %v", err)
	}

	answer, err := m.Advance(false)
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if !answer.IsCorrect || answer.TimeExpired || answer.SelectedOption != 1 {
		t.Fatalf("unexpected answer %+v", answer)
	}
	if m.State() != StateAdvancing {
		t.Fatalf("expected advancing, got %v", m.State())
	}
}

func TestMachineExpiresAfterLimitTicks(t *testing.T) {
	q := testQuestion()
	m := NewQuestionMachine(q)

	limit := q.TimeLimitSeconds()
	for i := 0; i < limit-1; i++ {
		if state := m.Tick(); state != StatePresenting {
			t.Fatalf("expired early at tick %d", i+1)
		}
	}
	if state := m.Tick(); state != StateExpired {
		t.Fatalf("expected expired after %d ticks, got %v", limit, state)
	}

	if err := m.Select(1); !errors.Is(err, domain.ErrTimeExpired) {
		t.Fatalf("expected time expired error, got %v", err)
	}

	answer, err := m.Advance(true)
	if err != nil {
		t.Fatalf("forced advance: %v", err)
	}
	if answer.SelectedOption != domain.NoSelection || answer.IsCorrect || !answer.TimeExpired {
		t.Fatalf("expected {-1, false, true}, got %+v", answer)
	}
}

func TestExpiryOverridesPendingCorrectSelection(t *testing.T) {
	q := testQuestion()
	m := NewQuestionMachine(q)

	if err := m.Select(q.CorrectOption); err != nil {
		t.Fatalf("select: %v", err)
	}
	for i := 0; i < q.TimeLimitSeconds(); i++ {
		m.Tick()
	}
	if m.State() != StateExpired {
		t.Fatalf("expected expired, got %v", m.State())
	}

	answer, err := m.Advance(false)
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if answer.IsCorrect {
		t.Fatalf("expiry must override correctness, got %+v", answer)
	}
	if !answer.TimeExpired || answer.SelectedOption != q.CorrectOption {
		t.Fatalf("expected expired record keeping selection, got %+v", answer)
	}
}

func TestMachineEmitsExactlyOnce(t *testing.T) {
	m := NewQuestionMachine(testQuestion())
	if _, err := m.Advance(false); !errors.Is(err, domain.ErrNoSelection) {
		t.Fatalf("expected no selection error, got %v", err)
	}
	if _, err := m.Advance(true); err != nil {
		t.Fatalf("forced advance: %v", err)
	}
	if _, err := m.Advance(true); !errors.Is(err, domain.ErrAlreadyAdvanced) {
		t.Fatalf("expected already advanced, got %v", err)
	}
	if err := m.Select(0); !errors.Is(err, domain.ErrAlreadyAdvanced) {
		t.Fatalf("expected select rejected after advance, got %v", err)
	}
}

func TestMachineHonorsQuestionTimeLimit(t *testing.T) {
	q := testQuestion()
	q.TimeLimit = 12
	m := NewQuestionMachine(q)

	if m.TimeRemaining() != 12 {
		t.Fatalf("expected question limit 12, got %d", m.TimeRemaining())
	}
	for i := 0; i < 12; i++ {
		m.Tick()
	}
	if m.State() != StateExpired {
		t.Fatalf("expected expired after question limit, got %v", m.State())
	}
}

func TestMachineRejectsOutOfRangeOption(t *testing.T) {
	m := NewQuestionMachine(testQuestion())
	if err := m.Select(4); !errors.Is(err, domain.ErrOptionOutOfRange) {
		t.Fatalf("expected out of range, got %v", err)
	}
	if err := m.Select(-1); !errors.Is(err, domain.ErrOptionOutOfRange) {
		t.Fatalf("expected out of range for negative, got %v", err)
	}
}

func TestMachineTracksTimeSpent(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0), step: 12 * time.Second}
	m := NewQuestionMachineWithClock(testQuestion(), clock.Now)

	if err := m.Select(1); err != nil {
		t.Fatalf("select: %v", err)
	}
	answer, err := m.Advance(false)
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	// One clock step between entry and advance.
	if answer.TimeSpentSeconds != 12 {
		t.Fatalf("expected 12s spent, got %d", answer.TimeSpentSeconds)
	}
}
