package app

import (
	"sync"
	"time"

	"iq-quiz-service/internal/domain"
	"iq-quiz-service/internal/quiz"
)

// EventType discriminates session events pushed to subscribers.
type EventType string

const (
	EventQuestion     EventType = "question"
	EventTick         EventType = "tick"
	EventExpired      EventType = "expired"
	EventAnswer       EventType = "answer"
	EventCompleted    EventType = "completed"
	EventSubmitStatus EventType = "submitStatus"
)

// QuestionView is what the client is allowed to see of the current question.
// The correct option never leaves the server.
type QuestionView struct {
	Index      int               `json:"index"`
	Total      int               `json:"total"`
	Prompt     string            `json:"prompt"`
	Options    []string          `json:"options"`
	Difficulty domain.Difficulty `json:"difficulty"`
	TimeLimit  int               `json:"timeLimit"`
}

// Event is one update on a session's subscription channel.
type Event struct {
	Type          EventType                `json:"type"`
	Question      *QuestionView            `json:"question,omitempty"`
	TimeRemaining int                      `json:"timeRemaining,omitempty"`
	Answer        *domain.AnsweredQuestion `json:"answer,omitempty"`
	Result        *domain.TestResult       `json:"result,omitempty"`
	Answers       domain.AnswerLog         `json:"answers,omitempty"`
	Status        domain.SubmitStatus      `json:"status,omitempty"`
}

// Session is the process-local state of one quiz attempt. It is exclusively
// owned by its service; all mutation happens under mu via machine transitions
// and controller advancement.
type Session struct {
	id       string
	userName string
	policy   quiz.Policy
	now      func() time.Time

	mu           sync.Mutex
	questions    []domain.Question
	current      int
	machine      *quiz.QuestionMachine
	log          domain.AnswerLog
	gen          int
	tickStop     chan struct{}
	graceTimer   *time.Timer
	expiredSeen  bool
	completed    bool
	result       *domain.TestResult
	submitStatus domain.SubmitStatus
	subscribers  map[chan Event]struct{}
}

func newSession(id, userName string, policy quiz.Policy, questions []domain.Question, now func() time.Time) *Session {
	return &Session{
		id:           id,
		userName:     userName,
		policy:       policy,
		now:          now,
		questions:    questions,
		submitStatus: domain.SubmitIdle,
		subscribers:  make(map[chan Event]struct{}),
	}
}

// NewSession is exported for infrastructure layers and tests that need to
// seed sessions without running the full draw.
func NewSession(id, userName string) *Session {
	return newSession(id, userName, quiz.PolicyProgressive, nil, time.Now)
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// UserName returns the display name the session was started with.
func (s *Session) UserName() string { return s.userName }

// AnswerLog returns a copy of the answers finalized so far.
func (s *Session) AnswerLog() domain.AnswerLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(domain.AnswerLog, len(s.log))
	copy(out, s.log)
	return out
}

// SubmitStatus returns the state of the persistence write.
func (s *Session) SubmitStatus() domain.SubmitStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitStatus
}

func (s *Session) questionViewLocked() QuestionView {
	q := s.questions[s.current]
	options := make([]string, len(q.Options))
	copy(options, q.Options)
	return QuestionView{
		Index:      s.current,
		Total:      len(s.questions),
		Prompt:     q.Prompt,
		Options:    options,
		Difficulty: q.Difficulty,
		TimeLimit:  q.TimeLimitSeconds(),
	}
}

func (s *Session) subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	// Late subscribers still see the current question.
	if s.machine != nil && !s.completed {
		view := s.questionViewLocked()
		ch <- Event{Type: EventQuestion, Question: &view, TimeRemaining: s.machine.TimeRemaining()}
	}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) broadcastLocked(event Event) {
	for ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			// Drop the oldest update so a slow client cannot block the session.
			select {
			case <-ch:
			default:
			}
			ch <- event
		}
	}
}
