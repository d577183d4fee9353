package app

import (
	"context"
	"log"
	"math"
	"math/rand"
	"sync"
	"time"

	"iq-quiz-service/internal/domain"
	"iq-quiz-service/internal/quiz"

	"github.com/google/uuid"
)

// BankRepository loads question banks (from cache/backing store).
type BankRepository interface {
	GetBank(ctx context.Context, bankID string) (domain.QuestionBank, error)
}

// SessionRepository abstracts how live sessions are stored (in-memory, Redis, etc).
type SessionRepository interface {
	Put(session *Session)
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
}

// ResultRepository receives completed test submissions.
type ResultRepository interface {
	SaveResult(ctx context.Context, submission domain.TestSubmission) error
}

// SessionConfig tunes the service. Zero values fall back to defaults.
type SessionConfig struct {
	BankID string
	Quota  quiz.Quota
	// Grace is how long an expired question stays on screen before the
	// forced advance fires.
	Grace time.Duration
	// ManualTicks disables the internal 1-second ticker; tests drive
	// Tick themselves.
	ManualTicks bool
	Clock       func() time.Time
	Seed        int64
}

const (
	defaultBankID = "default"
	defaultGrace  = 2 * time.Second
	submitTimeout = 10 * time.Second
)

// SessionService orchestrates one quiz attempt: draw questions, run one
// timed machine per question in sequence, accumulate the answer log, score
// it, and hand the submission to the results store.
type SessionService struct {
	banks    BankRepository
	sessions SessionRepository
	results  ResultRepository

	bankID string
	quota  quiz.Quota
	grace  time.Duration
	manual bool
	clock  func() time.Time

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewSessionService(banks BankRepository, sessions SessionRepository, results ResultRepository, cfg SessionConfig) *SessionService {
	if cfg.BankID == "" {
		cfg.BankID = defaultBankID
	}
	if cfg.Quota.Total() == 0 {
		cfg.Quota = quiz.DefaultQuota
	}
	if cfg.Grace <= 0 {
		cfg.Grace = defaultGrace
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	return &SessionService{
		banks:    banks,
		sessions: sessions,
		results:  results,
		bankID:   cfg.BankID,
		quota:    cfg.Quota,
		grace:    cfg.Grace,
		manual:   cfg.ManualTicks,
		clock:    cfg.Clock,
		rnd:      rand.New(rand.NewSource(cfg.Seed)),
	}
}

// StartSession draws a fresh question set and presents the first question.
func (s *SessionService) StartSession(ctx context.Context, userName string, policy quiz.Policy) (*Session, error) {
	questions, err := s.draw(ctx, policy)
	if err != nil {
		return nil, err
	}

	sess := newSession(uuid.NewString(), userName, policy, questions, s.clock)
	s.sessions.Put(sess)

	sess.mu.Lock()
	s.presentLocked(sess)
	sess.mu.Unlock()
	return sess, nil
}

// SelectOption records or changes the pending selection on the current question.
func (s *SessionService) SelectOption(sessionID string, option int) error {
	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.ErrSessionNotFound
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.completed {
		return domain.ErrSessionComplete
	}
	return sess.machine.Select(option)
}

// Advance finalizes the current question on the user's request.
func (s *SessionService) Advance(sessionID string) error {
	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.ErrSessionNotFound
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.completed {
		return domain.ErrSessionComplete
	}
	return s.advanceLocked(sess, false)
}

// Tick consumes one second on the current question. Exposed for tests and
// manual drivers; the internal ticker calls the same path.
func (s *SessionService) Tick(sessionID string) error {
	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.ErrSessionNotFound
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.completed {
		return domain.ErrSessionComplete
	}
	s.tickLocked(sess)
	return nil
}

// Reshuffle discards the current draw and presents a new one. Only valid
// before any question has been finalized.
func (s *SessionService) Reshuffle(ctx context.Context, sessionID string) error {
	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.ErrSessionNotFound
	}

	questions, err := s.draw(ctx, sess.policy)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.completed || len(sess.log) > 0 {
		return domain.ErrSessionInProgress
	}
	s.cancelTimersLocked(sess)
	sess.questions = questions
	sess.current = 0
	s.presentLocked(sess)
	return nil
}

// Subscribe returns a channel of session events. The caller must invoke the
// returned cancel function to avoid leaks.
func (s *SessionService) Subscribe(sessionID string) (<-chan Event, func(), error) {
	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := sess.subscribe()
	return ch, cancel, nil
}

// EndSession cancels any running timers and drops the session. Used when the
// client disconnects or restarts.
func (s *SessionService) EndSession(sessionID string) {
	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	sess.mu.Lock()
	s.cancelTimersLocked(sess)
	sess.mu.Unlock()
	s.sessions.Delete(sessionID)
}

// Result returns the computed result once the session completed.
func (s *SessionService) Result(sessionID string) (domain.TestResult, error) {
	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.TestResult{}, domain.ErrSessionNotFound
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if !sess.completed || sess.result == nil {
		return domain.TestResult{}, domain.ErrSessionNotFound
	}
	return *sess.result, nil
}

func (s *SessionService) draw(ctx context.Context, policy quiz.Policy) ([]domain.Question, error) {
	bank, err := s.banks.GetBank(ctx, s.bankID)
	if err != nil {
		return nil, err
	}
	s.rndMu.Lock()
	defer s.rndMu.Unlock()
	return quiz.Select(bank.Questions, policy, s.quota, s.rnd)
}

// presentLocked enters the machine for the current index and starts its
// countdown. Callers hold sess.mu.
func (s *SessionService) presentLocked(sess *Session) {
	q := sess.questions[sess.current]
	sess.machine = quiz.NewQuestionMachineWithClock(q, sess.now)
	sess.expiredSeen = false

	view := sess.questionViewLocked()
	sess.broadcastLocked(Event{Type: EventQuestion, Question: &view, TimeRemaining: sess.machine.TimeRemaining()})

	if !s.manual {
		s.startTickerLocked(sess)
	}
}

// startTickerLocked runs the 1-second cadence for the current question. The
// generation counter makes ticks from a superseded question harmless.
func (s *SessionService) startTickerLocked(sess *Session) {
	stop := make(chan struct{})
	sess.tickStop = stop
	gen := sess.gen

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if !s.tickGen(sess, gen) {
					return
				}
			case <-stop:
				return
			}
		}
	}()
}

// tickGen applies one tick if the question generation is still current.
func (s *SessionService) tickGen(sess *Session, gen int) bool {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.completed || sess.gen != gen {
		return false
	}
	s.tickLocked(sess)
	return true
}

func (s *SessionService) tickLocked(sess *Session) {
	state := sess.machine.Tick()
	switch state {
	case quiz.StatePresenting:
		sess.broadcastLocked(Event{Type: EventTick, TimeRemaining: sess.machine.TimeRemaining()})
	case quiz.StateExpired:
		if sess.expiredSeen {
			return
		}
		sess.expiredSeen = true
		sess.broadcastLocked(Event{Type: EventExpired, TimeRemaining: 0})
		// Leave the expiry notice on screen for the grace delay, then
		// force the advance. A stale timer is neutralized by the
		// generation check.
		gen := sess.gen
		sess.graceTimer = time.AfterFunc(s.grace, func() {
			s.forceAdvance(sess, gen)
		})
	}
}

func (s *SessionService) forceAdvance(sess *Session, gen int) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.completed || sess.gen != gen {
		return
	}
	if err := s.advanceLocked(sess, true); err != nil {
		log.Printf("forced advance failed: %v", err)
	}
}

// advanceLocked finalizes the current question, appends its answer record and
// moves on. Exactly one record per question: the machine's terminal state
// guards against double emission.
func (s *SessionService) advanceLocked(sess *Session, forced bool) error {
	answer, err := sess.machine.Advance(forced)
	if err != nil {
		return err
	}
	sess.log = append(sess.log, answer)
	s.cancelTimersLocked(sess)
	sess.broadcastLocked(Event{Type: EventAnswer, Answer: &answer})

	sess.current++
	if sess.current < len(sess.questions) {
		s.presentLocked(sess)
		return nil
	}
	s.completeLocked(sess)
	return nil
}

// cancelTimersLocked stops the countdown and any pending forced advance for
// the current question and bumps the generation so stale callbacks no-op.
func (s *SessionService) cancelTimersLocked(sess *Session) {
	sess.gen++
	if sess.tickStop != nil {
		close(sess.tickStop)
		sess.tickStop = nil
	}
	if sess.graceTimer != nil {
		sess.graceTimer.Stop()
		sess.graceTimer = nil
	}
}

// completeLocked scores the log, publishes the result immediately and kicks
// off the fire-and-forget persistence write.
func (s *SessionService) completeLocked(sess *Session) {
	sess.completed = true
	result, err := quiz.Score(sess.log)
	if err != nil {
		// Unreachable with a non-empty draw; surface loudly if it happens.
		log.Printf("score failed for session %s: %v", sess.id, err)
		return
	}
	sess.result = &result
	sess.broadcastLocked(Event{Type: EventCompleted, Result: &result, Answers: sess.log})

	if s.results == nil {
		return
	}
	sess.submitStatus = domain.SubmitSubmitting
	sess.broadcastLocked(Event{Type: EventSubmitStatus, Status: sess.submitStatus})

	submission := buildSubmission(sess.userName, result, sess.log)
	go s.submit(sess, submission)
}

// submit performs the persistence write. The result is already on screen;
// the outcome only updates the surfaced status, never blocks, never retries.
func (s *SessionService) submit(sess *Session, submission domain.TestSubmission) {
	ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
	defer cancel()

	status := domain.SubmitSuccess
	if err := s.results.SaveResult(ctx, submission); err != nil {
		log.Printf("save result for %q: %v", submission.Name, err)
		status = domain.SubmitError
	}

	sess.mu.Lock()
	sess.submitStatus = status
	sess.broadcastLocked(Event{Type: EventSubmitStatus, Status: status})
	sess.mu.Unlock()
}

func buildSubmission(name string, result domain.TestResult, log domain.AnswerLog) domain.TestSubmission {
	pct := float64(result.RawScore) / float64(result.TotalQuestions) * 100
	return domain.TestSubmission{
		Name:             name,
		Score:            result.RawScore,
		TotalQuestions:   result.TotalQuestions,
		IQScore:          result.IQEstimate,
		Percentage:       math.Round(pct*100) / 100,
		TimeSpent:        log.TotalTimeSpent(),
		TimeExpiredCount: log.ExpiredCount(),
		Answers:          log,
	}
}
