package domain

import "time"

// Difficulty tiers order a test from warm-up to brain-melter.
type Difficulty string

const (
	DifficultyEasy    Difficulty = "easy"
	DifficultyMedium  Difficulty = "medium"
	DifficultyHard    Difficulty = "hard"
	DifficultyExtreme Difficulty = "extreme"
)

// Difficulties lists all tiers in ascending order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyExtreme}

// Rank returns the ordering position of the tier, starting at 0 for easy.
// Unknown tiers rank above everything.
func (d Difficulty) Rank() int {
	for i, tier := range Difficulties {
		if tier == d {
			return i
		}
	}
	return len(Difficulties)
}

// TimeLimitSeconds is the per-question countdown for the tier.
// Harder tiers always get at least as much time as easier ones.
func (d Difficulty) TimeLimitSeconds() int {
	switch d {
	case DifficultyEasy:
		return 30
	case DifficultyMedium:
		return 45
	case DifficultyHard:
		return 60
	case DifficultyExtreme:
		return 90
	default:
		return 45
	}
}

// Valid reports whether d is a known tier.
func (d Difficulty) Valid() bool {
	return d.Rank() < len(Difficulties)
}

// NoSelection is the sentinel for "the user picked nothing".
const NoSelection = -1

// Question is a single multiple-choice item. Questions are loaded from a
// static bank and never mutated.
type Question struct {
	ID            int        `json:"id"`
	Prompt        string     `json:"prompt"`
	Options       []string   `json:"options"`
	CorrectOption int        `json:"correctOption"`
	Difficulty    Difficulty `json:"difficulty"`
	Explanation   string     `json:"explanation,omitempty"`
	TimeLimit     int        `json:"timeLimit,omitempty"` // seconds; 0 = tier default
}

// TimeLimitSeconds returns the question's own limit if set, else the tier default.
func (q Question) TimeLimitSeconds() int {
	if q.TimeLimit > 0 {
		return q.TimeLimit
	}
	return q.Difficulty.TimeLimitSeconds()
}

// QuestionBank is the full set of questions a test can be drawn from.
type QuestionBank struct {
	ID        string     `json:"id"`
	Questions []Question `json:"questions"`
}

// AnsweredQuestion records the outcome of one presented question. Created
// exactly once when the user advances past the question (by choice or
// timeout) and immutable afterwards.
type AnsweredQuestion struct {
	QuestionID       int  `json:"questionId"`
	SelectedOption   int  `json:"selectedOption"` // NoSelection if none
	IsCorrect        bool `json:"isCorrect"`
	TimeSpentSeconds int  `json:"timeSpent"`
	TimeExpired      bool `json:"timeExpired"`
}

// AnswerLog is the append-only, session-ordered record of answered questions.
type AnswerLog []AnsweredQuestion

// CorrectCount returns the number of correct entries.
func (l AnswerLog) CorrectCount() int {
	n := 0
	for _, a := range l {
		if a.IsCorrect {
			n++
		}
	}
	return n
}

// TotalTimeSpent sums TimeSpentSeconds across the log.
func (l AnswerLog) TotalTimeSpent() int {
	total := 0
	for _, a := range l {
		total += a.TimeSpentSeconds
	}
	return total
}

// ExpiredCount returns how many questions timed out.
func (l AnswerLog) ExpiredCount() int {
	n := 0
	for _, a := range l {
		if a.TimeExpired {
			n++
		}
	}
	return n
}

// CelebrityBand maps a contiguous IQ interval to a famous comparison.
// MaxIQ == 0 marks the final, unbounded band.
type CelebrityBand struct {
	Label       string `json:"label"`
	MinIQ       int    `json:"minIq"`
	MaxIQ       int    `json:"maxIq,omitempty"`
	Description string `json:"description"`
}

// TestResult is the derived outcome of a completed session. It is recomputed
// fresh from an AnswerLog and never stored in mutable form.
type TestResult struct {
	RawScore       int           `json:"score"`
	TotalQuestions int           `json:"totalQuestions"`
	IQEstimate     int           `json:"iqScore"`
	Band           CelebrityBand `json:"celebrity"`
	Percentage     int           `json:"percentage"`
	Tier           string        `json:"performanceLevel"`
}

// TestSubmission is the record written to the results store when a session
// completes.
type TestSubmission struct {
	Name             string    `json:"name"`
	Score            int       `json:"score"`
	TotalQuestions   int       `json:"total_questions"`
	IQScore          int       `json:"iq_score"`
	Percentage       float64   `json:"percentage"` // 2-decimal
	TimeSpent        int       `json:"time_spent"`
	TimeExpiredCount int       `json:"time_expired_count"`
	Answers          AnswerLog `json:"answers"`
}

// ResultRecord is a persisted submission as seen by the dashboard read path.
type ResultRecord struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Score            int       `json:"score"`
	TotalQuestions   int       `json:"totalQuestions"`
	IQScore          int       `json:"iqScore"`
	Percentage       float64   `json:"percentage"`
	TimeSpent        int       `json:"timeSpent"`
	TimeExpiredCount int       `json:"timeExpiredCount"`
	Answers          AnswerLog `json:"answers"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Statistics are aggregates the dashboard recomputes over its fetched page.
type Statistics struct {
	TotalTests        int     `json:"totalTests"`
	AverageScore      float64 `json:"averageScore"`
	AverageIQ         float64 `json:"averageIQ"`
	AveragePercentage float64 `json:"averagePercentage"`
}

// SubmitStatus tracks the fire-and-forget result write.
type SubmitStatus string

const (
	SubmitIdle       SubmitStatus = "idle"
	SubmitSubmitting SubmitStatus = "submitting"
	SubmitSuccess    SubmitStatus = "success"
	SubmitError      SubmitStatus = "error"
)
