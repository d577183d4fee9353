package quiz

import (
	"fmt"
	"math/rand"

	"iq-quiz-service/internal/domain"
)

// Policy controls how the drawn questions are ordered.
type Policy string

const (
	// PolicyProgressive keeps the draw in ascending difficulty order.
	PolicyProgressive Policy = "progressive"
	// PolicyUniform shuffles the final sequence.
	PolicyUniform Policy = "uniform"
)

// ParsePolicy maps a client-supplied string to a Policy, defaulting to
// progressive for the empty string.
func ParsePolicy(raw string) (Policy, error) {
	switch Policy(raw) {
	case "", PolicyProgressive:
		return PolicyProgressive, nil
	case PolicyUniform:
		return PolicyUniform, nil
	}
	return "", fmt.Errorf("unknown selection policy %q", raw)
}

// Quota is the per-tier draw count for one test.
type Quota struct {
	Easy    int
	Medium  int
	Hard    int
	Extreme int
}

// DefaultQuota yields the standard 10-question test.
var DefaultQuota = Quota{Easy: 3, Medium: 4, Hard: 4, Extreme: 3}

// Total is the session length the quota produces.
func (q Quota) Total() int {
	return q.Easy + q.Medium + q.Hard + q.Extreme
}

func (q Quota) forTier(d domain.Difficulty) int {
	switch d {
	case domain.DifficultyEasy:
		return q.Easy
	case domain.DifficultyMedium:
		return q.Medium
	case domain.DifficultyHard:
		return q.Hard
	case domain.DifficultyExtreme:
		return q.Extreme
	}
	return 0
}

// Select draws one test from the bank: quota questions per tier, sampled
// without replacement via an unbiased shuffle, concatenated in ascending
// difficulty order. PolicyUniform additionally shuffles the concatenation.
// A tier with fewer questions than its quota fails with
// ErrInsufficientQuestions naming the tier.
func Select(bank []domain.Question, policy Policy, quota Quota, rnd *rand.Rand) ([]domain.Question, error) {
	selected := make([]domain.Question, 0, quota.Total())
	for _, tier := range domain.Difficulties {
		want := quota.forTier(tier)
		if want == 0 {
			continue
		}
		pool := filterByTier(bank, tier)
		if len(pool) < want {
			return nil, fmt.Errorf("tier %s has %d questions, quota is %d: %w",
				tier, len(pool), want, domain.ErrInsufficientQuestions)
		}
		shuffle(pool, rnd)
		selected = append(selected, pool[:want]...)
	}
	if policy == PolicyUniform {
		shuffle(selected, rnd)
	}
	return selected, nil
}

func filterByTier(bank []domain.Question, tier domain.Difficulty) []domain.Question {
	pool := make([]domain.Question, 0, len(bank))
	for _, q := range bank {
		if q.Difficulty == tier {
			pool = append(pool, q)
		}
	}
	return pool
}

// shuffle is an in-place Fisher-Yates; every permutation is equally likely.
func shuffle(qs []domain.Question, rnd *rand.Rand) {
	for i := len(qs) - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		qs[i], qs[j] = qs[j], qs[i]
	}
}
