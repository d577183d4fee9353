package quiz

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"iq-quiz-service/internal/domain"
)

func TestSelectProgressiveOrderAndLength(t *testing.T) {
	bank := buildBank(3, 4, 4, 3)
	rnd := rand.New(rand.NewSource(1))

	selected, err := Select(bank, PolicyProgressive, DefaultQuota, rnd)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(selected) != DefaultQuota.Total() {
		t.Fatalf("expected %d questions, got %d", DefaultQuota.Total(), len(selected))
	}

	seen := make(map[int]bool)
	for i, q := range selected {
		if seen[q.ID] {
			t.Fatalf("duplicate question id %d", q.ID)
		}
		seen[q.ID] = true
		if i > 0 && q.Difficulty.Rank() < selected[i-1].Difficulty.Rank() {
			t.Fatalf("difficulty decreased at index %d: %s after %s", i, q.Difficulty, selected[i-1].Difficulty)
		}
	}
}

func TestSelectUniformDrawsSameQuota(t *testing.T) {
	bank := buildBank(6, 8, 8, 6)
	rnd := rand.New(rand.NewSource(7))

	selected, err := Select(bank, PolicyUniform, DefaultQuota, rnd)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(selected) != DefaultQuota.Total() {
		t.Fatalf("expected %d questions, got %d", DefaultQuota.Total(), len(selected))
	}

	counts := make(map[domain.Difficulty]int)
	seen := make(map[int]bool)
	for _, q := range selected {
		if seen[q.ID] {
			t.Fatalf("duplicate question id %d", q.ID)
		}
		seen[q.ID] = true
		counts[q.Difficulty]++
	}
	if counts[domain.DifficultyEasy] != 3 || counts[domain.DifficultyMedium] != 4 ||
		counts[domain.DifficultyHard] != 4 || counts[domain.DifficultyExtreme] != 3 {
		t.Fatalf("quota not respected: %v", counts)
	}
}

func TestSelectFailsOnShortTier(t *testing.T) {
	bank := buildBank(3, 4, 2, 3) // hard tier short by two
	rnd := rand.New(rand.NewSource(1))

	_, err := Select(bank, PolicyProgressive, DefaultQuota, rnd)
	if !errors.Is(err, domain.ErrInsufficientQuestions) {
		t.Fatalf("expected insufficient questions error, got %v", err)
	}
	if !strings.Contains(err.Error(), "hard") {
		t.Fatalf("expected error to name the hard tier, got %q", err)
	}
}

func TestSelectDoesNotMutateBank(t *testing.T) {
	bank := buildBank(5, 5, 5, 5)
	firstID := bank[0].ID
	rnd := rand.New(rand.NewSource(3))

	if _, err := Select(bank, PolicyUniform, DefaultQuota, rnd); err != nil {
		t.Fatalf("select: %v", err)
	}
	if bank[0].ID != firstID {
		t.Fatalf("bank order mutated: first id %d became %d", firstID, bank[0].ID)
	}
}

func TestParsePolicy(t *testing.T) {
	if p, err := ParsePolicy(""); err != nil || p != PolicyProgressive {
		t.Fatalf("empty policy should default to progressive, got %v %v", p, err)
	}
	if p, err := ParsePolicy("uniform"); err != nil || p != PolicyUniform {
		t.Fatalf("expected uniform, got %v %v", p, err)
	}
	if _, err := ParsePolicy("adaptive"); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}

// buildBank generates a bank with the given number of questions per tier,
// easy first, IDs unique across tiers.
func buildBank(easy, medium, hard, extreme int) []domain.Question {
	counts := []int{easy, medium, hard, extreme}
	var bank []domain.Question
	id := 0
	for i, tier := range domain.Difficulties {
		for n := 0; n < counts[i]; n++ {
			id++
			bank = append(bank, domain.Question{
				ID:            id,
				Prompt:        "placeholder",
				Options:       []string{"a", "b", "c", "d"},
				CorrectOption: 0,
				Difficulty:    tier,
			})
		}
	}
	return bank
}
