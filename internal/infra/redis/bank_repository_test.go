package redis

import (
	"context"
	"testing"
	"time"

	"iq-quiz-service/internal/domain"
	"iq-quiz-service/internal/infra/memory"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestBankRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	loader := &countingLoader{
		BankLoader: memory.NewStaticBankLoader(map[string]domain.QuestionBank{
			"default": sampleBank(),
		}),
	}
	repo := NewBankRepository(client, loader, time.Minute)

	bank, err := repo.GetBank(context.Background(), "default")
	if err != nil {
		t.Fatalf("get bank: %v", err)
	}
	if len(bank.Questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(bank.Questions))
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("iq:bank:default") {
		t.Fatalf("expected bank cached in redis")
	}

	// Second call should hit the redis cache, loader not incremented.
	if _, err := repo.GetBank(context.Background(), "default"); err != nil {
		t.Fatalf("get bank 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
}

type countingLoader struct {
	memory.BankLoader
	calls int
}

func (l *countingLoader) LoadBank(ctx context.Context, bankID string) (domain.QuestionBank, error) {
	l.calls++
	return l.BankLoader.LoadBank(ctx, bankID)
}

func sampleBank() domain.QuestionBank {
	return domain.QuestionBank{
		ID: "default",
		Questions: []domain.Question{
			{
				ID:            1,
				Prompt:        "What is 2 + 2?",
				Options:       []string{"3", "4"},
				CorrectOption: 1,
				Difficulty:    domain.DifficultyEasy,
			},
		},
	}
}
