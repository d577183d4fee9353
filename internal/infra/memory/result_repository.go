package memory

import (
	"context"
	"sync"
	"time"

	"iq-quiz-service/internal/domain"
)

// ResultRepository keeps completed submissions in memory. It backs both the
// write path and the dashboard read path when no database is configured.
type ResultRepository struct {
	clock func() time.Time

	mu      sync.RWMutex
	nextID  int64
	records []domain.ResultRecord
}

func NewResultRepository() *ResultRepository {
	return &ResultRepository{clock: time.Now, nextID: 1}
}

// NewResultRepositoryWithClock allows deterministic timestamps in tests.
func NewResultRepositoryWithClock(clock func() time.Time) *ResultRepository {
	return &ResultRepository{clock: clock, nextID: 1}
}

func (r *ResultRepository) SaveResult(_ context.Context, submission domain.TestSubmission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, domain.ResultRecord{
		ID:               r.nextID,
		Name:             submission.Name,
		Score:            submission.Score,
		TotalQuestions:   submission.TotalQuestions,
		IQScore:          submission.IQScore,
		Percentage:       submission.Percentage,
		TimeSpent:        submission.TimeSpent,
		TimeExpiredCount: submission.TimeExpiredCount,
		Answers:          submission.Answers,
		CreatedAt:        r.clock(),
	})
	r.nextID++
	return nil
}

// RecentResults returns up to limit records, newest first.
func (r *ResultRepository) RecentResults(_ context.Context, limit int) ([]domain.ResultRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.ResultRecord, 0, limit)
	for i := len(r.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.records[i])
	}
	return out, nil
}
