package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"iq-quiz-service/internal/domain"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// BankLoader fetches question banks from a backing store (e.g., Postgres).
type BankLoader interface {
	LoadBank(ctx context.Context, bankID string) (domain.QuestionBank, error)
}

// BankRepository caches whole banks in Redis as JSON and falls back to a
// loader on cache miss. The bank is read-only configuration, so a single
// blob per bank with a jittered TTL is enough.
type BankRepository struct {
	client *redis.Client
	loader BankLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewBankRepository(client *redis.Client, loader BankLoader, ttl time.Duration) *BankRepository {
	return &BankRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *BankRepository) GetBank(ctx context.Context, bankID string) (domain.QuestionBank, error) {
	key := r.key(bankID)

	if raw, err := r.client.Get(ctx, key).Bytes(); err == nil {
		var bank domain.QuestionBank
		if err := json.Unmarshal(raw, &bank); err == nil {
			return bank, nil
		}
		// Corrupt cache entry: fall through and reload.
	}

	result, err, _ := r.sf.Do(bankID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if raw, err := r.client.Get(ctx, key).Bytes(); err == nil {
			var bank domain.QuestionBank
			if err := json.Unmarshal(raw, &bank); err == nil {
				return bank, nil
			}
		}

		bank, err := r.loader.LoadBank(ctx, bankID)
		if err != nil {
			return domain.QuestionBank{}, err
		}

		raw, err := json.Marshal(bank)
		if err != nil {
			return domain.QuestionBank{}, fmt.Errorf("marshal bank: %w", err)
		}
		// best-effort cache fill
		_ = r.client.Set(ctx, key, raw, r.ttlWithJitter()).Err()
		return bank, nil
	})
	if err != nil {
		return domain.QuestionBank{}, err
	}
	return result.(domain.QuestionBank), nil
}

func (r *BankRepository) key(bankID string) string {
	return "iq:bank:" + bankID
}

func (r *BankRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
