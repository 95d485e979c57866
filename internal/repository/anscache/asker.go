package anscache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/askledger/askledger/internal/db"
	"github.com/askledger/askledger/internal/usecase/ask"
)

const cacheKeyPrefix = "askledger:ans_cache:"

// store is the consumer interface for the answer cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Asker is the inner question-answering service being decorated.
type Asker interface {
	Ask(ctx context.Context, question string) (ask.Answer, error)
}

// CachedAsker caches answers in a key-value store. The dataset is
// immutable for the process lifetime, so a cached answer only goes
// stale through the passage of time; the TTL bounds that.
type CachedAsker struct {
	inner      Asker
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner Asker,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedAsker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedAsker{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Ask returns a cached answer or calls the inner service. Cache failures
// are logged and never surfaced: the cache is an optimization, not a
// dependency.
func (c *CachedAsker) Ask(ctx context.Context, question string) (ask.Answer, error) {
	key := c.cacheKey(question)

	if answer, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return answer, nil
	}

	c.incCache("miss")

	answer, err := c.inner.Ask(ctx, question)
	if err != nil {
		return ask.Answer{}, fmt.Errorf("ask: %w", err)
	}

	c.putToCache(ctx, key, answer)
	return answer, nil
}

func (c *CachedAsker) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

// cacheKey normalizes the question so trivial whitespace and casing
// differences share an entry.
func (c *CachedAsker) cacheKey(question string) string {
	normalized := strings.ToLower(strings.TrimSpace(question))
	h := sha256.Sum256([]byte(normalized))
	return cacheKeyPrefix + hex.EncodeToString(h[:])
}

func (c *CachedAsker) getFromCache(ctx context.Context, key string) (ask.Answer, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached answer", zap.String("key", key), zap.Error(err))
		}
		return ask.Answer{}, false
	}
	if len(data) == 0 {
		return ask.Answer{}, false
	}

	var answer ask.Answer
	if err := json.Unmarshal(data, &answer); err != nil {
		c.logger.Warn("Failed to parse cached answer", zap.String("key", key), zap.Error(err))
		return ask.Answer{}, false
	}
	return answer, true
}

func (c *CachedAsker) putToCache(ctx context.Context, key string, answer ask.Answer) {
	data, err := json.Marshal(answer)
	if err != nil {
		c.logger.Warn("Failed to encode answer for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache answer", zap.String("key", key), zap.Error(err))
	}
}
