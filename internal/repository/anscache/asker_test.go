package anscache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/askledger/askledger/internal/db"
	"github.com/askledger/askledger/internal/domain"
	"github.com/askledger/askledger/internal/usecase/ask"
)

type mockAsker struct {
	answer ask.Answer
	err    error
	calls  int
}

func (m *mockAsker) Ask(_ context.Context, _ string) (ask.Answer, error) {
	m.calls++
	return m.answer, m.err
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

func newTestCachedAsker(t *testing.T, inner *mockAsker) (*CachedAsker, *mockKVStore) {
	t.Helper()
	ms := &mockKVStore{}
	ca := New(inner, ms, time.Hour, nil, zap.NewNop())
	return ca, ms
}

func TestAsk_CacheMiss(t *testing.T) {
	inner := &mockAsker{answer: ask.Answer{
		Question: "q", Text: "3 invoices.", Action: domain.ActionCountDue, Confidence: 0.9,
	}}
	ca, ms := newTestCachedAsker(t, inner)
	ctx := context.Background()

	var setKey string
	var setTTL time.Duration
	ms.setFn = func(_ context.Context, key string, _ []byte, ttl time.Duration) error {
		setKey = key
		setTTL = ttl
		return nil
	}

	answer, err := ca.Ask(ctx, "How many due soon?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer.Text != "3 invoices." {
		t.Fatalf("unexpected answer: %+v", answer)
	}
	if inner.calls != 1 {
		t.Fatalf("inner called %d times, want 1", inner.calls)
	}
	if !strings.HasPrefix(setKey, cacheKeyPrefix) {
		t.Errorf("cache key %q missing prefix", setKey)
	}
	if setTTL != time.Hour {
		t.Errorf("ttl = %v, want 1h", setTTL)
	}
}

func TestAsk_CacheHit(t *testing.T) {
	inner := &mockAsker{answer: ask.Answer{Text: "fresh"}}
	ca, ms := newTestCachedAsker(t, inner)
	ctx := context.Background()

	cached, _ := json.Marshal(ask.Answer{Text: "cached", Action: domain.ActionSummary})
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return cached, nil
	}

	answer, err := ca.Ask(ctx, "summary please")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer.Text != "cached" {
		t.Fatalf("expected cached answer, got %+v", answer)
	}
	if inner.calls != 0 {
		t.Fatalf("inner must not be called on hit, got %d calls", inner.calls)
	}
}

func TestAsk_KeyNormalization(t *testing.T) {
	ca, _ := newTestCachedAsker(t, &mockAsker{})

	a := ca.cacheKey("  How Many Invoices?  ")
	b := ca.cacheKey("how many invoices?")
	if a != b {
		t.Fatalf("normalized questions should share a key: %q vs %q", a, b)
	}
}

func TestAsk_CorruptCacheEntryFallsThrough(t *testing.T) {
	inner := &mockAsker{answer: ask.Answer{Text: "fresh"}}
	ca, ms := newTestCachedAsker(t, inner)

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return []byte("{not json"), nil
	}

	answer, err := ca.Ask(context.Background(), "q")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer.Text != "fresh" || inner.calls != 1 {
		t.Fatalf("corrupt entry should fall through to inner, got %+v calls=%d", answer, inner.calls)
	}
}

func TestAsk_StoreFailuresAreSilent(t *testing.T) {
	inner := &mockAsker{answer: ask.Answer{Text: "fresh"}}
	ca, ms := newTestCachedAsker(t, inner)

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return nil, errors.New("connection refused")
	}
	ms.setFn = func(_ context.Context, _ string, _ []byte, _ time.Duration) error {
		return errors.New("connection refused")
	}

	answer, err := ca.Ask(context.Background(), "q")
	if err != nil {
		t.Fatalf("cache trouble must not fail the request: %v", err)
	}
	if answer.Text != "fresh" {
		t.Fatalf("unexpected answer: %+v", answer)
	}
}

func TestAsk_InnerErrorNotCached(t *testing.T) {
	inner := &mockAsker{err: errors.New("boom")}
	ca, ms := newTestCachedAsker(t, inner)

	var setCalled bool
	ms.setFn = func(_ context.Context, _ string, _ []byte, _ time.Duration) error {
		setCalled = true
		return nil
	}

	if _, err := ca.Ask(context.Background(), "q"); err == nil {
		t.Fatal("expected error from inner")
	}
	if setCalled {
		t.Fatal("failed answers must not be cached")
	}
}
