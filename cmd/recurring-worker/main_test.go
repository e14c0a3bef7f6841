package main

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookkeeper/internal/recurrence"
)

type stubGroups struct {
	ids []string
	err error
}

func (s stubGroups) ListGroupIDs() ([]string, error) { return s.ids, s.err }

type stubBackfiller struct {
	mu       sync.Mutex
	seen     map[string]time.Time
	failFor  string
	running  atomic.Int32
	maxInUse atomic.Int32
}

func (s *stubBackfiller) CreateMissing(_ context.Context, groupID string, target time.Time) (int, error) {
	n := s.running.Add(1)
	defer s.running.Add(-1)
	for {
		cur := s.maxInUse.Load()
		if n <= cur || s.maxInUse.CompareAndSwap(cur, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen == nil {
		s.seen = map[string]time.Time{}
	}
	s.seen[groupID] = target
	if groupID == s.failFor {
		return 0, errors.New("boom")
	}
	return 2, nil
}

func TestBackfillAll(t *testing.T) {
	target := recurrence.Date(2024, 5, 11)

	t.Run("every_group_within_limit", func(t *testing.T) {
		rec := &stubBackfiller{}
		groups := stubGroups{ids: []string{"g1", "g2", "g3", "g4", "g5"}}

		created, err := backfillAll(context.Background(), groups, rec, target, 2)
		require.NoError(t, err)
		assert.Equal(t, 10, created)
		assert.Len(t, rec.seen, 5)
		assert.Equal(t, target, rec.seen["g3"])
		assert.LessOrEqual(t, rec.maxInUse.Load(), int32(2))
	})

	t.Run("failure_does_not_stop_other_groups", func(t *testing.T) {
		rec := &stubBackfiller{failFor: "g2"}
		groups := stubGroups{ids: []string{"g1", "g2", "g3"}}

		created, err := backfillAll(context.Background(), groups, rec, target, 1)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "group g2")
		assert.Equal(t, 4, created)
		assert.Len(t, rec.seen, 3)
	})

	t.Run("list_error", func(t *testing.T) {
		_, err := backfillAll(context.Background(), stubGroups{err: errors.New("db down")}, &stubBackfiller{}, target, 4)
		assert.EqualError(t, err, "db down")
	})

	t.Run("cancelled_context_schedules_nothing", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		rec := &stubBackfiller{}

		created, err := backfillAll(ctx, stubGroups{ids: []string{"g1"}}, rec, target, 4)
		require.NoError(t, err)
		assert.Zero(t, created)
		assert.Empty(t, rec.seen)
	})
}

func TestTomorrow(t *testing.T) {
	now := time.Date(2024, 2, 28, 22, 30, 0, 0, time.UTC)
	assert.Equal(t, recurrence.Date(2024, 2, 29), tomorrow(now))
}
