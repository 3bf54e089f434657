package progress

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kyri56xcaesar/athlete-tracker/internal/models"
)

// memStore keeps rows in memory. Atomically holds a per-pair lock and only
// commits the staged writes when fn succeeds.
type memStore struct {
	mu      sync.Mutex
	locks   map[string]*sync.Mutex
	tasks   map[string]models.Task
	entries []models.ProgressEntry
	awards  []models.Achievement
}

func newMemStore(tasks ...models.Task) *memStore {
	s := &memStore{locks: map[string]*sync.Mutex{}, tasks: map[string]models.Task{}}
	for _, t := range tasks {
		s.tasks[t.ID] = t
	}

	return s
}

func (s *memStore) pairLock(taskID, userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := taskID + "/" + userID
	l, ok := s.locks[k]
	if !ok {
		l = &sync.Mutex{}
		s.locks[k] = l
	}

	return l
}

func (s *memStore) Atomically(ctx context.Context, taskID, userID string, fn func(context.Context, Tx) error) error {
	l := s.pairLock(taskID, userID)
	l.Lock()
	defer l.Unlock()

	tx := &memTx{s: s}
	if err := fn(ctx, tx); err != nil {
		return err
	}

	s.mu.Lock()
	s.entries = append(s.entries, tx.entries...)
	s.awards = append(s.awards, tx.awards...)
	s.mu.Unlock()

	return nil
}

type memTx struct {
	s       *memStore
	entries []models.ProgressEntry
	awards  []models.Achievement
}

func (tx *memTx) Task(_ context.Context, taskID string) (models.Task, error) {
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()

	t, ok := tx.s.tasks[taskID]
	if !ok {
		return models.Task{}, ErrTaskNotFound
	}

	return t, nil
}

func (tx *memTx) Entries(_ context.Context, taskID, userID string) ([]models.ProgressEntry, error) {
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()

	out := []models.ProgressEntry{}
	for _, rows := range [][]models.ProgressEntry{tx.s.entries, tx.entries} {
		for _, e := range rows {
			if e.TaskID == taskID && e.UserID == userID {
				out = append(out, e)
			}
		}
	}

	return out, nil
}

func (tx *memTx) InsertEntry(_ context.Context, e models.ProgressEntry) error {
	tx.entries = append(tx.entries, e)
	return nil
}

func (tx *memTx) InsertCompletion(_ context.Context, a *models.Achievement) error {
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()

	for _, have := range tx.s.awards {
		if have.TaskID == a.TaskID && have.UserID == a.UserID && have.Source == models.SourceProgress {
			return ErrDuplicateCompletionAward
		}
	}
	tx.awards = append(tx.awards, *a)

	return nil
}

func progressTask(id string, target float64, points int) models.Task {
	return models.Task{ID: id, TeamID: "team", Points: points, IsActive: true, TargetValue: &target, ProgressUnit: "km"}
}

func TestContributeAwardsOnceOnCrossing(t *testing.T) {
	store := newMemStore(progressTask("run", 10, 50))
	tr := NewTracker(store, nil)
	ctx := context.Background()

	res, err := tr.Contribute(ctx, Contribution{TaskID: "run", UserID: "A", Value: 4})
	require.NoError(t, err)
	assert.Nil(t, res.Award)
	assert.Equal(t, 4.0, res.Total)
	assert.False(t, res.Completed())

	res, err = tr.Contribute(ctx, Contribution{TaskID: "run", UserID: "A", Value: 6, Notes: "long run"})
	require.NoError(t, err)
	require.NotNil(t, res.Award)
	assert.True(t, res.Completed())
	assert.Equal(t, 50, res.Award.PointsEarned)
	assert.Equal(t, "Completed 10/10 km", res.Award.ProofText)
	assert.Equal(t, models.SourceProgress, res.Award.Source)
	assert.True(t, res.Award.Verified)
	assert.Equal(t, "long run", res.Entry.Notes)

	_, err = tr.Contribute(ctx, Contribution{TaskID: "run", UserID: "A", Value: 1})
	assert.ErrorIs(t, err, ErrExceedsTarget)
	assert.EqualError(t, err, "Adding 1 would exceed the target of 10 km")

	assert.Len(t, store.awards, 1)
	assert.Len(t, store.entries, 2)
}

func TestContributeExactTargetThenMore(t *testing.T) {
	store := newMemStore(progressTask("run", 10, 20))
	tr := NewTracker(store, nil)

	res, err := tr.Contribute(context.Background(), Contribution{TaskID: "run", UserID: "A", Value: 10})
	require.NoError(t, err)
	require.NotNil(t, res.Award)

	_, err = tr.Contribute(context.Background(), Contribution{TaskID: "run", UserID: "A", Value: 1})
	assert.ErrorIs(t, err, ErrExceedsTarget)
	assert.Len(t, store.awards, 1)
}

func TestContributeConcurrentAwardsOnce(t *testing.T) {
	store := newMemStore(progressTask("run", 10, 20))
	tr := NewTracker(store, nil)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok       int
		exceeded int
	)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := tr.Contribute(context.Background(), Contribution{TaskID: "run", UserID: "A", Value: 10})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if assert.ErrorIs(t, err, ErrExceedsTarget) {
				exceeded++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, 19, exceeded)
	assert.Len(t, store.awards, 1)
	assert.Len(t, store.entries, 1)
}

func TestContributeDuplicateAwardRollsBack(t *testing.T) {
	store := newMemStore(progressTask("run", 10, 20))
	store.awards = []models.Achievement{{TaskID: "run", UserID: "A", Source: models.SourceProgress}}
	tr := NewTracker(store, nil)

	_, err := tr.Contribute(context.Background(), Contribution{TaskID: "run", UserID: "A", Value: 10})

	assert.ErrorIs(t, err, ErrDuplicateCompletionAward)
	assert.Empty(t, store.entries)
	assert.Len(t, store.awards, 1)
}

func TestContributeRejections(t *testing.T) {
	inactive := progressTask("old", 10, 10)
	inactive.IsActive = false
	store := newMemStore(
		progressTask("run", 10, 10),
		models.Task{ID: "proof", IsActive: true, Points: 10},
		inactive,
	)
	tr := NewTracker(store, nil)
	ctx := context.Background()

	_, err := tr.Contribute(ctx, Contribution{TaskID: "run", UserID: "A", Value: 0})
	assert.ErrorIs(t, err, ErrNotPositive)

	_, err = tr.Contribute(ctx, Contribution{TaskID: "missing", UserID: "A", Value: 1})
	assert.ErrorIs(t, err, ErrTaskNotFound)

	_, err = tr.Contribute(ctx, Contribution{TaskID: "proof", UserID: "A", Value: 1})
	assert.ErrorIs(t, err, ErrNotProgressTask)

	_, err = tr.Contribute(ctx, Contribution{TaskID: "old", UserID: "A", Value: 1})
	assert.ErrorIs(t, err, ErrTaskInactive)

	assert.Empty(t, store.entries)
}

func TestContributeWithReviewPolicy(t *testing.T) {
	store := newMemStore(progressTask("run", 5, 10))
	tr := NewTracker(store, models.ReviewRequired{})

	res, err := tr.Contribute(context.Background(), Contribution{TaskID: "run", UserID: "A", Value: 5})

	require.NoError(t, err)
	require.NotNil(t, res.Award)
	assert.False(t, res.Award.Verified)
	assert.Equal(t, models.StatusPending, res.Award.Status)
}
