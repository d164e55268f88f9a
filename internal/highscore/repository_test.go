package highscore

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiz-client/internal/domain"
	"quiz-client/internal/infra/memory"
	"quiz-client/internal/storage"
)

func TestAppendDeduplicatesExactPairs(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	repo := NewRepository(store, zerolog.Nop())

	added, err := repo.Append(ctx, domain.HighScoreEntry{Nickname: "Ada", Score: 7})
	require.NoError(t, err)
	assert.True(t, added)

	added, err = repo.Append(ctx, domain.HighScoreEntry{Nickname: "Ada", Score: 7})
	require.NoError(t, err)
	assert.False(t, added)

	added, err = repo.Append(ctx, domain.HighScoreEntry{Nickname: "Ada", Score: 8})
	require.NoError(t, err)
	assert.True(t, added)

	raw, err := store.Get(ctx, storage.KeyHighScores)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"nickname":"Ada","score":7},{"nickname":"Ada","score":8}]`, raw)
}

func TestLoadTreatsCorruptStateAsEmpty(t *testing.T) {
	ctx := context.Background()
	for _, raw := range []string{"not json", `{"nickname":"Ada"}`, `[{"nickname":1,"score":2}]`} {
		store := memory.NewStore()
		require.NoError(t, store.Set(ctx, storage.KeyHighScores, raw))

		history, err := NewRepository(store, zerolog.Nop()).Load(ctx)
		require.NoError(t, err, raw)
		assert.Empty(t, history, raw)
	}
}

func TestLoadAbsentIsEmpty(t *testing.T) {
	history, err := NewRepository(memory.NewStore(), zerolog.Nop()).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestTopFiltersSortsAndTruncates(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Set(ctx, storage.KeyHighScores, `[
		{"nickname":"slow","score":40},
		{"nickname":"text","score":"fast"},
		{"nickname":"null","score":null},
		{"nickname":"a","score":12},
		{"nickname":"b","score":3},
		{"nickname":"c","score":25},
		{"nickname":"d","score":12},
		{"nickname":"e","score":9},
		{"nickname":"f","score":31}
	]`))
	repo := NewRepository(store, zerolog.Nop())

	top, err := repo.Top(ctx, TopN)
	require.NoError(t, err)
	require.Len(t, top, 5)

	var names []string
	for i, e := range top {
		assert.Equal(t, i+1, e.Rank)
		if i > 0 {
			assert.LessOrEqual(t, top[i-1].Score, e.Score)
		}
		names = append(names, e.Nickname)
	}
	assert.Equal(t, []string{"b", "e", "a", "d", "c"}, names)
}

func TestAppendKeepsForeignRecords(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Set(ctx, storage.KeyHighScores, `[{"nickname":"old","score":"n/a"}]`))
	repo := NewRepository(store, zerolog.Nop())

	_, err := repo.Append(ctx, domain.HighScoreEntry{Nickname: "Ada", Score: 4})
	require.NoError(t, err)

	raw, err := store.Get(ctx, storage.KeyHighScores)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"nickname":"old","score":"n/a"},{"nickname":"Ada","score":4}]`, raw)
}

func TestAppendKeepsRecordsWithUnreadableNickname(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Set(ctx, storage.KeyHighScores,
		`[{"nickname":"Bo","score":6},{"nickname":42,"score":1},7,{"score":3}]`))
	repo := NewRepository(store, zerolog.Nop())

	history, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.HighScoreEntry{{Nickname: "Bo", Score: 6}}, history)

	_, err = repo.Append(ctx, domain.HighScoreEntry{Nickname: "Ada", Score: 4})
	require.NoError(t, err)

	raw, err := store.Get(ctx, storage.KeyHighScores)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"nickname":"Bo","score":6},{"nickname":42,"score":1},7,{"score":3},{"nickname":"Ada","score":4}]`, raw)

	top, err := repo.Top(ctx, TopN)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "Ada", top[0].Nickname)
}

func TestRankDropsNonFinite(t *testing.T) {
	ranked := Rank([]domain.HighScoreEntry{
		{Nickname: "nan", Score: math.NaN()},
		{Nickname: "inf", Score: math.Inf(1)},
		{Nickname: "ok", Score: 1},
	}, TopN)
	require.Len(t, ranked, 1)
	assert.Equal(t, "ok", ranked[0].Nickname)
}

func TestRepositoryCachesAfterFirstLoad(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{Store: memory.NewStore()}
	repo := NewRepository(store, zerolog.Nop())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = repo.Load(ctx)
		}()
	}
	wg.Wait()
	_, _ = repo.Top(ctx, TopN)

	assert.Equal(t, 1, store.loads())

	repo.Reload()
	_, _ = repo.Load(ctx)
	assert.Equal(t, 2, store.loads())
}

func TestAppendAndClear(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	repo := NewRepository(store, zerolog.Nop())

	_, err := repo.Append(ctx, domain.HighScoreEntry{Nickname: "Ada", Score: 2})
	require.NoError(t, err)
	history, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.HighScoreEntry{{Nickname: "Ada", Score: 2}}, history)

	require.NoError(t, repo.Clear(ctx))
	_, err = store.Get(ctx, storage.KeyHighScores)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
	history, err = repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestLoadSurfacesStoreFailures(t *testing.T) {
	repo := NewRepository(failingStore{}, zerolog.Nop())
	_, err := repo.Load(context.Background())
	assert.Error(t, err)
}

type countingStore struct {
	storage.Store
	mu    sync.Mutex
	calls int
}

func (s *countingStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.Store.Get(ctx, key)
}

func (s *countingStore) loads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, error) { return "", errors.New("down") }
func (failingStore) Set(context.Context, string, string) error   { return errors.New("down") }
func (failingStore) Delete(context.Context, string) error        { return errors.New("down") }
