package highscore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"quiz-client/internal/domain"
	"quiz-client/internal/storage"
)

// TopN is the number of entries the board displays.
const TopN = 5

// record is one persisted history element. The raw JSON is written back as
// read, so elements this client cannot parse survive a load/save cycle.
type record struct {
	raw   json.RawMessage
	entry domain.HighScoreEntry
	valid bool
}

func parseRecord(raw json.RawMessage) record {
	rec := record{raw: raw}
	var fields struct {
		Nickname *string         `json:"nickname"`
		Score    json.RawMessage `json:"score"`
	}
	if err := json.Unmarshal(raw, &fields); err != nil || fields.Nickname == nil {
		return rec
	}
	score := bytes.TrimSpace(fields.Score)
	if len(score) == 0 || score[0] == '"' {
		return rec
	}
	f, err := strconv.ParseFloat(string(score), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return rec
	}
	rec.entry = domain.HighScoreEntry{Nickname: *fields.Nickname, Score: f}
	rec.valid = true
	return rec
}

// Repository owns the persisted high-score history. The first Load reads the
// store; afterwards the in-memory copy is the single source of truth and every
// mutation is written through.
type Repository struct {
	store  storage.Store
	key    string
	logger zerolog.Logger
	sf     singleflight.Group

	mu      sync.Mutex
	loaded  bool
	records []record
}

func NewRepository(store storage.Store, logger zerolog.Logger) *Repository {
	return &Repository{
		store:  store,
		key:    storage.KeyHighScores,
		logger: logger.With().Str("component", "highscore").Logger(),
	}
}

// Load returns every valid entry in stored order. Absent or corrupt history
// reads as empty.
func (r *Repository) Load(ctx context.Context) ([]domain.HighScoreEntry, error) {
	if err := r.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return entries(r.records), nil
}

// Append adds entry unless the exact (nickname, score) pair is already
// stored, then persists the full history. It reports whether a row was added.
func (r *Repository) Append(ctx context.Context, entry domain.HighScoreEntry) (bool, error) {
	if err := r.ensureLoaded(ctx); err != nil {
		return false, err
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return false, fmt.Errorf("encode score: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.valid && rec.entry == entry {
			return false, nil
		}
	}
	next := append(append([]record(nil), r.records...), record{raw: raw, entry: entry, valid: true})
	if err := r.saveLocked(ctx, next); err != nil {
		return false, err
	}
	return true, nil
}

// Clear removes the persisted history.
func (r *Repository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.store.Delete(ctx, r.key); err != nil {
		return fmt.Errorf("clear high scores: %w", err)
	}
	r.records = nil
	r.loaded = true
	return nil
}

// Top returns the best n entries ranked from 1.
func (r *Repository) Top(ctx context.Context, n int) ([]domain.RankedEntry, error) {
	history, err := r.Load(ctx)
	if err != nil {
		return nil, err
	}
	return Rank(history, n), nil
}

// Reload drops the cached history so the next call reads the store again.
func (r *Repository) Reload() {
	r.mu.Lock()
	r.loaded = false
	r.records = nil
	r.mu.Unlock()
}

func (r *Repository) ensureLoaded(ctx context.Context) error {
	r.mu.Lock()
	loaded := r.loaded
	r.mu.Unlock()
	if loaded {
		return nil
	}

	_, err, _ := r.sf.Do(r.key, func() (interface{}, error) {
		r.mu.Lock()
		if r.loaded {
			r.mu.Unlock()
			return nil, nil
		}
		r.mu.Unlock()

		raw, err := r.store.Get(ctx, r.key)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("load high scores: %w", err)
		}
		records := r.decode(raw)

		r.mu.Lock()
		r.records = records
		r.loaded = true
		r.mu.Unlock()
		return nil, nil
	})
	return err
}

func (r *Repository) decode(raw string) []record {
	if raw == "" {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		r.logger.Warn().Err(err).Msg("stored high scores are corrupt, starting empty")
		return nil
	}
	records := make([]record, 0, len(items))
	skipped := 0
	for _, item := range items {
		rec := parseRecord(item)
		if !rec.valid {
			skipped++
		}
		records = append(records, rec)
	}
	if skipped > 0 {
		r.logger.Warn().Int("skipped", skipped).Msg("ignoring unreadable high-score records")
	}
	return records
}

func (r *Repository) saveLocked(ctx context.Context, next []record) error {
	items := make([]json.RawMessage, 0, len(next))
	for _, rec := range next {
		items = append(items, rec.raw)
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode high scores: %w", err)
	}
	if err := r.store.Set(ctx, r.key, string(data)); err != nil {
		return fmt.Errorf("save high scores: %w", err)
	}
	r.records = next
	return nil
}

func entries(records []record) []domain.HighScoreEntry {
	out := make([]domain.HighScoreEntry, 0, len(records))
	for _, rec := range records {
		if rec.valid {
			out = append(out, rec.entry)
		}
	}
	return out
}

// Rank drops non-finite scores, sorts ascending (ties keep stored order) and
// keeps the first n.
func Rank(history []domain.HighScoreEntry, n int) []domain.RankedEntry {
	valid := make([]domain.HighScoreEntry, 0, len(history))
	for _, e := range history {
		if !math.IsNaN(e.Score) && !math.IsInf(e.Score, 0) {
			valid = append(valid, e)
		}
	}
	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].Score < valid[j].Score
	})
	if n >= 0 && len(valid) > n {
		valid = valid[:n]
	}
	ranked := make([]domain.RankedEntry, len(valid))
	for i, e := range valid {
		ranked[i] = domain.RankedEntry{Rank: i + 1, HighScoreEntry: e}
	}
	return ranked
}
