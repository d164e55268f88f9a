package widget

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"quiz-client/internal/domain"
	"quiz-client/internal/event"
	"quiz-client/internal/highscore"
	"quiz-client/internal/ui"
)

// ScoreBoard shows the persisted top five and offers a restart.
type ScoreBoard struct {
	ctx    context.Context
	bus    *event.Bus
	region *ui.Region
	repo   *highscore.Repository
	logger zerolog.Logger

	last    *domain.HighScoreEntry
	message string
	entries []domain.RankedEntry
}

// NewScoreBoard subscribes the board to ScoreRecorded.
func NewScoreBoard(ctx context.Context, bus *event.Bus, region *ui.Region, repo *highscore.Repository, logger zerolog.Logger) *ScoreBoard {
	b := &ScoreBoard{
		ctx:    ctx,
		bus:    bus,
		region: region,
		repo:   repo,
		logger: logger.With().Str("component", "scoreboard").Logger(),
	}
	event.On(bus, b.record)
	return b
}

// Activate re-reads the persisted history and renders it, so changes made by
// another process since the last game are picked up.
func (b *ScoreBoard) Activate() {
	b.repo.Reload()
	b.refresh()
}

func (b *ScoreBoard) record(e event.ScoreRecorded) {
	entry := domain.HighScoreEntry{Nickname: e.Nickname, Score: float64(e.Score)}
	b.last = &entry
	b.message = strings.TrimSpace(e.Message)
	added, err := b.repo.Append(b.ctx, entry)
	if err != nil {
		b.logger.Error().Err(err).Str("nickname", e.Nickname).Int("score", e.Score).Msg("failed to persist high score")
	} else if !added {
		b.logger.Debug().Str("nickname", e.Nickname).Int("score", e.Score).Msg("duplicate high score ignored")
	}
	b.refresh()
}

// TryAgain asks the orchestrator for a new session.
func (b *ScoreBoard) TryAgain() {
	b.bus.Emit(event.RestartRequested{})
}

// Input handles one terminal line; an empty line or "r" means try again.
func (b *ScoreBoard) Input(line string) {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "", "r", "restart", "try again":
		b.TryAgain()
	}
}

// Entries returns the rows currently rendered.
func (b *ScoreBoard) Entries() []domain.RankedEntry {
	return append([]domain.RankedEntry(nil), b.entries...)
}

// Reset forgets the last recorded result.
func (b *ScoreBoard) Reset() {
	b.last = nil
	b.message = ""
	b.entries = nil
	b.region.Set()
}

func (b *ScoreBoard) refresh() {
	top, err := b.repo.Top(b.ctx, highscore.TopN)
	if err != nil {
		b.logger.Error().Err(err).Msg("failed to load high scores")
		top = nil
	}
	b.entries = top
	b.render()
}

func (b *ScoreBoard) render() {
	lines := []string{"Quiz over!"}
	if b.message != "" {
		lines = append(lines, b.message)
	}
	if b.last != nil {
		lines = append(lines, fmt.Sprintf("%s finished in %s seconds.", b.last.Nickname, FormatScore(b.last.Score)))
	}
	lines = append(lines, "", "High scores")
	if len(b.entries) == 0 {
		lines = append(lines, "  (none yet)")
	}
	for _, e := range b.entries {
		lines = append(lines, fmt.Sprintf("  %d. %-20s %6s s", e.Rank, e.Nickname, FormatScore(e.Score)))
	}
	lines = append(lines, "", "Press Enter to try again, or type q to quit.")
	b.region.Set(lines...)
}

// FormatScore prints whole seconds without a decimal point.
func FormatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}
