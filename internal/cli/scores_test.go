package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiz-client/internal/domain"
	"quiz-client/internal/highscore"
	"quiz-client/internal/infra/sqlite"
)

func runRoot(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	require.NoError(t, cmd.Execute())
	return out.String()
}

func seedScores(t *testing.T, path string, entries ...domain.HighScoreEntry) {
	t.Helper()
	ctx := context.Background()
	store, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	defer store.Close()

	repo := highscore.NewRepository(store, zerolog.Nop())
	for _, e := range entries {
		_, err := repo.Append(ctx, e)
		require.NoError(t, err)
	}
}

func TestScoresCommandPrintsRankedBoard(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("STORAGE_PATH", path)

	seedScores(t, path,
		domain.HighScoreEntry{Nickname: "Bo", Score: 9},
		domain.HighScoreEntry{Nickname: "Ada", Score: 3},
		domain.HighScoreEntry{Nickname: "Cy", Score: 4.5},
	)

	out := runRoot(t, "scores")
	assert.Equal(t, "1. Ada  3\n2. Cy  4.5\n3. Bo  9\n", out)
}

func TestScoresCommandClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("STORAGE_PATH", path)

	seedScores(t, path, domain.HighScoreEntry{Nickname: "Ada", Score: 3})

	assert.Equal(t, "High scores cleared.\n", runRoot(t, "scores", "--clear"))
	assert.Equal(t, "No high scores yet.\n", runRoot(t, "scores"))
}

func TestStoreFlagOverridesConfig(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("STORAGE_DRIVER", "redis")

	out := runRoot(t, "--store", "memory", "scores")
	assert.Equal(t, "No high scores yet.\n", out)
}
