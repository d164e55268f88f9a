package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"quiz-client/internal/highscore"
	"quiz-client/internal/logging"
	"quiz-client/internal/widget"
)

// NewScoresCmd prints or clears the persisted high-score board.
func NewScoresCmd() *cobra.Command {
	var clearAll bool
	cmd := &cobra.Command{
		Use:   "scores",
		Short: "Show the top five high scores",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			logger := logging.New("quiz-client", cfg.Log.Level, cmd.ErrOrStderr())

			store, closeStore, err := openStore(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer closeStore()

			repo := highscore.NewRepository(store, logger)
			out := cmd.OutOrStdout()
			if clearAll {
				if err := repo.Clear(ctx); err != nil {
					return err
				}
				fmt.Fprintln(out, "High scores cleared.")
				return nil
			}

			top, err := repo.Top(ctx, highscore.TopN)
			if err != nil {
				return err
			}
			if len(top) == 0 {
				fmt.Fprintln(out, "No high scores yet.")
				return nil
			}
			for _, e := range top {
				fmt.Fprintf(out, "%d. %s  %s\n", e.Rank, e.Nickname, widget.FormatScore(e.Score))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&clearAll, "clear", false, "delete every recorded score")
	return cmd
}
