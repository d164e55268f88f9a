package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"quiz-client/internal/app"
	"quiz-client/internal/config"
	"quiz-client/internal/highscore"
	"quiz-client/internal/logging"
	"quiz-client/internal/quizapi"
	"quiz-client/internal/ui"
)

// NewPlayCmd builds the interactive quiz subcommand.
func NewPlayCmd() *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play the quiz in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runPlay(cmd.Context(), cfg, cmd.InOrStdin(), cmd.OutOrStdout(), plain)
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "disable in-place redraws")
	return cmd
}

func runPlay(parent context.Context, cfg config.Config, in io.Reader, out io.Writer, plain bool) error {
	logger, closeLog, err := openLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	ctx = logging.IntoContext(ctx, logger)

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	httpClient := &http.Client{Timeout: config.Duration(cfg.Quiz.HTTPTimeout, 10*time.Second)}
	screen := ui.NewScreen(out, !plain && isTerminal(out))
	loop := app.NewLoop()
	orch := app.NewOrchestrator(ctx, loop, quizapi.NewClient(httpClient), store,
		highscore.NewRepository(store, logger), screen, logger, app.Options{
			EntryURL:     cfg.Quiz.EntryURL,
			DefaultLimit: cfg.Quiz.DefaultLimit,
		})

	logger.Info().
		Str("entry_url", cfg.Quiz.EntryURL).
		Str("store", cfg.Storage.Driver).
		Msg("quiz client started")

	lines := readLines(in)
	loop.Post(orch.Start)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return loop.Run(gctx)
	})
	g.Go(func() error {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				loop.Post(orch.Tick)
			}
		}
	})
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case line, ok := <-lines:
				if !ok {
					cancel()
					return nil
				}
				loop.Post(func() {
					if orch.Input(line) {
						cancel()
					}
				})
			}
		}
	})

	err = g.Wait()
	fmt.Fprintln(out)
	logger.Info().Msg("quiz client stopped")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// readLines feeds input lines to a channel that is closed at EOF. The
// goroutine is not tied to a context because a blocked read cannot be
// interrupted.
func readLines(in io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()
	return lines
}

func openLogger(cfg config.Config) (zerolog.Logger, func(), error) {
	if cfg.Log.File == "" {
		return logging.New("quiz-client", cfg.Log.Level, os.Stderr), func() {}, nil
	}
	f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
	}
	return logging.New("quiz-client", cfg.Log.Level, f), func() { _ = f.Close() }, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
