package cli

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"quiz-client/internal/config"
)

var (
	configPath  string
	entryURL    string
	storeDriver string
)

// Execute runs the CLI.
func Execute() error {
	// A local .env is optional.
	_ = godotenv.Load()
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	envConfig := os.Getenv("CONFIG_PATH")
	if envConfig == "" {
		envConfig = "config/config.yaml"
	}

	cmd := &cobra.Command{
		Use:          "quiz-client",
		Short:        "Timed terminal quiz client with a persistent high-score board",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", envConfig, "path to YAML config")
	cmd.PersistentFlags().StringVar(&entryURL, "entry-url", "", "first question URL of the quiz service")
	cmd.PersistentFlags().StringVar(&storeDriver, "store", "", "storage driver: memory, sqlite, redis or postgres")
	cmd.AddCommand(NewPlayCmd())
	cmd.AddCommand(NewScoresCmd())
	cmd.AddCommand(NewMigrateCmd(&configPath))
	return cmd
}

// loadConfig reads the config file and applies flag overrides. The file is
// only mandatory when the user pointed at it explicitly.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	required := cmd.Flags().Changed("config") || os.Getenv("CONFIG_PATH") != ""
	cfg, err := config.Load(configPath, required)
	if err != nil {
		return cfg, err
	}
	if entryURL != "" {
		cfg.Quiz.EntryURL = entryURL
	}
	if storeDriver != "" {
		cfg.Storage.Driver = storeDriver
	}
	return cfg, nil
}
