package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/config"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/database"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/logging"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/recipes"
)

var (
	filePath string
	migrate  bool
)

var rootCmd = &cobra.Command{
	Use:   "loadingredients",
	Short: "import name,unit rows from a CSV file into the ingredient table",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cfg.ValidateDatabase(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		logging.Init(logging.Config{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
			Caller: cfg.Logging.Caller,
		})

		if err := database.Connect(cfg.Database); err != nil {
			return err
		}
		defer database.Close(database.DB)

		if migrate {
			if err := database.Migrate(database.DB, recipes.AllModels()...); err != nil {
				return err
			}
		}

		f, err := os.Open(filePath)
		if err != nil {
			return fmt.Errorf("open %s: %w", filePath, err)
		}
		defer f.Close()

		stats, err := recipes.LoadIngredients(ctx, database.DB, f)
		if err != nil {
			return err
		}
		logging.Info().
			Str("file", filePath).
			Int("read", stats.Read).
			Int("inserted", stats.Inserted).
			Int("skipped", stats.Skipped).
			Msg("ingredients loaded")
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVarP(&filePath, "file", "f", "data/ingredients.csv", "CSV file with name,unit rows")
	rootCmd.Flags().BoolVar(&migrate, "migrate", true, "create missing tables before loading")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logging.Error().Err(err).Msg("ingredient import failed")
		os.Exit(1)
	}
}
