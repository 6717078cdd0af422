package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mirror-scraper/internal/app"
	"mirror-scraper/internal/config"
	"mirror-scraper/internal/export"
	"mirror-scraper/internal/observability"
	"mirror-scraper/internal/prompt"
)

var (
	runPages       int
	runStartPage   int
	runFormat      string
	runOutput      string
	runInteractive bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntVarP(&runPages, "pages", "p", 0, "number of listing pages to scrape")
	runCmd.Flags().IntVar(&runStartPage, "start-page", 0, "first page index")
	runCmd.Flags().StringVarP(&runFormat, "format", "f", "", "output type: csv, txt, xml or sql")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "output file")
	runCmd.Flags().BoolVarP(&runInteractive, "interactive", "i", false, "ask for pages, output type, filename and rerun interval")
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Scrape the configured pages and export the rows.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, configDir, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := applyRunFlags(cmd, cfg); err != nil {
			return err
		}

		logger := observability.NewLogger(cfg.Observability)
		defer func() { _ = logger.Close() }()

		ctx, cancel := app.GracefulShutdown(logger)
		defer cancel()

		if runInteractive {
			cfg, err = app.AskRunConfig(ctx, cfg, prompt.New(os.Stdin, os.Stdout))
			switch {
			case errors.Is(err, export.ErrUnknownFormat):
				fmt.Println("Invalid output type.")
				return nil
			case errors.Is(err, prompt.ErrInterrupted):
				fmt.Println("\nInterrupted by user. Exiting gracefully...")
				return nil
			case err != nil:
				return err
			}
		}

		orch, f, err := app.Build(ctx, cfg, configDir, logger, os.Stdout)
		if err != nil {
			return err
		}
		defer func() {
			if err := f.Close(); err != nil {
				logger.Warn("Failed to close fetcher", "error", err.Error())
			}
		}()

		err = app.NewScheduler(cfg, orch, logger).Start(ctx)
		if ctx.Err() != nil {
			fmt.Println("\nInterrupted by user. Exiting gracefully...")
			return nil
		}
		if err != nil {
			logger.Error("Run failed", "error", err.Error())
		}
		return err
	},
}

func applyRunFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("pages") {
		cfg.Pagination.Pages = runPages
	}
	if flags.Changed("start-page") {
		cfg.Pagination.StartPage = runStartPage
	}
	if flags.Changed("format") {
		cfg.Export.Format = runFormat
	}
	if flags.Changed("output") {
		cfg.Export.Output = runOutput
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	return nil
}
