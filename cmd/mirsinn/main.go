package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/polysign/mirsinn/internal/app"
	"github.com/polysign/mirsinn/internal/apperr"
	"github.com/polysign/mirsinn/internal/config"
	"github.com/polysign/mirsinn/internal/logging"
)

var dateKey string

var rootCmd = &cobra.Command{
	Use:   "mirsinn",
	Short: "Daily multilingual question-of-the-day pipeline",
	Long:  "Generates, persists, and publishes the daily poll question from Luxembourg news sources.",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute the daily question job once and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		cfg, logger := bootstrap()

		application, err := app.New(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer application.Close(ctx)

		result, err := application.RunOnce(ctx, dateKey)
		if err != nil {
			if errors.Is(err, apperr.ErrNoQuestions) {
				logger.Error("run produced no questions", "error", err)
			}
			return err
		}

		logger.Info("run finished", "status", result.Status, "dateKey", result.DateKey, "questions", result.QuestionCount)
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the scheduled trigger and the HTTP trigger server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		cfg, logger := bootstrap()

		application, err := app.New(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer application.Close(ctx)

		return application.Serve(ctx)
	},
}

func bootstrap() (config.Config, *slog.Logger) {
	_ = godotenv.Load()
	cfg := config.Load()
	return cfg, logging.New(cfg.Logging.Level)
}

func init() {
	runCmd.Flags().StringVar(&dateKey, "date", "", "target date key (MM-DD-YYYY), defaults to today")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.SilenceUsage = true
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
