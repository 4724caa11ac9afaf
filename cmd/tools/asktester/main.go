package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/botify/storebot/backend/internal/analysis/language"
	"github.com/botify/storebot/backend/internal/app"
	"github.com/botify/storebot/backend/internal/config"
)

type options struct {
	conversation string
	timeout      time.Duration
	logLevel     string
}

func main() {
	opts := &options{}
	var components *app.Components

	root := &cobra.Command{
		Use:           "asktester",
		Short:         "Run customer messages through the storefront assistant against the configured gateways",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			cfg.Log.Level = opts.logLevel
			cfg.Log.Pretty = true
			app.SetupLogger(cfg.Log)

			components, err = app.Build(cmd.Context(), cfg)
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if components == nil {
				return nil
			}
			return components.Close()
		},
	}
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 45*time.Second, "overall request timeout")

	ask := &cobra.Command{
		Use:   "ask <message>",
		Short: "Answer a message through the full pipeline",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			conversation := opts.conversation
			if conversation == "" {
				conversation = "manual-" + uuid.NewString()
			}

			reply, err := components.Assistant.HandleMessage(ctx, conversation, strings.Join(args, " "))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "conversation: %s\n", conversation)
			fmt.Fprintf(out, "intent:       %s\n", reply.Intent)
			fmt.Fprintf(out, "source:       %s\n", reply.Source)
			fmt.Fprintf(out, "reply:\n%s\n", reply.Text)
			return nil
		},
	}
	ask.Flags().StringVar(&opts.conversation, "conversation", "", "conversation id to continue (default: a fresh one)")

	classify := &cobra.Command{
		Use:   "classify <message>",
		Short: "Print the extracted intent and entities of a message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			analysis, err := components.Classifier.Classify(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "intent:       %s\n", analysis.Intent)
			fmt.Fprintf(out, "product_name: %s\n", analysis.ProductName)
			fmt.Fprintf(out, "order_id:     %s\n", analysis.OrderID)
			fmt.Fprintf(out, "email:        %s\n", analysis.Email)
			fmt.Fprintf(out, "info:         %s\n", analysis.Info)
			return nil
		},
	}

	detect := &cobra.Command{
		Use:   "detect <text>",
		Short: "Print the reply language chosen for a message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := components.Detector.Detect(strings.Join(args, " "))
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", code, language.Name(code))
			return nil
		},
	}

	root.AddCommand(ask, classify, detect)

	if err := root.ExecuteContext(context.Background()); err != nil {
		log.Error().Err(err).Msg("asktester failed")
		os.Exit(1)
	}
}
