package main

import (
	"os"

	"github.com/Cavedragon13/ai-image-organizer/internal/ai"
	"github.com/Cavedragon13/ai-image-organizer/internal/config"
	"github.com/Cavedragon13/ai-image-organizer/pkg/models"
	"github.com/spf13/cobra"
)

// commandContext carries flag values and swappable dependencies shared by subcommands.
type commandContext struct {
	serverURL string
	apiKey    string

	loadConfig  func() (*config.Config, error)
	newProvider func(config.AIConfig) (models.AIProvider, error)
}

func newCommandContext() *commandContext {
	return &commandContext{
		loadConfig:  config.Load,
		newProvider: ai.NewProvider,
	}
}

func newRootCommand() *cobra.Command {
	return newRootCommandWith(newCommandContext())
}

func newRootCommandWith(ctx *commandContext) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "imgorg",
		Short:         "Group images into folders by what they show",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&ctx.serverURL, "server-url", envOr("ORGANIZER_SERVER_URL", "http://localhost:8080"), "Base URL of the organizer API server")
	rootCmd.PersistentFlags().StringVar(&ctx.apiKey, "api-key", os.Getenv("ORGANIZER_API_KEY"), "API key sent as a bearer token")

	rootCmd.AddCommand(newRunCommand(ctx))
	rootCmd.AddCommand(newStatusCommand(ctx))
	rootCmd.AddCommand(newJobsCommand(ctx))

	return rootCmd
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
