package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jarod-johnson-23/audiobot/cmd/audiobot/internal/config"
)

var (
	// Global flags
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "audiobot",
	Short: "Realtime voice chat with a conversational agent",
	Long: `audiobot - realtime voice and text chat with a conversational agent.

The session endpoint of your application backend exchanges instructions and a
voice for a short-lived credential; audiobot then negotiates a WebRTC
connection with the agent and streams the conversation into your terminal.

Configuration is stored in the OS config directory:
  macOS:   ~/Library/Application Support/audiobot/config.yaml
  Linux:   ~/.config/audiobot/config.yaml
  Windows: %AppData%/audiobot/config.yaml

Examples:
  # Start a session with instructions from the config file
  audiobot run

  # Override voice and instructions
  audiobot run --voice nova --instructions "You are a pirate."`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig loads the CLI configuration and installs the default logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	} else {
		switch cfg.Log.Level {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	return cfg, nil
}
