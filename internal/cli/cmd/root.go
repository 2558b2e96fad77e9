// Package cmd holds the cobra commands of the cardfeed admin CLI.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cardfeed/backend/internal/cli/client"
	"github.com/cardfeed/backend/internal/cli/config"
	"github.com/cardfeed/backend/internal/cli/logger"
	"github.com/cardfeed/backend/internal/cli/output"
)

var (
	verbose    bool
	configPath string
	outputFmt  string
	apiURL     string
)

var errNotLoggedIn = errors.New("not logged in; run `cardfeed login` first")

var rootCmd = &cobra.Command{
	Use:   "cardfeed",
	Short: "CardFeed CLI - administer a CardFeed server",
	Long: `cardfeed is a command-line client for the CardFeed API. Sign in with an
admin account to send announcements, moderate users and read your inbox
from the terminal.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(configPath); err != nil {
			return fmt.Errorf("initializing config: %w", err)
		}
		logger.Init(config.GetString(config.KeyLogFile), verbose)
		return nil
	},
}

// Execute runs the CLI and exits non-zero on failure
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == 401 {
			err = fmt.Errorf("%w (session expired? run `cardfeed login`)", err)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: ~/.config/cardfeed/cli/config.toml)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "", "Output format: text, json, table")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "API server URL (overrides api.base_url)")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(notificationsCmd)
	rootCmd.AddCommand(adminCmd)
}

func baseURL() string {
	if apiURL != "" {
		return apiURL
	}
	return config.GetString(config.KeyBaseURL)
}

func newClient() *client.Client {
	timeout := time.Duration(config.GetInt(config.KeyTimeout)) * time.Second
	return client.New(baseURL(), timeout)
}

// authedClient returns a client carrying the saved session token
func authedClient() (*client.Client, error) {
	token := config.GetString(config.KeyToken)
	if token == "" {
		return nil, errNotLoggedIn
	}
	return newClient().SetToken(token), nil
}

func printer(cmd *cobra.Command) *output.Printer {
	format := outputFmt
	if format == "" {
		format = config.GetString(config.KeyOutput)
	}
	return output.New(cmd.OutOrStdout(), output.ParseFormat(format))
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
