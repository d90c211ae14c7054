// Package cmd provides the CLI commands for the sofisoft admin client.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/SofiSoft/sofisoft-admin/internal/config"
)

var (
	cfgFile       string
	stateFilePath string
	storeDriver   string
	outputFormat  string
	logLevel      string
)

var rootCmd = &cobra.Command{
	Use:   "sofisoft",
	Short: "SofiSoft admin client",
	Long: `sofisoft is a command-line client for the SofiSoft retail backend.

It signs in against the backend, keeps the session locally, and prints
sales dashboards, store figures, stock levels and comparisons.

Quick start:
  1. Point it at the backend: sofisoft config set-base-url http://backend:8080
  2. Sign in:                 sofisoft login --login alice
  3. Query:                   sofisoft dashboard --date-start 2024-01-01 --date-end 2024-01-31

Configuration:
  Config is loaded from sofisoft.yaml in the current directory,
  $HOME/.sofisoft/, or /etc/sofisoft/.

  Environment variables can override config values with the SOFISOFT_ prefix.
  Example: SOFISOFT_OUTPUT=yaml

Commands:
  login       Sign in and store the session
  logout      Clear the stored session
  whoami      Show the stored session
  config      Show configuration or change the backend base URL
  dashboard   Sales dashboard for a period
  stores      Store list and figures
  stock       Stock by product and global stock
  compare     Compare stores or periods
  param       Read a server parameter module
  version     Print version information`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), gracefulSignals()...)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ./sofisoft.yaml)")
	flags.StringVar(&stateFilePath, "state", "", "path to the client store (default: ~/.sofisoft/state.json)")
	flags.StringVar(&storeDriver, "store", "", "client store driver: file, sqlite or memory (default: file)")
	flags.StringVarP(&outputFormat, "output", "o", "", "output format: json or yaml (default: json)")
	flags.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error (default: warn)")
}

func initConfig() {
	config.InitViper(cfgFile)

	// Flags take precedence over the config file and the environment.
	flags := rootCmd.PersistentFlags()
	_ = viper.BindPFlag("store.path", flags.Lookup("state"))
	_ = viper.BindPFlag("store.driver", flags.Lookup("store"))
	_ = viper.BindPFlag("output", flags.Lookup("output"))
	_ = viper.BindPFlag("log_level", flags.Lookup("log-level"))
}
