package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SofiSoft/sofisoft-admin/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show configuration or change the backend base URL",
}

type configView struct {
	File    string        `json:"file,omitempty"`
	BaseURL string        `json:"base_url"`
	Config  config.Config `json:"config"`
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the merged configuration and the base URL requests go to.

The stored base URL, when set with set-base-url, takes precedence over api.base_url.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			return render(a.out, a.cfg.Output, configView{
				File:    config.ConfigFileUsed(),
				BaseURL: a.auth.BaseURL(),
				Config:  *a.cfg,
			})
		})
	},
}

var configSetBaseURLCmd = &cobra.Command{
	Use:   "set-base-url <url>",
	Short: "Store the backend base URL used by every request",
	Long: `Store the backend base URL. One trailing slash is removed.

Example:
  sofisoft config set-base-url https://backend.example.com/`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			if err := a.auth.SetBaseURL(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Base URL set to %s\n", a.auth.BaseURL())
			return nil
		})
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetBaseURLCmd)
	rootCmd.AddCommand(configCmd)
}
