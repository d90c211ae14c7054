package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// passwordEnv is read when neither --password nor --password-stdin is given.
const passwordEnv = "SOFISOFT_PASSWORD"

var (
	loginIdentifier string
	loginPassword   string
	passwordStdin   bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session",
	Long: `Sign in against the backend and store the returned session.

The password is taken from --password, from the first line of standard
input with --password-stdin, or from the SOFISOFT_PASSWORD environment
variable, in that order.

Example:
  echo "$PASS" | sofisoft login --login alice --password-stdin`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(loginIdentifier) == "" {
			return errors.New("--login is required")
		}
		secret, err := readPassword(cmd)
		if err != nil {
			return err
		}

		return withApp(cmd, func(a *app) error {
			if err := a.auth.Login(cmd.Context(), loginIdentifier, secret); err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			a.logger.Info("signed in", "login", loginIdentifier, "base_url", a.auth.BaseURL())
			return render(a.out, a.cfg.Output, describeSession(a))
		})
	},
}

func readPassword(cmd *cobra.Command) (string, error) {
	switch {
	case loginPassword != "":
		return loginPassword, nil
	case passwordStdin:
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("read password from stdin: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	default:
		if v, ok := os.LookupEnv(passwordEnv); ok {
			return v, nil
		}
		return "", fmt.Errorf("no password given: use --password, --password-stdin or %s", passwordEnv)
	}
}

func init() {
	loginCmd.Flags().StringVar(&loginIdentifier, "login", "", "login identifier")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "password (prefer --password-stdin)")
	loginCmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from standard input")
	loginCmd.MarkFlagsMutuallyExclusive("password", "password-stdin")
	rootCmd.AddCommand(loginCmd)
}
