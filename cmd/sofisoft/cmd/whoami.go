package cmd

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"github.com/SofiSoft/sofisoft-admin/internal/domain/session"
)

// sessionView is the printable form of the stored session. The token itself is never printed.
type sessionView struct {
	BaseURL       string            `json:"base_url"`
	SignedIn      bool              `json:"signed_in"`
	Authenticated bool              `json:"authenticated"`
	User          json.RawMessage   `json:"user,omitempty"`
	Magasins      []json.RawMessage `json:"magasins,omitempty"`
	TokenExpires  *time.Time        `json:"token_expires,omitempty"`
	Warning       string            `json:"warning,omitempty"`
}

func describeSession(a *app) sessionView {
	s := a.auth.Session()
	v := sessionView{
		BaseURL:       a.auth.BaseURL(),
		SignedIn:      s.HasUser(),
		Authenticated: s.Authenticated(),
		User:          s.User,
		Magasins:      s.Magasins,
	}
	if s.Authenticated() {
		if exp, err := session.TokenExpiry(s.Token); err == nil {
			v.TokenExpires = &exp
		} else {
			a.logger.Debug("token expiry unavailable", "error", err)
		}
	}
	if s.GuardMismatch() {
		v.Warning = "a user is stored without a token; requests are sent unauthenticated"
	}
	return v
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			return render(a.out, a.cfg.Output, describeSession(a))
		})
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
