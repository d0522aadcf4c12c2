package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"finance-search/config"
	"finance-search/identity"
	"finance-search/session"

	"github.com/spf13/cobra"
)

var loginCredential string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and persist the session",
	Long: `
The login command stores a user session in SESSION_FILE. With --credential
the ID token is verified (against Google when GOOGLE_CLIENT_ID is set);
without it the demo user is signed in.
`,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the persisted session",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the restored session",
	RunE:  runWhoami,
}

func init() {
	loginCmd.Flags().StringVar(&loginCredential, "credential", "",
		"ID token to sign in with")
}

// sessionPath is SESSION_FILE, or session.json under the user config dir.
func sessionPath(cfg *config.Config) (string, error) {
	if cfg.SessionFile != "" {
		return cfg.SessionFile, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(dir, "finance-search", "session.json"), nil
}

func newSessionManager(cmd *cobra.Command) (*session.Manager, error) {
	path, err := sessionPath(cfg)
	if err != nil {
		return nil, err
	}
	idp, err := newIdentityProvider(cmd.Context(), cfg)
	if err != nil {
		return nil, err
	}

	m := session.NewManager(session.NewFileStorage(path), idp)
	m.Restore(cmd.Context())
	return m, nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	m, err := newSessionManager(cmd)
	if err != nil {
		return err
	}

	if loginCredential != "" {
		if _, err := m.LoginWithCredential(cmd.Context(), loginCredential); err != nil {
			return fmt.Errorf("login failed: %w", err)
		}
	} else if err := m.Login(cmd.Context(), identity.DemoUser()); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	return printState(cmd, m.Snapshot())
}

func runLogout(cmd *cobra.Command, args []string) error {
	m, err := newSessionManager(cmd)
	if err != nil {
		return err
	}
	if err := m.Logout(cmd.Context()); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	return printState(cmd, m.Snapshot())
}

func runWhoami(cmd *cobra.Command, args []string) error {
	m, err := newSessionManager(cmd)
	if err != nil {
		return err
	}
	return printState(cmd, m.Snapshot())
}

func printState(cmd *cobra.Command, st session.State) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(st)
}
