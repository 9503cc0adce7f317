package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/omniq-cli/internal/core/domain"
)

var loginUsername string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the backend",
	Long: `Sign in with a username and password. The issued token is applied
to later requests of this process and printed as an export line so other
invocations can pick it up from OMNIQ_TOKEN.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the current token",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show connection and sign-in status",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "username (prompted when omitted)")
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(statusCmd)
}

func runLogin(cmd *cobra.Command, _ []string) error {
	if authService == nil {
		return errNotConfigured("auth service")
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	username := strings.TrimSpace(loginUsername)
	if username == "" {
		cmd.Print("Username: ")
		username = readLine(reader)
	}
	cmd.Print("Password: ")
	password := readPassword(cmd, reader)
	cmd.Println()

	token, err := authService.Login(commandContext(cmd), domain.Credentials{
		Username: username,
		Password: password,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return errors.New("login failed: invalid username or password")
		}
		return fmt.Errorf("login failed: %w", err)
	}

	cmd.Printf("Logged in as %s\n", username)
	cmd.Println()
	cmd.Println("To reuse this session in other commands, run:")
	cmd.Printf("  export OMNIQ_TOKEN=%s\n", token.AccessToken)
	return nil
}

func runLogout(cmd *cobra.Command, _ []string) error {
	if authService == nil {
		return errNotConfigured("auth service")
	}
	authService.Logout()
	cmd.Println("Logged out.")
	cmd.Println("Unset OMNIQ_TOKEN to sign out other commands.")
	return nil
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if authService == nil {
		return errNotConfigured("auth service")
	}

	if services != nil && services.BaseURL != "" {
		cmd.Printf("Backend: %s\n", services.BaseURL)
	}

	claims, err := authService.Claims()
	switch {
	case err != nil:
		cmd.Printf("Token: unreadable (%v)\n", err)
	case claims == nil:
		cmd.Println("Signed in: no")
	default:
		who := claims.Subject
		if who == "" {
			who = "(unknown)"
		}
		cmd.Printf("Signed in: %s\n", who)
		if claims.ExpiresAt != nil {
			if claims.Expired(time.Now()) {
				cmd.Printf("Token expired %s\n", humanize.Time(*claims.ExpiresAt))
			} else {
				cmd.Printf("Token expires %s\n", humanize.Time(*claims.ExpiresAt))
			}
		}
	}

	visible, err := authService.LogoutVisible(commandContext(cmd))
	if err != nil {
		cmd.Printf("Backend unreachable: %v\n", err)
		return nil
	}
	cmd.Printf("Logout offered: %s\n", yesNo(visible))
	return nil
}
