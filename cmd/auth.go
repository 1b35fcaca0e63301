package cmd

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/TRIBE-INC/tribe-api/auth"
)

// loginTimeout bounds how long the callback listener waits for the
// browser redirect
const loginTimeout = 5 * time.Minute

var noBrowser bool

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the login session",
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in through the browser",
	Long: `Start a browser-based login. The command prints an authorization URL,
waits for the redirect on a local port, and stores the resulting tokens
under your home directory.`,
	RunE: runAuthLogin,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session",
	RunE:  runAuthStatus,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove stored credentials",
	RunE:  runAuthLogout,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authLogoutCmd)

	authLoginCmd.Flags().BoolVar(&noBrowser, "no-browser", false, "print the authorization URL instead of opening a browser")
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	flow, err := authManager.StartLogin()
	if err != nil {
		return fmt.Errorf("failed to start login: %w", err)
	}

	fmt.Println("Open this URL in your browser to log in:")
	fmt.Printf("\n  %s\n\n", flow.AuthURL)

	if !noBrowser {
		if err := openBrowser(flow.AuthURL); err != nil {
			logger.Debug().Err(err).Msg("Could not open browser")
		}
	}

	fmt.Println("Waiting for authorization...")

	ctx, cancel := context.WithTimeout(context.Background(), loginTimeout)
	defer cancel()

	code, err := authManager.WaitForCallback(ctx, flow.State)
	if err != nil {
		return fmt.Errorf("authorization failed: %w", err)
	}

	token, err := authManager.Exchange(ctx, code, flow.Verifier)
	if err != nil {
		return fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	fmt.Println("✓ Login successful!")
	if email := tokenEmail(token); email != "" {
		fmt.Printf("Logged in as: %s\n", email)
	}

	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	token := authManager.Token()
	if token == nil || token.AccessToken == "" {
		fmt.Println("Not logged in. Run 'tribe auth login' to authenticate.")
		return nil
	}

	if token.Valid() {
		fmt.Println("Status: authenticated")
	} else {
		fmt.Println("Status: expired")
	}

	if email := tokenEmail(token); email != "" {
		fmt.Printf("Account: %s\n", email)
	}
	if claims, err := auth.ParseClaims(token.AccessToken); err == nil && claims.Plan != "" {
		fmt.Printf("Plan: %s\n", claims.Plan)
	}
	if !token.Expiry.IsZero() {
		fmt.Printf("Expires: %s\n", token.Expiry.Format(time.RFC3339))
	}

	return nil
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	if err := authManager.Logout(); err != nil {
		return fmt.Errorf("failed to remove stored credentials: %w", err)
	}

	fmt.Println("Logged out, stored credentials removed.")
	return nil
}

// tokenEmail picks the account email from the token response, falling back
// to the JWT claims for servers that only embed it there
func tokenEmail(token *auth.Token) string {
	if token.Email != "" {
		return token.Email
	}
	if claims, err := auth.ParseClaims(token.AccessToken); err == nil {
		return claims.Email
	}
	return ""
}

// openBrowser opens the URL in the default browser
func openBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}

	return cmd.Start()
}
