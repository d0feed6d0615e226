package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/settle-up/internal/cli"
	"github.com/Veraticus/settle-up/internal/common"
	"github.com/Veraticus/settle-up/internal/config"
	"github.com/Veraticus/settle-up/internal/sheets"
)

func authCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with external services",
		Long:  `Authenticate with external services used for exports.`,
	}

	cmd.AddCommand(authSheetsCmd(a))

	return cmd
}

func authSheetsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Authenticate with Google Sheets",
		Long: `Authenticate with Google Sheets using OAuth2.

This command will:
1. Print a URL where you sign in to Google
2. Wait for the redirect on a local callback server
3. Save the token so "settle export sheets" can use it

You'll need to run this once to set up Google Sheets exports.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			clientID := a.v.GetString("sheets.client_id")
			clientSecret := a.v.GetString("sheets.client_secret")

			if flagID, _ := cmd.Flags().GetString("client-id"); flagID != "" {
				clientID = flagID
			}
			if flagSecret, _ := cmd.Flags().GetString("client-secret"); flagSecret != "" {
				clientSecret = flagSecret
			}
			if clientID == "" {
				clientID = os.Getenv("GOOGLE_SHEETS_CLIENT_ID")
			}
			if clientSecret == "" {
				clientSecret = os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET")
			}

			if clientID == "" || clientSecret == "" {
				return common.NewUserError(
					"OAuth2 credentials missing; set sheets.client_id and sheets.client_secret or GOOGLE_SHEETS_CLIENT_ID and GOOGLE_SHEETS_CLIENT_SECRET",
					common.ErrMissingConfig)
			}

			listen, _ := cmd.Flags().GetString("listen")
			timeout, _ := cmd.Flags().GetDuration("timeout")
			tokenFile := config.SheetsTokenFile(a.v)

			token, err := sheets.AuthenticateOAuth2Interactive(ctx, sheets.OAuth2Config{
				ClientID:     clientID,
				ClientSecret: clientSecret,
				TokenFile:    tokenFile,
				ListenAddr:   listen,
				Timeout:      timeout,
			}, func(url string) {
				body := "Open this URL in your browser and approve access:\n\n" + url
				_, _ = fmt.Fprintln(a.out, cli.RenderBox("Google Sheets", body))
			})
			if err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}

			if token.RefreshToken == "" {
				slog.Warn("Google did not return a refresh token; revoke access and run this command again")
			}

			_, err = fmt.Fprintln(a.out, cli.FormatSuccess("Google Sheets authenticated. Token saved to "+tokenFile))
			return err
		},
	}

	cmd.Flags().String("client-id", "", "OAuth2 Client ID (overrides config)")
	cmd.Flags().String("client-secret", "", "OAuth2 Client Secret (overrides config)")
	cmd.Flags().String("listen", "localhost:8080", "address of the local callback server")
	cmd.Flags().Duration("timeout", 5*time.Minute, "how long to wait for the browser redirect")

	return cmd
}
