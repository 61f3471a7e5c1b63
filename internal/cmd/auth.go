package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/orienta-za/orienta/internal/errors"
	"github.com/orienta-za/orienta/internal/tui"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage your Orienta account",
	Long: `Manage your Orienta account and stored credentials.

Credentials are stored in ~/.orienta/auth.json, readable only by you.

Subcommands:
  register  Create a learner account
  login     Login with email and password
  logout    Logout and remove stored credentials
  status    Show who is logged in

Examples:
  orienta auth register
  orienta auth login --email you@example.co.za
  orienta auth status
  orienta auth logout`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var authRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a learner account",
	Long: `Create a learner account on Orienta.

Run without flags for an interactive prompt, or pass --email and
--password directly. The phone number is optional and is used for
WhatsApp notifications.

Examples:
  orienta auth register
  orienta auth register --email you@example.co.za --password secret123 --phone +27821234567`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}

		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		phone, _ := cmd.Flags().GetString("phone")

		if email == "" || password == "" {
			if !tui.IsInteractive() {
				return fmt.Errorf("--email and --password are required when not running interactively")
			}
			creds, err := tui.PromptRegister()
			if err != nil {
				return err
			}
			email, password, phone = creds.Email, creds.Password, creds.Phone
		}

		result, err := app.client.Register(cmd.Context(), email, password, phone)
		if err != nil {
			return err
		}

		if err := app.auth.Login(result.AccessToken, result.User.Email); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Welcome to Orienta, %s!\n", result.User.Email)
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Run 'orienta intake' to start the questionnaire.")
		return nil
	},
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login to Orienta",
	Long: `Login to Orienta with your email and password.

Run without flags for an interactive prompt. The access token is
stored locally so later commands do not ask again.

Examples:
  orienta auth login
  orienta auth login --email you@example.co.za --password secret123`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}

		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")

		if email == "" || password == "" {
			if !tui.IsInteractive() {
				return fmt.Errorf("--email and --password are required when not running interactively")
			}
			creds, err := tui.PromptLogin()
			if err != nil {
				return err
			}
			email, password = creds.Email, creds.Password
		}

		result, err := app.client.Login(cmd.Context(), email, password)
		if err != nil {
			return err
		}

		if err := app.auth.Login(result.AccessToken, result.User.Email); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Logged in as %s.\n", result.User.Email)
		return nil
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Logout and remove stored credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()

		if !app.auth.LoggedIn() {
			fmt.Fprintln(out, "Not logged in.")
			return nil
		}

		email := app.auth.Email()

		if tui.IsInteractive() {
			confirmed, err := tui.PromptForConfirmation(fmt.Sprintf("Log out %s?", email), true)
			if err != nil {
				return err
			}
			if !confirmed {
				return nil
			}
		}

		if err := app.auth.Logout(); err != nil {
			return err
		}

		fmt.Fprintf(out, "Logged out %s.\n", email)
		return nil
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show who is logged in",
	Long: `Show the logged-in account and whether the intake questionnaire
has been completed. Verifies the stored token against the backend.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()

		if !app.auth.LoggedIn() {
			fmt.Fprintln(out, "Not logged in.")
			fmt.Fprintln(out, "Use 'orienta auth login' to sign in.")
			return nil
		}

		profile, err := app.client.Profile(cmd.Context())
		if err != nil {
			if errors.IsCode(err, errors.ErrCodeAuthTokenRejected) {
				return app.handleAuthFailure(out, err)
			}
			return err
		}

		fmt.Fprintf(out, "Logged in as %s.\n", profile.User.Email)
		if profile.IntakeCompleted() {
			fmt.Fprintln(out, "Intake questionnaire: complete.")
			fmt.Fprintln(out, "Run 'orienta pathway' to see your pathway preview.")
		} else {
			fmt.Fprintln(out, "Intake questionnaire: not finished yet.")
			fmt.Fprintln(out, "Run 'orienta intake' to continue.")
		}
		return nil
	},
}

func init() {
	authRegisterCmd.Flags().String("email", "", "account email address")
	authRegisterCmd.Flags().String("password", "", "account password")
	authRegisterCmd.Flags().String("phone", "", "phone number for WhatsApp notifications (optional)")

	authLoginCmd.Flags().String("email", "", "account email address")
	authLoginCmd.Flags().String("password", "", "account password")

	authCmd.AddCommand(authRegisterCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}
