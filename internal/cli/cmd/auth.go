package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cardfeed/backend/internal/cli/config"
	"github.com/cardfeed/backend/internal/cli/logger"
	"github.com/cardfeed/backend/internal/cli/prompter"
)

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and save the session token",
	Long:  "Sign in with email and password. Without --password the password is read from CARDFEED_PASSWORD, or prompted for without echo.",
	RunE: func(cmd *cobra.Command, args []string) error {
		email := loginEmail
		if email == "" {
			email = config.GetString(config.KeyEmail)
		}
		if email == "" {
			var err error
			if email, err = prompter.PromptString(cmd.InOrStdin(), cmd.ErrOrStderr(), "Email: "); err != nil {
				return fmt.Errorf("reading email: %w", err)
			}
		}
		if email == "" {
			return fmt.Errorf("--email is required")
		}

		password := loginPassword
		if password == "" {
			password = os.Getenv("CARDFEED_PASSWORD")
		}
		if password == "" {
			var err error
			if password, err = prompter.PromptPassword(cmd.InOrStdin(), cmd.ErrOrStderr(), "Password: "); err != nil {
				return fmt.Errorf("reading password: %w", err)
			}
		}

		session, err := newClient().Login(commandContext(cmd), email, password)
		if err != nil {
			return err
		}
		if err := config.SetString(config.KeyToken, session.Token); err != nil {
			return fmt.Errorf("saving session: %w", err)
		}
		if err := config.SetString(config.KeyEmail, session.User.Email); err != nil {
			return fmt.Errorf("saving session: %w", err)
		}
		logger.Info("Logged in", "email", session.User.Email, "role", session.User.Role)

		p := printer(cmd)
		p.Success("Logged in as %s (%s)", session.User.DisplayName, session.User.Role)
		if session.User.Role != "admin" {
			p.Warning("this account is not an admin; admin commands will be refused")
		}
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.SetString(config.KeyToken, ""); err != nil {
			return err
		}
		printer(cmd).Success("Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := authedClient()
		if err != nil {
			return err
		}
		me, err := c.Me(commandContext(cmd))
		if err != nil {
			return err
		}
		return printer(cmd).Object(me, [][2]string{
			{"ID", me.ID},
			{"Name", me.DisplayName},
			{"Email", me.Email},
			{"Role", me.Role},
			{"Provider", me.Provider},
		})
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "Account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password")
}
