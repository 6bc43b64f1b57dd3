package commands

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/tair/voltmarket/cmd/voltmarket/output"
	"github.com/tair/voltmarket/internal/app"
	"github.com/tair/voltmarket/internal/session"
	"github.com/tair/voltmarket/internal/viewmodel"
)

var (
	email     string
	password  string
	confirm   string
	firstName string
	lastName  string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and keep the session for later commands",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(runLogin)
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and log in with it",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(runRegister)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(runLogout)
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(runWhoami)
	},
}

func init() {
	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd)

	loginCmd.Flags().StringVar(&email, "email", "", "Account email")
	loginCmd.Flags().StringVar(&password, "password", "", "Account password")
	loginCmd.MarkFlagRequired("email")
	loginCmd.MarkFlagRequired("password")

	registerCmd.Flags().StringVar(&email, "email", "", "Account email")
	registerCmd.Flags().StringVar(&password, "password", "", "Account password")
	registerCmd.Flags().StringVar(&confirm, "confirm", "", "Password confirmation (defaults to --password)")
	registerCmd.Flags().StringVar(&firstName, "first-name", "", "First name")
	registerCmd.Flags().StringVar(&lastName, "last-name", "", "Last name")
}

func runLogin(ctx context.Context, a *app.App) error {
	c := a.Login()
	defer c.Close()

	err := c.Login(ctx, email, password, func() {
		output.Success("Logged in as %s", email)
	})
	if err != nil {
		return failure(c.State().Error, err)
	}
	return nil
}

func runRegister(ctx context.Context, a *app.App) error {
	c := a.Register()
	defer c.Close()

	if confirm == "" {
		confirm = password
	}

	err := c.Register(ctx, viewmodel.RegisterForm{
		Email:           email,
		Password:        password,
		ConfirmPassword: confirm,
		FirstName:       firstName,
		LastName:        lastName,
	}, func() {
		output.Success("Account created, logged in as %s", email)
	})
	if err != nil {
		return failure(c.State().Error, err)
	}
	return nil
}

func runLogout(ctx context.Context, a *app.App) error {
	if !a.Sessions.LoggedIn() {
		output.Info("Not logged in")
		return nil
	}

	c := a.Profile()
	defer c.Close()

	err := c.Logout(ctx, func() {
		output.Success("Logged out")
	})
	if err != nil {
		return failure(c.State().Error, err)
	}
	return nil
}

func runWhoami(ctx context.Context, a *app.App) error {
	s := a.Sessions.Current()
	if !s.LoggedIn() {
		output.Info("Not logged in")
		return nil
	}

	output.Section("Session")
	output.Field("User", s.FirstName+" "+s.LastName)
	output.Field("Email", s.Email)
	output.Field("User ID", formatID(s.UserID))

	expires, err := s.ExpiresAt()
	switch {
	case errors.Is(err, session.ErrNoExpiry):
		output.Field("Expires", "never")
	case err != nil:
		output.Field("Expires", "unknown")
	case expires.Before(time.Now()):
		output.Field("Expires", expires.Local().Format(time.DateTime)+" (expired)")
	default:
		output.Field("Expires", expires.Local().Format(time.DateTime))
	}
	return nil
}
