package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"

	"github.com/estatly/estatly/internal/api/admin"
	"github.com/estatly/estatly/internal/api/auth"
	"github.com/estatly/estatly/internal/cli/output"
	"github.com/estatly/estatly/internal/client"
	"github.com/estatly/estatly/internal/session"
)

const (
	envEmail    = "ESTATLY_EMAIL"
	envPassword = "ESTATLY_PASSWORD"
)

// NewSignupCmd creates the signup command
func NewSignupCmd(app *App) *cobra.Command {
	var req auth.SignupRequest

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSignup(cmd, app, req)
		},
	}

	cmd.Flags().StringVar(&req.FirstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&req.LastName, "last-name", "", "Last name")
	cmd.Flags().StringVar(&req.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&req.Phone, "phone", "", "Phone number")
	cmd.Flags().StringVar(&req.Password, "password", "", "Password (or set ESTATLY_PASSWORD, will prompt if not provided)")

	return cmd
}

func runSignup(cmd *cobra.Command, app *App, req auth.SignupRequest) error {
	var err error
	if req.Password, err = app.password(req.Password, envPassword, "Password"); err != nil {
		return err
	}
	if err := app.Validate(req); err != nil {
		return err
	}

	portal, err := app.Portal()
	if err != nil {
		return err
	}
	printer, err := app.Printer()
	if err != nil {
		return err
	}

	resp, err := portal.Signup(cmd.Context(), req)
	if err != nil {
		return rawError(err, "Signup failed")
	}
	if err := reported(resp, "Signup failed"); err != nil {
		return err
	}

	printer.Successf("%s", resp.Message)
	printer.Infof("\nConfirm your address with: estatly verify-email --email %s --otp <code>", req.Email)
	return printer.Print(resp.Data.User, nil)
}

// NewLoginCmd creates the login command
func NewLoginCmd(app *App) *cobra.Command {
	var creds auth.Credentials

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(cmd, app, creds)
		},
	}

	cmd.Flags().StringVar(&creds.Email, "email", "", "Email address (or set ESTATLY_EMAIL)")
	cmd.Flags().StringVar(&creds.Password, "password", "", "Password (or set ESTATLY_PASSWORD, will prompt if not provided)")

	return cmd
}

func runLogin(cmd *cobra.Command, app *App, creds auth.Credentials) error {
	creds.Email = envOr(creds.Email, envEmail)
	if creds.Email == "" {
		return fmt.Errorf("email is required (use --email flag or %s env var)", envEmail)
	}

	var err error
	if creds.Password, err = app.password(creds.Password, envPassword, "Password"); err != nil {
		return err
	}
	if err := app.Validate(creds); err != nil {
		return err
	}

	portal, err := app.Portal()
	if err != nil {
		return err
	}
	printer, err := app.Printer()
	if err != nil {
		return err
	}

	resp, err := portal.Login(cmd.Context(), creds)
	if err != nil {
		return rawError(err, "Login failed")
	}
	if err := reported(resp, "Login failed"); err != nil {
		return err
	}
	if resp.Data.Token == "" {
		return errors.New("login response carried no token")
	}

	return storeSession(portal.Client.Session(), printer, resp.Data, admin.IsAdmin(resp.Data.User), "Login successful!")
}

// reported turns a 2xx body with "success": false into an error
func reported(resp *client.Envelope[auth.Payload], fallback string) error {
	if resp.Success {
		return nil
	}
	if resp.Message != "" {
		return errors.New(resp.Message)
	}
	return errors.New(fallback)
}

// storeSession persists a returned credential and reports who is signed in
func storeSession(sess *session.Session, printer *output.Printer, payload auth.Payload, isAdmin bool, message string) error {
	if err := sess.Set(payload.Token, payload.User, isAdmin); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	printer.Successf("%s", message)
	if u := payload.User; u != nil {
		printer.Infof("  User: %s (%s)", u.Name(), u.Email)
		if isAdmin {
			printer.Infof("  Role: Admin")
		}
	}
	if printer.Format() == output.FormatTable {
		return nil
	}
	return printer.Print(payload.User, nil)
}

// NewVerifyEmailCmd creates the verify-email command
func NewVerifyEmailCmd(app *App) *cobra.Command {
	var req auth.VerifyEmailRequest

	cmd := &cobra.Command{
		Use:   "verify-email",
		Short: "Confirm an email address with the code sent at signup",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerifyEmail(cmd, app, req)
		},
	}

	cmd.Flags().StringVar(&req.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&req.OTP, "otp", "", "One-time code from the email")

	return cmd
}

func runVerifyEmail(cmd *cobra.Command, app *App, req auth.VerifyEmailRequest) error {
	req.Email = envOr(req.Email, envEmail)
	if err := app.Validate(req); err != nil {
		return err
	}

	portal, err := app.Portal()
	if err != nil {
		return err
	}
	printer, err := app.Printer()
	if err != nil {
		return err
	}

	resp, err := portal.VerifyEmailOTP(cmd.Context(), req)
	if err != nil {
		return rawError(err, "Email verification failed")
	}
	if err := reported(resp, "Email verification failed"); err != nil {
		return err
	}

	// Some backends only confirm; sign in afterwards in that case
	if resp.Data.Token == "" {
		printer.Successf("%s", resp.Message)
		return nil
	}
	return storeSession(portal.Client.Session(), printer, resp.Data, admin.IsAdmin(resp.Data.User), "Email verified, you are signed in")
}

// NewForgotPasswordCmd creates the forgot-password command
func NewForgotPasswordCmd(app *App) *cobra.Command {
	var req auth.ForgotPasswordRequest

	cmd := &cobra.Command{
		Use:   "forgot-password",
		Short: "Request a password reset code",
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Email = envOr(req.Email, envEmail)
			if err := app.Validate(req); err != nil {
				return err
			}

			portal, err := app.Portal()
			if err != nil {
				return err
			}
			printer, err := app.Printer()
			if err != nil {
				return err
			}

			resp, err := portal.ForgotPassword(cmd.Context(), req)
			if err != nil {
				return rawError(err, "Failed to request password reset")
			}
			if err := reported(resp, "Failed to request password reset"); err != nil {
				return err
			}

			printer.Successf("%s", resp.Message)
			printer.Infof("\nSet a new password with: estatly reset-password --email %s --otp <code>", req.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Email, "email", "", "Email address")

	return cmd
}

// NewResetPasswordCmd creates the reset-password command
func NewResetPasswordCmd(app *App) *cobra.Command {
	var req auth.ResetPasswordRequest

	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Set a new password using a reset code",
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Email = envOr(req.Email, envEmail)

			var err error
			if req.NewPassword, err = app.password(req.NewPassword, envPassword, "New password"); err != nil {
				return err
			}
			if err := app.Validate(req); err != nil {
				return err
			}

			portal, err := app.Portal()
			if err != nil {
				return err
			}
			printer, err := app.Printer()
			if err != nil {
				return err
			}

			resp, err := portal.ResetPassword(cmd.Context(), req)
			if err != nil {
				return rawError(err, "Password reset failed")
			}
			if err := reported(resp, "Password reset failed"); err != nil {
				return err
			}

			printer.Successf("%s", resp.Message)
			printer.Infof("\nSign in with: estatly login --email %s", req.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&req.OTP, "otp", "", "Reset code from the email")
	cmd.Flags().StringVar(&req.NewPassword, "password", "", "New password (or set ESTATLY_PASSWORD, will prompt if not provided)")

	return cmd
}

// NewLogoutCmd creates the logout command
func NewLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.Session()
			if err != nil {
				return err
			}
			printer, err := app.Printer()
			if err != nil {
				return err
			}

			if !sess.Authenticated() {
				printer.Infof("Not logged in.")
				return nil
			}
			if err := sess.Clear(); err != nil {
				return err
			}

			printer.Successf("Logged out")
			return nil
		},
	}
}

// whoami is the stored identity plus what the token itself claims
type whoami struct {
	User      *session.User `json:"user" yaml:"user"`
	Admin     bool          `json:"admin" yaml:"admin"`
	ExpiresAt *time.Time    `json:"expiresAt,omitempty" yaml:"expiresAt,omitempty"`
}

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.Session()
			if err != nil {
				return err
			}
			printer, err := app.Printer()
			if err != nil {
				return err
			}

			if !sess.Authenticated() {
				return fmt.Errorf("not logged in. Please run 'estatly login' first")
			}

			info := whoami{User: sess.User(), Admin: sess.IsAdmin()}
			info.ExpiresAt = tokenExpiry(sess.Token())

			return printer.Print(info, func() output.Table {
				name, email, role := "", "", ""
				if info.User != nil {
					name, email, role = info.User.Name(), info.User.Email, info.User.Role
				}
				expires := "unknown"
				if info.ExpiresAt != nil {
					expires = info.ExpiresAt.Local().Format(time.RFC1123)
					if time.Now().After(*info.ExpiresAt) {
						expires += " (expired)"
					}
				}
				return output.KeyValues(
					"Name", name,
					"Email", email,
					"Role", role,
					"Admin session", fmt.Sprint(info.Admin),
					"Expires", expires,
				)
			})
		},
	}
}

// tokenExpiry reads exp from the token without checking the signature. The
// backend remains the only authority on validity.
func tokenExpiry(token string) *time.Time {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil
	}
	if claims.ExpiresAt == nil {
		return nil
	}
	exp := claims.ExpiresAt.Time
	return &exp
}
