package commands

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/estatly/estatly/internal/api/admin"
	"github.com/estatly/estatly/internal/api/auth"
	"github.com/estatly/estatly/internal/api/property"
	"github.com/estatly/estatly/internal/cli/output"
)

// ErrAdminRequired is returned by admin commands without an admin session
var ErrAdminRequired = errors.New("admin session required. Please run 'estatly admin login' first")

// NewAdminCmd creates the admin command group. Every subcommand except login
// needs a session established through admin login; the backend still has the
// final say on each request.
func NewAdminCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Moderate users and listings",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "login" {
				return nil
			}
			sess, err := app.Session()
			if err != nil {
				return err
			}
			if !sess.Authenticated() || !sess.IsAdmin() {
				return ErrAdminRequired
			}
			return nil
		},
	}

	cmd.AddCommand(newAdminLoginCmd(app))
	cmd.AddCommand(newAdminStatsCmd(app))
	cmd.AddCommand(newAdminPropertiesCmd(app))
	cmd.AddCommand(newAdminSetStatusCmd(app))
	cmd.AddCommand(newAdminDeletePropertyCmd(app))
	cmd.AddCommand(newAdminUsersCmd(app))
	cmd.AddCommand(newAdminUserCmd(app))
	cmd.AddCommand(newAdminDeleteUserCmd(app))

	return cmd
}

func newAdminLoginCmd(app *App) *cobra.Command {
	var creds auth.Credentials

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the admin console",
		RunE: func(cmd *cobra.Command, args []string) error {
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

			payload, err := portal.Admin.Login(cmd.Context(), creds).Unwrap()
			if err != nil {
				return err
			}
			if !admin.IsAdmin(payload.User) {
				return errors.New("this account does not have admin access")
			}

			return storeSession(portal.Client.Session(), printer, payload, true, "Admin login successful!")
		},
	}

	cmd.Flags().StringVar(&creds.Email, "email", "", "Email address (or set ESTATLY_EMAIL)")
	cmd.Flags().StringVar(&creds.Password, "password", "", "Password (or set ESTATLY_PASSWORD, will prompt if not provided)")

	return cmd
}

func newAdminStatsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show dashboard statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			portal, err := app.Portal()
			if err != nil {
				return err
			}
			printer, err := app.Printer()
			if err != nil {
				return err
			}

			stats, err := portal.Admin.Stats(cmd.Context()).Unwrap()
			if err != nil {
				return err
			}

			return printer.Print(stats, func() output.Table {
				return output.KeyValues(
					"Users", strconv.Itoa(stats.TotalUsers),
					"Verified users", strconv.Itoa(stats.VerifiedUsers),
					"Properties", strconv.Itoa(stats.TotalProperties),
					"Active", strconv.Itoa(stats.ActiveProperties),
					"Inactive", strconv.Itoa(stats.InactiveProperties),
					"Listing value", formatPrice(stats.TotalListingValue),
				)
			})
		},
	}
}

func newAdminPropertiesCmd(app *App) *cobra.Command {
	var params property.ListParams

	cmd := &cobra.Command{
		Use:   "properties",
		Short: "List properties in every status",
		RunE: func(cmd *cobra.Command, args []string) error {
			portal, err := app.Portal()
			if err != nil {
				return err
			}
			printer, err := app.Printer()
			if err != nil {
				return err
			}

			page, err := portal.Admin.Properties(cmd.Context(), params).Unwrap()
			if err != nil {
				return err
			}
			return printPage(printer, page)
		},
	}

	addListFlags(cmd.Flags(), &params)
	cmd.Flags().StringVar(&params.Status, "status", "", "Listing status (active, inactive, pending, sold)")

	return cmd
}

func newAdminSetStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set-status <property-id> [status]",
		Short: "Change a listing's status",
		Long:  "Change a listing's status. Without a status argument you are asked to pick one.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var status string
			if len(args) == 2 {
				status = args[1]
			} else {
				choice, err := app.Prompter.Select("Select a status", property.Statuses)
				if err != nil {
					return err
				}
				status = choice
			}
			if !slices.Contains(property.Statuses, status) {
				return fmt.Errorf("status must be one of: active, inactive, pending, sold")
			}

			portal, err := app.Portal()
			if err != nil {
				return err
			}
			printer, err := app.Printer()
			if err != nil {
				return err
			}

			p, err := portal.Admin.UpdatePropertyStatus(cmd.Context(), args[0], status).Unwrap()
			if err != nil {
				return err
			}

			printer.Successf("Property %s is now %s", p.ID, p.Status)
			return printer.Print(p, func() output.Table { return propertyTable(p) })
		},
	}
}

func newAdminDeletePropertyCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete-property <property-id>",
		Short: "Delete any listing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := app.confirm(yes, fmt.Sprintf("Delete property %s", args[0]))
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("aborted")
			}

			portal, err := app.Portal()
			if err != nil {
				return err
			}
			printer, err := app.Printer()
			if err != nil {
				return err
			}

			if _, err := portal.Admin.DeleteProperty(cmd.Context(), args[0]).Unwrap(); err != nil {
				return err
			}

			printer.Successf("Property %s deleted", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func newAdminUsersCmd(app *App) *cobra.Command {
	var params admin.UserListParams

	cmd := &cobra.Command{
		Use:   "users",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			portal, err := app.Portal()
			if err != nil {
				return err
			}
			printer, err := app.Printer()
			if err != nil {
				return err
			}

			page, err := portal.Admin.Users(cmd.Context(), params).Unwrap()
			if err != nil {
				return err
			}

			if len(page.Users) == 0 && printer.Format() == output.FormatTable {
				printer.Infof("No users found.")
				return nil
			}

			err = printer.Print(page, func() output.Table {
				t := output.Table{Header: []string{"ID", "NAME", "EMAIL", "ROLE", "VERIFIED"}}
				for _, u := range page.Users {
					t.Rows = append(t.Rows, []string{
						u.ID,
						u.FirstName + " " + u.LastName,
						u.Email,
						u.Role,
						strconv.FormatBool(u.EmailVerified),
					})
				}
				return t
			})
			if err != nil {
				return err
			}

			p := page.Pagination
			printer.Infof("\nPage %d of %d (%d total)", p.Page, p.TotalPages, p.Total)
			return nil
		},
	}

	cmd.Flags().IntVar(&params.Page, "page", 0, "Page number")
	cmd.Flags().IntVar(&params.Limit, "limit", 0, "Results per page")
	cmd.Flags().StringVar(&params.Search, "search", "", "Match name or email")
	cmd.Flags().StringVar(&params.Role, "role", "", "Only users with this role")

	return cmd
}

func newAdminUserCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "user <user-id>",
		Short: "Show one user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			portal, err := app.Portal()
			if err != nil {
				return err
			}
			printer, err := app.Printer()
			if err != nil {
				return err
			}

			u, err := portal.Admin.User(cmd.Context(), args[0]).Unwrap()
			if err != nil {
				return err
			}

			return printer.Print(u, func() output.Table {
				return output.KeyValues(
					"ID", u.ID,
					"Name", u.FirstName+" "+u.LastName,
					"Email", u.Email,
					"Phone", u.Phone,
					"Role", u.Role,
					"Verified", strconv.FormatBool(u.EmailVerified),
				)
			})
		},
	}
}

func newAdminDeleteUserCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete-user <user-id>",
		Short: "Delete a user and their listings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := app.confirm(yes, fmt.Sprintf("Delete user %s and all their listings", args[0]))
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("aborted")
			}

			portal, err := app.Portal()
			if err != nil {
				return err
			}
			printer, err := app.Printer()
			if err != nil {
				return err
			}

			if _, err := portal.Admin.DeleteUser(cmd.Context(), args[0]).Unwrap(); err != nil {
				return err
			}

			printer.Successf("User %s deleted", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}
