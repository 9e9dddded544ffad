package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/estatly/estatly/internal/api/profile"
	"github.com/estatly/estatly/internal/cli/output"
)

// NewProfileCmd creates the profile command group
func NewProfileCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "View or edit your profile",
	}

	cmd.AddCommand(newProfileGetCmd(app))
	cmd.AddCommand(newProfileUpdateCmd(app))

	return cmd
}

func newProfileGetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Show your profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			portal, err := app.Portal()
			if err != nil {
				return err
			}
			printer, err := app.Printer()
			if err != nil {
				return err
			}

			p, err := portal.Profile.Get(cmd.Context()).Unwrap()
			if err != nil {
				return err
			}
			return printer.Print(p, func() output.Table { return profileTable(p) })
		},
	}
}

func newProfileUpdateCmd(app *App) *cobra.Command {
	var req profile.UpdateRequest

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update your profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			if req == (profile.UpdateRequest{}) {
				return fmt.Errorf("nothing to update: pass at least one flag")
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

			p, err := portal.Profile.Update(cmd.Context(), req).Unwrap()
			if err != nil {
				return err
			}

			printer.Successf("Profile updated")
			return printer.Print(p, func() output.Table { return profileTable(p) })
		},
	}

	cmd.Flags().StringVar(&req.FirstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&req.LastName, "last-name", "", "Last name")
	cmd.Flags().StringVar(&req.Phone, "phone", "", "Phone number in international format")
	cmd.Flags().StringVar(&req.Bio, "bio", "", "Short bio")
	cmd.Flags().StringVar(&req.Avatar, "avatar", "", "Avatar image URL")
	cmd.Flags().StringVar(&req.Address, "address", "", "Postal address")

	return cmd
}

func profileTable(p profile.Profile) output.Table {
	return output.KeyValues(
		"ID", p.ID,
		"Name", p.FirstName+" "+p.LastName,
		"Email", p.Email,
		"Verified", fmt.Sprint(p.EmailVerified),
		"Role", p.Role,
		"Phone", p.Phone,
		"Address", p.Address,
		"Bio", p.Bio,
	)
}
