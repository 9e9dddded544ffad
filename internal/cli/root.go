package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/estatly/estatly/internal/cli/commands"
	"github.com/estatly/estatly/internal/config"
	"github.com/estatly/estatly/internal/logger"
)

var version = "dev" // Will be set during build

// NewRootCmd builds the command tree around app
func NewRootCmd(app *commands.App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "estatly",
		Short: "Estatly - Real estate listings from the terminal",
		Long: `Estatly CLI - Browse listings, manage your own properties and moderate
the marketplace from the command line.

Sign in with 'estatly login'. Admins use 'estatly admin login'.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&app.APIURL, "api-url", app.APIURL, "Backend origin (or set ESTATLY_API_URL)")
	rootCmd.PersistentFlags().StringVarP(&app.Output, "output", "o", app.Output, "Output format: table, json or yaml")

	// Add version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "estatly version %s\n", version)
		},
	})

	// Add all subcommands
	rootCmd.AddCommand(commands.NewSignupCmd(app))
	rootCmd.AddCommand(commands.NewLoginCmd(app))
	rootCmd.AddCommand(commands.NewVerifyEmailCmd(app))
	rootCmd.AddCommand(commands.NewForgotPasswordCmd(app))
	rootCmd.AddCommand(commands.NewResetPasswordCmd(app))
	rootCmd.AddCommand(commands.NewLogoutCmd(app))
	rootCmd.AddCommand(commands.NewWhoamiCmd(app))
	rootCmd.AddCommand(commands.NewProfileCmd(app))
	rootCmd.AddCommand(commands.NewPropertiesCmd(app))
	rootCmd.AddCommand(commands.NewAdminCmd(app))

	return rootCmd
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load configuration: %v\n", err)
		return err
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)

	rootCmd := NewRootCmd(commands.NewApp(cfg, logger.GetLogger()))
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
