package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/authguard/authguard-terminal/internal/cli"
	"github.com/authguard/authguard-terminal/pkg/models"
)

// NewResetCommand creates the reset command
func NewResetCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Erase all services and restore default settings",
		Long: `Erase every stored service, remove the passcode and restore the
default application state. The configuration file is kept.

This action cannot be undone.`,
		Args:    cobra.NoArgs,
		PreRunE: requireDataDir,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				confirmed, err := cli.Confirm("Erase all services and settings? This cannot be undone.", false)
				if err != nil {
					return err
				}
				if !confirmed {
					cli.PrintInfo("Reset cancelled")
					return nil
				}
			}

			ctx, err := cli.NewCommandContext()
			if err != nil {
				return err
			}
			services, err := ctx.Services()
			if err != nil {
				return err
			}

			runCtx := commandContext(cmd)
			if err := ctx.AppState().Replace(runCtx, models.DefaultAppState()); err != nil {
				return fmt.Errorf("failed to reset application state: %w", err)
			}
			if err := services.ClearAll(runCtx); err != nil {
				return fmt.Errorf("failed to clear services: %w", err)
			}

			cli.PrintSuccess("All data has been reset")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Reset without confirmation")
	return cmd
}
