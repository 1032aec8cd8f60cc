package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/authguard/authguard-terminal/internal/cli"
)

// NewPasscodeCommand creates the passcode command
func NewPasscodeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "passcode",
		Short: "Inspect or remove the app passcode",
		Long: `Inspect or remove the passcode that locks the terminal UI.

A passcode is set from the Passcode section of the settings screen.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "status",
		Short:   "Show whether a passcode is set",
		Args:    cobra.NoArgs,
		PreRunE: requireDataDir,
		RunE:    runPasscodeStatus,
	})

	var force bool
	deleteCmd := &cobra.Command{
		Use:     "delete",
		Aliases: []string{"remove", "rm"},
		Short:   "Remove the passcode",
		Args:    cobra.NoArgs,
		PreRunE: requireDataDir,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPasscodeDelete(cmd, force)
		},
	}
	deleteCmd.Flags().BoolVarP(&force, "force", "f", false, "Remove without confirmation")
	cmd.AddCommand(deleteCmd)

	return cmd
}

func runPasscodeStatus(cmd *cobra.Command, args []string) error {
	ctx, err := cli.NewCommandContext()
	if err != nil {
		return err
	}
	state, err := ctx.AppState().Load()
	if err != nil {
		return err
	}

	if state.Passcode != nil {
		fmt.Fprintln(cmd.OutOrStdout(), "Passcode: enabled")
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "Passcode: disabled")
	}
	return nil
}

func runPasscodeDelete(cmd *cobra.Command, force bool) error {
	ctx, err := cli.NewCommandContext()
	if err != nil {
		return err
	}
	store := ctx.AppState()
	state, err := store.Load()
	if err != nil {
		return err
	}
	if state.Passcode == nil {
		cli.PrintInfo("No passcode is set")
		return nil
	}

	if !force {
		confirmed, err := cli.Confirm("Remove the passcode?", false)
		if err != nil {
			return err
		}
		if !confirmed {
			cli.PrintInfo("Passcode kept")
			return nil
		}
	}

	if err := store.Replace(commandContext(cmd), state.WithPasscode(nil)); err != nil {
		return fmt.Errorf("failed to remove passcode: %w", err)
	}
	cli.PrintSuccess("Passcode removed")
	return nil
}
