package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/authguard/authguard-terminal/cmd/commands"
	"github.com/authguard/authguard-terminal/internal/cli"
	"github.com/authguard/authguard-terminal/pkg/models"
	"github.com/authguard/authguard-terminal/pkg/settings"
	"github.com/authguard/authguard-terminal/pkg/store"
	"github.com/authguard/authguard-terminal/pkg/tui"
)

// Version is set during build with -ldflags
var version = "dev"

var (
	flagDataDir string
	flagQuiet   bool
	flagNoColor bool
	flagYes     bool
	flagSection string
)

var rootCmd = &cobra.Command{
	Use:   "authguard",
	Short: "Terminal two-factor authenticator",
	Long: `authguard keeps TOTP secrets in a local data directory and shows the
current codes in a terminal UI. Run without arguments to start the UI.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cli.SetGlobalFlags(flagQuiet, flagNoColor, flagYes, flagDataDir)
	},
	RunE: runTUI,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the authguard data directory",
	Long:  `Creates the data directory (default ~/.authguard) with a default config.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := cli.NewCommandContext()
		if err != nil {
			return err
		}
		if err := store.Init(ctx.DataDir); err != nil {
			return fmt.Errorf("failed to initialize data directory: %w", err)
		}
		cli.PrintSuccess("Initialized %s", ctx.DataDir)
		cli.PrintInfo("Add a service with 'authguard service add', then run 'authguard' to start the UI.")
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of authguard",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("authguard version %s\n", version)
	},
}

func runTUI(cmd *cobra.Command, args []string) error {
	ctx, err := cli.NewCommandContext()
	if err != nil {
		return err
	}
	if err := ctx.ValidateProject(); err != nil {
		return err
	}
	var start *models.Section
	if cmd.Flags().Changed("section") {
		section, err := cli.ParseSection(flagSection)
		if err != nil {
			return err
		}
		start = &section
	}
	cfg := ctx.LoadConfigWithDefault()

	logFile, err := cli.SetupLogging(ctx.DataDir, cfg.Log)
	if err != nil {
		return err
	}
	defer logFile.Close()

	appState := ctx.AppState()
	services, err := ctx.Services()
	if err != nil {
		return err
	}

	watcher, err := store.NewWatcher(ctx.DataDir, map[string]store.Reloader{
		store.StateFile:    appState,
		store.ServicesFile: services,
	})
	if err != nil {
		cli.PrintWarning("Changes made by other authguard commands will not show until restart: %v", err)
	} else {
		defer watcher.Close()
	}

	coordinator, err := settings.NewCoordinator(settings.Config{
		AppState:    appState,
		Services:    services,
		KeepAlive:   cfg.UI.KeepAlive,
		RevealDelay: cfg.UI.RevealDelay,
	})
	if err != nil {
		return err
	}
	defer coordinator.Close()

	app := tui.NewApp(tui.Deps{
		Services: services,
		AppState: appState,
		Settings: coordinator,
		UI:       cfg.UI,
		Version:  version,

		StartSection: start,
	})
	defer app.Close()

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to start the terminal user interface: %w", err)
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "Data directory (default $AUTHGUARD_DIR or ~/.authguard)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress informational output")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable symbols in output")
	rootCmd.PersistentFlags().BoolVarP(&flagYes, "yes", "y", false, "Answer yes to every confirmation")
	rootCmd.Flags().StringVar(&flagSection, "section", "", "Open settings at a section (main, passcode, data, about)")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(commands.NewServiceCommand())
	rootCmd.AddCommand(commands.NewPasscodeCommand())
	rootCmd.AddCommand(commands.NewResetCommand())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		cli.PrintError("%v", err)
		os.Exit(1)
	}
}
