package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/biome/internal/config"
	"github.com/sadopc/biome/internal/prayer"
	"github.com/sadopc/biome/internal/tui"
	"github.com/spf13/cobra"
)

// options holds the persistent flags shared by every command.
type options struct {
	configPath string
	verbose    bool
}

// NewRootCmd builds the biome command tree.
func NewRootCmd(version string) *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "biome",
		Short: "Weekly task planner with a pomodoro timer",
		Long: `biome plans a Saturday-to-Friday week of tasks and runs a pomodoro
timer that credits completed sessions to the task you are focusing on.

Running biome with no subcommand opens the terminal UI.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(opts)
		},
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file (default "+config.Path()+")")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(statusCmd(opts))
	root.AddCommand(exportCmd(opts))
	root.AddCommand(weekCmd(opts))
	root.AddCommand(configCmd(opts))
	root.AddCommand(versionCmd(version))
	return root
}

// Execute runs the root command
func Execute(version string) error {
	if err := NewRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func runTUI(opts *options) error {
	s, err := openSession(opts)
	if err != nil {
		return err
	}
	defer s.Close()

	var client *prayer.Client
	if s.cfg.Location.Enabled() {
		client = prayer.NewClient(s.logger, prayer.WithMethod(s.cfg.Location.Method))
	}

	m := tui.NewApp(s.app, tui.Options{
		TickInterval: s.cfg.TickInterval,
		Prayer:       client,
		Location:     s.cfg.Location,
	})
	s.logger.Info("starting ui", "db", s.cfg.DBPath, "prayer", client != nil)

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}

func versionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "biome %s\n", version)
		},
	}
}
