package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func weekCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "week",
		Short: "Roll over the week if it ended and show past weekly scores",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")

			// Opening the session runs the week-boundary check.
			s, err := openSession(opts)
			if err != nil {
				return err
			}
			defer s.Close()

			out := cmd.OutOrStdout()
			for _, n := range s.app.Notices() {
				fmt.Fprintln(out, n.Message)
			}

			fmt.Fprintf(out, "This week: %d pomodoros\n", s.app.Weekly.Current())

			history := s.app.Weekly.History()
			if len(history) == 0 {
				fmt.Fprintln(out, "No finished weeks yet.")
				return nil
			}
			if limit > 0 && len(history) > limit {
				history = history[len(history)-limit:]
			}

			fmt.Fprintf(out, "\n%-14s %10s %8s %9s\n", "Week of", "Pomodoros", "Tasks", "Progress")
			for i := len(history) - 1; i >= 0; i-- {
				sc := history[i]
				fmt.Fprintf(out, "%-14s %10d %8s %8d%%\n",
					sc.WeekStart.Format("2006-01-02"), sc.Pomodoros,
					fmt.Sprintf("%d/%d", sc.TasksCompleted, sc.TasksTotal), sc.Progress)
			}
			return nil
		},
	}

	cmd.Flags().Int("limit", 0, "Number of weeks to show (0 = all)")

	return cmd
}
