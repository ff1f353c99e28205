package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/sadopc/biome/internal/app"
	"github.com/spf13/cobra"
)

func statusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the timer and this week's progress",
		Long: `Display the pomodoro timer state, the task being focused on,
today's progress and the weekly pomodoro count.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(opts)
			if err != nil {
				return err
			}
			defer s.Close()
			printStatus(cmd.OutOrStdout(), s.app)
			return nil
		},
	}
}

func printStatus(out io.Writer, a *app.App) {
	st := a.Engine.State()

	fmt.Fprintln(out, "biome status")
	fmt.Fprintln(out, strings.Repeat("=", 40))

	state := "paused"
	switch {
	case st.Running && st.TimeLeft == 0:
		state = "finished, open biome to continue"
	case st.Running:
		state = "running"
	}
	fmt.Fprintf(out, "\nTimer:     %s %02d:%02d (%s)\n", st.Phase.Label(), st.TimeLeft/60, st.TimeLeft%60, state)
	fmt.Fprintf(out, "Sessions:  %d completed, %d this week\n", st.CompletedPomodoros, a.Weekly.Current())

	if t, ok := a.Tasks.Current(); ok {
		fmt.Fprintf(out, "Focus:     %s (%d/%d)\n", t.Title, t.Pomodoros(), t.Estimate())
	} else {
		fmt.Fprintln(out, "Focus:     none")
	}

	today := a.Today()
	list := a.Tasks.ByDay(today)
	done := 0
	for _, t := range list {
		if t.Completed {
			done++
		}
	}
	fmt.Fprintf(out, "\nToday:     %s %d/%d tasks (%d%%)\n", today.Title(), done, len(list), a.Tasks.DayProgress(today))
	weekDone, weekTotal := a.Tasks.Counts()
	fmt.Fprintf(out, "Week:      %d/%d tasks (%d%%)\n", weekDone, weekTotal, a.Tasks.OverallProgress())
}
