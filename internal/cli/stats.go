package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show per-member chore statistics for a week",
		RunE:  runStats,
	}
	cmd.Flags().String("week", "", "Any day of the week, YYYY-MM-DD (default: this week)")

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	week, _ := cmd.Flags().GetString("week")
	weekStart, err := parseWeek(week)
	if err != nil {
		return err
	}

	p, err := openPlanner()
	if err != nil {
		return err
	}
	defer p.Close()

	summary, err := p.chores.WeeklyStats(cmd.Context(), weekStart)
	if err != nil {
		return fmt.Errorf("computing stats: %w", err)
	}

	if !textFormat() {
		return printJSON(cmd.OutOrStdout(), summary)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "week of %s: %d chores, %d done, %d unassigned\n",
		summary.WeekStart.Format(dateLayout), summary.Total, summary.Completed, summary.Unassigned)
	for _, member := range summary.Members {
		fmt.Fprintf(cmd.OutOrStdout(), "  %-16s %d/%d done (%.0f%%)\n",
			member.Name, member.Completed, member.Assigned, member.CompletionRate*100)
	}
	return nil
}
