package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "generate-week",
		Short: "Materialize and assign the recurring chores of a week",
		RunE:  runGenerateWeek,
	}
	cmd.Flags().String("week", "", "Any day of the week to generate, YYYY-MM-DD (default: this week)")

	RootCmd.AddCommand(cmd)
}

func runGenerateWeek(cmd *cobra.Command, args []string) error {
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

	generated, err := p.chores.GenerateWeek(cmd.Context(), weekStart)
	if err != nil {
		return fmt.Errorf("generating week: %w", err)
	}

	if !textFormat() {
		return printJSON(cmd.OutOrStdout(), generated)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created %d chores for the week of %s\n", generated.Created, weekStart.Format(dateLayout))
	for _, assignment := range generated.Assignments {
		assignee := "nobody"
		if assignment.SuggestedAssignee != nil {
			assignee = *assignment.SuggestedAssignee
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  %-24s %-12s %s\n", assignment.TaskTitle, assignee, assignment.Reasoning)
	}
	return nil
}
