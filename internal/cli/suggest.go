package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Preview assignees for every open chore without saving them",
		RunE:  runSuggest,
	}

	RootCmd.AddCommand(cmd)
}

func runSuggest(cmd *cobra.Command, args []string) error {
	p, err := openPlanner()
	if err != nil {
		return err
	}
	defer p.Close()

	result, err := p.chores.SuggestAssignments(cmd.Context())
	if err != nil {
		return fmt.Errorf("suggesting assignments: %w", err)
	}

	if !textFormat() {
		return printJSON(cmd.OutOrStdout(), result)
	}
	if result.Message != "" {
		fmt.Fprintln(cmd.OutOrStdout(), result.Message)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "source: %s\n", result.Source)
	for _, suggestion := range result.Suggestions {
		assignee := "nobody"
		if suggestion.SuggestedAssignee != nil {
			assignee = *suggestion.SuggestedAssignee
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  %-24s %-12s %s\n", suggestion.TaskTitle, assignee, suggestion.Reasoning)
	}
	return nil
}
