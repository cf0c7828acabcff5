package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "expand",
		Short: "List event occurrences in a date range",
		RunE:  runExpand,
	}
	cmd.Flags().String("from", "", "First day, YYYY-MM-DD (default: today)")
	cmd.Flags().String("to", "", "Last day, YYYY-MM-DD (default: 30 days after from)")

	RootCmd.AddCommand(cmd)
}

func runExpand(cmd *cobra.Command, args []string) error {
	fromValue, _ := cmd.Flags().GetString("from")
	toValue, _ := cmd.Flags().GetString("to")

	now := time.Now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	if fromValue != "" {
		parsed, err := time.ParseInLocation(dateLayout, fromValue, time.Local)
		if err != nil {
			return fmt.Errorf("from must be YYYY-MM-DD: %w", err)
		}
		from = parsed
	}
	to := from.AddDate(0, 0, 30)
	if toValue != "" {
		parsed, err := time.ParseInLocation(dateLayout, toValue, time.Local)
		if err != nil {
			return fmt.Errorf("to must be YYYY-MM-DD: %w", err)
		}
		to = parsed
	}
	to = to.AddDate(0, 0, 1).Add(-time.Nanosecond)
	if to.Before(from) {
		return fmt.Errorf("to must not be before from")
	}

	p, err := openPlanner()
	if err != nil {
		return err
	}
	defer p.Close()

	occurrences, err := p.events.ExpandRange(cmd.Context(), from, to)
	if err != nil {
		return fmt.Errorf("expanding events: %w", err)
	}

	if !textFormat() {
		return printJSON(cmd.OutOrStdout(), occurrences)
	}
	for _, occurrence := range occurrences {
		when := occurrence.StartsAt.Format("Mon 2006-01-02 15:04")
		if occurrence.AllDay {
			when = occurrence.StartsAt.Format("Mon 2006-01-02") + " all day"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%-28s %s\n", when, occurrence.Title)
	}
	return nil
}
