// Package cli implements the plannerctl commands.
package cli

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/Rhistel0475/Family-Planner-sub000/internal/ai"
	"github.com/Rhistel0475/Family-Planner-sub000/internal/config"
	"github.com/Rhistel0475/Family-Planner-sub000/internal/database"
	"github.com/Rhistel0475/Family-Planner-sub000/internal/metrics"
	"github.com/Rhistel0475/Family-Planner-sub000/internal/repository"
	"github.com/Rhistel0475/Family-Planner-sub000/internal/scheduling"
	"github.com/Rhistel0475/Family-Planner-sub000/internal/services"
)

const dateLayout = "2006-01-02"

var (
	dbPath     string
	formatFlag string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:           "plannerctl",
	Short:         "Operate the family planner from the command line",
	Long:          "Generate weekly chores, preview assignments and inspect the calendar without running the server.",
	SilenceUsage:  true,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $DATABASE_PATH)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
}

type planner struct {
	db     *sql.DB
	chores *services.ChoreService
	events *services.EventService
}

func (p *planner) Close() error {
	return p.db.Close()
}

// openPlanner opens and migrates the database and wires the services the
// way the server does, without metrics.
func openPlanner() (*planner, error) {
	cfg, err := config.LoadWithoutSession()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if dbPath != "" {
		cfg.DatabasePath = dbPath
	}

	policy, err := config.LoadPolicy(cfg.AssignmentPolicyFile)
	if err != nil {
		return nil, err
	}

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	instanceRepo := repository.NewTaskInstanceRepository(db)
	client := ai.NewClient(cfg.AIEndpoint, cfg.AIAPIKey, ai.WithModel(cfg.AIModel), ai.WithHTTPTimeout(cfg.AITimeout))

	return &planner{
		db: db,
		chores: services.NewChoreService(
			repository.NewMemberRepository(db),
			repository.NewTaskDefinitionRepository(db),
			instanceRepo,
			ai.NewAdvisor(client),
			policy,
			metrics.NewNop(),
			cfg.AITimeout,
		),
		events: services.NewEventService(repository.NewEventRepository(db), instanceRepo, repository.NewSettingsRepository(db)),
	}, nil
}

func printJSON(out io.Writer, value interface{}) error {
	b, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(b))
	return err
}

func parseWeek(value string) (time.Time, error) {
	if value == "" {
		return scheduling.WeekStart(time.Now()), nil
	}
	day, err := time.ParseInLocation(dateLayout, value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("week must be YYYY-MM-DD: %w", err)
	}
	return scheduling.WeekStart(day), nil
}

func textFormat() bool {
	return formatFlag == "text"
}
