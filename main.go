package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Rhistel0475/Family-Planner-sub000/internal/ai"
	"github.com/Rhistel0475/Family-Planner-sub000/internal/config"
	"github.com/Rhistel0475/Family-Planner-sub000/internal/database"
	"github.com/Rhistel0475/Family-Planner-sub000/internal/metrics"
	"github.com/Rhistel0475/Family-Planner-sub000/internal/repository"
	"github.com/Rhistel0475/Family-Planner-sub000/internal/scheduling"
	"github.com/Rhistel0475/Family-Planner-sub000/internal/server"
	"github.com/Rhistel0475/Family-Planner-sub000/internal/services"
)

const generationCheckInterval = time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}
	setupLogging(cfg.LogLevel)

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		slog.Error("opening database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("running migrations", "error", err)
		os.Exit(1)
	}

	policy, err := config.LoadPolicy(cfg.AssignmentPolicyFile)
	if err != nil {
		slog.Error("loading assignment policy", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	memberRepo := repository.NewMemberRepository(db)
	authService, err := services.NewAuthService(ctx, cfg, memberRepo)
	if err != nil {
		slog.Error("creating auth service", "error", err)
		os.Exit(1)
	}

	choreService := newChoreService(db, cfg, policy, metrics.NewPrometheus(nil, "planner"))

	go runWeeklyGenerator(ctx, choreService)

	srv := server.New(db, cfg, authService, choreService)
	if err := srv.Start(ctx); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func setupLogging(level string) {
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(level)); err != nil {
		slog.Warn("unknown LOG_LEVEL, using info", "level", level)
		logLevel = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))
}

func newChoreService(db *sql.DB, cfg config.Config, policy scheduling.TieBreakPolicy, collector metrics.Collector) *services.ChoreService {
	client := ai.NewClient(cfg.AIEndpoint, cfg.AIAPIKey,
		ai.WithModel(cfg.AIModel),
		ai.WithHTTPTimeout(cfg.AITimeout),
	)
	if !client.Configured() {
		slog.Info("AI_ENDPOINT not set, assignments use the rule-based assigner")
	}

	return services.NewChoreService(
		repository.NewMemberRepository(db),
		repository.NewTaskDefinitionRepository(db),
		repository.NewTaskInstanceRepository(db),
		ai.NewAdvisor(client),
		policy,
		collector,
		cfg.AITimeout,
	)
}

// runWeeklyGenerator materializes the current week once it has no chores,
// which in practice happens early each Monday.
func runWeeklyGenerator(ctx context.Context, choreService *services.ChoreService) {
	ticker := time.NewTicker(generationCheckInterval)
	defer ticker.Stop()

	for {
		weekStart := scheduling.WeekStart(time.Now())
		instances, err := choreService.WeekInstances(ctx, weekStart)
		switch {
		case err != nil:
			slog.Error("checking current week", "error", err)
		case len(instances) == 0:
			if _, err := choreService.GenerateWeek(ctx, weekStart); err != nil {
				slog.Error("generating current week", "error", err)
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
