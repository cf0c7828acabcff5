package server

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Rhistel0475/Family-Planner-sub000/internal/config"
	"github.com/Rhistel0475/Family-Planner-sub000/internal/handlers"
	"github.com/Rhistel0475/Family-Planner-sub000/internal/middleware"
	"github.com/Rhistel0475/Family-Planner-sub000/internal/repository"
	"github.com/Rhistel0475/Family-Planner-sub000/internal/services"
)

type Server struct {
	router *chi.Mux
	config config.Config
}

func New(database *sql.DB, cfg config.Config, authService *services.AuthService, choreService *services.ChoreService) *Server {
	memberRepo := repository.NewMemberRepository(database)
	eventRepo := repository.NewEventRepository(database)
	instanceRepo := repository.NewTaskInstanceRepository(database)
	tokenRepo := repository.NewAPITokenRepository(database)
	settingsRepo := repository.NewSettingsRepository(database)

	eventService := services.NewEventService(eventRepo, instanceRepo, settingsRepo)
	tokenService := services.NewTokenService(tokenRepo, memberRepo)
	memberService := services.NewMemberService(memberRepo, settingsRepo)

	authHandler := handlers.NewAuthHandler(authService)
	choreHandler := handlers.NewChoreHandler(choreService)
	eventHandler := handlers.NewEventHandler(eventService)
	adminHandler := handlers.NewAdminHandler(memberService, tokenService)
	icalHandler := handlers.NewICalHandler(eventService, tokenService)

	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)
	router.Use(chimiddleware.Compress(5))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	router.Handle("/metrics", promhttp.Handler())

	router.Get("/login", authHandler.LoginPage)
	router.Get("/auth/callback", authHandler.Callback)
	router.Get("/logout", authHandler.Logout)

	router.Get("/ical", icalHandler.Feed)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(authService, tokenService))

		r.Get("/api/me", authHandler.Me)

		r.Get("/api/chores", choreHandler.ListWeek)
		r.Post("/api/chores/suggestions", choreHandler.Suggestions)
		r.Post("/api/chores/{id}/assign", choreHandler.Assign)
		r.Post("/api/chores/{id}/complete", choreHandler.Complete)
		r.Get("/api/stats/weekly", choreHandler.WeeklyStats)
		r.Get("/api/task-definitions", choreHandler.ListDefinitions)

		r.Get("/api/events", eventHandler.List)
		r.Post("/api/events", eventHandler.Create)

		r.Get("/api/members", adminHandler.ListMembers)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)

			r.Post("/api/chores/generate-week", choreHandler.GenerateWeek)
			r.Post("/api/task-definitions", choreHandler.CreateDefinition)

			r.Post("/api/members", adminHandler.CreateMember)
			r.Put("/api/members/{id}", adminHandler.UpdateMember)
			r.Delete("/api/members/{id}", adminHandler.DeleteMember)
			r.Post("/api/members/{id}/promote", adminHandler.PromoteMember)
			r.Post("/api/members/{id}/demote", adminHandler.DemoteMember)
			r.Put("/api/settings", adminHandler.UpdateSettings)

			r.Get("/api/tokens", adminHandler.ListTokens)
			r.Post("/api/tokens", adminHandler.CreateToken)
			r.Delete("/api/tokens/{id}", adminHandler.DeleteToken)
		})
	})

	server := &Server{
		router: router,
		config: cfg,
	}

	return server
}

func (server *Server) Handler() http.Handler {
	return server.router
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (server *Server) Start(ctx context.Context) error {
	address := ":" + server.config.Port
	httpServer := &http.Server{
		Addr:              address,
		Handler:           server.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		slog.Info("starting server", "address", address)
		errs <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errs; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
