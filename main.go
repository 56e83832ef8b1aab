package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hackhub/internal/config"
	"hackhub/internal/container"
	"hackhub/internal/handler"
	"hackhub/internal/middleware"
	"hackhub/pkg/logger"
)

// Resources holds all resources that need cleanup
type Resources struct {
	container *container.Container
	server    *http.Server
	log       *logger.Logger
	mu        sync.Mutex
	closed    bool
}

// Cleanup gracefully closes all resources
func (r *Resources) Cleanup(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	var errors []error

	r.log.Info("Starting graceful shutdown...")

	// Shutdown HTTP server first to stop accepting new requests
	if r.server != nil {
		r.log.Info("Shutting down HTTP server...")
		if err := r.server.Shutdown(ctx); err != nil {
			r.log.WithError(err).Error("Failed to shutdown HTTP server")
			errors = append(errors, fmt.Errorf("HTTP server shutdown: %w", err))
		} else {
			r.log.Info("HTTP server shutdown complete")
		}
	}

	if r.container != nil {
		r.container.Close()
		r.log.Info("Connections closed")
	}

	if len(errors) > 0 {
		r.log.WithField("error_count", len(errors)).Error("Cleanup completed with errors")
		return fmt.Errorf("cleanup completed with %d errors: %v", len(errors), errors)
	}

	r.log.Info("Graceful shutdown completed successfully")
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log.WithFields(map[string]interface{}{
		"port":        cfg.Port,
		"log_level":   cfg.LogLevel,
		"environment": cfg.Environment,
	}).Info("Starting hackhub server")

	ctx := context.Background()
	c, err := container.New(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to create container")
	}

	router := setupRouter(c)

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        router,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   60 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB max header size
	}

	resources := &Resources{
		container: c,
		server:    server,
		log:       log,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)

	defer func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := resources.Cleanup(cleanupCtx); err != nil {
			log.WithError(err).Error("Cleanup completed with errors")
		}
	}()

	serverErrChan := make(chan error, 1)
	go func() {
		log.Info("Server starting on port " + cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("Server error occurred")
			serverErrChan <- err
		}
	}()

	select {
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("Received shutdown signal")
	case err := <-serverErrChan:
		log.WithError(err).Error("Server failed, initiating shutdown")
	}

	log.Info("Initiating graceful shutdown...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	if err := resources.Cleanup(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown completed with errors")
		os.Exit(1)
	}

	log.Info("Application shutdown complete")
}

// setupRouter configures and returns the HTTP router
func setupRouter(c *container.Container) *chi.Mux {
	cfg := c.GetConfig()
	log := c.GetLogger()

	r := chi.NewRouter()

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowedOrigins = cfg.AllowedOrigins

	r.Use(middleware.CORS(corsConfig, log))
	r.Use(middleware.RequestID(log))
	r.Use(middleware.Metrics())
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Compress(5))
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	healthHandler := handler.NewHealthHandler(c)
	hackathonHandler := handler.NewHackathonHandler(c.HackathonService, log)
	teamHandler := handler.NewTeamHandler(c.TeamService, log)
	mentorHandler := handler.NewMentorHandler(c.MentorService, c.TeamService, log)
	submissionHandler := handler.NewSubmissionHandler(c.SubmissionService, c.JudgingService, log)
	judgingHandler := handler.NewJudgingHandler(c.JudgingService, log)
	leaderboardHandler := handler.NewLeaderboardHandler(c.LeaderboardService, log)

	// Health check and metrics (no auth required)
	r.Get("/health", healthHandler.Check)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Public read endpoints
		r.Get("/hackathons", hackathonHandler.List)
		r.Get("/hackathons/{hackathonID}", hackathonHandler.Get)
		r.Get("/hackathons/{hackathonID}/rounds", hackathonHandler.ListRounds)
		r.Get("/hackathons/{hackathonID}/leaderboard", leaderboardHandler.Get)
		r.Get("/rounds/{roundID}", hackathonHandler.GetRound)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTSecret, log))

			// Student-facing
			r.Post("/hackathons/{hackathonID}/registrations/individual", teamHandler.RegisterIndividual)
			r.Post("/hackathons/{hackathonID}/registrations/team", teamHandler.RegisterTeam)
			r.Post("/teams/{teamID}/invitations", teamHandler.Invite)
			r.Post("/invitations/{invitationID}/accept", teamHandler.AcceptInvitation)
			r.Post("/invitations/{invitationID}/decline", teamHandler.DeclineInvitation)
			r.Get("/teams/{teamID}", teamHandler.Get)
			r.Get("/hackathons/{hackathonID}/teams", teamHandler.List)
			r.Post("/rounds/{roundID}/teams/{teamID}/submissions", submissionHandler.Submit)
			r.Get("/rounds/{roundID}/teams/{teamID}/status", submissionHandler.Status)

			// Mentor and judge endpoints
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(log, middleware.RoleMentor, middleware.RoleAdmin))

				r.Post("/teams/{teamID}/approve", teamHandler.Approve)
				r.Post("/teams/{teamID}/reject", teamHandler.Reject)
				r.Post("/submissions/{submissionID}/scores", judgingHandler.Score)
				r.Get("/submissions/{submissionID}/scores", judgingHandler.ListScores)
				r.Get("/hackathons/{hackathonID}/mentors/{mentorID}/teams", mentorHandler.Teams)
			})

			// Admin endpoints
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(log, middleware.RoleAdmin))

				r.Post("/hackathons", hackathonHandler.Create)
				r.Patch("/hackathons/{hackathonID}/status", hackathonHandler.Transition)
				r.Delete("/hackathons/{hackathonID}", hackathonHandler.Archive)
				r.Post("/hackathons/{hackathonID}/rounds", hackathonHandler.CreateRound)
				r.Patch("/rounds/{roundID}/status", hackathonHandler.TransitionRound)
				r.Post("/rounds/{roundID}/finalize", judgingHandler.FinalizeRound)
				r.Get("/hackathons/{hackathonID}/judging-status", hackathonHandler.JudgingStatus)

				r.Post("/hackathons/{hackathonID}/finalize-teams", teamHandler.FinalizeTeams)

				r.Post("/hackathons/{hackathonID}/mentors", mentorHandler.Assign)
				r.Get("/hackathons/{hackathonID}/mentors", mentorHandler.List)
				r.Delete("/hackathons/{hackathonID}/mentors/{mentorID}", mentorHandler.Remove)
				r.Post("/hackathons/{hackathonID}/mentors/distribute", mentorHandler.Distribute)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"kind":"not_found","message":"Endpoint not found"}}`))
	})

	log.Info("Router configured successfully")
	return r
}
