package container

import (
	"context"

	"hackhub/internal/config"
	"hackhub/internal/repository"
	"hackhub/internal/service"
	"hackhub/pkg/database"
	"hackhub/pkg/logger"
	"hackhub/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          *database.PostgresDB
	RedisClient *redis.Client

	HackathonService   *service.HackathonService
	TeamService        *service.TeamService
	MentorService      *service.MentorService
	SubmissionService  *service.SubmissionService
	JudgingService     *service.JudgingService
	LeaderboardService *service.LeaderboardService
}

// New creates a new dependency injection container
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Container, error) {
	db, err := database.NewPostgresDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	// Redis is optional; without it rank trends reset on restart
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(cfg.RedisURL, log.Logger)
		if err != nil {
			log.WithError(err).Warn("Failed to initialize Redis client, rank trends will not survive restarts")
		} else {
			redisClient = client
			log.Info("Redis client initialized successfully")
		}
	} else {
		log.Info("Redis URL not configured, using in-memory leaderboard snapshots")
	}

	hackathonRepo := repository.NewHackathonRepository(db)
	roundRepo := repository.NewRoundRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	mentorRepo := repository.NewMentorRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	scoreRepo := repository.NewScoreRepository(db)

	var snapshots service.SnapshotStore
	if redisClient != nil {
		snapshots = service.NewRedisSnapshotStore(redisClient)
	} else {
		snapshots = service.NewMemorySnapshotStore()
	}

	policy := service.JudgingPolicy{DefaultScore: cfg.JudgingDefaultScore}

	return &Container{
		Config:      cfg,
		Logger:      log,
		DB:          db,
		RedisClient: redisClient,

		HackathonService:  service.NewHackathonService(hackathonRepo, roundRepo, log),
		TeamService:       service.NewTeamService(hackathonRepo, teamRepo, log),
		MentorService:     service.NewMentorService(hackathonRepo, mentorRepo, cfg.MentorTargetTeams, log),
		SubmissionService: service.NewSubmissionService(roundRepo, teamRepo, submissionRepo, log),
		JudgingService: service.NewJudgingService(
			roundRepo, teamRepo, submissionRepo, scoreRepo, mentorRepo, policy, log),
		LeaderboardService: service.NewLeaderboardService(
			hackathonRepo, roundRepo, teamRepo, submissionRepo, scoreRepo, snapshots, policy, log),
	}, nil
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.Logger
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.Config
}

// HasRedis returns true if the Redis client is available
func (c *Container) HasRedis() bool {
	return c.RedisClient != nil
}

// Close releases the container's connections
func (c *Container) Close() {
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.WithError(err).Warn("Failed to close Redis client")
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
}
