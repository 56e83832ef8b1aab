package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	if len(os.Args) < 2 {
		fmt.Println("Usage: go run main.go [drop|up|seed]")
		os.Exit(1)
	}

	command := os.Args[1]

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close(ctx)

	switch command {
	case "drop":
		if err := dropTables(ctx, conn); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		fmt.Println("✅ All tables dropped successfully")

	case "up":
		if err := createTables(ctx, conn); err != nil {
			log.Fatalf("Failed to create tables: %v", err)
		}
		fmt.Println("✅ All tables created successfully")

	case "seed":
		if err := seedData(ctx, conn); err != nil {
			log.Fatalf("Failed to seed data: %v", err)
		}
		fmt.Println("✅ Data seeded successfully")

	default:
		fmt.Printf("Unknown command: %s\n", command)
		fmt.Println("Usage: go run main.go [drop|up|seed]")
		os.Exit(1)
	}
}

func dropTables(ctx context.Context, conn *pgx.Conn) error {
	queries := []string{
		`DROP TABLE IF EXISTS scores CASCADE`,
		`DROP TABLE IF EXISTS submissions CASCADE`,
		`DROP TABLE IF EXISTS mentor_assignments CASCADE`,
		`DROP TABLE IF EXISTS invitations CASCADE`,
		`DROP TABLE IF EXISTS team_members CASCADE`,
		`DROP TABLE IF EXISTS teams CASCADE`,
		`DROP TABLE IF EXISTS registrations CASCADE`,
		`DROP TABLE IF EXISTS rounds CASCADE`,
		`DROP TABLE IF EXISTS hackathons CASCADE`,
	}

	for _, query := range queries {
		if _, err := conn.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
		fmt.Printf("  Dropped: %s\n", query)
	}

	return nil
}

func createTables(ctx context.Context, conn *pgx.Conn) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS hackathons (
			id UUID PRIMARY KEY,
			title VARCHAR(200) NOT NULL,
			status VARCHAR(30) NOT NULL DEFAULT 'draft',
			registration_start TIMESTAMPTZ NOT NULL,
			registration_end TIMESTAMPTZ NOT NULL,
			start_date TIMESTAMPTZ NOT NULL,
			end_date TIMESTAMPTZ NOT NULL,
			max_team_size INTEGER NOT NULL,
			max_participants INTEGER NOT NULL,
			allow_individual BOOLEAN NOT NULL DEFAULT true,
			allow_team BOOLEAN NOT NULL DEFAULT true,
			archived BOOLEAN NOT NULL DEFAULT false,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS rounds (
			id UUID PRIMARY KEY,
			hackathon_id UUID NOT NULL REFERENCES hackathons(id) ON DELETE CASCADE,
			round_number INTEGER NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'upcoming',
			start_date TIMESTAMPTZ NOT NULL,
			end_date TIMESTAMPTZ NOT NULL,
			is_elimination BOOLEAN NOT NULL DEFAULT false,
			elimination_threshold DOUBLE PRECISION NOT NULL DEFAULT 0,
			weightage_percentage DOUBLE PRECISION NOT NULL DEFAULT 0,
			is_scoring_finalized BOOLEAN NOT NULL DEFAULT false,
			allow_zip BOOLEAN NOT NULL DEFAULT false,
			allow_github BOOLEAN NOT NULL DEFAULT false,
			allow_video BOOLEAN NOT NULL DEFAULT false,
			allow_description BOOLEAN NOT NULL DEFAULT true,
			max_file_size_mb INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT rounds_number_unique UNIQUE (hackathon_id, round_number)
		)`,

		`CREATE TABLE IF NOT EXISTS registrations (
			hackathon_id UUID NOT NULL REFERENCES hackathons(id) ON DELETE CASCADE,
			student_id VARCHAR(100) NOT NULL,
			registration_type VARCHAR(20) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (hackathon_id, student_id)
		)`,

		`CREATE TABLE IF NOT EXISTS teams (
			id UUID PRIMARY KEY,
			hackathon_id UUID NOT NULL REFERENCES hackathons(id) ON DELETE CASCADE,
			name VARCHAR(100) NOT NULL,
			lead_id VARCHAR(100) NOT NULL,
			status VARCHAR(30) NOT NULL DEFAULT 'pending_approval',
			registration_type VARCHAR(20) NOT NULL,
			rejection_reason TEXT,
			mentor_id VARCHAR(100),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_teams_hackathon ON teams(hackathon_id)`,
		`CREATE INDEX IF NOT EXISTS idx_teams_mentor ON teams(hackathon_id, mentor_id)`,

		`CREATE TABLE IF NOT EXISTS team_members (
			team_id UUID NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
			student_id VARCHAR(100) NOT NULL,
			role VARCHAR(20) NOT NULL DEFAULT 'member',
			joined_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (team_id, student_id)
		)`,

		`CREATE TABLE IF NOT EXISTS invitations (
			id UUID PRIMARY KEY,
			team_id UUID NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
			invited_email VARCHAR(255) NOT NULL,
			invited_by VARCHAR(100) NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			expires_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_invitations_team ON invitations(team_id)`,

		`CREATE TABLE IF NOT EXISTS mentor_assignments (
			id UUID PRIMARY KEY,
			hackathon_id UUID NOT NULL REFERENCES hackathons(id) ON DELETE CASCADE,
			mentor_id VARCHAR(100) NOT NULL,
			assignment_type VARCHAR(20) NOT NULL DEFAULT 'global',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT mentor_assignments_unique UNIQUE (hackathon_id, mentor_id)
		)`,

		`CREATE TABLE IF NOT EXISTS submissions (
			id UUID PRIMARY KEY,
			team_id UUID NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
			round_id UUID NOT NULL REFERENCES rounds(id) ON DELETE CASCADE,
			version_number INTEGER NOT NULL,
			zip_url TEXT,
			github_link TEXT,
			video_url TEXT,
			description TEXT,
			file_size_mb DOUBLE PRECISION,
			is_final BOOLEAN NOT NULL DEFAULT false,
			submitted_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT submissions_version_unique UNIQUE (team_id, round_id, version_number)
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_submissions_final
			ON submissions(team_id, round_id) WHERE is_final = true`,
		`CREATE INDEX IF NOT EXISTS idx_submissions_round ON submissions(round_id) WHERE is_final = true`,

		`CREATE TABLE IF NOT EXISTS scores (
			id UUID PRIMARY KEY,
			submission_id UUID NOT NULL REFERENCES submissions(id) ON DELETE CASCADE,
			judge_id VARCHAR(100) NOT NULL,
			score DOUBLE PRECISION NOT NULL CHECK (score >= 0 AND score <= 100),
			remarks TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT scores_judge_unique UNIQUE (submission_id, judge_id)
		)`,
	}

	for i, query := range queries {
		if _, err := conn.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query %d: %w", i+1, err)
		}
	}

	fmt.Println("  Created: hackathons, rounds, registrations, teams, team_members, invitations, mentor_assignments, submissions, scores")
	return nil
}

func seedData(ctx context.Context, conn *pgx.Conn) error {
	queries := []string{
		`INSERT INTO hackathons (
			id, title, status, registration_start, registration_end,
			start_date, end_date, max_team_size, max_participants,
			allow_individual, allow_team
		) VALUES (
			'00000000-0000-0000-0000-000000000001',
			'Demo Hackathon', 'registration_open',
			NOW() - INTERVAL '1 day', NOW() + INTERVAL '7 days',
			NOW() + INTERVAL '8 days', NOW() + INTERVAL '10 days',
			4, 200, true, true
		) ON CONFLICT (id) DO NOTHING`,

		`INSERT INTO rounds (
			id, hackathon_id, round_number, status, start_date, end_date,
			is_elimination, elimination_threshold, weightage_percentage,
			allow_github, allow_description, max_file_size_mb
		) VALUES (
			'00000000-0000-0000-0000-000000000101',
			'00000000-0000-0000-0000-000000000001',
			1, 'upcoming', NOW() + INTERVAL '8 days', NOW() + INTERVAL '9 days',
			true, 50, 40, true, true, 100
		) ON CONFLICT (id) DO NOTHING`,

		`INSERT INTO rounds (
			id, hackathon_id, round_number, status, start_date, end_date,
			is_elimination, elimination_threshold, weightage_percentage,
			allow_github, allow_video, allow_description, max_file_size_mb
		) VALUES (
			'00000000-0000-0000-0000-000000000102',
			'00000000-0000-0000-0000-000000000001',
			2, 'upcoming', NOW() + INTERVAL '9 days', NOW() + INTERVAL '10 days',
			false, 0, 60, true, true, true, 200
		) ON CONFLICT (id) DO NOTHING`,
	}

	for _, query := range queries {
		if _, err := conn.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to seed data: %w", err)
		}
	}

	fmt.Println("  Seeded: demo hackathon with two rounds")
	return nil
}
