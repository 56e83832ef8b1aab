package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"hackhub/internal/domain"
	"hackhub/internal/metrics"
	"hackhub/internal/repository"
	apperr "hackhub/pkg/errors"
	"hackhub/pkg/logger"
)

// HackathonService is the top-level orchestrator: it owns the hackathon
// state machine and round creation/transitions, delegating everything else
// to the specialised services.
type HackathonService struct {
	hackathons repository.HackathonRepository
	rounds     repository.RoundRepository
	log        *logger.Logger
	now        func() time.Time
}

func NewHackathonService(hackathons repository.HackathonRepository, rounds repository.RoundRepository, log *logger.Logger) *HackathonService {
	return &HackathonService{
		hackathons: hackathons,
		rounds:     rounds,
		log:        log,
		now:        time.Now,
	}
}

// CreateHackathonInput carries the admin-supplied fields for a new
// hackathon
type CreateHackathonInput struct {
	Title             string    `json:"title" validate:"required,min=3,max=200"`
	RegistrationStart time.Time `json:"registration_start" validate:"required"`
	RegistrationEnd   time.Time `json:"registration_end" validate:"required"`
	StartDate         time.Time `json:"start_date" validate:"required"`
	EndDate           time.Time `json:"end_date" validate:"required"`
	MaxTeamSize       int       `json:"max_team_size" validate:"required,min=1,max=20"`
	MaxParticipants   int       `json:"max_participants" validate:"required,min=1"`
	AllowIndividual   bool      `json:"allow_individual"`
	AllowTeam         bool      `json:"allow_team"`
}

// CreateHackathon creates a hackathon in draft status
func (s *HackathonService) CreateHackathon(ctx context.Context, input *CreateHackathonInput) (*domain.Hackathon, error) {
	if !input.RegistrationEnd.After(input.RegistrationStart) {
		return nil, apperr.NewValidationError("registration end must be after registration start", nil)
	}
	if !input.EndDate.After(input.StartDate) {
		return nil, apperr.NewValidationError("end date must be after start date", nil)
	}
	if !input.AllowIndividual && !input.AllowTeam {
		return nil, apperr.NewValidationError("at least one of individual or team registration must be allowed", nil)
	}

	h := &domain.Hackathon{
		ID:                uuid.New().String(),
		Title:             input.Title,
		Status:            domain.HackathonStatusDraft,
		RegistrationStart: input.RegistrationStart,
		RegistrationEnd:   input.RegistrationEnd,
		StartDate:         input.StartDate,
		EndDate:           input.EndDate,
		MaxTeamSize:       input.MaxTeamSize,
		MaxParticipants:   input.MaxParticipants,
		AllowIndividual:   input.AllowIndividual,
		AllowTeam:         input.AllowTeam,
	}

	if err := s.hackathons.Create(ctx, h); err != nil {
		return nil, apperr.NewInternalError("failed to create hackathon", err)
	}

	s.log.WithFields(map[string]interface{}{
		"hackathon_id": h.ID,
		"title":        h.Title,
	}).Info("Hackathon created")

	return h, nil
}

// GetHackathon gets a hackathon by ID
func (s *HackathonService) GetHackathon(ctx context.Context, id string) (*domain.Hackathon, error) {
	h, err := s.hackathons.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.NewInternalError("failed to get hackathon", err)
	}
	if h == nil {
		return nil, apperr.NewNotFoundError("hackathon not found")
	}
	return h, nil
}

// ListHackathons lists hackathons, optionally filtered by status
func (s *HackathonService) ListHackathons(ctx context.Context, status domain.HackathonStatus) ([]domain.Hackathon, error) {
	if status != "" && !status.IsValid() {
		return nil, apperr.NewValidationError(fmt.Sprintf("unknown hackathon status %q", status), nil)
	}
	hackathons, err := s.hackathons.List(ctx, status, false)
	if err != nil {
		return nil, apperr.NewInternalError("failed to list hackathons", err)
	}
	return hackathons, nil
}

// ArchiveHackathon soft-deletes a completed hackathon
func (s *HackathonService) ArchiveHackathon(ctx context.Context, id string) error {
	h, err := s.GetHackathon(ctx, id)
	if err != nil {
		return err
	}
	if h.Status != domain.HackathonStatusCompleted {
		return apperr.NewStateConflictError("only completed hackathons can be archived")
	}
	if err := s.hackathons.Archive(ctx, id); err != nil {
		return apperr.NewInternalError("failed to archive hackathon", err)
	}
	return nil
}

// TransitionStatus moves the hackathon along its state machine. Any edge
// not in the transition table is rejected; the conditional update means a
// concurrent admin racing to the same or another edge loses cleanly.
func (s *HackathonService) TransitionStatus(ctx context.Context, id string, to domain.HackathonStatus) (*domain.Hackathon, error) {
	if !to.IsValid() {
		return nil, apperr.NewValidationError(fmt.Sprintf("unknown hackathon status %q", to), nil)
	}

	h, err := s.GetHackathon(ctx, id)
	if err != nil {
		return nil, err
	}
	if !h.Status.CanTransitionTo(to) {
		return nil, apperr.NewStateConflictError(
			fmt.Sprintf("cannot transition hackathon from %s to %s", h.Status, to))
	}

	if to == domain.HackathonStatusCompleted {
		if err := s.ensureRoundsClosed(ctx, id); err != nil {
			return nil, err
		}
	}

	won, err := s.hackathons.UpdateStatus(ctx, id, h.Status, to)
	if err != nil {
		return nil, apperr.NewInternalError("failed to update hackathon status", err)
	}
	if !won {
		return nil, apperr.NewStateConflictError("hackathon status changed concurrently, retry")
	}

	metrics.LifecycleTransitionsTotal.WithLabelValues("hackathon", string(to)).Inc()
	s.log.WithFields(map[string]interface{}{
		"hackathon_id": id,
		"from":         string(h.Status),
		"to":           string(to),
	}).Info("Hackathon status transitioned")

	h.Status = to
	return h, nil
}

// ensureRoundsClosed blocks completion while any round is still open
func (s *HackathonService) ensureRoundsClosed(ctx context.Context, hackathonID string) error {
	rounds, err := s.rounds.ListByHackathon(ctx, hackathonID)
	if err != nil {
		return apperr.NewInternalError("failed to list rounds", err)
	}
	for _, r := range rounds {
		if r.Status != domain.RoundStatusClosed {
			return apperr.NewStateConflictError(
				fmt.Sprintf("round %d is still %s; close all rounds before completing", r.RoundNumber, r.Status))
		}
	}
	return nil
}

// CreateRoundInput carries the admin-supplied fields for a new round
type CreateRoundInput struct {
	StartDate            time.Time `json:"start_date" validate:"required"`
	EndDate              time.Time `json:"end_date" validate:"required"`
	IsElimination        bool      `json:"is_elimination"`
	EliminationThreshold float64   `json:"elimination_threshold"`
	WeightagePercentage  float64   `json:"weightage_percentage" validate:"min=0,max=100"`
	AllowZip             bool      `json:"allow_zip"`
	AllowGithub          bool      `json:"allow_github"`
	AllowVideo           bool      `json:"allow_video"`
	AllowDescription     bool      `json:"allow_description"`
	MaxFileSizeMB        int       `json:"max_file_size_mb" validate:"min=0"`
}

// CreateRound appends a round with the next strictly-increasing round
// number
func (s *HackathonService) CreateRound(ctx context.Context, hackathonID string, input *CreateRoundInput) (*domain.Round, error) {
	h, err := s.GetHackathon(ctx, hackathonID)
	if err != nil {
		return nil, err
	}
	if h.Status == domain.HackathonStatusCompleted {
		return nil, apperr.NewStateConflictError("cannot add rounds to a completed hackathon")
	}
	if input.IsElimination && input.EliminationThreshold <= 0 {
		return nil, apperr.NewValidationError("elimination rounds require a positive elimination threshold", nil)
	}
	if !input.IsElimination && input.EliminationThreshold != 0 {
		return nil, apperr.NewValidationError("elimination threshold is only valid on elimination rounds", nil)
	}
	if !input.AllowZip && !input.AllowGithub && !input.AllowVideo && !input.AllowDescription {
		return nil, apperr.NewValidationError("round must allow at least one submission field", nil)
	}

	maxNumber, err := s.rounds.MaxRoundNumber(ctx, hackathonID)
	if err != nil {
		return nil, apperr.NewInternalError("failed to get round count", err)
	}

	r := &domain.Round{
		ID:                   uuid.New().String(),
		HackathonID:          hackathonID,
		RoundNumber:          maxNumber + 1,
		Status:               domain.RoundStatusUpcoming,
		StartDate:            input.StartDate,
		EndDate:              input.EndDate,
		IsElimination:        input.IsElimination,
		EliminationThreshold: input.EliminationThreshold,
		WeightagePercentage:  input.WeightagePercentage,
		AllowZip:             input.AllowZip,
		AllowGithub:          input.AllowGithub,
		AllowVideo:           input.AllowVideo,
		AllowDescription:     input.AllowDescription,
		MaxFileSizeMB:        input.MaxFileSizeMB,
	}

	if err := s.rounds.Create(ctx, r); err != nil {
		return nil, apperr.NewInternalError("failed to create round", err)
	}

	s.log.WithFields(map[string]interface{}{
		"hackathon_id": hackathonID,
		"round_id":     r.ID,
		"round_number": r.RoundNumber,
	}).Info("Round created")

	return r, nil
}

// ListRounds lists a hackathon's rounds in order
func (s *HackathonService) ListRounds(ctx context.Context, hackathonID string) ([]domain.Round, error) {
	if _, err := s.GetHackathon(ctx, hackathonID); err != nil {
		return nil, err
	}
	rounds, err := s.rounds.ListByHackathon(ctx, hackathonID)
	if err != nil {
		return nil, apperr.NewInternalError("failed to list rounds", err)
	}
	return rounds, nil
}

// GetRound gets a round by ID
func (s *HackathonService) GetRound(ctx context.Context, roundID string) (*domain.Round, error) {
	r, err := s.rounds.GetByID(ctx, roundID)
	if err != nil {
		return nil, apperr.NewInternalError("failed to get round", err)
	}
	if r == nil {
		return nil, apperr.NewNotFoundError("round not found")
	}
	return r, nil
}

// TransitionRound moves a round forward along upcoming → active → judging →
// closed. Closing by hand requires finalized scoring; activation requires
// the hackathon to be at a round-running status and every earlier round
// closed.
func (s *HackathonService) TransitionRound(ctx context.Context, roundID string, to domain.RoundStatus) (*domain.Round, error) {
	if !to.IsValid() {
		return nil, apperr.NewValidationError(fmt.Sprintf("unknown round status %q", to), nil)
	}

	r, err := s.GetRound(ctx, roundID)
	if err != nil {
		return nil, err
	}
	if !r.Status.CanTransitionTo(to) {
		return nil, apperr.NewStateConflictError(
			fmt.Sprintf("cannot transition round from %s to %s", r.Status, to))
	}

	switch to {
	case domain.RoundStatusActive:
		h, err := s.GetHackathon(ctx, r.HackathonID)
		if err != nil {
			return nil, err
		}
		if !h.Status.RoundsAllowed() {
			return nil, apperr.NewStateConflictError(
				fmt.Sprintf("hackathon is %s; rounds cannot run yet", h.Status))
		}
		if err := s.ensurePriorRoundsClosed(ctx, r); err != nil {
			return nil, err
		}
	case domain.RoundStatusClosed:
		if !r.IsScoringFinalized {
			return nil, apperr.NewStateConflictError("finalize scoring before closing the round")
		}
	}

	won, err := s.rounds.UpdateStatus(ctx, roundID, r.Status, to)
	if err != nil {
		return nil, apperr.NewInternalError("failed to update round status", err)
	}
	if !won {
		return nil, apperr.NewStateConflictError("round status changed concurrently, retry")
	}

	metrics.LifecycleTransitionsTotal.WithLabelValues("round", string(to)).Inc()
	s.log.WithFields(map[string]interface{}{
		"round_id": roundID,
		"from":     string(r.Status),
		"to":       string(to),
	}).Info("Round status transitioned")

	r.Status = to
	return r, nil
}

// ensurePriorRoundsClosed blocks activating round N while an earlier round
// is still open
func (s *HackathonService) ensurePriorRoundsClosed(ctx context.Context, r *domain.Round) error {
	rounds, err := s.rounds.ListByHackathon(ctx, r.HackathonID)
	if err != nil {
		return apperr.NewInternalError("failed to list rounds", err)
	}
	for _, prior := range rounds {
		if prior.RoundNumber < r.RoundNumber && prior.Status != domain.RoundStatusClosed {
			return apperr.NewStateConflictError(
				fmt.Sprintf("round %d must close before round %d starts", prior.RoundNumber, r.RoundNumber))
		}
	}
	return nil
}

// JudgingStatus reports judging progress for every round of a hackathon
func (s *HackathonService) JudgingStatus(ctx context.Context, hackathonID string) ([]domain.RoundJudgingSummary, error) {
	if _, err := s.GetHackathon(ctx, hackathonID); err != nil {
		return nil, err
	}
	summaries, err := s.rounds.JudgingSummaries(ctx, hackathonID)
	if err != nil {
		return nil, apperr.NewInternalError("failed to get judging status", err)
	}
	return summaries, nil
}
