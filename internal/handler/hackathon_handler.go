package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"hackhub/internal/domain"
	"hackhub/internal/service"
	apperr "hackhub/pkg/errors"
	"hackhub/pkg/logger"
)

// HackathonHandler exposes hackathon and round lifecycle operations
type HackathonHandler struct {
	hackathonService *service.HackathonService
	log              *logger.Logger
}

func NewHackathonHandler(hackathonService *service.HackathonService, log *logger.Logger) *HackathonHandler {
	return &HackathonHandler{
		hackathonService: hackathonService,
		log:              log,
	}
}

// Create handles POST /api/v1/hackathons
func (h *HackathonHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.CreateHackathonInput
	if err := decodeAndValidate(r, &input); err != nil {
		respondError(w, h.log, err)
		return
	}

	hackathon, err := h.hackathonService.CreateHackathon(r.Context(), &input)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	respondJSON(w, http.StatusCreated, hackathon)
}

// Get handles GET /api/v1/hackathons/{hackathonID}
func (h *HackathonHandler) Get(w http.ResponseWriter, r *http.Request) {
	hackathon, err := h.hackathonService.GetHackathon(r.Context(), chi.URLParam(r, "hackathonID"))
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, hackathon)
}

// List handles GET /api/v1/hackathons?status=
func (h *HackathonHandler) List(w http.ResponseWriter, r *http.Request) {
	status := domain.HackathonStatus(r.URL.Query().Get("status"))
	hackathons, err := h.hackathonService.ListHackathons(r.Context(), status)
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"hackathons": hackathons})
}

type transitionRequest struct {
	Status string `json:"status" validate:"required"`
}

// Transition handles PATCH /api/v1/hackathons/{hackathonID}/status
func (h *HackathonHandler) Transition(w http.ResponseWriter, r *http.Request) {
	var req transitionRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}

	hackathon, err := h.hackathonService.TransitionStatus(r.Context(),
		chi.URLParam(r, "hackathonID"), domain.HackathonStatus(req.Status))
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, hackathon)
}

// Archive handles DELETE /api/v1/hackathons/{hackathonID}
func (h *HackathonHandler) Archive(w http.ResponseWriter, r *http.Request) {
	if err := h.hackathonService.ArchiveHackathon(r.Context(), chi.URLParam(r, "hackathonID")); err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// CreateRound handles POST /api/v1/hackathons/{hackathonID}/rounds
func (h *HackathonHandler) CreateRound(w http.ResponseWriter, r *http.Request) {
	var input service.CreateRoundInput
	if err := decodeAndValidate(r, &input); err != nil {
		respondError(w, h.log, err)
		return
	}

	round, err := h.hackathonService.CreateRound(r.Context(), chi.URLParam(r, "hackathonID"), &input)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	respondJSON(w, http.StatusCreated, round)
}

// ListRounds handles GET /api/v1/hackathons/{hackathonID}/rounds
func (h *HackathonHandler) ListRounds(w http.ResponseWriter, r *http.Request) {
	rounds, err := h.hackathonService.ListRounds(r.Context(), chi.URLParam(r, "hackathonID"))
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"rounds": rounds})
}

// GetRound handles GET /api/v1/rounds/{roundID}
func (h *HackathonHandler) GetRound(w http.ResponseWriter, r *http.Request) {
	round, err := h.hackathonService.GetRound(r.Context(), chi.URLParam(r, "roundID"))
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, round)
}

// TransitionRound handles PATCH /api/v1/rounds/{roundID}/status
func (h *HackathonHandler) TransitionRound(w http.ResponseWriter, r *http.Request) {
	var req transitionRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, h.log, err)
		return
	}

	status := domain.RoundStatus(req.Status)
	if !status.IsValid() {
		respondError(w, h.log, apperr.NewValidationError("unknown round status", nil))
		return
	}

	round, err := h.hackathonService.TransitionRound(r.Context(), chi.URLParam(r, "roundID"), status)
	if err != nil {
		respondError(w, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, round)
}

// JudgingStatus handles GET /api/v1/hackathons/{hackathonID}/judging-status
func (h *HackathonHandler) JudgingStatus(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.hackathonService.JudgingStatus(r.Context(), chi.URLParam(r, "hackathonID"))
	if err != nil {
		respondError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"rounds": summaries})
}
