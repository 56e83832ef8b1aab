package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"hackhub/internal/domain"
	"hackhub/internal/repository"
	"hackhub/pkg/logger"
)

func testLogger() *logger.Logger {
	return &logger.Logger{Logger: zap.NewNop()}
}

// fakeHackathonRepo is an in-memory HackathonRepository
type fakeHackathonRepo struct {
	mu         sync.Mutex
	hackathons map[string]*domain.Hackathon
}

func newFakeHackathonRepo() *fakeHackathonRepo {
	return &fakeHackathonRepo{hackathons: make(map[string]*domain.Hackathon)}
}

func (f *fakeHackathonRepo) Create(_ context.Context, h *domain.Hackathon) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *h
	f.hackathons[h.ID] = &cp
	return nil
}

func (f *fakeHackathonRepo) GetByID(_ context.Context, id string) (*domain.Hackathon, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	h, ok := f.hackathons[id]
	if !ok {
		return nil, nil
	}
	cp := *h
	return &cp, nil
}

func (f *fakeHackathonRepo) List(_ context.Context, status domain.HackathonStatus, includeArchived bool) ([]domain.Hackathon, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Hackathon
	for _, h := range f.hackathons {
		if status != "" && h.Status != status {
			continue
		}
		if h.Archived && !includeArchived {
			continue
		}
		out = append(out, *h)
	}
	return out, nil
}

func (f *fakeHackathonRepo) UpdateStatus(_ context.Context, id string, from, to domain.HackathonStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	h, ok := f.hackathons[id]
	if !ok || h.Status != from {
		return false, nil
	}
	h.Status = to
	return true, nil
}

func (f *fakeHackathonRepo) Archive(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if h, ok := f.hackathons[id]; ok {
		h.Archived = true
	}
	return nil
}

// fakeTeamRepo is an in-memory TeamRepository; it shares the hackathon repo
// so finalization can run the status compare-and-set the way the
// transactional batch does
type fakeTeamRepo struct {
	mu            sync.Mutex
	hackathons    *fakeHackathonRepo
	teams         map[string]*domain.Team
	members       map[string][]domain.TeamMember
	registrations map[string]map[string]domain.RegistrationType // hackathonID → studentID
	invitations   map[string]*domain.Invitation
	regOrder      map[string][]string // hackathonID → studentIDs in order
	failFinalize  error               // one-shot injected finalization failure
}

func newFakeTeamRepo(hackathons *fakeHackathonRepo) *fakeTeamRepo {
	return &fakeTeamRepo{
		hackathons:    hackathons,
		teams:         make(map[string]*domain.Team),
		members:       make(map[string][]domain.TeamMember),
		registrations: make(map[string]map[string]domain.RegistrationType),
		invitations:   make(map[string]*domain.Invitation),
		regOrder:      make(map[string][]string),
	}
}

func (f *fakeTeamRepo) CreateTeam(_ context.Context, t *domain.Team, lead *domain.TeamMember) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *t
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	f.teams[t.ID] = &cp
	if lead != nil {
		f.members[t.ID] = append(f.members[t.ID], *lead)
	}
	return nil
}

func (f *fakeTeamRepo) GetByID(_ context.Context, id string) (*domain.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.teams[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTeamRepo) ListByHackathon(_ context.Context, hackathonID string) ([]domain.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Team
	for _, t := range f.teams {
		if t.HackathonID == hackathonID {
			out = append(out, *t)
		}
	}
	sortTeams(out)
	return out, nil
}

func (f *fakeTeamRepo) ListByMentor(_ context.Context, hackathonID, mentorID string) ([]domain.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Team
	for _, t := range f.teams {
		if t.HackathonID == hackathonID && t.MentorID == mentorID {
			out = append(out, *t)
		}
	}
	sortTeams(out)
	return out, nil
}

func sortTeams(teams []domain.Team) {
	sort.Slice(teams, func(i, j int) bool {
		if !teams[i].CreatedAt.Equal(teams[j].CreatedAt) {
			return teams[i].CreatedAt.Before(teams[j].CreatedAt)
		}
		return teams[i].ID < teams[j].ID
	})
}

func (f *fakeTeamRepo) ListMembers(_ context.Context, teamID string) ([]domain.TeamMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.TeamMember(nil), f.members[teamID]...), nil
}

func (f *fakeTeamRepo) CountMembers(_ context.Context, teamID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.members[teamID]), nil
}

func (f *fakeTeamRepo) UpdateStatus(_ context.Context, id string, from, to domain.TeamStatus, reason string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.teams[id]
	if !ok || t.Status != from {
		return false, nil
	}
	t.Status = to
	if reason != "" {
		t.RejectionReason = reason
	}
	return true, nil
}

func (f *fakeTeamRepo) CreateRegistration(_ context.Context, hackathonID, studentID string, regType domain.RegistrationType) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.registrations[hackathonID] == nil {
		f.registrations[hackathonID] = make(map[string]domain.RegistrationType)
	}
	f.registrations[hackathonID][studentID] = regType
	f.regOrder[hackathonID] = append(f.regOrder[hackathonID], studentID)
	return nil
}

func (f *fakeTeamRepo) CountRegistrations(_ context.Context, hackathonID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.registrations[hackathonID]), nil
}

func (f *fakeTeamRepo) HasRegistration(_ context.Context, hackathonID, studentID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.registrations[hackathonID][studentID]
	return ok, nil
}

func (f *fakeTeamRepo) listUnteamedIndividuals(hackathonID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	teamed := make(map[string]bool)
	for teamID, members := range f.members {
		t, ok := f.teams[teamID]
		if !ok || t.HackathonID != hackathonID {
			continue
		}
		for _, m := range members {
			teamed[m.StudentID] = true
		}
	}
	var out []string
	for _, studentID := range f.regOrder[hackathonID] {
		if f.registrations[hackathonID][studentID] == domain.RegistrationTypeIndividual && !teamed[studentID] {
			out = append(out, studentID)
		}
	}
	return out
}

func (f *fakeTeamRepo) FinalizeIndividuals(ctx context.Context, hackathonID string, buildTeams func(studentIDs []string) ([]domain.Team, []domain.TeamMember)) (int, bool, error) {
	won, err := f.hackathons.UpdateStatus(ctx, hackathonID,
		domain.HackathonStatusRegistrationClosed, domain.HackathonStatusTeamsForming)
	if err != nil {
		return 0, false, err
	}
	if !won {
		return 0, false, nil
	}

	if f.failFinalize != nil {
		// an insert failure rolls the status flip back with the batch
		err := f.failFinalize
		f.failFinalize = nil
		_, _ = f.hackathons.UpdateStatus(ctx, hackathonID,
			domain.HackathonStatusTeamsForming, domain.HackathonStatusRegistrationClosed)
		return 0, false, err
	}

	teams, leads := buildTeams(f.listUnteamedIndividuals(hackathonID))

	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range teams {
		cp := teams[i]
		if cp.CreatedAt.IsZero() {
			cp.CreatedAt = time.Now()
		}
		f.teams[cp.ID] = &cp
	}
	for _, lead := range leads {
		f.members[lead.TeamID] = append(f.members[lead.TeamID], lead)
	}
	return len(teams), true, nil
}

func (f *fakeTeamRepo) CreateInvitation(_ context.Context, inv *domain.Invitation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *inv
	f.invitations[inv.ID] = &cp
	return nil
}

func (f *fakeTeamRepo) GetInvitation(_ context.Context, id string) (*domain.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.invitations[id]
	if !ok {
		return nil, nil
	}
	cp := *inv
	return &cp, nil
}

func (f *fakeTeamRepo) ListInvitations(_ context.Context, teamID string) ([]domain.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Invitation
	for _, inv := range f.invitations {
		if inv.TeamID == teamID {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (f *fakeTeamRepo) ResolveInvitation(_ context.Context, id string, to domain.InvitationStatus, member *domain.TeamMember, maxTeamSize int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.invitations[id]
	if !ok || inv.Status != domain.InvitationStatusPending {
		return false, nil
	}
	if member != nil && len(f.members[member.TeamID]) >= maxTeamSize {
		return false, repository.ErrTeamFull
	}
	inv.Status = to
	if member != nil {
		f.members[member.TeamID] = append(f.members[member.TeamID], *member)
	}
	return true, nil
}

func (f *fakeTeamRepo) ExpireInvitation(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if inv, ok := f.invitations[id]; ok && inv.Status == domain.InvitationStatusPending {
		inv.Status = domain.InvitationStatusExpired
	}
	return nil
}

// fakeRoundRepo is an in-memory RoundRepository; it shares the team repo so
// finalization can eliminate teams the way the transactional batch does
type fakeRoundRepo struct {
	mu     sync.Mutex
	rounds map[string]*domain.Round
	teams  *fakeTeamRepo
}

func newFakeRoundRepo(teams *fakeTeamRepo) *fakeRoundRepo {
	return &fakeRoundRepo{rounds: make(map[string]*domain.Round), teams: teams}
}

func (f *fakeRoundRepo) Create(_ context.Context, r *domain.Round) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *r
	f.rounds[r.ID] = &cp
	return nil
}

func (f *fakeRoundRepo) GetByID(_ context.Context, id string) (*domain.Round, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rounds[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRoundRepo) ListByHackathon(_ context.Context, hackathonID string) ([]domain.Round, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Round
	for _, r := range f.rounds {
		if r.HackathonID == hackathonID {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoundNumber < out[j].RoundNumber })
	return out, nil
}

func (f *fakeRoundRepo) MaxRoundNumber(_ context.Context, hackathonID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	max := 0
	for _, r := range f.rounds {
		if r.HackathonID == hackathonID && r.RoundNumber > max {
			max = r.RoundNumber
		}
	}
	return max, nil
}

func (f *fakeRoundRepo) UpdateStatus(_ context.Context, id string, from, to domain.RoundStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rounds[id]
	if !ok || r.Status != from {
		return false, nil
	}
	r.Status = to
	return true, nil
}

func (f *fakeRoundRepo) FinalizeRound(_ context.Context, roundID string, eliminatedTeamIDs []string) (bool, error) {
	f.mu.Lock()
	r, ok := f.rounds[roundID]
	if !ok || r.IsScoringFinalized {
		f.mu.Unlock()
		return false, nil
	}
	r.IsScoringFinalized = true
	r.Status = domain.RoundStatusClosed
	f.mu.Unlock()

	for _, teamID := range eliminatedTeamIDs {
		f.teams.UpdateStatus(context.Background(), teamID, domain.TeamStatusApproved, domain.TeamStatusEliminated, "")
	}
	return true, nil
}

func (f *fakeRoundRepo) JudgingSummaries(_ context.Context, hackathonID string) ([]domain.RoundJudgingSummary, error) {
	rounds, _ := f.ListByHackathon(context.Background(), hackathonID)
	out := make([]domain.RoundJudgingSummary, 0, len(rounds))
	for _, r := range rounds {
		out = append(out, domain.RoundJudgingSummary{
			RoundID:            r.ID,
			RoundNumber:        r.RoundNumber,
			Status:             r.Status,
			IsScoringFinalized: r.IsScoringFinalized,
		})
	}
	return out, nil
}

// fakeMentorRepo is an in-memory MentorRepository sharing the team repo
type fakeMentorRepo struct {
	mu          sync.Mutex
	assignments map[string]*domain.MentorAssignment // hackathonID+":"+mentorID
	teams       *fakeTeamRepo
}

func newFakeMentorRepo(teams *fakeTeamRepo) *fakeMentorRepo {
	return &fakeMentorRepo{
		assignments: make(map[string]*domain.MentorAssignment),
		teams:       teams,
	}
}

func (f *fakeMentorRepo) key(hackathonID, mentorID string) string {
	return hackathonID + ":" + mentorID
}

func (f *fakeMentorRepo) CreateAssignment(_ context.Context, a *domain.MentorAssignment) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := f.key(a.HackathonID, a.MentorID)
	if _, ok := f.assignments[k]; ok {
		return false, nil
	}
	cp := *a
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().Add(time.Duration(len(f.assignments)) * time.Millisecond)
	}
	f.assignments[k] = &cp
	return true, nil
}

func (f *fakeMentorRepo) listSorted(hackathonID string, globalOnly bool) []domain.MentorAssignment {
	var out []domain.MentorAssignment
	for _, a := range f.assignments {
		if a.HackathonID != hackathonID {
			continue
		}
		if globalOnly && a.AssignmentType != domain.AssignmentTypeGlobal {
			continue
		}
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (f *fakeMentorRepo) ListByHackathon(_ context.Context, hackathonID string) ([]domain.MentorAssignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listSorted(hackathonID, false), nil
}

func (f *fakeMentorRepo) ListGlobalMentors(_ context.Context, hackathonID string) ([]domain.MentorAssignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listSorted(hackathonID, true), nil
}

func (f *fakeMentorRepo) GetAssignment(_ context.Context, hackathonID, mentorID string) (*domain.MentorAssignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.assignments[f.key(hackathonID, mentorID)]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (f *fakeMentorRepo) AssignTeamsBatch(_ context.Context, assignments map[string]string) (int, error) {
	f.teams.mu.Lock()
	defer f.teams.mu.Unlock()
	assigned := 0
	for teamID, mentorID := range assignments {
		t, ok := f.teams.teams[teamID]
		if !ok || t.MentorID != "" {
			continue
		}
		t.MentorID = mentorID
		assigned++
	}
	return assigned, nil
}

func (f *fakeMentorRepo) RemoveMentor(_ context.Context, hackathonID, mentorID string, cascade bool) (*domain.MentorRemovalResult, error) {
	f.mu.Lock()
	k := f.key(hackathonID, mentorID)
	if _, ok := f.assignments[k]; !ok {
		f.mu.Unlock()
		return nil, repository.ErrAssignmentNotFound
	}
	f.mu.Unlock()

	f.teams.mu.Lock()
	var linked []string
	for _, t := range f.teams.teams {
		if t.HackathonID == hackathonID && t.MentorID == mentorID {
			linked = append(linked, t.ID)
		}
	}
	if len(linked) > 0 && !cascade {
		f.teams.mu.Unlock()
		return nil, repository.ErrHasActiveAssignments
	}
	for _, id := range linked {
		f.teams.teams[id].MentorID = ""
	}
	f.teams.mu.Unlock()

	f.mu.Lock()
	delete(f.assignments, k)
	f.mu.Unlock()

	sort.Strings(linked)
	return &domain.MentorRemovalResult{MentorID: mentorID, UnassignedTeams: linked}, nil
}

func (f *fakeMentorRepo) ListUnassignedPendingTeams(_ context.Context, hackathonID string) ([]domain.Team, error) {
	f.teams.mu.Lock()
	defer f.teams.mu.Unlock()
	var out []domain.Team
	for _, t := range f.teams.teams {
		if t.HackathonID == hackathonID && t.MentorID == "" && t.Status == domain.TeamStatusPendingApproval {
			out = append(out, *t)
		}
	}
	sortTeams(out)
	return out, nil
}

// fakeSubmissionRepo is an in-memory SubmissionRepository reproducing the
// versioning semantics of the transactional insert
type fakeSubmissionRepo struct {
	mu          sync.Mutex
	submissions []*domain.Submission
}

func newFakeSubmissionRepo() *fakeSubmissionRepo {
	return &fakeSubmissionRepo{}
}

func (f *fakeSubmissionRepo) CreateVersioned(_ context.Context, s *domain.Submission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	max := 0
	for _, existing := range f.submissions {
		if existing.TeamID == s.TeamID && existing.RoundID == s.RoundID {
			if existing.VersionNumber > max {
				max = existing.VersionNumber
			}
			existing.IsFinal = false
		}
	}
	s.VersionNumber = max + 1
	s.IsFinal = true
	s.SubmittedAt = time.Now()
	cp := *s
	f.submissions = append(f.submissions, &cp)
	return nil
}

func (f *fakeSubmissionRepo) GetByID(_ context.Context, id string) (*domain.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.submissions {
		if s.ID == id {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeSubmissionRepo) GetFinal(_ context.Context, teamID, roundID string) (*domain.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.submissions {
		if s.TeamID == teamID && s.RoundID == roundID && s.IsFinal {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeSubmissionRepo) ListByTeamRound(_ context.Context, teamID, roundID string) ([]domain.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Submission
	for _, s := range f.submissions {
		if s.TeamID == teamID && s.RoundID == roundID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VersionNumber > out[j].VersionNumber })
	return out, nil
}

func (f *fakeSubmissionRepo) ListFinalByRound(_ context.Context, roundID string) ([]domain.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Submission
	for _, s := range f.submissions {
		if s.RoundID == roundID && s.IsFinal {
			out = append(out, *s)
		}
	}
	return out, nil
}

// fakeScoreRepo is an in-memory ScoreRepository sharing the submission repo
type fakeScoreRepo struct {
	mu          sync.Mutex
	scores      map[string]*domain.Score // submissionID+":"+judgeID
	submissions *fakeSubmissionRepo
}

func newFakeScoreRepo(submissions *fakeSubmissionRepo) *fakeScoreRepo {
	return &fakeScoreRepo{
		scores:      make(map[string]*domain.Score),
		submissions: submissions,
	}
}

func (f *fakeScoreRepo) Upsert(_ context.Context, s *domain.Score) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *s
	f.scores[s.SubmissionID+":"+s.JudgeID] = &cp
	return nil
}

func (f *fakeScoreRepo) ListBySubmission(_ context.Context, submissionID string) ([]domain.Score, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Score
	for _, s := range f.scores {
		if s.SubmissionID == submissionID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeScoreRepo) ScoresForRound(_ context.Context, roundID string) (map[string][]domain.Score, error) {
	finals, _ := f.submissions.ListFinalByRound(context.Background(), roundID)
	finalIDs := make(map[string]bool, len(finals))
	for _, s := range finals {
		finalIDs[s.ID] = true
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string][]domain.Score)
	for _, s := range f.scores {
		if finalIDs[s.SubmissionID] {
			out[s.SubmissionID] = append(out[s.SubmissionID], *s)
		}
	}
	return out, nil
}

var _ repository.HackathonRepository = (*fakeHackathonRepo)(nil)
var _ repository.RoundRepository = (*fakeRoundRepo)(nil)
var _ repository.TeamRepository = (*fakeTeamRepo)(nil)
var _ repository.MentorRepository = (*fakeMentorRepo)(nil)
var _ repository.SubmissionRepository = (*fakeSubmissionRepo)(nil)
var _ repository.ScoreRepository = (*fakeScoreRepo)(nil)
