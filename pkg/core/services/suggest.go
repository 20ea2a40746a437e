package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/felixbrandt/saalplan/internal/config"
	"github.com/felixbrandt/saalplan/pkg/core/model"
	"github.com/felixbrandt/saalplan/pkg/core/planner"
	"github.com/felixbrandt/saalplan/pkg/core/schedule"
)

// SuggestStore defines the snapshot operations needed to advise on an issue
type SuggestStore interface {
	StaffDirectory(ctx context.Context) ([]model.Staff, error)
	RoomDirectory(ctx context.Context) ([]model.Room, error)
	RosterFor(ctx context.Context, date string) (map[string]model.RosterEntry, error)
	ActivePairings(ctx context.Context) ([]model.Pairing, error)
	AssignmentsFor(ctx context.Context, date string) ([]model.Assignment, error)
}

// SuggestResult pairs the issue being resolved with its ranked candidates
type SuggestResult struct {
	Issue      model.Issue
	Candidates []model.RankedCandidate
}

// SuggestForIssue re-validates the stored assignment set for a date, picks
// the issue at the given index, and runs the resolution advisor on it.
// Applying a chosen candidate stays with the caller, followed by another
// validation pass.
func SuggestForIssue(
	ctx context.Context,
	store SuggestStore,
	cfg *config.Config,
	logger *zap.Logger,
	dateStr string,
	issueIndex int,
) (*SuggestResult, error) {
	logger.Debug("Starting suggestForIssue",
		zap.String("date", dateStr),
		zap.Int("issue_index", issueIndex))

	date, err := schedule.ParseDate(dateStr)
	if err != nil {
		return nil, err
	}

	staff, err := store.StaffDirectory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch staff: %w", err)
	}

	rooms, err := store.RoomDirectory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rooms: %w", err)
	}
	rooms = applyRoomOverrides(rooms, cfg.OverridesFor(date))

	assignments, err := store.AssignmentsFor(ctx, dateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assignments: %w", err)
	}

	pairings, err := store.ActivePairings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pairings: %w", err)
	}

	roster, err := store.RosterFor(ctx, dateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch roster: %w", err)
	}
	staff = applyRoster(staff, roster)

	plannerCfg := cfg.PlannerConfig()

	issues := planner.Validate(rooms, assignments, staff, plannerCfg)
	if issueIndex < 0 || issueIndex >= len(issues) {
		return nil, fmt.Errorf("issue index %d out of range (found %d issues)", issueIndex, len(issues))
	}
	issue := issues[issueIndex]

	var room *model.Room
	for i := range rooms {
		if rooms[i].ID == issue.RoomID {
			room = &rooms[i]
			break
		}
	}
	if room == nil {
		return nil, fmt.Errorf("room %s referenced by issue not found", issue.RoomID)
	}

	candidates := planner.SuggestReplacements(issue, *room, staff, assignments, date, plannerCfg, pairings)
	logger.Debug("Advisor finished", zap.Int("candidates", len(candidates)))

	return &SuggestResult{
		Issue:      issue,
		Candidates: candidates,
	}, nil
}
