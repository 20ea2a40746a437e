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

// ValidateDayStore defines the snapshot operations needed to validate a
// stored assignment set
type ValidateDayStore interface {
	StaffDirectory(ctx context.Context) ([]model.Staff, error)
	RoomDirectory(ctx context.Context) ([]model.Room, error)
	AssignmentsFor(ctx context.Context, date string) ([]model.Assignment, error)
}

// ValidateDayResult contains the validation findings for one date
type ValidateDayResult struct {
	Date        string
	Assignments []model.Assignment
	Issues      []model.Issue
}

// ValidateDay re-validates the stored assignment set for a date. Validation
// holds no state, so this can run after any mutation of the stored set.
func ValidateDay(
	ctx context.Context,
	store ValidateDayStore,
	cfg *config.Config,
	logger *zap.Logger,
	dateStr string,
) (*ValidateDayResult, error) {
	logger.Debug("Starting validateDay", zap.String("date", dateStr))

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
	logger.Debug("Loaded assignment set", zap.Int("rooms", len(assignments)))

	issues := planner.Validate(rooms, assignments, staff, cfg.PlannerConfig())
	logger.Debug("Validation complete", zap.Int("issues", len(issues)))

	return &ValidateDayResult{
		Date:        dateStr,
		Assignments: assignments,
		Issues:      issues,
	}, nil
}
