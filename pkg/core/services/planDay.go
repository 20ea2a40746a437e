package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/felixbrandt/saalplan/internal/config"
	"github.com/felixbrandt/saalplan/pkg/core/model"
	"github.com/felixbrandt/saalplan/pkg/core/planner"
	"github.com/felixbrandt/saalplan/pkg/core/schedule"
)

// DefaultOptimizerTimeout bounds how long PlanDay waits for the secondary
// optimizer before falling back to the greedy result.
const DefaultOptimizerTimeout = 5 * time.Second

// PlanDayStore defines the snapshot operations needed for planning a day
type PlanDayStore interface {
	StaffDirectory(ctx context.Context) ([]model.Staff, error)
	RoomDirectory(ctx context.Context) ([]model.Room, error)
	RosterFor(ctx context.Context, date string) (map[string]model.RosterEntry, error)
	ActivePairings(ctx context.Context) ([]model.Pairing, error)
	SaveAssignments(ctx context.Context, date string, assignments []model.Assignment) error
}

// PlanDayOptions control a planning run
type PlanDayOptions struct {
	// DryRun skips persisting the assignment set
	DryRun bool

	// SkipOptimizer keeps the greedy result without the refinement pass
	SkipOptimizer bool

	// OptimizerTimeout overrides DefaultOptimizerTimeout when positive
	OptimizerTimeout time.Duration
}

// PlanDayResult contains the planning results for one date
type PlanDayResult struct {
	RunID       string
	Date        string
	Assignments []model.Assignment
	Issues      []model.Issue
	Alerts      []string
}

// PlanDay runs a full planning cycle for one date: load snapshots, resolve
// roster state and recovery, apply room overrides, build the greedy
// assignment, refine it with the offloaded optimizer (falling back on any
// failure), validate, and persist unless dry-run.
func PlanDay(
	ctx context.Context,
	store PlanDayStore,
	cfg *config.Config,
	logger *zap.Logger,
	dateStr string,
	opts PlanDayOptions,
) (*PlanDayResult, error) {
	runID := uuid.NewString()
	logger = logger.With(zap.String("run_id", runID), zap.String("date", dateStr))
	logger.Debug("Starting planDay", zap.Bool("dry_run", opts.DryRun))

	date, err := schedule.ParseDate(dateStr)
	if err != nil {
		return nil, err
	}

	// Step 1: Load snapshots
	logger.Debug("Fetching staff directory")
	staff, err := store.StaffDirectory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch staff: %w", err)
	}
	logger.Debug("Found staff", zap.Int("count", len(staff)))

	logger.Debug("Fetching room directory")
	rooms, err := store.RoomDirectory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rooms: %w", err)
	}
	logger.Debug("Found rooms", zap.Int("count", len(rooms)))

	logger.Debug("Fetching pairings")
	pairings, err := store.ActivePairings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pairings: %w", err)
	}
	logger.Debug("Found active pairings", zap.Int("count", len(pairings)))

	// Step 2: Resolve per-date roster state onto the staff snapshot
	roster, err := store.RosterFor(ctx, dateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch roster: %w", err)
	}
	staff = applyRoster(staff, roster)

	// Step 3: Recovery from the previous day's shift codes
	prevDate := schedule.FormatDate(date.AddDate(0, 0, -1))
	prevRoster, err := store.RosterFor(ctx, prevDate)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch previous day roster: %w", err)
	}
	recovering := planner.RecoveringStaffIDs(prevRoster, cfg.Shifts)
	staff = applyRecovery(staff, roster, recovering)
	logger.Debug("Applied recovery", zap.Int("recovering", len(recovering)))

	// Step 4: Room overrides whose recurrence matches the date
	rooms = applyRoomOverrides(rooms, cfg.OverridesFor(date))

	plannerCfg := cfg.PlannerConfig()

	// Step 5: Greedy construction
	logger.Debug("Building greedy assignment")
	greedy := planner.BuildAssignments(rooms, staff, date, plannerCfg, pairings)
	logger.Debug("Greedy assignment built", zap.Int("rooms_staffed", len(greedy.Assignments)))

	result := &PlanDayResult{
		RunID:       runID,
		Date:        dateStr,
		Assignments: greedy.Assignments,
		Alerts:      greedy.Alerts,
	}

	// Step 6: Secondary optimizer, offloaded and awaited with a timeout.
	// Any failure is soft: the greedy result stands.
	if !opts.SkipOptimizer {
		result.Assignments, result.Alerts = refineWithOptimizer(
			ctx, logger, result.Assignments, result.Alerts,
			rooms, staff, date, plannerCfg, pairings, opts.OptimizerTimeout,
		)
	}

	// Step 7: Validate the final set
	result.Issues = planner.Validate(rooms, result.Assignments, staff, plannerCfg)
	logger.Debug("Validation complete", zap.Int("issues", len(result.Issues)))

	// Step 8: Persist
	if !opts.DryRun {
		if err := store.SaveAssignments(ctx, dateStr, result.Assignments); err != nil {
			return nil, fmt.Errorf("failed to save assignments: %w", err)
		}
		logger.Debug("Assignments saved")
	}

	return result, nil
}

// refineWithOptimizer offloads the refinement pass and waits for its
// one-shot response. On timeout, cancellation, or optimizer error the
// greedy baseline is returned with a soft alert appended.
func refineWithOptimizer(
	ctx context.Context,
	logger *zap.Logger,
	assignments []model.Assignment,
	alerts []string,
	rooms []model.Room,
	staff []model.Staff,
	date time.Time,
	plannerCfg *planner.Config,
	pairings []model.Pairing,
	timeout time.Duration,
) ([]model.Assignment, []string) {
	if timeout <= 0 {
		timeout = DefaultOptimizerTimeout
	}

	snapshot := planner.Snapshot{
		Assignments: assignments,
		Rooms:       rooms,
		Staff:       staff,
		Pool:        optimizerPool(staff, date, plannerCfg),
		Date:        date,
		Config:      plannerCfg,
		Pairings:    pairings,
	}

	logger.Debug("Offloading optimizer", zap.Duration("timeout", timeout))
	resultCh := planner.OptimizeAsync(snapshot)

	select {
	case res := <-resultCh:
		if res.Err != nil {
			logger.Warn("Optimizer failed, keeping greedy result", zap.Error(res.Err))
			return assignments, append(alerts, fmt.Sprintf("optimizer unavailable, using greedy result: %v", res.Err))
		}
		logger.Debug("Optimizer result accepted", zap.Int("alerts", len(res.Alerts)))
		return res.Assignments, append(alerts, res.Alerts...)

	case <-time.After(timeout):
		logger.Warn("Optimizer timed out, keeping greedy result")
		return assignments, append(alerts, "optimizer timed out, using greedy result")

	case <-ctx.Done():
		logger.Warn("Planning context cancelled while awaiting optimizer")
		return assignments, append(alerts, "optimizer cancelled, using greedy result")
	}
}

// optimizerPool builds the unrestricted candidate pool for the optimizer:
// staff generally available for the date, minus exclusions.
func optimizerPool(staff []model.Staff, date time.Time, plannerCfg *planner.Config) []model.Staff {
	pool := make([]model.Staff, 0, len(staff))
	for i := range staff {
		candidate := &staff[i]
		if candidate.ManagementOnly {
			continue
		}
		if planner.MatchesExclusionKeyword(candidate, plannerCfg) {
			continue
		}
		if !schedule.IsAvailableForAutoAssignment(candidate, date) {
			continue
		}
		pool = append(pool, *candidate)
	}
	return pool
}
