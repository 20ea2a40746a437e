package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/felixbrandt/saalplan/internal/config"
	"github.com/felixbrandt/saalplan/pkg/core/schedule"
)

// PlanWeek plans all 7 days of the week containing the given date, starting
// Monday. Days are independent planning runs and execute concurrently; the
// store serializes its own persistence. Results are returned in weekday
// order.
func PlanWeek(
	ctx context.Context,
	store PlanDayStore,
	cfg *config.Config,
	logger *zap.Logger,
	dateStr string,
	opts PlanDayOptions,
) ([]*PlanDayResult, error) {
	date, err := schedule.ParseDate(dateStr)
	if err != nil {
		return nil, err
	}

	weekDates := schedule.WeekDates(date)
	results := make([]*PlanDayResult, len(weekDates))

	group, groupCtx := errgroup.WithContext(ctx)

	for i, day := range weekDates {
		i, day := i, day
		group.Go(func() error {
			result, err := PlanDay(groupCtx, store, cfg, logger, schedule.FormatDate(day), opts)
			if err != nil {
				return fmt.Errorf("failed to plan %s: %w", schedule.FormatDate(day), err)
			}
			results[i] = result
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
