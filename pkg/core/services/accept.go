package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/felixbrandt/saalplan/pkg/core/model"
	"github.com/felixbrandt/saalplan/pkg/core/planner"
)

// AcceptStore defines the operations needed to record a room preference
type AcceptStore interface {
	StaffDirectory(ctx context.Context) ([]model.Staff, error)
	SaveStaff(ctx context.Context, staff []model.Staff) error
}

// RecordPreference records that a staff member's assignment to a room was
// accepted, promoting the room in their preference list. This is the one
// explicit mutation of staff records; the planning core itself never does
// this implicitly.
func RecordPreference(
	ctx context.Context,
	store AcceptStore,
	logger *zap.Logger,
	staffID string,
	roomID string,
) error {
	logger.Debug("Recording room preference",
		zap.String("staff_id", staffID),
		zap.String("room_id", roomID))

	staff, err := store.StaffDirectory(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch staff: %w", err)
	}

	found := false
	for i := range staff {
		if staff[i].ID != staffID {
			continue
		}
		staff[i] = planner.RecordRoomPreference(staff[i], roomID)
		found = true
		break
	}
	if !found {
		return fmt.Errorf("staff %s not found", staffID)
	}

	if err := store.SaveStaff(ctx, staff); err != nil {
		return fmt.Errorf("failed to save staff: %w", err)
	}

	logger.Debug("Preference recorded")
	return nil
}
