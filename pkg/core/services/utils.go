package services

import (
	"github.com/felixbrandt/saalplan/internal/config"
	"github.com/felixbrandt/saalplan/pkg/core/model"
)

// applyRoster resolves each staff member's shift code and custom time window
// for the planning date from the roster. Staff without a roster entry keep
// the standard day shift. The input slice is not mutated.
func applyRoster(staff []model.Staff, roster map[string]model.RosterEntry) []model.Staff {
	resolved := make([]model.Staff, len(staff))
	copy(resolved, staff)

	for i := range resolved {
		entry, ok := roster[resolved[i].ID]
		if !ok {
			continue
		}
		if entry.ShiftCode != "" {
			resolved[i].ShiftCode = entry.ShiftCode
		}
		resolved[i].CustomStart = entry.CustomStart
		resolved[i].CustomEnd = entry.CustomEnd
	}

	return resolved
}

// applyRecovery marks staff who worked a recovery-requiring shift yesterday
// as on their rest day, unless today's roster already sets an explicit shift
// code for them.
func applyRecovery(staff []model.Staff, todayRoster map[string]model.RosterEntry, recoveringIDs []string) []model.Staff {
	recovering := make(map[string]bool, len(recoveringIDs))
	for _, id := range recoveringIDs {
		recovering[id] = true
	}

	resolved := make([]model.Staff, len(staff))
	copy(resolved, staff)

	for i := range resolved {
		if !recovering[resolved[i].ID] {
			continue
		}
		if entry, ok := todayRoster[resolved[i].ID]; ok && entry.ShiftCode != "" {
			continue
		}
		resolved[i].ShiftCode = model.ShiftCodeRecovery
	}

	return resolved
}

// applyRoomOverrides applies the matched recurring overrides to the room
// snapshot. Closed rooms are removed entirely.
func applyRoomOverrides(rooms []model.Room, overrides []config.RoomOverride) []model.Room {
	if len(overrides) == 0 {
		return rooms
	}

	overridesByRoom := make(map[string][]config.RoomOverride)
	for _, override := range overrides {
		overridesByRoom[override.RoomID] = append(overridesByRoom[override.RoomID], override)
	}

	adjusted := make([]model.Room, 0, len(rooms))
	for _, room := range rooms {
		closed := false
		for _, override := range overridesByRoom[room.ID] {
			if override.Closed {
				closed = true
				break
			}
			if override.Priority != nil {
				room.Priority = *override.Priority
			}
			if override.RequiredStaff != nil {
				room.RequiredStaff = *override.RequiredStaff
			}
		}
		if closed {
			continue
		}
		adjusted = append(adjusted, room)
	}

	return adjusted
}
