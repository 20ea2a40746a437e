package planner

import "github.com/felixbrandt/saalplan/pkg/core/model"

// maxPreferredRooms caps the learned preference list.
const maxPreferredRooms = 3

// RecordRoomPreference returns a copy of the staff record with the given
// room promoted to the front of the preferred-room list, capped at three
// entries. This is the explicit learning step a caller invokes after an
// assignment is accepted; the scorer and constructor never trigger it
// implicitly.
func RecordRoomPreference(staff model.Staff, roomID string) model.Staff {
	updated := staff

	preferred := make([]string, 0, maxPreferredRooms)
	preferred = append(preferred, roomID)
	for _, existing := range staff.PreferredRooms {
		if existing == roomID {
			continue
		}
		if len(preferred) == maxPreferredRooms {
			break
		}
		preferred = append(preferred, existing)
	}

	updated.PreferredRooms = preferred
	return updated
}
