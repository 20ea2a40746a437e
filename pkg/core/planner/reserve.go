package planner

import (
	"time"

	"github.com/felixbrandt/saalplan/pkg/core/model"
	"github.com/felixbrandt/saalplan/pkg/core/schedule"
)

// ReserveLeads runs the lead reservation pre-pass: every lead-capable,
// non-management, currently available staff member with at least one
// lead-eligible department is earmarked for the busiest room whose dominant
// department is in their lead set. This prevents a high-volume room from
// incidentally absorbing a lead who is needed elsewhere just because rooms
// are processed in volume order.
//
// Each staff member reserves at most one room; each room receives at most
// one reservation. Returns a map of staff ID to reserved room ID.
func ReserveLeads(rooms []model.Room, staff []model.Staff, date time.Time, cfg *Config) map[string]string {
	reservations := make(map[string]string)
	reservedRooms := make(map[string]bool)

	for i := range staff {
		candidate := &staff[i]

		if !candidate.LeadCapable || candidate.ManagementOnly {
			continue
		}
		if len(candidate.LeadDepartments) == 0 {
			continue
		}
		if !schedule.IsAvailableForAutoAssignment(candidate, date) {
			continue
		}

		best := bestRoomForLead(rooms, candidate, reservedRooms)
		if best == "" {
			continue
		}

		reservations[candidate.ID] = best
		reservedRooms[best] = true
	}

	return reservations
}

// bestRoomForLead picks the busiest unreserved room whose dominant
// department is lead-eligible for the candidate. Rooms with equal operation
// counts are tie-broken by the dominant department's position in the
// candidate's lead department list.
func bestRoomForLead(rooms []model.Room, candidate *model.Staff, reservedRooms map[string]bool) string {
	bestID := ""
	bestOps := -1
	bestDeptRank := len(candidate.LeadDepartments)

	for i := range rooms {
		room := &rooms[i]

		// Rooms that will not be planned cannot hold a reservation
		if len(room.Operations) == 0 && !room.Priority {
			continue
		}
		if reservedRooms[room.ID] {
			continue
		}

		deptRank := leadDeptRank(candidate, DominantDepartment(room))
		if deptRank < 0 {
			continue
		}

		ops := len(room.Operations)
		if ops > bestOps || (ops == bestOps && deptRank < bestDeptRank) {
			bestID = room.ID
			bestOps = ops
			bestDeptRank = deptRank
		}
	}

	return bestID
}

// leadDeptRank returns the position of the department in the candidate's
// lead department list, or -1 if not lead-eligible for it.
func leadDeptRank(candidate *model.Staff, dept string) int {
	for i, leadDept := range candidate.LeadDepartments {
		if leadDept == dept {
			return i
		}
	}
	return -1
}
