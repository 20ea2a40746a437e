// Package planner implements the core OR staffing engine: qualification and
// scoring, lead reservation, the greedy assignment constructor, a secondary
// optimizer, the validation engine, and the resolution advisor.
package planner

import (
	"sort"
	"time"

	"github.com/felixbrandt/saalplan/pkg/core/model"
	"github.com/felixbrandt/saalplan/pkg/core/schedule"
)

// PlanResult is the output of one greedy construction run.
type PlanResult struct {
	// Assignments contains one entry per room that received at least one
	// staff member. Index 0 of each team is the lead.
	Assignments []model.Assignment

	// Alerts are soft, non-fatal notices accumulated during the run.
	Alerts []string
}

// BuildAssignments constructs the initial room-by-room, slot-by-slot
// assignment for a date using lead pre-reservation, scoring, and forced
// pairing overrides.
//
// Construction never fails: an unfillable room simply yields an understaffed
// or empty team, surfaced later by the validation engine.
func BuildAssignments(
	rooms []model.Room,
	staff []model.Staff,
	date time.Time,
	cfg *Config,
	pairings []model.Pairing,
) *PlanResult {
	result := &PlanResult{
		Assignments: []model.Assignment{},
		Alerts:      []string{},
	}

	// Step 1: Lead reservation pre-pass
	reservations := ReserveLeads(rooms, staff, date, cfg)

	// Step 2: Room ordering - priority rooms first, then descending
	// operation count. Stable so equally busy rooms keep input order.
	ordered := orderRooms(rooms)

	// Staff assigned anywhere this run are removed from all later pools
	assigned := make(map[string]bool)

	// Step 3: Per-room slot fill loop
	for i := range ordered {
		room := &ordered[i]

		// Rooms with no operations and no priority tag get no team
		if len(room.Operations) == 0 && !room.Priority {
			continue
		}

		team := fillRoom(room, staff, date, cfg, pairings, assigned, reservations)
		if len(team) == 0 {
			continue
		}

		teamIDs := make([]string, len(team))
		for j := range team {
			teamIDs[j] = team[j].ID
		}
		result.Assignments = append(result.Assignments, model.Assignment{
			RoomID:   room.ID,
			StaffIDs: teamIDs,
		})
	}

	return result
}

// fillRoom fills one room slot by slot and marks selected staff as globally
// assigned. Returns the team in slot order; it may be shorter than the
// required count, or empty, when candidates run out.
func fillRoom(
	room *model.Room,
	staff []model.Staff,
	date time.Time,
	cfg *Config,
	pairings []model.Pairing,
	assigned map[string]bool,
	reservations map[string]string,
) []model.Staff {
	dominantDept := DominantDepartment(room)
	required := room.RequiredStaffCount()
	team := make([]model.Staff, 0, required)

	for slot := 0; slot < required; slot++ {
		pool := candidatePool(room, staff, date, cfg, assigned, reservations)

		// Pairing override: a partner of a current team member beats any
		// higher-scored alternative.
		selected, found := pairedCandidate(team, pool, pairings)
		if !found {
			selected, found = topScored(pool, room, slot, dominantDept, team, cfg, pairings)
		}
		if !found {
			// No candidate left - accept the partial team as-is
			break
		}

		assigned[selected.ID] = true
		team = append(team, selected)
	}

	return team
}

// candidatePool builds the filtered candidate list for one slot: staff that
// are unassigned, not excluded by keyword, not management-only, available
// for automatic assignment, on an assignable shift, not short-shifted,
// passing linked availability, qualified for the room, and not reserved for
// a different room. Input order is preserved.
func candidatePool(
	room *model.Room,
	staff []model.Staff,
	date time.Time,
	cfg *Config,
	assigned map[string]bool,
	reservations map[string]string,
) []model.Staff {
	pool := make([]model.Staff, 0, len(staff))

	for i := range staff {
		candidate := &staff[i]

		if assigned[candidate.ID] {
			continue
		}
		if candidate.ManagementOnly {
			continue
		}
		if !schedule.IsAvailableForAutoAssignment(candidate, date) {
			continue
		}
		if !cfg.IsAssignableShift(candidate.ShiftCode) {
			continue
		}
		if schedule.HasShortCustomShift(candidate) {
			continue
		}
		if !schedule.ResolveLinkedAvailability(candidate, staff, date) {
			continue
		}
		if !IsQualified(candidate, room, cfg) {
			continue
		}
		if reservedRoom, ok := reservations[candidate.ID]; ok && reservedRoom != room.ID {
			continue
		}

		pool = append(pool, *candidate)
	}

	return pool
}

// pairedCandidate looks for an unassigned pool member linked by an active
// pairing to someone already on the team. The first match in team order
// wins; this short-circuits scoring entirely.
func pairedCandidate(team []model.Staff, pool []model.Staff, pairings []model.Pairing) (model.Staff, bool) {
	if len(team) == 0 {
		return model.Staff{}, false
	}

	for i := range team {
		for j := range pairings {
			pairing := &pairings[j]
			if !pairing.Active {
				continue
			}
			partnerID := pairing.PartnerOf(team[i].ID)
			if partnerID == "" {
				continue
			}
			for k := range pool {
				if pool[k].ID == partnerID {
					return pool[k], true
				}
			}
		}
	}

	return model.Staff{}, false
}

// topScored sorts the pool by score descending and returns the best entry.
// The sort is stable, so equal scores keep input order (first-seen wins).
func topScored(
	pool []model.Staff,
	room *model.Room,
	slot int,
	dominantDept string,
	team []model.Staff,
	cfg *Config,
	pairings []model.Pairing,
) (model.Staff, bool) {
	if len(pool) == 0 {
		return model.Staff{}, false
	}

	scores := make([]float64, len(pool))
	for i := range pool {
		scores[i] = Score(&pool[i], room, slot, dominantDept, team, cfg.Weights, pairings, cfg)
	}

	indices := make([]int, len(pool))
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(a, b int) bool {
		return scores[indices[a]] > scores[indices[b]]
	})

	return pool[indices[0]], true
}

// orderRooms returns a copy of the room list with priority rooms first and
// the rest ordered by descending operation count.
func orderRooms(rooms []model.Room) []model.Room {
	ordered := make([]model.Room, len(rooms))
	copy(ordered, rooms)

	sort.SliceStable(ordered, func(a, b int) bool {
		if ordered[a].Priority != ordered[b].Priority {
			return ordered[a].Priority
		}
		return len(ordered[a].Operations) > len(ordered[b].Operations)
	})

	return ordered
}
