package planner

import (
	"fmt"
	"time"

	"github.com/felixbrandt/saalplan/pkg/core/model"
	"github.com/felixbrandt/saalplan/pkg/core/schedule"
)

// Snapshot is the full immutable input handed to the optimizer. It carries
// everything the refinement needs; the optimizer never writes back into the
// constructor's working set and returns a complete replacement result.
type Snapshot struct {
	Assignments []model.Assignment
	Rooms       []model.Room
	Staff       []model.Staff
	// Pool is the unrestricted candidate pool: staff generally available
	// for the date, minus exclusions. The optimizer has global visibility
	// over it and may reassign across rooms.
	Pool     []model.Staff
	Date     time.Time
	Config   *Config
	Pairings []model.Pairing
}

// OptimizeResult is the optimizer's one-shot response.
type OptimizeResult struct {
	Assignments []model.Assignment
	Alerts      []string
	Err         error
}

// OptimizeAsync runs the refinement as an independent task and returns a
// one-shot result channel. The caller suspends only at the receive and can
// fall back to the unrefined greedy result if the task fails for any reason.
func OptimizeAsync(snap Snapshot) <-chan OptimizeResult {
	resultCh := make(chan OptimizeResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				resultCh <- OptimizeResult{Err: fmt.Errorf("optimizer panicked: %v", r)}
			}
		}()
		resultCh <- Optimize(snap)
	}()

	return resultCh
}

// Optimize refines a greedy assignment set with global visibility over the
// candidate pool, using the same scoring and qualification rules as the
// constructor. The contract: the output is always qualification-safe, even
// when it cannot improve on the greedy baseline.
func Optimize(snap Snapshot) OptimizeResult {
	result := OptimizeResult{Alerts: []string{}}

	roomsByID := make(map[string]*model.Room, len(snap.Rooms))
	for i := range snap.Rooms {
		roomsByID[snap.Rooms[i].ID] = &snap.Rooms[i]
	}

	// Copy the baseline so the caller's snapshot stays untouched
	refined := make([]model.Assignment, len(snap.Assignments))
	for i, assignment := range snap.Assignments {
		ids := make([]string, len(assignment.StaffIDs))
		copy(ids, assignment.StaffIDs)
		refined[i] = model.Assignment{RoomID: assignment.RoomID, StaffIDs: ids}
	}

	// Resolve staff records from the full directory so baseline members
	// outside the pool can still be scored against.
	staffByID := make(map[string]*model.Staff, len(snap.Staff))
	for i := range snap.Staff {
		staffByID[snap.Staff[i].ID] = &snap.Staff[i]
	}
	for i := range snap.Pool {
		staffByID[snap.Pool[i].ID] = &snap.Pool[i]
	}

	assigned := make(map[string]bool)
	for _, assignment := range refined {
		for _, id := range assignment.StaffIDs {
			assigned[id] = true
		}
	}

	// Improvement sweep: per slot, replace the occupant with the best
	// unassigned pool candidate if that strictly improves the slot score.
	// Released occupants return to the pool for later slots.
	for i := range refined {
		room, ok := roomsByID[refined[i].RoomID]
		if !ok {
			continue
		}
		dominantDept := DominantDepartment(room)

		for slot := 0; slot < len(refined[i].StaffIDs); slot++ {
			occupantID := refined[i].StaffIDs[slot]
			occupant := staffByID[occupantID]

			team := teamWithout(refined[i].StaffIDs, slot, staffByID)

			currentScore := -1.0
			if occupant != nil && IsQualified(occupant, room, snap.Config) {
				currentScore = Score(occupant, room, slot, dominantDept, team, snap.Config.Weights, snap.Pairings, snap.Config)
			}

			best, bestScore := bestUnassigned(snap, room, slot, dominantDept, team, assigned)
			if best == nil || bestScore <= currentScore {
				continue
			}

			refined[i].StaffIDs[slot] = best.ID
			assigned[best.ID] = true
			delete(assigned, occupantID)
		}

		// Gap fill: slots the greedy pass left open may be fillable now
		// that the whole pool is visible.
		for len(refined[i].StaffIDs) < room.RequiredStaffCount() {
			team := teamMembers(refined[i].StaffIDs, staffByID)
			slot := len(refined[i].StaffIDs)

			best, _ := bestUnassigned(snap, room, slot, dominantDept, team, assigned)
			if best == nil {
				break
			}
			refined[i].StaffIDs = append(refined[i].StaffIDs, best.ID)
			assigned[best.ID] = true
		}
	}

	// Qualification safety net: drop anyone the sweep could not verify
	for i := range refined {
		room, ok := roomsByID[refined[i].RoomID]
		if !ok {
			continue
		}
		kept := refined[i].StaffIDs[:0]
		for _, id := range refined[i].StaffIDs {
			member := staffByID[id]
			if member == nil || !IsQualified(member, room, snap.Config) {
				result.Alerts = append(result.Alerts,
					fmt.Sprintf("optimizer dropped unqualified staff %s from room %s", id, refined[i].RoomID))
				continue
			}
			kept = append(kept, id)
		}
		refined[i].StaffIDs = kept
	}

	result.Assignments = refined
	return result
}

// bestUnassigned finds the highest-scoring unassigned pool candidate that
// passes the constructor's per-slot filter for the room. Ties keep pool
// order.
func bestUnassigned(
	snap Snapshot,
	room *model.Room,
	slot int,
	dominantDept string,
	team []model.Staff,
	assigned map[string]bool,
) (*model.Staff, float64) {
	var best *model.Staff
	bestScore := 0.0

	for i := range snap.Pool {
		candidate := &snap.Pool[i]

		if assigned[candidate.ID] {
			continue
		}
		if candidate.ManagementOnly {
			continue
		}
		if !schedule.IsAvailableForAutoAssignment(candidate, snap.Date) {
			continue
		}
		if !snap.Config.IsAssignableShift(candidate.ShiftCode) {
			continue
		}
		if schedule.HasShortCustomShift(candidate) {
			continue
		}
		if !schedule.ResolveLinkedAvailability(candidate, snap.Staff, snap.Date) {
			continue
		}
		if !IsQualified(candidate, room, snap.Config) {
			continue
		}

		score := Score(candidate, room, slot, dominantDept, team, snap.Config.Weights, snap.Pairings, snap.Config)
		if best == nil || score > bestScore {
			best = candidate
			bestScore = score
		}
	}

	return best, bestScore
}

// teamWithout resolves a team's staff records, excluding the given slot.
func teamWithout(ids []string, excludeSlot int, staffByID map[string]*model.Staff) []model.Staff {
	team := make([]model.Staff, 0, len(ids))
	for i, id := range ids {
		if i == excludeSlot {
			continue
		}
		if member, ok := staffByID[id]; ok {
			team = append(team, *member)
		}
	}
	return team
}

// teamMembers resolves a team's staff records.
func teamMembers(ids []string, staffByID map[string]*model.Staff) []model.Staff {
	team := make([]model.Staff, 0, len(ids))
	for _, id := range ids {
		if member, ok := staffByID[id]; ok {
			team = append(team, *member)
		}
	}
	return team
}
