package planner

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/felixbrandt/saalplan/pkg/core/model"
	"github.com/felixbrandt/saalplan/pkg/core/schedule"
)

// maxSuggestions caps the advisor's ranked candidate list.
const maxSuggestions = 3

// SuggestReplacements produces a ranked list of replacement candidates for
// one validation issue, each annotated with human-readable justifications.
// The advisor is side-effect-free: applying a chosen candidate is the
// caller's job, followed by re-validation.
//
// Target slot: 0 if the team is empty, 1 for understaffing, otherwise the
// index of the conflicting member named by the issue. Candidates are
// filtered identically to the constructor's per-slot filter and scored with
// the same function, seeded with the current team minus the problematic
// member.
func SuggestReplacements(
	issue model.Issue,
	room model.Room,
	staff []model.Staff,
	assignments []model.Assignment,
	date time.Time,
	cfg *Config,
	pairings []model.Pairing,
) []model.RankedCandidate {
	var teamIDs []string
	for i := range assignments {
		if assignments[i].RoomID == room.ID {
			teamIDs = assignments[i].StaffIDs
			break
		}
	}

	slot, replacedID := targetSlot(issue, teamIDs)

	staffByID := make(map[string]*model.Staff, len(staff))
	for i := range staff {
		staffByID[staff[i].ID] = &staff[i]
	}

	// Seed team: the current team minus the member being replaced
	team := make([]model.Staff, 0, len(teamIDs))
	for _, id := range teamIDs {
		if id == replacedID {
			continue
		}
		if member, ok := staffByID[id]; ok {
			team = append(team, *member)
		}
	}

	// Every staff ID anywhere in the current set is off-limits
	assigned := make(map[string]bool)
	for i := range assignments {
		for _, id := range assignments[i].StaffIDs {
			assigned[id] = true
		}
	}
	delete(assigned, replacedID)

	pool := candidatePool(&room, staff, date, cfg, assigned, nil)
	pool = withoutStaff(pool, replacedID)

	managementFallback := false
	if len(pool) == 0 {
		// Nobody regular is left; offer management staff as a last resort
		pool = managementPool(&room, staff, date, cfg, assigned)
		managementFallback = true
	}

	dominantDept := DominantDepartment(&room)

	candidates := make([]model.RankedCandidate, 0, len(pool))
	for i := range pool {
		candidate := pool[i]
		score := Score(&candidate, &room, slot, dominantDept, team, cfg.Weights, pairings, cfg)
		candidates = append(candidates, model.RankedCandidate{
			Staff:   candidate,
			Score:   score,
			Reasons: candidateReasons(&candidate, &room, slot, dominantDept, team, pairings, managementFallback),
		})
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].Score > candidates[b].Score
	})

	if len(candidates) > maxSuggestions {
		candidates = candidates[:maxSuggestions]
	}
	return candidates
}

// targetSlot determines which slot the advisor should fill and, when the
// issue names a conflicting member, which member is being replaced.
func targetSlot(issue model.Issue, teamIDs []string) (int, string) {
	if len(teamIDs) == 0 {
		return 0, ""
	}

	if issue.Category == model.IssueUnderstaffing {
		return 1, ""
	}

	if issue.StaffID != "" {
		for i, id := range teamIDs {
			if id == issue.StaffID {
				return i, id
			}
		}
	}

	return 0, teamIDs[0]
}

// candidateReasons builds the human-readable justifications shown next to a
// ranked candidate.
func candidateReasons(
	candidate *model.Staff,
	room *model.Room,
	slot int,
	dominantDept string,
	team []model.Staff,
	pairings []model.Pairing,
	managementFallback bool,
) []string {
	var reasons []string

	if skill := candidate.SkillIn(dominantDept); skill >= model.SkillJunior {
		reasons = append(reasons, fmt.Sprintf("%s in %s", titleCase(skill.String()), dominantDept))
	}

	if slot == 0 && isLeadEligible(candidate, dominantDept) {
		reasons = append(reasons, "Lead-qualified")
	}

	for _, roomID := range candidate.PreferredRooms {
		if roomID == room.ID {
			reasons = append(reasons, "Preferred room")
			break
		}
	}

	if pairedWithTeam(candidate.ID, team, pairings) {
		reasons = append(reasons, "Paired with a team member")
	}

	if managementFallback {
		reasons = append(reasons, "Management override")
	}

	return reasons
}

// managementPool is the advisor's last-resort pool: management-only staff
// that would otherwise pass the constructor filter.
func managementPool(
	room *model.Room,
	staff []model.Staff,
	date time.Time,
	cfg *Config,
	assigned map[string]bool,
) []model.Staff {
	pool := make([]model.Staff, 0)

	for i := range staff {
		candidate := &staff[i]

		if !candidate.ManagementOnly {
			continue
		}
		if assigned[candidate.ID] {
			continue
		}
		if !schedule.IsAvailableForAutoAssignment(candidate, date) {
			continue
		}
		if !IsQualified(candidate, room, cfg) {
			continue
		}

		pool = append(pool, *candidate)
	}

	return pool
}

func withoutStaff(pool []model.Staff, staffID string) []model.Staff {
	if staffID == "" {
		return pool
	}
	kept := pool[:0]
	for i := range pool {
		if pool[i].ID != staffID {
			kept = append(kept, pool[i])
		}
	}
	return kept
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
