package planner

import (
	"github.com/felixbrandt/saalplan/pkg/core/model"
)

// Score computes the fitness of a candidate for a specific slot in a room,
// given the current partial team. Higher is better. The function is pure:
// it never mutates the candidate, the team, or the config, so the greedy
// loop stays deterministic and testable.
//
// Signals, each independently weighted:
//   - skill level in the dominant department
//   - lead fitness at slot 0 (bonus for lead-eligible candidates, penalty
//     for non-lead-eligible ones)
//   - preferred-room match, scaled by list position
//   - team diversity (senior coverage added to an all-junior team)
//   - coverage penalty when the candidate adds nothing to uncovered
//     departments
//   - pairing bonus when an active pairing links the candidate to a
//     current team member
func Score(
	staff *model.Staff,
	room *model.Room,
	slotIndex int,
	dominantDept string,
	currentTeam []model.Staff,
	weights Weights,
	pairings []model.Pairing,
	cfg *Config,
) float64 {
	score := 0.0

	// Skill match in the dominant department
	score += float64(staff.SkillIn(dominantDept)) * weights.SkillMatch

	// Lead fitness only matters for slot 0
	if slotIndex == 0 {
		if isLeadEligible(staff, dominantDept) {
			score += weights.LeadBonus
		} else {
			// Applies equally to every non-lead-eligible candidate, so
			// when no lead-capable alternative exists the ranking among
			// them is unaffected.
			score -= weights.LeadPenalty
		}
	}

	// Preferred-room match, weighted by list position
	for pos, roomID := range staff.PreferredRooms {
		if roomID == room.ID {
			score += weights.Preference * positionFactor(pos)
			break
		}
	}

	// Team composition: reward senior coverage for an all-junior team
	if staff.SkillIn(dominantDept) >= model.SkillExpert && teamIsJuniorOnly(currentTeam, dominantDept) {
		score += weights.TeamDiversity
	}

	// Mild penalty when the candidate covers none of the departments the
	// team is still missing
	if uncovered := uncoveredDepartments(room, currentTeam); len(uncovered) > 0 {
		covers := false
		for _, dept := range uncovered {
			if staff.SkillIn(dept) >= model.SkillJunior {
				covers = true
				break
			}
		}
		if !covers {
			score -= weights.CoveragePenalty
		}
	}

	// Pairing affinity with the current team
	if pairedWithTeam(staff.ID, currentTeam, pairings) {
		score += weights.PairingBonus
	}

	return score
}

// isLeadEligible reports whether the staff member may lead a room whose
// dominant department is the given one.
func isLeadEligible(staff *model.Staff, dominantDept string) bool {
	if !staff.LeadCapable {
		return false
	}
	for _, dept := range staff.LeadDepartments {
		if dept == dominantDept {
			return true
		}
	}
	return false
}

// positionFactor scales the preference bonus by list position:
// first choice 1.0, second 2/3, third 1/3.
func positionFactor(pos int) float64 {
	factor := 1.0 - float64(pos)/3.0
	if factor < 0 {
		return 0
	}
	return factor
}

// teamIsJuniorOnly returns true if no current team member holds better than
// junior skill in the department. An empty team counts as junior-only.
func teamIsJuniorOnly(team []model.Staff, dept string) bool {
	for i := range team {
		if team[i].SkillIn(dept) >= model.SkillExpert {
			return false
		}
	}
	return true
}

// uncoveredDepartments returns the room departments for which no current
// team member holds at least junior skill.
func uncoveredDepartments(room *model.Room, team []model.Staff) []string {
	var uncovered []string
	for _, dept := range room.Departments {
		covered := false
		for i := range team {
			if team[i].SkillIn(dept) >= model.SkillJunior {
				covered = true
				break
			}
		}
		if !covered {
			uncovered = append(uncovered, dept)
		}
	}
	return uncovered
}

// pairedWithTeam returns true if any active pairing links the staff ID to a
// current team member.
func pairedWithTeam(staffID string, team []model.Staff, pairings []model.Pairing) bool {
	for i := range pairings {
		pairing := &pairings[i]
		if !pairing.Active {
			continue
		}
		partner := pairing.PartnerOf(staffID)
		if partner == "" {
			continue
		}
		for j := range team {
			if team[j].ID == partner {
				return true
			}
		}
	}
	return false
}
