package planner

import (
	"strings"

	"github.com/felixbrandt/saalplan/pkg/core/model"
)

// DominantDepartment returns the reference department for skill scoring and
// lead matching: the department with the highest aggregate weight across the
// room's operations for the day. Ties, and rooms without operations, fall
// back to the room's first declared department.
func DominantDepartment(room *model.Room) string {
	fallback := ""
	if len(room.Departments) > 0 {
		fallback = room.Departments[0]
	}

	if len(room.Operations) == 0 {
		return fallback
	}

	weights := make(map[string]int)
	for _, op := range room.Operations {
		if op.Department == "" {
			continue
		}
		weights[op.Department]++
	}

	if len(weights) == 0 {
		return fallback
	}

	// Pick the heaviest department. On equal weight the room's declared
	// order decides, so iterate declared departments first, then any
	// operation-only departments in operation order.
	best := ""
	bestWeight := 0

	consider := func(dept string) {
		weight := weights[dept]
		if weight > bestWeight {
			best = dept
			bestWeight = weight
		}
	}

	for _, dept := range room.Departments {
		consider(dept)
	}
	for _, op := range room.Operations {
		if _, declared := weights[op.Department]; declared {
			consider(op.Department)
		}
	}

	if best == "" {
		return fallback
	}
	return best
}

// MatchesExclusionKeyword returns true if the staff member's name contains
// any configured exclusion keyword (case-insensitive substring match).
func MatchesExclusionKeyword(staff *model.Staff, cfg *Config) bool {
	name := strings.ToLower(staff.Name)
	for _, keyword := range cfg.ExclusionKeywords {
		if keyword == "" {
			continue
		}
		if strings.Contains(name, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}

// IsQualified is the hard qualification gate: the staff member must hold at
// least junior-level skill in one of the room's departments, must not match
// an exclusion keyword, and must meet the room's skill floor when one is
// configured. Unqualified staff are excluded as candidates entirely, never
// merely down-scored.
func IsQualified(staff *model.Staff, room *model.Room, cfg *Config) bool {
	if MatchesExclusionKeyword(staff, cfg) {
		return false
	}

	floor := model.SkillJunior
	if room.MinSkill > floor {
		floor = room.MinSkill
	}

	for _, dept := range room.Departments {
		if staff.SkillIn(dept) >= floor {
			return true
		}
	}
	return false
}
