package planner

import "github.com/felixbrandt/saalplan/pkg/core/model"

// Weights are the named multipliers consumed by the scoring function.
// Each signal is weighted independently so planners can tune the balance
// between skill match, lead fitness, and soft preferences in configuration.
type Weights struct {
	// SkillMatch is multiplied by the candidate's skill level in the
	// room's dominant department.
	SkillMatch float64 `yaml:"skillMatch"`

	// LeadBonus is added at slot 0 for candidates that are lead capable
	// and have the dominant department in their lead-eligible set.
	LeadBonus float64 `yaml:"leadBonus"`

	// LeadPenalty is subtracted at slot 0 from candidates that are not
	// lead eligible for the dominant department.
	LeadPenalty float64 `yaml:"leadPenalty"`

	// Preference is the maximum bonus for a preferred-room match, scaled
	// down by the room's position in the candidate's preference list.
	Preference float64 `yaml:"preference"`

	// TeamDiversity rewards adding senior coverage to an all-junior team.
	TeamDiversity float64 `yaml:"teamDiversity"`

	// CoveragePenalty is subtracted when a candidate adds nothing to the
	// team's uncovered department coverage.
	CoveragePenalty float64 `yaml:"coveragePenalty"`

	// PairingBonus is added when an active pairing links the candidate to
	// a current team member.
	PairingBonus float64 `yaml:"pairingBonus"`
}

// DefaultWeights returns the built-in scoring weights.
func DefaultWeights() Weights {
	return Weights{
		SkillMatch:      10.0,
		LeadBonus:       25.0,
		LeadPenalty:     15.0,
		Preference:      5.0,
		TeamDiversity:   8.0,
		CoveragePenalty: 3.0,
		PairingBonus:    4.0,
	}
}

// Config bundles the configuration inputs the planning core consumes:
// the shift definition table, scoring weights, known departments, and the
// exclusion keyword list. It is an immutable snapshot for one planning run.
type Config struct {
	// ShiftDefs maps shift code to its definition. Behavior is driven
	// entirely by this table beyond the reserved sentinels.
	ShiftDefs map[string]model.ShiftDef

	Weights Weights

	Departments []string

	// ExclusionKeywords are name substrings that disqualify a staff member
	// from automated assignment (e.g. temporary-helper markers).
	ExclusionKeywords []string
}

// ShiftDefFor resolves a staff member's shift code to its definition.
// An empty code reads as the standard day shift.
func (c *Config) ShiftDefFor(code string) (model.ShiftDef, bool) {
	if code == "" {
		code = model.ShiftCodeStandard
	}
	def, ok := c.ShiftDefs[code]
	return def, ok
}

// IsAssignableShift reports whether the staff member's shift code permits
// automated assignment. Codes absent from the definition table fail open,
// since upstream roster data is not guaranteed fully populated.
func (c *Config) IsAssignableShift(code string) bool {
	def, ok := c.ShiftDefFor(code)
	if !ok {
		return true
	}
	return def.Assignable
}
