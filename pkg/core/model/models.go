package model

// SkillLevel is the ordered qualification level a staff member holds in a department.
type SkillLevel int

const (
	SkillNone SkillLevel = iota
	SkillJunior
	SkillExpert
	SkillExpertPlus
)

var skillLevelNames = map[SkillLevel]string{
	SkillNone:       "none",
	SkillJunior:     "junior",
	SkillExpert:     "expert",
	SkillExpertPlus: "expert+",
}

func (s SkillLevel) String() string {
	if name, ok := skillLevelNames[s]; ok {
		return name
	}
	return "none"
}

// ParseSkillLevel converts a textual skill level to its enum value.
// Unknown values map to SkillNone.
func ParseSkillLevel(s string) SkillLevel {
	for level, name := range skillLevelNames {
		if name == s {
			return level
		}
	}
	return SkillNone
}

// MarshalYAML renders the level as its textual name.
func (s SkillLevel) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// UnmarshalYAML accepts the textual skill level names.
func (s *SkillLevel) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var name string
	if err := unmarshal(&name); err != nil {
		return err
	}
	*s = ParseSkillLevel(name)
	return nil
}

// DateRange is an inclusive date span. Dates use day.month.year form.
type DateRange struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// Staff represents one OR staff member as loaded for a single planning run.
// The planning engine treats staff records as immutable snapshots; skill
// levels are read-only inputs to scoring.
type Staff struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Role string `yaml:"role,omitempty"`

	// Skills maps department code to skill level
	Skills map[string]SkillLevel `yaml:"skills,omitempty"`

	LeadCapable    bool `yaml:"leadCapable,omitempty"`
	ManagementOnly bool `yaml:"managementOnly,omitempty"`
	Sick           bool `yaml:"sick,omitempty"`

	// LeadDepartments are the departments this person may lead.
	// Only meaningful if LeadCapable is true.
	LeadDepartments []string `yaml:"leadDepartments,omitempty"`

	// WorkDays are weekday abbreviations (Mo, Di, Mi, Do, Fr, Sa, So)
	WorkDays []string `yaml:"workDays,omitempty"`

	Vacations []DateRange `yaml:"vacations,omitempty"`

	// PreferredRooms is ordered most-preferred first, capped at 3 entries
	// by the preference learning mechanism. Soft scoring signal only.
	PreferredRooms []string `yaml:"preferredRooms,omitempty"`

	// ShiftCode is the shift resolved for the planning date from the roster.
	// Empty means the standard day shift.
	ShiftCode string `yaml:"shiftCode,omitempty"`

	// CustomStart/CustomEnd define an optional HH:MM time window for the
	// day. A set window overrides the weekly-availability check.
	CustomStart string `yaml:"customStart,omitempty"`
	CustomEnd   string `yaml:"customEnd,omitempty"`

	// DependsOn links this person's availability to another staff ID.
	// They are considered unavailable only if that person is sick or on
	// vacation (unresolvable IDs fail open).
	DependsOn string `yaml:"dependsOn,omitempty"`
}

// HasCustomWindow returns true if a custom time window is set for the day.
func (s *Staff) HasCustomWindow() bool {
	return s.CustomStart != "" && s.CustomEnd != ""
}

// SkillIn returns the staff member's skill level in the given department.
// A missing skills map reads as SkillNone.
func (s *Staff) SkillIn(department string) SkillLevel {
	if s.Skills == nil {
		return SkillNone
	}
	return s.Skills[department]
}

// Operation is a single scheduled procedure in a room for the day.
type Operation struct {
	Department      string `yaml:"department"`
	Start           string `yaml:"start,omitempty"`
	DurationMinutes int    `yaml:"durationMinutes,omitempty"`
	Name            string `yaml:"name,omitempty"`
}

// Room represents an operating room to be staffed.
type Room struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`

	// Departments are the room's primary department affinities, most
	// dominant first. The first entry is the fallback reference department
	// when no operations are scheduled.
	Departments []string `yaml:"departments,omitempty"`

	// RequiredStaff bounds the slot-fill loop. Zero or negative reads as
	// the default of 2.
	RequiredStaff int `yaml:"requiredStaff,omitempty"`

	Operations []Operation `yaml:"operations,omitempty"`

	// Priority forces the room to be processed first and exempts it from
	// the skip-if-no-operations rule.
	Priority bool `yaml:"priority,omitempty"`

	// MinSkill optionally raises the qualification floor for this room.
	MinSkill SkillLevel `yaml:"minSkill,omitempty"`
}

// DefaultRequiredStaff is the slot count for rooms that do not configure one.
const DefaultRequiredStaff = 2

// RequiredStaffCount returns the effective slot count for the room.
func (r *Room) RequiredStaffCount() int {
	if r.RequiredStaff <= 0 {
		return DefaultRequiredStaff
	}
	return r.RequiredStaff
}

// Assignment maps a room to its ordered team. Index 0 is the lead
// (Saalleitung), all later indices are support (Springer).
type Assignment struct {
	RoomID   string   `yaml:"roomId"`
	StaffIDs []string `yaml:"staffIds"`
}

// Pairing types
const (
	PairingTraining = "training"
	PairingTandem   = "tandem"
)

// Pairing is an administratively declared affinity between two staff IDs
// that biases them toward being scheduled together. The pair is unordered.
type Pairing struct {
	StaffA string `yaml:"staffA"`
	StaffB string `yaml:"staffB"`
	Type   string `yaml:"type,omitempty"`
	Active bool   `yaml:"active"`
}

// PartnerOf returns the other member of the pairing, or empty string if the
// given ID is not part of it.
func (p *Pairing) PartnerOf(staffID string) string {
	switch staffID {
	case p.StaffA:
		return p.StaffB
	case p.StaffB:
		return p.StaffA
	}
	return ""
}

// ShiftDef describes one shift code from the app configuration.
// Empty Start/End means the shift is not time-bounded.
type ShiftDef struct {
	Start            string `yaml:"start,omitempty"`
	End              string `yaml:"end,omitempty"`
	Label            string `yaml:"label"`
	Assignable       bool   `yaml:"assignable"`
	RequiresRecovery bool   `yaml:"requiresRecovery,omitempty"`
}

// Universally reserved shift code sentinels. Everything else is data-driven
// through the shift definition map so new shift types require no code change.
const (
	ShiftCodeStandard = "T1"
	ShiftCodeOff      = "frei"
	ShiftCodeRecovery = "AD"
	ShiftCodeSick     = "krank"
)

// RosterEntry is one staff member's roster state for a single date.
type RosterEntry struct {
	ShiftCode   string `yaml:"shiftCode"`
	CustomStart string `yaml:"customStart,omitempty"`
	CustomEnd   string `yaml:"customEnd,omitempty"`
}

// Severity of a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Machine-checkable issue categories.
const (
	IssueDoubleBooking   = "double-booking"
	IssueUnderstaffing   = "understaffing"
	IssueMissingSkill    = "missing-skill"
	IssueWeakSkill       = "weak-skill"
	IssueCrossDepartment = "cross-department-transfer"
)

// Issue is one validation finding on a completed assignment set.
type Issue struct {
	Severity Severity `yaml:"severity"`
	Category string   `yaml:"category"`
	RoomID   string   `yaml:"roomId"`
	StaffID  string   `yaml:"staffId,omitempty"`
	Message  string   `yaml:"message"`
}

// RankedCandidate is one advisor suggestion with its score and
// human-readable justifications.
type RankedCandidate struct {
	Staff   Staff
	Score   float64
	Reasons []string
}
