package schedule

import (
	"slices"
	"time"

	"github.com/felixbrandt/saalplan/pkg/core/model"
)

// FullShiftMinutes is the minimum custom-window duration (7.5 hours) that
// still counts as a full shift. Staff with a shorter custom window are
// excluded from automatic assignment to full-day rooms but stay visible for
// manual assignment.
const FullShiftMinutes = 450

// nonWorkingShiftCodes are the reserved sentinels that mark a roster day as
// not workable regardless of weekday availability.
var nonWorkingShiftCodes = map[string]bool{
	model.ShiftCodeOff:      true,
	model.ShiftCodeRecovery: true,
	model.ShiftCodeSick:     true,
}

// IsOnVacation returns true if the date falls inside any of the staff
// member's inclusive vacation ranges. Malformed ranges are skipped rather
// than failing the check.
func IsOnVacation(staff *model.Staff, date time.Time) bool {
	for _, vacation := range staff.Vacations {
		start, err := ParseDate(vacation.Start)
		if err != nil {
			continue
		}
		end, err := ParseDate(vacation.End)
		if err != nil {
			continue
		}

		if !date.Before(start) && !date.After(end) {
			return true
		}
	}
	return false
}

// IsScheduled determines whether the staff member works on the given date:
//   - false while on vacation
//   - false when the resolved shift code is a non-working sentinel
//     (off / recovery / sick)
//   - true when a custom time window is set for the day (overrides the
//     weekday check)
//   - otherwise true iff the date's weekday abbreviation is in the staff
//     member's work day set
//
// This is the looser check used for display: a sick staff member is still
// "scheduled" so the UI can show them greyed out.
func IsScheduled(staff *model.Staff, date time.Time) bool {
	if IsOnVacation(staff, date) {
		return false
	}

	if nonWorkingShiftCodes[staff.ShiftCode] {
		return false
	}

	// A custom window overrides the weekly availability check
	if staff.HasCustomWindow() {
		return true
	}

	return slices.Contains(staff.WorkDays, WeekdayAbbrev(date))
}

// IsAvailableForAutoAssignment is the stricter availability check used by
// the constructor and optimizer: scheduled, not sick, not on vacation.
func IsAvailableForAutoAssignment(staff *model.Staff, date time.Time) bool {
	return IsScheduled(staff, date) && !staff.Sick && !IsOnVacation(staff, date)
}

// ResolveLinkedAvailability checks a staff member's declared dependency on
// another person's presence. Returns false only if the depended-on person is
// marked sick or is on vacation for the date. Unresolvable dependency IDs
// fail open.
func ResolveLinkedAvailability(staff *model.Staff, allStaff []model.Staff, date time.Time) bool {
	if staff.DependsOn == "" {
		return true
	}

	for i := range allStaff {
		other := &allStaff[i]
		if other.ID != staff.DependsOn {
			continue
		}
		if other.Sick || IsOnVacation(other, date) {
			return false
		}
		return true
	}

	// Dependency ID not found - fail open
	return true
}

// HasShortCustomShift returns true if the staff member's custom time window
// is shorter than a full shift, which disqualifies them from automatic
// assignment to full-day rooms. Staff without a custom window, or with an
// unparseable one, are not short-shifted.
func HasShortCustomShift(staff *model.Staff) bool {
	if !staff.HasCustomWindow() {
		return false
	}

	minutes, err := WindowMinutes(staff.CustomStart, staff.CustomEnd)
	if err != nil {
		return false
	}
	return minutes < FullShiftMinutes
}
