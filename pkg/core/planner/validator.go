package planner

import (
	"fmt"

	"github.com/felixbrandt/saalplan/pkg/core/model"
)

// Validate scans a completed assignment set for rule violations and returns
// every applicable issue. It is a pure function holding no state between
// calls, so it can be re-run after every mutation (manual edit, tool-driven
// change, optimizer pass) and yields identical results for identical input.
//
// Rules, each evaluated independently:
//   - double booking (error): a staff ID assigned to more than one room,
//     one error per offending room entry
//   - understaffing (warning): assigned count below the room's required count
//   - missing skill (error): nobody on the team holds at least junior skill
//     in the room's dominant department
//   - weak skill (warning): the team is staffed but without expert coverage
//     in the dominant department
//   - cross-department transfer (warning): an operation tagged with a
//     department outside the room's own departments
func Validate(
	rooms []model.Room,
	assignments []model.Assignment,
	staff []model.Staff,
	cfg *Config,
) []model.Issue {
	issues := []model.Issue{}

	staffByID := make(map[string]*model.Staff, len(staff))
	for i := range staff {
		staffByID[staff[i].ID] = &staff[i]
	}

	assignmentsByRoom := make(map[string]*model.Assignment, len(assignments))
	for i := range assignments {
		assignmentsByRoom[assignments[i].RoomID] = &assignments[i]
	}

	// Double booking: count staff occurrences across the whole set, then
	// emit one error per room entry of every multiply-assigned ID.
	roomCount := make(map[string]int)
	for i := range assignments {
		for _, id := range assignments[i].StaffIDs {
			roomCount[id]++
		}
	}
	for i := range assignments {
		for _, id := range assignments[i].StaffIDs {
			if roomCount[id] > 1 {
				issues = append(issues, model.Issue{
					Severity: model.SeverityError,
					Category: model.IssueDoubleBooking,
					RoomID:   assignments[i].RoomID,
					StaffID:  id,
					Message:  fmt.Sprintf("%s is assigned to %d rooms, including %s", staffName(staffByID, id), roomCount[id], assignments[i].RoomID),
				})
			}
		}
	}

	// Per-room rules for every room that needs a team
	for i := range rooms {
		room := &rooms[i]
		if len(room.Operations) == 0 && !room.Priority {
			continue
		}

		var teamIDs []string
		if assignment, ok := assignmentsByRoom[room.ID]; ok {
			teamIDs = assignment.StaffIDs
		}

		required := room.RequiredStaffCount()
		if len(teamIDs) < required {
			issues = append(issues, model.Issue{
				Severity: model.SeverityWarning,
				Category: model.IssueUnderstaffing,
				RoomID:   room.ID,
				Message:  fmt.Sprintf("%s is staffed with %d of %d", room.Name, len(teamIDs), required),
			})
		}

		dominantDept := DominantDepartment(room)
		bestSkill := model.SkillNone
		for _, id := range teamIDs {
			if member, ok := staffByID[id]; ok {
				if skill := member.SkillIn(dominantDept); skill > bestSkill {
					bestSkill = skill
				}
			}
		}

		switch {
		case bestSkill < model.SkillJunior:
			issues = append(issues, model.Issue{
				Severity: model.SeverityError,
				Category: model.IssueMissingSkill,
				RoomID:   room.ID,
				Message:  fmt.Sprintf("%s has no staff qualified for %s", room.Name, dominantDept),
			})
		case bestSkill < model.SkillExpert:
			issues = append(issues, model.Issue{
				Severity: model.SeverityWarning,
				Category: model.IssueWeakSkill,
				RoomID:   room.ID,
				Message:  fmt.Sprintf("%s has only junior-level coverage for %s", room.Name, dominantDept),
			})
		}

		// Operations outside the room's own specialty
		for _, op := range room.Operations {
			if op.Department == "" || containsString(room.Departments, op.Department) {
				continue
			}
			opName := op.Name
			if opName == "" {
				opName = "operation"
			}
			issues = append(issues, model.Issue{
				Severity: model.SeverityWarning,
				Category: model.IssueCrossDepartment,
				RoomID:   room.ID,
				Message:  fmt.Sprintf("%s in %s is tagged %s, outside the room's departments", opName, room.Name, op.Department),
			})
		}
	}

	return issues
}

func staffName(staffByID map[string]*model.Staff, id string) string {
	if member, ok := staffByID[id]; ok && member.Name != "" {
		return member.Name
	}
	return id
}

func containsString(list []string, value string) bool {
	for _, entry := range list {
		if entry == value {
			return true
		}
	}
	return false
}
