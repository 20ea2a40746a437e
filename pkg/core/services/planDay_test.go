package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/felixbrandt/saalplan/internal/config"
	"github.com/felixbrandt/saalplan/pkg/core/model"
)

// mockStore implements the store interfaces for testing
type mockStore struct {
	staff       []model.Staff
	rooms       []model.Room
	rosters     map[string]map[string]model.RosterEntry
	pairings    []model.Pairing
	assignments map[string][]model.Assignment

	savedAssignments map[string][]model.Assignment
	savedStaff       []model.Staff

	staffErr       error
	roomsErr       error
	rosterErr      error
	pairingsErr    error
	assignmentsErr error
	saveErr        error
}

func (m *mockStore) StaffDirectory(ctx context.Context) ([]model.Staff, error) {
	if m.staffErr != nil {
		return nil, m.staffErr
	}
	return m.staff, nil
}

func (m *mockStore) RoomDirectory(ctx context.Context) ([]model.Room, error) {
	if m.roomsErr != nil {
		return nil, m.roomsErr
	}
	return m.rooms, nil
}

func (m *mockStore) RosterFor(ctx context.Context, date string) (map[string]model.RosterEntry, error) {
	if m.rosterErr != nil {
		return nil, m.rosterErr
	}
	if entries, ok := m.rosters[date]; ok {
		return entries, nil
	}
	return map[string]model.RosterEntry{}, nil
}

func (m *mockStore) ActivePairings(ctx context.Context) ([]model.Pairing, error) {
	if m.pairingsErr != nil {
		return nil, m.pairingsErr
	}
	return m.pairings, nil
}

func (m *mockStore) AssignmentsFor(ctx context.Context, date string) ([]model.Assignment, error) {
	if m.assignmentsErr != nil {
		return nil, m.assignmentsErr
	}
	return m.assignments[date], nil
}

func (m *mockStore) SaveAssignments(ctx context.Context, date string, assignments []model.Assignment) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	if m.savedAssignments == nil {
		m.savedAssignments = map[string][]model.Assignment{}
	}
	m.savedAssignments[date] = assignments
	return nil
}

func (m *mockStore) SaveStaff(ctx context.Context, staff []model.Staff) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.savedStaff = staff
	return nil
}

var serviceWorkDays = []string{"Mo", "Di", "Mi", "Do", "Fr"}

func testAppConfig() *config.Config {
	return &config.Config{
		Departments: []string{"UCH", "GYN"},
		Shifts: map[string]model.ShiftDef{
			model.ShiftCodeStandard: {Start: "07:30", End: "16:00", Label: "Day shift", Assignable: true},
			"B1":                    {Start: "07:30", End: "20:00", Label: "Long day", Assignable: true, RequiresRecovery: true},
			model.ShiftCodeOff:      {Label: "Off"},
			model.ShiftCodeRecovery: {Label: "Recovery"},
			model.ShiftCodeSick:     {Label: "Sick"},
		},
		ExclusionKeywords: []string{"leasing"},
	}
}

func TestPlanDay_Success(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	store := &mockStore{
		staff: []model.Staff{
			{
				ID:              "anna",
				Name:            "Anna",
				Skills:          map[string]model.SkillLevel{"UCH": model.SkillExpert},
				LeadCapable:     true,
				LeadDepartments: []string{"UCH"},
				WorkDays:        serviceWorkDays,
			},
			{ID: "ben", Name: "Ben", Skills: map[string]model.SkillLevel{"UCH": model.SkillJunior}, WorkDays: serviceWorkDays},
		},
		rooms: []model.Room{
			{
				ID:            "SAAL_1",
				Name:          "Saal 1",
				Departments:   []string{"UCH"},
				RequiredStaff: 2,
				Operations:    []model.Operation{{Department: "UCH"}},
			},
		},
	}

	result, err := PlanDay(ctx, store, testAppConfig(), logger, "6.1.2025", PlanDayOptions{})
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, "6.1.2025", result.Date)
	require.Len(t, result.Assignments, 1)
	assert.Equal(t, []string{"anna", "ben"}, result.Assignments[0].StaffIDs)
	assert.Empty(t, result.Issues)

	require.Contains(t, store.savedAssignments, "6.1.2025")
	assert.Equal(t, result.Assignments, store.savedAssignments["6.1.2025"])
}

func TestPlanDay_DryRunSkipsPersistence(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	store := &mockStore{
		staff: []model.Staff{
			{ID: "anna", Skills: map[string]model.SkillLevel{"UCH": model.SkillExpert}, WorkDays: serviceWorkDays},
		},
		rooms: []model.Room{
			{ID: "SAAL_1", Departments: []string{"UCH"}, RequiredStaff: 1, Operations: []model.Operation{{Department: "UCH"}}},
		},
	}

	result, err := PlanDay(ctx, store, testAppConfig(), logger, "6.1.2025", PlanDayOptions{DryRun: true})
	require.NoError(t, err)

	assert.NotEmpty(t, result.Assignments)
	assert.Empty(t, store.savedAssignments)
}

func TestPlanDay_RosterStateApplied(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	// Anna is off per roster, Ben gets the room
	store := &mockStore{
		staff: []model.Staff{
			{ID: "anna", Skills: map[string]model.SkillLevel{"UCH": model.SkillExpert}, WorkDays: serviceWorkDays},
			{ID: "ben", Skills: map[string]model.SkillLevel{"UCH": model.SkillJunior}, WorkDays: serviceWorkDays},
		},
		rooms: []model.Room{
			{ID: "SAAL_1", Departments: []string{"UCH"}, RequiredStaff: 1, Operations: []model.Operation{{Department: "UCH"}}},
		},
		rosters: map[string]map[string]model.RosterEntry{
			"6.1.2025": {
				"anna": {ShiftCode: model.ShiftCodeOff},
			},
		},
	}

	result, err := PlanDay(ctx, store, testAppConfig(), logger, "6.1.2025", PlanDayOptions{SkipOptimizer: true})
	require.NoError(t, err)

	require.Len(t, result.Assignments, 1)
	assert.Equal(t, []string{"ben"}, result.Assignments[0].StaffIDs)
}

func TestPlanDay_RecoveryFromPreviousDay(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	// Anna worked the long shift on the 6th, so she rests on the 7th
	store := &mockStore{
		staff: []model.Staff{
			{ID: "anna", Skills: map[string]model.SkillLevel{"UCH": model.SkillExpert}, WorkDays: serviceWorkDays},
			{ID: "ben", Skills: map[string]model.SkillLevel{"UCH": model.SkillJunior}, WorkDays: serviceWorkDays},
		},
		rooms: []model.Room{
			{ID: "SAAL_1", Departments: []string{"UCH"}, RequiredStaff: 1, Operations: []model.Operation{{Department: "UCH"}}},
		},
		rosters: map[string]map[string]model.RosterEntry{
			"6.1.2025": {
				"anna": {ShiftCode: "B1"},
			},
		},
	}

	result, err := PlanDay(ctx, store, testAppConfig(), logger, "7.1.2025", PlanDayOptions{SkipOptimizer: true})
	require.NoError(t, err)

	require.Len(t, result.Assignments, 1)
	assert.Equal(t, []string{"ben"}, result.Assignments[0].StaffIDs)
}

func TestPlanDay_ExplicitRosterOverridesRecovery(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	// Anna worked the long shift but is explicitly rostered on anyway
	store := &mockStore{
		staff: []model.Staff{
			{ID: "anna", Skills: map[string]model.SkillLevel{"UCH": model.SkillExpert}, WorkDays: serviceWorkDays},
		},
		rooms: []model.Room{
			{ID: "SAAL_1", Departments: []string{"UCH"}, RequiredStaff: 1, Operations: []model.Operation{{Department: "UCH"}}},
		},
		rosters: map[string]map[string]model.RosterEntry{
			"6.1.2025": {"anna": {ShiftCode: "B1"}},
			"7.1.2025": {"anna": {ShiftCode: model.ShiftCodeStandard}},
		},
	}

	result, err := PlanDay(ctx, store, testAppConfig(), logger, "7.1.2025", PlanDayOptions{SkipOptimizer: true})
	require.NoError(t, err)

	require.Len(t, result.Assignments, 1)
	assert.Equal(t, []string{"anna"}, result.Assignments[0].StaffIDs)
}

func TestPlanDay_RoomOverrideClosesRoom(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	cfg := testAppConfig()
	cfg.RoomOverrides = []config.RoomOverride{
		{RRule: "DTSTART=20250101T000000Z;FREQ=WEEKLY;BYDAY=MO", RoomID: "SAAL_1", Closed: true},
	}

	store := &mockStore{
		staff: []model.Staff{
			{ID: "anna", Skills: map[string]model.SkillLevel{"UCH": model.SkillExpert}, WorkDays: serviceWorkDays},
		},
		rooms: []model.Room{
			{ID: "SAAL_1", Departments: []string{"UCH"}, Operations: []model.Operation{{Department: "UCH"}}},
		},
	}

	// Monday: the override closes the only room
	result, err := PlanDay(ctx, store, cfg, logger, "6.1.2025", PlanDayOptions{SkipOptimizer: true})
	require.NoError(t, err)
	assert.Empty(t, result.Assignments)

	// Tuesday: the room is open again
	result, err = PlanDay(ctx, store, cfg, logger, "7.1.2025", PlanDayOptions{SkipOptimizer: true})
	require.NoError(t, err)
	assert.Len(t, result.Assignments, 1)
}

func TestPlanDay_InvalidDate(t *testing.T) {
	_, err := PlanDay(context.Background(), &mockStore{}, testAppConfig(), zap.NewNop(), "2025-01-06", PlanDayOptions{})
	require.Error(t, err)
}

func TestPlanDay_StoreErrors(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	tests := []struct {
		name  string
		store *mockStore
	}{
		{"staff fetch fails", &mockStore{staffErr: errors.New("boom")}},
		{"rooms fetch fails", &mockStore{roomsErr: errors.New("boom")}},
		{"pairings fetch fails", &mockStore{pairingsErr: errors.New("boom")}},
		{"roster fetch fails", &mockStore{rosterErr: errors.New("boom")}},
		{"save fails", &mockStore{
			staff: []model.Staff{{ID: "a", Skills: map[string]model.SkillLevel{"UCH": model.SkillExpert}, WorkDays: serviceWorkDays}},
			rooms: []model.Room{{ID: "SAAL_1", Departments: []string{"UCH"}, Operations: []model.Operation{{Department: "UCH"}}}},
			saveErr: errors.New("boom"),
		}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := PlanDay(ctx, test.store, testAppConfig(), logger, "6.1.2025", PlanDayOptions{SkipOptimizer: true})
			require.Error(t, err)
		})
	}
}

func TestPlanDay_OptimizerFillsOpenSlot(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	store := &mockStore{
		staff: []model.Staff{
			{ID: "anna", Skills: map[string]model.SkillLevel{"UCH": model.SkillExpert}, WorkDays: serviceWorkDays},
			{ID: "ben", Skills: map[string]model.SkillLevel{"UCH": model.SkillJunior}, WorkDays: serviceWorkDays},
		},
		rooms: []model.Room{
			{ID: "SAAL_1", Departments: []string{"UCH"}, RequiredStaff: 2, Operations: []model.Operation{{Department: "UCH"}}},
		},
	}

	result, err := PlanDay(ctx, store, testAppConfig(), logger, "6.1.2025", PlanDayOptions{
		DryRun:           true,
		OptimizerTimeout: 2 * time.Second,
	})
	require.NoError(t, err)

	require.Len(t, result.Assignments, 1)
	assert.Len(t, result.Assignments[0].StaffIDs, 2)
}

func TestPlanWeek_PlansSevenDays(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	store := &mockStore{
		staff: []model.Staff{
			{ID: "anna", Skills: map[string]model.SkillLevel{"UCH": model.SkillExpert}, WorkDays: serviceWorkDays},
		},
		rooms: []model.Room{
			{ID: "SAAL_1", Departments: []string{"UCH"}, RequiredStaff: 1, Operations: []model.Operation{{Department: "UCH"}}},
		},
	}

	results, err := PlanWeek(ctx, store, testAppConfig(), logger, "8.1.2025", PlanDayOptions{
		DryRun:        true,
		SkipOptimizer: true,
	})
	require.NoError(t, err)

	require.Len(t, results, 7)
	assert.Equal(t, "6.1.2025", results[0].Date, "week starts on the Monday before the given date")
	assert.Equal(t, "12.1.2025", results[6].Date)

	// Weekdays staffed, weekend not (no weekend work days configured)
	assert.NotEmpty(t, results[0].Assignments)
	assert.Empty(t, results[5].Assignments)
	assert.Empty(t, results[6].Assignments)
}

func TestPlanWeek_FailsFast(t *testing.T) {
	store := &mockStore{staffErr: errors.New("boom")}

	_, err := PlanWeek(context.Background(), store, testAppConfig(), zap.NewNop(), "6.1.2025", PlanDayOptions{SkipOptimizer: true})
	require.Error(t, err)
}
