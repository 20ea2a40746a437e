package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixbrandt/saalplan/pkg/core/model"
)

func TestOptimize_FillsGapsWithGlobalVisibility(t *testing.T) {
	rooms := []model.Room{
		{ID: "SAAL_1", Departments: []string{"UCH"}, RequiredStaff: 2, Operations: []model.Operation{{Department: "UCH"}}},
	}
	reserve := model.Staff{
		ID:       "reserve",
		Skills:   map[string]model.SkillLevel{"UCH": model.SkillJunior},
		WorkDays: allWeekdays,
	}
	anchor := model.Staff{
		ID:       "anchor",
		Skills:   map[string]model.SkillLevel{"UCH": model.SkillExpert},
		WorkDays: allWeekdays,
	}

	snap := Snapshot{
		Assignments: []model.Assignment{{RoomID: "SAAL_1", StaffIDs: []string{"anchor"}}},
		Rooms:       rooms,
		Staff:       []model.Staff{anchor, reserve},
		Pool:        []model.Staff{reserve},
		Date:        testDate(t),
		Config:      testConfig(),
	}

	result := Optimize(snap)

	require.NoError(t, result.Err)
	require.Len(t, result.Assignments, 1)
	assert.Equal(t, []string{"anchor", "reserve"}, result.Assignments[0].StaffIDs)
}

func TestOptimize_ReplacesWeakerOccupant(t *testing.T) {
	rooms := []model.Room{
		{ID: "SAAL_1", Departments: []string{"UCH"}, RequiredStaff: 1, Operations: []model.Operation{{Department: "UCH"}}},
	}
	junior := model.Staff{
		ID:       "junior",
		Skills:   map[string]model.SkillLevel{"UCH": model.SkillJunior},
		WorkDays: allWeekdays,
	}
	expert := model.Staff{
		ID:       "expert",
		Skills:   map[string]model.SkillLevel{"UCH": model.SkillExpertPlus},
		WorkDays: allWeekdays,
	}

	snap := Snapshot{
		Assignments: []model.Assignment{{RoomID: "SAAL_1", StaffIDs: []string{"junior"}}},
		Rooms:       rooms,
		Staff:       []model.Staff{junior, expert},
		Pool:        []model.Staff{junior, expert},
		Date:        testDate(t),
		Config:      testConfig(),
	}

	result := Optimize(snap)

	require.Len(t, result.Assignments, 1)
	assert.Equal(t, []string{"expert"}, result.Assignments[0].StaffIDs)
}

func TestOptimize_KeepsEqualOrBetterOccupant(t *testing.T) {
	rooms := []model.Room{
		{ID: "SAAL_1", Departments: []string{"UCH"}, RequiredStaff: 1, Operations: []model.Operation{{Department: "UCH"}}},
	}
	holder := model.Staff{
		ID:       "holder",
		Skills:   map[string]model.SkillLevel{"UCH": model.SkillExpert},
		WorkDays: allWeekdays,
	}
	rival := model.Staff{
		ID:       "rival",
		Skills:   map[string]model.SkillLevel{"UCH": model.SkillExpert},
		WorkDays: allWeekdays,
	}

	snap := Snapshot{
		Assignments: []model.Assignment{{RoomID: "SAAL_1", StaffIDs: []string{"holder"}}},
		Rooms:       rooms,
		Staff:       []model.Staff{holder, rival},
		Pool:        []model.Staff{holder, rival},
		Date:        testDate(t),
		Config:      testConfig(),
	}

	result := Optimize(snap)

	require.Len(t, result.Assignments, 1)
	assert.Equal(t, []string{"holder"}, result.Assignments[0].StaffIDs,
		"an equal score never displaces the incumbent")
}

func TestOptimize_QualificationSafetyNet(t *testing.T) {
	rooms := []model.Room{
		{ID: "SAAL_1", Departments: []string{"UCH"}, RequiredStaff: 2, Operations: []model.Operation{{Department: "UCH"}}},
	}
	valid := model.Staff{
		ID:       "valid",
		Skills:   map[string]model.SkillLevel{"UCH": model.SkillExpert},
		WorkDays: allWeekdays,
	}
	intruder := model.Staff{
		ID:       "intruder",
		Skills:   map[string]model.SkillLevel{"GYN": model.SkillExpert},
		WorkDays: allWeekdays,
	}

	// A manually edited baseline can contain unqualified or unknown IDs
	snap := Snapshot{
		Assignments: []model.Assignment{{RoomID: "SAAL_1", StaffIDs: []string{"valid", "intruder", "ghost"}}},
		Rooms:       rooms,
		Staff:       []model.Staff{valid, intruder},
		Pool:        []model.Staff{},
		Date:        testDate(t),
		Config:      testConfig(),
	}

	result := Optimize(snap)

	require.Len(t, result.Assignments, 1)
	assert.Equal(t, []string{"valid"}, result.Assignments[0].StaffIDs)
	assert.Len(t, result.Alerts, 2)
}

func TestOptimize_DoesNotMutateSnapshot(t *testing.T) {
	rooms := []model.Room{
		{ID: "SAAL_1", Departments: []string{"UCH"}, RequiredStaff: 1, Operations: []model.Operation{{Department: "UCH"}}},
	}
	junior := model.Staff{
		ID:       "junior",
		Skills:   map[string]model.SkillLevel{"UCH": model.SkillJunior},
		WorkDays: allWeekdays,
	}
	expert := model.Staff{
		ID:       "expert",
		Skills:   map[string]model.SkillLevel{"UCH": model.SkillExpertPlus},
		WorkDays: allWeekdays,
	}

	baseline := []model.Assignment{{RoomID: "SAAL_1", StaffIDs: []string{"junior"}}}
	snap := Snapshot{
		Assignments: baseline,
		Rooms:       rooms,
		Staff:       []model.Staff{junior, expert},
		Pool:        []model.Staff{junior, expert},
		Date:        testDate(t),
		Config:      testConfig(),
	}

	Optimize(snap)

	assert.Equal(t, []string{"junior"}, baseline[0].StaffIDs)
}

func TestOptimizeAsync_DeliversResult(t *testing.T) {
	rooms := []model.Room{
		{ID: "SAAL_1", Departments: []string{"UCH"}, RequiredStaff: 1, Operations: []model.Operation{{Department: "UCH"}}},
	}
	solo := model.Staff{
		ID:       "solo",
		Skills:   map[string]model.SkillLevel{"UCH": model.SkillExpert},
		WorkDays: allWeekdays,
	}

	snap := Snapshot{
		Assignments: []model.Assignment{{RoomID: "SAAL_1", StaffIDs: []string{"solo"}}},
		Rooms:       rooms,
		Staff:       []model.Staff{solo},
		Pool:        []model.Staff{solo},
		Date:        testDate(t),
		Config:      testConfig(),
	}

	select {
	case result := <-OptimizeAsync(snap):
		require.NoError(t, result.Err)
		assert.Equal(t, []string{"solo"}, result.Assignments[0].StaffIDs)
	case <-time.After(2 * time.Second):
		t.Fatal("optimizer did not deliver a result")
	}
}

func TestOptimizeAsync_RecoversFromPanic(t *testing.T) {
	// A nil config makes the refinement dereference nil; the failure must
	// surface as an error on the channel, never crash the caller.
	snap := Snapshot{
		Assignments: []model.Assignment{{RoomID: "SAAL_1", StaffIDs: []string{"x"}}},
		Rooms:       []model.Room{{ID: "SAAL_1", Departments: []string{"UCH"}, Operations: []model.Operation{{Department: "UCH"}}}},
		Staff:       []model.Staff{{ID: "x", Skills: map[string]model.SkillLevel{"UCH": model.SkillExpert}}},
		Pool:        []model.Staff{{ID: "x", Skills: map[string]model.SkillLevel{"UCH": model.SkillExpert}}},
		Config:      nil,
	}

	select {
	case result := <-OptimizeAsync(snap):
		require.Error(t, result.Err)
		assert.Contains(t, result.Err.Error(), "optimizer panicked")
	case <-time.After(2 * time.Second):
		t.Fatal("optimizer did not deliver a result")
	}
}
