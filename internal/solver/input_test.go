package solver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/siddharth786s1/Project-Intelligencia-Scheduler/internal/models"
)

func minimalInput() *Input {
	return &Input{
		InstitutionID: "inst-1",
		Faculty:       []models.Faculty{{ID: "f1", Name: "Dr. Rao", WeeklyLoadHours: 16, Active: true}},
		Batches:       []models.Batch{{ID: "b1", Name: "CS-A", Code: "CSA", Year: 2, Size: 40}},
		Subjects:      []models.Subject{{ID: "s1", Name: "Algorithms", Code: "CS301", Credits: 4}},
		Classrooms:    []models.Classroom{{ID: "c1", Name: "LH-1", Capacity: 60}},
		TimeSlots: []models.TimeSlot{
			{ID: "t1", Name: "Mon 09-10", DayOfWeek: 0, StartTime: "09:00", EndTime: "10:00", Active: true},
			{ID: "t2", Name: "Mon 10-11", DayOfWeek: 0, StartTime: "10:00", EndTime: "11:00", Active: true},
		},
		BatchSubjects: []models.BatchSubject{{BatchID: "b1", SubjectID: "s1"}},
	}
}

func finalize(t *testing.T, in *Input) *Input {
	t.Helper()
	_, err := in.Finalize()
	require.NoError(t, err)
	return in
}

func mustProfile(t *testing.T, facultyID string, prefs *models.AllPreferences) *FacultyProfile {
	t.Helper()
	p, err := NewFacultyProfile(facultyID, prefs)
	require.NoError(t, err)
	return p
}

func strPtr(s string) *string { return &s }

func TestFinalizeDerivesRequiredPairs(t *testing.T) {
	in := minimalInput()
	in.Batches = append(in.Batches, models.Batch{ID: "b2", Name: "CS-B", Size: 30})
	in.Subjects = append(in.Subjects, models.Subject{ID: "s2", Name: "Databases", Code: "CS302"})
	in.BatchSubjects = []models.BatchSubject{
		{BatchID: "b1", SubjectID: "s1"},
		{BatchID: "b1", SubjectID: "s1"},
		{BatchID: "b2", SubjectID: "s2"},
		{BatchID: "b2", SubjectID: "missing"},
		{BatchID: "ghost", SubjectID: "s1"},
	}
	finalize(t, in)

	require.Equal(t, []RequiredPair{
		{BatchID: "b1", SubjectID: "s1"},
		{BatchID: "b2", SubjectID: "s2"},
	}, in.RequiredPairs)
}

func TestFinalizeFallsBackToAllPairs(t *testing.T) {
	in := minimalInput()
	in.Batches = append(in.Batches, models.Batch{ID: "b2", Name: "CS-B", Size: 30})
	in.BatchSubjects = nil
	finalize(t, in)

	require.Len(t, in.RequiredPairs, 2)
	require.Contains(t, in.RequiredPairs, RequiredPair{BatchID: "b1", SubjectID: "s1"})
	require.Contains(t, in.RequiredPairs, RequiredPair{BatchID: "b2", SubjectID: "s1"})
}

func TestFinalizeRejectsInvertedSlot(t *testing.T) {
	in := minimalInput()
	in.TimeSlots[0].EndTime = "08:00"

	_, err := in.Finalize()
	require.Error(t, err)
	require.Contains(t, err.Error(), "t1")
}

func TestFinalizeRejectsBadDayIndex(t *testing.T) {
	in := minimalInput()
	in.TimeSlots[1].DayOfWeek = 7

	_, err := in.Finalize()
	require.Error(t, err)
}

func TestFinalizeInterpretsRoomTypeConstraint(t *testing.T) {
	in := minimalInput()
	lab := "rt-lab"
	in.Classrooms = append(in.Classrooms, models.Classroom{ID: "c2", Name: "Lab-1", Capacity: 45, RoomTypeID: &lab})
	in.Constraints = []models.SchedulingConstraint{{
		ID:            "con-1",
		Kind:          models.ConstraintHard,
		Scope:         models.ScopeSubject,
		TargetID:      strPtr("s1"),
		Configuration: map[string]interface{}{"required_room_type_id": lab},
		Weight:        10,
		Active:        true,
	}}
	warnings, err := in.Finalize()
	require.NoError(t, err)
	require.Empty(t, warnings)

	got, ok := in.RequiredRoomType("s1")
	require.True(t, ok)
	require.Equal(t, lab, got)
	require.Equal(t, []string{"c2"}, in.SuitableClassrooms("s1", 40))
}

func TestFinalizeWarnsOnUnknownConfiguration(t *testing.T) {
	in := minimalInput()
	in.Constraints = []models.SchedulingConstraint{
		{
			ID:            "con-odd",
			Kind:          models.ConstraintHard,
			Scope:         models.ScopeGlobal,
			Configuration: map[string]interface{}{"max_daily_sessions": 3},
			Weight:        5,
			Active:        true,
		},
		{
			ID:            "con-off",
			Kind:          models.ConstraintSoft,
			Scope:         models.ScopeGlobal,
			Configuration: map[string]interface{}{"preferred_time_slot_ids": []interface{}{"t1"}},
			Weight:        5,
			Active:        false,
		},
	}
	warnings, err := in.Finalize()
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	require.Contains(t, warnings[0], "con-odd")
	require.Empty(t, in.SoftRules())
}

func TestFinalizeBuildsSoftRules(t *testing.T) {
	in := minimalInput()
	in.Constraints = []models.SchedulingConstraint{{
		ID:            "con-pref",
		Kind:          models.ConstraintSoft,
		Scope:         models.ScopeFaculty,
		TargetID:      strPtr("f1"),
		Configuration: map[string]interface{}{"preferred_time_slot_ids": []interface{}{"t1"}},
		Weight:        7,
		Active:        true,
	}}
	warnings, err := in.Finalize()
	require.NoError(t, err)
	require.Empty(t, warnings)
	require.Len(t, in.SoftRules(), 1)

	bonus, unmet := in.SoftRuleTerms("b1", "s1", "f1", "c1", "t1")
	require.Equal(t, 7, bonus)
	require.Zero(t, unmet)

	bonus, unmet = in.SoftRuleTerms("b1", "s1", "f1", "c1", "t2")
	require.Zero(t, bonus)
	require.Equal(t, 1, unmet)

	bonus, unmet = in.SoftRuleTerms("b1", "s1", "f2", "c1", "t1")
	require.Zero(t, bonus)
	require.Zero(t, unmet)
}

func TestProfileAvailabilityPrecedence(t *testing.T) {
	p := mustProfile(t, "f1", &models.AllPreferences{
		FacultyID: "f1",
		Availability: []models.AvailabilitySlot{
			{DayOfWeek: "MONDAY", SlotCategory: "ANY", IsAvailable: true},
			{DayOfWeek: "MONDAY", SlotCategory: "MORNING", IsAvailable: false},
			{DayOfWeek: "FRIDAY", SlotCategory: "ANY", IsAvailable: false},
		},
	})

	require.False(t, p.Available(models.Monday, models.CategoryMorning))
	require.True(t, p.Available(models.Monday, models.CategoryAfternoon))
	require.False(t, p.Available(models.Friday, models.CategoryEvening))
	require.True(t, p.Available(models.Tuesday, models.CategoryMorning))
}

func TestQualifiedFacultyFallback(t *testing.T) {
	in := minimalInput()
	in.Faculty = append(in.Faculty, models.Faculty{ID: "f2", Name: "Dr. Iyer", Active: true})
	finalize(t, in)
	require.ElementsMatch(t, []string{"f1", "f2"}, in.QualifiedFaculty("s1"))

	in.Profiles = map[string]*FacultyProfile{
		"f2": mustProfile(t, "f2", &models.AllPreferences{
			FacultyID:        "f2",
			SubjectExpertise: []models.SubjectExpertise{{SubjectID: "s1", ExpertiseLevel: "EXPERT"}},
		}),
	}
	finalize(t, in)
	require.Equal(t, []string{"f2"}, in.QualifiedFaculty("s1"))
	require.True(t, in.IsQualified("f2", "s1"))
	require.False(t, in.IsQualified("f1", "s1"))
}

func TestClassroomFitsChecksCapacity(t *testing.T) {
	in := finalize(t, minimalInput())
	small := models.Classroom{ID: "c9", Name: "Sem-1", Capacity: 20}

	require.True(t, in.ClassroomFits("s1", &in.Classrooms[0], 40))
	require.False(t, in.ClassroomFits("s1", &small, 40))
	require.True(t, in.ClassroomFits("s1", &small, 15))
}

func TestNewFacultyProfileRejectsUnknownTags(t *testing.T) {
	_, err := NewFacultyProfile("f1", &models.AllPreferences{
		FacultyID:        "f1",
		SubjectExpertise: []models.SubjectExpertise{{SubjectID: "s1", ExpertiseLevel: "GURU"}},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "GURU")

	_, err = NewFacultyProfile("f1", &models.AllPreferences{
		FacultyID:    "f1",
		Availability: []models.AvailabilitySlot{{DayOfWeek: "Someday", SlotCategory: "ANY", IsAvailable: true}},
	})
	require.Error(t, err)
}
