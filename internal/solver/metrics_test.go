package solver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/siddharth786s1/Project-Intelligencia-Scheduler/internal/models"
)

func TestEvaluateCleanSingleSession(t *testing.T) {
	in := finalize(t, minimalInput())
	placements := []Placement{{BatchID: "b1", SubjectID: "s1", FacultyID: "f1", ClassroomID: "c1", TimeSlotID: "t1"}}

	m := Evaluate(in, placements)
	require.Equal(t, 1, m.TotalSessions)
	require.Zero(t, m.HardConstraintViolations)
	require.Zero(t, m.SoftConstraintViolations)
	require.Equal(t, 100.0, m.BatchSatisfactionScore)
	require.Equal(t, 50.0, m.FacultySatisfactionScore)
	require.Equal(t, 50.0, m.RoomUtilization)
}

func TestHardViolationsDoubleBooking(t *testing.T) {
	in := minimalInput()
	in.Batches = append(in.Batches, models.Batch{ID: "b2", Name: "CS-B", Size: 30})
	in.Classrooms = append(in.Classrooms, models.Classroom{ID: "c2", Name: "LH-2", Capacity: 60})
	in.BatchSubjects = nil
	finalize(t, in)

	placements := []Placement{
		{BatchID: "b1", SubjectID: "s1", FacultyID: "f1", ClassroomID: "c1", TimeSlotID: "t1"},
		{BatchID: "b2", SubjectID: "s1", FacultyID: "f1", ClassroomID: "c2", TimeSlotID: "t1"},
	}
	require.Equal(t, 1, HardViolations(in, placements))

	placements[1].ClassroomID = "c1"
	require.Equal(t, 2, HardViolations(in, placements))

	placements[1].BatchID = "b1"
	require.Equal(t, 3, HardViolations(in, placements))
}

func TestHardViolationsUnavailableFaculty(t *testing.T) {
	in := minimalInput()
	in.Profiles = map[string]*FacultyProfile{
		"f1": mustProfile(t, "f1", &models.AllPreferences{
			FacultyID:    "f1",
			Availability: []models.AvailabilitySlot{{DayOfWeek: "MONDAY", SlotCategory: "MORNING", IsAvailable: false}},
		}),
	}
	finalize(t, in)

	placements := []Placement{{BatchID: "b1", SubjectID: "s1", FacultyID: "f1", ClassroomID: "c1", TimeSlotID: "t1"}}
	require.Equal(t, 1, HardViolations(in, placements))
}

func TestHardViolationsExpertiseMismatch(t *testing.T) {
	in := minimalInput()
	in.Faculty = append(in.Faculty, models.Faculty{ID: "f2", Name: "Dr. Iyer", Active: true})
	in.Profiles = map[string]*FacultyProfile{
		"f2": mustProfile(t, "f2", &models.AllPreferences{
			FacultyID:        "f2",
			SubjectExpertise: []models.SubjectExpertise{{SubjectID: "s1", ExpertiseLevel: "ADVANCED"}},
		}),
	}
	finalize(t, in)

	placements := []Placement{{BatchID: "b1", SubjectID: "s1", FacultyID: "f1", ClassroomID: "c1", TimeSlotID: "t1"}}
	require.Equal(t, 1, HardViolations(in, placements))

	placements[0].FacultyID = "f2"
	require.Zero(t, HardViolations(in, placements))
}

func TestFacultySatisfactionUsesRecordedScores(t *testing.T) {
	in := minimalInput()
	in.Profiles = map[string]*FacultyProfile{
		"f1": mustProfile(t, "f1", &models.AllPreferences{
			FacultyID:        "f1",
			SubjectExpertise: []models.SubjectExpertise{{SubjectID: "s1", ExpertiseLevel: "EXPERT"}},
		}),
	}
	finalize(t, in)

	placements := []Placement{{BatchID: "b1", SubjectID: "s1", FacultyID: "f1", ClassroomID: "c1", TimeSlotID: "t1"}}
	m := Evaluate(in, placements)
	require.Equal(t, 100.0, m.FacultySatisfactionScore)
}

func TestFacultySatisfactionBlendsRecordedScores(t *testing.T) {
	in := minimalInput()
	in.Profiles = map[string]*FacultyProfile{
		"f1": mustProfile(t, "f1", &models.AllPreferences{
			FacultyID:        "f1",
			SubjectExpertise: []models.SubjectExpertise{{SubjectID: "s1", ExpertiseLevel: "NOVICE"}},
			BatchPreferences: []models.BatchPreference{{BatchID: "b1", PreferenceLevel: "STRONGLY_PREFER"}},
		}),
	}
	finalize(t, in)

	placements := []Placement{{BatchID: "b1", SubjectID: "s1", FacultyID: "f1", ClassroomID: "c1", TimeSlotID: "t1"}}
	m := Evaluate(in, placements)

	// mean of (1, 2) is 1.5, scaled: (1.5+2)*100/7
	require.InDelta(t, 50.0, m.FacultySatisfactionScore, 0.01)
}

func TestBatchSatisfactionPartialCoverage(t *testing.T) {
	in := minimalInput()
	in.Batches = append(in.Batches, models.Batch{ID: "b2", Name: "CS-B", Size: 30})
	in.BatchSubjects = []models.BatchSubject{
		{BatchID: "b1", SubjectID: "s1"},
		{BatchID: "b2", SubjectID: "s1"},
	}
	finalize(t, in)

	placements := []Placement{{BatchID: "b1", SubjectID: "s1", FacultyID: "f1", ClassroomID: "c1", TimeSlotID: "t1"}}
	m := Evaluate(in, placements)
	require.Equal(t, 50.0, m.BatchSatisfactionScore)
}

func TestRoomUtilizationCountsUniqueCells(t *testing.T) {
	in := minimalInput()
	in.Classrooms = append(in.Classrooms, models.Classroom{ID: "c2", Name: "LH-2", Capacity: 60})
	finalize(t, in)

	// four cells total, two distinct occupied
	placements := []Placement{
		{BatchID: "b1", SubjectID: "s1", FacultyID: "f1", ClassroomID: "c1", TimeSlotID: "t1"},
		{BatchID: "b1", SubjectID: "s1", FacultyID: "f1", ClassroomID: "c2", TimeSlotID: "t2"},
	}
	require.Equal(t, 50.0, roomUtilization(in, placements))

	placements[1].ClassroomID = "c1"
	placements[1].TimeSlotID = "t1"
	require.Equal(t, 25.0, roomUtilization(in, placements))
}

func TestCountSoftViolationsPerPlacement(t *testing.T) {
	in := minimalInput()
	in.Profiles = map[string]*FacultyProfile{
		"f1": mustProfile(t, "f1", &models.AllPreferences{
			FacultyID:            "f1",
			SubjectExpertise:     []models.SubjectExpertise{{SubjectID: "s1", ExpertiseLevel: "NOVICE"}},
			BatchPreferences:     []models.BatchPreference{{BatchID: "b1", PreferenceLevel: "DISLIKE"}},
			ClassroomPreferences: []models.ClassroomPreference{{ClassroomID: "c1", PreferenceLevel: "STRONGLY_DISLIKE"}},
		}),
	}
	in.Constraints = []models.SchedulingConstraint{{
		ID:            "con-pref",
		Kind:          models.ConstraintSoft,
		Scope:         models.ScopeBatch,
		TargetID:      strPtr("b1"),
		Configuration: map[string]interface{}{"preferred_time_slot_ids": []interface{}{"t2"}},
		Weight:        4,
		Active:        true,
	}}
	finalize(t, in)

	p := Placement{BatchID: "b1", SubjectID: "s1", FacultyID: "f1", ClassroomID: "c1", TimeSlotID: "t1"}
	require.Equal(t, 4, CountSoftViolations(in, p))

	p.TimeSlotID = "t2"
	require.Equal(t, 3, CountSoftViolations(in, p))
}
