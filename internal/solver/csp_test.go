package solver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/siddharth786s1/Project-Intelligencia-Scheduler/internal/models"
)

func testParams() Params {
	return Params{TimeLimit: 5 * time.Second, Seed: 42}
}

func TestCSPSolveMinimal(t *testing.T) {
	in := finalize(t, minimalInput())

	res, err := (&CSP{}).Solve(context.Background(), in, testParams())
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, res.Status)
	require.Len(t, res.Sessions, 1)

	s := res.Sessions[0]
	require.Equal(t, "b1", s.BatchID)
	require.Equal(t, "s1", s.SubjectID)
	require.Equal(t, "f1", s.FacultyID)
	require.Equal(t, "c1", s.ClassroomID)
	require.Contains(t, []string{"t1", "t2"}, s.TimeSlotID)

	require.Zero(t, res.Metrics.HardConstraintViolations)
	require.Equal(t, 100.0, res.Metrics.BatchSatisfactionScore)
	require.Equal(t, 1, res.Metrics.TotalSessions)
}

func TestCSPUnavailableEverywhereFails(t *testing.T) {
	in := minimalInput()
	in.Profiles = map[string]*FacultyProfile{
		"f1": mustProfile(t, "f1", &models.AllPreferences{
			FacultyID:    "f1",
			Availability: []models.AvailabilitySlot{{DayOfWeek: "MONDAY", SlotCategory: "ANY", IsAvailable: false}},
		}),
	}
	finalize(t, in)

	res, err := (&CSP{}).Solve(context.Background(), in, testParams())
	require.NoError(t, err)
	require.Equal(t, StatusFailed, res.Status)
	require.Empty(t, res.Sessions)
	require.Contains(t, res.Message, "feasible")
}

func TestCSPInfeasibleReportsConstraintCount(t *testing.T) {
	in := minimalInput()
	in.Constraints = []models.SchedulingConstraint{
		{
			ID:            "con-lab",
			Kind:          models.ConstraintHard,
			Scope:         models.ScopeSubject,
			TargetID:      strPtr("s1"),
			Configuration: map[string]interface{}{"required_room_type_id": "rt-lab"},
			Weight:        10,
			Active:        true,
		},
		{
			ID:            "con-off",
			Kind:          models.ConstraintSoft,
			Scope:         models.ScopeBatch,
			TargetID:      strPtr("b1"),
			Configuration: map[string]interface{}{"preferred_time_slot_ids": []interface{}{"t1"}},
			Weight:        5,
			Active:        false,
		},
	}
	finalize(t, in)

	res, err := (&CSP{}).Solve(context.Background(), in, testParams())
	require.NoError(t, err)
	require.Equal(t, StatusFailed, res.Status)
	// inactive rows do not count
	require.Equal(t, 1, res.Metrics.HardConstraintViolations)
}

func TestCSPSchedulesEachPairExactlyOnce(t *testing.T) {
	// plenty of free slots and rooms, every candidate carries positive
	// weight; the pair must still land in a single session
	in := minimalInput()
	in.Classrooms = append(in.Classrooms, models.Classroom{ID: "c2", Name: "LH-2", Capacity: 55})
	in.TimeSlots = append(in.TimeSlots,
		models.TimeSlot{ID: "t3", Name: "Tue 09-10", DayOfWeek: 1, StartTime: "09:00", EndTime: "10:00", Active: true},
		models.TimeSlot{ID: "t4", Name: "Tue 10-11", DayOfWeek: 1, StartTime: "10:00", EndTime: "11:00", Active: true},
	)
	finalize(t, in)

	res, err := (&CSP{}).Solve(context.Background(), in, testParams())
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, res.Status)
	require.Len(t, res.Sessions, 1)
}

func TestCSPSchedulesBatchesIntoDistinctSlots(t *testing.T) {
	in := minimalInput()
	in.Batches = append(in.Batches, models.Batch{ID: "b2", Name: "CS-B", Size: 35})
	in.BatchSubjects = []models.BatchSubject{
		{BatchID: "b1", SubjectID: "s1"},
		{BatchID: "b2", SubjectID: "s1"},
	}
	finalize(t, in)

	res, err := (&CSP{}).Solve(context.Background(), in, testParams())
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, res.Status)
	require.Len(t, res.Sessions, 2)
	require.NotEqual(t, res.Sessions[0].TimeSlotID, res.Sessions[1].TimeSlotID)
	require.Zero(t, res.Metrics.HardConstraintViolations)
	require.Equal(t, 100.0, res.Metrics.BatchSatisfactionScore)
}

func TestCSPPrefersExpertFaculty(t *testing.T) {
	in := minimalInput()
	in.Faculty = append(in.Faculty, models.Faculty{ID: "f2", Name: "Dr. Iyer", Active: true})
	in.Profiles = map[string]*FacultyProfile{
		"f1": mustProfile(t, "f1", &models.AllPreferences{
			FacultyID:        "f1",
			SubjectExpertise: []models.SubjectExpertise{{SubjectID: "s1", ExpertiseLevel: "NOVICE"}},
		}),
		"f2": mustProfile(t, "f2", &models.AllPreferences{
			FacultyID:        "f2",
			SubjectExpertise: []models.SubjectExpertise{{SubjectID: "s1", ExpertiseLevel: "EXPERT"}},
		}),
	}
	finalize(t, in)

	res, err := (&CSP{}).Solve(context.Background(), in, testParams())
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, res.Status)
	require.Len(t, res.Sessions, 1)
	require.Equal(t, "f2", res.Sessions[0].FacultyID)
}

func TestCSPSoftRulePullsSlot(t *testing.T) {
	in := minimalInput()
	in.Constraints = []models.SchedulingConstraint{{
		ID:            "con-pref",
		Kind:          models.ConstraintSoft,
		Scope:         models.ScopeBatch,
		TargetID:      strPtr("b1"),
		Configuration: map[string]interface{}{"preferred_time_slot_ids": []interface{}{"t2"}},
		Weight:        10,
		Active:        true,
	}}
	finalize(t, in)

	res, err := (&CSP{}).Solve(context.Background(), in, testParams())
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, res.Status)
	require.Len(t, res.Sessions, 1)
	require.Equal(t, "t2", res.Sessions[0].TimeSlotID)
	require.Zero(t, res.Sessions[0].SoftViolations)
}

func TestCSPHonoursRoomCapacity(t *testing.T) {
	in := minimalInput()
	in.Batches[0].Size = 80
	in.Classrooms = append(in.Classrooms, models.Classroom{ID: "c2", Name: "Aud-1", Capacity: 120})
	finalize(t, in)

	res, err := (&CSP{}).Solve(context.Background(), in, testParams())
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, res.Status)
	require.Len(t, res.Sessions, 1)
	require.Equal(t, "c2", res.Sessions[0].ClassroomID)
}

func TestCSPDeterministicForSeed(t *testing.T) {
	build := func() *Input {
		in := minimalInput()
		in.Faculty = append(in.Faculty, models.Faculty{ID: "f2", Name: "Dr. Iyer", Active: true})
		in.Batches = append(in.Batches, models.Batch{ID: "b2", Name: "CS-B", Size: 30})
		in.Classrooms = append(in.Classrooms, models.Classroom{ID: "c2", Name: "LH-2", Capacity: 70})
		in.BatchSubjects = nil
		return finalize(t, in)
	}
	params := Params{TimeLimit: 5 * time.Second, Seed: 7}

	first, err := (&CSP{}).Solve(context.Background(), build(), params)
	require.NoError(t, err)
	second, err := (&CSP{}).Solve(context.Background(), build(), params)
	require.NoError(t, err)

	require.Equal(t, first.Status, second.Status)
	require.Equal(t, first.Sessions, second.Sessions)
	require.Equal(t, first.Metrics, second.Metrics)
}
