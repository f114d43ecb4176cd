package solver

import (
	"math"

	"github.com/siddharth786s1/Project-Intelligencia-Scheduler/internal/models"
)

// Evaluate computes the quality metrics for a set of placements
// against the input they were solved from.
func Evaluate(in *Input, placements []Placement) models.SolutionMetrics {
	soft := 0
	for i := range placements {
		soft += CountSoftViolations(in, placements[i])
	}
	return models.SolutionMetrics{
		TotalSessions:            len(placements),
		HardConstraintViolations: HardViolations(in, placements),
		SoftConstraintViolations: soft,
		FacultySatisfactionScore: round2(facultySatisfaction(in, placements)),
		BatchSatisfactionScore:   round2(batchSatisfaction(in, placements)),
		RoomUtilization:          round2(roomUtilization(in, placements)),
	}
}

// HardViolations counts conflicts among the given placements: double
// bookings of a faculty, classroom or batch in one slot, placements on
// slots the faculty is unavailable for, and faculty teaching subjects
// outside their pool. Coverage gaps show up in batch satisfaction
// instead, so a thinned-out schedule is not double-penalised.
func HardViolations(in *Input, placements []Placement) int {
	violations := 0

	facultySlot := make(map[string]int)
	roomSlot := make(map[string]int)
	batchSlot := make(map[string]int)
	for i := range placements {
		p := &placements[i]
		facultySlot[pairKey(p.FacultyID, p.TimeSlotID)]++
		roomSlot[pairKey(p.ClassroomID, p.TimeSlotID)]++
		batchSlot[pairKey(p.BatchID, p.TimeSlotID)]++
	}
	for _, n := range facultySlot {
		if n > 1 {
			violations += n - 1
		}
	}
	for _, n := range roomSlot {
		if n > 1 {
			violations += n - 1
		}
	}
	for _, n := range batchSlot {
		if n > 1 {
			violations += n - 1
		}
	}

	for i := range placements {
		p := &placements[i]
		if !in.FacultyAvailable(p.FacultyID, p.TimeSlotID) {
			violations++
		}
		if !in.IsQualified(p.FacultyID, p.SubjectID) {
			violations++
		}
	}
	return violations
}

// CountSoftViolations counts the preference misses of one placement:
// below-par expertise, a negative batch or classroom appetite, and
// every applicable soft rule the placement leaves unmet.
func CountSoftViolations(in *Input, p Placement) int {
	profile := in.Profile(p.FacultyID)
	count := 0
	if profile.Expertise(p.SubjectID) < models.ExpertiseDefault {
		count++
	}
	if profile.BatchPreference(p.BatchID) < 0 {
		count++
	}
	if profile.ClassroomPreference(p.ClassroomID) < 0 {
		count++
	}
	_, unmet := in.SoftRuleTerms(p.BatchID, p.SubjectID, p.FacultyID, p.ClassroomID, p.TimeSlotID)
	return count + unmet
}

// facultySatisfaction averages each faculty member's recorded scores
// over their placements, averages those means, and maps the -2..5
// score range onto 0..100. Only recorded preferences count; with no
// recorded data anywhere the score is a neutral 50.
func facultySatisfaction(in *Input, placements []Placement) float64 {
	perFaculty := make(map[string][]float64)
	for i := range placements {
		p := &placements[i]
		profile := in.Profile(p.FacultyID)
		if score, ok := profile.RecordedExpertise(p.SubjectID); ok {
			perFaculty[p.FacultyID] = append(perFaculty[p.FacultyID], float64(score))
		}
		if score, ok := profile.RecordedBatchPreference(p.BatchID); ok {
			perFaculty[p.FacultyID] = append(perFaculty[p.FacultyID], float64(score))
		}
		if score, ok := profile.RecordedClassroomPreference(p.ClassroomID); ok {
			perFaculty[p.FacultyID] = append(perFaculty[p.FacultyID], float64(score))
		}
	}
	if len(perFaculty) == 0 {
		return 50.0
	}

	total := 0.0
	for _, scores := range perFaculty {
		sum := 0.0
		for _, s := range scores {
			sum += s
		}
		total += sum / float64(len(scores))
	}
	mean := total / float64(len(perFaculty))

	scaled := (mean + 2) * 100 / 7
	if scaled < 0 {
		return 0
	}
	if scaled > 100 {
		return 100
	}
	return scaled
}

// batchSatisfaction is the share of required batch-subject pairs that
// received at least one session.
func batchSatisfaction(in *Input, placements []Placement) float64 {
	if len(in.RequiredPairs) == 0 {
		return 100.0
	}
	covered := make(map[RequiredPair]struct{}, len(placements))
	for i := range placements {
		covered[RequiredPair{BatchID: placements[i].BatchID, SubjectID: placements[i].SubjectID}] = struct{}{}
	}
	met := 0
	for _, pair := range in.RequiredPairs {
		if _, ok := covered[pair]; ok {
			met++
		}
	}
	return float64(met) / float64(len(in.RequiredPairs)) * 100
}

// roomUtilization is the share of distinct (classroom, slot) cells the
// schedule occupies out of all cells available.
func roomUtilization(in *Input, placements []Placement) float64 {
	cells := len(in.Classrooms) * len(in.TimeSlots)
	if cells == 0 {
		return 0
	}
	used := make(map[string]struct{}, len(placements))
	for i := range placements {
		used[pairKey(placements[i].ClassroomID, placements[i].TimeSlotID)] = struct{}{}
	}
	return float64(len(used)) / float64(cells) * 100
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
