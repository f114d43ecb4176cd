package solver

import (
	"context"
	"fmt"

	"github.com/siddharth786s1/Project-Intelligencia-Scheduler/pkg/cpsolver"
)

// CSP models the timetable as boolean placement variables under
// exclusivity and coverage constraints and maximises total preference
// weight. It either proves a conflict-free schedule or reports that
// none exists within the budget.
type CSP struct{}

// Name implements Algorithm.
func (s *CSP) Name() string { return AlgorithmCSP }

// candidate ties one pruned (batch, subject, faculty, classroom, slot)
// tuple to its model variable.
type candidate struct {
	pair        RequiredPair
	facultyID   string
	classroomID string
	slotID      string
	v           cpsolver.Var
}

// Solve implements Algorithm.
func (s *CSP) Solve(ctx context.Context, in *Input, params Params) (*Result, error) {
	params = params.withDefaults()

	model := cpsolver.NewModel()
	var candidates []candidate
	var objective []cpsolver.Term
	facultySlot := make(map[string][]cpsolver.Var)
	roomSlot := make(map[string][]cpsolver.Var)
	batchSlot := make(map[string][]cpsolver.Var)
	coverage := make(map[RequiredPair][]cpsolver.Var)

	for _, pair := range in.RequiredPairs {
		batch := in.Batch(pair.BatchID)
		if batch == nil {
			continue
		}
		for _, facultyID := range in.QualifiedFaculty(pair.SubjectID) {
			profile := in.Profile(facultyID)
			for slotIdx := range in.TimeSlots {
				slot := &in.TimeSlots[slotIdx]
				available := in.FacultyAvailable(facultyID, slot.ID)
				for roomIdx := range in.Classrooms {
					room := &in.Classrooms[roomIdx]
					if !in.ClassroomFits(pair.SubjectID, room, batch.Size) {
						continue
					}

					v := model.NewBoolVar()
					candidates = append(candidates, candidate{
						pair:        pair,
						facultyID:   facultyID,
						classroomID: room.ID,
						slotID:      slot.ID,
						v:           v,
					})
					facultySlot[pairKey(facultyID, slot.ID)] = append(facultySlot[pairKey(facultyID, slot.ID)], v)
					roomSlot[pairKey(room.ID, slot.ID)] = append(roomSlot[pairKey(room.ID, slot.ID)], v)
					batchSlot[pairKey(pair.BatchID, slot.ID)] = append(batchSlot[pairKey(pair.BatchID, slot.ID)], v)
					coverage[pair] = append(coverage[pair], v)

					if !available {
						model.Fix(v, 0)
						continue
					}

					weight := profile.Expertise(pair.SubjectID) +
						profile.BatchPreference(pair.BatchID) +
						profile.ClassroomPreference(room.ID)
					bonus, _ := in.SoftRuleTerms(pair.BatchID, pair.SubjectID, facultyID, room.ID, slot.ID)
					weight += bonus
					if weight != 0 {
						objective = append(objective, cpsolver.Term{Var: v, Coef: weight})
					}
				}
			}
		}
	}

	for _, group := range facultySlot {
		if len(group) > 1 {
			model.AddAtMostOne(group...)
		}
	}
	for _, group := range roomSlot {
		if len(group) > 1 {
			model.AddAtMostOne(group...)
		}
	}
	for _, group := range batchSlot {
		if len(group) > 1 {
			model.AddAtMostOne(group...)
		}
	}
	// one session per required pair; at-least-one would let the
	// maximizer schedule the pair into every free slot
	for _, pair := range in.RequiredPairs {
		model.AddExactlyOne(coverage[pair]...)
	}
	model.Maximize(objective)

	solution := cpsolver.Solve(model, cpsolver.Options{
		TimeLimit: effectiveLimit(ctx, params.TimeLimit),
		Seed:      params.Seed,
	})

	if solution.Status != cpsolver.StatusOptimal && solution.Status != cpsolver.StatusFeasible {
		message := fmt.Sprintf("no feasible schedule found (solver status: %s); check faculty availability and constraint set", solution.Status)
		return failedResult(in, message), nil
	}

	var placements []Placement
	for i := range candidates {
		c := &candidates[i]
		if solution.Value(c.v) != 1 {
			continue
		}
		p := Placement{
			BatchID:     c.pair.BatchID,
			SubjectID:   c.pair.SubjectID,
			FacultyID:   c.facultyID,
			ClassroomID: c.classroomID,
			TimeSlotID:  c.slotID,
		}
		p.SoftViolations = CountSoftViolations(in, p)
		placements = append(placements, p)
	}
	sortPlacements(placements)

	return &Result{
		Status:   StatusSuccess,
		Sessions: placements,
		Metrics:  Evaluate(in, placements),
	}, nil
}
