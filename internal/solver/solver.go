package solver

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/siddharth786s1/Project-Intelligencia-Scheduler/internal/models"
	appErrors "github.com/siddharth786s1/Project-Intelligencia-Scheduler/pkg/errors"
)

// Algorithm names accepted on the wire.
const (
	AlgorithmCSP     = "csp"
	AlgorithmGenetic = "genetic"
)

// Default tuning applied when Params fields are left zero.
const (
	DefaultTimeLimit      = 60 * time.Second
	DefaultPopulationSize = 50
	DefaultGenerations    = 100
	DefaultMutationRate   = 0.10
	DefaultElitismRate    = 0.10
	DefaultTournamentSize = 5
)

// Params tunes a solver run. Zero fields fall back to engine defaults,
// so callers only set what they want to override.
type Params struct {
	// TimeLimit caps the search wall time for both engines. The
	// genetic engine keeps evolving until both the epoch count and
	// this limit are spent.
	TimeLimit time.Duration

	PopulationSize int
	Generations    int
	MutationRate   float64
	ElitismRate    float64
	TournamentSize int

	// Seed makes runs reproducible. Zero draws from the clock.
	Seed int64
}

func (p Params) withDefaults() Params {
	out := p
	if out.TimeLimit <= 0 {
		out.TimeLimit = DefaultTimeLimit
	}
	if out.PopulationSize <= 0 {
		out.PopulationSize = DefaultPopulationSize
	}
	if out.Generations <= 0 {
		out.Generations = DefaultGenerations
	}
	if out.MutationRate <= 0 || out.MutationRate > 1 {
		out.MutationRate = DefaultMutationRate
	}
	if out.ElitismRate <= 0 || out.ElitismRate >= 1 {
		out.ElitismRate = DefaultElitismRate
	}
	if out.TournamentSize <= 1 {
		out.TournamentSize = DefaultTournamentSize
	}
	if out.Seed == 0 {
		out.Seed = time.Now().UnixNano()
	}
	return out
}

// Status is a solver run outcome.
type Status string

// Run outcomes.
const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Placement is one concrete session assignment.
type Placement struct {
	BatchID        string
	SubjectID      string
	FacultyID      string
	ClassroomID    string
	TimeSlotID     string
	SoftViolations int
}

// Result is what a solver run produced. A failed result carries a
// message and no sessions; it is an outcome, not an error.
type Result struct {
	Status   Status
	Message  string
	Sessions []Placement
	Metrics  models.SolutionMetrics
}

// Algorithm produces a schedule from a finalized input.
type Algorithm interface {
	Name() string
	Solve(ctx context.Context, in *Input, params Params) (*Result, error)
}

// New returns the engine registered under the given name. An empty
// name selects the CSP engine.
func New(name string) (Algorithm, error) {
	switch name {
	case "", AlgorithmCSP:
		return &CSP{}, nil
	case AlgorithmGenetic:
		return &Genetic{}, nil
	}
	return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown algorithm %q", name))
}

// sortPlacements fixes the emitted session order so identical runs
// produce identical output.
func sortPlacements(placements []Placement) {
	sort.Slice(placements, func(i, j int) bool {
		a, b := placements[i], placements[j]
		if a.BatchID != b.BatchID {
			return a.BatchID < b.BatchID
		}
		if a.SubjectID != b.SubjectID {
			return a.SubjectID < b.SubjectID
		}
		if a.TimeSlotID != b.TimeSlotID {
			return a.TimeSlotID < b.TimeSlotID
		}
		if a.FacultyID != b.FacultyID {
			return a.FacultyID < b.FacultyID
		}
		return a.ClassroomID < b.ClassroomID
	})
}

// pairKey builds a composite map key from two ids.
func pairKey(a, b string) string { return a + "|" + b }

// minSolveBudget is the floor effectiveLimit hands the engines. A zero
// or negative budget would read as "no limit" downstream.
const minSolveBudget = 10 * time.Millisecond

// effectiveLimit trims a time budget to an approaching context
// deadline so a cancelled job does not keep burning CPU.
func effectiveLimit(ctx context.Context, limit time.Duration) time.Duration {
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < limit {
			if remaining < minSolveBudget {
				return minSolveBudget
			}
			return remaining
		}
	}
	return limit
}
