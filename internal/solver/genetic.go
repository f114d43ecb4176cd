package solver

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"
)

// Genetic evolves candidate timetables with tournament selection,
// uniform crossover, per-gene mutation and a collision repair pass.
// Candidates always cover every required pair; the final schedule is
// the conflict-free subset of the best candidate.
type Genetic struct{}

// Name implements Algorithm.
func (g *Genetic) Name() string { return AlgorithmGenetic }

// gene assigns one required pair a faculty, classroom and slot.
type gene struct {
	pair        RequiredPair
	facultyID   string
	classroomID string
	slotID      string
}

type chromosome struct {
	genes     []gene
	fitness   float64
	evaluated bool
}

type gaRun struct {
	in     *Input
	rng    *rand.Rand
	params Params

	facultyPool map[string][]string
	roomPool    map[RequiredPair][]string
	slotIDs     []string
}

// Solve implements Algorithm.
func (g *Genetic) Solve(ctx context.Context, in *Input, params Params) (*Result, error) {
	params = params.withDefaults()

	run := &gaRun{
		in:          in,
		rng:         rand.New(rand.NewSource(params.Seed)),
		params:      params,
		facultyPool: make(map[string][]string, len(in.Subjects)),
		roomPool:    make(map[RequiredPair][]string, len(in.RequiredPairs)),
		slotIDs:     make([]string, len(in.TimeSlots)),
	}
	for i := range in.TimeSlots {
		run.slotIDs[i] = in.TimeSlots[i].ID
	}
	if len(run.slotIDs) == 0 {
		return failedResult(in, "no time slots to schedule into"), nil
	}

	for _, pair := range in.RequiredPairs {
		if _, ok := run.facultyPool[pair.SubjectID]; !ok {
			pool := in.QualifiedFaculty(pair.SubjectID)
			if len(pool) == 0 {
				return failedResult(in, fmt.Sprintf("no faculty can teach subject %s", pair.SubjectID)), nil
			}
			run.facultyPool[pair.SubjectID] = pool
		}
		batch := in.Batch(pair.BatchID)
		if batch == nil {
			return failedResult(in, fmt.Sprintf("unknown batch %s in required pairs", pair.BatchID)), nil
		}
		rooms := in.SuitableClassrooms(pair.SubjectID, batch.Size)
		if len(rooms) == 0 {
			return failedResult(in, fmt.Sprintf("no classroom fits batch %s for subject %s", pair.BatchID, pair.SubjectID)), nil
		}
		run.roomPool[pair] = rooms
	}

	population := make([]*chromosome, params.PopulationSize)
	for i := range population {
		population[i] = run.randomChromosome()
		run.repair(population[i])
	}

	limit := effectiveLimit(ctx, params.TimeLimit)
	start := time.Now()
	for epoch := 0; epoch < params.Generations || time.Since(start) < limit; epoch++ {
		if ctx.Err() != nil {
			break
		}
		population = run.nextGeneration(population)
	}

	run.sortByFitness(population)
	best := population[0]

	placements := run.extract(best)
	if len(placements) == 0 && len(in.RequiredPairs) > 0 {
		return failedResult(in, "genetic search found no conflict-free sessions; check faculty availability and constraint set"), nil
	}
	sortPlacements(placements)

	return &Result{
		Status:   StatusSuccess,
		Sessions: placements,
		Metrics:  Evaluate(in, placements),
	}, nil
}

func failedResult(in *Input, message string) *Result {
	result := &Result{Status: StatusFailed, Message: message}
	for _, c := range in.Constraints {
		if c.Active {
			result.Metrics.HardConstraintViolations++
		}
	}
	return result
}

func (r *gaRun) randomChromosome() *chromosome {
	genes := make([]gene, len(r.in.RequiredPairs))
	for i, pair := range r.in.RequiredPairs {
		faculty := r.facultyPool[pair.SubjectID]
		rooms := r.roomPool[pair]
		genes[i] = gene{
			pair:        pair,
			facultyID:   faculty[r.rng.Intn(len(faculty))],
			classroomID: rooms[r.rng.Intn(len(rooms))],
			slotID:      r.slotIDs[r.rng.Intn(len(r.slotIDs))],
		}
	}
	return &chromosome{genes: genes}
}

func (r *gaRun) nextGeneration(population []*chromosome) []*chromosome {
	r.sortByFitness(population)

	elite := int(r.params.ElitismRate * float64(len(population)))
	if elite >= len(population) {
		elite = len(population) - 1
	}
	next := make([]*chromosome, 0, len(population))
	for i := 0; i < elite; i++ {
		next = append(next, population[i].clone())
	}

	for len(next) < len(population) {
		p1 := r.tournament(population)
		p2 := r.tournament(population)
		child := r.crossover(p1, p2)
		r.mutate(child)
		r.repair(child)
		next = append(next, child)
	}
	return next
}

func (r *gaRun) sortByFitness(population []*chromosome) {
	for _, ch := range population {
		r.evaluate(ch)
	}
	sort.SliceStable(population, func(i, j int) bool {
		return population[i].fitness > population[j].fitness
	})
}

// evaluate scores a candidate. Any conflict drives the score steeply
// negative; clean candidates blend faculty satisfaction, coverage and
// room utilisation.
func (r *gaRun) evaluate(ch *chromosome) {
	if ch.evaluated {
		return
	}
	metrics := Evaluate(r.in, r.placements(ch))
	if metrics.HardConstraintViolations > 0 {
		ch.fitness = -1000 * float64(metrics.HardConstraintViolations)
	} else {
		ch.fitness = 0.4*metrics.FacultySatisfactionScore +
			0.4*metrics.BatchSatisfactionScore +
			0.2*metrics.RoomUtilization
	}
	ch.evaluated = true
}

func (r *gaRun) placements(ch *chromosome) []Placement {
	out := make([]Placement, len(ch.genes))
	for i, g := range ch.genes {
		out[i] = Placement{
			BatchID:     g.pair.BatchID,
			SubjectID:   g.pair.SubjectID,
			FacultyID:   g.facultyID,
			ClassroomID: g.classroomID,
			TimeSlotID:  g.slotID,
		}
	}
	return out
}

// tournament picks the fittest of a few randomly sampled candidates.
func (r *gaRun) tournament(population []*chromosome) *chromosome {
	best := population[r.rng.Intn(len(population))]
	for i := 1; i < r.params.TournamentSize; i++ {
		contender := population[r.rng.Intn(len(population))]
		if contender.fitness > best.fitness {
			best = contender
		}
	}
	return best
}

// crossover merges two parents gene by gene. Both parents carry a gene
// for every required pair, so each position is a coin flip.
func (r *gaRun) crossover(p1, p2 *chromosome) *chromosome {
	genes := make([]gene, len(p1.genes))
	for i := range genes {
		if r.rng.Intn(2) == 0 {
			genes[i] = p1.genes[i]
		} else {
			genes[i] = p2.genes[i]
		}
	}
	return &chromosome{genes: genes}
}

// mutate reassigns one attribute of a gene at the configured rate,
// drawing replacements from the same legal pools used at build time.
func (r *gaRun) mutate(ch *chromosome) {
	for i := range ch.genes {
		if r.rng.Float64() >= r.params.MutationRate {
			continue
		}
		g := &ch.genes[i]
		switch r.rng.Intn(3) {
		case 0:
			g.slotID = r.slotIDs[r.rng.Intn(len(r.slotIDs))]
		case 1:
			pool := r.facultyPool[g.pair.SubjectID]
			g.facultyID = pool[r.rng.Intn(len(pool))]
		case 2:
			pool := r.roomPool[g.pair]
			g.classroomID = pool[r.rng.Intn(len(pool))]
		}
		ch.evaluated = false
	}
}

// repair resolves double bookings in three passes. Faculty clashes
// move the later gene to the first free slot, classroom clashes swap
// in a free room from the pool, batch clashes move the slot again.
// Passes run in that order; residual conflicts cost fitness instead.
func (r *gaRun) repair(ch *chromosome) {
	used := make(map[string]bool, len(ch.genes))
	for i := range ch.genes {
		g := &ch.genes[i]
		key := pairKey(g.facultyID, g.slotID)
		if !used[key] {
			used[key] = true
			continue
		}
		for _, slotID := range r.slotIDs {
			if !used[pairKey(g.facultyID, slotID)] {
				g.slotID = slotID
				break
			}
		}
		used[pairKey(g.facultyID, g.slotID)] = true
		ch.evaluated = false
	}

	used = make(map[string]bool, len(ch.genes))
	for i := range ch.genes {
		g := &ch.genes[i]
		key := pairKey(g.classroomID, g.slotID)
		if !used[key] {
			used[key] = true
			continue
		}
		for _, roomID := range r.roomPool[g.pair] {
			if !used[pairKey(roomID, g.slotID)] {
				g.classroomID = roomID
				break
			}
		}
		used[pairKey(g.classroomID, g.slotID)] = true
		ch.evaluated = false
	}

	used = make(map[string]bool, len(ch.genes))
	for i := range ch.genes {
		g := &ch.genes[i]
		key := pairKey(g.pair.BatchID, g.slotID)
		if !used[key] {
			used[key] = true
			continue
		}
		for _, slotID := range r.slotIDs {
			if !used[pairKey(g.pair.BatchID, slotID)] {
				g.slotID = slotID
				break
			}
		}
		used[pairKey(g.pair.BatchID, g.slotID)] = true
		ch.evaluated = false
	}
}

// extract walks the best candidate in gene order and keeps every
// session that stays conflict-free against those already kept. What
// gets dropped shows up as reduced batch satisfaction.
func (r *gaRun) extract(ch *chromosome) []Placement {
	usedFaculty := make(map[string]bool, len(ch.genes))
	usedRoom := make(map[string]bool, len(ch.genes))
	usedBatch := make(map[string]bool, len(ch.genes))

	var kept []Placement
	for _, g := range ch.genes {
		if !r.in.FacultyAvailable(g.facultyID, g.slotID) {
			continue
		}
		fk := pairKey(g.facultyID, g.slotID)
		ck := pairKey(g.classroomID, g.slotID)
		bk := pairKey(g.pair.BatchID, g.slotID)
		if usedFaculty[fk] || usedRoom[ck] || usedBatch[bk] {
			continue
		}
		usedFaculty[fk] = true
		usedRoom[ck] = true
		usedBatch[bk] = true

		p := Placement{
			BatchID:     g.pair.BatchID,
			SubjectID:   g.pair.SubjectID,
			FacultyID:   g.facultyID,
			ClassroomID: g.classroomID,
			TimeSlotID:  g.slotID,
		}
		p.SoftViolations = CountSoftViolations(r.in, p)
		kept = append(kept, p)
	}
	return kept
}

func (ch *chromosome) clone() *chromosome {
	return &chromosome{
		genes:     append([]gene(nil), ch.genes...),
		fitness:   ch.fitness,
		evaluated: ch.evaluated,
	}
}
