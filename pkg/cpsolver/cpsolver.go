// Package cpsolver provides a small constraint solver over boolean
// variables with integer linear constraints and a linear maximization
// objective. It covers the model shapes timetabling needs: at-most-one,
// at-least-one and exactly-one groups, pinned variables and weighted
// preference sums, solved by depth-first branch and bound with unit
// propagation.
package cpsolver

import (
	"math/rand"
	"sort"
	"time"
)

// Var identifies a boolean variable within a Model.
type Var int

// Term pairs a variable with an integer coefficient.
type Term struct {
	Var  Var
	Coef int
}

type linear struct {
	terms  []Term
	lo, hi int
}

// Model accumulates variables, constraints and the objective.
type Model struct {
	numVars     int
	constraints []linear
	fixed       map[Var]int
	objective   []Term
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{fixed: make(map[Var]int)}
}

// NewBoolVar adds a boolean variable and returns its handle.
func (m *Model) NewBoolVar() Var {
	v := Var(m.numVars)
	m.numVars++
	return v
}

// NumVars reports how many variables the model holds.
func (m *Model) NumVars() int { return m.numVars }

// AddLinear constrains lo <= sum(coef*var) <= hi.
func (m *Model) AddLinear(terms []Term, lo, hi int) {
	cp := make([]Term, len(terms))
	copy(cp, terms)
	m.constraints = append(m.constraints, linear{terms: cp, lo: lo, hi: hi})
}

// AddAtMostOne constrains the variables so at most one is true.
func (m *Model) AddAtMostOne(vars ...Var) {
	m.AddLinear(unitTerms(vars), 0, 1)
}

// AddAtLeastOne constrains the variables so at least one is true.
func (m *Model) AddAtLeastOne(vars ...Var) {
	m.AddLinear(unitTerms(vars), 1, len(vars))
}

// AddExactlyOne constrains the variables so exactly one is true.
func (m *Model) AddExactlyOne(vars ...Var) {
	m.AddLinear(unitTerms(vars), 1, 1)
}

// Fix pins a variable to a value before solving.
func (m *Model) Fix(v Var, value int) {
	m.fixed[v] = value
}

// Maximize sets the objective to maximize sum(coef*var).
func (m *Model) Maximize(terms []Term) {
	m.objective = append([]Term(nil), terms...)
}

func unitTerms(vars []Var) []Term {
	terms := make([]Term, len(vars))
	for i, v := range vars {
		terms[i] = Term{Var: v, Coef: 1}
	}
	return terms
}

// Status reports the outcome of a solve.
type Status int

const (
	StatusUnknown Status = iota
	StatusOptimal
	StatusFeasible
	StatusInfeasible
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "OPTIMAL"
	case StatusFeasible:
		return "FEASIBLE"
	case StatusInfeasible:
		return "INFEASIBLE"
	default:
		return "UNKNOWN"
	}
}

// Options tunes a solve run.
type Options struct {
	// TimeLimit bounds wall-clock search time. Zero means no limit.
	TimeLimit time.Duration
	// Seed orders equally weighted variables. The same seed on the
	// same model yields the same solution.
	Seed int64
}

// Solution carries the best assignment found.
type Solution struct {
	Status    Status
	Objective int
	values    []int8
}

// Value returns the solved value of a variable, 0 when unsolved.
func (s Solution) Value(v Var) int {
	if s.values == nil || int(v) >= len(s.values) || s.values[v] < 0 {
		return 0
	}
	return int(s.values[v])
}

type solver struct {
	model   *Model
	values  []int8
	varCons [][]int
	objCoef []int

	conSum []int
	conPos []int
	conNeg []int

	order    []Var
	trail    []Var
	queue    []pending
	deadline time.Time
	timedOut bool
	nodes    int

	currentObj int
	potential  int

	best    []int8
	bestObj int
	hasBest bool
}

type pending struct {
	v   Var
	val int8
}

// Solve searches the model for a maximal assignment.
func Solve(m *Model, opts Options) Solution {
	s := &solver{
		model:   m,
		values:  make([]int8, m.numVars),
		varCons: make([][]int, m.numVars),
		objCoef: make([]int, m.numVars),
		conSum:  make([]int, len(m.constraints)),
		conPos:  make([]int, len(m.constraints)),
		conNeg:  make([]int, len(m.constraints)),
	}
	for i := range s.values {
		s.values[i] = -1
	}
	for ci, con := range m.constraints {
		for _, t := range con.terms {
			s.varCons[t.Var] = append(s.varCons[t.Var], ci)
			if t.Coef > 0 {
				s.conPos[ci] += t.Coef
			} else {
				s.conNeg[ci] += t.Coef
			}
		}
	}
	for _, t := range m.objective {
		s.objCoef[t.Var] += t.Coef
	}
	for _, c := range s.objCoef {
		if c > 0 {
			s.potential += c
		}
	}
	if opts.TimeLimit > 0 {
		s.deadline = time.Now().Add(opts.TimeLimit)
	}

	s.order = branchOrder(m.numVars, s.objCoef, opts.Seed)

	feasible := true
	for ci := range m.constraints {
		if !s.consistent(ci) {
			feasible = false
			break
		}
	}
	if feasible {
		pinned := make([]Var, 0, len(m.fixed))
		for v := range m.fixed {
			pinned = append(pinned, v)
		}
		sort.Slice(pinned, func(i, j int) bool { return pinned[i] < pinned[j] })
		for _, v := range pinned {
			if !s.assign(v, int8(m.fixed[v])) {
				feasible = false
				break
			}
		}
	}

	if feasible {
		s.search(0)
	}

	sol := Solution{Status: StatusInfeasible}
	if s.hasBest {
		sol.values = s.best
		sol.Objective = s.bestObj
		if s.timedOut {
			sol.Status = StatusFeasible
		} else {
			sol.Status = StatusOptimal
		}
	} else if s.timedOut {
		sol.Status = StatusUnknown
	}
	return sol
}

// branchOrder sorts variables by descending objective weight so the
// bound tightens early, shuffling equal weights by seed.
func branchOrder(n int, objCoef []int, seed int64) []Var {
	order := make([]Var, n)
	for i := range order {
		order[i] = Var(i)
	}
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(n, func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})
	// stable insertion sort on weight keeps the shuffled order inside
	// each weight class
	for i := 1; i < n; i++ {
		v := order[i]
		w := objCoef[v]
		j := i - 1
		for j >= 0 && objCoef[order[j]] < w {
			order[j+1] = order[j]
			j--
		}
		order[j+1] = v
	}
	return order
}

func (s *solver) search(idx int) {
	if s.timedOut {
		return
	}
	s.nodes++
	if s.nodes%1024 == 0 && !s.deadline.IsZero() && time.Now().After(s.deadline) {
		s.timedOut = true
		return
	}

	for idx < len(s.order) && s.values[s.order[idx]] >= 0 {
		idx++
	}
	if idx == len(s.order) {
		if !s.hasBest || s.currentObj > s.bestObj {
			s.best = append([]int8(nil), s.values...)
			s.bestObj = s.currentObj
			s.hasBest = true
		}
		return
	}

	v := s.order[idx]
	first := int8(1)
	if s.objCoef[v] < 0 {
		first = 0
	}
	for _, val := range [2]int8{first, 1 - first} {
		if s.timedOut {
			return
		}
		mark := len(s.trail)
		if s.assign(v, val) {
			if !s.hasBest || s.currentObj+s.potential > s.bestObj {
				s.search(idx + 1)
			}
		}
		s.undoTo(mark)
	}
}

// assign sets a variable and runs unit propagation. It reports false on
// conflict, leaving the trail for the caller to unwind.
func (s *solver) assign(v Var, val int8) bool {
	s.queue = s.queue[:0]
	s.queue = append(s.queue, pending{v: v, val: val})

	for len(s.queue) > 0 {
		p := s.queue[0]
		s.queue = s.queue[1:]

		if cur := s.values[p.v]; cur >= 0 {
			if cur != p.val {
				return false
			}
			continue
		}

		s.values[p.v] = p.val
		s.trail = append(s.trail, p.v)
		s.currentObj += s.objCoef[p.v] * int(p.val)
		if s.objCoef[p.v] > 0 {
			s.potential -= s.objCoef[p.v]
		}

		for _, ci := range s.varCons[p.v] {
			coef := s.coefIn(ci, p.v)
			s.conSum[ci] += coef * int(p.val)
			if coef > 0 {
				s.conPos[ci] -= coef
			} else {
				s.conNeg[ci] -= coef
			}
			if !s.consistent(ci) {
				return false
			}
			s.force(ci)
		}
	}
	return true
}

func (s *solver) coefIn(ci int, v Var) int {
	for _, t := range s.model.constraints[ci].terms {
		if t.Var == v {
			return t.Coef
		}
	}
	return 0
}

func (s *solver) consistent(ci int) bool {
	con := &s.model.constraints[ci]
	minSum := s.conSum[ci] + s.conNeg[ci]
	maxSum := s.conSum[ci] + s.conPos[ci]
	return minSum <= con.hi && maxSum >= con.lo
}

// force enqueues assignments a constraint leaves no choice about.
func (s *solver) force(ci int) {
	con := &s.model.constraints[ci]
	minSum := s.conSum[ci] + s.conNeg[ci]
	maxSum := s.conSum[ci] + s.conPos[ci]
	for _, t := range con.terms {
		if s.values[t.Var] >= 0 {
			continue
		}
		if t.Coef > 0 {
			if minSum+t.Coef > con.hi {
				s.queue = append(s.queue, pending{v: t.Var, val: 0})
			} else if maxSum-t.Coef < con.lo {
				s.queue = append(s.queue, pending{v: t.Var, val: 1})
			}
		} else if t.Coef < 0 {
			if maxSum+t.Coef < con.lo {
				s.queue = append(s.queue, pending{v: t.Var, val: 0})
			} else if minSum-t.Coef > con.hi {
				s.queue = append(s.queue, pending{v: t.Var, val: 1})
			}
		}
	}
}

func (s *solver) undoTo(mark int) {
	for len(s.trail) > mark {
		v := s.trail[len(s.trail)-1]
		s.trail = s.trail[:len(s.trail)-1]
		val := s.values[v]
		s.values[v] = -1
		s.currentObj -= s.objCoef[v] * int(val)
		if s.objCoef[v] > 0 {
			s.potential += s.objCoef[v]
		}
		for _, ci := range s.varCons[v] {
			coef := s.coefIn(ci, v)
			s.conSum[ci] -= coef * int(val)
			if coef > 0 {
				s.conPos[ci] += coef
			} else {
				s.conNeg[ci] += coef
			}
		}
	}
}
