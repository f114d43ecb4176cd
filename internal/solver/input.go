// Package solver holds the timetable solving engines and the flattened
// input view they consume.
package solver

import (
	"fmt"
	"sort"

	"github.com/siddharth786s1/Project-Intelligencia-Scheduler/internal/models"
)

// Configuration keys the solvers know how to interpret.
const (
	configRequiredRoomType = "required_room_type_id"
	configPreferredSlots   = "preferred_time_slot_ids"
	configPreferredRooms   = "preferred_classroom_ids"
)

// RequiredPair marks that a batch must receive at least one session of
// a subject.
type RequiredPair struct {
	BatchID   string
	SubjectID string
}

type availKey struct {
	day      models.WeekDay
	category models.SlotCategory
}

// FacultyProfile is the flattened preference view for one faculty
// member: expertise, batch and classroom appetites, availability.
type FacultyProfile struct {
	FacultyID string

	expertise    map[string]int
	batchPrefs   map[string]int
	roomPrefs    map[string]int
	availability map[availKey]bool
}

// NewFacultyProfile flattens a preference bundle. Unknown tags are
// rejected so bad catalogue data surfaces at normalisation, not midway
// through a solve.
func NewFacultyProfile(facultyID string, prefs *models.AllPreferences) (*FacultyProfile, error) {
	p := &FacultyProfile{
		FacultyID:    facultyID,
		expertise:    make(map[string]int),
		batchPrefs:   make(map[string]int),
		roomPrefs:    make(map[string]int),
		availability: make(map[availKey]bool),
	}
	if prefs == nil {
		return p, nil
	}

	for _, e := range prefs.SubjectExpertise {
		score, err := models.ExpertiseScore(e.ExpertiseLevel)
		if err != nil {
			return nil, fmt.Errorf("faculty %s: %w", facultyID, err)
		}
		p.expertise[e.SubjectID] = score
	}
	for _, a := range prefs.Availability {
		day, err := models.ParseWeekDay(a.DayOfWeek)
		if err != nil {
			return nil, fmt.Errorf("faculty %s: %w", facultyID, err)
		}
		category, err := models.ParseSlotCategory(a.SlotCategory)
		if err != nil {
			return nil, fmt.Errorf("faculty %s: %w", facultyID, err)
		}
		p.availability[availKey{day: day, category: category}] = a.IsAvailable
	}
	for _, b := range prefs.BatchPreferences {
		score, err := models.PreferenceScore(b.PreferenceLevel)
		if err != nil {
			return nil, fmt.Errorf("faculty %s: %w", facultyID, err)
		}
		p.batchPrefs[b.BatchID] = score
	}
	for _, c := range prefs.ClassroomPreferences {
		score, err := models.PreferenceScore(c.PreferenceLevel)
		if err != nil {
			return nil, fmt.Errorf("faculty %s: %w", facultyID, err)
		}
		p.roomPrefs[c.ClassroomID] = score
	}
	return p, nil
}

// Expertise returns the 1..5 expertise score, defaulting to the
// midpoint when nothing is recorded.
func (p *FacultyProfile) Expertise(subjectID string) int {
	if score, ok := p.expertise[subjectID]; ok {
		return score
	}
	return models.ExpertiseDefault
}

// HasExpertise reports whether any expertise is recorded for a subject.
func (p *FacultyProfile) HasExpertise(subjectID string) bool {
	_, ok := p.expertise[subjectID]
	return ok
}

// RecordedExpertise returns the recorded score, if any.
func (p *FacultyProfile) RecordedExpertise(subjectID string) (int, bool) {
	score, ok := p.expertise[subjectID]
	return score, ok
}

// BatchPreference returns the -2..+2 batch appetite, neutral by default.
func (p *FacultyProfile) BatchPreference(batchID string) int {
	return p.batchPrefs[batchID]
}

// RecordedBatchPreference returns the recorded score, if any.
func (p *FacultyProfile) RecordedBatchPreference(batchID string) (int, bool) {
	score, ok := p.batchPrefs[batchID]
	return score, ok
}

// ClassroomPreference returns the -2..+2 room appetite, neutral by default.
func (p *FacultyProfile) ClassroomPreference(classroomID string) int {
	return p.roomPrefs[classroomID]
}

// RecordedClassroomPreference returns the recorded score, if any.
func (p *FacultyProfile) RecordedClassroomPreference(classroomID string) (int, bool) {
	score, ok := p.roomPrefs[classroomID]
	return score, ok
}

// Available answers whether the faculty member can teach on a day and
// slot category. An exact (day, category) row wins over a (day, ANY)
// row; with neither, the member is considered available.
func (p *FacultyProfile) Available(day models.WeekDay, category models.SlotCategory) bool {
	if v, ok := p.availability[availKey{day: day, category: category}]; ok {
		return v
	}
	if v, ok := p.availability[availKey{day: day, category: models.CategoryAny}]; ok {
		return v
	}
	return true
}

// SoftRule is an interpreted soft constraint that contributes weighted
// objective terms to placements in its scope.
type SoftRule struct {
	ConstraintID string
	Scope        models.ConstraintScope
	TargetID     string
	Weight       int
	SlotIDs      map[string]struct{}
	RoomIDs      map[string]struct{}
}

// appliesTo reports whether the rule covers a placement.
func (r *SoftRule) appliesTo(batchID, subjectID, facultyID, classroomID string) bool {
	switch r.Scope {
	case models.ScopeGlobal:
		return true
	case models.ScopeFaculty:
		return r.TargetID == facultyID
	case models.ScopeBatch:
		return r.TargetID == batchID
	case models.ScopeSubject:
		return r.TargetID == subjectID
	case models.ScopeClassroom:
		return r.TargetID == classroomID
	}
	return false
}

// satisfiedBy reports whether a placement meets every preference set
// the rule carries.
func (r *SoftRule) satisfiedBy(classroomID, slotID string) bool {
	if len(r.SlotIDs) > 0 {
		if _, ok := r.SlotIDs[slotID]; !ok {
			return false
		}
	}
	if len(r.RoomIDs) > 0 {
		if _, ok := r.RoomIDs[classroomID]; !ok {
			return false
		}
	}
	return true
}

// Input is the flattened, id-keyed working set one job solves over.
// Build it, then call Finalize before handing it to a solver.
type Input struct {
	InstitutionID string

	Faculty    []models.Faculty
	Batches    []models.Batch
	Subjects   []models.Subject
	Classrooms []models.Classroom
	TimeSlots  []models.TimeSlot

	BatchSubjects []models.BatchSubject
	Constraints   []models.SchedulingConstraint
	Profiles      map[string]*FacultyProfile

	RequiredPairs []RequiredPair

	batchByID     map[string]*models.Batch
	subjectByID   map[string]*models.Subject
	classroomByID map[string]*models.Classroom
	slotByID      map[string]*models.TimeSlot
	facultyByID   map[string]*models.Faculty

	slotDay      map[string]models.WeekDay
	slotCategory map[string]models.SlotCategory

	roomTypeRequired map[string]string
	softRules        []SoftRule
	qualified        map[string][]string
}

// Finalize indexes the working set, derives slot categories, required
// pairs and interpreted constraint rules. It returns warnings for
// constraint configurations it skipped and an error for data the
// engine cannot accept.
func (in *Input) Finalize() ([]string, error) {
	in.batchByID = make(map[string]*models.Batch, len(in.Batches))
	for i := range in.Batches {
		in.batchByID[in.Batches[i].ID] = &in.Batches[i]
	}
	in.subjectByID = make(map[string]*models.Subject, len(in.Subjects))
	for i := range in.Subjects {
		in.subjectByID[in.Subjects[i].ID] = &in.Subjects[i]
	}
	in.classroomByID = make(map[string]*models.Classroom, len(in.Classrooms))
	for i := range in.Classrooms {
		in.classroomByID[in.Classrooms[i].ID] = &in.Classrooms[i]
	}
	in.facultyByID = make(map[string]*models.Faculty, len(in.Faculty))
	for i := range in.Faculty {
		in.facultyByID[in.Faculty[i].ID] = &in.Faculty[i]
	}

	in.slotByID = make(map[string]*models.TimeSlot, len(in.TimeSlots))
	in.slotDay = make(map[string]models.WeekDay, len(in.TimeSlots))
	in.slotCategory = make(map[string]models.SlotCategory, len(in.TimeSlots))
	for i := range in.TimeSlots {
		slot := &in.TimeSlots[i]
		day, err := models.WeekDayFromIndex(slot.DayOfWeek)
		if err != nil {
			return nil, fmt.Errorf("time slot %s: %w", slot.ID, err)
		}
		category, err := models.SlotCategoryForTime(slot.StartTime)
		if err != nil {
			return nil, fmt.Errorf("time slot %s: %w", slot.ID, err)
		}
		duration, err := models.SlotDurationMinutes(slot.StartTime, slot.EndTime)
		if err != nil {
			return nil, fmt.Errorf("time slot %s: %w", slot.ID, err)
		}
		if duration <= 0 {
			return nil, fmt.Errorf("time slot %s: end_time must be after start_time", slot.ID)
		}
		in.slotByID[slot.ID] = slot
		in.slotDay[slot.ID] = day
		in.slotCategory[slot.ID] = category
	}

	if in.Profiles == nil {
		in.Profiles = make(map[string]*FacultyProfile)
	}

	in.deriveRequiredPairs()
	warnings := in.interpretConstraints()
	in.buildQualifiedPools()

	return warnings, nil
}

// deriveRequiredPairs intersects the batch-subject association with the
// selected entities. With no associations at all, every selected batch
// requires every selected subject.
func (in *Input) deriveRequiredPairs() {
	in.RequiredPairs = in.RequiredPairs[:0]
	if len(in.BatchSubjects) == 0 {
		for _, b := range in.Batches {
			for _, s := range in.Subjects {
				in.RequiredPairs = append(in.RequiredPairs, RequiredPair{BatchID: b.ID, SubjectID: s.ID})
			}
		}
		return
	}

	seen := make(map[RequiredPair]struct{}, len(in.BatchSubjects))
	for _, link := range in.BatchSubjects {
		if _, ok := in.batchByID[link.BatchID]; !ok {
			continue
		}
		if _, ok := in.subjectByID[link.SubjectID]; !ok {
			continue
		}
		pair := RequiredPair{BatchID: link.BatchID, SubjectID: link.SubjectID}
		if _, dup := seen[pair]; dup {
			continue
		}
		seen[pair] = struct{}{}
		in.RequiredPairs = append(in.RequiredPairs, pair)
	}
	sort.Slice(in.RequiredPairs, func(i, j int) bool {
		if in.RequiredPairs[i].BatchID != in.RequiredPairs[j].BatchID {
			return in.RequiredPairs[i].BatchID < in.RequiredPairs[j].BatchID
		}
		return in.RequiredPairs[i].SubjectID < in.RequiredPairs[j].SubjectID
	})
}

// interpretConstraints translates active scheduling constraints into
// solver terms: subject room-type requirements and weighted preference
// rules. Configurations the engine does not understand are skipped
// with a warning rather than failing the run.
func (in *Input) interpretConstraints() []string {
	in.roomTypeRequired = make(map[string]string)
	in.softRules = in.softRules[:0]

	var warnings []string
	for _, c := range in.Constraints {
		if !c.Active {
			continue
		}

		target := ""
		if c.TargetID != nil {
			target = *c.TargetID
		}

		switch c.Kind {
		case models.ConstraintHard:
			roomType, ok := stringConfig(c.Configuration, configRequiredRoomType)
			if ok && c.Scope == models.ScopeSubject && target != "" {
				in.roomTypeRequired[target] = roomType
				continue
			}
			warnings = append(warnings, fmt.Sprintf("skipping hard constraint %s: no interpretation for its configuration", c.ID))
		case models.ConstraintSoft:
			rule := SoftRule{
				ConstraintID: c.ID,
				Scope:        c.Scope,
				TargetID:     target,
				Weight:       clampWeight(c.Weight),
				SlotIDs:      stringSetConfig(c.Configuration, configPreferredSlots),
				RoomIDs:      stringSetConfig(c.Configuration, configPreferredRooms),
			}
			if len(rule.SlotIDs) == 0 && len(rule.RoomIDs) == 0 {
				warnings = append(warnings, fmt.Sprintf("skipping soft constraint %s: no interpretation for its configuration", c.ID))
				continue
			}
			in.softRules = append(in.softRules, rule)
		default:
			warnings = append(warnings, fmt.Sprintf("skipping constraint %s: unknown kind %q", c.ID, c.Kind))
		}
	}
	return warnings
}

// buildQualifiedPools precomputes, per subject, the faculty with
// recorded expertise. A subject nobody has expertise data for falls
// back to the whole faculty list so missing catalogue data does not
// make every run infeasible.
func (in *Input) buildQualifiedPools() {
	in.qualified = make(map[string][]string, len(in.Subjects))
	allIDs := make([]string, len(in.Faculty))
	for i, f := range in.Faculty {
		allIDs[i] = f.ID
	}
	for _, s := range in.Subjects {
		var pool []string
		for _, f := range in.Faculty {
			if in.Profile(f.ID).HasExpertise(s.ID) {
				pool = append(pool, f.ID)
			}
		}
		if len(pool) == 0 {
			pool = allIDs
		}
		in.qualified[s.ID] = pool
	}
}

// Profile returns the preference view for a faculty member, never nil.
func (in *Input) Profile(facultyID string) *FacultyProfile {
	if p, ok := in.Profiles[facultyID]; ok && p != nil {
		return p
	}
	return emptyProfile
}

var emptyProfile = &FacultyProfile{
	expertise:    map[string]int{},
	batchPrefs:   map[string]int{},
	roomPrefs:    map[string]int{},
	availability: map[availKey]bool{},
}

// Batch looks up a batch by id.
func (in *Input) Batch(id string) *models.Batch { return in.batchByID[id] }

// Subject looks up a subject by id.
func (in *Input) Subject(id string) *models.Subject { return in.subjectByID[id] }

// Classroom looks up a classroom by id.
func (in *Input) Classroom(id string) *models.Classroom { return in.classroomByID[id] }

// TimeSlot looks up a time slot by id.
func (in *Input) TimeSlot(id string) *models.TimeSlot { return in.slotByID[id] }

// FacultyByID looks up a faculty member by id.
func (in *Input) FacultyByID(id string) *models.Faculty { return in.facultyByID[id] }

// SlotDay returns the week day of a slot.
func (in *Input) SlotDay(slotID string) models.WeekDay { return in.slotDay[slotID] }

// SlotCategory returns the derived category of a slot.
func (in *Input) SlotCategory(slotID string) models.SlotCategory { return in.slotCategory[slotID] }

// FacultyAvailable reports whether a faculty member can teach a slot.
func (in *Input) FacultyAvailable(facultyID, slotID string) bool {
	return in.Profile(facultyID).Available(in.slotDay[slotID], in.slotCategory[slotID])
}

// QualifiedFaculty returns the faculty pool for a subject.
func (in *Input) QualifiedFaculty(subjectID string) []string {
	return in.qualified[subjectID]
}

// IsQualified reports whether a faculty member is in a subject's pool.
func (in *Input) IsQualified(facultyID, subjectID string) bool {
	for _, id := range in.qualified[subjectID] {
		if id == facultyID {
			return true
		}
	}
	return false
}

// RequiredRoomType returns the room type a subject demands, if any.
func (in *Input) RequiredRoomType(subjectID string) (string, bool) {
	t, ok := in.roomTypeRequired[subjectID]
	return t, ok
}

// ClassroomFits reports whether a room can host a subject's session for
// a batch of the given size.
func (in *Input) ClassroomFits(subjectID string, room *models.Classroom, batchSize int) bool {
	if room == nil || room.Capacity < batchSize {
		return false
	}
	required, ok := in.roomTypeRequired[subjectID]
	if !ok {
		return true
	}
	return room.RoomTypeID != nil && *room.RoomTypeID == required
}

// SuitableClassrooms returns ids of rooms that fit, in input order.
func (in *Input) SuitableClassrooms(subjectID string, batchSize int) []string {
	var out []string
	for i := range in.Classrooms {
		if in.ClassroomFits(subjectID, &in.Classrooms[i], batchSize) {
			out = append(out, in.Classrooms[i].ID)
		}
	}
	return out
}

// SoftRules exposes the interpreted soft constraint rules.
func (in *Input) SoftRules() []SoftRule { return in.softRules }

// SoftRuleTerms sums the weight of rules a placement satisfies and
// counts the rules it leaves unmet.
func (in *Input) SoftRuleTerms(batchID, subjectID, facultyID, classroomID, slotID string) (bonus int, unmet int) {
	for i := range in.softRules {
		rule := &in.softRules[i]
		if !rule.appliesTo(batchID, subjectID, facultyID, classroomID) {
			continue
		}
		if rule.satisfiedBy(classroomID, slotID) {
			bonus += rule.Weight
		} else {
			unmet++
		}
	}
	return bonus, unmet
}

func clampWeight(w int) int {
	if w < 1 {
		return 1
	}
	if w > 10 {
		return 10
	}
	return w
}

func stringConfig(cfg map[string]interface{}, key string) (string, bool) {
	if cfg == nil {
		return "", false
	}
	raw, ok := cfg[key]
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

func stringSetConfig(cfg map[string]interface{}, key string) map[string]struct{} {
	if cfg == nil {
		return nil
	}
	raw, ok := cfg[key]
	if !ok {
		return nil
	}
	items, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && s != "" {
			set[s] = struct{}{}
		}
	}
	if len(set) == 0 {
		return nil
	}
	return set
}
