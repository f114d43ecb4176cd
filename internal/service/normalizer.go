package service

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/siddharth786s1/Project-Intelligencia-Scheduler/internal/dto"
	"github.com/siddharth786s1/Project-Intelligencia-Scheduler/internal/models"
	"github.com/siddharth786s1/Project-Intelligencia-Scheduler/internal/solver"
	appErrors "github.com/siddharth786s1/Project-Intelligencia-Scheduler/pkg/errors"
)

// CatalogueReader describes the catalogue fetches the normaliser needs.
type CatalogueReader interface {
	Faculty(ctx context.Context, token string) ([]models.Faculty, error)
	Batches(ctx context.Context, token string) ([]models.Batch, error)
	Subjects(ctx context.Context, token string) ([]models.Subject, error)
	Classrooms(ctx context.Context, token string) ([]models.Classroom, error)
	TimeSlots(ctx context.Context, token string) ([]models.TimeSlot, error)
	SchedulingConstraints(ctx context.Context, token string) ([]models.SchedulingConstraint, error)
	BatchSubjects(ctx context.Context, token string) ([]models.BatchSubject, error)
	AllPreferences(ctx context.Context, token, facultyID string) (*models.AllPreferences, error)
}

// Normalizer turns catalogue data into the flattened input a solver
// runs on: entities filtered to the request, inactive rows dropped,
// preferences resolved per faculty.
type Normalizer struct {
	catalogue CatalogueReader
	logger    *zap.Logger
}

// NewNormalizer constructs a normaliser.
func NewNormalizer(catalogue CatalogueReader, logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{catalogue: catalogue, logger: logger}
}

// BuildInput fetches and flattens everything one scheduling job needs.
// It returns warnings worth recording on the job alongside the input.
func (n *Normalizer) BuildInput(ctx context.Context, token, institutionID string, req dto.SchedulingRequest) (*solver.Input, []string, error) {
	faculty, err := n.catalogue.Faculty(ctx, token)
	if err != nil {
		return nil, nil, err
	}
	batches, err := n.catalogue.Batches(ctx, token)
	if err != nil {
		return nil, nil, err
	}
	subjects, err := n.catalogue.Subjects(ctx, token)
	if err != nil {
		return nil, nil, err
	}
	classrooms, err := n.catalogue.Classrooms(ctx, token)
	if err != nil {
		return nil, nil, err
	}
	slots, err := n.catalogue.TimeSlots(ctx, token)
	if err != nil {
		return nil, nil, err
	}
	constraints, err := n.catalogue.SchedulingConstraints(ctx, token)
	if err != nil {
		return nil, nil, err
	}
	links, err := n.catalogue.BatchSubjects(ctx, token)
	if err != nil {
		return nil, nil, err
	}

	in := &solver.Input{
		InstitutionID: institutionID,
		Constraints:   constraints,
		BatchSubjects: links,
	}

	wantFaculty := idSet(req.FacultyIDs)
	in.Faculty = lo.Filter(faculty, func(f models.Faculty, _ int) bool {
		return f.Active && keep(wantFaculty, f.ID)
	})
	wantBatches := idSet(req.BatchIDs)
	in.Batches = lo.Filter(batches, func(b models.Batch, _ int) bool {
		return keep(wantBatches, b.ID)
	})
	wantSubjects := idSet(req.SubjectIDs)
	in.Subjects = lo.Filter(subjects, func(s models.Subject, _ int) bool {
		return keep(wantSubjects, s.ID)
	})
	wantClassrooms := idSet(req.ClassroomIDs)
	in.Classrooms = lo.Filter(classrooms, func(c models.Classroom, _ int) bool {
		return keep(wantClassrooms, c.ID)
	})
	in.TimeSlots = lo.Filter(slots, func(s models.TimeSlot, _ int) bool {
		return s.Active
	})

	if err := requireNonEmpty(in); err != nil {
		return nil, nil, err
	}

	var warnings []string
	in.Profiles = make(map[string]*solver.FacultyProfile, len(in.Faculty))
	for _, f := range in.Faculty {
		prefs, err := n.catalogue.AllPreferences(ctx, token, f.ID)
		if err != nil {
			if appErrors.Is(err, appErrors.ErrNotFound) {
				continue
			}
			n.logger.Warn("preference fetch failed, using neutral defaults",
				zap.String("faculty_id", f.ID), zap.Error(err))
			warnings = append(warnings, fmt.Sprintf("preferences unavailable for faculty %s, neutral defaults applied", f.ID))
			continue
		}
		profile, err := solver.NewFacultyProfile(f.ID, prefs)
		if err != nil {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrUnprocessable.Code, appErrors.ErrUnprocessable.Status, "invalid preference data")
		}
		in.Profiles[f.ID] = profile
	}

	finalizeWarnings, err := in.Finalize()
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrUnprocessable.Code, appErrors.ErrUnprocessable.Status, "invalid scheduling data")
	}
	for _, w := range finalizeWarnings {
		n.logger.Warn("constraint skipped", zap.String("detail", w))
	}
	warnings = append(warnings, finalizeWarnings...)

	return in, warnings, nil
}

func requireNonEmpty(in *solver.Input) error {
	switch {
	case len(in.Faculty) == 0:
		return appErrors.Clone(appErrors.ErrUnprocessable, "no active faculty available for scheduling")
	case len(in.Batches) == 0:
		return appErrors.Clone(appErrors.ErrUnprocessable, "no batches available for scheduling")
	case len(in.Subjects) == 0:
		return appErrors.Clone(appErrors.ErrUnprocessable, "no subjects available for scheduling")
	case len(in.Classrooms) == 0:
		return appErrors.Clone(appErrors.ErrUnprocessable, "no classrooms available for scheduling")
	case len(in.TimeSlots) == 0:
		return appErrors.Clone(appErrors.ErrUnprocessable, "no active time slots available for scheduling")
	}
	return nil
}

func idSet(ids []string) map[string]struct{} {
	if len(ids) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// keep treats an absent filter as "keep everything".
func keep(set map[string]struct{}, id string) bool {
	if set == nil {
		return true
	}
	_, ok := set[id]
	return ok
}
