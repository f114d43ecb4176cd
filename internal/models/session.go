package models

import "time"

// Session duration bounds enforced when deriving minutes from a slot.
const (
	MinSessionMinutes = 30
	MaxSessionMinutes = 180
)

// SessionTypeLecture is the only session type this engine emits.
const SessionTypeLecture = "lecture"

// ScheduledSession is one placed teaching session, both as persisted to
// the catalogue and as read back for exports.
type ScheduledSession struct {
	ID                    string `json:"id,omitempty"`
	GenerationID          string `json:"generation_id,omitempty"`
	InstitutionID         string `json:"institution_id,omitempty"`
	Title                 string `json:"title,omitempty"`
	SessionType           string `json:"session_type"`
	BatchID               string `json:"batch_id"`
	SubjectID             string `json:"subject_id"`
	FacultyID             string `json:"faculty_id"`
	ClassroomID           string `json:"classroom_id"`
	TimeSlotID            string `json:"time_slot_id"`
	DurationMinutes       int    `json:"duration_minutes"`
	Canceled              bool   `json:"canceled"`
	SoftViolationsCounted int    `json:"soft_violations_counted,omitempty"`
}

// SolutionMetrics quantifies the quality of one generated schedule.
type SolutionMetrics struct {
	TotalSessions            int     `json:"total_sessions"`
	HardConstraintViolations int     `json:"hard_constraint_violations"`
	SoftConstraintViolations int     `json:"soft_constraint_violations"`
	FacultySatisfactionScore float64 `json:"faculty_satisfaction_score"`
	BatchSatisfactionScore   float64 `json:"batch_satisfaction_score"`
	RoomUtilization          float64 `json:"room_utilization"`
}

// GenerationStatus marks the lifecycle of a persisted generation.
type GenerationStatus string

const (
	GenerationCompleted GenerationStatus = "completed"
	GenerationFailed    GenerationStatus = "failed"
)

// ScheduleGeneration is one solver run's persisted outcome, grouping
// the emitted sessions under a fresh UUID.
type ScheduleGeneration struct {
	ID            string           `json:"id"`
	InstitutionID string           `json:"institution_id,omitempty"`
	Name          string           `json:"name"`
	Description   string           `json:"description,omitempty"`
	AcademicTerm  string           `json:"academic_term,omitempty"`
	StartDate     string           `json:"start_date,omitempty"`
	EndDate       string           `json:"end_date,omitempty"`
	Status        GenerationStatus `json:"status,omitempty"`
	Algorithm     string           `json:"algorithm_used,omitempty"`
	Metrics       SolutionMetrics  `json:"metrics"`
	CreatedAt     time.Time        `json:"created_at"`
}

// ScheduleGenerationSummary bundles a generation with its scheduled
// sessions for detail reads and exports.
type ScheduleGenerationSummary struct {
	ScheduleGeneration
	Sessions []ScheduledSession `json:"sessions,omitempty"`
}
