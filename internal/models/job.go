package models

import "time"

// SchedulingStatus tracks a job through its lifecycle. Completed,
// failed and cancelled are terminal; a job never leaves them.
type SchedulingStatus string

const (
	StatusQueued    SchedulingStatus = "queued"
	StatusRunning   SchedulingStatus = "running"
	StatusCompleted SchedulingStatus = "completed"
	StatusFailed    SchedulingStatus = "failed"
	StatusCancelled SchedulingStatus = "cancelled"
	// StatusPartial remains part of the wire vocabulary for clients
	// that render it, though the engine does not currently emit it.
	StatusPartial SchedulingStatus = "partially_completed"
)

// Terminal reports whether a status permits no further transitions.
func (s SchedulingStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled, StatusPartial:
		return true
	}
	return false
}

// SchedulingJobStatus is the job record returned to clients polling a
// scheduling run. Metric fields stay null until the job reaches a
// terminal state.
type SchedulingJobStatus struct {
	JobID       string           `json:"job_id"`
	Status      SchedulingStatus `json:"status"`
	Progress    float64          `json:"progress"`
	Message     string           `json:"message,omitempty"`
	Error       string           `json:"error,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	StartedAt   *time.Time       `json:"started_at,omitempty"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`

	ScheduleGenerationID     *string  `json:"schedule_generation_id,omitempty"`
	TotalSessions            *int     `json:"total_sessions,omitempty"`
	HardConstraintViolations *int     `json:"hard_constraint_violations,omitempty"`
	SoftConstraintViolations *int     `json:"soft_constraint_violations,omitempty"`
	FacultySatisfactionScore *float64 `json:"faculty_satisfaction_score,omitempty"`
	BatchSatisfactionScore   *float64 `json:"batch_satisfaction_score,omitempty"`
	RoomUtilization          *float64 `json:"room_utilization,omitempty"`
}
