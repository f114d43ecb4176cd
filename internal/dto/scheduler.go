package dto

// SchedulingRequest asks for a timetable to be generated. Empty entity
// filters mean "use everything the institution has". The institution is
// always taken from the caller's token, never from the body.
type SchedulingRequest struct {
	Name          string   `json:"name" validate:"required,max=255"`
	Description   string   `json:"description" validate:"omitempty,max=1000"`
	AlgorithmType string   `json:"algorithm_type" validate:"omitempty,oneof=csp genetic"`
	AcademicTerm  string   `json:"academic_term" validate:"required,max=100"`
	StartDate     string   `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate       string   `json:"end_date" validate:"required,datetime=2006-01-02"`
	MaxIterations *int     `json:"max_iterations" validate:"omitempty,min=1,max=10000"`
	FacultyIDs    []string `json:"faculty_ids" validate:"omitempty,dive,uuid"`
	BatchIDs      []string `json:"batch_ids" validate:"omitempty,dive,uuid"`
	SubjectIDs    []string `json:"subject_ids" validate:"omitempty,dive,uuid"`
	ClassroomIDs  []string `json:"classroom_ids" validate:"omitempty,dive,uuid"`
}

// QueueStatus reports worker pool occupancy for operators.
type QueueStatus struct {
	QueueSize         int  `json:"queue_size"`
	RunningWorkers    int  `json:"running_workers"`
	MaxWorkers        int  `json:"max_workers"`
	ActiveJobs        int  `json:"active_jobs"`
	WorkerTaskRunning bool `json:"worker_task_running"`
}

// GenerationListQuery pages through persisted generations.
type GenerationListQuery struct {
	Skip  int `form:"skip" validate:"min=0"`
	Limit int `form:"limit" validate:"min=1,max=500"`
}

// ExportQuery selects the timetable export format.
type ExportQuery struct {
	Format string `form:"format" validate:"omitempty,oneof=csv pdf"`
}
