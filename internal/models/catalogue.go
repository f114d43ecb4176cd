package models

// Faculty is a teaching staff member fetched from the catalogue.
type Faculty struct {
	ID              string `json:"id"`
	InstitutionID   string `json:"institution_id"`
	Name            string `json:"name"`
	DepartmentID    string `json:"department_id,omitempty"`
	WeeklyLoadHours int    `json:"weekly_load_hours,omitempty"`
	Active          bool   `json:"active"`
}

// Batch is a student cohort that attends sessions together.
type Batch struct {
	ID            string `json:"id"`
	InstitutionID string `json:"institution_id"`
	Name          string `json:"name"`
	Code          string `json:"code,omitempty"`
	Year          int    `json:"year,omitempty"`
	Size          int    `json:"size"`
	DepartmentID  string `json:"department_id,omitempty"`
}

// Subject is a course unit batches must be taught.
type Subject struct {
	ID                  string `json:"id"`
	InstitutionID       string `json:"institution_id"`
	Name                string `json:"name"`
	Code                string `json:"code,omitempty"`
	Credits             int    `json:"credits,omitempty"`
	LectureHoursPerWeek int    `json:"lecture_hours_per_week,omitempty"`
	LabHoursPerWeek     int    `json:"lab_hours_per_week,omitempty"`
	DepartmentID        string `json:"department_id,omitempty"`
}

// Classroom is a bookable room with a capacity and an optional type.
type Classroom struct {
	ID            string  `json:"id"`
	InstitutionID string  `json:"institution_id"`
	Name          string  `json:"name"`
	Capacity      int     `json:"capacity"`
	RoomTypeID    *string `json:"room_type_id,omitempty"`
}

// TimeSlot is a recurring weekly teaching period. Times are "HH:MM" or
// "HH:MM:SS" wall-clock strings; DayOfWeek runs Monday=0 to Sunday=6.
type TimeSlot struct {
	ID            string `json:"id"`
	InstitutionID string `json:"institution_id"`
	Name          string `json:"name,omitempty"`
	DayOfWeek     int    `json:"day_of_week"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	Active        bool   `json:"active"`
}

// BatchSubject links a batch to a subject it must be scheduled for.
type BatchSubject struct {
	BatchID   string `json:"batch_id"`
	SubjectID string `json:"subject_id"`
}

// ConstraintKind separates inviolable rules from weighted wishes.
type ConstraintKind string

const (
	ConstraintHard ConstraintKind = "hard"
	ConstraintSoft ConstraintKind = "soft"
)

// ConstraintScope names the entity kind a constraint applies to.
// Global constraints carry no target.
type ConstraintScope string

const (
	ScopeGlobal    ConstraintScope = "global"
	ScopeFaculty   ConstraintScope = "faculty"
	ScopeBatch     ConstraintScope = "batch"
	ScopeSubject   ConstraintScope = "subject"
	ScopeClassroom ConstraintScope = "classroom"
)

// SchedulingConstraint is an institution-authored rule with a free-form
// configuration payload interpreted by the solver.
type SchedulingConstraint struct {
	ID            string                 `json:"id"`
	InstitutionID string                 `json:"institution_id"`
	Kind          ConstraintKind         `json:"kind"`
	Scope         ConstraintScope        `json:"scope"`
	TargetID      *string                `json:"target_id,omitempty"`
	Configuration map[string]interface{} `json:"configuration,omitempty"`
	Weight        int                    `json:"weight"`
	Active        bool                   `json:"active"`
}

// SubjectExpertise grades how well a faculty member teaches a subject.
type SubjectExpertise struct {
	SubjectID      string `json:"subject_id"`
	ExpertiseLevel string `json:"expertise_level"`
}

// AvailabilitySlot marks whether a faculty member can teach in a slot
// category on a given day. Category ANY covers the whole day.
type AvailabilitySlot struct {
	DayOfWeek    string `json:"day_of_week"`
	SlotCategory string `json:"slot_category"`
	IsAvailable  bool   `json:"is_available"`
}

// BatchPreference grades a faculty member's appetite for a batch.
type BatchPreference struct {
	BatchID         string `json:"batch_id"`
	PreferenceLevel string `json:"preference_level"`
}

// ClassroomPreference grades a faculty member's appetite for a room.
type ClassroomPreference struct {
	ClassroomID     string `json:"classroom_id"`
	PreferenceLevel string `json:"preference_level"`
}

// AllPreferences bundles everything the catalogue knows about one
// faculty member's scheduling wishes.
type AllPreferences struct {
	FacultyID            string                `json:"faculty_id"`
	SubjectExpertise     []SubjectExpertise    `json:"subject_expertise"`
	Availability         []AvailabilitySlot    `json:"availability"`
	BatchPreferences     []BatchPreference     `json:"batch_preferences"`
	ClassroomPreferences []ClassroomPreference `json:"classroom_preferences"`
}
