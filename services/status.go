package services

// Enrollment statuses
const (
	EnrollmentEnrolled   = "ENROLLED"
	EnrollmentInProgress = "IN_PROGRESS"
	EnrollmentCompleted  = "COMPLETED"
	EnrollmentExpired    = "EXPIRED"
)

// Lesson progress statuses
const (
	LessonNotStarted = "NOT_STARTED"
	LessonInProgress = "IN_PROGRESS"
	LessonCompleted  = "COMPLETED"
)

// Lesson completion methods
const (
	CompletionManual = "MANUAL"
	CompletionQuiz   = "QUIZ"
	CompletionAuto   = "AUTO"
)

// Question types
const (
	QuestionSingleChoice = "SINGLE_CHOICE"
	QuestionTrueFalse    = "TRUE_FALSE"
	QuestionMultiSelect  = "MULTI_SELECT"
)

// Learning path enrollment statuses
const (
	PathActive    = "ACTIVE"
	PathCompleted = "COMPLETED"
	PathFailed    = "FAILED"
	PathSuspended = "SUSPENDED"
)

// Learning path step progress statuses
const (
	StepNotStarted = "NOT_STARTED"
	StepInProgress = "IN_PROGRESS"
	StepCompleted  = "COMPLETED"
	StepFailed     = "FAILED"
	StepSkipped    = "SKIPPED"
)
