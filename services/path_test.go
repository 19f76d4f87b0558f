package services

import (
	"testing"

	courseModels "lms/models/course"
	pathModels "lms/models/path"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// seedPath creates a published path with the given number of EXTERNAL steps.
func seedPath(t *testing.T, db *gorm.DB, stepCount int) (*pathModels.LearningPath, []uint) {
	t.Helper()
	engine := NewPathEngine(db)

	path, err := engine.CreatePath("Onboarding Track", "")
	require.NoError(t, err)

	stepIDs := make([]uint, 0, stepCount)
	for i := 0; i < stepCount; i++ {
		step, err := engine.AddStep(path.ID, StepInput{
			StepType:    "EXTERNAL",
			Title:       "Step",
			ExternalURL: "https://example.com",
		})
		require.NoError(t, err)
		require.Equal(t, i+1, step.StepOrder)
		stepIDs = append(stepIDs, step.ID)
	}

	if stepCount > 0 {
		_, err = engine.Publish(path.ID)
		require.NoError(t, err)
	}
	return path, stepIDs
}

func TestPublishEmptyPathRejected(t *testing.T) {
	db := newTestDB(t)
	engine := NewPathEngine(db)

	path, err := engine.CreatePath("Empty Track", "")
	require.NoError(t, err)

	_, err = engine.Publish(path.ID)
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrCodeEmptyPath))
}

func TestEnrollRequiresPublishedPath(t *testing.T) {
	db := newTestDB(t)
	engine := NewPathEngine(db)

	path, err := engine.CreatePath("Draft Track", "")
	require.NoError(t, err)
	_, err = engine.AddStep(path.ID, StepInput{StepType: "EXTERNAL", Title: "Step"})
	require.NoError(t, err)

	_, err = engine.EnrollUser(1, path.ID)
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrCodeValidation))
}

func TestEnrollSeedsStepProgress(t *testing.T) {
	db := newTestDB(t)
	path, stepIDs := seedPath(t, db, 3)

	engine := NewPathEngine(db)
	enrollment, err := engine.EnrollUser(1, path.ID)
	require.NoError(t, err)
	assert.Equal(t, PathActive, enrollment.Status)

	var rows []pathModels.LearningPathStepProgress
	require.NoError(t, db.Where("path_enrollment_id = ?", enrollment.ID).Find(&rows).Error)
	require.Len(t, rows, len(stepIDs))
	for _, row := range rows {
		assert.Equal(t, StepNotStarted, row.Status)
	}

	// A second open enrollment is rejected
	_, err = engine.EnrollUser(1, path.ID)
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrCodeAlreadyEnrolled))
}

func TestStepCompletionDrivesPathProgress(t *testing.T) {
	db := newTestDB(t)
	path, stepIDs := seedPath(t, db, 2)

	engine := NewPathEngine(db)
	enrollment, err := engine.EnrollUser(1, path.ID)
	require.NoError(t, err)

	updated, err := engine.CompleteStep(1, enrollment.ID, stepIDs[0])
	require.NoError(t, err)
	assert.Equal(t, float64(50), updated.Progress)
	assert.Equal(t, PathActive, updated.Status)

	updated, err = engine.CompleteStep(1, enrollment.ID, stepIDs[1])
	require.NoError(t, err)
	assert.Equal(t, PathCompleted, updated.Status)
	assert.NotNil(t, updated.CompletionDate)

	// Path completion issues the path certificate
	var certificate courseModels.Certificate
	require.NoError(t, db.Where("path_enrollment_id = ?", enrollment.ID).First(&certificate).Error)
	assert.Equal(t, uint(1), certificate.UserID)
}

func TestSkippedStepsCountTowardCompletion(t *testing.T) {
	db := newTestDB(t)
	path, stepIDs := seedPath(t, db, 2)

	engine := NewPathEngine(db)
	enrollment, err := engine.EnrollUser(1, path.ID)
	require.NoError(t, err)

	_, err = engine.CompleteStep(1, enrollment.ID, stepIDs[0])
	require.NoError(t, err)
	updated, err := engine.SkipStep(1, enrollment.ID, stepIDs[1])
	require.NoError(t, err)

	assert.Equal(t, PathCompleted, updated.Status)
	assert.Equal(t, float64(100), updated.Progress)
}

func TestTerminalStepStatusIsSticky(t *testing.T) {
	db := newTestDB(t)
	path, stepIDs := seedPath(t, db, 2)

	engine := NewPathEngine(db)
	enrollment, err := engine.EnrollUser(1, path.ID)
	require.NoError(t, err)

	_, err = engine.CompleteStep(1, enrollment.ID, stepIDs[0])
	require.NoError(t, err)

	// Completing again is a no-op, any other transition is rejected
	_, err = engine.CompleteStep(1, enrollment.ID, stepIDs[0])
	assert.NoError(t, err)
	_, err = engine.SkipStep(1, enrollment.ID, stepIDs[0])
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrCodeValidation))
}

func TestSuspendAndResume(t *testing.T) {
	db := newTestDB(t)
	path, stepIDs := seedPath(t, db, 2)

	engine := NewPathEngine(db)
	enrollment, err := engine.EnrollUser(1, path.ID)
	require.NoError(t, err)

	suspended, err := engine.Suspend(1, enrollment.ID, "parental leave")
	require.NoError(t, err)
	assert.Equal(t, PathSuspended, suspended.Status)
	assert.Equal(t, "parental leave", suspended.SuspendReason)

	// Step updates are blocked while suspended
	_, err = engine.CompleteStep(1, enrollment.ID, stepIDs[0])
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrCodeValidation))

	// Double suspend is rejected
	_, err = engine.Suspend(1, enrollment.ID, "again")
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrCodeValidation))

	resumed, err := engine.Resume(1, enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, PathActive, resumed.Status)
	assert.Empty(t, resumed.SuspendReason)

	_, err = engine.CompleteStep(1, enrollment.ID, stepIDs[0])
	assert.NoError(t, err)
}

func TestStepUpdateOwnershipEnforced(t *testing.T) {
	db := newTestDB(t)
	path, stepIDs := seedPath(t, db, 1)

	engine := NewPathEngine(db)
	enrollment, err := engine.EnrollUser(1, path.ID)
	require.NoError(t, err)

	_, err = engine.CompleteStep(2, enrollment.ID, stepIDs[0])
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrCodeOwnership))
}

func TestReorderRejectsIncompleteSet(t *testing.T) {
	db := newTestDB(t)
	path, stepIDs := seedPath(t, db, 3)

	engine := NewPathEngine(db)

	// Subset
	_, err := engine.ReorderSteps(path.ID, stepIDs[:2])
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrCodeIncompleteReorder))

	// Duplicate entry
	_, err = engine.ReorderSteps(path.ID, []uint{stepIDs[0], stepIDs[0], stepIDs[1]})
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrCodeIncompleteReorder))

	// Foreign step ID
	_, err = engine.ReorderSteps(path.ID, []uint{stepIDs[0], stepIDs[1], 999999})
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrCodeIncompleteReorder))

	// Ordering unchanged after the rejections
	var steps []pathModels.LearningPathStep
	require.NoError(t, db.Where("path_id = ?", path.ID).Order("step_order asc").Find(&steps).Error)
	for i, step := range steps {
		assert.Equal(t, i+1, step.StepOrder)
		assert.Equal(t, stepIDs[i], step.ID)
	}
}

func TestReorderAssignsSequentialOrders(t *testing.T) {
	db := newTestDB(t)
	path, stepIDs := seedPath(t, db, 3)

	engine := NewPathEngine(db)
	want := []uint{stepIDs[2], stepIDs[0], stepIDs[1]}

	steps, err := engine.ReorderSteps(path.ID, want)
	require.NoError(t, err)
	require.Len(t, steps, 3)
	for i, step := range steps {
		assert.Equal(t, want[i], step.ID)
		assert.Equal(t, i+1, step.StepOrder)
	}
}

func TestRemoveStepRecomputesEnrollments(t *testing.T) {
	db := newTestDB(t)
	path, stepIDs := seedPath(t, db, 2)

	engine := NewPathEngine(db)
	enrollment, err := engine.EnrollUser(1, path.ID)
	require.NoError(t, err)

	_, err = engine.CompleteStep(1, enrollment.ID, stepIDs[0])
	require.NoError(t, err)

	// Removing the only remaining open step completes the enrollment
	require.NoError(t, engine.RemoveStep(path.ID, stepIDs[1]))

	var updated pathModels.LearningPathEnrollment
	require.NoError(t, db.First(&updated, enrollment.ID).Error)
	assert.Equal(t, PathCompleted, updated.Status)
	assert.Equal(t, float64(100), updated.Progress)
}

func TestCourseCompletionSyncsPathSteps(t *testing.T) {
	db := newTestDB(t)
	course, version, lessons := seedCourse(t, db, "RICH_TEXT")

	engine := NewPathEngine(db)
	path, err := engine.CreatePath("Compliance Track", "")
	require.NoError(t, err)
	courseStep, err := engine.AddStep(path.ID, StepInput{StepType: "COURSE", Title: "Do the course", CourseID: &course.ID})
	require.NoError(t, err)
	_, err = engine.AddStep(path.ID, StepInput{StepType: "EXTERNAL", Title: "Read the handbook", ExternalURL: "https://example.com"})
	require.NoError(t, err)
	_, err = engine.Publish(path.ID)
	require.NoError(t, err)

	pathEnrollment, err := engine.EnrollUser(1, path.ID)
	require.NoError(t, err)

	enrollment := enroll(t, db, 1, version.ID)
	finishLessons(t, db, 1, enrollment.ID, lessons)
	_, err = NewEnrollmentManager(db).CompleteEnrollment(1, enrollment.ID)
	require.NoError(t, err)

	var stepProgress pathModels.LearningPathStepProgress
	require.NoError(t, db.Where("path_enrollment_id = ? AND step_id = ?", pathEnrollment.ID, courseStep.ID).
		First(&stepProgress).Error)
	assert.Equal(t, StepCompleted, stepProgress.Status)

	var updated pathModels.LearningPathEnrollment
	require.NoError(t, db.First(&updated, pathEnrollment.ID).Error)
	assert.Equal(t, float64(50), updated.Progress)
	assert.Equal(t, PathActive, updated.Status)
}
