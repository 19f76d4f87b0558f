package services

import (
	"testing"

	courseModels "lms/models/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateProgressClampsPercentage(t *testing.T) {
	db := newTestDB(t)
	_, version, lessons := seedCourse(t, db, "VIDEO")
	enrollment := enroll(t, db, 1, version.ID)

	tracker := NewProgressTracker(db)

	progress, err := tracker.UpdateProgress(enrollment.ID, lessons[0], 150, 30, 30)
	require.NoError(t, err)
	assert.Equal(t, float64(100), progress.ProgressPercentage)

	progress, err = tracker.UpdateProgress(enrollment.ID, lessons[0], -5, -1, -1)
	require.NoError(t, err)
	assert.Equal(t, float64(0), progress.ProgressPercentage)
}

func TestUpdateProgressAccumulatesTimeSpent(t *testing.T) {
	db := newTestDB(t)
	_, version, lessons := seedCourse(t, db, "VIDEO")
	enrollment := enroll(t, db, 1, version.ID)

	tracker := NewProgressTracker(db)

	_, err := tracker.UpdateProgress(enrollment.ID, lessons[0], 20, 120, 120)
	require.NoError(t, err)
	_, err = tracker.UpdateProgress(enrollment.ID, lessons[0], 40, 240, 130)
	require.NoError(t, err)

	var row courseModels.LessonProgress
	require.NoError(t, db.Where("enrollment_id = ? AND lesson_id = ?", enrollment.ID, lessons[0]).First(&row).Error)
	assert.Equal(t, 250, row.TimeSpentSeconds)
	assert.Equal(t, 240, row.LastPositionSeconds)
	assert.Equal(t, float64(40), row.ProgressPercentage)
}

func TestUpdateProgressMarksEnrollmentStarted(t *testing.T) {
	db := newTestDB(t)
	_, version, lessons := seedCourse(t, db, "RICH_TEXT")
	enrollment := enroll(t, db, 1, version.ID)
	require.Equal(t, EnrollmentEnrolled, enrollment.Status)

	_, err := NewProgressTracker(db).UpdateProgress(enrollment.ID, lessons[0], 10, 0, 10)
	require.NoError(t, err)

	var updated courseModels.Enrollment
	require.NoError(t, db.First(&updated, enrollment.ID).Error)
	assert.Equal(t, EnrollmentInProgress, updated.Status)
	assert.NotNil(t, updated.StartedAt)
}

func TestCompleteManuallyVideoThreshold(t *testing.T) {
	db := newTestDB(t)
	_, version, lessons := seedCourse(t, db, "VIDEO")
	enrollment := enroll(t, db, 1, version.ID)

	tracker := NewProgressTracker(db)

	// No progress at all
	_, err := tracker.CompleteManually(1, enrollment.ID, lessons[0])
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrCodeIneligible))

	// Just below the threshold
	_, err = tracker.UpdateProgress(enrollment.ID, lessons[0], 89, 534, 534)
	require.NoError(t, err)
	_, err = tracker.CompleteManually(1, enrollment.ID, lessons[0])
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrCodeIneligible))

	// At the threshold
	_, err = tracker.UpdateProgress(enrollment.ID, lessons[0], 90, 540, 6)
	require.NoError(t, err)
	progress, err := tracker.CompleteManually(1, enrollment.ID, lessons[0])
	require.NoError(t, err)
	assert.Equal(t, LessonCompleted, progress.Status)
	assert.Equal(t, float64(100), progress.ProgressPercentage)
	assert.Equal(t, CompletionManual, progress.CompletionMethod)
}

func TestCompleteManuallyNonVideoDirect(t *testing.T) {
	db := newTestDB(t)
	_, version, lessons := seedCourse(t, db, "RICH_TEXT")
	enrollment := enroll(t, db, 1, version.ID)

	progress, err := NewProgressTracker(db).CompleteManually(1, enrollment.ID, lessons[0])
	require.NoError(t, err)
	assert.Equal(t, LessonCompleted, progress.Status)
	assert.NotNil(t, progress.CompletedAt)
}

func TestCompleteManuallyOwnershipEnforced(t *testing.T) {
	db := newTestDB(t)
	_, version, lessons := seedCourse(t, db, "RICH_TEXT")
	enrollment := enroll(t, db, 1, version.ID)

	_, err := NewProgressTracker(db).CompleteManually(2, enrollment.ID, lessons[0])
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrCodeOwnership))
}

func TestCompletedLessonRowStaysCompleted(t *testing.T) {
	db := newTestDB(t)
	_, version, lessons := seedCourse(t, db, "RICH_TEXT")
	enrollment := enroll(t, db, 1, version.ID)

	tracker := NewProgressTracker(db)
	_, err := tracker.CompleteManually(1, enrollment.ID, lessons[0])
	require.NoError(t, err)

	// A late consumption event must not demote the row
	progress, err := tracker.UpdateProgress(enrollment.ID, lessons[0], 30, 10, 10)
	require.NoError(t, err)
	assert.Equal(t, LessonCompleted, progress.Status)
	assert.Equal(t, float64(100), progress.ProgressPercentage)
}

func TestValidateCompletionEligibility(t *testing.T) {
	db := newTestDB(t)
	_, version, lessons := seedCourse(t, db, "VIDEO")
	enrollment := enroll(t, db, 1, version.ID)

	tracker := NewProgressTracker(db)

	err := tracker.ValidateCompletionEligibility(enrollment.ID, lessons[0], CompletionClaim{Percentage: 100})
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrCodeIneligible))

	_, err = tracker.UpdateProgress(enrollment.ID, lessons[0], 95, 570, 570)
	require.NoError(t, err)

	// Claimed time below half of the 600s duration
	err = tracker.ValidateCompletionEligibility(enrollment.ID, lessons[0], CompletionClaim{Percentage: 95, TimeSpentSeconds: 200})
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrCodeIneligible))

	err = tracker.ValidateCompletionEligibility(enrollment.ID, lessons[0], CompletionClaim{Percentage: 95, TimeSpentSeconds: 300})
	assert.NoError(t, err)
}
