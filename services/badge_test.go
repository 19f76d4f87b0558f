package services

import (
	"testing"

	courseModels "lms/models/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBadgeWithoutRequiredCoursesNeverEligible(t *testing.T) {
	db := newTestDB(t)

	badge, err := NewCourseManager(db).CreateBadge("Empty Badge", "", nil)
	require.NoError(t, err)

	eligible, err := NewBadgeEvaluator(db).CheckEligibility(1, badge.ID)
	require.NoError(t, err)
	assert.False(t, eligible)
}

func TestBadgeRequiresEveryCourse(t *testing.T) {
	db := newTestDB(t)
	courseA, versionA, lessonsA := seedCourse(t, db, "RICH_TEXT")
	courseB, versionB, lessonsB := seedCourse(t, db, "RICH_TEXT")

	badge, err := NewCourseManager(db).CreateBadge("Safety Pro", "", []uint{courseA.ID, courseB.ID})
	require.NoError(t, err)

	evaluator := NewBadgeEvaluator(db)
	manager := NewEnrollmentManager(db)

	// First course done, second pending
	enrollmentA := enroll(t, db, 1, versionA.ID)
	finishLessons(t, db, 1, enrollmentA.ID, lessonsA)
	_, err = manager.CompleteEnrollment(1, enrollmentA.ID)
	require.NoError(t, err)

	eligible, err := evaluator.CheckEligibility(1, badge.ID)
	require.NoError(t, err)
	assert.False(t, eligible)

	// Second course done
	enrollmentB := enroll(t, db, 1, versionB.ID)
	finishLessons(t, db, 1, enrollmentB.ID, lessonsB)
	_, err = manager.CompleteEnrollment(1, enrollmentB.ID)
	require.NoError(t, err)

	// The cascade already awarded the badge on the second completion, so a
	// fresh eligibility check reports false for the holder.
	var held int64
	require.NoError(t, db.Model(&courseModels.UserBadge{}).
		Where("user_id = ? AND badge_id = ?", 1, badge.ID).Count(&held).Error)
	assert.Equal(t, int64(1), held)

	eligible, err = evaluator.CheckEligibility(1, badge.ID)
	require.NoError(t, err)
	assert.False(t, eligible)
}

func TestCascadeAwardsBadgeExactlyOnce(t *testing.T) {
	db := newTestDB(t)
	course, version, lessons := seedCourse(t, db, "RICH_TEXT")

	badge, err := NewCourseManager(db).CreateBadge("Single Course Badge", "", []uint{course.ID})
	require.NoError(t, err)

	enrollment := enroll(t, db, 1, version.ID)
	finishLessons(t, db, 1, enrollment.ID, lessons)

	result, err := NewEnrollmentManager(db).CompleteEnrollment(1, enrollment.ID)
	require.NoError(t, err)
	require.Len(t, result.AwardedBadges, 1)
	assert.Equal(t, badge.ID, result.AwardedBadges[0].BadgeID)

	// Re-awarding is a silent no-op
	userBadge, err := NewBadgeEvaluator(db).AwardIfEligible(1, badge.ID)
	require.NoError(t, err)
	assert.Nil(t, userBadge)

	var held int64
	require.NoError(t, db.Model(&courseModels.UserBadge{}).
		Where("user_id = ? AND badge_id = ?", 1, badge.ID).Count(&held).Error)
	assert.Equal(t, int64(1), held)
}

func TestCheckEligibilityUnknownBadge(t *testing.T) {
	db := newTestDB(t)

	_, err := NewBadgeEvaluator(db).CheckEligibility(1, 424242)
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrCodeNotFound))
}
