package services

import (
	"testing"

	"lms/database"
	courseModels "lms/models/course"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// The in-memory database lives per connection; a single connection keeps
	// every query on the same schema.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.RunMigrations(db))
	return db
}

// seedCourse creates a published course with one module and one lesson per
// content type. Video lessons get a known duration so time checks can bite.
func seedCourse(t *testing.T, db *gorm.DB, contentTypes ...string) (*courseModels.Course, *courseModels.CourseVersion, []uint) {
	t.Helper()

	course := courseModels.Course{Title: "Workplace Safety", Author: "L&D Team", Status: "ACTIVE", IsPublished: true}
	require.NoError(t, db.Create(&course).Error)

	version := courseModels.CourseVersion{CourseID: course.ID, VersionNumber: 1, IsCurrent: true}
	require.NoError(t, db.Create(&version).Error)

	module := courseModels.Module{CourseVersionID: version.ID, Title: "Basics", OrderIndex: 1}
	require.NoError(t, db.Create(&module).Error)

	lessonIDs := make([]uint, 0, len(contentTypes))
	for i, contentType := range contentTypes {
		lesson := courseModels.Lesson{
			ModuleID:    module.ID,
			Title:       "Lesson",
			ContentType: contentType,
			OrderIndex:  i + 1,
		}
		if contentType == "VIDEO" {
			lesson.DurationSeconds = 600
		}
		require.NoError(t, db.Create(&lesson).Error)
		lessonIDs = append(lessonIDs, lesson.ID)
	}
	return &course, &version, lessonIDs
}

func enroll(t *testing.T, db *gorm.DB, userID, versionID uint) *courseModels.Enrollment {
	t.Helper()
	enrollment, err := NewEnrollmentManager(db).Enroll(userID, versionID)
	require.NoError(t, err)
	return enrollment
}

// finishLessons drives every given lesson to COMPLETED through the tracker,
// watching videos to 100% first.
func finishLessons(t *testing.T, db *gorm.DB, userID, enrollmentID uint, lessonIDs []uint) {
	t.Helper()
	tracker := NewProgressTracker(db)
	for _, lessonID := range lessonIDs {
		_, err := tracker.UpdateProgress(enrollmentID, lessonID, 100, 600, 600)
		require.NoError(t, err)
		_, err = tracker.CompleteManually(userID, enrollmentID, lessonID)
		require.NoError(t, err)
	}
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }
