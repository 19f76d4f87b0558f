package utils

import (
	"testing"
	"time"

	"lms/database"
	courseModels "lms/models/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupSchedulerDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.RunMigrations(db))

	previous := database.Database
	database.Database = database.DbInstance{Db: db}
	t.Cleanup(func() { database.Database = previous })

	return db
}

func seedCompletedEnrollment(t *testing.T, db *gorm.DB, validityDays int, completedDaysAgo int) *courseModels.Enrollment {
	t.Helper()

	course := courseModels.Course{Title: "Course", Status: "ACTIVE", IsPublished: true, ValidityDays: validityDays}
	require.NoError(t, db.Create(&course).Error)
	version := courseModels.CourseVersion{CourseID: course.ID, VersionNumber: 1, IsCurrent: true}
	require.NoError(t, db.Create(&version).Error)

	completedAt := time.Now().AddDate(0, 0, -completedDaysAgo)
	enrollment := courseModels.Enrollment{
		UserID:          1,
		CourseVersionID: version.ID,
		Status:          "COMPLETED",
		Progress:        100,
		EnrolledAt:      completedAt.AddDate(0, 0, -7),
		CompletedAt:     &completedAt,
	}
	require.NoError(t, db.Create(&enrollment).Error)
	return &enrollment
}

func TestExpireCompletedEnrollments(t *testing.T) {
	db := setupSchedulerDB(t)

	pastValidity := seedCompletedEnrollment(t, db, 30, 31)
	withinValidity := seedCompletedEnrollment(t, db, 30, 10)
	neverExpires := seedCompletedEnrollment(t, db, 0, 365)

	ExpireCompletedEnrollments()

	// Fresh destination per lookup; reusing one struct would fold the
	// previous primary key into the next query's conditions.
	var expired courseModels.Enrollment
	require.NoError(t, db.First(&expired, pastValidity.ID).Error)
	assert.Equal(t, "EXPIRED", expired.Status)

	var within courseModels.Enrollment
	require.NoError(t, db.First(&within, withinValidity.ID).Error)
	assert.Equal(t, "COMPLETED", within.Status)

	var unlimited courseModels.Enrollment
	require.NoError(t, db.First(&unlimited, neverExpires.ID).Error)
	assert.Equal(t, "COMPLETED", unlimited.Status)
}
