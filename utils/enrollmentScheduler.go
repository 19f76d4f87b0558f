package utils

import (
	"fmt"
	"log"
	"time"

	"lms/config"
	"lms/database"
	courseModels "lms/models/course"

	"github.com/robfig/cron/v3"
)

// logScheduler logs scheduler events with timestamp
func logScheduler(message string) {
	log.Printf("[ENROLLMENT-SCHEDULER %s] %s", time.Now().Format(time.RFC3339), message)
}

// ExpireCompletedEnrollments marks completed enrollments EXPIRED once the
// course validity window has elapsed. Courses with validity_days = 0 never
// expire. Training records and certificates are untouched.
func ExpireCompletedEnrollments() {
	db := database.Database.Db
	now := time.Now()

	type expiryRow struct {
		EnrollmentID uint
		CompletedAt  time.Time
		ValidityDays int
	}

	var rows []expiryRow
	if err := db.Table("enrollments").
		Select("enrollments.id AS enrollment_id, enrollments.completed_at AS completed_at, courses.validity_days AS validity_days").
		Joins("JOIN course_versions ON course_versions.id = enrollments.course_version_id").
		Joins("JOIN courses ON courses.id = course_versions.course_id").
		Where("enrollments.status = ? AND enrollments.is_deleted = ?", "COMPLETED", false).
		Where("courses.validity_days > 0").
		Where("enrollments.completed_at IS NOT NULL").
		Scan(&rows).Error; err != nil {
		logScheduler("Error fetching completed enrollments: " + err.Error())
		return
	}

	expired := 0
	for _, row := range rows {
		deadline := row.CompletedAt.AddDate(0, 0, row.ValidityDays)
		if now.Before(deadline) {
			continue
		}

		// Guarded update so a concurrent transition wins cleanly
		result := db.Model(&courseModels.Enrollment{}).
			Where("id = ? AND status = ?", row.EnrollmentID, "COMPLETED").
			Update("status", "EXPIRED")
		if result.Error != nil {
			logScheduler("Error expiring enrollment: " + result.Error.Error())
			continue
		}
		if result.RowsAffected > 0 {
			expired++
		}
	}

	logScheduler(fmt.Sprintf("Expiry sweep finished, %d enrollment(s) expired", expired))
}

// InitializeEnrollmentScheduler sets up the daily enrollment expiry sweep
func InitializeEnrollmentScheduler() *cron.Cron {
	logScheduler("Initializing enrollment expiry scheduler...")

	c := cron.New()

	if _, err := c.AddFunc(config.AppConfig.ExpirySchedule, func() {
		logScheduler("Running enrollment expiry sweep...")
		ExpireCompletedEnrollments()
	}); err != nil {
		logScheduler("Invalid expiry schedule, scheduler not started: " + err.Error())
		return c
	}

	c.Start()
	logScheduler("Enrollment expiry scheduler started")
	return c
}
