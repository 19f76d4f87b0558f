package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"lms/config"
	courseModels "lms/models/course"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// generateCertificateNumber builds a globally unique certificate number.
// The date and user fragment keep numbers human-scannable; the UUID fragment
// keeps concurrent issuance from colliding. The unique index on the column
// is the final arbiter.
func generateCertificateNumber(userID uint) string {
	frag := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return fmt.Sprintf("CERT-%s-%d-%s", time.Now().Format("20060102"), userID, frag)
}

// issueCertificate creates a certificate for a training record or a
// learning-path enrollment. At most one certificate exists per path
// enrollment; the unique indexes back both guarantees.
func issueCertificate(tx *gorm.DB, userID uint, courseID, trainingRecordID, pathEnrollmentID *uint) (*courseModels.Certificate, error) {
	issuer := "Learning & Development"
	if config.AppConfig != nil {
		issuer = config.AppConfig.CertificateIssuer
	}

	certificate := courseModels.Certificate{
		UserID:            userID,
		CourseID:          courseID,
		TrainingRecordID:  trainingRecordID,
		PathEnrollmentID:  pathEnrollmentID,
		CertificateNumber: generateCertificateNumber(userID),
		IssuedBy:          issuer,
		IssuedAt:          time.Now(),
	}
	if err := tx.Create(&certificate).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, NewError(ErrCodeConcurrency, "Certificate issuance raced with another request!")
		}
		return nil, err
	}
	return &certificate, nil
}
