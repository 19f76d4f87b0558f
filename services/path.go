package services

import (
	"errors"
	"math"
	"time"

	pathModels "lms/models/path"

	"gorm.io/gorm"
)

// PathEngine manages learning paths: step administration, enrollment,
// per-step progress and path-level completion.
type PathEngine struct {
	db *gorm.DB
}

func NewPathEngine(db *gorm.DB) *PathEngine {
	return &PathEngine{db: db}
}

// StepInput describes a step to add to a path.
type StepInput struct {
	StepType    string `json:"step_type"`
	Title       string `json:"title"`
	CourseID    *uint  `json:"course_id"`
	QuizID      *uint  `json:"quiz_id"`
	ExternalURL string `json:"external_url"`
	IsRequired  *bool  `json:"is_required"`
}

// CreatePath creates a draft learning path.
func (p *PathEngine) CreatePath(title, description string) (*pathModels.LearningPath, error) {
	path := pathModels.LearningPath{Title: title, Description: description, Status: "DRAFT"}
	if err := p.db.Create(&path).Error; err != nil {
		return nil, err
	}
	return &path, nil
}

// AddStep appends a step at the end of the path's ordering.
func (p *PathEngine) AddStep(pathID uint, input StepInput) (*pathModels.LearningPathStep, error) {
	if _, err := p.loadPath(pathID); err != nil {
		return nil, err
	}

	var maxOrder int
	err := p.db.Model(&pathModels.LearningPathStep{}).
		Where("path_id = ? AND is_deleted = ?", pathID, false).
		Select("COALESCE(MAX(step_order), 0)").Scan(&maxOrder).Error
	if err != nil {
		return nil, err
	}

	required := true
	if input.IsRequired != nil {
		required = *input.IsRequired
	}
	step := pathModels.LearningPathStep{
		PathID:      pathID,
		StepOrder:   maxOrder + 1,
		StepType:    input.StepType,
		Title:       input.Title,
		CourseID:    input.CourseID,
		QuizID:      input.QuizID,
		ExternalURL: input.ExternalURL,
		IsRequired:  required,
	}
	if err := p.db.Create(&step).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, NewError(ErrCodeConcurrency, "Step ordering raced with another change, please retry!")
		}
		return nil, err
	}
	return &step, nil
}

// RemoveStep soft-deletes a step and recomputes progress for the path's
// active enrollments, since the step total just changed.
func (p *PathEngine) RemoveStep(pathID, stepID uint) error {
	var step pathModels.LearningPathStep
	err := p.db.Where("id = ? AND path_id = ? AND is_deleted = ?", stepID, pathID, false).First(&step).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NewError(ErrCodeNotFound, "Learning path step not found!")
	}
	if err != nil {
		return err
	}

	return p.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&step).Update("is_deleted", true).Error; err != nil {
			return err
		}
		var enrollments []pathModels.LearningPathEnrollment
		if err := tx.Where("path_id = ? AND status = ? AND is_deleted = ?", pathID, PathActive, false).
			Find(&enrollments).Error; err != nil {
			return err
		}
		for i := range enrollments {
			if err := recomputePathProgress(tx, enrollments[i].ID); err != nil {
				return err
			}
		}
		return nil
	})
}

// Publish activates a path; an empty path cannot be published.
func (p *PathEngine) Publish(pathID uint) (*pathModels.LearningPath, error) {
	path, err := p.loadPath(pathID)
	if err != nil {
		return nil, err
	}

	var steps int64
	err = p.db.Model(&pathModels.LearningPathStep{}).
		Where("path_id = ? AND is_deleted = ?", pathID, false).Count(&steps).Error
	if err != nil {
		return nil, err
	}
	if steps == 0 {
		return nil, NewError(ErrCodeEmptyPath, "A learning path needs at least one step before publishing!")
	}

	if err := p.db.Model(path).Update("status", "PUBLISHED").Error; err != nil {
		return nil, err
	}
	return path, nil
}

// EnrollUser enrolls a user into a published path and seeds a NOT_STARTED
// progress row for every active step.
func (p *PathEngine) EnrollUser(userID, pathID uint) (*pathModels.LearningPathEnrollment, error) {
	path, err := p.loadPath(pathID)
	if err != nil {
		return nil, err
	}
	if path.Status != "PUBLISHED" {
		return nil, NewError(ErrCodeValidation, "Learning path is not published!")
	}

	var existing pathModels.LearningPathEnrollment
	err = p.db.Where("user_id = ? AND path_id = ? AND status <> ? AND is_deleted = ?",
		userID, pathID, PathCompleted, false).First(&existing).Error
	if err == nil {
		return nil, NewError(ErrCodeAlreadyEnrolled, "User already has an open enrollment for this path!")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var enrollment pathModels.LearningPathEnrollment
	err = p.db.Transaction(func(tx *gorm.DB) error {
		enrollment = pathModels.LearningPathEnrollment{
			UserID:     userID,
			PathID:     pathID,
			Status:     PathActive,
			EnrolledAt: time.Now(),
		}
		if err := tx.Create(&enrollment).Error; err != nil {
			return err
		}

		var steps []pathModels.LearningPathStep
		if err := tx.Where("path_id = ? AND is_deleted = ?", pathID, false).
			Order("step_order asc").Find(&steps).Error; err != nil {
			return err
		}
		for _, step := range steps {
			progress := pathModels.LearningPathStepProgress{
				PathEnrollmentID: enrollment.ID,
				StepID:           step.ID,
				Status:           StepNotStarted,
			}
			if err := tx.Create(&progress).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// UpdateStepProgress applies a status change to one step of the caller's
// enrollment and recomputes path progress.
func (p *PathEngine) UpdateStepProgress(userID, enrollmentID, stepID uint, status string) (*pathModels.LearningPathEnrollment, error) {
	switch status {
	case StepInProgress, StepCompleted, StepFailed, StepSkipped:
	default:
		return nil, Errorf(ErrCodeValidation, "Invalid step status %q!", status)
	}
	return p.setStepStatus(userID, enrollmentID, stepID, status)
}

// CompleteStep marks a step completed.
func (p *PathEngine) CompleteStep(userID, enrollmentID, stepID uint) (*pathModels.LearningPathEnrollment, error) {
	return p.setStepStatus(userID, enrollmentID, stepID, StepCompleted)
}

// SkipStep marks a step skipped; skipped steps count toward completion.
func (p *PathEngine) SkipStep(userID, enrollmentID, stepID uint) (*pathModels.LearningPathEnrollment, error) {
	return p.setStepStatus(userID, enrollmentID, stepID, StepSkipped)
}

// Suspend pauses an active enrollment, recording the reason.
func (p *PathEngine) Suspend(userID, enrollmentID uint, reason string) (*pathModels.LearningPathEnrollment, error) {
	enrollment, err := p.loadOwnedEnrollment(userID, enrollmentID)
	if err != nil {
		return nil, err
	}
	res := p.db.Model(&pathModels.LearningPathEnrollment{}).
		Where("id = ? AND status = ?", enrollment.ID, PathActive).
		Updates(map[string]interface{}{"status": PathSuspended, "suspend_reason": reason})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, Errorf(ErrCodeValidation, "Only active enrollments can be suspended (current status %s)!", enrollment.Status)
	}
	return p.loadEnrollmentByID(enrollment.ID)
}

// Resume reactivates a suspended enrollment.
func (p *PathEngine) Resume(userID, enrollmentID uint) (*pathModels.LearningPathEnrollment, error) {
	enrollment, err := p.loadOwnedEnrollment(userID, enrollmentID)
	if err != nil {
		return nil, err
	}
	res := p.db.Model(&pathModels.LearningPathEnrollment{}).
		Where("id = ? AND status = ?", enrollment.ID, PathSuspended).
		Updates(map[string]interface{}{"status": PathActive, "suspend_reason": ""})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, Errorf(ErrCodeValidation, "Only suspended enrollments can be resumed (current status %s)!", enrollment.Status)
	}
	return p.loadEnrollmentByID(enrollment.ID)
}

// StepState pairs a step with the enrollment's progress row for it.
type StepState struct {
	Step     pathModels.LearningPathStep          `json:"step"`
	Progress *pathModels.LearningPathStepProgress `json:"progress"`
}

// PathProgress is the full view of one enrollment.
type PathProgress struct {
	Enrollment *pathModels.LearningPathEnrollment `json:"enrollment"`
	Steps      []StepState                        `json:"steps"`
}

// GetProgress returns the caller's enrollment with per-step state in path
// order.
func (p *PathEngine) GetProgress(userID, enrollmentID uint) (*PathProgress, error) {
	enrollment, err := p.loadOwnedEnrollment(userID, enrollmentID)
	if err != nil {
		return nil, err
	}

	var steps []pathModels.LearningPathStep
	if err := p.db.Where("path_id = ? AND is_deleted = ?", enrollment.PathID, false).
		Order("step_order asc").Find(&steps).Error; err != nil {
		return nil, err
	}

	var rows []pathModels.LearningPathStepProgress
	if err := p.db.Where("path_enrollment_id = ? AND is_deleted = ?", enrollment.ID, false).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	byStep := make(map[uint]*pathModels.LearningPathStepProgress, len(rows))
	for i := range rows {
		byStep[rows[i].StepID] = &rows[i]
	}

	view := &PathProgress{Enrollment: enrollment}
	for _, step := range steps {
		view.Steps = append(view.Steps, StepState{Step: step, Progress: byStep[step.ID]})
	}
	return view, nil
}

func (p *PathEngine) setStepStatus(userID, enrollmentID, stepID uint, status string) (*pathModels.LearningPathEnrollment, error) {
	enrollment, err := p.loadOwnedEnrollment(userID, enrollmentID)
	if err != nil {
		return nil, err
	}
	if enrollment.Status == PathSuspended {
		return nil, NewError(ErrCodeValidation, "Enrollment is suspended; resume it before updating steps!")
	}
	if enrollment.Status != PathActive {
		return nil, Errorf(ErrCodeValidation, "Enrollment is %s and no longer accepts step updates!", enrollment.Status)
	}

	err = p.db.Transaction(func(tx *gorm.DB) error {
		return applyStepStatus(tx, enrollment.ID, stepID, status)
	})
	if err != nil {
		return nil, err
	}
	return p.loadEnrollmentByID(enrollment.ID)
}

// applyStepStatus performs the guarded transition and progress recompute
// inside the caller's transaction.
func applyStepStatus(tx *gorm.DB, enrollmentID, stepID uint, status string) error {
	var progress pathModels.LearningPathStepProgress
	err := tx.Where("path_enrollment_id = ? AND step_id = ? AND is_deleted = ?", enrollmentID, stepID, false).
		First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NewError(ErrCodeNotFound, "Step progress not found for this enrollment!")
	}
	if err != nil {
		return err
	}

	if isTerminalStepStatus(progress.Status) {
		if progress.Status == status {
			return nil
		}
		return Errorf(ErrCodeValidation, "Step is already %s and cannot change!", progress.Status)
	}
	if status == StepInProgress && progress.Status == StepInProgress {
		return nil
	}

	updates := map[string]interface{}{"status": status}
	if status == StepCompleted {
		updates["completed_at"] = time.Now()
	}
	res := tx.Model(&pathModels.LearningPathStepProgress{}).
		Where("id = ? AND status IN ?", progress.ID, []string{StepNotStarted, StepInProgress}).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return NewError(ErrCodeConcurrency, "Step update raced with another request!")
	}

	return recomputePathProgress(tx, enrollmentID)
}

// recomputePathProgress derives enrollment.progress from step state and
// completes the enrollment exactly when every active step is completed or
// skipped. Path completion issues the path certificate.
func recomputePathProgress(tx *gorm.DB, enrollmentID uint) error {
	var enrollment pathModels.LearningPathEnrollment
	if err := tx.Where("id = ? AND is_deleted = ?", enrollmentID, false).First(&enrollment).Error; err != nil {
		return err
	}

	var total int64
	err := tx.Model(&pathModels.LearningPathStep{}).
		Where("path_id = ? AND is_deleted = ?", enrollment.PathID, false).Count(&total).Error
	if err != nil {
		return err
	}

	var done int64
	if total > 0 {
		err = tx.Model(&pathModels.LearningPathStepProgress{}).
			Joins("JOIN learning_path_steps ON learning_path_steps.id = learning_path_step_progresses.step_id").
			Where("learning_path_step_progresses.path_enrollment_id = ? AND learning_path_step_progresses.is_deleted = ?", enrollmentID, false).
			Where("learning_path_step_progresses.status IN ?", []string{StepCompleted, StepSkipped}).
			Where("learning_path_steps.is_deleted = ?", false).
			Count(&done).Error
		if err != nil {
			return err
		}
	}

	progress := float64(0)
	if total > 0 {
		progress = math.Round(100 * float64(done) / float64(total))
	}

	if err := tx.Model(&pathModels.LearningPathEnrollment{}).
		Where("id = ? AND status = ?", enrollmentID, PathActive).
		Update("progress", progress).Error; err != nil {
		return err
	}

	if total == 0 || done < total {
		return nil
	}

	now := time.Now()
	res := tx.Model(&pathModels.LearningPathEnrollment{}).
		Where("id = ? AND status = ?", enrollmentID, PathActive).
		Updates(map[string]interface{}{"status": PathCompleted, "completion_date": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Someone else completed it; the certificate is theirs to issue.
		return nil
	}

	_, err = issueCertificate(tx, enrollment.UserID, nil, nil, &enrollmentID)
	return err
}

// completeCourseSteps closes COURSE steps for a course the user just
// completed, across all of the user's active path enrollments.
func completeCourseSteps(tx *gorm.DB, userID, courseID uint) error {
	var steps []pathModels.LearningPathStep
	err := tx.Where("step_type = ? AND course_id = ? AND is_deleted = ?", "COURSE", courseID, false).
		Find(&steps).Error
	if err != nil {
		return err
	}

	for _, step := range steps {
		var enrollment pathModels.LearningPathEnrollment
		err := tx.Where("user_id = ? AND path_id = ? AND status = ? AND is_deleted = ?",
			userID, step.PathID, PathActive, false).First(&enrollment).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return err
		}

		err = applyStepStatus(tx, enrollment.ID, step.ID, StepCompleted)
		if err != nil && !IsCode(err, ErrCodeValidation) && !IsCode(err, ErrCodeNotFound) {
			return err
		}
	}
	return nil
}

func (p *PathEngine) loadPath(pathID uint) (*pathModels.LearningPath, error) {
	var path pathModels.LearningPath
	err := p.db.Where("id = ? AND is_deleted = ?", pathID, false).First(&path).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewError(ErrCodeNotFound, "Learning path not found!")
	}
	if err != nil {
		return nil, err
	}
	return &path, nil
}

func (p *PathEngine) loadOwnedEnrollment(userID, enrollmentID uint) (*pathModels.LearningPathEnrollment, error) {
	enrollment, err := p.loadEnrollmentByID(enrollmentID)
	if err != nil {
		return nil, err
	}
	if enrollment.UserID != userID {
		return nil, NewError(ErrCodeOwnership, "Path enrollment does not belong to the caller!")
	}
	return enrollment, nil
}

func (p *PathEngine) loadEnrollmentByID(enrollmentID uint) (*pathModels.LearningPathEnrollment, error) {
	var enrollment pathModels.LearningPathEnrollment
	err := p.db.Where("id = ? AND is_deleted = ?", enrollmentID, false).First(&enrollment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewError(ErrCodeNotFound, "Path enrollment not found!")
	}
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func isTerminalStepStatus(status string) bool {
	return status == StepCompleted || status == StepFailed || status == StepSkipped
}
