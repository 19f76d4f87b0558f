package services

import (
	pathModels "lms/models/path"

	"gorm.io/gorm"
)

// reorderTempBase is the start of the parking range used by the two-phase
// move. Live step orders are small (1..N), so the range never collides.
const reorderTempBase = 100000

// ReorderSteps renumbers a path's active steps to match the supplied
// sequence. The caller must pass the complete current set of active step
// IDs; anything less (or more) is rejected outright.
//
// Steps are unique on (path, step_order), so a direct old-to-new update can
// collide mid-flight (swapping 1 and 2 briefly puts both at the same
// order). The two-phase move avoids that: phase one parks every step in a
// disjoint high range, phase two assigns the final 1..N values. Both phases
// share one transaction, so a failure restores the original ordering and no
// reader ever sees a duplicated order.
func (p *PathEngine) ReorderSteps(pathID uint, orderedStepIDs []uint) ([]pathModels.LearningPathStep, error) {
	if _, err := p.loadPath(pathID); err != nil {
		return nil, err
	}

	var steps []pathModels.LearningPathStep
	if err := p.db.Where("path_id = ? AND is_deleted = ?", pathID, false).Find(&steps).Error; err != nil {
		return nil, err
	}

	if len(orderedStepIDs) != len(steps) {
		return nil, Errorf(ErrCodeIncompleteReorder,
			"Reorder must list all %d active steps, got %d!", len(steps), len(orderedStepIDs))
	}
	current := make(map[uint]bool, len(steps))
	for _, step := range steps {
		current[step.ID] = true
	}
	seen := make(map[uint]bool, len(orderedStepIDs))
	for _, id := range orderedStepIDs {
		if !current[id] {
			return nil, Errorf(ErrCodeIncompleteReorder, "Step %d does not belong to this path!", id)
		}
		if seen[id] {
			return nil, Errorf(ErrCodeIncompleteReorder, "Step %d appears more than once!", id)
		}
		seen[id] = true
	}

	err := p.db.Transaction(func(tx *gorm.DB) error {
		// Phase 1: park every step in the disjoint high range.
		for i, id := range orderedStepIDs {
			if err := tx.Model(&pathModels.LearningPathStep{}).
				Where("id = ?", id).
				Update("step_order", reorderTempBase+i+1).Error; err != nil {
				return err
			}
		}
		// Phase 2: assign the final 1..N values.
		for i, id := range orderedStepIDs {
			if err := tx.Model(&pathModels.LearningPathStep{}).
				Where("id = ?", id).
				Update("step_order", i+1).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var reordered []pathModels.LearningPathStep
	if err := p.db.Where("path_id = ? AND is_deleted = ?", pathID, false).
		Order("step_order asc").Find(&reordered).Error; err != nil {
		return nil, err
	}
	return reordered, nil
}
