package services

import (
	"encoding/json"

	courseModels "lms/models/course"

	"gorm.io/datatypes"
)

// Answer is the tagged submission payload for one question. Exactly one of
// the value fields is set, matching the question type:
//   - SINGLE_CHOICE: Selected (option index)
//   - TRUE_FALSE:    Value
//   - MULTI_SELECT:  Selections (option index set, order irrelevant)
type Answer struct {
	QuestionID uint  `json:"question_id"`
	Selected   *int  `json:"selected,omitempty"`
	Value      *bool `json:"value,omitempty"`
	Selections []int `json:"selections,omitempty"`
}

// EncodeAnswerKey serializes a correct-answer payload for storage on a
// question row.
func EncodeAnswerKey(key Answer) (datatypes.JSON, error) {
	key.QuestionID = 0
	raw, err := json.Marshal(key)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// ValidateAnswerShape checks that an answer payload matches the question
// type and references existing option indexes.
func ValidateAnswerShape(question *courseModels.QuizQuestion, answer Answer) error {
	optionCount, err := countOptions(question)
	if err != nil {
		return err
	}
	switch question.QuestionType {
	case QuestionSingleChoice:
		if answer.Selected == nil || answer.Value != nil || len(answer.Selections) > 0 {
			return Errorf(ErrCodeValidation, "Question %d expects a single selected option!", question.ID)
		}
		if *answer.Selected < 0 || *answer.Selected >= optionCount {
			return Errorf(ErrCodeValidation, "Question %d has no option %d!", question.ID, *answer.Selected)
		}
	case QuestionTrueFalse:
		if answer.Value == nil || answer.Selected != nil || len(answer.Selections) > 0 {
			return Errorf(ErrCodeValidation, "Question %d expects a true/false value!", question.ID)
		}
	case QuestionMultiSelect:
		if len(answer.Selections) == 0 || answer.Selected != nil || answer.Value != nil {
			return Errorf(ErrCodeValidation, "Question %d expects a set of selected options!", question.ID)
		}
		seen := make(map[int]bool, len(answer.Selections))
		for _, idx := range answer.Selections {
			if idx < 0 || idx >= optionCount {
				return Errorf(ErrCodeValidation, "Question %d has no option %d!", question.ID, idx)
			}
			if seen[idx] {
				return Errorf(ErrCodeValidation, "Question %d has duplicate selections!", question.ID)
			}
			seen[idx] = true
		}
	default:
		return Errorf(ErrCodeValidation, "Unknown question type %q!", question.QuestionType)
	}
	return nil
}

// answerIsCorrect compares a submitted answer against the stored key.
// Multi-select answers compare as sets.
func answerIsCorrect(question *courseModels.QuizQuestion, answer Answer) bool {
	var key Answer
	if err := json.Unmarshal(question.CorrectAnswer, &key); err != nil {
		return false
	}
	switch question.QuestionType {
	case QuestionSingleChoice:
		return answer.Selected != nil && key.Selected != nil && *answer.Selected == *key.Selected
	case QuestionTrueFalse:
		return answer.Value != nil && key.Value != nil && *answer.Value == *key.Value
	case QuestionMultiSelect:
		return sameSelectionSet(answer.Selections, key.Selections)
	default:
		return false
	}
}

func sameSelectionSet(got, want []int) bool {
	if len(got) == 0 || len(got) != len(want) {
		return false
	}
	set := make(map[int]bool, len(want))
	for _, idx := range want {
		set[idx] = true
	}
	for _, idx := range got {
		if !set[idx] {
			return false
		}
	}
	return true
}

// encodeOptions serializes option labels for storage on a question row.
func encodeOptions(options []string) (datatypes.JSON, error) {
	raw, err := json.Marshal(options)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func countOptions(question *courseModels.QuizQuestion) (int, error) {
	var options []string
	if len(question.Options) == 0 {
		return 0, nil
	}
	if err := json.Unmarshal(question.Options, &options); err != nil {
		return 0, Errorf(ErrCodeValidation, "Question %d has a malformed option list!", question.ID)
	}
	return len(options), nil
}
