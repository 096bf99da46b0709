package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuestionType_IsValid(t *testing.T) {
	for _, qt := range []QuestionType{
		QuestionTypeMultipleChoice, QuestionTypeTrueFalse, QuestionTypeShortAnswer,
		QuestionTypeMatching, QuestionTypeFillBlank,
	} {
		assert.True(t, qt.IsValid(), "тип %s должен быть валидным", qt)
	}
	assert.False(t, QuestionType("essay").IsValid())
	assert.False(t, QuestionType("").IsValid())
}

func TestQuestionType_IsOptionBased(t *testing.T) {
	assert.True(t, QuestionTypeMultipleChoice.IsOptionBased())
	assert.True(t, QuestionTypeTrueFalse.IsOptionBased())
	assert.False(t, QuestionTypeShortAnswer.IsOptionBased())
	assert.False(t, QuestionTypeMatching.IsOptionBased())
	assert.False(t, QuestionTypeFillBlank.IsOptionBased())
}

func TestIsValidDifficulty(t *testing.T) {
	assert.True(t, IsValidDifficulty(DifficultyBeginner))
	assert.True(t, IsValidDifficulty(DifficultyIntermediate))
	assert.True(t, IsValidDifficulty(DifficultyAdvanced))
	assert.False(t, IsValidDifficulty("expert"))
}
