package helper

import (
	"github.com/yourusername/quiz-engine/internal/domain/entity"
)

// Shuffler перемешивает n элементов через swap, сигнатура совпадает с rand.Shuffle
type Shuffler func(n int, swap func(i, j int))

// StudentOption - вариант ответа без признака правильности
type StudentOption struct {
	ID         uint   `json:"id"`
	OptionText string `json:"option_text"`
}

// ConvertOptionsForStudent убирает is_correct и при необходимости перемешивает варианты.
// Исходный слайс не меняется.
func ConvertOptionsForStudent(options []entity.QuizOption, shuffle Shuffler) []StudentOption {
	converted := make([]StudentOption, len(options))
	for i, opt := range options {
		converted[i] = StudentOption{ID: opt.ID, OptionText: opt.OptionText}
	}
	if shuffle != nil && len(converted) > 1 {
		shuffle(len(converted), func(i, j int) {
			converted[i], converted[j] = converted[j], converted[i]
		})
	}
	return converted
}
