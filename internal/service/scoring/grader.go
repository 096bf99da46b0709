package scoring

import (
	"github.com/yourusername/quiz-engine/internal/domain/entity"
)

// Grade - оценка одного ответа
type Grade struct {
	IsCorrect bool
	Points    int
}

// Grader оценивает ответ на вопрос своего типа.
// ok == false означает, что тип проверяется вручную и оценку ставить нельзя.
type Grader interface {
	Grade(question *entity.QuizQuestion, selected *entity.QuizOption) (grade Grade, ok bool)
}

// OptionGrader проверяет вопросы с выбором варианта
type OptionGrader struct{}

// Grade: правильный вариант своего вопроса дает баллы вопроса, остальное 0
func (OptionGrader) Grade(question *entity.QuizQuestion, selected *entity.QuizOption) (Grade, bool) {
	if question == nil || selected == nil {
		return Grade{}, false
	}
	if selected.QuestionID != question.ID || !selected.IsCorrect {
		return Grade{IsCorrect: false, Points: 0}, true
	}
	return Grade{IsCorrect: true, Points: question.Points}, true
}

// ManualGrader - для short_answer, matching, fill_blank
type ManualGrader struct{}

// Grade всегда отказывается ставить оценку
func (ManualGrader) Grade(*entity.QuizQuestion, *entity.QuizOption) (Grade, bool) {
	return Grade{}, false
}

// GraderFor выбирает проверку по типу вопроса
func GraderFor(t entity.QuestionType) Grader {
	if t.IsOptionBased() {
		return OptionGrader{}
	}
	return ManualGrader{}
}
