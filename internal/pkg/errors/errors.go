package errors

import (
	"errors"
	"fmt"
)

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда запись или ресурс не найдены.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized используется для ошибок авторизации (неверный токен, нет прав).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden используется, когда у пользователя недостаточно прав для действия.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation используется для ошибок валидации входных данных.
	ErrValidation = errors.New("validation failed")

	// ErrConflict используется для конфликтов состояния (например, гонка за номер попытки).
	ErrConflict = errors.New("resource state conflict")

	// ErrInvalidState означает, что попытка не находится в допустимом исходном состоянии.
	ErrInvalidState = errors.New("invalid attempt state")

	// ErrAttemptLimitExceeded означает, что пользователь исчерпал лимит попыток.
	ErrAttemptLimitExceeded = errors.New("attempt limit exceeded")
)

// ValidationError описывает некорректный или отсутствующий входной параметр.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Message)
	}
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError создает ValidationError для поля field
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError указывает, какой именно ресурс не найден.
type NotFoundError struct {
	Resource string
	ID       uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s #%d not found", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NewNotFoundError создает NotFoundError
func NewNotFoundError(resource string, id uint) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// AttemptLimitExceededError возвращается, когда число завершенных попыток достигло лимита.
type AttemptLimitExceededError struct {
	Limit int
}

func (e *AttemptLimitExceededError) Error() string {
	return fmt.Sprintf("maximum attempts (%d) reached for this quiz", e.Limit)
}

func (e *AttemptLimitExceededError) Unwrap() error { return ErrAttemptLimitExceeded }

// InvalidStateError возвращается при попытке перехода из недопустимого состояния.
type InvalidStateError struct {
	AttemptID uint
	Status    string
	Operation string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s attempt #%d in status %q", e.Operation, e.AttemptID, e.Status)
}

func (e *InvalidStateError) Unwrap() error { return ErrInvalidState }
