package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ServiceError представляет ошибку микросервиса с HTTP-статусом
type ServiceError struct {
	Code    int    // HTTP-статус
	Message string // Сообщение об ошибке
	Err     error  // Исходная ошибка
}

// NewServiceError создает новую ошибку сервиса
func NewServiceError(code int, message string, err error) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error реализует интерфейс error
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap возвращает оригинальную ошибку
func (e *ServiceError) Unwrap() error {
	return e.Err
}

func NewNotFoundError(resourceType string, id interface{}) *ServiceError {
	message := fmt.Sprintf("%s с ID=%v не найден", resourceType, id)
	return NewServiceError(http.StatusNotFound, message, ErrNotFound)
}

func NewAlreadyExistsError(resourceType string, id interface{}) *ServiceError {
	message := fmt.Sprintf("%s с ID=%v уже существует", resourceType, id)
	return NewServiceError(http.StatusConflict, message, ErrAlreadyExists)
}

func NewInternalServerError(err error) *ServiceError {
	return NewServiceError(http.StatusInternalServerError, "Внутренняя ошибка сервера", err)
}

func NewBadRequestError(reason string) *ServiceError {
	message := "Некорректный запрос"
	if reason != "" {
		message = fmt.Sprintf("%s: %s", message, reason)
	}
	return NewServiceError(http.StatusBadRequest, message, ErrBadRequest)
}

func NewValidationError(field, reason string) *ServiceError {
	message := fmt.Sprintf("Ошибка валидации поля '%s': %s", field, reason)
	return NewServiceError(http.StatusBadRequest, message, ErrBadRequest)
}

// ToHTTPResponse преобразует ошибку в HTTP-статус и тело ответа
func ToHTTPResponse(err error) (int, HTTPErrorResponse) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Code, ErrorResponse(se.Message, nil)
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, ErrorResponse(err.Error(), nil)
	case errors.Is(err, ErrAlreadyExists):
		return http.StatusConflict, ErrorResponse(err.Error(), nil)
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, ErrorResponse(err.Error(), nil)
	case errors.Is(err, ErrBadRequest), errors.Is(err, ErrMalformedMessage):
		return http.StatusBadRequest, ErrorResponse(err.Error(), nil)
	default:
		return http.StatusInternalServerError, ErrorResponse("Внутренняя ошибка сервера", nil)
	}
}
