package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeIO           ErrorType = "IO_ERROR"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidReference ErrorCode = "INVALID_REFERENCE"
	ErrCodeInvalidOperation ErrorCode = "INVALID_OPERATION"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
	ErrCodeUsernameTaken      ErrorCode = "USERNAME_TAKEN"
	ErrCodeWeakPassword       ErrorCode = "WEAK_PASSWORD"
	ErrCodeForbidden          ErrorCode = "FORBIDDEN"

	ErrCodeBatchNotFound      ErrorCode = "BATCH_NOT_FOUND"
	ErrCodePersonNotFound     ErrorCode = "PERSON_NOT_FOUND"
	ErrCodeExperimentNotFound ErrorCode = "EXPERIMENT_NOT_FOUND"
	ErrCodeFileNotFound       ErrorCode = "FILE_NOT_FOUND"
	ErrCodeRecordNotFound     ErrorCode = "RECORD_NOT_FOUND"
	ErrCodeSensorNotFound     ErrorCode = "SENSOR_NOT_FOUND"
	ErrCodeUserNotFound       ErrorCode = "USER_NOT_FOUND"

	ErrCodeDuplicateBatchNumber ErrorCode = "DUPLICATE_BATCH_NUMBER"
	ErrCodeDuplicateMember      ErrorCode = "DUPLICATE_MEMBER"
	ErrCodeDuplicateFileName    ErrorCode = "DUPLICATE_FILE_NAME"
	ErrCodeDependentRecords     ErrorCode = "DEPENDENT_RECORDS"
	ErrCodeLastMember           ErrorCode = "LAST_MEMBER"

	ErrCodeFileIO ErrorCode = "FILE_IO"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok {
			if len(validationErrors.Errors) == 1 {
				return validationErrors.Errors[0].Message
			} else if len(validationErrors.Errors) > 1 {
				messages := make([]string, len(validationErrors.Errors))
				for i, err := range validationErrors.Errors {
					messages[i] = err.Message
				}
				return strings.Join(messages, "; ")
			}
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	return &AppError{
		Type:       e.Type,
		Code:       e.Code,
		Message:    e.Message,
		Details:    e.Details,
		StatusCode: e.StatusCode,
		Cause:      cause,
	}
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

// NewInvalidReferenceError reports a foreign key target that does not exist.
// It maps to 400 rather than 404: the missing entity is part of the payload,
// not the addressed resource.
func NewInvalidReferenceError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeInvalidReference,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewInvalidOperationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewIOError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeIO,
		Code:       ErrCodeFileIO,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

var (
	ErrInvalidCredentials = NewUnauthorizedError("Invalid username or password", ErrCodeInvalidCredentials)
	ErrInvalidToken       = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)
	ErrForbidden          = NewForbiddenError("Insufficient permissions", ErrCodeForbidden)
	ErrUsernameTaken      = NewConflictError("Username already taken", ErrCodeUsernameTaken)

	ErrBatchNotFound      = NewNotFoundError("Batch not found", ErrCodeBatchNotFound)
	ErrPersonNotFound     = NewNotFoundError("Person not found", ErrCodePersonNotFound)
	ErrExperimentNotFound = NewNotFoundError("Experiment not found", ErrCodeExperimentNotFound)
	ErrFileNotFound       = NewNotFoundError("Competitor file not found", ErrCodeFileNotFound)
	ErrRecordNotFound     = NewNotFoundError("Finger blood record not found", ErrCodeRecordNotFound)
	ErrSensorNotFound     = NewNotFoundError("Sensor not found", ErrCodeSensorNotFound)
	ErrUserNotFound       = NewNotFoundError("User not found", ErrCodeUserNotFound)
)

func IsAppError(err error) (*AppError, bool) {
	if appErr, ok := err.(*AppError); ok {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
