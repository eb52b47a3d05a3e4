// internal/errors/errors.go
package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies an application error.
type ErrorType string

const (
	ErrorTypeDecode            ErrorType = "decode_error"
	ErrorTypeUnsupportedFormat ErrorType = "unsupported_format"
	ErrorTypeAnalysisFailed    ErrorType = "analysis_failed"
	ErrorTypeSynthesisFailed   ErrorType = "synthesis_failed"
	ErrorTypeInvalidEmotion    ErrorType = "invalid_emotion"
	ErrorTypeInvalidState      ErrorType = "invalid_state"
	ErrorTypeValidation        ErrorType = "validation_error"
	ErrorTypeNotFound          ErrorType = "not_found"
	ErrorTypeError             ErrorType = "processing_error"
)

// Sentinels for errors.Is checks across package boundaries.
var (
	ErrDecode            = errors.New("input bytes could not be decoded")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrAnalysisFailed    = errors.New("analysis capability failed")
	ErrSynthesisFailed   = errors.New("speech synthesis failed")
	ErrInvalidEmotion    = errors.New("emotion outside the allowed set")
	ErrInvalidState      = errors.New("operation not valid in current state")
)

// AppError carries a classified error with a user-facing code.
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
	Code    string
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates an AppError of the given type.
func NewAppError(errType ErrorType, message string, originalError error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Err:     originalError,
		Code:    generateErrorCode(errType),
	}
}

// NewDecodeError wraps a malformed-bytes failure, chained to ErrDecode.
func NewDecodeError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeDecode, message, wrapSentinel(ErrDecode, originalError))
}

// NewUnsupportedFormatError reports an unrecognized file extension.
func NewUnsupportedFormatError(ext string) *AppError {
	return NewAppError(ErrorTypeUnsupportedFormat,
		fmt.Sprintf("unsupported file format: %q", ext), ErrUnsupportedFormat)
}

// NewAnalysisFailedError wraps an NLP capability failure.
func NewAnalysisFailedError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeAnalysisFailed, message, wrapSentinel(ErrAnalysisFailed, originalError))
}

// NewSynthesisFailedError wraps a speech capability failure.
func NewSynthesisFailedError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeSynthesisFailed, message, wrapSentinel(ErrSynthesisFailed, originalError))
}

// NewInvalidEmotionError reports an emotion value outside the enumerated set.
func NewInvalidEmotionError(value string) *AppError {
	return NewAppError(ErrorTypeInvalidEmotion,
		fmt.Sprintf("invalid emotion %q", value), ErrInvalidEmotion)
}

// NewInvalidStateError reports an operation attempted in the wrong state.
func NewInvalidStateError(message string) *AppError {
	return NewAppError(ErrorTypeInvalidState, message, ErrInvalidState)
}

// NewValidationError creates a request validation error.
func NewValidationError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeValidation, message, originalError)
}

// NewNotFoundError creates a missing-resource error.
func NewNotFoundError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeNotFound, message, originalError)
}

// NewProcessingError creates a generic processing error.
func NewProcessingError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeError, message, originalError)
}

// wrapSentinel keeps both the sentinel and the original cause on the chain.
func wrapSentinel(sentinel, cause error) error {
	if cause == nil {
		return sentinel
	}
	return fmt.Errorf("%w: %w", sentinel, cause)
}

// IsType reports whether err is an AppError of the given type.
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}

// GetAppError extracts an AppError from an error chain.
func GetAppError(err error) (*AppError, bool) {
	var appErr *AppError
	ok := errors.As(err, &appErr)
	return appErr, ok
}

func generateErrorCode(errType ErrorType) string {
	switch errType {
	case ErrorTypeDecode:
		return "DECODE_ERROR"
	case ErrorTypeUnsupportedFormat:
		return "UNSUPPORTED_FORMAT"
	case ErrorTypeAnalysisFailed:
		return "ANALYSIS_FAILED"
	case ErrorTypeSynthesisFailed:
		return "SYNTHESIS_FAILED"
	case ErrorTypeInvalidEmotion:
		return "INVALID_EMOTION"
	case ErrorTypeInvalidState:
		return "INVALID_STATE"
	case ErrorTypeValidation:
		return "VALIDATION_ERROR"
	case ErrorTypeNotFound:
		return "NOT_FOUND"
	default:
		return "PROCESSING_ERROR"
	}
}
