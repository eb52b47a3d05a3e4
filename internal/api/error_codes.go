// internal/api/error_codes.go
package api

// API error code constants
const (
	// Generic errors
	ErrorBadRequest    = "BAD_REQUEST"
	ErrorNotFound      = "NOT_FOUND"
	ErrorInternalError = "INTERNAL_ERROR"

	// Upload / extraction errors
	ErrorFileUploadFailed  = "FILE_UPLOAD_FAILED"
	ErrorDecodeFailed      = "DECODE_ERROR"
	ErrorUnsupportedFormat = "UNSUPPORTED_FORMAT"

	// Pipeline errors
	ErrorAnalysisFailed  = "ANALYSIS_FAILED"
	ErrorSynthesisFailed = "SYNTHESIS_FAILED"
	ErrorInvalidEmotion  = "INVALID_EMOTION"
	ErrorInvalidState    = "INVALID_STATE"

	// Project errors
	ErrorProjectNotFound     = "PROJECT_NOT_FOUND"
	ErrorProjectImportFailed = "PROJECT_IMPORT_FAILED"
	ErrorProjectExportFailed = "PROJECT_EXPORT_FAILED"

	// Provider configuration errors
	ErrorProviderUnavailable = "PROVIDER_UNAVAILABLE"
	ErrorProviderInvalid     = "PROVIDER_INVALID"

	// Task errors
	ErrorTaskNotFound = "TASK_NOT_FOUND"
)
