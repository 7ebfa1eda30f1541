// Package errors provides the error taxonomy shared by the field mapper, the
// defect-reporter API client, the code generator and the Zeebe workers.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Fetch failures (reported to the user, operation abandoned, no retry in-session)
	ErrCodeIntegrationSettingsFetchFailed ErrorCode = "INTEGRATION_SETTINGS_FETCH_FAILED"
	ErrCodeFieldMappingsFetchFailed       ErrorCode = "FIELD_MAPPINGS_FETCH_FAILED"

	// Mapping / schema errors
	ErrCodeSchemaMismatch   ErrorCode = "SCHEMA_MISMATCH"
	ErrCodeMalformedSchema  ErrorCode = "MALFORMED_SCHEMA"
	ErrCodeInvalidDefect    ErrorCode = "INVALID_DEFECT_RECORD"
	ErrCodeDraftPersistence ErrorCode = "DRAFT_PERSISTENCE_FAILED"

	// Code generation
	ErrCodeDescriptionInvalid ErrorCode = "DESCRIPTION_INVALID"
	ErrCodeCodegenFailed      ErrorCode = "CODEGEN_FAILED"

	// Notifications and events
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeEventPublishFailed     ErrorCode = "EVENT_PUBLISH_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Cause     error                  `json:"-"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.Cause
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		Cause:     cause,
	}
}

// NewIntegrationSettingsFetchFailedError wraps a failed settings request.
func NewIntegrationSettingsFetchFailedError(err error) *StandardError {
	return newError(ErrCodeIntegrationSettingsFetchFailed,
		"Failed to get the Jira integration settings", err.Error(), true, err)
}

// NewFieldMappingsFetchFailedError wraps a failed field mapping request.
func NewFieldMappingsFetchFailedError(project, issueType string, err error) *StandardError {
	e := newError(ErrCodeFieldMappingsFetchFailed,
		"Failed to get the field mappings", err.Error(), true, err)
	e.Metadata = map[string]interface{}{"project": project, "issueType": issueType}
	return e
}

// NewSchemaMismatchError describes a defect property that does not fit its Jira field schema.
func NewSchemaMismatchError(mapping, fieldName string) *StandardError {
	return newError(ErrCodeSchemaMismatch,
		fmt.Sprintf("Defect reporter property '%s' doesn't match the schema of Jira field '%s'.", mapping, fieldName),
		"", false, nil)
}

// NewMalformedSchemaError reports a field schema missing a structural part.
func NewMalformedSchemaError(fieldID, details string) *StandardError {
	e := newError(ErrCodeMalformedSchema, "Malformed Jira field schema", details, false, nil)
	e.Metadata = map[string]interface{}{"fieldId": fieldID}
	return e
}

// NewInvalidDefectError reports an undecodable defect record.
func NewInvalidDefectError(err error) *StandardError {
	return newError(ErrCodeInvalidDefect, "Defect record could not be decoded", err.Error(), false, err)
}

// NewDraftPersistenceError wraps a failed draft write.
func NewDraftPersistenceError(err error) *StandardError {
	return newError(ErrCodeDraftPersistence, "Failed to persist issue draft", err.Error(), true, err)
}

// NewDescriptionInvalidError reports a schema description rejected before rendering.
func NewDescriptionInvalidError(details string) *StandardError {
	return newError(ErrCodeDescriptionInvalid, "Schema description is invalid", details, false, nil)
}

// NewCodegenFailedError wraps a template execution failure.
func NewCodegenFailedError(err error) *StandardError {
	return newError(ErrCodeCodegenFailed, "Client code generation failed", err.Error(), false, err)
}

// NewNotificationSendFailedError wraps a failed user notification.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, "Notification delivery failed",
		fmt.Sprintf("channel: %s, error: %s", channel, err.Error()), true, err)
}

// NewEventPublishFailedError wraps a failed outbound event.
func NewEventPublishFailedError(eventType string, err error) *StandardError {
	return newError(ErrCodeEventPublishFailed, "Event publish failed",
		fmt.Sprintf("event: %s, error: %s", eventType, err.Error()), true, err)
}

// Generic constructors

func NewExternalServiceError(service string, err error) *StandardError {
	return newError("EXTERNAL_SERVICE_ERROR", fmt.Sprintf("External service '%s' error", service), err.Error(), true, err)
}

func NewTimeoutError(service string, err error) *StandardError {
	return newError("TIMEOUT_ERROR", fmt.Sprintf("Service '%s' timeout", service), err.Error(), true, err)
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return newError("RESOURCE_NOT_FOUND", fmt.Sprintf("Resource not found in %s", service), details, false, nil)
}

func NewAuthenticationError(details string) *StandardError {
	return newError("AUTHENTICATION_ERROR", "Authentication failed", details, false, nil)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeIntegrationSettingsFetchFailed,
		ErrCodeFieldMappingsFetchFailed,
		ErrCodeDraftPersistence,
		ErrCodeEventPublishFailed,
		ErrCodeNotificationSendFailed,
		"EXTERNAL_SERVICE_ERROR":
		return 3
	case "TIMEOUT_ERROR":
		return 2
	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      string(stdErr.Code),
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// AsStandard finds a StandardError in err's chain.
func AsStandard(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code ErrorCode) bool {
	stdErr, ok := AsStandard(err)
	return ok && stdErr.Code == code
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "FETCH") || strings.Contains(codeStr, "EXTERNAL") || strings.Contains(codeStr, "TIMEOUT"):
		return "INTEGRATION"
	case strings.Contains(codeStr, "SCHEMA") || strings.Contains(codeStr, "REQUIRED") || strings.Contains(codeStr, "DEFECT"):
		return "MAPPING"
	case strings.Contains(codeStr, "DESCRIPTION") || strings.Contains(codeStr, "CODEGEN"):
		return "CODEGEN"
	case strings.Contains(codeStr, "NOTIFICATION") || strings.Contains(codeStr, "EVENT"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "DRAFT"):
		return "DATABASE"
	default:
		return "OTHER"
	}
}
