package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeConflict           ErrorCode = "COMMON_004"
	ErrCodeValidation         ErrorCode = "COMMON_005"
	ErrCodeSerialization      ErrorCode = "COMMON_006"
	ErrCodeDatabaseError      ErrorCode = "COMMON_007"
	ErrCodeCacheError         ErrorCode = "COMMON_008"
	ErrCodeMessagingError     ErrorCode = "COMMON_009"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_010"
	ErrCodeTimeout            ErrorCode = "COMMON_011"
	ErrCodeNotImplemented     ErrorCode = "COMMON_012"
)

// Assignment-rule module error codes
const (
	ErrCodeRuleNotFound          ErrorCode = "RUL_001"
	ErrCodeInvalidRuleDefinition ErrorCode = "RUL_002"
	ErrCodeRuleDisabled          ErrorCode = "RUL_003"
)

// Case-package module error codes
const (
	ErrCodePackageNotFound          ErrorCode = "PKG_001"
	ErrCodeInvalidStatusTransition  ErrorCode = "PKG_002"
	ErrCodeConcurrentModification   ErrorCode = "PKG_003"
	ErrCodePackageAlreadyAssigned   ErrorCode = "PKG_004"
	ErrCodePackageStatusUnavailable ErrorCode = "PKG_005"
)

// Assignment-engine module error codes
const (
	ErrCodeNoEligibleOrganization ErrorCode = "ASG_001"
	ErrCodeCapacityExceeded       ErrorCode = "ASG_002"
	ErrCodeUnsupportedStrategy    ErrorCode = "ASG_003"
	ErrCodeOrganizationNotFound   ErrorCode = "ASG_004"
)

// Flow/audit module error codes
const (
	ErrCodeFlowAppendFailed  ErrorCode = "FLW_001"
	ErrCodeFlowInvalidRecord ErrorCode = "FLW_002"
)

// CodeOK is the sentinel code for "no error".
const CodeOK ErrorCode = "OK"

// CodeUnknown is returned by GetCode when no AppError is present in a chain.
const CodeUnknown ErrorCode = "UNKNOWN"

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes for the
// interface layer.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeMessagingError:     http.StatusInternalServerError,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeNotImplemented:     http.StatusNotImplemented,

	ErrCodeRuleNotFound:          http.StatusNotFound,
	ErrCodeInvalidRuleDefinition: http.StatusUnprocessableEntity,
	ErrCodeRuleDisabled:          http.StatusConflict,

	ErrCodePackageNotFound:          http.StatusNotFound,
	ErrCodeInvalidStatusTransition:  http.StatusConflict,
	ErrCodeConcurrentModification:   http.StatusConflict,
	ErrCodePackageAlreadyAssigned:   http.StatusConflict,
	ErrCodePackageStatusUnavailable: http.StatusConflict,

	ErrCodeNoEligibleOrganization: http.StatusUnprocessableEntity,
	ErrCodeCapacityExceeded:       http.StatusConflict,
	ErrCodeUnsupportedStrategy:    http.StatusBadRequest,
	ErrCodeOrganizationNotFound:   http.StatusNotFound,

	ErrCodeFlowAppendFailed:  http.StatusInternalServerError,
	ErrCodeFlowInvalidRecord: http.StatusUnprocessableEntity,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeMessagingError:     "message broker error",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeNotImplemented:     "not implemented",

	ErrCodeRuleNotFound:          "assignment rule not found",
	ErrCodeInvalidRuleDefinition: "invalid assignment rule definition",
	ErrCodeRuleDisabled:          "assignment rule is disabled",

	ErrCodePackageNotFound:          "case package not found",
	ErrCodeInvalidStatusTransition:  "invalid case package status transition",
	ErrCodeConcurrentModification:   "case package was modified concurrently",
	ErrCodePackageAlreadyAssigned:   "case package is already assigned",
	ErrCodePackageStatusUnavailable: "case package status does not allow this operation",

	ErrCodeNoEligibleOrganization: "no eligible disposal organization",
	ErrCodeCapacityExceeded:       "organization assignment capacity exceeded",
	ErrCodeUnsupportedStrategy:    "unsupported assignment strategy",
	ErrCodeOrganizationNotFound:   "disposal organization not found",

	ErrCodeFlowAppendFailed:  "failed to append case flow record",
	ErrCodeFlowInvalidRecord: "invalid case flow record",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
