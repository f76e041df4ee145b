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

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeDatabaseError      ErrorCode = "COMMON_012"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
	ErrCodeFeatureDisabled    ErrorCode = "COMMON_015"
	ErrCodeRateLimited        ErrorCode = "COMMON_016"
)

// Short aliases used at call sites.
const (
	CodeUnknown      = ErrorCode("UNKNOWN")
	CodeOK           = ErrorCode("OK")
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeConflict     = ErrCodeConflict
	CodeValidation   = ErrCodeValidation
)

// Molecule Error Codes
const (
	ErrCodeSMILESParseFailed  ErrorCode = "MOL_001"
	ErrCodeMoleculeEmpty      ErrorCode = "MOL_002"
	ErrCodeQueryInvalid       ErrorCode = "MOL_003"
	ErrCodeCanonicalKeyFailed ErrorCode = "MOL_004"
	ErrCodeEditFailed         ErrorCode = "MOL_005"
)

// Minor Changes Engine Error Codes
const (
	ErrCodeConfigInvalid       ErrorCode = "MC_001"
	ErrCodeLibraryLoadFailed   ErrorCode = "MC_002"
	ErrCodeFragmentInvalid     ErrorCode = "MC_003"
	ErrCodeReactionInvalid     ErrorCode = "MC_004"
	ErrCodeRuleUnknown         ErrorCode = "MC_005"
	ErrCodeNoRulesEnabled      ErrorCode = "MC_006"
	ErrCodeProcessFailed       ErrorCode = "MC_007"
	ErrCodeLibraryMissing      ErrorCode = "MC_008"
	ErrCodeVariantLimitReached ErrorCode = "MC_009"
)

// Infrastructure Error Codes
const (
	ErrCodeStorageError      ErrorCode = "INFRA_001"
	ErrCodeMessageQueueError ErrorCode = "INFRA_002"
	ErrCodeMigrationFailed   ErrorCode = "INFRA_003"
)

// Aliases kept short for the infrastructure adapters.
const (
	CodeDBConnectionError = ErrCodeDatabaseError
	CodeDBQueryError      = ErrCodeDatabaseError
	CodeCacheError        = ErrCodeCacheError
	CodeStorageError      = ErrCodeStorageError
	CodeMessageQueueError = ErrCodeMessageQueueError

	CodeSMILESParseFailed = ErrCodeSMILESParseFailed
	CodeQueryInvalid      = ErrCodeQueryInvalid
	CodeConfigInvalid     = ErrCodeConfigInvalid
	CodeLibraryLoadFailed = ErrCodeLibraryLoadFailed
	CodeFragmentInvalid   = ErrCodeFragmentInvalid
	CodeReactionInvalid   = ErrCodeReactionInvalid
	CodeRuleUnknown       = ErrCodeRuleUnknown
	CodeProcessFailed     = ErrCodeProcessFailed
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,
	ErrCodeFeatureDisabled:    http.StatusForbidden,
	ErrCodeRateLimited:        http.StatusTooManyRequests,

	ErrCodeSMILESParseFailed:  http.StatusBadRequest,
	ErrCodeMoleculeEmpty:      http.StatusUnprocessableEntity,
	ErrCodeQueryInvalid:       http.StatusBadRequest,
	ErrCodeCanonicalKeyFailed: http.StatusInternalServerError,
	ErrCodeEditFailed:         http.StatusInternalServerError,

	ErrCodeConfigInvalid:       http.StatusInternalServerError,
	ErrCodeLibraryLoadFailed:   http.StatusInternalServerError,
	ErrCodeFragmentInvalid:     http.StatusBadRequest,
	ErrCodeReactionInvalid:     http.StatusBadRequest,
	ErrCodeRuleUnknown:         http.StatusBadRequest,
	ErrCodeNoRulesEnabled:      http.StatusBadRequest,
	ErrCodeProcessFailed:       http.StatusInternalServerError,
	ErrCodeLibraryMissing:      http.StatusPreconditionFailed,
	ErrCodeVariantLimitReached: http.StatusOK,

	ErrCodeStorageError:      http.StatusInternalServerError,
	ErrCodeMessageQueueError: http.StatusInternalServerError,
	ErrCodeMigrationFailed:   http.StatusInternalServerError,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization error",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeExternalService:    "external service error",
	ErrCodeFeatureDisabled:    "feature disabled",
	ErrCodeRateLimited:        "rate limit exceeded",

	ErrCodeSMILESParseFailed:  "invalid SMILES",
	ErrCodeMoleculeEmpty:      "molecule is empty",
	ErrCodeQueryInvalid:       "invalid substructure query",
	ErrCodeCanonicalKeyFailed: "canonical key computation failed",
	ErrCodeEditFailed:         "molecule edit failed",

	ErrCodeConfigInvalid:       "invalid configuration",
	ErrCodeLibraryLoadFailed:   "failed to load library",
	ErrCodeFragmentInvalid:     "invalid fragment",
	ErrCodeReactionInvalid:     "invalid reaction",
	ErrCodeRuleUnknown:         "unknown rule",
	ErrCodeNoRulesEnabled:      "no rules enabled",
	ErrCodeProcessFailed:       "molecule processing failed",
	ErrCodeLibraryMissing:      "rule requires a library that was not loaded",
	ErrCodeVariantLimitReached: "variant limit reached",

	ErrCodeStorageError:      "object storage error",
	ErrCodeMessageQueueError: "message queue error",
	ErrCodeMigrationFailed:   "database migration failed",
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

//Personal.AI order the ending
