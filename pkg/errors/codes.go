package errors

import "net/http"

// ErrorCode is a string identifier for a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes shared by all layers.
const (
	CodeOK      ErrorCode = "OK"
	CodeUnknown ErrorCode = "COMMON_000"

	CodeInternal           ErrorCode = "COMMON_001"
	CodeInvalidParam       ErrorCode = "COMMON_002"
	CodeNotFound           ErrorCode = "COMMON_003"
	CodeConflict           ErrorCode = "COMMON_004"
	CodeTimeout            ErrorCode = "COMMON_005"
	CodeSerialization      ErrorCode = "COMMON_006"
	CodeValidation         ErrorCode = "COMMON_007"
	CodeServiceUnavailable ErrorCode = "COMMON_008"
)

// Corpus ingestion error codes.
const (
	// CodeCorpusRead marks a failure to read or decode a corpus source
	// (JSONL file, Kafka message).  The affected document is skipped.
	CodeCorpusRead ErrorCode = "CORPUS_001"

	// CodeMalformedSentence marks a sentence that cannot be scanned
	// (nil token slice, out-of-order offsets).  The sentence is skipped
	// and the run continues.
	CodeMalformedSentence ErrorCode = "CORPUS_002"
)

// Engine error codes.
const (
	// CodeAlignmentRejected is a normal outcome, not a failure: no
	// letters-complete alignment exists between an acronym and a candidate
	// phrase.  The occurrence falls through to deferred resolution.
	CodeAlignmentRejected ErrorCode = "ENGINE_001"

	// CodeAcronymUnknown means a lookup was made for an acronym that has
	// no prototype anywhere in the corpus.
	CodeAcronymUnknown ErrorCode = "ENGINE_002"

	// CodeRegistryConflict marks conflicting concurrent merge attempts.
	// The registry resolves these deterministically; the code exists for
	// logging only and is never returned to callers.
	CodeRegistryConflict ErrorCode = "ENGINE_003"

	// CodeInvalidAcronym marks a registry key that fails the acronym-shape
	// predicate (empty string, pure number).
	CodeInvalidAcronym ErrorCode = "ENGINE_004"
)

// Infrastructure error codes.
const (
	CodeDatabaseError  ErrorCode = "INFRA_001"
	CodeMigrationError ErrorCode = "INFRA_002"
	CodeCacheError     ErrorCode = "INFRA_003"
	CodeMessagingError ErrorCode = "INFRA_004"
	CodeConfigError    ErrorCode = "INFRA_005"
)

// httpStatusByCode maps error codes to HTTP status codes for the API layer.
var httpStatusByCode = map[ErrorCode]int{
	CodeOK:                 http.StatusOK,
	CodeInternal:           http.StatusInternalServerError,
	CodeInvalidParam:       http.StatusBadRequest,
	CodeNotFound:           http.StatusNotFound,
	CodeConflict:           http.StatusConflict,
	CodeTimeout:            http.StatusGatewayTimeout,
	CodeSerialization:      http.StatusBadRequest,
	CodeValidation:         http.StatusUnprocessableEntity,
	CodeServiceUnavailable: http.StatusServiceUnavailable,
	CodeCorpusRead:         http.StatusBadRequest,
	CodeMalformedSentence:  http.StatusUnprocessableEntity,
	CodeAlignmentRejected:  http.StatusUnprocessableEntity,
	CodeAcronymUnknown:     http.StatusNotFound,
	CodeInvalidAcronym:     http.StatusBadRequest,
	CodeDatabaseError:      http.StatusInternalServerError,
	CodeMigrationError:     http.StatusInternalServerError,
	CodeCacheError:         http.StatusInternalServerError,
	CodeMessagingError:     http.StatusInternalServerError,
	CodeConfigError:        http.StatusInternalServerError,
}

// HTTPStatus returns the HTTP status code associated with c, defaulting to
// 500 for unmapped codes.
func (c ErrorCode) HTTPStatus() int {
	if s, ok := httpStatusByCode[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}
