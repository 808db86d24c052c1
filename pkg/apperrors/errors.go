// Package apperrors provides the pipeline's error taxonomy.
//
// Every fatal condition named by the specification is a tagged Code rather
// than a plain error string, so callers can switch on category instead of
// matching message text.
package apperrors

import (
	"errors"
	"fmt"
	"time"
)

// Code identifies a fatal-error category. The top-level categories mirror
// the component-independent error taxonomy; the sentinel codes below them
// are the finer-grained failures individual components raise.
type Code string

const (
	// Top-level categories.
	CodeMalformedInput      Code = "MALFORMED_INPUT"
	CodeCryptoMismatch      Code = "CRYPTO_MISMATCH"
	CodeTrustListDivergence Code = "TRUST_LIST_DIVERGENCE"
	CodeArtifactMismatch    Code = "ARTIFACT_MISMATCH"
	CodeProofInvalid        Code = "PROOF_INVALID"
	CodeAuthFailed          Code = "AUTH_FAILED"
	CodeCircuitError        Code = "CIRCUIT_ERROR"
	CodeEnvironment         Code = "ENVIRONMENT"

	// Byte-Range Digest sentinels.
	CodeMalformedPDF     Code = "MALFORMED_PDF"
	CodeRangeOutOfBounds Code = "RANGE_OUT_OF_BOUNDS"

	// CMS Extractor sentinels.
	CodeNotSignedData        Code = "NOT_SIGNED_DATA"
	CodeUnsupportedAlgorithm Code = "UNSUPPORTED_ALGORITHM"
	CodeMalformedASN1        Code = "MALFORMED_ASN1"
	CodeDigestMismatch       Code = "DIGEST_MISMATCH"

	// Merkle Engine sentinels.
	CodeDuplicateLeaf    Code = "DUPLICATE_LEAF"
	CodeCapacityExceeded Code = "CAPACITY_EXCEEDED"

	// Trust-List Ingestor sentinels.
	CodeInvalidFingerprint Code = "INVALID_FINGERPRINT"

	// Witness Assembler sentinels.
	CodeInvalidWitness Code = "INVALID_WITNESS"

	// Verifier step sentinels.
	CodeEUTrustListDivergence Code = "EU_TRUST_LIST_DIVERGENCE"
)

// PipelineError is the concrete error type returned by every exported
// pipeline function that can fail. It carries a category, a human message,
// free-form diagnostic context, and an optional wrapped cause.
type PipelineError struct {
	Code      Code
	Message   string
	Details   string
	Context   map[string]any
	Timestamp time.Time
	Cause     error
}

// Error implements the error interface, rendering as a single-line category
// tag followed by the message (and details, if present).
func (e *PipelineError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s - %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As.
func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// New creates a PipelineError with no cause.
func New(code Code, message string) *PipelineError {
	return &PipelineError{
		Code:      code,
		Message:   message,
		Context:   make(map[string]any),
		Timestamp: time.Now(),
	}
}

// Newf creates a PipelineError with a formatted message.
func Newf(code Code, format string, args ...any) *PipelineError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error with a category and message.
func Wrap(err error, code Code, message string) *PipelineError {
	pe := New(code, message)
	pe.Cause = err
	return pe
}

// Wrapf wraps an existing error with a formatted message.
func Wrapf(err error, code Code, format string, args ...any) *PipelineError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// WithDetails attaches a diagnostic detail line.
func (e *PipelineError) WithDetails(details string) *PipelineError {
	e.Details = details
	return e
}

// WithDetailsf attaches a formatted diagnostic detail line.
func (e *PipelineError) WithDetailsf(format string, args ...any) *PipelineError {
	e.Details = fmt.Sprintf(format, args...)
	return e
}

// WithContext attaches a single key/value diagnostic field.
func (e *PipelineError) WithContext(key string, value any) *PipelineError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// As extracts a *PipelineError from err, if present in its chain.
func As(err error) (*PipelineError, bool) {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// HasCode reports whether err is a PipelineError with the given code.
func HasCode(err error, code Code) bool {
	pe, ok := As(err)
	return ok && pe.Code == code
}
