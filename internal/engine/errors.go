package engine

import (
	"errors"
	"fmt"
	"strings"
)

// OrphanRef locates one unresolvable reference: the JSONPath of the
// {ref: id} node and the anchor id it could not find.
type OrphanRef struct {
	Path string `json:"path"`
	ID   int    `json:"id"`
}

func (o OrphanRef) String() string {
	return fmt.Sprintf("path=%s ref=%d", o.Path, o.ID)
}

// GraphErrorCode categorizes graph engine errors.
type GraphErrorCode string

const (
	// ErrCodeOrphanInExpected: building a self-contained expected graph
	// left references that no donor could satisfy.
	ErrCodeOrphanInExpected GraphErrorCode = "ORPHAN_REF_IN_EXPECTED"

	// ErrCodeOrphanAtWrite: the write-time guardrail found orphan
	// references; nothing was persisted.
	ErrCodeOrphanAtWrite GraphErrorCode = "ORPHAN_REF_AT_WRITE"

	// ErrCodeStrictCaptureRef: strict mode found a reference surviving
	// projection without a same-pass anchor.
	ErrCodeStrictCaptureRef GraphErrorCode = "STRICT_CAPTURE_REF"

	// ErrCodeUnresolvedRef: materialization hit a reference absent from
	// the anchor index. Materialization fails loudly, it never guesses.
	ErrCodeUnresolvedRef GraphErrorCode = "UNRESOLVED_REF"
)

// GraphError is a structured error with machine-checkable diagnostics:
// every orphan carries its JSONPath and integer id rather than an opaque
// message.
type GraphError struct {
	Code    GraphErrorCode
	Message string

	// Func names the recorded call the graphs belong to, when known.
	Func string

	// Orphans lists every unresolvable reference found.
	Orphans []OrphanRef
}

// Error implements the error interface.
func (e *GraphError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Code, e.Message)
	if e.Func != "" {
		fmt.Fprintf(&b, " (func=%s)", e.Func)
	}
	if len(e.Orphans) > 0 {
		details := make([]string, len(e.Orphans))
		for i, o := range e.Orphans {
			details[i] = o.String()
		}
		fmt.Fprintf(&b, ": %s", strings.Join(details, "; "))
	}
	return b.String()
}

// NewOrphanInExpectedError reports orphan references left in an expected
// snapshot after inlining.
func NewOrphanInExpectedError(funcName string, orphans []OrphanRef) *GraphError {
	return &GraphError{
		Code:    ErrCodeOrphanInExpected,
		Message: fmt.Sprintf("expected snapshot has %d unresolved reference(s) after inlining", len(orphans)),
		Func:    funcName,
		Orphans: orphans,
	}
}

// NewOrphanAtWriteError reports orphan references caught by the storage
// guardrail before any bytes were written.
func NewOrphanAtWriteError(funcName string, orphans []OrphanRef) *GraphError {
	return &GraphError{
		Code:    ErrCodeOrphanAtWrite,
		Message: fmt.Sprintf("result graph has %d orphan reference(s); refusing to persist", len(orphans)),
		Func:    funcName,
		Orphans: orphans,
	}
}

// NewStrictCaptureError reports references that survived projection
// without a same-pass anchor, in strict capture mode.
func NewStrictCaptureError(orphans []OrphanRef) *GraphError {
	return &GraphError{
		Code:    ErrCodeStrictCaptureRef,
		Message: fmt.Sprintf("capture produced %d orphan reference(s) after rendered projection", len(orphans)),
		Orphans: orphans,
	}
}

// NewUnresolvedRefError reports a reference the materializer could not
// resolve against the merged anchor index.
func NewUnresolvedRefError(path string, id int) *GraphError {
	return &GraphError{
		Code:    ErrCodeUnresolvedRef,
		Message: "reference target not found in any supplied graph",
		Orphans: []OrphanRef{{Path: path, ID: id}},
	}
}

// IsOrphanError returns true if the error is any orphan-reference error.
// Uses errors.As to handle wrapped errors.
func IsOrphanError(err error) bool {
	var ge *GraphError
	if errors.As(err, &ge) {
		return ge.Code == ErrCodeOrphanInExpected || ge.Code == ErrCodeOrphanAtWrite
	}
	return false
}

// IsUnresolvedRefError returns true for fatal materialization failures.
func IsUnresolvedRefError(err error) bool {
	var ge *GraphError
	if errors.As(err, &ge) {
		return ge.Code == ErrCodeUnresolvedRef
	}
	return false
}
