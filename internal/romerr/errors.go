// Package romerr defines the single error taxonomy every cartforge
// package reports through. No core package returns a bare fmt.Errorf;
// they all return *Error so callers can match on Kind.
package romerr

import "fmt"

// Kind enumerates the failure kinds a build can report.
type Kind string

const (
	GameNotFound         Kind = "GameNotFound"
	NoScenes             Kind = "NoScenes"
	MissingInitialScene  Kind = "MissingInitialScene"
	UnknownLabel         Kind = "UnknownLabel"
	UnknownDomainID      Kind = "UnknownDomainId"
	DuplicateLabel       Kind = "DuplicateLabel"
	CyclicDependency     Kind = "CyclicDependency"
	ZeroPageOverflow     Kind = "ZeroPageOverflow"
	PrgOverflow          Kind = "PrgOverflow"
	ChrOverflow          Kind = "ChrOverflow"
	SizeMismatch         Kind = "SizeMismatch"
	MissingReferenced    Kind = "MissingReferencedLabel"
	BranchOutOfRange     Kind = "BranchOutOfRange"
	UnsupportedAssetKind Kind = "UnsupportedAssetKind"
)

// Error is the single error type returned across package boundaries
// in cartforge. Stage names the pipeline stage that raised it
// (labels, registry, walk, layout, emit) for diagnostics; it is
// informational only and never part of equality checks.
type Error struct {
	Kind    Kind
	Stage   string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Stage != "" {
		return fmt.Sprintf("%s: %s: %s", e.Stage, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is allows errors.Is(err, &Error{Kind: X}) style matching on kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New constructs an *Error with the given kind, stage, and message.
func New(kind Kind, stage, format string, args ...any) *Error {
	return &Error{Kind: kind, Stage: stage, Message: fmt.Sprintf(format, args...)}
}

// Wrap constructs an *Error that records an underlying cause.
func Wrap(kind Kind, stage string, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Stage: stage, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Of builds a sentinel usable with errors.Is, e.g. errors.Is(err, romerr.Of(romerr.UnknownLabel)).
func Of(kind Kind) *Error {
	return &Error{Kind: kind}
}
