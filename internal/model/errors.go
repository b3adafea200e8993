package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSchemaViolation     = errors.New("schema violation")
	ErrPolicyViolation     = errors.New("policy violation")
	ErrDuplicateVersion    = errors.New("duplicate package version")
	ErrUnreachableArtifact = errors.New("artifact not reachable")
	ErrHashMismatch        = errors.New("SHA256 mismatch")
	ErrMissingInput        = errors.New("missing input")
)

// Violation is a single problem found in one field of a manifest
type Violation struct {
	Field   string
	Message string
}

func (v Violation) String() string {
	if v.Field == "" {
		return v.Message
	}
	return v.Field + ": " + v.Message
}

func joinViolations(vs []Violation) string {
	s := make([]string, len(vs))
	for i, v := range vs {
		s[i] = v.String()
	}
	return strings.Join(s, "; ")
}

// SchemaViolationError lists every structural problem found in a manifest
type SchemaViolationError struct {
	Source     string
	Violations []Violation
}

func (e *SchemaViolationError) Error() string {
	return fmt.Sprintf("%s in %s: %s", ErrSchemaViolation, e.Source, joinViolations(e.Violations))
}

func (e *SchemaViolationError) Unwrap() error {
	return ErrSchemaViolation
}

// PolicyViolationError lists every manifest value that is not in the allow-list
type PolicyViolationError struct {
	Source     string
	Violations []Violation
}

func (e *PolicyViolationError) Error() string {
	return fmt.Sprintf("%s in %s: %s", ErrPolicyViolation, e.Source, joinViolations(e.Violations))
}

func (e *PolicyViolationError) Unwrap() error {
	return ErrPolicyViolation
}

type DuplicateVersionError struct {
	Key            Key
	Source         string
	ExistingSource string
}

func (e *DuplicateVersionError) Error() string {
	return fmt.Sprintf("%s: %v in %s already declared in %s", ErrDuplicateVersion, e.Key, e.Source, e.ExistingSource)
}

func (e *DuplicateVersionError) Unwrap() error {
	return ErrDuplicateVersion
}

// UnreachableArtifactError is returned when an artifact URL cannot be probed successfully.
// Status is the last HTTP status received, or 0 if the request failed at transport level,
// in which case Cause is set.
type UnreachableArtifactError struct {
	URL    string
	Status int
	Cause  error
}

func (e *UnreachableArtifactError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", ErrUnreachableArtifact, e.URL, e.Cause)
	}
	return fmt.Sprintf("%s (%d): %s", ErrUnreachableArtifact, e.Status, e.URL)
}

func (e *UnreachableArtifactError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrUnreachableArtifact, e.Cause}
	}
	return []error{ErrUnreachableArtifact}
}

type HashMismatchError struct {
	URL      string
	Expected string
	Actual   string
}

func (e *HashMismatchError) Error() string {
	return fmt.Sprintf("%s for %s: %s != %s", ErrHashMismatch, e.URL, e.Actual, e.Expected)
}

func (e *HashMismatchError) Unwrap() error {
	return ErrHashMismatch
}

// MissingInputError is returned when a required input file is absent
type MissingInputError struct {
	What string
	Path string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("%s: %s at %s", ErrMissingInput, e.What, e.Path)
}

func (e *MissingInputError) Unwrap() error {
	return ErrMissingInput
}
