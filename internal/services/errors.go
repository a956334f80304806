package services

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no asset record matches the id.
	ErrNotFound = errors.New("video not found")
	// ErrBlobNotFound is returned by an ObjectStore when the blob is already gone.
	ErrBlobNotFound = errors.New("blob not found")
	// ErrVersionConflict is returned by Replace when the stored version moved.
	ErrVersionConflict = errors.New("record version conflict")
)

// ValidationError reports missing or malformed request input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// MalformedPathError reports a stored filePath that does not decode to a
// container/key pair.
type MalformedPathError struct {
	Path   string
	Reason string
}

func (e *MalformedPathError) Error() string {
	return fmt.Sprintf("malformed file path %q: %s", e.Path, e.Reason)
}

// StoreError wraps a failure of the metadata or object store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// PartialDeleteError is returned when the blob was removed but the metadata
// record could not be. The record now references a missing blob.
type PartialDeleteError struct {
	ID        string
	Container string
	Key       string
	Err       error
}

func (e *PartialDeleteError) Error() string {
	return fmt.Sprintf("blob %s/%s deleted but metadata record %s still present: %v", e.Container, e.Key, e.ID, e.Err)
}

func (e *PartialDeleteError) Unwrap() error { return e.Err }
