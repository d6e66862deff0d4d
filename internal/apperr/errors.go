// Package apperr defines the error taxonomy shared by the ingestion pipeline,
// the session registry and the transport layers.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrNoDocument    = errors.New("no document loaded")
	ErrAlreadyExists = errors.New("already exists")
)

// PackageError reports a package that cannot be opened or lacks a required member.
type PackageError struct {
	Path   string
	Member string
	Err    error
}

func (e *PackageError) Error() string {
	switch {
	case e.Member != "" && e.Err != nil:
		return fmt.Sprintf("package %s: member %s: %v", e.Path, e.Member, e.Err)
	case e.Member != "":
		return fmt.Sprintf("package %s: missing member %s", e.Path, e.Member)
	default:
		return fmt.Sprintf("package %s: %v", e.Path, e.Err)
	}
}

func (e *PackageError) Unwrap() error { return e.Err }

// FormatError reports malformed markup inside a package member.
// Offset is the byte offset in the member stream, or -1 when unknown.
type FormatError struct {
	Member string
	Offset int64
	Msg    string
	Err    error
}

func (e *FormatError) Error() string {
	msg := e.Msg
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg = msg + ": " + e.Err.Error()
		}
	}
	if e.Offset >= 0 {
		return fmt.Sprintf("format error in %s at offset %d: %s", e.Member, e.Offset, msg)
	}
	return fmt.Sprintf("format error in %s: %s", e.Member, msg)
}

func (e *FormatError) Unwrap() error { return e.Err }

// QueryError reports malformed window or query parameters at a transport boundary.
type QueryError struct {
	Field string
	Msg   string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}

// IsLoadError reports whether err is a PackageError or a FormatError.
func IsLoadError(err error) bool {
	var pe *PackageError
	var fe *FormatError
	return errors.As(err, &pe) || errors.As(err, &fe)
}
