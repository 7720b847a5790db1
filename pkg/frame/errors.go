package frame

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFileNotFound is returned when an input path does not resolve to a readable file.
	ErrFileNotFound = errors.New("file not found")
	// ErrParse is returned for input that is not well-formed tabular text.
	ErrParse = errors.New("parse error")
	// ErrColumnNotFound matches every *ColumnNotFoundError.
	ErrColumnNotFound = errors.New("column not found")
	// ErrDataNotLoaded is returned when an operation gets no record set to work on.
	ErrDataNotLoaded = errors.New("data not loaded")
)

// ColumnNotFoundError names a missing column and every column that does exist.
type ColumnNotFoundError struct {
	Column    string
	Available []string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("column %q not found; available columns: [%s]", e.Column, strings.Join(e.Available, ", "))
}

func (e *ColumnNotFoundError) Is(target error) bool { return target == ErrColumnNotFound }
