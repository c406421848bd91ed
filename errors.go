package pagecache

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned when a caller violates an operation's preconditions.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNilDocument is returned by New when no document is given.
	ErrNilDocument = errors.New("nil document")

	// ErrUnsortedSelections is returned when a selection list is not in page order.
	ErrUnsortedSelections = errors.New("selection list not sorted by page")

	// ErrClosed is returned when the cache has been closed.
	ErrClosed = errors.New("page cache closed")
)

// RangeError indicates a visible range outside the document or with end < start.
//
// It matches ErrInvalidArgument via errors.Is.
type RangeError struct {
	Start     int
	End       int
	PageCount int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("invalid visible range [%d, %d] for %d pages", e.Start, e.End, e.PageCount)
}

func (e *RangeError) Unwrap() error { return ErrInvalidArgument }

// PageError indicates a page index outside the document.
//
// It matches ErrInvalidArgument via errors.Is.
type PageError struct {
	Page      int
	PageCount int
}

func (e *PageError) Error() string {
	return fmt.Sprintf("page %d out of range [0, %d)", e.Page, e.PageCount)
}

func (e *PageError) Unwrap() error { return ErrInvalidArgument }

// ScaleError indicates a non-positive scale.
//
// It matches ErrInvalidArgument via errors.Is.
type ScaleError struct {
	Scale float64
}

func (e *ScaleError) Error() string {
	return fmt.Sprintf("invalid scale %g", e.Scale)
}

func (e *ScaleError) Unwrap() error { return ErrInvalidArgument }
