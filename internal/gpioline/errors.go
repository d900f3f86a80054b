// SPDX-License-Identifier: BSD-3-Clause

package gpioline

import "errors"

var (
	// ErrChipPathEmpty indicates a line was opened with an empty chip path.
	ErrChipPathEmpty = errors.New("gpioline: chip path cannot be empty")
	// ErrInvalidOffset indicates a negative line offset was supplied.
	ErrInvalidOffset = errors.New("gpioline: line offset cannot be negative")
	// ErrInvalidDirection indicates an unrecognized line direction.
	ErrInvalidDirection = errors.New("gpioline: invalid line direction")
	// ErrRequestLine indicates the underlying gpiocdev request failed.
	ErrRequestLine = errors.New("gpioline: failed to request line")
	// ErrRead indicates a read of the line's value failed.
	ErrRead = errors.New("gpioline: failed to read line value")
	// ErrWrite indicates a write of the line's value failed.
	ErrWrite = errors.New("gpioline: failed to write line value")
	// ErrWriteOnInput indicates a write was attempted on a line opened as input.
	ErrWriteOnInput = errors.New("gpioline: cannot write an input line")
)
