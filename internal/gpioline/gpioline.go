// SPDX-License-Identifier: BSD-3-Clause

// Package gpioline provides the minimal GPIO line abstraction the rig and
// vent controllers are built on: open a numbered offset on a chip as input
// or output, read it, and drive it high or low. It wraps
// github.com/warthog618/go-gpiocdev the same way pkg/gpio does in the
// upstream BMC framework this package is descended from, but trims the
// name-based line lookup, bulk line groups, and blink-pattern helpers down
// to the three-method interface this system actually needs (read,
// set_high, set_low).
package gpioline

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// Direction is the configured direction of a Line.
type Direction int

const (
	// Input lines are read-only.
	Input Direction = iota
	// Output lines are write-only and take an initial value of low.
	Output
)

// Line is a single GPIO offset on a chip, opened for either reading or
// writing. A Line is owned by exactly one controller for its lifetime.
type Line struct {
	chip      string
	offset    int
	direction Direction
	handle    *gpiocdev.Line
}

// Open requests the given offset on chip with the given direction. Output
// lines are requested with an initial value of 0 (low), matching the
// button-press invariant that the switch line rests low between clicks.
func Open(chip string, offset int, dir Direction) (*Line, error) {
	if chip == "" {
		return nil, ErrChipPathEmpty
	}
	if offset < 0 {
		return nil, ErrInvalidOffset
	}

	var reqOpt gpiocdev.LineReqOption
	switch dir {
	case Input:
		reqOpt = gpiocdev.AsInput
	case Output:
		reqOpt = gpiocdev.AsOutput(0)
	default:
		return nil, ErrInvalidDirection
	}

	handle, err := gpiocdev.RequestLine(chip, offset, gpiocdev.WithConsumer("pirig"), reqOpt)
	if err != nil {
		return nil, fmt.Errorf("%w: chip %s offset %d: %w", ErrRequestLine, chip, offset, err)
	}

	return &Line{chip: chip, offset: offset, direction: dir, handle: handle}, nil
}

// Read returns the current level of the line: 0 or 1.
func (l *Line) Read() (int, error) {
	v, err := l.handle.Value()
	if err != nil {
		return 0, fmt.Errorf("%w: chip %s offset %d: %w", ErrRead, l.chip, l.offset, err)
	}
	return v, nil
}

// SetHigh drives an output line to 1.
func (l *Line) SetHigh() error {
	return l.set(1)
}

// SetLow drives an output line to 0.
func (l *Line) SetLow() error {
	return l.set(0)
}

func (l *Line) set(value int) error {
	if l.direction != Output {
		return ErrWriteOnInput
	}
	if err := l.handle.SetValue(value); err != nil {
		return fmt.Errorf("%w: chip %s offset %d value %d: %w", ErrWrite, l.chip, l.offset, value, err)
	}
	return nil
}

// Close releases the underlying line handle.
func (l *Line) Close() error {
	return l.handle.Close()
}
