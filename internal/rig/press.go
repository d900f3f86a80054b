// SPDX-License-Identifier: BSD-3-Clause

package rig

import (
	"context"
	"fmt"
	"time"

	"github.com/ktsol/pirig/internal/gpioline"
)

// ButtonPresser performs the two button-press sequences the power-cycle
// state machine relies on. Both sequences start and end with the switch
// line low, satisfying invariant 4 in every implementation.
type ButtonPresser interface {
	ShortClick(ctx context.Context) error
	LongPress(ctx context.Context) error
}

// GPIOPresser drives a real switch-output GPIO line, grounded on the
// upstream framework's ToggleGPIOCtx (pkg/gpio/gpio.go): set high, wait
// for the hold duration (cancellable via ctx, always releasing low on
// cancellation), set low.
type GPIOPresser struct {
	Line  *gpioline.Line
	Sleep func(time.Duration)

	ShortDuration time.Duration
	LongDuration  time.Duration
}

// NewGPIOPresser returns a presser with the specification's default
// click/press durations.
func NewGPIOPresser(line *gpioline.Line) *GPIOPresser {
	return &GPIOPresser{
		Line:          line,
		Sleep:         time.Sleep,
		ShortDuration: 750 * time.Millisecond,
		LongDuration:  6 * time.Second,
	}
}

// ShortClick performs the 750ms power-on/soft-off click.
func (p *GPIOPresser) ShortClick(ctx context.Context) error {
	return p.press(ctx, p.ShortDuration)
}

// LongPress performs the 6s PSU-level hard-off press.
func (p *GPIOPresser) LongPress(ctx context.Context) error {
	return p.press(ctx, p.LongDuration)
}

func (p *GPIOPresser) press(ctx context.Context, hold time.Duration) error {
	if err := p.Line.SetHigh(); err != nil {
		return fmt.Errorf("rig: button press: %w", err)
	}

	done := make(chan struct{})
	go func() {
		p.Sleep(hold)
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		_ = p.Line.SetLow()
		return ctx.Err()
	}

	if err := p.Line.SetLow(); err != nil {
		return fmt.Errorf("rig: button release: %w", err)
	}
	return nil
}
