// SPDX-License-Identifier: BSD-3-Clause

// Package vent implements the ventilation hysteresis controller: one
// relay driven by the maximum of a vent's subscribed ambient sensors and
// the fused GPU-temperature vector the supervisor collects from rig
// polls this tick. Grounded on the sibling fleet-hardware example's
// threshold-with-cached-flag cooling logic (thermal/cooling.go,
// thermal/state.go) rather than the teacher's continuous-output
// thermalmgr, which targets PID fan-speed control, not a binary relay.
package vent

import (
	"fmt"
	"log/slog"
	"time"
)

// sentinel stands in for "no valid reading this tick" on both the
// ambient and GPU sides, matching spec's documented −100 placeholder:
// it can never satisfy an on-threshold and always satisfies an
// off-threshold's "no heat source" reading in isolation.
const sentinel = -100

// Sensor is the subset of *ambient.Sensor a vent needs: a live
// temperature read that may fail (excluding that sensor from this
// tick's max, per spec's sensor-read-failure policy) without otherwise
// disturbing the vent.
type Sensor interface {
	Temperature() (int, error)
}

// Relay is the output side of a vent: a GPIO line driven high (fans on)
// or low (fans off). *gpioline.Line opened as Output satisfies this.
type Relay interface {
	SetHigh() error
	SetLow() error
}

// Controller owns one relay line and a set of borrowed ambient sensor
// references. It holds no lock: the supervisor's single-threaded tick
// loop serializes all access, so the "one observer borrows the sensor
// for the duration of one read" discipline in spec.md §5 is upheld
// without synchronization primitives.
type Controller struct {
	id      string
	relay   Relay
	sensors []Sensor

	sensorsTempOn  int
	sensorsTempOff int
	rigTempOn      int
	rigTempOff     int

	// minOnDuration is the supplemental anti-chatter feature: zero
	// disables it, matching the documented default.
	minOnDuration time.Duration

	relayOn    bool
	turnedOnAt time.Time

	logger *slog.Logger
}

// Option mutates a Controller at construction time.
type Option func(*Controller)

// WithMinOnDuration enables the supplemental minimum-on-duration
// anti-chatter feature: once the relay turns on, it will not turn off
// again until d has elapsed, even if the off condition is met sooner.
func WithMinOnDuration(d time.Duration) Option {
	return func(c *Controller) { c.minOnDuration = d }
}

// New constructs a vent Controller. It returns ErrInvalidThresholds if
// either off threshold is not strictly below its corresponding on
// threshold, per the invariant in spec.md §4.2/§8 property 2.
func New(id string, relay Relay, sensors []Sensor, sensorsTempOn, sensorsTempOff, rigTempOn, rigTempOff int, logger *slog.Logger, opts ...Option) (*Controller, error) {
	if sensorsTempOff >= sensorsTempOn || rigTempOff >= rigTempOn {
		return nil, fmt.Errorf("%w: vent %q", ErrInvalidThresholds, id)
	}

	c := &Controller{
		id:             id,
		relay:          relay,
		sensors:        sensors,
		sensorsTempOn:  sensorsTempOn,
		sensorsTempOff: sensorsTempOff,
		rigTempOn:      rigTempOn,
		rigTempOff:     rigTempOff,
		logger:         logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// RelayOn reports the controller's cached relay state.
func (c *Controller) RelayOn() bool { return c.relayOn }

// Handle evaluates one tick: fuses this vent's subscribed ambient
// readings and gpuTemps into t_max/g_max, applies the hysteresis
// contract (on if either maximum is at or above its on-threshold; off
// only if both maxima are at or below their off-thresholds; otherwise
// no change), then idempotently writes the relay line to match the
// resulting relayOn, logging only on an actual transition.
func (c *Controller) Handle(now time.Time, gpuTemps []int) error {
	tMax := c.sensorMax()
	gMax := gpuMax(gpuTemps)

	want := c.relayOn
	switch {
	case tMax >= c.sensorsTempOn || gMax >= c.rigTempOn:
		want = true
	case tMax <= c.sensorsTempOff && gMax <= c.rigTempOff:
		want = false
	}

	if !want && c.relayOn && c.minOnDuration > 0 && now.Sub(c.turnedOnAt) < c.minOnDuration {
		want = true
	}

	if want && !c.relayOn {
		c.turnedOnAt = now
	}
	if want != c.relayOn {
		c.logger.Info("vent transition", "vent", c.id, "relay_on", want, "t_max", tMax, "g_max", gMax)
		c.relayOn = want
	}

	if c.relayOn {
		return c.relay.SetHigh()
	}
	return c.relay.SetLow()
}

// sensorMax returns the maximum live reading across the vent's
// subscribed sensors, excluding any that fail to read this tick, or the
// sentinel if none succeeded.
func (c *Controller) sensorMax() int {
	max := sentinel
	for _, s := range c.sensors {
		t, err := s.Temperature()
		if err != nil {
			c.logger.Warn("vent sensor read failed, excluding from max", "vent", c.id, "error", err)
			continue
		}
		if t > max {
			max = t
		}
	}
	return max
}

// gpuMax returns the maximum of temps, or the sentinel if temps is
// empty.
func gpuMax(temps []int) int {
	max := sentinel
	for _, t := range temps {
		if t > max {
			max = t
		}
	}
	return max
}
