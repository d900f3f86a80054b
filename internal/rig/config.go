// SPDX-License-Identifier: BSD-3-Clause

package rig

import "time"

// Config holds the timing constants and critical-temperature threshold
// for one rig controller. All fields have the defaults documented in the
// power-cycle state machine's design.
type Config struct {
	BootWait        time.Duration
	PowerOffWait    time.Duration
	PowerOff        time.Duration
	PowerOffHardMax time.Duration
	ErrResolveWait  time.Duration
	CriticalGPUTemp int
	HTTPTimeout     time.Duration
	ShortClick      time.Duration
	LongPress       time.Duration
}

// DefaultConfig returns the specification's default constants.
func DefaultConfig() Config {
	return Config{
		BootWait:        300 * time.Second,
		PowerOffWait:    120 * time.Second,
		PowerOff:        180 * time.Second,
		PowerOffHardMax: 240 * time.Second,
		ErrResolveWait:  30 * time.Second,
		CriticalGPUTemp: 85,
		HTTPTimeout:     10 * time.Second,
		ShortClick:      750 * time.Millisecond,
		LongPress:       6 * time.Second,
	}
}

// Option mutates a Config, mirroring the upstream framework's
// functional-options idiom (pkg/gpio/config.go, service/thermalmgr/config.go).
type Option func(*Config)

// WithCriticalGPUTemp overrides the per-rig critical GPU temperature.
func WithCriticalGPUTemp(celsius int) Option {
	return func(c *Config) { c.CriticalGPUTemp = celsius }
}

// WithBootWait overrides BOOT_WAIT.
func WithBootWait(d time.Duration) Option {
	return func(c *Config) { c.BootWait = d }
}

// WithPowerOffWait overrides POWER_OFF_WAIT.
func WithPowerOffWait(d time.Duration) Option {
	return func(c *Config) { c.PowerOffWait = d }
}

// WithPowerOff overrides POWER_OFF.
func WithPowerOff(d time.Duration) Option {
	return func(c *Config) { c.PowerOff = d }
}

// WithPowerOffHardMax overrides POWER_OFF_HARD_MAX.
func WithPowerOffHardMax(d time.Duration) Option {
	return func(c *Config) { c.PowerOffHardMax = d }
}

// WithErrResolveWait overrides ERR_RESOLVE_WAIT.
func WithErrResolveWait(d time.Duration) Option {
	return func(c *Config) { c.ErrResolveWait = d }
}

// WithHTTPTimeout overrides the agent-poll HTTP timeout.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Config) { c.HTTPTimeout = d }
}

// NewConfig builds a Config from DefaultConfig with the given options
// applied.
func NewConfig(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
