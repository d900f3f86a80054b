// SPDX-License-Identifier: BSD-3-Clause

// Package ambient wraps a single DHT-class temperature sensor with the
// spike filter documented for the vent hysteresis controller. The sensor
// driver itself is an external utility reached through a Reader; the
// retry budget against the DHT one-wire/GPIO protocol's transient read
// failures lives in the Reader (GPIOReader in reader.go), while Sensor
// owns only the known-zero-reading debounce, grounded on the upstream
// framework's validate-then-cache shape for sysfs temperature probes
// (pkg/thermal).
package ambient

import "fmt"

// sentinel is the initial cached value: far below any plausible reading,
// so the first valid read always replaces it.
const sentinel = -100

// Reader reads a temperature in °C from the underlying device.
// Implementations own whatever retry budget the physical sensor protocol
// requires (GPIOReader makes up to three attempts); Sensor calls Read
// exactly once per Temperature call.
type Reader interface {
	Read() (int, error)
}

// Sensor is one ambient temperature probe with its own cached reading.
// Multiple vent controllers may hold a reference to the same Sensor
// (spec: sensors are borrowed, not owned, by vents); because the
// supervisor loop is single-threaded, reads are naturally serialized and
// no locking is required.
type Sensor struct {
	id     string
	reader Reader
	cached int
}

// New constructs a Sensor around the given Reader, seeded with the
// sentinel cache value.
func New(id string, reader Reader) *Sensor {
	return &Sensor{id: id, reader: reader, cached: sentinel}
}

// ID returns the sensor's configured identifier.
func (s *Sensor) ID() string {
	return s.id
}

// Temperature calls the Reader once and applies the spike filter,
// returning the resulting (possibly still-cached) temperature in °C. A
// read failure is returned to the caller; the cache is left untouched so
// the next successful read starts from the last known-good value.
func (s *Sensor) Temperature() (int, error) {
	reading, err := s.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("%w: sensor %q: %w", ErrRead, s.id, err)
	}

	if reading == 0 && s.cached-reading > 5 {
		return s.cached, nil
	}

	s.cached = reading
	return s.cached, nil
}

// Cached returns the last value returned by Temperature without
// performing a new read, for diagnostics.
func (s *Sensor) Cached() int {
	return s.cached
}
