// SPDX-License-Identifier: BSD-3-Clause

// Package snapshot defines the wire record exchanged between an agent and
// the supervisor, and its TOML encoding. The same format doubles as the
// supervisor's own configuration file format (spec: "the same text
// structured format used by the configuration file"), so this package
// owns the one BurntSushi/toml encode/decode pair both sides share.
package snapshot

import (
	"bytes"
	"fmt"

	"github.com/BurntSushi/toml"
)

// Snapshot is the health record an agent reports for its rig.
type Snapshot struct {
	Hostname string `toml:"hostname"`
	Temp     []int  `toml:"temp"`
	Service  bool   `toml:"service"`
	HWErrors bool   `toml:"hw_errors"`
}

// Encode serializes the snapshot to its wire representation.
func (s Snapshot) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(s); err != nil {
		return nil, fmt.Errorf("snapshot: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses a wire-format snapshot body.
func Decode(body []byte) (Snapshot, error) {
	var s Snapshot
	if _, err := toml.Decode(string(body), &s); err != nil {
		return Snapshot{}, fmt.Errorf("snapshot: decode: %w", err)
	}
	if s.Temp == nil {
		s.Temp = []int{}
	}
	return s, nil
}
