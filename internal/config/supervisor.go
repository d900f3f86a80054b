// SPDX-License-Identifier: BSD-3-Clause

// Package config loads the supervisor's TOML configuration file and
// parses the agent's command-line flags. The decoded structs are plain
// values; the package has no functional options, so cmd/ wiring and
// tests that need a config without a file on disk build the structs
// directly.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// SensorSpec is one `[[sensors]]` table entry: a uniquely identified
// ambient sensor on a GPIO line.
type SensorSpec struct {
	ID   string `toml:"id"`
	Line int    `toml:"line"`
}

// VentSpec is one `[[vents]]` table entry: a relay line, the sensor IDs
// it fuses with GPU temperatures, and its hysteresis thresholds. The
// supplemental min_on_duration (SPEC_FULL.md §4.2) defaults to zero
// (disabled) when absent.
type VentSpec struct {
	ID                  string   `toml:"id"`
	Sensors             []string `toml:"sensors"`
	Line                int      `toml:"line"`
	SensorsTempOn       int      `toml:"sensors_temp_on"`
	SensorsTempOff      int      `toml:"sensors_temp_off"`
	RigTempOn           int      `toml:"rig_temp_on"`
	RigTempOff          int      `toml:"rig_temp_off"`
	MinOnDurationSecond int      `toml:"min_on_duration_seconds"`
}

// RigSpec is one `[[rigs]]` table entry: the agent's health-endpoint
// URI and the two GPIO lines this rig's controller owns.
type RigSpec struct {
	ID              string `toml:"id"`
	URI             string `toml:"uri"`
	LEDLine         int    `toml:"led_line"`
	SwitchLine      int    `toml:"switch_line"`
	CriticalGPUTemp int    `toml:"critical_gpu_temp"`
}

// SupervisorConfig is the top-level decoded shape of the supervisor's
// configuration file (spec.md §3/§6): `sensors`, `vents`, `rigs`, plus
// the GPIO chip device path shared by every line this process opens.
type SupervisorConfig struct {
	GPIOChip string       `toml:"gpio_chip"`
	Sensors  []SensorSpec `toml:"sensors"`
	Vents    []VentSpec   `toml:"vents"`
	Rigs     []RigSpec    `toml:"rigs"`
}

const defaultGPIOChip = "/dev/gpiochip0"

// defaultCriticalGPUTemp is applied to any RigSpec whose
// critical_gpu_temp is left at zero, matching spec.md §3's "default 85°C".
const defaultCriticalGPUTemp = 85

// LoadSupervisorConfig decodes path as TOML into a SupervisorConfig,
// applying the documented defaults (gpio_chip, per-rig
// critical_gpu_temp) to any field left unset in the file.
func LoadSupervisorConfig(path string) (SupervisorConfig, error) {
	var cfg SupervisorConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return SupervisorConfig{}, fmt.Errorf("%w: %s: %w", ErrParse, path, err)
	}

	if cfg.GPIOChip == "" {
		cfg.GPIOChip = defaultGPIOChip
	}
	for i := range cfg.Rigs {
		if cfg.Rigs[i].CriticalGPUTemp == 0 {
			cfg.Rigs[i].CriticalGPUTemp = defaultCriticalGPUTemp
		}
	}
	return cfg, nil
}
