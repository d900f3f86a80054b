// SPDX-License-Identifier: BSD-3-Clause

package probe

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const defaultHwmonPath = "/sys/class/hwmon"

// AMDProber enumerates AMD GPU temperatures.
type AMDProber interface {
	AMDTemps() []int
}

// SysfsAMDProber walks /sys/class/hwmon exactly as the upstream
// framework's hwmon discoverer does (pkg/hwmon/discovery.go), but
// narrowed to the one fact this system needs: temp1_input, in °C, for
// every hwmon device whose name file contains "amdgpu". Devices that fail
// any step are silently skipped. Devices are visited in the order
// os.ReadDir returns them, which is sorted by entry name (so "hwmon10"
// comes before "hwmon2").
type SysfsAMDProber struct {
	// BasePath overrides the hwmon root, for tests.
	BasePath string
}

// NewSysfsAMDProber returns a prober rooted at the real /sys/class/hwmon.
func NewSysfsAMDProber() *SysfsAMDProber {
	return &SysfsAMDProber{BasePath: defaultHwmonPath}
}

// AMDTemps returns one reading per discovered amdgpu hwmon device, in
// entry-name order.
func (p *SysfsAMDProber) AMDTemps() []int {
	base := p.BasePath
	if base == "" {
		base = defaultHwmonPath
	}

	entries, err := os.ReadDir(base)
	if err != nil {
		return nil
	}

	var temps []int
	for _, entry := range entries {
		nameBytes, err := os.ReadFile(filepath.Join(base, entry.Name(), "name"))
		if err != nil {
			continue
		}
		if !strings.Contains(string(nameBytes), "amdgpu") {
			continue
		}

		milliBytes, err := os.ReadFile(filepath.Join(base, entry.Name(), "temp1_input"))
		if err != nil {
			continue
		}
		milli, err := strconv.Atoi(strings.TrimSpace(string(milliBytes)))
		if err != nil {
			continue
		}

		temps = append(temps, milli/1000)
	}

	return temps
}
