// SPDX-License-Identifier: BSD-3-Clause

package probe

import (
	"context"
	"os/exec"
	"strings"
)

// hwErrorPatterns is Table HW-ERR: substrings whose presence anywhere in
// the last 100 lines of the service's current-boot log indicates a
// hardware-level fault.
var hwErrorPatterns = []string{
	"WATCHDOG: GPU error",
	"hangs in OpenCL call, exit",
	"GpuMiner kx failed",
	"cannot get current temperature, error",
	"are stopped. Restart attemp",
	"Thread exited with code",
	"Miner thread hangs",
	"need to restart miner!",
}

// LogProber scans recent service logs for hardware-error patterns.
type LogProber interface {
	HasHardwareError(ctx context.Context, service string) bool
}

// JournalctlLogProber shells out to `journalctl -b 0 -o cat -n 100 -eu
// <service>` and substring-matches Table HW-ERR.
type JournalctlLogProber struct{}

// HasHardwareError returns true if any Table HW-ERR substring appears in
// the tail of the service's journal for the current boot.
func (JournalctlLogProber) HasHardwareError(ctx context.Context, service string) bool {
	out, err := exec.CommandContext(ctx, "journalctl", "-b", "0", "-o", "cat", "-n", "100", "-eu", service).Output()
	if err != nil {
		return false
	}

	log := string(out)
	for _, pattern := range hwErrorPatterns {
		if strings.Contains(log, pattern) {
			return true
		}
	}
	return false
}
