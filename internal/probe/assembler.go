// SPDX-License-Identifier: BSD-3-Clause

package probe

import (
	"context"

	"github.com/ktsol/pirig/internal/snapshot"
)

// Assembler composes the four probes into a health snapshot.
type Assembler struct {
	Hostname HostnameProber
	AMD      AMDProber
	NVIDIA   NVIDIAProber
	Service  ServiceProber
	Log      LogProber

	// ServiceName is the managed unit passed to the service and log
	// probes.
	ServiceName string
	// ExpectedGPUs is the configured GPU count; zero disables the count
	// check component of the hardware-error heuristic.
	ExpectedGPUs int
}

// NewAssembler builds an Assembler wired to the real OS-backed probes.
func NewAssembler(serviceName string, expectedGPUs int) *Assembler {
	return &Assembler{
		Hostname:     ExecHostnameProber{},
		AMD:          NewSysfsAMDProber(),
		NVIDIA:       ExecNVIDIAProber{},
		Service:      SystemctlServiceProber{},
		Log:          JournalctlLogProber{},
		ServiceName:  serviceName,
		ExpectedGPUs: expectedGPUs,
	}
}

// Assemble gathers a fresh snapshot. It never returns an error: every
// probe degrades to a neutral value on failure, per spec.md §7.
func (a *Assembler) Assemble(ctx context.Context) snapshot.Snapshot {
	temps := append([]int{}, a.AMD.AMDTemps()...)
	temps = append(temps, a.NVIDIA.NVIDIATemps(ctx)...)

	active := a.Service.Active(ctx, a.ServiceName)
	countMismatch := a.ExpectedGPUs != 0 && len(temps) != a.ExpectedGPUs
	hwErr := countMismatch || a.Log.HasHardwareError(ctx, a.ServiceName)

	return snapshot.Snapshot{
		Hostname: a.Hostname.Hostname(ctx),
		Temp:     temps,
		Service:  active,
		HWErrors: hwErr,
	}
}
