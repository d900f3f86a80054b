// SPDX-License-Identifier: BSD-3-Clause

package probe

import (
	"context"
	"os/exec"
	"strconv"
	"strings"
)

// NVIDIAProber enumerates NVIDIA GPU temperatures via nvidia-smi.
type NVIDIAProber interface {
	NVIDIATemps(ctx context.Context) []int
}

// ExecNVIDIAProber shells out to nvidia-smi once for the GPU count and
// then once per GPU index, matching the two-pass (count, then per-index
// query) invocation spec.md §4.3
// specifies and the BenStein1 nvml-less fallback's own nvidia-smi
// scraping style.
type ExecNVIDIAProber struct{}

// NVIDIATemps returns one reading per GPU reported by nvidia-smi, or nil
// if the utility is missing or reports zero GPUs.
func (ExecNVIDIAProber) NVIDIATemps(ctx context.Context) []int {
	n := nvidiaGPUCount(ctx)
	if n <= 0 {
		return nil
	}

	temps := make([]int, 0, n)
	for i := 0; i < n; i++ {
		t, ok := nvidiaTempAt(ctx, i)
		if !ok {
			continue
		}
		temps = append(temps, t)
	}
	return temps
}

func nvidiaGPUCount(ctx context.Context) int {
	out, err := exec.CommandContext(ctx, "nvidia-smi",
		"--query-gpu=count", "--format=csv,noheader", "-i", "0").Output()
	if err != nil {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(out)))
	if err != nil {
		return 0
	}
	return n
}

func nvidiaTempAt(ctx context.Context, index int) (int, bool) {
	out, err := exec.CommandContext(ctx, "nvidia-smi",
		"--query-gpu=temperature.gpu", "--format=csv,noheader", "-i", strconv.Itoa(index)).Output()
	if err != nil {
		return 0, false
	}
	t, err := strconv.Atoi(strings.TrimSpace(string(out)))
	if err != nil {
		return 0, false
	}
	return t, true
}
