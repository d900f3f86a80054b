// SPDX-License-Identifier: BSD-3-Clause

package probe

import (
	"context"
	"os/exec"
	"strings"
)

// undefinedHostname is returned whenever the hostname lookup fails.
const undefinedHostname = "undefined"

// HostnameProber reports the agent host's hostname.
type HostnameProber interface {
	Hostname(ctx context.Context) string
}

// ExecHostnameProber shells out to the system hostname utility, matching
// the subprocess-wrapping idiom the other probes use for OS facts with no
// structured Go API.
type ExecHostnameProber struct{}

// Hostname returns the trimmed output of `hostname`, or "undefined" on
// any failure.
func (ExecHostnameProber) Hostname(ctx context.Context) string {
	out, err := exec.CommandContext(ctx, "hostname").Output()
	if err != nil {
		return undefinedHostname
	}
	name := strings.TrimSpace(string(out))
	if name == "" {
		return undefinedHostname
	}
	return name
}
