// SPDX-License-Identifier: BSD-3-Clause

package config

import (
	"flag"
	"fmt"
	"io"
)

// defaultAgentService is the managed service name assumed when -s is
// omitted, per spec.md §6.
const defaultAgentService = "miner"

// AgentFlags is the agent's CLI surface (spec.md §6): `-s`, `-p`, `-g`,
// `-i`, `-h`.
type AgentFlags struct {
	Service string
	Port    int
	GPUs    int
	OneShot bool
}

// ParseAgentFlags parses args (typically os.Args[1:]) into AgentFlags.
// `-h`/`-help` causes flag.Parse to return flag.ErrHelp after printing
// usage to out; callers should exit 0 in that case and nonzero for any
// other error, matching spec.md §6's "nonzero on argument parse failure".
func ParseAgentFlags(args []string, out io.Writer) (AgentFlags, error) {
	fs := flag.NewFlagSet("pirig-agent", flag.ContinueOnError)
	fs.SetOutput(out)

	service := fs.String("s", defaultAgentService, "name of the managed mining service")
	port := fs.Int("p", 0, "listen port; starts the HTTP daemon when present")
	gpus := fs.Int("g", 0, "expected GPU count (0 disables the count check)")
	oneShot := fs.Bool("i", false, "print one snapshot to stdout and exit")

	fs.Usage = func() {
		fmt.Fprintf(out, "usage: pirig-agent [-s service] [-p port] [-g gpus] [-i]\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return AgentFlags{}, err
	}

	return AgentFlags{
		Service: *service,
		Port:    *port,
		GPUs:    *gpus,
		OneShot: *oneShot,
	}, nil
}
