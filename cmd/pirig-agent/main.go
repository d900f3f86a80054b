// SPDX-License-Identifier: BSD-3-Clause

// Command pirig-agent runs on a single mining rig. It exposes a local
// HTTP endpoint returning the rig's health snapshot (spec.md §4.4), or,
// in one-shot mode, prints that snapshot to stdout and exits.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/ktsol/pirig/internal/agenthttp"
	"github.com/ktsol/pirig/internal/config"
	"github.com/ktsol/pirig/internal/obslog"
	"github.com/ktsol/pirig/internal/probe"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags, err := config.ParseAgentFlags(args, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	logger := obslog.New()
	assembler := probe.NewAssembler(flags.Service, flags.GPUs)

	ctx := context.Background()

	if flags.OneShot {
		snap := assembler.Assemble(ctx)
		body, err := snap.Encode()
		if err != nil {
			logger.Error("failed to encode snapshot", "error", err)
			return 1
		}
		_, _ = os.Stdout.Write(body)
		return 0
	}

	if flags.Port == 0 {
		fmt.Fprintln(os.Stderr, "pirig-agent: -p <port> or -i is required")
		return 2
	}

	handler := agenthttp.NewHandler(assembler, logger)
	addr := fmt.Sprintf(":%d", flags.Port)
	logger.Info("pirig-agent listening", "addr", addr, "service", flags.Service, "expected_gpus", flags.GPUs)
	if err := agenthttp.ListenAndServe(addr, handler); err != nil {
		logger.Error("agent server exited", "error", err)
		return 1
	}
	return 0
}
