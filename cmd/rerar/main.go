// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// rerar rebuilds RAR archives from their extracted contents by
// searching compressor builds and switch combinations for the one that
// reproduces the published volume checksums.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bureau-foundation/rerar/cmd/rerar/commands"
	"github.com/bureau-foundation/rerar/lib/process"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return commands.Root().Execute(ctx, os.Args[1:])
}
