// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package compressor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/bureau-foundation/rerar/lib/clock"
	"github.com/bureau-foundation/rerar/lib/volume"
)

// Invocation is one compressor run.
type Invocation struct {
	// Binary is the compressor executable.
	Binary string

	// Switches are the candidate's literal arguments, command first
	// ("a", "-m3", "-ma4").
	Switches []string

	// Archive is the path of the archive to create, ending in .rar.
	// Volumes are written next to it.
	Archive string

	// Directory is the working directory; Inputs are relative to it.
	Directory string
	Inputs    []string

	// FirstVolume, when set, is called with the first volume once a
	// second one exists. Returning false aborts the run.
	FirstVolume func(path string) bool
}

// Argv returns the full argument list after the binary name.
func (i Invocation) Argv() []string {
	argv := make([]string, 0, len(i.Switches)+1+len(i.Inputs))
	argv = append(argv, i.Switches...)
	argv = append(argv, i.Archive)
	argv = append(argv, i.Inputs...)
	return argv
}

// archiveName is the archive path without directory or .rar suffix.
func (i Invocation) archiveName() string {
	base := filepath.Base(i.Archive)
	if strings.EqualFold(filepath.Ext(base), ".rar") {
		base = base[:len(base)-len(".rar")]
	}
	return base
}

// Execution is the outcome of one run that did not fail.
type Execution struct {
	ExitCode int

	// Volumes lists the produced volumes in order. Empty when the run
	// was cancelled or aborted.
	Volumes []string

	// Output holds the tail of the compressor's combined output.
	Output string

	Duration time.Duration

	// Cancelled is set when the caller's context ended the run.
	Cancelled bool

	// Aborted is set when FirstVolume rejected the first volume.
	Aborted bool
}

// ExecutionError reports a compressor run that could not start or
// exited with an unexpected status.
type ExecutionError struct {
	Binary   string
	ExitCode int // -1 when the process never ran to completion
	Output   string
	Err      error
}

func (e *ExecutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("running %s: %v", e.Binary, e.Err)
	}
	return fmt.Sprintf("%s exited with status %d", e.Binary, e.ExitCode)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// Executor runs invocations.
type Executor interface {
	Execute(ctx context.Context, invocation Invocation) (Execution, error)
}

// ProcessExecutor runs the compressor as a child process.
type ProcessExecutor struct {
	// Clock drives the volume watcher. Nil means the wall clock.
	Clock clock.Clock

	// PollInterval is how often the volume watcher lists the output
	// directory. Zero means 250ms.
	PollInterval time.Duration

	// OutputLimit caps the captured output in bytes. Zero means 16 KiB.
	OutputLimit int

	Logger *slog.Logger
}

// Execute runs invocation and locates the volumes it wrote.
func (p *ProcessExecutor) Execute(ctx context.Context, invocation Invocation) (Execution, error) {
	clk := p.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	limit := p.OutputLimit
	if limit <= 0 {
		limit = 16 * 1024
	}
	if err := ctx.Err(); err != nil {
		return Execution{Cancelled: true}, nil
	}

	runContext, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	cmd := exec.CommandContext(runContext, invocation.Binary, invocation.Argv()...)
	cmd.Dir = invocation.Directory
	output := newTailBuffer(limit)
	cmd.Stdout = output
	cmd.Stderr = output

	// Own process group so the kill reaches every child.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
	}
	cmd.WaitDelay = 5 * time.Second

	started := clk.Now()
	if err := cmd.Start(); err != nil {
		return Execution{}, &ExecutionError{Binary: invocation.Binary, ExitCode: -1, Err: err}
	}

	var aborted atomic.Bool
	watcherDone := make(chan struct{})
	if invocation.FirstVolume != nil {
		interval := p.PollInterval
		if interval <= 0 {
			interval = 250 * time.Millisecond
		}
		go func() {
			defer close(watcherDone)
			if !p.watchFirstVolume(runContext, clk, interval, invocation) {
				logger.Debug("first volume mismatch, aborting candidate", "archive", invocation.Archive)
				aborted.Store(true)
				cancelRun()
			}
		}()
	} else {
		close(watcherDone)
	}

	waitErr := cmd.Wait()
	cancelRun()
	<-watcherDone
	execution := Execution{Duration: clk.Now().Sub(started), Output: output.String()}

	switch {
	case aborted.Load():
		execution.Aborted = true
		return execution, nil
	case ctx.Err() != nil:
		execution.Cancelled = true
		return execution, nil
	}

	if waitErr != nil {
		var exitError *exec.ExitError
		if !errors.As(waitErr, &exitError) {
			return Execution{}, &ExecutionError{Binary: invocation.Binary, ExitCode: -1, Output: execution.Output, Err: waitErr}
		}
		execution.ExitCode = exitError.ExitCode()
		if execution.ExitCode != 0 && execution.ExitCode != 1 {
			return Execution{}, &ExecutionError{Binary: invocation.Binary, ExitCode: execution.ExitCode, Output: execution.Output}
		}
	}

	volumes, err := volume.Locate(filepath.Dir(invocation.Archive), invocation.archiveName())
	if err != nil {
		return Execution{}, err
	}
	execution.Volumes = volumes
	return execution, nil
}

// watchFirstVolume polls until a second volume appears, then checks
// the first. It returns false only when the check fails.
func (p *ProcessExecutor) watchFirstVolume(ctx context.Context, clk clock.Clock, interval time.Duration, invocation Invocation) bool {
	ticker := clk.NewTicker(interval)
	defer ticker.Stop()

	directory := filepath.Dir(invocation.Archive)
	name := invocation.archiveName()
	for {
		select {
		case <-ctx.Done():
			return true
		case <-ticker.C:
		}
		volumes, err := volume.Locate(directory, name)
		if err != nil || len(volumes) < 2 {
			continue
		}
		return invocation.FirstVolume(volumes[0])
	}
}
