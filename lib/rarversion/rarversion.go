// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package rarversion discovers installed compressor builds and decides
// which of them a search runs.
//
// Builds are encoded as major*100+minor, so RAR 5.01 is 501 and RAR
// 3.60 is 360. An installations root holds one subdirectory per build,
// each containing the command-line compressor:
//
//	installations/
//	  rar-2.90/rar
//	  rar-3.60/rar
//	  rar-5.01/rar
//
// [Discover] probes every binary for the build it reports. [Matrix.Select]
// keeps the builds whose major version was enabled, in ascending order.
package rarversion

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// binaryNames are tried in order inside each installation directory.
var binaryNames = []string{"rar", "rar.exe", "Rar.exe"}

// Range is a half-open build range [Min, Max).
type Range struct {
	Min int
	Max int
}

// Contains reports whether build lies in the range.
func (r Range) Contains(build int) bool {
	return build >= r.Min && build < r.Max
}

func (r Range) String() string {
	return fmt.Sprintf("[%d, %d)", r.Min, r.Max)
}

// MajorRange maps a major version toggle ("2" through "7", optionally
// written "5.x") to its build range.
func MajorRange(major string) (Range, error) {
	trimmed := strings.TrimSuffix(strings.TrimSpace(major), ".x")
	number, err := strconv.Atoi(trimmed)
	if err != nil || number < 2 || number > 7 {
		return Range{}, fmt.Errorf("unknown compressor major version %q (want 2 through 7)", major)
	}
	return Range{Min: number * 100, Max: (number + 1) * 100}, nil
}

// MajorRanges converts a list of toggles, rejecting unknown ones.
func MajorRanges(majors []string) ([]Range, error) {
	ranges := make([]Range, 0, len(majors))
	for _, major := range majors {
		r, err := MajorRange(major)
		if err != nil {
			return nil, err
		}
		ranges = append(ranges, r)
	}
	return ranges, nil
}

// Installation is one compressor build on disk.
type Installation struct {
	// Label is the installation directory name, shown in progress
	// output and used as the per-version output directory.
	Label string

	// Binary is the absolute path to the compressor executable.
	Binary string

	Build int
}

// Major returns the build's major version.
func (i Installation) Major() int { return i.Build / 100 }

// Version returns the build as "5.01".
func (i Installation) Version() string {
	return fmt.Sprintf("%d.%02d", i.Build/100, i.Build%100)
}

// Prober returns the banner a compressor binary prints when run
// without arguments.
type Prober interface {
	Probe(ctx context.Context, binary string) (string, error)
}

// ExecProber runs the binary and captures its combined output.
type ExecProber struct {
	// Timeout bounds each probe. Zero means five seconds.
	Timeout time.Duration
}

// Probe runs binary with no arguments. The compressor prints its
// banner followed by usage and exits non-zero, so the exit status is
// ignored whenever output was produced.
func (p ExecProber) Probe(ctx context.Context, binary string) (string, error) {
	timeout := p.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	output, err := exec.CommandContext(ctx, binary).CombinedOutput()
	if len(output) == 0 && err != nil {
		return "", fmt.Errorf("probing %s: %w", binary, err)
	}
	return string(output), nil
}

var (
	bannerPattern    = regexp.MustCompile(`(?i)\bRAR\s+(\d+)\.(\d+)`)
	dottedPattern    = regexp.MustCompile(`(\d)\.(\d{1,2})`)
	compactPattern   = regexp.MustCompile(`(?:^|\D)(\d)(\d{2})(?:\D|$)`)
	errNoBuildNumber = errors.New("no build number found")
)

// ParseBanner extracts the build from a banner such as
// "RAR 5.01   Copyright (c) 1993-2014 Alexander Roshal".
func ParseBanner(banner string) (int, error) {
	match := bannerPattern.FindStringSubmatch(banner)
	if match == nil {
		return 0, errNoBuildNumber
	}
	return buildFromParts(match[1], match[2])
}

// ParseDirectoryName extracts a build from an installation directory
// name: "rar-5.01", "winrar 3.6", "rar501".
func ParseDirectoryName(name string) (int, error) {
	if match := dottedPattern.FindStringSubmatch(name); match != nil {
		return buildFromParts(match[1], match[2])
	}
	if match := compactPattern.FindStringSubmatch(name); match != nil {
		return buildFromParts(match[1], match[2])
	}
	return 0, errNoBuildNumber
}

func buildFromParts(majorText, minorText string) (int, error) {
	major, err := strconv.Atoi(majorText)
	if err != nil {
		return 0, err
	}
	minor, err := strconv.Atoi(minorText)
	if err != nil {
		return 0, err
	}
	// "3.6" means 3.60, not 3.06.
	if len(minorText) == 1 {
		minor *= 10
	}
	if minor > 99 {
		return 0, fmt.Errorf("minor version %d out of range", minor)
	}
	return major*100 + minor, nil
}

// Discover scans the subdirectories of root for compressor binaries.
// The build comes from the binary's banner, falling back to the
// directory name. Directories without a binary or a recognizable build
// are logged and skipped. A nil prober skips probing.
func Discover(ctx context.Context, root string, prober Prober, logger *slog.Logger) (*Matrix, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading installations root %s: %w", root, err)
	}

	matrix := &Matrix{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		directory := filepath.Join(root, entry.Name())
		binary, err := findBinary(directory)
		if err != nil {
			logger.Debug("skipping directory without compressor", "directory", directory)
			continue
		}

		build := 0
		if prober != nil {
			banner, probeErr := prober.Probe(ctx, binary)
			if probeErr == nil {
				build, _ = ParseBanner(banner)
			} else {
				logger.Debug("probe failed", "binary", binary, "error", probeErr)
			}
		}
		if build == 0 {
			build, err = ParseDirectoryName(entry.Name())
			if err != nil {
				logger.Warn("cannot determine compressor build", "directory", directory)
				continue
			}
		}

		absolute, err := filepath.Abs(binary)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", binary, err)
		}
		matrix.Installations = append(matrix.Installations, Installation{
			Label:  entry.Name(),
			Binary: absolute,
			Build:  build,
		})
	}
	return matrix, nil
}

func findBinary(directory string) (string, error) {
	for _, name := range binaryNames {
		path := filepath.Join(directory, name)
		info, err := os.Stat(path)
		if err == nil && info.Mode().IsRegular() {
			return path, nil
		}
	}
	return "", fs.ErrNotExist
}

// Matrix is the set of discovered installations.
type Matrix struct {
	Installations []Installation
}

// Select returns the installations whose build falls in one of ranges,
// ascending by build and then by label. An empty ranges list selects
// nothing.
func (m *Matrix) Select(ranges []Range) []Installation {
	var selected []Installation
	for _, installation := range m.Installations {
		for _, r := range ranges {
			if r.Contains(installation.Build) {
				selected = append(selected, installation)
				break
			}
		}
	}
	return Sorted(selected)
}

// Sorted returns a copy of installations ordered by ascending build,
// then label.
func Sorted(installations []Installation) []Installation {
	sorted := append([]Installation(nil), installations...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Build != sorted[j].Build {
			return sorted[i].Build < sorted[j].Build
		}
		return sorted[i].Label < sorted[j].Label
	})
	return sorted
}
