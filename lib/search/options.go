// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package search

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bureau-foundation/rerar/lib/binhash"
	"github.com/bureau-foundation/rerar/lib/candidate"
	"github.com/bureau-foundation/rerar/lib/rarheader"
	"github.com/bureau-foundation/rerar/lib/rarversion"
	"github.com/bureau-foundation/rerar/lib/release"
)

// Options is everything one search needs. It is not modified by Run.
type Options struct {
	// Installations are the compressor builds to try. Run orders them
	// by ascending build.
	Installations []rarversion.Installation

	// ReleaseDir holds the uncompressed inputs. Inputs lists them
	// relative to ReleaseDir in archive order; empty means every file
	// under ReleaseDir, sorted.
	ReleaseDir string
	Inputs     []string

	// OutputDir receives one directory per candidate. It is created if
	// missing and must not be shared with another running search.
	OutputDir string

	// ArchiveName is the archive base name without extension. Empty
	// derives it from the original volume names or the target.
	ArchiveName string

	Target *binhash.Target
	Space  candidate.Space
	Policy Policy

	Metadata Metadata
}

// Policy controls what happens to results.
type Policy struct {
	// StopOnFirstMatch ends the search at the first verified match.
	StopOnFirstMatch bool

	// DeleteDuplicates removes non-matching output whose checksums
	// were already produced by an earlier candidate.
	DeleteDuplicates bool

	// DeleteNonMatching removes every non-matching output.
	DeleteNonMatching bool

	// RenameToOriginal renames the volumes of a single match to
	// Metadata.OriginalVolumeNames once the search completes.
	RenameToOriginal bool

	// CompleteAllVolumes lets every candidate write all of its volumes.
	// Otherwise a multi-volume candidate is killed as soon as its first
	// volume fails to match.
	CompleteAllVolumes bool
}

// Comment is the archive comment recovered from the original release.
type Comment struct {
	// Text is the comment as stored, usually CP437.
	Text []byte

	// Payload holds the packed comment bytes of the original archive.
	// When set, phase 1 searches for the level that reproduces them.
	Payload []byte

	// Method is the stored compression method (0x30 to 0x35) when
	// known.
	Method *byte
}

// Metadata is what was recovered about the original archive.
type Metadata struct {
	OriginalVolumeNames []string

	// Directories are the directory entries the original archive held,
	// relative to the release directory. They are created when missing
	// and passed to the compressor after the files.
	Directories []string

	// Timestamps are applied to the release files and directories
	// before searching.
	Timestamps []release.Timestamps

	Comment Comment

	// Patch rewrites header fields of every phase 2 volume before it
	// is verified.
	Patch rarheader.Patch

	// ExpectedEntries are the file names the original archive held.
	// The first produced archive is compared against them.
	ExpectedEntries []string
}

// validated is Options after validation, with defaults resolved.
type validated struct {
	Options
	installations []rarversion.Installation
	inputs        []release.Input
	directories   []string
	inputBytes    int64
	archiveName   string
}

func validate(options Options) (*validated, error) {
	if len(options.Installations) == 0 {
		return nil, &ConfigurationError{Field: "installations", Message: "no compressor installation selected"}
	}
	for _, installation := range options.Installations {
		info, err := os.Stat(installation.Binary)
		if err != nil {
			return nil, &ConfigurationError{Field: "installations", Message: installation.Label, Err: err}
		}
		if info.IsDir() || info.Mode().Perm()&0111 == 0 {
			return nil, &ConfigurationError{Field: "installations", Message: installation.Binary + " is not an executable file"}
		}
	}
	if options.Target == nil || options.Target.Len() == 0 {
		return nil, &ConfigurationError{Field: "target", Message: "verification target has no checksums"}
	}
	if options.ReleaseDir == "" {
		return nil, &ConfigurationError{Field: "release", Message: "release directory not set"}
	}
	if options.OutputDir == "" {
		return nil, &ConfigurationError{Field: "output", Message: "output directory not set"}
	}
	comment := options.Metadata.Comment
	if len(comment.Payload) > 0 && len(comment.Text) == 0 {
		return nil, &ConfigurationError{Field: "comment", Message: "comment payload supplied without comment text"}
	}
	if comment.Method != nil && (*comment.Method < 0x30 || *comment.Method > 0x35) {
		return nil, &ConfigurationError{Field: "comment", Message: "comment method must be 0x30 to 0x35"}
	}
	if options.Policy.RenameToOriginal {
		for _, name := range options.Metadata.OriginalVolumeNames {
			if name == "" || name != filepath.Base(name) {
				return nil, &ConfigurationError{Field: "original volume names", Message: "name " + name + " is not a plain file name"}
			}
		}
	}

	inputs, err := release.List(options.ReleaseDir, options.Inputs)
	if err != nil {
		return nil, &ConfigurationError{Field: "release", Message: "cannot list inputs", Err: err}
	}
	root, err := filepath.Abs(options.ReleaseDir)
	if err != nil {
		return nil, &ConfigurationError{Field: "release", Message: "cannot resolve directory", Err: err}
	}
	options.ReleaseDir = root
	output, err := filepath.Abs(options.OutputDir)
	if err != nil {
		return nil, &ConfigurationError{Field: "output", Message: "cannot resolve directory", Err: err}
	}
	options.OutputDir = output
	if output == root || strings.HasPrefix(output, root+string(filepath.Separator)) {
		return nil, &ConfigurationError{Field: "output", Message: "output directory must not be inside the release directory"}
	}

	return &validated{
		Options:       options,
		installations: rarversion.Sorted(options.Installations),
		inputs:        inputs,
		inputBytes:    release.TotalSize(inputs),
		archiveName:   archiveName(options),
	}, nil
}

var volumeSuffix = regexp.MustCompile(`(?i)(\.part\d+)?\.(rar|[r-z]\d\d)$`)

// archiveName picks the base name produced archives get.
func archiveName(options Options) string {
	if options.ArchiveName != "" {
		return options.ArchiveName
	}
	candidates := append([]string(nil), options.Metadata.OriginalVolumeNames...)
	for _, entry := range options.Target.Entries() {
		candidates = append(candidates, entry.Name)
	}
	for _, name := range candidates {
		base := volumeSuffix.ReplaceAllString(filepath.Base(name), "")
		if base != "" && base != "." {
			return base
		}
	}
	return "archive"
}

// errNoVolumes marks a run that exited cleanly without writing an
// archive.
var errNoVolumes = errors.New("compressor produced no volumes")
