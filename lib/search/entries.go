// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package search

import (
	"errors"
	"io"
	"path"
	"strings"

	"github.com/nwaples/rardecode/v2"

	"github.com/bureau-foundation/rerar/lib/axis"
	"github.com/bureau-foundation/rerar/lib/rarheader"
)

// checkEntries compares the entries of the first archive the search
// produces with the expected entries. A difference usually means the
// inputs or their order are wrong, which no candidate can fix, so it is
// reported once. It never fails the candidate.
func (r *run) checkEntries(volumes []string) {
	expected := r.options.Metadata.ExpectedEntries
	if r.entriesChecked || len(expected) == 0 || len(volumes) == 0 {
		return
	}
	r.entriesChecked = true

	names, err := listEntries(volumes[0])
	if err != nil {
		r.log(ChannelSystem, "warning: cannot list produced archive entries: %v", err)
		return
	}
	missing, unexpected := compareEntries(expected, names)
	if len(missing) == 0 && len(unexpected) == 0 {
		r.log(ChannelSystem, "produced archive holds the %d expected entries", len(expected))
		return
	}
	if len(missing) > 0 {
		r.log(ChannelSystem, "warning: produced archive lacks %d expected entries: %s", len(missing), strings.Join(missing, ", "))
	}
	if len(unexpected) > 0 {
		r.log(ChannelSystem, "warning: produced archive holds %d unexpected entries: %s", len(unexpected), strings.Join(unexpected, ", "))
	}
}

// checkFormat compares the header generation of the first archive the
// search produces with the format its switches should select. It runs
// once and never fails the candidate.
func (r *run) checkFormat(a attempt, volumes []string) {
	if r.formatChecked || len(volumes) == 0 {
		return
	}
	r.formatChecked = true

	format, err := rarheader.DetectFormat(volumes[0])
	if err != nil {
		r.log(ChannelSystem, "warning: cannot read produced archive header: %v", err)
		return
	}
	if want := headerFormat(a.set.Format); format != want {
		r.log(ChannelSystem, "warning: %s wrote %s headers for [%s], expected %s",
			a.installation.Label, format, a.set, want)
	}
}

// headerFormat maps an archive format to its header generation. RAR7
// archives use RAR5 headers.
func headerFormat(format axis.Format) rarheader.Format {
	if format == axis.RAR4 {
		return rarheader.RAR4
	}
	return rarheader.RAR5
}

// listEntries returns the file names stored in the archive starting at
// firstVolume, following later volumes.
func listEntries(firstVolume string) ([]string, error) {
	reader, err := rardecode.OpenReader(firstVolume)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	var names []string
	for {
		header, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return names, nil
		}
		if err != nil {
			return names, err
		}
		if header.IsDir {
			continue
		}
		names = append(names, header.Name)
	}
}

// compareEntries matches names case-insensitively with either path
// separator.
func compareEntries(expected, actual []string) (missing, unexpected []string) {
	normalize := func(name string) string {
		return strings.ToLower(path.Clean(strings.ReplaceAll(name, "\\", "/")))
	}
	remaining := make(map[string]int, len(actual))
	for _, name := range actual {
		remaining[normalize(name)]++
	}
	for _, name := range expected {
		key := normalize(name)
		if remaining[key] == 0 {
			missing = append(missing, name)
			continue
		}
		remaining[key]--
	}
	for _, name := range actual {
		key := normalize(name)
		if remaining[key] > 0 {
			unexpected = append(unexpected, name)
			remaining[key]--
		}
	}
	return missing, unexpected
}
