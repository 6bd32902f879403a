// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package volume finds the volumes a compressor run produced and
// renames them.
//
// Two naming conventions exist. New-style names number every volume:
// release.part1.rar, release.part2.rar (zero padded to the width of the
// highest number). Legacy names keep the first volume as release.rar
// and continue with release.r00 through release.r99, then release.s00
// and onward.
package volume

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	partPattern   = regexp.MustCompile(`(?i)^(.+)\.part(\d+)\.rar$`)
	legacyPattern = regexp.MustCompile(`(?i)^(.+)\.([r-z])(\d{2})$`)
)

// Locate returns the volumes of archive name in directory, in volume
// order. name is the archive base name without extension. An empty
// result with a nil error means the run produced nothing.
func Locate(directory, name string) ([]string, error) {
	entries, err := os.ReadDir(directory)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", directory, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			names = append(names, entry.Name())
		}
	}

	ordered := Order(names, name)
	paths := make([]string, len(ordered))
	for i, volume := range ordered {
		paths[i] = filepath.Join(directory, volume)
	}
	return paths, nil
}

// Order picks the volumes of archive name out of names and sorts them.
// New-style part names win when both conventions are present.
func Order(names []string, name string) []string {
	type numbered struct {
		name  string
		order int
	}
	var parts, legacy []numbered
	first := ""

	for _, candidate := range names {
		if match := partPattern.FindStringSubmatch(candidate); match != nil && strings.EqualFold(match[1], name) {
			number, err := strconv.Atoi(match[2])
			if err == nil {
				parts = append(parts, numbered{candidate, number})
			}
			continue
		}
		if match := legacyPattern.FindStringSubmatch(candidate); match != nil && strings.EqualFold(match[1], name) {
			letter := int(strings.ToLower(match[2])[0] - 'r')
			number, _ := strconv.Atoi(match[3])
			legacy = append(legacy, numbered{candidate, letter*100 + number})
			continue
		}
		if strings.EqualFold(candidate, name+".rar") {
			first = candidate
		}
	}

	byOrder := func(list []numbered) {
		sort.Slice(list, func(i, j int) bool { return list[i].order < list[j].order })
	}

	if len(parts) > 0 {
		byOrder(parts)
		ordered := make([]string, len(parts))
		for i, part := range parts {
			ordered[i] = part.name
		}
		return ordered
	}
	if first == "" {
		return nil
	}
	byOrder(legacy)
	ordered := make([]string, 0, len(legacy)+1)
	ordered = append(ordered, first)
	for _, volume := range legacy {
		ordered = append(ordered, volume.name)
	}
	return ordered
}

// LegacyName returns the file name of volume index (0-based) under the
// legacy convention: index 0 is name.rar, 1 is name.r00, 101 is
// name.s00.
func LegacyName(name string, index int) string {
	if index == 0 {
		return name + ".rar"
	}
	index--
	return fmt.Sprintf("%s.%c%02d", name, 'r'+rune(index/100), index%100)
}

// PartName returns the new-style file name of volume index (0-based)
// in an archive of count volumes.
func PartName(name string, index, count int) string {
	width := len(strconv.Itoa(max(count, 1)))
	return fmt.Sprintf("%s.part%0*d.rar", name, width, index+1)
}

// Names returns the file names of an archive of count volumes under
// the legacy or the new-style convention.
func Names(name string, count int, legacy bool) []string {
	names := make([]string, count)
	for i := range names {
		if legacy {
			names[i] = LegacyName(name, i)
		} else {
			names[i] = PartName(name, i, count)
		}
	}
	return names
}

// RenameToOriginal renames volumes, in order, to the given original
// file names inside the directory each volume already lives in. It
// returns the new paths. The counts must agree and names must be plain
// file names.
func RenameToOriginal(volumes, originalNames []string) ([]string, error) {
	if len(volumes) != len(originalNames) {
		return nil, fmt.Errorf("have %d volumes but %d original names", len(volumes), len(originalNames))
	}
	for _, original := range originalNames {
		if original == "" || original != filepath.Base(original) {
			return nil, fmt.Errorf("original volume name %q is not a plain file name", original)
		}
	}

	renamed := make([]string, len(volumes))
	for i, volume := range volumes {
		target := filepath.Join(filepath.Dir(volume), originalNames[i])
		if target != volume {
			if err := os.Rename(volume, target); err != nil {
				return renamed[:i], fmt.Errorf("renaming %s to %s: %w", volume, originalNames[i], err)
			}
		}
		renamed[i] = target
	}
	return renamed, nil
}
