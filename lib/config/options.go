// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/bureau-foundation/rerar/lib/axis"
	"github.com/bureau-foundation/rerar/lib/candidate"
	"github.com/bureau-foundation/rerar/lib/rarheader"
	"github.com/bureau-foundation/rerar/lib/rarversion"
	"github.com/bureau-foundation/rerar/lib/release"
	"github.com/bureau-foundation/rerar/lib/search"
	"github.com/bureau-foundation/rerar/lib/volume"
)

// Ranges returns the build ranges of the enabled major versions.
func (p *Profile) Ranges() ([]rarversion.Range, error) {
	return rarversion.MajorRanges(p.Versions.Majors)
}

// CandidateSpace builds the parameter space.
func (p *Profile) CandidateSpace() (candidate.Space, error) {
	config := p.Space
	space := candidate.Space{
		Fixed: axis.Fixed{
			Recurse:      config.Recurse,
			NoNameSort:   config.NoNameSort,
			DisableSolid: config.DisableSolid,
		}.Switches(),
		AttributeToggle: config.AttributeToggle,
	}

	var errs []error
	add := func(built axis.Axis, err error) {
		if err != nil {
			errs = append(errs, err)
			return
		}
		if built.Enabled {
			space.Axes = append(space.Axes, built)
		}
	}
	add(axis.CompressionLevels(config.Compression...))
	add(axis.ArchiveFormats(config.Formats...))
	add(dictionaryAxis(config.Dictionaries, config.DictionaryKB))
	add(axis.Timestamps(axis.ModifiedTime, precisions(config.ModifiedTime)...))
	add(axis.Timestamps(axis.CreationTime, precisions(config.CreationTime)...))
	add(axis.Timestamps(axis.AccessTime, precisions(config.AccessTime)...))

	if threads := config.Threads; threads != nil {
		if threads.Start < 1 {
			errs = append(errs, fmt.Errorf("threads.start must be at least 1, got %d", threads.Start))
		}
		space.Threads = &candidate.Threads{Start: threads.Start, End: threads.End}
	}

	if split := config.Volume; split != nil {
		size, unitName := split.Size, split.Unit
		if split.Bytes != 0 {
			if split.Size != 0 {
				errs = append(errs, errors.New("volume.size and volume.bytes are exclusive"))
			}
			var unit axis.SizeUnit
			size, unit = axis.VolumeSizeFromBytes(split.Bytes)
			unitName = string(unit)
		}
		unit, err := axis.ParseSizeUnit(unitName)
		if err != nil {
			errs = append(errs, err)
		} else if value, err := axis.VolumeSwitch(size, unit); err != nil {
			errs = append(errs, err)
		} else {
			space.Volume = append(space.Volume, value)
		}
		if split.OldNaming {
			space.Volume = append(space.Volume, axis.OldVolumeNaming)
		}
	}

	if len(errs) > 0 {
		return candidate.Space{}, errors.Join(errs...)
	}
	return space, nil
}

// dictionaryAxis joins sizes spelled as switches with sizes in KB.
func dictionaryAxis(sizes []string, kilobytes []int) (axis.Axis, error) {
	built, err := axis.Dictionaries(sizes...)
	if err != nil {
		return axis.Axis{}, err
	}
	values := built.Values
	for _, size := range kilobytes {
		value, ok := axis.DictionaryForKilobytes(size)
		if !ok {
			return axis.Axis{}, fmt.Errorf("no dictionary switch for %d KB", size)
		}
		values = append(values, value)
	}
	return axis.New(axis.Dictionary, values...), nil
}

func precisions(values []int) []axis.Precision {
	result := make([]axis.Precision, len(values))
	for i, value := range values {
		result[i] = axis.Precision(value)
	}
	return result
}

// metadata converts the recovered archive metadata.
func (p *Profile) metadata() (search.Metadata, error) {
	config := p.Metadata
	metadata := search.Metadata{
		OriginalVolumeNames: config.OriginalVolumeNames,
		ExpectedEntries:     config.ExpectedEntries,
		Directories:         config.Directories,
	}
	var errs []error

	comment := config.Comment
	switch {
	case comment.Text != "" && comment.TextFile != "":
		errs = append(errs, errors.New("comment.text and comment.text_file are exclusive"))
	case comment.TextFile != "":
		text, err := os.ReadFile(comment.TextFile)
		if err != nil {
			errs = append(errs, fmt.Errorf("comment.text_file: %w", err))
		}
		metadata.Comment.Text = text
	case comment.Text != "":
		metadata.Comment.Text = []byte(comment.Text)
	}
	if comment.PayloadHex != "" {
		payload, err := hex.DecodeString(strings.Join(strings.Fields(comment.PayloadHex), ""))
		if err != nil {
			errs = append(errs, fmt.Errorf("comment.payload_hex: %w", err))
		}
		metadata.Comment.Payload = payload
	}
	if comment.Method != nil {
		if *comment.Method < 0x30 || *comment.Method > 0x35 {
			errs = append(errs, fmt.Errorf("comment.method must be 0x30 to 0x35, got %#x", *comment.Method))
		} else {
			method := byte(*comment.Method)
			metadata.Comment.Method = &method
		}
	}

	for i, stamp := range config.Timestamps {
		if stamp.Name == "" {
			errs = append(errs, fmt.Errorf("timestamps[%d]: name is required", i))
			continue
		}
		modified, modifiedErr := parseTime("modified", stamp.Modified)
		created, createdErr := parseTime("created", stamp.Created)
		accessed, accessedErr := parseTime("accessed", stamp.Accessed)
		if err := errors.Join(modifiedErr, createdErr, accessedErr); err != nil {
			errs = append(errs, fmt.Errorf("timestamps[%d] (%s): %w", i, stamp.Name, err))
			continue
		}
		metadata.Timestamps = append(metadata.Timestamps, release.Timestamps{
			Name:     stamp.Name,
			Modified: modified,
			Created:  created,
			Accessed: accessed,
		})
	}

	var err error
	if metadata.Patch.File, err = config.File.fields("file_headers"); err != nil {
		errs = append(errs, err)
	}
	if metadata.Patch.Comment, err = config.CommentHeader.fields("comment_header"); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return search.Metadata{}, errors.Join(errs...)
	}
	return metadata, nil
}

func (h HeaderConfig) fields(name string) (rarheader.Fields, error) {
	fields := rarheader.Fields{Attributes: h.Attributes, FileTime: h.FileTime}
	toggle := func(value *bool, bit uint32) {
		switch {
		case value == nil:
		case *value:
			fields.SetAttributes |= bit
		default:
			fields.ClearAttributes |= bit
		}
	}
	toggle(h.Archive, rarheader.AttributeArchive)
	toggle(h.NotContentIndexed, rarheader.AttributeNotContentIndexed)
	if h.HostOS != nil {
		if *h.HostOS < 0 || *h.HostOS > 255 {
			return rarheader.Fields{}, fmt.Errorf("%s.host_os %d out of range", name, *h.HostOS)
		}
		hostOS := uint8(*h.HostOS)
		fields.HostOS = &hostOS
	}
	if h.Large != nil {
		fields.Large = &rarheader.LargeSizes{HighPack: h.Large.HighPack, HighUnpacked: h.Large.HighUnpacked}
	}
	return fields, nil
}

// SearchOptions converts the profile into search options for the
// given installations.
func (p *Profile) SearchOptions(installations []rarversion.Installation) (search.Options, error) {
	target, err := p.VerificationTarget()
	if err != nil {
		return search.Options{}, fmt.Errorf("target: %w", err)
	}
	space, err := p.CandidateSpace()
	if err != nil {
		return search.Options{}, fmt.Errorf("space: %w", err)
	}
	metadata, err := p.metadata()
	if err != nil {
		return search.Options{}, fmt.Errorf("metadata: %w", err)
	}
	if p.Policy.RenameToOriginal && len(metadata.OriginalVolumeNames) == 0 {
		metadata.OriginalVolumeNames = p.derivedVolumeNames()
	}
	return search.Options{
		Installations: installations,
		ReleaseDir:    p.Release.Directory,
		Inputs:        p.Release.Inputs,
		OutputDir:     p.Output,
		ArchiveName:   p.ArchiveName,
		Target:        target,
		Space:         space,
		Policy: search.Policy{
			StopOnFirstMatch:   p.Policy.StopOnFirstMatch,
			DeleteDuplicates:   p.Policy.DeleteDuplicates,
			DeleteNonMatching:  p.Policy.DeleteNonMatching,
			RenameToOriginal:   p.Policy.RenameToOriginal,
			CompleteAllVolumes: p.Policy.CompleteAllVolumes,
		},
		Metadata: metadata,
	}, nil
}

// derivedVolumeNames returns the original volume names implied by the
// checksum list: its names when every entry has one, otherwise names
// built from archive_name in the configured naming convention.
func (p *Profile) derivedVolumeNames() []string {
	checksums := p.Target.Checksums
	names := make([]string, 0, len(checksums))
	for _, checksum := range checksums {
		if checksum.Name == "" {
			names = nil
			break
		}
		names = append(names, checksum.Name)
	}
	if names != nil || p.ArchiveName == "" {
		return names
	}
	legacy := p.Space.Volume != nil && p.Space.Volume.OldNaming
	return volume.Names(p.ArchiveName, len(checksums), legacy)
}
