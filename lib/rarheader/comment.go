// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package rarheader

import (
	"fmt"
	"os"
)

// Comment is an archive comment as stored in the volume.
type Comment struct {
	Format Format

	// Method is the compression method byte, 0x30 (stored) through
	// 0x35 (best).
	Method byte

	// Packed holds the comment exactly as stored, compressed unless
	// Method is 0x30.
	Packed []byte

	// UnpackedSize is the comment's uncompressed length when the header
	// records it (RAR4 only).
	UnpackedSize int64
}

// ReadComment returns the first comment found in the volume at path.
// It returns ErrNoComment when the volume has none.
func ReadComment(path string) (Comment, error) {
	file, err := os.Open(path)
	if err != nil {
		return Comment{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return Comment{}, fmt.Errorf("stat %s: %w", path, err)
	}
	parsed, err := scan(file, info.Size())
	if err != nil {
		return Comment{}, fmt.Errorf("reading headers of %s: %w", path, err)
	}

	for _, b := range parsed.blocks {
		var (
			comment Comment
			found   bool
		)
		if parsed.format == RAR4 {
			comment, found, err = comment4(file, info.Size(), b)
		} else {
			comment, found, err = comment5(file, info.Size(), b)
		}
		if err != nil {
			return Comment{}, fmt.Errorf("reading comment of %s: %w", path, err)
		}
		if found {
			return comment, nil
		}
	}
	return Comment{}, ErrNoComment
}

// DetectFormat reports the header generation of the volume at path.
func DetectFormat(path string) (Format, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()
	format, _, err := detect(file)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	return format, nil
}
