// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package search

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/bureau-foundation/rerar/lib/rarheader"
)

// previewLength caps the comment text shown in log lines.
const previewLength = 60

// compareComment reports whether the first volume of a phase 1
// candidate carries the recovered comment bytes. detail explains a
// mismatch for the journal.
func (r *run) compareComment(path string) (matched bool, detail string) {
	comment, err := rarheader.ReadComment(path)
	if errors.Is(err, rarheader.ErrNoComment) {
		return false, "no comment block"
	}
	if err != nil {
		return false, err.Error()
	}
	expected := r.options.Metadata.Comment
	if expected.Method != nil && comment.Method != *expected.Method {
		return false, fmt.Sprintf("comment method 0x%02x, want 0x%02x", comment.Method, *expected.Method)
	}
	if !bytes.Equal(comment.Packed, expected.Payload) {
		return false, fmt.Sprintf("packed comment differs (%d bytes, want %d)", len(comment.Packed), len(expected.Payload))
	}
	return true, ""
}

// commentPreview renders the first line of a CP437 comment for logs.
func commentPreview(text []byte) string {
	decoded, err := charmap.CodePage437.NewDecoder().Bytes(text)
	if err != nil {
		decoded = text
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(decoded)), "\n")
	line = strings.TrimRight(line, "\r")
	if utf8.RuneCountInString(line) > previewLength {
		runes := []rune(line)
		line = string(runes[:previewLength]) + "..."
	}
	return fmt.Sprintf("%q (%d bytes)", line, len(text))
}
