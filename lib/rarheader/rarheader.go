// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package rarheader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Format is the header generation of a volume.
type Format int

const (
	RAR4 Format = 4
	RAR5 Format = 5
)

func (f Format) String() string {
	switch f {
	case RAR4:
		return "RAR4"
	case RAR5:
		return "RAR5"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

var (
	signature4 = []byte("Rar!\x1a\x07\x00")
	signature5 = []byte("Rar!\x1a\x07\x01\x00")
)

var (
	// ErrNotArchive is returned for files without a RAR signature.
	ErrNotArchive = errors.New("not a RAR archive")

	// ErrNoComment is returned by ReadComment when the archive has no
	// comment.
	ErrNoComment = errors.New("archive has no comment")

	// ErrTruncated is returned when a header extends past the end of
	// the file or is too short for its type.
	ErrTruncated = errors.New("truncated archive header")
)

// Attribute bits the patch pass is usually asked to restore.
const (
	AttributeArchive           uint32 = 0x20
	AttributeNotContentIndexed uint32 = 0x2000
)

// LargeSizes are the high 32 bits of the packed and unpacked sizes
// stored when the RAR4 LARGE flag is set.
type LargeSizes struct {
	HighPack     uint32
	HighUnpacked uint32
}

// Fields lists the header values to force. Nil fields are left alone.
type Fields struct {
	HostOS *uint8

	// Attributes replaces the stored attribute word. SetAttributes and
	// ClearAttributes are then OR-ed in and masked out, on top of the
	// replacement or of whatever the compressor wrote.
	Attributes      *uint32
	SetAttributes   uint32
	ClearAttributes uint32

	// FileTime is the DOS date/time in RAR4 headers and Unix seconds
	// in RAR5 headers.
	FileTime *uint32

	// Large sets the RAR4 LARGE flag. RAR5 headers have no equivalent
	// and ignore it.
	Large *LargeSizes
}

// Empty reports whether no field is set.
func (f Fields) Empty() bool {
	return f.HostOS == nil && !f.touchesAttributes() && f.FileTime == nil && f.Large == nil
}

func (f Fields) touchesAttributes() bool {
	return f.Attributes != nil || f.SetAttributes != 0 || f.ClearAttributes != 0
}

// attributes returns the attribute word to store in place of current.
func (f Fields) attributes(current uint32) uint32 {
	value := current
	if f.Attributes != nil {
		value = *f.Attributes
	}
	return (value | f.SetAttributes) &^ f.ClearAttributes
}

// Patch is applied to one volume: File to every file header, Comment to
// the CMT comment header.
type Patch struct {
	File    Fields
	Comment Fields
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.File.Empty() && p.Comment.Empty()
}

type blockKind int

const (
	kindOther blockKind = iota
	kindFile
	kindComment
	kindMain
	kindOldComment
)

// block is one header in a volume. dataSize is the length of the data
// area following the header as originally written.
type block struct {
	offset   int64
	header   []byte
	dataSize int64
	kind     blockKind
}

func (b block) end() int64 {
	return b.offset + int64(len(b.header)) + b.dataSize
}

// Volume is the parsed header layout of one file.
type volume struct {
	format    Format
	prefixEnd int64
	blocks    []block
}

func detect(reader io.ReaderAt) (Format, int64, error) {
	buffer := make([]byte, len(signature5))
	count, err := reader.ReadAt(buffer, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, 0, err
	}
	buffer = buffer[:count]
	switch {
	case bytes.HasPrefix(buffer, signature5):
		return RAR5, int64(len(signature5)), nil
	case bytes.HasPrefix(buffer, signature4):
		return RAR4, int64(len(signature4)), nil
	default:
		return 0, 0, ErrNotArchive
	}
}

func scan(reader io.ReaderAt, size int64) (*volume, error) {
	format, start, err := detect(reader)
	if err != nil {
		return nil, err
	}
	parsed := &volume{format: format, prefixEnd: start}
	switch format {
	case RAR4:
		parsed.blocks, err = scan4(reader, start, size)
	case RAR5:
		parsed.blocks, err = scan5(reader, start, size)
	}
	if err != nil {
		return nil, err
	}
	return parsed, nil
}

func readAt(reader io.ReaderAt, offset int64, length int, size int64) ([]byte, error) {
	if offset < 0 || length < 0 || offset+int64(length) > size {
		return nil, ErrTruncated
	}
	buffer := make([]byte, length)
	if _, err := reader.ReadAt(buffer, offset); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrTruncated
		}
		return nil, err
	}
	return buffer, nil
}

func patchBlock(format Format, b block, patch Patch) ([]byte, error) {
	var fields Fields
	switch b.kind {
	case kindFile:
		fields = patch.File
	case kindComment:
		fields = patch.Comment
	default:
		return b.header, nil
	}
	if fields.Empty() {
		return b.header, nil
	}
	if format == RAR4 {
		return patchHeader4(b.header, fields)
	}
	return patchHeader5(b.header, fields)
}

// PatchFile applies patch to the volume at path. It reports whether the
// file changed.
func PatchFile(path string, patch Patch) (bool, error) {
	if patch.Empty() {
		return false, nil
	}
	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return false, fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", path, err)
	}
	parsed, err := scan(file, info.Size())
	if err != nil {
		return false, fmt.Errorf("reading headers of %s: %w", path, err)
	}

	headers := make([][]byte, len(parsed.blocks))
	changed, resized := false, false
	for i, b := range parsed.blocks {
		headers[i], err = patchBlock(parsed.format, b, patch)
		if err != nil {
			return false, fmt.Errorf("patching header at offset %d of %s: %w", b.offset, path, err)
		}
		if !bytes.Equal(headers[i], b.header) {
			changed = true
			if len(headers[i]) != len(b.header) {
				resized = true
			}
		}
	}
	if !changed {
		return false, nil
	}

	if !resized {
		for i, b := range parsed.blocks {
			if bytes.Equal(headers[i], b.header) {
				continue
			}
			if _, err := file.WriteAt(headers[i], b.offset); err != nil {
				return false, fmt.Errorf("writing header at offset %d of %s: %w", b.offset, path, err)
			}
		}
		return true, file.Sync()
	}

	if err := rewrite(file, path, info, parsed, headers); err != nil {
		return false, err
	}
	return true, nil
}

// rewrite streams the volume into a temporary sibling with the new
// headers and renames it over path.
func rewrite(source *os.File, path string, info os.FileInfo, parsed *volume, headers [][]byte) error {
	temporary, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".patch-*")
	if err != nil {
		return fmt.Errorf("creating temporary volume for %s: %w", path, err)
	}
	temporaryPath := temporary.Name()
	succeeded := false
	defer func() {
		if !succeeded {
			temporary.Close()
			os.Remove(temporaryPath)
		}
	}()

	copySection := func(offset, length int64) error {
		if length <= 0 {
			return nil
		}
		_, err := io.Copy(temporary, io.NewSectionReader(source, offset, length))
		return err
	}

	if err := copySection(0, parsed.prefixEnd); err != nil {
		return fmt.Errorf("copying signature of %s: %w", path, err)
	}
	position := parsed.prefixEnd
	for i, b := range parsed.blocks {
		if _, err := temporary.Write(headers[i]); err != nil {
			return fmt.Errorf("writing temporary volume for %s: %w", path, err)
		}
		if err := copySection(b.offset+int64(len(b.header)), b.dataSize); err != nil {
			return fmt.Errorf("copying data of %s: %w", path, err)
		}
		position = b.end()
	}
	if err := copySection(position, info.Size()-position); err != nil {
		return fmt.Errorf("copying trailing bytes of %s: %w", path, err)
	}

	if err := temporary.Chmod(info.Mode().Perm()); err != nil {
		return fmt.Errorf("setting mode of temporary volume for %s: %w", path, err)
	}
	if err := temporary.Sync(); err != nil {
		return fmt.Errorf("syncing temporary volume for %s: %w", path, err)
	}
	if err := temporary.Close(); err != nil {
		return fmt.Errorf("closing temporary volume for %s: %w", path, err)
	}
	if err := os.Rename(temporaryPath, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	succeeded = true
	return nil
}
