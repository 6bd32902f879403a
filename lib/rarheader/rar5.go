// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package rarheader

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"sort"
)

// RAR5 header types.
const (
	type5File    = 2
	type5Service = 3
	type5End     = 5
)

// RAR5 flags.
const (
	flag5Extra       = 0x0001
	flag5Data        = 0x0002
	fileFlag5Time    = 0x0002
	fileFlag5DataCRC = 0x0004
)

// maxHeader5 bounds the header size field; the format caps headers at
// 2 MB.
const maxHeader5 = 2 * 1024 * 1024

// span is a byte range inside a header.
type span struct{ start, end int }

func (s span) width() int { return s.end - s.start }

// layout5 records where the patchable fields of a RAR5 file or service
// header sit.
type layout5 struct {
	headSize   span
	bodyStart  int
	headerType uint64
	fileFlags  span
	attributes span
	fileTime   span // zero width when absent
	compInfo   uint64
	hostOS     span
	name       string
	dataSize   uint64
}

func parse5(header []byte) (layout5, error) {
	var layout layout5
	if len(header) < 5 {
		return layout, ErrTruncated
	}
	position := 4
	next := func() (uint64, span, error) {
		value, width, err := readVint(header[position:])
		if err != nil {
			return 0, span{}, err
		}
		field := span{position, position + width}
		position += width
		return value, field, nil
	}

	var err error
	if _, layout.headSize, err = next(); err != nil {
		return layout, err
	}
	layout.bodyStart = position
	if layout.headerType, _, err = next(); err != nil {
		return layout, err
	}
	flags, _, err := next()
	if err != nil {
		return layout, err
	}
	if flags&flag5Extra != 0 {
		if _, _, err = next(); err != nil {
			return layout, err
		}
	}
	if flags&flag5Data != 0 {
		if layout.dataSize, _, err = next(); err != nil {
			return layout, err
		}
	}
	if layout.headerType != type5File && layout.headerType != type5Service {
		return layout, nil
	}

	fileFlags, fileFlagsSpan, err := next()
	if err != nil {
		return layout, err
	}
	layout.fileFlags = fileFlagsSpan
	if _, _, err = next(); err != nil { // unpacked size
		return layout, err
	}
	if _, layout.attributes, err = next(); err != nil {
		return layout, err
	}
	layout.fileTime = span{position, position}
	if fileFlags&fileFlag5Time != 0 {
		if position+4 > len(header) {
			return layout, ErrTruncated
		}
		layout.fileTime.end = position + 4
		position += 4
	}
	if fileFlags&fileFlag5DataCRC != 0 {
		if position+4 > len(header) {
			return layout, ErrTruncated
		}
		position += 4
	}
	if layout.compInfo, _, err = next(); err != nil {
		return layout, err
	}
	if _, layout.hostOS, err = next(); err != nil {
		return layout, err
	}
	nameLength, _, err := next()
	if err != nil {
		return layout, err
	}
	if position+int(nameLength) > len(header) {
		return layout, ErrTruncated
	}
	layout.name = string(header[position : position+int(nameLength)])
	return layout, nil
}

func scan5(reader io.ReaderAt, offset, size int64) ([]block, error) {
	var blocks []block
	for offset+5 <= size {
		prefixLength := int(min(int64(4+3), size-offset))
		prefix, err := readAt(reader, offset, prefixLength, size)
		if err != nil {
			return nil, err
		}
		headSize, width, err := readVint(prefix[4:])
		if err != nil {
			return nil, fmt.Errorf("header size at offset %d: %w", offset, err)
		}
		if headSize == 0 || headSize > maxHeader5 {
			return nil, fmt.Errorf("%w: header size %d at offset %d", ErrTruncated, headSize, offset)
		}
		header, err := readAt(reader, offset, 4+width+int(headSize), size)
		if err != nil {
			return nil, err
		}
		layout, err := parse5(header)
		if err != nil {
			return nil, fmt.Errorf("header at offset %d: %w", offset, err)
		}

		b := block{offset: offset, header: header, dataSize: int64(layout.dataSize), kind: kindOther}
		switch {
		case layout.headerType == type5File:
			b.kind = kindFile
		case layout.headerType == type5Service && layout.name == "CMT":
			b.kind = kindComment
		}
		if b.dataSize < 0 || b.end() > size {
			return nil, fmt.Errorf("%w: data of block at offset %d ends past the file", ErrTruncated, offset)
		}
		blocks = append(blocks, b)
		offset = b.end()
		if layout.headerType == type5End {
			break
		}
	}
	return blocks, nil
}

func patchHeader5(original []byte, fields Fields) ([]byte, error) {
	layout, err := parse5(original)
	if err != nil {
		return nil, err
	}

	type replacement struct {
		field span
		bytes []byte
	}
	var replacements []replacement

	if fields.touchesAttributes() {
		current, _, err := readVint(original[layout.attributes.start:])
		if err != nil {
			return nil, err
		}
		replacements = append(replacements, replacement{
			layout.attributes,
			appendVint(nil, uint64(fields.attributes(uint32(current))), layout.attributes.width()),
		})
	}
	if fields.FileTime != nil {
		encoded := binary.LittleEndian.AppendUint32(nil, *fields.FileTime)
		if layout.fileTime.width() == 0 {
			fileFlags, _, err := readVint(original[layout.fileFlags.start:])
			if err != nil {
				return nil, err
			}
			replacements = append(replacements, replacement{
				layout.fileFlags,
				appendVint(nil, fileFlags|fileFlag5Time, layout.fileFlags.width()),
			})
		}
		replacements = append(replacements, replacement{layout.fileTime, encoded})
	}
	if fields.HostOS != nil {
		replacements = append(replacements, replacement{
			layout.hostOS,
			appendVint(nil, uint64(*fields.HostOS), layout.hostOS.width()),
		})
	}

	sort.Slice(replacements, func(i, j int) bool {
		return replacements[i].field.start < replacements[j].field.start
	})

	body := make([]byte, 0, len(original)+8)
	position := layout.bodyStart
	for _, r := range replacements {
		body = append(body, original[position:r.field.start]...)
		body = append(body, r.bytes...)
		position = r.field.end
	}
	body = append(body, original[position:]...)

	header := make([]byte, 4, len(body)+8)
	header = appendVint(header, uint64(len(body)), layout.headSize.width())
	header = append(header, body...)
	binary.LittleEndian.PutUint32(header[0:4], crc32.ChecksumIEEE(header[4:]))
	return header, nil
}

// comment5 extracts the comment from the CMT service header.
func comment5(reader io.ReaderAt, size int64, b block) (Comment, bool, error) {
	if b.kind != kindComment {
		return Comment{}, false, nil
	}
	layout, err := parse5(b.header)
	if err != nil {
		return Comment{}, false, err
	}
	packed, err := readAt(reader, b.offset+int64(len(b.header)), int(b.dataSize), size)
	if err != nil {
		return Comment{}, false, err
	}
	// Report the method the way RAR4 headers store it (0x30 + level).
	method := byte(0x30 + (layout.compInfo>>7)&0x7)
	return Comment{Format: RAR5, Method: method, Packed: packed}, true, nil
}
