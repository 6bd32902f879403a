// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package rarheader

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
)

// RAR4 block types.
const (
	type4Main       = 0x73
	type4File       = 0x74
	type4OldComment = 0x75
	type4NewSub     = 0x7a
	type4End        = 0x7b
)

// RAR4 header flags.
const (
	flag4MainComment = 0x0002
	flag4Large       = 0x0100
	flag4LongBlock   = 0x8000
)

// Offsets inside RAR4 file and subblock headers.
const (
	offset4PackSize   = 7
	offset4UnpSize    = 11
	offset4HostOS     = 15
	offset4FileTime   = 20
	offset4Method     = 25
	offset4NameSize   = 26
	offset4Attributes = 28
	offset4HighSizes  = 32
	base4FileHeader   = 32
	base4Block        = 7
	base4MainHeader   = 13
	base4OldComment   = 13
)

func scan4(reader io.ReaderAt, offset, size int64) ([]block, error) {
	var blocks []block
	for offset+base4Block <= size {
		base, err := readAt(reader, offset, base4Block, size)
		if err != nil {
			return nil, err
		}
		headSize := int(binary.LittleEndian.Uint16(base[5:7]))
		if headSize < base4Block {
			return nil, fmt.Errorf("%w: header size %d at offset %d", ErrTruncated, headSize, offset)
		}
		header, err := readAt(reader, offset, headSize, size)
		if err != nil {
			return nil, err
		}

		blockType := header[2]
		flags := binary.LittleEndian.Uint16(header[3:5])
		b := block{offset: offset, header: header, kind: kindOther}

		switch blockType {
		case type4File, type4NewSub:
			if headSize < base4FileHeader {
				return nil, fmt.Errorf("%w: file header of %d bytes at offset %d", ErrTruncated, headSize, offset)
			}
			b.dataSize = int64(binary.LittleEndian.Uint32(header[offset4PackSize:]))
			if flags&flag4Large != 0 {
				if headSize < base4FileHeader+8 {
					return nil, fmt.Errorf("%w: LARGE file header of %d bytes at offset %d", ErrTruncated, headSize, offset)
				}
				b.dataSize |= int64(binary.LittleEndian.Uint32(header[offset4HighSizes:])) << 32
			}
			if blockType == type4File {
				b.kind = kindFile
			} else if name4(header) == "CMT" {
				b.kind = kindComment
			}
		case type4Main:
			b.kind = kindMain
		case type4OldComment:
			b.kind = kindOldComment
		default:
			if flags&flag4LongBlock != 0 {
				if headSize < base4Block+4 {
					return nil, fmt.Errorf("%w: long block of %d bytes at offset %d", ErrTruncated, headSize, offset)
				}
				b.dataSize = int64(binary.LittleEndian.Uint32(header[7:11]))
			}
		}

		if b.end() > size {
			return nil, fmt.Errorf("%w: data of block at offset %d ends past the file", ErrTruncated, offset)
		}
		blocks = append(blocks, b)
		offset = b.end()
		if blockType == type4End {
			break
		}
	}
	return blocks, nil
}

// name4 returns the name stored in a file or subblock header.
func name4(header []byte) string {
	nameSize := int(binary.LittleEndian.Uint16(header[offset4NameSize:]))
	start := base4FileHeader
	if binary.LittleEndian.Uint16(header[3:5])&flag4Large != 0 {
		start += 8
	}
	if start+nameSize > len(header) {
		return ""
	}
	return string(header[start : start+nameSize])
}

// checksum4 is the low half of the CRC32 over everything after the
// checksum field.
func checksum4(header []byte) uint16 {
	return uint16(crc32.ChecksumIEEE(header[2:]))
}

func patchHeader4(original []byte, fields Fields) ([]byte, error) {
	header := append([]byte(nil), original...)
	if len(header) < base4FileHeader {
		return nil, ErrTruncated
	}

	if fields.HostOS != nil {
		header[offset4HostOS] = *fields.HostOS
	}
	if fields.FileTime != nil {
		binary.LittleEndian.PutUint32(header[offset4FileTime:], *fields.FileTime)
	}
	if fields.touchesAttributes() {
		current := binary.LittleEndian.Uint32(header[offset4Attributes:])
		binary.LittleEndian.PutUint32(header[offset4Attributes:], fields.attributes(current))
	}
	if fields.Large != nil {
		flags := binary.LittleEndian.Uint16(header[3:5])
		if flags&flag4Large == 0 {
			if len(header)+8 > 0xffff {
				return nil, fmt.Errorf("header too large to add LARGE fields")
			}
			grown := make([]byte, 0, len(header)+8)
			grown = append(grown, header[:offset4HighSizes]...)
			grown = append(grown, make([]byte, 8)...)
			grown = append(grown, header[offset4HighSizes:]...)
			header = grown
			binary.LittleEndian.PutUint16(header[3:5], flags|flag4Large)
			binary.LittleEndian.PutUint16(header[5:7], uint16(len(header)))
		}
		binary.LittleEndian.PutUint32(header[offset4HighSizes:], fields.Large.HighPack)
		binary.LittleEndian.PutUint32(header[offset4HighSizes+4:], fields.Large.HighUnpacked)
	}

	binary.LittleEndian.PutUint16(header[0:2], checksum4(header))
	return header, nil
}

// comment4 extracts the comment from a CMT subblock or from a RAR 2.x
// comment block, either standalone or embedded in the main header.
func comment4(reader io.ReaderAt, size int64, b block) (Comment, bool, error) {
	switch b.kind {
	case kindComment:
		packed, err := readAt(reader, b.offset+int64(len(b.header)), int(b.dataSize), size)
		if err != nil {
			return Comment{}, false, err
		}
		return Comment{
			Format:       RAR4,
			Method:       b.header[offset4Method],
			Packed:       packed,
			UnpackedSize: int64(binary.LittleEndian.Uint32(b.header[offset4UnpSize:])),
		}, true, nil
	case kindMain:
		flags := binary.LittleEndian.Uint16(b.header[3:5])
		if flags&flag4MainComment == 0 || len(b.header) < base4MainHeader+base4OldComment {
			return Comment{}, false, nil
		}
		return oldComment4(b.header[base4MainHeader:])
	case kindOldComment:
		return oldComment4(b.header)
	}
	return Comment{}, false, nil
}

// oldComment4 parses a RAR 2.x comment block: the packed bytes follow
// the 13-byte block header inside the header size.
func oldComment4(header []byte) (Comment, bool, error) {
	if len(header) < base4OldComment || header[2] != type4OldComment {
		return Comment{}, false, nil
	}
	headSize := int(binary.LittleEndian.Uint16(header[5:7]))
	if headSize < base4OldComment || headSize > len(header) {
		return Comment{}, false, ErrTruncated
	}
	return Comment{
		Format:       RAR4,
		Method:       header[10],
		Packed:       append([]byte(nil), header[base4OldComment:headSize]...),
		UnpackedSize: int64(binary.LittleEndian.Uint16(header[7:9])),
	}, true, nil
}
