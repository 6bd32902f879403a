// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package rarheader

import (
	"encoding/binary"
	"hash/crc32"
	"os"
	"path/filepath"
	"testing"
)

// rar4Block assembles a RAR4 block from its type, flags and the header
// bytes that follow the 7-byte base, filling in size and checksum.
func rar4Block(blockType byte, flags uint16, body []byte) []byte {
	header := make([]byte, 7, 7+len(body))
	header[2] = blockType
	binary.LittleEndian.PutUint16(header[3:], flags)
	binary.LittleEndian.PutUint16(header[5:], uint16(7+len(body)))
	header = append(header, body...)
	binary.LittleEndian.PutUint16(header[0:], uint16(crc32.ChecksumIEEE(header[2:])))
	return header
}

type rar4Entry struct {
	blockType  byte
	name       string
	data       []byte
	hostOS     byte
	fileTime   uint32
	method     byte
	attributes uint32
}

func (e rar4Entry) bytes() []byte {
	body := binary.LittleEndian.AppendUint32(nil, uint32(len(e.data)))
	body = binary.LittleEndian.AppendUint32(body, uint32(len(e.data)))
	body = append(body, e.hostOS)
	body = binary.LittleEndian.AppendUint32(body, crc32.ChecksumIEEE(e.data))
	body = binary.LittleEndian.AppendUint32(body, e.fileTime)
	body = append(body, 29, e.method)
	body = binary.LittleEndian.AppendUint16(body, uint16(len(e.name)))
	body = binary.LittleEndian.AppendUint32(body, e.attributes)
	body = append(body, e.name...)
	return append(rar4Block(e.blockType, flag4LongBlock, body), e.data...)
}

func rar4Main(flags uint16, comment []byte) []byte {
	return rar4Block(type4Main, flags, append(make([]byte, 6), comment...))
}

func rar4End() []byte {
	return rar4Block(type4End, 0x4000, nil)
}

func rar4OldComment(method byte, packed []byte) []byte {
	body := binary.LittleEndian.AppendUint16(nil, uint16(len(packed)*2))
	body = append(body, 20, method)
	body = binary.LittleEndian.AppendUint16(body, 0xbeef)
	body = append(body, packed...)
	return rar4Block(type4OldComment, 0, body)
}

func rar4Archive(blocks ...[]byte) []byte {
	archive := append([]byte(nil), signature4...)
	for _, b := range blocks {
		archive = append(archive, b...)
	}
	return archive
}

// rar5Header frames a RAR5 header body with its size and checksum.
func rar5Header(body []byte) []byte {
	header := appendVint(make([]byte, 4), uint64(len(body)), 1)
	header = append(header, body...)
	binary.LittleEndian.PutUint32(header[0:], crc32.ChecksumIEEE(header[4:]))
	return header
}

type rar5Entry struct {
	headerType uint64
	name       string
	data       []byte
	attributes uint64
	fileTime   *uint32
	method     uint64
	hostOS     uint64
}

func (e rar5Entry) bytes() []byte {
	body := appendVint(nil, e.headerType, 1)
	body = appendVint(body, flag5Data, 1)
	body = appendVint(body, uint64(len(e.data)), 1)
	fileFlags := uint64(fileFlag5DataCRC)
	if e.fileTime != nil {
		fileFlags |= fileFlag5Time
	}
	body = appendVint(body, fileFlags, 1)
	body = appendVint(body, uint64(len(e.data)), 1)
	body = appendVint(body, e.attributes, 1)
	if e.fileTime != nil {
		body = binary.LittleEndian.AppendUint32(body, *e.fileTime)
	}
	body = binary.LittleEndian.AppendUint32(body, crc32.ChecksumIEEE(e.data))
	body = appendVint(body, e.method<<7, 1)
	body = appendVint(body, e.hostOS, 1)
	body = appendVint(body, uint64(len(e.name)), 1)
	body = append(body, e.name...)
	return append(rar5Header(body), e.data...)
}

func rar5Main() []byte {
	return rar5Header([]byte{1, 0, 0})
}

func rar5End() []byte {
	return rar5Header([]byte{type5End, 0, 0})
}

func rar5Archive(blocks ...[]byte) []byte {
	archive := append([]byte(nil), signature5...)
	for _, b := range blocks {
		archive = append(archive, b...)
	}
	return archive
}

func writeVolume(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "release.rar")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func readBlocks(t *testing.T, path string) *volume {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer file.Close()
	info, err := file.Stat()
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	parsed, err := scan(file, info.Size())
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	return parsed
}
