// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package rarheader

import "errors"

var errVint = errors.New("malformed variable-length integer")

// readVint decodes a RAR5 variable-length integer: seven bits per byte,
// least significant first, high bit set on every byte but the last.
func readVint(data []byte) (uint64, int, error) {
	var value uint64
	for i := 0; i < len(data) && i < 10; i++ {
		value |= uint64(data[i]&0x7f) << (7 * i)
		if data[i]&0x80 == 0 {
			return value, i + 1, nil
		}
	}
	return 0, 0, errVint
}

// vintWidth returns the minimal encoded length of value.
func vintWidth(value uint64) int {
	width := 1
	for value >= 0x80 {
		value >>= 7
		width++
	}
	return width
}

// appendVint encodes value using at least width bytes, padding with
// continuation bytes so a rewritten field can keep its original size.
func appendVint(destination []byte, value uint64, width int) []byte {
	width = max(width, vintWidth(value))
	for i := 0; i < width-1; i++ {
		destination = append(destination, byte(value&0x7f)|0x80)
		value >>= 7
	}
	return append(destination, byte(value&0x7f))
}
