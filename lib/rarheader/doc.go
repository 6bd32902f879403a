// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package rarheader rewrites the metadata fields of produced archive
// volumes that the compressor cannot be told to write, and extracts
// the packed archive comment.
//
// Both header generations are handled:
//
//   - RAR 1.5-4.x ("RAR4"): fixed-offset little-endian blocks with a
//     16-bit header checksum (the low half of the CRC32 of the header
//     after the checksum field).
//   - RAR 5.0 and later ("RAR5"): variable-length integer fields with a
//     CRC32 over the header size and header body.
//
// [PatchFile] rewrites the host OS, attribute word and modification
// time of file headers and of the comment service header, and sets the
// RAR4 LARGE flag with its high size fields. When every patched header
// keeps its length the volume is updated in place; inserting the LARGE
// fields or widening a variable-length field rewrites the volume
// through a temporary file in the same directory.
//
// [ReadComment] returns the packed bytes of the archive comment, taken
// from the RAR4 CMT subblock, the RAR 2.x comment block embedded in the
// main header, or the RAR5 CMT service header.
package rarheader
