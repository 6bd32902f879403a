// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package journal records a search as an append-only file of framed
// CBOR records so a long run can be inspected afterwards (rerar
// report) without re-running it.
//
// Each frame is:
//
//	[1 byte compression tag][uvarint raw length][uvarint payload length][payload]
//
// The payload is one [Record] in Core Deterministic CBOR, compressed
// with the tag's algorithm. Frames that do not shrink under
// compression are stored with [CompressionNone], so the tag is chosen
// per frame. Readers stop cleanly at a torn final frame, which is what
// an interrupted search leaves behind.
//
// A journal holds, in order: one [KindStart] record per search, one
// [KindCandidate] record per executed candidate, a [KindMatch] record
// per verified match and a closing [KindCompletion] record.
package journal
