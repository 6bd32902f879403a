// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package binhash checksums produced archive volumes and compares them
// with the checksums a release was published with.
//
// The API surface:
//
//   - [HashFile] -- streams a file through CRC32 (IEEE) or SHA1 and
//     returns the upper-case hex digest, with constant memory usage
//     regardless of volume size
//   - [ParseDigest] -- validates and normalizes a digest string for an
//     algorithm (8 hex digits for CRC32, 40 for SHA1)
//   - [Target] -- the expected (file name, digest) pairs; matching is
//     order-independent and tolerates repeated digests
//   - [Verify] -- hashes a candidate's volumes and reports whether they
//     reproduce the target
//
// This package has no dependencies on other rerar packages.
package binhash
