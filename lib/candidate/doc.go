// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package candidate enumerates the compressor argument sets a search
// tries for one compressor build.
//
// A [Space] holds the fixed switches, the parameter axes, the attribute
// toggle, the thread range and the volume switches. [Space.Pass]
// returns a [Cursor] that walks the cartesian product of the axis
// values that apply to the build, first axis outermost and thread count
// innermost. The cursor is lazy and single-use; calling Pass again
// starts a fresh enumeration.
//
// Axes are filtered before the product is taken, so a pass never yields
// the same argument set twice and its size is known up front:
//
//	total = ∏ max(1, |filtered axis|) × toggle factor × thread width
//
// A combination whose switches do not all accept the archive format the
// combination selects (for example a RAR4-only dictionary paired with
// -ma5) is still counted but yields an empty [ArgumentSet] that callers
// skip.
package candidate
