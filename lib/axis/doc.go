// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package axis describes the tunable dimensions of a compressor switch
// search.
//
// A [SwitchValue] is one literal command-line switch ("-m3", "-md4096k")
// annotated with the compressor builds and archive formats it applies
// to. An [Axis] groups mutually exclusive values of one dimension
// (compression level, dictionary size, mtime precision, ...). The
// candidate generator takes the cartesian product of enabled axes after
// filtering each axis for the build under test.
//
// The constructors in catalog.go encode the applicability table of the
// RAR command-line compressor: which builds introduced which switch,
// and which archive formats accept it.
package axis
