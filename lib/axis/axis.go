// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package axis

import (
	"fmt"
	"strings"
)

// Format is a bitmask of archive formats. The zero value means "any
// format" when used as an applicability mask.
type Format uint8

const (
	// RAR4 is the RAR 2.9/4.x archive format.
	RAR4 Format = 1 << iota
	// RAR5 is the RAR 5.0 archive format introduced by RAR 5.00.
	RAR5
	// RAR7 is the format written by RAR 7.x (RAR5 with larger
	// dictionaries).
	RAR7

	// AllFormats accepts every known format.
	AllFormats = RAR4 | RAR5 | RAR7
)

// String returns "RAR4", "RAR4|RAR5", and so on.
func (f Format) String() string {
	if f == 0 {
		return "any"
	}
	var parts []string
	if f&RAR4 != 0 {
		parts = append(parts, "RAR4")
	}
	if f&RAR5 != 0 {
		parts = append(parts, "RAR5")
	}
	if f&RAR7 != 0 {
		parts = append(parts, "RAR7")
	}
	if len(parts) == 0 {
		return fmt.Sprintf("format(%d)", uint8(f))
	}
	return strings.Join(parts, "|")
}

// Accepts reports whether the mask admits the concrete format. A zero
// mask admits everything.
func (f Format) Accepts(format Format) bool {
	return f == 0 || f&format != 0
}

// Overlaps reports whether the mask shares at least one format with
// other. A zero mask overlaps everything.
func (f Format) Overlaps(other Format) bool {
	return f == 0 || other == 0 || f&other != 0
}

// SwitchValue is one literal compressor switch and the builds and
// formats it is valid for. Builds are encoded as major*100+minor
// (RAR 5.01 is 501). MaxBuild 0 means no upper bound.
type SwitchValue struct {
	Text     string
	MinBuild int
	MaxBuild int
	Formats  Format
}

// Switch returns a value valid from minBuild onward for all formats.
func Switch(text string, minBuild int) SwitchValue {
	return SwitchValue{Text: text, MinBuild: minBuild}
}

// SwitchRange returns a value valid for builds in [minBuild, maxBuild].
func SwitchRange(text string, minBuild, maxBuild int) SwitchValue {
	return SwitchValue{Text: text, MinBuild: minBuild, MaxBuild: maxBuild}
}

// SwitchFor returns a value valid from minBuild onward, restricted to
// the given formats.
func SwitchFor(text string, minBuild int, formats Format) SwitchValue {
	return SwitchValue{Text: text, MinBuild: minBuild, Formats: formats}
}

// SupportsBuild reports whether build lies within the value's range.
func (v SwitchValue) SupportsBuild(build int) bool {
	if build < v.MinBuild {
		return false
	}
	return v.MaxBuild == 0 || build <= v.MaxBuild
}

// String returns the literal switch text.
func (v SwitchValue) String() string { return v.Text }

// Axis is one independent dimension of the search space. Values are
// mutually exclusive: a candidate picks at most one of them.
type Axis struct {
	Name    string
	Values  []SwitchValue
	Enabled bool
}

// New returns an enabled axis when values is non-empty and a disabled
// one otherwise.
func New(name string, values ...SwitchValue) Axis {
	return Axis{Name: name, Values: values, Enabled: len(values) > 0}
}

// Filter returns the values applicable to build whose format masks
// overlap formats. The result preserves the axis order and drops
// repeated switch texts. A disabled axis filters to nil.
func (a Axis) Filter(build int, formats Format) []SwitchValue {
	if !a.Enabled {
		return nil
	}
	var kept []SwitchValue
	seen := make(map[string]bool, len(a.Values))
	for _, value := range a.Values {
		if !value.SupportsBuild(build) || !value.Formats.Overlaps(formats) {
			continue
		}
		if seen[value.Text] {
			continue
		}
		seen[value.Text] = true
		kept = append(kept, value)
	}
	return kept
}

// Pin returns a copy of the axis reduced to the single value whose text
// matches. When no value matches, the returned axis holds exactly that
// value so a narrowed search still uses it.
func (a Axis) Pin(value SwitchValue) Axis {
	for _, candidate := range a.Values {
		if candidate.Text == value.Text {
			return Axis{Name: a.Name, Values: []SwitchValue{candidate}, Enabled: true}
		}
	}
	return Axis{Name: a.Name, Values: []SwitchValue{value}, Enabled: true}
}

// FormatFor returns the archive format a build writes when the given
// format switch (possibly empty) is passed.
func FormatFor(build int, formatSwitch string) Format {
	switch {
	case build < 500:
		return RAR4
	case build >= 700:
		return RAR7
	case formatSwitch == "-ma4":
		return RAR4
	default:
		return RAR5
	}
}

// ReachableFormats returns every format the build can produce given the
// enabled values of the format axis.
func ReachableFormats(build int, formatAxis Axis) Format {
	values := formatAxis.Filter(build, 0)
	if len(values) == 0 {
		return FormatFor(build, "")
	}
	var reachable Format
	for _, value := range values {
		reachable |= FormatFor(build, value.Text)
	}
	return reachable
}
