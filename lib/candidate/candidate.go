// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package candidate

import (
	"strings"

	"github.com/bureau-foundation/rerar/lib/axis"
)

// Threads is an inclusive range of -mt values. A nil *Threads in a
// Space leaves the switch out entirely.
type Threads struct {
	Start int
	End   int
}

// width returns the number of thread values, clamping End < Start to a
// single value.
func (t *Threads) width() int {
	if t == nil || t.End < t.Start {
		return 1
	}
	return t.End - t.Start + 1
}

// Space describes every argument set a search may try.
type Space struct {
	// Fixed switches lead every argument set, the archive command
	// first.
	Fixed []axis.SwitchValue

	// Axes are enumerated in order, the first one varying slowest.
	Axes []axis.Axis

	// AttributeToggle tries every combination both with and without
	// -ai on builds that support it.
	AttributeToggle bool

	Threads *Threads

	// Volume switches (-v<size>, -vn) follow the axis values. Values
	// the build does not support are dropped.
	Volume []axis.SwitchValue
}

// Axis returns the axis with the given name.
func (s Space) Axis(name string) (axis.Axis, bool) {
	for _, a := range s.Axes {
		if a.Name == name {
			return a, true
		}
	}
	return axis.Axis{}, false
}

// Narrow returns a copy of the space with the named axis pinned to
// value. An axis missing from the space is appended.
func (s Space) Narrow(name string, value axis.SwitchValue) Space {
	narrowed := s
	narrowed.Axes = make([]axis.Axis, 0, len(s.Axes)+1)
	found := false
	for _, a := range s.Axes {
		if a.Name == name {
			a = a.Pin(value)
			found = true
		}
		narrowed.Axes = append(narrowed.Axes, a)
	}
	if !found {
		narrowed.Axes = append(narrowed.Axes, axis.New(name, value))
	}
	return narrowed
}

// Project returns a copy of the space that keeps only the named axes
// and the fixed switches. The toggle, thread range and volume switches
// are dropped.
func (s Space) Project(names ...string) Space {
	keep := make(map[string]bool, len(names))
	for _, name := range names {
		keep[name] = true
	}
	projected := Space{Fixed: s.Fixed}
	for _, a := range s.Axes {
		if keep[a.Name] {
			projected.Axes = append(projected.Axes, a)
		}
	}
	return projected
}

// Pass starts a fresh enumeration for build.
func (s Space) Pass(build int) *Cursor {
	formatAxis, _ := s.Axis(axis.ArchiveFormat)
	reachable := axis.ReachableFormats(build, formatAxis)

	cursor := &Cursor{build: build}
	for _, value := range s.Fixed {
		if value.SupportsBuild(build) {
			cursor.fixed = append(cursor.fixed, value)
		}
	}
	for _, value := range s.Volume {
		if value.SupportsBuild(build) {
			cursor.volume = append(cursor.volume, value)
		}
	}

	for _, a := range s.Axes {
		values := a.Filter(build, reachable)
		cursor.axes = append(cursor.axes, dimension{name: a.Name, values: values})
		cursor.sizes = append(cursor.sizes, max(len(values), 1))
	}

	cursor.toggle = s.AttributeToggle && axis.AttributeSwitch.SupportsBuild(build)
	if cursor.toggle {
		cursor.sizes = append(cursor.sizes, 2)
	} else {
		cursor.sizes = append(cursor.sizes, 1)
	}

	if s.Threads != nil && axis.ThreadSwitch(s.Threads.Start).SupportsBuild(build) {
		cursor.threads = s.Threads
	}
	cursor.sizes = append(cursor.sizes, cursor.threads.width())

	cursor.total = 1
	for _, size := range cursor.sizes {
		cursor.total *= int64(size)
	}
	cursor.indices = make([]int, len(cursor.sizes))
	return cursor
}

type dimension struct {
	name   string
	values []axis.SwitchValue
}

// Cursor walks one pass over a Space. It is not safe for concurrent
// use.
type Cursor struct {
	build   int
	fixed   []axis.SwitchValue
	volume  []axis.SwitchValue
	axes    []dimension
	toggle  bool
	threads *Threads

	sizes   []int
	indices []int
	total   int64
	emitted int64
}

// Total returns the number of argument sets the pass yields, including
// empty ones.
func (c *Cursor) Total() int64 { return c.total }

// Remaining returns how many argument sets have not been yielded yet.
func (c *Cursor) Remaining() int64 { return c.total - c.emitted }

// Next returns the next argument set. The boolean is false once the
// pass is exhausted. An argument set whose switches conflict with the
// format it selects is returned empty.
func (c *Cursor) Next() (ArgumentSet, bool) {
	if c.emitted >= c.total {
		return ArgumentSet{}, false
	}
	set := c.current()
	c.emitted++
	c.advance()
	return set, true
}

// advance moves the odometer one step, last dimension fastest.
func (c *Cursor) advance() {
	for position := len(c.indices) - 1; position >= 0; position-- {
		c.indices[position]++
		if c.indices[position] < c.sizes[position] {
			return
		}
		c.indices[position] = 0
	}
}

func (c *Cursor) current() ArgumentSet {
	set := ArgumentSet{
		Index:   c.emitted,
		Build:   c.build,
		choices: make(map[string]axis.SwitchValue, len(c.axes)),
	}

	formatSwitch := ""
	var chosen []axis.SwitchValue
	for position, dim := range c.axes {
		if len(dim.values) == 0 {
			continue
		}
		value := dim.values[c.indices[position]]
		chosen = append(chosen, value)
		set.choices[dim.name] = value
		if dim.name == axis.ArchiveFormat {
			formatSwitch = value.Text
		}
	}
	set.Format = axis.FormatFor(c.build, formatSwitch)

	for _, value := range chosen {
		if !value.Formats.Accepts(set.Format) {
			set.choices = nil
			return set
		}
	}

	toggleIndex := len(c.axes)
	switches := make([]axis.SwitchValue, 0, len(c.fixed)+len(chosen)+len(c.volume)+2)
	switches = append(switches, c.fixed...)
	if c.toggle && c.indices[toggleIndex] == 0 {
		switches = append(switches, axis.AttributeSwitch)
	}
	switches = append(switches, chosen...)
	switches = append(switches, c.volume...)
	if c.threads != nil {
		switches = append(switches, axis.ThreadSwitch(c.threads.Start+c.indices[toggleIndex+1]))
	}
	set.Switches = switches
	return set
}

// ArgumentSet is one candidate: the literal switches passed to the
// compressor, in order.
type ArgumentSet struct {
	// Index is the set's position within its pass.
	Index int64
	Build int

	Switches []axis.SwitchValue

	// Format is the archive format the switches make the build write.
	Format axis.Format

	choices map[string]axis.SwitchValue
}

// Empty reports whether the set was skipped because its switches
// conflict with its archive format.
func (s ArgumentSet) Empty() bool { return len(s.Switches) == 0 }

// Choice returns the value picked for the named axis. ok is false when
// the axis was disabled or filtered out.
func (s ArgumentSet) Choice(name string) (value axis.SwitchValue, ok bool) {
	value, ok = s.choices[name]
	return value, ok
}

// With returns a copy of the set with extra switches appended.
func (s ArgumentSet) With(extra ...axis.SwitchValue) ArgumentSet {
	if s.Empty() {
		return s
	}
	combined := make([]axis.SwitchValue, 0, len(s.Switches)+len(extra))
	combined = append(combined, s.Switches...)
	combined = append(combined, extra...)
	s.Switches = combined
	return s
}

// Args returns the switch texts.
func (s ArgumentSet) Args() []string {
	args := make([]string, len(s.Switches))
	for i, value := range s.Switches {
		args[i] = value.Text
	}
	return args
}

// String joins the switch texts with spaces, as shown in progress
// output.
func (s ArgumentSet) String() string {
	return strings.Join(s.Args(), " ")
}
