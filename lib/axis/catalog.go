// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package axis

import (
	"fmt"
	"strconv"
	"strings"
)

// Axis names used by the standard catalog. Phase narrowing refers to
// axes by these names.
const (
	Compression   = "compression"
	ArchiveFormat = "format"
	Dictionary    = "dictionary"
	ModifiedTime  = "mtime"
	CreationTime  = "ctime"
	AccessTime    = "atime"
)

// Command is the archive-creation command every candidate starts with.
var Command = Switch("a", 200)

// AttributeSwitch asks the compressor to ignore file attributes. The
// attribute toggle tries every candidate with and without it.
var AttributeSwitch = Switch("-ai", 390)

// ThreadSwitch returns the -mt<n> switch for n compressor threads.
func ThreadSwitch(threads int) SwitchValue {
	return Switch("-mt"+strconv.Itoa(threads), 360)
}

// CommentSwitch returns the -z<file> switch that attaches the archive
// comment stored in path.
func CommentSwitch(path string) SwitchValue {
	return Switch("-z"+path, 200)
}

// CompressionLevels builds the compression method axis from levels in
// the range 0 (store) to 5 (best).
func CompressionLevels(levels ...int) (Axis, error) {
	values := make([]SwitchValue, 0, len(levels))
	for _, level := range levels {
		if level < 0 || level > 5 {
			return Axis{}, fmt.Errorf("compression level %d out of range 0-5", level)
		}
		values = append(values, Switch("-m"+strconv.Itoa(level), 200))
	}
	return New(Compression, values...), nil
}

// CompressionForMethod maps a stored compression method byte (0x30
// store through 0x35 best) to its -m switch.
func CompressionForMethod(method byte) (SwitchValue, bool) {
	if method < 0x30 || method > 0x35 {
		return SwitchValue{}, false
	}
	return Switch("-m"+strconv.Itoa(int(method-0x30)), 200), true
}

// ArchiveFormats builds the -ma axis. Only RAR 5.x and 6.x accept an
// explicit format; 7.x dropped the switch and writes RAR5 only.
func ArchiveFormats(versions ...int) (Axis, error) {
	values := make([]SwitchValue, 0, len(versions))
	for _, version := range versions {
		switch version {
		case 4, 5:
			values = append(values, SwitchRange("-ma"+strconv.Itoa(version), 500, 699))
		default:
			return Axis{}, fmt.Errorf("archive format %d not supported (want 4 or 5)", version)
		}
	}
	return New(ArchiveFormat, values...), nil
}

// dictionaryTable lists every dictionary switch with the first build
// that accepts it and the formats it is valid for.
var dictionaryTable = []SwitchValue{
	SwitchFor("-md64k", 200, RAR4),
	SwitchFor("-md128k", 200, AllFormats),
	SwitchFor("-md256k", 200, AllFormats),
	SwitchFor("-md512k", 200, AllFormats),
	SwitchFor("-md1024k", 200, AllFormats),
	SwitchFor("-md2048k", 200, AllFormats),
	SwitchFor("-md4096k", 200, AllFormats),
	SwitchFor("-md8m", 500, RAR5|RAR7),
	SwitchFor("-md16m", 500, RAR5|RAR7),
	SwitchFor("-md32m", 500, RAR5|RAR7),
	SwitchFor("-md64m", 500, RAR5|RAR7),
	SwitchFor("-md128m", 500, RAR5|RAR7),
	SwitchFor("-md256m", 500, RAR5|RAR7),
	SwitchFor("-md512m", 500, RAR5|RAR7),
	SwitchFor("-md1g", 500, RAR5|RAR7),
}

// Dictionaries builds the dictionary size axis from sizes written the
// way the compressor spells them ("64k", "4096k", "32m", "1g").
func Dictionaries(sizes ...string) (Axis, error) {
	values := make([]SwitchValue, 0, len(sizes))
	for _, size := range sizes {
		text := "-md" + strings.ToLower(strings.TrimSpace(size))
		value, ok := lookupDictionary(text)
		if !ok {
			return Axis{}, fmt.Errorf("unknown dictionary size %q", size)
		}
		values = append(values, value)
	}
	return New(Dictionary, values...), nil
}

// DictionaryForKilobytes returns the dictionary switch for a size in
// KB as recorded in archive headers (64 through 1048576).
func DictionaryForKilobytes(kilobytes int) (SwitchValue, bool) {
	var text string
	switch {
	case kilobytes >= 1024*1024 && kilobytes%(1024*1024) == 0:
		text = fmt.Sprintf("-md%dg", kilobytes/(1024*1024))
	case kilobytes > 4096 && kilobytes%1024 == 0:
		text = fmt.Sprintf("-md%dm", kilobytes/1024)
	default:
		text = fmt.Sprintf("-md%dk", kilobytes)
	}
	return lookupDictionary(text)
}

func lookupDictionary(text string) (SwitchValue, bool) {
	for _, value := range dictionaryTable {
		if value.Text == text {
			return value, true
		}
	}
	return SwitchValue{}, false
}

// Precision is a timestamp precision class as stored by the
// compressor's -ts switches.
type Precision int

const (
	NotSaved       Precision = 0
	OneSecond      Precision = 1
	HighPrecision1 Precision = 2
	HighPrecision2 Precision = 3
	NTFSPrecision  Precision = 4
)

// String returns the precision's name.
func (p Precision) String() string {
	switch p {
	case NotSaved:
		return "not-saved"
	case OneSecond:
		return "1s"
	case HighPrecision1:
		return "high-1"
	case HighPrecision2:
		return "high-2"
	case NTFSPrecision:
		return "ntfs"
	default:
		return fmt.Sprintf("precision(%d)", int(p))
	}
}

// Timestamps builds one of the mtime/ctime/atime precision axes. kind
// is ModifiedTime, CreationTime or AccessTime. Precisions above one
// second only exist in the RAR4 format.
func Timestamps(kind string, precisions ...Precision) (Axis, error) {
	var letter string
	switch kind {
	case ModifiedTime:
		letter = "m"
	case CreationTime:
		letter = "c"
	case AccessTime:
		letter = "a"
	default:
		return Axis{}, fmt.Errorf("unknown timestamp kind %q", kind)
	}

	values := make([]SwitchValue, 0, len(precisions))
	for _, precision := range precisions {
		if precision < NotSaved || precision > NTFSPrecision {
			return Axis{}, fmt.Errorf("%s precision %d out of range 0-4", kind, int(precision))
		}
		formats := AllFormats
		if precision > OneSecond {
			formats = RAR4
		}
		values = append(values, SwitchFor(fmt.Sprintf("-ts%s%d", letter, int(precision)), 320, formats))
	}
	return New(kind, values...), nil
}

// SizeUnit is the unit a volume size is expressed in.
type SizeUnit string

const (
	Bytes     SizeUnit = "b"
	Kilobytes SizeUnit = "kb"
	Megabytes SizeUnit = "mb"
	Gigabytes SizeUnit = "gb"
	Kibibytes SizeUnit = "kib"
	Mebibytes SizeUnit = "mib"
	Gibibytes SizeUnit = "gib"
)

// ParseSizeUnit accepts the unit names above in any case.
func ParseSizeUnit(name string) (SizeUnit, error) {
	unit := SizeUnit(strings.ToLower(strings.TrimSpace(name)))
	switch unit {
	case Bytes, Kilobytes, Megabytes, Gigabytes, Kibibytes, Mebibytes, Gibibytes:
		return unit, nil
	case "":
		return Kilobytes, nil
	default:
		return "", fmt.Errorf("unknown volume size unit %q", name)
	}
}

// VolumeSwitch returns the -v switch splitting the archive into volumes
// of size units. Decimal units are passed as plain kilobytes (the
// compressor multiplies by 1000), binary units with the k suffix (x1024).
func VolumeSwitch(size int64, unit SizeUnit) (SwitchValue, error) {
	if size <= 0 {
		return SwitchValue{}, fmt.Errorf("volume size must be positive, got %d", size)
	}
	var text string
	switch unit {
	case Bytes:
		text = fmt.Sprintf("-v%db", size)
	case Kilobytes, "":
		text = fmt.Sprintf("-v%d", size)
	case Megabytes:
		text = fmt.Sprintf("-v%d", size*1000)
	case Gigabytes:
		text = fmt.Sprintf("-v%d", size*1000*1000)
	case Kibibytes:
		text = fmt.Sprintf("-v%dk", size)
	case Mebibytes:
		text = fmt.Sprintf("-v%dk", size*1024)
	case Gibibytes:
		text = fmt.Sprintf("-v%dk", size*1024*1024)
	default:
		return SwitchValue{}, fmt.Errorf("unknown volume size unit %q", unit)
	}
	return Switch(text, 200), nil
}

// VolumeSizeFromBytes picks the largest unit that expresses size
// exactly, preferring decimal units the way release groups usually
// specify them.
func VolumeSizeFromBytes(size int64) (int64, SizeUnit) {
	switch {
	case size <= 0:
		return 0, Bytes
	case size%1_000_000_000 == 0:
		return size / 1_000_000_000, Gigabytes
	case size%1_000_000 == 0:
		return size / 1_000_000, Megabytes
	case size%1_000 == 0:
		return size / 1_000, Kilobytes
	case size%(1<<30) == 0:
		return size / (1 << 30), Gibibytes
	case size%(1<<20) == 0:
		return size / (1 << 20), Mebibytes
	case size%(1<<10) == 0:
		return size / (1 << 10), Kibibytes
	default:
		return size, Bytes
	}
}

// OldVolumeNaming selects legacy .rar/.r00 volume names. RAR 3.x
// introduced it; 7.x removed it.
var OldVolumeNaming = SwitchRange("-vn", 300, 699)

// Fixed holds the switches every candidate carries regardless of the
// axes.
type Fixed struct {
	Recurse      bool // -r
	NoNameSort   bool // -ds
	DisableSolid bool // -s-
}

// Switches returns the fixed switches in the compressor's customary
// order, starting with the archive command.
func (f Fixed) Switches() []SwitchValue {
	switches := []SwitchValue{Command}
	if f.Recurse {
		switches = append(switches, Switch("-r", 200))
	}
	if f.NoNameSort {
		switches = append(switches, Switch("-ds", 200))
	}
	if f.DisableSolid {
		switches = append(switches, Switch("-s-", 201))
	}
	return switches
}
