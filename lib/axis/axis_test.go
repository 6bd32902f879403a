// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package axis

import (
	"testing"
)

func texts(values []SwitchValue) []string {
	result := make([]string, len(values))
	for i, value := range values {
		result[i] = value.Text
	}
	return result
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSupportsBuild(t *testing.T) {
	tests := []struct {
		name  string
		value SwitchValue
		build int
		want  bool
	}{
		{"below minimum", Switch("-ai", 390), 380, false},
		{"at minimum", Switch("-ai", 390), 390, true},
		{"unbounded", Switch("-ai", 390), 711, true},
		{"inside range", OldVolumeNaming, 550, true},
		{"at maximum", OldVolumeNaming, 699, true},
		{"past maximum", OldVolumeNaming, 700, false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := test.value.SupportsBuild(test.build); got != test.want {
				t.Errorf("%s.SupportsBuild(%d) = %v, want %v", test.value.Text, test.build, got, test.want)
			}
		})
	}
}

func TestFilterDropsInapplicableValues(t *testing.T) {
	dictionary, err := Dictionaries("64k", "4096k", "32m")
	if err != nil {
		t.Fatalf("Dictionaries: %v", err)
	}

	got := texts(dictionary.Filter(290, RAR4))
	want := []string{"-md64k", "-md4096k"}
	if !equalStrings(got, want) {
		t.Errorf("Filter(290, RAR4) = %v, want %v", got, want)
	}

	got = texts(dictionary.Filter(550, RAR5))
	want = []string{"-md4096k", "-md32m"}
	if !equalStrings(got, want) {
		t.Errorf("Filter(550, RAR5) = %v, want %v", got, want)
	}
}

func TestFilterRemovesDuplicateTexts(t *testing.T) {
	axis := New(Compression, Switch("-m3", 200), Switch("-m3", 200), Switch("-m5", 200))
	got := texts(axis.Filter(500, RAR5))
	want := []string{"-m3", "-m5"}
	if !equalStrings(got, want) {
		t.Errorf("Filter = %v, want %v", got, want)
	}
}

func TestFilterDisabledAxis(t *testing.T) {
	axis := New(Compression, Switch("-m3", 200))
	axis.Enabled = false
	if got := axis.Filter(500, RAR5); got != nil {
		t.Errorf("disabled axis filtered to %v, want nil", texts(got))
	}
	if empty := New(Compression); empty.Enabled {
		t.Error("axis without values should be disabled")
	}
}

func TestPin(t *testing.T) {
	levels, err := CompressionLevels(0, 3, 5)
	if err != nil {
		t.Fatalf("CompressionLevels: %v", err)
	}

	pinned := levels.Pin(Switch("-m3", 200))
	if got := texts(pinned.Values); !equalStrings(got, []string{"-m3"}) {
		t.Errorf("Pin(-m3) values = %v", got)
	}
	if len(levels.Values) != 3 {
		t.Errorf("Pin modified the original axis: %v", texts(levels.Values))
	}

	outside := levels.Pin(Switch("-m1", 200))
	if got := texts(outside.Values); !equalStrings(got, []string{"-m1"}) {
		t.Errorf("Pin(-m1) values = %v, want [-m1]", got)
	}
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		build        int
		formatSwitch string
		want         Format
	}{
		{290, "", RAR4},
		{420, "-ma5", RAR4},
		{500, "", RAR5},
		{611, "-ma4", RAR4},
		{611, "-ma5", RAR5},
		{701, "-ma4", RAR7},
	}
	for _, test := range tests {
		if got := FormatFor(test.build, test.formatSwitch); got != test.want {
			t.Errorf("FormatFor(%d, %q) = %v, want %v", test.build, test.formatSwitch, got, test.want)
		}
	}
}

func TestReachableFormats(t *testing.T) {
	formats, err := ArchiveFormats(4, 5)
	if err != nil {
		t.Fatalf("ArchiveFormats: %v", err)
	}
	if got := ReachableFormats(550, formats); got != RAR4|RAR5 {
		t.Errorf("ReachableFormats(550) = %v, want RAR4|RAR5", got)
	}
	// -ma is gone in 7.x, so the axis filters to nothing.
	if got := ReachableFormats(710, formats); got != RAR7 {
		t.Errorf("ReachableFormats(710) = %v, want RAR7", got)
	}
	if got := ReachableFormats(550, New(ArchiveFormat)); got != RAR5 {
		t.Errorf("ReachableFormats(550, disabled) = %v, want RAR5", got)
	}
}

func TestFormatString(t *testing.T) {
	if got := (RAR4 | RAR7).String(); got != "RAR4|RAR7" {
		t.Errorf("String = %q", got)
	}
	if got := Format(0).String(); got != "any" {
		t.Errorf("zero String = %q", got)
	}
}
