// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package volume

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func touch(t *testing.T, directory string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(directory, name), []byte(name), 0644); err != nil {
			t.Fatalf("WriteFile(%s): %v", name, err)
		}
	}
}

func baseNames(paths []string) string {
	names := make([]string, len(paths))
	for i, path := range paths {
		names[i] = filepath.Base(path)
	}
	return strings.Join(names, " ")
}

func TestLocateNewStyle(t *testing.T) {
	directory := t.TempDir()
	touch(t, directory, "release.part10.rar", "release.part2.rar", "release.part1.rar", "other.part1.rar", "release.sfv")

	volumes, err := Locate(directory, "release")
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if got, want := baseNames(volumes), "release.part1.rar release.part2.rar release.part10.rar"; got != want {
		t.Errorf("Locate = %q, want %q", got, want)
	}
}

func TestLocateLegacy(t *testing.T) {
	directory := t.TempDir()
	touch(t, directory, "release.s00", "release.r01", "release.rar", "release.r00", "release.r99")

	volumes, err := Locate(directory, "release")
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if got, want := baseNames(volumes), "release.rar release.r00 release.r01 release.r99 release.s00"; got != want {
		t.Errorf("Locate = %q, want %q", got, want)
	}
}

func TestLocateSingleVolume(t *testing.T) {
	directory := t.TempDir()
	touch(t, directory, "release.rar")
	volumes, err := Locate(directory, "release")
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if len(volumes) != 1 || filepath.Base(volumes[0]) != "release.rar" {
		t.Errorf("Locate = %v", volumes)
	}
}

func TestLocateNothingProduced(t *testing.T) {
	directory := t.TempDir()
	touch(t, directory, "release.r00")
	volumes, err := Locate(directory, "release")
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if len(volumes) != 0 {
		t.Errorf("Locate = %v, want none without a first volume", volumes)
	}
	if _, err := Locate(filepath.Join(directory, "missing"), "release"); err == nil {
		t.Error("Locate should fail for a missing directory")
	}
}

func TestLegacyName(t *testing.T) {
	tests := []struct {
		index int
		want  string
	}{
		{0, "a.rar"},
		{1, "a.r00"},
		{100, "a.r99"},
		{101, "a.s00"},
	}
	for _, test := range tests {
		if got := LegacyName("a", test.index); got != test.want {
			t.Errorf("LegacyName(%d) = %q, want %q", test.index, got, test.want)
		}
	}
}

func TestPartName(t *testing.T) {
	if got := PartName("a", 0, 12); got != "a.part01.rar" {
		t.Errorf("PartName(0, 12) = %q", got)
	}
	if got := PartName("a", 2, 3); got != "a.part3.rar" {
		t.Errorf("PartName(2, 3) = %q", got)
	}
}

func TestNames(t *testing.T) {
	if got := strings.Join(Names("grp", 3, true), " "); got != "grp.rar grp.r00 grp.r01" {
		t.Errorf("legacy names = %q", got)
	}
	if got := strings.Join(Names("grp", 10, false)[8:], " "); got != "grp.part09.rar grp.part10.rar" {
		t.Errorf("new-style names = %q", got)
	}
	if got := Names("grp", 0, false); len(got) != 0 {
		t.Errorf("Names with no volumes = %v", got)
	}
}

func TestRenameToOriginal(t *testing.T) {
	directory := t.TempDir()
	touch(t, directory, "release.part1.rar", "release.part2.rar")
	volumes := []string{
		filepath.Join(directory, "release.part1.rar"),
		filepath.Join(directory, "release.part2.rar"),
	}

	renamed, err := RenameToOriginal(volumes, []string{"grp-title.rar", "grp-title.r00"})
	if err != nil {
		t.Fatalf("RenameToOriginal: %v", err)
	}
	if got := baseNames(renamed); got != "grp-title.rar grp-title.r00" {
		t.Errorf("renamed = %q", got)
	}
	content, err := os.ReadFile(filepath.Join(directory, "grp-title.r00"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(content) != "release.part2.rar" {
		t.Errorf("grp-title.r00 holds %q, want the second volume", content)
	}
}

func TestRenameToOriginalRejectsMismatch(t *testing.T) {
	if _, err := RenameToOriginal([]string{"/x/a.rar"}, nil); err == nil {
		t.Error("count mismatch should fail")
	}
	if _, err := RenameToOriginal([]string{"/x/a.rar"}, []string{"../escape.rar"}); err == nil {
		t.Error("path in original name should fail")
	}
}
