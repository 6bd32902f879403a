// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package release

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/rerar/lib/testutil"
)

func writeRelease(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	testutil.WriteFiles(t, dir, map[string]string{
		"group-release.nfo":       "release notes",
		"Sample/group-sample.mkv": "sample",
		"group-release.mkv":       strings.Repeat("x", 1000),
	})
	return dir
}

func TestListWalksSorted(t *testing.T) {
	dir := writeRelease(t)
	inputs, err := List(dir, nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"Sample/group-sample.mkv", "group-release.mkv", "group-release.nfo"}
	got := Names(inputs)
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("Names = %v, want %v", got, want)
	}
	if TotalSize(inputs) != 1000+6+13 {
		t.Errorf("TotalSize = %d", TotalSize(inputs))
	}
	for _, input := range inputs {
		if !filepath.IsAbs(input.Path) {
			t.Errorf("Path %q is not absolute", input.Path)
		}
	}
}

func TestListKeepsGivenOrder(t *testing.T) {
	dir := writeRelease(t)
	inputs, err := List(dir, []string{"group-release.nfo", "group-release.mkv"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(inputs) != 2 || inputs[0].Name != "group-release.nfo" || inputs[1].Size != 1000 {
		t.Fatalf("inputs = %+v", inputs)
	}
}

func TestListRejects(t *testing.T) {
	dir := writeRelease(t)
	tests := []struct {
		name  string
		names []string
	}{
		{"escape", []string{"../outside"}},
		{"absolute", []string{"/etc/passwd"}},
		{"missing", []string{"absent.mkv"}},
		{"directory", []string{"Sample"}},
		{"repeated", []string{"group-release.nfo", "./group-release.nfo"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := List(dir, test.names); err == nil {
				t.Errorf("List(%v) succeeded", test.names)
			}
		})
	}

	if _, err := List(t.TempDir(), nil); err == nil {
		t.Error("List of an empty directory should fail")
	}
	if _, err := List(filepath.Join(dir, "group-release.nfo"), nil); err == nil {
		t.Error("List of a file should fail")
	}
}

func TestApplyTimestamps(t *testing.T) {
	dir := writeRelease(t)
	modified := time.Date(2009, 7, 4, 12, 30, 2, 0, time.UTC)
	accessed := time.Date(2009, 7, 5, 8, 0, 0, 0, time.UTC)

	err := ApplyTimestamps(dir, []Timestamps{
		{Name: "group-release.mkv", Modified: modified, Accessed: accessed},
		{Name: "group-release.nfo"},
	})
	if err != nil {
		t.Fatalf("ApplyTimestamps: %v", err)
	}
	info, err := os.Stat(filepath.Join(dir, "group-release.mkv"))
	if err != nil {
		t.Fatal(err)
	}
	if !info.ModTime().Equal(modified) {
		t.Errorf("ModTime = %v, want %v", info.ModTime(), modified)
	}

	err = ApplyTimestamps(dir, []Timestamps{{Name: "absent.mkv", Modified: modified}})
	if err == nil || !strings.Contains(err.Error(), "absent.mkv") {
		t.Errorf("missing entry error = %v", err)
	}
}

func TestDirectories(t *testing.T) {
	dir := writeRelease(t)
	got, err := Directories(dir, []string{"Sample", "Subs/Vobsub", "Subs"})
	if err != nil {
		t.Fatalf("Directories: %v", err)
	}
	if strings.Join(got, ",") != "Sample,Subs/Vobsub,Subs" {
		t.Errorf("Directories = %v", got)
	}
	info, err := os.Stat(filepath.Join(dir, "Subs", "Vobsub"))
	if err != nil || !info.IsDir() {
		t.Errorf("missing directory was not created: %v", err)
	}

	for _, names := range [][]string{{"../outside"}, {"group-release.nfo"}, {"Sample", "Sample/"}} {
		if _, err := Directories(dir, names); err == nil {
			t.Errorf("Directories(%v) succeeded", names)
		}
	}
}

func TestApplyTimestampsStampsDirectoriesLast(t *testing.T) {
	dir := writeRelease(t)
	if _, err := Directories(dir, []string{"Subs/Vobsub"}); err != nil {
		t.Fatal(err)
	}
	sampleTime := time.Date(2009, 7, 4, 12, 0, 0, 0, time.UTC)
	subsTime := time.Date(2009, 7, 4, 12, 5, 0, 0, time.UTC)
	fileTime := time.Date(2009, 7, 4, 11, 0, 0, 0, time.UTC)

	err := ApplyTimestamps(dir, []Timestamps{
		{Name: "Sample", Modified: sampleTime},
		{Name: "Subs", Modified: subsTime},
		{Name: "Subs/Vobsub", Modified: subsTime},
		{Name: "Sample/group-sample.mkv", Modified: fileTime},
	})
	if err != nil {
		t.Fatalf("ApplyTimestamps: %v", err)
	}
	for name, want := range map[string]time.Time{
		"Sample":                  sampleTime,
		"Subs":                    subsTime,
		"Subs/Vobsub":             subsTime,
		"Sample/group-sample.mkv": fileTime,
	} {
		info, err := os.Stat(filepath.Join(dir, filepath.FromSlash(name)))
		if err != nil {
			t.Fatal(err)
		}
		if !info.ModTime().Equal(want) {
			t.Errorf("%s ModTime = %v, want %v", name, info.ModTime(), want)
		}
	}
}

func TestFingerprint(t *testing.T) {
	dir := writeRelease(t)
	inputs, err := List(dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	first, err := Fingerprint(inputs)
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	if len(first) != 64 {
		t.Errorf("fingerprint %q is not 32 hex bytes", first)
	}
	again, _ := Fingerprint(inputs)
	if again != first {
		t.Error("fingerprint is not deterministic")
	}

	reordered := []Input{inputs[1], inputs[0], inputs[2]}
	if other, _ := Fingerprint(reordered); other == first {
		t.Error("reordering inputs kept the fingerprint")
	}

	if err := os.WriteFile(inputs[2].Path, []byte("release notez"), 0644); err != nil {
		t.Fatal(err)
	}
	if edited, _ := Fingerprint(inputs); edited == first {
		t.Error("editing content kept the fingerprint")
	}

	if err := os.WriteFile(inputs[2].Path, []byte("short"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Fingerprint(inputs); err == nil {
		t.Error("a size change since List should fail")
	}
}
