// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package rarversion

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestMajorRange(t *testing.T) {
	tests := []struct {
		major string
		want  Range
	}{
		{"2", Range{200, 300}},
		{"4", Range{400, 500}},
		{"5.x", Range{500, 600}},
		{" 7 ", Range{700, 800}},
	}
	for _, test := range tests {
		got, err := MajorRange(test.major)
		if err != nil {
			t.Fatalf("MajorRange(%q): %v", test.major, err)
		}
		if got != test.want {
			t.Errorf("MajorRange(%q) = %v, want %v", test.major, got, test.want)
		}
	}
	for _, bad := range []string{"1", "8", "five", ""} {
		if _, err := MajorRange(bad); err == nil {
			t.Errorf("MajorRange(%q) should fail", bad)
		}
	}
}

func TestRangeIsHalfOpen(t *testing.T) {
	r := Range{Min: 400, Max: 500}
	if !r.Contains(400) || !r.Contains(499) {
		t.Error("range should contain its lower bound and 499")
	}
	if r.Contains(500) || r.Contains(399) {
		t.Error("range should exclude 500 and 399")
	}
}

func TestParseBanner(t *testing.T) {
	tests := []struct {
		banner string
		want   int
	}{
		{"\nRAR 5.01   Copyright (c) 1993-2014 Alexander Roshal   11 Jun 2014\n", 501},
		{"RAR 3.60   Copyright (c) 1993-2006 Alexander Roshal", 360},
		{"RAR 2.90    Copyright (c) 1993-2001", 290},
		{"rar 7.01 x64", 701},
	}
	for _, test := range tests {
		got, err := ParseBanner(test.banner)
		if err != nil {
			t.Fatalf("ParseBanner(%q): %v", test.banner, err)
		}
		if got != test.want {
			t.Errorf("ParseBanner(%q) = %d, want %d", test.banner, got, test.want)
		}
	}
	if _, err := ParseBanner("usage: something else"); err == nil {
		t.Error("ParseBanner should fail without a version")
	}
}

func TestParseDirectoryName(t *testing.T) {
	tests := []struct {
		name string
		want int
	}{
		{"rar-5.01", 501},
		{"winrar 3.6", 360},
		{"rar290", 290},
		{"winrar-x64-611", 611},
	}
	for _, test := range tests {
		got, err := ParseDirectoryName(test.name)
		if err != nil {
			t.Fatalf("ParseDirectoryName(%q): %v", test.name, err)
		}
		if got != test.want {
			t.Errorf("ParseDirectoryName(%q) = %d, want %d", test.name, got, test.want)
		}
	}
}

type mapProber map[string]string

func (p mapProber) Probe(_ context.Context, binary string) (string, error) {
	banner, ok := p[filepath.Base(filepath.Dir(binary))]
	if !ok {
		return "", errors.New("no banner")
	}
	return banner, nil
}

func writeBinary(t *testing.T, root, directory, name string) {
	t.Helper()
	path := filepath.Join(root, directory)
	if err := os.MkdirAll(path, 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(path, name), []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestDiscoverAndSelect(t *testing.T) {
	root := t.TempDir()
	writeBinary(t, root, "rar-5.01", "rar")
	writeBinary(t, root, "custom", "rar.exe")
	writeBinary(t, root, "rar-3.60", "Rar.exe")
	writeBinary(t, root, "rar-4.20", "rar")
	if err := os.MkdirAll(filepath.Join(root, "empty-5.50"), 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	prober := mapProber{
		"custom":   "RAR 4.11   Copyright",
		"rar-5.01": "garbage without version",
	}
	matrix, err := Discover(context.Background(), root, prober, nil)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(matrix.Installations) != 4 {
		t.Fatalf("discovered %d installations, want 4: %+v", len(matrix.Installations), matrix.Installations)
	}

	selected := matrix.Select([]Range{{400, 500}, {500, 600}})
	var labels []string
	for _, installation := range selected {
		labels = append(labels, installation.Label)
		if !filepath.IsAbs(installation.Binary) {
			t.Errorf("binary %q is not absolute", installation.Binary)
		}
	}
	want := []string{"custom", "rar-4.20", "rar-5.01"}
	if len(labels) != len(want) {
		t.Fatalf("selected %v, want %v", labels, want)
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("selected[%d] = %q, want %q", i, labels[i], want[i])
		}
	}
	if selected[0].Build != 411 || selected[0].Version() != "4.11" {
		t.Errorf("custom build = %d (%s), want 411", selected[0].Build, selected[0].Version())
	}

	if got := matrix.Select(nil); len(got) != 0 {
		t.Errorf("Select(nil) = %v, want none", got)
	}
}

func TestSelectTiesOrderedByLabel(t *testing.T) {
	matrix := &Matrix{Installations: []Installation{
		{Label: "b", Build: 500},
		{Label: "a", Build: 500},
		{Label: "c", Build: 290},
	}}
	selected := matrix.Select([]Range{{200, 300}, {500, 600}})
	if selected[0].Label != "c" || selected[1].Label != "a" || selected[2].Label != "b" {
		t.Errorf("order = %v", selected)
	}
}

func TestDiscoverMissingRoot(t *testing.T) {
	if _, err := Discover(context.Background(), filepath.Join(t.TempDir(), "missing"), nil, nil); err == nil {
		t.Fatal("Discover should fail for a missing root")
	}
}
