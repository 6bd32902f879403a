// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteScript writes an executable /bin/sh script with body to
// directory/name and returns its path.
func WriteScript(t testing.TB, directory, name, body string) string {
	t.Helper()
	if err := os.MkdirAll(directory, 0755); err != nil {
		t.Fatalf("creating %s: %v", directory, err)
	}
	path := filepath.Join(directory, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755); err != nil {
		t.Fatalf("writing script %s: %v", path, err)
	}
	return path
}

// FakeCompressor writes a script named rar into root/label, where
// rarversion.Discover will find it, and returns the script path.
func FakeCompressor(t testing.TB, root, label, body string) string {
	t.Helper()
	return WriteScript(t, filepath.Join(root, label), "rar", body)
}

// ArchiveScript is a compressor body that writes its argument list
// into the archive named on the command line (the argument ending in
// .rar) and exits 0.
const ArchiveScript = `archive=""
for argument in "$@"; do
	case "$argument" in
		*.rar) archive="$argument" ;;
	esac
done
printf '%s\n' "$*" > "$archive"`

// WriteFiles creates each named file under directory with the given
// content, creating parent directories, and returns directory.
func WriteFiles(t testing.TB, directory string, files map[string]string) string {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(directory, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("creating parent of %s: %v", path, err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("writing %s: %v", path, err)
		}
	}
	return directory
}
