// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package release

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Input is one file handed to the compressor.
type Input struct {
	// Name is the path relative to the release directory, with forward
	// slashes. It is what the compressor stores in the archive.
	Name string
	// Path is the absolute path on disk.
	Path string
	Size int64
}

// List resolves the release inputs. When names is empty every regular
// file under dir is used, sorted by name. Otherwise names are taken in
// the given order and each must be a regular file inside dir.
func List(dir string, names []string) ([]Input, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving release directory %s: %w", dir, err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("release directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("release directory %s is not a directory", root)
	}

	if len(names) == 0 {
		return walk(root)
	}

	inputs := make([]Input, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		clean, err := relativeName(name)
		if err != nil {
			return nil, fmt.Errorf("release input %q %w", name, err)
		}
		if seen[clean] {
			return nil, fmt.Errorf("release input %q listed twice", name)
		}
		seen[clean] = true

		path := filepath.Join(root, filepath.FromSlash(clean))
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("release input: %w", err)
		}
		if !info.Mode().IsRegular() {
			return nil, fmt.Errorf("release input %s is not a regular file", path)
		}
		inputs = append(inputs, Input{Name: clean, Path: path, Size: info.Size()})
	}
	return inputs, nil
}

func walk(root string) ([]Input, error) {
	var inputs []Input
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			return err
		}
		relative, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		inputs = append(inputs, Input{Name: filepath.ToSlash(relative), Path: path, Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing release %s: %w", root, err)
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("release directory %s contains no files", root)
	}
	sort.Slice(inputs, func(i, j int) bool { return inputs[i].Name < inputs[j].Name })
	return inputs, nil
}

// TotalSize sums the input sizes.
func TotalSize(inputs []Input) int64 {
	var total int64
	for _, input := range inputs {
		total += input.Size
	}
	return total
}

// Names returns the relative input names in order.
func Names(inputs []Input) []string {
	names := make([]string, len(inputs))
	for i, input := range inputs {
		names[i] = input.Name
	}
	return names
}

// Directories resolves the directory entries the original archive held,
// keeping their order. Missing directories are created, since empty
// ones rarely survive a release being copied around.
func Directories(dir string, names []string) ([]string, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving release directory %s: %w", dir, err)
	}
	result := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		clean, err := relativeName(name)
		if err != nil {
			return nil, fmt.Errorf("release directory %q: %w", name, err)
		}
		if seen[clean] {
			return nil, fmt.Errorf("release directory %q listed twice", name)
		}
		seen[clean] = true

		path := filepath.Join(root, filepath.FromSlash(clean))
		info, err := os.Stat(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			if err := os.MkdirAll(path, 0755); err != nil {
				return nil, fmt.Errorf("creating release directory: %w", err)
			}
		case err != nil:
			return nil, fmt.Errorf("release directory: %w", err)
		case !info.IsDir():
			return nil, fmt.Errorf("release entry %s is not a directory", path)
		}
		result = append(result, clean)
	}
	return result, nil
}

// relativeName cleans name and rejects anything escaping the release.
func relativeName(name string) (string, error) {
	clean := filepath.ToSlash(filepath.Clean(filepath.FromSlash(name)))
	if filepath.IsAbs(name) || clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", errors.New("must be a relative path inside the release")
	}
	return clean, nil
}

// Timestamps are the recovered times of one archived entry. A zero
// time means the original archive did not store it.
type Timestamps struct {
	Name     string
	Modified time.Time
	Created  time.Time
	Accessed time.Time
}

// ApplyTimestamps sets the modification and access times of the named
// release files and directories. Entries with neither time are skipped;
// a missing access time keeps the entry's current one. Creation times
// cannot be set on this platform and are ignored. Files are stamped
// first and directories afterwards, deepest first, so no later change
// moves a directory's times. Every failing entry is reported.
func ApplyTimestamps(dir string, stamps []Timestamps) error {
	type pending struct {
		stamp Timestamps
		path  string
		info  os.FileInfo
	}
	var errs []error
	var files, directories []pending
	for _, stamp := range stamps {
		if stamp.Modified.IsZero() && stamp.Accessed.IsZero() {
			continue
		}
		path := filepath.Join(dir, filepath.FromSlash(stamp.Name))
		info, err := os.Stat(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("timestamps for %s: %w", stamp.Name, err))
			continue
		}
		if info.IsDir() {
			directories = append(directories, pending{stamp, path, info})
		} else {
			files = append(files, pending{stamp, path, info})
		}
	}
	sort.SliceStable(directories, func(i, j int) bool {
		return strings.Count(directories[i].path, string(filepath.Separator)) >
			strings.Count(directories[j].path, string(filepath.Separator))
	})

	for _, entry := range append(files, directories...) {
		stamp, path, info := entry.stamp, entry.path, entry.info
		modified := stamp.Modified
		if modified.IsZero() {
			modified = info.ModTime()
		}
		accessed := stamp.Accessed
		if accessed.IsZero() {
			accessed = accessTime(info, modified)
		}
		if err := os.Chtimes(path, accessed, modified); err != nil {
			errs = append(errs, fmt.Errorf("timestamps for %s: %w", stamp.Name, err))
		}
	}
	return errors.Join(errs...)
}
