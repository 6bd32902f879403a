// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/rerar/lib/binhash"
	"github.com/bureau-foundation/rerar/lib/journal"
)

// EnvironmentVariable names the profile to load when no --config flag
// is given.
const EnvironmentVariable = "RERAR_CONFIG"

// Profile describes one reconstruction search.
type Profile struct {
	Versions VersionsConfig `yaml:"versions"`
	Release  ReleaseConfig  `yaml:"release"`

	// Output is the directory candidates write into.
	Output string `yaml:"output"`

	// ArchiveName is the produced archive's base name. Empty derives
	// it from the original volume names.
	ArchiveName string `yaml:"archive_name"`

	Target   TargetConfig   `yaml:"target"`
	Space    SpaceConfig    `yaml:"space"`
	Policy   PolicyConfig   `yaml:"policy"`
	Metadata MetadataConfig `yaml:"metadata"`
	Journal  JournalConfig  `yaml:"journal"`
}

// VersionsConfig selects compressor installations.
type VersionsConfig struct {
	// Root holds one subdirectory per installation, each with a rar
	// binary.
	Root string `yaml:"root"`

	// Majors are the enabled major versions ("2" through "7").
	Majors []string `yaml:"majors"`
}

// ReleaseConfig locates the uncompressed inputs.
type ReleaseConfig struct {
	Directory string `yaml:"directory"`

	// Inputs lists files relative to Directory in archive order.
	// Empty means every file, sorted by name.
	Inputs []string `yaml:"inputs"`
}

// TargetConfig is the published checksum list, already parsed.
type TargetConfig struct {
	// Algorithm is "crc32" or "sha1".
	Algorithm string          `yaml:"algorithm"`
	Checksums []ChecksumEntry `yaml:"checksums"`
}

// ChecksumEntry is one published volume checksum.
type ChecksumEntry struct {
	Name   string `yaml:"name"`
	Digest string `yaml:"digest"`
}

// SpaceConfig is the parameter space. Empty lists disable their axis.
type SpaceConfig struct {
	Compression  []int    `yaml:"compression"`
	Formats      []int    `yaml:"formats"`
	Dictionaries []string `yaml:"dictionaries"`

	// DictionaryKB adds dictionary sizes in KB, as the original
	// headers record them.
	DictionaryKB []int `yaml:"dictionary_kb"`

	// Timestamp precisions, 0 (not saved) through 4 (NTFS).
	ModifiedTime []int `yaml:"mtime"`
	CreationTime []int `yaml:"ctime"`
	AccessTime   []int `yaml:"atime"`

	AttributeToggle bool           `yaml:"attribute_toggle"`
	Threads         *ThreadsConfig `yaml:"threads"`
	Volume          *VolumeConfig  `yaml:"volume"`

	Recurse      bool `yaml:"recurse"`
	NoNameSort   bool `yaml:"no_name_sort"`
	DisableSolid bool `yaml:"disable_solid"`
}

// ThreadsConfig is an inclusive -mt range.
type ThreadsConfig struct {
	Start int `yaml:"start"`
	End   int `yaml:"end"`
}

// VolumeConfig splits the archive into volumes.
type VolumeConfig struct {
	Size int64 `yaml:"size"`

	// Unit is b, kb, mb, gb, kib, mib or gib. Empty means kb.
	Unit string `yaml:"unit"`

	// Bytes is the exact size of the original first volume. It
	// replaces Size and Unit.
	Bytes int64 `yaml:"bytes"`

	// OldNaming adds -vn for legacy .rar/.r00 names.
	OldNaming bool `yaml:"old_naming"`
}

// PolicyConfig mirrors search.Policy.
type PolicyConfig struct {
	StopOnFirstMatch  bool `yaml:"stop_on_first_match"`
	DeleteDuplicates  bool `yaml:"delete_duplicates"`
	DeleteNonMatching bool `yaml:"delete_non_matching"`
	RenameToOriginal  bool `yaml:"rename_to_original"`

	CompleteAllVolumes bool `yaml:"complete_all_volumes"`
}

// MetadataConfig is what was recovered from the original archive.
type MetadataConfig struct {
	// OriginalVolumeNames default, when renaming, to the checksum
	// names or to names derived from archive_name.
	OriginalVolumeNames []string `yaml:"original_volume_names"`
	ExpectedEntries     []string `yaml:"expected_entries"`

	// Directories are the archived directory entries, relative to the
	// release directory.
	Directories []string `yaml:"directories"`

	Comment    CommentConfig     `yaml:"comment"`
	Timestamps []TimestampConfig `yaml:"timestamps"`

	File          HeaderConfig `yaml:"file_headers"`
	CommentHeader HeaderConfig `yaml:"comment_header"`
}

// CommentConfig carries the archive comment. Text and TextFile are
// alternatives.
type CommentConfig struct {
	Text     string `yaml:"text"`
	TextFile string `yaml:"text_file"`

	// PayloadHex is the packed comment as hex.
	PayloadHex string `yaml:"payload_hex"`

	// Method is the stored method byte, 0x30 through 0x35.
	Method *int `yaml:"method"`
}

// TimestampConfig restores one entry's times, RFC 3339.
type TimestampConfig struct {
	Name     string `yaml:"name"`
	Modified string `yaml:"modified"`
	Created  string `yaml:"created"`
	Accessed string `yaml:"accessed"`
}

// HeaderConfig lists header fields to force after compression.
type HeaderConfig struct {
	HostOS     *int    `yaml:"host_os"`
	Attributes *uint32 `yaml:"attributes"`

	// Archive and NotContentIndexed set (true) or clear (false) one
	// attribute bit and leave the rest of the word alone. Unset keeps
	// what the compressor wrote.
	Archive           *bool `yaml:"archive"`
	NotContentIndexed *bool `yaml:"not_content_indexed"`

	FileTime *uint32      `yaml:"file_time"`
	Large    *LargeConfig `yaml:"large"`
}

// LargeConfig holds the RAR4 high size words.
type LargeConfig struct {
	HighPack     uint32 `yaml:"high_pack"`
	HighUnpacked uint32 `yaml:"high_unpacked"`
}

// JournalConfig enables the search journal.
type JournalConfig struct {
	Path string `yaml:"path"`

	// Compression is none, lz4 or zstd. Empty means zstd.
	Compression string `yaml:"compression"`
}

// Load loads the profile named by RERAR_CONFIG. There is no fallback
// when the variable is unset.
func Load() (*Profile, error) {
	path := os.Getenv(EnvironmentVariable)
	if path == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of a search profile, or use --config", EnvironmentVariable)
	}
	return LoadFile(path)
}

// LoadFile loads the profile at path. Relative paths inside the
// profile are resolved against the profile's directory.
func LoadFile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		data = jsonc.ToJSON(data)
	}

	var profile Profile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&profile); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("profile %s is empty", path)
		}
		return nil, fmt.Errorf("parsing profile %s: %w", path, err)
	}

	base, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("resolving profile directory: %w", err)
	}
	profile.expandVariables(base)
	return &profile, nil
}

// expandVariables expands ${VAR} patterns in path fields and anchors
// relative paths at base.
func (p *Profile) expandVariables(base string) {
	vars := map[string]string{
		"HOME":        os.Getenv("HOME"),
		"PROFILE_DIR": base,
	}
	resolve := func(value string) string {
		if value == "" {
			return ""
		}
		value = expandVars(value, vars)
		if !filepath.IsAbs(value) {
			value = filepath.Join(base, value)
		}
		return value
	}
	p.Versions.Root = resolve(p.Versions.Root)
	p.Release.Directory = resolve(p.Release.Directory)
	p.Output = resolve(p.Output)
	p.Journal.Path = resolve(p.Journal.Path)
	p.Metadata.Comment.TextFile = resolve(p.Metadata.Comment.TextFile)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Provided vars first, then the environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the profile and reports every problem found.
func (p *Profile) Validate() error {
	var errs []error

	if p.Versions.Root == "" {
		errs = append(errs, errors.New("versions.root is required"))
	}
	if len(p.Versions.Majors) == 0 {
		errs = append(errs, errors.New("versions.majors must enable at least one major version"))
	}
	if _, err := p.Ranges(); err != nil {
		errs = append(errs, fmt.Errorf("versions.majors: %w", err))
	}
	if p.Release.Directory == "" {
		errs = append(errs, errors.New("release.directory is required"))
	}
	if p.Output == "" {
		errs = append(errs, errors.New("output is required"))
	}
	if _, err := p.VerificationTarget(); err != nil {
		errs = append(errs, fmt.Errorf("target: %w", err))
	}
	if _, err := p.CandidateSpace(); err != nil {
		errs = append(errs, fmt.Errorf("space: %w", err))
	}
	if _, err := p.metadata(); err != nil {
		errs = append(errs, fmt.Errorf("metadata: %w", err))
	}
	if _, err := journal.ParseCompression(p.Journal.Compression); err != nil {
		errs = append(errs, fmt.Errorf("journal.compression: %w", err))
	}
	return errors.Join(errs...)
}

// VerificationTarget builds the checksum target.
func (p *Profile) VerificationTarget() (*binhash.Target, error) {
	algorithm, err := binhash.ParseAlgorithm(p.Target.Algorithm)
	if err != nil {
		return nil, err
	}
	entries := make([]binhash.Entry, len(p.Target.Checksums))
	for i, checksum := range p.Target.Checksums {
		entries[i] = binhash.Entry{Name: checksum.Name, Digest: checksum.Digest}
	}
	return binhash.NewTarget(algorithm, entries)
}

// parseTime parses an optional RFC 3339 timestamp.
func parseTime(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", field, err)
	}
	return parsed, nil
}
