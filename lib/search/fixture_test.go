// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package search

import (
	"context"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/bureau-foundation/rerar/lib/axis"
	"github.com/bureau-foundation/rerar/lib/binhash"
	"github.com/bureau-foundation/rerar/lib/candidate"
	"github.com/bureau-foundation/rerar/lib/compressor"
	"github.com/bureau-foundation/rerar/lib/rarversion"
	"github.com/bureau-foundation/rerar/lib/testutil"
	"github.com/bureau-foundation/rerar/lib/volume"
)

// stubExecutor stands in for the compressor. Each run writes a single
// volume whose content is produced by write, by default the digest
// the argument string maps to.
type stubExecutor struct {
	mu      sync.Mutex
	digests map[string]string
	calls   []compressor.Invocation

	// write returns the volume content for an invocation. Nil writes
	// the mapped digest, or a digest derived from the arguments.
	write func(invocation compressor.Invocation) []byte

	// volumes maps an argument string to the digests of the volumes
	// the run writes, one file per digest.
	volumes map[string][]string

	// beforeRun is called with the 1-based call number.
	beforeRun func(call int)
}

func (s *stubExecutor) Execute(ctx context.Context, invocation compressor.Invocation) (compressor.Execution, error) {
	if ctx.Err() != nil {
		return compressor.Execution{Cancelled: true}, nil
	}
	s.mu.Lock()
	s.calls = append(s.calls, invocation)
	call := len(s.calls)
	s.mu.Unlock()
	if s.beforeRun != nil {
		s.beforeRun(call)
	}

	if digests, ok := s.volumes[strings.Join(invocation.Switches, " ")]; ok {
		return writeVolumes(invocation.Archive, digests)
	}

	var content []byte
	if s.write != nil {
		content = s.write(invocation)
	} else {
		content = []byte(s.digestFor(invocation))
	}
	if err := os.WriteFile(invocation.Archive, content, 0644); err != nil {
		return compressor.Execution{}, err
	}
	return compressor.Execution{Volumes: []string{invocation.Archive}}, nil
}

// writeVolumes writes one new-style volume per digest next to archive.
func writeVolumes(archive string, digests []string) (compressor.Execution, error) {
	directory := filepath.Dir(archive)
	name := strings.TrimSuffix(filepath.Base(archive), ".rar")
	var execution compressor.Execution
	for i, digest := range digests {
		path := filepath.Join(directory, volume.PartName(name, i, len(digests)))
		if err := os.WriteFile(path, []byte(digest), 0644); err != nil {
			return compressor.Execution{}, err
		}
		execution.Volumes = append(execution.Volumes, path)
	}
	return execution, nil
}

func (s *stubExecutor) digestFor(invocation compressor.Invocation) string {
	arguments := strings.Join(invocation.Switches, " ")
	if digest, ok := s.digests[arguments]; ok {
		return digest
	}
	return fmt.Sprintf("%08X", crc32.ChecksumIEEE([]byte(arguments)))
}

// arguments returns the switch strings of every call, in order.
func (s *stubExecutor) arguments() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []string
	for _, call := range s.calls {
		result = append(result, strings.Join(call.Switches, " "))
	}
	return result
}

// contentHasher treats a volume's content as its digest.
type contentHasher struct{}

func (contentHasher) HashFile(path string, _ binhash.Algorithm) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(content)), nil
}

// recordingSink keeps every event.
type recordingSink struct {
	progress []Progress
	statuses []Status
	logs     map[Channel][]string
}

func newRecordingSink() *recordingSink {
	return &recordingSink{logs: make(map[Channel][]string)}
}

func (s *recordingSink) OnProgress(progress Progress)  { s.progress = append(s.progress, progress) }
func (s *recordingSink) OnStatusChanged(status Status) { s.statuses = append(s.statuses, status) }
func (s *recordingSink) OnLog(channel Channel, line string) {
	s.logs[channel] = append(s.logs[channel], line)
}

// fixture is a release, an output directory and one installation.
type fixture struct {
	release      string
	output       string
	installation rarversion.Installation
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	root := t.TempDir()
	release := testutil.WriteFiles(t, filepath.Join(root, "release"), map[string]string{
		"group-release.nfo": "release notes",
		"group-release.mkv": strings.Repeat("frame", 200),
	})
	binary := testutil.FakeCompressor(t, filepath.Join(root, "versions"), "rar-5.01", "exit 0")
	return fixture{
		release:      release,
		output:       filepath.Join(root, "output"),
		installation: rarversion.Installation{Label: "rar-5.01", Binary: binary, Build: 501},
	}
}

func (f fixture) options(t *testing.T, space candidate.Space, digests ...string) Options {
	t.Helper()
	entries := make([]binhash.Entry, len(digests))
	for i, digest := range digests {
		entries[i] = binhash.Entry{Name: fmt.Sprintf("group-release.r%02d", i), Digest: digest}
	}
	if len(entries) > 0 {
		entries[0].Name = "group-release.rar"
	}
	target, err := binhash.NewTarget(binhash.CRC32, entries)
	if err != nil {
		t.Fatalf("NewTarget: %v", err)
	}
	return Options{
		Installations: []rarversion.Installation{f.installation},
		ReleaseDir:    f.release,
		OutputDir:     f.output,
		Target:        target,
		Space:         space,
	}
}

// levelsAndFormats is compression {levels} x format {formats}.
func levelsAndFormats(t *testing.T, levels []int, formats []int) candidate.Space {
	t.Helper()
	compression, err := axis.CompressionLevels(levels...)
	if err != nil {
		t.Fatal(err)
	}
	format, err := axis.ArchiveFormats(formats...)
	if err != nil {
		t.Fatal(err)
	}
	return candidate.Space{
		Fixed: axis.Fixed{}.Switches(),
		Axes:  []axis.Axis{compression, format},
	}
}

func rar4Block(blockType byte, flags uint16, body []byte) []byte {
	header := make([]byte, 7, 7+len(body))
	header[2] = blockType
	binary.LittleEndian.PutUint16(header[3:], flags)
	binary.LittleEndian.PutUint16(header[5:], uint16(7+len(body)))
	header = append(header, body...)
	binary.LittleEndian.PutUint16(header[0:], uint16(crc32.ChecksumIEEE(header[2:])))
	return header
}

func rar4Archive(blocks ...[]byte) []byte {
	archive := []byte("Rar!\x1a\x07\x00")
	archive = append(archive, rar4Block(0x73, 0, make([]byte, 6))...)
	for _, b := range blocks {
		archive = append(archive, b...)
	}
	return append(archive, rar4Block(0x7b, 0x4000, nil)...)
}

// rar4Comment is a RAR 2.x style comment block.
func rar4Comment(method byte, packed []byte) []byte {
	body := binary.LittleEndian.AppendUint16(nil, uint16(len(packed)))
	body = append(body, 20, method)
	body = binary.LittleEndian.AppendUint16(body, 0)
	body = append(body, packed...)
	return rar4Block(0x75, 0, body)
}

// rar4File is a stored file header followed by its data.
func rar4File(name string, data []byte, hostOS byte) []byte {
	body := binary.LittleEndian.AppendUint32(nil, uint32(len(data)))
	body = binary.LittleEndian.AppendUint32(body, uint32(len(data)))
	body = append(body, hostOS)
	body = binary.LittleEndian.AppendUint32(body, crc32.ChecksumIEEE(data))
	body = binary.LittleEndian.AppendUint32(body, 0x3c8e6000)
	body = append(body, 29, 0x30)
	body = binary.LittleEndian.AppendUint16(body, uint16(len(name)))
	body = binary.LittleEndian.AppendUint32(body, 0x20)
	body = append(body, name...)
	return append(rar4Block(0x74, 0x8000, body), data...)
}
