// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package journal

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/rerar/lib/clock"
)

var epoch = time.Date(2026, 3, 14, 15, 9, 26, 535897000, time.UTC)

func sampleRecords() []Record {
	return []Record{
		{Kind: KindStart, Fingerprint: strings.Repeat("ab", 32), Inputs: 2, InputBytes: 4096, Versions: []string{"rar-5.01"}, Algorithm: "crc32"},
		{Kind: KindCandidate, Version: "rar-5.01", Build: 501, Phase: 2, Index: 0, Arguments: "a -m3 -ma4", Outcome: OutcomeMismatch, Digests: []string{"00C0FFEE"}, Duration: 3 * time.Second},
		{Kind: KindCandidate, Version: "rar-5.01", Build: 501, Phase: 2, Index: 1, Arguments: "a -m3 -ma5", Outcome: OutcomeMatch, Digests: []string{"DEADBEEF"}, Duration: 2 * time.Second},
		{Kind: KindMatch, Version: "rar-5.01", Build: 501, Phase: 2, Index: 1, Arguments: "a -m3 -ma5", Digests: []string{"DEADBEEF"}, Volumes: []string{"/out/rar-5.01/p2-1/release.rar"}},
		{Kind: KindCompletion, Reason: "Success", Matches: 1, Tried: 2},
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	for _, compression := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd} {
		t.Run(compression.String(), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "search.journal")
			writer, err := Create(path, compression, clock.Fake(epoch))
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			for _, record := range sampleRecords() {
				if err := writer.Append(record); err != nil {
					t.Fatalf("Append: %v", err)
				}
			}
			if err := writer.Close(); err != nil {
				t.Fatalf("Close: %v", err)
			}

			records, err := ReadFile(path)
			if err != nil {
				t.Fatalf("ReadFile: %v", err)
			}
			if len(records) != 5 {
				t.Fatalf("read %d records, want 5", len(records))
			}
			if !records[0].Time.Equal(epoch) {
				t.Errorf("Time = %v, want the fake clock's %v", records[0].Time, epoch)
			}
			if records[2].Outcome != OutcomeMatch || records[2].Digests[0] != "DEADBEEF" {
				t.Errorf("candidate record = %+v", records[2])
			}
			if records[1].Duration != 3*time.Second {
				t.Errorf("Duration = %v", records[1].Duration)
			}
			if records[3].Volumes[0] != "/out/rar-5.01/p2-1/release.rar" {
				t.Errorf("match record = %+v", records[3])
			}
		})
	}
}

func TestAppendAfterCloseFails(t *testing.T) {
	writer, err := Create(filepath.Join(t.TempDir(), "j"), CompressionNone, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := writer.Append(Record{Kind: KindStart}); err == nil {
		t.Error("Append after Close should fail")
	}
}

func TestReaderStopsAtTornFrame(t *testing.T) {
	path := filepath.Join(t.TempDir(), "search.journal")
	writer, err := Create(path, CompressionZstd, clock.Fake(epoch))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	for _, record := range sampleRecords()[:3] {
		if err := writer.Append(record); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	writer.Close()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	reader := NewReader(bytes.NewReader(content[:len(content)-3]))
	count := 0
	for {
		_, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		count++
	}
	if count != 2 {
		t.Errorf("read %d complete records, want 2", count)
	}
	if !reader.Torn() {
		t.Error("Torn() = false for a truncated stream")
	}
}

func TestReaderRejectsUnknownCompression(t *testing.T) {
	frame := []byte{9, 1, 1, 0}
	if _, err := NewReader(bytes.NewReader(frame)).Next(); err == nil {
		t.Error("unknown compression tag should fail")
	}
}

func TestCompressFallsBackToNone(t *testing.T) {
	payload, tag, err := compress([]byte{1, 2, 3}, CompressionZstd)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}
	if tag != CompressionNone || len(payload) != 3 {
		t.Errorf("tiny payload stored as %s (%d bytes)", tag, len(payload))
	}

	repetitive := bytes.Repeat([]byte("a -m3 -ma4 -md4096k "), 100)
	for _, preferred := range []Compression{CompressionLZ4, CompressionZstd} {
		payload, tag, err := compress(repetitive, preferred)
		if err != nil {
			t.Fatalf("compress(%s): %v", preferred, err)
		}
		if tag != preferred || len(payload) >= len(repetitive) {
			t.Errorf("compress(%s) = %s with %d bytes", preferred, tag, len(payload))
		}
		restored, err := decompress(payload, tag, len(repetitive))
		if err != nil {
			t.Fatalf("decompress(%s): %v", preferred, err)
		}
		if !bytes.Equal(restored, repetitive) {
			t.Errorf("decompress(%s) changed the payload", preferred)
		}
	}
}

func TestParseCompression(t *testing.T) {
	if got, err := ParseCompression(""); err != nil || got != CompressionZstd {
		t.Errorf("ParseCompression(\"\") = %v, %v", got, err)
	}
	if got, err := ParseCompression("LZ4"); err != nil || got != CompressionLZ4 {
		t.Errorf("ParseCompression(LZ4) = %v, %v", got, err)
	}
	if _, err := ParseCompression("gzip"); err == nil {
		t.Error("ParseCompression(gzip) should fail")
	}
}

func TestSummarize(t *testing.T) {
	records := sampleRecords()
	for i := range records {
		records[i].Time = epoch.Add(time.Duration(i) * time.Second)
	}
	summary := Summarize(records)

	if summary.Reason != "Success" || !summary.Finished.Equal(epoch.Add(4*time.Second)) {
		t.Errorf("completion = %q at %v", summary.Reason, summary.Finished)
	}
	if len(summary.Versions) != 1 {
		t.Fatalf("Versions = %+v", summary.Versions)
	}
	version := summary.Versions[0]
	if version.Outcomes[OutcomeMismatch] != 1 || version.Outcomes[OutcomeMatch] != 1 {
		t.Errorf("outcomes = %v", version.Outcomes)
	}
	if version.Elapsed != 5*time.Second {
		t.Errorf("Elapsed = %v", version.Elapsed)
	}
	if len(summary.Matches) != 1 || summary.Matches[0].Arguments != "a -m3 -ma5" {
		t.Errorf("Matches = %+v", summary.Matches)
	}
}
