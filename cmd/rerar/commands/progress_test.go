// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/rerar/lib/clock"
	"github.com/bureau-foundation/rerar/lib/search"
)

func TestProgressSinkNonInteractive(t *testing.T) {
	var output bytes.Buffer
	sink := newProgressSink(&output, false, clock.Fake(time.Unix(0, 0)))

	sink.OnStatusChanged(search.Status{State: search.Running})
	sink.OnProgress(search.Progress{Tried: 1, Total: 4, Version: "rar-5.01", Arguments: "a -m3"})
	sink.OnLog(search.ChannelPhase2, "rar-5.01 [a -m3] MATCH DEADBEEF")
	sink.OnStatusChanged(search.Status{State: search.Completed, Reason: search.Success, Message: "1 matches after 4 of 4 candidates"})

	want := "[phase2] rar-5.01 [a -m3] MATCH DEADBEEF\nSuccess 1 matches after 4 of 4 candidates\n"
	if output.String() != want {
		t.Errorf("output = %q, want %q", output.String(), want)
	}
}

func TestFormatBytes(t *testing.T) {
	for _, test := range []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1536, "1.5 KB"},
		{5 << 20, "5.0 MB"},
		{3 << 30, "3.0 GB"},
	} {
		if got := formatBytes(test.bytes); got != test.want {
			t.Errorf("formatBytes(%d) = %q, want %q", test.bytes, got, test.want)
		}
	}
}

func TestProgressSinkInteractiveRedraws(t *testing.T) {
	var output bytes.Buffer
	fake := clock.Fake(time.Unix(1000, 0))
	sink := newProgressSink(&output, true, fake)

	sink.OnProgress(search.Progress{Tried: 1, Total: 10, Version: "rar-5.01", Arguments: "a -m0"})
	sink.OnProgress(search.Progress{Tried: 2, Total: 10, Version: "rar-5.01", Arguments: "a -m1"})
	if got := strings.Count(output.String(), "\r\x1b[K"); got != 1 {
		t.Fatalf("drew %d status lines within one interval, want 1", got)
	}
	if !strings.Contains(output.String(), "1/10") {
		t.Errorf("status line = %q", output.String())
	}

	fake.Advance(redrawInterval)
	sink.OnProgress(search.Progress{Tried: 3, Total: 10, Version: "rar-5.01", Arguments: "a -m2"})
	if !strings.Contains(output.String(), "3/10") {
		t.Errorf("status not redrawn after the interval: %q", output.String())
	}

	// The final candidate always redraws.
	sink.OnProgress(search.Progress{Tried: 10, Total: 10, BytesProcessed: 3 << 20, BytesTotal: 3 << 20, Version: "rar-5.01", Arguments: "a -m5"})
	if !strings.Contains(output.String(), "100.0% 10/10 3.0 MB/3.0 MB rar-5.01") {
		t.Errorf("final status missing: %q", output.String())
	}

	output.Reset()
	sink.OnLog(search.ChannelSystem, "note")
	if !strings.HasPrefix(output.String(), "\r\x1b[K[system] note\n") {
		t.Errorf("log line did not clear the status line first: %q", output.String())
	}
	if !strings.Contains(output.String(), "10/10") {
		t.Errorf("status line not restored after the log line: %q", output.String())
	}
}
