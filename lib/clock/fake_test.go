// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sync"
	"testing"
	"time"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func received(channel <-chan time.Time) bool {
	select {
	case <-channel:
		return true
	default:
		return false
	}
}

func TestFakeNowMovesOnlyOnAdvance(t *testing.T) {
	fake := Fake(epoch)
	if got := fake.Now(); !got.Equal(epoch) {
		t.Fatalf("Now() = %v, want %v", got, epoch)
	}
	fake.Advance(90 * time.Second)
	if got, want := fake.Now(), epoch.Add(90*time.Second); !got.Equal(want) {
		t.Fatalf("Now() after Advance = %v, want %v", got, want)
	}
}

func TestFakeAfter(t *testing.T) {
	fake := Fake(epoch)
	channel := fake.After(3 * time.Second)

	fake.Advance(2 * time.Second)
	if received(channel) {
		t.Fatal("After fired before its deadline")
	}
	fake.Advance(time.Second)
	if !received(channel) {
		t.Fatal("After did not fire at its deadline")
	}

	if !received(fake.After(0)) {
		t.Error("After(0) should deliver immediately")
	}
}

func TestFakeTicker(t *testing.T) {
	fake := Fake(epoch)
	ticker := fake.NewTicker(time.Second)
	defer ticker.Stop()

	if received(ticker.C) {
		t.Fatal("ticker fired before the first interval")
	}
	for tick := 1; tick <= 3; tick++ {
		fake.Advance(time.Second)
		if !received(ticker.C) {
			t.Fatalf("tick %d missing", tick)
		}
	}
}

func TestFakeTickerDropsLateTicks(t *testing.T) {
	fake := Fake(epoch)
	ticker := fake.NewTicker(time.Second)
	defer ticker.Stop()

	fake.Advance(5 * time.Second)
	if !received(ticker.C) {
		t.Fatal("expected one buffered tick")
	}
	if received(ticker.C) {
		t.Fatal("ticks beyond the buffer should be dropped")
	}
}

func TestFakeTickerStop(t *testing.T) {
	fake := Fake(epoch)
	ticker := fake.NewTicker(time.Second)
	if got := fake.PendingCount(); got != 1 {
		t.Fatalf("PendingCount() = %d, want 1", got)
	}
	ticker.Stop()
	if got := fake.PendingCount(); got != 0 {
		t.Fatalf("PendingCount() after Stop = %d, want 0", got)
	}
	fake.Advance(5 * time.Second)
	if received(ticker.C) {
		t.Fatal("stopped ticker fired")
	}
}

func TestFakeTickerPanicsOnNonPositive(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("NewTicker(0) should panic")
		}
	}()
	Fake(epoch).NewTicker(0)
}

func TestFakeOneShotRemovedAfterFiring(t *testing.T) {
	fake := Fake(epoch)
	fake.After(time.Second)
	fake.After(3 * time.Second)
	fake.Advance(2 * time.Second)
	if got := fake.PendingCount(); got != 1 {
		t.Fatalf("PendingCount() = %d, want 1", got)
	}
}

func TestFakeWaitForTimers(t *testing.T) {
	fake := Fake(epoch)
	const goroutines = 4

	var group sync.WaitGroup
	group.Add(goroutines)
	for range goroutines {
		go func() {
			defer group.Done()
			ticker := fake.NewTicker(time.Second)
			<-ticker.C
			ticker.Stop()
		}()
	}

	fake.WaitForTimers(goroutines)
	fake.Advance(time.Second)
	group.Wait()
}

func TestClocksImplementClock(t *testing.T) {
	var _ Clock = (*FakeClock)(nil)
	var _ Clock = Real()
}
