// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package release

import (
	"io/fs"
	"syscall"
	"time"
)

func accessTime(info fs.FileInfo, fallback time.Time) time.Time {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return fallback
	}
	return time.Unix(stat.Atim.Sec, stat.Atim.Nsec)
}
