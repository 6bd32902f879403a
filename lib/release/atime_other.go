// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !linux

package release

import (
	"io/fs"
	"time"
)

func accessTime(_ fs.FileInfo, fallback time.Time) time.Time {
	return fallback
}
