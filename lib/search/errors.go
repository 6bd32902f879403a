// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package search

import "fmt"

// ConfigurationError reports options that make a search impossible. It
// is returned before any candidate runs.
type ConfigurationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid search configuration: %s: %s: %v", e.Field, e.Message, e.Err)
	}
	return fmt.Sprintf("invalid search configuration: %s: %s", e.Field, e.Message)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// StorageError reports that the output directory or a produced volume
// could not be written or read. It aborts the search.
type StorageError struct {
	Path string
	Op   string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
