// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides the entrypoint helper of the rerar binary:
// reporting a fatal error to stderr when the structured logger may not
// be initialized, and exiting with the code a command chose.
package process
