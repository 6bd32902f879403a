// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads search profiles for rerar.
//
// A profile is a single file named by either the RERAR_CONFIG
// environment variable (via [Load]) or a --config flag (via
// [LoadFile]). There are no fallbacks and no automatic discovery: a
// search runs with exactly the parameters the profile states.
//
// Profiles are YAML. Files ending in .json or .jsonc are read as JSON
// with comments and trailing commas allowed, which YAML then parses as
// the JSON subset it is.
//
// Variable expansion is performed on path fields after loading:
// ${HOME} and ${VAR:-default} patterns are expanded. No environment
// variable overrides a value the profile sets.
//
// Key exports:
//
//   - [Profile] -- versions, release, target, space, policy, metadata
//   - [Load] and [LoadFile] -- the two entry points for loading
//   - [Profile.Validate] -- reports every problem at once
//   - [Profile.SearchOptions] -- converts a profile into search.Options
package config
