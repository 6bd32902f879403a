// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bureau-foundation/rerar/lib/config"
	"github.com/bureau-foundation/rerar/lib/rarversion"
)

// profileParams locates the search profile.
type profileParams struct {
	Config string `flag:"config,c" desc:"search profile (default: $RERAR_CONFIG)"`
}

// load reads and validates the profile.
func (p profileParams) load() (*config.Profile, error) {
	var (
		profile *config.Profile
		err     error
	)
	if p.Config != "" {
		profile, err = config.LoadFile(p.Config)
	} else {
		profile, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("invalid profile:\n%w", err)
	}
	return profile, nil
}

// discoverInstallations returns the compressor builds under the
// profile's versions root that its enabled majors select, in search
// order.
func discoverInstallations(ctx context.Context, profile *config.Profile, logger *slog.Logger) ([]rarversion.Installation, error) {
	matrix, err := rarversion.Discover(ctx, profile.Versions.Root, rarversion.ExecProber{}, logger)
	if err != nil {
		return nil, err
	}
	ranges, err := profile.Ranges()
	if err != nil {
		return nil, err
	}
	selected := matrix.Select(ranges)
	if len(selected) == 0 {
		return nil, fmt.Errorf("no compressor under %s matches the enabled majors (%s); %d installations found",
			profile.Versions.Root, strings.Join(profile.Versions.Majors, ", "), len(matrix.Installations))
	}
	logger.Debug("selected installations", "count", len(selected), "found", len(matrix.Installations))
	return selected, nil
}
