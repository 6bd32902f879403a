// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package search

import "github.com/bureau-foundation/rerar/lib/rarversion"

// VersionPlan is the candidate count of one installation before
// phase 1 narrows anything.
type VersionPlan struct {
	Installation rarversion.Installation
	Phase1       int64
	Phase2       int64
}

// Total returns the candidates of both phases.
func (p VersionPlan) Total() int64 { return p.Phase1 + p.Phase2 }

// Plan validates options and returns the candidate counts a search
// would start with, in search order. Nothing is written.
func Plan(options Options) ([]VersionPlan, error) {
	valid, err := validate(options)
	if err != nil {
		return nil, err
	}
	r := &run{options: valid}
	return r.plan(), nil
}

func (r *run) plan() []VersionPlan {
	plans := make([]VersionPlan, len(r.options.installations))
	for i, installation := range r.options.installations {
		plans[i].Installation = installation
		if len(r.options.Metadata.Comment.Payload) > 0 {
			plans[i].Phase1 = r.commentSpace().Pass(installation.Build).Total()
		}
		plans[i].Phase2 = r.options.Space.Pass(installation.Build).Total()
	}
	return plans
}
