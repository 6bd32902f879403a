// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package journal

import "time"

// VersionSummary totals the candidates one compressor build ran.
type VersionSummary struct {
	Version  string            `json:"version"`
	Build    int               `json:"build"`
	Outcomes map[Outcome]int64 `json:"outcomes"`
	Elapsed  time.Duration     `json:"elapsed"`
}

// Summary condenses a journal for display.
type Summary struct {
	Fingerprint string           `json:"fingerprint,omitempty"`
	Started     time.Time        `json:"started"`
	Finished    time.Time        `json:"finished,omitzero"`
	Reason      string           `json:"reason,omitempty"`
	Versions    []VersionSummary `json:"versions"`
	Matches     []Record         `json:"matches"`
}

// Summarize folds records, in journal order, into a summary of the
// most recent search they contain.
func Summarize(records []Record) Summary {
	var summary Summary
	index := make(map[string]int)
	for _, record := range records {
		switch record.Kind {
		case KindStart:
			summary = Summary{Fingerprint: record.Fingerprint, Started: record.Time}
			index = make(map[string]int)
		case KindCandidate:
			position, ok := index[record.Version]
			if !ok {
				position = len(summary.Versions)
				index[record.Version] = position
				summary.Versions = append(summary.Versions, VersionSummary{
					Version:  record.Version,
					Build:    record.Build,
					Outcomes: make(map[Outcome]int64),
				})
			}
			summary.Versions[position].Outcomes[record.Outcome]++
			summary.Versions[position].Elapsed += record.Duration
		case KindMatch:
			summary.Matches = append(summary.Matches, record)
		case KindCompletion:
			summary.Finished = record.Time
			summary.Reason = record.Reason
		}
	}
	return summary
}
