// Copyright (C) 2025 Kodiak AI (maintainers@kodiakai.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package rag

import "github.com/KodiakAI/kodiak/services/assistant/datatypes"

// EstimateConfidence derives the answer's confidence label from the final
// source list.
//
// # Description
//
// No sources means low. Otherwise the mean similarity decides: strictly
// above 0.75 with at least two sources is high, strictly above 0.6 is
// medium, anything else is low. Boundary values (exactly 0.75 or 0.6) do
// not qualify for the higher tier. A single very strong source stays
// medium: corroboration is part of what "high" claims.
func EstimateConfidence(sources []datatypes.Source) datatypes.ConfidenceLevel {
	if len(sources) == 0 {
		return datatypes.ConfidenceLow
	}

	var sum float64
	for _, s := range sources {
		sum += s.Similarity
	}
	avg := sum / float64(len(sources))

	switch {
	case avg > 0.75 && len(sources) >= 2:
		return datatypes.ConfidenceHigh
	case avg > 0.6:
		return datatypes.ConfidenceMedium
	default:
		return datatypes.ConfidenceLow
	}
}
