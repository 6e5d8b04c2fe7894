package rag

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KodiakAI/kodiak/services/assistant/datatypes"
)

func srcs(similarities ...float64) []datatypes.Source {
	out := make([]datatypes.Source, len(similarities))
	for i, s := range similarities {
		out[i] = datatypes.Source{Similarity: s}
	}
	return out
}

func TestEstimateConfidence(t *testing.T) {
	tests := []struct {
		name    string
		sources []datatypes.Source
		want    datatypes.ConfidenceLevel
	}{
		{"no sources", nil, datatypes.ConfidenceLow},
		{"two strong sources", srcs(0.8, 0.9), datatypes.ConfidenceHigh},
		{"single strong source stays medium", srcs(0.95), datatypes.ConfidenceMedium},
		{"exactly 0.75 average is not high", srcs(0.75, 0.75), datatypes.ConfidenceMedium},
		{"just above medium floor", srcs(0.61), datatypes.ConfidenceMedium},
		{"exactly 0.6 average is low", srcs(0.6, 0.6), datatypes.ConfidenceLow},
		{"weak sources", srcs(0.35, 0.4), datatypes.ConfidenceLow},
		{"mixed average above 0.75 with two", srcs(0.7, 0.9), datatypes.ConfidenceHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EstimateConfidence(tt.sources))
		})
	}
}
