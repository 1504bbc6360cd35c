package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jwebster45206/hotspot-trainer/pkg/state"
)

func TestCalculateGrade(t *testing.T) {
	tests := []struct {
		name   string
		safety int
		risk   int
		want   string
	}{
		{"mostly safe", 90, 10, "A"},
		{"exactly ninety percent", 9, 1, "A"},
		{"just under A", 89, 11, "B"},
		{"exactly seventy five", 75, 25, "B"},
		{"exactly sixty", 60, 40, "C"},
		{"even split", 50, 50, "D"},
		{"exactly forty", 40, 60, "D"},
		{"mostly risky", 30, 70, "F"},
		{"all risk", 0, 100, "F"},
		{"no points", 0, 0, "F"},
		{"safety only", 5, 0, "A"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateGrade(state.Score{SafetyPoints: tt.safety, RiskPoints: tt.risk})
			assert.Equal(t, tt.want, got.Grade)
			assert.NotEmpty(t, got.Label)
			assert.NotEmpty(t, got.Color)
		})
	}
}

func TestSafetyRatio_EmptyScore(t *testing.T) {
	assert.Zero(t, SafetyRatio(state.Score{}))
}
