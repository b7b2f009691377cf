package depthview

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnits_FeetToMeters(t *testing.T) {
	tests := []struct {
		in   string
		want float32
	}{
		{"20", 6.096},
		{"0.328", 0.0999744},
		{"1", 0.3048},
		{"-2", -0.6096},
		{"  3.5", 1.0668},
		{"1e1", 3.048},
		{".5", 0.1524},
		{"12abc", 3.6576},
		{"7.", 2.1336},
		{"2e", 0.6096},
		{"abc", 0},
		{"", 0},
		{"-", 0},
		{".", 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.InDelta(t, tt.want, FeetToMeters(tt.in), 1e-5)
		})
	}
}

func TestUnits_ClipRange(t *testing.T) {
	tests := []struct {
		name string
		args []string
		near float32
		far  float32
	}{
		{"no args", nil, 0.1, 6.096},
		{"near only", []string{"20"}, 6.096, 6.096},
		{"near and far", []string{"1", "20"}, 0.3048, 6.096},
		{"malformed near", []string{"abc", "10"}, 0, 3.048},
		{"too many", []string{"1", "2", "3"}, 0.1, 6.096},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			near, far := ClipRange(tt.args)
			assert.InDelta(t, tt.near, near, 1e-5)
			assert.InDelta(t, tt.far, far, 1e-5)
		})
	}
}
