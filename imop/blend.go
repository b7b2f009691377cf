// Package imop implements the separable blend modes and the Porter-Duff
// composition operations used for mixing a graphic element with its
// backdrop. The image/draw core package implements only the
// source-over-destination and source operations; this package fills the gap.
//
// The viewer uses it to lay the color mapped depth over the color view.
package imop

import (
	"math"

	"github.com/esimov/depthview/utils"
	"github.com/pkg/errors"
)

const (
	Darken   = "darken"
	Lighten  = "lighten"
	Multiply = "multiply"
	Screen   = "screen"
	Overlay  = "overlay"
)

// BlendModes lists the supported blend modes.
var BlendModes = []string{Darken, Lighten, Multiply, Screen, Overlay}

// ErrUnsupportedMode is returned when setting an unknown blend or
// composition mode.
var ErrUnsupportedMode = errors.New("unsupported mode")

// Blend holds the currently active blend mode.
type Blend struct {
	OpType string
}

// NewBlend initializes a new Blend.
func NewBlend() *Blend {
	return &Blend{}
}

// Set activates one of the supported blend modes.
func (o *Blend) Set(opType string) error {
	if !utils.Contains(BlendModes, opType) {
		return errors.Wrapf(ErrUnsupportedMode, "blend mode %q", opType)
	}
	o.OpType = opType
	return nil
}

// Get returns the currently active blend mode.
func (o *Blend) Get() string {
	return o.OpType
}

// Apply mixes the source channel cs into the backdrop channel cb. Both are
// normalized to 0..1. Without an active mode the source is returned.
func (o *Blend) Apply(cs, cb float64) float64 {
	switch o.OpType {
	case Darken:
		return utils.Min(cs, cb)
	case Lighten:
		return utils.Max(cs, cb)
	case Multiply:
		return cs * cb
	case Screen:
		return cs + cb - cs*cb
	case Overlay:
		// hard light with the layers swapped
		if cb <= 0.5 {
			return 2 * cs * cb
		}
		return 1 - 2*(1-cs)*(1-cb)
	}
	return cs
}

// ParseBlend returns a Blend set to mode.
func ParseBlend(mode string) (*Blend, error) {
	b := NewBlend()
	if err := b.Set(mode); err != nil {
		return nil, err
	}
	return b, nil
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return utils.Clamp(v, 0, 1)
}
