package imop

import (
	"image"

	"github.com/esimov/depthview/utils"
	"github.com/pkg/errors"
)

const (
	Clear   = "clear"
	Copy    = "copy"
	Dst     = "dst"
	SrcOver = "src_over"
	DstOver = "dst_over"
	SrcIn   = "src_in"
	DstIn   = "dst_in"
	SrcOut  = "src_out"
	DstOut  = "dst_out"
	SrcAtop = "src_atop"
	DstAtop = "dst_atop"
	Xor     = "xor"
)

// Bitmap holds the result of a composition.
type Bitmap struct {
	Img *image.NRGBA
}

// Composite holds the currently active composition operation.
type Composite struct {
	current string
	ops     []string
}

// NewBitmap allocates a transparent bitmap.
func NewBitmap(rect image.Rectangle) *Bitmap {
	return &Bitmap{
		Img: image.NewNRGBA(rect),
	}
}

// InitOp returns a Composite set to SrcOver.
func InitOp() *Composite {
	return &Composite{
		current: SrcOver,
		ops: []string{
			Clear,
			Copy,
			Dst,
			SrcOver,
			DstOver,
			SrcIn,
			DstIn,
			SrcOut,
			DstOut,
			SrcAtop,
			DstAtop,
			Xor,
		},
	}
}

// Set activates one of the supported composition operations.
func (op *Composite) Set(cop string) error {
	if !utils.Contains(op.ops, cop) {
		return errors.Wrapf(ErrUnsupportedMode, "composite operation %q", cop)
	}
	op.current = cop
	return nil
}

// Get returns the active composition operation.
func (op *Composite) Get() string {
	return op.current
}

// factors returns the Porter-Duff fractions of the source and the backdrop
// for the active operation.
func (op *Composite) factors(as, ab float64) (fa, fb float64) {
	switch op.current {
	case Clear:
		return 0, 0
	case Copy:
		return 1, 0
	case Dst:
		return 0, 1
	case DstOver:
		return 1 - ab, 1
	case SrcIn:
		return ab, 0
	case DstIn:
		return 0, as
	case SrcOut:
		return 1 - ab, 0
	case DstOut:
		return 0, 1 - as
	case SrcAtop:
		return ab, 1 - as
	case DstAtop:
		return 1 - ab, as
	case Xor:
		return 1 - ab, 1 - as
	}
	// SrcOver
	return 1, 1 - as
}

// Draw composes src over the backdrop dst into bitmap. When blend is not nil
// the source colors are first mixed with the backdrop. All three images
// must have the same size; a nil bitmap is allocated.
func (op *Composite) Draw(bitmap *Bitmap, src, dst *image.NRGBA, blend *Blend) *Bitmap {
	dx, dy := src.Bounds().Dx(), src.Bounds().Dy()
	if bitmap == nil {
		bitmap = NewBitmap(image.Rect(0, 0, dx, dy))
	}
	out := bitmap.Img

	for y := 0; y < dy; y++ {
		si := src.PixOffset(src.Rect.Min.X, src.Rect.Min.Y+y)
		bi := dst.PixOffset(dst.Rect.Min.X, dst.Rect.Min.Y+y)
		oi := out.PixOffset(out.Rect.Min.X, out.Rect.Min.Y+y)

		for x := 0; x < dx; x++ {
			as := float64(src.Pix[si+3]) / 255
			ab := float64(dst.Pix[bi+3]) / 255
			fa, fb := op.factors(as, ab)
			ao := as*fa + ab*fb

			for c := 0; c < 3; c++ {
				cs := float64(src.Pix[si+c]) / 255
				cb := float64(dst.Pix[bi+c]) / 255
				if blend != nil {
					cs = (1-ab)*cs + ab*clamp01(blend.Apply(cs, cb))
				}
				var co float64
				if ao > 0 {
					co = (as*fa*cs + ab*fb*cb) / ao
				}
				out.Pix[oi+c] = toByte(co)
			}
			out.Pix[oi+3] = toByte(ao)

			si += 4
			bi += 4
			oi += 4
		}
	}
	return bitmap
}

// toByte rounds a normalized channel to 0..255.
func toByte(v float64) uint8 {
	return uint8(clamp01(v)*255 + 0.5)
}
