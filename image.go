package depthview

import (
	"image"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// matToNRGBA copies an 8 bit gray, BGR or BGRA Mat into a new *image.NRGBA
// with min-point at (0, 0). The result is opaque.
func matToNRGBA(m gocv.Mat) (*image.NRGBA, error) {
	if m.Empty() {
		return nil, ErrEmptyFrame
	}
	switch m.Type() {
	case gocv.MatTypeCV8UC1, gocv.MatTypeCV8UC3, gocv.MatTypeCV8UC4:
	default:
		return nil, errors.Wrapf(ErrFrameType, "%d channels", m.Channels())
	}

	src := m
	// Regions over padded buffers are not continuous; ToBytes needs packed rows.
	if !m.IsContinuous() {
		src = m.Clone()
		defer src.Close()
	}
	data := src.ToBytes()
	w, h, ch := src.Cols(), src.Rows(), src.Channels()

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < w*h; i++ {
		s, d := i*ch, i*4
		if ch == 1 {
			dst.Pix[d+0] = data[s]
			dst.Pix[d+1] = data[s]
			dst.Pix[d+2] = data[s]
		} else {
			dst.Pix[d+0] = data[s+2]
			dst.Pix[d+1] = data[s+1]
			dst.Pix[d+2] = data[s+0]
		}
		dst.Pix[d+3] = 0xff
	}

	return dst, nil
}

// nrgbaToBGRA writes the pixels of src into dst in BGRA order. dst must
// hold 4 bytes per pixel.
func nrgbaToBGRA(src *image.NRGBA, dst []byte) {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	for y := 0; y < h; y++ {
		si := src.PixOffset(src.Rect.Min.X, src.Rect.Min.Y+y)
		di := y * w * 4
		for x := 0; x < w; x++ {
			dst[di+0] = src.Pix[si+2]
			dst[di+1] = src.Pix[si+1]
			dst[di+2] = src.Pix[si+0]
			dst[di+3] = src.Pix[si+3]
			si += 4
			di += 4
		}
	}
}
