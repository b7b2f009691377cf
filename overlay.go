package depthview

import (
	"image"

	"github.com/esimov/depthview/imop"
	"github.com/esimov/depthview/utils"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// DefaultOpacity is the weight of the color mapped depth in the overlay.
const DefaultOpacity = 0.6

// DepthOverlay blends the color mapped depth over the color view.
type DepthOverlay struct {
	blend   *imop.Blend
	comp    *imop.Composite
	opacity uint8

	bmp *imop.Bitmap
	buf []byte
	mat gocv.Mat
}

// NewDepthOverlay returns an overlay using one of the imop blend modes.
// opacity is clamped to 0..1.
func NewDepthOverlay(mode string, opacity float64) (*DepthOverlay, error) {
	blend, err := imop.ParseBlend(mode)
	if err != nil {
		return nil, err
	}
	return &DepthOverlay{
		blend:   blend,
		comp:    imop.InitOp(),
		opacity: uint8(utils.Clamp(opacity, 0, 1)*255 + 0.5),
		mat:     gocv.NewMat(),
	}, nil
}

// Mode returns the blend mode.
func (o *DepthOverlay) Mode() string {
	return o.blend.Get()
}

// Render mixes cmap into normal. The returned Mat is owned by the overlay
// and only valid until the next Render.
func (o *DepthOverlay) Render(cmap, normal gocv.Mat) (gocv.Mat, error) {
	src, err := matToNRGBA(cmap)
	if err != nil {
		return gocv.Mat{}, errors.Wrap(err, "color map")
	}
	dst, err := matToNRGBA(normal)
	if err != nil {
		return gocv.Mat{}, errors.Wrap(err, "color view")
	}
	if !src.Rect.Eq(dst.Rect) {
		return gocv.Mat{}, errors.Errorf("overlay size mismatch: %v and %v", src.Rect, dst.Rect)
	}
	for i := 3; i < len(src.Pix); i += 4 {
		src.Pix[i] = o.opacity
	}

	w, h := src.Rect.Dx(), src.Rect.Dy()
	if o.bmp == nil || !o.bmp.Img.Rect.Eq(src.Rect) {
		o.bmp = imop.NewBitmap(image.Rect(0, 0, w, h))
		o.buf = make([]byte, w*h*4)

		mat, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC4, o.buf)
		if err != nil {
			return gocv.Mat{}, errors.Wrap(err, "cannot allocate the overlay")
		}
		o.mat.Close()
		o.mat = mat
	}
	o.comp.Draw(o.bmp, src, dst, o.blend)
	nrgbaToBGRA(o.bmp.Img, o.buf)

	return o.mat, nil
}

// Close frees the output image.
func (o *DepthOverlay) Close() error {
	return o.mat.Close()
}
