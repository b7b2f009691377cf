// Package cvmat exposes camera buffers to OpenCV without copying pixels.
//
// A View is a borrowed gocv.Mat header over the memory of a camera.Mat:
// same rows, columns, row step and pixel layout. Writes through either side
// are visible through the other. The view never owns the pixels; once the
// source buffer is freed or reallocated the view is stale and refuses to
// hand out its Mat.
package cvmat

import (
	"image"

	"github.com/esimov/depthview/camera"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// InvalidType is returned by Type for pixel formats OpenCV has no match for.
const InvalidType gocv.MatType = -1

// ErrStaleView is returned by a view whose source buffer was freed or reallocated.
var ErrStaleView = errors.New("view outlived its source buffer")

// Type maps a camera pixel format tag to the equivalent OpenCV Mat type.
func Type(t camera.MatType) gocv.MatType {
	switch t {
	case camera.F32C1:
		return gocv.MatTypeCV32FC1
	case camera.F32C2:
		return gocv.MatTypeCV32FC2
	case camera.F32C3:
		return gocv.MatTypeCV32FC3
	case camera.F32C4:
		return gocv.MatTypeCV32FC4
	case camera.U8C1:
		return gocv.MatTypeCV8UC1
	case camera.U8C2:
		return gocv.MatTypeCV8UC2
	case camera.U8C3:
		return gocv.MatTypeCV8UC3
	case camera.U8C4:
		return gocv.MatTypeCV8UC4
	}
	return InvalidType
}

// Adapt builds a Mat header over data: height rows of width pixels of type
// t, rows step bytes apart. No pixel is copied. An unsupported type, a step
// that does not hold a whole number of pixels or a buffer too short for the
// shape gives an empty Mat.
//
// When the rows are padded the Mat is a region of a wider header spanning
// the full step, so OpenCV walks the rows with the same stride.
func Adapt(height, width int, t camera.MatType, data []byte, step int) gocv.Mat {
	mt := Type(t)
	elem := t.ElemSize()
	if mt == InvalidType || height <= 0 || width <= 0 {
		return gocv.NewMat()
	}
	if step < width*elem || step%elem != 0 || len(data) < step*height {
		return gocv.NewMat()
	}
	cols := step / elem

	full, err := gocv.NewMatFromBytes(height, cols, mt, data[:step*height])
	if err != nil {
		return gocv.NewMat()
	}
	if cols == width {
		return full
	}
	region := full.Region(image.Rect(0, 0, width, height))
	full.Close()

	return region
}

// View is a borrowed OpenCV image over a camera buffer.
type View struct {
	src *camera.Mat
	gen uint64
	mat gocv.Mat
	typ gocv.MatType
}

// NewView wraps src. The returned view is valid until src is freed.
func NewView(src *camera.Mat) *View {
	v := &View{
		src: src,
		gen: src.Generation(),
		typ: Type(src.Type()),
	}
	v.mat = Adapt(src.Height(), src.Width(), src.Type(), src.Bytes(), src.Step())
	return v
}

// Mat returns the aliased image, or ErrStaleView when the source buffer no
// longer backs it.
func (v *View) Mat() (gocv.Mat, error) {
	if v.Stale() {
		return gocv.Mat{}, ErrStaleView
	}
	return v.mat, nil
}

// Type returns the OpenCV type the source format maps to, InvalidType when
// the source format has no OpenCV equivalent.
func (v *View) Type() gocv.MatType {
	return v.typ
}

// Stale reports whether the source buffer was freed or reallocated since the
// view was made.
func (v *View) Stale() bool {
	return !v.src.IsInit() || v.src.Generation() != v.gen
}

// Close releases the Mat header. The pixels belong to the source buffer and
// are left alone.
func (v *View) Close() error {
	return v.mat.Close()
}
