package camera

import (
	"github.com/pkg/errors"
)

// ErrInvalidMat is returned when a buffer is requested with an unknown pixel
// format or a non positive size.
var ErrInvalidMat = errors.New("invalid buffer shape")

// Mat is a host pixel buffer the camera writes frames into. Its shape
// (width, height, pixel format, step) is fixed at allocation; only the
// contents change. Every Free bumps the generation counter so that views
// borrowing the memory can detect they outlived it.
type Mat struct {
	width   int
	height  int
	typ     MatType
	step    int
	data    []byte
	gen     uint64
	release func()
}

// NewMat allocates a buffer backed by Go memory with tightly packed rows.
func NewMat(size Resolution, t MatType) (*Mat, error) {
	if !t.Valid() || size.Width <= 0 || size.Height <= 0 {
		return nil, errors.Wrapf(ErrInvalidMat, "%s %s", size, t)
	}
	step := size.Width * t.ElemSize()
	return &Mat{
		width:  size.Width,
		height: size.Height,
		typ:    t,
		step:   step,
		data:   make([]byte, step*size.Height),
		gen:    1,
	}, nil
}

// WrapMat builds a buffer over memory owned by someone else, typically the
// SDK. release is called once by Free and may be nil.
func WrapMat(size Resolution, t MatType, step int, data []byte, release func()) (*Mat, error) {
	if !t.Valid() || size.Width <= 0 || size.Height <= 0 {
		return nil, errors.Wrapf(ErrInvalidMat, "%s %s", size, t)
	}
	if step < size.Width*t.ElemSize() {
		return nil, errors.Wrapf(ErrInvalidMat, "step %d shorter than a row", step)
	}
	if len(data) < step*size.Height {
		return nil, errors.Wrapf(ErrInvalidMat, "%d bytes for %s %s", len(data), size, t)
	}
	return &Mat{
		width:   size.Width,
		height:  size.Height,
		typ:     t,
		step:    step,
		data:    data,
		gen:     1,
		release: release,
	}, nil
}

// Width returns the number of columns.
func (m *Mat) Width() int { return m.width }

// Height returns the number of rows.
func (m *Mat) Height() int { return m.height }

// Type returns the pixel format tag.
func (m *Mat) Type() MatType { return m.typ }

// Step returns the row stride in bytes.
func (m *Mat) Step() int { return m.step }

// Resolution returns the buffer size.
func (m *Mat) Resolution() Resolution {
	return Resolution{Width: m.width, Height: m.height}
}

// Bytes returns the buffer memory. The slice aliases the buffer; it is nil
// once the buffer was freed.
func (m *Mat) Bytes() []byte { return m.data }

// Generation identifies the current allocation. It changes on Free.
func (m *Mat) Generation() uint64 { return m.gen }

// IsInit reports whether the buffer still holds memory.
func (m *Mat) IsInit() bool { return m.data != nil }

// Row returns the bytes of row y, without the padding at the end.
func (m *Mat) Row(y int) []byte {
	off := y * m.step
	return m.data[off : off+m.width*m.typ.ElemSize()]
}

// Free releases the memory. Views created over the buffer become stale.
func (m *Mat) Free() {
	if m.data == nil {
		return
	}
	if m.release != nil {
		m.release()
		m.release = nil
	}
	m.data = nil
	m.gen++
}
