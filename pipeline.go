package depthview

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gocv.io/x/gocv"
)

var (
	// ErrEmptyFrame is returned when an image holds no pixels.
	ErrEmptyFrame = errors.New("empty frame")
	// ErrFrameType is returned for images that are not 8 bit gray, BGR or BGRA.
	ErrFrameType = errors.New("unsupported frame type")
)

// Pipeline turns the depth visualization into a false color image: the
// depth view is reduced to a single intensity channel which is then mapped
// through the plasma palette.
//
// The output Mats are owned by the pipeline and reused on every call, so
// they are only valid until the next Process.
type Pipeline struct {
	gray gocv.Mat
	cmap gocv.Mat
}

// NewPipeline allocates the scratch images.
func NewPipeline() *Pipeline {
	return &Pipeline{
		gray: gocv.NewMat(),
		cmap: gocv.NewMat(),
	}
}

// Process converts depth to grayscale and applies the plasma color map.
func (p *Pipeline) Process(depth gocv.Mat) (gray, cmap gocv.Mat, err error) {
	if depth.Empty() {
		return gray, cmap, ErrEmptyFrame
	}
	switch depth.Type() {
	case gocv.MatTypeCV8UC4:
		gocv.CvtColor(depth, &p.gray, gocv.ColorBGRAToGray)
	case gocv.MatTypeCV8UC3:
		gocv.CvtColor(depth, &p.gray, gocv.ColorBGRToGray)
	case gocv.MatTypeCV8UC1:
		depth.CopyTo(&p.gray)
	default:
		return gray, cmap, errors.Wrapf(ErrFrameType, "depth frame with %d channels", depth.Channels())
	}
	gocv.ApplyColorMap(p.gray, &p.cmap, gocv.ColormapPlasma)

	return p.gray, p.cmap, nil
}

// Close frees the scratch images.
func (p *Pipeline) Close() error {
	return multierr.Combine(p.gray.Close(), p.cmap.Close())
}
