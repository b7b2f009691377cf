// Package sim implements a simulated stereo depth camera. It renders a
// small synthetic scene (a checkered back wall, a floor and a few moving
// spheres) and serves the left, right and depth views the way the real
// SDK does, so the viewer can run and be tested without hardware.
package sim

import (
	"image"

	"github.com/disintegration/imaging"
	"github.com/esimov/depthview/camera"
	"github.com/pkg/errors"
)

// defaultMinDistance and defaultMaxDistance apply when the init parameters
// leave the clipping distances unset (negative).
const (
	defaultMinDistance = 0.3  // meters
	defaultMaxDistance = 20.0 // meters
)

// Options tune the simulated device.
type Options struct {
	// SerialNumber is reported by Information.
	SerialNumber uint
	// OpenError, when not Success, is returned by Open.
	OpenError camera.ErrorCode
	// DropEvery makes every n-th grab fail. Zero never fails.
	DropEvery int
}

// Camera is the simulated session. It is not safe for concurrent use.
type Camera struct {
	opts   Options
	params camera.InitParameters
	native camera.Resolution
	near   float64
	far    float64

	opened bool
	grabs  int
	frame  int

	// rendered views of the current frame at native size
	cache map[camera.View]*image.NRGBA
}

var _ camera.Session = (*Camera)(nil)

// New returns a closed simulated camera.
func New(opts Options) *Camera {
	return &Camera{
		opts:  opts,
		cache: make(map[camera.View]*image.NRGBA),
	}
}

// Open validates the configuration and starts the simulation.
func (c *Camera) Open(p camera.InitParameters) camera.ErrorCode {
	if c.opts.OpenError != camera.Success {
		return c.opts.OpenError
	}
	if c.opened {
		return camera.InvalidFunctionCall
	}
	size, ok := p.Resolution.Size()
	if !ok {
		return camera.InvalidResolution
	}
	if p.FPS < 0 || p.FPS > p.Resolution.MaxFPS() {
		return camera.InvalidFunctionParameters
	}
	if p.FPS == 0 {
		p.FPS = p.Resolution.MaxFPS()
	}
	scale := float64(p.Unit.Meters())
	if scale == 0 {
		return camera.InvalidFunctionParameters
	}

	// An empty range (far <= near) is accepted and renders a black depth view.
	near, far := defaultMinDistance, defaultMaxDistance
	if p.DepthMinimumDistance >= 0 {
		near = float64(p.DepthMinimumDistance) * scale
	}
	if p.DepthMaximumDistance >= 0 {
		far = float64(p.DepthMaximumDistance) * scale
	}
	c.params = p
	c.native = size
	c.near, c.far = near, far
	c.opened = true
	c.grabs, c.frame = 0, 0

	return camera.Success
}

// Grab advances the simulation by one frame period.
func (c *Camera) Grab(camera.RuntimeParameters) camera.ErrorCode {
	if !c.opened {
		return camera.CameraNotInitialized
	}
	c.grabs++
	if c.opts.DropEvery > 0 && c.grabs%c.opts.DropEvery == 0 {
		return camera.Failure
	}
	c.frame++
	clear(c.cache)

	return camera.Success
}

// RetrieveImage writes a view of the last grabbed frame into dst, resized
// to size. Color views are written as BGRA (U8_C4), gray views as U8_C1.
func (c *Camera) RetrieveImage(dst *camera.Mat, view camera.View, mem camera.Mem, size camera.Resolution) camera.ErrorCode {
	if !c.opened {
		return camera.CameraNotInitialized
	}
	if c.frame == 0 {
		return camera.Failure
	}
	if dst == nil || !dst.IsInit() || mem != camera.CPU {
		return camera.InvalidFunctionParameters
	}
	if size.Width == 0 && size.Height == 0 {
		size = c.native
	}
	if size.Width <= 0 || size.Height <= 0 || size.Width > c.native.Width || size.Height > c.native.Height {
		return camera.InvalidResolution
	}
	if dst.Resolution() != size {
		return camera.InvalidFunctionParameters
	}

	var want camera.MatType
	switch view {
	case camera.ViewLeft, camera.ViewRight, camera.ViewDepth:
		want = camera.U8C4
	case camera.ViewLeftGray, camera.ViewRightGray:
		want = camera.U8C1
	default:
		return camera.InvalidFunctionParameters
	}
	if dst.Type() != want {
		return camera.InvalidFunctionParameters
	}

	img := c.render(view)
	if size != c.native {
		img = imaging.Resize(img, size.Width, size.Height, imaging.Linear)
	}
	if want == camera.U8C1 {
		writeGray(dst, img)
	} else {
		writeBGRA(dst, img)
	}
	return camera.Success
}

// render returns the view at native size, rendering it once per frame.
func (c *Camera) render(view camera.View) *image.NRGBA {
	key := view
	switch view {
	case camera.ViewLeftGray:
		key = camera.ViewLeft
	case camera.ViewRightGray:
		key = camera.ViewRight
	}
	if img, ok := c.cache[key]; ok {
		return img
	}

	sc := newScene(c.native, float64(c.frame)/float64(c.params.FPS))
	var img *image.NRGBA
	switch key {
	case camera.ViewDepth:
		img = sc.renderDepth(c.near, c.far)
	case camera.ViewRight:
		img = sc.renderColor(baseline)
		caption(img, c.frame)
	default:
		img = sc.renderColor(0)
		caption(img, c.frame)
	}
	c.cache[key] = img

	return img
}

// Information reports the simulated device.
func (c *Camera) Information() camera.Information {
	return camera.Information{
		SerialNumber: c.opts.SerialNumber,
		Model:        "ZED (simulated)",
		Resolution:   c.native,
		FPS:          c.params.FPS,
	}
}

// NewMat allocates a Go backed buffer. Only CPU memory is available.
func (c *Camera) NewMat(size camera.Resolution, t camera.MatType, mem camera.Mem) (*camera.Mat, error) {
	if mem != camera.CPU {
		return nil, errors.New("simulated camera has no GPU memory")
	}
	return camera.NewMat(size, t)
}

// Close stops the simulation. It is safe to call more than once.
func (c *Camera) Close() {
	c.opened = false
	clear(c.cache)
}

// writeBGRA copies an NRGBA image into a four channel buffer, swapping to
// the BGRA channel order of the SDK.
func writeBGRA(dst *camera.Mat, img *image.NRGBA) {
	for y := 0; y < dst.Height(); y++ {
		row := dst.Row(y)
		src := img.Pix[img.PixOffset(0, y):]
		for x := 0; x < dst.Width(); x++ {
			i := x * 4
			row[i+0] = src[i+2]
			row[i+1] = src[i+1]
			row[i+2] = src[i+0]
			row[i+3] = src[i+3]
		}
	}
}

// writeGray stores the luminance of img into a single channel buffer.
func writeGray(dst *camera.Mat, img *image.NRGBA) {
	for y := 0; y < dst.Height(); y++ {
		row := dst.Row(y)
		src := img.Pix[img.PixOffset(0, y):]
		for x := 0; x < dst.Width(); x++ {
			i := x * 4
			lum := 0.299*float64(src[i]) + 0.587*float64(src[i+1]) + 0.114*float64(src[i+2])
			row[x] = uint8(lum + 0.5)
		}
	}
}
