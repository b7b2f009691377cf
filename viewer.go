package depthview

import (
	"context"
	"fmt"
	"time"

	"github.com/esimov/depthview/camera"
	"github.com/esimov/depthview/cvmat"
	"github.com/esimov/depthview/utils"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// DefaultPollDelay is how long the display waits for input after a frame.
const DefaultPollDelay = 10 * time.Millisecond

// skipLogInterval rate limits the skipped frame log.
const skipLogInterval = time.Second

// OpenError reports that the camera session could not be opened.
type OpenError struct {
	Code camera.ErrorCode
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("Error %s, exit program.", e.Code)
}

// Viewer options
type Viewer struct {
	// Session is the camera. The viewer opens and closes it.
	Session camera.Session
	// Display shows the frames. The viewer closes it.
	Display Display
	// Near and Far are the depth clipping distances in meters. ClipRange
	// gives the values for the command line arguments.
	Near float32
	Far  float32
	// PollDelay defaults to DefaultPollDelay.
	PollDelay time.Duration
	// Faces, when set, marks the faces found in the color view.
	Faces *FaceDetector
	// Overlay, when set, adds the overlay window.
	Overlay *DepthOverlay
	Logger  *zap.SugaredLogger
	Spinner *utils.Spinner

	runtime    camera.RuntimeParameters
	size       camera.Resolution
	depthMat   *camera.Mat
	normalMat  *camera.Mat
	depthView  *cvmat.View
	normalView *cvmat.View
	pipe       *Pipeline

	opened   bool
	released bool
	frames   int
	skipped  int
	lastSkip time.Time
}

// InitParameters returns the camera configuration: HD720 at 30 fps, ULTRA
// depth, meters, clipped to Near and Far.
func (v *Viewer) InitParameters() camera.InitParameters {
	p := camera.DefaultInitParameters()
	p.Resolution = camera.HD720
	p.FPS = 30
	p.DepthMode = camera.DepthUltra
	p.Unit = camera.Meter
	p.DepthMinimumDistance = v.Near
	p.DepthMaximumDistance = v.Far

	return p
}

// Open starts the camera and allocates the capture buffers at half the
// native resolution. A camera that cannot be opened gives an *OpenError.
func (v *Viewer) Open() error {
	if v.opened || v.released {
		return errors.New("viewer already used")
	}
	if v.Session == nil || v.Display == nil {
		return errors.New("viewer needs a session and a display")
	}
	if v.Logger == nil {
		v.Logger = zap.NewNop().Sugar()
	}
	if v.PollDelay <= 0 {
		v.PollDelay = DefaultPollDelay
	}
	params := v.InitParameters()
	v.runtime = camera.RuntimeParameters{SensingMode: camera.SensingStandard}

	if v.Spinner != nil {
		v.Spinner.Start()
	}
	code := v.Session.Open(params)
	if v.Spinner != nil {
		v.Spinner.Stop()
	}
	if code != camera.Success {
		return &OpenError{Code: code}
	}
	v.opened = true

	info := v.Session.Information()
	v.size = info.Resolution.Half()

	var err error
	if v.depthMat, err = v.Session.NewMat(v.size, camera.U8C4, camera.CPU); err != nil {
		return errors.Wrap(err, "cannot allocate the depth buffer")
	}
	if v.normalMat, err = v.Session.NewMat(v.size, camera.U8C4, camera.CPU); err != nil {
		return errors.Wrap(err, "cannot allocate the color buffer")
	}
	v.depthView = cvmat.NewView(v.depthMat)
	v.normalView = cvmat.NewView(v.normalMat)
	v.pipe = NewPipeline()

	v.Logger.Infow("camera opened",
		"model", info.Model,
		"serial", info.SerialNumber,
		"resolution", info.Resolution.String(),
		"fps", info.FPS,
		"frame", v.size.String(),
		"near", params.DepthMinimumDistance,
		"far", params.DepthMaximumDistance,
	)
	return nil
}

// Size returns the resolution of the capture buffers.
func (v *Viewer) Size() camera.Resolution {
	return v.size
}

// Frames returns the number of frames shown.
func (v *Viewer) Frames() int {
	return v.frames
}

// Skipped returns the number of iterations skipped because the camera had
// no frame.
func (v *Viewer) Skipped() int {
	return v.skipped
}

// Step runs one iteration of the capture loop: grab, retrieve the depth and
// left views, derive the color map and show the windows. It reports whether
// a frame was shown. A failed grab or retrieval skips the iteration and is
// not an error.
func (v *Viewer) Step() (bool, error) {
	if !v.opened {
		return false, errors.New("viewer not open")
	}
	if code := v.Session.Grab(v.runtime); code != camera.Success {
		v.skip("grab", code)
		return false, nil
	}
	if code := v.Session.RetrieveImage(v.depthMat, camera.ViewDepth, camera.CPU, v.size); code != camera.Success {
		v.skip("retrieve depth", code)
		return false, nil
	}
	if code := v.Session.RetrieveImage(v.normalMat, camera.ViewLeft, camera.CPU, v.size); code != camera.Success {
		v.skip("retrieve left", code)
		return false, nil
	}

	depth, err := v.depthView.Mat()
	if err != nil {
		return false, err
	}
	normal, err := v.normalView.Mat()
	if err != nil {
		return false, err
	}
	_, cmap, err := v.pipe.Process(depth)
	if err != nil {
		return false, err
	}

	if v.Faces != nil {
		n, err := v.Faces.Mark(&normal)
		if err != nil {
			return false, errors.Wrap(err, "face detection")
		}
		if n > 0 {
			v.Logger.Debugw("faces", "count", n)
		}
	}

	shows := []struct {
		name string
		img  gocv.Mat
	}{
		{WindowNormal, normal},
		{WindowDepth, depth},
		{WindowColorMap, cmap},
	}
	for _, s := range shows {
		if err := v.Display.Show(s.name, s.img); err != nil {
			return false, errors.Wrapf(err, "cannot show %s", s.name)
		}
	}
	if v.Overlay != nil {
		img, err := v.Overlay.Render(cmap, normal)
		if err != nil {
			return false, err
		}
		if err := v.Display.Show(WindowOverlay, img); err != nil {
			return false, errors.Wrapf(err, "cannot show %s", WindowOverlay)
		}
	}
	v.frames++

	return true, nil
}

func (v *Viewer) skip(stage string, code camera.ErrorCode) {
	v.skipped++

	now := time.Now()
	if now.Sub(v.lastSkip) < skipLogInterval {
		return
	}
	v.lastSkip = now
	v.Logger.Debugw("frame skipped", "stage", stage, "code", code.String(), "skipped", v.skipped)
}

// Run opens the viewer and loops until ctx is cancelled or the user closes
// the display. Resources are released on return.
func (v *Viewer) Run(ctx context.Context) (err error) {
	if err := v.Open(); err != nil {
		return multierr.Append(err, v.Close())
	}
	defer func() {
		err = multierr.Append(err, v.Close())
	}()

	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			v.stopped(start, "interrupted")
			return nil
		default:
		}

		shown, err := v.Step()
		if err != nil {
			return err
		}
		if shown && v.Display.Poll(v.PollDelay) {
			v.stopped(start, "closed by the user")
			return nil
		}
	}
}

func (v *Viewer) stopped(start time.Time, reason string) {
	elapsed := time.Since(start)
	v.Logger.Infow("viewer stopped",
		"reason", reason,
		"frames", v.frames,
		"skipped", v.skipped,
		"rate", utils.FormatRate(v.frames, elapsed),
		"elapsed", utils.FormatTime(elapsed),
	)
}

// Close releases the views, the capture buffers, the display and the
// session. It is safe to call on a viewer that failed to open.
func (v *Viewer) Close() error {
	if v.released {
		return nil
	}
	v.released = true

	var err error

	for _, view := range []*cvmat.View{v.depthView, v.normalView} {
		if view != nil {
			err = multierr.Append(err, view.Close())
		}
	}
	v.depthView, v.normalView = nil, nil

	for _, m := range []*camera.Mat{v.depthMat, v.normalMat} {
		if m != nil {
			m.Free()
		}
	}
	v.depthMat, v.normalMat = nil, nil

	if v.pipe != nil {
		err = multierr.Append(err, v.pipe.Close())
		v.pipe = nil
	}
	if v.Faces != nil {
		err = multierr.Append(err, v.Faces.Close())
	}
	if v.Overlay != nil {
		err = multierr.Append(err, v.Overlay.Close())
	}
	if v.Display != nil {
		err = multierr.Append(err, v.Display.Close())
	}
	if v.Session != nil {
		v.Session.Close()
	}
	v.opened = false

	return err
}
