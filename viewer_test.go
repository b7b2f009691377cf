package depthview

import (
	"context"
	"testing"
	"time"

	"github.com/esimov/depthview/camera"
	"github.com/esimov/depthview/camera/sim"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

type shownImage struct {
	name  string
	rows  int
	cols  int
	typ   gocv.MatType
	empty bool
}

// recordDisplay remembers what was shown and asks to quit after quitAfter
// polls, if set.
type recordDisplay struct {
	shown     []shownImage
	polls     int
	quitAfter int
	closed    bool
}

func (d *recordDisplay) Show(name string, img gocv.Mat) error {
	d.shown = append(d.shown, shownImage{
		name:  name,
		rows:  img.Rows(),
		cols:  img.Cols(),
		typ:   img.Type(),
		empty: img.Empty(),
	})
	return nil
}

func (d *recordDisplay) Poll(time.Duration) bool {
	d.polls++
	return d.quitAfter > 0 && d.polls >= d.quitAfter
}

func (d *recordDisplay) Close() error {
	d.closed = true
	return nil
}

func (d *recordDisplay) last(name string) (shownImage, bool) {
	for i := len(d.shown) - 1; i >= 0; i-- {
		if d.shown[i].name == name {
			return d.shown[i], true
		}
	}
	return shownImage{}, false
}

func newTestViewer(opts sim.Options, disp Display) *Viewer {
	near, far := ClipRange(nil)
	return &Viewer{
		Session:   sim.New(opts),
		Display:   disp,
		Near:      near,
		Far:       far,
		PollDelay: time.Millisecond,
	}
}

func TestViewer_InitParameters(t *testing.T) {
	v := &Viewer{Near: 0.3048, Far: 6.096}
	p := v.InitParameters()

	assert.Equal(t, camera.HD720, p.Resolution)
	assert.Equal(t, 30, p.FPS)
	assert.Equal(t, camera.DepthUltra, p.DepthMode)
	assert.Equal(t, camera.Meter, p.Unit)
	assert.Equal(t, float32(0.3048), p.DepthMinimumDistance)
	assert.Equal(t, float32(6.096), p.DepthMaximumDistance)
}

func TestViewer_ShouldShowThreeHalvedImages(t *testing.T) {
	disp := &recordDisplay{}
	v := newTestViewer(sim.Options{}, disp)

	require.NoError(t, v.Open())
	defer v.Close()

	native := v.Session.Information().Resolution
	assert.Equal(t, camera.Resolution{Width: native.Width / 2, Height: native.Height / 2}, v.Size())
	assert.Equal(t, camera.Resolution{Width: 640, Height: 360}, v.Size())

	shown, err := v.Step()
	require.NoError(t, err)
	require.True(t, shown)
	assert.Equal(t, 1, v.Frames())

	for _, name := range []string{WindowNormal, WindowDepth, WindowColorMap} {
		img, ok := disp.last(name)
		require.True(t, ok, "window %s", name)
		assert.False(t, img.empty, "window %s", name)
		assert.Equal(t, 360, img.rows, "window %s", name)
		assert.Equal(t, 640, img.cols, "window %s", name)
	}
	normal, _ := disp.last(WindowNormal)
	assert.Equal(t, gocv.MatTypeCV8UC4, normal.typ)
	cmap, _ := disp.last(WindowColorMap)
	assert.Equal(t, gocv.MatTypeCV8UC3, cmap.typ)

	_, ok := disp.last(WindowOverlay)
	assert.False(t, ok)
}

func TestViewer_ShouldAcceptSingleDistanceArgument(t *testing.T) {
	for _, arg := range []string{"20", "30"} {
		t.Run(arg, func(t *testing.T) {
			disp := &recordDisplay{}
			v := newTestViewer(sim.Options{}, disp)
			v.Near, v.Far = ClipRange([]string{arg})
			assert.GreaterOrEqual(t, v.Near, v.Far)

			require.NoError(t, v.Open())
			defer v.Close()

			shown, err := v.Step()
			require.NoError(t, err)
			assert.True(t, shown)
			depth, ok := disp.last(WindowDepth)
			require.True(t, ok)
			assert.Equal(t, 360, depth.rows)
			assert.Equal(t, 640, depth.cols)
		})
	}
}

func TestViewer_ShouldSkipDroppedFrames(t *testing.T) {
	disp := &recordDisplay{}
	v := newTestViewer(sim.Options{DropEvery: 2}, disp)

	require.NoError(t, v.Open())
	defer v.Close()

	want := []bool{true, false, true, false}
	for i, w := range want {
		shown, err := v.Step()
		require.NoError(t, err)
		assert.Equal(t, w, shown, "step %d", i)
	}
	assert.Equal(t, 2, v.Frames())
	assert.Equal(t, 2, v.Skipped())
	assert.Len(t, disp.shown, 6)
}

func TestViewer_OpenFailureShouldNotCreateWindows(t *testing.T) {
	disp := NewHighGUI()
	v := newTestViewer(sim.Options{OpenError: camera.CameraNotDetected}, disp)

	err := v.Run(context.Background())
	require.Error(t, err)

	var openErr *OpenError
	require.True(t, errors.As(err, &openErr))
	assert.Equal(t, camera.CameraNotDetected, openErr.Code)
	assert.Equal(t, "Error CAMERA NOT DETECTED, exit program.", openErr.Error())
	assert.Empty(t, disp.Windows())
}

func TestViewer_RunShouldStopWhenTheUserQuits(t *testing.T) {
	disp := &recordDisplay{quitAfter: 3}
	v := newTestViewer(sim.Options{}, disp)

	require.NoError(t, v.Run(context.Background()))
	assert.Equal(t, 3, v.Frames())
	assert.True(t, disp.closed)

	_, err := v.Step()
	assert.Error(t, err)
}

func TestViewer_RunShouldStopOnCancel(t *testing.T) {
	disp := &recordDisplay{}
	v := newTestViewer(sim.Options{}, disp)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, v.Run(ctx))
	assert.Zero(t, v.Frames())
	assert.True(t, disp.closed)
}

func TestViewer_ShouldShowOverlay(t *testing.T) {
	overlay, err := NewDepthOverlay("screen", DefaultOpacity)
	require.NoError(t, err)

	disp := &recordDisplay{}
	v := newTestViewer(sim.Options{}, disp)
	v.Overlay = overlay

	require.NoError(t, v.Open())
	defer v.Close()

	shown, err := v.Step()
	require.NoError(t, err)
	require.True(t, shown)

	img, ok := disp.last(WindowOverlay)
	require.True(t, ok)
	assert.Equal(t, 360, img.rows)
	assert.Equal(t, 640, img.cols)
	assert.Equal(t, gocv.MatTypeCV8UC4, img.typ)
}

func TestViewer_CloseShouldBeIdempotent(t *testing.T) {
	v := newTestViewer(sim.Options{}, &recordDisplay{})
	require.NoError(t, v.Open())

	assert.NoError(t, v.Close())
	assert.NoError(t, v.Close())
}
