package depthview

import (
	"image"
	"math"
	"sync"
	"time"

	"gioui.org/app"
	"gioui.org/io/key"
	"gioui.org/io/system"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"gocv.io/x/gocv"
)

const (
	maxScreenX = 1366
	maxScreenY = 768
)

// GioDisplay shows the images in Gio windows, one per name. Every window
// runs its own event loop; frames are handed over through a one slot
// channel, so a slow window only ever draws the latest frame.
//
// The Gio event loops need app.Main running on the main goroutine.
type GioDisplay struct {
	mu      sync.Mutex
	windows map[string]*gioWindow
	width   int
	height  int

	quit     chan struct{}
	quitOnce sync.Once
}

type gioWindow struct {
	win    *app.Window
	frames chan *image.NRGBA
}

var _ Display = (*GioDisplay)(nil)

// NewGioDisplay returns a display whose windows open with the given size in
// pixels, scaled down to fit the screen.
func NewGioDisplay(width, height int) *GioDisplay {
	return &GioDisplay{
		windows: make(map[string]*gioWindow),
		width:   width,
		height:  height,
		quit:    make(chan struct{}),
	}
}

// Show converts img and passes it to the window called name.
func (g *GioDisplay) Show(name string, img gocv.Mat) error {
	frame, err := matToNRGBA(img)
	if err != nil {
		return err
	}
	gw := g.window(name)

	// Drop the frame the window did not pick up yet.
	select {
	case <-gw.frames:
	default:
	}
	gw.frames <- frame

	return nil
}

// Poll waits delay and reports whether a window was closed or ESC pressed.
func (g *GioDisplay) Poll(delay time.Duration) bool {
	select {
	case <-g.quit:
		return true
	case <-time.After(delay):
		return false
	}
}

// Close asks every window to close.
func (g *GioDisplay) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, gw := range g.windows {
		gw.win.Perform(system.ActionClose)
	}
	g.windows = make(map[string]*gioWindow)

	return nil
}

func (g *GioDisplay) window(name string) *gioWindow {
	g.mu.Lock()
	defer g.mu.Unlock()

	if gw, ok := g.windows[name]; ok {
		return gw
	}
	w, h := windowSize(g.width, g.height)
	gw := &gioWindow{
		win: app.NewWindow(
			app.Title(name),
			app.Size(unit.Dp(w), unit.Dp(h)),
		),
		frames: make(chan *image.NRGBA, 1),
	}
	g.windows[name] = gw
	go g.run(gw)

	return gw
}

// run the window event loop until a DestroyEvent is received.
func (g *GioDisplay) run(gw *gioWindow) {
	var (
		ops op.Ops
		img *image.NRGBA
	)
	for {
		select {
		case e := <-gw.win.Events():
			switch e := e.(type) {
			case system.FrameEvent:
				gtx := layout.NewContext(&ops, e)
				if img != nil {
					widget.Image{
						Src:   paint.NewImageOp(img),
						Scale: 1 / gtx.Metric.PxPerDp,
						Fit:   widget.Contain,
					}.Layout(gtx)
				}
				e.Frame(gtx.Ops)
			case key.Event:
				if e.State == key.Press && (e.Name == key.NameEscape || e.Name == "Q") {
					g.requestQuit()
				}
			case system.DestroyEvent:
				g.requestQuit()
				return
			}
		case img = <-gw.frames:
			gw.win.Invalidate()
		}
	}
}

func (g *GioDisplay) requestQuit() {
	g.quitOnce.Do(func() { close(g.quit) })
}

// windowSize keeps the aspect ratio when the frame is larger than the screen.
func windowSize(width, height int) (float32, float32) {
	w, h := float64(width), float64(height)
	if w > maxScreenX || h > maxScreenY {
		r := math.Min(maxScreenX/w, maxScreenY/h)
		w, h = w*r, h*r
	}
	return float32(w), float32(h)
}
