package depthview

import (
	"time"

	"go.uber.org/multierr"
	"gocv.io/x/gocv"
)

// Window names.
const (
	WindowNormal   = "normal"
	WindowDepth    = "depth"
	WindowColorMap = "color_map"
	WindowOverlay  = "overlay"
)

// Key codes that end the viewer.
const (
	keyEsc = 27
	keyQ   = 'q'
)

// Display presents named images on screen.
type Display interface {
	// Show draws img in the window called name, creating the window on first use.
	Show(name string, img gocv.Mat) error
	// Poll handles pending input for at most delay and reports whether the
	// user asked to quit.
	Poll(delay time.Duration) bool
	// Close destroys the windows.
	Close() error
}

// HighGUI shows the images in OpenCV HighGUI windows.
type HighGUI struct {
	windows map[string]*gocv.Window
	order   []string
}

var _ Display = (*HighGUI)(nil)

// NewHighGUI returns a display without windows. Windows appear on the
// first Show of their name.
func NewHighGUI() *HighGUI {
	return &HighGUI{
		windows: make(map[string]*gocv.Window),
	}
}

// Show implements Display.
func (h *HighGUI) Show(name string, img gocv.Mat) error {
	if img.Empty() {
		return ErrEmptyFrame
	}
	w, ok := h.windows[name]
	if !ok {
		w = gocv.NewWindow(name)
		h.windows[name] = w
		h.order = append(h.order, name)
	}
	w.IMShow(img)

	return nil
}

// Poll waits for a key press. ESC, q or a window closed by the user end the
// viewer.
func (h *HighGUI) Poll(delay time.Duration) bool {
	if len(h.windows) == 0 {
		time.Sleep(delay)
		return false
	}
	ms := int(delay.Milliseconds())
	if ms < 1 {
		ms = 1
	}
	switch gocv.WaitKey(ms) {
	case keyEsc, keyQ:
		return true
	}
	for _, w := range h.windows {
		if w.GetWindowProperty(gocv.WindowPropertyVisible) < 1 {
			return true
		}
	}
	return false
}

// Close implements Display.
func (h *HighGUI) Close() error {
	var err error
	for _, name := range h.order {
		err = multierr.Append(err, h.windows[name].Close())
	}
	h.windows = make(map[string]*gocv.Window)
	h.order = nil

	return err
}

// Windows returns the names of the windows created so far, in creation order.
func (h *HighGUI) Windows() []string {
	return append([]string(nil), h.order...)
}
