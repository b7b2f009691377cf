package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gioui.org/app"
	"github.com/esimov/depthview"
	"github.com/esimov/depthview/camera"
	"github.com/esimov/depthview/camera/sim"
	"github.com/esimov/depthview/camera/zed"
	"github.com/esimov/depthview/imop"
	"github.com/esimov/depthview/utils"
	"github.com/pkg/errors"
)

// HelpBanner is printed above the flag defaults by -h.
const HelpBanner = `
┌┬┐┌─┐┌─┐┌┬┐┬ ┬┬  ┬┬┌─┐┬ ┬
 ││├┤ ├─┘ │ ├─┤└┐┌┘│├┤ │││
─┴┘└─┘┴   ┴ ┴ ┴ └┘ ┴└─┘└┴┘

Live viewer for stereo depth cameras.
    Version: %s

Usage: depthview [flags] [min_distance_ft] [max_distance_ft]

Distances are in feet. Put -- before a negative distance: depthview -- -1

`

// Version indicates the current build version.
var Version string

// Supported camera and display backends.
const (
	cameraSim  = "sim"
	cameraZED  = "zed"
	guiHighGUI = "highgui"
	guiGio     = "gio"
)

// options holds the parsed command line.
type options struct {
	camera  string
	device  int
	gui     string
	face    bool
	cascade string
	score   float64
	overlay string
	opacity float64
	verbose bool
	drop    int
	near    float32
	far     float32
}

// sessionFactory builds the camera session for the -camera flag.
type sessionFactory func(opts options) (camera.Session, error)

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, utils.DecorateText(err.Error(), utils.ErrorMessage))
		os.Exit(1)
	}

	if opts.gui == guiGio {
		// Gio needs the main goroutine for its event loop.
		go func() {
			os.Exit(run(opts, os.Stdout, newSession))
		}()
		app.Main()
	}
	os.Exit(run(opts, os.Stdout, newSession))
}

// parseFlags reads the flags and the positional clipping distances.
func parseFlags(args []string, output io.Writer) (options, error) {
	var opts options

	fs := flag.NewFlagSet("depthview", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintf(output, HelpBanner, Version)
		fs.PrintDefaults()
	}

	fs.StringVar(&opts.camera, "camera", cameraZED, "Camera backend: zed or sim")
	fs.IntVar(&opts.device, "device", 0, "Camera device id")
	fs.StringVar(&opts.gui, "gui", guiHighGUI, "Display backend: highgui or gio")
	fs.BoolVar(&opts.face, "face", false, "Mark the detected faces")
	fs.StringVar(&opts.cascade, "cc", "", "Cascade classifier")
	fs.Float64Var(&opts.score, "score", 5, "Face detection score threshold")
	fs.StringVar(&opts.overlay, "overlay", "", "Show the depth blended over the color view: screen, multiply, overlay, darken or lighten")
	fs.Float64Var(&opts.opacity, "opacity", depthview.DefaultOpacity, "Depth opacity in the overlay window")
	fs.BoolVar(&opts.verbose, "v", false, "Debug logging")
	fs.IntVar(&opts.drop, "drop", 0, "Simulated camera only: fail every n-th grab")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	switch opts.camera {
	case cameraSim, cameraZED:
	default:
		return opts, errors.Errorf("unknown camera backend %q", opts.camera)
	}
	switch opts.gui {
	case guiHighGUI, guiGio:
	default:
		return opts, errors.Errorf("unknown display backend %q", opts.gui)
	}
	if opts.face && len(opts.cascade) == 0 {
		return opts, errors.New("please specify a face classifier in case you are using the -face flag")
	}
	if len(opts.overlay) > 0 && !utils.Contains(imop.BlendModes, opts.overlay) {
		return opts, errors.Errorf("unsupported overlay mode %q", opts.overlay)
	}
	opts.near, opts.far = depthview.ClipRange(fs.Args())

	return opts, nil
}

func newSession(opts options) (camera.Session, error) {
	switch opts.camera {
	case cameraSim:
		return sim.New(sim.Options{DropEvery: opts.drop}), nil
	case cameraZED:
		return zed.New(opts.device), nil
	}
	return nil, errors.Errorf("unknown camera backend %q", opts.camera)
}

// run starts the viewer and returns the process exit code. The session open
// failure is reported on stdout.
func run(opts options, stdout io.Writer, newSession sessionFactory) int {
	logger, err := utils.NewLogger("depthview", opts.verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, utils.DecorateText(err.Error(), utils.ErrorMessage))
		return 1
	}
	defer logger.Sync()

	sess, err := newSession(opts)
	if err != nil {
		logger.Error(err)
		return 1
	}

	v := &depthview.Viewer{
		Session: sess,
		Near:    opts.near,
		Far:     opts.far,
		Logger:  logger,
	}
	if opts.face {
		if v.Faces, err = depthview.LoadFaceDetector(opts.cascade, float32(opts.score)); err != nil {
			logger.Error(err)
			return 1
		}
	}
	if len(opts.overlay) > 0 {
		if v.Overlay, err = depthview.NewDepthOverlay(opts.overlay, opts.opacity); err != nil {
			logger.Error(err)
			return 1
		}
	}
	size, _ := camera.HD720.Size()
	switch opts.gui {
	case guiGio:
		half := size.Half()
		v.Display = depthview.NewGioDisplay(half.Width, half.Height)
	default:
		v.Display = depthview.NewHighGUI()
	}

	spinnerText := fmt.Sprintf("%s %s",
		utils.DecorateText("⚡ DEPTHVIEW", utils.StatusMessage),
		utils.DecorateText("is opening the camera...", utils.DefaultMessage))
	v.Spinner = utils.NewSpinner(spinnerText, time.Millisecond*200)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = v.Run(ctx)
	v.Spinner.RestoreCursor()

	var openErr *depthview.OpenError
	switch {
	case errors.As(err, &openErr):
		fmt.Fprintln(stdout, openErr.Error())
		return 1
	case err != nil:
		logger.Errorw("viewer failed", "error", err)
		return 1
	}
	return 0
}
