// Package camera models the stereo camera SDK used by depthview: pixel
// format tags, the session configuration records, the SDK error codes and
// the host pixel buffer the SDK writes frames into.
//
// The numeric values of the enumerations follow the ZED SDK C API, so the
// cgo backend can hand them over without translation.
package camera

import "fmt"

// MatType is the pixel format tag of a buffer: channel count and
// per-channel type.
type MatType int

// The supported pixel formats.
const (
	F32C1 MatType = iota
	F32C2
	F32C3
	F32C4
	U8C1
	U8C2
	U8C3
	U8C4
)

// Channels returns the number of channels of the pixel format, or 0 for unknown tags.
func (t MatType) Channels() int {
	switch t {
	case F32C1, U8C1:
		return 1
	case F32C2, U8C2:
		return 2
	case F32C3, U8C3:
		return 3
	case F32C4, U8C4:
		return 4
	}
	return 0
}

// ElemSize returns the size of one pixel in bytes, or 0 for unknown tags.
func (t MatType) ElemSize() int {
	switch t {
	case F32C1, F32C2, F32C3, F32C4:
		return 4 * t.Channels()
	case U8C1, U8C2, U8C3, U8C4:
		return t.Channels()
	}
	return 0
}

// Valid reports whether t is one of the known pixel formats.
func (t MatType) Valid() bool {
	return t.Channels() > 0
}

func (t MatType) String() string {
	switch t {
	case F32C1, F32C2, F32C3, F32C4:
		return fmt.Sprintf("F32_C%d", t.Channels())
	case U8C1, U8C2, U8C3, U8C4:
		return fmt.Sprintf("U8_C%d", t.Channels())
	}
	return fmt.Sprintf("MAT_TYPE(%d)", int(t))
}

// Mem tells where the buffer memory lives.
type Mem int

// Memory locations of a Mat buffer. Only CPU buffers can be wrapped by OpenCV.
const (
	CPU Mem = iota + 1 // host memory
	GPU                // device memory
)

// Resolution is a frame size in pixels.
type Resolution struct {
	Width  int
	Height int
}

// Half returns the resolution with both dimensions halved (integer division).
func (r Resolution) Half() Resolution {
	return Resolution{Width: r.Width / 2, Height: r.Height / 2}
}

// Area returns the number of pixels.
func (r Resolution) Area() int {
	return r.Width * r.Height
}

func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// ResolutionPreset selects the native capture resolution of the camera.
type ResolutionPreset int

const (
	HD2K ResolutionPreset = iota
	HD1080
	HD720
	VGA
)

// Size returns the native frame size of the preset.
func (p ResolutionPreset) Size() (Resolution, bool) {
	switch p {
	case HD2K:
		return Resolution{2208, 1242}, true
	case HD1080:
		return Resolution{1920, 1080}, true
	case HD720:
		return Resolution{1280, 720}, true
	case VGA:
		return Resolution{672, 376}, true
	}
	return Resolution{}, false
}

// MaxFPS returns the highest frame rate the preset supports.
func (p ResolutionPreset) MaxFPS() int {
	switch p {
	case HD2K:
		return 15
	case HD1080:
		return 30
	case HD720:
		return 60
	case VGA:
		return 100
	}
	return 0
}

func (p ResolutionPreset) String() string {
	switch p {
	case HD2K:
		return "HD2K"
	case HD1080:
		return "HD1080"
	case HD720:
		return "HD720"
	case VGA:
		return "VGA"
	}
	return fmt.Sprintf("RESOLUTION(%d)", int(p))
}

// DepthMode is the quality/performance preset of the stereo depth computation.
type DepthMode int

const (
	DepthNone DepthMode = iota
	DepthPerformance
	DepthQuality
	DepthUltra
	DepthNeural
)

func (m DepthMode) String() string {
	switch m {
	case DepthNone:
		return "NONE"
	case DepthPerformance:
		return "PERFORMANCE"
	case DepthQuality:
		return "QUALITY"
	case DepthUltra:
		return "ULTRA"
	case DepthNeural:
		return "NEURAL"
	}
	return fmt.Sprintf("DEPTH_MODE(%d)", int(m))
}

// Unit is the unit system of every distance the SDK reports or accepts.
type Unit int

const (
	Millimeter Unit = iota
	Centimeter
	Meter
	Inch
	Foot
)

// Meters returns how many meters one unit is.
func (u Unit) Meters() float32 {
	switch u {
	case Millimeter:
		return 0.001
	case Centimeter:
		return 0.01
	case Meter:
		return 1
	case Inch:
		return 0.0254
	case Foot:
		return 0.3048
	}
	return 0
}

// SensingMode controls depth smoothing and hole filling at runtime.
type SensingMode int

const (
	SensingStandard SensingMode = iota
	SensingFill
)

// View selects which image a retrieval produces.
type View int

const (
	ViewLeft View = iota
	ViewRight
	ViewLeftGray
	ViewRightGray
	ViewLeftUnrectified
	ViewRightUnrectified
	ViewLeftUnrectifiedGray
	ViewRightUnrectifiedGray
	ViewSideBySide
	ViewDepth
	ViewConfidence
	ViewNormals
	ViewDepthRight
	ViewNormalsRight
)

func (v View) String() string {
	names := [...]string{
		"LEFT", "RIGHT", "LEFT GRAY", "RIGHT GRAY",
		"LEFT UNRECTIFIED", "RIGHT UNRECTIFIED",
		"LEFT UNRECTIFIED GRAY", "RIGHT UNRECTIFIED GRAY",
		"SIDE BY SIDE", "DEPTH", "CONFIDENCE", "NORMALS",
		"DEPTH RIGHT", "NORMALS RIGHT",
	}
	if v >= 0 && int(v) < len(names) {
		return names[v]
	}
	return fmt.Sprintf("VIEW(%d)", int(v))
}

// InitParameters is the configuration record a session is opened with.
type InitParameters struct {
	Resolution           ResolutionPreset
	FPS                  int
	DepthMode            DepthMode
	Unit                 Unit
	DepthMinimumDistance float32
	DepthMaximumDistance float32
}

// DefaultInitParameters returns the SDK defaults.
func DefaultInitParameters() InitParameters {
	return InitParameters{
		Resolution:           HD720,
		FPS:                  30,
		DepthMode:            DepthUltra,
		Unit:                 Meter,
		DepthMinimumDistance: -1,
		DepthMaximumDistance: -1,
	}
}

// RuntimeParameters is passed to every grab.
type RuntimeParameters struct {
	SensingMode SensingMode
}

// Information describes an opened camera.
type Information struct {
	SerialNumber uint
	Model        string
	Resolution   Resolution
	FPS          int
}

// Session is an open camera device. A session is owned by a single
// goroutine; none of the methods are safe for concurrent use.
type Session interface {
	// Open starts the camera with the given configuration.
	Open(InitParameters) ErrorCode
	// Grab blocks until a new frame is available or the grab fails.
	Grab(RuntimeParameters) ErrorCode
	// RetrieveImage writes the requested view of the last grabbed frame
	// into dst, resized to size. dst must have been allocated with that size.
	RetrieveImage(dst *Mat, view View, mem Mem, size Resolution) ErrorCode
	// Information reports the properties of the opened camera.
	Information() Information
	// NewMat allocates a buffer the session can retrieve images into.
	NewMat(size Resolution, t MatType, mem Mem) (*Mat, error)
	// Close stops the camera.
	Close()
}
