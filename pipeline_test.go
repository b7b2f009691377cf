package depthview

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestPipeline_Process(t *testing.T) {
	depth := gocv.NewMatWithSize(6, 8, gocv.MatTypeCV8UC4)
	defer depth.Close()
	depth.SetTo(gocv.NewScalar(200, 200, 200, 255))

	p := NewPipeline()
	defer p.Close()

	gray, cmap, err := p.Process(depth)
	require.NoError(t, err)

	assert.Equal(t, gocv.MatTypeCV8UC1, gray.Type())
	assert.Equal(t, 6, gray.Rows())
	assert.Equal(t, 8, gray.Cols())
	assert.Equal(t, uint8(200), gray.GetUCharAt(3, 4))

	assert.Equal(t, gocv.MatTypeCV8UC3, cmap.Type())
	assert.Equal(t, 6, cmap.Rows())
	assert.Equal(t, 8, cmap.Cols())
}

func TestPipeline_ColorMapShouldFollowIntensity(t *testing.T) {
	depth := gocv.NewMatWithSize(1, 2, gocv.MatTypeCV8UC1)
	defer depth.Close()
	depth.SetUCharAt(0, 0, 0)
	depth.SetUCharAt(0, 1, 255)

	p := NewPipeline()
	defer p.Close()

	_, cmap, err := p.Process(depth)
	require.NoError(t, err)

	// plasma goes from dark blue to yellow
	low, high := cmap.GetVecbAt(0, 0), cmap.GetVecbAt(0, 1)
	assert.Greater(t, low[0], low[2], "low end is blue")
	assert.Greater(t, high[2], high[0], "high end is red/yellow")
}

func TestPipeline_ShouldRejectBadFrames(t *testing.T) {
	p := NewPipeline()
	defer p.Close()

	empty := gocv.NewMat()
	defer empty.Close()
	_, _, err := p.Process(empty)
	assert.ErrorIs(t, err, ErrEmptyFrame)

	float := gocv.NewMatWithSize(2, 2, gocv.MatTypeCV32FC1)
	defer float.Close()
	_, _, err = p.Process(float)
	assert.ErrorIs(t, err, ErrFrameType)
}

func TestImage_MatToNRGBA(t *testing.T) {
	bgra := gocv.NewMatWithSize(2, 3, gocv.MatTypeCV8UC4)
	defer bgra.Close()
	bgra.SetTo(gocv.NewScalar(10, 20, 30, 0))

	img, err := matToNRGBA(bgra)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())
	assert.Equal(t, color.NRGBA{R: 30, G: 20, B: 10, A: 255}, img.NRGBAAt(2, 1))

	gray := gocv.NewMatWithSize(2, 2, gocv.MatTypeCV8UC1)
	defer gray.Close()
	gray.SetTo(gocv.NewScalar(77, 0, 0, 0))

	img, err = matToNRGBA(gray)
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 77, G: 77, B: 77, A: 255}, img.NRGBAAt(1, 1))

	// a region over a wider image is not continuous
	wide := gocv.NewMatWithSize(4, 8, gocv.MatTypeCV8UC3)
	defer wide.Close()
	wide.SetTo(gocv.NewScalar(1, 2, 3, 0))
	region := wide.Region(image.Rect(2, 1, 5, 3))
	defer region.Close()

	img, err = matToNRGBA(region)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())
	assert.Equal(t, color.NRGBA{R: 3, G: 2, B: 1, A: 255}, img.NRGBAAt(2, 1))
}

func TestImage_NRGBAToBGRA(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(1, 0, color.NRGBA{R: 1, G: 2, B: 3, A: 4})

	dst := make([]byte, 8)
	nrgbaToBGRA(src, dst)
	assert.Equal(t, []byte{0, 0, 0, 0, 3, 2, 1, 4}, dst)
}

func TestGUI_WindowSize(t *testing.T) {
	w, h := windowSize(640, 360)
	assert.Equal(t, float32(640), w)
	assert.Equal(t, float32(360), h)

	w, h = windowSize(2208, 1242)
	assert.LessOrEqual(t, w, float32(maxScreenX))
	assert.LessOrEqual(t, h, float32(maxScreenY))
	assert.InDelta(t, 2208.0/1242.0, float64(w/h), 0.01)
}
