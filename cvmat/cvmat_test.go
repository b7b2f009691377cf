package cvmat

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/esimov/depthview/camera"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestType_ShouldMapKnownFormats(t *testing.T) {
	testCases := []struct {
		tag  camera.MatType
		want gocv.MatType
	}{
		{camera.U8C1, gocv.MatTypeCV8UC1},
		{camera.U8C2, gocv.MatTypeCV8UC2},
		{camera.U8C3, gocv.MatTypeCV8UC3},
		{camera.U8C4, gocv.MatTypeCV8UC4},
		{camera.F32C1, gocv.MatTypeCV32FC1},
		{camera.F32C2, gocv.MatTypeCV32FC2},
		{camera.F32C3, gocv.MatTypeCV32FC3},
		{camera.F32C4, gocv.MatTypeCV32FC4},
	}
	for _, tc := range testCases {
		t.Run(tc.tag.String(), func(t *testing.T) {
			assert.Equal(t, tc.want, Type(tc.tag))
		})
	}
}

func TestType_ShouldReturnSentinelForUnknownFormats(t *testing.T) {
	for _, tag := range []camera.MatType{-1, 8, 9, 100} {
		assert.Equal(t, InvalidType, Type(tag), "tag %d", int(tag))
	}
}

func TestAdapt_ShouldKeepShape(t *testing.T) {
	const w, h = 8, 6
	data := make([]byte, w*h*4)
	mat := Adapt(h, w, camera.U8C4, data, w*4)
	defer mat.Close()

	require.False(t, mat.Empty())
	assert.Equal(t, h, mat.Rows())
	assert.Equal(t, w, mat.Cols())
	assert.Equal(t, gocv.MatTypeCV8UC4, mat.Type())
	assert.Equal(t, w*4, mat.Step())
}

func TestAdapt_ShouldShareMemory(t *testing.T) {
	const w, h = 5, 4
	data := make([]byte, w*h*4)
	mat := Adapt(h, w, camera.U8C4, data, w*4)
	defer mat.Close()

	off := 2*w*4 + 3*4
	copy(data[off:off+4], []byte{10, 20, 30, 40})

	assert.Equal(t, gocv.Vecb{10, 20, 30, 40}, mat.GetVecbAt(2, 3))

	mat.SetTo(gocv.NewScalar(1, 2, 3, 4))
	assert.Equal(t, []byte{1, 2, 3, 4}, data[:4])
	assert.Equal(t, []byte{1, 2, 3, 4}, data[len(data)-4:])
}

func TestAdapt_ShouldHonorPaddedRows(t *testing.T) {
	const w, h, step = 3, 4, 16 // 12 bytes of pixels, 4 bytes of padding per row
	data := make([]byte, step*h)
	for i := range data {
		data[i] = 0xee
	}
	mat := Adapt(h, w, camera.U8C4, data, step)
	defer mat.Close()

	require.False(t, mat.Empty())
	assert.Equal(t, w, mat.Cols())
	assert.Equal(t, h, mat.Rows())
	assert.Equal(t, step, mat.Step())

	mat.SetTo(gocv.NewScalar(0, 0, 0, 0))
	for y := 0; y < h; y++ {
		row := data[y*step : (y+1)*step]
		assert.Equal(t, make([]byte, w*4), row[:w*4], "row %d pixels", y)
		assert.Equal(t, []byte{0xee, 0xee, 0xee, 0xee}, row[w*4:], "row %d padding", y)
	}
}

func TestAdapt_ShouldShareFloatMemory(t *testing.T) {
	const w, h = 4, 3
	data := make([]byte, w*h*4)
	mat := Adapt(h, w, camera.F32C1, data, w*4)
	defer mat.Close()

	off := (1*w + 2) * 4
	binary.LittleEndian.PutUint32(data[off:], math.Float32bits(2.75))

	assert.Equal(t, gocv.MatTypeCV32FC1, mat.Type())
	assert.Equal(t, float32(2.75), mat.GetFloatAt(1, 2))
}

func TestAdapt_ShouldReturnEmptyMat(t *testing.T) {
	testCases := []struct {
		name string
		tag  camera.MatType
		size int
		step int
	}{
		{"unsupported type", camera.MatType(12), 64, 16},
		{"step not a whole pixel", camera.U8C4, 64, 15},
		{"step shorter than a row", camera.U8C4, 64, 8},
		{"buffer too short", camera.U8C4, 10, 16},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mat := Adapt(4, 4, tc.tag, make([]byte, tc.size), tc.step)
			defer mat.Close()
			assert.True(t, mat.Empty())
		})
	}
}

func TestView_ShouldAliasSourceBuffer(t *testing.T) {
	src, err := camera.NewMat(camera.Resolution{Width: 6, Height: 4}, camera.U8C4)
	require.NoError(t, err)
	defer src.Free()

	v := NewView(src)
	defer v.Close()

	mat, err := v.Mat()
	require.NoError(t, err)
	assert.Equal(t, gocv.MatTypeCV8UC4, v.Type())

	src.Row(3)[5*4+1] = 99
	assert.Equal(t, uint8(99), mat.GetVecbAt(3, 5)[1])
}

func TestView_ShouldBecomeStaleWhenSourceIsFreed(t *testing.T) {
	src, err := camera.NewMat(camera.Resolution{Width: 2, Height: 2}, camera.U8C1)
	require.NoError(t, err)

	v := NewView(src)
	defer v.Close()
	assert.False(t, v.Stale())

	src.Free()
	assert.True(t, v.Stale())
	_, err = v.Mat()
	assert.ErrorIs(t, err, ErrStaleView)
}
