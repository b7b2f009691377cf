package camera

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMat_ShouldAllocatePackedRows(t *testing.T) {
	m, err := NewMat(Resolution{Width: 640, Height: 360}, U8C4)
	require.NoError(t, err)

	assert.Equal(t, 640, m.Width())
	assert.Equal(t, 360, m.Height())
	assert.Equal(t, 640*4, m.Step())
	assert.Len(t, m.Bytes(), 640*4*360)
	assert.Len(t, m.Row(10), 640*4)
}

func TestMat_ShouldRejectInvalidShape(t *testing.T) {
	_, err := NewMat(Resolution{Width: 0, Height: 10}, U8C4)
	assert.True(t, errors.Is(err, ErrInvalidMat))

	_, err = NewMat(Resolution{Width: 10, Height: 10}, MatType(42))
	assert.True(t, errors.Is(err, ErrInvalidMat))

	_, err = WrapMat(Resolution{Width: 10, Height: 10}, U8C1, 8, make([]byte, 100), nil)
	assert.True(t, errors.Is(err, ErrInvalidMat), "step shorter than a row")

	_, err = WrapMat(Resolution{Width: 10, Height: 10}, U8C1, 16, make([]byte, 100), nil)
	assert.True(t, errors.Is(err, ErrInvalidMat), "buffer too short for the step")
}

func TestMat_FreeShouldBumpGeneration(t *testing.T) {
	released := 0
	m, err := WrapMat(Resolution{Width: 4, Height: 2}, U8C1, 8, make([]byte, 16), func() { released++ })
	require.NoError(t, err)

	gen := m.Generation()
	m.Free()
	m.Free()

	assert.Equal(t, 1, released)
	assert.False(t, m.IsInit())
	assert.Nil(t, m.Bytes())
	assert.NotEqual(t, gen, m.Generation())
}

func TestMatType_Sizes(t *testing.T) {
	testCases := []struct {
		typ      MatType
		channels int
		size     int
		name     string
	}{
		{F32C1, 1, 4, "F32_C1"},
		{F32C2, 2, 8, "F32_C2"},
		{F32C3, 3, 12, "F32_C3"},
		{F32C4, 4, 16, "F32_C4"},
		{U8C1, 1, 1, "U8_C1"},
		{U8C2, 2, 2, "U8_C2"},
		{U8C3, 3, 3, "U8_C3"},
		{U8C4, 4, 4, "U8_C4"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.channels, tc.typ.Channels())
			assert.Equal(t, tc.size, tc.typ.ElemSize())
			assert.Equal(t, tc.name, tc.typ.String())
		})
	}
	assert.False(t, MatType(-1).Valid())
	assert.Zero(t, MatType(99).ElemSize())
}

func TestResolution_Half(t *testing.T) {
	size, ok := HD720.Size()
	require.True(t, ok)
	assert.Equal(t, Resolution{Width: 640, Height: 360}, size.Half())

	size, ok = HD2K.Size()
	require.True(t, ok)
	assert.Equal(t, Resolution{Width: 1104, Height: 621}, size.Half())

	assert.Equal(t, Resolution{Width: 1, Height: 0}, Resolution{Width: 3, Height: 1}.Half())
}

func TestErrorCode_String(t *testing.T) {
	assert.Equal(t, "CAMERA NOT DETECTED", CameraNotDetected.String())
	assert.Equal(t, "SUCCESS", Success.String())
	assert.Equal(t, "ERROR CODE 999", ErrorCode(999).String())

	assert.NoError(t, Success.Err())
	err := InvalidResolution.Err()
	var codeErr *CodeError
	require.True(t, errors.As(err, &codeErr))
	assert.Equal(t, InvalidResolution, codeErr.Code)
}
