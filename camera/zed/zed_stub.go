//go:build !zed

package zed

import (
	"github.com/esimov/depthview/camera"
	"github.com/pkg/errors"
)

// Camera stands in for the ZED binding when the SDK is not compiled in.
// Open always fails with CAMERA NOT DETECTED.
type Camera struct {
	id int
}

var _ camera.Session = (*Camera)(nil)

// New returns a session that cannot be opened. Build with -tags zed to
// talk to a real camera.
func New(id int) *Camera {
	return &Camera{id: id}
}

func (c *Camera) Open(camera.InitParameters) camera.ErrorCode {
	return camera.CameraNotDetected
}

func (c *Camera) Grab(camera.RuntimeParameters) camera.ErrorCode {
	return camera.CameraNotInitialized
}

func (c *Camera) RetrieveImage(*camera.Mat, camera.View, camera.Mem, camera.Resolution) camera.ErrorCode {
	return camera.CameraNotInitialized
}

func (c *Camera) Information() camera.Information {
	return camera.Information{Model: "ZED"}
}

func (c *Camera) NewMat(camera.Resolution, camera.MatType, camera.Mem) (*camera.Mat, error) {
	return nil, errors.New("built without ZED SDK support")
}

func (c *Camera) Close() {}
