//go:build zed

// Package zed binds the ZED stereo camera through the C API of the ZED SDK
// (3.x, sl/c_api/zed_interface.h). Build with -tags zed on a machine where
// the SDK is installed.
package zed

/*
#cgo CFLAGS: -I/usr/local/zed/include
#cgo LDFLAGS: -L/usr/local/zed/lib -lsl_zed_c
#include <stdlib.h>
#include <string.h>
#include <stdbool.h>
#include <sl/c_api/zed_interface.h>

static int dv_open(int id, int resolution, int fps, int depth_mode, int unit, float min_dist, float max_dist) {
	struct SL_InitParameters p;
	memset(&p, 0, sizeof(p));
	p.camera_device_id = id;
	p.resolution = (enum SL_RESOLUTION)resolution;
	p.camera_fps = fps;
	p.depth_mode = (enum SL_DEPTH_MODE)depth_mode;
	p.coordinate_unit = (enum SL_UNIT)unit;
	p.coordinate_system = SL_COORDINATE_SYSTEM_IMAGE;
	p.depth_minimum_distance = min_dist;
	p.depth_maximum_distance = max_dist;
	p.depth_stabilization = true;
	p.sdk_gpu_id = -1;
	p.sdk_verbose = false;
	p.enable_image_enhancement = true;
	p.input_type = SL_INPUT_TYPE_USB;

	if (!sl_create_camera(id)) {
		return SL_ERROR_CODE_CAMERA_NOT_DETECTED;
	}
	return sl_open_camera(id, &p, "", "", 0, "", "", "");
}

static int dv_grab(int id, int sensing_mode) {
	struct SL_RuntimeParameters rt;
	memset(&rt, 0, sizeof(rt));
	rt.sensing_mode = (enum SL_SENSING_MODE)sensing_mode;
	rt.reference_frame = SL_REFERENCE_FRAME_CAMERA;
	rt.enable_depth = true;
	rt.confidence_threshold = 100;
	rt.texture_confidence_threshold = 100;
	return sl_grab(id, &rt);
}

static int dv_retrieve(int id, void *mat, int view, int mem, int width, int height) {
	return sl_retrieve_image(id, mat, (enum SL_VIEW)view, (enum SL_MEM)mem, width, height);
}

static unsigned char *dv_mat_ptr(void *mat, int mem) {
	return (unsigned char *)sl_mat_get_ptr(mat, (enum SL_MEM)mem);
}
*/
import "C"

import (
	"unsafe"

	"github.com/esimov/depthview/camera"
	"github.com/pkg/errors"
)

// Camera is an open ZED device. It is not safe for concurrent use.
type Camera struct {
	id     int
	opened bool
}

var _ camera.Session = (*Camera)(nil)

// New returns a closed session for the camera with the given device id.
func New(id int) *Camera {
	return &Camera{id: id}
}

// Open starts the camera.
func (c *Camera) Open(p camera.InitParameters) camera.ErrorCode {
	code := camera.ErrorCode(C.dv_open(
		C.int(c.id),
		C.int(p.Resolution),
		C.int(p.FPS),
		C.int(p.DepthMode),
		C.int(p.Unit),
		C.float(p.DepthMinimumDistance),
		C.float(p.DepthMaximumDistance),
	))
	c.opened = code == camera.Success
	return code
}

// Grab blocks until the next frame is captured and its depth computed.
func (c *Camera) Grab(rt camera.RuntimeParameters) camera.ErrorCode {
	return camera.ErrorCode(C.dv_grab(C.int(c.id), C.int(rt.SensingMode)))
}

// RetrieveImage writes a view of the last frame into dst. dst must have
// been allocated by NewMat.
func (c *Camera) RetrieveImage(dst *camera.Mat, view camera.View, mem camera.Mem, size camera.Resolution) camera.ErrorCode {
	h, ok := handles[dst]
	if !ok || !dst.IsInit() {
		return camera.InvalidFunctionParameters
	}
	return camera.ErrorCode(C.dv_retrieve(
		C.int(c.id), h, C.int(view), C.int(slMem(mem)), C.int(size.Width), C.int(size.Height),
	))
}

// Information reports the native resolution and frame rate.
func (c *Camera) Information() camera.Information {
	return camera.Information{
		SerialNumber: uint(C.sl_get_zed_serial(C.int(c.id))),
		Model:        "ZED",
		Resolution: camera.Resolution{
			Width:  int(C.sl_get_width(C.int(c.id))),
			Height: int(C.sl_get_height(C.int(c.id))),
		},
		FPS: int(C.sl_get_camera_fps(C.int(c.id))),
	}
}

// slMem translates the memory flag; the C API counts from zero.
func slMem(m camera.Mem) C.enum_SL_MEM {
	if m == camera.GPU {
		return C.SL_MEM_GPU
	}
	return C.SL_MEM_CPU
}

// handles maps the buffers allocated by NewMat to their SDK matrices.
var handles = map[*camera.Mat]unsafe.Pointer{}

// NewMat allocates an SDK matrix and exposes its memory as a camera buffer.
// Freeing the buffer frees the SDK matrix.
func (c *Camera) NewMat(size camera.Resolution, t camera.MatType, mem camera.Mem) (*camera.Mat, error) {
	if mem != camera.CPU {
		return nil, errors.New("only CPU buffers can be viewed from Go")
	}
	h := C.sl_mat_create_new(C.int(size.Width), C.int(size.Height), C.enum_SL_MAT_TYPE(t), slMem(mem))
	if h == nil {
		return nil, errors.Errorf("cannot allocate %s %s buffer", size, t)
	}
	step := int(C.sl_mat_get_step_bytes(h, slMem(mem)))
	ptr := C.dv_mat_ptr(h, C.int(slMem(mem)))
	if ptr == nil || step <= 0 {
		C.sl_mat_free(h, slMem(mem))
		return nil, errors.Errorf("SDK returned no memory for %s %s buffer", size, t)
	}
	data := unsafe.Slice((*byte)(unsafe.Pointer(ptr)), step*size.Height)

	var m *camera.Mat
	m, err := camera.WrapMat(size, t, step, data, func() {
		delete(handles, m)
		C.sl_mat_free(h, slMem(mem))
	})
	if err != nil {
		C.sl_mat_free(h, slMem(mem))
		return nil, err
	}
	handles[m] = h

	return m, nil
}

// Close stops the camera.
func (c *Camera) Close() {
	if !c.opened {
		return
	}
	C.sl_close_camera(C.int(c.id))
	c.opened = false
}
