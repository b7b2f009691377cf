package camera

import (
	"fmt"
	"strings"
)

// ErrorCode is the status returned by every SDK call.
type ErrorCode int

const (
	Success ErrorCode = iota
	Failure
	NoGPUCompatible
	NotEnoughGPUMemory
	CameraNotDetected
	SensorsNotInitialized
	SensorsNotAvailable
	InvalidResolution
	LowUSBBandwidth
	CalibrationFileNotAvailable
	InvalidCalibrationFile
	InvalidSVOFile
	SVORecordingError
	SVOUnsupportedCompression
	EndOfSVOFileReached
	InvalidCoordinateSystem
	InvalidFirmware
	InvalidFunctionParameters
	CUDAError
	CameraNotInitialized
	NvidiaDriverOutOfDate
	InvalidFunctionCall
	CorruptedSDKInstallation
	IncompatibleSDKVersion
	InvalidAreaFile
	IncompatibleAreaFile
	CameraFailedToSetup
	CameraDetectionIssue
	CannotStartCameraStream
	NoGPUDetected
)

var errorCodeNames = [...]string{
	"SUCCESS",
	"FAILURE",
	"NO_GPU_COMPATIBLE",
	"NOT_ENOUGH_GPU_MEMORY",
	"CAMERA_NOT_DETECTED",
	"SENSORS_NOT_INITIALIZED",
	"SENSORS_NOT_AVAILABLE",
	"INVALID_RESOLUTION",
	"LOW_USB_BANDWIDTH",
	"CALIBRATION_FILE_NOT_AVAILABLE",
	"INVALID_CALIBRATION_FILE",
	"INVALID_SVO_FILE",
	"SVO_RECORDING_ERROR",
	"SVO_UNSUPPORTED_COMPRESSION",
	"END_OF_SVOFILE_REACHED",
	"INVALID_COORDINATE_SYSTEM",
	"INVALID_FIRMWARE",
	"INVALID_FUNCTION_PARAMETERS",
	"CUDA_ERROR",
	"CAMERA_NOT_INITIALIZED",
	"NVIDIA_DRIVER_OUT_OF_DATE",
	"INVALID_FUNCTION_CALL",
	"CORRUPTED_SDK_INSTALLATION",
	"INCOMPATIBLE_SDK_VERSION",
	"INVALID_AREA_FILE",
	"INCOMPATIBLE_AREA_FILE",
	"CAMERA_FAILED_TO_SETUP",
	"CAMERA_DETECTION_ISSUE",
	"CANNOT_START_CAMERA_STREAM",
	"NO_GPU_DETECTED",
}

// String prints the code the way the SDK does, e.g. "CAMERA NOT DETECTED".
func (c ErrorCode) String() string {
	if c >= 0 && int(c) < len(errorCodeNames) {
		return strings.ReplaceAll(errorCodeNames[c], "_", " ")
	}
	return fmt.Sprintf("ERROR CODE %d", int(c))
}

// Err returns nil for Success and an error wrapping the code otherwise.
func (c ErrorCode) Err() error {
	if c == Success {
		return nil
	}
	return &CodeError{Code: c}
}

// CodeError is an SDK failure lifted into an error.
type CodeError struct {
	Code ErrorCode
}

func (e *CodeError) Error() string {
	return e.Code.String()
}
