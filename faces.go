package depthview

import (
	"image"
	"image/color"
	"os"

	"github.com/esimov/depthview/utils"
	pigo "github.com/esimov/pigo/core"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// markerColor is the face rectangle color.
var markerColor = color.RGBA{R: 0, G: 255, B: 0, A: 255}

// FaceDetector finds faces in the color view with a pigo cascade and
// marks them with rectangles.
type FaceDetector struct {
	// MinSize is the smallest face searched for, in pixels.
	MinSize int
	// ShiftFactor and ScaleFactor control the detection window moves.
	ShiftFactor float64
	ScaleFactor float64
	// Angle of in-plane rotated faces, 0..1 (1 is 2π).
	Angle float64
	// IoU is the overlap above which detections are merged.
	IoU float64
	// Score is the detection quality threshold.
	Score float32

	classifier *pigo.Pigo
	gray       gocv.Mat
}

// NewFaceDetector unpacks a pigo cascade.
func NewFaceDetector(cascade []byte, score float32) (*FaceDetector, error) {
	classifier, err := unpackCascade(cascade)
	if err != nil {
		return nil, err
	}
	return &FaceDetector{
		MinSize:     40,
		ShiftFactor: 0.1,
		ScaleFactor: 1.1,
		IoU:         0.2,
		Score:       score,
		classifier:  classifier,
		gray:        gocv.NewMat(),
	}, nil
}

// LoadFaceDetector reads the cascade file at path.
func LoadFaceDetector(path string, score float32) (*FaceDetector, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read the cascade file")
	}
	return NewFaceDetector(data, score)
}

// unpackCascade guards against truncated files, which pigo indexes past.
func unpackCascade(data []byte) (classifier *pigo.Pigo, err error) {
	if len(data) < 16 {
		return nil, errors.New("the cascade file is too short")
	}
	defer func() {
		if r := recover(); r != nil {
			classifier, err = nil, errors.Errorf("malformed cascade file: %v", r)
		}
	}()

	classifier, err = pigo.NewPigo().Unpack(data)
	if err != nil {
		return nil, errors.Wrap(err, "error unpacking the cascade file")
	}
	return classifier, nil
}

// Detect returns the face regions found in img.
func (fd *FaceDetector) Detect(img gocv.Mat) ([]image.Rectangle, error) {
	if img.Empty() {
		return nil, ErrEmptyFrame
	}
	switch img.Type() {
	case gocv.MatTypeCV8UC4:
		gocv.CvtColor(img, &fd.gray, gocv.ColorBGRAToGray)
	case gocv.MatTypeCV8UC3:
		gocv.CvtColor(img, &fd.gray, gocv.ColorBGRToGray)
	case gocv.MatTypeCV8UC1:
		img.CopyTo(&fd.gray)
	default:
		return nil, errors.Wrapf(ErrFrameType, "%d channels", img.Channels())
	}
	rows, cols := fd.gray.Rows(), fd.gray.Cols()

	cParams := pigo.CascadeParams{
		MinSize:     fd.MinSize,
		MaxSize:     utils.Min(rows, cols),
		ShiftFactor: fd.ShiftFactor,
		ScaleFactor: fd.ScaleFactor,

		ImageParams: pigo.ImageParams{
			Pixels: fd.gray.ToBytes(),
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}

	// The result contains quadruplets representing the row, column, scale and detection score.
	dets := fd.classifier.RunCascade(cParams, fd.Angle)
	dets = fd.classifier.ClusterDetections(dets, fd.IoU)

	var faces []image.Rectangle
	for _, d := range dets {
		if d.Q <= fd.Score {
			continue
		}
		half := d.Scale / 2
		r := image.Rect(d.Col-half, d.Row-half, d.Col+half, d.Row+half)
		faces = append(faces, r.Intersect(image.Rect(0, 0, cols, rows)))
	}
	return faces, nil
}

// Mark draws a rectangle around every face found in img and returns how
// many were found.
func (fd *FaceDetector) Mark(img *gocv.Mat) (int, error) {
	faces, err := fd.Detect(*img)
	if err != nil {
		return 0, err
	}
	for _, r := range faces {
		gocv.Rectangle(img, r, markerColor, 2)
	}
	return len(faces), nil
}

// Close frees the scratch image.
func (fd *FaceDetector) Close() error {
	return fd.gray.Close()
}
