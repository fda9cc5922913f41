// Package capture provides frame sources backed by GoCV (OpenCV).
package capture

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

var (
	// ErrCameraNotOpen is returned when trying to read from a camera that is not open.
	ErrCameraNotOpen = errors.New("camera is not open")

	// ErrOpenFailed is returned when the capture device or file cannot be opened.
	ErrOpenFailed = errors.New("cannot open capture source")

	// ErrEndOfStream is returned when no further frame can be read. Callers
	// treat it as a normal stop, not a crash.
	ErrEndOfStream = errors.New("end of stream")
)

// Camera defines the interface for frame sources.
type Camera interface {
	Open() error
	Close() error
	// ReadFrame returns the next frame. The caller owns the returned Mat.
	ReadFrame() (*gocv.Mat, error)
	IsOpen() bool
	// Source describes where frames come from, e.g. "device:2".
	Source() string
}

type opener func() (*gocv.VideoCapture, error)

// videoCamera manages a gocv.VideoCapture for either a device or a file.
type videoCamera struct {
	source  string
	open    opener
	capture *gocv.VideoCapture
	mu      sync.Mutex
	running bool
}

// NewCamera creates a Camera reading from the webcam with the given device ID.
func NewCamera(deviceID int) Camera {
	return &videoCamera{
		source: fmt.Sprintf("device:%d", deviceID),
		open: func() (*gocv.VideoCapture, error) {
			return gocv.OpenVideoCapture(deviceID)
		},
	}
}

// NewFileCamera creates a Camera that plays back a video file.
func NewFileCamera(path string) Camera {
	return &videoCamera{
		source: "file:" + path,
		open: func() (*gocv.VideoCapture, error) {
			return gocv.VideoCaptureFile(path)
		},
	}
}

// Open opens the underlying capture. Opening an open camera is a no-op.
func (c *videoCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	capture, err := c.open()
	if err != nil {
		return errors.Wrapf(ErrOpenFailed, "%s: %v", c.source, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return errors.Wrap(ErrOpenFailed, c.source)
	}

	c.capture = capture
	c.running = true

	return nil
}

// Close closes the camera and releases resources.
func (c *videoCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		c.running = false
		return nil
	}

	err := c.capture.Close()
	c.capture = nil
	c.running = false

	return errors.Wrap(err, "close capture")
}

// ReadFrame reads a single frame. A failed read or an empty frame is
// reported as ErrEndOfStream.
func (c *videoCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok {
		mat.Close()
		return nil, errors.Wrap(ErrEndOfStream, "cannot read a frame from video stream")
	}

	if mat.Empty() {
		mat.Close()
		return nil, errors.Wrap(ErrEndOfStream, "captured frame is empty")
	}

	return &mat, nil
}

// IsOpen returns true if the camera is currently open.
func (c *videoCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.running
}

// Source returns a description of the frame source.
func (c *videoCamera) Source() string {
	return c.source
}
