// Package camera defines the capture and display boundary used by the
// assistant loop. Implementations backed by OpenCV live in pkg/camera/webcam;
// this package holds the interfaces, an image-backed frame and test doubles.
package camera

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
)

// Sentinel errors for capture failures.
var (
	// ErrNotOpen is returned when the device cannot be opened or was closed.
	ErrNotOpen = errors.New("camera: device not open")

	// ErrReadFailed is returned when the device yields no frame.
	ErrReadFailed = errors.New("camera: could not read frame")
)

// NoKey is returned by Display.PollKey when nothing was pressed.
const NoKey = -1

// Frame is one captured image. It belongs to the loop iteration that read
// it and must be closed before the next read.
type Frame interface {
	// JPEG encodes the frame at the given quality (1-100).
	JPEG(quality int) ([]byte, error)

	// Close releases the frame's pixel buffer.
	Close() error
}

// Source produces frames from a capture device.
type Source interface {
	// Open acquires the device. It fails with ErrNotOpen (possibly wrapped)
	// when the device is unavailable.
	Open() error

	// Read returns the next frame.
	Read() (Frame, error)

	// Close releases the device. It is safe to call Close more than once.
	Close() error
}

// Display renders frames and reports key presses.
type Display interface {
	// Show renders a frame.
	Show(f Frame) error

	// PollKey returns the key pressed since the last call, or NoKey.
	PollKey() int

	// Close destroys the display.
	Close() error
}

// ImageFrame adapts an image.Image to Frame. Used for still images.
type ImageFrame struct {
	Image image.Image
}

// NewImageFrame wraps img.
func NewImageFrame(img image.Image) *ImageFrame {
	return &ImageFrame{Image: img}
}

// JPEG encodes the image with image/jpeg.
func (f *ImageFrame) JPEG(quality int) ([]byte, error) {
	if f.Image == nil {
		return nil, errors.New("camera: empty image")
	}
	b := f.Image.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("camera: image has no pixels (%dx%d)", b.Dx(), b.Dy())
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, f.Image, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Close is a no-op; the image is garbage collected.
func (f *ImageFrame) Close() error {
	return nil
}

// Headless is a Display that renders nothing and never reports a key.
type Headless struct{}

// Show discards the frame.
func (Headless) Show(Frame) error { return nil }

// PollKey always returns NoKey.
func (Headless) PollKey() int { return NoKey }

// Close does nothing.
func (Headless) Close() error { return nil }

var (
	_ Frame   = (*ImageFrame)(nil)
	_ Display = Headless{}
)
