// Package webcam implements camera.Source and camera.Display on top of OpenCV.
package webcam

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/teslashibe/pathsense/pkg/camera"
	"gocv.io/x/gocv"
)

// Capture reads frames from a local video device.
type Capture struct {
	id     int
	cfg    camera.Config
	logger *slog.Logger

	mu sync.Mutex
	vc *gocv.VideoCapture
}

// NewCapture returns a capture for device id. The device is not opened until Open.
func NewCapture(id int, cfg camera.Config, logger *slog.Logger) *Capture {
	if logger == nil {
		logger = slog.Default()
	}
	return &Capture{
		id:     id,
		cfg:    cfg,
		logger: logger.With("component", "webcam.capture", "device", id),
	}
}

// Open acquires the device and applies the requested mode.
func (c *Capture) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.vc != nil {
		return nil
	}

	vc, err := gocv.OpenVideoCapture(c.id)
	if err != nil {
		return fmt.Errorf("%w: device %d: %v", camera.ErrNotOpen, c.id, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return fmt.Errorf("%w: device %d", camera.ErrNotOpen, c.id)
	}

	if c.cfg.Width > 0 {
		vc.Set(gocv.VideoCaptureFrameWidth, float64(c.cfg.Width))
		vc.Set(gocv.VideoCaptureFrameHeight, float64(c.cfg.Height))
	}
	if c.cfg.Framerate > 0 {
		vc.Set(gocv.VideoCaptureFPS, float64(c.cfg.Framerate))
	}

	c.vc = vc
	c.logger.Info("camera opened",
		"mode", c.cfg.String(),
		"width", vc.Get(gocv.VideoCaptureFrameWidth),
		"height", vc.Get(gocv.VideoCaptureFrameHeight))
	return nil
}

// Read grabs the next frame. The caller owns the returned frame.
func (c *Capture) Read() (camera.Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.vc == nil {
		return nil, camera.ErrNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.vc.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		return nil, camera.ErrReadFailed
	}
	return &Frame{mat: mat}, nil
}

// Close releases the device. Safe to call more than once.
func (c *Capture) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.vc == nil {
		return nil
	}
	err := c.vc.Close()
	c.vc = nil
	c.logger.Debug("camera released")
	return err
}

// Frame wraps a gocv.Mat.
type Frame struct {
	mat gocv.Mat
}

// Mat exposes the underlying matrix for rendering.
func (f *Frame) Mat() gocv.Mat {
	return f.mat
}

// JPEG encodes the frame at quality.
func (f *Frame) JPEG(quality int) ([]byte, error) {
	if f.mat.Empty() {
		return nil, camera.ErrReadFailed
	}
	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, f.mat, []int{int(gocv.IMWriteJpegQuality), quality})
	if err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	defer buf.Close()

	// NativeByteBuffer memory is freed on Close, so copy out.
	data := buf.GetBytes()
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Close frees the matrix.
func (f *Frame) Close() error {
	return f.mat.Close()
}

// highgui is the part of *gocv.Window used here.
type highgui interface {
	IMShow(img gocv.Mat) error
	WaitKey(delay int) int
	Close() error
}

// Window is a HighGUI window showing the live feed.
type Window struct {
	win highgui
}

// NewWindow opens a window titled title.
func NewWindow(title string) *Window {
	return &Window{win: gocv.NewWindow(title)}
}

// Show renders f. Frames that are not OpenCV-backed are ignored.
func (w *Window) Show(f camera.Frame) error {
	m, ok := f.(interface{ Mat() gocv.Mat })
	if !ok {
		return nil
	}
	return w.win.IMShow(m.Mat())
}

// PollKey pumps the window event loop for 1ms and returns the pressed key.
func (w *Window) PollKey() int {
	return w.win.WaitKey(1)
}

// Close destroys the window.
func (w *Window) Close() error {
	return w.win.Close()
}

var (
	_ camera.Source  = (*Capture)(nil)
	_ camera.Frame   = (*Frame)(nil)
	_ camera.Display = (*Window)(nil)
)
