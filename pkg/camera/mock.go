package camera

import (
	"image"
	"image/color"
	"sync"
)

// MockSource implements Source for testing.
// Frames are produced by ReadFunc, or a small gray image when nil.
type MockSource struct {
	// OpenErr is returned from Open when set.
	OpenErr error

	// ReadFunc is called for every Read while open.
	ReadFunc func(n int) (Frame, error)

	mu     sync.Mutex
	open   bool
	opens  int
	closes int
	reads  int
}

// NewMockSource returns a source producing n gray frames, then ErrReadFailed.
// A negative n never runs out.
func NewMockSource(n int) *MockSource {
	return &MockSource{
		ReadFunc: func(i int) (Frame, error) {
			if n >= 0 && i >= n {
				return nil, ErrReadFailed
			}
			return SolidFrame(64, 48, color.Gray{Y: 128}), nil
		},
	}
}

// Open marks the source open unless OpenErr is set.
func (m *MockSource) Open() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opens++
	if m.OpenErr != nil {
		return m.OpenErr
	}
	m.open = true
	return nil
}

// Read returns the next frame.
func (m *MockSource) Read() (Frame, error) {
	m.mu.Lock()
	if !m.open {
		m.mu.Unlock()
		return nil, ErrNotOpen
	}
	n := m.reads
	m.reads++
	fn := m.ReadFunc
	m.mu.Unlock()

	if fn == nil {
		return SolidFrame(64, 48, color.Gray{Y: 128}), nil
	}
	return fn(n)
}

// Close marks the source closed.
func (m *MockSource) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closes++
	m.open = false
	return nil
}

// Opens returns how many times Open was called.
func (m *MockSource) Opens() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opens
}

// Closes returns how many times Close was called.
func (m *MockSource) Closes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closes
}

// Reads returns how many times Read was called.
func (m *MockSource) Reads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads
}

// MockDisplay implements Display for testing.
// Keys are replayed in order, one per PollKey call.
type MockDisplay struct {
	// KeyFunc replaces the scripted keys when set. n counts PollKey calls from zero.
	KeyFunc func(n int) int

	mu     sync.Mutex
	keys   []int
	polls  int
	shows  int
	closes int
}

// NewMockDisplay returns a display that reports keys in order, then NoKey.
func NewMockDisplay(keys ...int) *MockDisplay {
	return &MockDisplay{keys: keys}
}

// Show counts the frame.
func (d *MockDisplay) Show(Frame) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.shows++
	return nil
}

// PollKey returns the next scripted key.
func (d *MockDisplay) PollKey() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := d.polls
	d.polls++
	if d.KeyFunc != nil {
		return d.KeyFunc(n)
	}
	if n < len(d.keys) {
		return d.keys[n]
	}
	return NoKey
}

// Close counts the call.
func (d *MockDisplay) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closes++
	return nil
}

// Shows returns how many frames were shown.
func (d *MockDisplay) Shows() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shows
}

// Closes returns how many times Close was called.
func (d *MockDisplay) Closes() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closes
}

// SolidFrame returns a w×h frame filled with c.
func SolidFrame(w, h int, c color.Color) *ImageFrame {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return NewImageFrame(img)
}

var (
	_ Source  = (*MockSource)(nil)
	_ Display = (*MockDisplay)(nil)
)
