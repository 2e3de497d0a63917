package camera

import "fmt"

// Config holds capture settings requested from the device.
// Zero values leave the driver's native setting untouched.
type Config struct {
	Width     int `json:"width" yaml:"width"`         // Frame width in pixels
	Height    int `json:"height" yaml:"height"`       // Frame height in pixels
	Framerate int `json:"framerate" yaml:"framerate"` // Target FPS
}

// Capture limits accepted by Validate.
const (
	MaxWidth     = 4096
	MaxHeight    = 2160
	MaxFramerate = 120
)

// DefaultConfig keeps whatever the device reports as its native mode.
func DefaultConfig() Config {
	return Config{}
}

// LegacyConfig returns the classic 640x480 webcam mode.
// Use this on slow links to the inference API.
func LegacyConfig() Config {
	return Config{Width: 640, Height: 480, Framerate: 30}
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errors []string

	if c.Width != 0 && (c.Width < 160 || c.Width > MaxWidth) {
		errors = append(errors, fmt.Sprintf("width must be 0 (native) or between 160 and %d", MaxWidth))
	}
	if c.Height != 0 && (c.Height < 120 || c.Height > MaxHeight) {
		errors = append(errors, fmt.Sprintf("height must be 0 (native) or between 120 and %d", MaxHeight))
	}
	if (c.Width == 0) != (c.Height == 0) {
		errors = append(errors, "width and height must be set together")
	}
	if c.Framerate < 0 || c.Framerate > MaxFramerate {
		errors = append(errors, fmt.Sprintf("framerate must be between 0 and %d", MaxFramerate))
	}

	return errors
}

// String renders the mode for log lines.
func (c Config) String() string {
	if c.Width == 0 {
		return "native"
	}
	if c.Framerate == 0 {
		return fmt.Sprintf("%dx%d", c.Width, c.Height)
	}
	return fmt.Sprintf("%dx%d@%d", c.Width, c.Height, c.Framerate)
}
