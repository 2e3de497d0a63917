package camera

// Capture mode names accepted by the resolution setting.
const (
	PresetDefault = "default"
	PresetLegacy  = "legacy"
	Preset720p    = "720p"
	Preset1080p   = "1080p"
)

// presets is ordered for help output. Larger modes give the model more detail
// at the cost of upload size per analysis.
var presets = []struct {
	name string
	cfg  Config
}{
	{PresetDefault, DefaultConfig()},
	{PresetLegacy, LegacyConfig()},
	{Preset720p, Config{Width: 1280, Height: 720, Framerate: 30}},
	{Preset1080p, Config{Width: 1920, Height: 1080, Framerate: 30}},
}

// Presets returns every named capture mode.
func Presets() map[string]Config {
	out := make(map[string]Config, len(presets))
	for _, p := range presets {
		out[p.name] = p.cfg
	}
	return out
}

// PresetNames lists the mode names from smallest change to largest frame.
func PresetNames() []string {
	names := make([]string, len(presets))
	for i, p := range presets {
		names[i] = p.name
	}
	return names
}

// GetPreset returns the named mode, or nil.
func GetPreset(name string) *Config {
	for _, p := range presets {
		if p.name == name {
			cfg := p.cfg
			return &cfg
		}
	}
	return nil
}
