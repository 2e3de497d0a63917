// Package config builds the immutable runtime configuration for pathsense.
//
// Values come from, in order of precedence: command line flags, PATHSENSE_*
// environment variables, the credential variables, an optional YAML config
// file, and the defaults below. A .env file in the working directory is
// merged into the process environment first without overriding it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/teslashibe/pathsense/pkg/camera"
	"gopkg.in/yaml.v3"
)

// Keys used with viper. Flags share these names.
const (
	KeyAPIKey         = "api-key"
	KeySpeechAPIKey   = "speech-api-key"
	KeyProvider       = "provider"
	KeyModel          = "model"
	KeyBaseURL        = "base-url"
	KeyCamera         = "camera"
	KeyResolution     = "resolution"
	KeyInterval       = "interval"
	KeyJPEGQuality    = "jpeg-quality"
	KeyTimeout        = "timeout"
	KeySpeech         = "speech"
	KeySpeechRate     = "speech-rate"
	KeyVoice          = "voice"
	KeyHeadless       = "headless"
	KeyWindowTitle    = "window-title"
	KeyLogLevel       = "log-level"
	KeyMetricsAddr    = "metrics-addr"
	KeyCheck          = "check"
	EnvPrefix         = "PATHSENSE"
	DefaultDotEnvFile = ".env"
)

// Inference providers.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Speech engines.
const (
	SpeechLocal  = "local"
	SpeechOpenAI = "openai"
	SpeechNone   = "none"
)

// Defaults.
const (
	DefaultCamera      = 0
	DefaultResolution  = camera.PresetDefault
	DefaultInterval    = 3 * time.Second
	DefaultProvider    = ProviderGemini
	DefaultGeminiModel = "gemini-2.5-flash"
	DefaultOpenAIModel = "gpt-4o-mini"
	DefaultJPEGQuality = 85
	DefaultTimeout     = 30 * time.Second
	DefaultSpeech      = SpeechLocal
	DefaultSpeechRate  = 170
	DefaultWindowTitle = "Assistive AI - Live Feed (Press Q to quit)"
	DefaultLogLevel    = "info"
)

// CredentialEnvVars lists the variables searched for the inference credential.
// The first non-empty one wins.
var CredentialEnvVars = []string{"GEMINI_API_KEY", "GOOGLE_API_KEY", "OPENAI_API_KEY"}

// ErrNoAPIKey is returned when none of CredentialEnvVars is set.
var ErrNoAPIKey = errors.New("config: API key required")

// Config is the runtime configuration. It is built once at startup and
// passed by value; nothing mutates it afterwards.
type Config struct {
	APIKey       string
	SpeechAPIKey string

	Provider string
	Model    string
	BaseURL  string

	CameraID    int
	Resolution  string
	Interval    time.Duration
	JPEGQuality int
	Timeout     time.Duration

	Speech     string
	SpeechRate int
	Voice      string

	Headless    bool
	WindowTitle string

	LogLevel    string
	MetricsAddr string

	// Check verifies provider credentials with a health request before the
	// first analysis.
	Check bool
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyProvider, DefaultProvider)
	v.SetDefault(KeyCamera, DefaultCamera)
	v.SetDefault(KeyResolution, DefaultResolution)
	v.SetDefault(KeyInterval, DefaultInterval.String())
	v.SetDefault(KeyJPEGQuality, DefaultJPEGQuality)
	v.SetDefault(KeyTimeout, DefaultTimeout.String())
	v.SetDefault(KeySpeech, DefaultSpeech)
	v.SetDefault(KeySpeechRate, DefaultSpeechRate)
	v.SetDefault(KeyWindowTitle, DefaultWindowTitle)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
}

// BindEnv wires environment variables into v.
func BindEnv(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindEnv(append([]string{KeyAPIKey}, CredentialEnvVars...)...); err != nil {
		return fmt.Errorf("bind %s: %w", KeyAPIKey, err)
	}
	if err := v.BindEnv(KeySpeechAPIKey, "OPENAI_API_KEY"); err != nil {
		return fmt.Errorf("bind %s: %w", KeySpeechAPIKey, err)
	}
	return nil
}

// ReadFile merges a YAML config file into v. An empty path is a no-op.
func ReadFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

// LoadDotEnv copies variables from a .env file into the process
// environment. Variables already set are left untouched and a missing file
// is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}

	dv := viper.New()
	dv.SetConfigFile(path)
	dv.SetConfigType("env")
	if err := dv.ReadInConfig(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	for _, key := range dv.AllKeys() {
		name := strings.ToUpper(key)
		if _, set := os.LookupEnv(name); set {
			continue
		}
		if err := os.Setenv(name, dv.GetString(key)); err != nil {
			return fmt.Errorf("set %s: %w", name, err)
		}
	}
	return nil
}

// Load builds a validated Config from v.
// It fails with ErrNoAPIKey when no credential is configured.
func Load(v *viper.Viper) (Config, error) {
	interval, err := parseDuration(v.GetString(KeyInterval))
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", KeyInterval, err)
	}
	timeout, err := parseDuration(v.GetString(KeyTimeout))
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", KeyTimeout, err)
	}

	cfg := Config{
		APIKey:       strings.TrimSpace(v.GetString(KeyAPIKey)),
		SpeechAPIKey: strings.TrimSpace(v.GetString(KeySpeechAPIKey)),
		Provider:     strings.ToLower(v.GetString(KeyProvider)),
		Model:        v.GetString(KeyModel),
		BaseURL:      v.GetString(KeyBaseURL),
		CameraID:     v.GetInt(KeyCamera),
		Resolution:   strings.ToLower(v.GetString(KeyResolution)),
		Interval:     interval,
		JPEGQuality:  v.GetInt(KeyJPEGQuality),
		Timeout:      timeout,
		Speech:       strings.ToLower(v.GetString(KeySpeech)),
		SpeechRate:   v.GetInt(KeySpeechRate),
		Voice:        v.GetString(KeyVoice),
		Headless:     v.GetBool(KeyHeadless),
		WindowTitle:  v.GetString(KeyWindowTitle),
		LogLevel:     v.GetString(KeyLogLevel),
		MetricsAddr:  v.GetString(KeyMetricsAddr),
		Check:        v.GetBool(KeyCheck),
	}

	if cfg.Model == "" {
		cfg.Model = DefaultModel(cfg.Provider)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// CameraMode returns the capture mode for the configured resolution preset.
func (c Config) CameraMode() camera.Config {
	if p := camera.GetPreset(c.Resolution); p != nil {
		return *p
	}
	return camera.DefaultConfig()
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(provider string) string {
	if provider == ProviderOpenAI {
		return DefaultOpenAIModel
	}
	return DefaultGeminiModel
}

// Validate checks that required configuration is present and in range.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("%w: set one of %s in the environment or a %s file",
			ErrNoAPIKey, strings.Join(CredentialEnvVars, ", "), DefaultDotEnvFile)
	}

	var problems []string
	switch c.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		problems = append(problems, fmt.Sprintf("provider must be %s or %s, got %q", ProviderGemini, ProviderOpenAI, c.Provider))
	}
	switch c.Speech {
	case SpeechLocal, SpeechOpenAI, SpeechNone:
	default:
		problems = append(problems, fmt.Sprintf("speech must be %s, %s or %s, got %q", SpeechLocal, SpeechOpenAI, SpeechNone, c.Speech))
	}
	if c.Interval <= 0 {
		problems = append(problems, fmt.Sprintf("interval must be positive, got %v", c.Interval))
	}
	if c.CameraID < 0 {
		problems = append(problems, fmt.Sprintf("camera must not be negative, got %d", c.CameraID))
	}
	if camera.GetPreset(c.Resolution) == nil {
		problems = append(problems, fmt.Sprintf("resolution must be one of %s, got %q", strings.Join(camera.PresetNames(), ", "), c.Resolution))
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		problems = append(problems, fmt.Sprintf("jpeg-quality must be between 1 and 100, got %d", c.JPEGQuality))
	}
	if c.Timeout <= 0 {
		problems = append(problems, fmt.Sprintf("timeout must be positive, got %v", c.Timeout))
	}
	if c.SpeechRate <= 0 {
		problems = append(problems, fmt.Sprintf("speech-rate must be positive, got %d", c.SpeechRate))
	}

	if len(problems) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(problems, "; "))
	}
	return nil
}

// YAML renders the configuration with the credentials masked.
func (c Config) YAML() ([]byte, error) {
	view := struct {
		APIKey       string `yaml:"api-key"`
		SpeechAPIKey string `yaml:"speech-api-key,omitempty"`
		Provider     string `yaml:"provider"`
		Model        string `yaml:"model"`
		BaseURL      string `yaml:"base-url,omitempty"`
		CameraID     int    `yaml:"camera"`
		Resolution   string `yaml:"resolution"`
		Interval     string `yaml:"interval"`
		JPEGQuality  int    `yaml:"jpeg-quality"`
		Timeout      string `yaml:"timeout"`
		Speech       string `yaml:"speech"`
		SpeechRate   int    `yaml:"speech-rate"`
		Voice        string `yaml:"voice,omitempty"`
		Headless     bool   `yaml:"headless"`
		WindowTitle  string `yaml:"window-title"`
		LogLevel     string `yaml:"log-level"`
		MetricsAddr  string `yaml:"metrics-addr,omitempty"`
		Check        bool   `yaml:"check"`
	}{
		APIKey:       Mask(c.APIKey),
		SpeechAPIKey: Mask(c.SpeechAPIKey),
		Provider:     c.Provider,
		Model:        c.Model,
		BaseURL:      c.BaseURL,
		CameraID:     c.CameraID,
		Resolution:   c.Resolution,
		Interval:     c.Interval.String(),
		JPEGQuality:  c.JPEGQuality,
		Timeout:      c.Timeout.String(),
		Speech:       c.Speech,
		SpeechRate:   c.SpeechRate,
		Voice:        c.Voice,
		Headless:     c.Headless,
		WindowTitle:  c.WindowTitle,
		LogLevel:     c.LogLevel,
		MetricsAddr:  c.MetricsAddr,
		Check:        c.Check,
	}
	return yaml.Marshal(view)
}

// Mask hides all but the last four characters of a secret.
func Mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(secret)-4) + secret[len(secret)-4:]
}

// parseDuration accepts Go durations ("3s", "1500ms") and bare numbers,
// which are read as seconds.
func parseDuration(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	return time.ParseDuration(raw)
}
