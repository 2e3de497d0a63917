package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/teslashibe/pathsense/internal/config"
	"github.com/teslashibe/pathsense/internal/log"
	"github.com/teslashibe/pathsense/pkg/camera"
)

var (
	cfgFile string
	envFile string

	v   = viper.New()
	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "pathsense",
	Short: "Spoken obstacle guidance from a webcam",
	Long: `pathsense captures webcam frames, asks a vision-language model which
obstacles lie in the user's path, and speaks the answer aloud.

The API key is read from GEMINI_API_KEY, GOOGLE_API_KEY or OPENAI_API_KEY,
optionally loaded from a .env file in the working directory.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
	RunE:              runAssist,
}

// Execute runs the command tree and exits with status 1 on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	config.SetDefaults(v)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "YAML config file")
	pf.StringVar(&envFile, "env-file", config.DefaultDotEnvFile, "dotenv file merged into the environment")
	pf.String(config.KeyLogLevel, config.DefaultLogLevel, "log level (debug, info, warn, error)")
	pf.String(config.KeyProvider, config.DefaultProvider, "vision provider (gemini, openai)")
	pf.String(config.KeyModel, "", "model name (default depends on provider)")
	pf.String(config.KeyBaseURL, "", "override the provider API base URL")
	pf.Duration(config.KeyTimeout, config.DefaultTimeout, "timeout for each remote request")
	pf.Int(config.KeyJPEGQuality, config.DefaultJPEGQuality, "JPEG quality of uploaded frames (1-100)")
	pf.String(config.KeySpeech, config.DefaultSpeech, "speech engine (local, openai, none)")
	pf.Int(config.KeySpeechRate, config.DefaultSpeechRate, "speaking rate in words per minute")
	pf.String(config.KeyVoice, "", "voice name for the speech engine")
	pf.Bool(config.KeyCheck, false, "verify provider credentials before the first analysis")

	f := rootCmd.Flags()
	f.Int(config.KeyCamera, config.DefaultCamera, "camera device index")
	f.Duration(config.KeyInterval, config.DefaultInterval, "minimum time between analyses")
	f.String(config.KeyResolution, config.DefaultResolution, "capture preset ("+strings.Join(camera.PresetNames(), ", ")+")")
	f.Bool(config.KeyHeadless, false, "run without the live video window")
	f.String(config.KeyWindowTitle, config.DefaultWindowTitle, "title of the live video window")
	f.String(config.KeyMetricsAddr, "", "serve Prometheus metrics on this address (e.g. :9090)")

	if err := v.BindPFlags(pf); err != nil {
		panic(err)
	}
	if err := v.BindPFlags(f); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(configCmd, describeCmd)
}

// loadConfig resolves configuration before any component is constructed.
func loadConfig(cmd *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(envFile); err != nil {
		return err
	}
	if err := config.BindEnv(v); err != nil {
		return err
	}
	if err := config.ReadFile(v, cfgFile); err != nil {
		return err
	}

	loaded, err := config.Load(v)
	if err != nil {
		return err
	}
	cfg = loaded

	log.Init(cfg.LogLevel)
	log.L().Debug("configuration loaded",
		slog.String("command", cmd.Name()),
		slog.String("provider", cfg.Provider),
		slog.String("model", cfg.Model),
		slog.Duration("interval", cfg.Interval))
	return nil
}
