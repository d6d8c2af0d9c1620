// Package config loads the posture service settings from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/swdee/go-posture"
	"github.com/swdee/go-posture/pipeline"
	"github.com/swdee/go-posture/preprocess"
	"github.com/swdee/go-posture/rules"
)

// EnvPrefix is prepended to every environment variable, so the key
// model.file is read from POSTURE_MODEL_FILE
const EnvPrefix = "POSTURE"

// Config holds runtime configuration values for the posture service.
type Config struct {
	ModelFile string `validate:"required"`
	PoolSize  int    `validate:"gte=1,lte=64"`

	FrameWidth  int `validate:"gte=1,lte=8192"`
	FrameHeight int `validate:"gte=1,lte=8192"`

	// Detection holds the extractor thresholds, already raised to the strict
	// preset when StrictDetection is set
	Detection       posture.ExtractorConfig
	StrictDetection bool

	DefaultMode       posture.Mode
	UnknownModePolicy pipeline.ModePolicy
	Thresholds        rules.Thresholds

	ListenAddr   string        `validate:"required"`
	ReadTimeout  time.Duration `validate:"gt=0"`
	WriteTimeout time.Duration `validate:"gt=0"`
	// MaxFrameBytes limits the size of uploaded frames
	MaxFrameBytes int `validate:"gte=1024"`

	LogLevel zerolog.Level
}

// ServiceOptions returns the pipeline options described by the config
func (c Config) ServiceOptions() pipeline.Options {
	return pipeline.Options{
		DefaultMode:       c.DefaultMode,
		UnknownModePolicy: c.UnknownModePolicy,
	}
}

// Normalizer returns a frame normalizer of the configured size
func (c Config) Normalizer() (*preprocess.Normalizer, error) {
	return preprocess.NewNormalizer(c.FrameWidth, c.FrameHeight)
}

// setDefaults registers the default of every key
func setDefaults(v *viper.Viper) {
	th := rules.DefaultThresholds()
	det := posture.DefaultExtractorConfig()

	v.SetDefault("model.file", "")
	v.SetDefault("model.pool_size", 1)
	v.SetDefault("frame.width", preprocess.DefaultWidth)
	v.SetDefault("frame.height", preprocess.DefaultHeight)

	v.SetDefault("detection.min_confidence", det.MinDetectionConfidence)
	v.SetDefault("detection.min_tracking_confidence", det.MinTrackingConfidence)
	v.SetDefault("detection.strict", false)

	v.SetDefault("mode.default", posture.DefaultMode.String())
	v.SetDefault("mode.unknown_policy", pipeline.PolicyDefault.String())

	v.SetDefault("rules.side", th.Side.String())
	v.SetDefault("rules.shoulder_slope", th.ShoulderSlope)
	v.SetDefault("rules.hip_slope", th.HipSlope)
	v.SetDefault("rules.squat_knee_max", th.SquatKneeMax)
	v.SetDefault("rules.squat_knee_min", th.SquatKneeMin)
	v.SetDefault("rules.pushup_elbow_max", th.PushUpElbowMax)
	v.SetDefault("rules.pushup_elbow_min", th.PushUpElbowMin)
	v.SetDefault("rules.plank_back_min", th.PlankBackMin)
	v.SetDefault("rules.plank_back_max", th.PlankBackMax)
	v.SetDefault("rules.lunge_knee_max", th.LungeKneeMax)
	v.SetDefault("rules.lunge_knee_min", th.LungeKneeMin)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("server.max_frame_bytes", 10<<20)

	v.SetDefault("log.level", "info")
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return FromViper(v)
}

// FromViper builds and validates a Config from the keys held by v.  Missing
// keys take their defaults
func FromViper(v *viper.Viper) (Config, error) {

	setDefaults(v)

	mode, err := posture.ParseMode(v.GetString("mode.default"))

	if err != nil {
		return Config{}, fmt.Errorf("invalid default mode: %w", err)
	}

	policy, err := pipeline.ParseModePolicy(v.GetString("mode.unknown_policy"))

	if err != nil {
		return Config{}, fmt.Errorf("invalid unknown mode policy: %w", err)
	}

	side, err := rules.ParseSide(v.GetString("rules.side"))

	if err != nil {
		return Config{}, fmt.Errorf("invalid rule side: %w", err)
	}

	readTimeout, err := time.ParseDuration(v.GetString("server.read_timeout"))

	if err != nil {
		return Config{}, fmt.Errorf("invalid server read timeout: %w", err)
	}

	writeTimeout, err := time.ParseDuration(v.GetString("server.write_timeout"))

	if err != nil {
		return Config{}, fmt.Errorf("invalid server write timeout: %w", err)
	}

	level, err := zerolog.ParseLevel(strings.ToLower(v.GetString("log.level")))

	if err != nil {
		return Config{}, fmt.Errorf("invalid log level: %w", err)
	}

	cfg := Config{
		ModelFile:   v.GetString("model.file"),
		PoolSize:    v.GetInt("model.pool_size"),
		FrameWidth:  v.GetInt("frame.width"),
		FrameHeight: v.GetInt("frame.height"),
		Detection: posture.ExtractorConfig{
			MinDetectionConfidence: v.GetFloat64("detection.min_confidence"),
			MinTrackingConfidence:  v.GetFloat64("detection.min_tracking_confidence"),
		},
		StrictDetection:   v.GetBool("detection.strict"),
		DefaultMode:       mode,
		UnknownModePolicy: policy,
		Thresholds: rules.Thresholds{
			ShoulderSlope:  v.GetFloat64("rules.shoulder_slope"),
			HipSlope:       v.GetFloat64("rules.hip_slope"),
			SquatKneeMax:   v.GetFloat64("rules.squat_knee_max"),
			SquatKneeMin:   v.GetFloat64("rules.squat_knee_min"),
			PushUpElbowMax: v.GetFloat64("rules.pushup_elbow_max"),
			PushUpElbowMin: v.GetFloat64("rules.pushup_elbow_min"),
			PlankBackMin:   v.GetFloat64("rules.plank_back_min"),
			PlankBackMax:   v.GetFloat64("rules.plank_back_max"),
			LungeKneeMax:   v.GetFloat64("rules.lunge_knee_max"),
			LungeKneeMin:   v.GetFloat64("rules.lunge_knee_min"),
			Side:           side,
		},
		ListenAddr:    v.GetString("server.addr"),
		ReadTimeout:   readTimeout,
		WriteTimeout:  writeTimeout,
		MaxFrameBytes: v.GetInt("server.max_frame_bytes"),
		LogLevel:      level,
	}

	if cfg.StrictDetection {
		cfg.Detection = strict(cfg.Detection)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// strict raises both detection thresholds to at least the strict preset
func strict(c posture.ExtractorConfig) posture.ExtractorConfig {
	s := posture.StrictExtractorConfig()

	if c.MinDetectionConfidence > s.MinDetectionConfidence {
		s.MinDetectionConfidence = c.MinDetectionConfidence
	}

	if c.MinTrackingConfidence > s.MinTrackingConfidence {
		s.MinTrackingConfidence = c.MinTrackingConfidence
	}

	return s
}
