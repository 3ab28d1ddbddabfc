// Package config collects the constructible knobs for every synthetic
// codec variant and the shaped packetizer into a single struct: enumerated
// variant selection, default parameters as named constants, and a Validate
// method that catches malformed combinations before construction.
package config

import (
	"github.com/pkg/errors"

	"github.com/sergio-mena/syncodecs/codec/statcodec"
)

// Variant selects which codec.Codec implementation a Config describes.
type Variant int

// The codec variants this module can construct.
const (
	CodecPerfect Variant = iota
	CodecSimpleFPS
	CodecTrace
	CodecScaling
	CodecStatistics
)

// String returns the variant's name, for logging and flag parsing.
func (v Variant) String() string {
	switch v {
	case CodecPerfect:
		return "perfect"
	case CodecSimpleFPS:
		return "simplefps"
	case CodecTrace:
		return "trace"
	case CodecScaling:
		return "scaling"
	case CodecStatistics:
		return "statistics"
	default:
		return "unknown"
	}
}

// ParseVariant maps a flag/config string to a Variant.
func ParseVariant(s string) (Variant, error) {
	switch s {
	case "perfect":
		return CodecPerfect, nil
	case "simplefps":
		return CodecSimpleFPS, nil
	case "trace":
		return CodecTrace, nil
	case "scaling":
		return CodecScaling, nil
	case "statistics":
		return CodecStatistics, nil
	default:
		return 0, errors.Errorf("config: unknown codec variant %q", s)
	}
}

// Default parameter values, re-exported alongside the per-package defaults
// they otherwise duplicate so callers only need this package.
const (
	DefaultFPS               = 25.0
	DefaultTargetRateBps     = 500_000.0
	DefaultMaxPayloadBytes   = 1200
	DefaultPerPacketOverhead = 0

	DefaultMaxUpdateRatio  = statcodec.DefaultMaxUpdateRatio
	DefaultUpdateIntervalS = statcodec.DefaultUpdateIntervalS
	DefaultBigChangeRatio  = statcodec.DefaultBigChangeRatio
	DefaultTransientLength = statcodec.DefaultTransientLength
	DefaultIFrameRatio     = statcodec.DefaultIFrameRatio
)

// Config holds every parameter needed to construct one codec variant,
// optionally wrapped in the shaped packetizer. Fields irrelevant to the
// selected Variant are ignored; Validate reports combinations that make no
// sense rather than silently picking defaults for them.
type Config struct {
	Variant Variant

	FPS           float64
	TargetRateBps float64

	// MaxPayloadBytes for CodecPerfect, the packetizer's MTU.
	MaxPayloadBytes int

	// TraceDir/TracePrefix select the trace catalog for CodecTrace and
	// CodecScaling.
	TraceDir    string
	TracePrefix string
	FixedMode   bool

	// Statistics-codec throttle parameters; zero values fall back to the
	// statcodec package defaults in New.
	MaxUpdateRatio  float64
	UpdateIntervalS float64
	BigChangeRatio  float64
	TransientLength int
	IFrameRatio     float64
	NoiseSeed       uint64

	// Packetize wraps the constructed codec in packetizer.Packetizer when
	// true.
	Packetize         bool
	PerPacketOverhead int
}

// Default returns a Config with the library's documented defaults and
// CodecSimpleFPS selected, ready to Validate and construct against.
func Default() Config {
	return Config{
		Variant:           CodecSimpleFPS,
		FPS:               DefaultFPS,
		TargetRateBps:     DefaultTargetRateBps,
		MaxPayloadBytes:   DefaultMaxPayloadBytes,
		PerPacketOverhead: DefaultPerPacketOverhead,
	}
}

// Validate checks for malformed field combinations before a codec is
// constructed from c. It never mutates c.
func (c *Config) Validate() error {
	if c.TargetRateBps <= 0 {
		return errors.Errorf("config: TargetRateBps must be positive, got %v", c.TargetRateBps)
	}
	switch c.Variant {
	case CodecTrace, CodecScaling:
		if c.TraceDir == "" {
			return errors.New("config: TraceDir must be set for the trace and scaling variants")
		}
		if c.TracePrefix == "" {
			return errors.New("config: TracePrefix must be set for the trace and scaling variants")
		}
	case CodecPerfect:
		if c.MaxPayloadBytes <= 0 {
			return errors.New("config: MaxPayloadBytes must be positive for the perfect codec")
		}
	case CodecSimpleFPS, CodecStatistics:
		// FPS defaults apply; nothing further to require.
	default:
		return errors.Errorf("config: unknown Variant %d", c.Variant)
	}
	if !c.isTraceVariant() && c.FixedMode {
		return errors.New("config: FixedMode only applies to the trace and scaling variants")
	}
	if c.Packetize && c.MaxPayloadBytes <= 0 {
		return errors.New("config: MaxPayloadBytes must be positive when Packetize is set")
	}
	if c.Packetize && c.PerPacketOverhead < 0 {
		return errors.New("config: PerPacketOverhead must not be negative")
	}
	return nil
}

func (c *Config) isTraceVariant() bool {
	return c.Variant == CodecTrace || c.Variant == CodecScaling
}
