package config

import (
	"github.com/pkg/errors"

	"github.com/sergio-mena/syncodecs/codec"
	"github.com/sergio-mena/syncodecs/codec/perfect"
	"github.com/sergio-mena/syncodecs/codec/simplefps"
	"github.com/sergio-mena/syncodecs/codec/statcodec"
	"github.com/sergio-mena/syncodecs/codec/tracecodec"
	"github.com/sergio-mena/syncodecs/internal/noise"
	"github.com/sergio-mena/syncodecs/packetizer"
	"github.com/sergio-mena/syncodecs/syncodecslog"
	"github.com/sergio-mena/syncodecs/trace"
)

// New validates c and constructs the codec.Codec it describes, wrapping it
// in a packetizer.Packetizer when c.Packetize is set. log is threaded
// through to every constructor that accepts one; it may be nil.
func New(c Config, log syncodecslog.Logger) (codec.Codec, error) {
	if err := c.Validate(); err != nil {
		return nil, errors.Wrap(err, "config: invalid configuration")
	}

	var inner codec.Codec
	var err error
	switch c.Variant {
	case CodecPerfect:
		inner = perfect.New(c.MaxPayloadBytes, c.TargetRateBps)
	case CodecSimpleFPS:
		inner = simplefps.New(c.FPS, c.TargetRateBps)
	case CodecTrace:
		inner, err = buildTrace(c, log)
	case CodecScaling:
		inner, err = buildScaling(c, log)
	case CodecStatistics:
		inner = buildStatistics(c, log)
	default:
		return nil, errors.Errorf("config: unknown Variant %d", c.Variant)
	}
	if err != nil {
		return nil, err
	}

	if !c.Packetize {
		return inner, nil
	}
	return packetizer.New(inner, c.MaxPayloadBytes, c.PerPacketOverhead, log), nil
}

func buildTrace(c Config, log syncodecslog.Logger) (codec.Codec, error) {
	tc, err := tracecodec.New(c.TraceDir, c.TracePrefix, c.FPS, c.FixedMode, trace.DefaultLineReader{}, log)
	if err != nil {
		return tc, errors.Wrap(err, "config: could not build trace codec")
	}
	tc.SetTargetRate(c.TargetRateBps)
	return tc, nil
}

func buildScaling(c Config, log syncodecslog.Logger) (codec.Codec, error) {
	sc, err := tracecodec.NewScaling(c.TraceDir, c.TracePrefix, c.FPS, c.FixedMode, trace.DefaultLineReader{}, log)
	if err != nil {
		return sc, errors.Wrap(err, "config: could not build scaling codec")
	}
	sc.SetTargetRate(c.TargetRateBps)
	return sc, nil
}

func buildStatistics(c Config, log syncodecslog.Logger) codec.Codec {
	maxUpdateRatio := orDefault(c.MaxUpdateRatio, DefaultMaxUpdateRatio)
	updateInterval := orDefault(c.UpdateIntervalS, DefaultUpdateIntervalS)
	bigChangeRatio := orDefault(c.BigChangeRatio, DefaultBigChangeRatio)
	iFrameRatio := orDefault(c.IFrameRatio, DefaultIFrameRatio)
	transientLength := c.TransientLength
	if transientLength <= 0 {
		transientLength = DefaultTransientLength
	}
	addNoise := statcodec.NoiseFunc(noise.NewDefaultUniform(c.NoiseSeed))
	return statcodec.NewWithOptions(c.FPS, c.TargetRateBps, addNoise,
		maxUpdateRatio, updateInterval, bigChangeRatio, iFrameRatio, transientLength, log)
}

func orDefault(v, def float64) float64 {
	if v <= 0 {
		return def
	}
	return v
}
