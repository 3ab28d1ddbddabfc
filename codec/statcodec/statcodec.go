// Package statcodec implements the statistics-based synthetic codec: a
// steady/transient phase machine driven by rate-change throttling, with
// injectable noise and I-frame amortization on large rate jumps.
package statcodec

import (
	"math"

	"github.com/sergio-mena/syncodecs/codec"
	"github.com/sergio-mena/syncodecs/internal/noise"
	"github.com/sergio-mena/syncodecs/internal/ratemeter"
	"github.com/sergio-mena/syncodecs/syncodecslog"
)

// NoiseFunc perturbs a nominal frame size (in bytes) before it is emitted.
// Production code uses the default uniform noise built on internal/noise;
// tests substitute a deterministic stub.
type NoiseFunc func(base float64) float64

type phase int

const (
	steady phase = iota
	transient
)

// Default throttle and transient-modeling parameters.
const (
	defaultFPS             = 25.0
	DefaultMaxUpdateRatio  = 0.10
	DefaultUpdateIntervalS = 0.10
	DefaultBigChangeRatio  = 0.50
	DefaultTransientLength = 10
	DefaultIFrameRatio     = 4.0
)

// Codec emits noisy, rate-tracking frame sizes, entering a transient
// I-frame-amortization phase on big target-rate jumps and throttling
// smaller ones. It is always valid once constructed.
type Codec struct {
	fps             float64
	addNoise        NoiseFunc
	maxUpdateRatio  float64
	updateIntervalS float64
	bigChangeRatio  float64
	transientLength int
	iFrameRatio     float64
	log             syncodecslog.Logger
	meter           *ratemeter.Meter

	phase                phase
	remainingBurstFrames int
	timeToUpdateS        float64
	targetRateBps        float64
	current              codec.FrameRecord
	transientIFrameSize  float64
	transientRemSize     float64
}

// New returns a Codec using the default uniform noise function seeded with
// seed, and default throttle parameters.
func New(fps, initialTargetBps float64, seed uint64, log syncodecslog.Logger) *Codec {
	return NewWithNoise(fps, initialTargetBps, NoiseFunc(noise.NewDefaultUniform(seed)), log)
}

// NewWithNoise returns a Codec using addNoise and default throttle
// parameters; addNoise must not be nil.
func NewWithNoise(fps, initialTargetBps float64, addNoise NoiseFunc, log syncodecslog.Logger) *Codec {
	return NewWithOptions(fps, initialTargetBps, addNoise,
		DefaultMaxUpdateRatio, DefaultUpdateIntervalS, DefaultBigChangeRatio,
		DefaultIFrameRatio, DefaultTransientLength, log)
}

// NewWithOptions is the fully-parameterized constructor, exposing every
// throttle and transient-modeling knob.
func NewWithOptions(fps, initialTargetBps float64, addNoise NoiseFunc,
	maxUpdateRatio, updateIntervalS, bigChangeRatio, iFrameRatio float64,
	transientLength int, log syncodecslog.Logger) *Codec {
	if fps <= 0 {
		fps = defaultFPS
	}
	if transientLength <= 0 {
		transientLength = DefaultTransientLength
	}
	c := &Codec{
		fps:             fps,
		addNoise:        addNoise,
		maxUpdateRatio:  maxUpdateRatio,
		updateIntervalS: updateIntervalS,
		bigChangeRatio:  bigChangeRatio,
		transientLength: transientLength,
		iFrameRatio:     iFrameRatio,
		log:             syncodecslog.OrNoop(log),
		meter:           ratemeter.New(),
		targetRateBps:   initialTargetBps,
	}
	c.current = c.record()
	return c
}

// record computes the frame for the codec's current phase and position
// within a transient window.
func (c *Codec) record() codec.FrameRecord {
	var size float64
	switch c.phase {
	case transient:
		if c.remainingBurstFrames == c.transientLength {
			size = c.addNoise(c.transientIFrameSize)
		} else {
			size = c.addNoise(c.transientRemSize)
		}
	default:
		base := c.targetRateBps / (8 * c.fps)
		size = c.addNoise(base)
	}
	if size < 0 {
		size = 0
	}
	return codec.FrameRecord{
		Payload:      make([]byte, int(math.Round(size))),
		DelaySeconds: 1 / c.fps,
	}
}

// Current implements codec.Codec.
func (c *Codec) Current() codec.FrameRecord { return c.current }

// Valid implements codec.Codec; a statistics codec is always valid.
func (c *Codec) Valid() bool { return true }

// TargetRate implements codec.Codec.
func (c *Codec) TargetRate() float64 { return c.targetRateBps }

// Bitrate reports the observed output bitrate over recently reported
// frames; a diagnostic accessor beyond the codec.Codec contract.
func (c *Codec) Bitrate() float64 { return c.meter.Bitrate() }

// Advance implements codec.Codec: it decrements the update throttle timer,
// recomputes the current frame for the present phase/position, and steps
// the transient countdown back to Steady when it reaches zero.
func (c *Codec) Advance() {
	c.timeToUpdateS -= 1 / c.fps
	if c.timeToUpdateS < 0 {
		c.timeToUpdateS = 0
	}
	c.current = c.record()
	c.meter.Report(len(c.current.Payload))
	if c.phase == transient {
		c.remainingBurstFrames--
		if c.remainingBurstFrames <= 0 {
			c.phase = steady
		}
	}
}

// SetTargetRate implements codec.Codec, applying the throttle rules in
// order: reject non-positive rates,
// reject while the update throttle is active, adopt and enter transient on
// a big change, clamp smaller-but-still-large changes, else adopt outright.
func (c *Codec) SetTargetRate(newBps float64) float64 {
	if newBps <= 0 {
		return c.targetRateBps
	}
	if c.timeToUpdateS > 0 {
		return c.targetRateBps
	}

	old := c.targetRateBps
	ratio := math.Abs(newBps-old) / old

	switch {
	case ratio >= c.bigChangeRatio:
		c.targetRateBps = newBps
		c.enterTransient()
		c.timeToUpdateS = c.updateIntervalS
		return newBps
	case c.maxUpdateRatio > 0 && ratio > c.maxUpdateRatio:
		var clamped float64
		if newBps > old {
			clamped = old * (1 + c.maxUpdateRatio)
		} else {
			clamped = old * (1 - c.maxUpdateRatio)
		}
		c.targetRateBps = clamped
		c.timeToUpdateS = c.updateIntervalS
		return clamped
	default:
		c.targetRateBps = newBps
		c.timeToUpdateS = c.updateIntervalS
		return newBps
	}
}

// enterTransient precomputes the nominal I-frame size and the amortized
// size for the remaining transientLength-1 frames, floored at 0.2*base, so
// that the mean frame size over the whole window equals base whenever the
// floor is not hit.
func (c *Codec) enterTransient() {
	base := c.targetRateBps / (8 * c.fps)
	iSize := c.iFrameRatio * base
	excess := iSize - base

	remSize := base
	if remCount := float64(c.transientLength - 1); remCount > 0 {
		remSize = base - excess/remCount
	}
	if floor := 0.2 * base; remSize < floor {
		remSize = floor
	}

	c.transientIFrameSize = iSize
	c.transientRemSize = remSize
	c.phase = transient
	c.remainingBurstFrames = c.transientLength
	c.log.Log(syncodecslog.Debug, "statcodec entering transient phase",
		"base", base, "iFrameSize", iSize, "remSize", remSize)
}
