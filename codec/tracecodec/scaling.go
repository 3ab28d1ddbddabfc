package tracecodec

import (
	"math"

	"github.com/sergio-mena/syncodecs/resolution"
	"github.com/sergio-mena/syncodecs/syncodecslog"
	"github.com/sergio-mena/syncodecs/trace"
)

// ScalingCodec replays the same trace catalog as Codec but linearly
// interpolates frame size between the two trace bitrates bracketing the
// exact target rate (extrapolating from whichever single bitrate is
// available if the target falls outside the catalog's range). It shares
// resolution adjustment and frame-index walking with Codec through the
// embedded base, but drives resolution adjustment off the exact target
// rate rather than a matched trace bitrate.
type ScalingCodec struct {
	*base
}

// NewScaling loads the trace catalog under dir and returns a ScalingCodec
// running at fps frames per second. See New for the meaning of the other
// parameters and of a non-nil err.
func NewScaling(dir, prefix string, fps float64, fixed bool, reader trace.LineReader, log syncodecslog.Logger) (*ScalingCodec, error) {
	b, err := newBase(dir, prefix, fps, fixed, reader, log)
	c := &ScalingCodec{base: b}
	b.frameSize = c.frameSize
	b.bppRateBps = c.bppRateBps
	if err != nil {
		return c, err
	}
	if b.valid {
		b.populateCurrent()
	}
	return c, nil
}

// bppRateBps always returns the exact target rate: the scaling variant's
// resolution adjustment is not tied to any single trace bitrate.
func (c *ScalingCodec) bppRateBps(resolution.Label) float64 {
	return c.targetRateBps
}

// frameSize interpolates between the bracketing trace bitrates at the
// current resolution and frame index, extrapolating from a single bound
// when the target rate falls outside the catalog's range for this label.
// When the target rate exactly equals an available bitrate, that bitrate is
// the low bound and the interpolation ratio is zero, so the result is an
// exact lookup of the low bound's frame size.
func (c *ScalingCodec) frameSize() int {
	label := c.currentResolution
	bitrates := c.catalog.Bitrates(label)
	if len(bitrates) == 0 {
		return 0
	}
	targetKbps := c.targetRateBps / 1000

	lowRate, hasLow := -1, false
	highRate, hasHigh := -1, false
	for _, r := range bitrates {
		if float64(r) <= targetKbps && (!hasLow || r > lowRate) {
			lowRate, hasLow = r, true
		}
		if float64(r) > targetKbps && (!hasHigh || r < highRate) {
			highRate, hasHigh = r, true
		}
	}

	idx := c.currentFrameIdx
	switch {
	case hasLow && hasHigh:
		sLow := float64(c.catalog.FrameSize(label, lowRate, idx))
		sHigh := float64(c.catalog.FrameSize(label, highRate, idx))
		ratio := (targetKbps - float64(lowRate)) / float64(highRate-lowRate)
		return roundNonNeg(sLow + (sHigh-sLow)*ratio)
	case hasLow:
		sLow := float64(c.catalog.FrameSize(label, lowRate, idx))
		return roundNonNeg(sLow * targetKbps / float64(lowRate))
	case hasHigh:
		sHigh := float64(c.catalog.FrameSize(label, highRate, idx))
		return roundNonNeg(sHigh * targetKbps / float64(highRate))
	default:
		return 0
	}
}

func roundNonNeg(v float64) int {
	if v < 0 {
		return 0
	}
	return int(math.Round(v))
}
