package tracecodec

import (
	"github.com/sergio-mena/syncodecs/resolution"
	"github.com/sergio-mena/syncodecs/syncodecslog"
	"github.com/sergio-mena/syncodecs/trace"
)

// Codec replays a trace catalog, selecting a bitrate-matched frame at the
// current resolution and frame index. In variable mode it steps resolution
// by at most one catalog label per Advance: up when the bits-per-pixel of
// the matched bitrate falls below the low threshold, down when it exceeds
// the high threshold.
type Codec struct {
	*base
	lastMatchedRateKbps int
}

// New loads the trace catalog under dir (files named prefix_<label>_<kbps>.txt)
// and returns a Codec running at fps frames per second. fixed selects
// fixed-resolution mode from construction. The codec is usable (but
// Valid() == false) even when err is non-nil or the catalog is empty or
// inconsistent; callers should still check Valid() before relying on
// Current().
func New(dir, prefix string, fps float64, fixed bool, reader trace.LineReader, log syncodecslog.Logger) (*Codec, error) {
	b, err := newBase(dir, prefix, fps, fixed, reader, log)
	c := &Codec{base: b}
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

// frameSize matches a single trace bitrate at the current resolution and
// looks up its frame size at the current frame index.
func (c *Codec) frameSize() int {
	kbps, ok := c.matchBitrateAt(c.currentResolution)
	if !ok {
		return 0
	}
	c.lastMatchedRateKbps = kbps
	return c.catalog.FrameSize(c.currentResolution, kbps, c.currentFrameIdx)
}

// bppRateBps reports the matched trace bitrate (in bits per second) at
// label, which is what the base variant uses to drive resolution
// adjustment.
func (c *Codec) bppRateBps(label resolution.Label) float64 {
	kbps, ok := c.matchBitrateAt(label)
	if !ok {
		return 0
	}
	return float64(kbps) * 1000
}

// MatchedRate returns the trace bitrate, in kbps, used to build the current
// frame. It is a diagnostic accessor, not part of the codec.Codec contract.
func (c *Codec) MatchedRate() int { return c.lastMatchedRateKbps }
