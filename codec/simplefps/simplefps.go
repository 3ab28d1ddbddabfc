// Package simplefps implements a synthetic codec that emits one frame per
// 1/fps seconds, sized to whatever the current target bitrate implies at
// that fixed frame rate.
package simplefps

import (
	"math"

	"github.com/sergio-mena/syncodecs/codec"
)

// DefaultFPS is the frame rate used when a Codec is constructed with fps<=0.
const DefaultFPS = 25.0

// Codec emits one frame every 1/fps seconds; frame size tracks the target
// bitrate. It is always valid once constructed.
type Codec struct {
	fps           float64
	targetRateBps float64
	current       codec.FrameRecord
}

// New returns a Codec running at fps frames per second (DefaultFPS if
// fps<=0), paced to targetRateBps.
func New(fps, targetRateBps float64) *Codec {
	if fps <= 0 {
		fps = DefaultFPS
	}
	c := &Codec{fps: fps}
	c.SetTargetRate(targetRateBps)
	c.current = c.record()
	return c
}

func (c *Codec) record() codec.FrameRecord {
	size := int(math.Round(c.targetRateBps / (8 * c.fps)))
	if size < 0 {
		size = 0
	}
	return codec.FrameRecord{
		Payload:      make([]byte, size),
		DelaySeconds: 1 / c.fps,
	}
}

// Current implements codec.Codec.
func (c *Codec) Current() codec.FrameRecord { return c.current }

// Advance implements codec.Codec.
func (c *Codec) Advance() { c.current = c.record() }

// Valid implements codec.Codec; a simple-fps codec is always valid.
func (c *Codec) Valid() bool { return true }

// TargetRate implements codec.Codec.
func (c *Codec) TargetRate() float64 { return c.targetRateBps }

// SetTargetRate implements codec.Codec. Rates <= 0 are rejected.
func (c *Codec) SetTargetRate(newBps float64) float64 {
	if newBps <= 0 {
		return c.targetRateBps
	}
	c.targetRateBps = newBps
	return c.targetRateBps
}
