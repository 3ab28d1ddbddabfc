// Package perfect implements the simplest synthetic codec variant: every
// frame is exactly the configured MTU-sized payload, and the inter-frame
// delay is whatever is required to hit the current target bitrate exactly.
package perfect

import "github.com/sergio-mena/syncodecs/codec"

// Codec emits fixed-size packets at whatever cadence matches its target
// rate. It is always valid once constructed.
type Codec struct {
	maxPayloadBytes int
	targetRateBps   float64
	current         codec.FrameRecord
}

// New returns a Codec that always emits payloads of maxPayloadBytes, paced
// to targetRateBps.
func New(maxPayloadBytes int, targetRateBps float64) *Codec {
	c := &Codec{maxPayloadBytes: maxPayloadBytes}
	c.SetTargetRate(targetRateBps)
	c.current = c.record()
	return c
}

func (c *Codec) record() codec.FrameRecord {
	return codec.FrameRecord{
		Payload:      make([]byte, c.maxPayloadBytes),
		DelaySeconds: float64(c.maxPayloadBytes*8) / c.targetRateBps,
	}
}

// Current implements codec.Codec.
func (c *Codec) Current() codec.FrameRecord { return c.current }

// Advance implements codec.Codec.
func (c *Codec) Advance() { c.current = c.record() }

// Valid implements codec.Codec; a perfect codec is always valid.
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
