// Package packetizer implements the shaped packetizer: it wraps any
// codec.Codec and re-exposes the same pull contract, but fragments the
// inner codec's frames into MTU-bounded packets spread evenly across the
// inner frame's delay, and back-pressures the inner codec's target rate to
// compensate for per-packet overhead.
package packetizer

import (
	"math"

	"github.com/sergio-mena/syncodecs/codec"
	"github.com/sergio-mena/syncodecs/internal/ratemeter"
	"github.com/sergio-mena/syncodecs/syncodecslog"
)

// Packetizer owns an inner codec.Codec exclusively and slices its frames
// into packets no larger than maxPayload, spreading the inner frame's delay
// evenly across the resulting fragments. It satisfies codec.Codec itself,
// so congestion controllers drive it exactly like any other codec variant.
//
// A Packetizer must not be copied: it holds exclusive ownership of its
// inner Codec. Pass a pointer; never dereference-copy a Packetizer value.
type Packetizer struct {
	inner           codec.Codec
	maxPayload      int
	perPacketOhead  int
	log             syncodecslog.Logger
	meter           *ratemeter.Meter

	targetRateBps      float64
	bytesToSend        []byte
	secondsToNextInner float64
	lastOverheadFactor float64
	current            codec.FrameRecord
	totalFragments     int
}

// New wraps inner, fragmenting its output into packets no larger than
// maxPayload bytes and charging perPacketOverhead bytes of wire overhead
// per fragment when back-pressuring the inner codec's target rate. New
// panics if inner is nil or maxPayload <= 0: both are programmer errors,
// not runtime conditions a caller can recover from.
func New(inner codec.Codec, maxPayload, perPacketOverhead int, log syncodecslog.Logger) *Packetizer {
	if inner == nil {
		panic("syncodecs/packetizer: inner codec must not be nil")
	}
	if maxPayload <= 0 {
		panic("syncodecs/packetizer: maxPayload must be positive")
	}
	p := &Packetizer{
		inner:              inner,
		maxPayload:         maxPayload,
		perPacketOhead:     perPacketOverhead,
		log:                syncodecslog.OrNoop(log),
		meter:              ratemeter.New(),
		lastOverheadFactor: 1.0,
		targetRateBps:      inner.TargetRate(),
	}
	p.pullInner()
	p.current = p.fragment()
	return p
}

// Current implements codec.Codec.
func (p *Packetizer) Current() codec.FrameRecord { return p.current }

// Valid implements codec.Codec: a Packetizer is valid iff its inner codec
// is valid.
func (p *Packetizer) Valid() bool { return p.inner.Valid() }

// TargetRate implements codec.Codec, reporting the wire-rate goal most
// recently requested of the packetizer itself, not the (lower)
// payload-only rate pushed to the inner codec.
func (p *Packetizer) TargetRate() float64 { return p.targetRateBps }

// SetTargetRate implements codec.Codec. The packetizer does not throttle
// rate changes itself; it stores the requested wire-rate goal and derives
// the inner codec's payload-rate goal from it at the next pull, in
// Advance.
func (p *Packetizer) SetTargetRate(newBps float64) float64 {
	if newBps <= 0 {
		return p.targetRateBps
	}
	p.targetRateBps = newBps
	return newBps
}

// Bitrate reports the observed output bitrate over recently emitted
// fragments; a diagnostic accessor beyond the codec.Codec contract.
func (p *Packetizer) Bitrate() float64 { return p.meter.Bitrate() }

// Advance implements codec.Codec: it slices off the next fragment of the
// buffered inner frame, pulling a fresh inner frame first if the buffer is
// empty.
func (p *Packetizer) Advance() {
	if !p.inner.Valid() {
		return
	}
	if len(p.bytesToSend) == 0 {
		p.pullInner()
	}
	p.current = p.fragment()
	p.meter.Report(len(p.current.Payload))
}

// pullInner pushes the overhead-compensated rate goal to the inner codec,
// advances it, and refills bytesToSend with its payload. The goal is
// derived from the packetizer's own target rate and the overhead factor
// observed on the previous inner frame (1.0 for the very first pull).
func (p *Packetizer) pullInner() {
	goal := p.targetRateBps / p.lastOverheadFactor
	p.inner.SetTargetRate(goal)
	p.inner.Advance()

	frame := p.inner.Current()
	p.bytesToSend = frame.Payload
	p.secondsToNextInner = frame.DelaySeconds
	p.totalFragments = p.fragmentCount(len(p.bytesToSend))
	p.lastOverheadFactor = p.overheadFactor(len(p.bytesToSend), p.totalFragments)
	p.log.Log(syncodecslog.Debug, "packetizer pulled inner frame",
		"bytes", len(p.bytesToSend), "fragments", p.totalFragments, "overheadFactor", p.lastOverheadFactor)
}

// fragmentCount returns the number of output packets n bytes of inner
// payload will be sliced into: at least one, even for a zero-length frame,
// so the inner delay is always carried by some fragment.
func (p *Packetizer) fragmentCount(n int) int {
	if n == 0 {
		return 1
	}
	return int(math.Ceil(float64(n) / float64(p.maxPayload)))
}

// overheadFactor estimates the ratio of wire bytes to payload bytes for the
// frame that was just pulled, used to back-pressure the next pull's target
// rate toward the payload rate the inner codec actually needs to produce.
func (p *Packetizer) overheadFactor(payloadLen, fragments int) float64 {
	if payloadLen == 0 {
		return 1.0
	}
	return 1 + float64(fragments*p.perPacketOhead)/float64(payloadLen)
}

// fragment slices the next output record off bytesToSend, evenly spreading
// the buffered inner delay across the fixed number of fragments the
// current inner frame was split into (totalFragments), so every fragment
// of the same inner frame reports the same delay regardless of how many
// fragments have already been emitted.
func (p *Packetizer) fragment() codec.FrameRecord {
	take := p.maxPayload
	if take > len(p.bytesToSend) {
		take = len(p.bytesToSend)
	}

	slots := p.totalFragments
	if slots <= 0 {
		slots = 1
	}
	delay := p.secondsToNextInner / float64(slots)

	rec := codec.FrameRecord{
		Payload:      make([]byte, take),
		DelaySeconds: delay,
	}
	p.bytesToSend = p.bytesToSend[take:]
	return rec
}
