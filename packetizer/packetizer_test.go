package packetizer

import (
	"testing"

	"github.com/sergio-mena/syncodecs/codec"
)

// scriptedCodec is a minimal codec.Codec stub that replays a fixed sequence
// of frames, recording the rates the packetizer pushes to it so tests can
// assert on the back-pressure behavior without needing a real inner codec.
type scriptedCodec struct {
	frames        []codec.FrameRecord
	idx           int
	targetRateBps float64
	pushedRates   []float64
	valid         bool
}

func newScriptedCodec(frames []codec.FrameRecord) *scriptedCodec {
	return &scriptedCodec{frames: frames, idx: -1, valid: true, targetRateBps: 1}
}

func (s *scriptedCodec) Current() codec.FrameRecord { return s.frames[s.idx] }

func (s *scriptedCodec) Advance() {
	s.idx++
	if s.idx >= len(s.frames) {
		s.idx = len(s.frames) - 1
		s.valid = false
	}
}

func (s *scriptedCodec) Valid() bool { return s.valid }

func (s *scriptedCodec) TargetRate() float64 { return s.targetRateBps }

func (s *scriptedCodec) SetTargetRate(newBps float64) float64 {
	if newBps <= 0 {
		return s.targetRateBps
	}
	s.pushedRates = append(s.pushedRates, newBps)
	s.targetRateBps = newBps
	return newBps
}

// TestFragmentSizesAndDelays: a single 3500-byte, 0.040s inner frame
// sliced at a 1000-byte MTU with zero overhead should yield four fragments
// of {1000,1000,1000,500} bytes, each carrying a 0.010s delay.
func TestFragmentSizesAndDelays(t *testing.T) {
	inner := newScriptedCodec([]codec.FrameRecord{
		{Payload: make([]byte, 0), DelaySeconds: 0},
		{Payload: make([]byte, 3500), DelaySeconds: 0.040},
	})
	p := New(inner, 1000, 0, nil)
	p.Advance() // construction pulls the leading zero-length sentinel frame

	wantSizes := []int{1000, 1000, 1000, 500}
	for i, want := range wantSizes {
		r := p.Current()
		if len(r.Payload) != want {
			t.Fatalf("fragment %d: payload len = %d, want %d", i, len(r.Payload), want)
		}
		if diff := r.DelaySeconds - 0.010; diff > 1e-9 || diff < -1e-9 {
			t.Fatalf("fragment %d: delay = %v, want 0.010", i, r.DelaySeconds)
		}
		p.Advance()
	}
}

// TestDelayAndPayloadConservation checks that across every fragment of a
// single inner frame, summed delay equals the inner frame's delay and
// summed payload length equals the inner frame's payload length.
func TestDelayAndPayloadConservation(t *testing.T) {
	inner := newScriptedCodec([]codec.FrameRecord{
		{Payload: make([]byte, 0), DelaySeconds: 0},
		{Payload: make([]byte, 3700), DelaySeconds: 0.033},
		{Payload: make([]byte, 0), DelaySeconds: 0}, // sentinel to stop after one frame's fragments
	})
	p := New(inner, 1200, 0, nil)
	p.Advance() // construction pulls the leading zero-length sentinel frame

	var totalDelay float64
	var totalBytes int
	for {
		r := p.Current()
		totalDelay += r.DelaySeconds
		totalBytes += len(r.Payload)
		if len(p.bytesToSend) == 0 {
			break
		}
		p.Advance()
	}

	if totalBytes != 3700 {
		t.Errorf("total payload bytes = %d, want 3700", totalBytes)
	}
	if diff := totalDelay - 0.033; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("total delay = %v, want 0.033", totalDelay)
	}
}

// TestOverheadBackPressure verifies that the rate pushed to the inner codec
// on the second pull is reduced to compensate for the per-packet overhead
// observed on the first inner frame.
func TestOverheadBackPressure(t *testing.T) {
	inner := newScriptedCodec([]codec.FrameRecord{
		{Payload: make([]byte, 0), DelaySeconds: 0},
		{Payload: make([]byte, 2000), DelaySeconds: 0.010}, // 2 fragments @ 1000 MTU
		{Payload: make([]byte, 2000), DelaySeconds: 0.010},
	})
	p := New(inner, 1000, 40, nil) // 40 bytes overhead per packet
	p.SetTargetRate(1_000_000)

	// Advance past construction's leftover empty frame, then drain both
	// fragments of the first real inner frame to trigger the second pull.
	p.Advance()
	p.Advance()
	p.Advance()

	if len(inner.pushedRates) < 3 {
		t.Fatalf("expected at least 3 rate pushes to inner codec, got %d", len(inner.pushedRates))
	}
	// overheadFactor = 1 + (2*40)/2000 = 1.04 once the first real inner
	// frame (2000 bytes, 2 fragments) has been observed; the next goal
	// pushed to the inner codec should be 1_000_000/1.04, strictly less
	// than the unadjusted target.
	last := inner.pushedRates[len(inner.pushedRates)-1]
	if last >= 1_000_000 {
		t.Errorf("overhead-compensated pushed rate = %v, want < 1e6", last)
	}
}

// TestSetTargetRateIdempotent: calling SetTargetRate twice with the value
// it just returned must be a no-op.
func TestSetTargetRateIdempotent(t *testing.T) {
	inner := newScriptedCodec([]codec.FrameRecord{
		{Payload: make([]byte, 100), DelaySeconds: 0.01},
		{Payload: make([]byte, 100), DelaySeconds: 0.01},
	})
	p := New(inner, 1000, 0, nil)
	a := p.SetTargetRate(500_000)
	b := p.SetTargetRate(a)
	if a != b {
		t.Errorf("SetTargetRate not idempotent: %v then %v", a, b)
	}
}

// TestSetTargetRateRejectsNonPositive mirrors the rejection rule shared by
// every codec variant.
func TestSetTargetRateRejectsNonPositive(t *testing.T) {
	inner := newScriptedCodec([]codec.FrameRecord{
		{Payload: make([]byte, 100), DelaySeconds: 0.01},
	})
	p := New(inner, 1000, 0, nil)
	before := p.TargetRate()
	if got := p.SetTargetRate(-1); got != before {
		t.Errorf("SetTargetRate(-1) = %v, want unchanged %v", got, before)
	}
}

// TestValidTracksInner checks that the packetizer reports invalid once its
// inner codec is exhausted.
func TestValidTracksInner(t *testing.T) {
	inner := newScriptedCodec([]codec.FrameRecord{
		{Payload: make([]byte, 100), DelaySeconds: 0.01},
	})
	p := New(inner, 1000, 0, nil)
	if !p.Valid() {
		t.Fatal("expected packetizer to be valid while inner is valid")
	}
	p.Advance() // drains the only fragment, triggers a pull past the end
	if p.Valid() {
		t.Error("expected packetizer to become invalid once inner is exhausted")
	}
}

func TestZeroLengthFrameYieldsOneFragment(t *testing.T) {
	inner := newScriptedCodec([]codec.FrameRecord{
		{Payload: nil, DelaySeconds: 0},
		{Payload: nil, DelaySeconds: 0.02},
	})
	p := New(inner, 1000, 0, nil)
	p.Advance() // construction pulls the leading zero-length sentinel frame
	r := p.Current()
	if len(r.Payload) != 0 {
		t.Errorf("payload len = %d, want 0", len(r.Payload))
	}
	if diff := r.DelaySeconds - 0.02; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("delay = %v, want 0.02 (single slot)", r.DelaySeconds)
	}
}

func TestNewPanicsOnNilInner(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on nil inner codec")
		}
	}()
	New(nil, 1000, 0, nil)
}

func TestNewPanicsOnNonPositiveMaxPayload(t *testing.T) {
	inner := newScriptedCodec([]codec.FrameRecord{{Payload: make([]byte, 10), DelaySeconds: 0.01}})
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on non-positive maxPayload")
		}
	}()
	New(inner, 0, 0, nil)
}
