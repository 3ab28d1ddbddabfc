// Package tracecodec implements the trace-based adaptive-bitrate codec
// (Codec) and its linear-interpolating sibling (ScalingCodec). Both share a
// single catalog walk, resolution-adjustment, and wraparound machinery
// through the unexported base type; they differ only in how a frame's
// payload size is derived from the catalog and in what rate feeds the
// bits-per-pixel resolution decision.
package tracecodec

import (
	"math"

	"github.com/pkg/errors"

	"github.com/sergio-mena/syncodecs/codec"
	"github.com/sergio-mena/syncodecs/resolution"
	"github.com/sergio-mena/syncodecs/syncodecslog"
	"github.com/sergio-mena/syncodecs/trace"
)

// defaultFPS is used when a caller constructs a codec with fps<=0.
const defaultFPS = 25.0

// Waggoner's 0.75 rule exponent and the BPP thresholds driving resolution
// adjustment.
const (
	waggonerExponent = 0.75
	lowBppThresh     = 0.05
	highBppThresh    = 0.15
)

// base holds everything shared between the trace-based codec and its
// scaling variant: the loaded catalog, resolution/fixed-mode state, the
// frame-index walk, and the target rate. The frameSize and bppRateBps
// function fields are the seam between the two variants.
type base struct {
	catalog *trace.Catalog
	fps     float64
	log     syncodecslog.Logger

	fixedMode          bool
	fixedResolution    resolution.Label
	currentResolution  resolution.Label
	currentFrameIdx    int
	targetRateBps      float64
	current            codec.FrameRecord
	valid              bool

	// frameSize computes the payload size, in bytes, for the codec's
	// current (resolution, frame index) state.
	frameSize func() int

	// bppRateBps returns the bitrate, in bits per second, used to compute
	// bits-per-pixel for resolution adjustment at label.
	bppRateBps func(label resolution.Label) float64
}

// newBase loads the trace catalog and sets up the shared resolution state.
// The returned base has valid==false (and frameSize/bppRateBps unset) if
// the catalog could not be built; callers must still check the returned
// error for I/O-level construction failures distinct from an empty or
// inconsistent catalog.
func newBase(dir, prefix string, fps float64, fixed bool, reader trace.LineReader, log syncodecslog.Logger) (*base, error) {
	if fps <= 0 {
		fps = defaultFPS
	}
	log = syncodecslog.OrNoop(log)

	cat, err := trace.NewCatalog(dir, prefix, reader, log)
	b := &base{catalog: cat, fps: fps, log: log, fixedMode: fixed}
	if err != nil {
		return b, errors.Wrap(err, "syncodecs/tracecodec: could not build trace catalog")
	}
	if !cat.Valid() {
		return b, nil
	}

	mid, _ := cat.MiddleLabel()
	b.fixedResolution = mid
	b.currentResolution = mid
	b.valid = true
	return b, nil
}

// populateCurrent fills in current from the codec's present state using the
// variant-specific frameSize function. It must only be called once
// frameSize has been assigned.
func (b *base) populateCurrent() {
	size := b.frameSize()
	if size < 0 {
		size = 0
	}
	b.current = codec.FrameRecord{
		Payload:      make([]byte, size),
		DelaySeconds: 1 / b.fps,
	}
}

// Current implements codec.Codec.
func (b *base) Current() codec.FrameRecord { return b.current }

// Valid implements codec.Codec.
func (b *base) Valid() bool { return b.valid }

// TargetRate implements codec.Codec.
func (b *base) TargetRate() float64 { return b.targetRateBps }

// SetTargetRate implements codec.Codec. Rates <= 0 are rejected; trace
// codecs do not throttle rate changes, unlike the statistics codec.
func (b *base) SetTargetRate(newBps float64) float64 {
	if newBps <= 0 {
		return b.targetRateBps
	}
	b.targetRateBps = newBps
	return b.targetRateBps
}

// Advance implements codec.Codec: it walks the frame index (wrapping at the
// catalog length back to NFramesExcluded), adjusts resolution in variable
// mode, and recomputes the current record.
func (b *base) Advance() {
	if !b.valid {
		return
	}
	b.currentFrameIdx++
	if b.currentFrameIdx >= b.catalog.Length() {
		b.currentFrameIdx = codec.NFramesExcluded
	}
	if !b.fixedMode {
		b.adjustResolution()
	}
	b.populateCurrent()
}

// adjustResolution steps currentResolution by at most one canonical label
// per advance, so the resolution ladder is walked monotonically and cannot
// oscillate within a single frame.
func (b *base) adjustResolution() {
	rateBps := b.bppRateBps(b.currentResolution)
	bpp := bppAt(b.currentResolution, rateBps, b.fps)

	labels := b.catalog.Labels()
	idx := indexOfLabel(labels, b.currentResolution)
	if idx < 0 {
		return
	}
	switch {
	case bpp < lowBppThresh && idx+1 < len(labels):
		b.currentResolution = labels[idx+1]
	case bpp > highBppThresh && idx-1 >= 0:
		b.currentResolution = labels[idx-1]
	default:
		return
	}
	b.log.Log(syncodecslog.Debug, "tracecodec stepped resolution",
		"bpp", bpp, "resolution", string(b.currentResolution))
}

// matchBitrateAt applies the base match-bitrate rule at label: the largest
// available bitrate not exceeding the target (in kbps), or the smallest
// available bitrate if the target is below every available one. ok is false
// only if label has no bitrates loaded at all.
func (b *base) matchBitrateAt(label resolution.Label) (kbps int, ok bool) {
	bitrates := b.catalog.Bitrates(label)
	if len(bitrates) == 0 {
		return 0, false
	}
	targetKbps := math.Floor(b.targetRateBps / 1000)
	best := -1
	for _, r := range bitrates {
		if float64(r) <= targetKbps {
			best = r
		}
	}
	if best == -1 {
		return bitrates[0], true
	}
	return best, true
}

// bppAt computes bits-per-pixel for label at rateBps, applying Waggoner's
// 0.75 scaling rule above 480p.
func bppAt(label resolution.Label, rateBps, fps float64) float64 {
	px := float64(resolution.Pixels(label))
	var scaling, targetPx float64
	if resolution.LessOrEqual480p(label) {
		scaling = 1.0
		targetPx = px
	} else {
		targetPx = float64(resolution.Pixels(resolution.P480))
		scaling = math.Pow(px/targetPx, waggonerExponent)
	}
	return rateBps / (fps * targetPx * scaling)
}

func indexOfLabel(labels []resolution.Label, l resolution.Label) int {
	for i, x := range labels {
		if x == l {
			return i
		}
	}
	return -1
}

// FixedMode reports whether the codec is pinned to a fixed resolution.
func (b *base) FixedMode() bool { return b.fixedMode }

// SetFixedMode switches between fixed and variable resolution modes.
// Entering fixed mode pins currentResolution to the most recently chosen
// fixed resolution (or the catalog's middle label if none was chosen).
func (b *base) SetFixedMode(fixed bool) {
	b.fixedMode = fixed
	if fixed && b.valid {
		b.currentResolution = b.fixedResolution
	}
}

// SetResolutionForFixedMode selects the catalog's middle resolution as the
// fixed-mode resolution, applying it immediately if already in fixed mode.
func (b *base) SetResolutionForFixedMode() {
	if !b.valid {
		return
	}
	mid, ok := b.catalog.MiddleLabel()
	if !ok {
		return
	}
	b.fixedResolution = mid
	if b.fixedMode {
		b.currentResolution = mid
	}
}

// SetResolutionForFixedModeLabel selects label as the fixed-mode
// resolution, applying it immediately if already in fixed mode. It returns
// false, making no change, if label is not present in the catalog.
func (b *base) SetResolutionForFixedModeLabel(label resolution.Label) bool {
	if !b.valid {
		return false
	}
	for _, l := range b.catalog.Labels() {
		if l == label {
			b.fixedResolution = label
			if b.fixedMode {
				b.currentResolution = label
			}
			return true
		}
	}
	return false
}
