// Package codec provides FrameRecord, the Codec interface shared by every
// synthetic codec variant, and the constants that describe the trace-file
// bitrate grid those variants index into.
//
// A Codec is a lazy, pull-based producer of FrameRecord values: it performs
// no real encoding, only emits payload sizes and inter-frame delays timed to
// a target bitrate. Congestion controllers drive a Codec by reading Current,
// calling Advance to move forward, and pushing new target rates through
// SetTargetRate. A Codec is not safe for concurrent use; each instance is
// intended to be driven from a single goroutine.
package codec

// FrameRecord is the unit of codec output: an opaque payload (only its
// length is meaningful) and the delay the consumer should observe before
// requesting the next record.
type FrameRecord struct {
	Payload      []byte
	DelaySeconds float64
}

// Codec is the pull-based contract implemented by every synthetic codec
// variant (perfect, simple-fps, trace-based, scaling, statistics) and by the
// shaped packetizer that wraps them.
type Codec interface {
	// Current returns the record produced by the most recent Advance (or the
	// initial record, if Advance has not yet been called). It is stable
	// between calls to Advance.
	Current() FrameRecord

	// Advance produces the next record. It may change the result of Valid
	// as a side effect; a Codec that becomes invalid has reached the end of
	// its stream or was never successfully constructed.
	Advance()

	// Valid reports whether Current and a subsequent Advance are
	// well-defined. Callers must check Valid before trusting Current's
	// result from a freshly constructed or exhausted Codec.
	Valid() bool

	// TargetRate returns the bitrate, in bits per second, the Codec is
	// currently shaping its output toward.
	TargetRate() float64

	// SetTargetRate requests a new target bitrate in bits per second and
	// returns the rate actually adopted. Implementations must reject
	// newBps <= 0 by returning the unchanged current rate rather than
	// panicking, and must be idempotent: calling SetTargetRate twice with
	// the rate it just returned must return that same rate again.
	SetTargetRate(newBps float64) float64
}

// Trace-file bitrate grid constants, shared by the trace catalog loader and
// every trace-backed codec variant.
const (
	// TraceMinBitrateKbps is the smallest bitrate, in kbps, a trace file may
	// be indexed under.
	TraceMinBitrateKbps = 100

	// TraceMaxBitrateKbps is the largest bitrate, in kbps, a trace file may
	// be indexed under.
	TraceMaxBitrateKbps = 6000

	// TraceBitrateStepKbps is the granularity of the bitrate grid; trace
	// file bitrates not divisible by this step are ignored by the loader.
	TraceBitrateStepKbps = 100

	// NFramesExcluded is the number of leading frames a trace-based codec
	// skips on wraparound, avoiding a re-sync on the encoder's initial
	// ramp-up every time the frame index wraps.
	NFramesExcluded = 20
)
