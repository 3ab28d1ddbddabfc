// Package ratemeter gives codec and packetizer implementations a way to
// report the bitrate they are actually producing, for diagnostics and
// logging, separate from the target rate they are asked to shape toward.
package ratemeter

import "github.com/ausocean/utils/bitrate"

// Meter accumulates reported byte counts and reduces them to an observed
// bitrate.
type Meter struct {
	calc bitrate.Calculator
}

// New returns a ready-to-use Meter.
func New() *Meter { return &Meter{} }

// Report records that n bytes were just emitted onto the wire.
func (m *Meter) Report(n int) { m.calc.Report(n) }

// Bitrate returns the most recently computed observed bitrate, in bits per
// second.
func (m *Meter) Bitrate() float64 { return float64(m.calc.Bitrate()) }
