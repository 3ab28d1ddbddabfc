package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestValidateRejectsNonPositiveTargetRate(t *testing.T) {
	c := Default()
	c.TargetRateBps = 0
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for non-positive TargetRateBps")
	}
}

func TestValidateRequiresTraceDirForTraceVariant(t *testing.T) {
	c := Default()
	c.Variant = CodecTrace
	c.TracePrefix = "v"
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for missing TraceDir")
	}
	c.TraceDir = "testdata"
	if err := c.Validate(); err != nil {
		t.Fatalf("unexpected error once TraceDir is set: %v", err)
	}
}

func TestValidateRejectsFixedModeOutsideTraceVariants(t *testing.T) {
	c := Default()
	c.FixedMode = true
	if err := c.Validate(); err == nil {
		t.Fatal("expected error: FixedMode only applies to trace/scaling variants")
	}
}

func TestValidateRejectsZeroMaxPayloadForPerfect(t *testing.T) {
	c := Default()
	c.Variant = CodecPerfect
	c.MaxPayloadBytes = 0
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for zero MaxPayloadBytes on perfect variant")
	}
}

func TestParseVariantRoundTrip(t *testing.T) {
	for _, v := range []Variant{CodecPerfect, CodecSimpleFPS, CodecTrace, CodecScaling, CodecStatistics} {
		got, err := ParseVariant(v.String())
		if err != nil {
			t.Fatalf("ParseVariant(%q): %v", v.String(), err)
		}
		if got != v {
			t.Errorf("ParseVariant(%q) = %v, want %v", v.String(), got, v)
		}
	}
	if _, err := ParseVariant("bogus"); err == nil {
		t.Error("expected error for unknown variant name")
	}
}

func TestNewBuildsPerfectCodec(t *testing.T) {
	c := Default()
	c.Variant = CodecPerfect
	c.MaxPayloadBytes = 1000
	c.TargetRateBps = 1_000_000

	cod, err := New(c, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !cod.Valid() {
		t.Fatal("expected perfect codec to be valid")
	}
	r := cod.Current()
	if len(r.Payload) != 1000 {
		t.Errorf("payload len = %d, want 1000", len(r.Payload))
	}
}

func TestNewBuildsPacketizedSimpleFPS(t *testing.T) {
	c := Default()
	c.Packetize = true
	c.MaxPayloadBytes = 200

	cod, err := New(c, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !cod.Valid() {
		t.Fatal("expected packetized codec to be valid")
	}
}

func TestNewBuildsTraceCodec(t *testing.T) {
	dir := t.TempDir()
	writeTraceFixture(t, dir, "v", "720p", 500, 25, 1000)

	c := Default()
	c.Variant = CodecTrace
	c.TraceDir = dir
	c.TracePrefix = "v"
	c.FixedMode = true

	cod, err := New(c, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !cod.Valid() {
		t.Fatal("expected trace codec to be valid")
	}
}

func TestNewReturnsErrorForUnreadableTraceDir(t *testing.T) {
	c := Default()
	c.Variant = CodecTrace
	c.TraceDir = filepath.Join(t.TempDir(), "does-not-exist")
	c.TracePrefix = "v"

	if _, err := New(c, nil); err == nil {
		t.Fatal("expected error for missing trace directory")
	}
}

func writeTraceFixture(t *testing.T, dir, prefix, label string, bitrateKbps, n, size int) {
	t.Helper()
	name := fmt.Sprintf("%s_%s_%d.txt", prefix, label, bitrateKbps)
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("could not create trace fixture: %v", err)
	}
	defer f.Close()
	for i := 0; i < n; i++ {
		fmt.Fprintf(f, "%d\n", size)
	}
}
