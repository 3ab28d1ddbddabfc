package trace

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/sergio-mena/syncodecs/resolution"
)

// writeTraceFile writes a trace file with n lines of the given constant
// size, used to build small synthetic catalogs for tests.
func writeTraceFile(t *testing.T, dir, prefix, label string, bitrateKbps, n, size int) {
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

func TestNewCatalogBasic(t *testing.T) {
	dir := t.TempDir()
	writeTraceFile(t, dir, "myvideo", "720p", 500, 25, 1000)
	writeTraceFile(t, dir, "myvideo", "720p", 1000, 25, 2000)
	writeTraceFile(t, dir, "myvideo", "480p", 500, 25, 800)

	c, err := NewCatalog(dir, "myvideo", DefaultLineReader{}, nil)
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	if !c.Valid() {
		t.Fatal("expected catalog to be valid")
	}
	if c.Length() != 25 {
		t.Errorf("Length() = %d, want 25", c.Length())
	}

	wantLabels := []resolution.Label{resolution.P480, resolution.P720}
	gotLabels := c.Labels()
	if len(gotLabels) != len(wantLabels) {
		t.Fatalf("Labels() = %v, want %v", gotLabels, wantLabels)
	}
	for i := range wantLabels {
		if gotLabels[i] != wantLabels[i] {
			t.Errorf("Labels()[%d] = %v, want %v", i, gotLabels[i], wantLabels[i])
		}
	}

	bitrates := c.Bitrates(resolution.P720)
	if len(bitrates) != 2 || bitrates[0] != 500 || bitrates[1] != 1000 {
		t.Errorf("Bitrates(720p) = %v, want [500 1000]", bitrates)
	}

	if size := c.FrameSize(resolution.P720, 1000, 0); size != 2000 {
		t.Errorf("FrameSize = %d, want 2000", size)
	}
}

func TestNewCatalogIgnoresUnknownLabelAndOffGrid(t *testing.T) {
	dir := t.TempDir()
	writeTraceFile(t, dir, "myvideo", "720p", 500, 25, 1000)
	// Unknown label.
	writeTraceFile(t, dir, "myvideo", "4320p", 500, 25, 1000)
	// Off-grid bitrate (not divisible by 100).
	writeTraceFile(t, dir, "myvideo", "720p", 550, 25, 1000)
	// Out of range bitrate.
	writeTraceFile(t, dir, "myvideo", "720p", 7000, 25, 1000)

	c, err := NewCatalog(dir, "myvideo", DefaultLineReader{}, nil)
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	bitrates := c.Bitrates(resolution.P720)
	if len(bitrates) != 1 || bitrates[0] != 500 {
		t.Errorf("Bitrates(720p) = %v, want [500]", bitrates)
	}
	if len(c.Labels()) != 1 {
		t.Errorf("Labels() = %v, want just 720p", c.Labels())
	}
}

func TestNewCatalogEmptyIsInvalid(t *testing.T) {
	dir := t.TempDir()
	c, err := NewCatalog(dir, "myvideo", DefaultLineReader{}, nil)
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	if c.Valid() {
		t.Fatal("expected an empty catalog to be invalid")
	}
}

func TestNewCatalogUnequalLengthsIsInvalid(t *testing.T) {
	dir := t.TempDir()
	writeTraceFile(t, dir, "myvideo", "720p", 500, 25, 1000)
	writeTraceFile(t, dir, "myvideo", "480p", 500, 24, 1000)

	c, err := NewCatalog(dir, "myvideo", DefaultLineReader{}, nil)
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	if c.Valid() {
		t.Fatal("expected unequal-length sequences to make the catalog invalid")
	}
}

func TestNewCatalogMissingDirectory(t *testing.T) {
	_, err := NewCatalog(filepath.Join(t.TempDir(), "does-not-exist"), "myvideo", DefaultLineReader{}, nil)
	if err == nil {
		t.Fatal("expected an error for a missing trace directory")
	}
}

func TestMiddleLabel(t *testing.T) {
	dir := t.TempDir()
	writeTraceFile(t, dir, "v", "90p", 500, 25, 100)
	writeTraceFile(t, dir, "v", "360p", 500, 25, 100)
	writeTraceFile(t, dir, "v", "720p", 500, 25, 100)

	c, err := NewCatalog(dir, "v", DefaultLineReader{}, nil)
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	mid, ok := c.MiddleLabel()
	if !ok || mid != resolution.P360 {
		t.Errorf("MiddleLabel() = %v, %v, want 360p, true", mid, ok)
	}
}
