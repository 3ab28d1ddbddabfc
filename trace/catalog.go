package trace

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/sergio-mena/syncodecs/codec"
	"github.com/sergio-mena/syncodecs/resolution"
	"github.com/sergio-mena/syncodecs/syncodecslog"
)

// Catalog is a two-level index of pre-encoded trace files: resolution label
// to bitrate (kbps) to FrameSequence. The outer order is the canonical
// ascending-resolution order restricted to labels actually present; the
// inner order is ascending by bitrate.
type Catalog struct {
	labels   []resolution.Label // canonical order, populated labels only.
	byLabel  map[resolution.Label]*resolutionEntry
	seqLen   int
	valid    bool
}

type resolutionEntry struct {
	bitrates []int // ascending.
	seqs     map[int]FrameSequence
}

// filenamePattern matches "<prefix>_<label>_<bitrate>.txt".
// Built per-catalog since prefix varies.
func filenamePattern(prefix string) func(name string) (label string, bitrate string, ok bool) {
	want := prefix + "_"
	return func(name string) (string, string, bool) {
		if !strings.HasPrefix(name, want) || !strings.HasSuffix(name, ".txt") {
			return "", "", false
		}
		body := strings.TrimSuffix(strings.TrimPrefix(name, want), ".txt")
		idx := strings.LastIndexByte(body, '_')
		if idx < 0 {
			return "", "", false
		}
		return body[:idx], body[idx+1:], true
	}
}

// NewCatalog scans dir for files named "<prefix>_<label>_<bitrate>.txt",
// loading each one that names a canonical resolution label and an on-grid
// bitrate through reader. Files that don't match are silently skipped. An
// unreadable directory or trace file returns a non-nil error; a directory
// that reads fine but yields no admissible files, or sequences of unequal
// length, returns a nil error and a Catalog whose Valid method reports
// false, so the owning codec is left invalid either way.
func NewCatalog(dir, prefix string, reader LineReader, log syncodecslog.Logger) (*Catalog, error) {
	log = syncodecslog.OrNoop(log)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return &Catalog{}, errors.Wrapf(err, "could not read trace directory %s", dir)
	}

	match := filenamePattern(prefix)
	c := &Catalog{byLabel: make(map[resolution.Label]*resolutionEntry)}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		labelStr, bitrateStr, ok := match(e.Name())
		if !ok {
			continue
		}
		if !resolution.Valid(labelStr) {
			log.Log(syncodecslog.Debug, "syncodecs/trace: skipping file with unknown resolution label", "file", e.Name())
			continue
		}
		bitrate, err := strconv.Atoi(bitrateStr)
		if err != nil {
			log.Log(syncodecslog.Debug, "syncodecs/trace: skipping file with non-integer bitrate", "file", e.Name())
			continue
		}
		if !onGrid(bitrate) {
			log.Log(syncodecslog.Debug, "syncodecs/trace: skipping off-grid bitrate", "file", e.Name(), "bitrate", bitrate)
			continue
		}

		seq, err := reader.ReadLines(filepath.Join(dir, e.Name()))
		if err != nil {
			return &Catalog{}, errors.Wrapf(err, "could not load trace file %s", e.Name())
		}

		label := resolution.Label(labelStr)
		re, ok := c.byLabel[label]
		if !ok {
			re = &resolutionEntry{seqs: make(map[int]FrameSequence)}
			c.byLabel[label] = re
		}
		re.seqs[bitrate] = seq
		re.bitrates = insertSorted(re.bitrates, bitrate)
	}

	c.labels = orderedPopulatedLabels(c.byLabel)
	c.valid, c.seqLen = validateLengths(c.byLabel)

	if !c.valid {
		log.Log(syncodecslog.Warning, "syncodecs/trace: catalog is invalid", "dir", dir, "prefix", prefix)
	}

	return c, nil
}

// onGrid reports whether bitrate (in kbps) lies on the supported grid.
func onGrid(bitrate int) bool {
	return bitrate >= codec.TraceMinBitrateKbps &&
		bitrate <= codec.TraceMaxBitrateKbps &&
		bitrate%codec.TraceBitrateStepKbps == 0
}

func insertSorted(s []int, v int) []int {
	i := 0
	for ; i < len(s); i++ {
		if s[i] == v {
			return s
		}
		if s[i] > v {
			break
		}
	}
	s = append(s, 0)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

func orderedPopulatedLabels(byLabel map[resolution.Label]*resolutionEntry) []resolution.Label {
	var out []resolution.Label
	for _, l := range resolution.Ordered() {
		if _, ok := byLabel[l]; ok {
			out = append(out, l)
		}
	}
	return out
}

// validateLengths reports whether every loaded FrameSequence has the same,
// sufficient length, and what that length is.
func validateLengths(byLabel map[resolution.Label]*resolutionEntry) (ok bool, length int) {
	if len(byLabel) == 0 {
		return false, 0
	}
	length = -1
	for _, re := range byLabel {
		for _, seq := range re.seqs {
			if length == -1 {
				length = len(seq)
				continue
			}
			if len(seq) != length {
				return false, 0
			}
		}
	}
	if length < codec.NFramesExcluded+1 {
		return false, 0
	}
	return true, length
}

// Valid reports whether the catalog loaded at least one (resolution,
// bitrate) pair and every loaded sequence shares the same, sufficient
// length.
func (c *Catalog) Valid() bool { return c.valid }

// Length returns the common sequence length of every FrameSequence in the
// catalog. It is only meaningful when Valid reports true.
func (c *Catalog) Length() int { return c.seqLen }

// Labels returns the populated resolution labels in canonical ascending
// order.
func (c *Catalog) Labels() []resolution.Label {
	out := make([]resolution.Label, len(c.labels))
	copy(out, c.labels)
	return out
}

// Bitrates returns the bitrates (kbps), ascending, available at label.
func (c *Catalog) Bitrates(label resolution.Label) []int {
	re, ok := c.byLabel[label]
	if !ok {
		return nil
	}
	out := make([]int, len(re.bitrates))
	copy(out, re.bitrates)
	return out
}

// Sequence returns the FrameSequence for (label, bitrateKbps), if loaded.
func (c *Catalog) Sequence(label resolution.Label, bitrateKbps int) (FrameSequence, bool) {
	re, ok := c.byLabel[label]
	if !ok {
		return nil, false
	}
	seq, ok := re.seqs[bitrateKbps]
	return seq, ok
}

// FrameSize returns the size, in bytes, of the frame at idx in the sequence
// for (label, bitrateKbps). It panics if idx is out of range or the
// sequence does not exist, since both are programmer errors once the
// catalog is known Valid.
func (c *Catalog) FrameSize(label resolution.Label, bitrateKbps, idx int) int {
	seq, ok := c.Sequence(label, bitrateKbps)
	if !ok {
		panic("syncodecs/trace: no sequence for requested (label, bitrate)")
	}
	return seq[idx].SizeBytes
}

// MiddleLabel returns the label at index floor(n/2) of the populated,
// canonically ordered label set, as used to pick the initial/fixed
// resolution.
func (c *Catalog) MiddleLabel() (resolution.Label, bool) {
	if len(c.labels) == 0 {
		return "", false
	}
	return c.labels[len(c.labels)/2], true
}
