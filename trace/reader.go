// Package trace provides the trace catalog: loading, indexing, and
// bitrate/resolution lookup over a directory of pre-encoded trace files.
//
// The textual trace-file parser itself is a pluggable collaborator behind
// the LineReader interface rather than a hard external dependency, so this
// package is self-contained and testable; DefaultLineReader is a small
// line-oriented scanner for whitespace-delimited trace-file lines.
package trace

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// defaultOpen opens path on the local filesystem.
func defaultOpen(path string) (io.ReadCloser, error) { return os.Open(path) }

// scannerBufSize is the reload buffer size used by the default trace-file
// line scanner.
const scannerBufSize = 4096

// TraceLine is one parsed line of a trace file. Only SizeBytes is consumed
// by the core adaptive-bitrate algorithms; FrameType and PSNR are carried
// through for callers that want them (e.g. a future I-frame-aware codec
// variant) but are otherwise unused.
type TraceLine struct {
	SizeBytes int
	FrameType string
	PSNR      float64
}

// FrameSequence is the ordered set of TraceLine records for one
// (resolution, bitrate) pair.
type FrameSequence []TraceLine

// LineReader parses a trace file at path into an ordered FrameSequence.
// Production callers may substitute a reader tied to their own trace format
// as long as it exposes a per-line byte size.
type LineReader interface {
	ReadLines(path string) (FrameSequence, error)
}

// DefaultLineReader reads plain-text trace files: one frame per line,
// whitespace-separated columns, first column the frame size in bytes,
// optional second (frame type) and third (PSNR) columns. Blank lines and
// lines beginning with '#' are ignored.
type DefaultLineReader struct {
	// Open, if set, is used in place of os.Open — primarily so tests can
	// substitute an in-memory file system. The zero value uses os.Open.
	Open func(path string) (io.ReadCloser, error)
}

// ReadLines implements LineReader.
func (r DefaultLineReader) ReadLines(path string) (FrameSequence, error) {
	open := r.Open
	if open == nil {
		open = defaultOpen
	}
	f, err := open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open trace file %s", path)
	}
	defer f.Close()

	var seq FrameSequence
	sc := newLineScanner(f, scannerBufSize)
	lineNo := 0
	for {
		raw, err := sc.scanLine()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, errors.Wrapf(err, "could not read trace file %s", path)
		}
		lineNo++
		line := strings.TrimSpace(string(raw))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		tl, err := parseLine(line)
		if err != nil {
			return nil, errors.Wrapf(err, "trace file %s, line %d", path, lineNo)
		}
		seq = append(seq, tl)
	}
	return seq, nil
}

// parseLine decodes one whitespace-delimited trace line.
func parseLine(line string) (TraceLine, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return TraceLine{}, errors.New("empty trace line")
	}
	size, err := strconv.Atoi(fields[0])
	if err != nil {
		return TraceLine{}, errors.Wrapf(err, "invalid frame size %q", fields[0])
	}
	var tl TraceLine
	tl.SizeBytes = size
	if len(fields) > 1 {
		tl.FrameType = fields[1]
	}
	if len(fields) > 2 {
		psnr, err := strconv.ParseFloat(fields[2], 64)
		if err == nil {
			tl.PSNR = psnr
		}
	}
	return tl, nil
}
