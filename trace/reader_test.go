package trace

import (
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type stringReadCloser struct {
	io.Reader
}

func (stringReadCloser) Close() error { return nil }

func readerFor(contents string) func(path string) (io.ReadCloser, error) {
	return func(path string) (io.ReadCloser, error) {
		return stringReadCloser{strings.NewReader(contents)}, nil
	}
}

func TestDefaultLineReaderBasic(t *testing.T) {
	r := DefaultLineReader{Open: readerFor("1000\n1800 I 30.5\n2000 P 31.2\n")}
	got, err := r.ReadLines("ignored")
	if err != nil {
		t.Fatalf("ReadLines: %v", err)
	}
	want := FrameSequence{
		{SizeBytes: 1000},
		{SizeBytes: 1800, FrameType: "I", PSNR: 30.5},
		{SizeBytes: 2000, FrameType: "P", PSNR: 31.2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected result (-want +got):\n%s", diff)
	}
}

func TestDefaultLineReaderSkipsBlankAndComments(t *testing.T) {
	r := DefaultLineReader{Open: readerFor("# header\n\n1500\n\n# trailing\n2500\n")}
	got, err := r.ReadLines("ignored")
	if err != nil {
		t.Fatalf("ReadLines: %v", err)
	}
	if len(got) != 2 || got[0].SizeBytes != 1500 || got[1].SizeBytes != 2500 {
		t.Errorf("unexpected result: %+v", got)
	}
}

func TestDefaultLineReaderNoTrailingNewline(t *testing.T) {
	r := DefaultLineReader{Open: readerFor("1000\n2000")}
	got, err := r.ReadLines("ignored")
	if err != nil {
		t.Fatalf("ReadLines: %v", err)
	}
	if len(got) != 2 || got[1].SizeBytes != 2000 {
		t.Errorf("unexpected result: %+v", got)
	}
}

func TestDefaultLineReaderInvalidSize(t *testing.T) {
	r := DefaultLineReader{Open: readerFor("notanumber\n")}
	_, err := r.ReadLines("ignored")
	if err == nil {
		t.Fatal("expected an error for a non-numeric frame size")
	}
}
