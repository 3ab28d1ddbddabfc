// Package resolution provides the canonical set of video resolution labels
// used across the codec family, and the ordering the adaptive-bitrate
// algorithm steps through.
package resolution

// Label identifies one of the fixed set of resolutions a trace catalog may
// contain frames for.
type Label string

// The canonical resolution labels, in ascending order. This order is
// significant: the adaptive-bitrate algorithm steps one label up or down at
// a time and must never treat this as a sortable set.
const (
	P90   Label = "90p"
	P180  Label = "180p"
	P240  Label = "240p"
	P360  Label = "360p"
	P480  Label = "480p"
	P540  Label = "540p"
	P720  Label = "720p"
	P1080 Label = "1080p"
)

// Dimensions holds the pixel width and height a Label maps to.
type Dimensions struct {
	Width, Height int
}

// Pixels returns the total pixel count of the dimensions.
func (d Dimensions) Pixels() int { return d.Width * d.Height }

// canonical is the ascending-order table of every known label. Ordered lets
// callers walk the set without re-deriving the order from a map, which in Go
// has no guaranteed iteration order.
var canonical = []Label{P90, P180, P240, P360, P480, P540, P720, P1080}

var dims = map[Label]Dimensions{
	P90:   {160, 90},
	P180:  {320, 180},
	P240:  {352, 240},
	P360:  {640, 360},
	P480:  {640, 480},
	P540:  {960, 540},
	P720:  {1280, 720},
	P1080: {1920, 1080},
}

// Ordered returns the canonical ascending-resolution label order.
func Ordered() []Label {
	out := make([]Label, len(canonical))
	copy(out, canonical)
	return out
}

// Valid reports whether s names a known resolution label.
func Valid(s string) bool {
	_, ok := dims[Label(s)]
	return ok
}

// DimensionsOf returns the width/height for a label and whether it is known.
func DimensionsOf(l Label) (Dimensions, bool) {
	d, ok := dims[l]
	return d, ok
}

// Pixels returns the pixel count for a label, or 0 if the label is unknown.
func Pixels(l Label) int {
	d, ok := dims[l]
	if !ok {
		return 0
	}
	return d.Pixels()
}

// Index returns the position of l in the canonical ascending order, or -1 if
// l is not a known label.
func Index(l Label) int {
	for i, c := range canonical {
		if c == l {
			return i
		}
	}
	return -1
}

// LessOrEqual480p reports whether l is 480p or a smaller resolution; this is
// the threshold used by the BPP/Waggoner scaling rule.
func LessOrEqual480p(l Label) bool {
	i := Index(l)
	return i >= 0 && i <= Index(P480)
}
