// Package strutil provides the two small text primitives the rest of the
// runtime builds on: a non-owning substring view and a formatted C-source
// text buffer. Grounded on funxy's internal/prettyprinter, which plays the
// same role (building a big formatted text artifact incrementally) for a
// different output language.
package strutil

// Slice is a non-owning view into a backing string, interned so that two
// Slices over the same bytes compare equal by value (§3.1 TypeRef equality
// relies on interned names comparing cheaply).
type Slice struct {
	data       string
	start, end int
}

// NewSlice wraps the whole of s in a Slice.
func NewSlice(s string) Slice {
	return Slice{data: s, start: 0, end: len(s)}
}

// Sub returns the sub-slice [from:to) of s, panicking on out-of-range bounds
// the same way a slice expression would.
func (s Slice) Sub(from, to int) Slice {
	if from < 0 || to > s.Len() || from > to {
		panic("strutil: slice bounds out of range")
	}
	return Slice{data: s.data, start: s.start + from, end: s.start + to}
}

// Len returns the number of bytes in the view.
func (s Slice) Len() int { return s.end - s.start }

// String materializes the view as a Go string.
func (s Slice) String() string { return s.data[s.start:s.end] }

// Equal compares two Slices by content, not by identity or backing string.
func (s Slice) Equal(o Slice) bool { return s.String() == o.String() }

// Empty reports whether the view has zero length.
func (s Slice) Empty() bool { return s.start == s.end }
