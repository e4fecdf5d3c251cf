package lazymatch

// A Window is the logical address space the indexes store positions
// into. A 32-bit index i resolves to DictBase[i] when i < DictLimit and
// to Base[i] otherwise. For a fresh session DictBase aliases Base and
// DictLimit is 0; after a dictionary is attached or old data scrolls
// off, the two diverge.
type Window struct {
	// Base holds the current prefix. Base[i] is valid for
	// DictLimit <= i < len(Base).
	Base []byte

	// DictBase holds the external-dictionary view. DictBase[i] is
	// valid for LowLimit <= i < DictLimit.
	DictBase []byte

	// DictLimit is the first index addressed through Base.
	DictLimit uint32

	// LowLimit is the lowest index still valid for matching.
	LowLimit uint32

	// LoadedDictEnd is nonzero when a dictionary is attached; it pins
	// the match window to LowLimit instead of the sliding distance.
	LoadedDictEnd uint32
}

// nextSrc is the index one past the last byte present in the prefix.
func (w *Window) nextSrc() uint32 {
	return uint32(len(w.Base))
}

// Span returns the maximal contiguous readable bytes starting at index i.
func (w *Window) Span(i uint32) []byte {
	if i < w.DictLimit {
		return w.DictBase[i:w.DictLimit]
	}
	return w.Base[i:]
}

// lowestMatchIndex is the lowest index a match may start at for a
// search at curr: the window distance below curr, clamped to LowLimit,
// or LowLimit itself while a dictionary is attached.
func (w *Window) lowestMatchIndex(curr, windowLog uint32) uint32 {
	maxDistance := uint32(1) << windowLog
	withinWindow := w.LowLimit
	if curr-w.LowLimit > maxDistance {
		withinWindow = curr - maxDistance
	}
	if w.LoadedDictEnd != 0 {
		return w.LowLimit
	}
	return withinWindow
}

// lowestPrefixIndex is like lowestMatchIndex but clamped to the prefix.
func (w *Window) lowestPrefixIndex(curr, windowLog uint32) uint32 {
	maxDistance := uint32(1) << windowLog
	withinWindow := w.DictLimit
	if curr-w.DictLimit > maxDistance {
		withinWindow = curr - maxDistance
	}
	if w.LoadedDictEnd != 0 {
		return w.DictLimit
	}
	return withinWindow
}
