package lazymatch

// A Match is the unit of LZ77 compression the streaming front end
// emits: Unmatched literal bytes since the previous match, then a
// Length-byte copy from Distance bytes back. Length may be 0 at the
// end of the input.
type Match struct {
	Unmatched int
	Length    int
	Distance  int
}

// A MatchFinder performs the LZ77 stage of compression, looking for
// matches.
type MatchFinder interface {
	// FindMatches looks for matches in src, appends them to dst, and
	// returns dst.
	FindMatches(dst []Match, src []byte) []Match

	// Reset clears any internal state, preparing the MatchFinder to
	// be used with a new stream.
	Reset()
}

// A Finder adapts the block compressor to the MatchFinder interface.
// Feed it consecutive blocks of a stream and it emits Matches with
// fully resolved distances, carrying window history and repeat
// offsets across calls.
type Finder struct {
	// Strategy, Method and Params configure the underlying match
	// state. Changes after the first FindMatches call are ignored.
	Strategy Strategy
	Method   SearchMethod
	Params   Params

	ms    *MatchState
	rep   [3]uint32
	store SeqStore
}

func (f *Finder) Reset() {
	if f.ms != nil {
		f.ms.Reset()
	}
	f.rep = [3]uint32{}
	f.store.Reset()
}

// FindMatches looks for matches in src, appends them to dst, and returns dst.
func (f *Finder) FindMatches(dst []Match, src []byte) []Match {
	if f.ms == nil {
		f.ms = NewMatchState(f.Params, f.Method)
		f.ms.Strategy = f.Strategy
	}
	ms := f.ms

	maxHistory := 2 << ms.params.WindowLog
	minHistory := 1 << ms.params.WindowLog
	if len(ms.Window.Base)+len(src) > maxHistory && len(ms.Window.Base) > minHistory {
		// Trim down the history buffer. Rebasing three different
		// table layouts isn't worth the code; drop the tables and let
		// the next searches rebuild them over the retained tail.
		b := ms.Window.Base
		delta := len(b) - minHistory
		copy(b, b[delta:])
		ms.Window.Base = b[:minHistory]
		for i := range ms.hashTable {
			ms.hashTable[i] = 0
		}
		for i := range ms.chainTable {
			ms.chainTable[i] = 0
		}
		for i := range ms.tagTable {
			ms.tagTable[i] = 0
		}
		ms.nextToUpdate = 0
	}

	// Append src to the history buffer.
	ms.Window.Base = append(ms.Window.Base, src...)

	repIn := f.rep
	f.store.Reset()
	litRemaining := ms.CompressBlock(&f.store, &f.rep, src)

	// Resolve offset codes to distances, replaying the repeat pair
	// the way a decoder would.
	r0, r1 := repIn[0], repIn[1]
	for _, s := range f.store.Seqs {
		var dist uint32
		switch s.Offset {
		case 1:
			dist = r0
		case 2:
			dist = r1
			r0, r1 = r1, r0
		case 3:
			dist = r0 - 1
			r0, r1 = dist, r0
		default:
			dist = s.Offset - repMove
			r0, r1 = dist, r0
		}
		dst = append(dst, Match{
			Unmatched: int(s.LitLen),
			Length:    int(s.MatchLen) + minMatch,
			Distance:  int(dist),
		})
	}
	if litRemaining > 0 {
		dst = append(dst, Match{Unmatched: litRemaining})
	}
	return dst
}
