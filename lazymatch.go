// The lazymatch package implements the match-finding stage of a
// zstd-style block compressor: the greedy/lazy parsing loop and the
// three interchangeable search indexes behind it (hash chain, binary
// tree, and row hash).
//
// The package produces sequences, that is, (literal length, offset
// code, match length) records, not compressed bytes. Entropy coding,
// framing, and checksums belong to whatever consumes the sequence
// stream. The Finder type wraps the core in a MatchFinder-style
// interface that emits plain Matches with resolved distances.
package lazymatch

// A Strategy selects how hard the parser tries to improve on the first
// match it finds at each position.
type Strategy int

const (
	// Greedy takes the longest match at each position.
	Greedy Strategy = iota

	// Lazy also evaluates the next position before committing.
	Lazy

	// Lazy2 looks ahead up to two positions. Combined with
	// SearchBinaryTree this is the btlazy2 configuration.
	Lazy2
)

// A SearchMethod selects the index used to find match candidates.
type SearchMethod int

const (
	// SearchHashChain uses a hash table of singly linked chains.
	SearchHashChain SearchMethod = iota

	// SearchBinaryTree uses a lazily sorted binary search tree per
	// hash bucket. Slow to update, but it finds the best matches.
	SearchBinaryTree

	// SearchRowHash uses a hash table partitioned into rows of 16 or
	// 32 entries with one-byte tags that prefilter candidates.
	SearchRowHash
)

// A DictMode describes where match candidates may come from besides the
// current prefix.
type DictMode int

const (
	// NoDict searches the current prefix only.
	NoDict DictMode = iota

	// ExtDict searches a scrolled-off region addressed through
	// Window.DictBase as well as the prefix.
	ExtDict

	// DictMatchState additionally searches an attached dictionary's
	// own index tables.
	DictMatchState

	// DedicatedDictSearch searches a dictionary prepared with
	// NewDedicatedDictState, which trades table space for faster lookup.
	DedicatedDictSearch
)

const (
	// minMatch is the shortest match the sequence encoding can
	// represent; stored match lengths are relative to it.
	minMatch = 3

	// repMove offsets raw distances in offset codes, so that codes
	// 1-3 can carry repeat-offset references.
	repMove = 3

	// searchStrength governs how aggressively the parser skips ahead
	// through sections where no matches are being found.
	searchStrength = 8

	// unsortedMark in a tree node's larger-child slot means the node
	// has been chained into its bucket but not yet sorted. A real
	// index can collide with it, so walks are also bounded by a
	// candidate budget.
	unsortedMark = 1

	// ddsBucketLog is the bucket size (log2) of the dedicated
	// dictionary layout.
	ddsBucketLog = 4

	// prefetchNb is the size of the row-hash cache of upcoming
	// position hashes.
	prefetchNb   = 8
	prefetchMask = prefetchNb - 1

	// shortBits is the width of the row-hash tag.
	shortBits = 8
	shortMask = (1 << shortBits) - 1

	// noOffsetFound is the offset sentinel searchers leave in place
	// when they find nothing. It is large enough that the parser's
	// cost heuristics always prefer a real offset over it.
	noOffsetFound = 999999999
)

// Params are the sizing parameters for a MatchState. Zero fields are
// replaced with defaults.
type Params struct {
	// WindowLog is the maximum match distance (log2).
	WindowLog uint32

	// HashLog sizes the hash table (log2 of entry count).
	HashLog uint32

	// ChainLog sizes the chain table (log2 of entry count). The
	// binary tree uses the same storage as 1<<(ChainLog-1) node
	// pairs.
	ChainLog uint32

	// SearchLog bounds the number of candidates examined per search
	// (log2). It also selects the row width: 16 entries below 5, 32
	// at 5 and above.
	SearchLog uint32

	// MinMatch is the byte count hashed to form index keys, in 3..7.
	// Values outside 4..6 are clamped for searching.
	MinMatch uint32
}

func (p *Params) withDefaults() Params {
	q := *p
	if q.WindowLog == 0 {
		q.WindowLog = 21
	}
	if q.HashLog == 0 {
		q.HashLog = 17
	}
	if q.ChainLog == 0 {
		q.ChainLog = 16
	}
	if q.SearchLog == 0 {
		q.SearchLog = 4
	}
	if q.MinMatch == 0 {
		q.MinMatch = 4
	}
	return q
}

// mls returns the hash length used by the indexes. The table layouts
// only support 4..6; MinMatch 3 and 7 are clamped.
func (p *Params) mls() uint32 {
	switch p.MinMatch {
	case 5:
		return 5
	case 6, 7:
		return 6
	default:
		return 4
	}
}
