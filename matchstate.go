package lazymatch

// debugAsserts enables internal consistency checks. The checks cost
// enough that they are compiled out of normal builds.
const debugAsserts = false

// A MatchState owns the index tables for one compression session. The
// tables store 32-bit logical positions into the state's Window; zero
// means empty. Tables persist across blocks: nextToUpdate records how
// far insertion has progressed, and searches catch up lazily from
// there.
type MatchState struct {
	Window Window

	// Strategy, Method and DictMode select the parsing depth, the
	// search index, and the dictionary addressing used by
	// CompressBlock.
	Strategy Strategy
	Method   SearchMethod
	DictMode DictMode

	// Dict is the attached dictionary state for DictMatchState and
	// DedicatedDictSearch modes.
	Dict *MatchState

	params Params

	hashTable  []uint32
	chainTable []uint32

	// tagTable holds one head byte plus rowEntries tag bytes per row.
	tagTable  []byte
	hashCache [prefetchNb]uint32

	nextToUpdate uint32
	ddsBuilt     bool
}

// NewMatchState allocates index tables sized per p for the given search
// method.
func NewMatchState(p Params, method SearchMethod) *MatchState {
	p = (&p).withDefaults()
	ms := &MatchState{
		Method: method,
		params: p,
	}
	ms.hashTable = make([]uint32, 1<<p.HashLog)
	switch method {
	case SearchRowHash:
		entries := uint32(1) << ms.rowLog()
		rows := uint32(1) << ms.rowHashLog()
		ms.tagTable = make([]byte, rows*(entries+1))
	default:
		ms.chainTable = make([]uint32, 1<<p.ChainLog)
	}
	return ms
}

// Params returns the sizing parameters the state was built with.
func (ms *MatchState) Params() Params {
	return ms.params
}

// Reset clears the tables and the window, preparing the state for a new
// stream.
func (ms *MatchState) Reset() {
	for i := range ms.hashTable {
		ms.hashTable[i] = 0
	}
	for i := range ms.chainTable {
		ms.chainTable[i] = 0
	}
	for i := range ms.tagTable {
		ms.tagTable[i] = 0
	}
	ms.hashCache = [prefetchNb]uint32{}
	ms.nextToUpdate = 0
	ms.ddsBuilt = false
	ms.Window = Window{}
}

// rowLog is the row width (log2): 16-entry rows below SearchLog 5,
// 32-entry rows at 5 and above.
func (ms *MatchState) rowLog() uint32 {
	if ms.params.SearchLog < 5 {
		return 4
	}
	return 5
}

// rowHashLog is the number of row-selector bits of a row hash; the
// remaining shortBits form the tag.
func (ms *MatchState) rowHashLog() uint32 {
	return ms.params.HashLog - ms.rowLog()
}

// IndexTo inserts positions [nextToUpdate, target) into the index
// tables without searching. Used to load dictionary content and to
// stitch blocks together. target must leave 8 readable bytes in the
// window for hashing.
func (ms *MatchState) IndexTo(target uint32) {
	if debugAsserts && int(target)+8 > len(ms.Window.Base) {
		panic("lazymatch: IndexTo past hashable region")
	}
	mls := ms.params.mls()
	switch ms.Method {
	case SearchBinaryTree:
		ms.updateDUBT(target, mls)
	case SearchRowHash:
		ms.rowUpdate(target, mls, false)
	default:
		ms.hcUpdate(target, mls)
	}
}

// NewDictState indexes dict for use as an attached dictionary
// (DictMatchState mode). The dictionary occupies logical indexes
// 1..len(dict); index 0 is reserved as the empty-slot sentinel.
//
// method selects the table layout the compressing state will search:
// SearchBinaryTree builds a fully sorted tree, anything else a hash
// chain (the row searcher walks the dictionary's chain layout).
func NewDictState(p Params, method SearchMethod, dict []byte) *MatchState {
	if method == SearchRowHash {
		method = SearchHashChain
	}
	ms := NewMatchState(p, method)
	base := make([]byte, 1+len(dict))
	copy(base[1:], dict)
	ms.Window = Window{
		Base:      base,
		DictBase:  base,
		DictLimit: 1,
		LowLimit:  1,
	}
	ms.nextToUpdate = 1
	if len(base) >= 1+8 {
		ms.IndexTo(uint32(len(base) - 8))
	}
	if method == SearchBinaryTree {
		ms.sortDictTree(p.mls())
	}
	return ms
}

// NewDedicatedDictState indexes dict into the dedicated-search layout
// (DedicatedDictSearch mode).
func NewDedicatedDictState(p Params, dict []byte) *MatchState {
	ms := NewMatchState(p, SearchHashChain)
	base := make([]byte, 1+len(dict))
	copy(base[1:], dict)
	ms.Window = Window{
		Base:      base,
		DictBase:  base,
		DictLimit: 1,
		LowLimit:  1,
	}
	ms.nextToUpdate = 1
	if len(base) >= 1+8 {
		ms.loadDedicatedDict(uint32(len(base) - 8))
	}
	ms.ddsBuilt = true
	return ms
}

// AttachDict attaches a dictionary state built by NewDictState or
// NewDedicatedDictState, sets the dict mode accordingly, and
// initializes the window so the prefix continues the dictionary's
// index space: the first src byte appended to Window.Base gets the
// index one past the dictionary's end, which keeps repeat-index
// arithmetic free of wraparound. Call before the first CompressBlock.
func (ms *MatchState) AttachDict(dict *MatchState) {
	ms.Dict = dict
	if dict == nil {
		ms.DictMode = NoDict
		return
	}
	if dict.ddsBuilt {
		ms.DictMode = DedicatedDictSearch
	} else {
		ms.DictMode = DictMatchState
	}
	start := uint32(len(dict.Window.Base))
	ms.Window = Window{
		Base:      make([]byte, start),
		DictLimit: start,
		LowLimit:  start,
	}
	ms.nextToUpdate = start
}
