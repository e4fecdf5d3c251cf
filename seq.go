package lazymatch

// A Sequence is one parsing decision: copy LitLen literal bytes, then
// copy MatchLen+3 bytes from Offset back in the decoded stream. Offset
// is an offset code: 1, 2 and 3 reference the repeat-offset history
// (most recent, second most recent, most recent minus one); larger
// values carry rawDistance+3.
type Sequence struct {
	LitLen   uint32
	Offset   uint32
	MatchLen uint32
}

// A SeqStore collects the sequences and literal bytes for one or more
// blocks. Literal bytes are copied in, so callers may reuse their
// buffers between blocks.
type SeqStore struct {
	Seqs     []Sequence
	Literals []byte
}

// Reset empties the store, keeping its backing arrays.
func (s *SeqStore) Reset() {
	s.Seqs = s.Seqs[:0]
	s.Literals = s.Literals[:0]
}

// storeSeq appends one sequence. mlBase is the match length minus
// minMatch.
func (s *SeqStore) storeSeq(lits []byte, offCode, mlBase uint32) {
	s.Literals = append(s.Literals, lits...)
	s.Seqs = append(s.Seqs, Sequence{
		LitLen:   uint32(len(lits)),
		Offset:   offCode,
		MatchLen: mlBase,
	})
}
