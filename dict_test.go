package lazymatch

import (
	"bytes"
	"testing"
)

// compressWithDict runs one block against an attached dictionary and
// verifies the round trip, returning the store and the resolved
// distances.
func compressWithDict(t *testing.T, dictState *MatchState, method SearchMethod, p Params, dict, src []byte) (*SeqStore, []uint32) {
	t.Helper()
	ms := NewMatchState(p, method)
	ms.Strategy = Lazy
	ms.AttachDict(dictState)
	ms.Window.Base = append(ms.Window.Base, src...)

	var store SeqStore
	rep := [3]uint32{1, 4, 8}
	repIn := rep
	lits := ms.CompressBlock(&store, &rep, src)

	got := decodeSequences(t, dict, store.Seqs, store.Literals, src[len(src)-lits:], repIn)
	if !bytes.Equal(got, src) {
		t.Fatalf("round trip through dictionary mismatch")
	}
	return &store, resolveDistances(store.Seqs, repIn)
}

// requireDictReference fails unless some sequence resolves beyond the
// bytes produced so far, i.e. into the dictionary.
func requireDictReference(t *testing.T, store *SeqStore, dists []uint32) {
	t.Helper()
	pos := 0
	for i, s := range store.Seqs {
		pos += int(s.LitLen)
		if int(dists[i]) > pos {
			return
		}
		pos += int(s.MatchLen) + minMatch
	}
	t.Error("no sequence reaches into the dictionary")
}

var dictCorpus = []byte("the quick brown fox jumps over the lazy dog while the brown fox watches")
var dictSrc = []byte("see the quick brown fox jump over the lazy dog once more today, please")

func TestDictMatchState(t *testing.T) {
	for _, m := range methods {
		t.Run(m.name, func(t *testing.T) {
			var p Params
			dictState := NewDictState(p, m.m, dictCorpus)
			store, dists := compressWithDict(t, dictState, m.m, p, dictCorpus, dictSrc)
			requireDictReference(t, store, dists)
		})
	}
}

func TestDedicatedDictSearch(t *testing.T) {
	for _, m := range methods {
		if m.m == SearchBinaryTree {
			continue // unsupported cell in the dispatch
		}
		t.Run(m.name, func(t *testing.T) {
			var p Params
			dictState := NewDedicatedDictState(p, dictCorpus)
			store, dists := compressWithDict(t, dictState, m.m, p, dictCorpus, dictSrc)
			requireDictReference(t, store, dists)
		})
	}
}

func TestDedicatedDictRejectsBinaryTree(t *testing.T) {
	dictState := NewDedicatedDictState(Params{}, dictCorpus)
	ms := NewMatchState(Params{}, SearchBinaryTree)
	ms.AttachDict(dictState)
	ms.Window.Base = append(ms.Window.Base, dictSrc...)
	defer func() {
		if recover() == nil {
			t.Error("binary tree with dedicated dictionary search did not panic")
		}
	}()
	var store SeqStore
	rep := [3]uint32{1, 4, 8}
	ms.CompressBlock(&store, &rep, dictSrc)
}

func TestDictLargeCorpus(t *testing.T) {
	data := zipfText(11, 96<<10)
	dict := data[:32<<10]
	src := data[32<<10:]
	for _, m := range methods {
		t.Run(m.name, func(t *testing.T) {
			var p Params
			dictState := NewDictState(p, m.m, dict)
			store, dists := compressWithDict(t, dictState, m.m, p, dict, src)
			requireDictReference(t, store, dists)
		})
	}
}

func TestExtDict(t *testing.T) {
	data := zipfText(12, 32<<10)
	split := 16 << 10
	old, next := data[:split], data[split:]

	for _, m := range methods {
		t.Run(m.name, func(t *testing.T) {
			ms := NewMatchState(Params{}, m.m)
			ms.Strategy = Lazy
			ms.DictMode = ExtDict

			// Index the old segment while it is still the prefix.
			ms.Window = Window{Base: old, DictBase: old}
			ms.IndexTo(uint32(split - 8))

			// Scroll: the old bytes move behind DictBase, and the new
			// block continues the index space through Base. The dead
			// space below DictLimit in Base stays unread.
			full := make([]byte, len(data))
			copy(full[split:], next)
			ms.Window = Window{
				Base:      full,
				DictBase:  old,
				DictLimit: uint32(split),
			}
			ms.nextToUpdate = uint32(split)

			var store SeqStore
			rep := [3]uint32{1, 4, 8}
			repIn := rep
			lits := ms.CompressBlock(&store, &rep, next)

			got := decodeSequences(t, old, store.Seqs, store.Literals, next[len(next)-lits:], repIn)
			if !bytes.Equal(got, next) {
				t.Fatal("round trip through extDict window mismatch")
			}

			dists := resolveDistances(store.Seqs, repIn)
			pos := 0
			crossing := false
			for i, s := range store.Seqs {
				pos += int(s.LitLen)
				if int(dists[i]) > pos {
					crossing = true
				}
				pos += int(s.MatchLen) + minMatch
			}
			if !crossing {
				t.Error("no sequence reaches into the extDict segment")
			}
		})
	}
}
