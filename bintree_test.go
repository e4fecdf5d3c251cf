package lazymatch

import (
	"bytes"
	"testing"
)

// TestTreeOrdering searches every position of a block and then checks
// the binary-search-tree invariant on the sorted buckets: left
// subtrees hold lexicographically smaller suffixes, right subtrees
// larger ones.
func TestTreeOrdering(t *testing.T) {
	src := zipfText(41, 16<<10)
	ms := NewMatchState(Params{}, SearchBinaryTree)
	ms.Window = Window{Base: src, DictBase: src}
	iend := len(src)
	mls := ms.params.mls()
	for p := 1; p+16 < iend; p++ {
		off := uint32(noOffsetFound)
		ms.btFindBestMatch(p, iend, mls, NoDict, &off)
	}

	bt := ms.chainTable
	btMask := (uint32(1) << (ms.params.ChainLog - 1)) - 1
	if uint32(len(src)) > btMask {
		t.Fatal("corpus larger than the tree; slot aliasing would confuse the check")
	}

	var walk func(idx uint32, lo, hi []byte, depth int)
	walk = func(idx uint32, lo, hi []byte, depth int) {
		// Index 1 is ambiguous with the unsorted marker; skip it
		// along with empty slots and over-deep chains.
		if idx <= 1 || depth > 64 {
			return
		}
		suf := src[idx:]
		if lo != nil && bytes.Compare(suf, lo) < 0 {
			t.Fatalf("node %d violates the lower bound", idx)
		}
		if hi != nil && bytes.Compare(suf, hi) > 0 {
			t.Fatalf("node %d violates the upper bound", idx)
		}
		walk(bt[2*(idx&btMask)], lo, suf, depth+1)
		walk(bt[2*(idx&btMask)+1], suf, hi, depth+1)
	}

	checked := 0
	for _, root := range ms.hashTable {
		if root <= 1 || bt[2*(root&btMask)+1] == unsortedMark {
			continue // empty, ambiguous, or still unsorted
		}
		walk(bt[2*(root&btMask)], nil, src[root:], 1)
		walk(bt[2*(root&btMask)+1], src[root:], nil, 1)
		checked++
	}
	if checked == 0 {
		t.Fatal("no sorted buckets to check")
	}
}

// TestTreeSkippedArea checks the update-skip contract: after a search
// inside a long repetitive match, the tree refuses to search skipped
// positions instead of corrupting itself.
func TestTreeSkippedArea(t *testing.T) {
	src := append(bytes.Repeat([]byte("abcdefgh"), 64), zipfText(42, 1<<10)...)
	ms := NewMatchState(Params{}, SearchBinaryTree)
	ms.Window = Window{Base: src, DictBase: src}
	mls := ms.params.mls()

	off := uint32(noOffsetFound)
	ms.btFindBestMatch(16, len(src), mls, NoDict, &off)
	if ms.nextToUpdate <= 17 {
		t.Fatalf("nextToUpdate = %d after a long match, expected a skip", ms.nextToUpdate)
	}
	skipped := ms.nextToUpdate
	if got := ms.btFindBestMatch(17, len(src), mls, NoDict, &off); got != 0 {
		t.Errorf("search inside the skipped area returned length %d, want 0", got)
	}
	if ms.nextToUpdate != skipped {
		t.Errorf("skipped-area search moved nextToUpdate from %d to %d", skipped, ms.nextToUpdate)
	}
}
