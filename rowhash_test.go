package lazymatch

import (
	"testing"
)

func TestTagBitmap(t *testing.T) {
	tags := make([]byte, 32)
	for i := range tags {
		tags[i] = byte(i % 7)
	}
	for tag := byte(0); tag < 8; tag++ {
		m := tagBitmap(tags, tag)
		for i := range tags {
			want := tags[i] == tag
			if got := m&(1<<uint(i)) != 0; got != want {
				t.Fatalf("tag %d bit %d: got %v, want %v", tag, i, got, want)
			}
		}
	}
}

func TestRotateRight(t *testing.T) {
	cases := []struct {
		mask, rot, bits, want uint32
	}{
		{0b0001, 0, 16, 0b0001},
		{0b0001, 1, 16, 0x8000},
		{0x8000, 15, 16, 0x0001},
		{0b0011, 1, 16, 0x8001},
		{0x00000001, 1, 32, 0x80000000},
		{0x80000001, 4, 32, 0x18000000},
	}
	for _, c := range cases {
		if got := rotateRight(c.mask, c.rot, c.bits); got != c.want {
			t.Errorf("rotateRight(%#x, %d, %d) = %#x, want %#x", c.mask, c.rot, c.bits, got, c.want)
		}
	}
}

func TestRowNextIndex(t *testing.T) {
	row := []byte{0}
	const mask = 15
	seen := map[uint32]bool{}
	for i := 0; i < 16; i++ {
		pos := rowNextIndex(row, mask)
		if seen[pos] {
			t.Fatalf("slot %d reused within one cycle", pos)
		}
		seen[pos] = true
		if uint32(row[0]) != pos {
			t.Fatalf("head byte %d does not track slot %d", row[0], pos)
		}
	}
	if pos := rowNextIndex(row, mask); pos != 15 {
		t.Fatalf("cycle restarted at %d, want 15", pos)
	}
}

// TestRowSlotConsistency indexes a block and checks that every stored
// position lies in the row its hash selects and carries its hash tag.
func TestRowSlotConsistency(t *testing.T) {
	src := zipfText(21, 4<<10)
	ms := NewMatchState(Params{}, SearchRowHash)
	ms.Window = Window{Base: src, DictBase: src}
	ms.IndexTo(uint32(len(src) - 8))

	entries := uint32(1) << ms.rowLog()
	rows := uint32(1) << ms.rowHashLog()
	for r := uint32(0); r < rows; r++ {
		tagLine := ms.tagTable[r*(entries+1):][:entries+1]
		for slot := uint32(0); slot < entries; slot++ {
			idx := ms.hashTable[(r<<ms.rowLog())+slot]
			if idx == 0 {
				continue
			}
			if idx >= uint32(len(src)) {
				t.Fatalf("row %d slot %d holds out-of-range index %d", r, slot, idx)
			}
			hashBits := ms.rowHashLog() + shortBits
			h := hashAt(src, int(idx), hashBits, ms.params.mls())
			if h>>shortBits != r {
				t.Fatalf("index %d stored in row %d, hash says row %d", idx, r, h>>shortBits)
			}
			if tagLine[1+slot] != byte(h&shortMask) {
				t.Fatalf("index %d tag %d does not match hash tag %d", idx, tagLine[1+slot], byte(h&shortMask))
			}
		}
	}
}

// TestRowMatchesHashChain runs the same input through the row and
// hash-chain searchers and expects similar parses; the candidate sets
// differ only by row eviction order.
func TestRowMatchesHashChain(t *testing.T) {
	src := zipfText(22, 128<<10)
	rowStore, rowLits, _, _ := compressOnce(Lazy2, SearchRowHash, Params{}, src)
	hcStore, hcLits, _, _ := compressOnce(Lazy2, SearchHashChain, Params{}, src)

	rowSize := estimateOutputSize(rowStore, rowLits)
	hcSize := estimateOutputSize(hcStore, hcLits)
	t.Logf("row=%d hashChain=%d", rowSize, hcSize)
	if float64(rowSize) > float64(hcSize)*1.05 || float64(hcSize) > float64(rowSize)*1.05 {
		t.Errorf("row estimate %d and hash-chain estimate %d diverge more than 5%%", rowSize, hcSize)
	}
}

func TestDedicatedDictLayout(t *testing.T) {
	dict := zipfText(23, 48<<10)
	p := (&Params{}).withDefaults()
	ds := NewDedicatedDictState(Params{}, dict)

	bucketSize := uint32(1) << ddsBucketLog
	cacheSize := bucketSize - 1
	buckets := uint32(1) << (p.HashLog - ddsBucketLog)
	chainSize := uint32(1) << p.ChainLog
	dictEnd := uint32(len(ds.Window.Base))

	for b := uint32(0); b < buckets; b++ {
		bucket := ds.hashTable[b*bucketSize:][:bucketSize]
		for i := uint32(0); i < cacheSize; i++ {
			idx := bucket[i]
			if idx == 0 {
				continue
			}
			if idx < 1 || idx >= dictEnd {
				t.Fatalf("bucket %d cache slot %d holds out-of-range index %d", b, i, idx)
			}
			if i > 0 && bucket[i-1] != 0 && bucket[i-1] <= idx {
				t.Fatalf("bucket %d cache not newest-first: %d then %d", b, bucket[i-1], idx)
			}
		}
		packed := bucket[bucketSize-1]
		chainStart := packed >> 8
		chainLen := packed & 0xFF
		if chainLen > 0 && chainStart+chainLen > chainSize {
			t.Fatalf("bucket %d chain [%d,%d) exceeds chain table", b, chainStart, chainStart+chainLen)
		}
		for i := uint32(0); i < chainLen; i++ {
			if idx := ds.chainTable[chainStart+i]; idx >= dictEnd {
				t.Fatalf("bucket %d chain entry %d out of range: %d", b, i, idx)
			}
		}
	}
}
