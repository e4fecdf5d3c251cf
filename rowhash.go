package lazymatch

import "math/bits"

// The row-hash index splits the hash into a row selector and a one-byte
// tag. Each row is a circular buffer of 16 or 32 positions whose head
// index lives in the first byte of the row's tag line; the tags let a
// search discard most slots with a byte-compare sweep before touching
// the position data.

// rowTags returns the tag line selected by hash: one head byte
// followed by rowEntries tag bytes.
func (ms *MatchState) rowTags(hash uint32, entries uint32) []byte {
	off := (hash >> shortBits) * (entries + 1)
	return ms.tagTable[off : off+entries+1]
}

// rowNextIndex advances the row's write cursor backwards and returns
// the slot it now points at.
func rowNextIndex(tagRow []byte, rowMask uint32) uint32 {
	next := (uint32(tagRow[0]) - 1) & rowMask
	tagRow[0] = byte(next)
	return next
}

// tagBitmap compares every tag in tags against tag and returns a
// bitmap with bit i set when tags[i] matches. On platforms with vector
// byte-compares this is a single instruction sweep; the lane-by-lane
// form below produces the identical bitmap.
func tagBitmap(tags []byte, tag byte) uint32 {
	var m uint32
	for i, t := range tags {
		if t == tag {
			m |= 1 << uint(i)
		}
	}
	return m
}

// rotateRight rotates a 16- or 32-bit bitmap right.
func rotateRight(mask, rotation, totalBits uint32) uint32 {
	if rotation == 0 {
		return mask
	}
	if totalBits == 16 {
		return (mask >> rotation) | uint32(uint16(mask<<(16-rotation)))
	}
	return (mask >> rotation) | (mask << (32 - rotation))
}

// fillHashCache precomputes the hashes of the next prefetchNb positions
// starting at idx. iLimit bounds how far hashing may read.
func (ms *MatchState) fillHashCache(idx uint32, iLimit int, mls uint32) {
	base := ms.Window.Base
	hashBits := ms.rowHashLog() + shortBits
	lim := idx
	if avail := iLimit - int(idx); avail > 0 {
		if avail > prefetchNb {
			avail = prefetchNb
		}
		lim = idx + uint32(avail)
	}
	for ; idx < lim; idx++ {
		ms.hashCache[idx&prefetchMask] = hashAt(base, int(idx), hashBits, mls)
	}
}

// nextCachedHash returns the cached hash for idx and replaces it with
// the hash of the position prefetchNb bytes ahead.
func (ms *MatchState) nextCachedHash(idx uint32, mls uint32) uint32 {
	hashBits := ms.rowHashLog() + shortBits
	newHash := hashAt(ms.Window.Base, int(idx)+prefetchNb, hashBits, mls)
	h := ms.hashCache[idx&prefetchMask]
	ms.hashCache[idx&prefetchMask] = newHash
	return h
}

// rowUpdate inserts positions [nextToUpdate, target) into their rows.
// useCache consumes and refills the hash cache; dictionary loading and
// block stitching pass false and hash directly.
func (ms *MatchState) rowUpdate(target uint32, mls uint32, useCache bool) {
	base := ms.Window.Base
	rowLog := ms.rowLog()
	rowMask := (uint32(1) << rowLog) - 1
	entries := uint32(1) << rowLog
	hashBits := ms.rowHashLog() + shortBits

	for idx := ms.nextToUpdate; idx < target; idx++ {
		var hash uint32
		if useCache {
			hash = ms.nextCachedHash(idx, mls)
		} else {
			hash = hashAt(base, int(idx), hashBits, mls)
		}
		if debugAsserts && hash != hashAt(base, int(idx), hashBits, mls) {
			panic("lazymatch: stale hash cache entry")
		}
		relRow := (hash >> shortBits) << rowLog
		tagRow := ms.rowTags(hash, entries)
		pos := rowNextIndex(tagRow, rowMask)
		tagRow[1+pos] = byte(hash & shortMask)
		ms.hashTable[relRow+pos] = idx
	}
	ms.nextToUpdate = target
}

// rowFindBestMatch updates the row tables up to ip, sweeps ip's row for
// tag matches (newest first), and verifies the survivors. Dictionary
// tails mirror the hash-chain searcher.
func (ms *MatchState) rowFindBestMatch(ip, iLimit int, mls uint32, dictMode DictMode, offsetPtr *uint32) int {
	w := &ms.Window
	base := w.Base
	dictBase := w.DictBase
	dictLimit := w.DictLimit
	curr := uint32(ip)
	rowLog := ms.rowLog()
	rowMask := (uint32(1) << rowLog) - 1
	entries := uint32(1) << rowLog
	lowLimit := w.lowestMatchIndex(curr, ms.params.WindowLog)
	nbAttempts := uint32(1) << ms.params.SearchLog
	ml := 3

	ms.rowUpdate(curr, mls, true)

	hash := ms.nextCachedHash(curr, mls)
	if debugAsserts && ms.nextToUpdate != curr {
		panic("lazymatch: row update out of step")
	}
	relRow := (hash >> shortBits) << rowLog
	tag := byte(hash & shortMask)
	tagRow := ms.rowTags(hash, entries)
	head := uint32(tagRow[0]) & rowMask

	var matchBuffer [32]uint32
	numMatches := 0

	// The bitmap comes out in slot order; rotate so bit k means "k
	// slots after head", i.e. insertion order, newest first.
	matches := tagBitmap(tagRow[1:1+entries], tag)
	matches = rotateRight(matches, head, entries)

	for ; matches != 0 && nbAttempts > 0; nbAttempts-- {
		matchPos := (head + uint32(bits.TrailingZeros32(matches))) & rowMask
		matchIndex := ms.hashTable[relRow+matchPos]
		if matchIndex < lowLimit {
			break
		}
		matchBuffer[numMatches] = matchIndex
		numMatches++
		matches &= matches - 1
	}

	// Insert curr into the row now, saving one iteration of the
	// update loop on the next search.
	{
		pos := rowNextIndex(tagRow, rowMask)
		tagRow[1+pos] = tag
		ms.hashTable[relRow+pos] = curr
		ms.nextToUpdate = curr + 1
	}

	for m := 0; m < numMatches; m++ {
		matchIndex := matchBuffer[m]
		currentMl := 0

		if dictMode != ExtDict || matchIndex >= dictLimit {
			if base[int(matchIndex)+ml] == base[ip+ml] { // potentially better
				currentMl = matchLen(base[ip:iLimit], base[matchIndex:])
			}
		} else {
			if load32(dictBase, int(matchIndex)) == load32(base, ip) {
				currentMl = matchLen2(base[ip+4:iLimit], dictBase[matchIndex+4:dictLimit], base[dictLimit:]) + 4
			}
		}

		if currentMl > ml {
			ml = currentMl
			*offsetPtr = curr - matchIndex + repMove
			if ip+currentMl == iLimit {
				break
			}
		}
	}

	switch dictMode {
	case DedicatedDictSearch:
		ml = ms.ddsSearch(ip, iLimit, mls, nbAttempts, ml, offsetPtr)
	case DictMatchState:
		ml = ms.dmsChainSearch(ip, iLimit, mls, nbAttempts, ml, offsetPtr)
	}
	return ml
}
