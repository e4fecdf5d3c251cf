package lazymatch

// hcUpdate chains each position in [nextToUpdate, target) into its hash
// bucket. Positions are assumed to lie in the prefix.
func (ms *MatchState) hcUpdate(target uint32, mls uint32) {
	base := ms.Window.Base
	hashLog := ms.params.HashLog
	chainMask := (uint32(1) << ms.params.ChainLog) - 1
	for idx := ms.nextToUpdate; idx < target; idx++ {
		h := hashAt(base, int(idx), hashLog, mls)
		ms.chainTable[idx&chainMask] = ms.hashTable[h]
		ms.hashTable[h] = idx
	}
	ms.nextToUpdate = target
}

// insertAndFindFirstIndex catches the chain table up to ip and returns
// the head of ip's hash bucket.
func (ms *MatchState) insertAndFindFirstIndex(ip int, mls uint32) uint32 {
	ms.hcUpdate(uint32(ip), mls)
	return ms.hashTable[hashAt(ms.Window.Base, ip, ms.params.HashLog, mls)]
}

// hcFindBestMatch walks ip's hash chain looking for the longest match,
// then continues into the attached dictionary if one is present. It
// returns the best length found (3 when nothing qualified) and writes
// the winning offset code through offsetPtr.
func (ms *MatchState) hcFindBestMatch(ip, iLimit int, mls uint32, dictMode DictMode, offsetPtr *uint32) int {
	w := &ms.Window
	base := w.Base
	dictBase := w.DictBase
	dictLimit := w.DictLimit
	curr := uint32(ip)
	chainSize := uint32(1) << ms.params.ChainLog
	chainMask := chainSize - 1
	lowLimit := w.lowestMatchIndex(curr, ms.params.WindowLog)
	minChain := uint32(0)
	if curr > chainSize {
		minChain = curr - chainSize
	}
	nbAttempts := uint32(1) << ms.params.SearchLog
	ml := 3 // a match must beat this to be reported

	matchIndex := ms.insertAndFindFirstIndex(ip, mls)

	for ; matchIndex >= lowLimit && nbAttempts > 0; nbAttempts-- {
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
				break // best possible, avoids a read overflow on the next attempt
			}
		}

		if matchIndex <= minChain {
			break
		}
		matchIndex = ms.chainTable[matchIndex&chainMask]
	}

	switch dictMode {
	case DedicatedDictSearch:
		ml = ms.ddsSearch(ip, iLimit, mls, nbAttempts, ml, offsetPtr)
	case DictMatchState:
		ml = ms.dmsChainSearch(ip, iLimit, mls, nbAttempts, ml, offsetPtr)
	}
	return ml
}

// dmsChainSearch continues a search into an attached dictionary's hash
// chains. Offsets are rebased so that the dictionary logically precedes
// the prefix.
func (ms *MatchState) dmsChainSearch(ip, iLimit int, mls uint32, nbAttempts uint32, ml int, offsetPtr *uint32) int {
	dms := ms.Dict
	base := ms.Window.Base
	dictLimit := ms.Window.DictLimit
	curr := uint32(ip)

	dmsBase := dms.Window.Base
	dmsSize := uint32(len(dmsBase))
	dmsLowestIndex := dms.Window.DictLimit
	dmsChainSize := uint32(1) << dms.params.ChainLog
	dmsChainMask := dmsChainSize - 1
	dmsIndexDelta := dictLimit - dmsSize
	dmsMinChain := uint32(0)
	if dmsSize > dmsChainSize {
		dmsMinChain = dmsSize - dmsChainSize
	}

	matchIndex := dms.hashTable[hashAt(base, ip, dms.params.HashLog, mls)]

	for ; matchIndex >= dmsLowestIndex && nbAttempts > 0; nbAttempts-- {
		currentMl := 0
		if load32(dmsBase, int(matchIndex)) == load32(base, ip) {
			currentMl = matchLen2(base[ip+4:iLimit], dmsBase[matchIndex+4:dmsSize], base[dictLimit:]) + 4
		}

		if currentMl > ml {
			ml = currentMl
			*offsetPtr = curr - (matchIndex + dmsIndexDelta) + repMove
			if ip+currentMl == iLimit {
				break
			}
		}

		if matchIndex <= dmsMinChain {
			break
		}
		matchIndex = dms.chainTable[matchIndex&dmsChainMask]
	}
	return ml
}
