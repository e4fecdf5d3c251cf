package lazymatch

// The dedicated-dictionary layout rebuilds a fully chained dictionary
// into a read-only form tuned for lookup: the hash table is treated as
// buckets of 1<<ddsBucketLog slots, where the first bucketSize-1 slots
// cache the most recent positions and the last slot packs a pointer
// into a compacted chain region holding up to 255 older positions.

// loadDedicatedDict indexes the window up to target directly into the
// dedicated layout. The tables must still be empty.
func (ms *MatchState) loadDedicatedDict(target uint32) {
	hashTable := ms.hashTable
	chainTable := ms.chainTable
	chainSize := uint32(1) << ms.params.ChainLog
	idx := ms.nextToUpdate
	minChain := idx
	if chainSize < target {
		minChain = target - chainSize
	}
	bucketSize := uint32(1) << ddsBucketLog
	cacheSize := bucketSize - 1
	chainAttempts := (uint32(1) << ms.params.SearchLog) - cacheSize
	chainLimit := chainAttempts
	if chainLimit > 255 {
		chainLimit = 255
	}

	// The hash table is oversized by a factor of bucketSize. Pretend
	// bucketSize == 1 for now, and use the freed space as a temporary
	// chain table.
	hashLog := ms.params.HashLog - ddsBucketLog
	tmpHashTable := hashTable
	tmpChainTable := hashTable[uint32(1)<<hashLog:]
	tmpChainSize := (bucketSize - 1) << hashLog
	tmpMinChain := idx
	if tmpChainSize < target {
		tmpMinChain = target - tmpChainSize
	}

	if debugAsserts {
		switch {
		case ms.params.ChainLog > 24,
			ms.params.HashLog < ms.params.ChainLog,
			idx == 0,
			tmpMinChain > minChain:
			panic("lazymatch: dedicated dictionary parameters out of range")
		}
	}

	// Fill a conventional hash table and chain table.
	mls := ms.params.mls()
	for ; idx < target; idx++ {
		h := hashAt(ms.Window.Base, int(idx), hashLog, mls)
		if idx >= tmpMinChain {
			tmpChainTable[idx-tmpMinChain] = hashTable[h]
		}
		tmpHashTable[h] = idx
	}

	// Sort the chains into the dedicated chain table.
	chainPos := uint32(0)
	for hashIdx := uint32(0); hashIdx < uint32(1)<<hashLog; hashIdx++ {
		var count uint32
		countBeyondMinChain := uint32(0)
		i := tmpHashTable[hashIdx]
		for count = 0; i >= tmpMinChain && count < cacheSize; count++ {
			// Skip through the chain to the first position that
			// won't be in the bucket's cache slots.
			if i < minChain {
				countBeyondMinChain++
			}
			i = tmpChainTable[i-tmpMinChain]
		}
		if count == cacheSize {
			for count = 0; count < chainLimit; {
				if i < minChain {
					countBeyondMinChain++
					if i == 0 || countBeyondMinChain > cacheSize {
						// Only pull cacheSize entries from beyond
						// minChain, replacing the entries promoted
						// out of the chain table into the cache.
						// That keeps the compacted chains within the
						// space the bucket collapse freed.
						break
					}
				}
				chainTable[chainPos] = i
				chainPos++
				count++
				if i < tmpMinChain {
					break
				}
				i = tmpChainTable[i-tmpMinChain]
			}
		} else {
			count = 0
		}
		if count != 0 {
			tmpHashTable[hashIdx] = ((chainPos - count) << 8) + count
		} else {
			tmpHashTable[hashIdx] = 0
		}
	}
	if debugAsserts && chainPos > chainSize {
		panic("lazymatch: dedicated chain table overflow")
	}

	// Move the packed chain pointers into the last slot of each
	// bucket.
	for hashIdx := uint32(1) << hashLog; hashIdx > 0; {
		hashIdx--
		bucketIdx := hashIdx << ddsBucketLog
		chainPackedPointer := tmpHashTable[hashIdx]
		for i := uint32(0); i < cacheSize; i++ {
			hashTable[bucketIdx+i] = 0
		}
		hashTable[bucketIdx+bucketSize-1] = chainPackedPointer
	}

	// Fill the bucket caches.
	for idx = ms.nextToUpdate; idx < target; idx++ {
		h := hashAt(ms.Window.Base, int(idx), hashLog, mls) << ddsBucketLog
		for i := cacheSize - 1; i > 0; i-- {
			hashTable[h+i] = hashTable[h+i-1]
		}
		hashTable[h] = idx
	}

	ms.nextToUpdate = target
	ms.ddsBuilt = true
}

// ddsSearch scans an attached dedicated dictionary: the bucket cache
// first, then the compacted chain, stopping at nbAttempts total
// verifications.
func (ms *MatchState) ddsSearch(ip, iLimit int, mls uint32, nbAttempts uint32, ml int, offsetPtr *uint32) int {
	dms := ms.Dict
	base := ms.Window.Base
	dictLimit := ms.Window.DictLimit
	curr := uint32(ip)

	ddsBase := dms.Window.Base
	ddsSize := uint32(len(ddsBase))
	ddsIndexDelta := dictLimit - ddsSize
	ddsHashLog := dms.params.HashLog - ddsBucketLog
	ddsIdx := hashAt(base, ip, ddsHashLog, mls) << ddsBucketLog
	bucketSize := uint32(1) << ddsBucketLog
	bucketLimit := bucketSize - 1
	if nbAttempts < bucketLimit {
		bucketLimit = nbAttempts
	}

	ddsAttempt := uint32(0)
	for ; ddsAttempt < bucketLimit; ddsAttempt++ {
		matchIndex := dms.hashTable[ddsIdx+ddsAttempt]
		if matchIndex == 0 {
			return ml
		}

		currentMl := 0
		// matchIndex+4 <= dictionary end, by table construction.
		if load32(ddsBase, int(matchIndex)) == load32(base, ip) {
			currentMl = matchLen2(base[ip+4:iLimit], ddsBase[matchIndex+4:], base[dictLimit:]) + 4
		}

		if currentMl > ml {
			ml = currentMl
			*offsetPtr = curr - (matchIndex + ddsIndexDelta) + repMove
			if ip+currentMl == iLimit {
				return ml
			}
		}
	}

	chainPackedPointer := dms.hashTable[ddsIdx+bucketSize-1]
	chainIndex := chainPackedPointer >> 8
	chainLength := chainPackedPointer & 0xFF
	chainLimit := nbAttempts - ddsAttempt
	if chainLimit > chainLength {
		chainLimit = chainLength
	}

	for chainAttempt := uint32(0); chainAttempt < chainLimit; chainAttempt++ {
		matchIndex := dms.chainTable[chainIndex]
		chainIndex++

		currentMl := 0
		if load32(ddsBase, int(matchIndex)) == load32(base, ip) {
			currentMl = matchLen2(base[ip+4:iLimit], ddsBase[matchIndex+4:], base[dictLimit:]) + 4
		}

		if currentMl > ml {
			ml = currentMl
			*offsetPtr = curr - (matchIndex + ddsIndexDelta) + repMove
			if ip+currentMl == iLimit {
				break
			}
		}
	}
	return ml
}
