package lazymatch

// searchMax looks for the best match at ip. It returns the match
// length (3 or less when nothing qualified) and writes the offset code
// through offsetPtr only when it improves on what it found.
type searchMax func(ip, iLimit int, offsetPtr *uint32) int

func (ms *MatchState) searcher(dictMode DictMode) searchMax {
	mls := ms.params.mls()
	switch ms.Method {
	case SearchBinaryTree:
		if dictMode == DedicatedDictSearch {
			panic("lazymatch: dedicated dictionary search is not supported with the binary tree")
		}
		return func(ip, iLimit int, offsetPtr *uint32) int {
			return ms.btFindBestMatch(ip, iLimit, mls, dictMode, offsetPtr)
		}
	case SearchRowHash:
		return func(ip, iLimit int, offsetPtr *uint32) int {
			return ms.rowFindBestMatch(ip, iLimit, mls, dictMode, offsetPtr)
		}
	default:
		return func(ip, iLimit int, offsetPtr *uint32) int {
			return ms.hcFindBestMatch(ip, iLimit, mls, dictMode, offsetPtr)
		}
	}
}

// CompressBlock parses src into sequences appended to store. src must
// be the final len(src) bytes of ms.Window.Base; earlier window
// content serves as match history. rep carries the repeat-offset
// history in and out of the block (0 disables an entry). The return
// value is the number of trailing literal bytes not covered by any
// sequence.
func (ms *MatchState) CompressBlock(store *SeqStore, rep *[3]uint32, src []byte) int {
	istart := len(ms.Window.Base) - len(src)
	if istart < 0 {
		panic("lazymatch: src is longer than the window prefix")
	}
	depth := int(ms.Strategy)

	var lits int
	if ms.DictMode == ExtDict {
		lits = ms.lazyExtDict(store, rep, istart, depth)
	} else {
		lits = ms.lazyGeneric(store, rep, istart, depth, ms.DictMode)
	}

	// The tables are considered caught up to the block end; the final
	// bytes have no room left for hashing and are not worth indexing.
	if end := ms.Window.nextSrc(); ms.nextToUpdate < end {
		ms.nextToUpdate = end
	}
	return lits
}

// lazyGeneric is the main parsing loop for the noDict, dictMatchState
// and dedicatedDictSearch modes.
func (ms *MatchState) lazyGeneric(store *SeqStore, rep *[3]uint32, istart, depth int, dictMode DictMode) int {
	base := ms.Window.Base
	ip := istart
	anchor := istart
	iend := len(base)
	ilimit := iend - 16
	prefixLowestIndex := ms.Window.DictLimit
	prefixLowest := int(prefixLowestIndex)

	search := ms.searcher(dictMode)

	offset1, offset2 := rep[0], rep[1]
	var savedOffset uint32

	isDMS := dictMode == DictMatchState
	isDDS := dictMode == DedicatedDictSearch
	isDxS := isDMS || isDDS
	var dictBase []byte
	var dictLowestIndex, dictEndIdx, dictIndexDelta uint32
	dictAndPrefixLength := ip - prefixLowest
	if isDxS {
		dms := ms.Dict
		dictBase = dms.Window.Base
		dictLowestIndex = dms.Window.DictLimit
		dictEndIdx = uint32(len(dictBase))
		dictIndexDelta = prefixLowestIndex - dictEndIdx
		dictAndPrefixLength += int(dictEndIdx - dictLowestIndex)
	}

	// dxsRepCount counts a repeat match for the bytes at pos against
	// logical index repIndex, which may land in the attached
	// dictionary. Returns 0 when the first four bytes don't match.
	dxsRepCount := func(pos int, repIndex uint32) int {
		if repIndex < prefixLowestIndex {
			d := int(repIndex - dictIndexDelta)
			if load32(dictBase, d) != load32(base, pos) {
				return 0
			}
			return matchLen2(base[pos+4:iend], dictBase[d+4:dictEndIdx], base[prefixLowest:]) + 4
		}
		if load32(base, int(repIndex)) != load32(base, pos) {
			return 0
		}
		return matchLen(base[pos+4:iend], base[repIndex+4:]) + 4
	}

	if dictAndPrefixLength == 0 {
		ip++ // nothing behind the first position to match against
	}
	if dictMode == NoDict {
		curr := uint32(ip)
		windowLow := ms.Window.lowestPrefixIndex(curr, ms.params.WindowLog)
		maxRep := curr - windowLow
		if offset2 > maxRep {
			savedOffset, offset2 = offset2, 0
		}
		if offset1 > maxRep {
			savedOffset, offset1 = offset1, 0
		}
	}
	if debugAsserts && isDxS {
		// The dictionary repCode checks don't handle disabled offsets.
		if int(offset1) > dictAndPrefixLength || int(offset2) > dictAndPrefixLength {
			panic("lazymatch: repeat offset exceeds dictionary and prefix")
		}
	}
	if ms.Method == SearchRowHash {
		ms.fillHashCache(ms.nextToUpdate, ilimit, ms.params.mls())
	}

	for ip < ilimit {
		matchLength := 0
		var offset uint32
		start := ip + 1

		// Check repCode at ip+1.
		if isDxS {
			repIndex := uint32(ip) + 1 - offset1
			if prefixLowestIndex-1-repIndex >= 3 { // intentional underflow
				if ml := dxsRepCount(ip+1, repIndex); ml > 0 {
					matchLength = ml
					if depth == 0 {
						goto storeSequence
					}
				}
			}
		}
		if dictMode == NoDict && offset1 > 0 &&
			load32(base, ip+1-int(offset1)) == load32(base, ip+1) {
			matchLength = matchLen(base[ip+1+4:iend], base[ip+1+4-int(offset1):]) + 4
			if depth == 0 {
				goto storeSequence
			}
		}

		// First search (depth 0).
		{
			offsetFound := uint32(noOffsetFound)
			if ml2 := search(ip, iend, &offsetFound); ml2 > matchLength {
				matchLength, start, offset = ml2, ip, offsetFound
			}
		}

		if matchLength < 4 {
			ip += (ip-anchor)>>searchStrength + 1 // jump faster over incompressible sections
			continue
		}

		// Let's try to find a better solution.
		if depth >= 1 {
			for ip < ilimit {
				ip++
				if dictMode == NoDict && offset != 0 && offset1 > 0 &&
					load32(base, ip) == load32(base, ip-int(offset1)) {
					mlRep := matchLen(base[ip+4:iend], base[ip+4-int(offset1):]) + 4
					gain2 := mlRep * 3
					gain1 := matchLength*3 - highBit(offset+1) + 1
					if mlRep >= 4 && gain2 > gain1 {
						matchLength, offset, start = mlRep, 0, ip
					}
				}
				if isDxS {
					repIndex := uint32(ip) - offset1
					if prefixLowestIndex-1-repIndex >= 3 { // intentional underflow
						if mlRep := dxsRepCount(ip, repIndex); mlRep >= 4 {
							gain2 := mlRep * 3
							gain1 := matchLength*3 - highBit(offset+1) + 1
							if gain2 > gain1 {
								matchLength, offset, start = mlRep, 0, ip
							}
						}
					}
				}
				{
					offsetFound := uint32(noOffsetFound)
					ml2 := search(ip, iend, &offsetFound)
					gain2 := ml2*4 - highBit(offsetFound+1) // raw approximation
					gain1 := matchLength*4 - highBit(offset+1) + 4
					if ml2 >= 4 && gain2 > gain1 {
						matchLength, offset, start = ml2, offsetFound, ip
						continue // search a better one
					}
				}

				// Let's find an even better one.
				if depth == 2 && ip < ilimit {
					ip++
					if dictMode == NoDict && offset != 0 && offset1 > 0 &&
						load32(base, ip) == load32(base, ip-int(offset1)) {
						mlRep := matchLen(base[ip+4:iend], base[ip+4-int(offset1):]) + 4
						gain2 := mlRep * 4
						gain1 := matchLength*4 - highBit(offset+1) + 1
						if mlRep >= 4 && gain2 > gain1 {
							matchLength, offset, start = mlRep, 0, ip
						}
					}
					if isDxS {
						repIndex := uint32(ip) - offset1
						if prefixLowestIndex-1-repIndex >= 3 { // intentional underflow
							if mlRep := dxsRepCount(ip, repIndex); mlRep >= 4 {
								gain2 := mlRep * 4
								gain1 := matchLength*4 - highBit(offset+1) + 1
								if gain2 > gain1 {
									matchLength, offset, start = mlRep, 0, ip
								}
							}
						}
					}
					{
						offsetFound := uint32(noOffsetFound)
						ml2 := search(ip, iend, &offsetFound)
						gain2 := ml2*4 - highBit(offsetFound+1)
						gain1 := matchLength*4 - highBit(offset+1) + 7
						if ml2 >= 4 && gain2 > gain1 {
							matchLength, offset, start = ml2, offsetFound, ip
							continue
						}
					}
				}
				break // nothing found: store previous solution
			}
		}

		// Catch up: extend the chosen match backwards.
		if offset != 0 {
			if dictMode == NoDict {
				matchIdx := start - int(offset-repMove)
				for start > anchor && matchIdx > prefixLowest &&
					base[start-1] == base[matchIdx-1] {
					start--
					matchIdx--
					matchLength++
				}
			}
			if isDxS {
				matchIndex := uint32(start) - (offset - repMove)
				mSeg := base
				mIdx := int(matchIndex)
				mStart := prefixLowest
				if matchIndex < prefixLowestIndex {
					mSeg = dictBase
					mIdx = int(matchIndex - dictIndexDelta)
					mStart = int(dictLowestIndex)
				}
				for start > anchor && mIdx > mStart && base[start-1] == mSeg[mIdx-1] {
					start--
					mIdx--
					matchLength++
				}
			}
			offset2 = offset1
			offset1 = offset - repMove
		}

	storeSequence:
		{
			offCode := uint32(1)
			if offset != 0 {
				offCode = offset
			}
			store.storeSeq(base[anchor:start], offCode, uint32(matchLength-minMatch))
			ip = start + matchLength
			anchor = ip
		}

		// Check immediate repcode.
		if isDxS {
			for ip <= ilimit {
				repIndex := uint32(ip) - offset2
				if prefixLowestIndex-1-repIndex >= 3 { // intentional underflow
					if ml := dxsRepCount(ip, repIndex); ml > 0 {
						offset1, offset2 = offset2, offset1 // swap offset history
						store.storeSeq(nil, 2, uint32(ml-minMatch))
						ip += ml
						anchor = ip
						continue
					}
				}
				break
			}
		}
		if dictMode == NoDict {
			for ip <= ilimit && offset2 > 0 &&
				load32(base, ip) == load32(base, ip-int(offset2)) {
				ml := matchLen(base[ip+4:iend], base[ip+4-int(offset2):]) + 4
				offset1, offset2 = offset2, offset1 // swap repcodes
				store.storeSeq(nil, 2, uint32(ml-minMatch))
				ip += ml
				anchor = ip
			}
		}
	}

	// Save reps for the next block.
	rep[0] = offset1
	if offset1 == 0 {
		rep[0] = savedOffset
	}
	rep[1] = offset2
	if offset2 == 0 {
		rep[1] = savedOffset
	}

	// Return the last literals size.
	return iend - anchor
}

// lazyExtDict is the parsing loop for windows whose older part has
// scrolled into the extDict segment. Every candidate and repeat probe
// may cross the segment boundary.
func (ms *MatchState) lazyExtDict(store *SeqStore, rep *[3]uint32, istart, depth int) int {
	base := ms.Window.Base
	dictBase := ms.Window.DictBase
	dictLimit := ms.Window.DictLimit
	prefixStart := int(dictLimit)
	ip := istart
	anchor := istart
	iend := len(base)
	ilimit := iend - 16
	windowLog := ms.params.WindowLog

	search := ms.searcher(ExtDict)

	offset1, offset2 := rep[0], rep[1]

	// extRepCount counts a repeat match for the bytes at pos against
	// logical index repIndex, which may land in the extDict segment.
	// Returns 0 when repIndex is not usable or the first four bytes
	// don't match.
	extRepCount := func(pos int, repIndex, windowLow uint32) int {
		if dictLimit-1-repIndex < 3 || repIndex <= windowLow { // intentional overflow
			return 0
		}
		repSeg := base
		repEnd := iend
		if repIndex < dictLimit {
			repSeg = dictBase
			repEnd = int(dictLimit)
		}
		if load32(repSeg, int(repIndex)) != load32(base, pos) {
			return 0
		}
		return matchLen2(base[pos+4:iend], repSeg[repIndex+4:repEnd], base[dictLimit:]) + 4
	}

	if ip == prefixStart {
		ip++
	}
	if ms.Method == SearchRowHash {
		ms.fillHashCache(ms.nextToUpdate, ilimit, ms.params.mls())
	}

	for ip < ilimit {
		matchLength := 0
		var offset uint32
		start := ip + 1
		curr := uint32(ip)

		// Check repCode at ip+1.
		{
			windowLow := ms.Window.lowestMatchIndex(curr+1, windowLog)
			if ml := extRepCount(ip+1, curr+1-offset1, windowLow); ml > 0 {
				matchLength = ml
				if depth == 0 {
					goto storeSequence
				}
			}
		}

		// First search (depth 0).
		{
			offsetFound := uint32(noOffsetFound)
			if ml2 := search(ip, iend, &offsetFound); ml2 > matchLength {
				matchLength, start, offset = ml2, ip, offsetFound
			}
		}

		if matchLength < 4 {
			ip += (ip-anchor)>>searchStrength + 1 // jump faster over incompressible sections
			continue
		}

		// Let's try to find a better solution.
		if depth >= 1 {
			for ip < ilimit {
				ip++
				curr++
				if offset != 0 {
					windowLow := ms.Window.lowestMatchIndex(curr, windowLog)
					if mlRep := extRepCount(ip, curr-offset1, windowLow); mlRep >= 4 {
						gain2 := mlRep * 3
						gain1 := matchLength*3 - highBit(offset+1) + 1
						if gain2 > gain1 {
							matchLength, offset, start = mlRep, 0, ip
						}
					}
				}
				{
					offsetFound := uint32(noOffsetFound)
					ml2 := search(ip, iend, &offsetFound)
					gain2 := ml2*4 - highBit(offsetFound+1) // raw approximation
					gain1 := matchLength*4 - highBit(offset+1) + 4
					if ml2 >= 4 && gain2 > gain1 {
						matchLength, offset, start = ml2, offsetFound, ip
						continue // search a better one
					}
				}

				// Let's find an even better one.
				if depth == 2 && ip < ilimit {
					ip++
					curr++
					if offset != 0 {
						windowLow := ms.Window.lowestMatchIndex(curr, windowLog)
						if mlRep := extRepCount(ip, curr-offset1, windowLow); mlRep >= 4 {
							gain2 := mlRep * 4
							gain1 := matchLength*4 - highBit(offset+1) + 1
							if gain2 > gain1 {
								matchLength, offset, start = mlRep, 0, ip
							}
						}
					}
					{
						offsetFound := uint32(noOffsetFound)
						ml2 := search(ip, iend, &offsetFound)
						gain2 := ml2*4 - highBit(offsetFound+1)
						gain1 := matchLength*4 - highBit(offset+1) + 7
						if ml2 >= 4 && gain2 > gain1 {
							matchLength, offset, start = ml2, offsetFound, ip
							continue
						}
					}
				}
				break // nothing found: store previous solution
			}
		}

		// Catch up within whichever segment the match starts in.
		if offset != 0 {
			matchIndex := uint32(start) - (offset - repMove)
			mSeg := base
			mStart := prefixStart
			if matchIndex < dictLimit {
				mSeg = dictBase
				mStart = int(ms.Window.LowLimit)
			}
			mIdx := int(matchIndex)
			for start > anchor && mIdx > mStart && base[start-1] == mSeg[mIdx-1] {
				start--
				mIdx--
				matchLength++
			}
			offset2 = offset1
			offset1 = offset - repMove
		}

	storeSequence:
		{
			offCode := uint32(1)
			if offset != 0 {
				offCode = offset
			}
			store.storeSeq(base[anchor:start], offCode, uint32(matchLength-minMatch))
			ip = start + matchLength
			anchor = ip
		}

		// Check immediate repcode.
		for ip <= ilimit {
			repCurrent := uint32(ip)
			windowLow := ms.Window.lowestMatchIndex(repCurrent, windowLog)
			if ml := extRepCount(ip, repCurrent-offset2, windowLow); ml > 0 {
				offset1, offset2 = offset2, offset1 // swap offset history
				store.storeSeq(nil, 2, uint32(ml-minMatch))
				ip += ml
				anchor = ip
				continue
			}
			break
		}
	}

	// Save reps for the next block.
	rep[0] = offset1
	rep[1] = offset2

	// Return the last literals size.
	return iend - anchor
}
