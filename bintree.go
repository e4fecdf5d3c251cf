package lazymatch

// The binary-tree index keys each hash bucket's positions by the
// lexicographic order of their suffixes. Insertion is deferred: new
// positions are chained into the bucket with their larger-child slot
// holding unsortedMark, and the next search through the bucket sorts
// them in a batch before descending.

// updateDUBT chains each position in [nextToUpdate, target) into its
// bucket, unsorted.
func (ms *MatchState) updateDUBT(target uint32, mls uint32) {
	base := ms.Window.Base
	hashLog := ms.params.HashLog
	bt := ms.chainTable
	btMask := (uint32(1) << (ms.params.ChainLog - 1)) - 1

	for idx := ms.nextToUpdate; idx < target; idx++ {
		h := hashAt(base, int(idx), hashLog, mls)
		matchIndex := ms.hashTable[h]
		ms.hashTable[h] = idx
		bt[2*(idx&btMask)] = matchIndex // chained like a singly linked list
		bt[2*(idx&btMask)+1] = unsortedMark
	}
	ms.nextToUpdate = target
}

// insertDUBT1 sorts one previously chained position into its bucket's
// tree by a standard descent. inputEnd bounds reads for positions in
// the prefix. It assumes curr >= btLow.
func (ms *MatchState) insertDUBT1(curr uint32, inputEnd int, nbCompares, btLow uint32, dictMode DictMode) {
	w := &ms.Window
	bt := ms.chainTable
	btMask := (uint32(1) << (ms.params.ChainLog - 1)) - 1
	base := w.Base
	dictBase := w.DictBase
	dictLimit := w.DictLimit

	ipSeg := base
	iend := inputEnd
	if curr < dictLimit {
		ipSeg = dictBase
		iend = int(dictLimit)
	}
	commonLengthSmaller, commonLengthLarger := 0, 0

	maxDistance := uint32(1) << ms.params.WindowLog
	windowLow := w.LowLimit
	if curr-w.LowLimit > maxDistance {
		windowLow = curr - maxDistance
	}

	smallerPtr := int(2 * (curr & btMask))
	largerPtr := smallerPtr + 1
	// This candidate is unsorted: the next sorted candidate is reached
	// through the smaller slot, while the larger slot holds the
	// previous unsorted candidate, already saved by the caller.
	matchIndex := bt[smallerPtr]

	for nbCompares > 0 && matchIndex > windowLow {
		nbCompares--
		nextPtr := int(2 * (matchIndex & btMask))
		matchLength := min(commonLengthSmaller, commonLengthLarger)

		var mSeg []byte
		if dictMode != ExtDict || matchIndex+uint32(matchLength) >= dictLimit || curr < dictLimit {
			if dictMode != ExtDict || matchIndex+uint32(matchLength) >= dictLimit {
				mSeg = base
			} else {
				mSeg = dictBase
			}
			matchLength += matchLen(ipSeg[int(curr)+matchLength:iend], mSeg[int(matchIndex)+matchLength:])
		} else {
			mSeg = dictBase
			matchLength += matchLen2(
				ipSeg[int(curr)+matchLength:iend],
				dictBase[int(matchIndex)+matchLength:dictLimit],
				base[dictLimit:])
			if matchIndex+uint32(matchLength) >= dictLimit {
				mSeg = base // preparation for the next read of mSeg[matchLength]
			}
		}

		if int(curr)+matchLength == iend {
			// Equal suffixes: no way to know which side the candidate
			// belongs on. Drop it rather than risk corrupting the tree.
			break
		}

		if mSeg[int(matchIndex)+matchLength] < ipSeg[int(curr)+matchLength] {
			// match is smaller than curr
			bt[smallerPtr] = matchIndex
			commonLengthSmaller = matchLength
			if matchIndex <= btLow {
				smallerPtr = -1 // beyond tree size, stop searching
				break
			}
			smallerPtr = nextPtr + 1
			matchIndex = bt[nextPtr+1]
		} else {
			// match is larger than curr
			bt[largerPtr] = matchIndex
			commonLengthLarger = matchLength
			if matchIndex <= btLow {
				largerPtr = -1
				break
			}
			largerPtr = nextPtr
			matchIndex = bt[nextPtr]
		}
	}

	if smallerPtr >= 0 {
		bt[smallerPtr] = 0
	}
	if largerPtr >= 0 {
		bt[largerPtr] = 0
	}
}

// dubtFindBetterDictMatch descends an attached dictionary's tree after
// the main search, keeping bestLength/offsetPtr if it finds a match
// whose longer length pays for its longer offset.
func (ms *MatchState) dubtFindBetterDictMatch(ip, iend int, offsetPtr *uint32, bestLength int, nbCompares uint32, mls uint32) int {
	dms := ms.Dict
	base := ms.Window.Base
	curr := uint32(ip)

	dictBase := dms.Window.Base
	dictHighLimit := uint32(len(dictBase))
	dictLowLimit := dms.Window.LowLimit
	dictIndexDelta := ms.Window.LowLimit - dictHighLimit

	dictBt := dms.chainTable
	btMask := (uint32(1) << (dms.params.ChainLog - 1)) - 1
	btLow := dictLowLimit
	if btMask < dictHighLimit-dictLowLimit {
		btLow = dictHighLimit - btMask
	}

	dictMatchIndex := dms.hashTable[hashAt(base, ip, dms.params.HashLog, mls)]
	commonLengthSmaller, commonLengthLarger := 0, 0

	for nbCompares > 0 && dictMatchIndex > dictLowLimit {
		nbCompares--
		nextPtr := int(2 * (dictMatchIndex & btMask))
		matchLength := min(commonLengthSmaller, commonLengthLarger)
		matchLength += matchLen2(
			base[int(curr)+matchLength:iend],
			dictBase[int(dictMatchIndex)+matchLength:dictHighLimit],
			base[ms.Window.DictLimit:])
		mSeg := dictBase
		mOff := int(dictMatchIndex)
		if dictMatchIndex+uint32(matchLength) >= dictHighLimit {
			mSeg = base
			mOff = int(dictMatchIndex + dictIndexDelta)
		}

		if matchLength > bestLength {
			matchIndex := dictMatchIndex + dictIndexDelta
			if 4*(matchLength-bestLength) > highBit(curr-matchIndex+1)-highBit(*offsetPtr+1) {
				bestLength = matchLength
				*offsetPtr = curr - matchIndex + repMove
			}
			if int(curr)+matchLength == iend {
				break // reached end of input: ordering unknowable
			}
		}

		if mSeg[mOff+matchLength] < base[int(curr)+matchLength] {
			if dictMatchIndex <= btLow {
				break
			}
			commonLengthSmaller = matchLength
			dictMatchIndex = dictBt[nextPtr+1]
		} else {
			if dictMatchIndex <= btLow {
				break
			}
			commonLengthLarger = matchLength
			dictMatchIndex = dictBt[nextPtr]
		}
	}
	return bestLength
}

// dubtFindBestMatch sorts ip's bucket backlog, then inserts ip by
// descent, tracking the best match seen on the way down.
func (ms *MatchState) dubtFindBestMatch(ip, iend int, offsetPtr *uint32, mls uint32, dictMode DictMode) int {
	w := &ms.Window
	base := w.Base
	h := hashAt(base, ip, ms.params.HashLog, mls)
	matchIndex := ms.hashTable[h]

	curr := uint32(ip)
	windowLow := w.lowestMatchIndex(curr, ms.params.WindowLog)

	bt := ms.chainTable
	btMask := (uint32(1) << (ms.params.ChainLog - 1)) - 1
	btLow := uint32(0)
	if btMask < curr {
		btLow = curr - btMask
	}
	unsortLimit := max(btLow, windowLow)

	nbCompares := uint32(1) << ms.params.SearchLog
	nbCandidates := nbCompares
	previousCandidate := uint32(0)

	// Reach the end of the unsorted candidate list, reversing it onto
	// previousCandidate so the oldest is sorted first.
	for matchIndex > unsortLimit && bt[2*(matchIndex&btMask)+1] == unsortedMark && nbCandidates > 1 {
		bt[2*(matchIndex&btMask)+1] = previousCandidate
		previousCandidate = matchIndex
		matchIndex = bt[2*(matchIndex&btMask)]
		nbCandidates--
	}

	// Nullify the last candidate if it's still unsorted; sorting it
	// without its successors would risk a mis-sort.
	if matchIndex > unsortLimit && bt[2*(matchIndex&btMask)+1] == unsortedMark {
		bt[2*(matchIndex&btMask)] = 0
		bt[2*(matchIndex&btMask)+1] = 0
	}

	// Batch-sort the stacked candidates.
	matchIndex = previousCandidate
	for matchIndex != 0 {
		nextCandidateIdx := bt[2*(matchIndex&btMask)+1]
		ms.insertDUBT1(matchIndex, iend, nbCandidates, unsortLimit, dictMode)
		matchIndex = nextCandidateIdx
		nbCandidates++
	}

	// Find the longest match while inserting curr.
	commonLengthSmaller, commonLengthLarger := 0, 0
	dictBase := w.DictBase
	dictLimit := w.DictLimit
	smallerPtr := int(2 * (curr & btMask))
	largerPtr := smallerPtr + 1
	matchEndIdx := curr + 8 + 1
	bestLength := 0

	matchIndex = ms.hashTable[h]
	ms.hashTable[h] = curr

	for nbCompares > 0 && matchIndex > windowLow {
		nbCompares--
		nextPtr := int(2 * (matchIndex & btMask))
		matchLength := min(commonLengthSmaller, commonLengthLarger)

		var mSeg []byte
		if dictMode != ExtDict || matchIndex+uint32(matchLength) >= dictLimit {
			mSeg = base
			matchLength += matchLen(base[int(curr)+matchLength:iend], base[int(matchIndex)+matchLength:])
		} else {
			mSeg = dictBase
			matchLength += matchLen2(
				base[int(curr)+matchLength:iend],
				dictBase[int(matchIndex)+matchLength:dictLimit],
				base[dictLimit:])
			if matchIndex+uint32(matchLength) >= dictLimit {
				mSeg = base // to prepare for the next read of mSeg[matchLength]
			}
		}

		if matchLength > bestLength {
			if uint32(matchLength) > matchEndIdx-matchIndex {
				matchEndIdx = matchIndex + uint32(matchLength)
			}
			if 4*(matchLength-bestLength) > highBit(curr-matchIndex+1)-highBit(*offsetPtr+1) {
				bestLength = matchLength
				*offsetPtr = curr - matchIndex + repMove
			}
			if int(curr)+matchLength == iend {
				// Equal : no way to know if inf or sup.
				if dictMode == DictMatchState {
					nbCompares = 0 // also skip the dictionary descent
				}
				break
			}
		}

		if mSeg[int(matchIndex)+matchLength] < base[int(curr)+matchLength] {
			bt[smallerPtr] = matchIndex
			commonLengthSmaller = matchLength
			if matchIndex <= btLow {
				smallerPtr = -1
				break
			}
			smallerPtr = nextPtr + 1
			matchIndex = bt[nextPtr+1]
		} else {
			bt[largerPtr] = matchIndex
			commonLengthLarger = matchLength
			if matchIndex <= btLow {
				largerPtr = -1
				break
			}
			largerPtr = nextPtr
			matchIndex = bt[nextPtr]
		}
	}

	if smallerPtr >= 0 {
		bt[smallerPtr] = 0
	}
	if largerPtr >= 0 {
		bt[largerPtr] = 0
	}

	if dictMode == DictMatchState && nbCompares > 0 {
		bestLength = ms.dubtFindBetterDictMatch(ip, iend, offsetPtr, bestLength, nbCompares, mls)
	}

	if debugAsserts && matchEndIdx <= curr+8 {
		panic("lazymatch: nextToUpdate would not advance")
	}
	ms.nextToUpdate = matchEndIdx - 8 // skip repetitive patterns
	return bestLength
}

// btFindBestMatch catches the tree up to ip and searches.
func (ms *MatchState) btFindBestMatch(ip, iLimit int, mls uint32, dictMode DictMode, offsetPtr *uint32) int {
	if uint32(ip) < ms.nextToUpdate {
		return 0 // skipped area
	}
	ms.updateDUBT(uint32(ip), mls)
	return ms.dubtFindBestMatch(ip, iLimit, offsetPtr, mls, dictMode)
}

// sortDictTree sorts every bucket of a freshly loaded dictionary tree
// so that attached-dictionary descents see a fully ordered structure.
func (ms *MatchState) sortDictTree(mls uint32) {
	bt := ms.chainTable
	btMask := (uint32(1) << (ms.params.ChainLog - 1)) - 1
	for h := range ms.hashTable {
		matchIndex := ms.hashTable[h]
		previousCandidate := uint32(0)
		for matchIndex > ms.Window.LowLimit && bt[2*(matchIndex&btMask)+1] == unsortedMark {
			bt[2*(matchIndex&btMask)+1] = previousCandidate
			previousCandidate = matchIndex
			matchIndex = bt[2*(matchIndex&btMask)]
		}
		matchIndex = previousCandidate
		for matchIndex != 0 {
			nextCandidateIdx := bt[2*(matchIndex&btMask)+1]
			ms.insertDUBT1(matchIndex, len(ms.Window.Base), ^uint32(0), ms.Window.LowLimit, NoDict)
			matchIndex = nextCandidateIdx
		}
	}
}
