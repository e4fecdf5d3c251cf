package lazymatch

import (
	"github.com/klauspost/compress"
)

// estimateOutputSize approximates the entropy-coded size of a
// sequence stream in bytes: Shannon-coded literals plus a flat three
// bytes per sequence. Good enough to compare parses of the same
// input.
func estimateOutputSize(store *SeqStore, litRemaining int) int {
	litBits := compress.ShannonEntropyBits(store.Literals)
	return litBits/8 + 3*len(store.Seqs) + litRemaining
}
