package lazymatch

import (
	"bytes"
	"sync"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

var benchCorpus = sync.OnceValue(func() []byte {
	return zipfText(99, 1<<20)
})

// incompressibleCorpus is real compressed data, which is as close to
// incompressible as inputs get in practice.
var incompressibleCorpus = sync.OnceValue(func() []byte {
	var buf bytes.Buffer
	w, err := zstd.NewWriter(&buf)
	if err != nil {
		panic(err)
	}
	w.Write(benchCorpus())
	w.Close()
	return buf.Bytes()
})

func benchmark(b *testing.B, strategy Strategy, method SearchMethod, data []byte) {
	b.SetBytes(int64(len(data)))
	b.ReportAllocs()

	var est int
	for i := 0; i < b.N; i++ {
		ms := NewMatchState(Params{}, method)
		ms.Strategy = strategy
		ms.Window = Window{Base: data, DictBase: data}
		var store SeqStore
		rep := [3]uint32{1, 4, 8}
		lits := ms.CompressBlock(&store, &rep, data)
		est = estimateOutputSize(&store, lits)
	}
	b.ReportMetric(float64(len(data))/float64(est), "ratio")
}

func BenchmarkGreedyHashChain(b *testing.B)  { benchmark(b, Greedy, SearchHashChain, benchCorpus()) }
func BenchmarkLazyHashChain(b *testing.B)    { benchmark(b, Lazy, SearchHashChain, benchCorpus()) }
func BenchmarkLazy2HashChain(b *testing.B)   { benchmark(b, Lazy2, SearchHashChain, benchCorpus()) }
func BenchmarkLazy2BinaryTree(b *testing.B)  { benchmark(b, Lazy2, SearchBinaryTree, benchCorpus()) }
func BenchmarkGreedyRowHash(b *testing.B)    { benchmark(b, Greedy, SearchRowHash, benchCorpus()) }
func BenchmarkLazy2RowHash(b *testing.B)     { benchmark(b, Lazy2, SearchRowHash, benchCorpus()) }
func BenchmarkIncompressible(b *testing.B) {
	benchmark(b, Lazy, SearchRowHash, incompressibleCorpus())
}

// Baselines: the same corpus through real codecs, for calibrating the
// estimated ratios above.

func BenchmarkBaselineSnappy(b *testing.B) {
	data := benchCorpus()
	b.SetBytes(int64(len(data)))
	var out []byte
	for i := 0; i < b.N; i++ {
		out = snappy.Encode(out[:0], data)
	}
	b.ReportMetric(float64(len(data))/float64(len(out)), "ratio")
}

func BenchmarkBaselineLZ4(b *testing.B) {
	data := benchCorpus()
	b.SetBytes(int64(len(data)))
	dst := make([]byte, lz4.CompressBlockBound(len(data)))
	var c lz4.Compressor
	n := 0
	for i := 0; i < b.N; i++ {
		var err error
		n, err = c.CompressBlock(data, dst)
		if err != nil {
			b.Fatal(err)
		}
	}
	b.ReportMetric(float64(len(data))/float64(n), "ratio")
}

func BenchmarkBaselineBrotli(b *testing.B) {
	data := benchCorpus()
	b.SetBytes(int64(len(data)))
	var buf bytes.Buffer
	for i := 0; i < b.N; i++ {
		buf.Reset()
		w := brotli.NewWriterLevel(&buf, 5)
		w.Write(data)
		w.Close()
	}
	b.ReportMetric(float64(len(data))/float64(buf.Len()), "ratio")
}

func BenchmarkBaselineZstd(b *testing.B) {
	data := benchCorpus()
	b.SetBytes(int64(len(data)))
	var buf bytes.Buffer
	w, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		b.Fatal(err)
	}
	for i := 0; i < b.N; i++ {
		buf.Reset()
		w.Reset(&buf)
		w.Write(data)
		w.Close()
	}
	b.ReportMetric(float64(len(data))/float64(buf.Len()), "ratio")
}
