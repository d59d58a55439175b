package viterbi

import (
	"testing"

	"github.com/dabreceiver/dab/internal/bits"
)

func TestDecodeIdentityOnAllZeros(t *testing.T) {
	data := make([]bits.Bit, 768)
	coded := Encode(data)
	if len(coded) != 4*(768+tailLength) {
		t.Fatalf("Encode produced %d bits, want %d", len(coded), 4*(768+tailLength))
	}
	soft := make([]bits.SoftBit, len(coded))
	for i, b := range coded {
		soft[i] = bits.FromBit(b)
	}
	got := Decode(soft)
	if len(got) != 768 {
		t.Fatalf("Decode produced %d bits, want 768", len(got))
	}
	for i, b := range got {
		if b != 0 {
			t.Fatalf("bit %d = %d, want 0", i, b)
		}
	}
}

func TestDecodeRecoversKnownPattern(t *testing.T) {
	data := make([]bits.Bit, 64)
	for i := range data {
		data[i] = bits.Bit((i * 5) % 2)
	}
	coded := Encode(data)
	soft := make([]bits.SoftBit, len(coded))
	for i, b := range coded {
		soft[i] = bits.FromBit(b)
	}
	got := Decode(soft)
	if len(got) != len(data) {
		t.Fatalf("len = %d, want %d", len(got), len(data))
	}
	for i := range data {
		if got[i] != data[i] {
			t.Fatalf("bit %d = %d, want %d", i, got[i], data[i])
		}
	}
}

func TestFrequencyDeinterleaveDeterministic(t *testing.T) {
	in := make([]bits.Bit, 3072)
	for i := range in {
		in[i] = bits.Bit((i * 3) % 2)
	}
	a := FrequencyDeinterleave(in)
	b := FrequencyDeinterleave(in)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("non-deterministic output at %d", i)
		}
	}
	if len(a) != len(in) {
		t.Fatalf("len = %d, want %d", len(a), len(in))
	}
}

func TestFrequencyDeinterleaveTableIsAPermutation(t *testing.T) {
	seen := make(map[int]bool)
	for _, v := range freqDeinterleaveTable {
		if seen[v] {
			t.Fatalf("duplicate offset %d in frequency de-interleave table", v)
		}
		seen[v] = true
	}
	if len(seen) != 1536 {
		t.Fatalf("table has %d distinct offsets, want 1536", len(seen))
	}
}
