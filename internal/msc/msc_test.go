package msc

import (
	"testing"

	"github.com/dabreceiver/dab/internal/bits"
)

func TestNewChannelSymbolsRanges(t *testing.T) {
	cs := NewChannelSymbols(0, 96)
	for i, r := range cs.Ranges {
		if r.Start < mscStart {
			t.Fatalf("range %d starts at %d, before MSC start %d", i, r.Start, mscStart)
		}
		if r.End < r.Start {
			t.Fatalf("range %d end %d before start %d", i, r.End, r.Start)
		}
	}
	for i := 1; i < 4; i++ {
		want := cs.Ranges[0].Start + i*symsPerCIF
		if cs.Ranges[i].Start != want {
			t.Fatalf("range %d start = %d, want %d", i, cs.Ranges[i].Start, want)
		}
	}
}

func TestSelectionBitmapAlwaysRequestsFIC(t *testing.T) {
	cs := NewChannelSymbols(0, 96)
	bitmap := cs.SelectionBitmap()
	for s := 0; s < mscStart; s++ {
		if bitmap[s/8]&(1<<uint(s%8)) == 0 {
			t.Fatalf("FIC symbol %d not requested in selection bitmap", s)
		}
	}
}

func TestUEPDepunctureOutputLength(t *testing.T) {
	coded := make([]bits.Bit, 640)
	soft := UEPDepuncture(coded, 3)
	if len(soft)%4 != 0 {
		t.Fatalf("len = %d, not a multiple of 4", len(soft))
	}
	if len(soft) < len(coded) {
		t.Fatalf("len = %d shorter than input %d", len(soft), len(coded))
	}
}

func TestEEPDepunctureOutputIsMultipleOf4(t *testing.T) {
	coded := make([]bits.Bit, 640)
	soft := EEPDepuncture(coded, 2, false)
	if len(soft)%4 != 0 {
		t.Fatalf("len = %d, not a multiple of 4", len(soft))
	}
}
