package msc

import (
	"testing"

	"github.com/dabreceiver/dab/internal/bits"
)

func TestStoreResetClearsAllBranches(t *testing.T) {
	s := NewStore()
	s.Push(0, make([]bits.Bit, 10))
	s.Push(5, make([]bits.Bit, 10))
	s.Reset()
	for i, b := range s.symbols {
		if len(b) != 0 {
			t.Fatalf("branch %d: len = %d after Reset, want 0", i, len(b))
		}
	}
}

func TestStoreTrimBoundsGrowth(t *testing.T) {
	s := NewStore()
	for i := 0; i < 5; i++ {
		s.Push(0, make([]bits.Bit, 100))
	}
	s.Trim(150)
	if len(s.symbols[0]) != 150 {
		t.Fatalf("branch 0: len = %d after Trim(150), want 150", len(s.symbols[0]))
	}
	for i := 1; i < 16; i++ {
		if len(s.symbols[i]) != 0 {
			t.Fatalf("branch %d: len = %d, want 0 (never pushed)", i, len(s.symbols[i]))
		}
	}
}

func TestStoreTrimNoopBelowLimit(t *testing.T) {
	s := NewStore()
	s.Push(3, make([]bits.Bit, 40))
	s.Trim(150)
	if len(s.symbols[3]) != 40 {
		t.Fatalf("branch 3: len = %d after no-op Trim, want 40", len(s.symbols[3]))
	}
}
