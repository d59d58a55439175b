/*
NAME
  interleave.go

DESCRIPTION
  interleave.go holds the 16-CIF ring buffer that stores demapped MSC
  symbols until a subchannel's frame is complete, and the time
  de-interleaver that reverses the convolutional (MAP16) CIF interleaving
  applied at the transmitter.

LICENSE
  Copyright (C) 2026 the DAB Receiver Project. All Rights Reserved.
*/

package msc

import (
	"github.com/dabreceiver/dab/internal/bits"
	"github.com/dabreceiver/dab/internal/viterbi"
)

// timeDeinterleaveMap is the fixed 16-deep convolutional interleaver
// permutation (ETSI EN 300 401 clause 12): symbol cif at depth i came
// from CIF timeDeinterleaveMap[i] ago.
var timeDeinterleaveMap = [16]int{0, 8, 4, 12, 2, 10, 6, 14, 1, 9, 5, 13, 3, 11, 7, 15}

const bitsPerCU = 64

// symbolBitsMSC is one demapped MSC OFDM symbol's worth of bits.
const symbolBitsMSC = 3072

// Store holds demapped MSC symbols for one subchannel's four symbol
// ranges across a rolling window of 16 CIFs (each CIF is 4 symbols deep
// per de-interleaving branch), long enough to decode one frame once its
// last contributing CIF arrives.
type Store struct {
	// symbols[cif] holds successive frames' worth of demapped bits for
	// de-interleaving branch cif (0..15), oldest first.
	symbols [16][]bits.Bit
}

// NewStore returns an empty symbol store.
func NewStore() *Store {
	return &Store{}
}

// Push appends one demapped symbol's bits to de-interleaving branch cif.
func (s *Store) Push(cif int, symbolBits []bits.Bit) {
	s.symbols[cif] = append(s.symbols[cif], symbolBits...)
}

// Reset discards all accumulated history on every branch. Callers use
// this on frame-alignment loss, so a misaligned buffer never gets
// de-interleaved against an earlier frame's history.
func (s *Store) Reset() {
	for i := range s.symbols {
		s.symbols[i] = nil
	}
}

// Trim drops every branch's history down to its most recent keep bits,
// so a long-running or looped stream's store does not grow without
// bound once a frame has already been decoded.
func (s *Store) Trim(keep int) {
	for i, b := range s.symbols {
		if len(b) > keep {
			s.symbols[i] = append([]bits.Bit(nil), b[len(b)-keep:]...)
		}
	}
}

// Ready reports whether enough history has accumulated on every branch to
// decode sizeCU Capacity Units worth of bits.
func (s *Store) Ready(sizeCU int) bool {
	need := sizeCU * bitsPerCU
	for _, b := range s.symbols {
		if len(b) < need {
			return false
		}
	}
	return true
}

// TimeDeinterleave reverses the 16-deep convolutional CIF interleaver for
// a subchannel of sizeCU Capacity Units starting at startCU, reading from
// the trailing edge of the accumulated history and returning sizeCU*64
// de-interleaved bits. The caller is responsible for calling Ready first.
func (s *Store) TimeDeinterleave(startCU, sizeCU int) []bits.Bit {
	n := sizeCU * bitsPerCU
	startCUoffset := startCU % cusPerSym
	out := make([]bits.Bit, n)
	for i := 0; i < n; i++ {
		cif := timeDeinterleaveMap[i%16]
		offset := bitsPerCU*startCUoffset + i
		branch := s.symbols[cif]
		idx := len(branch) - n + offset
		if idx < 0 || idx >= len(branch) {
			continue
		}
		out[i] = branch[idx]
	}
	return out
}

// DemapSymbol bit-reverses, frequency de-interleaves and QPSK-demaps one
// raw 384-byte MSC symbol payload.
func DemapSymbol(raw []byte) []bits.Bit {
	b := bits.BytesToBits(raw)
	bits.BitReverse16(b)
	deint := viterbi.FrequencyDeinterleave(b)
	return bits.QPSKSymbolDemapper(deint)
}
