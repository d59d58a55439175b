/*
NAME
  depuncture.go

DESCRIPTION
  depuncture.go re-inserts erasures into time-de-interleaved MSC bits
  ahead of Viterbi decoding, for both UEP (table-indexed) and EEP
  (protection-level/profile) subchannels, each followed by a fixed
  24-bit tail punctured against PVEC row 7.

LICENSE
  Copyright (C) 2026 the DAB Receiver Project. All Rights Reserved.
*/

package msc

import (
	"github.com/dabreceiver/dab/internal/bits"
	"github.com/dabreceiver/dab/internal/tables"
)

func countOnes(row []byte) int {
	n := 0
	for _, b := range row {
		if b == 1 {
			n++
		}
	}
	return n
}

func buildMask(row [32]byte, onesNeeded int) []byte {
	var mask []byte
	ones := 0
	for i := 0; ones < onesNeeded; i++ {
		b := row[i%32]
		mask = append(mask, b)
		if b == 1 {
			ones++
		}
	}
	return mask
}

func applyMask(mask []byte, coded []bits.Bit) []bits.SoftBit {
	out := make([]bits.SoftBit, len(mask))
	r := 0
	for i, m := range mask {
		if m == 1 && r < len(coded) {
			out[i] = bits.FromBit(coded[r])
			r++
		} else {
			out[i] = bits.Erased
		}
	}
	return padToMultipleOf4(out)
}

func padToMultipleOf4(sb []bits.SoftBit) []bits.SoftBit {
	if rem := len(sb) % 4; rem != 0 {
		sb = append(sb, make([]bits.SoftBit, 4-rem)...)
	}
	return sb
}

func clampRow(idx int) int {
	if idx < 0 {
		return 0
	}
	if idx > 6 {
		return 6
	}
	return idx
}

const eepTailLen = 24

// UEPDepuncture depunctures a UEP-protected subchannel's time-de-
// interleaved bits. protLevel is 1 (heaviest protection) .. 5 (lightest);
// it indexes one of the PVEC body rows plus a fixed tail.
func UEPDepuncture(coded []bits.Bit, protLevel uint8) []bits.SoftBit {
	row := tables.PVEC[clampRow(int(protLevel)-1)]
	tailRow := tables.PVEC[7]
	tailOnes := countOnes(tailRow[:eepTailLen])
	bodyLen := len(coded) - tailOnes
	if bodyLen < 0 {
		bodyLen = 0
	}
	mask := buildMask(row, bodyLen)
	mask = append(mask, tailRow[:eepTailLen]...)
	return applyMask(mask, coded)
}

// EEPDepuncture depunctures an EEP-protected subchannel's time-de-
// interleaved bits. protLevel selects the pair of PVEC body rows used for
// the two halves of the block: the heavier row (lower PVEC index) covers
// the first half and the lighter row the second; profileB swaps them, so
// the lighter row comes first.
func EEPDepuncture(coded []bits.Bit, protLevel uint8, profileB bool) []bits.SoftBit {
	idx1 := clampRow(int(protLevel) - 1)
	idx2 := clampRow(int(protLevel))
	if profileB {
		idx1, idx2 = idx2, idx1
	}
	tailRow := tables.PVEC[7]
	tailOnes := countOnes(tailRow[:eepTailLen])
	bodyLen := len(coded) - tailOnes
	if bodyLen < 0 {
		bodyLen = 0
	}
	half := bodyLen / 2
	mask := buildMask(tables.PVEC[idx1], half)
	mask = append(mask, buildMask(tables.PVEC[idx2], bodyLen-half)...)
	mask = append(mask, tailRow[:eepTailLen]...)
	return applyMask(mask, coded)
}
