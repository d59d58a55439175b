/*
NAME
  symbols.go

DESCRIPTION
  symbols.go computes which OFDM symbols of the main service channel carry
  a given subchannel's four Capacity-Unit-interleaved ranges, and derives
  the symbol-selection bitmap sent to the front end when tuning a service.

LICENSE
  Copyright (C) 2026 the DAB Receiver Project. All Rights Reserved.
*/

// Package msc decodes the Main Service Channel: per-service symbol
// routing, 16-CIF time de-interleaving, UEP/EEP depuncture, Viterbi
// decode and descrambling.
package msc

const (
	mscStart   = 5  // first MSC symbol index (symbols 0-4 carry PRS/FIC)
	cusPerSym  = 48 // Capacity Units per OFDM symbol
	symsPerCIF = 18 // OFDM symbols per CIF
)

// SymbolRange is an inclusive range of OFDM symbol indices.
type SymbolRange struct {
	Start, End int
}

// Length returns End - Start; the range holds Length()+1 symbols.
func (r SymbolRange) Length() int { return r.End - r.Start }

// Symbols returns every symbol index in the range, inclusive of both
// ends.
func (r SymbolRange) Symbols() []int {
	out := make([]int, 0, r.End-r.Start+1)
	for s := r.Start; s <= r.End; s++ {
		out = append(out, s)
	}
	return out
}

// ChannelSymbols is the four per-CIF symbol ranges a subchannel occupies,
// one CIF at a time across the four CIFs of a 96ms MSC frame.
type ChannelSymbols struct {
	Ranges [4]SymbolRange
	Count  int // symbols in Ranges[0], inclusive
}

// NewChannelSymbols computes the symbol ranges for a subchannel starting
// at startCU with size sizeCU Capacity Units.
func NewChannelSymbols(startCU, sizeCU uint16) ChannelSymbols {
	r0 := SymbolRange{
		Start: int(startCU)/cusPerSym + mscStart,
		End:   int(startCU+sizeCU) / cusPerSym + mscStart,
	}
	var cs ChannelSymbols
	cs.Ranges[0] = r0
	cs.Count = r0.Length() + 1
	for i := 1; i < 4; i++ {
		cs.Ranges[i] = SymbolRange{
			Start: r0.Start + i*symsPerCIF,
			End:   r0.End + i*symsPerCIF,
		}
	}
	return cs
}

// FICOnlyBitmap builds the symbol-selection bitmap requesting only the
// always-needed FIC symbols, for use before any service has been
// selected (or after Select fails to find one).
func FICOnlyBitmap() [10]byte {
	var bitmap [10]byte
	for s := 0; s < mscStart; s++ {
		bitmap[s/8] |= 1 << uint(s%8)
	}
	return bitmap
}

// SelectionBitmap builds the 10-byte (80-bit) symbol-selection bitmap used
// in the tuner's timing control message: symbols 0-4 (every symbol before
// the MSC, including the three FIC symbols) are always requested, plus
// every symbol of the selected service's four
// ranges. This mirrors the reference receiver's "always request FIC"
// selstr derivation (see SPEC_FULL.md, Supplemented Features).
func (cs ChannelSymbols) SelectionBitmap() [10]byte {
	var bitmap [10]byte
	setBit := func(n int) {
		bitmap[n/8] |= 1 << uint(n%8)
	}
	for s := 0; s < mscStart; s++ {
		setBit(s)
	}
	for _, r := range cs.Ranges {
		for _, s := range r.Symbols() {
			if s >= mscStart {
				setBit(s)
			}
		}
	}
	return bitmap
}
