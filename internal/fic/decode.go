/*
NAME
  decode.go

DESCRIPTION
  decode.go assembles three FIC symbol buffers into one FIC frame, runs
  the per-CIF depuncture/Viterbi/descramble pipeline, and checks each
  resulting Fast Information Block's CRC, dropping only the FIBs that
  fail the check rather than the whole frame.

LICENSE
  Copyright (C) 2026 the DAB Receiver Project. All Rights Reserved.
*/

package fic

import (
	"github.com/dabreceiver/dab/internal/bits"
	"github.com/dabreceiver/dab/internal/viterbi"
)

const (
	numSlots       = 32
	symbolBits     = ficPayloadLen * 8 // 3072
	framePayload   = symbolBits * 3    // 9216
	cifBits        = 2304
	cifsPerFrame   = framePayload / cifBits // 4
	fibBits        = 256
	fibsPerCIF     = 768 / fibBits // 3
	firstFICSymbol = 2
	lastFICSymbol  = 4
)

// frame tracks in-progress assembly of the three symbols belonging to one
// FIC frame.
type frame struct {
	number     int
	nextSymbol int
	symbols    [3][ficPayloadLen]byte // indexed by symbol-firstFICSymbol
}

// Decoder assembles FIC buffers into frames and decodes completed frames
// into verified FIB payloads.
type Decoder struct {
	frames [numSlots]*frame
}

// NewDecoder returns an empty FIC decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// TryBuffer feeds one FIC symbol buffer into the decoder. When the buffer
// completes a frame (its last symbol, 4, has just been added) it returns
// the FIBs that passed their CRC; otherwise it returns nil.
func (d *Decoder) TryBuffer(buf Buffer) [][]byte {
	slot := buf.Frame % numSlots
	f := d.frames[slot]
	if buf.Symbol == firstFICSymbol {
		f = &frame{number: buf.Frame, nextSymbol: firstFICSymbol}
		d.frames[slot] = f
	}
	if f == nil || f.number != buf.Frame || buf.Symbol != f.nextSymbol {
		return nil
	}
	f.symbols[buf.Symbol-firstFICSymbol] = buf.Data
	f.nextSymbol++
	if f.nextSymbol <= lastFICSymbol {
		return nil
	}
	d.frames[slot] = nil
	return decodeFrame(f)
}

// decodeFrame runs the three assembled symbols through bit-reversal,
// frequency de-interleaving and QPSK demapping, concatenates them into
// the frame's 9216 raw bits, splits that into four CIFs, and decodes
// each CIF into 3 FIBs.
func decodeFrame(f *frame) [][]byte {
	all := make([]bits.Bit, 0, framePayload)
	for _, symData := range f.symbols {
		raw := bits.BytesToBits(symData[:])
		bits.BitReverse16(raw)
		deinterleaved := viterbi.FrequencyDeinterleave(raw)
		demapped := bits.QPSKSymbolDemapper(deinterleaved)
		all = append(all, demapped...)
	}

	var fibs [][]byte
	for c := 0; c < cifsPerFrame; c++ {
		cif := all[c*cifBits : (c+1)*cifBits]
		soft := bits.Depuncture(cif)
		decoded := viterbi.Decode(soft)
		descrambled := bits.Scramble(decoded)
		for i := 0; i < fibsPerCIF; i++ {
			fib := descrambled[i*fibBits : (i+1)*fibBits]
			if !bits.CRC16Good(fib) {
				continue
			}
			fibs = append(fibs, bits.BitsToBytes(append([]bits.Bit(nil), fib...)))
		}
	}
	return fibs
}
