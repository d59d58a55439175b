/*
NAME
  viterbi.go

DESCRIPTION
  viterbi.go implements the rate-1/4, constraint-length-7 convolutional
  code used for both the FIC and the MSC: the encoder (used only by
  tests), the frequency de-interleave table derived from the 13× mod 2048
  recurrence, and an add-compare-select Viterbi decoder that packs one
  decision bit per state per trellis step instead of keeping a full
  survivor-path array per state.

LICENSE
  Copyright (C) 2026 the DAB Receiver Project. All Rights Reserved.
*/

// Package viterbi decodes the DAB rate-1/4 K=7 convolutional code and
// performs the companion frequency de-interleaving step that precedes it
// in both the FIC and MSC pipelines.
package viterbi

import (
	"fmt"

	"github.com/dabreceiver/dab/internal/bits"
)

const (
	constraintLength = 7
	numStates        = 1 << (constraintLength - 1) // 64
	numPolys         = 4
	tailLength       = constraintLength - 1 // 6
)

// polynomials are the four generator polynomials of the rate-1/4 code,
// expressed over a 7-bit shift register (current input bit at bit 6, the
// six preceding bits at bits 5..0).
var polynomials = [numPolys]uint8{0x6D, 0x4F, 0x53, 0x6D}

// branchMetric[expectedBit][softBit] is the DAB soft-decision branch
// metric table over the tri-valued {False, Erased, True} alphabet.
var branchMetric = [2][3]int32{
	{3, 0, -7},
	{-7, 0, 3},
}

func parity(x uint8) byte {
	x ^= x >> 4
	x ^= x >> 2
	x ^= x >> 1
	return x & 1
}

func outputsFor(oldState byte, inBit byte) [numPolys]byte {
	reg := (inBit << 6) | oldState
	var out [numPolys]byte
	for j, p := range polynomials {
		out[j] = parity(reg & p)
	}
	return out
}

// Encode runs dataBits through the rate-1/4 K=7 encoder, appending the
// six zero tail bits that flush the shift register back to state 0, and
// returns the 4*(len(dataBits)+6) coded bits. It exists to build test
// fixtures and is not part of the live receive path.
func Encode(data []bits.Bit) []bits.Bit {
	state := byte(0)
	out := make([]bits.Bit, 0, (len(data)+tailLength)*numPolys)
	for i := 0; i < len(data)+tailLength; i++ {
		var in byte
		if i < len(data) {
			in = data[i]
		}
		outputs := outputsFor(state, in)
		out = append(out, outputs[:]...)
		state = (state >> 1) | (in << (constraintLength - 2))
	}
	return out
}

// freqDeinterleaveTable holds, for each of the 1536 logical carrier
// positions, the physical-carrier offset (relative to the centre carrier)
// that the frequency de-interleaver reads from.
var freqDeinterleaveTable = buildFrequencyDeinterleaveTable()

func buildFrequencyDeinterleaveTable() [1536]int {
	var ki [2048]int
	for i := 1; i < 2048; i++ {
		ki[i] = (13*ki[i-1] + 511) % 2048
	}
	var table [1536]int
	n := 0
	for i := 0; i < 2048; i++ {
		if ki[i] >= 256 && ki[i] <= 1792 && ki[i] != 1024 {
			table[n] = ki[i] - 1024
			n++
		}
	}
	if n != 1536 {
		panic(fmt.Sprintf("viterbi: frequency de-interleave table has %d entries, want 1536", n))
	}
	return table
}

// FrequencyDeinterleave undoes the DAB frequency interleaver on one
// demapped OFDM symbol's worth of bits (3072 = 2*1536).
func FrequencyDeinterleave(in []bits.Bit) []bits.Bit {
	const k = 1536
	if len(in) != 2*k {
		panic(fmt.Sprintf("viterbi: FrequencyDeinterleave requires %d bits, got %d", 2*k, len(in)))
	}
	out := make([]bits.Bit, len(in))
	for n, off := range freqDeinterleaveTable {
		var kk int
		if off < 0 {
			kk = off + k/2
		} else {
			kk = off + k/2 - 1
		}
		out[2*n] = in[2*kk]
		out[2*n+1] = in[2*kk+1]
	}
	return out
}

// Decode runs the add-compare-select Viterbi algorithm over softbits,
// which must be a multiple of 4 in length, returning len(softbits)/4 - 6
// decoded data bits. Traceback starts from state 0, the known terminal
// state left by the convolutional tail.
func Decode(soft []bits.SoftBit) []bits.Bit {
	if len(soft)%numPolys != 0 {
		panic(fmt.Sprintf("viterbi: Decode requires a length that's a multiple of %d, got %d", numPolys, len(soft)))
	}
	numSteps := len(soft) / numPolys
	if numSteps < tailLength {
		panic("viterbi: Decode requires at least as many steps as the tail length")
	}
	dataLen := numSteps - tailLength

	const negInf = int32(-1 << 30)
	metrics := make([]int32, numStates)
	for s := 1; s < numStates; s++ {
		metrics[s] = negInf
	}
	next := make([]int32, numStates)
	decisions := make([]uint64, numSteps)

	for t := 0; t < numSteps; t++ {
		sym := soft[4*t : 4*t+4]
		for s := range next {
			next[s] = negInf
		}
		for oldState := 0; oldState < numStates; oldState++ {
			if metrics[oldState] == negInf {
				continue
			}
			for inBit := byte(0); inBit < 2; inBit++ {
				outputs := outputsFor(byte(oldState), inBit)
				var bm int32
				for k := 0; k < 4; k++ {
					bm += branchMetric[outputs[k]][sym[k]]
				}
				newState := (oldState >> 1) | (int(inBit) << (constraintLength - 2))
				cand := metrics[oldState] + bm
				if cand > next[newState] {
					next[newState] = cand
					decisionBit := uint64(oldState & 1)
					decisions[t] = (decisions[t] &^ (1 << uint(newState))) | (decisionBit << uint(newState))
				}
			}
		}
		metrics, next = next, metrics
	}

	decoded := make([]bits.Bit, numSteps)
	state := 0
	for t := numSteps - 1; t >= 0; t-- {
		decisionBit := (decisions[t] >> uint(state)) & 1
		decoded[t] = bits.Bit((state >> (constraintLength - 2)) & 1)
		oldState := ((state & 0x1F) << 1) | int(decisionBit)
		state = oldState
	}
	return decoded[:dataLen]
}
