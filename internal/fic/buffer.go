/*
NAME
  buffer.go

DESCRIPTION
  buffer.go turns a raw 524-byte receiver buffer into a FIC symbol buffer:
  a 384-byte FIC payload tagged with the OFDM symbol number (2, 3 or 4)
  and frame number it belongs to.

LICENSE
  Copyright (C) 2026 the DAB Receiver Project. All Rights Reserved.
*/

// Package fic assembles and decodes the Fast Information Channel: the
// three-symbol-per-frame FIC payload, its four-CIF Viterbi decode, and
// the FIG records carried in each resulting Fast Information Block.
package fic

import "fmt"

// ficPayloadOffset and ficPayloadLen locate the FIC payload within the
// 524-byte raw receiver buffer (see internal/frontend).
const (
	ficPayloadOffset = 12
	ficPayloadLen    = 384
)

// Buffer is one symbol's worth of raw FIC payload.
type Buffer struct {
	Symbol int // 2, 3 or 4
	Frame  int
	Data   [ficPayloadLen]byte
}

// FromRaw extracts a FIC Buffer from a raw receiver buffer. symbol and
// frame are supplied by the caller (internal/frontend), which knows the
// OFDM symbol index the buffer carries.
func FromRaw(raw []byte, symbol, frame int) (Buffer, error) {
	if len(raw) < ficPayloadOffset+ficPayloadLen {
		return Buffer{}, fmt.Errorf("fic: raw buffer too short: %d bytes", len(raw))
	}
	if symbol < 2 || symbol > 4 {
		return Buffer{}, fmt.Errorf("fic: symbol %d out of range [2,4]", symbol)
	}
	var b Buffer
	b.Symbol = symbol
	b.Frame = frame
	copy(b.Data[:], raw[ficPayloadOffset:ficPayloadOffset+ficPayloadLen])
	return b, nil
}
