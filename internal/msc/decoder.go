/*
NAME
  decoder.go

DESCRIPTION
  decoder.go ties the MSC pieces together for one selected subchannel:
  route each incoming raw symbol into the right de-interleaving branch,
  detect when a frame is ready, and run it through depuncture, Viterbi
  and descrambling to produce the subchannel's decoded byte stream.

LICENSE
  Copyright (C) 2026 the DAB Receiver Project. All Rights Reserved.
*/

package msc

import (
	"fmt"

	"github.com/dabreceiver/dab/internal/bits"
	"github.com/dabreceiver/dab/internal/ensemble"
	"github.com/dabreceiver/dab/internal/viterbi"
)

const (
	mscPayloadOffset = 12
	mscPayloadLen    = 384
)

// Decoder decodes the MSC data for one selected subchannel.
type Decoder struct {
	sub     *ensemble.SubChannel
	symbols ChannelSymbols
	store   *Store

	// curFrame is the DAB frame index (mod 32) the store's history is
	// aligned to; haveFrame is false until the first CIF-0 range start
	// has been seen.
	curFrame  int
	haveFrame bool
}

// NewDecoder builds an MSC decoder for the given subchannel.
func NewDecoder(sub *ensemble.SubChannel) *Decoder {
	return &Decoder{
		sub:     sub,
		symbols: NewChannelSymbols(sub.StartCU, sub.SizeCU),
		store:   NewStore(),
	}
}

// SelectionBitmap returns the symbol-selection bitmap for the decoder's
// subchannel, for the front end's timing control message.
func (d *Decoder) SelectionBitmap() [10]byte {
	return d.symbols.SelectionBitmap()
}

// TryBuffer feeds one raw MSC symbol buffer (the 524-byte receiver
// buffer's payload, symbol index symbol, belonging to DAB frame frame mod
// 32) into the decoder. It returns the decoded subchannel bytes once a
// full frame's CIFs have arrived.
//
// Frame routing: the subchannel's CIF-0 range start sets cur_frame for
// the rest of that frame's buffers. A later range start or an
// intra-range symbol that carries a different frame index means
// frame-alignment was lost (e.g. a FIC re-sync or a looped replay file);
// the accumulated history is dropped rather than mixed across frames.
func (d *Decoder) TryBuffer(raw []byte, symbol, frame int) ([]byte, error) {
	if len(raw) < mscPayloadOffset+mscPayloadLen {
		return nil, fmt.Errorf("msc: raw buffer too short: %d bytes", len(raw))
	}
	cif := -1
	isRangeStart := false
	for i, r := range d.symbols.Ranges {
		if symbol == r.Start {
			cif = i
			isRangeStart = true
			break
		}
		for _, s := range r.Symbols() {
			if s == symbol {
				cif = i
			}
		}
	}
	if cif < 0 {
		return nil, nil
	}

	switch {
	case isRangeStart && cif == 0:
		d.curFrame = frame
		d.haveFrame = true
	case !d.haveFrame || frame != d.curFrame:
		d.store.Reset()
		d.haveFrame = false
		return nil, nil
	}

	payload := raw[mscPayloadOffset : mscPayloadOffset+mscPayloadLen]
	demapped := DemapSymbol(payload)
	d.store.Push(cif, demapped)

	if !d.store.Ready(int(d.sub.SizeCU)) {
		return nil, nil
	}
	out := d.decode()
	d.store.Trim(int(d.sub.SizeCU) * bitsPerCU)
	return out, nil
}

func (d *Decoder) decode() []byte {
	coded := d.store.TimeDeinterleave(int(d.sub.StartCU), int(d.sub.SizeCU))

	var soft []bits.SoftBit
	switch d.sub.Prot {
	case ensemble.ProtectionEEP:
		soft = EEPDepuncture(coded, d.sub.ProtLevel, false)
	default:
		soft = UEPDepuncture(coded, d.sub.ProtLevel)
	}

	decodedBits := viterbi.Decode(soft)
	n := (len(decodedBits) / 8) * 8
	descrambled := bits.Scramble(decodedBits[:n])

	out := make([]byte, n/8)
	for i := range out {
		var b byte
		for j := 0; j < 8; j++ {
			b = (b << 1) | descrambled[i*8+j]
		}
		out[i] = b
	}
	return out
}
