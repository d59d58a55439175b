/*
NAME
  source.go

DESCRIPTION
  source.go defines the Source interface that decouples the receiver
  orchestrator from where raw 524-byte buffers come from, modelled on
  device.AVDevice: an io.Reader plus a small lifecycle surface.

LICENSE
  Copyright (C) 2026 the DAB Receiver Project. All Rights Reserved.
*/

// Package frontend provides the raw-buffer sources and control-message
// framing that sit between the tuner hardware (or a replay file) and the
// decode pipeline.
package frontend

import "io"

// RawBufferLen is the length, in bytes, of one raw receiver buffer.
const RawBufferLen = 524

// Source is a source of raw receiver buffers: a demodulator front end, or
// a file of previously captured buffers for replay.
type Source interface {
	io.Reader
	Name() string
	Start() error
	Stop() error
	IsRunning() bool
}

// RawBuffer is one parsed raw receiver buffer: the OFDM symbol and DAB
// frame it carries, which of the four PRS sub-blocks it is (PRS buffers
// only), the payload kind tag, and the buffer itself.
type RawBuffer struct {
	Symbol      int
	Frame       int
	PRSBlock    int
	PayloadKind byte
	Data        [RawBufferLen]byte
}

// Raw buffer header offsets and the payload-kind tags they carry.
const (
	symbolOffset      = 2
	frameOffset       = 3
	prsBlockOffset    = 7
	payloadKindOffset = 9

	framesPerCycle = 32

	// PayloadKindPRS marks a raw buffer carrying one of the four phase
	// reference symbol sub-blocks rather than a FIC/MSC OFDM symbol.
	PayloadKindPRS = 0x02
)

// ParseRawBuffer splits a 524-byte buffer into its header tags and
// payload.
func ParseRawBuffer(b []byte) (RawBuffer, error) {
	var rb RawBuffer
	if len(b) != RawBufferLen {
		return rb, errShortBuffer(len(b))
	}
	rb.Symbol = int(b[symbolOffset])
	rb.Frame = int(b[frameOffset]) % framesPerCycle
	rb.PRSBlock = int(b[prsBlockOffset])
	rb.PayloadKind = b[payloadKindOffset]
	copy(rb.Data[:], b)
	return rb, nil
}

type errShortBuffer int

func (e errShortBuffer) Error() string {
	return "frontend: raw buffer has wrong length"
}
