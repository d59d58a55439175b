/*
NAME
  audio.go

DESCRIPTION
  audio.go defines the opaque sink boundary the decoded MSC audio stream
  is handed to (MPEG-1/2 Layer II frames for DAB, RS-corrected superframes
  of AAC access units for DAB+), plus the MP2 header validation used to
  confirm a DAB subchannel is actually carrying Layer II audio.

LICENSE
  Copyright (C) 2026 the DAB Receiver Project. All Rights Reserved.
*/

// Package audio extracts access units from a decoded MSC subchannel
// stream and hands them to an opaque codec sink: PCM/AAC decode is out of
// scope, this package stops at well-formed, CRC- and Reed-Solomon-
// checked frames.
package audio

import "encoding/binary"

// Sink receives extracted audio frames; concrete decode to PCM lives
// outside this module.
type Sink interface {
	// WriteMP2Frame is called for each validated MPEG-1/2 Layer II frame
	// from a plain DAB (non-DAB+) audio subchannel.
	WriteMP2Frame(frame []byte) error
	// WriteADTSFrame is called for each DAB+ access unit, wrapped in a
	// synthesised ADTS header so any standard AAC decoder can consume it.
	WriteADTSFrame(frame []byte) error
}

// brTableMPEG1 and brTableMPEG2 are the ETSI/ISO bitrate index tables
// (kbit/s) for MPEG-1 and MPEG-2 (LSF) Layer II, -1 marking a reserved
// index.
var brTableMPEG1 = [16]int{-1, 32, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 384, -1}
var brTableMPEG2 = [16]int{-1, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160, -1}

const (
	mpegHeaderMask = 0xFFF70E03
	mpegHeaderXor  = 0xFFF40400
)

// ValidMP2Header reports whether the 4-byte big-endian value looks like a
// plausible MPEG-1/2 Layer II frame header: the fields selected by
// mpegHeaderMask equal mpegHeaderXor (sync word, layer II, CRC present,
// 48/24 kHz sampling, no padding or emphasis), and the bitrate index is
// not reserved.
func ValidMP2Header(header uint32) bool {
	if header&mpegHeaderMask != mpegHeaderXor {
		return false
	}
	if header>>21 != 0x7FF {
		return false
	}
	mpegID := (header >> 19) & 0x3
	layer := (header >> 17) & 0x3
	if layer != 0x2 { // layer II
		return false
	}
	bitrateIdx := (header >> 12) & 0xF
	samplingIdx := (header >> 10) & 0x3
	if samplingIdx == 0x3 {
		return false
	}
	var tab [16]int
	if mpegID == 0x3 {
		tab = brTableMPEG1
	} else {
		tab = brTableMPEG2
	}
	return tab[bitrateIdx] != -1
}

// readBE32 reads a 32-bit big-endian value, used for scanning raw
// subchannel bytes for frame headers.
func readBE32(b []byte) uint32 {
	return binary.BigEndian.Uint32(b)
}
