/*
NAME
  adts.go

DESCRIPTION
  adts.go synthesises a 7-byte ADTS header for each extracted DAB+ access
  unit, so that any standard AAC decoder downstream can consume the
  stream without needing to understand the DAB+ superframe container.

LICENSE
  Copyright (C) 2026 the DAB Receiver Project. All Rights Reserved.
*/

package audio

// sampleRateTable maps the four DAC-rate/SBR combinations used by DAB+ to
// an MPEG-4 sampling-frequency index, mirroring the reference
// implementation's samptab.
var sampleRateTable = [4]byte{0x5, 0x8, 0x3, 0x6}

// BuildADTSHeader synthesises a 7-byte ADTS header for a frame of
// payloadLen bytes. dacRate and sbr select the sampling-frequency index
// via sampleRateTable; channels is the channel configuration (1 or 2).
func BuildADTSHeader(payloadLen int, dacRate, sbr bool, channels int) [7]byte {
	idx := 0
	if dacRate {
		idx |= 0x2
	}
	if sbr {
		idx |= 0x1
	}
	freqIdx := sampleRateTable[idx]

	frameLen := payloadLen + 7
	var h [7]byte
	h[0] = 0xFF
	h[1] = 0xF1 // MPEG-4, layer 0, no CRC
	h[2] = (1 << 6) | (freqIdx << 2) | byte((channels>>2)&0x1)
	h[3] = byte((channels&0x3)<<6) | byte((frameLen>>11)&0x3)
	h[4] = byte((frameLen >> 3) & 0xFF)
	h[5] = byte((frameLen&0x7)<<5) | 0x1F
	h[6] = 0xFC
	return h
}
