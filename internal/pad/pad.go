/*
NAME
  pad.go

DESCRIPTION
  pad.go implements the F-PAD/X-PAD state machine that extracts Dynamic
  Label Segment text from the trailing PAD bytes of MSC audio frames:
  locating the X-PAD data-field-indicator byte, recognising a DLS segment
  header, and accumulating segments until a complete label is available.

LICENSE
  Copyright (C) 2026 the DAB Receiver Project. All Rights Reserved.
*/

// Package pad extracts the Dynamic Label Segment (DLS) text carried in
// the Programme-Associated Data trailer of DAB audio frames.
package pad

// State tracks in-progress DLS label assembly across successive audio
// frames.
type State struct {
	bitrate        int
	samplingFreq   int
	toggle         int
	haveToggle     bool
	segment        []byte
	label          string
	done           bool
}

// NewState returns a DLS extraction state for a subchannel of the given
// bitrate (kbit/s) and PAD sampling frequency (24 or 48kHz PAD subframe).
func NewState(bitrate, samplingFreq int) *State {
	return &State{bitrate: bitrate, samplingFreq: samplingFreq}
}

// fPAD is the 16-bit trailing F-PAD field of one audio frame.
type fPAD struct {
	ciFlag bool
	fType  uint8
}

func parseFPAD(b []byte) fPAD {
	v := uint16(b[0])<<8 | uint16(b[1])
	return fPAD{
		ciFlag: v&(1<<14) != 0,
		fType:  uint8(v >> 14 & 0x3),
	}
}

// scfWords is the length, in bytes, of the scale-factor-CRC region that
// precedes the X-PAD field, which depends on sampling rate and bitrate.
func (s *State) scfWords() int {
	if s.samplingFreq == 48 {
		if s.bitrate >= 56 {
			return 4
		}
		return 2
	}
	return 4
}

// Feed processes the trailing PAD bytes of one audio frame. It returns
// true once a complete label has been assembled; Label then returns the
// text.
func (s *State) Feed(frame []byte) bool {
	if len(frame) < 2 {
		return false
	}
	fp := parseFPAD(frame[len(frame)-2:])
	if fp.fType != 0 {
		return false
	}
	xpadOff := len(frame) - (1 + s.scfWords() + 2)
	if xpadOff < 1 || xpadOff >= len(frame) {
		return false
	}
	xpadInd := (frame[xpadOff] >> 4) & 0x3
	if !fp.ciFlag || xpadInd != 1 {
		return false
	}
	ci := frame[xpadOff]
	if ci&0xF != 2 {
		return false
	}
	if xpadOff < 1 {
		return false
	}
	dls := uint16(frame[xpadOff-1])<<8 | uint16(frame[xpadOff])
	first := (dls >> 3) & 0x3
	toggle := (dls >> 2) & 0x1
	f1 := dls & 0xF

	if !s.haveToggle || toggle != uint16(s.toggle) {
		s.segment = nil
		s.toggle = int(toggle)
		s.haveToggle = true
	}

	segLen := int(f1) + 1
	start := xpadOff - 1 - segLen
	if start < 0 {
		return false
	}
	s.segment = append(s.segment, frame[start:xpadOff-1]...)

	if first == 2 || first == 3 { // OneAndOnly or Last segment
		s.label = string(s.segment)
		s.done = true
		return true
	}
	return false
}

// Label returns the most recently completed label, and whether one has
// been assembled yet.
func (s *State) Label() (string, bool) {
	return s.label, s.done
}
