package pad

import "testing"

func TestFeedAssemblesOneAndOnlySegment(t *testing.T) {
	s := NewState(128, 48)
	text := "HELLO"
	frame := make([]byte, 2+1+4+2+len(text)) // scf words(4) + xpad ind byte + dls(2) + text + fpad(2)

	// lay out from the end backwards: fpad, xpad ind byte, dls header+text, scf padding.
	n := len(frame)
	frame[n-2] = 0x00
	frame[n-1] = 0x80 // ciFlag set, fType 0 -> high bits: 1<<6 within byte0? adjust below.
	// F-PAD ciFlag is bit 14 of the 16-bit field; byte0 holds bits 15..8.
	frame[n-2] = 0x40

	xpadOff := n - (1 + 4 + 2)
	frame[xpadOff] = 0x12 // xpadInd=1 (bits4-5), ci low nibble = 2
	segLen := len(text) - 1
	dls := uint16(2)<<3 | 1<<2 // first=2(OneAndOnly), toggle=1
	dls |= uint16(segLen) & 0xF
	frame[xpadOff-1] = byte(dls >> 8)
	frame[xpadOff] = byte(dls) | (frame[xpadOff] & 0xF0)

	copy(frame[xpadOff-1-len(text):xpadOff-1], text)

	done := s.Feed(frame)
	if !done {
		t.Fatal("Feed did not report completion for a OneAndOnly segment")
	}
	label, ok := s.Label()
	if !ok {
		t.Fatal("Label() reported no label after completion")
	}
	if label != text {
		t.Fatalf("label = %q, want %q", label, text)
	}
}
