package frontend

import (
	"bytes"
	"math"
	"os"
	"testing"
	"time"
)

func TestParseRawBufferRejectsWrongLength(t *testing.T) {
	if _, err := ParseRawBuffer(make([]byte, RawBufferLen-1)); err == nil {
		t.Fatal("expected error for short buffer")
	}
}

func TestParseRawBufferExtractsTag(t *testing.T) {
	raw := make([]byte, RawBufferLen)
	raw[symbolOffset] = 3
	raw[frameOffset] = 35 // wraps to 35 % 32 = 3
	raw[prsBlockOffset] = 2
	raw[payloadKindOffset] = PayloadKindPRS
	rb, err := ParseRawBuffer(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rb.Symbol != 3 {
		t.Fatalf("Symbol = %d, want 3", rb.Symbol)
	}
	if rb.Frame != 3 {
		t.Fatalf("Frame = %d, want 3", rb.Frame)
	}
	if rb.PRSBlock != 2 {
		t.Fatalf("PRSBlock = %d, want 2", rb.PRSBlock)
	}
	if rb.PayloadKind != PayloadKindPRS {
		t.Fatalf("PayloadKind = %#x, want %#x", rb.PayloadKind, PayloadKindPRS)
	}
}

func TestFileSourceLoopsOnEOF(t *testing.T) {
	path := writeTempCapture(t, 3)
	s := NewFileSource(path)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	for i := 0; i < 7; i++ {
		buf := make([]byte, RawBufferLen)
		if _, err := s.Read(buf); err != nil {
			t.Fatalf("Read %d: %v", i, err)
		}
		want := byte(i % 3)
		if buf[symbolOffset] != want {
			t.Fatalf("Read %d: tag = %d, want %d", i, buf[symbolOffset], want)
		}
	}
}

func writeTempCapture(t *testing.T, n int) string {
	t.Helper()
	dir := t.TempDir()
	path := dir + "/capture.raw"
	var buf bytes.Buffer
	for i := 0; i < n; i++ {
		rec := make([]byte, RawBufferLen)
		rec[symbolOffset] = byte(i)
		buf.Write(rec)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestRingBufferFIFOOrder(t *testing.T) {
	r := NewRingBuffer(4, 50*time.Millisecond)
	for i := 0; i < 3; i++ {
		var b RawBuffer
		b.Symbol = i
		r.Put(b)
	}
	for i := 0; i < 3; i++ {
		b, err := r.Get()
		if err != nil {
			t.Fatalf("Get %d: %v", i, err)
		}
		if b.Symbol != i {
			t.Fatalf("Get %d: Symbol = %d, want %d", i, b.Symbol, i)
		}
	}
}

func TestRingBufferGetTimesOutWhenEmpty(t *testing.T) {
	r := NewRingBuffer(2, 20*time.Millisecond)
	if _, err := r.Get(); err == nil {
		t.Fatal("expected timeout error on empty ring")
	}
}

func TestRingBufferOverwritesOldestWhenFull(t *testing.T) {
	r := NewRingBuffer(2, 50*time.Millisecond)
	for i := 0; i < 3; i++ {
		var b RawBuffer
		b.Symbol = i
		r.Put(b)
	}
	if r.Len() != 2 {
		t.Fatalf("Len = %d, want 2", r.Len())
	}
	b, err := r.Get()
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if b.Symbol != 1 {
		t.Fatalf("Symbol = %d, want 1 (oldest surviving entry)", b.Symbol)
	}
}

func TestTuneMessageTrailerAndFlag(t *testing.T) {
	m := TuneMessage(0x12345678, 0x08, 0x02, true)
	if m[11] != 0x10 {
		t.Fatalf("trailer = %#x, want 0x10", m[11])
	}
	if m[8] != 0x01 {
		t.Fatalf("L-band flag = %#x, want 0x01", m[8])
	}
	if m[0] != 0x78 || m[3] != 0x12 {
		t.Fatalf("register bytes not reversed: %x", m[:4])
	}
}

func TestTimingMessagePlacesSelstrAndScaledWords(t *testing.T) {
	var selstr [10]byte
	selstr[0] = 0x1F // FIC-only bitmap
	m := TimingMessage(selstr, -10)
	if !bytes.Equal(m[timingSelstrOffset:timingSelstrOffset+10], selstr[:]) {
		t.Fatalf("selstr bytes = %x, want %x", m[timingSelstrOffset:timingSelstrOffset+10], selstr[:])
	}
	gotA := int16(uint16(m[timingWordsOffset]) | uint16(m[timingWordsOffset+1])<<8)
	gotB := int16(uint16(m[timingWordsOffset+2]) | uint16(m[timingWordsOffset+3])<<8)
	if wantA := int16(math.Round(-10 * 81.664)); gotA != wantA {
		t.Fatalf("first timing word = %d, want %d", gotA, wantA)
	}
	if wantB := int16(math.Round(-10 * 1.024)); gotB != wantB {
		t.Fatalf("second timing word = %d, want %d", gotB, wantB)
	}
}

func TestBuildTuneSequenceOrdersSixMessages(t *testing.T) {
	seq := BuildTuneSequence(225.648)
	if len(seq) != 6 {
		t.Fatalf("len(seq) = %d, want 6", len(seq))
	}
	for i, m := range seq {
		if m[11] != 0x10 {
			t.Fatalf("message %d: trailer = %#x, want 0x10", i, m[11])
		}
	}
}

func TestRegisterWriteMessageSplitsAddrAndValue(t *testing.T) {
	m := RegisterWriteMessage(0xABCD, 0x0102)
	want := [4]byte{0xAB, 0xCD, 0x01, 0x02}
	if m != want {
		t.Fatalf("RegisterWriteMessage = %x, want %x", m, want)
	}
}
