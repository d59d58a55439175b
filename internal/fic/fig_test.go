package fic

import "testing"

func TestParseFIBEnsembleRecord(t *testing.T) {
	var fib [30]byte
	fib[0] = 0<<5 | 4 // FIG type 0, length 4
	// body[0]'s low 5 bits double as the FIG 0 extension selector, so the
	// ensemble branch (extn 0) needs an EId high byte with those bits clear.
	fib[1] = 0x20
	fib[2] = 0x34
	fib[3] = 0x00
	fib[4] = 0x05
	fib[5] = 0xFF // end-of-FIB padding

	recs := ParseFIB(fib[:])
	if len(recs) != 1 {
		t.Fatalf("len(recs) = %d, want 1", len(recs))
	}
	ens, ok := recs[0].(EnsembleRecord)
	if !ok {
		t.Fatalf("recs[0] = %T, want EnsembleRecord", recs[0])
	}
	if ens.EId != 0x2034 {
		t.Fatalf("EId = %#x, want 0x2034", ens.EId)
	}
	if ens.CIFCount != 5 {
		t.Fatalf("CIFCount = %d, want 5", ens.CIFCount)
	}
}

func TestParseSubChannelLongFormFields(t *testing.T) {
	// subChId=5, startCU=10, long form, option=0, protlvl=1, sizeCU=84
	b := []byte{
		5<<2 | byte(10>>8),
		byte(10),
		0x80 | 0<<4 | 1<<2 | byte(84>>8),
		byte(84),
	}
	n, rec := parseSubChannel(b)
	if n != 4 {
		t.Fatalf("n = %d, want 4", n)
	}
	if !rec.LongForm || rec.SubChId != 5 || rec.StartCU != 10 {
		t.Fatalf("rec = %+v", rec)
	}
	if rec.Option != 0 || rec.ProtLvl != 1 || rec.SizeCU != 84 {
		t.Fatalf("rec = %+v", rec)
	}
}

func TestParseType1DataServiceLabelReadsFullSId(t *testing.T) {
	body := make([]byte, 1+4+16)
	body[0] = 0x05 // extn=5, no charset/OE bits needed for this test
	body[1] = 0xAA
	body[2] = 0xBB
	body[3] = 0xCC
	body[4] = 0xDD
	copy(body[5:], "Test Data Service")

	recs := parseType1(body)
	if len(recs) != 1 {
		t.Fatalf("len(recs) = %d, want 1", len(recs))
	}
	rec, ok := recs[0].(LabelRecord)
	if !ok {
		t.Fatalf("recs[0] = %T, want LabelRecord", recs[0])
	}
	if rec.Purpose != LabelDataService {
		t.Fatalf("Purpose = %v, want LabelDataService", rec.Purpose)
	}
	want := uint32(0xAABBCCDD)
	if rec.Id != want {
		t.Fatalf("Id = %#x, want %#x", rec.Id, want)
	}
}
