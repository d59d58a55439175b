/*
NAME
  fig.go

DESCRIPTION
  fig.go parses Fast Information Groups out of a decoded FIB payload: the
  3-bit/5-bit FIG header, and the FIG type 0 (ensemble/subchannel/service)
  and type 1 (label) body layouts. Parsed FIGs are returned as a small set
  of concrete record types for internal/ensemble to apply.

LICENSE
  Copyright (C) 2026 the DAB Receiver Project. All Rights Reserved.
*/

package fic

// Record is implemented by every parsed FIG record type.
type Record interface {
	isRecord()
}

// EnsembleRecord is FIG 0/0: the ensemble identifier and CIF counter.
type EnsembleRecord struct {
	EId      uint16
	ChangeFl uint8
	AlarmFl  uint8
	CIFCount uint16
}

func (EnsembleRecord) isRecord() {}

// SubChannelRecord is FIG 0/1: a subchannel's position in the MSC and its
// protection parameters, either from the short form (UEP table index) or
// the long form (explicit option/protection level/size).
type SubChannelRecord struct {
	SubChId  uint8
	StartCU  uint16
	LongForm bool
	TabIndex uint8 // short form only
	Option   uint8 // long form only
	ProtLvl  uint8 // long form only
	SizeCU   uint16
}

func (SubChannelRecord) isRecord() {}

// ServiceComponent is one component of FIG 0/2 service data.
type ServiceComponent struct {
	TMId       uint8 // 0=stream audio, 1=stream data, 2=FIDC, 3=packet data
	ASCTy      uint8
	DSCTy      uint8
	SubChId    uint8
	SCId       uint16
	FIDCId     uint8
	PrimaryPS  bool
	CAFlag     bool
}

// ServiceRecord is FIG 0/2: a service identifier and its components.
type ServiceRecord struct {
	SId        uint32
	LongSId    bool
	Local      uint8
	CAId       uint8
	Components []ServiceComponent
}

func (ServiceRecord) isRecord() {}

// PacketServiceRecord is FIG 0/3: a data subchannel's packet addressing.
type PacketServiceRecord struct {
	SCId       uint16
	SCCAFlag   bool
	DG         bool
	DSCTy      uint8
	SubChId    uint8
	PacketAddr uint16
}

func (PacketServiceRecord) isRecord() {}

// LabelPurpose identifies which entity a FIG type 1 label names.
type LabelPurpose int

const (
	LabelEnsemble LabelPurpose = iota
	LabelProgrammeService
	LabelServiceComponent
	LabelDataService
)

// LabelRecord is FIG 1: a 16-character label for an ensemble, service or
// service component.
type LabelRecord struct {
	Purpose LabelPurpose
	Id      uint32
	Text    [16]byte
}

func (LabelRecord) isRecord() {}

// ParseFIB extracts every FIG carried in one 30-byte FIB payload.
func ParseFIB(fib []byte) []Record {
	var out []Record
	off := 0
	for off < len(fib) {
		header := fib[off]
		if header == 0xFF {
			break // end-of-FIB padding
		}
		kind := (header >> 5) & 0x7
		length := int(header & 0x1F)
		if off+1+length > len(fib) {
			break
		}
		body := fib[off+1 : off+1+length]
		switch kind {
		case 0:
			out = append(out, parseType0(body)...)
		case 1:
			out = append(out, parseType1(body)...)
		}
		off += 1 + length
	}
	return out
}

func parseType0(body []byte) []Record {
	var out []Record
	off := 0
	for off < len(body) {
		h := body[off]
		extn := h & 0x1F
		pd := h&0x20 != 0
		oe := h&0x40 != 0
		_ = oe
		switch extn {
		case 0:
			if off+4 > len(body) {
				return out
			}
			b := body[off : off+4]
			rec := EnsembleRecord{
				EId:      uint16(b[0])<<8 | uint16(b[1]),
				ChangeFl: (b[2] >> 6) & 0x3,
				AlarmFl:  (b[2] >> 5) & 0x1,
				CIFCount: uint16(b[2]&0x1F)<<8 | uint16(b[3]),
			}
			out = append(out, rec)
			off += 4
		case 1:
			n, rec := parseSubChannel(body[off:])
			if n == 0 {
				return out
			}
			out = append(out, rec)
			off += n
		case 2:
			n, rec := parseService(body[off:], pd)
			if n == 0 {
				return out
			}
			out = append(out, rec...)
			off += n
		case 3:
			if off+4 > len(body) {
				return out
			}
			b := body[off : off+4]
			v := uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
			rec := PacketServiceRecord{
				SCId:       uint16(v >> 20),
				SCCAFlag:   v&(1<<16) != 0,
				DG:         v&(1<<15) != 0,
				DSCTy:      uint8((v >> 8) & 0x3F),
				SubChId:    uint8((v >> 2) & 0x3F),
				PacketAddr: uint16(v & 0x3FF),
			}
			out = append(out, rec)
			off += 4
		default:
			return out
		}
	}
	return out
}

func parseSubChannel(b []byte) (int, SubChannelRecord) {
	if len(b) < 3 {
		return 0, SubChannelRecord{}
	}
	subChId := b[0] >> 2
	startCU := uint16(b[0]&0x3)<<8 | uint16(b[1])
	longForm := b[2]&0x80 != 0
	if !longForm {
		rec := SubChannelRecord{
			SubChId:  subChId,
			StartCU:  startCU,
			LongForm: false,
			TabIndex: b[2] & 0x3F,
		}
		return 3, rec
	}
	if len(b) < 4 {
		return 0, SubChannelRecord{}
	}
	rec := SubChannelRecord{
		SubChId:  subChId,
		StartCU:  startCU,
		LongForm: true,
		Option:   (b[2] >> 4) & 0x7,
		ProtLvl:  (b[2] >> 2) & 0x3,
		SizeCU:   uint16(b[2]&0x3)<<8 | uint16(b[3]),
	}
	return 4, rec
}

func parseService(b []byte, longSId bool) (int, []Record) {
	sidLen := 2
	if longSId {
		sidLen = 4
	}
	if len(b) < sidLen+1 {
		return 0, nil
	}
	var sid uint32
	for i := 0; i < sidLen; i++ {
		sid = sid<<8 | uint32(b[i])
	}
	numComp := b[sidLen] & 0xF
	off := sidLen + 1
	var comps []ServiceComponent
	for i := 0; i < int(numComp); i++ {
		if off+2 > len(b) {
			break
		}
		tmid := (b[off] >> 6) & 0x3
		var c ServiceComponent
		c.TMId = tmid
		switch tmid {
		case 0, 1:
			c.ASCTy = b[off] & 0x3F
			c.SubChId = b[off+1] >> 2
			c.PrimaryPS = b[off+1]&0x2 != 0
			c.CAFlag = b[off+1]&0x1 != 0
		case 2:
			c.FIDCId = b[off] & 0x3F
			c.SubChId = b[off+1] >> 2
		case 3:
			c.SCId = uint16(b[off]&0x3F)<<6 | uint16(b[off+1]>>2)
			c.PrimaryPS = b[off+1]&0x2 != 0
			c.CAFlag = b[off+1]&0x1 != 0
		}
		comps = append(comps, c)
		off += 2
	}
	rec := ServiceRecord{SId: sid, LongSId: longSId, Components: comps}
	return off, []Record{rec}
}

func parseType1(body []byte) []Record {
	if len(body) < 1 {
		return nil
	}
	h := body[0]
	charset := (h >> 4) & 0xF
	_ = charset
	oe := h&0x8 != 0
	_ = oe
	extn := h & 0x7
	var rec LabelRecord
	var textOff int
	switch extn {
	case 0:
		rec.Purpose = LabelEnsemble
		if len(body) < 3 {
			return nil
		}
		rec.Id = uint32(body[1])<<8 | uint32(body[2])
		textOff = 3
	case 1:
		rec.Purpose = LabelProgrammeService
		if len(body) < 3 {
			return nil
		}
		rec.Id = uint32(body[1])<<8 | uint32(body[2])
		textOff = 3
	case 4:
		rec.Purpose = LabelServiceComponent
		if len(body) < 4 {
			return nil
		}
		rec.Id = uint32(body[1])<<16 | uint32(body[2])<<8 | uint32(body[3])
		textOff = 4
	case 5:
		rec.Purpose = LabelDataService
		if len(body) < 5 {
			return nil
		}
		rec.Id = uint32(body[1])<<24 | uint32(body[2])<<16 | uint32(body[3])<<8 | uint32(body[4])
		textOff = 5
	default:
		return nil
	}
	if textOff+16 > len(body) {
		return nil
	}
	copy(rec.Text[:], body[textOff:textOff+16])
	return []Record{rec}
}
