/*
NAME
  ensemble.go

DESCRIPTION
  ensemble.go holds the live data model built up from FIG records: the
  ensemble's services, each service's audio and data subchannels, and the
  labels attached to each. Service, subchannel and label fields are
  first-writer-wins; a FIG 0/3 packet record overwrites its data
  subchannel's packet fields each time it is applied.

LICENSE
  Copyright (C) 2026 the DAB Receiver Project. All Rights Reserved.
*/

// Package ensemble accumulates FIC FIG records into a queryable model of
// one DAB ensemble: its services, subchannels and labels.
package ensemble

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/dabreceiver/dab/internal/fic"
	"github.com/dabreceiver/dab/internal/tables"
	"gonum.org/v1/gonum/floats"
)

// Protection identifies how a subchannel is error-protected.
type Protection int

const (
	ProtectionUnknown Protection = iota
	ProtectionUEP
	ProtectionEEP
)

// SubChannel is one audio or data subchannel's position and protection in
// the MSC.
type SubChannel struct {
	Id        uint8
	Primary   bool
	StartCU   uint16
	SizeCU    uint16
	BitrateKb int
	ProtLevel uint8
	Prot      Protection
	// DABPlus is true when the component's ASCTy (FIG 0/2) names the
	// DAB+ audio super-framing (ASCTy 63) rather than MPEG Layer II.
	DABPlus bool
}

const asctyDABPlus = 63

// DataSubChannel is a packet-mode data subchannel.
type DataSubChannel struct {
	SubChannel
	SCId       uint16
	PacketAddr uint16
	DSCTy      uint8
}

// Service is one DAB service (a "station") and the subchannels carrying
// its components.
type Service struct {
	Id             uint32
	Name           string
	SubChannels    map[uint8]*SubChannel
	DataSubChans   map[uint16]*DataSubChannel
}

// PrimarySubChannel returns the service's primary audio subchannel if it
// has one, else its primary data subchannel.
func (s *Service) PrimarySubChannel() (*SubChannel, bool) {
	for _, sc := range s.SubChannels {
		if sc.Primary {
			return sc, true
		}
	}
	for _, dsc := range s.DataSubChans {
		if dsc.Primary {
			return &dsc.SubChannel, true
		}
	}
	return nil, false
}

// Ensemble is the mutable model built up from a stream of FIG records.
type Ensemble struct {
	mu       sync.Mutex
	id       uint16
	haveId   bool
	name     string
	services map[uint32]*Service
	tries    int
}

// New returns an empty ensemble model.
func New() *Ensemble {
	return &Ensemble{services: make(map[uint32]*Service)}
}

// ApplyRecords applies every FIG record parsed from one FIB, in order.
func (e *Ensemble) ApplyRecords(recs []fic.Record) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, r := range recs {
		e.apply(r)
	}
}

func (e *Ensemble) apply(r fic.Record) {
	switch v := r.(type) {
	case fic.EnsembleRecord:
		if !e.haveId {
			e.id = v.EId
			e.haveId = true
		}
	case fic.ServiceRecord:
		svc := e.serviceFor(v.SId)
		for _, c := range v.Components {
			switch c.TMId {
			case 0, 1:
				if _, exists := svc.SubChannels[c.SubChId]; !exists {
					svc.SubChannels[c.SubChId] = &SubChannel{
						Id:      c.SubChId,
						Primary: c.PrimaryPS,
						DABPlus: c.TMId == 0 && c.ASCTy == asctyDABPlus,
					}
				}
			case 3:
				if _, exists := svc.DataSubChans[c.SCId]; !exists {
					svc.DataSubChans[c.SCId] = &DataSubChannel{SCId: c.SCId, SubChannel: SubChannel{Primary: c.PrimaryPS}}
				}
			}
		}
	case fic.SubChannelRecord:
		sc := e.findSubChannel(v.SubChId)
		if sc == nil {
			break
		}
		if sc.Prot != ProtectionUnknown {
			break // first writer wins
		}
		sc.StartCU = v.StartCU
		if v.LongForm {
			sc.Prot = ProtectionEEP
			sc.ProtLevel = v.ProtLvl
			sc.SizeCU = v.SizeCU
			sc.BitrateKb = eepBitrateKbps(v.Option, v.ProtLvl, v.SizeCU)
		} else {
			profile, ok := tables.Lookup(int(v.TabIndex))
			if !ok {
				break
			}
			sc.Prot = ProtectionUEP
			sc.BitrateKb = profile.BitrateKbps
			sc.SizeCU = uint16(profile.SizeCU)
			sc.ProtLevel = uint8(profile.ProtLevel)
		}
	case fic.PacketServiceRecord:
		dsc := e.findDataSubChannel(v.SCId)
		if dsc == nil {
			break
		}
		dsc.SubChId = v.SubChId
		dsc.PacketAddr = v.PacketAddr
		dsc.DSCTy = v.DSCTy
	case fic.LabelRecord:
		text := strings.TrimRight(string(v.Text[:]), " \x00")
		switch v.Purpose {
		case fic.LabelEnsemble:
			if e.name == "" {
				e.name = text
			}
		case fic.LabelProgrammeService, fic.LabelDataService:
			if svc, ok := e.services[v.Id]; ok && svc.Name == "" {
				svc.Name = text
			}
		}
	}
	e.tries++
}

// eepProfileADenom and eepProfileBDenom are the ETSI EN 300 401 clause
// 11.3.2 EEP subchannel-size divisors, indexed by the raw 2-bit protection
// level field (0..3, i.e. displayed levels 1-A/1-B .. 4-A/4-B). With these
// divisors profile B spends more capacity units per kbit/s than profile A
// at the same level (at raw level 0: 12/8 against 27/32).
var (
	eepProfileADenom = [4]int{27, 21, 18, 15}
	eepProfileBDenom = [4]int{12, 8, 6, 4}
)

// eepBitrateKbps derives the EEP long-form subchannel's audio bit rate
// from its capacity-unit size, following the inverse of the ETSI
// Subchannel-size-from-bitrate relation: profile A uses bitrate = size *
// 32/denom, profile B uses bitrate = size * 8/denom.
func eepBitrateKbps(option uint8, protLvl uint8, sizeCU uint16) int {
	lvl := int(protLvl) & 0x3
	if option == 1 {
		return int(sizeCU) * 8 / eepProfileBDenom[lvl]
	}
	return int(sizeCU) * 32 / eepProfileADenom[lvl]
}

func (e *Ensemble) serviceFor(sid uint32) *Service {
	svc, ok := e.services[sid]
	if !ok {
		svc = &Service{
			Id:           sid,
			SubChannels:  make(map[uint8]*SubChannel),
			DataSubChans: make(map[uint16]*DataSubChannel),
		}
		e.services[sid] = svc
	}
	return svc
}

func (e *Ensemble) findSubChannel(id uint8) *SubChannel {
	for _, svc := range e.services {
		if sc, ok := svc.SubChannels[id]; ok {
			return sc
		}
	}
	return nil
}

func (e *Ensemble) findDataSubChannel(scid uint16) *DataSubChannel {
	for _, svc := range e.services {
		if dsc, ok := svc.DataSubChans[scid]; ok {
			return dsc
		}
	}
	return nil
}

// maxTries bounds the completeness check: an ensemble that hasn't
// converged after this many applied FIGs is treated as complete anyway,
// so a malformed or truncated multiplex doesn't hang the FIC loop forever.
const maxTries = 100

// IsComplete reports whether the ensemble model has converged: the
// ensemble id and label are known, there is at least one service, and
// every service has a label and at least one subchannel; or maxTries
// records have been applied.
func (e *Ensemble) IsComplete() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.tries >= maxTries {
		return true
	}
	if !e.haveId || e.name == "" || len(e.services) == 0 {
		return false
	}
	labelled := 0
	for _, svc := range e.services {
		if svc.Name != "" && len(svc.SubChannels)+len(svc.DataSubChans) > 0 {
			labelled++
		}
	}
	ratio := float64(labelled) / float64(len(e.services))
	return floats.EqualWithinAbs(ratio, 1, 1e-9)
}

// Services returns the ensemble's services sorted by service identifier.
func (e *Ensemble) Services() []*Service {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*Service, 0, len(e.services))
	for _, s := range e.services {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id < out[j].Id })
	return out
}

// FindByID returns the service with the given numeric identifier.
func (e *Ensemble) FindByID(sid uint32) (*Service, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.services[sid]
	return s, ok
}

// FindByHexID parses a hex service identifier string (as accepted on the
// command line) and looks it up.
func (e *Ensemble) FindByHexID(hex string) (*Service, bool) {
	var sid uint32
	if _, err := fmt.Sscanf(hex, "%x", &sid); err != nil {
		return nil, false
	}
	return e.FindByID(sid)
}

// String renders a human-readable summary of the ensemble, sorted by
// service identifier.
func (e *Ensemble) String() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	var b strings.Builder
	fmt.Fprintf(&b, "ensemble %04x %q\n", e.id, e.name)
	ids := make([]uint32, 0, len(e.services))
	for id := range e.services {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		svc := e.services[id]
		fmt.Fprintf(&b, "  service %08x %q (%d audio, %d data subchannels)\n",
			svc.Id, svc.Name, len(svc.SubChannels), len(svc.DataSubChans))
	}
	return b.String()
}
