package ensemble

import (
	"testing"

	"github.com/dabreceiver/dab/internal/fic"
)

func TestApplyRecordsBuildsService(t *testing.T) {
	e := New()
	e.ApplyRecords([]fic.Record{
		fic.EnsembleRecord{EId: 0x1234},
		fic.LabelRecord{Purpose: fic.LabelEnsemble, Text: textOf("Test Ensemble")},
		fic.ServiceRecord{SId: 0xC221, Components: []fic.ServiceComponent{
			{TMId: 0, SubChId: 5, PrimaryPS: true},
		}},
		fic.LabelRecord{Purpose: fic.LabelProgrammeService, Id: 0xC221, Text: textOf("Test Radio")},
		fic.SubChannelRecord{SubChId: 5, StartCU: 10, LongForm: false, TabIndex: 0},
	})

	if !e.IsComplete() {
		t.Fatal("ensemble not complete after full record set")
	}
	svc, ok := e.FindByID(0xC221)
	if !ok {
		t.Fatal("service not found")
	}
	if svc.Name != "Test Radio" {
		t.Fatalf("service name = %q", svc.Name)
	}
	sc, ok := svc.PrimarySubChannel()
	if !ok {
		t.Fatal("no primary subchannel")
	}
	if sc.Prot != ProtectionUEP || sc.BitrateKb != 32 {
		t.Fatalf("subchannel = %+v", sc)
	}
}

func TestFirstWriterWinsOnSubChannelProtection(t *testing.T) {
	e := New()
	e.ApplyRecords([]fic.Record{
		fic.ServiceRecord{SId: 1, Components: []fic.ServiceComponent{{TMId: 0, SubChId: 0}}},
		fic.SubChannelRecord{SubChId: 0, TabIndex: 0, LongForm: false},
		fic.SubChannelRecord{SubChId: 0, LongForm: true, ProtLvl: 3, SizeCU: 99},
	})
	svc, _ := e.FindByID(1)
	sc := svc.SubChannels[0]
	if sc.Prot != ProtectionUEP {
		t.Fatalf("protection = %v, want UEP (first writer should win)", sc.Prot)
	}
}

func TestEEPLongFormDerivesBitrate(t *testing.T) {
	e := New()
	e.ApplyRecords([]fic.Record{
		fic.ServiceRecord{SId: 0xC224, Components: []fic.ServiceComponent{
			{TMId: 0, SubChId: 2, PrimaryPS: true},
		}},
		fic.SubChannelRecord{SubChId: 2, StartCU: 0, LongForm: true, Option: 0, ProtLvl: 1, SizeCU: 84},
	})
	svc, ok := e.FindByID(0xC224)
	if !ok {
		t.Fatal("service not found")
	}
	sc, ok := svc.PrimarySubChannel()
	if !ok {
		t.Fatal("no primary subchannel")
	}
	if sc.Prot != ProtectionEEP {
		t.Fatalf("protection = %v, want EEP", sc.Prot)
	}
	if sc.BitrateKb != 128 {
		t.Fatalf("BitrateKb = %d, want 128", sc.BitrateKb)
	}
}

func TestFindByHexID(t *testing.T) {
	e := New()
	e.ApplyRecords([]fic.Record{fic.ServiceRecord{SId: 0xABCD}})
	svc, ok := e.FindByHexID("abcd")
	if !ok || svc.Id != 0xABCD {
		t.Fatalf("FindByHexID failed: %+v, %v", svc, ok)
	}
}

func textOf(s string) [16]byte {
	var out [16]byte
	copy(out[:], s)
	for i := len(s); i < 16; i++ {
		out[i] = ' '
	}
	return out
}
