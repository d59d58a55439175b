package prs

import (
	"testing"
	"time"
)

func TestControllerSendsTimingOnceLocked(t *testing.T) {
	c := NewController(NewSynchroniser())
	now := time.Unix(0, 0)
	var plan ControlPlan
	for i := 0; i < lockConsecutive+2; i++ {
		plan = c.Observe(now, referenceTimeDomain())
		now = now.Add(time.Millisecond)
	}
	if !plan.Estimate.Locked {
		t.Fatal("expected synchroniser to be locked")
	}
	if !plan.SendTiming {
		t.Fatal("expected a timing message once locked")
	}
}

func TestControllerWithholdsRegisterWritesWhenOffsetsAreZero(t *testing.T) {
	c := NewController(NewSynchroniser())
	var silent [numCarriers]complex128
	plan := c.Observe(time.Unix(0, 0), silent)
	if plan.SendFreqWrite || plan.SendDACWrite {
		t.Fatal("expected no register writes for a zero-offset observation")
	}
}

func TestStepDACClearsLowTwoBits(t *testing.T) {
	reg := stepDAC(0x8000, 400)
	if reg&0x3 != 0 {
		t.Fatalf("stepDAC result %#x has low bits set", reg)
	}
}

func TestEncodeFreqOffsetSaturates(t *testing.T) {
	if got := encodeFreqOffset(1000); got&0xFF != 0x7F {
		t.Fatalf("encodeFreqOffset(1000) low byte = %#x, want 0x7f", got&0xFF)
	}
	if got := encodeFreqOffset(-1000); got&0xFF != 0x80 {
		t.Fatalf("encodeFreqOffset(-1000) low byte = %#x, want 0x80", got&0xFF)
	}
}
