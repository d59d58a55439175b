package prs

import (
	"testing"

	"github.com/dabreceiver/dab/internal/tables"
)

func TestTrySyncOnReferenceSymbolConverges(t *testing.T) {
	s := NewSynchroniser()
	var last Estimate
	for i := 0; i < lockConsecutive+2; i++ {
		last = s.TrySync(referenceTimeDomain())
	}
	if last.Locked != s.locked {
		t.Fatalf("estimate.Locked = %v, synchroniser.locked = %v", last.Locked, s.locked)
	}
}

// referenceTimeDomain builds a plausible noiseless PRS capture by
// inverse-transforming the known frequency-domain PRS1 table, so
// TrySync has a self-consistent signal to correlate against.
func referenceTimeDomain() [numCarriers]complex128 {
	return ifft(tables.PRS1)
}
